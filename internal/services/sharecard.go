package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"image/color"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"github.com/golang/freetype/truetype"
	"github.com/google/uuid"
	"golang.org/x/image/font"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/apierr"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

const (
	cardWidth  = 1200
	cardHeight = 630
	cardMargin = 72
	cardBand   = 18
)

// cardPalette holds the tenant accent colors. The pick is a stable hash
// of the tenant id, so every card for one outlet shares a band color.
var cardPalette = []color.NRGBA{
	{R: 0x1F, G: 0x3A, B: 0x5F, A: 0xFF},
	{R: 0x8C, G: 0x1C, B: 0x13, A: 0xFF},
	{R: 0x0E, G: 0x5A, B: 0x3C, A: 0xFF},
	{R: 0x4A, G: 0x23, B: 0x6B, A: 0xFF},
	{R: 0xB3, G: 0x54, B: 0x0E, A: 0xFF},
}

// ShareCardService renders the fallback social-share PNG for web
// articles that carry no imagery of their own.
type ShareCardService interface {
	RenderWebCard(ctx context.Context, webArticleID uuid.UUID) ([]byte, error)
}

type shareCardService struct {
	db         *gorm.DB
	log        *logger.Logger
	webRepo    repos.WebArticleRepo
	tenantRepo repos.TenantRepo

	// nil ttf means gg's built-in bitmap face; cards still render.
	ttf *truetype.Font
}

func NewShareCardService(db *gorm.DB, baseLog *logger.Logger, fontPath string, webRepo repos.WebArticleRepo, tenantRepo repos.TenantRepo) (ShareCardService, error) {
	serviceLog := baseLog.With("service", "ShareCardService")

	var ttf *truetype.Font
	if fontPath = strings.TrimSpace(fontPath); fontPath != "" {
		raw, err := os.ReadFile(fontPath)
		if err != nil {
			return nil, fmt.Errorf("read share card font: %w", err)
		}
		parsed, err := truetype.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("parse share card font: %w", err)
		}
		ttf = parsed
	} else {
		serviceLog.Warn("no share card font configured, using built-in face")
	}

	return &shareCardService{
		db:         db,
		log:        serviceLog,
		webRepo:    webRepo,
		tenantRepo: tenantRepo,
		ttf:        ttf,
	}, nil
}

func (s *shareCardService) RenderWebCard(ctx context.Context, webArticleID uuid.UUID) ([]byte, error) {
	if webArticleID == uuid.Nil {
		return nil, apierr.Validation("missing_web_article_id", errors.New("web article id required"))
	}

	row, err := s.webRepo.GetByID(ctx, nil, webArticleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("web_article_not_found")
		}
		return nil, apierr.Persistence(err)
	}
	if row.Status != types.StatusPublished {
		return nil, apierr.NotFound("web_article_not_found")
	}

	tenant, err := s.tenantRepo.GetByID(ctx, nil, row.TenantID)
	if err != nil {
		return nil, apierr.Persistence(err)
	}

	accent := tenantAccent(tenant.ID)
	dc := gg.NewContext(cardWidth, cardHeight)

	dc.SetColor(color.NRGBA{R: 0xFA, G: 0xF9, B: 0xF6, A: 0xFF})
	dc.DrawRectangle(0, 0, cardWidth, cardHeight)
	dc.Fill()

	dc.SetColor(accent)
	dc.DrawRectangle(0, 0, cardWidth, cardBand)
	dc.Fill()
	dc.DrawRectangle(0, cardHeight-cardBand, cardWidth, cardBand)
	dc.Fill()

	headline := strings.TrimSpace(row.Title)
	if headline == "" {
		headline = row.Slug
	}
	s.drawHeadline(dc, headline)

	if face := s.faceFor(30); face != nil {
		dc.SetFontFace(face)
	}
	dc.SetColor(accent)
	dc.DrawString(strings.ToUpper(tenant.Name), cardMargin, cardHeight-cardMargin+10)

	var buf bytes.Buffer
	if err := dc.EncodePNG(&buf); err != nil {
		return nil, apierr.Persistence(fmt.Errorf("encode share card: %w", err))
	}
	return buf.Bytes(), nil
}

// drawHeadline wraps the title into the content box, stepping the font
// down until it fits six lines.
func (s *shareCardService) drawHeadline(dc *gg.Context, headline string) {
	dc.SetColor(color.NRGBA{R: 0x1A, G: 0x1A, B: 0x1A, A: 0xFF})
	width := float64(cardWidth - 2*cardMargin)

	for _, size := range []float64{64, 52, 42} {
		if face := s.faceFor(size); face != nil {
			dc.SetFontFace(face)
		}
		if len(dc.WordWrap(headline, width)) <= 6 {
			break
		}
	}
	dc.DrawStringWrapped(headline, cardMargin, cardHeight/2, 0, 0.5, width, 1.35, gg.AlignLeft)
}

func (s *shareCardService) faceFor(size float64) font.Face {
	if s.ttf == nil {
		return nil
	}
	return truetype.NewFace(s.ttf, &truetype.Options{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

func tenantAccent(id uuid.UUID) color.NRGBA {
	h := fnv.New32a()
	h.Write(id[:])
	return cardPalette[int(h.Sum32())%len(cardPalette)]
}
