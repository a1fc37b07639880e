package services

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/config"
	"github.com/vaartalab/newsroom-backend/internal/jsonx"
	"github.com/vaartalab/newsroom-backend/internal/langcheck"
	"github.com/vaartalab/newsroom-backend/internal/platform/ai"
	"github.com/vaartalab/newsroom-backend/internal/platform/apierr"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/prompts"
	"github.com/vaartalab/newsroom-backend/internal/repos"
	"github.com/vaartalab/newsroom-backend/internal/requestdata"
	"github.com/vaartalab/newsroom-backend/internal/sanitize"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

// istZone fixes the newsroom's local day for daily caps. The cap counts
// against a +05:30 calendar day regardless of server timezone.
var istZone = time.FixedZone("IST", 5*3600+30*60)

const (
	EventArticleQueued   = "article.queued"
	EventArticleAIDone   = "article.ai_done"
	EventArticleAIFailed = "article.ai_failed"
)

// EventPublisher fans composition lifecycle events out to realtime
// subscribers. Implementations must never block or fail the workflow.
type EventPublisher interface {
	Publish(ctx context.Context, tenantID uuid.UUID, event string, payload any)
}

// CompositionResult is what one composition run produced. Codes carries
// the machine-readable degradation markers, empty on a clean run; the
// same codes are recorded on the article's ai_error column.
type CompositionResult struct {
	Article   *types.Article
	Newspaper *types.NewspaperArticle
	Web       *types.WebArticle
	Short     *types.ShortNews
	Codes     []string
}

func (r *CompositionResult) Code() string {
	if r == nil || len(r.Codes) == 0 {
		return ""
	}
	return r.Codes[0]
}

type CompositionService interface {
	Submit(ctx context.Context, rd requestdata.RequestData, in *SubmissionInput) (*CompositionResult, error)
	RetryProcessing(ctx context.Context, rd requestdata.RequestData, articleID uuid.UUID) (*CompositionResult, error)
}

type compositionService struct {
	db  *gorm.DB
	log *logger.Logger
	cfg config.CompositionConfig

	aiClient  ai.Client // nil when no provider has credentials
	resolver  *prompts.Resolver
	sanitizer *sanitize.Sanitizer
	events    EventPublisher // optional

	articleRepo   repos.ArticleRepo
	newspaperRepo repos.NewspaperArticleRepo
	webRepo       repos.WebArticleRepo
	shortRepo     repos.ShortNewsRepo
	tenantRepo    repos.TenantRepo
	domainRepo    repos.DomainRepo
	languageRepo  repos.LanguageRepo
	stafferRepo   repos.StafferRepo
	locationRepo  repos.LocationRepo

	now func() time.Time
}

func NewCompositionService(
	db *gorm.DB,
	baseLog *logger.Logger,
	cfg config.CompositionConfig,
	aiClient ai.Client,
	resolver *prompts.Resolver,
	sanitizer *sanitize.Sanitizer,
	events EventPublisher,
	articleRepo repos.ArticleRepo,
	newspaperRepo repos.NewspaperArticleRepo,
	webRepo repos.WebArticleRepo,
	shortRepo repos.ShortNewsRepo,
	tenantRepo repos.TenantRepo,
	domainRepo repos.DomainRepo,
	languageRepo repos.LanguageRepo,
	stafferRepo repos.StafferRepo,
	locationRepo repos.LocationRepo,
) CompositionService {
	return &compositionService{
		db:            db,
		log:           baseLog.With("service", "CompositionService"),
		cfg:           cfg,
		aiClient:      aiClient,
		resolver:      resolver,
		sanitizer:     sanitizer,
		events:        events,
		articleRepo:   articleRepo,
		newspaperRepo: newspaperRepo,
		webRepo:       webRepo,
		shortRepo:     shortRepo,
		tenantRepo:    tenantRepo,
		domainRepo:    domainRepo,
		languageRepo:  languageRepo,
		stafferRepo:   stafferRepo,
		locationRepo:  locationRepo,
		now:           time.Now,
	}
}

type composeEnv struct {
	article    *types.Article
	staffer    *types.Staffer
	tenant     *types.Tenant
	payload    *SubmissionInput
	categories []string
	langCode   string
	isRetry    bool
}

// Submit validates a raw submission, runs the enrichment pipeline in
// memory, and persists base record plus derived artifacts in one
// transaction. Nothing is written before that transaction, so a
// persistence failure leaves no partial state behind.
func (s *compositionService) Submit(ctx context.Context, rd requestdata.RequestData, in *SubmissionInput) (*CompositionResult, error) {
	in = NormalizeSubmission(in)
	if in == nil {
		return nil, apierr.Validation("empty_payload", errors.New("request body required"))
	}

	staffer, err := s.stafferRepo.GetByID(ctx, nil, rd.UserID)
	if err != nil {
		return nil, apierr.Validation("staffer_not_found", err)
	}

	tenant, domainID, err := s.resolveScope(ctx, staffer, in)
	if err != nil {
		return nil, err
	}

	title, rawBody, err := requiredContent(in)
	if err != nil {
		return nil, err
	}

	categories := in.BaseArticle.CategoryList()
	if len(categories) == 0 {
		return nil, apierr.Validation("missing_category", errors.New("at least one category required"))
	}

	langCode := canonicalLang(in.BaseArticle.LanguageCode)
	var languageID *uuid.UUID
	if langCode != "" {
		if lang, lookupErr := s.languageRepo.GetByCode(ctx, nil, langCode); lookupErr == nil {
			languageID = &lang.ID
		}
	}

	article := &types.Article{
		ID:           uuid.New(),
		TenantID:     tenant.ID,
		DomainID:     domainID,
		LanguageID:   languageID,
		AuthorID:     staffer.ID,
		Title:        title,
		RawBody:      rawBody,
		PublishReady: in.PublishReady(),
		Status:       types.StatusPending,
		AIStatus:     types.AIStatusPending,
	}
	if b, mErr := json.Marshal(in); mErr == nil {
		article.RawPayload = datatypes.JSON(b)
	}
	if b, mErr := json.Marshal(categories); mErr == nil {
		article.Categories = datatypes.JSON(b)
	}
	if imgs := in.Images(); len(imgs) > 0 {
		if b, mErr := json.Marshal(imgs); mErr == nil {
			article.Images = datatypes.JSON(b)
		}
	}

	s.publish(ctx, tenant.ID, EventArticleQueued, map[string]any{
		"articleId": article.ID,
		"title":     title,
	})

	return s.run(ctx, &composeEnv{
		article:    article,
		staffer:    staffer,
		tenant:     tenant,
		payload:    in,
		categories: categories,
		langCode:   langCode,
	})
}

// RetryProcessing re-runs composition for the artifact kinds still
// flagged queued, from the stored raw submission. A record with nothing
// queued is returned unchanged.
func (s *compositionService) RetryProcessing(ctx context.Context, rd requestdata.RequestData, articleID uuid.UUID) (*CompositionResult, error) {
	art, err := s.articleRepo.GetByID(ctx, nil, articleID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apierr.NotFound("article_not_found")
		}
		return nil, apierr.Persistence(err)
	}
	if !rd.IsSuperAdmin() && !rd.SameTenant(art.TenantID) {
		return nil, apierr.NotFound("article_not_found")
	}

	if !art.AIQueueWeb && !art.AIQueueShort && !art.AIQueueNewspaper {
		return &CompositionResult{Article: art}, nil
	}

	staffer, err := s.stafferRepo.GetByID(ctx, nil, art.AuthorID)
	if err != nil {
		return nil, apierr.Validation("staffer_not_found", err)
	}
	tenant, err := s.tenantRepo.GetByID(ctx, nil, art.TenantID)
	if err != nil {
		return nil, apierr.Validation("tenant_not_found", err)
	}

	var payload SubmissionInput
	if len(art.RawPayload) > 0 {
		if uErr := json.Unmarshal(art.RawPayload, &payload); uErr != nil {
			return nil, apierr.Validation("raw_payload_unreadable", uErr)
		}
	}
	NormalizeSubmission(&payload)

	var categories []string
	if len(art.Categories) > 0 {
		_ = json.Unmarshal(art.Categories, &categories)
	}

	langCode := canonicalLang(payload.BaseArticle.LanguageCode)
	if langCode == "" && art.LanguageID != nil {
		if lang, lookupErr := s.languageRepo.GetByID(ctx, nil, *art.LanguageID); lookupErr == nil {
			langCode = lang.Code
		}
	}

	// The record already exists, so the in-flight state is observable.
	art.AIStatus = types.AIStatusProcessing
	if uErr := s.articleRepo.UpdateFields(ctx, nil, art.ID, map[string]interface{}{"ai_status": types.AIStatusProcessing}); uErr != nil {
		return nil, apierr.Persistence(uErr)
	}

	return s.run(ctx, &composeEnv{
		article:    art,
		staffer:    staffer,
		tenant:     tenant,
		payload:    &payload,
		categories: categories,
		langCode:   langCode,
		isRetry:    true,
	})
}

func (s *compositionService) run(ctx context.Context, env *composeEnv) (*CompositionResult, error) {
	art := env.article

	mode, skip := s.mode(env.tenant)
	art.AIMode = mode
	art.AISkipReason = skip
	art.AIError = ""
	art.AIRawResponse = ""

	wantPrint, wantWeb, wantShort := queueTargets(mode, env.payload)
	if env.isRetry {
		wantPrint = wantPrint && art.AIQueueNewspaper
		wantWeb = wantWeb && art.AIQueueWeb
		wantShort = wantShort && art.AIQueueShort
	}
	art.AIQueueNewspaper, art.AIQueueWeb, art.AIQueueShort = wantPrint, wantWeb, wantShort

	started := s.now().UTC()
	art.AIStartedAt = &started

	var gen *SubmissionInput
	var failCode, rawText string
	if mode == types.AIModeFull {
		gen, failCode, rawText = s.generate(ctx, env)
	}

	plan := &artifactPlan{}
	switch failCode {
	case apierr.CodeEmptyResponse, apierr.CodeInvalidJSON:
		// Base record only; queue flags stay set so a later retry can
		// pick the work back up.
		plan.addCode(failCode)
		art.AIRawResponse = rawText
	case apierr.CodeLanguageMismatch:
		plan = assemblePlan(env.payload, nil, wantPrint, wantWeb, wantShort)
		plan.addCode(apierr.CodeLanguageMismatch)
		art.AIRawResponse = rawText
	default:
		plan = assemblePlan(env.payload, gen, wantPrint, wantWeb, wantShort)
	}

	s.sanitizePlan(plan)
	fillHeadlines(plan, art.Title)

	derived := deriveStatus(env.staffer, art.PublishReady)

	if plan.print != nil {
		reached, capErr := s.newspaperCapReached(ctx, env.tenant, art.AuthorID)
		if capErr != nil {
			return nil, apierr.Persistence(capErr)
		}
		if reached {
			plan.print = nil
			plan.addCode(apierr.CodeDailyLimitReached)
		}
	}

	finished := s.now().UTC()
	art.AIFinishedAt = &finished
	art.AIError = strings.Join(plan.codes, ",")
	if failCode == apierr.CodeEmptyResponse || failCode == apierr.CodeInvalidJSON {
		art.AIStatus = types.AIStatusFailed
	} else {
		art.AIStatus = types.AIStatusDone
	}
	if plan.print != nil || plan.web != nil || plan.short != nil {
		art.Status = derived
	}

	res, err := s.persist(ctx, env, plan, derived)
	if err != nil {
		return nil, err
	}

	event := EventArticleAIDone
	if art.AIStatus == types.AIStatusFailed {
		event = EventArticleAIFailed
	}
	s.publish(ctx, art.TenantID, event, map[string]any{
		"articleId": art.ID,
		"aiStatus":  art.AIStatus,
		"codes":     plan.codes,
	})

	return res, nil
}

// -------------------- validation & scope --------------------

func (s *compositionService) resolveScope(ctx context.Context, staffer *types.Staffer, in *SubmissionInput) (*types.Tenant, *uuid.UUID, error) {
	var tenant *types.Tenant
	var domainID *uuid.UUID

	if staffer.Role == types.RoleSuperAdmin {
		if strings.TrimSpace(in.TenantID) == "" && strings.TrimSpace(in.DomainID) == "" {
			return nil, nil, apierr.Validation("tenant_scope_required", errors.New("super admin submissions must name a tenant or domain"))
		}
		if ref := strings.TrimSpace(in.TenantID); ref != "" {
			t, err := s.findTenant(ctx, ref)
			if err != nil {
				return nil, nil, apierr.Validation("tenant_not_found", err)
			}
			tenant = t
		}
	} else {
		if staffer.TenantID == nil {
			return nil, nil, apierr.Validation("tenant_scope_required", errors.New("staffer has no tenant link"))
		}
		t, err := s.tenantRepo.GetByID(ctx, nil, *staffer.TenantID)
		if err != nil {
			return nil, nil, apierr.Validation("tenant_not_found", err)
		}
		tenant = t
	}

	if ref := strings.TrimSpace(in.DomainID); ref != "" {
		d, err := s.findDomain(ctx, ref)
		if err != nil {
			return nil, nil, apierr.Validation("domain_not_found", err)
		}
		if tenant == nil {
			t, tErr := s.tenantRepo.GetByID(ctx, nil, d.TenantID)
			if tErr != nil {
				return nil, nil, apierr.Validation("tenant_not_found", tErr)
			}
			tenant = t
		} else if d.TenantID != tenant.ID {
			return nil, nil, apierr.Validation("domain_scope_mismatch", errors.New("domain belongs to another tenant"))
		}
		domainID = &d.ID
	}

	return tenant, domainID, nil
}

func (s *compositionService) findTenant(ctx context.Context, ref string) (*types.Tenant, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.tenantRepo.GetByID(ctx, nil, id)
	}
	return s.tenantRepo.GetBySlug(ctx, nil, ref)
}

func (s *compositionService) findDomain(ctx context.Context, ref string) (*types.Domain, error) {
	if id, err := uuid.Parse(ref); err == nil {
		return s.domainRepo.GetByID(ctx, nil, id)
	}
	return s.domainRepo.GetByHostname(ctx, nil, ref)
}

func requiredContent(in *SubmissionInput) (string, string, error) {
	title := ""
	switch {
	case in.PrintArticle != nil && strings.TrimSpace(in.PrintArticle.Headline) != "":
		title = strings.TrimSpace(in.PrintArticle.Headline)
	case in.WebArticle != nil && strings.TrimSpace(in.WebArticle.Headline) != "":
		title = strings.TrimSpace(in.WebArticle.Headline)
	case in.ShortNews != nil && strings.TrimSpace(in.ShortNews.H1) != "":
		title = strings.TrimSpace(in.ShortNews.H1)
	}
	if title == "" {
		return "", "", apierr.Validation("missing_headline", errors.New("a headline is required"))
	}

	var parts []string
	switch {
	case in.HasPrint():
		parts = nonBlank(in.PrintArticle.Body)
	case in.HasWeb():
		if v := strings.TrimSpace(in.WebArticle.Lead); v != "" {
			parts = append(parts, v)
		}
		for _, sec := range in.WebArticle.Sections {
			parts = append(parts, nonBlank(sec.Paragraphs)...)
		}
	case in.HasShort():
		parts = []string{strings.TrimSpace(in.ShortNews.Content)}
	}
	if len(parts) == 0 {
		return "", "", apierr.Validation("missing_body_content", errors.New("body content is required"))
	}

	return title, strings.Join(parts, "\n\n"), nil
}

func canonicalLang(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if canon, ok := langcheck.Canonical(raw); ok {
		return canon
	}
	return raw
}

// -------------------- AI pipeline --------------------

func (s *compositionService) mode(tenant *types.Tenant) (string, string) {
	if !tenant.AIEnrichmentEnabled {
		return types.AIModeLimited, types.SkipReasonAIDisabled
	}
	if s.aiClient == nil {
		return types.AIModeLimited, types.SkipReasonNoProvider
	}
	return types.AIModeFull, ""
}

// queueTargets picks which artifacts this run owes. Full enrichment fans
// one submission out to all three; limited mode only passes through what
// the reporter actually wrote.
func queueTargets(mode string, raw *SubmissionInput) (bool, bool, bool) {
	if mode == types.AIModeFull {
		return true, true, true
	}
	return raw.HasPrint(), raw.HasWeb(), raw.HasShort()
}

// generate runs the provider round trips: compose, one JSON-only retry,
// language check, one length rebalance. It returns the normalized AI
// payload, or a soft-failure code plus the raw text for diagnostics.
func (s *compositionService) generate(ctx context.Context, env *composeEnv) (*SubmissionInput, string, string) {
	rawJSON, err := json.Marshal(env.payload)
	if err != nil {
		return nil, apierr.CodeInvalidJSON, err.Error()
	}

	language := env.langCode
	if language == "" {
		language = "the language of the raw submission"
	}

	tpl := s.resolver.Resolve(ctx, prompts.KeyArticleCompose)
	prompt := prompts.Render(tpl, map[string]string{
		"tenant":     env.tenant.Name,
		"language":   language,
		"wordFloor":  strconv.Itoa(s.cfg.WordFloor),
		"wordCeil":   strconv.Itoa(s.cfg.WordCeil),
		"category":   strings.Join(env.categories, ", "),
		"author":     env.staffer.Name,
		"imageCount": strconv.Itoa(len(env.payload.Images())),
		"rawContent": string(rawJSON),
	})

	res, err := s.aiClient.Generate(ctx, ai.GenerateRequest{
		Prompt:   prompt,
		Purpose:  "compose",
		JSONMode: true,
	})
	if err != nil {
		s.log.Warn("Provider call failed", "article_id", env.article.ID, "error", err.Error())
		return nil, apierr.CodeEmptyResponse, "provider error: " + err.Error()
	}

	text := res.Text
	if strings.TrimSpace(text) == "" {
		return nil, apierr.CodeEmptyResponse, ""
	}

	extracted, extractErr := jsonx.Extract(text)
	if extractErr != nil {
		retrySuffix := s.resolver.Resolve(ctx, prompts.KeyJSONRetrySuffix)
		retryRes, retryErr := s.aiClient.Generate(ctx, ai.GenerateRequest{
			Prompt:   prompt + "\n\n" + retrySuffix,
			Purpose:  "json_retry",
			JSONMode: true,
		})
		if retryErr == nil && strings.TrimSpace(retryRes.Text) != "" {
			text = retryRes.Text
			extracted, extractErr = jsonx.Extract(text)
		}
		if extractErr != nil {
			return nil, apierr.CodeInvalidJSON, text
		}
	}

	var gen SubmissionInput
	if uErr := json.Unmarshal(extracted, &gen); uErr != nil {
		return nil, apierr.CodeInvalidJSON, text
	}
	NormalizeSubmission(&gen)

	if env.langCode != "" {
		if sample := generatedSample(&gen); sample != "" && !langcheck.Matches(env.langCode, sample) {
			return nil, apierr.CodeLanguageMismatch, text
		}
	}

	if gen.HasWeb() {
		words := webWordCount(gen.WebArticle)
		if words < s.cfg.WordFloor || words > s.cfg.WordCeil {
			s.rebalance(ctx, env, &gen, extracted, words)
		}
	}

	return &gen, "", ""
}

// rebalance issues the single length retry. The retried payload replaces
// the original only when its body lands inside the word band.
func (s *compositionService) rebalance(ctx context.Context, env *composeEnv, gen *SubmissionInput, original json.RawMessage, words int) {
	key := prompts.KeyLengthExpand
	if words > s.cfg.WordCeil {
		key = prompts.KeyLengthCondense
	}

	prompt := prompts.Render(s.resolver.Resolve(ctx, key), map[string]string{
		"words":     strconv.Itoa(words),
		"wordFloor": strconv.Itoa(s.cfg.WordFloor),
		"wordCeil":  strconv.Itoa(s.cfg.WordCeil),
		"body":      string(original),
	})

	res, err := s.aiClient.Generate(ctx, ai.GenerateRequest{
		Prompt:   prompt,
		Purpose:  "length_rebalance",
		JSONMode: true,
	})
	if err != nil || strings.TrimSpace(res.Text) == "" {
		s.log.Warn("Length rebalance attempt failed, keeping original",
			"article_id", env.article.ID, "words", words)
		return
	}

	extracted, err := jsonx.Extract(res.Text)
	if err != nil {
		return
	}
	var retried SubmissionInput
	if err := json.Unmarshal(extracted, &retried); err != nil {
		return
	}
	NormalizeSubmission(&retried)

	if !retried.HasWeb() {
		return
	}
	retriedWords := webWordCount(retried.WebArticle)
	if retriedWords >= s.cfg.WordFloor && retriedWords <= s.cfg.WordCeil {
		*gen = retried
		return
	}
	s.log.Debug("Rebalanced body still out of band, keeping original",
		"article_id", env.article.ID, "words", words, "retried_words", retriedWords)
}

func generatedSample(gen *SubmissionInput) string {
	var parts []string
	if gen.PrintArticle != nil {
		parts = append(parts, gen.PrintArticle.Body...)
	}
	if gen.WebArticle != nil {
		parts = append(parts, gen.WebArticle.Lead)
		for _, sec := range gen.WebArticle.Sections {
			parts = append(parts, sec.Paragraphs...)
		}
	}
	if gen.ShortNews != nil {
		parts = append(parts, gen.ShortNews.Content)
	}
	return strings.Join(nonBlank(parts), " ")
}

func webWordCount(w *WebArticleInput) int {
	n := len(strings.Fields(w.Lead))
	for _, sec := range w.Sections {
		for _, p := range sec.Paragraphs {
			n += len(strings.Fields(p))
		}
	}
	return n
}

// -------------------- artifact assembly --------------------

type artifactPlan struct {
	print *PrintArticleInput
	web   *WebArticleInput
	short *ShortNewsInput
	codes []string
}

func (p *artifactPlan) addCode(code string) {
	for _, c := range p.codes {
		if c == code {
			return
		}
	}
	p.codes = append(p.codes, code)
}

// assemblePlan merges the AI output onto the raw submission. A nil gen
// means pass-through (limited mode or language mismatch). When the
// provider was asked but a block came back unusable, the raw block
// covers for it and the degradation is recorded.
func assemblePlan(raw, gen *SubmissionInput, wantPrint, wantWeb, wantShort bool) *artifactPlan {
	p := &artifactPlan{}

	if wantPrint {
		switch {
		case gen != nil && gen.HasPrint():
			p.print = gen.PrintArticle
		case raw.HasPrint():
			p.print = raw.PrintArticle
			if gen != nil {
				p.addCode(apierr.CodeMissingBody)
			}
		default:
			if gen != nil {
				p.addCode(apierr.CodeMissingBody)
			}
		}
	}

	if wantWeb {
		switch {
		case gen != nil && gen.HasWeb() && gen.WebArticle.SEO == nil:
			// Generated web copy without its SEO block is unusable as a
			// web artifact; the others still proceed.
			p.addCode(apierr.CodeMissingSEOBlock)
		case gen != nil && gen.HasWeb():
			p.web = gen.WebArticle
		case raw.HasWeb():
			p.web = raw.WebArticle
			if gen != nil {
				p.addCode(apierr.CodeMissingBody)
			}
		default:
			if gen != nil {
				p.addCode(apierr.CodeMissingBody)
			}
		}
	}

	if wantShort {
		switch {
		case gen != nil && gen.HasShort():
			p.short = gen.ShortNews
		case raw.HasShort():
			p.short = raw.ShortNews
			if gen != nil {
				p.addCode(apierr.CodeMissingBody)
			}
		default:
			if gen != nil {
				p.addCode(apierr.CodeMissingBody)
			}
		}
	}

	return p
}

func (s *compositionService) sanitizePlan(p *artifactPlan) {
	max := s.cfg.MaxFieldLen

	clean := func(v string) string {
		return sanitize.Truncate(strings.TrimSpace(s.sanitizer.PlainText(v)), max)
	}

	if p.print != nil {
		p.print.Headline = clean(p.print.Headline)
		p.print.Subtitle = clean(p.print.Subtitle)
		body := make([]string, 0, len(p.print.Body))
		for _, para := range p.print.Body {
			if v := clean(para); v != "" {
				body = append(body, v)
			}
		}
		p.print.Body = body
		highlights := make([]string, 0, len(p.print.Highlights))
		for _, h := range p.print.Highlights {
			if v := clean(h); v != "" {
				highlights = append(highlights, v)
			}
		}
		p.print.Highlights = highlights
	}

	if p.web != nil {
		p.web.Headline = clean(p.web.Headline)
		p.web.Lead = sanitize.Truncate(s.sanitizer.HTML(p.web.Lead), max)
		for i := range p.web.Sections {
			sec := &p.web.Sections[i]
			sec.Subhead = clean(sec.Subhead)
			paras := make([]string, 0, len(sec.Paragraphs))
			for _, para := range sec.Paragraphs {
				if v := sanitize.Truncate(s.sanitizer.HTML(para), max); strings.TrimSpace(v) != "" {
					paras = append(paras, v)
				}
			}
			sec.Paragraphs = paras
		}
		if p.web.SEO != nil {
			p.web.SEO.MetaTitle = clean(p.web.SEO.MetaTitle)
			p.web.SEO.MetaDescription = clean(p.web.SEO.MetaDescription)
			keywords := make([]string, 0, len(p.web.SEO.Keywords))
			for _, k := range p.web.SEO.Keywords {
				if v := clean(k); v != "" {
					keywords = append(keywords, v)
				}
			}
			p.web.SEO.Keywords = keywords
		}
	}

	if p.short != nil {
		p.short.H1 = clean(p.short.H1)
		p.short.H2 = clean(p.short.H2)
		p.short.Content = clean(p.short.Content)
	}
}

func fillHeadlines(p *artifactPlan, title string) {
	if p.print != nil && strings.TrimSpace(p.print.Headline) == "" {
		p.print.Headline = title
	}
	if p.web != nil && strings.TrimSpace(p.web.Headline) == "" {
		p.web.Headline = title
	}
	if p.short != nil && strings.TrimSpace(p.short.H1) == "" {
		p.short.H1 = title
	}
}

// deriveStatus is evaluated once per invocation and applied to every
// artifact created in it. Reporters publish only when their autoPublish
// capability and the submission's publishReady flag agree; editorial
// roles publish unconditionally.
func deriveStatus(staffer *types.Staffer, publishReady bool) string {
	if types.IsEditorialRole(staffer.Role) {
		return types.StatusPublished
	}
	if staffer.AutoPublish && publishReady {
		return types.StatusPublished
	}
	return types.StatusPending
}

// -------------------- daily cap --------------------

func (s *compositionService) newspaperCapReached(ctx context.Context, tenant *types.Tenant, authorID uuid.UUID) (bool, error) {
	limit := tenant.DailyNewspaperCap
	if limit <= 0 {
		limit = s.cfg.DailyNewspaperCap
	}
	if limit <= 0 {
		return false, nil
	}
	from, to := dayWindow(s.now())
	n, err := s.newspaperRepo.CountByAuthorBetween(ctx, nil, authorID, from, to)
	if err != nil {
		return false, err
	}
	return n >= int64(limit), nil
}

func dayWindow(now time.Time) (time.Time, time.Time) {
	local := now.In(istZone)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, istZone)
	return start, start.Add(24 * time.Hour)
}

// -------------------- persistence --------------------

func (s *compositionService) persist(ctx context.Context, env *composeEnv, plan *artifactPlan, derivedStatus string) (*CompositionResult, error) {
	art := env.article
	res := &CompositionResult{Article: art, Codes: plan.codes}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if env.isRetry {
			if err := s.articleRepo.Update(ctx, tx, art); err != nil {
				return err
			}
		} else {
			if err := s.articleRepo.Create(ctx, tx, art); err != nil {
				return err
			}
		}

		if plan.print != nil {
			loc := env.payload.Location
			resolved, err := s.locationRepo.Resolve(ctx, tx,
				loc.Resolved.State, loc.Resolved.District, loc.Resolved.Mandal, loc.Resolved.Village)
			if err != nil {
				return err
			}
			row := &types.NewspaperArticle{
				ID:         uuid.New(),
				ArticleID:  art.ID,
				TenantID:   art.TenantID,
				LanguageID: art.LanguageID,
				Headline:   plan.print.Headline,
				Subtitle:   plan.print.Subtitle,
				Dateline:   sanitize.Truncate(strings.TrimSpace(loc.Dateline), s.cfg.MaxFieldLen),
				StateID:    resolved.StateID,
				DistrictID: resolved.DistrictID,
				MandalID:   resolved.MandalID,
				VillageID:  resolved.VillageID,
				Status:     derivedStatus,
			}
			if b, mErr := json.Marshal(plan.print.Body); mErr == nil {
				row.Body = datatypes.JSON(b)
			}
			if len(plan.print.Highlights) > 0 {
				if b, mErr := json.Marshal(plan.print.Highlights); mErr == nil {
					row.Highlights = datatypes.JSON(b)
				}
			}
			if err := s.newspaperRepo.Create(ctx, tx, row); err != nil {
				return err
			}
			art.NewspaperArticleID = &row.ID
			art.AIQueueNewspaper = false
			res.Newspaper = row
		}

		if plan.web != nil {
			row := s.buildWebRow(env, plan.web, derivedStatus)
			if err := s.webRepo.Upsert(ctx, tx, row); err != nil {
				return err
			}
			art.WebArticleID = &row.ID
			art.AIQueueWeb = false
			res.Web = row
		}

		if plan.short != nil {
			row := &types.ShortNews{
				ID:         uuid.New(),
				ArticleID:  art.ID,
				TenantID:   art.TenantID,
				LanguageID: art.LanguageID,
				CategoryID: firstCategoryID(env.categories),
				Headline:   plan.short.H1,
				Subtitle:   plan.short.H2,
				Content:    plan.short.Content,
				Status:     derivedStatus,
			}
			if err := s.shortRepo.Create(ctx, tx, row); err != nil {
				return err
			}
			art.ShortNewsID = &row.ID
			art.AIQueueShort = false
			res.Short = row
		}

		// Output links and final queue flags land in the same commit as
		// the artifacts they describe.
		return s.articleRepo.UpdateFields(ctx, tx, art.ID, map[string]interface{}{
			"web_article_id":       art.WebArticleID,
			"short_news_id":        art.ShortNewsID,
			"newspaper_article_id": art.NewspaperArticleID,
			"ai_queue_web":         art.AIQueueWeb,
			"ai_queue_short":       art.AIQueueShort,
			"ai_queue_newspaper":   art.AIQueueNewspaper,
			"status":               art.Status,
		})
	})
	if err != nil {
		return nil, apierr.Persistence(err)
	}

	return res, nil
}

func (s *compositionService) buildWebRow(env *composeEnv, w *WebArticleInput, status string) *types.WebArticle {
	art := env.article

	seo := types.SEOBlock{}
	if w.SEO != nil {
		seo.Slug = w.SEO.Slug
		seo.MetaTitle = w.SEO.MetaTitle
		seo.MetaDescription = w.SEO.MetaDescription
		seo.Keywords = w.SEO.Keywords
	}
	slug := slugify(firstNonEmpty(seo.Slug, w.Headline, art.Title))
	seo.Slug = slug

	html := s.sanitizer.HTML(buildWebHTML(w))
	plain := s.sanitizer.PlainText(html)

	row := &types.WebArticle{
		ArticleID:   art.ID,
		TenantID:    art.TenantID,
		DomainID:    art.DomainID,
		LanguageID:  art.LanguageID,
		Slug:        slug,
		Title:       firstNonEmpty(w.Headline, art.Title),
		ContentHTML: html,
		PlainText:   plain,
		Status:      status,
	}
	if b, err := json.Marshal(seo); err == nil {
		row.SEO = datatypes.JSON(b)
	}
	if b, err := json.Marshal(w.Sections); err == nil {
		row.Blocks = datatypes.JSON(b)
	}
	if status == types.StatusPublished {
		published := s.now().UTC()
		row.PublishedAt = &published
	}

	ld := map[string]any{
		"@context": "https://schema.org",
		"@type":    "NewsArticle",
		"headline": row.Title,
		"author":   map[string]any{"@type": "Person", "name": env.staffer.Name},
		"publisher": map[string]any{
			"@type": "Organization",
			"name":  env.tenant.Name,
		},
	}
	if row.PublishedAt != nil {
		ld["datePublished"] = row.PublishedAt.Format(time.RFC3339)
	}
	if b, err := json.Marshal(ld); err == nil {
		row.JSONLD = datatypes.JSON(b)
	}

	return row
}

func buildWebHTML(w *WebArticleInput) string {
	var b strings.Builder
	if v := strings.TrimSpace(w.Lead); v != "" {
		b.WriteString(`<p class="lead">`)
		b.WriteString(v)
		b.WriteString("</p>\n")
	}
	for _, sec := range w.Sections {
		if v := strings.TrimSpace(sec.Subhead); v != "" {
			b.WriteString("<h2>")
			b.WriteString(v)
			b.WriteString("</h2>\n")
		}
		for _, p := range sec.Paragraphs {
			if v := strings.TrimSpace(p); v != "" {
				b.WriteString("<p>")
				b.WriteString(v)
				b.WriteString("</p>\n")
			}
		}
	}
	return b.String()
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	pendingHyphen := false
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pendingHyphen && b.Len() > 0 {
				b.WriteRune('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	out := strings.Trim(sanitize.Truncate(b.String(), 96), "-")
	if out == "" {
		return "article"
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

func firstCategoryID(categories []string) *uuid.UUID {
	for _, c := range categories {
		if id, err := uuid.Parse(c); err == nil {
			return &id
		}
	}
	return nil
}

func (s *compositionService) publish(ctx context.Context, tenantID uuid.UUID, event string, payload any) {
	if s.events == nil {
		return
	}
	s.events.Publish(ctx, tenantID, event, payload)
}
