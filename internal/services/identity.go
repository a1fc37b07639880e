package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/requestdata"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

// ActorClaims is the token payload issued by the identity server. This
// service only verifies; issuance lives outside this codebase.
type ActorClaims struct {
	jwt.RegisteredClaims
	Role     string `json:"role,omitempty"`
	TenantID string `json:"tenantId,omitempty"`
}

type IdentityService interface {
	// SetContextFromToken verifies tokenString and attaches the actor's
	// RequestData to the returned context.
	SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error)
}

type identityService struct {
	log       *logger.Logger
	jwtSecret string
}

func NewIdentityService(baseLog *logger.Logger, jwtSecret string) IdentityService {
	return &identityService{
		log:       baseLog.With("service", "IdentityService"),
		jwtSecret: jwtSecret,
	}
}

func (s *identityService) SetContextFromToken(ctx context.Context, tokenString string) (context.Context, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return ctx, fmt.Errorf("empty token")
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &ActorClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.jwtSecret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return ctx, fmt.Errorf("failed to parse token: %w", err)
	}
	claims, ok := parsed.Claims.(*ActorClaims)
	if !ok || !parsed.Valid {
		return ctx, fmt.Errorf("invalid or expired token")
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return ctx, fmt.Errorf("invalid user id in token: %w", err)
	}

	rd := &requestdata.RequestData{
		UserID: userID,
		Role:   strings.ToUpper(strings.TrimSpace(claims.Role)),
	}
	if raw := strings.TrimSpace(claims.TenantID); raw != "" {
		tenantID, parseErr := uuid.Parse(raw)
		if parseErr != nil {
			return ctx, fmt.Errorf("invalid tenant id in token: %w", parseErr)
		}
		rd.TenantID = &tenantID
	}
	// Staff tokens are always tenant-scoped; only the platform role may
	// float across tenants.
	if rd.Role != "" && rd.Role != types.RoleSuperAdmin && rd.TenantID == nil {
		return ctx, fmt.Errorf("token missing tenant scope")
	}

	return requestdata.WithRequestData(ctx, rd), nil
}
