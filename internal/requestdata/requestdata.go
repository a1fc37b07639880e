package requestdata

import (
	"context"

	"github.com/google/uuid"

	"github.com/vaartalab/newsroom-backend/internal/types"
)

type requestDataKey struct{}

// RequestData is the authenticated actor attached by the auth
// middleware: who is calling, with what role, inside which tenant.
// TenantID is nil only for SUPER_ADMIN tokens.
type RequestData struct {
	UserID   uuid.UUID
	Role     string
	TenantID *uuid.UUID
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		return rd
	}
	return nil
}

func (rd *RequestData) IsSuperAdmin() bool {
	return rd != nil && rd.Role == types.RoleSuperAdmin
}

func (rd *RequestData) IsEditorial() bool {
	return rd != nil && types.IsEditorialRole(rd.Role)
}

// SameTenant reports whether the actor may touch records of tenantID.
func (rd *RequestData) SameTenant(tenantID uuid.UUID) bool {
	if rd == nil {
		return false
	}
	if rd.Role == types.RoleSuperAdmin {
		return true
	}
	return rd.TenantID != nil && *rd.TenantID == tenantID
}
