package repos

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
	"github.com/vaartalab/newsroom-backend/internal/types"
)

// LocationRepo lazily materializes the state > district > mandal >
// village chain a dateline names. Blank names at any level stop the
// descent; the IDs resolved so far are returned.
type LocationRepo interface {
	Resolve(ctx context.Context, tx *gorm.DB, state, district, mandal, village string) (ResolvedLocation, error)
}

type ResolvedLocation struct {
	StateID    *uuid.UUID
	DistrictID *uuid.UUID
	MandalID   *uuid.UUID
	VillageID  *uuid.UUID
}

type locationRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewLocationRepo(db *gorm.DB, baseLog *logger.Logger) LocationRepo {
	return &locationRepo{db: db, log: baseLog.With("repo", "LocationRepo")}
}

func (r *locationRepo) Resolve(ctx context.Context, tx *gorm.DB, state, district, mandal, village string) (ResolvedLocation, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out ResolvedLocation

	state = strings.TrimSpace(state)
	if state == "" {
		return out, nil
	}
	st := &types.State{Name: state}
	if err := transaction.WithContext(ctx).Where("name = ?", state).FirstOrCreate(st).Error; err != nil {
		return out, err
	}
	out.StateID = &st.ID

	district = strings.TrimSpace(district)
	if district == "" {
		return out, nil
	}
	d := &types.District{StateID: st.ID, Name: district}
	if err := transaction.WithContext(ctx).Where("state_id = ? AND name = ?", st.ID, district).FirstOrCreate(d).Error; err != nil {
		return out, err
	}
	out.DistrictID = &d.ID

	mandal = strings.TrimSpace(mandal)
	if mandal == "" {
		return out, nil
	}
	m := &types.Mandal{DistrictID: d.ID, Name: mandal}
	if err := transaction.WithContext(ctx).Where("district_id = ? AND name = ?", d.ID, mandal).FirstOrCreate(m).Error; err != nil {
		return out, err
	}
	out.MandalID = &m.ID

	village = strings.TrimSpace(village)
	if village == "" {
		return out, nil
	}
	v := &types.Village{MandalID: m.ID, Name: village}
	if err := transaction.WithContext(ctx).Where("mandal_id = ? AND name = ?", m.ID, village).FirstOrCreate(v).Error; err != nil {
		return out, err
	}
	out.VillageID = &v.ID

	return out, nil
}
