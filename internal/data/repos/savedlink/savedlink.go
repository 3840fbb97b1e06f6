package savedlink

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/yungbote/sotfinder-backend/internal/domain/savedlink"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type SavedLinkRepo interface {
	// Upsert inserts the link or overwrites the row with the same URL.
	Upsert(ctx context.Context, tx *gorm.DB, link *types.SavedLink) (*types.SavedLink, error)
	// List returns links most recently saved first.
	List(ctx context.Context, tx *gorm.DB) ([]types.SavedLink, error)
}

type savedLinkRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSavedLinkRepo(db *gorm.DB, baseLog *logger.Logger) SavedLinkRepo {
	repoLog := baseLog.With("repo", "SavedLinkRepo")
	return &savedLinkRepo{db: db, log: repoLog}
}

func (r *savedLinkRepo) Upsert(ctx context.Context, tx *gorm.DB, link *types.SavedLink) (*types.SavedLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	rec := types.FromLink(link)
	err := transaction.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title",
			"is_official",
			"confidence",
			"reasoning",
			"metadata_type",
			"metadata_spec_version",
			"metadata_notes",
			"resource_type",
			"short_description",
			"estimated_difficulty",
			"skill_outcomes",
			"updated_at",
		}),
	}).Create(rec).Error
	if err != nil {
		return nil, err
	}
	out := rec.ToLink()
	return &out, nil
}

func (r *savedLinkRepo) List(ctx context.Context, tx *gorm.DB) ([]types.SavedLink, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var rows []*types.Record
	if err := transaction.WithContext(ctx).
		Order("updated_at DESC").
		Order("url ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]types.SavedLink, 0, len(rows))
	for _, rec := range rows {
		out = append(out, rec.ToLink())
	}
	return out, nil
}
