package curriculum

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/sotfinder-backend/internal/domain/curriculum"
	"github.com/yungbote/sotfinder-backend/internal/platform/logger"
)

type CurriculumRepo interface {
	// GetByLanguage returns nil, nil when no curriculum is stored.
	GetByLanguage(ctx context.Context, tx *gorm.DB, language string) (*types.Curriculum, error)
	GetHash(ctx context.Context, tx *gorm.DB, language string) (string, bool, error)
	Replace(ctx context.Context, tx *gorm.DB, c *types.Curriculum) (uuid.UUID, error)
	ListLanguages(ctx context.Context, tx *gorm.DB) ([]string, error)
	DeleteByLanguage(ctx context.Context, tx *gorm.DB, language string) error
}

type curriculumRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCurriculumRepo(db *gorm.DB, baseLog *logger.Logger) CurriculumRepo {
	repoLog := baseLog.With("repo", "CurriculumRepo")
	return &curriculumRepo{db: db, log: repoLog}
}

func (r *curriculumRepo) findRecord(ctx context.Context, transaction *gorm.DB, language string) (*types.CurriculumRecord, error) {
	var rows []*types.CurriculumRecord
	if err := transaction.WithContext(ctx).
		Where("language = ?", types.Key(language)).
		Limit(1).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

func (r *curriculumRepo) GetByLanguage(ctx context.Context, tx *gorm.DB, language string) (*types.Curriculum, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if strings.TrimSpace(language) == "" {
		return nil, nil
	}

	rec, err := r.findRecord(ctx, transaction, language)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, nil
	}

	var children childRecords
	q := transaction.WithContext(ctx)
	if err := q.Where("curriculum_id = ?", rec.ID).Order("position ASC").Find(&children.sources).Error; err != nil {
		return nil, fmt.Errorf("load sources: %w", err)
	}
	if err := q.Where("curriculum_id = ?", rec.ID).Order("position ASC").Find(&children.levels).Error; err != nil {
		return nil, fmt.Errorf("load levels: %w", err)
	}
	if err := q.Where("curriculum_id = ?", rec.ID).Order("position ASC").Find(&children.topics).Error; err != nil {
		return nil, fmt.Errorf("load topics: %w", err)
	}
	if err := q.Where("curriculum_id = ?", rec.ID).Order("position ASC").Find(&children.projects).Error; err != nil {
		return nil, fmt.Errorf("load projects: %w", err)
	}

	return fromRecords(rec, children), nil
}

func (r *curriculumRepo) GetHash(ctx context.Context, tx *gorm.DB, language string) (string, bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	rec, err := r.findRecord(ctx, transaction, language)
	if err != nil {
		return "", false, err
	}
	if rec == nil {
		return "", false, nil
	}
	return rec.ConfigTopicsHash, true, nil
}

// Replace swaps the stored curriculum for c in a single transaction. The
// parent row keeps its id across replacements; every child row is rebuilt.
func (r *curriculumRepo) Replace(ctx context.Context, tx *gorm.DB, c *types.Curriculum) (uuid.UUID, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if c == nil || types.Key(c.Language) == "" {
		return uuid.Nil, fmt.Errorf("curriculum language required")
	}

	var id uuid.UUID
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		existing, err := r.findRecord(ctx, txx, c.Language)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if existing != nil {
			id = existing.ID
			if err := deleteChildren(txx, id); err != nil {
				return err
			}
			rec := toRecord(c, id)
			rec.CreatedAt = existing.CreatedAt
			rec.UpdatedAt = now
			if err := txx.Save(rec).Error; err != nil {
				return fmt.Errorf("update curriculum: %w", err)
			}
		} else {
			id = uuid.New()
			rec := toRecord(c, id)
			rec.CreatedAt = now
			rec.UpdatedAt = now
			if err := txx.Create(rec).Error; err != nil {
				return fmt.Errorf("create curriculum: %w", err)
			}
		}

		children := toChildRecords(c, id)
		if len(children.sources) > 0 {
			if err := txx.CreateInBatches(children.sources, 200).Error; err != nil {
				return fmt.Errorf("insert sources: %w", err)
			}
		}
		if len(children.levels) > 0 {
			if err := txx.CreateInBatches(children.levels, 200).Error; err != nil {
				return fmt.Errorf("insert levels: %w", err)
			}
		}
		if len(children.topics) > 0 {
			if err := txx.CreateInBatches(children.topics, 200).Error; err != nil {
				return fmt.Errorf("insert topics: %w", err)
			}
		}
		if len(children.projects) > 0 {
			if err := txx.CreateInBatches(children.projects, 200).Error; err != nil {
				return fmt.Errorf("insert projects: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		r.log.Warn("replace curriculum failed", "language", types.Key(c.Language), "error", err)
		return uuid.Nil, err
	}
	return id, nil
}

func (r *curriculumRepo) ListLanguages(ctx context.Context, tx *gorm.DB) ([]string, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var out []string
	if err := transaction.WithContext(ctx).
		Model(&types.CurriculumRecord{}).
		Order("language ASC").
		Pluck("language", &out).Error; err != nil {
		return nil, err
	}
	if out == nil {
		out = []string{}
	}
	return out, nil
}

func (r *curriculumRepo) DeleteByLanguage(ctx context.Context, tx *gorm.DB, language string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		existing, err := r.findRecord(ctx, txx, language)
		if err != nil {
			return err
		}
		if existing == nil {
			return nil
		}
		if err := deleteChildren(txx, existing.ID); err != nil {
			return err
		}
		return txx.Where("id = ?", existing.ID).Delete(&types.CurriculumRecord{}).Error
	})
}

// deleteChildren removes child rows explicitly; sqlite does not enforce the
// cascade unless foreign keys were migrated.
func deleteChildren(tx *gorm.DB, curriculumID uuid.UUID) error {
	for _, model := range []any{
		&types.TopicRecord{},
		&types.LevelRecord{},
		&types.SourceRecord{},
		&types.ProjectRecord{},
	} {
		if err := tx.Where("curriculum_id = ?", curriculumID).Delete(model).Error; err != nil {
			return fmt.Errorf("delete children: %w", err)
		}
	}
	return nil
}
