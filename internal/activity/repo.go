package activity

import (
	"context"

	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

// Repository manages persistence for the append-only activity log.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.ActivityEntry) error
	List(ctx context.Context, params pagination.Params) ([]models.ActivityEntry, int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an activity repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Append(ctx context.Context, entry *models.ActivityEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *repository) List(ctx context.Context, params pagination.Params) ([]models.ActivityEntry, int64, error) {
	normalized := params.Normalize()

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&models.ActivityEntry{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var entries []models.ActivityEntry
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Order("id DESC").
		Offset(normalized.Offset()).
		Limit(normalized.Limit).
		Find(&entries).Error; err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}
