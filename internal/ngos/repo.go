package ngos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
)

// CounterDeltas describes atomic adjustments to an NGO's pickup counters.
// Zero fields are left untouched.
type CounterDeltas struct {
	StaffCount       int
	ActivePickups    int
	CompletedPickups int
}

// Repository manages persistence for partner organizations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, ngo *models.NGO) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.NGO, error)
	FindByEmail(ctx context.Context, email string) (*models.NGO, error)
	FindOldest(ctx context.Context) (*models.NGO, error)
	List(ctx context.Context) ([]models.NGO, error)
	Update(ctx context.Context, ngo *models.NGO) error
	Delete(ctx context.Context, id uuid.UUID) error
	ApplyCounterDeltas(ctx context.Context, id uuid.UUID, deltas CounterDeltas) error
	SetPickupCounters(ctx context.Context, id uuid.UUID, activePickups, completedPickups int) error
	Count(ctx context.Context) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an NGO repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, ngo *models.NGO) error {
	return r.db.WithContext(ctx).Create(ngo).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.NGO, error) {
	var ngo models.NGO
	if err := r.db.WithContext(ctx).First(&ngo, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ngo, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.NGO, error) {
	var ngo models.NGO
	if err := r.db.WithContext(ctx).First(&ngo, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &ngo, nil
}

// FindOldest returns the earliest-created NGO, used for pickup assignment.
func (r *repository) FindOldest(ctx context.Context) (*models.NGO, error) {
	var ngo models.NGO
	if err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		First(&ngo).Error; err != nil {
		return nil, err
	}
	return &ngo, nil
}

func (r *repository) List(ctx context.Context) ([]models.NGO, error) {
	var ngos []models.NGO
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&ngos).Error; err != nil {
		return nil, err
	}
	return ngos, nil
}

func (r *repository) Update(ctx context.Context, ngo *models.NGO) error {
	return r.db.WithContext(ctx).Save(ngo).Error
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.NGO{}, "id = ?", id).Error
}

func (r *repository) ApplyCounterDeltas(ctx context.Context, id uuid.UUID, deltas CounterDeltas) error {
	fields := map[string]any{}
	if deltas.StaffCount != 0 {
		fields["staff_count"] = gorm.Expr("staff_count + ?", deltas.StaffCount)
	}
	if deltas.ActivePickups != 0 {
		fields["active_pickups"] = gorm.Expr("active_pickups + ?", deltas.ActivePickups)
	}
	if deltas.CompletedPickups != 0 {
		fields["completed_pickups"] = gorm.Expr("completed_pickups + ?", deltas.CompletedPickups)
	}
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.NGO{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) SetPickupCounters(ctx context.Context, id uuid.UUID, activePickups, completedPickups int) error {
	return r.db.WithContext(ctx).
		Model(&models.NGO{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active_pickups":    activePickups,
			"completed_pickups": completedPickups,
		}).Error
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.NGO{}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
