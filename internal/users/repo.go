package users

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

// CounterDeltas describes atomic adjustments to a user's denormalized counters.
// Zero fields are left untouched.
type CounterDeltas struct {
	Points          int
	TotalDonations  int
	ActiveDonations int
}

// ProfileUpdate carries the fields a user may change on their own profile.
type ProfileUpdate struct {
	FullName  *string
	AvatarURL *string
}

// Repository manages persistence for users.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) error
	ApplyCounterDeltas(ctx context.Context, id uuid.UUID, deltas CounterDeltas) error
	SetCounters(ctx context.Context, id uuid.UUID, activeDonations, totalDonations int) error
	ListDonorsByPoints(ctx context.Context) ([]models.User, error)
	ListByRole(ctx context.Context, role enums.UserRole) ([]models.User, error)
	CountByRole(ctx context.Context, role enums.UserRole) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a user repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *repository) UpdateProfile(ctx context.Context, id uuid.UUID, update ProfileUpdate) error {
	fields := map[string]any{}
	if update.FullName != nil {
		fields["full_name"] = *update.FullName
	}
	if update.AvatarURL != nil {
		fields["avatar_url"] = *update.AvatarURL
	}
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) ApplyCounterDeltas(ctx context.Context, id uuid.UUID, deltas CounterDeltas) error {
	fields := map[string]any{}
	if deltas.Points != 0 {
		fields["points"] = gorm.Expr("points + ?", deltas.Points)
	}
	if deltas.TotalDonations != 0 {
		fields["total_donations"] = gorm.Expr("total_donations + ?", deltas.TotalDonations)
	}
	if deltas.ActiveDonations != 0 {
		fields["active_donations"] = gorm.Expr("active_donations + ?", deltas.ActiveDonations)
	}
	if len(fields) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(fields).Error
}

func (r *repository) SetCounters(ctx context.Context, id uuid.UUID, activeDonations, totalDonations int) error {
	return r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"active_donations": activeDonations,
			"total_donations":  totalDonations,
		}).Error
}

func (r *repository) ListDonorsByPoints(ctx context.Context) ([]models.User, error) {
	var donors []models.User
	if err := r.db.WithContext(ctx).
		Where("role = ?", enums.UserRoleDonor).
		Order("points DESC").
		Order("created_at ASC").
		Order("id ASC").
		Find(&donors).Error; err != nil {
		return nil, err
	}
	return donors, nil
}

func (r *repository) ListByRole(ctx context.Context, role enums.UserRole) ([]models.User, error) {
	var users []models.User
	if err := r.db.WithContext(ctx).
		Where("role = ?", role).
		Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *repository) CountByRole(ctx context.Context, role enums.UserRole) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.User{}).
		Where("role = ?", role).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
