package donations

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

// ListQuery narrows and orders a donation listing.
type ListQuery struct {
	DonorID  *uuid.UUID
	Statuses []enums.DonationStatus
	Status   *enums.DonationStatus
	Priority *enums.DonationPriority
	SortBy   string
	SortDesc bool
	Page     pagination.Params
}

var allowedSortColumns = map[string]string{
	"created_at": "created_at",
	"points":     "points",
	"priority":   "priority",
	"status":     "status",
	"volume":     "volume",
}

// Repository manages persistence for donations.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donation *models.Donation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	Update(ctx context.Context, donation *models.Donation) error
	List(ctx context.Context, query ListQuery) ([]models.Donation, int64, error)
	ListByStatuses(ctx context.Context, statuses []enums.DonationStatus) ([]models.Donation, error)
	CountsByStatus(ctx context.Context, donorID *uuid.UUID) (map[enums.DonationStatus]int64, error)
	CountForDonor(ctx context.Context, donorID uuid.UUID, statuses []enums.DonationStatus) (int64, error)
	CountForNGO(ctx context.Context, ngoID uuid.UUID, statuses []enums.DonationStatus) (int64, error)
	SumPointsByStatus(ctx context.Context, status enums.DonationStatus) (int64, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a donation repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).First(&donation, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &donation, nil
}

func (r *repository) Update(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Save(donation).Error
}

func (r *repository) List(ctx context.Context, query ListQuery) ([]models.Donation, int64, error) {
	applyFilters := func(db *gorm.DB) *gorm.DB {
		if query.DonorID != nil {
			db = db.Where("donor_id = ?", *query.DonorID)
		}
		if len(query.Statuses) > 0 {
			db = db.Where("status IN ?", query.Statuses)
		}
		if query.Status != nil {
			db = db.Where("status = ?", *query.Status)
		}
		if query.Priority != nil {
			db = db.Where("priority = ?", *query.Priority)
		}
		return db
	}

	var total int64
	if err := applyFilters(r.db.WithContext(ctx).Model(&models.Donation{})).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := allowedSortColumns[query.SortBy]
	if !ok {
		column = "created_at"
		query.SortDesc = true
	}
	direction := "ASC"
	if query.SortDesc {
		direction = "DESC"
	}

	page := query.Page.Normalize()
	var donations []models.Donation
	if err := applyFilters(r.db.WithContext(ctx)).
		Order(column + " " + direction).
		Order("id ASC").
		Offset(page.Offset()).
		Limit(page.Limit).
		Find(&donations).Error; err != nil {
		return nil, 0, err
	}
	return donations, total, nil
}

func (r *repository) ListByStatuses(ctx context.Context, statuses []enums.DonationStatus) ([]models.Donation, error) {
	var donations []models.Donation
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("created_at DESC").
		Find(&donations).Error; err != nil {
		return nil, err
	}
	return donations, nil
}

func (r *repository) CountsByStatus(ctx context.Context, donorID *uuid.UUID) (map[enums.DonationStatus]int64, error) {
	type statusCount struct {
		Status enums.DonationStatus
		Count  int64
	}

	query := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Select("status, COUNT(*) AS count").
		Group("status")
	if donorID != nil {
		query = query.Where("donor_id = ?", *donorID)
	}

	var rows []statusCount
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[enums.DonationStatus]int64, len(enums.DonationStatuses()))
	for _, status := range enums.DonationStatuses() {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *repository) CountForDonor(ctx context.Context, donorID uuid.UUID, statuses []enums.DonationStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("donor_id = ?", donorID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) CountForNGO(ctx context.Context, ngoID uuid.UUID, statuses []enums.DonationStatus) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("assigned_ngo_id = ?", ngoID)
	if len(statuses) > 0 {
		query = query.Where("status IN ?", statuses)
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *repository) SumPointsByStatus(ctx context.Context, status enums.DonationStatus) (int64, error) {
	var sum *int64
	if err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("status = ?", status).
		Select("SUM(points)").
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	if sum == nil {
		return 0, nil
	}
	return *sum, nil
}
