package donations

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

func setupDonationsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS donations (
  id TEXT PRIMARY KEY,
  donor_id TEXT NOT NULL,
  donor_name TEXT NOT NULL,
  assigned_ngo_id TEXT,
  address TEXT NOT NULL,
  latitude REAL NOT NULL,
  longitude REAL NOT NULL,
  volume TEXT NOT NULL,
  priority TEXT NOT NULL,
  points INTEGER NOT NULL,
  volume_servings INTEGER NOT NULL,
  status TEXT NOT NULL,
  description TEXT,
  image_url TEXT,
  decline_reason TEXT,
  completed_by_staff_id TEXT,
  completed_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedDonation(t *testing.T, db *gorm.DB, donorID uuid.UUID, status enums.DonationStatus, points int, createdAt time.Time) *models.Donation {
	t.Helper()
	donation := &models.Donation{
		ID:             uuid.New(),
		DonorID:        donorID,
		DonorName:      "Dana Donor",
		Address:        "12 Main St",
		Volume:         enums.DonationVolumeMedium,
		Priority:       enums.DonationPriorityMedium,
		Points:         points,
		VolumeServings: 35,
		Status:         status,
		CreatedAt:      createdAt,
		UpdatedAt:      createdAt,
	}
	require.NoError(t, db.Create(donation).Error)
	return donation
}

func TestRepositoryListFiltersAndPaginates(t *testing.T) {
	ctx := context.Background()
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	donorA := uuid.New()
	donorB := uuid.New()
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	seedDonation(t, db, donorA, enums.DonationStatusPending, 25, base)
	seedDonation(t, db, donorA, enums.DonationStatusCompleted, 50, base.Add(time.Hour))
	seedDonation(t, db, donorB, enums.DonationStatusPending, 30, base.Add(2*time.Hour))

	rows, total, err := repo.List(ctx, ListQuery{
		DonorID: &donorA,
		Page:    pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)
	for _, row := range rows {
		assert.Equal(t, donorA, row.DonorID)
	}

	pending := enums.DonationStatusPending
	rows, total, err = repo.List(ctx, ListQuery{
		Status: &pending,
		Page:   pagination.Params{Page: 1, Limit: 10},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, rows, 2)

	rows, total, err = repo.List(ctx, ListQuery{
		SortBy:   "points",
		SortDesc: true,
		Page:     pagination.Params{Page: 1, Limit: 2},
	})
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, rows, 2)
	assert.Equal(t, 50, rows[0].Points)
	assert.Equal(t, 30, rows[1].Points)

	rows, _, err = repo.List(ctx, ListQuery{
		SortBy:   "points",
		SortDesc: true,
		Page:     pagination.Params{Page: 2, Limit: 2},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 25, rows[0].Points)
}

func TestRepositoryCountsByStatus(t *testing.T) {
	ctx := context.Background()
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	donorA := uuid.New()
	donorB := uuid.New()
	now := time.Now().UTC()

	seedDonation(t, db, donorA, enums.DonationStatusPending, 25, now)
	seedDonation(t, db, donorA, enums.DonationStatusCompleted, 50, now)
	seedDonation(t, db, donorB, enums.DonationStatusCompleted, 30, now)

	counts, err := repo.CountsByStatus(ctx, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 1, counts[enums.DonationStatusPending])
	assert.EqualValues(t, 2, counts[enums.DonationStatusCompleted])
	assert.EqualValues(t, 0, counts[enums.DonationStatusActive])
	assert.EqualValues(t, 0, counts[enums.DonationStatusDeclined])

	scoped, err := repo.CountsByStatus(ctx, &donorA)
	require.NoError(t, err)
	assert.EqualValues(t, 1, scoped[enums.DonationStatusPending])
	assert.EqualValues(t, 1, scoped[enums.DonationStatusCompleted])
}

func TestRepositoryAggregates(t *testing.T) {
	ctx := context.Background()
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	donor := uuid.New()
	ngoID := uuid.New()
	now := time.Now().UTC()

	first := seedDonation(t, db, donor, enums.DonationStatusCompleted, 50, now)
	second := seedDonation(t, db, donor, enums.DonationStatusPending, 25, now)
	require.NoError(t, db.Model(first).Update("assigned_ngo_id", ngoID).Error)
	require.NoError(t, db.Model(second).Update("assigned_ngo_id", ngoID).Error)

	completedCount, err := repo.CountForDonor(ctx, donor, []enums.DonationStatus{enums.DonationStatusCompleted})
	require.NoError(t, err)
	assert.EqualValues(t, 1, completedCount)

	inFlight, err := repo.CountForNGO(ctx, ngoID, []enums.DonationStatus{enums.DonationStatusPending, enums.DonationStatusActive})
	require.NoError(t, err)
	assert.EqualValues(t, 1, inFlight)

	sum, err := repo.SumPointsByStatus(ctx, enums.DonationStatusCompleted)
	require.NoError(t, err)
	assert.EqualValues(t, 50, sum)

	emptySum, err := repo.SumPointsByStatus(ctx, enums.DonationStatusDeclined)
	require.NoError(t, err)
	assert.EqualValues(t, 0, emptySum)
}

func TestRepositoryListByStatuses(t *testing.T) {
	ctx := context.Background()
	db := setupDonationsTestDB(t)
	repo := NewRepository(db)

	donor := uuid.New()
	now := time.Now().UTC()
	seedDonation(t, db, donor, enums.DonationStatusPending, 25, now)
	seedDonation(t, db, donor, enums.DonationStatusActive, 25, now)
	seedDonation(t, db, donor, enums.DonationStatusDeclined, 25, now)

	rows, err := repo.ListByStatuses(ctx, []enums.DonationStatus{
		enums.DonationStatusPending,
		enums.DonationStatusActive,
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
