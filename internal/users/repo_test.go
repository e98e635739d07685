package users

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
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  full_name TEXT NOT NULL,
  role TEXT NOT NULL,
  ngo_id TEXT,
  avatar_url TEXT,
  points INTEGER NOT NULL DEFAULT 0,
  total_donations INTEGER NOT NULL DEFAULT 0,
  active_donations INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string, role enums.UserRole, points int, createdAt time.Time) *models.User {
	t.Helper()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: "x",
		FullName:     "Test User",
		Role:         role,
		Points:       points,
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestRepositoryApplyCounterDeltas(t *testing.T) {
	ctx := context.Background()
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	user := seedUser(t, db, "dana@example.com", enums.UserRoleDonor, 10, time.Now().UTC())

	require.NoError(t, repo.ApplyCounterDeltas(ctx, user.ID, CounterDeltas{
		Points:          50,
		TotalDonations:  1,
		ActiveDonations: 1,
	}))
	require.NoError(t, repo.ApplyCounterDeltas(ctx, user.ID, CounterDeltas{ActiveDonations: -1}))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 60, reloaded.Points)
	assert.Equal(t, 1, reloaded.TotalDonations)
	assert.Equal(t, 0, reloaded.ActiveDonations)

	// An all-zero delta is a no-op rather than an empty UPDATE.
	require.NoError(t, repo.ApplyCounterDeltas(ctx, user.ID, CounterDeltas{}))
}

func TestRepositorySetCounters(t *testing.T) {
	ctx := context.Background()
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	user := seedUser(t, db, "dana@example.com", enums.UserRoleDonor, 40, time.Now().UTC())
	require.NoError(t, repo.ApplyCounterDeltas(ctx, user.ID, CounterDeltas{ActiveDonations: 7}))

	require.NoError(t, repo.SetCounters(ctx, user.ID, 2, 3))

	reloaded, err := repo.FindByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, reloaded.ActiveDonations)
	assert.Equal(t, 3, reloaded.TotalDonations)
	assert.Equal(t, 40, reloaded.Points)
}

func TestRepositoryListDonorsByPoints(t *testing.T) {
	ctx := context.Background()
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	second := seedUser(t, db, "b@example.com", enums.UserRoleDonor, 80, base.Add(time.Hour))
	first := seedUser(t, db, "a@example.com", enums.UserRoleDonor, 100, base)
	earlierTie := seedUser(t, db, "c@example.com", enums.UserRoleDonor, 80, base)
	seedUser(t, db, "staff@example.com", enums.UserRoleStaff, 999, base)

	donors, err := repo.ListDonorsByPoints(ctx)
	require.NoError(t, err)
	require.Len(t, donors, 3)
	assert.Equal(t, first.ID, donors[0].ID)
	assert.Equal(t, earlierTie.ID, donors[1].ID)
	assert.Equal(t, second.ID, donors[2].ID)
}

func TestRepositoryProfileAndLookups(t *testing.T) {
	ctx := context.Background()
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	user := seedUser(t, db, "dana@example.com", enums.UserRoleDonor, 0, time.Now().UTC())

	name := "Dana Renamed"
	avatar := "https://cdn.example.com/dana.png"
	require.NoError(t, repo.UpdateProfile(ctx, user.ID, ProfileUpdate{FullName: &name, AvatarURL: &avatar}))

	byEmail, err := repo.FindByEmail(ctx, "dana@example.com")
	require.NoError(t, err)
	assert.Equal(t, name, byEmail.FullName)
	require.NotNil(t, byEmail.AvatarURL)
	assert.Equal(t, avatar, *byEmail.AvatarURL)

	count, err := repo.CountByRole(ctx, enums.UserRoleDonor)
	require.NoError(t, err)
	assert.EqualValues(t, 1, count)

	_, err = repo.FindByEmail(ctx, "missing@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
