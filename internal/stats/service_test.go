package stats

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/internal/ngos"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
)

type stubDonationRepo struct {
	counts         map[enums.DonationStatus]int64
	completedSum   int64
	donorCompleted map[uuid.UUID]int64
}

func (r *stubDonationRepo) WithTx(tx *gorm.DB) donations.Repository { return r }

func (r *stubDonationRepo) Create(ctx context.Context, donation *models.Donation) error { return nil }

func (r *stubDonationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubDonationRepo) Update(ctx context.Context, donation *models.Donation) error { return nil }

func (r *stubDonationRepo) List(ctx context.Context, query donations.ListQuery) ([]models.Donation, int64, error) {
	return nil, 0, nil
}

func (r *stubDonationRepo) ListByStatuses(ctx context.Context, statuses []enums.DonationStatus) ([]models.Donation, error) {
	return nil, nil
}

func (r *stubDonationRepo) CountsByStatus(ctx context.Context, donorID *uuid.UUID) (map[enums.DonationStatus]int64, error) {
	return r.counts, nil
}

func (r *stubDonationRepo) CountForDonor(ctx context.Context, donorID uuid.UUID, statuses []enums.DonationStatus) (int64, error) {
	return r.donorCompleted[donorID], nil
}

func (r *stubDonationRepo) CountForNGO(ctx context.Context, ngoID uuid.UUID, statuses []enums.DonationStatus) (int64, error) {
	return 0, nil
}

func (r *stubDonationRepo) SumPointsByStatus(ctx context.Context, status enums.DonationStatus) (int64, error) {
	return r.completedSum, nil
}

type stubUsersRepo struct {
	byID      map[uuid.UUID]*models.User
	donors    []models.User
	roleCount map[enums.UserRole]int64
}

func (r *stubUsersRepo) WithTx(tx *gorm.DB) users.Repository { return r }

func (r *stubUsersRepo) Create(ctx context.Context, user *models.User) error { return nil }

func (r *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubUsersRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update users.ProfileUpdate) error {
	return nil
}

func (r *stubUsersRepo) ApplyCounterDeltas(ctx context.Context, id uuid.UUID, deltas users.CounterDeltas) error {
	return nil
}

func (r *stubUsersRepo) SetCounters(ctx context.Context, id uuid.UUID, activeDonations, totalDonations int) error {
	return nil
}

func (r *stubUsersRepo) ListDonorsByPoints(ctx context.Context) ([]models.User, error) {
	return r.donors, nil
}

func (r *stubUsersRepo) ListByRole(ctx context.Context, role enums.UserRole) ([]models.User, error) {
	return nil, nil
}

func (r *stubUsersRepo) CountByRole(ctx context.Context, role enums.UserRole) (int64, error) {
	return r.roleCount[role], nil
}

type stubNGOsRepo struct {
	count int64
}

func (r *stubNGOsRepo) WithTx(tx *gorm.DB) ngos.Repository { return r }

func (r *stubNGOsRepo) Create(ctx context.Context, ngo *models.NGO) error { return nil }

func (r *stubNGOsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.NGO, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubNGOsRepo) FindByEmail(ctx context.Context, email string) (*models.NGO, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubNGOsRepo) FindOldest(ctx context.Context) (*models.NGO, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *stubNGOsRepo) List(ctx context.Context) ([]models.NGO, error) { return nil, nil }

func (r *stubNGOsRepo) Update(ctx context.Context, ngo *models.NGO) error { return nil }

func (r *stubNGOsRepo) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (r *stubNGOsRepo) ApplyCounterDeltas(ctx context.Context, id uuid.UUID, deltas ngos.CounterDeltas) error {
	return nil
}

func (r *stubNGOsRepo) SetPickupCounters(ctx context.Context, id uuid.UUID, activePickups, completedPickups int) error {
	return nil
}

func (r *stubNGOsRepo) Count(ctx context.Context) (int64, error) { return r.count, nil }

func donor(name string, points, totalDonations int) models.User {
	return models.User{
		ID:             uuid.New(),
		FullName:       name,
		Role:           enums.UserRoleDonor,
		Points:         points,
		TotalDonations: totalDonations,
	}
}

func newStatsService(t *testing.T, donationRepo *stubDonationRepo, userRepo *stubUsersRepo, ngoRepo *stubNGOsRepo) Service {
	t.Helper()
	svc, err := NewService(donationRepo, userRepo, ngoRepo, config.LeaderboardConfig{DefaultLimit: 10, MaxLimit: 100})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	return svc
}

func TestPlatformStats(t *testing.T) {
	ctx := context.Background()
	donationRepo := &stubDonationRepo{
		counts: map[enums.DonationStatus]int64{
			enums.DonationStatusPending:   3,
			enums.DonationStatusActive:    1,
			enums.DonationStatusCompleted: 5,
			enums.DonationStatusDeclined:  2,
		},
		completedSum: 175,
	}
	userRepo := &stubUsersRepo{roleCount: map[enums.UserRole]int64{
		enums.UserRoleDonor: 7,
		enums.UserRoleStaff: 2,
	}}
	ngoRepo := &stubNGOsRepo{count: 3}

	svc := newStatsService(t, donationRepo, userRepo, ngoRepo)

	stats, err := svc.Platform(ctx)
	if err != nil {
		t.Fatalf("Platform returned error: %v", err)
	}
	if stats.TotalDonations != 11 {
		t.Fatalf("expected 11 total donations, got %d", stats.TotalDonations)
	}
	if stats.PointsAwarded != 175 {
		t.Fatalf("expected 175 points awarded, got %d", stats.PointsAwarded)
	}
	if stats.DonorCount != 7 || stats.StaffCount != 2 || stats.NGOCount != 3 {
		t.Fatalf("unexpected population counts %+v", stats)
	}
}

func TestForUserTiedDonorRanksLater(t *testing.T) {
	ctx := context.Background()

	first := donor("Alice", 100, 4)
	second := donor("Bob", 80, 3)
	third := donor("Cara", 80, 2)
	fourth := donor("Dave", 10, 1)
	fourth.CreatedAt = time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC)

	userRepo := &stubUsersRepo{
		byID:   map[uuid.UUID]*models.User{fourth.ID: &fourth, third.ID: &third, second.ID: &second},
		donors: []models.User{first, second, third, fourth},
	}
	donationRepo := &stubDonationRepo{donorCompleted: map[uuid.UUID]int64{third.ID: 2}}
	svc := newStatsService(t, donationRepo, userRepo, &stubNGOsRepo{})

	stats, err := svc.ForUser(ctx, second.ID)
	if err != nil {
		t.Fatalf("ForUser returned error: %v", err)
	}
	if stats.Rank != 2 {
		t.Fatalf("expected rank 2, got %d", stats.Rank)
	}

	// Cara is tied with Bob on points but sorts after him, so she ranks
	// strictly later rather than sharing his rank.
	stats, err = svc.ForUser(ctx, third.ID)
	if err != nil {
		t.Fatalf("ForUser returned error: %v", err)
	}
	if stats.Rank != 3 {
		t.Fatalf("expected tied donor to rank 3, got %d", stats.Rank)
	}
	if stats.CompletedDonations != 2 {
		t.Fatalf("expected 2 completed donations, got %d", stats.CompletedDonations)
	}

	stats, err = svc.ForUser(ctx, fourth.ID)
	if err != nil {
		t.Fatalf("ForUser returned error: %v", err)
	}
	if stats.Rank != 4 {
		t.Fatalf("expected rank 4, got %d", stats.Rank)
	}
	if !stats.JoinedAt.Equal(fourth.CreatedAt) {
		t.Fatalf("expected joined_at %v, got %v", fourth.CreatedAt, stats.JoinedAt)
	}
}

func TestForUserRankMatchesLeaderboardPosition(t *testing.T) {
	ctx := context.Background()

	first := donor("Alice", 60, 2)
	second := donor("Bob", 60, 1)

	userRepo := &stubUsersRepo{
		byID:   map[uuid.UUID]*models.User{first.ID: &first, second.ID: &second},
		donors: []models.User{first, second},
	}
	svc := newStatsService(t, &stubDonationRepo{}, userRepo, &stubNGOsRepo{})

	board, err := svc.Leaderboard(ctx, second.ID, 10)
	if err != nil {
		t.Fatalf("Leaderboard returned error: %v", err)
	}
	if board.Requester == nil {
		t.Fatal("expected requester entry")
	}

	stats, err := svc.ForUser(ctx, second.ID)
	if err != nil {
		t.Fatalf("ForUser returned error: %v", err)
	}
	if stats.Rank != board.Requester.Rank {
		t.Fatalf("ForUser rank %d disagrees with leaderboard rank %d", stats.Rank, board.Requester.Rank)
	}
}

func TestLeaderboardTruncatesAndKeepsRequester(t *testing.T) {
	ctx := context.Background()

	var donors []models.User
	for i := 0; i < 5; i++ {
		donors = append(donors, donor("Donor", 100-i*10, i))
	}
	requester := donors[4]

	userRepo := &stubUsersRepo{donors: donors}
	svc, err := NewService(&stubDonationRepo{}, userRepo, &stubNGOsRepo{}, config.LeaderboardConfig{DefaultLimit: 3, MaxLimit: 100})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}

	result, err := svc.Leaderboard(ctx, requester.ID, 0)
	if err != nil {
		t.Fatalf("Leaderboard returned error: %v", err)
	}
	if len(result.Entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(result.Entries))
	}
	for i, entry := range result.Entries {
		if entry.Rank != i+1 {
			t.Fatalf("expected rank %d, got %d", i+1, entry.Rank)
		}
	}
	if result.Requester == nil {
		t.Fatal("expected requester entry beyond the limit")
	}
	if result.Requester.Rank != 5 {
		t.Fatalf("expected requester rank 5, got %d", result.Requester.Rank)
	}
}
