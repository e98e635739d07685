package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/internal/donations"
	"github.com/mealbridge/mealbridge-backend/internal/ngos"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

// PlatformStats aggregates platform-wide counters. Everything is recomputed
// from the donation table on each call rather than read from the
// denormalized counters.
type PlatformStats struct {
	DonationsByStatus map[enums.DonationStatus]int64 `json:"donations_by_status"`
	TotalDonations    int64                          `json:"total_donations"`
	PointsAwarded     int64                          `json:"points_awarded"`
	DonorCount        int64                          `json:"donor_count"`
	StaffCount        int64                          `json:"staff_count"`
	NGOCount          int64                          `json:"ngo_count"`
}

// UserStats describes a single donor's standing.
type UserStats struct {
	Points             int       `json:"points"`
	TotalDonations     int       `json:"total_donations"`
	ActiveDonations    int       `json:"active_donations"`
	CompletedDonations int64     `json:"completed_donations"`
	Rank               int       `json:"rank"`
	JoinedAt           time.Time `json:"joined_at"`
}

// LeaderboardEntry is one row of the donor leaderboard.
type LeaderboardEntry struct {
	Rank           int       `json:"rank"`
	UserID         uuid.UUID `json:"user_id"`
	FullName       string    `json:"full_name"`
	AvatarURL      *string   `json:"avatar_url,omitempty"`
	Points         int       `json:"points"`
	TotalDonations int       `json:"total_donations"`
}

// LeaderboardResult bundles the truncated board with the requester's own
// entry, which is present even when they fall outside the limit.
type LeaderboardResult struct {
	Entries   []LeaderboardEntry `json:"entries"`
	Requester *LeaderboardEntry  `json:"requester,omitempty"`
}

// Service defines the stats and leaderboard surface.
type Service interface {
	Platform(ctx context.Context) (*PlatformStats, error)
	ForUser(ctx context.Context, userID uuid.UUID) (*UserStats, error)
	Leaderboard(ctx context.Context, requesterID uuid.UUID, limit int) (*LeaderboardResult, error)
}

type service struct {
	donations donations.Repository
	users     users.Repository
	ngos      ngos.Repository
	cfg       config.LeaderboardConfig
}

// NewService builds a stats service with the required dependencies.
func NewService(donationsRepo donations.Repository, usersRepo users.Repository, ngosRepo ngos.Repository, cfg config.LeaderboardConfig) (Service, error) {
	if donationsRepo == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if ngosRepo == nil {
		return nil, fmt.Errorf("ngos repository required")
	}
	return &service{
		donations: donationsRepo,
		users:     usersRepo,
		ngos:      ngosRepo,
		cfg:       cfg,
	}, nil
}

func (s *service) Platform(ctx context.Context) (*PlatformStats, error) {
	counts, err := s.donations.CountsByStatus(ctx, nil)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting donations")
	}
	var total int64
	for _, count := range counts {
		total += count
	}

	points, err := s.donations.SumPointsByStatus(ctx, enums.DonationStatusCompleted)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "summing awarded points")
	}

	donorCount, err := s.users.CountByRole(ctx, enums.UserRoleDonor)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting donors")
	}
	staffCount, err := s.users.CountByRole(ctx, enums.UserRoleStaff)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting staff")
	}
	ngoCount, err := s.ngos.Count(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting organizations")
	}

	return &PlatformStats{
		DonationsByStatus: counts,
		TotalDonations:    total,
		PointsAwarded:     points,
		DonorCount:        donorCount,
		StaffCount:        staffCount,
		NGOCount:          ngoCount,
	}, nil
}

func (s *service) ForUser(ctx context.Context, userID uuid.UUID) (*UserStats, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	completed, err := s.donations.CountForDonor(ctx, userID, []enums.DonationStatus{enums.DonationStatusCompleted})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting completed donations")
	}

	donors, err := s.users.ListDonorsByPoints(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "ranking donors")
	}

	return &UserStats{
		Points:             user.Points,
		TotalDonations:     user.TotalDonations,
		ActiveDonations:    user.ActiveDonations,
		CompletedDonations: completed,
		Rank:               rankFor(donors, user),
		JoinedAt:           user.CreatedAt,
	}, nil
}

func (s *service) Leaderboard(ctx context.Context, requesterID uuid.UUID, limit int) (*LeaderboardResult, error) {
	limit = s.normalizeLimit(limit)

	donors, err := s.users.ListDonorsByPoints(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing donors")
	}

	result := &LeaderboardResult{Entries: []LeaderboardEntry{}}
	for i, donor := range donors {
		entry := LeaderboardEntry{
			Rank:           i + 1,
			UserID:         donor.ID,
			FullName:       donor.FullName,
			AvatarURL:      donor.AvatarURL,
			Points:         donor.Points,
			TotalDonations: donor.TotalDonations,
		}
		if i < limit {
			result.Entries = append(result.Entries, entry)
		}
		if donor.ID == requesterID {
			requester := entry
			result.Requester = &requester
		}
	}
	return result, nil
}

func (s *service) normalizeLimit(limit int) int {
	if limit <= 0 {
		if s.cfg.DefaultLimit > 0 {
			return s.cfg.DefaultLimit
		}
		return 10
	}
	if s.cfg.MaxLimit > 0 && limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

// rankFor assigns the donor's ordinal position in the points ordering.
// Tied donors do not share a rank: whoever sorts earlier ranks higher.
func rankFor(donors []models.User, user *models.User) int {
	for i, donor := range donors {
		if donor.ID == user.ID {
			return i + 1
		}
	}
	return 1
}
