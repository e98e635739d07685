package donations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/internal/activity"
	"github.com/mealbridge/mealbridge-backend/internal/ngos"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/metrics"
	"github.com/mealbridge/mealbridge-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service defines the donation lifecycle operations.
type Service interface {
	Create(ctx context.Context, actor Actor, input CreateInput) (*models.Donation, error)
	Transition(ctx context.Context, actor Actor, donationID uuid.UUID, input TransitionInput) (*models.Donation, error)
	Get(ctx context.Context, actor Actor, donationID uuid.UUID) (*models.Donation, error)
	List(ctx context.Context, actor Actor, input ListInput) (*ListResult, error)
	ListForMap(ctx context.Context) ([]models.Donation, error)
}

type service struct {
	repo     Repository
	users    users.Repository
	ngos     ngos.Repository
	activity activity.Recorder
	tx       txRunner
	metrics  *metrics.DonationMetrics
}

// NewService builds a donation service with the required dependencies.
func NewService(repo Repository, usersRepo users.Repository, ngosRepo ngos.Repository, recorder activity.Recorder, tx txRunner, donationMetrics *metrics.DonationMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("donations repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if ngosRepo == nil {
		return nil, fmt.Errorf("ngos repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		repo:     repo,
		users:    usersRepo,
		ngos:     ngosRepo,
		activity: recorder,
		tx:       tx,
		metrics:  donationMetrics,
	}, nil
}

func (s *service) Create(ctx context.Context, actor Actor, input CreateInput) (*models.Donation, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if !input.Volume.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid volume %q", input.Volume))
	}
	if !input.Priority.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid priority %q", input.Priority))
	}

	var created *models.Donation
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		usersRepo := s.users.WithTx(tx)
		donor, err := usersRepo.FindByID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "donor not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading donor")
		}

		ngosRepo := s.ngos.WithTx(tx)
		assigned, err := ngosRepo.FindOldest(ctx)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "assigning pickup organization")
		}

		donation := &models.Donation{
			DonorID:        donor.ID,
			DonorName:      donor.FullName,
			Address:        input.Address,
			Latitude:       input.Latitude,
			Longitude:      input.Longitude,
			Volume:         input.Volume,
			Priority:       input.Priority,
			Points:         PointsFor(input.Volume, input.Priority),
			VolumeServings: ServingsFor(input.Volume),
			Status:         enums.DonationStatusPending,
			Description:    input.Description,
			ImageURL:       input.ImageURL,
		}
		if assigned != nil {
			donation.AssignedNGOID = &assigned.ID
		}

		repo := s.repo.WithTx(tx)
		if err := repo.Create(ctx, donation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating donation")
		}

		if err := usersRepo.ApplyCounterDeltas(ctx, donor.ID, users.CounterDeltas{ActiveDonations: 1}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating donor counters")
		}
		if assigned != nil {
			if err := ngosRepo.ApplyCounterDeltas(ctx, assigned.ID, ngos.CounterDeltas{ActivePickups: 1}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating pickup counters")
			}
		}

		targetType := "donation"
		if err := s.activity.Record(ctx, tx, activity.Entry{
			Action:      enums.ActivityDonationCreated,
			Description: fmt.Sprintf("%s registered a %s donation", donor.FullName, donation.Volume),
			ActorUserID: &donor.ID,
			ActorName:   &donor.FullName,
			TargetID:    &donation.ID,
			TargetType:  &targetType,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording activity")
		}

		created = donation
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncCreated()
	return created, nil
}

func (s *service) Transition(ctx context.Context, actor Actor, donationID uuid.UUID, input TransitionInput) (*models.Donation, error) {
	if actor.UserID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "user identity missing")
	}
	if donationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}
	if !input.NewStatus.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", input.NewStatus))
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		donation, err := repo.FindByID(ctx, donationID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading donation")
		}

		previous := donation.Status
		if !previous.CanTransitionTo(input.NewStatus) {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "state transition disallowed").
				WithDetails(map[string]any{
					"from": previous.String(),
					"to":   input.NewStatus.String(),
				})
		}

		usersRepo := s.users.WithTx(tx)
		staffActor, err := usersRepo.FindByID(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeUnauthorized, "actor not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading actor")
		}

		now := time.Now().UTC()
		donation.Status = input.NewStatus
		switch input.NewStatus {
		case enums.DonationStatusDeclined:
			donation.DeclineReason = input.DeclineReason
		case enums.DonationStatusCompleted:
			donation.CompletedAt = &now
			donation.CompletedByStaffID = &staffActor.ID
		}
		if err := repo.Update(ctx, donation); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "persisting donation")
		}

		ngosRepo := s.ngos.WithTx(tx)
		donorDeltas := users.CounterDeltas{}

		if input.NewStatus == enums.DonationStatusCompleted {
			donorDeltas.Points = donation.Points
			donorDeltas.TotalDonations = 1
			if donation.AssignedNGOID != nil {
				if err := ngosRepo.ApplyCounterDeltas(ctx, *donation.AssignedNGOID, ngos.CounterDeltas{
					CompletedPickups: 1,
					ActivePickups:    -1,
				}); err != nil {
					return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating pickup counters")
				}
			}
		}

		if input.NewStatus == enums.DonationStatusDeclined && donation.AssignedNGOID != nil {
			if err := ngosRepo.ApplyCounterDeltas(ctx, *donation.AssignedNGOID, ngos.CounterDeltas{
				ActivePickups: -1,
			}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating pickup counters")
			}
		}

		// A donation leaving the in-flight states releases exactly one slot
		// on the donor, regardless of which terminal state it entered.
		if previous.InFlight() && input.NewStatus.IsTerminal() {
			donorDeltas.ActiveDonations = -1
		}
		if err := usersRepo.ApplyCounterDeltas(ctx, donation.DonorID, donorDeltas); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating donor counters")
		}

		description := fmt.Sprintf("Donation from %s marked %s", donation.DonorName, input.NewStatus)
		if input.NewStatus == enums.DonationStatusCompleted {
			description = fmt.Sprintf("Donation from %s completed, %d points awarded", donation.DonorName, donation.Points)
		}
		targetType := "donation"
		if err := s.activity.Record(ctx, tx, activity.Entry{
			Action:      enums.DonationActivityAction(input.NewStatus),
			Description: description,
			ActorUserID: &staffActor.ID,
			ActorName:   &staffActor.FullName,
			TargetID:    &donation.ID,
			TargetType:  &targetType,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording activity")
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncTransition(input.NewStatus.String())

	updated, err := s.repo.FindByID(ctx, donationID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reloading donation")
	}
	return updated, nil
}

func (s *service) Get(ctx context.Context, actor Actor, donationID uuid.UUID) (*models.Donation, error) {
	if donationID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "donation id required")
	}

	donation, err := s.repo.FindByID(ctx, donationID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donation not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading donation")
	}

	if actor.Role == enums.UserRoleDonor && donation.DonorID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "donation belongs to another donor")
	}
	return donation, nil
}

func (s *service) List(ctx context.Context, actor Actor, input ListInput) (*ListResult, error) {
	query := ListQuery{
		Status:   input.Status,
		Priority: input.Priority,
		SortBy:   input.SortBy,
		SortDesc: input.SortDesc,
		Page:     input.Page,
	}

	var countScope *uuid.UUID
	switch actor.Role {
	case enums.UserRoleDonor:
		donorID := actor.UserID
		query.DonorID = &donorID
		countScope = &donorID
	case enums.UserRoleStaff:
		query.Statuses = []enums.DonationStatus{enums.DonationStatusPending, enums.DonationStatusActive}
	case enums.UserRoleAdmin:
	default:
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "unknown role")
	}

	donationRows, total, err := s.repo.List(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing donations")
	}

	counts, err := s.repo.CountsByStatus(ctx, countScope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "counting donations")
	}

	return &ListResult{
		Donations: donationRows,
		Meta:      pagination.MetaFor(input.Page, total),
		Counts:    counts,
	}, nil
}

func (s *service) ListForMap(ctx context.Context) ([]models.Donation, error) {
	donationRows, err := s.repo.ListByStatuses(ctx, []enums.DonationStatus{
		enums.DonationStatusPending,
		enums.DonationStatusActive,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing donations")
	}
	return donationRows, nil
}
