package ngos

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/internal/activity"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// CreateInput captures the data required to register a partner organization.
type CreateInput struct {
	Name      string
	Address   string
	Email     string
	Phone     *string
	Latitude  float64
	Longitude float64
}

// UpdateInput carries the fields an admin may change. Nil fields are ignored.
type UpdateInput struct {
	Name      *string
	Address   *string
	Email     *string
	Phone     *string
	Latitude  *float64
	Longitude *float64
}

// Service defines NGO management operations.
type Service interface {
	Create(ctx context.Context, actorID uuid.UUID, input CreateInput) (*models.NGO, error)
	List(ctx context.Context) ([]models.NGO, error)
	Get(ctx context.Context, id uuid.UUID) (*models.NGO, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.NGO, error)
	Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error
}

type service struct {
	repo     Repository
	users    users.Repository
	activity activity.Recorder
	tx       txRunner
}

// NewService builds an NGO service with the required dependencies.
func NewService(repo Repository, usersRepo users.Repository, recorder activity.Recorder, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ngos repository required")
	}
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, users: usersRepo, activity: recorder, tx: tx}, nil
}

// actorName resolves the acting admin's display name for the audit trail. A
// missing user is tolerated so audit logging never blocks the operation.
func (s *service) actorName(ctx context.Context, actorID uuid.UUID) *string {
	user, err := s.users.FindByID(ctx, actorID)
	if err != nil {
		return nil
	}
	return &user.FullName
}

func (s *service) Create(ctx context.Context, actorID uuid.UUID, input CreateInput) (*models.NGO, error) {
	var created *models.NGO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if _, err := repo.FindByEmail(ctx, input.Email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "organization email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking organization email")
		}

		ngo := &models.NGO{
			Name:      input.Name,
			Address:   input.Address,
			Email:     input.Email,
			Phone:     input.Phone,
			Latitude:  input.Latitude,
			Longitude: input.Longitude,
		}
		if err := repo.Create(ctx, ngo); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating organization")
		}

		targetType := "ngo"
		if err := s.activity.Record(ctx, tx, activity.Entry{
			Action:      enums.ActivityNGOCreated,
			Description: fmt.Sprintf("Organization %s registered", ngo.Name),
			ActorUserID: &actorID,
			ActorName:   s.actorName(ctx, actorID),
			TargetID:    &ngo.ID,
			TargetType:  &targetType,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording activity")
		}

		created = ngo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (s *service) List(ctx context.Context) ([]models.NGO, error) {
	rows, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing organizations")
	}
	return rows, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.NGO, error) {
	ngo, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading organization")
	}
	return ngo, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.NGO, error) {
	var updated *models.NGO
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ngo, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading organization")
		}

		if input.Email != nil && *input.Email != ngo.Email {
			if existing, err := repo.FindByEmail(ctx, *input.Email); err == nil && existing.ID != ngo.ID {
				return pkgerrors.New(pkgerrors.CodeConflict, "organization email already registered")
			} else if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking organization email")
			}
			ngo.Email = *input.Email
		}
		if input.Name != nil {
			ngo.Name = *input.Name
		}
		if input.Address != nil {
			ngo.Address = *input.Address
		}
		if input.Phone != nil {
			ngo.Phone = input.Phone
		}
		if input.Latitude != nil {
			ngo.Latitude = *input.Latitude
		}
		if input.Longitude != nil {
			ngo.Longitude = *input.Longitude
		}

		if err := repo.Update(ctx, ngo); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating organization")
		}
		updated = ngo
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func (s *service) Delete(ctx context.Context, actorID uuid.UUID, id uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		ngo, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "organization not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading organization")
		}

		if ngo.StaffCount > 0 {
			return pkgerrors.New(pkgerrors.CodeConflict, "organization still has staff accounts").
				WithDetails(map[string]any{"staff_count": ngo.StaffCount})
		}

		if err := repo.Delete(ctx, ngo.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting organization")
		}

		targetType := "ngo"
		if err := s.activity.Record(ctx, tx, activity.Entry{
			Action:      enums.ActivityNGODeleted,
			Description: fmt.Sprintf("Organization %s removed", ngo.Name),
			ActorUserID: &actorID,
			ActorName:   s.actorName(ctx, actorID),
			TargetID:    &ngo.ID,
			TargetType:  &targetType,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording activity")
		}
		return nil
	})
}
