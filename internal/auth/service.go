package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/internal/activity"
	"github.com/mealbridge/mealbridge-backend/internal/ngos"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	pkgauth "github.com/mealbridge/mealbridge-backend/pkg/auth"
	"github.com/mealbridge/mealbridge-backend/pkg/auth/session"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid email or password"

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type sessionManager interface {
	Generate(ctx context.Context, accessID string, userID uuid.UUID) error
	Revoke(ctx context.Context, accessID string) error
}

// Service defines registration, login, and profile operations.
type Service interface {
	Register(ctx context.Context, input RegisterInput) (*Session, error)
	Login(ctx context.Context, input LoginInput) (*Session, error)
	Logout(ctx context.Context, accessID string) error
	Me(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*Profile, error)
}

type service struct {
	users    users.Repository
	ngos     ngos.Repository
	activity activity.Recorder
	sessions sessionManager
	tx       txRunner
	jwtCfg   config.JWTConfig
	pwCfg    config.PasswordConfig
}

// NewService builds an auth service with the required dependencies.
func NewService(usersRepo users.Repository, ngosRepo ngos.Repository, recorder activity.Recorder, sessions sessionManager, tx txRunner, jwtCfg config.JWTConfig, pwCfg config.PasswordConfig) (Service, error) {
	if usersRepo == nil {
		return nil, fmt.Errorf("users repository required")
	}
	if ngosRepo == nil {
		return nil, fmt.Errorf("ngos repository required")
	}
	if recorder == nil {
		return nil, fmt.Errorf("activity recorder required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("session manager required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{
		users:    usersRepo,
		ngos:     ngosRepo,
		activity: recorder,
		sessions: sessions,
		tx:       tx,
		jwtCfg:   jwtCfg,
		pwCfg:    pwCfg,
	}, nil
}

func (s *service) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "email required")
	}
	if input.Role != enums.UserRoleDonor && input.Role != enums.UserRoleStaff {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("role %q cannot self-register", input.Role))
	}
	if err := security.ValidatePasswordStrength(input.Password); err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, err.Error())
	}
	if input.Role == enums.UserRoleStaff && input.NGOID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "staff accounts require an organization")
	}

	hash, err := security.HashPassword(input.Password, s.pwCfg)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hashing password")
	}

	var created *models.User
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		usersRepo := s.users.WithTx(tx)

		if _, err := usersRepo.FindByEmail(ctx, email); err == nil {
			return pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking email")
		}

		user := &models.User{
			Email:        email,
			PasswordHash: hash,
			FullName:     input.FullName,
			Role:         input.Role,
		}

		ngosRepo := s.ngos.WithTx(tx)
		if input.Role == enums.UserRoleStaff {
			ngo, err := ngosRepo.FindByID(ctx, *input.NGOID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return pkgerrors.New(pkgerrors.CodeValidation, "unknown organization")
				}
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading organization")
			}
			user.NGOID = &ngo.ID
		}

		if err := usersRepo.Create(ctx, user); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating user")
		}

		if user.Role == enums.UserRoleStaff {
			if err := ngosRepo.ApplyCounterDeltas(ctx, *user.NGOID, ngos.CounterDeltas{StaffCount: 1}); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating staff count")
			}
		}

		targetType := "user"
		if err := s.activity.Record(ctx, tx, activity.Entry{
			Action:      enums.ActivityUserRegistered,
			Description: fmt.Sprintf("%s joined as %s", user.FullName, user.Role),
			ActorUserID: &user.ID,
			ActorName:   &user.FullName,
			TargetID:    &user.ID,
			TargetType:  &targetType,
		}); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "recording activity")
		}

		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.issueSession(ctx, created, 0)
}

func (s *service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}

	ok, err := security.VerifyPassword(input.Password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verifying password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}

	var ttl time.Duration
	if input.RememberMe {
		ttl = s.jwtCfg.RememberMeTTL()
	}
	return s.issueSession(ctx, user, ttl)
}

func (s *service) Logout(ctx context.Context, accessID string) error {
	if strings.TrimSpace(accessID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "session identity missing")
	}
	if err := s.sessions.Revoke(ctx, accessID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoking session")
	}
	return nil
}

func (s *service) Me(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading user")
	}
	return s.buildProfile(ctx, user)
}

func (s *service) UpdateMe(ctx context.Context, userID uuid.UUID, input UpdateProfileInput) (*Profile, error) {
	if err := s.users.UpdateProfile(ctx, userID, users.ProfileUpdate{
		FullName:  input.FullName,
		AvatarURL: input.AvatarURL,
	}); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating profile")
	}
	return s.Me(ctx, userID)
}

func (s *service) buildProfile(ctx context.Context, user *models.User) (*Profile, error) {
	profile := &Profile{User: user}
	if user.Role == enums.UserRoleStaff && user.NGOID != nil {
		ngo, err := s.ngos.FindByID(ctx, *user.NGOID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading organization")
		}
		if ngo != nil {
			profile.NGOName = &ngo.Name
		}
	}
	return profile, nil
}

func (s *service) issueSession(ctx context.Context, user *models.User, ttl time.Duration) (*Session, error) {
	accessID := session.NewAccessID()
	token, err := pkgauth.MintAccessToken(s.jwtCfg, time.Now().UTC(), pkgauth.AccessTokenPayload{
		UserID: user.ID,
		Role:   user.Role,
		NGOID:  user.NGOID,
		JTI:    accessID,
	}, ttl)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "minting token")
	}
	if err := s.sessions.Generate(ctx, accessID, user.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "storing session")
	}
	return &Session{User: user, Token: token}, nil
}
