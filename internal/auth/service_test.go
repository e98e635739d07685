package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mealbridge/mealbridge-backend/internal/activity"
	"github.com/mealbridge/mealbridge-backend/internal/ngos"
	"github.com/mealbridge/mealbridge-backend/internal/users"
	pkgauth "github.com/mealbridge/mealbridge-backend/pkg/auth"
	"github.com/mealbridge/mealbridge-backend/pkg/config"
	"github.com/mealbridge/mealbridge-backend/pkg/db/models"
	"github.com/mealbridge/mealbridge-backend/pkg/enums"
	pkgerrors "github.com/mealbridge/mealbridge-backend/pkg/errors"
	"github.com/mealbridge/mealbridge-backend/pkg/security"
)

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type stubUsersRepo struct {
	byEmail map[string]*models.User
	byID    map[uuid.UUID]*models.User
	updates []users.ProfileUpdate
}

func newStubUsersRepo() *stubUsersRepo {
	return &stubUsersRepo{
		byEmail: make(map[string]*models.User),
		byID:    make(map[uuid.UUID]*models.User),
	}
}

func (r *stubUsersRepo) WithTx(tx *gorm.DB) users.Repository { return r }

func (r *stubUsersRepo) Create(ctx context.Context, user *models.User) error {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.CreatedAt = time.Now().UTC()
	r.byEmail[user.Email] = user
	r.byID[user.ID] = user
	return nil
}

func (r *stubUsersRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUsersRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, ok := r.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *stubUsersRepo) UpdateProfile(ctx context.Context, id uuid.UUID, update users.ProfileUpdate) error {
	r.updates = append(r.updates, update)
	user, ok := r.byID[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.AvatarURL != nil {
		user.AvatarURL = update.AvatarURL
	}
	return nil
}

func (r *stubUsersRepo) ApplyCounterDeltas(ctx context.Context, id uuid.UUID, deltas users.CounterDeltas) error {
	return nil
}

func (r *stubUsersRepo) SetCounters(ctx context.Context, id uuid.UUID, activeDonations, totalDonations int) error {
	return nil
}

func (r *stubUsersRepo) ListDonorsByPoints(ctx context.Context) ([]models.User, error) {
	return nil, nil
}

func (r *stubUsersRepo) ListByRole(ctx context.Context, role enums.UserRole) ([]models.User, error) {
	return nil, nil
}

func (r *stubUsersRepo) CountByRole(ctx context.Context, role enums.UserRole) (int64, error) {
	return 0, nil
}

type stubNGOsRepo struct {
	byID   map[uuid.UUID]*models.NGO
	deltas map[uuid.UUID][]ngos.CounterDeltas
}

func newStubNGOsRepo() *stubNGOsRepo {
	return &stubNGOsRepo{
		byID:   make(map[uuid.UUID]*models.NGO),
		deltas: make(map[uuid.UUID][]ngos.CounterDeltas),
	}
}

func (r *stubNGOsRepo) WithTx(tx *gorm.DB) ngos.Repository { return r }

func (r *stubNGOsRepo) Create(ctx context.Context, ngo *models.NGO) error { return nil }

func (r *stubNGOsRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.NGO, error) {
	ngo, ok := r.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ngo, nil
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
	r.deltas[id] = append(r.deltas[id], deltas)
	return nil
}

func (r *stubNGOsRepo) SetPickupCounters(ctx context.Context, id uuid.UUID, activePickups, completedPickups int) error {
	return nil
}

func (r *stubNGOsRepo) Count(ctx context.Context) (int64, error) { return 0, nil }

type stubRecorder struct {
	entries []activity.Entry
}

func (r *stubRecorder) Record(ctx context.Context, tx *gorm.DB, entry activity.Entry) error {
	r.entries = append(r.entries, entry)
	return nil
}

type stubSessions struct {
	generated map[string]uuid.UUID
	revoked   []string
}

func newStubSessions() *stubSessions {
	return &stubSessions{generated: make(map[string]uuid.UUID)}
}

func (s *stubSessions) Generate(ctx context.Context, accessID string, userID uuid.UUID) error {
	s.generated[accessID] = userID
	return nil
}

func (s *stubSessions) Revoke(ctx context.Context, accessID string) error {
	s.revoked = append(s.revoked, accessID)
	return nil
}

type fixture struct {
	svc      Service
	users    *stubUsersRepo
	ngos     *stubNGOsRepo
	recorder *stubRecorder
	sessions *stubSessions
	jwtCfg   config.JWTConfig
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		users:    newStubUsersRepo(),
		ngos:     newStubNGOsRepo(),
		recorder: &stubRecorder{},
		sessions: newStubSessions(),
		jwtCfg: config.JWTConfig{
			Secret:            "test-secret",
			Issuer:            "mealbridge-test",
			ExpirationMinutes: 15,
			RememberMeDays:    7,
			SessionTTLMinutes: 43200,
		},
	}

	svc, err := NewService(f.users, f.ngos, f.recorder, f.sessions, stubTxRunner{}, f.jwtCfg, config.PasswordConfig{
		ArgonMemoryKB:    8 * 1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	})
	if err != nil {
		t.Fatalf("NewService returned error: %v", err)
	}
	f.svc = svc
	return f
}

func seedNGO(f *fixture) *models.NGO {
	ngo := &models.NGO{ID: uuid.New(), Name: "Harvest Hope", Email: "hope@example.org"}
	f.ngos.byID[ngo.ID] = ngo
	return ngo
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected error with code %s, got nil", code)
	}
	tagged := pkgerrors.As(err)
	if tagged == nil {
		t.Fatalf("expected tagged error, got %T: %v", err, err)
	}
	if tagged.Code() != code {
		t.Fatalf("expected code %s, got %s (%v)", code, tagged.Code(), err)
	}
}

func TestRegisterDonor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.svc.Register(ctx, RegisterInput{
		Email:    "  Dana@Example.COM ",
		Password: "Sup3rSecret",
		FullName: "Dana Donor",
		Role:     enums.UserRoleDonor,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if sess.User.Email != "dana@example.com" {
		t.Fatalf("expected normalized email, got %q", sess.User.Email)
	}
	if sess.Token == "" {
		t.Fatal("expected a minted token")
	}

	claims, err := pkgauth.ParseAccessToken(f.jwtCfg, sess.Token)
	if err != nil {
		t.Fatalf("minted token did not parse: %v", err)
	}
	if claims.UserID != sess.User.ID {
		t.Fatalf("token subject mismatch: %s vs %s", claims.UserID, sess.User.ID)
	}
	if _, ok := f.sessions.generated[claims.ID]; !ok {
		t.Fatal("expected a session record keyed by the token id")
	}

	if len(f.recorder.entries) != 1 || f.recorder.entries[0].Action != enums.ActivityUserRegistered {
		t.Fatalf("expected a user_registered activity entry, got %+v", f.recorder.entries)
	}

	ok, err := security.VerifyPassword("Sup3rSecret", sess.User.PasswordHash)
	if err != nil || !ok {
		t.Fatalf("stored hash does not verify: ok=%v err=%v", ok, err)
	}
}

func TestRegisterStaffIncrementsStaffCountOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ngo := seedNGO(f)

	sess, err := f.svc.Register(ctx, RegisterInput{
		Email:    "staff@example.org",
		Password: "Sup3rSecret",
		FullName: "Sam Staff",
		Role:     enums.UserRoleStaff,
		NGOID:    &ngo.ID,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if sess.User.NGOID == nil || *sess.User.NGOID != ngo.ID {
		t.Fatalf("expected staff bound to %s, got %v", ngo.ID, sess.User.NGOID)
	}

	deltas := f.ngos.deltas[ngo.ID]
	if len(deltas) != 1 {
		t.Fatalf("expected exactly one staff counter update, got %d", len(deltas))
	}
	if deltas[0].StaffCount != 1 {
		t.Fatalf("expected staff_count +1, got %+v", deltas[0])
	}
}

func TestRegisterValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	unknown := uuid.New()

	cases := []struct {
		name  string
		input RegisterInput
		code  pkgerrors.Code
	}{
		{
			name:  "weak password",
			input: RegisterInput{Email: "a@b.co", Password: "short", FullName: "A", Role: enums.UserRoleDonor},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "admin cannot self register",
			input: RegisterInput{Email: "a@b.co", Password: "Sup3rSecret", FullName: "A", Role: enums.UserRoleAdmin},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "staff without organization",
			input: RegisterInput{Email: "a@b.co", Password: "Sup3rSecret", FullName: "A", Role: enums.UserRoleStaff},
			code:  pkgerrors.CodeValidation,
		},
		{
			name:  "staff with unknown organization",
			input: RegisterInput{Email: "a@b.co", Password: "Sup3rSecret", FullName: "A", Role: enums.UserRoleStaff, NGOID: &unknown},
			code:  pkgerrors.CodeValidation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Register(ctx, tc.input)
			assertCode(t, err, tc.code)
		})
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	input := RegisterInput{
		Email:    "dana@example.com",
		Password: "Sup3rSecret",
		FullName: "Dana Donor",
		Role:     enums.UserRoleDonor,
	}
	if _, err := f.svc.Register(ctx, input); err != nil {
		t.Fatalf("first Register returned error: %v", err)
	}

	_, err := f.svc.Register(ctx, input)
	assertCode(t, err, pkgerrors.CodeConflict)
}

func TestLoginWrongPasswordAndUnknownEmailLookAlike(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.Register(ctx, RegisterInput{
		Email:    "dana@example.com",
		Password: "Sup3rSecret",
		FullName: "Dana Donor",
		Role:     enums.UserRoleDonor,
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	_, wrongPass := f.svc.Login(ctx, LoginInput{Email: "dana@example.com", Password: "WrongPass1"})
	assertCode(t, wrongPass, pkgerrors.CodeUnauthorized)

	_, unknownEmail := f.svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "Sup3rSecret"})
	assertCode(t, unknownEmail, pkgerrors.CodeUnauthorized)

	if wrongPass.Error() != unknownEmail.Error() {
		t.Fatalf("credential failures must be indistinguishable: %q vs %q", wrongPass.Error(), unknownEmail.Error())
	}
}

func TestLoginRememberMeExtendsExpiry(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if _, err := f.svc.Register(ctx, RegisterInput{
		Email:    "dana@example.com",
		Password: "Sup3rSecret",
		FullName: "Dana Donor",
		Role:     enums.UserRoleDonor,
	}); err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	sess, err := f.svc.Login(ctx, LoginInput{
		Email:      "dana@example.com",
		Password:   "Sup3rSecret",
		RememberMe: true,
	})
	if err != nil {
		t.Fatalf("Login returned error: %v", err)
	}

	claims, err := pkgauth.ParseAccessToken(f.jwtCfg, sess.Token)
	if err != nil {
		t.Fatalf("token did not parse: %v", err)
	}
	lifetime := claims.ExpiresAt.Sub(claims.IssuedAt.Time)
	if lifetime < 6*24*time.Hour {
		t.Fatalf("expected remember-me lifetime near 7 days, got %s", lifetime)
	}
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	if err := f.svc.Logout(ctx, "some-access-id"); err != nil {
		t.Fatalf("Logout returned error: %v", err)
	}
	if len(f.sessions.revoked) != 1 || f.sessions.revoked[0] != "some-access-id" {
		t.Fatalf("expected one revoked session, got %v", f.sessions.revoked)
	}

	err := f.svc.Logout(ctx, "  ")
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestMeResolvesOrganizationName(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	ngo := seedNGO(f)

	sess, err := f.svc.Register(ctx, RegisterInput{
		Email:    "staff@example.org",
		Password: "Sup3rSecret",
		FullName: "Sam Staff",
		Role:     enums.UserRoleStaff,
		NGOID:    &ngo.ID,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	profile, err := f.svc.Me(ctx, sess.User.ID)
	if err != nil {
		t.Fatalf("Me returned error: %v", err)
	}
	if profile.NGOName == nil || *profile.NGOName != ngo.Name {
		t.Fatalf("expected organization name %q, got %v", ngo.Name, profile.NGOName)
	}
}

func TestUpdateMe(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	sess, err := f.svc.Register(ctx, RegisterInput{
		Email:    "dana@example.com",
		Password: "Sup3rSecret",
		FullName: "Dana Donor",
		Role:     enums.UserRoleDonor,
	})
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}

	name := "Dana D."
	avatar := "https://cdn.example.com/dana.png"
	profile, err := f.svc.UpdateMe(ctx, sess.User.ID, UpdateProfileInput{
		FullName:  &name,
		AvatarURL: &avatar,
	})
	if err != nil {
		t.Fatalf("UpdateMe returned error: %v", err)
	}
	if profile.User.FullName != name {
		t.Fatalf("expected updated name %q, got %q", name, profile.User.FullName)
	}
	if profile.User.AvatarURL == nil || *profile.User.AvatarURL != avatar {
		t.Fatalf("expected updated avatar, got %v", profile.User.AvatarURL)
	}
}
