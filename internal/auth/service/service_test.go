package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"courseportal_backend/internal/auth/password"
	"courseportal_backend/internal/auth/repository"
	"courseportal_backend/internal/auth/roles"
	"courseportal_backend/internal/auth/token"
	"courseportal_backend/internal/storage"
	"courseportal_backend/platform/apperr"
	"courseportal_backend/platform/logger"
	"courseportal_backend/platform/pagination"

	"github.com/google/uuid"
)

type fakeStore struct {
	users    map[uuid.UUID]repository.User
	profiles map[uuid.UUID]repository.Profile
	tokens   map[string]struct {
		userID    uuid.UUID
		tokenType string
		expiresAt time.Time
	}
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		users:    make(map[uuid.UUID]repository.User),
		profiles: make(map[uuid.UUID]repository.Profile),
		tokens: make(map[string]struct {
			userID    uuid.UUID
			tokenType string
			expiresAt time.Time
		}),
	}
}

func (f *fakeStore) CreateUser(ctx context.Context, email, username, passwordHash, role string) (repository.User, error) {
	for _, u := range f.users {
		if u.Email == email || u.Username == username {
			return repository.User{}, apperr.Conflict("Email or username already exist")
		}
	}
	user := repository.User{
		ID:           uuid.New(),
		Email:        email,
		Username:     username,
		PasswordHash: passwordHash,
		Role:         role,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.users[user.ID] = user
	f.profiles[user.ID] = repository.Profile{UserID: user.ID, UpdatedAt: time.Now()}
	return user, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (repository.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return repository.User{}, apperr.NotFound("User not found")
}

func (f *fakeStore) GetUserByID(ctx context.Context, userID uuid.UUID) (repository.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return repository.User{}, apperr.NotFound("User not found")
	}
	return u, nil
}

func (f *fakeStore) GetProfile(ctx context.Context, userID uuid.UUID) (repository.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return repository.Profile{}, apperr.NotFound("Profile not found")
	}
	return p, nil
}

func (f *fakeStore) UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName, bio *string) (repository.Profile, error) {
	p, ok := f.profiles[userID]
	if !ok {
		return repository.Profile{}, apperr.NotFound("Profile not found")
	}
	p.FirstName, p.LastName, p.Bio = firstName, lastName, bio
	p.UpdatedAt = time.Now()
	f.profiles[userID] = p
	return p, nil
}

func (f *fakeStore) SetAvatarKey(ctx context.Context, userID uuid.UUID, avatarKey string) error {
	p, ok := f.profiles[userID]
	if !ok {
		return apperr.NotFound("Profile not found")
	}
	p.AvatarKey = &avatarKey
	f.profiles[userID] = p
	return nil
}

func (f *fakeStore) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	u, ok := f.users[userID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	u.PasswordHash = passwordHash
	f.users[userID] = u
	return nil
}

func (f *fakeStore) MarkEmailVerified(ctx context.Context, userID uuid.UUID) error {
	u, ok := f.users[userID]
	if !ok {
		return apperr.NotFound("User not found")
	}
	u.EmailVerified = true
	f.users[userID] = u
	return nil
}

func (f *fakeStore) CreateUserToken(ctx context.Context, userID uuid.UUID, tokenHash, tokenType string, expiresAt time.Time) error {
	f.tokens[tokenHash] = struct {
		userID    uuid.UUID
		tokenType string
		expiresAt time.Time
	}{userID, tokenType, expiresAt}
	return nil
}

func (f *fakeStore) ConsumeUserToken(ctx context.Context, tokenHash, tokenType string) (uuid.UUID, time.Time, error) {
	entry, ok := f.tokens[tokenHash]
	if !ok || entry.tokenType != tokenType {
		return uuid.Nil, time.Time{}, apperr.Unauthenticated("Invalid or expired token")
	}
	delete(f.tokens, tokenHash)
	return entry.userID, entry.expiresAt, nil
}

func (f *fakeStore) ListUsers(ctx context.Context, skip, take int) ([]repository.User, int64, error) {
	all := make([]repository.User, 0, len(f.users))
	for _, u := range f.users {
		all = append(all, u)
	}
	total := int64(len(all))
	if skip >= len(all) {
		return nil, total, nil
	}
	end := skip + take
	if end > len(all) {
		end = len(all)
	}
	return all[skip:end], total, nil
}

func (f *fakeStore) SetUserRole(ctx context.Context, userID uuid.UUID, role string) (repository.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return repository.User{}, apperr.NotFound("User not found")
	}
	u.Role = role
	f.users[userID] = u
	return u, nil
}

type fakeMailer struct {
	failWelcome      bool
	failVerification bool
	welcomeSent      int
	verificationSent int
	lastVerifyURL    string
}

func (f *fakeMailer) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	if f.failWelcome {
		return errors.New("smtp down")
	}
	f.welcomeSent++
	return nil
}

func (f *fakeMailer) SendVerificationCodeEmail(ctx context.Context, toEmail, username, verifyURL string) error {
	if f.failVerification {
		return errors.New("smtp down")
	}
	f.verificationSent++
	f.lastVerifyURL = verifyURL
	return nil
}

func (f *fakeMailer) SendEnrollmentConfirmationEmail(ctx context.Context, toEmail, username, courseTitle string) error {
	return nil
}

type stubConfig struct{}

func (stubConfig) GetJWTAccessSecret() string        { return "access-secret" }
func (stubConfig) GetJWTRefreshSecret() string       { return "refresh-secret" }
func (stubConfig) GetAccessTokenTTL() time.Duration  { return time.Hour }
func (stubConfig) GetRefreshTokenTTL() time.Duration { return 2 * time.Hour }
func (stubConfig) GetAppBaseURL() string             { return "http://localhost:4200" }

func newTestService(store *fakeStore, mail *fakeMailer) *Service {
	issuer := token.NewIssuer(stubConfig{})
	return New(store, issuer, mail, storage.DisabledAvatarStore{}, stubConfig{}, logger.New("test"))
}

func TestRegisterCreatesStudentAndSendsEmails(t *testing.T) {
	store := newFakeStore()
	mail := &fakeMailer{}
	svc := newTestService(store, mail)

	result, err := svc.Register(context.Background(), "alice@example.com", "alice", "supersecret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.User.Role != roles.Student {
		t.Errorf("role = %q, want %q", result.User.Role, roles.Student)
	}
	if !result.EmailDelivered {
		t.Error("expected EmailDelivered to be true")
	}
	if mail.welcomeSent != 1 || mail.verificationSent != 1 {
		t.Errorf("emails sent = %d welcome, %d verification; want 1 each", mail.welcomeSent, mail.verificationSent)
	}
	if len(store.tokens) != 1 {
		t.Errorf("stored tokens = %d, want 1", len(store.tokens))
	}
	if err := password.Compare(result.User.PasswordHash, "supersecret"); err != nil {
		t.Error("stored hash does not match password")
	}
}

func TestRegisterSurvivesEmailFailure(t *testing.T) {
	store := newFakeStore()
	mail := &fakeMailer{failWelcome: true, failVerification: true}
	svc := newTestService(store, mail)

	result, err := svc.Register(context.Background(), "bob@example.com", "bob", "supersecret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if result.EmailDelivered {
		t.Error("expected EmailDelivered to be false when delivery fails")
	}
	if len(store.users) != 1 {
		t.Error("account must survive email failure")
	}
}

func TestRegisterDuplicateConflict(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	if _, err := svc.Register(context.Background(), "carol@example.com", "carol", "supersecret"); err != nil {
		t.Fatalf("first Register: %v", err)
	}
	_, err := svc.Register(context.Background(), "carol@example.com", "carol2", "supersecret")
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) && domainErr.Message != "Email or username already exist" {
		t.Errorf("message = %q", domainErr.Message)
	}
}

func TestLoginInvalidCredentials(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	if _, err := svc.Register(context.Background(), "dan@example.com", "dan", "supersecret"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	cases := []struct {
		name  string
		email string
		pass  string
	}{
		{"wrong password", "dan@example.com", "wrong-password"},
		{"unknown email", "nobody@example.com", "supersecret"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Login(context.Background(), tc.email, tc.pass)
			if !apperr.Is(err, apperr.KindAuthentication) {
				t.Fatalf("expected authentication error, got %v", err)
			}
			var domainErr *apperr.Error
			if errors.As(err, &domainErr) && domainErr.Message != "Invalid credentials" {
				t.Errorf("message = %q, want identical message for both causes", domainErr.Message)
			}
		})
	}
}

func TestLoginAndRefresh(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	if _, err := svc.Register(context.Background(), "eve@example.com", "eve", "supersecret"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	pair, err := svc.Login(context.Background(), "eve@example.com", "supersecret")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if pair.AccessToken == "" || pair.RefreshToken == "" {
		t.Fatal("expected a full token pair")
	}

	refreshed, err := svc.Refresh(context.Background(), pair.RefreshToken)
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if refreshed.AccessToken == "" {
		t.Fatal("expected a refreshed access token")
	}

	if _, err := svc.Refresh(context.Background(), "not-a-token"); !apperr.Is(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error for garbage token, got %v", err)
	}
}

func TestVerifyEmail(t *testing.T) {
	store := newFakeStore()
	mail := &fakeMailer{}
	svc := newTestService(store, mail)

	result, err := svc.Register(context.Background(), "frank@example.com", "frank", "supersecret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	raw, err := token.GenerateRandomToken(32)
	if err != nil {
		t.Fatalf("GenerateRandomToken: %v", err)
	}
	if err := store.CreateUserToken(context.Background(), result.User.ID, token.HashSHA256(raw), repository.TokenTypeEmailVerify, time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("CreateUserToken: %v", err)
	}

	if err := svc.VerifyEmail(context.Background(), raw); err != nil {
		t.Fatalf("VerifyEmail: %v", err)
	}
	if !store.users[result.User.ID].EmailVerified {
		t.Error("expected account to be marked verified")
	}

	// A consumed token cannot be replayed.
	if err := svc.VerifyEmail(context.Background(), raw); !apperr.Is(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error on replay, got %v", err)
	}
}

func TestVerifyEmailExpiredToken(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	result, err := svc.Register(context.Background(), "gina@example.com", "gina", "supersecret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	raw, _ := token.GenerateRandomToken(32)
	_ = store.CreateUserToken(context.Background(), result.User.ID, token.HashSHA256(raw), repository.TokenTypeEmailVerify, time.Now().Add(-time.Minute))

	if err := svc.VerifyEmail(context.Background(), raw); !apperr.Is(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error for expired token, got %v", err)
	}
}

func TestChangePassword(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	result, err := svc.Register(context.Background(), "hank@example.com", "hank", "supersecret")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	userID := result.User.ID

	if err := svc.ChangePassword(context.Background(), userID, "wrong-old", "newpassword1"); !apperr.Is(err, apperr.KindAuthentication) {
		t.Fatalf("expected authentication error for wrong old password, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), userID, "supersecret", "supersecret"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unchanged password, got %v", err)
	}
	if err := svc.ChangePassword(context.Background(), userID, "supersecret", "newpassword1"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}
	if err := password.Compare(store.users[userID].PasswordHash, "newpassword1"); err != nil {
		t.Error("new password not stored")
	}
}

func TestSetRole(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	admin, _ := svc.Register(context.Background(), "admin@example.com", "admin", "supersecret")
	target, _ := svc.Register(context.Background(), "ida@example.com", "ida", "supersecret")

	if _, err := svc.SetRole(context.Background(), admin.User.ID, admin.User.ID, roles.Student); !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("expected authorization error on self role change, got %v", err)
	}
	if _, err := svc.SetRole(context.Background(), admin.User.ID, target.User.ID, "SUPERUSER"); !apperr.Is(err, apperr.KindValidation) {
		t.Fatalf("expected validation error for unknown role, got %v", err)
	}

	updated, err := svc.SetRole(context.Background(), admin.User.ID, target.User.ID, roles.Instructor)
	if err != nil {
		t.Fatalf("SetRole: %v", err)
	}
	if updated.Role != roles.Instructor {
		t.Errorf("role = %q, want %q", updated.Role, roles.Instructor)
	}
}

func TestListUsersPagination(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, &fakeMailer{})

	for i := 0; i < 12; i++ {
		email := string(rune('a'+i)) + "@example.com"
		username := "user" + string(rune('a'+i))
		if _, err := svc.Register(context.Background(), email, username, "supersecret"); err != nil {
			t.Fatalf("Register %d: %v", i, err)
		}
	}

	users, meta, err := svc.ListUsers(context.Background(), pagination.Params{Page: 2, Limit: 10})
	if err != nil {
		t.Fatalf("ListUsers: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("page 2 size = %d, want 2", len(users))
	}
	if meta.TotalItems != 12 || meta.TotalPages != 2 {
		t.Errorf("meta = %+v, want 12 items over 2 pages", meta)
	}
	if meta.NextPage != nil {
		t.Error("expected no next page on the last page")
	}
	if meta.PrevPage == nil || *meta.PrevPage != 1 {
		t.Error("expected prev page 1")
	}
}
