// Package service implements the auth business logic.
package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"courseportal_backend/internal/auth/password"
	"courseportal_backend/internal/auth/repository"
	"courseportal_backend/internal/auth/roles"
	"courseportal_backend/internal/auth/token"
	"courseportal_backend/internal/email"
	"courseportal_backend/internal/storage"
	"courseportal_backend/platform/apperr"
	"courseportal_backend/platform/config"
	"courseportal_backend/platform/logger"
	"courseportal_backend/platform/pagination"

	"github.com/google/uuid"
)

const verifyTokenTTL = 24 * time.Hour

// Store is the persistence interface the service depends on.
type Store interface {
	CreateUser(ctx context.Context, email, username, passwordHash, role string) (repository.User, error)
	GetUserByEmail(ctx context.Context, email string) (repository.User, error)
	GetUserByID(ctx context.Context, userID uuid.UUID) (repository.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (repository.Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName, bio *string) (repository.Profile, error)
	SetAvatarKey(ctx context.Context, userID uuid.UUID, avatarKey string) error
	UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error
	MarkEmailVerified(ctx context.Context, userID uuid.UUID) error
	CreateUserToken(ctx context.Context, userID uuid.UUID, tokenHash, tokenType string, expiresAt time.Time) error
	ConsumeUserToken(ctx context.Context, tokenHash, tokenType string) (uuid.UUID, time.Time, error)
	ListUsers(ctx context.Context, skip, take int) ([]repository.User, int64, error)
	SetUserRole(ctx context.Context, userID uuid.UUID, role string) (repository.User, error)
}

type Service struct {
	store   Store
	issuer  *token.Issuer
	mail    email.Sender
	avatars storage.AvatarStore
	cfg     config.AuthServiceConfig
	log     *logger.Logger
}

func New(store Store, issuer *token.Issuer, mail email.Sender, avatars storage.AvatarStore, cfg config.AuthServiceConfig, log *logger.Logger) *Service {
	return &Service{store: store, issuer: issuer, mail: mail, avatars: avatars, cfg: cfg, log: log}
}

// RegisterResult reports the created account plus whether the verification
// email went out.
type RegisterResult struct {
	User           repository.User
	EmailDelivered bool
}

// ProfileData combines account and profile fields for the profile endpoints.
type ProfileData struct {
	User      repository.User
	Profile   repository.Profile
	AvatarURL *string
}

// Register creates a STUDENT account and sends the welcome and verification
// emails synchronously. Delivery failures are logged and reported through
// EmailDelivered; the account itself always survives.
func (s *Service) Register(ctx context.Context, emailAddr, username, plainPassword string) (RegisterResult, error) {
	hash, err := password.Hash(plainPassword)
	if err != nil {
		return RegisterResult{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, emailAddr, username, hash, roles.Student)
	if err != nil {
		return RegisterResult{}, err
	}
	s.log.AuthEvent("register", user.Email, true, "")

	delivered := true
	if err := s.mail.SendWelcomeEmail(ctx, user.Email, user.Username); err != nil {
		s.log.EmailError("welcome", user.Email, err)
		delivered = false
	}
	if err := s.sendVerificationEmail(ctx, user); err != nil {
		s.log.EmailError("verification", user.Email, err)
		delivered = false
	}

	return RegisterResult{User: user, EmailDelivered: delivered}, nil
}

func (s *Service) sendVerificationEmail(ctx context.Context, user repository.User) error {
	rawToken, err := token.GenerateRandomToken(32)
	if err != nil {
		return err
	}
	expiresAt := time.Now().Add(verifyTokenTTL)
	if err := s.store.CreateUserToken(ctx, user.ID, token.HashSHA256(rawToken), repository.TokenTypeEmailVerify, expiresAt); err != nil {
		return err
	}

	verifyURL := fmt.Sprintf("%s/verify-email?token=%s", s.cfg.GetAppBaseURL(), rawToken)
	return s.mail.SendVerificationCodeEmail(ctx, user.Email, user.Username, verifyURL)
}

// VerifyEmail consumes a verification token and marks the account verified.
func (s *Service) VerifyEmail(ctx context.Context, rawToken string) error {
	userID, expiresAt, err := s.store.ConsumeUserToken(ctx, token.HashSHA256(rawToken), repository.TokenTypeEmailVerify)
	if err != nil {
		return err
	}
	if time.Now().After(expiresAt) {
		return apperr.Unauthenticated("Invalid or expired token")
	}
	return s.store.MarkEmailVerified(ctx, userID)
}

// Login verifies credentials and issues a token pair. A missing account and
// a wrong password report identically so the response never confirms whether
// an email is registered.
func (s *Service) Login(ctx context.Context, emailAddr, plainPassword string) (token.Pair, error) {
	user, err := s.store.GetUserByEmail(ctx, emailAddr)
	if err != nil {
		s.log.AuthEvent("login", emailAddr, false, "unknown email")
		return token.Pair{}, apperr.Unauthenticated("Invalid credentials")
	}

	if err := password.Compare(user.PasswordHash, plainPassword); err != nil {
		s.log.AuthEvent("login", emailAddr, false, "wrong password")
		return token.Pair{}, apperr.Unauthenticated("Invalid credentials")
	}

	s.log.AuthEvent("login", emailAddr, true, "")
	return s.issueTokens(user)
}

// Refresh validates a refresh token and issues a fresh pair. The user is
// reloaded so a role change takes effect on the next rotation.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	claims, err := s.issuer.ParseRefresh(refreshToken)
	if err != nil {
		return token.Pair{}, apperr.Unauthenticated("Invalid or expired token")
	}

	user, err := s.store.GetUserByID(ctx, claims.ID)
	if err != nil {
		return token.Pair{}, apperr.Unauthenticated("Invalid or expired token")
	}

	return s.issueTokens(user)
}

func (s *Service) issueTokens(user repository.User) (token.Pair, error) {
	pair, err := s.issuer.Issue(token.Claims{ID: user.ID, Email: user.Email, Role: user.Role})
	if err != nil {
		return token.Pair{}, apperr.Wrap(apperr.KindInternal, "Something went wrong", err)
	}
	return pair, nil
}

// GetProfile loads the combined account and profile view.
func (s *Service) GetProfile(ctx context.Context, userID uuid.UUID) (ProfileData, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return ProfileData{}, err
	}
	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return ProfileData{}, err
	}
	return s.withAvatarURL(ctx, user, profile), nil
}

// UpdateProfile replaces the mutable profile fields.
func (s *Service) UpdateProfile(ctx context.Context, userID uuid.UUID, firstName, lastName, bio *string) (ProfileData, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return ProfileData{}, err
	}
	profile, err := s.store.UpdateProfile(ctx, userID, firstName, lastName, bio)
	if err != nil {
		return ProfileData{}, err
	}
	return s.withAvatarURL(ctx, user, profile), nil
}

func (s *Service) withAvatarURL(ctx context.Context, user repository.User, profile repository.Profile) ProfileData {
	data := ProfileData{User: user, Profile: profile}
	if profile.AvatarKey == nil || *profile.AvatarKey == "" {
		return data
	}
	url, err := s.avatars.AvatarURL(ctx, *profile.AvatarKey)
	if err != nil {
		// A broken avatar link degrades the profile view; it never fails it.
		s.log.Error("avatar url", "user_id", user.ID.String(), "error", err.Error())
		return data
	}
	data.AvatarURL = &url
	return data
}

// ChangePassword verifies the old password before storing the new one.
func (s *Service) ChangePassword(ctx context.Context, userID uuid.UUID, oldPassword, newPassword string) error {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := password.Compare(user.PasswordHash, oldPassword); err != nil {
		return apperr.Unauthenticated("Invalid credentials")
	}
	if oldPassword == newPassword {
		return apperr.Validation("New password must be different from the old password")
	}

	hash, err := password.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.store.UpdatePassword(ctx, userID, hash)
}

// UploadAvatar stores a new profile image and returns its download URL.
func (s *Service) UploadAvatar(ctx context.Context, userID uuid.UUID, fileName, contentType string, reader io.Reader, size int64) (string, error) {
	if err := s.avatars.ValidateAvatar(contentType, size); err != nil {
		if errors.Is(err, storage.ErrDisabled) {
			return "", apperr.Internal("Avatar storage is not available")
		}
		return "", apperr.Validation(err.Error())
	}

	profile, err := s.store.GetProfile(ctx, userID)
	if err != nil {
		return "", err
	}
	var previousKey string
	if profile.AvatarKey != nil {
		previousKey = *profile.AvatarKey
	}

	fileKey, err := s.avatars.UploadAvatar(ctx, userID.String(), fileName, contentType, reader, size, previousKey)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "Something went wrong", err)
	}
	if err := s.store.SetAvatarKey(ctx, userID, fileKey); err != nil {
		return "", err
	}

	url, err := s.avatars.AvatarURL(ctx, fileKey)
	if err != nil {
		return "", apperr.Wrap(apperr.KindInternal, "Something went wrong", err)
	}
	return url, nil
}

// ListUsers returns one page of accounts for the admin console.
func (s *Service) ListUsers(ctx context.Context, params pagination.Params) ([]repository.User, *pagination.Meta, error) {
	// The page window does not depend on the total, so a single query
	// round-trip suffices.
	window := pagination.Paginate(params, 0)
	users, total, err := s.store.ListUsers(ctx, window.Skip, window.Take)
	if err != nil {
		return nil, nil, err
	}
	page := pagination.Paginate(params, int(total))
	return users, page.Meta(int(total)), nil
}

// SetRole changes a user's role. Admins cannot change their own role, which
// keeps at least one working admin account around.
func (s *Service) SetRole(ctx context.Context, adminID, userID uuid.UUID, role string) (repository.User, error) {
	if adminID == userID {
		return repository.User{}, apperr.Forbidden("Forbidden")
	}
	if !roles.Valid(role) {
		return repository.User{}, apperr.Validation("role must be one of the following: STUDENT, INSTRUCTOR, ADMIN")
	}
	return s.store.SetUserRole(ctx, userID, role)
}

// GetUser loads a single account by ID.
func (s *Service) GetUser(ctx context.Context, userID uuid.UUID) (repository.User, error) {
	return s.store.GetUserByID(ctx, userID)
}
