// Package auth provides the authentication bounded context module.
// This file wires the module's dependencies and registers its routes.
package auth

import (
	"context"

	"courseportal_backend/internal/auth/handler"
	"courseportal_backend/internal/auth/repository"
	"courseportal_backend/internal/auth/service"
	"courseportal_backend/internal/auth/token"
	"courseportal_backend/internal/auth/transport"
	"courseportal_backend/internal/email"
	apphttp "courseportal_backend/internal/http"
	"courseportal_backend/internal/storage"
	"courseportal_backend/platform/config"
	"courseportal_backend/platform/httpkit"
	"courseportal_backend/platform/logger"
	"courseportal_backend/platform/pagination"
	"courseportal_backend/platform/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the auth bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	val     *validator.Validator
}

// NewModule creates and initializes the auth module with all its dependencies.
func NewModule(pool *pgxpool.Pool, cfg config.AuthServiceConfig, mail email.Sender, avatars storage.AvatarStore, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	issuer := token.NewIssuer(cfg)
	svc := service.New(repo, issuer, mail, avatars, cfg, log)
	h := handler.New(svc)

	return &Module{handler: h, service: svc, val: val}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "auth"
}

// UserProvider exposes the account lookup interface for other modules.
func (m *Module) UserProvider() UserProvider {
	return userProvider{svc: m.service}
}

// userProvider adapts the auth service to the narrow UserProvider interface.
type userProvider struct {
	svc *service.Service
}

func (p userProvider) GetAccountByID(ctx context.Context, userID uuid.UUID) (Account, error) {
	user, err := p.svc.GetUser(ctx, userID)
	if err != nil {
		return Account{}, err
	}
	return Account{
		ID:            user.ID,
		Email:         user.Email,
		Username:      user.Username,
		Role:          user.Role,
		EmailVerified: user.EmailVerified,
		CreatedAt:     user.CreatedAt,
	}, nil
}

// RegisterRoutes mounts auth routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	// Public auth routes with stricter rate limiting.
	authGroup := ctx.V1.Group("/auth")
	authGroup.Use(ctx.AuthRateLimiter.RateLimit())
	authGroup.POST("/register",
		httpkit.Body[transport.RegisterRequest](m.val), m.handler.Register)
	authGroup.POST("/login",
		httpkit.Body[transport.LoginRequest](m.val), m.handler.Login)
	authGroup.POST("/refresh",
		httpkit.Body[transport.RefreshRequest](m.val), m.handler.Refresh)
	authGroup.POST("/verify-email",
		httpkit.Body[transport.VerifyEmailRequest](m.val), m.handler.VerifyEmail)

	// Profile routes for the authenticated user.
	ctx.Protected.GET("/users/me", m.handler.GetProfile)
	ctx.Protected.PUT("/users/me",
		httpkit.Body[transport.UpdateProfileRequest](m.val), m.handler.UpdateProfile)
	ctx.Protected.POST("/users/me/password",
		httpkit.Body[transport.ChangePasswordRequest](m.val), m.handler.ChangePassword)
	ctx.Protected.POST("/users/me/avatar", m.handler.UploadAvatar)

	// Admin user management.
	ctx.Admin.GET("/users",
		httpkit.Query[pagination.Params](m.val), m.handler.ListUsers)
	ctx.Admin.PUT("/users/:id/role",
		httpkit.Params[transport.UserIDParams](m.val),
		httpkit.Body[transport.SetRoleRequest](m.val), m.handler.SetRole)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
