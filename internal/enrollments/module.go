// Package enrollments provides the enrollment bounded context module.
package enrollments

import (
	"courseportal_backend/internal/auth"
	"courseportal_backend/internal/auth/roles"
	"courseportal_backend/internal/courses"
	"courseportal_backend/internal/email"
	"courseportal_backend/internal/enrollments/handler"
	"courseportal_backend/internal/enrollments/repository"
	"courseportal_backend/internal/enrollments/service"
	"courseportal_backend/internal/enrollments/transport"
	apphttp "courseportal_backend/internal/http"
	"courseportal_backend/platform/httpkit"
	"courseportal_backend/platform/logger"
	"courseportal_backend/platform/pagination"
	"courseportal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the enrollments bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	val     *validator.Validator
}

// NewModule creates and initializes the enrollments module with all its dependencies.
func NewModule(pool *pgxpool.Pool, catalog courses.CourseProvider, users auth.UserProvider, mail email.Sender, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, catalog, users, mail, log)
	h := handler.New(svc)

	return &Module{handler: h, val: val}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "enrollments"
}

// RegisterRoutes mounts the enrollment routes. All of them require an
// authenticated user; the course roster additionally requires an instructor
// or admin credential.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	courseParams := httpkit.Params[transport.CourseIDParams](m.val)
	pageQuery := httpkit.Query[pagination.Params](m.val)

	ctx.Protected.POST("/courses/:id/enroll", courseParams, m.handler.Enroll)
	ctx.Protected.GET("/enrollments/me", pageQuery, m.handler.ListMine)
	ctx.Protected.DELETE("/enrollments/:id",
		httpkit.Params[transport.EnrollmentIDParams](m.val), m.handler.Unenroll)
	ctx.Protected.GET("/courses/:id/enrollments",
		httpkit.RequireRoles(roles.Instructor, roles.Admin),
		courseParams, pageQuery, m.handler.ListForCourse)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
