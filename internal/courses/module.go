// Package courses provides the course catalog bounded context module.
// This file wires the module's dependencies and registers its routes.
package courses

import (
	"context"

	"courseportal_backend/internal/auth/roles"
	"courseportal_backend/internal/courses/handler"
	"courseportal_backend/internal/courses/repository"
	"courseportal_backend/internal/courses/service"
	"courseportal_backend/internal/courses/transport"
	apphttp "courseportal_backend/internal/http"
	"courseportal_backend/platform/httpkit"
	"courseportal_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the courses bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	val     *validator.Validator
}

// NewModule creates and initializes the courses module with all its dependencies.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)
	h := handler.New(svc)

	return &Module{handler: h, service: svc, val: val}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "courses"
}

// CourseProvider exposes the course lookup interface for other modules.
func (m *Module) CourseProvider() CourseProvider {
	return courseProvider{svc: m.service}
}

type courseProvider struct {
	svc *service.Service
}

func (p courseProvider) GetCourseByID(ctx context.Context, courseID uuid.UUID) (CourseInfo, error) {
	course, err := p.svc.GetCourse(ctx, courseID)
	if err != nil {
		return CourseInfo{}, err
	}
	return CourseInfo{
		ID:           course.ID,
		InstructorID: course.InstructorID,
		Title:        course.Title,
		CreatedAt:    course.CreatedAt,
	}, nil
}

// RegisterRoutes mounts the catalog routes. Reads are public; every mutation
// requires an instructor or admin credential, with per-resource ownership
// enforced in the service.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	courseParams := httpkit.Params[transport.CourseIDParams](m.val)
	moduleParams := httpkit.Params[transport.ModuleIDParams](m.val)
	lessonParams := httpkit.Params[transport.LessonIDParams](m.val)
	instructorOnly := []gin.HandlerFunc{
		ctx.AuthMiddleware,
		httpkit.RequireRoles(roles.Instructor, roles.Admin),
	}

	// Public catalog reads.
	ctx.V1.GET("/courses",
		httpkit.Query[transport.ListCoursesQuery](m.val), m.handler.ListCourses)
	ctx.V1.GET("/courses/:id", courseParams, m.handler.GetCourse)
	ctx.V1.GET("/courses/:id/modules", courseParams, m.handler.ListModules)
	ctx.V1.GET("/modules/:id/lessons", moduleParams, m.handler.ListLessons)

	// Catalog mutations.
	ctx.V1.POST("/courses", append(instructorOnly,
		httpkit.Body[transport.CreateCourseRequest](m.val), m.handler.CreateCourse)...)
	ctx.V1.PUT("/courses/:id", append(instructorOnly, courseParams,
		httpkit.Body[transport.UpdateCourseRequest](m.val), m.handler.UpdateCourse)...)
	ctx.V1.DELETE("/courses/:id", append(instructorOnly, courseParams, m.handler.DeleteCourse)...)

	ctx.V1.POST("/courses/:id/modules", append(instructorOnly, courseParams,
		httpkit.Body[transport.CreateModuleRequest](m.val), m.handler.CreateModule)...)
	ctx.V1.PUT("/modules/:id", append(instructorOnly, moduleParams,
		httpkit.Body[transport.UpdateModuleRequest](m.val), m.handler.UpdateModule)...)
	ctx.V1.DELETE("/modules/:id", append(instructorOnly, moduleParams, m.handler.DeleteModule)...)

	ctx.V1.POST("/modules/:id/lessons", append(instructorOnly, moduleParams,
		httpkit.Body[transport.CreateLessonRequest](m.val), m.handler.CreateLesson)...)
	ctx.V1.PUT("/lessons/:id", append(instructorOnly, lessonParams,
		httpkit.Body[transport.UpdateLessonRequest](m.val), m.handler.UpdateLesson)...)
	ctx.V1.DELETE("/lessons/:id", append(instructorOnly, lessonParams, m.handler.DeleteLesson)...)
}

// Compile-time check that Module implements http.Module.
var _ apphttp.Module = (*Module)(nil)
