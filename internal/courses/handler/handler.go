// Package handler exposes the course catalog HTTP endpoints.
package handler

import (
	"courseportal_backend/internal/courses/repository"
	"courseportal_backend/internal/courses/service"
	"courseportal_backend/internal/courses/transport"
	"courseportal_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// actor extracts the authenticated identity as a service-level actor.
// Returns false after aborting when no identity is attached.
func actor(c *gin.Context) (service.Actor, bool) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return service.Actor{}, false
	}
	return service.Actor{ID: identity.ID, Role: identity.Role}, true
}

func (h *Handler) CreateCourse(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	req := httpkit.BodyValue[transport.CreateCourseRequest](c)

	course, err := h.svc.CreateCourse(c.Request.Context(), act, service.CourseInput{
		Title:    req.Title,
		Content:  req.Content,
		Duration: req.Duration,
		Period:   req.Period,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, "Course created successfully", toCourseResponse(course))
}

func (h *Handler) GetCourse(c *gin.Context) {
	params := httpkit.ParamsValue[transport.CourseIDParams](c)

	course, err := h.svc.GetCourse(c.Request.Context(), uuid.MustParse(params.ID))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, "Course retrieved successfully", toCourseResponse(course))
}

func (h *Handler) ListCourses(c *gin.Context) {
	query := httpkit.QueryValue[transport.ListCoursesQuery](c)

	list, meta, err := h.svc.ListCourses(c.Request.Context(), service.ListParams{
		Page:   query.Page,
		Limit:  query.Limit,
		Search: query.Search,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.CourseResponse, 0, len(list))
	for _, course := range list {
		out = append(out, toCourseResponse(course))
	}
	httpkit.OKPaginated(c, "Courses retrieved successfully", out, meta)
}

func (h *Handler) UpdateCourse(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.CourseIDParams](c)
	req := httpkit.BodyValue[transport.UpdateCourseRequest](c)

	course, err := h.svc.UpdateCourse(c.Request.Context(), act, uuid.MustParse(params.ID), service.CourseInput{
		Title:    req.Title,
		Content:  req.Content,
		Duration: req.Duration,
		Period:   req.Period,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, "Course updated successfully", toCourseResponse(course))
}

func (h *Handler) DeleteCourse(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.CourseIDParams](c)

	if httpkit.HandleError(c, h.svc.DeleteCourse(c.Request.Context(), act, uuid.MustParse(params.ID))) {
		return
	}

	httpkit.OK(c, "Course deleted successfully", nil)
}

func (h *Handler) CreateModule(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.CourseIDParams](c)
	req := httpkit.BodyValue[transport.CreateModuleRequest](c)

	module, err := h.svc.CreateModule(c.Request.Context(), act, uuid.MustParse(params.ID), req.Title, req.Position)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, "Module created successfully", toModuleResponse(module))
}

func (h *Handler) ListModules(c *gin.Context) {
	params := httpkit.ParamsValue[transport.CourseIDParams](c)

	modules, err := h.svc.ListModules(c.Request.Context(), uuid.MustParse(params.ID))
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.ModuleResponse, 0, len(modules))
	for _, module := range modules {
		out = append(out, toModuleResponse(module))
	}
	httpkit.OK(c, "Modules retrieved successfully", out)
}

func (h *Handler) UpdateModule(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.ModuleIDParams](c)
	req := httpkit.BodyValue[transport.UpdateModuleRequest](c)

	module, err := h.svc.UpdateModule(c.Request.Context(), act, uuid.MustParse(params.ID), req.Title, req.Position)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, "Module updated successfully", toModuleResponse(module))
}

func (h *Handler) DeleteModule(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.ModuleIDParams](c)

	if httpkit.HandleError(c, h.svc.DeleteModule(c.Request.Context(), act, uuid.MustParse(params.ID))) {
		return
	}

	httpkit.OK(c, "Module deleted successfully", nil)
}

func (h *Handler) CreateLesson(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.ModuleIDParams](c)
	req := httpkit.BodyValue[transport.CreateLessonRequest](c)

	lesson, err := h.svc.CreateLesson(c.Request.Context(), act, uuid.MustParse(params.ID), service.LessonInput{
		Title:    req.Title,
		Content:  req.Content,
		Position: req.Position,
		VideoURL: req.VideoURL,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, "Lesson created successfully", toLessonResponse(lesson))
}

func (h *Handler) ListLessons(c *gin.Context) {
	params := httpkit.ParamsValue[transport.ModuleIDParams](c)

	lessons, err := h.svc.ListLessons(c.Request.Context(), uuid.MustParse(params.ID))
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.LessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		out = append(out, toLessonResponse(lesson))
	}
	httpkit.OK(c, "Lessons retrieved successfully", out)
}

func (h *Handler) UpdateLesson(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.LessonIDParams](c)
	req := httpkit.BodyValue[transport.UpdateLessonRequest](c)

	lesson, err := h.svc.UpdateLesson(c.Request.Context(), act, uuid.MustParse(params.ID), service.LessonInput{
		Title:    req.Title,
		Content:  req.Content,
		Position: req.Position,
		VideoURL: req.VideoURL,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, "Lesson updated successfully", toLessonResponse(lesson))
}

func (h *Handler) DeleteLesson(c *gin.Context) {
	act, ok := actor(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.LessonIDParams](c)

	if httpkit.HandleError(c, h.svc.DeleteLesson(c.Request.Context(), act, uuid.MustParse(params.ID))) {
		return
	}

	httpkit.OK(c, "Lesson deleted successfully", nil)
}

func toCourseResponse(course repository.Course) transport.CourseResponse {
	return transport.CourseResponse{
		ID:           course.ID.String(),
		InstructorID: course.InstructorID.String(),
		Title:        course.Title,
		Content:      course.Content,
		Duration:     course.Duration,
		Period:       course.Period,
		CreatedAt:    course.CreatedAt,
		UpdatedAt:    course.UpdatedAt,
	}
}

func toModuleResponse(module repository.CourseModule) transport.ModuleResponse {
	return transport.ModuleResponse{
		ID:        module.ID.String(),
		CourseID:  module.CourseID.String(),
		Title:     module.Title,
		Position:  module.Position,
		CreatedAt: module.CreatedAt,
		UpdatedAt: module.UpdatedAt,
	}
}

func toLessonResponse(lesson repository.Lesson) transport.LessonResponse {
	return transport.LessonResponse{
		ID:        lesson.ID.String(),
		ModuleID:  lesson.ModuleID.String(),
		Title:     lesson.Title,
		Content:   lesson.Content,
		Position:  lesson.Position,
		VideoURL:  lesson.VideoURL,
		CreatedAt: lesson.CreatedAt,
		UpdatedAt: lesson.UpdatedAt,
	}
}
