// Package handler exposes the enrollment HTTP endpoints.
package handler

import (
	"courseportal_backend/internal/enrollments/repository"
	"courseportal_backend/internal/enrollments/service"
	"courseportal_backend/internal/enrollments/transport"
	"courseportal_backend/platform/httpkit"
	"courseportal_backend/platform/pagination"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	svc *service.Service
}

func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Enroll(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.CourseIDParams](c)

	result, err := h.svc.Enroll(c.Request.Context(), identity.ID, uuid.MustParse(params.ID))
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, "Enrolled successfully", transport.EnrollResponse{
		Enrollment: transport.EnrollmentResponse{
			ID:          result.Enrollment.ID.String(),
			UserID:      result.Enrollment.UserID.String(),
			CourseID:    result.Enrollment.CourseID.String(),
			CourseTitle: result.CourseTitle,
			EnrolledAt:  result.Enrollment.EnrolledAt,
		},
		EmailDelivered: result.EmailDelivered,
	})
}

func (h *Handler) ListMine(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}
	params := httpkit.QueryValue[pagination.Params](c)

	list, meta, err := h.svc.ListMine(c.Request.Context(), identity.ID, params)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.EnrollmentResponse, 0, len(list))
	for _, e := range list {
		out = append(out, toEnrollmentResponse(e))
	}
	httpkit.OKPaginated(c, "Enrollments retrieved successfully", out, meta)
}

func (h *Handler) ListForCourse(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}
	courseParams := httpkit.ParamsValue[transport.CourseIDParams](c)
	params := httpkit.QueryValue[pagination.Params](c)

	actor := service.Actor{ID: identity.ID, Role: identity.Role}
	list, meta, err := h.svc.ListForCourse(c.Request.Context(), actor, uuid.MustParse(courseParams.ID), params)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.RosterEntryResponse, 0, len(list))
	for _, e := range list {
		out = append(out, transport.RosterEntryResponse{
			ID:         e.ID.String(),
			UserID:     e.UserID.String(),
			Username:   e.Username,
			Email:      e.Email,
			EnrolledAt: e.EnrolledAt,
		})
	}
	httpkit.OKPaginated(c, "Course enrollments retrieved successfully", out, meta)
}

func (h *Handler) Unenroll(c *gin.Context) {
	identity, ok := httpkit.MustGetIdentity(c)
	if !ok {
		return
	}
	params := httpkit.ParamsValue[transport.EnrollmentIDParams](c)

	actor := service.Actor{ID: identity.ID, Role: identity.Role}
	if httpkit.HandleError(c, h.svc.Unenroll(c.Request.Context(), actor, uuid.MustParse(params.ID))) {
		return
	}

	httpkit.OK(c, "Enrollment removed successfully", nil)
}

func toEnrollmentResponse(e repository.EnrollmentWithCourse) transport.EnrollmentResponse {
	return transport.EnrollmentResponse{
		ID:          e.ID.String(),
		UserID:      e.UserID.String(),
		CourseID:    e.CourseID.String(),
		CourseTitle: e.CourseTitle,
		EnrolledAt:  e.EnrolledAt,
	}
}
