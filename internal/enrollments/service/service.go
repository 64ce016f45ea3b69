// Package service implements the enrollment business logic.
package service

import (
	"context"

	"courseportal_backend/internal/auth"
	"courseportal_backend/internal/auth/roles"
	"courseportal_backend/internal/courses"
	"courseportal_backend/internal/email"
	"courseportal_backend/internal/enrollments/repository"
	"courseportal_backend/platform/apperr"
	"courseportal_backend/platform/logger"
	"courseportal_backend/platform/pagination"

	"github.com/google/uuid"
)

// Store is the persistence interface the service depends on.
type Store interface {
	CreateEnrollment(ctx context.Context, userID, courseID uuid.UUID) (repository.Enrollment, error)
	GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (repository.Enrollment, error)
	ListByUser(ctx context.Context, userID uuid.UUID, skip, take int) ([]repository.EnrollmentWithCourse, int64, error)
	ListByCourse(ctx context.Context, courseID uuid.UUID, skip, take int) ([]repository.EnrollmentWithUser, int64, error)
	DeleteEnrollment(ctx context.Context, enrollmentID uuid.UUID) error
}

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

type Service struct {
	store   Store
	catalog courses.CourseProvider
	users   auth.UserProvider
	mail    email.Sender
	log     *logger.Logger
}

func New(store Store, catalog courses.CourseProvider, users auth.UserProvider, mail email.Sender, log *logger.Logger) *Service {
	return &Service{store: store, catalog: catalog, users: users, mail: mail, log: log}
}

// EnrollResult reports the created enrollment plus whether the confirmation
// email went out.
type EnrollResult struct {
	Enrollment     repository.Enrollment
	CourseTitle    string
	EmailDelivered bool
}

// Enroll registers the student on a course and sends the confirmation email
// synchronously. Delivery failures are logged and reported through
// EmailDelivered; the enrollment itself always survives.
func (s *Service) Enroll(ctx context.Context, userID, courseID uuid.UUID) (EnrollResult, error) {
	course, err := s.catalog.GetCourseByID(ctx, courseID)
	if err != nil {
		return EnrollResult{}, err
	}

	enrollment, err := s.store.CreateEnrollment(ctx, userID, courseID)
	if err != nil {
		return EnrollResult{}, err
	}

	delivered := true
	account, err := s.users.GetAccountByID(ctx, userID)
	if err != nil {
		s.log.Error("enrollment email lookup", "user_id", userID.String(), "error", err.Error())
		delivered = false
	} else if err := s.mail.SendEnrollmentConfirmationEmail(ctx, account.Email, account.Username, course.Title); err != nil {
		s.log.EmailError("enrollment_confirmation", account.Email, err)
		delivered = false
	}

	return EnrollResult{Enrollment: enrollment, CourseTitle: course.Title, EmailDelivered: delivered}, nil
}

// ListMine returns one page of the student's own enrollments.
func (s *Service) ListMine(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]repository.EnrollmentWithCourse, *pagination.Meta, error) {
	window := pagination.Paginate(params, 0)
	list, total, err := s.store.ListByUser(ctx, userID, window.Skip, window.Take)
	if err != nil {
		return nil, nil, err
	}
	page := pagination.Paginate(params, int(total))
	return list, page.Meta(int(total)), nil
}

// ListForCourse returns one page of a course's enrollments. Only the course
// owner and admins may see the roster.
func (s *Service) ListForCourse(ctx context.Context, actor Actor, courseID uuid.UUID, params pagination.Params) ([]repository.EnrollmentWithUser, *pagination.Meta, error) {
	course, err := s.catalog.GetCourseByID(ctx, courseID)
	if err != nil {
		return nil, nil, err
	}
	if actor.Role != roles.Admin && course.InstructorID != actor.ID {
		return nil, nil, apperr.Forbidden("Forbidden")
	}

	window := pagination.Paginate(params, 0)
	list, total, err := s.store.ListByCourse(ctx, courseID, window.Skip, window.Take)
	if err != nil {
		return nil, nil, err
	}
	page := pagination.Paginate(params, int(total))
	return list, page.Meta(int(total)), nil
}

// Unenroll removes an enrollment. Only its owner and admins may remove it.
func (s *Service) Unenroll(ctx context.Context, actor Actor, enrollmentID uuid.UUID) error {
	enrollment, err := s.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return err
	}
	if actor.Role != roles.Admin && enrollment.UserID != actor.ID {
		return apperr.Forbidden("Forbidden")
	}
	return s.store.DeleteEnrollment(ctx, enrollmentID)
}
