// Package service implements the course catalog business logic.
package service

import (
	"context"

	"courseportal_backend/internal/auth/roles"
	"courseportal_backend/internal/courses/repository"
	"courseportal_backend/platform/apperr"
	"courseportal_backend/platform/pagination"

	"github.com/google/uuid"
)

// Store is the persistence interface the service depends on.
type Store interface {
	CreateCourse(ctx context.Context, instructorID uuid.UUID, title, content string, duration int, period string) (repository.Course, error)
	GetCourse(ctx context.Context, courseID uuid.UUID) (repository.Course, error)
	ListCourses(ctx context.Context, skip, take int, search string) ([]repository.Course, int64, error)
	UpdateCourse(ctx context.Context, courseID uuid.UUID, title, content string, duration int, period string) (repository.Course, error)
	DeleteCourse(ctx context.Context, courseID uuid.UUID) error

	CreateModule(ctx context.Context, courseID uuid.UUID, title string, position int) (repository.CourseModule, error)
	GetModule(ctx context.Context, moduleID uuid.UUID) (repository.CourseModule, error)
	ListModules(ctx context.Context, courseID uuid.UUID) ([]repository.CourseModule, error)
	UpdateModule(ctx context.Context, moduleID uuid.UUID, title string, position int) (repository.CourseModule, error)
	DeleteModule(ctx context.Context, moduleID uuid.UUID) error

	CreateLesson(ctx context.Context, moduleID uuid.UUID, title, content string, position int, videoURL *string) (repository.Lesson, error)
	GetLesson(ctx context.Context, lessonID uuid.UUID) (repository.Lesson, error)
	ListLessons(ctx context.Context, moduleID uuid.UUID) ([]repository.Lesson, error)
	UpdateLesson(ctx context.Context, lessonID uuid.UUID, title, content string, position int, videoURL *string) (repository.Lesson, error)
	DeleteLesson(ctx context.Context, lessonID uuid.UUID) error
}

// Actor identifies the authenticated user performing an operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

// CourseInput carries the full course document for create and update.
type CourseInput struct {
	Title    string
	Content  string
	Duration int
	Period   string
}

// LessonInput carries the full lesson document for create and update.
type LessonInput struct {
	Title    string
	Content  string
	Position int
	VideoURL *string
}

// ListParams carries pagination plus the optional title search.
type ListParams struct {
	Page   int
	Limit  int
	Search string
}

type Service struct {
	store Store
}

func New(store Store) *Service {
	return &Service{store: store}
}

// checkOwner permits the course owner and admins; everyone else is refused.
func checkOwner(actor Actor, course repository.Course) error {
	if actor.Role == roles.Admin || course.InstructorID == actor.ID {
		return nil
	}
	return apperr.Forbidden("Forbidden")
}

func (s *Service) CreateCourse(ctx context.Context, actor Actor, in CourseInput) (repository.Course, error) {
	return s.store.CreateCourse(ctx, actor.ID, in.Title, in.Content, in.Duration, in.Period)
}

func (s *Service) GetCourse(ctx context.Context, courseID uuid.UUID) (repository.Course, error) {
	return s.store.GetCourse(ctx, courseID)
}

func (s *Service) ListCourses(ctx context.Context, params ListParams) ([]repository.Course, *pagination.Meta, error) {
	window := pagination.Paginate(pagination.Params{Page: params.Page, Limit: params.Limit}, 0)
	list, total, err := s.store.ListCourses(ctx, window.Skip, window.Take, params.Search)
	if err != nil {
		return nil, nil, err
	}
	page := pagination.Paginate(pagination.Params{Page: params.Page, Limit: params.Limit}, int(total))
	return list, page.Meta(int(total)), nil
}

func (s *Service) UpdateCourse(ctx context.Context, actor Actor, courseID uuid.UUID, in CourseInput) (repository.Course, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return repository.Course{}, err
	}
	if err := checkOwner(actor, course); err != nil {
		return repository.Course{}, err
	}
	return s.store.UpdateCourse(ctx, courseID, in.Title, in.Content, in.Duration, in.Period)
}

func (s *Service) DeleteCourse(ctx context.Context, actor Actor, courseID uuid.UUID) error {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return err
	}
	if err := checkOwner(actor, course); err != nil {
		return err
	}
	return s.store.DeleteCourse(ctx, courseID)
}

func (s *Service) CreateModule(ctx context.Context, actor Actor, courseID uuid.UUID, title string, position int) (repository.CourseModule, error) {
	course, err := s.store.GetCourse(ctx, courseID)
	if err != nil {
		return repository.CourseModule{}, err
	}
	if err := checkOwner(actor, course); err != nil {
		return repository.CourseModule{}, err
	}
	return s.store.CreateModule(ctx, courseID, title, position)
}

func (s *Service) ListModules(ctx context.Context, courseID uuid.UUID) ([]repository.CourseModule, error) {
	if _, err := s.store.GetCourse(ctx, courseID); err != nil {
		return nil, err
	}
	return s.store.ListModules(ctx, courseID)
}

// courseOfModule resolves a module's parent course for ownership checks.
func (s *Service) courseOfModule(ctx context.Context, moduleID uuid.UUID) (repository.CourseModule, repository.Course, error) {
	module, err := s.store.GetModule(ctx, moduleID)
	if err != nil {
		return repository.CourseModule{}, repository.Course{}, err
	}
	course, err := s.store.GetCourse(ctx, module.CourseID)
	if err != nil {
		return repository.CourseModule{}, repository.Course{}, err
	}
	return module, course, nil
}

func (s *Service) UpdateModule(ctx context.Context, actor Actor, moduleID uuid.UUID, title string, position int) (repository.CourseModule, error) {
	_, course, err := s.courseOfModule(ctx, moduleID)
	if err != nil {
		return repository.CourseModule{}, err
	}
	if err := checkOwner(actor, course); err != nil {
		return repository.CourseModule{}, err
	}
	return s.store.UpdateModule(ctx, moduleID, title, position)
}

func (s *Service) DeleteModule(ctx context.Context, actor Actor, moduleID uuid.UUID) error {
	_, course, err := s.courseOfModule(ctx, moduleID)
	if err != nil {
		return err
	}
	if err := checkOwner(actor, course); err != nil {
		return err
	}
	return s.store.DeleteModule(ctx, moduleID)
}

func (s *Service) CreateLesson(ctx context.Context, actor Actor, moduleID uuid.UUID, in LessonInput) (repository.Lesson, error) {
	_, course, err := s.courseOfModule(ctx, moduleID)
	if err != nil {
		return repository.Lesson{}, err
	}
	if err := checkOwner(actor, course); err != nil {
		return repository.Lesson{}, err
	}
	return s.store.CreateLesson(ctx, moduleID, in.Title, in.Content, in.Position, in.VideoURL)
}

func (s *Service) ListLessons(ctx context.Context, moduleID uuid.UUID) ([]repository.Lesson, error) {
	if _, err := s.store.GetModule(ctx, moduleID); err != nil {
		return nil, err
	}
	return s.store.ListLessons(ctx, moduleID)
}

func (s *Service) courseOfLesson(ctx context.Context, lessonID uuid.UUID) (repository.Lesson, repository.Course, error) {
	lesson, err := s.store.GetLesson(ctx, lessonID)
	if err != nil {
		return repository.Lesson{}, repository.Course{}, err
	}
	_, course, err := s.courseOfModule(ctx, lesson.ModuleID)
	if err != nil {
		return repository.Lesson{}, repository.Course{}, err
	}
	return lesson, course, nil
}

func (s *Service) UpdateLesson(ctx context.Context, actor Actor, lessonID uuid.UUID, in LessonInput) (repository.Lesson, error) {
	_, course, err := s.courseOfLesson(ctx, lessonID)
	if err != nil {
		return repository.Lesson{}, err
	}
	if err := checkOwner(actor, course); err != nil {
		return repository.Lesson{}, err
	}
	return s.store.UpdateLesson(ctx, lessonID, in.Title, in.Content, in.Position, in.VideoURL)
}

func (s *Service) DeleteLesson(ctx context.Context, actor Actor, lessonID uuid.UUID) error {
	_, course, err := s.courseOfLesson(ctx, lessonID)
	if err != nil {
		return err
	}
	if err := checkOwner(actor, course); err != nil {
		return err
	}
	return s.store.DeleteLesson(ctx, lessonID)
}
