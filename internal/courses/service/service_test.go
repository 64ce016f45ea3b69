package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"courseportal_backend/internal/auth/roles"
	"courseportal_backend/internal/courses/repository"
	"courseportal_backend/platform/apperr"

	"github.com/google/uuid"
)

type fakeStore struct {
	courses map[uuid.UUID]repository.Course
	modules map[uuid.UUID]repository.CourseModule
	lessons map[uuid.UUID]repository.Lesson
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		courses: make(map[uuid.UUID]repository.Course),
		modules: make(map[uuid.UUID]repository.CourseModule),
		lessons: make(map[uuid.UUID]repository.Lesson),
	}
}

func (f *fakeStore) CreateCourse(ctx context.Context, instructorID uuid.UUID, title, content string, duration int, period string) (repository.Course, error) {
	for _, c := range f.courses {
		if c.Title == title {
			return repository.Course{}, apperr.Conflict("Course with this title already exists")
		}
	}
	course := repository.Course{
		ID:           uuid.New(),
		InstructorID: instructorID,
		Title:        title,
		Content:      content,
		Duration:     duration,
		Period:       period,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	f.courses[course.ID] = course
	return course, nil
}

func (f *fakeStore) GetCourse(ctx context.Context, courseID uuid.UUID) (repository.Course, error) {
	c, ok := f.courses[courseID]
	if !ok {
		return repository.Course{}, apperr.NotFound("Course not found")
	}
	return c, nil
}

func (f *fakeStore) ListCourses(ctx context.Context, skip, take int, search string) ([]repository.Course, int64, error) {
	matched := make([]repository.Course, 0)
	for _, c := range f.courses {
		if search == "" || strings.Contains(strings.ToLower(c.Title), strings.ToLower(search)) {
			matched = append(matched, c)
		}
	}
	total := int64(len(matched))
	if skip >= len(matched) {
		return nil, total, nil
	}
	end := skip + take
	if end > len(matched) {
		end = len(matched)
	}
	return matched[skip:end], total, nil
}

func (f *fakeStore) UpdateCourse(ctx context.Context, courseID uuid.UUID, title, content string, duration int, period string) (repository.Course, error) {
	c, ok := f.courses[courseID]
	if !ok {
		return repository.Course{}, apperr.NotFound("Course not found")
	}
	for id, other := range f.courses {
		if id != courseID && other.Title == title {
			return repository.Course{}, apperr.Conflict("Course with this title already exists")
		}
	}
	c.Title, c.Content, c.Duration, c.Period = title, content, duration, period
	c.UpdatedAt = time.Now()
	f.courses[courseID] = c
	return c, nil
}

func (f *fakeStore) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	if _, ok := f.courses[courseID]; !ok {
		return apperr.NotFound("Course not found")
	}
	delete(f.courses, courseID)
	return nil
}

func (f *fakeStore) CreateModule(ctx context.Context, courseID uuid.UUID, title string, position int) (repository.CourseModule, error) {
	module := repository.CourseModule{
		ID:        uuid.New(),
		CourseID:  courseID,
		Title:     title,
		Position:  position,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.modules[module.ID] = module
	return module, nil
}

func (f *fakeStore) GetModule(ctx context.Context, moduleID uuid.UUID) (repository.CourseModule, error) {
	m, ok := f.modules[moduleID]
	if !ok {
		return repository.CourseModule{}, apperr.NotFound("Module not found")
	}
	return m, nil
}

func (f *fakeStore) ListModules(ctx context.Context, courseID uuid.UUID) ([]repository.CourseModule, error) {
	out := make([]repository.CourseModule, 0)
	for _, m := range f.modules {
		if m.CourseID == courseID {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateModule(ctx context.Context, moduleID uuid.UUID, title string, position int) (repository.CourseModule, error) {
	m, ok := f.modules[moduleID]
	if !ok {
		return repository.CourseModule{}, apperr.NotFound("Module not found")
	}
	m.Title, m.Position = title, position
	f.modules[moduleID] = m
	return m, nil
}

func (f *fakeStore) DeleteModule(ctx context.Context, moduleID uuid.UUID) error {
	if _, ok := f.modules[moduleID]; !ok {
		return apperr.NotFound("Module not found")
	}
	delete(f.modules, moduleID)
	return nil
}

func (f *fakeStore) CreateLesson(ctx context.Context, moduleID uuid.UUID, title, content string, position int, videoURL *string) (repository.Lesson, error) {
	lesson := repository.Lesson{
		ID:        uuid.New(),
		ModuleID:  moduleID,
		Title:     title,
		Content:   content,
		Position:  position,
		VideoURL:  videoURL,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	f.lessons[lesson.ID] = lesson
	return lesson, nil
}

func (f *fakeStore) GetLesson(ctx context.Context, lessonID uuid.UUID) (repository.Lesson, error) {
	l, ok := f.lessons[lessonID]
	if !ok {
		return repository.Lesson{}, apperr.NotFound("Lesson not found")
	}
	return l, nil
}

func (f *fakeStore) ListLessons(ctx context.Context, moduleID uuid.UUID) ([]repository.Lesson, error) {
	out := make([]repository.Lesson, 0)
	for _, l := range f.lessons {
		if l.ModuleID == moduleID {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdateLesson(ctx context.Context, lessonID uuid.UUID, title, content string, position int, videoURL *string) (repository.Lesson, error) {
	l, ok := f.lessons[lessonID]
	if !ok {
		return repository.Lesson{}, apperr.NotFound("Lesson not found")
	}
	l.Title, l.Content, l.Position, l.VideoURL = title, content, position, videoURL
	f.lessons[lessonID] = l
	return l, nil
}

func (f *fakeStore) DeleteLesson(ctx context.Context, lessonID uuid.UUID) error {
	if _, ok := f.lessons[lessonID]; !ok {
		return apperr.NotFound("Lesson not found")
	}
	delete(f.lessons, lessonID)
	return nil
}

var courseInput = CourseInput{
	Title:    "Intro to Gardening",
	Content:  "Learn the fundamentals of home gardening.",
	Duration: 4,
	Period:   "week",
}

func TestCreateCourseDuplicateTitle(t *testing.T) {
	svc := New(newFakeStore())
	instructor := Actor{ID: uuid.New(), Role: roles.Instructor}

	if _, err := svc.CreateCourse(context.Background(), instructor, courseInput); err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	_, err := svc.CreateCourse(context.Background(), instructor, courseInput)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func TestUpdateCourseOwnership(t *testing.T) {
	store := newFakeStore()
	svc := New(store)
	owner := Actor{ID: uuid.New(), Role: roles.Instructor}
	other := Actor{ID: uuid.New(), Role: roles.Instructor}
	admin := Actor{ID: uuid.New(), Role: roles.Admin}

	course, err := svc.CreateCourse(context.Background(), owner, courseInput)
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	updated := courseInput
	updated.Title = "Advanced Gardening"

	if _, err := svc.UpdateCourse(context.Background(), other, course.ID, updated); !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("expected forbidden for non-owner, got %v", err)
	}
	if _, err := svc.UpdateCourse(context.Background(), owner, course.ID, updated); err != nil {
		t.Fatalf("owner update: %v", err)
	}

	updated.Title = "Gardening Masterclass"
	if _, err := svc.UpdateCourse(context.Background(), admin, course.ID, updated); err != nil {
		t.Fatalf("admin update: %v", err)
	}
}

func TestDeleteCourseNotFound(t *testing.T) {
	svc := New(newFakeStore())
	admin := Actor{ID: uuid.New(), Role: roles.Admin}

	err := svc.DeleteCourse(context.Background(), admin, uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestListCoursesSearchAndPagination(t *testing.T) {
	store := newFakeStore()
	svc := New(store)
	instructor := Actor{ID: uuid.New(), Role: roles.Instructor}

	titles := []string{"Go Basics", "Go Advanced", "Rust Basics"}
	for _, title := range titles {
		in := courseInput
		in.Title = title
		if _, err := svc.CreateCourse(context.Background(), instructor, in); err != nil {
			t.Fatalf("CreateCourse %q: %v", title, err)
		}
	}

	list, meta, err := svc.ListCourses(context.Background(), ListParams{Search: "go"})
	if err != nil {
		t.Fatalf("ListCourses: %v", err)
	}
	if len(list) != 2 {
		t.Errorf("search matches = %d, want 2", len(list))
	}
	if meta.TotalItems != 2 || meta.TotalPages != 1 {
		t.Errorf("meta = %+v, want 2 items on 1 page", meta)
	}

	list, meta, err = svc.ListCourses(context.Background(), ListParams{Page: 2, Limit: 2})
	if err != nil {
		t.Fatalf("ListCourses page 2: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("page 2 size = %d, want 1", len(list))
	}
	if meta.PrevPage == nil || *meta.PrevPage != 1 {
		t.Error("expected prev page 1")
	}
}

func TestModuleAndLessonOwnershipChain(t *testing.T) {
	store := newFakeStore()
	svc := New(store)
	owner := Actor{ID: uuid.New(), Role: roles.Instructor}
	other := Actor{ID: uuid.New(), Role: roles.Instructor}

	course, err := svc.CreateCourse(context.Background(), owner, courseInput)
	if err != nil {
		t.Fatalf("CreateCourse: %v", err)
	}

	if _, err := svc.CreateModule(context.Background(), other, course.ID, "Week 1", 1); !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("expected forbidden for non-owner module create, got %v", err)
	}

	module, err := svc.CreateModule(context.Background(), owner, course.ID, "Week 1", 1)
	if err != nil {
		t.Fatalf("CreateModule: %v", err)
	}

	lesson, err := svc.CreateLesson(context.Background(), owner, module.ID, LessonInput{
		Title:    "Soil preparation",
		Content:  "How to prepare soil for planting vegetables.",
		Position: 1,
	})
	if err != nil {
		t.Fatalf("CreateLesson: %v", err)
	}

	// Ownership flows through module and lesson to the parent course.
	if _, err := svc.UpdateLesson(context.Background(), other, lesson.ID, LessonInput{
		Title:    "Hijacked",
		Content:  "This should never be persisted anywhere.",
		Position: 1,
	}); !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("expected forbidden for non-owner lesson update, got %v", err)
	}

	if err := svc.DeleteLesson(context.Background(), owner, lesson.ID); err != nil {
		t.Fatalf("DeleteLesson: %v", err)
	}
	if err := svc.DeleteModule(context.Background(), owner, module.ID); err != nil {
		t.Fatalf("DeleteModule: %v", err)
	}
}

func TestListModulesRequiresCourse(t *testing.T) {
	svc := New(newFakeStore())

	if _, err := svc.ListModules(context.Background(), uuid.New()); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found for missing course, got %v", err)
	}
}
