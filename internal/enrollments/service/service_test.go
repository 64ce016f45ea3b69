package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"courseportal_backend/internal/auth"
	"courseportal_backend/internal/auth/roles"
	"courseportal_backend/internal/courses"
	"courseportal_backend/internal/enrollments/repository"
	"courseportal_backend/platform/apperr"
	"courseportal_backend/platform/logger"
	"courseportal_backend/platform/pagination"

	"github.com/google/uuid"
)

type fakeStore struct {
	enrollments map[uuid.UUID]repository.Enrollment
}

func newFakeStore() *fakeStore {
	return &fakeStore{enrollments: make(map[uuid.UUID]repository.Enrollment)}
}

func (f *fakeStore) CreateEnrollment(ctx context.Context, userID, courseID uuid.UUID) (repository.Enrollment, error) {
	for _, e := range f.enrollments {
		if e.UserID == userID && e.CourseID == courseID {
			return repository.Enrollment{}, apperr.Conflict("You are already enrolled in this course")
		}
	}
	e := repository.Enrollment{ID: uuid.New(), UserID: userID, CourseID: courseID, EnrolledAt: time.Now()}
	f.enrollments[e.ID] = e
	return e, nil
}

func (f *fakeStore) GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (repository.Enrollment, error) {
	e, ok := f.enrollments[enrollmentID]
	if !ok {
		return repository.Enrollment{}, apperr.NotFound("Enrollment not found")
	}
	return e, nil
}

func (f *fakeStore) ListByUser(ctx context.Context, userID uuid.UUID, skip, take int) ([]repository.EnrollmentWithCourse, int64, error) {
	matched := make([]repository.EnrollmentWithCourse, 0)
	for _, e := range f.enrollments {
		if e.UserID == userID {
			matched = append(matched, repository.EnrollmentWithCourse{Enrollment: e, CourseTitle: "Some Course"})
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

func (f *fakeStore) ListByCourse(ctx context.Context, courseID uuid.UUID, skip, take int) ([]repository.EnrollmentWithUser, int64, error) {
	matched := make([]repository.EnrollmentWithUser, 0)
	for _, e := range f.enrollments {
		if e.CourseID == courseID {
			matched = append(matched, repository.EnrollmentWithUser{Enrollment: e, Username: "student", Email: "student@example.com"})
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

func (f *fakeStore) DeleteEnrollment(ctx context.Context, enrollmentID uuid.UUID) error {
	if _, ok := f.enrollments[enrollmentID]; !ok {
		return apperr.NotFound("Enrollment not found")
	}
	delete(f.enrollments, enrollmentID)
	return nil
}

type fakeCatalog struct {
	courses map[uuid.UUID]courses.CourseInfo
}

func (f *fakeCatalog) GetCourseByID(ctx context.Context, courseID uuid.UUID) (courses.CourseInfo, error) {
	c, ok := f.courses[courseID]
	if !ok {
		return courses.CourseInfo{}, apperr.NotFound("Course not found")
	}
	return c, nil
}

type fakeUsers struct {
	accounts map[uuid.UUID]auth.Account
}

func (f *fakeUsers) GetAccountByID(ctx context.Context, userID uuid.UUID) (auth.Account, error) {
	a, ok := f.accounts[userID]
	if !ok {
		return auth.Account{}, apperr.NotFound("User not found")
	}
	return a, nil
}

type fakeMailer struct {
	fail bool
	sent int
}

func (f *fakeMailer) SendWelcomeEmail(ctx context.Context, toEmail, username string) error {
	return nil
}

func (f *fakeMailer) SendVerificationCodeEmail(ctx context.Context, toEmail, username, verifyURL string) error {
	return nil
}

func (f *fakeMailer) SendEnrollmentConfirmationEmail(ctx context.Context, toEmail, username, courseTitle string) error {
	if f.fail {
		return errors.New("smtp down")
	}
	f.sent++
	return nil
}

type fixture struct {
	svc      *Service
	store    *fakeStore
	mail     *fakeMailer
	student  uuid.UUID
	courseID uuid.UUID
	owner    uuid.UUID
}

func newFixture() *fixture {
	store := newFakeStore()
	mail := &fakeMailer{}
	student := uuid.New()
	owner := uuid.New()
	courseID := uuid.New()

	catalog := &fakeCatalog{courses: map[uuid.UUID]courses.CourseInfo{
		courseID: {ID: courseID, InstructorID: owner, Title: "Intro to Gardening", CreatedAt: time.Now()},
	}}
	users := &fakeUsers{accounts: map[uuid.UUID]auth.Account{
		student: {ID: student, Email: "student@example.com", Username: "student", Role: roles.Student},
	}}

	svc := New(store, catalog, users, mail, logger.New("test"))
	return &fixture{svc: svc, store: store, mail: mail, student: student, courseID: courseID, owner: owner}
}

func TestEnroll(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Enroll(context.Background(), f.student, f.courseID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if !result.EmailDelivered {
		t.Error("expected EmailDelivered true")
	}
	if result.CourseTitle != "Intro to Gardening" {
		t.Errorf("course title = %q", result.CourseTitle)
	}
	if f.mail.sent != 1 {
		t.Errorf("confirmation emails sent = %d, want 1", f.mail.sent)
	}
}

func TestEnrollUnknownCourse(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Enroll(context.Background(), f.student, uuid.New())
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if len(f.store.enrollments) != 0 {
		t.Error("no enrollment may be created for a missing course")
	}
}

func TestEnrollTwiceConflict(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Enroll(context.Background(), f.student, f.courseID); err != nil {
		t.Fatalf("first Enroll: %v", err)
	}
	_, err := f.svc.Enroll(context.Background(), f.student, f.courseID)
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var domainErr *apperr.Error
	if errors.As(err, &domainErr) && domainErr.Message != "You are already enrolled in this course" {
		t.Errorf("message = %q", domainErr.Message)
	}
}

func TestEnrollSurvivesEmailFailure(t *testing.T) {
	f := newFixture()
	f.mail.fail = true

	result, err := f.svc.Enroll(context.Background(), f.student, f.courseID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	if result.EmailDelivered {
		t.Error("expected EmailDelivered false when delivery fails")
	}
	if len(f.store.enrollments) != 1 {
		t.Error("enrollment must survive email failure")
	}
}

func TestUnenrollOwnership(t *testing.T) {
	f := newFixture()

	result, err := f.svc.Enroll(context.Background(), f.student, f.courseID)
	if err != nil {
		t.Fatalf("Enroll: %v", err)
	}
	enrollmentID := result.Enrollment.ID

	stranger := Actor{ID: uuid.New(), Role: roles.Student}
	if err := f.svc.Unenroll(context.Background(), stranger, enrollmentID); !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("expected forbidden for stranger, got %v", err)
	}

	admin := Actor{ID: uuid.New(), Role: roles.Admin}
	if err := f.svc.Unenroll(context.Background(), admin, enrollmentID); err != nil {
		t.Fatalf("admin Unenroll: %v", err)
	}

	// Already removed.
	owner := Actor{ID: f.student, Role: roles.Student}
	if err := f.svc.Unenroll(context.Background(), owner, enrollmentID); !apperr.Is(err, apperr.KindNotFound) {
		t.Fatalf("expected not found after removal, got %v", err)
	}
}

func TestListForCourseAuthorization(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Enroll(context.Background(), f.student, f.courseID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	otherInstructor := Actor{ID: uuid.New(), Role: roles.Instructor}
	if _, _, err := f.svc.ListForCourse(context.Background(), otherInstructor, f.courseID, pagination.Params{}); !apperr.Is(err, apperr.KindAuthorization) {
		t.Fatalf("expected forbidden for non-owner instructor, got %v", err)
	}

	owner := Actor{ID: f.owner, Role: roles.Instructor}
	list, meta, err := f.svc.ListForCourse(context.Background(), owner, f.courseID, pagination.Params{})
	if err != nil {
		t.Fatalf("owner ListForCourse: %v", err)
	}
	if len(list) != 1 || meta.TotalItems != 1 {
		t.Errorf("roster = %d entries, meta %+v; want 1", len(list), meta)
	}
}

func TestListMinePagination(t *testing.T) {
	f := newFixture()

	if _, err := f.svc.Enroll(context.Background(), f.student, f.courseID); err != nil {
		t.Fatalf("Enroll: %v", err)
	}

	list, meta, err := f.svc.ListMine(context.Background(), f.student, pagination.Params{Page: 1, Limit: 10})
	if err != nil {
		t.Fatalf("ListMine: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("list size = %d, want 1", len(list))
	}
	if meta.TotalItems != 1 || meta.TotalPages != 1 {
		t.Errorf("meta = %+v", meta)
	}
	if meta.NextPage != nil || meta.PrevPage != nil {
		t.Error("single page must have nil next/prev")
	}
}
