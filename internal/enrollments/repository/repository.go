// Package repository provides PostgreSQL persistence for course enrollments.
package repository

import (
	"context"
	"errors"
	"time"

	"courseportal_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolationCode = "23505"

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

type Enrollment struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	CourseID   uuid.UUID
	EnrolledAt time.Time
}

// EnrollmentWithCourse joins the enrolled course's title for list views.
type EnrollmentWithCourse struct {
	Enrollment
	CourseTitle string
}

// EnrollmentWithUser joins the student's identity for instructor views.
type EnrollmentWithUser struct {
	Enrollment
	Username string
	Email    string
}

// CreateEnrollment inserts the enrollment. The (user_id, course_id) unique
// constraint reports double enrollment as a conflict.
func (r *Repository) CreateEnrollment(ctx context.Context, userID, courseID uuid.UUID) (Enrollment, error) {
	var e Enrollment
	err := r.pool.QueryRow(ctx, `
		INSERT INTO enrollments (user_id, course_id)
		VALUES ($1, $2)
		RETURNING id, user_id, course_id, enrolled_at
	`, userID, courseID).Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt)
	if isUniqueViolation(err) {
		return Enrollment{}, apperr.Conflict("You are already enrolled in this course")
	}
	return e, err
}

func (r *Repository) GetEnrollment(ctx context.Context, enrollmentID uuid.UUID) (Enrollment, error) {
	var e Enrollment
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, course_id, enrolled_at
		FROM enrollments WHERE id = $1
	`, enrollmentID).Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Enrollment{}, apperr.NotFound("Enrollment not found")
	}
	return e, err
}

// ListByUser returns one page of a student's enrollments, newest first.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, skip, take int) ([]EnrollmentWithCourse, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM enrollments WHERE user_id = $1
	`, userID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.user_id, e.course_id, e.enrolled_at, c.title
		FROM enrollments e
		JOIN courses c ON c.id = e.course_id
		WHERE e.user_id = $1
		ORDER BY e.enrolled_at DESC
		OFFSET $2 LIMIT $3
	`, userID, skip, take)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]EnrollmentWithCourse, 0, take)
	for rows.Next() {
		var e EnrollmentWithCourse
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt, &e.CourseTitle); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

// ListByCourse returns one page of a course's enrollments with student identity.
func (r *Repository) ListByCourse(ctx context.Context, courseID uuid.UUID, skip, take int) ([]EnrollmentWithUser, int64, error) {
	var total int64
	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM enrollments WHERE course_id = $1
	`, courseID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.user_id, e.course_id, e.enrolled_at, u.username, u.email
		FROM enrollments e
		JOIN users u ON u.id = e.user_id
		WHERE e.course_id = $1
		ORDER BY e.enrolled_at DESC
		OFFSET $2 LIMIT $3
	`, courseID, skip, take)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]EnrollmentWithUser, 0, take)
	for rows.Next() {
		var e EnrollmentWithUser
		if err := rows.Scan(&e.ID, &e.UserID, &e.CourseID, &e.EnrolledAt, &e.Username, &e.Email); err != nil {
			return nil, 0, err
		}
		out = append(out, e)
	}
	return out, total, rows.Err()
}

func (r *Repository) DeleteEnrollment(ctx context.Context, enrollmentID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM enrollments WHERE id = $1`, enrollmentID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Enrollment not found")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
