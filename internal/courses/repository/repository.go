// Package repository provides PostgreSQL persistence for the course catalog.
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

type Course struct {
	ID           uuid.UUID
	InstructorID uuid.UUID
	Title        string
	Content      string
	Duration     int
	Period       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type CourseModule struct {
	ID        uuid.UUID
	CourseID  uuid.UUID
	Title     string
	Position  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Lesson struct {
	ID        uuid.UUID
	ModuleID  uuid.UUID
	Title     string
	Content   string
	Position  int
	VideoURL  *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

const courseColumns = `id, instructor_id, title, content, duration, period, created_at, updated_at`

func scanCourse(row pgx.Row) (Course, error) {
	var c Course
	err := row.Scan(&c.ID, &c.InstructorID, &c.Title, &c.Content, &c.Duration, &c.Period, &c.CreatedAt, &c.UpdatedAt)
	return c, err
}

func (r *Repository) CreateCourse(ctx context.Context, instructorID uuid.UUID, title, content string, duration int, period string) (Course, error) {
	course, err := scanCourse(r.pool.QueryRow(ctx, `
		INSERT INTO courses (instructor_id, title, content, duration, period)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+courseColumns,
		instructorID, title, content, duration, period))
	if isUniqueViolation(err) {
		return Course{}, apperr.Conflict("Course with this title already exists")
	}
	return course, err
}

func (r *Repository) GetCourse(ctx context.Context, courseID uuid.UUID) (Course, error) {
	course, err := scanCourse(r.pool.QueryRow(ctx, `
		SELECT `+courseColumns+` FROM courses WHERE id = $1
	`, courseID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, apperr.NotFound("Course not found")
	}
	return course, err
}

// ListCourses returns a page of courses, newest first, optionally filtered by
// a case-insensitive title search.
func (r *Repository) ListCourses(ctx context.Context, skip, take int, search string) ([]Course, int64, error) {
	pattern := "%" + search + "%"

	var total int64
	if err := r.pool.QueryRow(ctx, `
		SELECT count(*) FROM courses WHERE $1 = '' OR title ILIKE $2
	`, search, pattern).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+courseColumns+`
		FROM courses
		WHERE $1 = '' OR title ILIKE $2
		ORDER BY created_at DESC
		OFFSET $3 LIMIT $4
	`, search, pattern, skip, take)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	courses := make([]Course, 0, take)
	for rows.Next() {
		course, err := scanCourse(rows)
		if err != nil {
			return nil, 0, err
		}
		courses = append(courses, course)
	}
	return courses, total, rows.Err()
}

func (r *Repository) UpdateCourse(ctx context.Context, courseID uuid.UUID, title, content string, duration int, period string) (Course, error) {
	course, err := scanCourse(r.pool.QueryRow(ctx, `
		UPDATE courses
		SET title = $2, content = $3, duration = $4, period = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+courseColumns,
		courseID, title, content, duration, period))
	if errors.Is(err, pgx.ErrNoRows) {
		return Course{}, apperr.NotFound("Course not found")
	}
	if isUniqueViolation(err) {
		return Course{}, apperr.Conflict("Course with this title already exists")
	}
	return course, err
}

func (r *Repository) DeleteCourse(ctx context.Context, courseID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM courses WHERE id = $1`, courseID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Course not found")
	}
	return nil
}

const moduleColumns = `id, course_id, title, position, created_at, updated_at`

func scanModule(row pgx.Row) (CourseModule, error) {
	var m CourseModule
	err := row.Scan(&m.ID, &m.CourseID, &m.Title, &m.Position, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

func (r *Repository) CreateModule(ctx context.Context, courseID uuid.UUID, title string, position int) (CourseModule, error) {
	module, err := scanModule(r.pool.QueryRow(ctx, `
		INSERT INTO course_modules (course_id, title, position)
		VALUES ($1, $2, $3)
		RETURNING `+moduleColumns,
		courseID, title, position))
	return module, err
}

func (r *Repository) GetModule(ctx context.Context, moduleID uuid.UUID) (CourseModule, error) {
	module, err := scanModule(r.pool.QueryRow(ctx, `
		SELECT `+moduleColumns+` FROM course_modules WHERE id = $1
	`, moduleID))
	if errors.Is(err, pgx.ErrNoRows) {
		return CourseModule{}, apperr.NotFound("Module not found")
	}
	return module, err
}

func (r *Repository) ListModules(ctx context.Context, courseID uuid.UUID) ([]CourseModule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+moduleColumns+`
		FROM course_modules
		WHERE course_id = $1
		ORDER BY position, created_at
	`, courseID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	modules := make([]CourseModule, 0)
	for rows.Next() {
		module, err := scanModule(rows)
		if err != nil {
			return nil, err
		}
		modules = append(modules, module)
	}
	return modules, rows.Err()
}

func (r *Repository) UpdateModule(ctx context.Context, moduleID uuid.UUID, title string, position int) (CourseModule, error) {
	module, err := scanModule(r.pool.QueryRow(ctx, `
		UPDATE course_modules
		SET title = $2, position = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+moduleColumns,
		moduleID, title, position))
	if errors.Is(err, pgx.ErrNoRows) {
		return CourseModule{}, apperr.NotFound("Module not found")
	}
	return module, err
}

func (r *Repository) DeleteModule(ctx context.Context, moduleID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM course_modules WHERE id = $1`, moduleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Module not found")
	}
	return nil
}

const lessonColumns = `id, module_id, title, content, position, video_url, created_at, updated_at`

func scanLesson(row pgx.Row) (Lesson, error) {
	var l Lesson
	err := row.Scan(&l.ID, &l.ModuleID, &l.Title, &l.Content, &l.Position, &l.VideoURL, &l.CreatedAt, &l.UpdatedAt)
	return l, err
}

func (r *Repository) CreateLesson(ctx context.Context, moduleID uuid.UUID, title, content string, position int, videoURL *string) (Lesson, error) {
	lesson, err := scanLesson(r.pool.QueryRow(ctx, `
		INSERT INTO lessons (module_id, title, content, position, video_url)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+lessonColumns,
		moduleID, title, content, position, videoURL))
	return lesson, err
}

func (r *Repository) GetLesson(ctx context.Context, lessonID uuid.UUID) (Lesson, error) {
	lesson, err := scanLesson(r.pool.QueryRow(ctx, `
		SELECT `+lessonColumns+` FROM lessons WHERE id = $1
	`, lessonID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lesson{}, apperr.NotFound("Lesson not found")
	}
	return lesson, err
}

func (r *Repository) ListLessons(ctx context.Context, moduleID uuid.UUID) ([]Lesson, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+lessonColumns+`
		FROM lessons
		WHERE module_id = $1
		ORDER BY position, created_at
	`, moduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lessons := make([]Lesson, 0)
	for rows.Next() {
		lesson, err := scanLesson(rows)
		if err != nil {
			return nil, err
		}
		lessons = append(lessons, lesson)
	}
	return lessons, rows.Err()
}

func (r *Repository) UpdateLesson(ctx context.Context, lessonID uuid.UUID, title, content string, position int, videoURL *string) (Lesson, error) {
	lesson, err := scanLesson(r.pool.QueryRow(ctx, `
		UPDATE lessons
		SET title = $2, content = $3, position = $4, video_url = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+lessonColumns,
		lessonID, title, content, position, videoURL))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lesson{}, apperr.NotFound("Lesson not found")
	}
	return lesson, err
}

func (r *Repository) DeleteLesson(ctx context.Context, lessonID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM lessons WHERE id = $1`, lessonID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Lesson not found")
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}
