// Package courses provides the course catalog bounded context.
// This file defines the public API of the context; other domains import
// only what is declared here.
package courses

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Period units accepted for a course duration.
const (
	PeriodDay   = "day"
	PeriodWeek  = "week"
	PeriodMonth = "month"
	PeriodYear  = "year"
)

// CourseInfo is the minimal course view shared with other domains.
type CourseInfo struct {
	ID           uuid.UUID
	InstructorID uuid.UUID
	Title        string
	CreatedAt    time.Time
}

// CourseProvider is the interface other bounded contexts use to look up
// courses. Enrollments depend on this rather than on the catalog internals.
type CourseProvider interface {
	// GetCourseByID returns the shared course view, or a not-found error.
	GetCourseByID(ctx context.Context, courseID uuid.UUID) (CourseInfo, error)
}
