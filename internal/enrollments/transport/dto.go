// Package transport defines the request and response DTOs for the enrollments module.
package transport

import "time"

type CourseIDParams struct {
	ID string `uri:"id" validate:"required,uuid"`
}

type EnrollmentIDParams struct {
	ID string `uri:"id" validate:"required,uuid"`
}

// EnrollResponse reports the created enrollment and whether the confirmation
// email went out. Email delivery failures never fail enrollment.
type EnrollResponse struct {
	Enrollment     EnrollmentResponse `json:"enrollment"`
	EmailDelivered bool               `json:"emailDelivered"`
}

type EnrollmentResponse struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	CourseID    string    `json:"courseId"`
	CourseTitle string    `json:"courseTitle,omitempty"`
	EnrolledAt  time.Time `json:"enrolledAt"`
}

// RosterEntryResponse is one student row in an instructor's course roster.
type RosterEntryResponse struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	EnrolledAt time.Time `json:"enrolledAt"`
}
