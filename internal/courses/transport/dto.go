// Package transport defines the request and response DTOs for the courses module.
package transport

import "time"

type CreateCourseRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=50"`
	Content  string `json:"content" validate:"required,min=10,max=500"`
	Duration int    `json:"duration" validate:"required,min=1"`
	Period   string `json:"period" validate:"required,oneof=day week month year"`
}

// UpdateCourseRequest replaces the whole course document (PUT semantics).
type UpdateCourseRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=50"`
	Content  string `json:"content" validate:"required,min=10,max=500"`
	Duration int    `json:"duration" validate:"required,min=1"`
	Period   string `json:"period" validate:"required,oneof=day week month year"`
}

type ListCoursesQuery struct {
	Page   int    `form:"page" validate:"omitempty,min=1"`
	Limit  int    `form:"limit" validate:"omitempty,min=1,max=100"`
	Search string `form:"search" validate:"omitempty,max=50"`
}

type CourseIDParams struct {
	ID string `uri:"id" validate:"required,uuid"`
}

type ModuleIDParams struct {
	ID string `uri:"id" validate:"required,uuid"`
}

type LessonIDParams struct {
	ID string `uri:"id" validate:"required,uuid"`
}

type CreateModuleRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=100"`
	Position int    `json:"position" validate:"omitempty,min=0"`
}

type UpdateModuleRequest struct {
	Title    string `json:"title" validate:"required,min=3,max=100"`
	Position int    `json:"position" validate:"omitempty,min=0"`
}

type CreateLessonRequest struct {
	Title    string  `json:"title" validate:"required,min=3,max=100"`
	Content  string  `json:"content" validate:"required,min=10,max=5000"`
	Position int     `json:"position" validate:"omitempty,min=0"`
	VideoURL *string `json:"videoUrl" validate:"omitempty,url"`
}

type UpdateLessonRequest struct {
	Title    string  `json:"title" validate:"required,min=3,max=100"`
	Content  string  `json:"content" validate:"required,min=10,max=5000"`
	Position int     `json:"position" validate:"omitempty,min=0"`
	VideoURL *string `json:"videoUrl" validate:"omitempty,url"`
}

type CourseResponse struct {
	ID           string    `json:"id"`
	InstructorID string    `json:"instructorId"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	Duration     int       `json:"duration"`
	Period       string    `json:"period"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type ModuleResponse struct {
	ID        string    `json:"id"`
	CourseID  string    `json:"courseId"`
	Title     string    `json:"title"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type LessonResponse struct {
	ID        string    `json:"id"`
	ModuleID  string    `json:"moduleId"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	Position  int       `json:"position"`
	VideoURL  *string   `json:"videoUrl"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
