package models

import "time"

// Resource is a PDF attached to a course.
type Resource struct {
	ID         int64     `json:"id" db:"id"`
	CourseID   int64     `json:"course_id" db:"course_id"`
	Filename   string    `json:"filename" db:"filename"`
	Title      string    `json:"title" db:"title"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	CourseName string    `json:"course_name,omitempty" db:"course_name"`
}

// Video is externally hosted; EmbedCode is stored and rendered as given.
type Video struct {
	ID         int64     `json:"id" db:"id"`
	CourseID   int64     `json:"course_id" db:"course_id"`
	Title      string    `json:"title" db:"title"`
	EmbedCode  string    `json:"embed_code" db:"embed_code"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	CourseName string    `json:"course_name,omitempty" db:"course_name"`
}
