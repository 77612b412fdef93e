package models

import (
	"time"

	"github.com/volatiletech/null/v8"
)

// Update is a course announcement.
type Update struct {
	ID         int64      `json:"id" db:"id"`
	CourseID   int64      `json:"course_id" db:"course_id"`
	TeacherID  null.Int64 `json:"teacher_id" db:"teacher_id"`
	Title      string     `json:"title" db:"title"`
	Message    string     `json:"message" db:"message"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
	AuthorName string     `json:"author_name" db:"author_name"`
	CourseName string     `json:"course_name" db:"course_name"`
	CourseCode string     `json:"course_code" db:"course_code"`
}

// AuthoredBy reports whether userID wrote the update.
func (u *Update) AuthoredBy(userID int64) bool {
	return u.TeacherID.Valid && u.TeacherID.Int64 == userID
}

// UpdateFilter narrows ListUpdates. A zero StudentID lists every update.
type UpdateFilter struct {
	StudentID int64
	TeacherID int64
	Limit     int
}
