package models

import "github.com/volatiletech/null/v8"

type Course struct {
	ID          int64       `json:"id" db:"id"`
	Name        string      `json:"name" db:"name"`
	Code        string      `json:"code" db:"code"`
	SyllabusPDF null.String `json:"syllabus_pdf" db:"syllabus_pdf"`
}

// CourseOption is a course row decorated for checkbox forms.
type CourseOption struct {
	Course
	Selected bool `json:"selected"`
}
