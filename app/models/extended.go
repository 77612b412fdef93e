package models

// DashboardStats holds the aggregate counts on the admin dashboard.
type DashboardStats struct {
	TotalStudents  int `json:"total_students" db:"total_students"`
	TotalTeachers  int `json:"total_teachers" db:"total_teachers"`
	TotalAdmins    int `json:"total_admins" db:"total_admins"`
	TotalCourses   int `json:"total_courses" db:"total_courses"`
	TotalResources int `json:"total_resources" db:"total_resources"`
	TotalVideos    int `json:"total_videos" db:"total_videos"`
	TotalUpdates   int `json:"total_updates" db:"total_updates"`
	TotalEvents    int `json:"total_events" db:"total_events"`
}

