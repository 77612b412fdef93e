package database

import (
	"context"

	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

// GetDashboardStats returns statistics for the admin dashboard
func (p *Postgres) GetDashboardStats(ctx context.Context) (*models.DashboardStats, error) {
	stats := &models.DashboardStats{}
	err := p.db.GetContext(ctx, stats, `
		SELECT
			(SELECT COUNT(*) FROM users WHERE role = 'student') AS total_students,
			(SELECT COUNT(*) FROM users WHERE role = 'teacher') AS total_teachers,
			(SELECT COUNT(*) FROM users WHERE role = 'admin')   AS total_admins,
			(SELECT COUNT(*) FROM courses)  AS total_courses,
			(SELECT COUNT(*) FROM resource) AS total_resources,
			(SELECT COUNT(*) FROM video)    AS total_videos,
			(SELECT COUNT(*) FROM updates)  AS total_updates,
			(SELECT COUNT(*) FROM events)   AS total_events`)
	if err != nil {
		return nil, mapError(err, "loading dashboard stats")
	}
	return stats, nil
}
