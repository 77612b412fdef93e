package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

const courseColumns = `id, name, code, syllabus_pdf`

func (p *Postgres) CreateCourse(ctx context.Context, course *models.Course) error {
	err := p.db.QueryRowxContext(ctx,
		`INSERT INTO courses (name, code, syllabus_pdf) VALUES ($1, $2, $3) RETURNING id`,
		course.Name, course.Code, course.SyllabusPDF,
	).Scan(&course.ID)
	return mapError(err, "creating course")
}

func (p *Postgres) GetCourse(ctx context.Context, id int64) (*models.Course, error) {
	var course models.Course
	if err := p.db.GetContext(ctx, &course, `SELECT `+courseColumns+` FROM courses WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "getting course")
	}
	return &course, nil
}

func (p *Postgres) ListCourses(ctx context.Context) ([]models.Course, error) {
	courses := []models.Course{}
	if err := p.db.SelectContext(ctx, &courses, `SELECT `+courseColumns+` FROM courses ORDER BY name, id`); err != nil {
		return nil, mapError(err, "listing courses")
	}
	return courses, nil
}

func (p *Postgres) UpdateCourse(ctx context.Context, course *models.Course) error {
	res, err := p.db.ExecContext(ctx,
		`UPDATE courses SET name = $1, code = $2, syllabus_pdf = $3 WHERE id = $4`,
		course.Name, course.Code, course.SyllabusPDF, course.ID,
	)
	return expectAffected(res, err, "updating course")
}

// DeleteCourse relies on ON DELETE CASCADE for enrollments, resources, videos and updates.
func (p *Postgres) DeleteCourse(ctx context.Context, id int64) ([]string, error) {
	var orphans []string
	err := p.withTx(ctx, func(tx *sqlx.Tx) error {
		var course models.Course
		err := tx.GetContext(ctx, &course, `SELECT `+courseColumns+` FROM courses WHERE id = $1 FOR UPDATE`, id)
		if err != nil {
			return mapError(err, "locking course")
		}
		if err = tx.SelectContext(ctx, &orphans, `SELECT filename FROM resource WHERE course_id = $1`, id); err != nil {
			return mapError(err, "listing course resources")
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id); err != nil {
			return mapError(err, "deleting course")
		}
		if course.SyllabusPDF.Valid && course.SyllabusPDF.String != "" {
			orphans = append(orphans, course.SyllabusPDF.String)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orphans, nil
}

func (p *Postgres) ReplaceEnrollments(ctx context.Context, studentID int64, courseIDs []int64) error {
	return p.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM enrollments WHERE student_id = $1`, studentID); err != nil {
			return mapError(err, "clearing enrollments")
		}
		for _, courseID := range courseIDs {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO enrollments (student_id, course_id) VALUES ($1, $2)
				ON CONFLICT (student_id, course_id) DO NOTHING`, studentID, courseID)
			if err != nil {
				return mapError(err, "inserting enrollment")
			}
		}
		return nil
	})
}

func (p *Postgres) ListEnrolledCourses(ctx context.Context, studentID int64) ([]models.Course, error) {
	courses := []models.Course{}
	err := p.db.SelectContext(ctx, &courses, `
		SELECT c.id, c.name, c.code, c.syllabus_pdf
		FROM courses c
		JOIN enrollments e ON e.course_id = c.id
		WHERE e.student_id = $1
		ORDER BY c.name, c.id`, studentID)
	if err != nil {
		return nil, mapError(err, "listing enrolled courses")
	}
	return courses, nil
}

func (p *Postgres) IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error) {
	var ok bool
	err := p.db.GetContext(ctx, &ok,
		`SELECT EXISTS (SELECT 1 FROM enrollments WHERE student_id = $1 AND course_id = $2)`,
		studentID, courseID)
	return ok, mapError(err, "checking enrollment")
}
