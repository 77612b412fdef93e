package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

const updateSelect = `
	SELECT u.id, u.course_id, u.teacher_id, u.title, u.message, u.created_at,
	       COALESCE(a.name, '') AS author_name, c.name AS course_name, c.code AS course_code
	FROM updates u
	JOIN courses c ON c.id = u.course_id
	LEFT JOIN users a ON a.id = u.teacher_id`

func (p *Postgres) CreateUpdate(ctx context.Context, upd *models.Update) error {
	err := p.db.QueryRowxContext(ctx, `
		INSERT INTO updates (course_id, teacher_id, title, message)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		upd.CourseID, upd.TeacherID, upd.Title, upd.Message,
	).Scan(&upd.ID, &upd.CreatedAt)
	return mapError(err, "creating update")
}

func (p *Postgres) GetUpdate(ctx context.Context, id int64) (*models.Update, error) {
	var upd models.Update
	if err := p.db.GetContext(ctx, &upd, updateSelect+` WHERE u.id = $1`, id); err != nil {
		return nil, mapError(err, "getting update")
	}
	return &upd, nil
}

// ListUpdates restricts a student to updates of the courses they are enrolled in.
func (p *Postgres) ListUpdates(ctx context.Context, filter models.UpdateFilter) ([]models.Update, error) {
	var (
		query strings.Builder
		where []string
		args  []interface{}
	)
	query.WriteString(updateSelect)
	if filter.StudentID != 0 {
		args = append(args, filter.StudentID)
		fmt.Fprintf(&query, ` JOIN enrollments e ON e.course_id = u.course_id AND e.student_id = $%d`, len(args))
	}
	if filter.TeacherID != 0 {
		args = append(args, filter.TeacherID)
		where = append(where, fmt.Sprintf("u.teacher_id = $%d", len(args)))
	}
	if len(where) > 0 {
		query.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	query.WriteString(" ORDER BY u.created_at DESC, u.id DESC")
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		fmt.Fprintf(&query, " LIMIT $%d", len(args))
	}

	updates := []models.Update{}
	if err := p.db.SelectContext(ctx, &updates, query.String(), args...); err != nil {
		return nil, mapError(err, "listing updates")
	}
	return updates, nil
}

func (p *Postgres) DeleteUpdate(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM updates WHERE id = $1`, id)
	return expectAffected(res, err, "deleting update")
}
