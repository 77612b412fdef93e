package database

import (
	"context"

	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

const resourceSelect = `
	SELECT r.id, r.course_id, r.filename, r.title, r.created_at, c.name AS course_name
	FROM resource r
	JOIN courses c ON c.id = r.course_id`

func (p *Postgres) CreateResource(ctx context.Context, res *models.Resource) error {
	err := p.db.QueryRowxContext(ctx,
		`INSERT INTO resource (course_id, filename, title) VALUES ($1, $2, $3) RETURNING id, created_at`,
		res.CourseID, res.Filename, res.Title,
	).Scan(&res.ID, &res.CreatedAt)
	return mapError(err, "creating resource")
}

func (p *Postgres) GetResource(ctx context.Context, id int64) (*models.Resource, error) {
	var res models.Resource
	if err := p.db.GetContext(ctx, &res, resourceSelect+` WHERE r.id = $1`, id); err != nil {
		return nil, mapError(err, "getting resource")
	}
	return &res, nil
}

func (p *Postgres) ListResources(ctx context.Context, courseID int64) ([]models.Resource, error) {
	resources := []models.Resource{}
	err := p.db.SelectContext(ctx, &resources,
		resourceSelect+` WHERE r.course_id = $1 ORDER BY r.created_at DESC, r.id DESC`, courseID)
	if err != nil {
		return nil, mapError(err, "listing resources")
	}
	return resources, nil
}

func (p *Postgres) ListStudentResources(ctx context.Context, studentID int64) ([]models.Resource, error) {
	resources := []models.Resource{}
	err := p.db.SelectContext(ctx, &resources, resourceSelect+`
		JOIN enrollments e ON e.course_id = r.course_id
		WHERE e.student_id = $1
		ORDER BY c.name, r.created_at DESC, r.id DESC`, studentID)
	if err != nil {
		return nil, mapError(err, "listing student resources")
	}
	return resources, nil
}

func (p *Postgres) UpdateResource(ctx context.Context, res *models.Resource) error {
	result, err := p.db.ExecContext(ctx,
		`UPDATE resource SET title = $1, filename = $2 WHERE id = $3`, res.Title, res.Filename, res.ID)
	return expectAffected(result, err, "updating resource")
}

func (p *Postgres) DeleteResource(ctx context.Context, id int64) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM resource WHERE id = $1`, id)
	return expectAffected(result, err, "deleting resource")
}

// ListStoredFiles returns every upload name referenced by a resource or a syllabus.
func (p *Postgres) ListStoredFiles(ctx context.Context) ([]string, error) {
	names := []string{}
	err := p.db.SelectContext(ctx, &names, `
		SELECT filename FROM resource
		UNION
		SELECT syllabus_pdf FROM courses WHERE syllabus_pdf IS NOT NULL AND syllabus_pdf <> ''`)
	if err != nil {
		return nil, mapError(err, "listing stored files")
	}
	return names, nil
}
