package database

import (
	"context"

	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

const videoSelect = `
	SELECT v.id, v.course_id, v.title, v.embed_code, v.created_at, c.name AS course_name
	FROM video v
	JOIN courses c ON c.id = v.course_id`

func (p *Postgres) CreateVideo(ctx context.Context, vid *models.Video) error {
	err := p.db.QueryRowxContext(ctx,
		`INSERT INTO video (course_id, title, embed_code) VALUES ($1, $2, $3) RETURNING id, created_at`,
		vid.CourseID, vid.Title, vid.EmbedCode,
	).Scan(&vid.ID, &vid.CreatedAt)
	return mapError(err, "creating video")
}

func (p *Postgres) GetVideo(ctx context.Context, id int64) (*models.Video, error) {
	var vid models.Video
	if err := p.db.GetContext(ctx, &vid, videoSelect+` WHERE v.id = $1`, id); err != nil {
		return nil, mapError(err, "getting video")
	}
	return &vid, nil
}

func (p *Postgres) ListVideos(ctx context.Context, courseID int64) ([]models.Video, error) {
	videos := []models.Video{}
	err := p.db.SelectContext(ctx, &videos,
		videoSelect+` WHERE v.course_id = $1 ORDER BY v.created_at DESC, v.id DESC`, courseID)
	if err != nil {
		return nil, mapError(err, "listing videos")
	}
	return videos, nil
}

func (p *Postgres) ListStudentVideos(ctx context.Context, studentID int64) ([]models.Video, error) {
	videos := []models.Video{}
	err := p.db.SelectContext(ctx, &videos, videoSelect+`
		JOIN enrollments e ON e.course_id = v.course_id
		WHERE e.student_id = $1
		ORDER BY c.name, v.created_at DESC, v.id DESC`, studentID)
	if err != nil {
		return nil, mapError(err, "listing student videos")
	}
	return videos, nil
}

func (p *Postgres) UpdateVideo(ctx context.Context, vid *models.Video) error {
	result, err := p.db.ExecContext(ctx,
		`UPDATE video SET title = $1, embed_code = $2 WHERE id = $3`, vid.Title, vid.EmbedCode, vid.ID)
	return expectAffected(result, err, "updating video")
}

func (p *Postgres) DeleteVideo(ctx context.Context, id int64) error {
	result, err := p.db.ExecContext(ctx, `DELETE FROM video WHERE id = $1`, id)
	return expectAffected(result, err, "deleting video")
}
