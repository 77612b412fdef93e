package database

import (
	"context"

	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

const eventColumns = `id, title, description, event_date, created_by`

// CreateEvent adds a new event to the database
func (p *Postgres) CreateEvent(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (title, description, event_date, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := p.db.QueryRowxContext(ctx, query,
		event.Title,
		event.Description,
		event.EventDate,
		event.CreatedBy,
	).Scan(&event.ID)
	return mapError(err, "creating event")
}

func (p *Postgres) GetEvent(ctx context.Context, id int64) (*models.Event, error) {
	var event models.Event
	if err := p.db.GetContext(ctx, &event, `SELECT `+eventColumns+` FROM events WHERE id = $1`, id); err != nil {
		return nil, mapError(err, "getting event")
	}
	return &event, nil
}

// ListEvents retrieves all events, latest event_date first
func (p *Postgres) ListEvents(ctx context.Context) ([]models.Event, error) {
	events := []models.Event{}
	query := `SELECT ` + eventColumns + ` FROM events ORDER BY event_date DESC, id DESC`
	if err := p.db.SelectContext(ctx, &events, query); err != nil {
		return nil, mapError(err, "listing events")
	}
	return events, nil
}

// UpdateEvent updates an existing event
func (p *Postgres) UpdateEvent(ctx context.Context, event *models.Event) error {
	query := `
		UPDATE events
		SET title = $1, description = $2, event_date = $3
		WHERE id = $4
	`
	res, err := p.db.ExecContext(ctx, query, event.Title, event.Description, event.EventDate, event.ID)
	return expectAffected(res, err, "updating event")
}

// DeleteEvent deletes an event by ID
func (p *Postgres) DeleteEvent(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	return expectAffected(res, err, "deleting event")
}
