package inmemdb

import (
	"context"
	"sort"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

func (db *DB) CreateEvent(_ context.Context, event *models.Event) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	event.ID = db.nextID()
	stored := *event
	db.events[event.ID] = &stored
	return nil
}

func (db *DB) GetEvent(_ context.Context, id int64) (*models.Event, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if event, ok := db.events[id]; ok {
		e := *event
		return &e, nil
	}
	return nil, core.ErrNotFound
}

func (db *DB) ListEvents(_ context.Context) ([]models.Event, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	events := make([]models.Event, 0, len(db.events))
	for _, event := range db.events {
		events = append(events, *event)
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].EventDate.Equal(events[j].EventDate) {
			return events[i].EventDate.After(events[j].EventDate)
		}
		return events[i].ID > events[j].ID
	})
	return events, nil
}

func (db *DB) UpdateEvent(_ context.Context, event *models.Event) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	orig, ok := db.events[event.ID]
	if !ok {
		return core.ErrNotFound
	}
	orig.Title = event.Title
	orig.Description = event.Description
	orig.EventDate = event.EventDate
	return nil
}

func (db *DB) DeleteEvent(_ context.Context, id int64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.events[id]; !ok {
		return core.ErrNotFound
	}
	delete(db.events, id)
	return nil
}
