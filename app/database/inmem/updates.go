package inmemdb

import (
	"context"
	"time"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

func (db *DB) CreateUpdate(_ context.Context, upd *models.Update) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.courses[upd.CourseID]; !ok {
		return constraint("updates_course_id_fkey")
	}
	if upd.TeacherID.Valid {
		if _, ok := db.users[upd.TeacherID.Int64]; !ok {
			return constraint("updates_teacher_id_fkey")
		}
	}
	upd.ID = db.nextID()
	upd.CreatedAt = db.Now()
	stored := *upd
	db.updates[upd.ID] = &stored
	return nil
}

// decorate fills the joined columns. Must be called with the lock held.
func (db *DB) decorate(upd models.Update) models.Update {
	upd.AuthorName = ""
	if upd.TeacherID.Valid {
		if author, ok := db.users[upd.TeacherID.Int64]; ok {
			upd.AuthorName = author.Name
		}
	}
	if course, ok := db.courses[upd.CourseID]; ok {
		upd.CourseName = course.Name
		upd.CourseCode = course.Code
	}
	return upd
}

func (db *DB) GetUpdate(_ context.Context, id int64) (*models.Update, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	upd, ok := db.updates[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	u := db.decorate(*upd)
	return &u, nil
}

func (db *DB) ListUpdates(_ context.Context, filter models.UpdateFilter) ([]models.Update, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	updates := []models.Update{}
	for _, upd := range db.updates {
		if filter.StudentID != 0 && !db.isEnrolled(filter.StudentID, upd.CourseID) {
			continue
		}
		if filter.TeacherID != 0 && !upd.AuthoredBy(filter.TeacherID) {
			continue
		}
		updates = append(updates, db.decorate(*upd))
	}
	sortByNewest(updates,
		func(u models.Update) time.Time { return u.CreatedAt },
		func(u models.Update) int64 { return u.ID })
	if filter.Limit > 0 && len(updates) > filter.Limit {
		updates = updates[:filter.Limit]
	}
	return updates, nil
}

func (db *DB) DeleteUpdate(_ context.Context, id int64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.updates[id]; !ok {
		return core.ErrNotFound
	}
	delete(db.updates, id)
	return nil
}
