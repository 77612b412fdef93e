// Package inmemdb is a map-backed database.Store used by handler tests and
// by the server when LMS_DATABASE_MEMORY is set.
package inmemdb

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/database"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

type enrollmentKey struct {
	studentID int64
	courseID  int64
}

type DB struct {
	mutex sync.RWMutex
	seq   int64

	users       map[int64]*models.User
	courses     map[int64]*models.Course
	enrollments map[enrollmentKey]int64
	resources   map[int64]*models.Resource
	videos      map[int64]*models.Video
	updates     map[int64]*models.Update
	events      map[int64]*models.Event

	// Now stamps created_at columns; tests may override it.
	Now func() time.Time
}

var _ database.Store = (*DB)(nil)

func Open() *DB {
	return &DB{
		users:       make(map[int64]*models.User),
		courses:     make(map[int64]*models.Course),
		enrollments: make(map[enrollmentKey]int64),
		resources:   make(map[int64]*models.Resource),
		videos:      make(map[int64]*models.Video),
		updates:     make(map[int64]*models.Update),
		events:      make(map[int64]*models.Event),
		Now:         func() time.Time { return time.Now().UTC() },
	}
}

func (db *DB) Ping(ctx context.Context) error {
	return ctx.Err()
}

// nextID must be called with the write lock held.
func (db *DB) nextID() int64 {
	db.seq++
	return db.seq
}

func (db *DB) isEnrolled(studentID, courseID int64) bool {
	_, ok := db.enrollments[enrollmentKey{studentID, courseID}]
	return ok
}

func (db *DB) GetDashboardStats(_ context.Context) (*models.DashboardStats, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	stats := &models.DashboardStats{
		TotalCourses:   len(db.courses),
		TotalResources: len(db.resources),
		TotalVideos:    len(db.videos),
		TotalUpdates:   len(db.updates),
		TotalEvents:    len(db.events),
	}
	for _, usr := range db.users {
		switch usr.Role {
		case models.RoleStudent:
			stats.TotalStudents++
		case models.RoleTeacher:
			stats.TotalTeachers++
		case models.RoleAdmin:
			stats.TotalAdmins++
		}
	}
	return stats, nil
}

func constraint(name string) error {
	return &core.ConstraintError{Constraint: name, Err: errors.New("duplicate key or missing reference")}
}

func sortByNewest[T any](rows []T, created func(T) time.Time, id func(T) int64) {
	sort.Slice(rows, func(i, j int) bool {
		ci, cj := created(rows[i]), created(rows[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return id(rows[i]) > id(rows[j])
	})
}
