package inmemdb

import (
	"context"
	"sort"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

func sortCourses(courses []models.Course) {
	sort.Slice(courses, func(i, j int) bool {
		if courses[i].Name != courses[j].Name {
			return courses[i].Name < courses[j].Name
		}
		return courses[i].ID < courses[j].ID
	})
}

func (db *DB) CreateCourse(_ context.Context, course *models.Course) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	course.ID = db.nextID()
	stored := *course
	db.courses[course.ID] = &stored
	return nil
}

func (db *DB) GetCourse(_ context.Context, id int64) (*models.Course, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if course, ok := db.courses[id]; ok {
		c := *course
		return &c, nil
	}
	return nil, core.ErrNotFound
}

func (db *DB) ListCourses(_ context.Context) ([]models.Course, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	courses := make([]models.Course, 0, len(db.courses))
	for _, course := range db.courses {
		courses = append(courses, *course)
	}
	sortCourses(courses)
	return courses, nil
}

func (db *DB) UpdateCourse(_ context.Context, course *models.Course) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.courses[course.ID]; !ok {
		return core.ErrNotFound
	}
	stored := *course
	db.courses[course.ID] = &stored
	return nil
}

func (db *DB) DeleteCourse(_ context.Context, id int64) ([]string, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	course, ok := db.courses[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	var orphans []string
	for rid, res := range db.resources {
		if res.CourseID == id {
			orphans = append(orphans, res.Filename)
			delete(db.resources, rid)
		}
	}
	for vid, v := range db.videos {
		if v.CourseID == id {
			delete(db.videos, vid)
		}
	}
	for uid, upd := range db.updates {
		if upd.CourseID == id {
			delete(db.updates, uid)
		}
	}
	for key := range db.enrollments {
		if key.courseID == id {
			delete(db.enrollments, key)
		}
	}
	delete(db.courses, id)
	sort.Strings(orphans)
	if course.SyllabusPDF.Valid && course.SyllabusPDF.String != "" {
		orphans = append(orphans, course.SyllabusPDF.String)
	}
	return orphans, nil
}

func (db *DB) ReplaceEnrollments(_ context.Context, studentID int64, courseIDs []int64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	// validate first so a failure leaves the previous set untouched
	for _, courseID := range courseIDs {
		if _, ok := db.courses[courseID]; !ok {
			return constraint("enrollments_course_id_fkey")
		}
	}
	for key := range db.enrollments {
		if key.studentID == studentID {
			delete(db.enrollments, key)
		}
	}
	for _, courseID := range courseIDs {
		key := enrollmentKey{studentID, courseID}
		if _, ok := db.enrollments[key]; !ok {
			db.enrollments[key] = db.nextID()
		}
	}
	return nil
}

func (db *DB) ListEnrolledCourses(_ context.Context, studentID int64) ([]models.Course, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	courses := []models.Course{}
	for key := range db.enrollments {
		if key.studentID != studentID {
			continue
		}
		if course, ok := db.courses[key.courseID]; ok {
			courses = append(courses, *course)
		}
	}
	sortCourses(courses)
	return courses, nil
}

func (db *DB) IsEnrolled(_ context.Context, studentID, courseID int64) (bool, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.isEnrolled(studentID, courseID), nil
}
