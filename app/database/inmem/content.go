package inmemdb

import (
	"context"
	"sort"
	"time"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

func (db *DB) courseName(id int64) string {
	if course, ok := db.courses[id]; ok {
		return course.Name
	}
	return ""
}

func (db *DB) CreateResource(_ context.Context, res *models.Resource) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.courses[res.CourseID]; !ok {
		return constraint("resource_course_id_fkey")
	}
	res.ID = db.nextID()
	res.CreatedAt = db.Now()
	stored := *res
	db.resources[res.ID] = &stored
	return nil
}

func (db *DB) GetResource(_ context.Context, id int64) (*models.Resource, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	res, ok := db.resources[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	r := *res
	r.CourseName = db.courseName(r.CourseID)
	return &r, nil
}

func (db *DB) queryResources(keep func(*models.Resource) bool) []models.Resource {
	resources := []models.Resource{}
	for _, res := range db.resources {
		if keep(res) {
			r := *res
			r.CourseName = db.courseName(r.CourseID)
			resources = append(resources, r)
		}
	}
	return resources
}

func (db *DB) ListResources(_ context.Context, courseID int64) ([]models.Resource, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	resources := db.queryResources(func(r *models.Resource) bool { return r.CourseID == courseID })
	sortByNewest(resources,
		func(r models.Resource) time.Time { return r.CreatedAt },
		func(r models.Resource) int64 { return r.ID })
	return resources, nil
}

func (db *DB) ListStudentResources(_ context.Context, studentID int64) ([]models.Resource, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	resources := db.queryResources(func(r *models.Resource) bool { return db.isEnrolled(studentID, r.CourseID) })
	sortByNewest(resources,
		func(r models.Resource) time.Time { return r.CreatedAt },
		func(r models.Resource) int64 { return r.ID })
	sort.SliceStable(resources, func(i, j int) bool { return resources[i].CourseName < resources[j].CourseName })
	return resources, nil
}

func (db *DB) UpdateResource(_ context.Context, res *models.Resource) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	orig, ok := db.resources[res.ID]
	if !ok {
		return core.ErrNotFound
	}
	orig.Title = res.Title
	orig.Filename = res.Filename
	return nil
}

func (db *DB) DeleteResource(_ context.Context, id int64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.resources[id]; !ok {
		return core.ErrNotFound
	}
	delete(db.resources, id)
	return nil
}

func (db *DB) CreateVideo(_ context.Context, vid *models.Video) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.courses[vid.CourseID]; !ok {
		return constraint("video_course_id_fkey")
	}
	vid.ID = db.nextID()
	vid.CreatedAt = db.Now()
	stored := *vid
	db.videos[vid.ID] = &stored
	return nil
}

func (db *DB) GetVideo(_ context.Context, id int64) (*models.Video, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	vid, ok := db.videos[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	v := *vid
	v.CourseName = db.courseName(v.CourseID)
	return &v, nil
}

func (db *DB) queryVideos(keep func(*models.Video) bool) []models.Video {
	videos := []models.Video{}
	for _, vid := range db.videos {
		if keep(vid) {
			v := *vid
			v.CourseName = db.courseName(v.CourseID)
			videos = append(videos, v)
		}
	}
	return videos
}

func (db *DB) ListVideos(_ context.Context, courseID int64) ([]models.Video, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	videos := db.queryVideos(func(v *models.Video) bool { return v.CourseID == courseID })
	sortByNewest(videos,
		func(v models.Video) time.Time { return v.CreatedAt },
		func(v models.Video) int64 { return v.ID })
	return videos, nil
}

func (db *DB) ListStudentVideos(_ context.Context, studentID int64) ([]models.Video, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	videos := db.queryVideos(func(v *models.Video) bool { return db.isEnrolled(studentID, v.CourseID) })
	sortByNewest(videos,
		func(v models.Video) time.Time { return v.CreatedAt },
		func(v models.Video) int64 { return v.ID })
	sort.SliceStable(videos, func(i, j int) bool { return videos[i].CourseName < videos[j].CourseName })
	return videos, nil
}

func (db *DB) UpdateVideo(_ context.Context, vid *models.Video) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	orig, ok := db.videos[vid.ID]
	if !ok {
		return core.ErrNotFound
	}
	orig.Title = vid.Title
	orig.EmbedCode = vid.EmbedCode
	return nil
}

func (db *DB) DeleteVideo(_ context.Context, id int64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.videos[id]; !ok {
		return core.ErrNotFound
	}
	delete(db.videos, id)
	return nil
}

func (db *DB) ListStoredFiles(_ context.Context) ([]string, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	seen := make(map[string]bool)
	for _, res := range db.resources {
		seen[res.Filename] = true
	}
	for _, course := range db.courses {
		if course.SyllabusPDF.Valid && course.SyllabusPDF.String != "" {
			seen[course.SyllabusPDF.String] = true
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}
