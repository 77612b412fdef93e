package inmemdb

import (
	"context"
	"sort"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

// checkUniqueness must be called with the lock held.
func (db *DB) checkUniqueness(usr *models.User) error {
	for _, other := range db.users {
		if other.ID == usr.ID {
			continue
		}
		if other.Phone == usr.Phone {
			return constraint("users_phone_key")
		}
		if usr.Roll.Valid && other.Roll.Valid && other.Roll.String == usr.Roll.String {
			return constraint("users_roll_key")
		}
	}
	return nil
}

func (db *DB) insertUser(usr *models.User) error {
	if err := db.checkUniqueness(usr); err != nil {
		return err
	}
	usr.ID = db.nextID()
	usr.CreatedAt = db.Now()
	stored := *usr
	db.users[usr.ID] = &stored
	return nil
}

func (db *DB) CreateUser(_ context.Context, usr *models.User) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()
	return db.insertUser(usr)
}

func (db *DB) CreateStudentWithEnrollment(_ context.Context, usr *models.User, courseID int64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.courses[courseID]; !ok {
		return constraint("enrollments_course_id_fkey")
	}
	if err := db.insertUser(usr); err != nil {
		return err
	}
	db.enrollments[enrollmentKey{usr.ID, courseID}] = db.nextID()
	return nil
}

func (db *DB) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	if usr, ok := db.users[id]; ok {
		u := *usr
		return &u, nil
	}
	return nil, core.ErrNotFound
}

func (db *DB) GetUserByPhone(_ context.Context, phone string) (*models.User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	for _, usr := range db.users {
		if usr.Phone == phone {
			u := *usr
			return &u, nil
		}
	}
	return nil, core.ErrNotFound
}

func (db *DB) ListUsers(_ context.Context) ([]models.User, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	users := make([]models.User, 0, len(db.users))
	for _, usr := range db.users {
		users = append(users, *usr)
	}
	sort.Slice(users, func(i, j int) bool {
		if users[i].Role != users[j].Role {
			return users[i].Role < users[j].Role
		}
		if users[i].Name != users[j].Name {
			return users[i].Name < users[j].Name
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

func (db *DB) UpdateUser(_ context.Context, usr *models.User) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	orig, ok := db.users[usr.ID]
	if !ok {
		return core.ErrNotFound
	}
	if err := db.checkUniqueness(usr); err != nil {
		return err
	}
	orig.Name = usr.Name
	orig.IDNum = usr.IDNum
	orig.Roll = usr.Roll
	orig.RegNo = usr.RegNo
	orig.Phone = usr.Phone
	return nil
}

func (db *DB) UpdateUserPassword(_ context.Context, id int64, hash string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	usr, ok := db.users[id]
	if !ok {
		return core.ErrNotFound
	}
	usr.PasswordHash = hash
	return nil
}

// DeleteUser cascades to enrollments and detaches authored updates and events.
func (db *DB) DeleteUser(_ context.Context, id int64) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, ok := db.users[id]; !ok {
		return core.ErrNotFound
	}
	delete(db.users, id)
	for key := range db.enrollments {
		if key.studentID == id {
			delete(db.enrollments, key)
		}
	}
	for _, upd := range db.updates {
		if upd.AuthoredBy(id) {
			upd.TeacherID.Valid = false
			upd.TeacherID.Int64 = 0
		}
	}
	for _, event := range db.events {
		if event.CreatedBy.Valid && event.CreatedBy.Int64 == id {
			event.CreatedBy.Valid = false
			event.CreatedBy.Int64 = 0
		}
	}
	return nil
}

func (db *DB) CountUsersByRole(_ context.Context, role models.Role) (int, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	var n int
	for _, usr := range db.users {
		if usr.Role == role {
			n++
		}
	}
	return n, nil
}
