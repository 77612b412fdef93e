package database

import (
	"context"
	"database/sql"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

type (
	UserStore interface {
		CreateUser(ctx context.Context, usr *models.User) error
		// CreateStudentWithEnrollment inserts the student and its first enrollment atomically.
		CreateStudentWithEnrollment(ctx context.Context, usr *models.User, courseID int64) error
		GetUserByID(ctx context.Context, id int64) (*models.User, error)
		GetUserByPhone(ctx context.Context, phone string) (*models.User, error)
		ListUsers(ctx context.Context) ([]models.User, error)
		UpdateUser(ctx context.Context, usr *models.User) error
		UpdateUserPassword(ctx context.Context, id int64, hash string) error
		DeleteUser(ctx context.Context, id int64) error
		CountUsersByRole(ctx context.Context, role models.Role) (int, error)
	}

	CourseStore interface {
		CreateCourse(ctx context.Context, course *models.Course) error
		GetCourse(ctx context.Context, id int64) (*models.Course, error)
		ListCourses(ctx context.Context) ([]models.Course, error)
		UpdateCourse(ctx context.Context, course *models.Course) error
		// DeleteCourse removes the course and its dependent rows, returning the
		// stored filenames that are no longer referenced.
		DeleteCourse(ctx context.Context, id int64) ([]string, error)
	}

	EnrollmentStore interface {
		// ReplaceEnrollments makes the student's enrollment set exactly courseIDs.
		ReplaceEnrollments(ctx context.Context, studentID int64, courseIDs []int64) error
		ListEnrolledCourses(ctx context.Context, studentID int64) ([]models.Course, error)
		IsEnrolled(ctx context.Context, studentID, courseID int64) (bool, error)
	}

	ResourceStore interface {
		CreateResource(ctx context.Context, res *models.Resource) error
		GetResource(ctx context.Context, id int64) (*models.Resource, error)
		ListResources(ctx context.Context, courseID int64) ([]models.Resource, error)
		ListStudentResources(ctx context.Context, studentID int64) ([]models.Resource, error)
		UpdateResource(ctx context.Context, res *models.Resource) error
		DeleteResource(ctx context.Context, id int64) error
	}

	VideoStore interface {
		CreateVideo(ctx context.Context, vid *models.Video) error
		GetVideo(ctx context.Context, id int64) (*models.Video, error)
		ListVideos(ctx context.Context, courseID int64) ([]models.Video, error)
		ListStudentVideos(ctx context.Context, studentID int64) ([]models.Video, error)
		UpdateVideo(ctx context.Context, vid *models.Video) error
		DeleteVideo(ctx context.Context, id int64) error
	}

	UpdateStore interface {
		CreateUpdate(ctx context.Context, upd *models.Update) error
		GetUpdate(ctx context.Context, id int64) (*models.Update, error)
		// ListUpdates returns updates newest first.
		ListUpdates(ctx context.Context, filter models.UpdateFilter) ([]models.Update, error)
		DeleteUpdate(ctx context.Context, id int64) error
	}

	EventStore interface {
		CreateEvent(ctx context.Context, event *models.Event) error
		GetEvent(ctx context.Context, id int64) (*models.Event, error)
		ListEvents(ctx context.Context) ([]models.Event, error)
		UpdateEvent(ctx context.Context, event *models.Event) error
		DeleteEvent(ctx context.Context, id int64) error
	}

	StatsStore interface {
		GetDashboardStats(ctx context.Context) (*models.DashboardStats, error)
	}

	// FileStore reports which stored uploads are still referenced.
	FileStore interface {
		ListStoredFiles(ctx context.Context) ([]string, error)
	}

	// Store is everything the web application needs from persistence.
	Store interface {
		UserStore
		CourseStore
		EnrollmentStore
		ResourceStore
		VideoStore
		UpdateStore
		EventStore
		StatsStore
		FileStore
		Ping(ctx context.Context) error
	}
)

// Postgres implements Store on top of a pooled sqlx handle.
type Postgres struct {
	db *sqlx.DB
}

var _ Store = (*Postgres)(nil)

func NewPostgres(db *sqlx.DB) *Postgres {
	return &Postgres{db: db}
}

func (p *Postgres) Ping(ctx context.Context) error {
	return errors.Wrap(p.db.PingContext(ctx), "pinging database")
}

// withTx runs fn inside a transaction, rolling back when fn fails.
func (p *Postgres) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "beginning transaction")
	}
	defer func() { _ = tx.Rollback() }()

	if err = fn(tx); err != nil {
		return err
	}
	return errors.Wrap(tx.Commit(), "committing transaction")
}

// mapError translates driver errors into the application taxonomy.
func mapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return core.ErrNotFound
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "23505", "23503": // unique_violation, foreign_key_violation
			return &core.ConstraintError{Constraint: pqErr.Constraint, Err: err}
		}
	}
	return errors.Wrap(err, msg)
}

// expectAffected turns a zero-row UPDATE/DELETE into ErrNotFound.
func expectAffected(res sql.Result, err error, msg string) error {
	if err != nil {
		return mapError(err, msg)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if n == 0 {
		return core.ErrNotFound
	}
	return nil
}
