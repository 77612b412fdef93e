package database

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

const userColumns = `id, name, role, id_num, roll, reg_no, photo, phone, password_hash, created_at`

const insertUserQuery = `
	INSERT INTO users (name, role, id_num, roll, reg_no, photo, phone, password_hash)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	RETURNING id, created_at`

func insertUser(ctx context.Context, q sqlx.QueryerContext, usr *models.User) error {
	return q.QueryRowxContext(ctx, insertUserQuery,
		usr.Name, usr.Role, usr.IDNum, usr.Roll, usr.RegNo, usr.Photo, usr.Phone, usr.PasswordHash,
	).Scan(&usr.ID, &usr.CreatedAt)
}

func (p *Postgres) CreateUser(ctx context.Context, usr *models.User) error {
	return mapError(insertUser(ctx, p.db, usr), "creating user")
}

func (p *Postgres) CreateStudentWithEnrollment(ctx context.Context, usr *models.User, courseID int64) error {
	return p.withTx(ctx, func(tx *sqlx.Tx) error {
		if err := insertUser(ctx, tx, usr); err != nil {
			return mapError(err, "creating student")
		}
		_, err := tx.ExecContext(ctx,
			`INSERT INTO enrollments (student_id, course_id) VALUES ($1, $2)`, usr.ID, courseID)
		return mapError(err, "enrolling student")
	})
}

func (p *Postgres) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var usr models.User
	err := p.db.GetContext(ctx, &usr, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	if err != nil {
		return nil, mapError(err, "getting user")
	}
	return &usr, nil
}

func (p *Postgres) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	var usr models.User
	err := p.db.GetContext(ctx, &usr, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	if err != nil {
		return nil, mapError(err, "getting user by phone")
	}
	return &usr, nil
}

func (p *Postgres) ListUsers(ctx context.Context) ([]models.User, error) {
	users := []models.User{}
	err := p.db.SelectContext(ctx, &users, `SELECT `+userColumns+` FROM users ORDER BY role, name, id`)
	if err != nil {
		return nil, mapError(err, "listing users")
	}
	return users, nil
}

func (p *Postgres) UpdateUser(ctx context.Context, usr *models.User) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE users SET name = $1, id_num = $2, roll = $3, reg_no = $4, phone = $5
		WHERE id = $6`,
		usr.Name, usr.IDNum, usr.Roll, usr.RegNo, usr.Phone, usr.ID,
	)
	return expectAffected(res, err, "updating user")
}

func (p *Postgres) UpdateUserPassword(ctx context.Context, id int64, hash string) error {
	res, err := p.db.ExecContext(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	return expectAffected(res, err, "updating password")
}

func (p *Postgres) DeleteUser(ctx context.Context, id int64) error {
	res, err := p.db.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	return expectAffected(res, err, "deleting user")
}

func (p *Postgres) CountUsersByRole(ctx context.Context, role models.Role) (int, error) {
	var n int
	err := p.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users WHERE role = $1`, role)
	return n, mapError(err, "counting users")
}
