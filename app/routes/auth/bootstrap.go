package auth

import (
	"context"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/TahsinShan/SAT-ar-Matha/app/config"
	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/database"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

// CreateAdmin adds an administrator account. Admins can only be created by
// the operator, never through signup.
func CreateAdmin(ctx context.Context, users database.UserStore, hasher *Hasher, name, phone, password string) (*models.User, error) {
	name, phone = core.CleanString(name), core.CleanString(phone)
	if name == "" {
		name = "Administrator"
	}
	if phone == "" || password == "" {
		return nil, core.Invalid("phone and password are required")
	}
	if len(password) < 6 {
		return nil, core.Invalid("password must be at least 6 characters")
	}
	hash, err := hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}
	usr := &models.User{Name: name, Role: models.RoleAdmin, Phone: phone, PasswordHash: hash}
	if err = users.CreateUser(ctx, usr); err != nil {
		return nil, errors.Wrap(err, "creating admin")
	}
	return usr, nil
}

// EnsureBootstrapAdmin creates the configured admin when the database has none.
func EnsureBootstrapAdmin(ctx context.Context, users database.UserStore, hasher *Hasher, conf config.BootstrapConfig, log zerolog.Logger) error {
	if conf.AdminPhone == "" {
		return nil
	}
	n, err := users.CountUsersByRole(ctx, models.RoleAdmin)
	if err != nil {
		return errors.Wrap(err, "counting admins")
	}
	if n > 0 {
		return nil
	}
	usr, err := CreateAdmin(ctx, users, hasher, conf.AdminName, conf.AdminPhone, conf.AdminPassword)
	if err != nil {
		return err
	}
	log.Info().Int64("user_id", usr.ID).Str("phone", usr.Phone).Msg("bootstrap admin created")
	return nil
}
