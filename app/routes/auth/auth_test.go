package auth

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/TahsinShan/SAT-ar-Matha/app/config"
	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	inmemdb "github.com/TahsinShan/SAT-ar-Matha/app/database/inmem"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

func newSessions(secret string, now time.Time) *Sessions {
	s := NewSessions(config.SessionConfig{Secret: secret, TTL: time.Hour})
	s.now = func() time.Time { return now }
	return s
}

func TestSessionRoundTrip(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s := newSessions("secret", now)
	usr := &models.User{ID: 7, Name: "Sara", Role: models.RoleStudent}

	token, expires, err := s.GenerateJWT(usr)
	require.NoError(t, err)
	assert.Equal(t, now.Add(time.Hour), expires)

	claims, err := s.ValidateJWT(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.UserID)
	assert.Equal(t, models.RoleStudent, claims.Role)
	assert.Equal(t, "Sara", claims.Name)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestValidateJWTRejects(t *testing.T) {
	now := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	s := newSessions("secret", now)
	usr := &models.User{ID: 7, Name: "Sara", Role: models.RoleStudent}
	token, _, err := s.GenerateJWT(usr)
	require.NoError(t, err)

	sign := func(method jwt.SigningMethod, key interface{}, claims JWTClaims) string {
		signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
		require.NoError(t, err)
		return signed
	}
	valid := func() JWTClaims {
		return JWTClaims{
			UserID: 7,
			Role:   models.RoleStudent,
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
			},
		}
	}

	tests := []struct {
		name  string
		token string
		s     *Sessions
	}{
		{"other secret", token, newSessions("other", now)},
		{"expired", token, newSessions("secret", now.Add(2*time.Hour))},
		{"tampered", token[:len(token)-2] + "xx", s},
		{"garbage", "not-a-token", s},
		{"alg none", sign(jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, valid()), s},
		{"wrong issuer", func() string {
			claims := valid()
			claims.Issuer = "someone-else"
			return sign(jwt.SigningMethodHS256, []byte("secret"), claims)
		}(), s},
		{"unknown role", func() string {
			claims := valid()
			claims.Role = "principal"
			return sign(jwt.SigningMethodHS256, []byte("secret"), claims)
		}(), s},
		{"missing user", func() string {
			claims := valid()
			claims.UserID = 0
			return sign(jwt.SigningMethodHS256, []byte("secret"), claims)
		}(), s},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := tc.s.ValidateJWT(tc.token)
			assert.Error(t, err)
		})
	}
}

func TestPolicyAllows(t *testing.T) {
	student := &Identity{UserID: 1, Role: models.RoleStudent}
	teacher := &Identity{UserID: 2, Role: models.RoleTeacher}
	admin := &Identity{UserID: 3, Role: models.RoleAdmin}
	staff := Roles(models.RoleTeacher, models.RoleAdmin)

	assert.True(t, Public.Allows(nil))
	assert.True(t, Public.IsPublic())
	assert.False(t, Authenticated.Allows(nil))
	assert.True(t, Authenticated.Allows(student))
	assert.False(t, staff.Allows(nil))
	assert.False(t, staff.Allows(student))
	assert.True(t, staff.Allows(teacher))
	assert.True(t, staff.Allows(admin))
	assert.False(t, Roles(models.RoleAdmin).Allows(teacher))
	assert.False(t, staff.IsPublic())
}

func TestHasher(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)
	hash, err := h.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEqual(t, "correct horse", hash)
	assert.True(t, h.CheckPasswordHash("correct horse", hash))
	assert.False(t, h.CheckPasswordHash("wrong horse", hash))
	assert.False(t, h.CheckPasswordHash("correct horse", "not-a-hash"))
	h.DummyCheck("anything")

	assert.Equal(t, bcrypt.DefaultCost, NewHasher(0).cost)
}

func TestEnsureBootstrapAdmin(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	h := NewHasher(bcrypt.MinCost)

	require.NoError(t, EnsureBootstrapAdmin(ctx, db, h, config.BootstrapConfig{}, zerolog.Nop()))
	n, err := db.CountUsersByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Zero(t, n)

	conf := config.BootstrapConfig{AdminName: "Root", AdminPhone: "0999", AdminPassword: "secret1"}
	require.NoError(t, EnsureBootstrapAdmin(ctx, db, h, conf, zerolog.Nop()))
	require.NoError(t, EnsureBootstrapAdmin(ctx, db, h, conf, zerolog.Nop()))
	n, err = db.CountUsersByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	usr, err := db.GetUserByPhone(ctx, "0999")
	require.NoError(t, err)
	assert.Equal(t, "Root", usr.Name)
	assert.True(t, h.CheckPasswordHash("secret1", usr.PasswordHash))
}

func TestCreateAdminValidation(t *testing.T) {
	ctx := context.Background()
	db := inmemdb.Open()
	h := NewHasher(bcrypt.MinCost)

	_, err := CreateAdmin(ctx, db, h, "", "", "secret1")
	assert.True(t, core.IsValidation(err))
	_, err = CreateAdmin(ctx, db, h, "", "0999", "short")
	assert.True(t, core.IsValidation(err))

	usr, err := CreateAdmin(ctx, db, h, "", " 0999 ", "secret1")
	require.NoError(t, err)
	assert.Equal(t, "Administrator", usr.Name)
	assert.Equal(t, "0999", usr.Phone)

	_, err = CreateAdmin(ctx, db, h, "Again", "0999", "secret1")
	assert.True(t, core.IsConstraint(err))
}
