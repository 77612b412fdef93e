package auth

import (
	"strconv"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/TahsinShan/SAT-ar-Matha/app/config"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

const issuer = "lms"

// Hasher hashes and checks passwords with a fixed bcrypt cost.
type Hasher struct {
	cost      int
	dummyOnce sync.Once
	dummy     []byte
}

func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

func (h *Hasher) HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	return string(bytes), errors.Wrap(err, "hashing password")
}

func (h *Hasher) CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// DummyCheck spends the same time as a real comparison. It is used when no
// account matches so a failed login does not reveal whether the phone exists.
func (h *Hasher) DummyCheck(password string) {
	h.dummyOnce.Do(func() {
		h.dummy, _ = bcrypt.GenerateFromPassword([]byte("not-a-real-password"), h.cost)
	})
	_ = bcrypt.CompareHashAndPassword(h.dummy, []byte(password))
}

type JWTClaims struct {
	UserID int64       `json:"uid"`
	Role   models.Role `json:"role"`
	Name   string      `json:"name"`
	jwt.RegisteredClaims
}

// Sessions issues and verifies the signed session cookie.
type Sessions struct {
	secret     []byte
	ttl        time.Duration
	cookieName string
	secure     bool
	now        func() time.Time
}

func NewSessions(conf config.SessionConfig) *Sessions {
	ttl := conf.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	name := conf.CookieName
	if name == "" {
		name = "lms_session"
	}
	return &Sessions{
		secret:     []byte(conf.Secret),
		ttl:        ttl,
		cookieName: name,
		secure:     conf.Secure,
		now:        time.Now,
	}
}

func (s *Sessions) CookieName() string {
	return s.cookieName
}

func (s *Sessions) GenerateJWT(usr *models.User) (string, time.Time, error) {
	now := s.now()
	expires := now.Add(s.ttl)
	claims := JWTClaims{
		UserID: usr.ID,
		Role:   usr.Role,
		Name:   usr.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   strconv.FormatInt(usr.ID, 10),
			ExpiresAt: jwt.NewNumericDate(expires),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", time.Time{}, errors.Wrap(err, "signing session")
	}
	return signed, expires, nil
}

func (s *Sessions) ValidateJWT(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*JWTClaims); ok && token.Valid && claims.Role.Valid() && claims.UserID > 0 {
		return claims, nil
	}
	return nil, jwt.ErrTokenInvalidClaims
}
