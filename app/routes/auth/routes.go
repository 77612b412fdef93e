package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/database"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
)

// identityKey is also the name templates use to reach the signed-in user.
const identityKey = "Identity"

// Identity is who is making the current request.
type Identity struct {
	UserID int64
	Role   models.Role
	Name   string
}

func (id *Identity) IsAdmin() bool   { return id.Role == models.RoleAdmin }
func (id *Identity) IsTeacher() bool { return id.Role == models.RoleTeacher }
func (id *Identity) IsStudent() bool { return id.Role == models.RoleStudent }

// CurrentIdentity returns the signed-in user, or nil.
func CurrentIdentity(c *fiber.Ctx) *Identity {
	id, _ := c.Locals(identityKey).(*Identity)
	return id
}

// Start sets the session cookie for usr.
func (s *Sessions) Start(c *fiber.Ctx, usr *models.User) error {
	token, expires, err := s.GenerateJWT(usr)
	if err != nil {
		return err
	}
	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
	return nil
}

func (s *Sessions) End(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     s.cookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Now().Add(-time.Hour),
		HTTPOnly: true,
		Secure:   s.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// Middleware resolves the session cookie into an Identity. Requests without a
// valid session, or whose account no longer exists, continue anonymously; the
// Gate decides what they may reach. Role and name come from the stored account.
func (s *Sessions) Middleware(users database.UserStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := c.Cookies(s.cookieName)
		if tokenString == "" {
			return c.Next()
		}
		claims, err := s.ValidateJWT(tokenString)
		if err != nil {
			s.End(c)
			return c.Next()
		}
		usr, err := users.GetUserByID(c.UserContext(), claims.UserID)
		if core.IsNotFound(err) {
			s.End(c)
			return c.Next()
		}
		if err != nil {
			return err
		}
		c.Locals(identityKey, &Identity{UserID: usr.ID, Role: usr.Role, Name: usr.Name})
		return c.Next()
	}
}

// Policy says who may reach a route.
type Policy struct {
	public bool
	roles  []models.Role
}

var (
	// Public routes need no session.
	Public = Policy{public: true}
	// Authenticated routes accept any signed-in user.
	Authenticated = Policy{}
)

// Roles restricts a route to the given roles.
func Roles(roles ...models.Role) Policy {
	return Policy{roles: roles}
}

func (p Policy) IsPublic() bool {
	return p.public
}

func (p Policy) Allows(id *Identity) bool {
	if p.public {
		return true
	}
	if id == nil {
		return false
	}
	if len(p.roles) == 0 {
		return true
	}
	for _, role := range p.roles {
		if id.Role == role {
			return true
		}
	}
	return false
}

// Gate enforces p before the route handler runs. Anonymous users go to the
// login page, page views by the wrong role go back to the dashboard and
// mutations by the wrong role are refused.
func Gate(p Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := CurrentIdentity(c)
		if p.Allows(id) {
			return c.Next()
		}
		if id == nil {
			return c.Redirect("/login")
		}
		if c.Method() == fiber.MethodGet || c.Method() == fiber.MethodHead {
			return c.Redirect("/dashboard")
		}
		return core.ErrForbidden
	}
}
