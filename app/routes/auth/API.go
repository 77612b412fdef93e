package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/database"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
	"github.com/TahsinShan/SAT-ar-Matha/app/web"
)

type Handler struct {
	users    database.UserStore
	sessions *Sessions
	hasher   *Hasher
	log      zerolog.Logger
}

func NewHandler(users database.UserStore, sessions *Sessions, hasher *Hasher, log zerolog.Logger) *Handler {
	return &Handler{users: users, sessions: sessions, hasher: hasher, log: log}
}

type loginForm struct {
	Phone    string `form:"phone" label:"Phone" validate:"required"`
	Password string `form:"password" label:"Password" validate:"required"`
}

type signupForm struct {
	Name     string `form:"name" label:"Name" validate:"required,max=100"`
	Role     string `form:"role" label:"Role" validate:"required"`
	IDNum    string `form:"id_num" label:"ID number" validate:"max=50"`
	Roll     string `form:"roll" label:"Roll" validate:"max=50"`
	RegNo    string `form:"reg_no" label:"Registration number" validate:"max=50"`
	Phone    string `form:"phone" label:"Phone" validate:"required,phone,max=20"`
	Password string `form:"password" label:"Password" validate:"required,min=6,max=72"`
}

func (h *Handler) ShowLoginPage(c *fiber.Ctx) error {
	if CurrentIdentity(c) != nil {
		return c.Redirect("/dashboard")
	}
	return web.Render(c, "auth/login", "Login", nil)
}

// Login never tells the client whether the phone or the password was wrong.
func (h *Handler) Login(c *fiber.Ctx) error {
	var form loginForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	form.Phone = core.CleanString(form.Phone)
	if err := core.Validate(form); err != nil {
		return h.loginFailed(c, fiber.StatusBadRequest, form.Phone, err)
	}

	usr, err := h.users.GetUserByPhone(c.UserContext(), form.Phone)
	switch {
	case core.IsNotFound(err):
		h.hasher.DummyCheck(form.Password)
		return h.loginFailed(c, fiber.StatusUnauthorized, form.Phone, core.ErrInvalidCredentials)
	case err != nil:
		return err
	}
	if !h.hasher.CheckPasswordHash(form.Password, usr.PasswordHash) {
		return h.loginFailed(c, fiber.StatusUnauthorized, form.Phone, core.ErrInvalidCredentials)
	}

	if err = h.sessions.Start(c, usr); err != nil {
		return err
	}
	h.log.Info().Int64("user_id", usr.ID).Str("role", usr.Role.String()).Msg("user logged in")
	return c.Redirect("/dashboard", fiber.StatusSeeOther)
}

func (h *Handler) loginFailed(c *fiber.Ctx, status int, phone string, err error) error {
	msgs := []string{"Invalid credentials"}
	if vErr, ok := core.AsValidation(err); ok {
		msgs = vErr.Messages()
	}
	return web.RenderStatus(c, status, "auth/login", "Login", fiber.Map{
		"Errors": msgs,
		"Phone":  phone,
	})
}

func (h *Handler) Logout(c *fiber.Ctx) error {
	h.sessions.End(c)
	return c.Redirect("/login", fiber.StatusSeeOther)
}

func (h *Handler) ShowSignupPage(c *fiber.Ctx) error {
	return web.Render(c, "auth/signup", "Sign up", fiber.Map{
		"Roles": []models.Role{models.RoleStudent, models.RoleTeacher},
	})
}

func (h *Handler) Signup(c *fiber.Ctx) error {
	var form signupForm
	if err := c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	form.Name = core.CleanString(form.Name)
	form.Role = core.CleanString(form.Role, true)
	form.Phone = core.CleanString(form.Phone)

	usr, err := h.register(c, form)
	if err != nil {
		if !core.IsValidation(err) {
			return err
		}
		vErr, _ := core.AsValidation(err)
		form.Password = ""
		return web.RenderStatus(c, fiber.StatusBadRequest, "auth/signup", "Sign up", fiber.Map{
			"Errors": vErr.Messages(),
			"Form":   form,
			"Roles":  []models.Role{models.RoleStudent, models.RoleTeacher},
		})
	}
	h.log.Info().Int64("user_id", usr.ID).Str("role", usr.Role.String()).Msg("user signed up")
	return web.RedirectWithFlash(c, "/login", "Account created, you can now log in")
}

func (h *Handler) register(c *fiber.Ctx, form signupForm) (*models.User, error) {
	role := models.Role(form.Role)
	if role == models.RoleAdmin {
		return nil, core.Invalid("Admin signup is not allowed")
	}
	if err := core.Validate(form); err != nil {
		return nil, err
	}
	if !role.SelfRegistrable() {
		return nil, core.Invalid("Role must be student or teacher")
	}

	hash, err := h.hasher.HashPassword(form.Password)
	if err != nil {
		return nil, err
	}
	usr := &models.User{
		Name:         form.Name,
		Role:         role,
		IDNum:        models.OptionalString(core.CleanString(form.IDNum)),
		Roll:         models.OptionalString(core.CleanString(form.Roll)),
		RegNo:        models.OptionalString(core.CleanString(form.RegNo)),
		Phone:        form.Phone,
		PasswordHash: hash,
	}
	if err = h.users.CreateUser(c.UserContext(), usr); err != nil {
		if core.IsConstraint(err) {
			return nil, core.Invalid("An account with this phone or roll number already exists")
		}
		return nil, errors.Wrap(err, "creating account")
	}
	return usr, nil
}
