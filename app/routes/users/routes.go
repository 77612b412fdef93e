package users

import (
	"fmt"

	"github.com/gofiber/fiber/v2"

	"github.com/TahsinShan/SAT-ar-Matha/app/core"
	"github.com/TahsinShan/SAT-ar-Matha/app/models"
	"github.com/TahsinShan/SAT-ar-Matha/app/routes/auth"
	"github.com/TahsinShan/SAT-ar-Matha/app/web"
)

const manageURL = "/manage-users"

type Handler struct {
	web.Deps
	hasher *auth.Hasher
}

func New(deps web.Deps, hasher *auth.Hasher) *Handler {
	return &Handler{Deps: deps, hasher: hasher}
}

type userForm struct {
	Name        string `form:"name" label:"Name" validate:"required,max=100"`
	IDNum       string `form:"id_num" label:"ID number" validate:"max=50"`
	Roll        string `form:"roll" label:"Roll" validate:"max=50"`
	RegNo       string `form:"reg_no" label:"Registration number" validate:"max=50"`
	Phone       string `form:"phone" label:"Phone" validate:"required,phone,max=20"`
	NewPassword string `form:"new_password" label:"New password" validate:"omitempty,min=6,max=72"`
}

func (f *userForm) clean() {
	f.Name = core.CleanString(f.Name)
	f.IDNum = core.CleanString(f.IDNum)
	f.Roll = core.CleanString(f.Roll)
	f.RegNo = core.CleanString(f.RegNo)
	f.Phone = core.CleanString(f.Phone)
}

func (f *userForm) apply(usr *models.User) {
	usr.Name = f.Name
	usr.IDNum = models.OptionalString(f.IDNum)
	usr.Roll = models.OptionalString(f.Roll)
	usr.RegNo = models.OptionalString(f.RegNo)
	usr.Phone = f.Phone
}

type studentForm struct {
	userForm
	Password string `form:"password" label:"Password" validate:"required,min=6,max=72"`
	CourseID int64  `form:"course_id" label:"Course" validate:"required,gt=0"`
}

// ManageUsersPage lists every account ordered by role, then name.
func (h *Handler) ManageUsersPage(c *fiber.Ctx) error {
	users, err := h.Store.ListUsers(c.UserContext())
	if err != nil {
		return err
	}
	return web.Render(c, "users/manage", "Manage users", fiber.Map{"Users": users})
}

// DeleteUser removes a student or teacher. Admin accounts are never deleted
// from the web interface.
func (h *Handler) DeleteUser(c *fiber.Ctx) error {
	userID, ok := web.FormID(c, "user_id")
	if !ok {
		return web.RedirectWithFlash(c, manageURL, "No user selected")
	}
	if userID == auth.CurrentIdentity(c).UserID {
		return web.RedirectWithFlash(c, manageURL, "You cannot delete your own account")
	}
	ctx := c.UserContext()
	usr, err := h.Store.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if usr.IsAdmin() {
		return web.RedirectWithFlash(c, manageURL, "Admin accounts cannot be deleted")
	}
	if err = h.Store.DeleteUser(ctx, usr.ID); err != nil {
		return err
	}
	h.Log.Info().Int64("user_id", usr.ID).Str("role", usr.Role.String()).Msg("user deleted")
	return web.RedirectWithFlash(c, manageURL, fmt.Sprintf("Deleted %s", usr.Name))
}

func (h *Handler) user(c *fiber.Ctx) (*models.User, error) {
	id, err := web.ParamID(c, "id")
	if err != nil {
		return nil, err
	}
	return h.Store.GetUserByID(c.UserContext(), id)
}

func (h *Handler) EditUserPage(c *fiber.Ctx) error {
	usr, err := h.user(c)
	if err != nil {
		return err
	}
	return web.Render(c, "users/edit", "Edit user", fiber.Map{"User": usr})
}

// UpdateUser edits identity fields and optionally resets the password. The
// role never changes.
func (h *Handler) UpdateUser(c *fiber.Ctx) error {
	usr, err := h.user(c)
	if err != nil {
		return err
	}
	ctx := c.UserContext()

	var form userForm
	if err = c.BodyParser(&form); err != nil {
		return fiber.ErrBadRequest
	}
	form.clean()
	form.apply(usr)

	err = core.Validate(form)
	if err == nil {
		err = h.Store.UpdateUser(ctx, usr)
		if core.IsConstraint(err) {
			err = core.Invalid("Another account already uses this phone or roll number")
		}
	}
	if err == nil && form.NewPassword != "" {
		var hash string
		if hash, err = h.hasher.HashPassword(form.NewPassword); err == nil {
			err = h.Store.UpdateUserPassword(ctx, usr.ID, hash)
		}
	}
	if err != nil {
		errs, err := web.FormErrors(err)
		if err != nil {
			return err
		}
		return web.RenderStatus(c, fiber.StatusBadRequest, "users/edit", "Edit user", fiber.Map{
			"User":   usr,
			"Errors": errs,
		})
	}
	h.Log.Info().Int64("user_id", usr.ID).Bool("password_reset", form.NewPassword != "").Msg("user updated")
	return web.RedirectWithFlash(c, manageURL, "User updated")
}

func (h *Handler) AddStudentPage(c *fiber.Ctx) error {
	return h.renderAddStudent(c, fiber.StatusOK, studentForm{}, nil)
}

func (h *Handler) renderAddStudent(c *fiber.Ctx, status int, form studentForm, errs []string) error {
	courses, err := h.Store.ListCourses(c.UserContext())
	if err != nil {
		return err
	}
	form.Password = ""
	return web.RenderStatus(c, status, "users/add_student", "Add student", fiber.Map{
		"Courses": courses,
		"Form":    form,
		"Errors":  errs,
	})
}

// AddStudent creates a student already enrolled in one course. Both rows are
// written together or not at all.
func (h *Handler) AddStudent(c *fiber.Ctx) error {
	var form studentForm
	if err := c.BodyParser(&form); err != nil {
		return h.renderAddStudent(c, fiber.StatusBadRequest, form, []string{"Invalid form submission"})
	}
	form.clean()

	err := core.Validate(form)
	var usr *models.User
	if err == nil {
		var hash string
		if hash, err = h.hasher.HashPassword(form.Password); err == nil {
			usr = &models.User{Role: models.RoleStudent, PasswordHash: hash}
			form.apply(usr)
			err = h.Store.CreateStudentWithEnrollment(c.UserContext(), usr, form.CourseID)
		}
	}
	if core.IsConstraint(err) {
		web.Flash(c, "A user with this phone or roll number already exists, or the course is gone")
		return c.Redirect("/admin/add-student", fiber.StatusSeeOther)
	}
	if err != nil {
		errs, err := web.FormErrors(err)
		if err != nil {
			return err
		}
		return h.renderAddStudent(c, fiber.StatusBadRequest, form, errs)
	}
	h.Log.Info().Int64("user_id", usr.ID).Int64("course_id", form.CourseID).Msg("student added")
	return web.RedirectWithFlash(c, manageURL, fmt.Sprintf("Student %s added", usr.Name))
}
