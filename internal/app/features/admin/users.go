// internal/app/features/admin/users.go
package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	userstore "github.com/dalemusser/freightdesk/internal/app/store/users"
	"github.com/dalemusser/freightdesk/internal/app/system/authz"
	"github.com/dalemusser/freightdesk/internal/app/system/inputval"
	"github.com/dalemusser/freightdesk/internal/app/system/normalize"
	"github.com/dalemusser/freightdesk/internal/app/system/paging"
	"github.com/dalemusser/freightdesk/internal/app/system/timeouts"
	"github.com/dalemusser/freightdesk/internal/app/system/viewdata"
	"github.com/dalemusser/freightdesk/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type usersData struct {
	viewdata.BaseVM
	Role  string
	Roles []string
	Rows  []userRow
	Pager paging.Nav
}

type userRow struct {
	ID       string
	FullName string
	LoginID  string
	Role     string
	Status   string
	Disabled bool
	Self     bool
}

type userForm struct {
	viewdata.BaseVM
	Roles    []string
	FullName string
	LoginID  string
	NewRole  string
}

type userInput struct {
	FullName string `validate:"required,max=120" label:"Full name"`
	LoginID  string `validate:"required,max=80" label:"Login ID"`
	Role     string `validate:"required,role" label:"Role"`
	Password string `validate:"required,min=8,max=128" label:"Password"`
}

// GET /admin/users
func (h *Handler) ServeUsers(w http.ResponseWriter, r *http.Request) {
	role := normalize.Filter(query.Get(r, "role"))
	if !authz.IsValidRole(role) {
		role = ""
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	page, err := h.Users.List(ctx, role, paging.FromRequest(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error listing users", err, "Unable to load users.", "/admin")
		return
	}

	self := authz.UserID(r)
	rows := make([]userRow, 0, len(page.Rows))
	for _, u := range page.Rows {
		rows = append(rows, userRow{
			ID:       u.ID.Hex(),
			FullName: u.FullName,
			LoginID:  u.LoginID,
			Role:     u.Role,
			Status:   u.Status,
			Disabled: u.IsDisabled(),
			Self:     u.ID == self,
		})
	}

	templates.Render(w, r, "admin_users", usersData{
		BaseVM: viewdata.NewBaseVM(r, "Users", "/admin"),
		Role:   role,
		Roles:  authz.Roles,
		Rows:   rows,
		Pager:  paging.NavFor(r.URL.Path, page, url.Values{"role": {role}}),
	})
}

// GET /admin/users/new
func (h *Handler) ServeNewUser(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "admin_user_new", userForm{
		BaseVM:  viewdata.NewBaseVM(r, "New user", "/admin/users"),
		Roles:   authz.Roles,
		NewRole: authz.RoleCourier,
	})
}

// POST /admin/users/new
func (h *Handler) HandleNewUser(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/users")
		return
	}

	form := userForm{
		BaseVM:   viewdata.NewBaseVM(r, "New user", "/admin/users"),
		Roles:    authz.Roles,
		FullName: normalize.Name(r.PostFormValue("full_name")),
		LoginID:  normalize.LoginID(r.PostFormValue("login_id")),
		NewRole:  normalize.Role(r.PostFormValue("role")),
	}
	in := userInput{
		FullName: form.FullName,
		LoginID:  form.LoginID,
		Role:     form.NewRole,
		Password: r.PostFormValue("password"),
	}
	if res := inputval.Validate(in); res.HasErrors() {
		form.SetError(res.First())
		renderInvalid(w, r, "admin_user_new", form)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Create(ctx, models.User{
		FullName: in.FullName,
		LoginID:  in.LoginID,
		Role:     in.Role,
	}, in.Password)
	if errors.Is(err, userstore.ErrDuplicateLoginID) {
		form.SetError("That login ID is already in use.")
		renderInvalid(w, r, "admin_user_new", form)
		return
	}
	if err != nil {
		h.ErrLog.LogServerError(w, r, "database error creating user", err, "Unable to create the user.", "/admin/users")
		return
	}
	h.Log.Info("user created", zap.String("login_id", u.LoginID), zap.String("role", u.Role))
	h.Audit.UserCreated(ctx, r, authz.UserID(r), u.ID, u.Role)

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}

// POST /admin/users/{id}/status
func (h *Handler) HandleUserStatus(w http.ResponseWriter, r *http.Request) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		h.ErrLog.LogBadRequest(w, r, "bad user id", err, "Bad user id.", "/admin/users")
		return
	}
	status := normalize.QueryParam(r.FormValue("status"))
	if status != models.StatusActive && status != models.StatusDisabled {
		h.ErrLog.LogBadRequest(w, r, "invalid user status", nil, "Invalid status value.", "/admin/users",
			zap.String("status", status))
		return
	}
	// An admin cannot lock themselves out.
	if id == authz.UserID(r) && status == models.StatusDisabled {
		h.ErrLog.LogBadRequest(w, r, "admin tried to disable own account", nil, "You cannot disable your own account.", "/admin/users")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetStatus(ctx, id, status); err != nil {
		if errors.Is(err, userstore.ErrNotFound) {
			h.ErrLog.LogNotFound(w, r, "user not found", err, "User not found.", "/admin/users")
			return
		}
		h.ErrLog.LogServerError(w, r, "database error updating user", err, "Unable to update the user.", "/admin/users")
		return
	}
	h.Log.Info("user status changed", zap.String("id", id.Hex()), zap.String("status", status))
	if status == models.StatusDisabled {
		h.Audit.UserDisabled(ctx, r, authz.UserID(r), id)
	} else {
		h.Audit.UserEnabled(ctx, r, authz.UserID(r), id)
	}

	http.Redirect(w, r, "/admin/users", http.StatusSeeOther)
}
