// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/meroket/meroket/internal/app/features/errors"
	"github.com/meroket/meroket/internal/app/policy/tierpolicy"
	userstore "github.com/meroket/meroket/internal/app/store/users"
	"github.com/meroket/meroket/internal/app/system/auditlog"
	"github.com/meroket/meroket/internal/app/system/authz"
	"github.com/meroket/meroket/internal/app/system/inputval"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"github.com/meroket/meroket/internal/app/system/viewdata"
	"github.com/meroket/meroket/internal/domain/models"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users    *userstore.Store
	ErrLog   *uierrors.ErrorLogger
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, errLog *uierrors.ErrorLogger, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, ErrLog: errLog, AuditLog: audit, Log: logger}
}

type profilePageData struct {
	viewdata.BaseVM
	Error   string
	Notice  string
	User    models.User
	Limits  tierpolicy.Limits
	IsAdmin bool
}

type nameForm struct {
	FullName string `validate:"required,min=1,max=120" label:"Name"`
}

type passwordForm struct {
	Current string `validate:"required" label:"Current password"`
	New     string `validate:"required,min=8,max=200" label:"New password"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /profile                                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	h.renderProfile(w, r, "", "")
}

func (h *Handler) renderProfile(w http.ResponseWriter, r *http.Request, errMsg, notice string) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: user lookup failed", err,
			"Could not load your profile.", "/dashboard")
		return
	}

	templates.Render(w, r, "profile", profilePageData{
		BaseVM:  viewdata.NewBaseVM(r, "Your Profile", "/dashboard"),
		Error:   errMsg,
		Notice:  notice,
		User:    *user,
		Limits:  tierpolicy.LimitsFor(user.Tier),
		IsAdmin: user.IsAdmin(),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile – update display name                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	form := nameForm{FullName: normalize.Name(r.FormValue("full_name"))}
	if res := inputval.Validate(form); res.HasErrors() {
		h.renderProfile(w, r, res.First(), "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.UpdateProfile(ctx, userID, form.FullName); err != nil {
		h.ErrLog.LogServerError(w, r, "profile: update failed", err,
			"Could not save your profile.", "/profile")
		return
	}

	h.renderProfile(w, r, "", "Profile updated.")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /profile/password                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/profile")
		return
	}

	form := passwordForm{
		Current: r.FormValue("current_password"),
		New:     strings.TrimSpace(r.FormValue("new_password")),
	}
	if res := inputval.Validate(form); res.HasErrors() {
		h.renderProfile(w, r, res.First(), "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: user lookup failed", err,
			"Could not change your password.", "/profile")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(form.Current)); err != nil {
		h.renderProfile(w, r, "Current password is incorrect.", "")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(form.New), bcrypt.DefaultCost)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "profile: bcrypt failed", err,
			"Could not change your password.", "/profile")
		return
	}

	if err := h.Users.SetPassword(ctx, userID, string(hash)); err != nil {
		h.ErrLog.LogServerError(w, r, "profile: password update failed", err,
			"Could not change your password.", "/profile")
		return
	}

	h.AuditLog.PasswordChanged(ctx, r, userID)
	h.renderProfile(w, r, "", "Password changed.")
}
