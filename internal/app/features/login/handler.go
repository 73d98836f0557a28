// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	uierrors "github.com/meroket/meroket/internal/app/features/errors"
	"github.com/meroket/meroket/internal/app/store/sessions"
	userstore "github.com/meroket/meroket/internal/app/store/users"
	"github.com/meroket/meroket/internal/app/system/auditlog"
	"github.com/meroket/meroket/internal/app/system/auth"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/app/system/status"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"github.com/meroket/meroket/internal/app/system/viewdata"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	ErrLog     *uierrors.ErrorLogger
	AuditLog   *auditlog.Logger
	Sessions   *sessions.Store
	Log        *zap.Logger
}

func NewHandler(
	users *userstore.Store,
	sessionMgr *auth.SessionManager,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	sessStore *sessions.Store,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		ErrLog:     errLog,
		AuditLog:   audit,
		Sessions:   sessStore,
		Log:        logger,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error     string
	Email     string
	ReturnURL string
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /login                                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.CurrentUser(r); ok {
		http.Redirect(w, r, "/dashboard", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign In", "/"),
		ReturnURL: query.Get(r, "return"),
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/login")
		return
	}

	email := normalize.Email(r.FormValue("email"))
	password := r.FormValue("password")
	returnURL := strings.TrimSpace(r.FormValue("return"))

	if email == "" || password == "" {
		h.renderFormWithError(w, r, "Please enter your email and password.", email, returnURL)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			h.AuditLog.LoginFailedUserNotFound(ctx, r, email)
			h.renderFormWithError(w, r, "Invalid email or password.", email, returnURL)
			return
		}
		h.ErrLog.LogServerError(w, r, "login: user lookup failed", err,
			"Something went wrong. Please try again.", "/login")
		return
	}

	if user.Status == status.Disabled {
		h.AuditLog.LoginFailedUserDisabled(ctx, r, user.ID, email)
		h.renderFormWithError(w, r, "This account has been disabled.", email, returnURL)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		h.AuditLog.LoginFailedWrongPassword(ctx, r, user.ID, email)
		h.renderFormWithError(w, r, "Invalid email or password.", email, returnURL)
		return
	}

	/*── success: open activity session + write auth cookie ────────────────*/

	if _, err := h.Sessions.Create(ctx, user.ID, clientIP(r), r.UserAgent()); err != nil {
		h.Log.Warn("login: activity session create failed",
			zap.String("user_id", user.ID.Hex()), zap.Error(err))
	}

	su := &auth.SessionUser{
		ID:    user.ID.Hex(),
		Name:  user.FullName,
		Email: user.Email,
		Role:  user.Role,
		Tier:  user.Tier,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.ErrLog.LogServerError(w, r, "login: session save failed", err,
			"Could not sign you in. Please try again.", "/login")
		return
	}

	h.AuditLog.LoginSuccess(ctx, r, user.ID, user.Email)

	dest := urlutil.SafeReturn(returnURL, "", "/dashboard")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderFormWithError(w http.ResponseWriter, r *http.Request, msg, email, returnURL string) {
	w.WriteHeader(http.StatusUnprocessableEntity)
	templates.Render(w, r, "login", loginFormData{
		BaseVM:    viewdata.NewBaseVM(r, "Sign In", "/"),
		Error:     msg,
		Email:     email,
		ReturnURL: returnURL,
	})
}

// clientIP prefers the first X-Forwarded-For hop when present.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if i := strings.IndexByte(xff, ','); i > 0 {
			return strings.TrimSpace(xff[:i])
		}
		return strings.TrimSpace(xff)
	}
	return r.RemoteAddr
}
