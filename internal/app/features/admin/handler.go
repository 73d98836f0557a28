// internal/app/features/admin/handler.go
package admin

import (
	"context"
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/meroket/meroket/internal/app/features/errors"
	"github.com/meroket/meroket/internal/app/policy/tierpolicy"
	portfoliostore "github.com/meroket/meroket/internal/app/store/portfolios"
	"github.com/meroket/meroket/internal/app/store/sessions"
	schedulestore "github.com/meroket/meroket/internal/app/store/tierschedules"
	userstore "github.com/meroket/meroket/internal/app/store/users"
	"github.com/meroket/meroket/internal/app/system/auditlog"
	"github.com/meroket/meroket/internal/app/system/authz"
	"github.com/meroket/meroket/internal/app/system/entitlement"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"github.com/meroket/meroket/internal/app/system/viewdata"
	"github.com/meroket/meroket/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

const usersPerPage = 50

// Handler owns the admin area: user management, tier changes, and tier
// schedules. All routes are mounted behind the admin role requirement.
type Handler struct {
	Users       *userstore.Store
	Portfolios  *portfoliostore.Store
	Schedules   *schedulestore.Store
	Sessions    *sessions.Store
	Entitlement *entitlement.Service
	ErrLog      *uierrors.ErrorLogger
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

func NewHandler(
	users *userstore.Store,
	portfolios *portfoliostore.Store,
	schedules *schedulestore.Store,
	sessStore *sessions.Store,
	ent *entitlement.Service,
	errLog *uierrors.ErrorLogger,
	audit *auditlog.Logger,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Users:       users,
		Portfolios:  portfolios,
		Schedules:   schedules,
		Sessions:    sessStore,
		Entitlement: ent,
		ErrLog:      errLog,
		AuditLog:    audit,
		Log:         logger,
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/users – user list                                                |
*─────────────────────────────────────────────────────────────────────────────*/

type userListPageData struct {
	viewdata.BaseVM
	Users      []models.User
	Total      int64
	Page       int
	TotalPages int
	FilterRole string
	FilterTier string
	Search     string
}

func (h *Handler) ServeUserList(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(query.Get(r, "page"))
	if page < 1 {
		page = 1
	}

	filter := userstore.ListFilter{
		Role:   normalize.Role(query.Get(r, "role")),
		Tier:   normalize.Tier(query.Get(r, "tier")),
		Search: normalize.QueryParam(query.Get(r, "q")),
		Limit:  usersPerPage,
		Offset: int64(page-1) * usersPerPage,
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: user list failed", err,
			"Could not load users.", "/dashboard")
		return
	}
	total, err := h.Users.Count(ctx, filter)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: user count failed", err,
			"Could not load users.", "/dashboard")
		return
	}

	totalPages := int((total + usersPerPage - 1) / usersPerPage)
	if totalPages < 1 {
		totalPages = 1
	}

	templates.Render(w, r, "admin_users", userListPageData{
		BaseVM:     viewdata.NewBaseVM(r, "Users", "/dashboard"),
		Users:      users,
		Total:      total,
		Page:       page,
		TotalPages: totalPages,
		FilterRole: filter.Role,
		FilterTier: filter.Tier,
		Search:     filter.Search,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /admin/users/{id} – user detail                                         |
*─────────────────────────────────────────────────────────────────────────────*/

type userDetailPageData struct {
	viewdata.BaseVM
	Error      string
	Notice     string
	User       models.User
	UserLimits tierpolicy.Limits
	Portfolios []models.Portfolio
	Schedules  []models.TierSchedule
	Sessions   []sessions.Session
	Tiers      []string
}

func (h *Handler) ServeUserDetail(w http.ResponseWriter, r *http.Request) {
	h.renderUserDetail(w, r, query.Get(r, "error"), query.Get(r, "notice"))
}

func (h *Handler) renderUserDetail(w http.ResponseWriter, r *http.Request, errMsg, notice string) {
	user, ok := h.targetUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	portfolios, err := h.Portfolios.ListByOwner(ctx, user.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: portfolio list failed", err,
			"Could not load this user.", "/admin/users")
		return
	}
	schedules, err := h.Schedules.ListByUser(ctx, user.ID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: schedule list failed", err,
			"Could not load this user.", "/admin/users")
		return
	}
	history, err := h.Sessions.History(ctx, user.ID, 20)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "admin: session history failed", err,
			"Could not load this user.", "/admin/users")
		return
	}

	templates.Render(w, r, "admin_user_detail", userDetailPageData{
		BaseVM:     viewdata.NewBaseVM(r, user.FullName, "/admin/users"),
		Error:      errMsg,
		Notice:     notice,
		User:       *user,
		UserLimits: tierpolicy.LimitsFor(user.Tier),
		Portfolios: portfolios,
		Schedules:  schedules,
		Sessions:   history,
		Tiers:      []string{models.TierFree, models.TierPro, models.TierHyper},
	})
}

// targetUser resolves the {id} route parameter into a user record.
func (h *Handler) targetUser(w http.ResponseWriter, r *http.Request) (*models.User, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That user does not exist.")
		return nil, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, id)
	if err != nil {
		uierrors.RenderNotFound(w, r, "That user does not exist.")
		return nil, false
	}
	return user, true
}

// actorID returns the signed-in admin's ObjectID. Routes are mounted behind
// the role requirement, so a missing actor is a served-out-of-order bug.
func actorID(r *http.Request) primitive.ObjectID {
	_, _, id, _ := authz.UserCtx(r)
	return id
}

func redirectDetail(w http.ResponseWriter, r *http.Request, userID primitive.ObjectID, param, msg string) {
	u := "/admin/users/" + userID.Hex()
	if msg != "" {
		u += "?" + param + "=" + queryEscape(msg)
	}
	http.Redirect(w, r, u, http.StatusSeeOther)
}
