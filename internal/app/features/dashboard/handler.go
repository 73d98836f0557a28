// internal/app/features/dashboard/handler.go
package dashboard

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/meroket/meroket/internal/app/features/errors"
	"github.com/meroket/meroket/internal/app/policy/tierpolicy"
	portfoliostore "github.com/meroket/meroket/internal/app/store/portfolios"
	"github.com/meroket/meroket/internal/app/system/auth"
	"github.com/meroket/meroket/internal/app/system/authz"
	"github.com/meroket/meroket/internal/app/system/entitlement"
	"github.com/meroket/meroket/internal/app/system/inputval"
	"github.com/meroket/meroket/internal/app/system/navigation"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"github.com/meroket/meroket/internal/app/system/viewdata"
	"github.com/meroket/meroket/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	Portfolios  *portfoliostore.Store
	Entitlement *entitlement.Service
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(portfolios *portfoliostore.Store, ent *entitlement.Service, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Portfolios:  portfolios,
		Entitlement: ent,
		ErrLog:      errLog,
		Log:         logger,
	}
}

type dashboardPageData struct {
	viewdata.BaseVM
	Error      string
	Portfolios []models.Portfolio
	Count      int
	Limits     tierpolicy.Limits
	CanCreate  bool
	DenyReason string
}

type createForm struct {
	Name string `validate:"required,min=1,max=80" label:"Portfolio name"`
	Slug string `validate:"required,min=3,max=60,slug" label:"Address"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /dashboard                                                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeDashboard(w http.ResponseWriter, r *http.Request) {
	h.renderDashboard(w, r, "")
}

func (h *Handler) renderDashboard(w http.ResponseWriter, r *http.Request, errMsg string) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	list, err := h.Portfolios.ListByOwner(ctx, userID)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: list portfolios failed", err,
			"Could not load your portfolios.", "/")
		return
	}

	tier := currentTier(r)
	limits := tierpolicy.LimitsFor(tier)
	decision := tierpolicy.CanCreatePortfolio(len(list), tier)

	templates.Render(w, r, "dashboard", dashboardPageData{
		BaseVM:     viewdata.NewBaseVM(r, "Dashboard", "/"),
		Error:      errMsg,
		Portfolios: list,
		Count:      len(list),
		Limits:     limits,
		CanCreate:  decision.Allowed,
		DenyReason: decision.Message,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /dashboard/portfolios – create                                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/dashboard")
		return
	}

	form := createForm{
		Name: normalize.Name(r.FormValue("name")),
		Slug: normalize.Slug(r.FormValue("slug")),
	}
	if res := inputval.Validate(form); res.HasErrors() {
		h.renderDashboard(w, r, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	// The guard fails closed: a count error denies the create.
	decision, err := h.Entitlement.CheckCreatePortfolio(ctx, userID, currentTier(r))
	if err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: portfolio count failed", err,
			"Could not create your portfolio. Please try again.", "/dashboard")
		return
	}
	if !decision.Allowed {
		h.renderDashboard(w, r, decision.Message)
		return
	}

	p, err := h.Portfolios.Create(ctx, models.Portfolio{
		OwnerID: userID,
		Name:    form.Name,
		Slug:    form.Slug,
	})
	if err != nil {
		if errors.Is(err, portfoliostore.ErrDuplicateSlug) {
			h.renderDashboard(w, r, err.Error())
			return
		}
		h.ErrLog.LogServerError(w, r, "dashboard: portfolio create failed", err,
			"Could not create your portfolio.", "/dashboard")
		return
	}

	http.Redirect(w, r, "/portfolios/"+p.ID.Hex(), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /dashboard/portfolios/{id}/publish /unpublish /delete                  |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandlePublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, true)
}

func (h *Handler) HandleUnpublish(w http.ResponseWriter, r *http.Request) {
	h.setPublished(w, r, false)
}

func (h *Handler) setPublished(w http.ResponseWriter, r *http.Request, published bool) {
	p, userID, ok := h.ownedPortfolio(w, r)
	if !ok {
		return
	}

	// Frozen portfolios reject publish; unpublish is always allowed.
	if published && p.IsFrozen {
		h.renderDashboard(w, r, "This portfolio is frozen and cannot be published. Upgrade your plan or reduce its content.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Portfolios.SetPublished(ctx, p.ID, published); err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: publish toggle failed", err,
			"Could not update your portfolio.", "/dashboard")
		return
	}

	h.Log.Info("portfolio publish state changed",
		zap.String("portfolio_id", p.ID.Hex()),
		zap.String("owner_id", userID.Hex()),
		zap.Bool("published", published))

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.DashboardBackURL), http.StatusSeeOther)
}

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	p, userID, ok := h.ownedPortfolio(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Portfolios.Delete(ctx, p.ID, userID); err != nil {
		h.ErrLog.LogServerError(w, r, "dashboard: portfolio delete failed", err,
			"Could not delete your portfolio.", "/dashboard")
		return
	}

	http.Redirect(w, r, navigation.SafeBackURL(r, navigation.DashboardBackURL), http.StatusSeeOther)
}

// ownedPortfolio resolves {id} and verifies ownership. Writes the response
// itself when resolution fails.
func (h *Handler) ownedPortfolio(w http.ResponseWriter, r *http.Request) (*models.Portfolio, primitive.ObjectID, bool) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That portfolio does not exist.")
		return nil, primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Portfolios.GetOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, portfoliostore.ErrNotFound) {
			uierrors.RenderNotFound(w, r, "That portfolio does not exist.")
			return nil, primitive.NilObjectID, false
		}
		h.ErrLog.LogServerError(w, r, "dashboard: portfolio lookup failed", err,
			"Could not load your portfolio.", "/dashboard")
		return nil, primitive.NilObjectID, false
	}
	return p, userID, true
}

func currentTier(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok && u.Tier != "" {
		return u.Tier
	}
	return models.TierFree
}
