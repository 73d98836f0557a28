// internal/app/features/admin/tiers.go
package admin

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	uierrors "github.com/meroket/meroket/internal/app/features/errors"
	schedulestore "github.com/meroket/meroket/internal/app/store/tierschedules"
	"github.com/meroket/meroket/internal/app/system/entitlement"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/app/system/status"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"github.com/meroket/meroket/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func queryEscape(s string) string { return url.QueryEscape(s) }

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/users/{id}/tier – immediate tier change                         |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSetTier applies a tier change right away. A demotion sweeps the
// user's portfolios: the ones beyond the new limit freeze, published oldest
// first staying unfrozen. The audit record carries how many froze.
func (h *Handler) HandleSetTier(w http.ResponseWriter, r *http.Request) {
	user, ok := h.targetUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/users")
		return
	}

	newTier := normalize.Tier(r.FormValue("tier"))
	if !models.ValidTier(newTier) {
		redirectDetail(w, r, user.ID, "error", "Unknown tier.")
		return
	}
	if newTier == user.Tier {
		redirectDetail(w, r, user.ID, "notice", "The user is already on that tier.")
		return
	}

	var expiresAt *time.Time
	if v := r.FormValue("expires_at"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			redirectDetail(w, r, user.ID, "error", "Invalid expiry date.")
			return
		}
		expiresAt = &t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	if err := h.Users.SetTier(ctx, user.ID, newTier, nil, expiresAt); err != nil {
		h.ErrLog.LogServerError(w, r, "admin: tier update failed", err,
			"Could not change the tier.", "/admin/users/"+user.ID.Hex())
		return
	}

	// The sweep also unfreezes kept portfolios after an upgrade; it always
	// runs, not just on demotion.
	result, err := h.Entitlement.ApplyTierDemotion(ctx, user.ID, newTier)
	if err != nil {
		// The tier is already changed; report the partial sweep rather than
		// pretending the change failed.
		h.Log.Error("admin: demotion sweep failed",
			zap.String("user_id", user.ID.Hex()),
			zap.String("new_tier", newTier),
			zap.Int("frozen_so_far", result.NewlyFrozen),
			zap.Error(err))
		redirectDetail(w, r, user.ID, "error",
			"Tier changed, but freezing portfolios failed part-way. Re-apply the tier to finish.")
		return
	}

	h.AuditLog.TierChanged(ctx, r, actorID(r), user.ID, user.Tier, newTier, result.NewlyFrozen)
	h.auditSweep(ctx, r, user.ID, newTier, result)

	redirectDetail(w, r, user.ID, "notice", "Tier changed.")
}

// auditSweep records the freeze/unfreeze transitions a tier sweep made, one
// event per portfolio whose flag actually flipped.
func (h *Handler) auditSweep(ctx context.Context, r *http.Request, ownerID primitive.ObjectID, newTier string, result entitlement.DemotionResult) {
	actor := actorID(r)
	for _, id := range result.NewlyFrozenIDs {
		h.AuditLog.PortfolioFrozen(ctx, r, actor, ownerID, id, "tier change to "+newTier)
	}
	for _, id := range result.UnfrozenIDs {
		h.AuditLog.PortfolioUnfrozen(ctx, r, actor, ownerID, id)
	}
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/users/{id}/enable /disable                                       |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleEnable(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, status.Active)
}

func (h *Handler) HandleDisable(w http.ResponseWriter, r *http.Request) {
	h.setStatus(w, r, status.Disabled)
}

func (h *Handler) setStatus(w http.ResponseWriter, r *http.Request, st string) {
	user, ok := h.targetUser(w, r)
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Users.SetStatus(ctx, user.ID, st); err != nil {
		h.ErrLog.LogServerError(w, r, "admin: status update failed", err,
			"Could not update the user.", "/admin/users/"+user.ID.Hex())
		return
	}

	if st == status.Disabled {
		h.AuditLog.UserDisabled(ctx, r, actorID(r), user.ID)
	} else {
		h.AuditLog.UserEnabled(ctx, r, actorID(r), user.ID)
	}

	redirectDetail(w, r, user.ID, "notice", "User updated.")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/users/{id}/schedules – record a future tier change              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleCreateSchedule(w http.ResponseWriter, r *http.Request) {
	user, ok := h.targetUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.LogBadRequest(w, r, "parse form failed", err, "Invalid form data.", "/admin/users")
		return
	}

	toTier := normalize.Tier(r.FormValue("to_tier"))
	startDate, err := time.Parse("2006-01-02", r.FormValue("start_date"))
	if err != nil {
		redirectDetail(w, r, user.ID, "error", "Invalid start date.")
		return
	}

	permanent := r.FormValue("permanent") == "on"
	var endDate *time.Time
	if !permanent {
		t, err := time.Parse("2006-01-02", r.FormValue("end_date"))
		if err != nil {
			redirectDetail(w, r, user.ID, "error", "A time-limited change needs an end date.")
			return
		}
		endDate = &t
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sch, err := h.Schedules.Create(ctx, models.TierSchedule{
		UserID:      user.ID,
		FromTier:    user.Tier,
		ToTier:      toTier,
		StartDate:   startDate,
		EndDate:     endDate,
		IsPermanent: permanent,
	})
	if err != nil {
		redirectDetail(w, r, user.ID, "error", err.Error())
		return
	}

	h.AuditLog.TierScheduleCreated(ctx, r, actorID(r), user.ID, sch.ID, toTier, permanent)

	redirectDetail(w, r, user.ID, "notice", "Tier change scheduled.")
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /admin/schedules/{scheduleID}/execute /cancel                          |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleExecuteSchedule applies a recorded tier change now. Execution is
// claimed first so two admins cannot apply the same schedule twice; the tier
// write and freeze sweep follow the claim.
func (h *Handler) HandleExecuteSchedule(w http.ResponseWriter, r *http.Request) {
	schID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "scheduleID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That schedule does not exist.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	sch, err := h.Schedules.GetByID(ctx, schID)
	if err != nil {
		uierrors.RenderNotFound(w, r, "That schedule does not exist.")
		return
	}

	if err := h.Schedules.MarkExecuted(ctx, schID); err != nil {
		if errors.Is(err, schedulestore.ErrAlreadyExecuted) {
			redirectDetail(w, r, sch.UserID, "error", "That schedule was already executed.")
			return
		}
		h.ErrLog.LogServerError(w, r, "admin: schedule claim failed", err,
			"Could not execute the schedule.", "/admin/users/"+sch.UserID.Hex())
		return
	}

	if err := h.Users.SetTier(ctx, sch.UserID, sch.ToTier, &sch.StartDate, sch.EndDate); err != nil {
		h.ErrLog.LogServerError(w, r, "admin: scheduled tier update failed", err,
			"Could not execute the schedule.", "/admin/users/"+sch.UserID.Hex())
		return
	}

	result, err := h.Entitlement.ApplyTierDemotion(ctx, sch.UserID, sch.ToTier)
	if err != nil {
		h.Log.Error("admin: scheduled demotion sweep failed",
			zap.String("user_id", sch.UserID.Hex()),
			zap.String("schedule_id", schID.Hex()),
			zap.Error(err))
		redirectDetail(w, r, sch.UserID, "error",
			"Tier changed, but freezing portfolios failed part-way. Re-apply the tier to finish.")
		return
	}

	h.AuditLog.TierScheduleExecuted(ctx, r, actorID(r), sch.UserID, schID, sch.ToTier, result.NewlyFrozen)
	h.auditSweep(ctx, r, sch.UserID, sch.ToTier, result)

	redirectDetail(w, r, sch.UserID, "notice", "Schedule executed.")
}

func (h *Handler) HandleCancelSchedule(w http.ResponseWriter, r *http.Request) {
	schID, err := primitive.ObjectIDFromHex(chi.URLParam(r, "scheduleID"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That schedule does not exist.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	sch, err := h.Schedules.GetByID(ctx, schID)
	if err != nil {
		uierrors.RenderNotFound(w, r, "That schedule does not exist.")
		return
	}

	if err := h.Schedules.Delete(ctx, schID); err != nil {
		redirectDetail(w, r, sch.UserID, "error", "Only unexecuted schedules can be canceled.")
		return
	}

	h.AuditLog.TierScheduleCanceled(ctx, r, actorID(r), sch.UserID, schID)

	redirectDetail(w, r, sch.UserID, "notice", "Schedule canceled.")
}
