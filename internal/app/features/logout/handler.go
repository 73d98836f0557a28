// internal/app/features/logout/handler.go
package logout

import (
	"context"
	"net/http"

	"github.com/meroket/meroket/internal/app/store/sessions"
	"github.com/meroket/meroket/internal/app/system/auditlog"
	"github.com/meroket/meroket/internal/app/system/auth"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type Handler struct {
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Sessions   *sessions.Store
	Log        *zap.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, audit *auditlog.Logger, sessStore *sessions.Store, logger *zap.Logger) *Handler {
	return &Handler{
		SessionMgr: sessionMgr,
		AuditLog:   audit,
		Sessions:   sessStore,
		Log:        logger,
	}
}

// Serve handles POST /logout: closes the activity session, records the audit
// event, clears the cookie, and sends the user home.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if u, ok := auth.CurrentUser(r); ok {
		if oid, err := primitive.ObjectIDFromHex(u.ID); err == nil {
			if err := h.Sessions.Close(ctx, oid, sessions.EndedByLogout); err != nil {
				h.Log.Warn("logout: session close failed",
					zap.String("user_id", u.ID), zap.Error(err))
			}
		}
		h.AuditLog.Logout(ctx, r, u.ID)
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("logout: cookie clear failed", zap.Error(err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
