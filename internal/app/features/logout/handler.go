// internal/app/features/logout/handler.go
package logout

import (
	"encoding/json"
	"net/http"

	"github.com/tripdesk/tripdesk/internal/app/store/audit"
	"github.com/tripdesk/tripdesk/internal/app/system/auditlog"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
}

func NewHandler(sessionMgr *auth.SessionManager, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
		AuditLog:   auditLog,
	}
}

// ServeLogout handles POST /logout. Clearing an already-clear session
// is fine; the endpoint is idempotent.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	userID := ""
	if u, ok := auth.CurrentUser(r); ok {
		userID = u.ID
	}

	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Error("logout: clearing session failed", zap.Error(err))
	}

	if userID != "" {
		h.AuditLog.Log(r.Context(), audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLogout,
			UserID:    userID,
			IP:        auditlog.ClientIP(r),
			Success:   true,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]bool{"ok": true})
}
