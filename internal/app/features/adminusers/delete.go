// internal/app/features/adminusers/delete.go
package adminusers

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tripdesk/tripdesk/internal/app/policy/userpolicy"
	"github.com/tripdesk/tripdesk/internal/app/store/audit"
	"github.com/tripdesk/tripdesk/internal/app/system/auditlog"
	"github.com/tripdesk/tripdesk/internal/app/system/authz"
	"github.com/tripdesk/tripdesk/internal/app/system/timeouts"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| DELETE /api/admin/users/{id}                                                 |
| Permanently removes the record. No tombstone is kept.                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	actingRole, actorID, ok := authz.UserCtx(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}
	targetID := chi.URLParam(r, "id")

	if d := userpolicy.CanAdministerUsers(actingRole); !d.Allowed {
		writeDenial(w, d)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	exists := true
	var targetRole userpolicy.Role
	target, err := h.Users.GetByID(ctx, targetID)
	switch {
	case err == mongo.ErrNoDocuments:
		exists = false
	case err != nil:
		h.Log.Error("loading target user failed",
			zap.String("target", targetID), zap.Error(err))
		h.writeStoreError(w, "Failed to delete user", err)
		return
	default:
		targetRole = userpolicy.Role(target.Role)
	}

	if d := userpolicy.CanDelete(actingRole, targetRole, exists); !d.Allowed {
		if d.Reason == userpolicy.ReasonNotFound {
			writeError(w, http.StatusNotFound, d.Reason.Message(), string(d.Reason))
			return
		}
		writeDenial(w, d)
		return
	}

	deleted, err := h.Users.Delete(ctx, targetID)
	if err != nil {
		h.Log.Error("deleting user failed",
			zap.String("target", targetID), zap.Error(err))
		h.writeStoreError(w, "Failed to delete user", err)
		return
	}
	if deleted == 0 {
		// Raced with another delete.
		writeError(w, http.StatusNotFound, userpolicy.ReasonNotFound.Message(), string(userpolicy.ReasonNotFound))
		return
	}

	h.AuditLog.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventUserDeleted,
		UserID:    targetID,
		ActorID:   actorID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"role": string(targetRole)},
	})

	writeJSON(w, http.StatusOK, okResponse{Ok: true})
}
