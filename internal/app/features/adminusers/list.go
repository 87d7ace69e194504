// internal/app/features/adminusers/list.go
package adminusers

import (
	"context"
	"net/http"

	"github.com/tripdesk/tripdesk/internal/app/policy/userpolicy"
	"github.com/tripdesk/tripdesk/internal/app/system/authz"
	"github.com/tripdesk/tripdesk/internal/app/system/timeouts"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/admin/users                                                         |
| Returns the first ListLimit user records, newest first.                      |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	actingRole, _, ok := authz.UserCtx(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Unauthorized", "")
		return
	}

	if d := userpolicy.CanListUsers(actingRole); !d.Allowed {
		writeDenial(w, d)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	users, err := h.Users.List(ctx, h.ListLimit)
	if err != nil {
		h.Log.Error("listing users failed", zap.Error(err))
		h.writeStoreError(w, "Failed to fetch users", err)
		return
	}

	writeJSON(w, http.StatusOK, usersResponse{Users: users})
}
