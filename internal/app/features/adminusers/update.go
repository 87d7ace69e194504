// internal/app/features/adminusers/update.go
package adminusers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/tripdesk/tripdesk/internal/app/policy/userpolicy"
	"github.com/tripdesk/tripdesk/internal/app/store/audit"
	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/app/system/auditlog"
	"github.com/tripdesk/tripdesk/internal/app/system/authz"
	"github.com/tripdesk/tripdesk/internal/app/system/sanitize"
	"github.com/tripdesk/tripdesk/internal/app/system/timeouts"
	"go.uber.org/zap"
)

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /api/admin/users/{id}                                                  |
| Applies a subset of {role, category, isActive, profile}. Policy denials are  |
| evaluated per field, in the order role → category → isActive → profile; the  |
| first denial wins and nothing is written.                                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
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

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON body", "")
		return
	}
	if req.Role == nil && req.Category == nil && req.IsActive == nil && req.Profile == nil {
		writeError(w, http.StatusBadRequest, "No supported fields in request", reasonEmptyUpdate)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	// The evaluator needs the target's current role; a missing target
	// surfaces as a store failure here, matching the blind-update
	// semantics this API has always had (404 is defined for DELETE only).
	target, err := h.Users.GetByID(ctx, targetID)
	if err != nil {
		h.Log.Error("loading target user failed",
			zap.String("target", targetID), zap.Error(err))
		h.writeStoreError(w, "Failed to update user", err)
		return
	}
	targetRole := userpolicy.Role(target.Role)

	var (
		upd    userstore.Update
		events []audit.Event
	)

	if req.Role != nil {
		newRole, valid := userpolicy.Parse(*req.Role)
		if !valid {
			writeError(w, http.StatusBadRequest, "Invalid role", reasonInvalidRole)
			return
		}
		if d := userpolicy.CanChangeRole(actingRole, targetRole, newRole); !d.Allowed {
			writeDenial(w, d)
			return
		}
		roleStr := string(newRole)
		upd.Role = &roleStr
		upd.AssignedBy = &actorID
		events = append(events, audit.Event{
			Category:  audit.CategoryAdmin,
			EventType: audit.EventRoleChanged,
			UserID:    targetID,
			ActorID:   actorID,
			Success:   true,
			Details:   map[string]string{"from": target.Role, "to": roleStr},
		})
	}

	// Category validation runs against the role the record will hold
	// after this request.
	effectiveRole := targetRole
	if upd.Role != nil {
		effectiveRole = userpolicy.Role(*upd.Role)
	}

	if req.Category != nil {
		if d := userpolicy.CanChangeCategory(actingRole, targetRole); !d.Allowed {
			writeDenial(w, d)
			return
		}
		category := sanitize.Text(*req.Category)
		if !userpolicy.ValidCategory(effectiveRole, category) {
			writeError(w, http.StatusBadRequest, "Invalid category for role", reasonInvalidCategory)
			return
		}
		upd.Category = &category
		events = append(events, audit.Event{
			Category:  audit.CategoryAdmin,
			EventType: audit.EventCategoryChanged,
			UserID:    targetID,
			ActorID:   actorID,
			Success:   true,
			Details:   map[string]string{"from": target.Category, "to": category},
		})
	}

	if req.IsActive != nil {
		if d := userpolicy.CanChangeActive(actingRole, targetRole, *req.IsActive); !d.Allowed {
			writeDenial(w, d)
			return
		}
		upd.IsActive = req.IsActive
		eventType := audit.EventUserDisabled
		if *req.IsActive {
			eventType = audit.EventUserEnabled
		}
		events = append(events, audit.Event{
			Category:  audit.CategoryAdmin,
			EventType: eventType,
			UserID:    targetID,
			ActorID:   actorID,
			Success:   true,
		})
	}

	if req.Profile != nil {
		if d := userpolicy.CanChangeProfile(actingRole, targetRole); !d.Allowed {
			writeDenial(w, d)
			return
		}
		upd.Profile = sanitizeProfile(req.Profile)
		events = append(events, audit.Event{
			Category:  audit.CategoryAdmin,
			EventType: audit.EventProfileUpdated,
			UserID:    targetID,
			ActorID:   actorID,
			Success:   true,
		})
	}

	if err := h.Users.Apply(ctx, targetID, upd); err != nil {
		h.Log.Error("updating user failed",
			zap.String("target", targetID), zap.Error(err))
		h.writeStoreError(w, "Failed to update user", err)
		return
	}

	ip := auditlog.ClientIP(r)
	for _, e := range events {
		e.IP = ip
		h.AuditLog.Log(ctx, e)
	}

	writeJSON(w, http.StatusOK, okResponse{Ok: true})
}

// sanitizeProfile strips markup from every provided profile field.
// Avatar is a URL and passes through untouched.
func sanitizeProfile(in *profileInput) *userstore.ProfilePatch {
	out := &userstore.ProfilePatch{Avatar: in.Avatar}
	clean := func(s *string) *string {
		if s == nil {
			return nil
		}
		c := sanitize.Text(*s)
		return &c
	}
	out.FirstName = clean(in.FirstName)
	out.LastName = clean(in.LastName)
	out.Gender = clean(in.Gender)
	out.DateOfBirth = clean(in.DateOfBirth)
	out.Mobile = clean(in.Mobile)
	return out
}
