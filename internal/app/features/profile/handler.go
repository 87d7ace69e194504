// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tripdesk/tripdesk/internal/app/store/audit"
	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/app/system/auditlog"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
	"github.com/tripdesk/tripdesk/internal/app/system/sanitize"
	"github.com/tripdesk/tripdesk/internal/app/system/timeouts"
	"github.com/tripdesk/tripdesk/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves the signed-in user's own record. Role, category, and
// active status are admin-only and cannot be changed here.
type Handler struct {
	Users    *userstore.Store
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(users *userstore.Store, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Users: users, AuditLog: auditLog, Log: logger}
}

type profileRequest struct {
	FirstName   *string `json:"firstName"`
	LastName    *string `json:"lastName"`
	Gender      *string `json:"gender"`
	DateOfBirth *string `json:"dateOfBirth"`
	Mobile      *string `json:"mobile"`
	Avatar      *string `json:"avatar"`
}

type userResponse struct {
	User models.User `json:"user"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /api/profile                                                             |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.GetByID(ctx, su.ID)
	if err != nil {
		h.Log.Error("profile: load failed", zap.String("uid", su.ID), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: *u})
}

/*─────────────────────────────────────────────────────────────────────────────*
| PATCH /api/profile                                                           |
| Field-by-field merge of the caller's own profile.                            |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	su, ok := auth.CurrentUser(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req profileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}

	patch := &userstore.ProfilePatch{Avatar: req.Avatar}
	clean := func(s *string) *string {
		if s == nil {
			return nil
		}
		c := sanitize.Text(*s)
		return &c
	}
	patch.FirstName = clean(req.FirstName)
	patch.LastName = clean(req.LastName)
	patch.Gender = clean(req.Gender)
	patch.DateOfBirth = clean(req.DateOfBirth)
	patch.Mobile = clean(req.Mobile)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Users.Apply(ctx, su.ID, userstore.Update{Profile: patch}); err != nil {
		h.Log.Error("profile: update failed", zap.String("uid", su.ID), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to update profile")
		return
	}

	h.AuditLog.Log(ctx, audit.Event{
		Category:  audit.CategoryAdmin,
		EventType: audit.EventProfileUpdated,
		UserID:    su.ID,
		ActorID:   su.ID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
	})

	u, err := h.Users.GetByID(ctx, su.ID)
	if err != nil {
		h.Log.Error("profile: reload failed", zap.String("uid", su.ID), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Failed to load profile")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{User: *u})
}
