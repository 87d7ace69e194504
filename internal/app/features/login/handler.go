// internal/app/features/login/handler.go
package login

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/tripdesk/tripdesk/internal/app/store/audit"
	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/app/system/auditlog"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
	"github.com/tripdesk/tripdesk/internal/app/system/normalize"
	"github.com/tripdesk/tripdesk/internal/app/system/timeouts"
	"github.com/tripdesk/tripdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// Handler serves credentials sign-in. OAuth sign-in lives in the
// authgoogle and authfacebook features; this endpoint only verifies a
// stored password hash, it never creates accounts.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	AuditLog   *auditlog.Logger
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sessionMgr *auth.SessionManager, auditLog *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sessionMgr,
		AuditLog:   auditLog,
		Log:        logger,
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Ok   bool        `json:"ok"`
	User models.User `json:"user"`
}

// invalidCredentials is the single message for both unknown-email and
// wrong-password so the endpoint does not leak which emails exist.
const invalidCredentials = "Invalid email or password"

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /login                                                                  |
| Verifies email + password against the stored bcrypt hash and starts a        |
| session. Accounts without a password hash are OAuth-only.                    |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid JSON body")
		return
	}
	email := normalize.Email(req.Email)
	if email == "" || req.Password == "" {
		writeJSONError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()
	ip := auditlog.ClientIP(r)

	u, err := h.Users.GetByEmail(ctx, email)
	if err == mongo.ErrNoDocuments {
		h.AuditLog.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginFailedUserNotFound,
			IP:        ip,
			Details:   map[string]string{"email": email},
		})
		writeJSONError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}
	if err != nil {
		h.Log.Error("login: user lookup failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Sign-in is unavailable")
		return
	}

	if u.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		h.AuditLog.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginFailedWrongPassword,
			UserID:    u.ID,
			IP:        ip,
		})
		writeJSONError(w, http.StatusUnauthorized, invalidCredentials)
		return
	}

	if !u.Metadata.IsActive {
		h.AuditLog.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginFailedUserDisabled,
			UserID:    u.ID,
			IP:        ip,
		})
		writeJSONError(w, http.StatusForbidden, "Account is disabled")
		return
	}

	if err := h.Users.TouchLogin(ctx, u.ID, "", ""); err != nil {
		// Login still proceeds; the timestamp is advisory.
		h.Log.Warn("login: touch failed", zap.String("uid", u.ID), zap.Error(err))
	}

	sessUser := &auth.SessionUser{
		ID:    u.ID,
		Name:  u.FullName(),
		Email: u.Email,
		Role:  u.Role,
	}
	if err := h.SessionMgr.SignIn(w, r, sessUser); err != nil {
		h.Log.Error("login: saving session failed", zap.String("uid", u.ID), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "Sign-in is unavailable")
		return
	}

	h.AuditLog.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    u.ID,
		IP:        ip,
		Success:   true,
		Details:   map[string]string{"provider": "credentials"},
	})

	h.Log.Info("user signed in with credentials",
		zap.String("uid", u.ID),
		zap.String("role", u.Role))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(loginResponse{Ok: true, User: *u})
}
