// internal/app/features/authfacebook/handler.go
package authfacebook

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tripdesk/tripdesk/internal/app/store/audit"
	"github.com/tripdesk/tripdesk/internal/app/store/oauthstate"
	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/app/system/auditlog"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
	"github.com/tripdesk/tripdesk/internal/app/system/timeouts"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
)

const providerName = "facebook"

// Handler handles Facebook OAuth sign-in, mirroring the Google flow.
// Unknown identities are provisioned on the first successful callback.
type Handler struct {
	Log         *zap.Logger
	SessionMgr  *auth.SessionManager
	AuditLog    *auditlog.Logger
	Provisioner *userstore.Provisioner
	StateStore  *oauthstate.Store

	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// NewHandler creates a new Facebook OAuth handler.
func NewHandler(
	sessionMgr *auth.SessionManager,
	auditLog *auditlog.Logger,
	provisioner *userstore.Provisioner,
	stateStore *oauthstate.Store,
	clientID, clientSecret, baseURL string,
	logger *zap.Logger,
) *Handler {
	return &Handler{
		Log:          logger,
		SessionMgr:   sessionMgr,
		AuditLog:     auditLog,
		Provisioner:  provisioner,
		StateStore:   stateStore,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RedirectURL:  baseURL + "/auth/facebook/callback",
	}
}

func (h *Handler) oauth2Config() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.ClientID,
		ClientSecret: h.ClientSecret,
		RedirectURL:  h.RedirectURL,
		Scopes:       []string{"email", "public_profile"},
		Endpoint:     facebook.Endpoint,
	}
}

// IsConfigured returns true if Facebook OAuth is configured.
func (h *Handler) IsConfigured() bool {
	return h.ClientID != "" && h.ClientSecret != ""
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/facebook                                                           |
| Initiates the Facebook OAuth flow.                                           |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	if !h.IsConfigured() {
		h.Log.Warn("Facebook OAuth not configured")
		http.Redirect(w, r, "/login?error=facebook_not_configured", http.StatusSeeOther)
		return
	}

	state, err := generateState()
	if err != nil {
		h.Log.Error("failed to generate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	returnURL := query.Get(r, "return")

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	expiresAt := time.Now().UTC().Add(10 * time.Minute)
	if err := h.StateStore.Save(ctx, state, providerName, returnURL, expiresAt); err != nil {
		h.Log.Error("failed to save OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	http.Redirect(w, r, h.oauth2Config().AuthCodeURL(state), http.StatusTemporaryRedirect)
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /auth/facebook/callback                                                  |
| Validates state, exchanges the code, fetches the Graph API profile,          |
| provisions or touches the user record, and starts a session.                 |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.Log.Warn("Facebook OAuth error",
			zap.String("error", errParam),
			zap.String("description", r.URL.Query().Get("error_description")))
		http.Redirect(w, r, "/login?error=facebook_denied", http.StatusSeeOther)
		return
	}

	state := r.URL.Query().Get("state")
	if state == "" {
		h.Log.Warn("missing OAuth state parameter")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	ctxTimeout, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	returnURL, valid, err := h.StateStore.Validate(ctxTimeout, state, providerName)
	if err != nil {
		h.Log.Error("failed to validate OAuth state", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}
	if !valid {
		h.Log.Warn("invalid or expired OAuth state")
		http.Redirect(w, r, "/login?error=invalid_state", http.StatusSeeOther)
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		h.Log.Warn("missing OAuth code parameter")
		http.Redirect(w, r, "/login?error=invalid_code", http.StatusSeeOther)
		return
	}

	token, err := h.oauth2Config().Exchange(ctx, code)
	if err != nil {
		h.Log.Error("failed to exchange OAuth code", zap.Error(err))
		http.Redirect(w, r, "/login?error=token_exchange", http.StatusSeeOther)
		return
	}

	fbUser, err := fetchFacebookUserInfo(ctx, token)
	if err != nil {
		h.Log.Error("failed to fetch Facebook user info", zap.Error(err))
		http.Redirect(w, r, "/login?error=user_info", http.StatusSeeOther)
		return
	}
	// Facebook accounts registered by phone number have no email; we
	// cannot provision those.
	if fbUser.Email == "" {
		h.Log.Warn("Facebook account has no email", zap.String("facebook_id", fbUser.ID))
		http.Redirect(w, r, "/login?error=no_email", http.StatusSeeOther)
		return
	}

	user, err := h.Provisioner.SignIn(ctx, userstore.Identity{
		Provider:      providerName,
		ID:            fbUser.ID,
		Email:         fbUser.Email,
		DisplayName:   fbUser.Name,
		Avatar:        fbUser.Picture.Data.URL,
		EmailVerified: true, // Facebook verifies emails before releasing them
	})
	if err != nil {
		h.Log.Error("provisioning failed", zap.Error(err))
		http.Redirect(w, r, "/login?error=internal", http.StatusSeeOther)
		return
	}

	if !user.Metadata.IsActive {
		h.AuditLog.Log(ctx, audit.Event{
			Category:  audit.CategoryAuth,
			EventType: audit.EventLoginFailedUserDisabled,
			UserID:    user.ID,
			IP:        auditlog.ClientIP(r),
			Details:   map[string]string{"provider": providerName},
		})
		http.Redirect(w, r, "/login?error=account_disabled", http.StatusSeeOther)
		return
	}

	sessUser := &auth.SessionUser{
		ID:    user.ID,
		Name:  user.FullName(),
		Email: user.Email,
		Role:  user.Role,
	}
	if err := h.SessionMgr.SignIn(w, r, sessUser); err != nil {
		h.Log.Error("saving session failed", zap.String("uid", user.ID), zap.Error(err))
		http.Redirect(w, r, "/login?error=session", http.StatusSeeOther)
		return
	}

	h.AuditLog.Log(ctx, audit.Event{
		Category:  audit.CategoryAuth,
		EventType: audit.EventLoginSuccess,
		UserID:    user.ID,
		IP:        auditlog.ClientIP(r),
		Success:   true,
		Details:   map[string]string{"provider": providerName},
	})

	h.Log.Info("user signed in via Facebook OAuth",
		zap.String("uid", user.ID),
		zap.String("role", user.Role))

	http.Redirect(w, r, urlutil.SafeReturn(returnURL, "", "/dashboard"), http.StatusSeeOther)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Helpers                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// facebookUserInfo represents user info returned from the Graph API.
type facebookUserInfo struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Picture struct {
		Data struct {
			URL string `json:"url"`
		} `json:"data"`
	} `json:"picture"`
}

// fetchFacebookUserInfo retrieves user information from the Graph API.
func fetchFacebookUserInfo(ctx context.Context, token *oauth2.Token) (*facebookUserInfo, error) {
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))

	resp, err := client.Get("https://graph.facebook.com/me?fields=id,name,email,picture.type(large)")
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var info facebookUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}

	return &info, nil
}

// generateState creates a cryptographically secure random state string.
func generateState() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(b), nil
}
