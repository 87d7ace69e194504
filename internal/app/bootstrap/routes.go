// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	adminusersfeature "github.com/tripdesk/tripdesk/internal/app/features/adminusers"
	authfacebookfeature "github.com/tripdesk/tripdesk/internal/app/features/authfacebook"
	authgooglefeature "github.com/tripdesk/tripdesk/internal/app/features/authgoogle"
	healthfeature "github.com/tripdesk/tripdesk/internal/app/features/health"
	loginfeature "github.com/tripdesk/tripdesk/internal/app/features/login"
	logoutfeature "github.com/tripdesk/tripdesk/internal/app/features/logout"
	profilefeature "github.com/tripdesk/tripdesk/internal/app/features/profile"
	"github.com/tripdesk/tripdesk/internal/app/store/audit"
	"github.com/tripdesk/tripdesk/internal/app/store/oauthstate"
	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/app/system/auditlog"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and Startup have completed. It creates the session manager, the
// stores, and the audit logger, then mounts every feature router.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	// Secure cookies are enabled in production mode.
	secure := coreCfg.Env == "prod"
	sessionMgr, err := auth.NewSessionManager(appCfg.SessionKey, appCfg.SessionName, appCfg.SessionDomain, secure, logger)
	if err != nil {
		logger.Error("session manager init failed", zap.Error(err))
		return nil, err
	}

	// Fetch fresh user data on each request so role changes and
	// deactivation take effect immediately, not at next sign-in.
	sessionMgr.SetUserFetcher(userstore.NewFetcher(deps.MongoDatabase))

	users := userstore.New(deps.MongoDatabase)
	stateStore := oauthstate.New(deps.MongoDatabase)

	auditLog := auditlog.New(audit.New(deps.MongoDatabase), logger, auditlog.Config{
		Auth:  appCfg.AuditLogAuth,
		Admin: appCfg.AuditLogAdmin,
	})

	provisioner := userstore.NewProvisioner(users, appCfg.SuperAdminEmails, auditLog, logger)

	r := chi.NewRouter()

	// Global auth middleware: loads SessionUser into context if logged in.
	r.Use(sessionMgr.LoadSessionUser)

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Authentication
	loginHandler := loginfeature.NewHandler(users, sessionMgr, auditLog, logger)
	r.Mount("/login", loginfeature.Routes(loginHandler))

	logoutHandler := logoutfeature.NewHandler(sessionMgr, auditLog, logger)
	r.Mount("/logout", logoutfeature.Routes(logoutHandler))

	googleHandler := authgooglefeature.NewHandler(sessionMgr, auditLog, provisioner, stateStore,
		appCfg.GoogleClientID, appCfg.GoogleClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/google", authgooglefeature.Routes(googleHandler))

	facebookHandler := authfacebookfeature.NewHandler(sessionMgr, auditLog, provisioner, stateStore,
		appCfg.FacebookClientID, appCfg.FacebookClientSecret, appCfg.BaseURL, logger)
	r.Mount("/auth/facebook", authfacebookfeature.Routes(facebookHandler))

	// Self-service profile
	profileHandler := profilefeature.NewHandler(users, auditLog, logger)
	r.Mount("/api/profile", profilefeature.Routes(profileHandler, sessionMgr))

	// Admin user management
	adminHandler := adminusersfeature.NewHandler(users, auditLog, appCfg.UserListLimit, coreCfg.Env == "dev", logger)
	r.Mount("/api/admin/users", adminusersfeature.Routes(adminHandler, sessionMgr))

	return r, nil
}
