// internal/app/features/adminusers/handler.go
package adminusers

import (
	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/app/system/auditlog"
	"go.uber.org/zap"
)

// DefaultListLimit bounds GET /api/admin/users when no limit is configured.
const DefaultListLimit = 200

// Handler serves the admin user-management API. All authorization
// decisions are delegated to the userpolicy evaluator; the handler only
// translates decisions into HTTP statuses.
type Handler struct {
	Users     *userstore.Store
	Log       *zap.Logger
	AuditLog  *auditlog.Logger
	ListLimit int64
	Dev       bool // attach error detail to 500 responses outside prod
}

// NewHandler constructs an admin users handler.
func NewHandler(users *userstore.Store, auditLog *auditlog.Logger, listLimit int64, dev bool, logger *zap.Logger) *Handler {
	if listLimit <= 0 {
		listLimit = DefaultListLimit
	}
	return &Handler{
		Users:     users,
		Log:       logger,
		AuditLog:  auditLog,
		ListLimit: listLimit,
		Dev:       dev,
	}
}
