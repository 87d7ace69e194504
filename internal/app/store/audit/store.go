// internal/app/store/audit/store.go
package audit

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Event categories
const (
	CategoryAuth  = "auth"
	CategoryAdmin = "admin"
)

// Auth event types
const (
	EventLoginSuccess             = "login_success"
	EventLoginFailedUserNotFound  = "login_failed_user_not_found"
	EventLoginFailedWrongPassword = "login_failed_wrong_password"
	EventLoginFailedUserDisabled  = "login_failed_user_disabled"
	EventLogout                   = "logout"
	EventUserProvisioned          = "user_provisioned"
	EventProvisionFallback        = "provision_fallback"
)

// Admin event types
const (
	EventRoleChanged     = "role_changed"
	EventCategoryChanged = "category_changed"
	EventUserDisabled    = "user_disabled"
	EventUserEnabled     = "user_enabled"
	EventProfileUpdated  = "profile_updated"
	EventUserDeleted     = "user_deleted"
)

// Event represents an audit event. User IDs here are the identity
// provider uids that key the users collection, not ObjectIDs.
type Event struct {
	ID        interface{} `bson:"_id,omitempty"`
	Timestamp time.Time   `bson:"timestamp"`

	// Event classification
	Category  string `bson:"category"`
	EventType string `bson:"event_type"`

	// Who
	UserID  string `bson:"user_id,omitempty"`  // affected user
	ActorID string `bson:"actor_id,omitempty"` // who performed the action

	// Context
	IP string `bson:"ip,omitempty"`

	// Outcome
	Success       bool   `bson:"success"`
	FailureReason string `bson:"failure_reason,omitempty"`

	// Additional details (varies by event type)
	Details map[string]string `bson:"details,omitempty"`
}

// Store persists audit events.
type Store struct {
	c *mongo.Collection
}

// New creates an audit Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("audit_events")}
}

// EnsureIndexes creates the timestamp index used by audit queries.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	_, err := s.c.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "timestamp", Value: -1}},
		Options: options.Index().SetName("idx_audit_ts"),
	})
	return err
}

// Insert writes one audit event. Timestamp is set if the caller left it zero.
func (s *Store) Insert(ctx context.Context, e Event) error {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	_, err := s.c.InsertOne(ctx, e)
	return err
}
