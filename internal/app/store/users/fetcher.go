package userstore

import (
	"context"

	"github.com/tripdesk/tripdesk/internal/app/system/auth"
	"github.com/tripdesk/tripdesk/internal/app/system/timeouts"
	"github.com/tripdesk/tripdesk/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher to load fresh user data on each
// request, so role changes and deactivation take effect immediately.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

// FetchUser retrieves a user by uid and returns nil if the user is not
// found, deactivated, or if any error occurs.
func (f *Fetcher) FetchUser(ctx context.Context, userID string) *auth.SessionUser {
	if userID == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(ctx, timeouts.Short())
	defer cancel()

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":      1,
		"email":    1,
		"role":     1,
		"profile":  1,
		"metadata": 1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": userID}, proj).Decode(&u); err != nil {
		return nil
	}

	// A soft-disabled account keeps its record but loses its session.
	if !u.Metadata.IsActive {
		return nil
	}

	return &auth.SessionUser{
		ID:    u.ID,
		Name:  u.FullName(),
		Email: u.Email,
		Role:  u.Role,
	}
}
