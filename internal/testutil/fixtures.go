package testutil

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/domain/models"
)

// NewUser builds a valid, active user record with the given role and a
// unique email. Nothing is persisted.
func NewUser(role string) models.User {
	id := uuid.NewString()
	return models.User{
		ID:    id,
		Email: strings.ToLower(role) + "-" + id[:8] + "@test.com",
		Role:  role,
		Profile: models.Profile{
			FirstName: "Test",
			LastName:  role,
			Gender:    "Other",
		},
		Metadata: models.Metadata{
			IsActive:      true,
			EmailVerified: true,
		},
		Permissions: []string{},
	}
}

// CreateUser persists a fresh user with the given role and returns it.
func CreateUser(t *testing.T, ctx context.Context, store *userstore.Store, role string) models.User {
	t.Helper()
	u, err := store.Create(ctx, NewUser(role))
	if err != nil {
		t.Fatalf("creating %s fixture: %v", role, err)
	}
	return u
}
