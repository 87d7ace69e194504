package profile

import (
	"net/http"
	"net/http/httptest"
	"testing"

	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
	"github.com/tripdesk/tripdesk/internal/testutil"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*Handler, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	return NewHandler(store, nil, zap.NewNop()), store
}

func TestServeProfile(t *testing.T) {
	h, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.CreateUser(t, ctx, store, "Agent")

	req := httptest.NewRequest(http.MethodGet, "/api/profile", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: u.ID, Role: u.Role})
	rec := httptest.NewRecorder()
	h.ServeProfile(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		User struct {
			UID  string `json:"uid"`
			Role string `json:"role"`
		} `json:"user"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if resp.User.UID != u.ID || resp.User.Role != "Agent" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestServeProfileUnauthenticated(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := httptest.NewRecorder()
	h.ServeProfile(rec, httptest.NewRequest(http.MethodGet, "/api/profile", nil))

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestUpdateProfileMergesAndSanitizes(t *testing.T) {
	h, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.CreateUser(t, ctx, store, "User")

	body := map[string]any{
		"firstName": "<b>Sam</b>",
		"mobile":    "+61 2 5550 1234",
	}
	req := testutil.JSONRequest(t, http.MethodPatch, "/api/profile", body)
	req = auth.WithTestUser(req, &auth.SessionUser{ID: u.ID, Role: u.Role})
	rec := httptest.NewRecorder()
	h.HandleUpdate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Profile.FirstName != "Sam" {
		t.Fatalf("firstName = %q, want markup stripped", got.Profile.FirstName)
	}
	if got.Profile.Mobile != "+61 2 5550 1234" {
		t.Fatalf("mobile = %q", got.Profile.Mobile)
	}
	if got.Profile.LastName != u.Profile.LastName {
		t.Fatal("omitted field changed")
	}
	if got.Role != u.Role {
		t.Fatal("role changed through the profile endpoint")
	}
}
