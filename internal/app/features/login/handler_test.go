package login

import (
	"net/http"
	"net/http/httptest"
	"testing"

	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
	"github.com/tripdesk/tripdesk/internal/testutil"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newTestHandler(t *testing.T) (*Handler, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)

	sm, err := auth.NewSessionManager("test-session-key-0123456789ABCDEFGH", "tripdesk-test", "", false, zap.NewNop())
	if err != nil {
		t.Fatalf("session manager: %v", err)
	}

	return NewHandler(store, sm, nil, zap.NewNop()), store
}

func createPasswordUser(t *testing.T, store *userstore.Store, password string) string {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	u := testutil.NewUser("Staff")
	u.PasswordHash = string(hash)
	created, err := store.Create(ctx, u)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	return created.Email
}

func TestLoginSuccessSetsSession(t *testing.T) {
	h, store := newTestHandler(t)
	email := createPasswordUser(t, store, "correct horse")

	req := testutil.JSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": "correct horse",
	})
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatal("no session cookie set on successful login")
	}

	var resp struct {
		Ok   bool `json:"ok"`
		User struct {
			UID  string `json:"uid"`
			Role string `json:"role"`
		} `json:"user"`
	}
	testutil.DecodeJSON(t, rec, &resp)
	if !resp.Ok || resp.User.Role != "Staff" {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	h, store := newTestHandler(t)
	email := createPasswordUser(t, store, "correct horse")

	req := testutil.JSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": "battery staple",
	})
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	// Unknown email and wrong password must be indistinguishable on the
	// wire so the endpoint cannot be used to enumerate accounts.
	h, store := newTestHandler(t)
	email := createPasswordUser(t, store, "correct horse")

	wrongPass := testutil.JSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    email,
		"password": "nope",
	})
	unknownEmail := testutil.JSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    "nobody@test.com",
		"password": "nope",
	})

	rec1 := httptest.NewRecorder()
	h.ServeLogin(rec1, wrongPass)
	rec2 := httptest.NewRecorder()
	h.ServeLogin(rec2, unknownEmail)

	if rec1.Code != rec2.Code {
		t.Fatalf("status codes differ: %d vs %d", rec1.Code, rec2.Code)
	}
	if rec1.Body.String() != rec2.Body.String() {
		t.Fatalf("bodies differ: %q vs %q", rec1.Body.String(), rec2.Body.String())
	}
}

func TestLoginDisabledAccount(t *testing.T) {
	h, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	u := testutil.NewUser("User")
	u.PasswordHash = string(hash)
	u.Metadata.IsActive = false
	created, err := store.Create(ctx, u)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := testutil.JSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    created.Email,
		"password": "pw",
	})
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}
}

func TestLoginOAuthOnlyAccount(t *testing.T) {
	// No stored hash: password sign-in always fails, same message as a
	// wrong password.
	h, store := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	created, err := store.Create(ctx, testutil.NewUser("User"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	req := testutil.JSONRequest(t, http.MethodPost, "/login", map[string]string{
		"email":    created.Email,
		"password": "anything",
	})
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
}

func TestLoginMissingFields(t *testing.T) {
	h, _ := newTestHandler(t)

	req := testutil.JSONRequest(t, http.MethodPost, "/login", map[string]string{"email": "x@test.com"})
	rec := httptest.NewRecorder()
	h.ServeLogin(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}
