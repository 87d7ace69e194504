package testutil

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// JSONRequest builds a request with a JSON-encoded body.
func JSONRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding request body: %v", err)
		}
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// DecodeJSON decodes a recorded response body into out.
func DecodeJSON(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(out); err != nil {
		t.Fatalf("decoding response body: %v", err)
	}
}

// SuperAdminUser returns a session user with the SuperAdmin role.
func SuperAdminUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:    uuid.NewString(),
		Name:  "Test SuperAdmin",
		Email: "superadmin@test.com",
		Role:  "SuperAdmin",
	}
}

// AdminUser returns a session user with the Admin role.
func AdminUser() *auth.SessionUser {
	return &auth.SessionUser{
		ID:    uuid.NewString(),
		Name:  "Test Admin",
		Email: "admin@test.com",
		Role:  "Admin",
	}
}

// RoleUser returns a session user with an arbitrary role.
func RoleUser(role string) *auth.SessionUser {
	return &auth.SessionUser{
		ID:    uuid.NewString(),
		Name:  "Test " + role,
		Email: "user@test.com",
		Role:  role,
	}
}
