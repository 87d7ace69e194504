package authz_test

import (
	"net/http/httptest"
	"testing"

	"github.com/tripdesk/tripdesk/internal/app/policy/userpolicy"
	"github.com/tripdesk/tripdesk/internal/app/system/auth"
	"github.com/tripdesk/tripdesk/internal/app/system/authz"
)

func TestUserCtx(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		_, _, ok := authz.UserCtx(req)
		if ok {
			t.Error("expected ok=false for anonymous request")
		}
	})

	t.Run("valid user", func(t *testing.T) {
		req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil),
			&auth.SessionUser{ID: "uid-1", Role: "superadmin"})
		role, uid, ok := authz.UserCtx(req)
		if !ok {
			t.Fatal("expected ok=true")
		}
		if role != userpolicy.SuperAdmin {
			t.Errorf("role: got %q, want SuperAdmin (canonicalized)", role)
		}
		if uid != "uid-1" {
			t.Errorf("uid: got %q, want uid-1", uid)
		}
	})

	t.Run("unknown role fails closed", func(t *testing.T) {
		req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil),
			&auth.SessionUser{ID: "uid-1", Role: "root"})
		_, _, ok := authz.UserCtx(req)
		if ok {
			t.Error("expected ok=false for unknown role")
		}
	})
}

func TestIsPrivileged(t *testing.T) {
	for _, tt := range []struct {
		role string
		want bool
	}{
		{"SuperAdmin", true},
		{"Admin", true},
		{"Staff", false},
		{"Partner", false},
		{"Agent", false},
		{"User", false},
	} {
		req := auth.WithTestUser(httptest.NewRequest("GET", "/", nil),
			&auth.SessionUser{ID: "u", Role: tt.role})
		if got := authz.IsPrivileged(req); got != tt.want {
			t.Errorf("IsPrivileged(%s) = %v, want %v", tt.role, got, tt.want)
		}
	}
}
