package userstore_test

import (
	"testing"

	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/testutil"
	"go.uber.org/zap"
)

func newProvisioner(t *testing.T, allowList ...string) (*userstore.Provisioner, *userstore.Store) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	p := userstore.NewProvisioner(store, allowList, nil, zap.NewNop())
	return p, store
}

func TestSignInCreatesNewUser(t *testing.T) {
	p, store := newProvisioner(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := p.SignIn(ctx, userstore.Identity{
		Provider:      "google",
		ID:            "uid-google-1",
		Email:         "New.Person@Example.com",
		DisplayName:   "Jordan Q Traveler",
		Avatar:        "https://cdn.test/j.png",
		EmailVerified: true,
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	if u.Role != "User" {
		t.Fatalf("role = %q, want User for an email off the allow-list", u.Role)
	}
	if u.Category != "" {
		t.Fatalf("category = %q, want empty for User", u.Category)
	}
	if u.Profile.FirstName != "Jordan" || u.Profile.LastName != "Q Traveler" {
		t.Fatalf("name split = %q/%q, want first-space split", u.Profile.FirstName, u.Profile.LastName)
	}
	if u.Profile.Gender != "Other" {
		t.Fatalf("gender = %q, want Other default", u.Profile.Gender)
	}
	if !u.Metadata.IsActive {
		t.Fatal("new user should be active")
	}

	stored, err := store.GetByID(ctx, "uid-google-1")
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if stored.Email != "new.person@example.com" {
		t.Fatalf("stored email = %q, want normalized", stored.Email)
	}
}

func TestSignInAllowListGrantsSuperAdmin(t *testing.T) {
	p, _ := newProvisioner(t, "Boss@Example.com")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := p.SignIn(ctx, userstore.Identity{
		Provider:    "google",
		ID:          "uid-boss",
		Email:       "boss@example.COM",
		DisplayName: "The Boss",
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if u.Role != "SuperAdmin" {
		t.Fatalf("role = %q, want SuperAdmin from allow-list", u.Role)
	}
	if u.Category != "Admin" {
		t.Fatalf("category = %q, want Admin for SuperAdmin", u.Category)
	}
}

func TestSignInNeverEscalatesExistingRole(t *testing.T) {
	// The allow-list only applies at creation. A returning user keeps
	// whatever role was assigned locally, even if their email has since
	// been added to the list.
	p, store := newProvisioner(t, "promoted@example.com")
	ctx, cancel := testutil.TestContext()
	defer cancel()

	existing := testutil.NewUser("Staff")
	existing.ID = "uid-existing"
	existing.Email = "promoted@example.com"
	if _, err := store.Create(ctx, existing); err != nil {
		t.Fatalf("Create: %v", err)
	}

	u, err := p.SignIn(ctx, userstore.Identity{
		Provider: "google",
		ID:       "uid-existing",
		Email:    "promoted@example.com",
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}
	if u.Role != "Staff" {
		t.Fatalf("role = %q, want Staff preserved", u.Role)
	}

	stored, err := store.GetByID(ctx, "uid-existing")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Role != "Staff" {
		t.Fatalf("stored role = %q, want Staff preserved", stored.Role)
	}
}

func TestSignInTouchBackfillsAvatarOnlyWhenEmpty(t *testing.T) {
	p, store := newProvisioner(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	existing := testutil.NewUser("User")
	existing.ID = "uid-avatar"
	existing.Profile.Avatar = "https://cdn.test/original.png"
	if _, err := store.Create(ctx, existing); err != nil {
		t.Fatalf("Create: %v", err)
	}

	_, err := p.SignIn(ctx, userstore.Identity{
		Provider: "facebook",
		ID:       "uid-avatar",
		Email:    existing.Email,
		Avatar:   "https://cdn.test/provider.png",
	})
	if err != nil {
		t.Fatalf("SignIn: %v", err)
	}

	stored, err := store.GetByID(ctx, "uid-avatar")
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if stored.Profile.Avatar != "https://cdn.test/original.png" {
		t.Fatalf("avatar = %q, want stored one kept", stored.Profile.Avatar)
	}
}

func TestSignInRejectsBadIdentity(t *testing.T) {
	p, _ := newProvisioner(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := p.SignIn(ctx, userstore.Identity{ID: "uid-only"}); err == nil {
		t.Fatal("SignIn accepted an identity without an email")
	}
	if _, err := p.SignIn(ctx, userstore.Identity{Email: "only@example.com"}); err == nil {
		t.Fatal("SignIn accepted an identity without a uid")
	}
}

func TestIsSuperAdminEmail(t *testing.T) {
	p := userstore.NewProvisioner(nil, []string{" Root@Example.com ", ""}, nil, zap.NewNop())

	if !p.IsSuperAdminEmail("root@example.com") {
		t.Fatal("normalized allow-list entry did not match")
	}
	if !p.IsSuperAdminEmail("ROOT@EXAMPLE.COM") {
		t.Fatal("allow-list match should be case-insensitive")
	}
	if p.IsSuperAdminEmail("") {
		t.Fatal("empty email matched the allow-list")
	}
	if p.IsSuperAdminEmail("other@example.com") {
		t.Fatal("unlisted email matched the allow-list")
	}
}
