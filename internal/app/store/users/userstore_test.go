package userstore_test

import (
	"testing"
	"time"

	userstore "github.com/tripdesk/tripdesk/internal/app/store/users"
	"github.com/tripdesk/tripdesk/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateAndGet(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := testutil.NewUser("Staff")
	in.Email = "Mixed.Case@Example.COM"

	created, err := store.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Email != "mixed.case@example.com" {
		t.Fatalf("email = %q, want normalized lowercase", created.Email)
	}
	if created.Metadata.CreatedAt.IsZero() || created.Metadata.LastLoginAt.IsZero() {
		t.Fatal("timestamps not defaulted on create")
	}

	got, err := store.GetByID(ctx, in.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Role != "Staff" {
		t.Fatalf("role = %q, want Staff", got.Role)
	}

	byEmail, err := store.GetByEmail(ctx, "MIXED.CASE@example.com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if byEmail.ID != in.ID {
		t.Fatalf("GetByEmail returned %q, want %q", byEmail.ID, in.ID)
	}
}

func TestCreateRejectsUnknownRole(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := testutil.NewUser("Staff")
	in.Role = "Wizard"

	if _, err := store.Create(ctx, in); err == nil {
		t.Fatal("Create accepted an unknown role")
	}
}

func TestCreateCanonicalizesRoleCase(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	in := testutil.NewUser("Staff")
	in.Role = "superadmin"

	created, err := store.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if created.Role != "SuperAdmin" {
		t.Fatalf("role = %q, want canonical SuperAdmin", created.Role)
	}
}

func TestDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := store.EnsureIndexes(ctx); err != nil {
		t.Fatalf("EnsureIndexes: %v", err)
	}

	first := testutil.NewUser("Agent")
	if _, err := store.Create(ctx, first); err != nil {
		t.Fatalf("Create: %v", err)
	}

	second := testutil.NewUser("Agent")
	second.Email = first.Email
	if _, err := store.Create(ctx, second); err != userstore.ErrDuplicateEmail {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestListNewestFirst(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	// Create with explicit timestamps so the sort order is deterministic.
	older := testutil.NewUser("User")
	newer := testutil.NewUser("User")
	o, err := store.Create(ctx, older)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	newer.Metadata.CreatedAt = o.Metadata.CreatedAt.Add(time.Second)
	n, err := store.Create(ctx, newer)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	users, err := store.List(ctx, 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("len = %d, want 2", len(users))
	}
	if users[0].ID != n.ID {
		t.Fatalf("first = %q, want newest %q", users[0].ID, n.ID)
	}

	limited, err := store.List(ctx, 1)
	if err != nil {
		t.Fatalf("List(1): %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited len = %d, want 1", len(limited))
	}
}

func TestApplyMergesProfileFields(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.CreateUser(t, ctx, store, "Partner")

	mobile := "+44 20 7946 0958"
	err := store.Apply(ctx, u.ID, userstore.Update{
		Profile: &userstore.ProfilePatch{Mobile: &mobile},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Profile.Mobile != mobile {
		t.Fatalf("mobile = %q, want %q", got.Profile.Mobile, mobile)
	}
	if got.Profile.FirstName != u.Profile.FirstName {
		t.Fatal("untouched profile field changed")
	}
}

func TestApplyMissingTarget(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	active := false
	err := store.Apply(ctx, "no-such-user", userstore.Update{IsActive: &active})
	if err != mongo.ErrNoDocuments {
		t.Fatalf("err = %v, want ErrNoDocuments", err)
	}
}

func TestDelete(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.CreateUser(t, ctx, store, "Agent")

	deleted, err := store.Delete(ctx, u.ID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("deleted = %d, want 1", deleted)
	}

	deleted, err = store.Delete(ctx, u.ID)
	if err != nil {
		t.Fatalf("second Delete: %v", err)
	}
	if deleted != 0 {
		t.Fatalf("deleted = %d on missing record, want 0", deleted)
	}
}

func TestTouchLogin(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u := testutil.CreateUser(t, ctx, store, "User")
	before, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}

	if err := store.TouchLogin(ctx, u.ID, "Fresh@Example.com", "https://cdn.test/a.png"); err != nil {
		t.Fatalf("TouchLogin: %v", err)
	}

	after, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if after.Email != "fresh@example.com" {
		t.Fatalf("email = %q, want refreshed lowercase", after.Email)
	}
	if after.Profile.Avatar != "https://cdn.test/a.png" {
		t.Fatalf("avatar = %q, want backfilled", after.Profile.Avatar)
	}
	if !after.Metadata.LastLoginAt.After(before.Metadata.LastLoginAt) {
		t.Fatal("last_login_at did not advance")
	}

	// An empty avatar argument leaves the stored one alone.
	if err := store.TouchLogin(ctx, u.ID, "", ""); err != nil {
		t.Fatalf("TouchLogin: %v", err)
	}
	final, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if final.Profile.Avatar != "https://cdn.test/a.png" {
		t.Fatalf("avatar = %q, want unchanged", final.Profile.Avatar)
	}
	if final.Email != "fresh@example.com" {
		t.Fatalf("email = %q, want unchanged when touch omits it", final.Email)
	}
}
