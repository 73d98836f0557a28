package userstore_test

import (
	"errors"
	"testing"
	"time"

	"github.com/meroket/meroket/internal/app/store/users"
	"github.com/meroket/meroket/internal/app/system/indexes"
	"github.com/meroket/meroket/internal/domain/models"
	"github.com/meroket/meroket/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
)

func TestCreateNormalizesAndDefaults(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)

	u, err := store.Create(ctx, models.User{
		FullName: "  Dana Park  ",
		Email:    "  Dana@Example.COM ",
		Role:     "User",
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.FullName != "Dana Park" {
		t.Errorf("full name = %q", u.FullName)
	}
	if u.Email != "dana@example.com" {
		t.Errorf("email = %q", u.Email)
	}
	if u.Tier != models.TierFree {
		t.Errorf("tier = %q, want free default", u.Tier)
	}
	if u.Status != "active" {
		t.Errorf("status = %q, want active default", u.Status)
	}
}

func TestCreateRejectsBadRoleAndTier(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)

	if _, err := store.Create(ctx, models.User{FullName: "X", Email: "x@example.com", Role: "superuser"}); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := store.Create(ctx, models.User{FullName: "X", Email: "x2@example.com", Role: "user", Tier: "platinum"}); err == nil {
		t.Error("expected error for unknown tier")
	}
}

func TestCreateDuplicateEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if err := indexes.EnsureAll(ctx, db); err != nil {
		t.Fatalf("EnsureAll: %v", err)
	}
	store := userstore.New(db)

	if _, err := store.Create(ctx, models.User{FullName: "A", Email: "same@example.com", Role: "user"}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := store.Create(ctx, models.User{FullName: "B", Email: "SAME@example.com", Role: "user"})
	if !errors.Is(err, userstore.ErrDuplicateEmail) {
		t.Fatalf("err = %v, want ErrDuplicateEmail", err)
	}
}

func TestGetByEmailCaseInsensitive(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	if _, err := store.Create(ctx, models.User{FullName: "A", Email: "a@example.com", Role: "user"}); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := store.GetByEmail(ctx, "A@Example.Com")
	if err != nil {
		t.Fatalf("GetByEmail: %v", err)
	}
	if got.Email != "a@example.com" {
		t.Errorf("email = %q", got.Email)
	}

	if _, err := store.GetByEmail(ctx, "missing@example.com"); !errors.Is(err, mongo.ErrNoDocuments) {
		t.Fatalf("err = %v, want ErrNoDocuments", err)
	}
}

func TestSetTier(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	u, err := store.Create(ctx, models.User{FullName: "A", Email: "a@example.com", Role: "user"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}

	expires := time.Now().Add(30 * 24 * time.Hour).Truncate(time.Millisecond)
	if err := store.SetTier(ctx, u.ID, "pro", nil, &expires); err != nil {
		t.Fatalf("SetTier: %v", err)
	}

	got, err := store.GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Tier != models.TierPro {
		t.Errorf("tier = %q, want pro", got.Tier)
	}
	if got.TierExpiresAt == nil {
		t.Fatal("expected tier_expires_at set")
	}

	// Permanent assignment clears the bounds.
	if err := store.SetTier(ctx, u.ID, "hyper", nil, nil); err != nil {
		t.Fatalf("SetTier permanent: %v", err)
	}
	got, _ = store.GetByID(ctx, u.ID)
	if got.Tier != models.TierHyper || got.TierExpiresAt != nil {
		t.Errorf("after permanent grant: tier=%q expires=%v", got.Tier, got.TierExpiresAt)
	}

	if err := store.SetTier(ctx, u.ID, "platinum", nil, nil); err == nil {
		t.Error("expected error for unknown tier")
	}
}

func TestListSortsAndFilters(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := userstore.New(db)
	for _, u := range []models.User{
		{FullName: "Zoe", Email: "z@example.com", Role: "user", Tier: "pro"},
		{FullName: "Ann", Email: "a@example.com", Role: "user", Tier: "free"},
		{FullName: "Mia", Email: "m@example.com", Role: "admin", Tier: "free"},
	} {
		if _, err := store.Create(ctx, u); err != nil {
			t.Fatalf("Create %s: %v", u.FullName, err)
		}
	}

	all, err := store.List(ctx, userstore.ListFilter{})
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 3 || all[0].FullName != "Ann" || all[2].FullName != "Zoe" {
		t.Errorf("unexpected sort order: %+v", names(all))
	}

	pro, err := store.List(ctx, userstore.ListFilter{Tier: "pro"})
	if err != nil {
		t.Fatalf("List tier: %v", err)
	}
	if len(pro) != 1 || pro[0].FullName != "Zoe" {
		t.Errorf("tier filter: %+v", names(pro))
	}

	admins, err := store.List(ctx, userstore.ListFilter{Role: "admin"})
	if err != nil {
		t.Fatalf("List role: %v", err)
	}
	if len(admins) != 1 || admins[0].FullName != "Mia" {
		t.Errorf("role filter: %+v", names(admins))
	}
}

func names(users []models.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.FullName
	}
	return out
}
