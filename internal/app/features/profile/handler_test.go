package profile_test

import (
	"net/http"
	"testing"

	uierrors "github.com/meroket/meroket/internal/app/features/errors"
	"github.com/meroket/meroket/internal/app/features/profile"
	"github.com/meroket/meroket/internal/app/store/audit"
	userstore "github.com/meroket/meroket/internal/app/store/users"
	"github.com/meroket/meroket/internal/app/system/auditlog"
	"github.com/meroket/meroket/internal/domain/models"
	"github.com/meroket/meroket/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(db *mongo.Database) *profile.Handler {
	logger := zap.NewNop()
	return profile.NewHandler(
		userstore.New(db),
		uierrors.NewErrorLogger(logger),
		auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db"}),
		logger,
	)
}

func asTestUser(u models.User) testutil.TestUser {
	return testutil.TestUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  u.Role,
		Tier:  u.Tier,
	}
}

func TestHandleUpdate_ChangesName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	fx := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateUser(ctx, "Old Name", "profile-name@example.com", "user", "pro")

	req := testutil.NewFormRequest("/profile", map[string]string{
		"full_name": "New Name",
	}, asTestUser(u))
	rec := testutil.NewRecorder()

	// Success re-renders the page; without the template registry the render
	// panics, but the write has already happened.
	func() {
		defer func() { _ = recover() }()
		h.HandleUpdate(rec, req)
	}()

	got, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FullName != "New Name" {
		t.Errorf("FullName: got %q, want %q", got.FullName, "New Name")
	}
}

func TestHandleUpdate_RejectsEmptyName(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	fx := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateUser(ctx, "Keep Me", "profile-empty@example.com", "user", "free")

	req := testutil.NewFormRequest("/profile", map[string]string{
		"full_name": "   ",
	}, asTestUser(u))
	rec := testutil.NewRecorder()

	func() {
		defer func() { _ = recover() }()
		h.HandleUpdate(rec, req)
	}()

	got, err := userstore.New(db).GetByID(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.FullName != "Keep Me" {
		t.Errorf("empty name must not overwrite: got %q", got.FullName)
	}
}

func TestServeProfile_SignedOutRedirects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)

	req := testutil.NewRequest("GET", "/profile")
	rec := testutil.NewRecorder()

	h.ServeProfile(rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	rec.AssertRedirect(t, "/login")
}
