package logout_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/meroket/meroket/internal/app/features/logout"
	"github.com/meroket/meroket/internal/app/store/audit"
	"github.com/meroket/meroket/internal/app/store/sessions"
	"github.com/meroket/meroket/internal/app/system/auditlog"
	"github.com/meroket/meroket/internal/app/system/auth"
	"github.com/meroket/meroket/internal/testutil"
	"go.uber.org/zap"
)

func TestServe_ClosesSessionAndRedirects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	mgr, err := auth.NewSessionManager(strings.Repeat("k", 32), "meroket_test", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	sessStore := sessions.New(db)
	h := logout.NewHandler(mgr, auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "db"}), sessStore, logger)

	fx := testutil.NewFixtures(t, db)
	ctx, cancel := testutil.TestContext()
	defer cancel()
	u := fx.CreateUser(ctx, "Logout Tester", "logout@example.com", "user", "free")
	if _, err := sessStore.Create(ctx, u.ID, "127.0.0.1", "test"); err != nil {
		t.Fatalf("session create: %v", err)
	}

	req := httptest.NewRequest("POST", "/logout", nil)
	req = auth.WithTestUser(req, &auth.SessionUser{
		ID: u.ID.Hex(), Name: u.FullName, Email: u.Email, Role: u.Role, Tier: u.Tier,
	})
	rec := httptest.NewRecorder()

	h.Serve(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location: got %q, want %q", loc, "/")
	}

	n, err := sessStore.CountActive(ctx)
	if err != nil {
		t.Fatalf("CountActive: %v", err)
	}
	if n != 0 {
		t.Errorf("active sessions after logout: got %d, want 0", n)
	}
}

func TestServe_SignedOutUserStillRedirects(t *testing.T) {
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()

	mgr, err := auth.NewSessionManager(strings.Repeat("k", 32), "meroket_test", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager: %v", err)
	}
	h := logout.NewHandler(mgr, auditlog.New(audit.New(db), logger, auditlog.Config{Auth: "off"}), sessions.New(db), logger)

	req := httptest.NewRequest("POST", "/logout", nil)
	rec := httptest.NewRecorder()

	h.Serve(rec, req)

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusSeeOther)
	}
}
