package admin_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/meroket/meroket/internal/app/features/admin"
	uierrors "github.com/meroket/meroket/internal/app/features/errors"
	"github.com/meroket/meroket/internal/app/store/audit"
	portfoliostore "github.com/meroket/meroket/internal/app/store/portfolios"
	"github.com/meroket/meroket/internal/app/store/sessions"
	schedulestore "github.com/meroket/meroket/internal/app/store/tierschedules"
	userstore "github.com/meroket/meroket/internal/app/store/users"
	"github.com/meroket/meroket/internal/app/system/auditlog"
	"github.com/meroket/meroket/internal/app/system/entitlement"
	"github.com/meroket/meroket/internal/domain/models"
	"github.com/meroket/meroket/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(db *mongo.Database) *admin.Handler {
	logger := zap.NewNop()
	pstore := portfoliostore.New(db)
	return admin.NewHandler(
		userstore.New(db),
		pstore,
		schedulestore.New(db),
		sessions.New(db),
		entitlement.NewService(pstore, logger),
		uierrors.NewErrorLogger(logger),
		auditlog.New(audit.New(db), logger, auditlog.Config{Admin: "db", Entitlement: "db"}),
		logger,
	)
}

func TestHandleSetTier_DemotionFreezesOverflow(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	fx := testutil.NewFixtures(t, db)
	pstore := portfoliostore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	adminUser := fx.CreateAdmin(ctx, "The Admin", "admin-tier@example.com")
	target := fx.CreateUser(ctx, "Demoted", "admin-demoted@example.com", "user", "pro")

	// Three portfolios; the oldest published one survives a drop to free.
	base := time.Now().Add(-72 * time.Hour)
	fx.CreatePortfolioAt(ctx, target.ID, "Old Draft", "adm-old-draft", false, base)
	keep := fx.CreatePortfolioAt(ctx, target.ID, "Published", "adm-published", true, base.Add(time.Hour))
	fx.CreatePortfolioAt(ctx, target.ID, "New Draft", "adm-new-draft", false, base.Add(2*time.Hour))

	req := testutil.NewFormRequest("/admin/users/"+target.ID.Hex()+"/tier",
		map[string]string{"tier": "free"},
		testutil.TestUser{ID: adminUser.ID.Hex(), Name: adminUser.FullName, Email: adminUser.Email, Role: "admin", Tier: adminUser.Tier})
	req = testutil.WithChiURLParam(req, "id", target.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleSetTier(rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)

	got, err := userstore.New(db).GetByID(ctx, target.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Tier != "free" {
		t.Fatalf("tier: got %q, want free", got.Tier)
	}

	list, err := pstore.ListByOwner(ctx, target.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	frozen := 0
	for _, p := range list {
		if p.IsFrozen {
			frozen++
			continue
		}
		if p.ID != keep.ID {
			t.Errorf("unexpected unfrozen portfolio %q", p.Name)
		}
	}
	if frozen != 2 {
		t.Errorf("frozen count: got %d, want 2", frozen)
	}

	n, err := audit.New(db).Count(ctx, audit.QueryFilter{
		UserID:    &target.ID,
		Category:  audit.CategoryEntitlement,
		EventType: audit.EventPortfolioFrozen,
	})
	if err != nil {
		t.Fatalf("audit count: %v", err)
	}
	if n != 2 {
		t.Errorf("frozen audit events: got %d, want 2", n)
	}
}

func TestHandleSetTier_UpgradeUnfreezes(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	fx := testutil.NewFixtures(t, db)
	pstore := portfoliostore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	adminUser := fx.CreateAdmin(ctx, "The Admin", "admin-upgrade@example.com")
	target := fx.CreateUser(ctx, "Promoted", "admin-promoted@example.com", "user", "free")

	p1 := fx.CreatePortfolio(ctx, target.ID, "One", "adm-up-one")
	p2 := fx.CreatePortfolio(ctx, target.ID, "Two", "adm-up-two")
	for _, id := range []primitive.ObjectID{p1.ID, p2.ID} {
		if err := pstore.SetFrozen(ctx, id, true); err != nil {
			t.Fatalf("SetFrozen: %v", err)
		}
	}

	req := testutil.NewFormRequest("/admin/users/"+target.ID.Hex()+"/tier",
		map[string]string{"tier": "pro"},
		testutil.TestUser{ID: adminUser.ID.Hex(), Name: adminUser.FullName, Email: adminUser.Email, Role: "admin", Tier: adminUser.Tier})
	req = testutil.WithChiURLParam(req, "id", target.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleSetTier(rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)

	list, err := pstore.ListByOwner(ctx, target.ID)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	for _, p := range list {
		if p.IsFrozen {
			t.Errorf("portfolio %q still frozen after upgrade", p.Name)
		}
	}

	n, err := audit.New(db).Count(ctx, audit.QueryFilter{
		UserID:    &target.ID,
		Category:  audit.CategoryEntitlement,
		EventType: audit.EventPortfolioUnfrozen,
	})
	if err != nil {
		t.Fatalf("audit count: %v", err)
	}
	if n != 2 {
		t.Errorf("unfrozen audit events: got %d, want 2", n)
	}
}

func TestHandleExecuteSchedule_AppliesAndClaims(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	fx := testutil.NewFixtures(t, db)
	sstore := schedulestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	adminUser := fx.CreateAdmin(ctx, "The Admin", "admin-sched@example.com")
	target := fx.CreateUser(ctx, "Scheduled", "admin-scheduled@example.com", "user", "free")

	sch, err := sstore.Create(ctx, models.TierSchedule{
		UserID:      target.ID,
		FromTier:    "free",
		ToTier:      "pro",
		StartDate:   time.Now(),
		IsPermanent: true,
	})
	if err != nil {
		t.Fatalf("schedule create: %v", err)
	}

	adminTU := testutil.TestUser{ID: adminUser.ID.Hex(), Name: adminUser.FullName, Email: adminUser.Email, Role: "admin", Tier: adminUser.Tier}

	req := testutil.NewFormRequest("/admin/schedules/"+sch.ID.Hex()+"/execute", nil, adminTU)
	req = testutil.WithChiURLParam(req, "scheduleID", sch.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleExecuteSchedule(rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "notice=") {
		t.Errorf("expected success notice redirect, got %q", loc)
	}

	got, err := userstore.New(db).GetByID(ctx, target.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Tier != "pro" {
		t.Errorf("tier after execute: got %q, want pro", got.Tier)
	}

	// Second execute must report already-executed.
	req2 := testutil.NewFormRequest("/admin/schedules/"+sch.ID.Hex()+"/execute", nil, adminTU)
	req2 = testutil.WithChiURLParam(req2, "scheduleID", sch.ID.Hex())
	rec2 := testutil.NewRecorder()

	h.HandleExecuteSchedule(rec2, req2)

	rec2.AssertStatus(t, http.StatusSeeOther)
	if loc := rec2.Header().Get("Location"); !strings.Contains(loc, "error=") {
		t.Errorf("re-execute must redirect with an error, got %q", loc)
	}
}

func TestHandleCancelSchedule_ExecutedCannotBeCanceled(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	fx := testutil.NewFixtures(t, db)
	sstore := schedulestore.New(db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	adminUser := fx.CreateAdmin(ctx, "The Admin", "admin-cancel@example.com")
	target := fx.CreateUser(ctx, "Canceled", "admin-canceled@example.com", "user", "free")

	sch, err := sstore.Create(ctx, models.TierSchedule{
		UserID:      target.ID,
		FromTier:    "free",
		ToTier:      "hyper",
		StartDate:   time.Now(),
		IsPermanent: true,
	})
	if err != nil {
		t.Fatalf("schedule create: %v", err)
	}
	if err := sstore.MarkExecuted(ctx, sch.ID); err != nil {
		t.Fatalf("MarkExecuted: %v", err)
	}

	req := testutil.NewFormRequest("/admin/schedules/"+sch.ID.Hex()+"/cancel", nil,
		testutil.TestUser{ID: adminUser.ID.Hex(), Name: adminUser.FullName, Email: adminUser.Email, Role: "admin", Tier: adminUser.Tier})
	req = testutil.WithChiURLParam(req, "scheduleID", sch.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleCancelSchedule(rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)
	if loc := rec.Header().Get("Location"); !strings.Contains(loc, "error=") {
		t.Errorf("canceling an executed schedule must fail, got %q", loc)
	}

	if _, err := sstore.GetByID(ctx, sch.ID); err != nil {
		t.Errorf("executed schedule must survive a cancel attempt: %v", err)
	}
}

func TestHandleDisable_WritesStatusAndAudit(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := newTestHandler(db)
	fx := testutil.NewFixtures(t, db)

	ctx, cancel := testutil.TestContext()
	defer cancel()
	adminUser := fx.CreateAdmin(ctx, "The Admin", "admin-disable@example.com")
	target := fx.CreateUser(ctx, "Disabled Soon", "admin-target@example.com", "user", "free")

	req := testutil.NewFormRequest("/admin/users/"+target.ID.Hex()+"/disable", nil,
		testutil.TestUser{ID: adminUser.ID.Hex(), Name: adminUser.FullName, Email: adminUser.Email, Role: "admin", Tier: adminUser.Tier})
	req = testutil.WithChiURLParam(req, "id", target.ID.Hex())
	rec := testutil.NewRecorder()

	h.HandleDisable(rec, req)

	rec.AssertStatus(t, http.StatusSeeOther)

	got, err := userstore.New(db).GetByID(ctx, target.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != "disabled" {
		t.Errorf("status: got %q, want disabled", got.Status)
	}

	n, err := audit.New(db).Count(ctx, audit.QueryFilter{Category: "admin"})
	if err != nil {
		t.Fatalf("audit count: %v", err)
	}
	if n == 0 {
		t.Error("disabling a user must write an admin audit event")
	}
}
