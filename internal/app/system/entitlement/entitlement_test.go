package entitlement_test

import (
	"testing"
	"time"

	portfoliostore "github.com/meroket/meroket/internal/app/store/portfolios"
	"github.com/meroket/meroket/internal/app/system/entitlement"
	"github.com/meroket/meroket/internal/domain/models"
	"github.com/meroket/meroket/internal/testutil"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

func TestDemotionKeepsOldestPublished(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := portfoliostore.New(db)
	svc := entitlement.NewService(store, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	owner := primitive.NewObjectID()

	// Hyper user with 7 portfolios: 3 published, 4 drafts, mixed ages.
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	keep := fx.CreatePortfolioAt(ctx, owner, "Pub Oldest", "pub-oldest", true, base)
	fx.CreatePortfolioAt(ctx, owner, "Pub Mid", "pub-mid", true, base.Add(24*time.Hour))
	fx.CreatePortfolioAt(ctx, owner, "Pub New", "pub-new", true, base.Add(48*time.Hour))
	fx.CreatePortfolioAt(ctx, owner, "Draft A", "draft-a", false, base.Add(-24*time.Hour)) // older than any published
	fx.CreatePortfolioAt(ctx, owner, "Draft B", "draft-b", false, base.Add(12*time.Hour))
	fx.CreatePortfolioAt(ctx, owner, "Draft C", "draft-c", false, base.Add(36*time.Hour))
	fx.CreatePortfolioAt(ctx, owner, "Draft D", "draft-d", false, base.Add(60*time.Hour))

	// Demote hyper → free (limit 1).
	res, err := svc.ApplyTierDemotion(ctx, owner, models.TierFree)
	if err != nil {
		t.Fatalf("ApplyTierDemotion: %v", err)
	}
	if res.Kept != 1 {
		t.Errorf("kept = %d, want 1", res.Kept)
	}
	if res.NewlyFrozen != 6 {
		t.Errorf("newly frozen = %d, want 6", res.NewlyFrozen)
	}

	all, err := store.ListByOwner(ctx, owner)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	for _, p := range all {
		wantFrozen := p.ID != keep.ID
		if p.IsFrozen != wantFrozen {
			t.Errorf("portfolio %q frozen = %v, want %v", p.Slug, p.IsFrozen, wantFrozen)
		}
	}
}

func TestDemotionUnfreezesKeptPrefix(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := portfoliostore.New(db)
	svc := entitlement.NewService(store, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	owner := primitive.NewObjectID()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	a := fx.CreatePortfolioAt(ctx, owner, "A", "a", true, base)
	b := fx.CreatePortfolioAt(ctx, owner, "B", "b", false, base.Add(time.Hour))

	// Both previously frozen (say, by an earlier demotion).
	if err := svc.FreezePortfolio(ctx, a.ID); err != nil {
		t.Fatalf("FreezePortfolio: %v", err)
	}
	if err := svc.FreezePortfolio(ctx, b.ID); err != nil {
		t.Fatalf("FreezePortfolio: %v", err)
	}

	// Pro limit is 3; both fit, so both are kept and unfrozen.
	res, err := svc.ApplyTierDemotion(ctx, owner, models.TierPro)
	if err != nil {
		t.Fatalf("ApplyTierDemotion: %v", err)
	}
	if res.Kept != 2 || res.NewlyFrozen != 0 {
		t.Errorf("kept=%d newlyFrozen=%d, want 2/0", res.Kept, res.NewlyFrozen)
	}

	all, _ := store.ListByOwner(ctx, owner)
	for _, p := range all {
		if p.IsFrozen {
			t.Errorf("portfolio %q still frozen after upgrade", p.Slug)
		}
	}
}

func TestDemotionCountsOnlyNewlyFrozen(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := portfoliostore.New(db)
	svc := entitlement.NewService(store, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	owner := primitive.NewObjectID()

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	fx.CreatePortfolioAt(ctx, owner, "A", "a2", true, base)
	b := fx.CreatePortfolioAt(ctx, owner, "B", "b2", false, base.Add(time.Hour))
	fx.CreatePortfolioAt(ctx, owner, "C", "c2", false, base.Add(2*time.Hour))

	if err := svc.FreezePortfolio(ctx, b.ID); err != nil {
		t.Fatalf("FreezePortfolio: %v", err)
	}

	// Free limit 1: keeps A; B was already frozen, C is newly frozen.
	res, err := svc.ApplyTierDemotion(ctx, owner, models.TierFree)
	if err != nil {
		t.Fatalf("ApplyTierDemotion: %v", err)
	}
	if res.NewlyFrozen != 1 {
		t.Errorf("newly frozen = %d, want 1 (already-frozen excluded)", res.NewlyFrozen)
	}
	if len(res.FrozenIDs) != 2 {
		t.Errorf("frozen ids = %d, want 2", len(res.FrozenIDs))
	}
}

func TestFreezeUnfreezeIdempotent(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := portfoliostore.New(db)
	svc := entitlement.NewService(store, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	p := fx.CreatePortfolio(ctx, primitive.NewObjectID(), "P", "p")

	for i := 0; i < 2; i++ {
		if err := svc.FreezePortfolio(ctx, p.ID); err != nil {
			t.Fatalf("FreezePortfolio #%d: %v", i+1, err)
		}
	}
	got, _ := store.GetByID(ctx, p.ID)
	if !got.IsFrozen {
		t.Fatal("not frozen")
	}

	for i := 0; i < 2; i++ {
		if err := svc.UnfreezePortfolio(ctx, p.ID); err != nil {
			t.Fatalf("UnfreezePortfolio #%d: %v", i+1, err)
		}
	}
	got, _ = store.GetByID(ctx, p.ID)
	if got.IsFrozen {
		t.Fatal("still frozen")
	}
}

func TestCheckCreatePortfolio(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	store := portfoliostore.New(db)
	svc := entitlement.NewService(store, zap.NewNop())
	fx := testutil.NewFixtures(t, db)
	owner := primitive.NewObjectID()

	d, err := svc.CheckCreatePortfolio(ctx, owner, models.TierFree)
	if err != nil {
		t.Fatalf("CheckCreatePortfolio: %v", err)
	}
	if !d.Allowed {
		t.Error("expected allowed with zero portfolios")
	}

	fx.CreatePortfolio(ctx, owner, "Only", "only")
	d, err = svc.CheckCreatePortfolio(ctx, owner, models.TierFree)
	if err != nil {
		t.Fatalf("CheckCreatePortfolio: %v", err)
	}
	if d.Allowed {
		t.Error("expected denied at free limit")
	}
	if d.Message == "" {
		t.Error("expected a denial message")
	}
}

func TestCheckSave(t *testing.T) {
	svc := entitlement.NewService(nil, zap.NewNop())

	okDoc := models.PortfolioData{Sections: []models.Section{{Type: models.SectionHero}}}

	t.Run("frozen blocks", func(t *testing.T) {
		p := &models.Portfolio{IsFrozen: true}
		d := svc.CheckSave(p, okDoc, models.TierFree)
		if d.Allowed {
			t.Error("frozen portfolio must refuse save")
		}
	})

	t.Run("over-limit document blocks", func(t *testing.T) {
		sections := make([]models.Section, 6)
		for i := range sections {
			sections[i] = models.Section{Type: models.SectionAbout}
		}
		d := svc.CheckSave(&models.Portfolio{}, models.PortfolioData{Sections: sections}, models.TierFree)
		if d.Allowed {
			t.Error("document over section limit must refuse save")
		}
	})

	t.Run("clean save allowed", func(t *testing.T) {
		d := svc.CheckSave(&models.Portfolio{}, okDoc, models.TierFree)
		if !d.Allowed {
			t.Errorf("unexpected denial: %s", d.Message)
		}
	})
}
