package testutil

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dalemusser/waffle/pantry/text"
	"github.com/go-chi/chi/v5"
	"github.com/meroket/meroket/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// WithChiURLParam adds a chi URL parameter to the request context.
// Use this in handler tests that need to access chi.URLParam values.
func WithChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// Fixtures provides helper methods for creating test data.
type Fixtures struct {
	db *mongo.Database
	t  *testing.T
}

// NewFixtures creates a new Fixtures instance for the given test database.
func NewFixtures(t *testing.T, db *mongo.Database) *Fixtures {
	t.Helper()
	return &Fixtures{db: db, t: t}
}

// DB returns the underlying database for direct access in tests.
func (f *Fixtures) DB() *mongo.Database {
	return f.db
}

// CreateUser creates a test user with the given role and tier.
func (f *Fixtures) CreateUser(ctx context.Context, name, email, role, tier string) models.User {
	f.t.Helper()

	now := time.Now().UTC()
	u := models.User{
		ID:         primitive.NewObjectID(),
		FullName:   name,
		FullNameCI: text.Fold(name),
		Email:      email,
		Role:       role,
		Tier:       tier,
		Status:     "active",
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if _, err := f.db.Collection("users").InsertOne(ctx, u); err != nil {
		f.t.Fatalf("failed to create test user: %v", err)
	}
	return u
}

// CreateAdmin creates a test admin user.
func (f *Fixtures) CreateAdmin(ctx context.Context, name, email string) models.User {
	f.t.Helper()
	return f.CreateUser(ctx, name, email, models.RoleAdmin, models.TierFree)
}

// CreatePortfolio creates a test portfolio for the given owner.
func (f *Fixtures) CreatePortfolio(ctx context.Context, ownerID primitive.ObjectID, name, slug string) models.Portfolio {
	f.t.Helper()
	return f.insertPortfolio(ctx, ownerID, name, slug, false, false, time.Now().UTC())
}

// CreatePublishedPortfolio creates a test portfolio already published.
func (f *Fixtures) CreatePublishedPortfolio(ctx context.Context, ownerID primitive.ObjectID, name, slug string) models.Portfolio {
	f.t.Helper()
	return f.insertPortfolio(ctx, ownerID, name, slug, true, false, time.Now().UTC())
}

// CreatePortfolioAt creates a test portfolio with explicit published state and
// creation time. Demotion ordering tests need control over both.
func (f *Fixtures) CreatePortfolioAt(ctx context.Context, ownerID primitive.ObjectID, name, slug string, published bool, createdAt time.Time) models.Portfolio {
	f.t.Helper()
	return f.insertPortfolio(ctx, ownerID, name, slug, published, false, createdAt)
}

func (f *Fixtures) insertPortfolio(ctx context.Context, ownerID primitive.ObjectID, name, slug string, published, frozen bool, createdAt time.Time) models.Portfolio {
	f.t.Helper()

	p := models.Portfolio{
		ID:          primitive.NewObjectID(),
		OwnerID:     ownerID,
		Name:        name,
		NameCI:      text.Fold(name),
		Slug:        slug,
		IsPublished: published,
		IsFrozen:    frozen,
		Data: models.PortfolioData{
			Sections: []models.Section{},
		},
		CreatedAt: createdAt,
		UpdatedAt: createdAt,
	}

	if _, err := f.db.Collection("portfolios").InsertOne(ctx, p); err != nil {
		f.t.Fatalf("failed to create test portfolio: %v", err)
	}
	return p
}

// SetPortfolioData replaces a test portfolio's section data directly.
func (f *Fixtures) SetPortfolioData(ctx context.Context, id primitive.ObjectID, data models.PortfolioData) {
	f.t.Helper()

	res := f.db.Collection("portfolios").FindOneAndUpdate(ctx,
		map[string]any{"_id": id},
		map[string]any{"$set": map[string]any{"portfolio_data": data, "updated_at": time.Now().UTC()}})
	if res.Err() != nil {
		f.t.Fatalf("failed to set portfolio data: %v", res.Err())
	}
}
