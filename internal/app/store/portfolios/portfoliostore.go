// Package portfoliostore persists portfolio documents. The section tree and
// navbar config live inside each portfolio record as one embedded document, so
// every save is a single-document write and needs no transaction.
package portfoliostore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("portfolios")}
}

var (
	// ErrDuplicateSlug is returned when a slug is already taken by another portfolio.
	ErrDuplicateSlug = errors.New("this address is already taken")
	// ErrNotFound is returned when no portfolio matches.
	ErrNotFound = errors.New("portfolio not found")
)

func mapErr(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return ErrNotFound
	}
	return err
}

// Create inserts a new portfolio for owner. The slug must be unique across
// all portfolios; a clash returns ErrDuplicateSlug.
func (s *Store) Create(ctx context.Context, p models.Portfolio) (models.Portfolio, error) {
	p.ID = primitive.NewObjectID()
	p.Name = normalize.Name(p.Name)
	p.NameCI = text.Fold(p.Name)
	p.Slug = normalize.Slug(p.Slug)
	if p.Data.Sections == nil {
		p.Data.Sections = []models.Section{}
	}

	now := time.Now()
	p.CreatedAt = now
	p.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, p); err != nil {
		if wafflemongo.IsDup(err) {
			return models.Portfolio{}, ErrDuplicateSlug
		}
		return models.Portfolio{}, err
	}
	return p, nil
}

// GetByID loads a portfolio by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// GetOwned loads a portfolio only if it belongs to ownerID. Acts as the
// ownership check for all owner-facing operations.
func (s *Store) GetOwned(ctx context.Context, id, ownerID primitive.ObjectID) (*models.Portfolio, error) {
	var p models.Portfolio
	if err := s.c.FindOne(ctx, bson.M{"_id": id, "owner_id": ownerID}).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// GetPublishedBySlug resolves a public URL slug to its portfolio. Only
// published portfolios resolve; drafts return ErrNotFound so visitors cannot
// distinguish "unpublished" from "does not exist". A frozen portfolio that is
// still published resolves normally.
func (s *Store) GetPublishedBySlug(ctx context.Context, slug string) (*models.Portfolio, error) {
	var p models.Portfolio
	filter := bson.M{"slug": normalize.Slug(slug), "is_published": true}
	if err := s.c.FindOne(ctx, filter).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

// ListByOwner returns all of an owner's portfolios, published first, then
// oldest first. This is also the keep-order used when a tier demotion decides
// which portfolios stay active.
func (s *Store) ListByOwner(ctx context.Context, ownerID primitive.ObjectID) ([]models.Portfolio, error) {
	opts := options.Find().SetSort(bson.D{
		{Key: "is_published", Value: -1},
		{Key: "created_at", Value: 1},
	})
	cur, err := s.c.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.Portfolio
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CountByOwner returns how many portfolios an owner has, frozen included.
func (s *Store) CountByOwner(ctx context.Context, ownerID primitive.ObjectID) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"owner_id": ownerID})
}

// ReplaceData overwrites the portfolio's embedded section data in one write.
func (s *Store) ReplaceData(ctx context.Context, id primitive.ObjectID, data models.PortfolioData) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"portfolio_data": data,
		"updated_at":     time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Rename updates the portfolio's display name.
func (s *Store) Rename(ctx context.Context, id primitive.ObjectID, name string) error {
	name = normalize.Name(name)
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"name":       name,
		"name_ci":    text.Fold(name),
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetSlug changes the portfolio's public address. Returns ErrDuplicateSlug if
// another portfolio already holds it.
func (s *Store) SetSlug(ctx context.Context, id primitive.ObjectID, slug string) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"slug":       normalize.Slug(slug),
		"updated_at": time.Now(),
	}})
	if err != nil {
		if wafflemongo.IsDup(err) {
			return ErrDuplicateSlug
		}
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetPublished flips the published flag.
func (s *Store) SetPublished(ctx context.Context, id primitive.ObjectID, published bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_published": published,
		"updated_at":   time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// SetFrozen flips the frozen flag. Freezing does not unpublish; a published
// frozen portfolio stays publicly visible.
func (s *Store) SetFrozen(ctx context.Context, id primitive.ObjectID, frozen bool) error {
	res, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"is_frozen":  frozen,
		"updated_at": time.Now(),
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a portfolio owned by ownerID.
func (s *Store) Delete(ctx context.Context, id, ownerID primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "owner_id": ownerID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
