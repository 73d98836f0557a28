// Package schedulestore persists scheduled tier changes. A schedule is a
// record of intent: it does not change the user's tier by itself. An admin
// executes a due schedule explicitly, which applies the tier change through
// the entitlement layer and marks the schedule executed.
package schedulestore

import (
	"context"
	"errors"
	"time"

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
	return &Store{c: db.Collection("tier_schedules")}
}

var (
	// ErrNotFound is returned when no schedule matches.
	ErrNotFound = errors.New("tier schedule not found")
	// ErrAlreadyExecuted is returned when executing a schedule twice.
	ErrAlreadyExecuted = errors.New("tier schedule already executed")
	errBadTier         = errors.New(`tier must be "free"|"pro"|"hyper"`)
	errBadDates        = errors.New("end date must be after start date")
)

// Create inserts a new schedule. Non-permanent schedules need an end date
// after the start date.
func (s *Store) Create(ctx context.Context, sch models.TierSchedule) (models.TierSchedule, error) {
	sch.ID = primitive.NewObjectID()
	sch.FromTier = normalize.Tier(sch.FromTier)
	sch.ToTier = normalize.Tier(sch.ToTier)
	sch.IsExecuted = false

	if !models.ValidTier(sch.ToTier) {
		return models.TierSchedule{}, errBadTier
	}
	if sch.FromTier != "" && !models.ValidTier(sch.FromTier) {
		return models.TierSchedule{}, errBadTier
	}
	if sch.StartDate.IsZero() {
		sch.StartDate = time.Now()
	}
	if !sch.IsPermanent {
		if sch.EndDate == nil || !sch.EndDate.After(sch.StartDate) {
			return models.TierSchedule{}, errBadDates
		}
	}

	now := time.Now()
	sch.CreatedAt = now
	sch.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, sch); err != nil {
		return models.TierSchedule{}, err
	}
	return sch, nil
}

// GetByID loads a schedule by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.TierSchedule, error) {
	var sch models.TierSchedule
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&sch); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &sch, nil
}

// ListByUser returns a user's schedules, soonest start first.
func (s *Store) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.TierSchedule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TierSchedule
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPending returns unexecuted schedules, soonest start first.
func (s *Store) ListPending(ctx context.Context) ([]models.TierSchedule, error) {
	opts := options.Find().SetSort(bson.D{{Key: "start_date", Value: 1}})
	cur, err := s.c.Find(ctx, bson.M{"is_executed": false}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.TierSchedule
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkExecuted flips a schedule to executed exactly once.
func (s *Store) MarkExecuted(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "is_executed": false},
		bson.M{"$set": bson.M{"is_executed": true, "updated_at": time.Now()}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		// Distinguish missing from already-executed for a clear admin message.
		n, cErr := s.c.CountDocuments(ctx, bson.M{"_id": id})
		if cErr == nil && n > 0 {
			return ErrAlreadyExecuted
		}
		return ErrNotFound
	}
	return nil
}

// Delete cancels an unexecuted schedule. Executed schedules are history and
// cannot be removed.
func (s *Store) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := s.c.DeleteOne(ctx, bson.M{"_id": id, "is_executed": false})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
