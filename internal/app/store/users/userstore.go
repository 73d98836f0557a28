package userstore

import (
	"context"
	"errors"
	"time"

	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/app/system/status"
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
	return &Store{c: db.Collection("users")}
}

var (
	// ErrDuplicateEmail is returned when attempting to create a user with an email that already exists.
	ErrDuplicateEmail = errors.New("a user with this email already exists")
	errBadRole        = errors.New(`role must be "admin"|"user"`)
	errBadStatus      = errors.New(`status must be "active"|"disabled"`)
	errBadTier        = errors.New(`tier must be "free"|"pro"|"hyper"`)
)

// GetByID loads a user by ObjectID.
func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByEmail looks up a user by case-insensitive email. Returns mongo.ErrNoDocuments if not found.
func (s *Store) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.c.FindOne(ctx, bson.M{"email": normalize.Email(email)}).Decode(&u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Create inserts a new user after normalizing & validating fields.
// A missing tier defaults to free; a missing status defaults to active.
func (s *Store) Create(ctx context.Context, u models.User) (models.User, error) {
	u.ID = primitive.NewObjectID()
	u.FullName = normalize.Name(u.FullName)
	u.FullNameCI = text.Fold(u.FullName)
	u.Email = normalize.Email(u.Email)
	u.Role = normalize.Role(u.Role)
	u.Tier = normalize.Tier(u.Tier)
	if u.Status == "" {
		u.Status = status.Active
	}
	if u.Tier == "" {
		u.Tier = models.TierFree
	}

	switch u.Role {
	case models.RoleAdmin, models.RoleUser:
	default:
		return models.User{}, errBadRole
	}
	if !status.IsValid(u.Status) {
		return models.User{}, errBadStatus
	}
	if !models.ValidTier(u.Tier) {
		return models.User{}, errBadTier
	}

	now := time.Now()
	u.CreatedAt = now
	u.UpdatedAt = now

	if _, err := s.c.InsertOne(ctx, u); err != nil {
		if wafflemongo.IsDup(err) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return u, nil
}

// UpdateProfile updates the user's own editable fields.
func (s *Store) UpdateProfile(ctx context.Context, id primitive.ObjectID, fullName string) error {
	fullName = normalize.Name(fullName)
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"full_name":    fullName,
		"full_name_ci": text.Fold(fullName),
		"updated_at":   time.Now(),
	}})
	return err
}

// SetPassword replaces the user's password hash.
func (s *Store) SetPassword(ctx context.Context, id primitive.ObjectID, passwordHash string) error {
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	}})
	return err
}

// SetTier assigns the user's subscription tier. scheduledAt and expiresAt are
// optional bounds for time-limited grants; pass nil to clear them.
func (s *Store) SetTier(ctx context.Context, id primitive.ObjectID, tier string, scheduledAt, expiresAt *time.Time) error {
	tier = normalize.Tier(tier)
	if !models.ValidTier(tier) {
		return errBadTier
	}

	set := bson.M{
		"tier":       tier,
		"updated_at": time.Now(),
	}
	unset := bson.M{}
	if scheduledAt != nil {
		set["tier_scheduled_at"] = *scheduledAt
	} else {
		unset["tier_scheduled_at"] = ""
	}
	if expiresAt != nil {
		set["tier_expires_at"] = *expiresAt
	} else {
		unset["tier_expires_at"] = ""
	}

	update := bson.M{"$set": set}
	if len(unset) > 0 {
		update["$unset"] = unset
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, update)
	return err
}

// SetRole changes the user's role.
func (s *Store) SetRole(ctx context.Context, id primitive.ObjectID, role string) error {
	role = normalize.Role(role)
	if !models.ValidRole(role) {
		return errBadRole
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"role":       role,
		"updated_at": time.Now(),
	}})
	return err
}

// SetStatus activates or disables an account.
func (s *Store) SetStatus(ctx context.Context, id primitive.ObjectID, st string) error {
	st = normalize.Status(st)
	if !status.IsValid(st) {
		return errBadStatus
	}
	_, err := s.c.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"status":     st,
		"updated_at": time.Now(),
	}})
	return err
}

// ListFilter narrows List results.
type ListFilter struct {
	Role   string
	Tier   string
	Search string // matched against folded full name prefix
	Limit  int64
	Offset int64
}

// List returns users sorted by folded full name.
func (s *Store) List(ctx context.Context, filter ListFilter) ([]models.User, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = normalize.Role(filter.Role)
	}
	if filter.Tier != "" {
		query["tier"] = normalize.Tier(filter.Tier)
	}
	if q := normalize.QueryParam(filter.Search); q != "" {
		query["full_name_ci"] = bson.M{"$regex": "^" + text.Fold(q)}
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "full_name_ci", Value: 1}}).
		SetSkip(filter.Offset).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, query, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var users []models.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// Count returns the number of users matching the filter.
func (s *Store) Count(ctx context.Context, filter ListFilter) (int64, error) {
	query := bson.M{}
	if filter.Role != "" {
		query["role"] = normalize.Role(filter.Role)
	}
	if filter.Tier != "" {
		query["tier"] = normalize.Tier(filter.Tier)
	}
	return s.c.CountDocuments(ctx, query)
}
