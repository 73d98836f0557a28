package userstore

import (
	"context"
	"errors"

	"github.com/meroket/meroket/internal/app/system/auth"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/app/system/status"
	"github.com/meroket/meroket/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Fetcher implements auth.UserFetcher so every request sees the user's current
// role, tier, and status instead of whatever the session cookie cached. Tier
// changes made by an admin therefore take effect on the user's next request.
type Fetcher struct {
	users *mongo.Collection
}

// NewFetcher creates a UserFetcher that queries the given database.
func NewFetcher(db *mongo.Database) *Fetcher {
	return &Fetcher{users: db.Collection("users")}
}

var errUserDisabled = errors.New("user is disabled")

// FetchSessionUser retrieves a user by hex ID. Disabled or missing users
// return an error, which the middleware treats as signed-out.
func (f *Fetcher) FetchSessionUser(ctx context.Context, idHex string) (*auth.SessionUser, error) {
	oid, err := primitive.ObjectIDFromHex(idHex)
	if err != nil {
		return nil, err
	}

	var u models.User
	proj := options.FindOne().SetProjection(bson.M{
		"_id":       1,
		"full_name": 1,
		"email":     1,
		"role":      1,
		"tier":      1,
		"status":    1,
	})
	if err := f.users.FindOne(ctx, bson.M{"_id": oid}, proj).Decode(&u); err != nil {
		return nil, err
	}

	if normalize.Status(u.Status) == status.Disabled {
		return nil, errUserDisabled
	}

	return &auth.SessionUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
		Role:  normalize.Role(u.Role),
		Tier:  normalize.Tier(u.Tier),
	}, nil
}
