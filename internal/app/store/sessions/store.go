// internal/app/store/sessions/store.go
package sessions

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Session end reasons
const (
	EndedByLogout   = "logout"
	EndedByInactive = "inactive"
	EndedByNewLogin = "new_login"
)

// Session tracks a user's login session for activity monitoring. The cookie
// is the source of truth for authentication; these records exist so admins
// can see who is active and when accounts were last used.
type Session struct {
	ID     primitive.ObjectID `bson:"_id,omitempty"`
	UserID primitive.ObjectID `bson:"user_id"`

	LoginAt      time.Time  `bson:"login_at"`
	LogoutAt     *time.Time `bson:"logout_at,omitempty"`
	LastActiveAt time.Time  `bson:"last_active_at"`

	EndReason string `bson:"end_reason,omitempty"`

	IP        string `bson:"ip"`
	UserAgent string `bson:"user_agent,omitempty"`

	// Computed on session close
	DurationSecs int64 `bson:"duration_secs,omitempty"`
}

// Store manages user activity sessions.
type Store struct {
	c *mongo.Collection
}

// New creates a new sessions Store.
func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("sessions")}
}

// Create starts a new session for a user, closing any session the user still
// has open from a previous login.
func (s *Store) Create(ctx context.Context, userID primitive.ObjectID, ip, userAgent string) (Session, error) {
	now := time.Now().UTC()

	_, _ = s.c.UpdateMany(ctx,
		bson.M{"user_id": userID, "logout_at": nil},
		bson.M{"$set": bson.M{
			"logout_at":  now,
			"end_reason": EndedByNewLogin,
		}})

	sess := Session{
		ID:           primitive.NewObjectID(),
		UserID:       userID,
		LoginAt:      now,
		LastActiveAt: now,
		IP:           ip,
		UserAgent:    userAgent,
	}
	if _, err := s.c.InsertOne(ctx, sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

// Touch updates the user's open session activity timestamp.
func (s *Store) Touch(ctx context.Context, userID primitive.ObjectID) error {
	_, err := s.c.UpdateOne(ctx,
		bson.M{"user_id": userID, "logout_at": nil},
		bson.M{"$set": bson.M{"last_active_at": time.Now().UTC()}})
	return err
}

// Close ends the user's open session with the given reason.
func (s *Store) Close(ctx context.Context, userID primitive.ObjectID, reason string) error {
	var open Session
	err := s.c.FindOne(ctx, bson.M{"user_id": userID, "logout_at": nil}).Decode(&open)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil
		}
		return err
	}

	now := time.Now().UTC()
	_, err = s.c.UpdateOne(ctx, bson.M{"_id": open.ID}, bson.M{"$set": bson.M{
		"logout_at":     now,
		"end_reason":    reason,
		"duration_secs": int64(now.Sub(open.LoginAt).Seconds()),
	}})
	return err
}

// CloseInactive ends all open sessions whose last activity is older than the
// threshold. Returns how many sessions were closed.
func (s *Store) CloseInactive(ctx context.Context, threshold time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-threshold)
	res, err := s.c.UpdateMany(ctx,
		bson.M{"logout_at": nil, "last_active_at": bson.M{"$lt": cutoff}},
		bson.M{"$set": bson.M{
			"logout_at":  time.Now().UTC(),
			"end_reason": EndedByInactive,
		}})
	if err != nil {
		return 0, err
	}
	return res.ModifiedCount, nil
}

// CountActive returns how many sessions are currently open.
func (s *Store) CountActive(ctx context.Context) (int64, error) {
	return s.c.CountDocuments(ctx, bson.M{"logout_at": nil})
}

// History returns a user's most recent sessions.
func (s *Store) History(ctx context.Context, userID primitive.ObjectID, limit int64) ([]Session, error) {
	if limit <= 0 {
		limit = 20
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "login_at", Value: -1}}).
		SetLimit(limit)

	cur, err := s.c.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []Session
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
