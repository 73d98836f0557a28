// internal/domain/models/tierschedule.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TierSchedule records a future-dated tier change for a user.
//
// Schedules are not applied by an in-process scheduler. They are recorded for
// an external scheduler or an explicit admin "execute" action, which sets
// IsExecuted after applying the change (including any demotion freeze).
type TierSchedule struct {
	ID     primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID primitive.ObjectID `bson:"user_id" json:"user_id"`

	FromTier string `bson:"from_tier" json:"from_tier"`
	ToTier   string `bson:"to_tier" json:"to_tier"`

	StartDate   time.Time  `bson:"start_date" json:"start_date"`
	EndDate     *time.Time `bson:"end_date,omitempty" json:"end_date,omitempty"`
	IsPermanent bool       `bson:"is_permanent" json:"is_permanent"`
	IsExecuted  bool       `bson:"is_executed" json:"is_executed"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
