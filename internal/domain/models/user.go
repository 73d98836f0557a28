// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Subscription tiers. The tier gates quantity limits (portfolios, sections,
// project cards); see policy/tierpolicy for the limit table.
const (
	TierFree  = "free"
	TierPro   = "pro"
	TierHyper = "hyper"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r string) bool {
	return r == RoleUser || r == RoleAdmin
}

// ValidTier reports whether t is one of the known tiers.
func ValidTier(t string) bool {
	return t == TierFree || t == TierPro || t == TierHyper
}

// User is a Meroket account record.
//
// Self fields (FullName) are mutated by the owning user; Role and Tier are
// mutated only by admins. TierScheduledAt/TierExpiresAt bound time-limited
// tier grants; they are informational here and applied by admin action or an
// external scheduler, never by an in-process job.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName     string             `bson:"full_name" json:"full_name"`
	FullNameCI   string             `bson:"full_name_ci" json:"full_name_ci"` // lowercase, diacritics-stripped
	Email        string             `bson:"email" json:"email"`
	PasswordHash string             `bson:"password_hash,omitempty" json:"-"`
	Role         string             `bson:"role" json:"role"` // user | admin
	Tier         string             `bson:"tier" json:"tier"` // free | pro | hyper
	Status       string             `bson:"status,omitempty" json:"status,omitempty"`

	TierScheduledAt *time.Time `bson:"tier_scheduled_at,omitempty" json:"tier_scheduled_at,omitempty"`
	TierExpiresAt   *time.Time `bson:"tier_expires_at,omitempty" json:"tier_expires_at,omitempty"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
