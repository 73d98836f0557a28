// internal/domain/models/portfolio.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Navbar styles.
const (
	NavbarSolid       = "solid"
	NavbarTransparent = "transparent"
	NavbarBlur        = "blur"
)

// NavbarConfig holds the sticky navigation bar's presentation settings.
// Absent fields are defaulted once, when the document is canonicalized;
// downstream consumers always see a fully populated struct.
type NavbarConfig struct {
	Style     string  `bson:"style,omitempty" json:"style,omitempty"` // solid | transparent | blur
	Color     string  `bson:"color,omitempty" json:"color,omitempty"`
	TextColor string  `bson:"text_color,omitempty" json:"text_color,omitempty"`
	Opacity   float64 `bson:"opacity,omitempty" json:"opacity,omitempty"` // 0..1
	BrandText string  `bson:"brand_text,omitempty" json:"brand_text,omitempty"`
	BrandLogo string  `bson:"brand_logo,omitempty" json:"brand_logo,omitempty"` // image URL; wins over text when set
}

// PortfolioData is the JSON payload embedded in a Portfolio record: the
// ordered section list plus the navbar configuration. It is saved wholesale
// in a single document write, which is what makes a portfolio-plus-children
// save atomic.
type PortfolioData struct {
	Sections []Section    `bson:"sections" json:"sections"`
	Navbar   NavbarConfig `bson:"navbar,omitempty" json:"navbar,omitempty"`
}

// Portfolio is one user-owned publishable site document.
//
// Slug is the public URL key and is globally unique among portfolios.
// IsFrozen marks a portfolio that currently violates its owner's tier limits;
// a frozen portfolio rejects save and publish operations but an already
// published one stays publicly resolvable.
type Portfolio struct {
	ID      primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	OwnerID primitive.ObjectID `bson:"owner_id" json:"owner_id"`

	Name   string `bson:"name" json:"name"`
	NameCI string `bson:"name_ci" json:"name_ci"`
	Slug   string `bson:"slug" json:"slug"`

	IsPublished bool `bson:"is_published" json:"is_published"`
	IsFrozen    bool `bson:"is_frozen" json:"is_frozen"`

	Data PortfolioData `bson:"portfolio_data" json:"portfolio_data"`

	CreatedAt time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time `bson:"updated_at" json:"updated_at"`
}
