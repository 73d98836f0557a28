// internal/app/system/sectiondoc/sectiondoc.go

// Package sectiondoc canonicalizes portfolio documents. Defaulting used to be
// scattered across consumers; it now happens in exactly one place, applied
// when a document is loaded or saved, so every downstream consumer (editor,
// renderer, navbar derivation) sees a fully populated, invariant-respecting
// structure.
package sectiondoc

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/meroket/meroket/internal/domain/models"
)

// Defaults applied during canonicalization.
const (
	DefaultBackgroundColor = "#ffffff"
	DefaultGradientFrom    = "#667eea"
	DefaultGradientTo      = "#764ba2"
	DefaultNavbarStyle     = models.NavbarSolid
	DefaultNavbarColor     = "#ffffff"
	DefaultNavbarTextColor = "#1f2937"
	DefaultNavbarOpacity   = 1.0
	DefaultBrandText       = "Portfolio"
	DefaultImageShape      = models.ShapeCircle
)

// Canonicalize normalizes data in place: navbar defaults, background and
// animation defaults per section, generated ids for cards and items that lack
// one. It returns an error for any section whose type is outside the closed
// variant set; documents carrying unknown variants are rejected at the
// boundary instead of rendering nothing later.
func Canonicalize(data *models.PortfolioData) error {
	for i := range data.Sections {
		s := &data.Sections[i]
		if !models.ValidSectionType(s.Type) {
			return fmt.Errorf("section %d: unknown section type %q", i, s.Type)
		}
		canonicalizeSection(s)
	}
	canonicalizeNavbar(&data.Navbar)
	return nil
}

func canonicalizeSection(s *models.Section) {
	switch s.Background.Type {
	case models.BackgroundColor, models.BackgroundGradient, models.BackgroundImage:
	default:
		s.Background.Type = models.BackgroundColor
	}
	if s.Background.Type == models.BackgroundColor && s.Background.Color == "" {
		s.Background.Color = DefaultBackgroundColor
	}
	if s.Background.Type == models.BackgroundGradient {
		if s.Background.GradientKind != models.GradientRadial {
			s.Background.GradientKind = models.GradientLinear
		}
		switch s.Background.Direction {
		case models.DirectionHorizontal, models.DirectionVertical, models.DirectionDiagonal:
		default:
			s.Background.Direction = models.DirectionHorizontal
		}
		if s.Background.FromColor == "" {
			s.Background.FromColor = DefaultGradientFrom
		}
		if s.Background.ToColor == "" {
			s.Background.ToColor = DefaultGradientTo
		}
	}

	switch s.Animation {
	case models.AnimationNone, models.AnimationFade,
		models.AnimationSlideUp, models.AnimationSlideDown,
		models.AnimationSlideLeft, models.AnimationSlideRight:
	default:
		s.Animation = models.AnimationNone
	}

	if s.Type == models.SectionAbout {
		switch s.ImageShape {
		case models.ShapeCircle, models.ShapeSquare, models.ShapeRounded,
			models.ShapeHexagon, models.ShapeTriangle:
		default:
			s.ImageShape = DefaultImageShape
		}
	}

	for j := range s.Cards {
		if s.Cards[j].ID == "" {
			s.Cards[j].ID = uuid.NewString()
		}
	}
	for j := range s.Items {
		if s.Items[j].ID == "" {
			s.Items[j].ID = uuid.NewString()
		}
	}
}

func canonicalizeNavbar(nc *models.NavbarConfig) {
	switch nc.Style {
	case models.NavbarSolid, models.NavbarTransparent, models.NavbarBlur:
	default:
		nc.Style = DefaultNavbarStyle
	}
	if nc.Color == "" {
		nc.Color = DefaultNavbarColor
	}
	if nc.TextColor == "" {
		nc.TextColor = DefaultNavbarTextColor
	}
	if nc.Opacity <= 0 || nc.Opacity > 1 {
		nc.Opacity = DefaultNavbarOpacity
	}
	if nc.BrandText == "" && nc.BrandLogo == "" {
		nc.BrandText = DefaultBrandText
	}
}

// NewSection returns a canonical empty section of the given type, or an error
// for an unknown type. Used by the editor's add-section operation.
func NewSection(sectionType string) (models.Section, error) {
	if !models.ValidSectionType(sectionType) {
		return models.Section{}, fmt.Errorf("unknown section type %q", sectionType)
	}
	s := models.Section{Type: sectionType}
	canonicalizeSection(&s)
	return s, nil
}
