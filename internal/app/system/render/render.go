// internal/app/system/render/render.go

// Package render resolves section data into the visual parameters the site
// templates and the scroll script consume: CSS background declarations,
// entrance animation attributes, contact links, and the derived navbar items.
// Everything here is pure; rendering to HTML happens in the sites feature
// templates using these resolved values.
package render

import (
	"fmt"
	"strings"

	"github.com/meroket/meroket/internal/domain/models"
)

// Fixed animation timing. Entrance animations trigger the first time a
// section scrolls into view and never re-trigger.
const (
	AnimationDurationMS = 600
	AnimationDelayMS    = 100
	AnimationEasing     = "ease-out"
)

// NavbarHeightPX is the sticky navbar height; smooth scrolling offsets by
// this amount so a section heading is not obscured.
const NavbarHeightPX = 64

// BackgroundStyle returns the CSS declarations for a section background.
// The section is expected to be canonical (see sectiondoc); a zero-valued
// background still resolves to a flat white fill.
func BackgroundStyle(b models.Background) string {
	switch b.Type {
	case models.BackgroundGradient:
		from, to := b.FromColor, b.ToColor
		if from == "" {
			from = "#667eea"
		}
		if to == "" {
			to = "#764ba2"
		}
		if b.GradientKind == models.GradientRadial {
			return fmt.Sprintf("background: radial-gradient(circle, %s, %s);", from, to)
		}
		return fmt.Sprintf("background: linear-gradient(%s, %s, %s);", gradientDirection(b.Direction), from, to)

	case models.BackgroundImage:
		if b.ImageURL == "" {
			return "background-color: #ffffff;"
		}
		return fmt.Sprintf("background-image: url('%s'); background-size: cover; background-position: center;", b.ImageURL)

	default:
		color := b.Color
		if color == "" {
			color = "#ffffff"
		}
		return fmt.Sprintf("background-color: %s;", color)
	}
}

// HasOverlay reports whether a section background needs the semi-opaque dark
// overlay composited above it so foreground text stays legible.
func HasOverlay(b models.Background) bool {
	return b.Type == models.BackgroundImage && b.ImageURL != ""
}

func gradientDirection(direction string) string {
	switch direction {
	case models.DirectionVertical:
		return "to bottom"
	case models.DirectionDiagonal:
		return "to bottom right"
	default: // horizontal
		return "to right"
	}
}

// Animation describes the resolved entrance animation for one section.
// Animated means the scroll script should start the section hidden and reveal
// it on first intersection; a non-animated section renders visible with no
// transition.
type Animation struct {
	Type       string
	Animated   bool
	DurationMS int
	DelayMS    int
	Easing     string
}

// ResolveAnimation maps a section's animation type to its parameters.
// Unknown values behave like none; canonical documents never carry them.
func ResolveAnimation(animationType string) Animation {
	switch animationType {
	case models.AnimationFade, models.AnimationSlideUp, models.AnimationSlideDown,
		models.AnimationSlideLeft, models.AnimationSlideRight:
		return Animation{
			Type:       animationType,
			Animated:   true,
			DurationMS: AnimationDurationMS,
			DelayMS:    AnimationDelayMS,
			Easing:     AnimationEasing,
		}
	default:
		return Animation{Type: models.AnimationNone}
	}
}

// ContactLink builds the call-to-action href for a contact section.
// email → mailto:<value>; whatsapp → https://wa.me/<digits-only number>.
func ContactLink(method, value string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("contact value is empty")
	}
	switch method {
	case models.ContactEmail:
		return "mailto:" + value, nil
	case models.ContactWhatsApp:
		digits := digitsOnly(value)
		if digits == "" {
			return "", fmt.Errorf("whatsapp number %q contains no digits", value)
		}
		return "https://wa.me/" + digits, nil
	default:
		return "", fmt.Errorf("unknown contact method %q", method)
	}
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// NavItem is one derived navigation menu entry.
type NavItem struct {
	ID    string // anchor of the target section: "section-<type>"
	Label string
}

// NavItems derives the navbar menu from the section list. Hero is always
// excluded: it sits at the top and is reached via the branding element's
// scroll-to-top action instead. An empty result means the navbar renders
// nothing at all.
func NavItems(sections []models.Section) []NavItem {
	var items []NavItem
	for _, s := range sections {
		if s.Type == models.SectionHero {
			continue
		}
		items = append(items, NavItem{ID: s.AnchorID(), Label: s.Title})
	}
	return items
}
