package render_test

import (
	"strings"
	"testing"

	"github.com/meroket/meroket/internal/app/system/render"
	"github.com/meroket/meroket/internal/domain/models"
)

func TestBackgroundStyle_Color(t *testing.T) {
	got := render.BackgroundStyle(models.Background{Type: models.BackgroundColor, Color: "#ff0000"})
	if got != "background-color: #ff0000;" {
		t.Errorf("BackgroundStyle = %q", got)
	}

	// Zero value resolves to flat white.
	got = render.BackgroundStyle(models.Background{})
	if got != "background-color: #ffffff;" {
		t.Errorf("zero background = %q, want white fill", got)
	}
}

func TestBackgroundStyle_GradientDirections(t *testing.T) {
	tests := []struct {
		direction string
		wantToken string
	}{
		{models.DirectionHorizontal, "to right"},
		{models.DirectionVertical, "to bottom"},
		{models.DirectionDiagonal, "to bottom right"},
	}
	for _, tt := range tests {
		t.Run(tt.direction, func(t *testing.T) {
			got := render.BackgroundStyle(models.Background{
				Type:         models.BackgroundGradient,
				GradientKind: models.GradientLinear,
				Direction:    tt.direction,
				FromColor:    "#111111",
				ToColor:      "#222222",
			})
			want := "background: linear-gradient(" + tt.wantToken + ", #111111, #222222);"
			if got != want {
				t.Errorf("got %q, want %q", got, want)
			}
		})
	}
}

func TestBackgroundStyle_GradientDefaultStops(t *testing.T) {
	got := render.BackgroundStyle(models.Background{
		Type:      models.BackgroundGradient,
		Direction: models.DirectionHorizontal,
	})
	if !strings.Contains(got, "#667eea") || !strings.Contains(got, "#764ba2") {
		t.Errorf("expected default gradient stops, got %q", got)
	}
}

func TestBackgroundStyle_RadialIgnoresDirection(t *testing.T) {
	got := render.BackgroundStyle(models.Background{
		Type:         models.BackgroundGradient,
		GradientKind: models.GradientRadial,
		Direction:    models.DirectionDiagonal,
		FromColor:    "#111111",
		ToColor:      "#222222",
	})
	if got != "background: radial-gradient(circle, #111111, #222222);" {
		t.Errorf("got %q", got)
	}
	if strings.Contains(got, "to bottom right") {
		t.Error("radial gradient must ignore direction")
	}
}

func TestBackgroundStyle_Image(t *testing.T) {
	b := models.Background{Type: models.BackgroundImage, ImageURL: "https://cdn.example.com/bg.jpg"}
	got := render.BackgroundStyle(b)
	for _, want := range []string{"url('https://cdn.example.com/bg.jpg')", "cover", "center"} {
		if !strings.Contains(got, want) {
			t.Errorf("style %q missing %q", got, want)
		}
	}
	if !render.HasOverlay(b) {
		t.Error("image background should composite the dark overlay")
	}
	if render.HasOverlay(models.Background{Type: models.BackgroundColor}) {
		t.Error("color background should not have an overlay")
	}
}

func TestResolveAnimation_None(t *testing.T) {
	a := render.ResolveAnimation(models.AnimationNone)
	if a.Animated {
		t.Error("none must render unconditionally visible")
	}
}

func TestResolveAnimation_AnimatedTypes(t *testing.T) {
	for _, typ := range []string{
		models.AnimationFade,
		models.AnimationSlideUp,
		models.AnimationSlideDown,
		models.AnimationSlideLeft,
		models.AnimationSlideRight,
	} {
		t.Run(typ, func(t *testing.T) {
			a := render.ResolveAnimation(typ)
			if !a.Animated {
				t.Fatalf("%s should be animated", typ)
			}
			if a.DurationMS != 600 || a.DelayMS != 100 || a.Easing != "ease-out" {
				t.Errorf("timing = %d/%d/%s, want 600/100/ease-out", a.DurationMS, a.DelayMS, a.Easing)
			}
		})
	}
}

func TestContactLink(t *testing.T) {
	href, err := render.ContactLink(models.ContactEmail, "hi@example.com")
	if err != nil {
		t.Fatalf("email link failed: %v", err)
	}
	if href != "mailto:hi@example.com" {
		t.Errorf("email href = %q", href)
	}

	href, err = render.ContactLink(models.ContactWhatsApp, "+1 (555) 010-9999")
	if err != nil {
		t.Fatalf("whatsapp link failed: %v", err)
	}
	if href != "https://wa.me/15550109999" {
		t.Errorf("whatsapp href = %q, want digits-only wa.me link", href)
	}

	if _, err := render.ContactLink(models.ContactWhatsApp, "call me"); err == nil {
		t.Error("expected error for whatsapp value with no digits")
	}
	if _, err := render.ContactLink("carrier-pigeon", "coop 7"); err == nil {
		t.Error("expected error for unknown contact method")
	}
	if _, err := render.ContactLink(models.ContactEmail, "   "); err == nil {
		t.Error("expected error for empty contact value")
	}
}

func TestNavItems_ExcludesHeroAndKeepsOrder(t *testing.T) {
	sections := []models.Section{
		{Type: models.SectionHero, Title: "Welcome"},
		{Type: models.SectionAbout, Title: "About Me"},
		{Type: models.SectionContact, Title: "Get in Touch"},
	}

	items := render.NavItems(sections)
	if len(items) != 2 {
		t.Fatalf("len(items) = %d, want 2", len(items))
	}
	if items[0].ID != "section-about" || items[0].Label != "About Me" {
		t.Errorf("items[0] = %+v", items[0])
	}
	if items[1].ID != "section-contact" || items[1].Label != "Get in Touch" {
		t.Errorf("items[1] = %+v", items[1])
	}
}

func TestNavItems_HeroOnlyIsEmpty(t *testing.T) {
	items := render.NavItems([]models.Section{{Type: models.SectionHero, Title: "Hi"}})
	if len(items) != 0 {
		t.Errorf("hero-only document should yield no nav items, got %d", len(items))
	}
}
