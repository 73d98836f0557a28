// internal/app/features/sites/handler.go
package sites

import (
	"context"
	"errors"
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/meroket/meroket/internal/app/features/errors"
	portfoliostore "github.com/meroket/meroket/internal/app/store/portfolios"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/app/system/render"
	"github.com/meroket/meroket/internal/app/system/sectiondoc"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"github.com/meroket/meroket/internal/domain/models"
	"go.uber.org/zap"
)

// Handler serves published portfolios at their public slugs. It is the only
// feature reachable without authentication besides home and login.
type Handler struct {
	Portfolios *portfoliostore.Store
	ErrLog     *uierrors.ErrorLogger
	Log        *zap.Logger
}

func NewHandler(portfolios *portfoliostore.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{Portfolios: portfolios, ErrLog: errLog, Log: logger}
}

// sectionVM is one section resolved for rendering.
type sectionVM struct {
	models.Section
	BackgroundStyle template.CSS
	HasOverlay      bool
	Animation       render.Animation
	AboutHTML       template.HTML // sanitized at save time
	ContactHref     string
	CardBodies      []template.HTML
	ItemDescs       []template.HTML
}

type sitePageData struct {
	Portfolio models.Portfolio
	Navbar    models.NavbarConfig
	NavItems  []render.NavItem
	NavbarPX  int
	Sections  []sectionVM
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /{slug}                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// ServeSite resolves a public portfolio. Drafts and unknown slugs are
// indistinguishable: both render the same 404 page. A frozen portfolio that
// is still published stays visible.
func (h *Handler) ServeSite(w http.ResponseWriter, r *http.Request) {
	slug := normalize.Slug(chi.URLParam(r, "slug"))
	if slug == "" {
		uierrors.RenderNotFound(w, r, "This page does not exist.")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Portfolios.GetPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, portfoliostore.ErrNotFound) {
			uierrors.RenderNotFound(w, r, "This page does not exist.")
			return
		}
		h.ErrLog.LogServerError(w, r, "sites: slug lookup failed", err,
			"This page could not be loaded.", "/")
		return
	}

	if err := sectiondoc.Canonicalize(&p.Data); err != nil {
		h.ErrLog.LogServerError(w, r, "sites: document canonicalize failed", err,
			"This page could not be loaded.", "/")
		return
	}

	templates.Render(w, r, "site", sitePageData{
		Portfolio: *p,
		Navbar:    p.Data.Navbar,
		NavItems:  render.NavItems(p.Data.Sections),
		NavbarPX:  render.NavbarHeightPX,
		Sections:  resolveSections(p.Data.Sections, h.Log),
	})
}

func resolveSections(sections []models.Section, log *zap.Logger) []sectionVM {
	out := make([]sectionVM, 0, len(sections))
	for _, s := range sections {
		vm := sectionVM{
			Section:         s,
			BackgroundStyle: template.CSS(render.BackgroundStyle(s.Background)),
			HasOverlay:      render.HasOverlay(s.Background),
			Animation:       render.ResolveAnimation(s.Animation),
			AboutHTML:       template.HTML(s.AboutText),
		}

		if s.Type == models.SectionContact {
			href, err := render.ContactLink(s.ContactMethod, s.ContactValue)
			if err != nil {
				// Render the section without a call to action instead of
				// failing the whole page.
				log.Warn("sites: contact link unresolvable", zap.Error(err))
			} else {
				vm.ContactHref = href
			}
		}

		for _, c := range s.Cards {
			vm.CardBodies = append(vm.CardBodies, template.HTML(c.Body))
		}
		for _, it := range s.Items {
			vm.ItemDescs = append(vm.ItemDescs, template.HTML(it.Description))
		}

		out = append(out, vm)
	}
	return out
}
