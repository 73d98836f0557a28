// internal/app/features/editor/handler.go
package editor

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	uierrors "github.com/meroket/meroket/internal/app/features/errors"
	"github.com/meroket/meroket/internal/app/policy/tierpolicy"
	portfoliostore "github.com/meroket/meroket/internal/app/store/portfolios"
	"github.com/meroket/meroket/internal/app/system/auth"
	"github.com/meroket/meroket/internal/app/system/authz"
	"github.com/meroket/meroket/internal/app/system/entitlement"
	"github.com/meroket/meroket/internal/app/system/htmlsanitize"
	"github.com/meroket/meroket/internal/app/system/limits"
	"github.com/meroket/meroket/internal/app/system/sectiondoc"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"github.com/meroket/meroket/internal/app/system/viewdata"
	"github.com/meroket/meroket/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// Handler owns the portfolio editor: the whole-document save, structural
// add operations, slug changes, and section image uploads.
type Handler struct {
	Portfolios  *portfoliostore.Store
	Entitlement *entitlement.Service
	Storage     storage.Store
	ErrLog      *uierrors.ErrorLogger
	Log         *zap.Logger
}

func NewHandler(portfolios *portfoliostore.Store, ent *entitlement.Service, store storage.Store, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		Portfolios:  portfolios,
		Entitlement: ent,
		Storage:     store,
		ErrLog:      errLog,
		Log:         logger,
	}
}

type editorPageData struct {
	viewdata.BaseVM
	Portfolio    models.Portfolio
	DataJSON     template.JS
	SectionTypes []string
	Limits       tierpolicy.Limits
	SectionCount int
	ProjectCount int
	CanAddSect   bool
	CanAddProj   bool
}

/*─────────────────────────────────────────────────────────────────────────────*
| GET /portfolios/{id}                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) ServeEditor(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.ownedPortfolio(w, r)
	if !ok {
		return
	}

	// Canonicalize on load so the editor always sees defaulted fields, even
	// for documents written before a default existed.
	if err := sectiondoc.Canonicalize(&p.Data); err != nil {
		h.ErrLog.LogServerError(w, r, "editor: document canonicalize failed", err,
			"This portfolio's content could not be loaded.", "/dashboard")
		return
	}

	raw, err := json.Marshal(p.Data)
	if err != nil {
		h.ErrLog.LogServerError(w, r, "editor: document marshal failed", err,
			"This portfolio's content could not be loaded.", "/dashboard")
		return
	}

	tier := currentTier(r)
	projects := tierpolicy.CountProjectCards(p.Data.Sections)

	templates.Render(w, r, "editor", editorPageData{
		BaseVM:    viewdata.NewBaseVM(r, "Edit "+p.Name, "/dashboard"),
		Portfolio: *p,
		// template.JS keeps the marshaled document verbatim inside the data
		// script tag; a plain string would be JSON-quoted a second time there.
		DataJSON:     template.JS(raw),
		SectionTypes: models.SectionTypes,
		Limits:       tierpolicy.LimitsFor(tier),
		SectionCount: len(p.Data.Sections),
		ProjectCount: projects,
		CanAddSect:   tierpolicy.CanAddSection(len(p.Data.Sections), tier).Allowed,
		CanAddProj:   tierpolicy.CanAddProjectCard(projects, tier).Allowed,
	})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /portfolios/{id}/save – whole-document replace                         |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSave accepts the full portfolio document as JSON and replaces the
// stored one in a single write. The document is never partially applied and
// never truncated: a tier violation rejects the save outright.
func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.ownedPortfolio(w, r)
	if !ok {
		return
	}

	var data models.PortfolioData
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxDocumentSize))
	if err := dec.Decode(&data); err != nil {
		writeJSONError(w, http.StatusBadRequest, "The document could not be read.")
		return
	}

	if err := sectiondoc.Canonicalize(&data); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}
	sanitizeDoc(&data)

	decision := h.Entitlement.CheckSave(p, data, currentTier(r))
	if !decision.Allowed {
		writeJSONError(w, http.StatusUnprocessableEntity, decision.Message)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Portfolios.ReplaceData(ctx, p.ID, data); err != nil {
		h.Log.Error("editor: document save failed",
			zap.String("portfolio_id", p.ID.Hex()), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "The document could not be saved.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /portfolios/{id}/sections – add a section                              |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleAddSection(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.ownedPortfolio(w, r)
	if !ok {
		return
	}
	if p.IsFrozen {
		writeJSONError(w, http.StatusUnprocessableEntity, frozenMessage)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data.")
		return
	}

	decision := tierpolicy.CanAddSection(len(p.Data.Sections), currentTier(r))
	if !decision.Allowed {
		writeJSONError(w, http.StatusUnprocessableEntity, decision.Message)
		return
	}

	section, err := sectiondoc.NewSection(r.FormValue("type"))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err.Error())
		return
	}

	data := p.Data
	data.Sections = append(data.Sections, section)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Portfolios.ReplaceData(ctx, p.ID, data); err != nil {
		h.Log.Error("editor: add section failed",
			zap.String("portfolio_id", p.ID.Hex()), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "The section could not be added.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "section": section})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /portfolios/{id}/projects – add a project card                         |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleAddProject(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.ownedPortfolio(w, r)
	if !ok {
		return
	}
	if p.IsFrozen {
		writeJSONError(w, http.StatusUnprocessableEntity, frozenMessage)
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data.")
		return
	}

	count := tierpolicy.CountProjectCards(p.Data.Sections)
	decision := tierpolicy.CanAddProjectCard(count, currentTier(r))
	if !decision.Allowed {
		writeJSONError(w, http.StatusUnprocessableEntity, decision.Message)
		return
	}

	data := p.Data
	added := false
	for i := range data.Sections {
		if data.Sections[i].Type != models.SectionProjects {
			continue
		}
		item := models.ProjectItem{
			Title: r.FormValue("title"),
		}
		data.Sections[i].Items = append(data.Sections[i].Items, item)
		added = true
		break
	}
	if !added {
		writeJSONError(w, http.StatusUnprocessableEntity, "This portfolio has no projects section yet.")
		return
	}
	if err := sectiondoc.Canonicalize(&data); err != nil {
		writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Portfolios.ReplaceData(ctx, p.ID, data); err != nil {
		h.Log.Error("editor: add project failed",
			zap.String("portfolio_id", p.ID.Hex()), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "The project could not be added.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

const frozenMessage = "This portfolio is frozen because it exceeds your plan's limits. Upgrade your plan to edit it again."

// sanitizeDoc scrubs every user-authored rich text field in place.
func sanitizeDoc(data *models.PortfolioData) {
	for i := range data.Sections {
		s := &data.Sections[i]
		s.Title = htmlsanitize.StripTags(s.Title)
		s.Subtitle = htmlsanitize.StripTags(s.Subtitle)
		s.AboutText = htmlsanitize.Sanitize(s.AboutText)
		for j := range s.Cards {
			s.Cards[j].Title = htmlsanitize.StripTags(s.Cards[j].Title)
			s.Cards[j].Subtitle = htmlsanitize.StripTags(s.Cards[j].Subtitle)
			s.Cards[j].Body = htmlsanitize.Sanitize(s.Cards[j].Body)
		}
		for j := range s.Items {
			s.Items[j].Title = htmlsanitize.StripTags(s.Items[j].Title)
			s.Items[j].Description = htmlsanitize.Sanitize(s.Items[j].Description)
		}
	}
	data.Navbar.BrandText = htmlsanitize.StripTags(data.Navbar.BrandText)
}

// ownedPortfolio resolves {id} and verifies ownership, writing the response
// itself on failure. Frozen state is NOT checked here: loading a frozen
// portfolio in the editor is allowed, mutating it is not.
func (h *Handler) ownedPortfolio(w http.ResponseWriter, r *http.Request) (*models.Portfolio, primitive.ObjectID, bool) {
	_, _, userID, ok := authz.UserCtx(r)
	if !ok {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return nil, primitive.NilObjectID, false
	}

	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		uierrors.RenderNotFound(w, r, "That portfolio does not exist.")
		return nil, primitive.NilObjectID, false
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Portfolios.GetOwned(ctx, id, userID)
	if err != nil {
		if errors.Is(err, portfoliostore.ErrNotFound) {
			uierrors.RenderNotFound(w, r, "That portfolio does not exist.")
			return nil, primitive.NilObjectID, false
		}
		h.ErrLog.LogServerError(w, r, "editor: portfolio lookup failed", err,
			"Could not load your portfolio.", "/dashboard")
		return nil, primitive.NilObjectID, false
	}
	return p, userID, true
}

func currentTier(r *http.Request) string {
	if u, ok := auth.CurrentUser(r); ok && u.Tier != "" {
		return u.Tier
	}
	return models.TierFree
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"ok": false, "error": msg})
}
