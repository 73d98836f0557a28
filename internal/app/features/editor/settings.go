// internal/app/features/editor/settings.go
package editor

import (
	"context"
	"errors"
	"net/http"

	portfoliostore "github.com/meroket/meroket/internal/app/store/portfolios"
	"github.com/meroket/meroket/internal/app/system/inputval"
	"github.com/meroket/meroket/internal/app/system/normalize"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"go.uber.org/zap"
)

type renameForm struct {
	Name string `validate:"required,min=1,max=80" label:"Portfolio name"`
}

type slugForm struct {
	Slug string `validate:"required,min=3,max=60,slug" label:"Address"`
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /portfolios/{id}/rename                                                |
*─────────────────────────────────────────────────────────────────────────────*/

func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.ownedPortfolio(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data.")
		return
	}

	form := renameForm{Name: normalize.Name(r.FormValue("name"))}
	if res := inputval.Validate(form); res.HasErrors() {
		writeJSONError(w, http.StatusUnprocessableEntity, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Portfolios.Rename(ctx, p.ID, form.Name); err != nil {
		h.Log.Error("editor: rename failed",
			zap.String("portfolio_id", p.ID.Hex()), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "The portfolio could not be renamed.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "name": form.Name})
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /portfolios/{id}/slug                                                  |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleSlug changes the public address. Slug uniqueness is global; a clash
// comes back as a user-facing message, not a server error.
func (h *Handler) HandleSlug(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.ownedPortfolio(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		writeJSONError(w, http.StatusBadRequest, "Invalid form data.")
		return
	}

	form := slugForm{Slug: normalize.Slug(r.FormValue("slug"))}
	if res := inputval.Validate(form); res.HasErrors() {
		writeJSONError(w, http.StatusUnprocessableEntity, res.First())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	if err := h.Portfolios.SetSlug(ctx, p.ID, form.Slug); err != nil {
		if errors.Is(err, portfoliostore.ErrDuplicateSlug) {
			writeJSONError(w, http.StatusUnprocessableEntity, err.Error())
			return
		}
		h.Log.Error("editor: slug change failed",
			zap.String("portfolio_id", p.ID.Hex()), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "The address could not be changed.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "slug": form.Slug})
}
