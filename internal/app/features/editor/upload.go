// internal/app/features/editor/upload.go
package editor

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/dalemusser/waffle/pantry/storage"
	"github.com/google/uuid"
	"github.com/meroket/meroket/internal/app/system/limits"
	"github.com/meroket/meroket/internal/app/system/timeouts"
	"go.uber.org/zap"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg":    true,
	"image/png":     true,
	"image/gif":     true,
	"image/webp":    true,
	"image/svg+xml": true,
}

/*─────────────────────────────────────────────────────────────────────────────*
| POST /portfolios/{id}/images                                                |
*─────────────────────────────────────────────────────────────────────────────*/

// HandleUpload stores a section or card image and returns its public URL.
// The client writes the URL into the document; the file itself has no
// lifecycle tied to the portfolio record.
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	p, _, ok := h.ownedPortfolio(w, r)
	if !ok {
		return
	}
	if p.IsFrozen {
		writeJSONError(w, http.StatusUnprocessableEntity, frozenMessage)
		return
	}

	if err := r.ParseMultipartForm(limits.MaxUploadSize); err != nil {
		writeJSONError(w, http.StatusBadRequest, "The upload is too large or malformed.")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "No image was provided.")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedImageTypes[contentType] {
		writeJSONError(w, http.StatusUnprocessableEntity, "Only JPEG, PNG, GIF, WebP, and SVG images are accepted.")
		return
	}

	now := time.Now().UTC()
	path := fmt.Sprintf("portfolios/%s/%04d/%02d/%s-%s",
		p.ID.Hex(), now.Year(), now.Month(),
		uuid.NewString()[:8], sanitizeFilename(header.Filename))

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Long())
	defer cancel()

	opts := &storage.PutOptions{ContentType: contentType}
	if err := h.Storage.Put(ctx, path, file, opts); err != nil {
		h.Log.Error("editor: image upload failed",
			zap.String("portfolio_id", p.ID.Hex()),
			zap.String("path", path), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "The image could not be stored.")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"ok":  true,
		"url": h.Storage.URL(path),
	})
}

// sanitizeFilename strips path components and replaces characters outside
// [a-zA-Z0-9._-].
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	var b strings.Builder
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9',
			c == '-', c == '_', c == '.':
			b.WriteByte(c)
		default:
			b.WriteByte('_')
		}
	}
	out := b.String()
	if out == "" {
		return "image"
	}
	if len(out) > 100 {
		ext := filepath.Ext(out)
		if len(ext) > 0 && len(ext) < 10 {
			out = out[:100-len(ext)] + ext
		} else {
			out = out[:100]
		}
	}
	return out
}
