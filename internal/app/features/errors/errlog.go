// internal/app/features/errors/errlog.go
package errors

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	nav "github.com/dalemusser/waffle/pantry/httpnav"
	"github.com/meroket/meroket/internal/app/system/authz"
	"go.uber.org/zap"
)

// ErrorLogger pairs structured logging with user-facing error pages, so
// handlers report failures in one call:
//
//	h.ErrLog.LogServerError(w, r, "fetch portfolio failed", err, "A database error occurred.", "/dashboard")
//
// logMsg and err go to the log; userMsg goes on the rendered page.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger.
func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// LogServerError logs an internal error and renders a 500 page.
func (e *ErrorLogger) LogServerError(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Error(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))
	e.renderErrorPage(w, r, http.StatusInternalServerError, "Something went wrong", userMsg, backURL)
}

// LogBadRequest logs a client error and renders a 400 page.
func (e *ErrorLogger) LogBadRequest(w http.ResponseWriter, r *http.Request, logMsg string, err error, userMsg, backURL string) {
	e.log.Warn(logMsg,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method))
	e.renderErrorPage(w, r, http.StatusBadRequest, "Invalid request", userMsg, backURL)
}

func (e *ErrorLogger) renderErrorPage(w http.ResponseWriter, r *http.Request, status int, title, userMsg, backURL string) {
	role, name, _, signedIn := authz.UserCtx(r)
	if backURL == "" {
		backURL = nav.ResolveBackURL(r, "/")
	}

	data := pageData{
		Title:      title,
		IsLoggedIn: signedIn,
		Role:       role,
		UserName:   name,
		Message:    userMsg,
		BackURL:    backURL,
	}

	w.WriteHeader(status)
	templates.Render(w, r, "error_page", data)
}
