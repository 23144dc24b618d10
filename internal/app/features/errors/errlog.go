// internal/app/features/errors/errlog.go
package errors

import (
	"net/http"

	"go.uber.org/zap"
)

// ErrorLogger logs handler failures and renders the matching user-facing
// response. Handlers hand it the error and a short operation label; the raw
// error text never reaches the browser.
type ErrorLogger struct {
	log *zap.Logger
}

// NewErrorLogger constructs an ErrorLogger over the given zap logger.
func NewErrorLogger(log *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: log}
}

// ServerError logs err at error level and writes a generic 500 response.
func (e *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, op string, err error) {
	e.log.Error(op,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	http.Error(w, "Something went wrong. Please try again.", http.StatusInternalServerError)
}

// BadRequest logs err at warn level and writes a 400 response.
func (e *ErrorLogger) BadRequest(w http.ResponseWriter, r *http.Request, op string, err error) {
	e.log.Warn(op,
		zap.Error(err),
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
	)
	http.Error(w, "Bad Request", http.StatusBadRequest)
}
