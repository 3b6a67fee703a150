// internal/app/features/errors/errorlogger.go
package errors

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/meskelsoft/partyreg/internal/app/system/viewdata"

	"github.com/dalemusser/waffle/pantry/templates"
)

// ErrorLogger logs handler failures and renders the generic error page so
// feature code doesn't repeat the log-then-respond dance.
type ErrorLogger struct {
	log *zap.Logger
}

func NewErrorLogger(logger *zap.Logger) *ErrorLogger {
	return &ErrorLogger{log: logger}
}

// ServerError logs err and renders a 500 page with the given user message.
func (e *ErrorLogger) ServerError(w http.ResponseWriter, r *http.Request, err error, msg string) {
	e.log.Error("handler error",
		zap.String("path", r.URL.Path),
		zap.String("method", r.Method),
		zap.Error(err))

	if msg == "" {
		msg = "Something went wrong. Please try again."
	}
	w.WriteHeader(http.StatusInternalServerError)
	data := pageData{
		BaseVM:  viewdata.NewBaseVM(r, "Error", "/"),
		Message: msg,
	}
	templates.Render(w, r, "error_server", data)
}

// BadRequest logs err and responds 400 with a plain message.
func (e *ErrorLogger) BadRequest(w http.ResponseWriter, r *http.Request, err error) {
	e.log.Warn("bad request",
		zap.String("path", r.URL.Path),
		zap.Error(err))
	http.Error(w, "Bad Request", http.StatusBadRequest)
}
