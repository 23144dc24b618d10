// internal/app/features/contact/handler.go
package contact

import (
	"net/http"

	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/hackmatehq/hackmate/internal/app/system/viewdata"
	"go.uber.org/zap"
)

type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

func (h *Handler) ServeContact(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Contact", "/"),
	}

	templates.Render(w, r, "contact", data)
}
