// internal/app/features/home/handler.go
package home

import (
	"net/http"

	_ "github.com/hackmatehq/hackmate/internal/app/features/home/views"
	"github.com/hackmatehq/hackmate/internal/app/system/viewdata"
	"github.com/dalemusser/waffle/pantry/templates"
	"go.uber.org/zap"
)

// Handler holds dependencies needed to serve the landing page.
type Handler struct {
	Log *zap.Logger
}

func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{Log: logger}
}

// ServeRoot renders the landing hero. Signed-in visitors go straight to the
// browse page.
func (h *Handler) ServeRoot(w http.ResponseWriter, r *http.Request) {
	data := struct {
		viewdata.BaseVM
	}{
		BaseVM: viewdata.NewBaseVM(r, "Find your next teammates", "/"),
	}

	if data.IsLoggedIn {
		http.Redirect(w, r, "/projects", http.StatusSeeOther)
		return
	}

	templates.Render(w, r, "home", data)
}
