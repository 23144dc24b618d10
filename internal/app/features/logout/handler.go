// internal/app/features/logout/handler.go
package logout

import (
	"net/http"

	"github.com/hackmatehq/hackmate/internal/app/system/auth"
	"go.uber.org/zap"
)

type Handler struct {
	Log        *zap.Logger
	SessionMgr *auth.SessionManager
}

func NewHandler(sessionMgr *auth.SessionManager, logger *zap.Logger) *Handler {
	return &Handler{
		Log:        logger,
		SessionMgr: sessionMgr,
	}
}

// ServeLogout ends the session. Everything stored in it goes with it,
// including the open-listing markers, so views count fresh next sign-in.
func (h *Handler) ServeLogout(w http.ResponseWriter, r *http.Request) {
	session, err := h.SessionMgr.GetSession(r)
	if err != nil {
		// Session decode failed. Log and continue - we'll still clear the cookie.
		h.Log.Warn("session decode failed during logout", zap.Error(err))
	}

	// Ensure the deletion-cookie matches the original store settings.
	opts := h.SessionMgr.Store().Options
	if opts != nil {
		session.Options.Domain = opts.Domain
		session.Options.Path = opts.Path
		session.Options.Secure = opts.Secure
		session.Options.HttpOnly = opts.HttpOnly
		session.Options.SameSite = opts.SameSite
	}
	session.Options.MaxAge = -1 // delete immediately

	if err := session.Save(r, w); err != nil {
		h.Log.Error("logout: save session", zap.Error(err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
