// Package auth owns the session gate: it binds the signed-in principal (or
// none) to every request and decides which routes are reachable without one.
//
// Sessions are cookie-backed (gorilla/sessions). The session stores only the
// authenticated flag and the user id; LoadSessionUser fetches fresh account
// data on each request through the configured UserFetcher, so a disabled
// account or a changed display name takes effect immediately rather than at
// next login. Signing out deletes the cookie outright, which also discards
// any per-session listing state (open project markers, flashes).
package auth

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

// Session value keys.
const (
	isAuthKey     = "is_authenticated"
	userIDKey     = "user_id"
	loginFlashKey = "login_flash"
)

// SessionUser is the principal injected into the request context for a
// signed-in user.
type SessionUser struct {
	ID       string
	Name     string
	Email    string
	PhotoURL string
}

// UserFetcher loads fresh session-user data for an authenticated user id.
// Returning (nil, nil) means the account no longer exists or may not sign
// in; the request proceeds unauthenticated.
type UserFetcher interface {
	FetchSessionUser(ctx context.Context, userID string) (*SessionUser, error)
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// SessionManager wraps the cookie store and the middleware that loads and
// enforces the current principal.
type SessionManager struct {
	store   *sessions.CookieStore
	name    string
	log     *zap.Logger
	fetcher UserFetcher
}

// NewSessionManager builds a SessionManager with the given signing key and
// cookie settings. In production (secure=true) cookies are Secure with
// SameSite=Lax; local dev over http keeps them usable.
func NewSessionManager(sessionKey, name, domain string, secure bool, logger *zap.Logger) (*SessionManager, error) {
	if sessionKey == "" {
		return nil, fmt.Errorf("session key is empty; provide ≥32 random chars")
	}
	if len(sessionKey) < 32 {
		logger.Warn("session key is short; 32+ chars recommended",
			zap.Int("length", len(sessionKey)))
	}

	store := sessions.NewCookieStore([]byte(sessionKey))
	store.Options = &sessions.Options{
		Domain:   domain,
		Path:     "/",
		Secure:   secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	logger.Info("session store initialized",
		zap.Bool("secure", secure),
		zap.String("domain", domain))

	return &SessionManager{store: store, name: name, log: logger}, nil
}

// Store exposes the underlying cookie store (logout needs its options to
// build a matching deletion cookie).
func (m *SessionManager) Store() *sessions.CookieStore {
	return m.store
}

// GetSession returns the request's session, decoding errors included so
// callers can distinguish a bad cookie from a fresh one.
func (m *SessionManager) GetSession(r *http.Request) (*sessions.Session, error) {
	return m.store.Get(r, m.name)
}

// SetUserFetcher wires the store that resolves a session's user id to fresh
// account data on each request.
func (m *SessionManager) SetUserFetcher(f UserFetcher) {
	m.fetcher = f
}

// SignIn marks the session authenticated for u and sets the transient
// signed-in flash. The flash is a pure UI affordance: the next page render
// pops it and shows a self-clearing banner.
func (m *SessionManager) SignIn(w http.ResponseWriter, r *http.Request, u *SessionUser) error {
	sess, err := m.GetSession(r)
	if err != nil {
		// Bad or stale cookie; gorilla hands back a fresh session alongside
		// the error, which is exactly what we want here.
		if scErr, ok := err.(securecookie.Error); ok && scErr.IsDecode() {
			m.log.Warn("session cookie invalid, using fresh session",
				zap.Error(err), zap.String("user_id", u.ID))
		} else {
			m.log.Error("session store error during sign-in, using fresh session",
				zap.Error(err), zap.String("user_id", u.ID))
		}
	}

	sess.Values[isAuthKey] = true
	sess.Values[userIDKey] = u.ID
	sess.Values[loginFlashKey] = true

	return sess.Save(r, w)
}

// PopLoginFlash reports whether the signed-in flash is pending and clears
// it, saving the session when it was set.
func (m *SessionManager) PopLoginFlash(w http.ResponseWriter, r *http.Request) bool {
	sess, err := m.GetSession(r)
	if err != nil {
		return false
	}
	set, _ := sess.Values[loginFlashKey].(bool)
	if set {
		delete(sess.Values, loginFlashKey)
		if err := sess.Save(r, w); err != nil {
			m.log.Warn("failed to clear login flash", zap.Error(err))
		}
	}
	return set
}

// LoadSessionUser injects the current principal into the request context if
// the session is authenticated. Account data is fetched fresh through the
// UserFetcher; a missing or disabled account leaves the request
// unauthenticated.
func (m *SessionManager) LoadSessionUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := m.GetSession(r)
		if err != nil {
			// Undecodable cookie: continue signed out.
			next.ServeHTTP(w, r)
			return
		}

		isAuth, _ := sess.Values[isAuthKey].(bool)
		userID, _ := sess.Values[userIDKey].(string)
		if !isAuth || userID == "" {
			next.ServeHTTP(w, r)
			return
		}

		if m.fetcher == nil {
			next.ServeHTTP(w, r)
			return
		}

		u, err := m.fetcher.FetchSessionUser(r.Context(), userID)
		if err != nil {
			m.log.Error("session user fetch failed", zap.Error(err), zap.String("user_id", userID))
			next.ServeHTTP(w, r)
			return
		}
		if u == nil {
			next.ServeHTTP(w, r)
			return
		}

		next.ServeHTTP(w, withUser(r, u))
	})
}

// RequireSignedIn ensures there is a principal in context (set by
// LoadSessionUser). If not signed in:
//   - HTML: 303 redirect to /login?return=...
//   - API:  401 Unauthorized with a plain error body.
func (m *SessionManager) RequireSignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := CurrentUser(r); ok {
			next.ServeHTTP(w, r)
			return
		}

		if wantsHTML(r) {
			ret := url.QueryEscape(r.URL.RequestURI())
			http.Redirect(w, r, "/login?return="+ret, http.StatusSeeOther)
			return
		}

		http.Error(w, "unauthorized", http.StatusUnauthorized)
	})
}

// CurrentUser returns the principal & "found?" flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// WithTestUser injects a principal directly into the request context,
// bypassing the session middleware. Test helper only.
func WithTestUser(r *http.Request, u *SessionUser) *http.Request {
	return withUser(r, u)
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
