// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"unicode/utf8"

	uierrors "github.com/hackmatehq/hackmate/internal/app/features/errors"
	_ "github.com/hackmatehq/hackmate/internal/app/features/login/views"
	userstore "github.com/hackmatehq/hackmate/internal/app/store/users"
	"github.com/hackmatehq/hackmate/internal/app/system/auth"
	"github.com/hackmatehq/hackmate/internal/app/system/inputval"
	"github.com/hackmatehq/hackmate/internal/app/system/timeouts"
	"github.com/hackmatehq/hackmate/internal/app/system/viewdata"
	"github.com/hackmatehq/hackmate/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/query"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/dalemusser/waffle/pantry/urlutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// minPasswordLength is the floor for new account passwords.
const minPasswordLength = 8

type Handler struct {
	DB            *mongo.Database
	Log           *zap.Logger
	SessionMgr    *auth.SessionManager
	ErrLog        *uierrors.ErrorLogger
	Users         *userstore.Store
	GoogleEnabled bool
}

func NewHandler(db *mongo.Database, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, googleEnabled bool, logger *zap.Logger) *Handler {
	return &Handler{
		DB:            db,
		Log:           logger,
		SessionMgr:    sessionMgr,
		ErrLog:        errLog,
		Users:         userstore.New(db),
		GoogleEnabled: googleEnabled,
	}
}

type loginFormData struct {
	viewdata.BaseVM
	Error         string
	Email         string
	ReturnURL     string
	GoogleEnabled bool
}

type signupFormData struct {
	viewdata.BaseVM
	Error         string
	FullName      string
	Email         string
	GoogleEnabled bool
}

// ServeLogin shows the sign-in form. GET /login
func (h *Handler) ServeLogin(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		ReturnURL:     query.Get(r, "return"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

// HandleLoginPost checks the credentials and starts a session. POST /login
func (h *Handler) HandleLoginPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, "failed to parse login form", err)
		return
	}

	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if email == "" || password == "" {
		h.renderLoginWithError(w, r, "Please enter your email and password.", email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	u, err := h.Users.Authenticate(ctx, email, password)
	if errors.Is(err, userstore.ErrBadCredentials) {
		h.renderLoginWithError(w, r, "Incorrect email or password.", email)
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "login lookup failed", err)
		return
	}

	h.signInAndRedirect(w, r, u, strings.TrimSpace(r.FormValue("return")))
}

// ServeSignup shows the account creation form. GET /signup
func (h *Handler) ServeSignup(w http.ResponseWriter, r *http.Request) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign up", "/"),
		GoogleEnabled: h.GoogleEnabled,
	})
}

// HandleSignupPost creates a password account and signs it in. POST /signup
func (h *Handler) HandleSignupPost(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, "failed to parse signup form", err)
		return
	}

	fullName := strings.TrimSpace(r.FormValue("full_name"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	confirm := r.FormValue("confirm_password")

	switch {
	case !inputval.IsValidEmail(email):
		h.renderSignupWithError(w, r, "Please enter a valid email address.", fullName, email)
		return
	case utf8.RuneCountInString(password) < minPasswordLength:
		h.renderSignupWithError(w, r, "Password must be at least 8 characters.", fullName, email)
		return
	case password != confirm:
		h.renderSignupWithError(w, r, "Passwords do not match.", fullName, email)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	u, err := h.Users.CreateLocal(ctx, fullName, email, password)
	if errors.Is(err, userstore.ErrDuplicateEmail) {
		h.renderSignupWithError(w, r, "An account with that email already exists. Try signing in.", fullName, email)
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "signup failed", err)
		return
	}

	h.Log.Info("account created", zap.String("user_id", u.ID.Hex()))
	h.signInAndRedirect(w, r, u, "")
}

func (h *Handler) signInAndRedirect(w http.ResponseWriter, r *http.Request, u models.User, returnURL string) {
	su := &auth.SessionUser{
		ID:       u.ID.Hex(),
		Name:     u.FullName,
		Email:    u.Email,
		PhotoURL: u.PhotoURL,
	}
	if err := h.SessionMgr.SignIn(w, r, su); err != nil {
		h.Log.Error("failed to create session", zap.Error(err), zap.String("user_id", su.ID))
		h.renderLoginWithError(w, r, "Unable to create session. Please try again.", u.Email)
		return
	}

	dest := urlutil.SafeReturn(returnURL, "", "/projects")
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

func (h *Handler) renderLoginWithError(w http.ResponseWriter, r *http.Request, msg, email string) {
	ret := strings.TrimSpace(r.FormValue("return"))
	if ret == "" {
		ret = query.Get(r, "return")
	}
	templates.Render(w, r, "login", loginFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign in", "/"),
		Error:         msg,
		Email:         email,
		ReturnURL:     ret,
		GoogleEnabled: h.GoogleEnabled,
	})
}

func (h *Handler) renderSignupWithError(w http.ResponseWriter, r *http.Request, msg, fullName, email string) {
	templates.Render(w, r, "signup", signupFormData{
		BaseVM:        viewdata.NewBaseVM(r, "Sign up", "/"),
		Error:         msg,
		FullName:      fullName,
		Email:         email,
		GoogleEnabled: h.GoogleEnabled,
	})
}
