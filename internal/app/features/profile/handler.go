// internal/app/features/profile/handler.go
package profile

import (
	"context"
	"net/http"
	"unicode/utf8"

	"github.com/dalemusser/waffle/pantry/templates"
	uierrors "github.com/hackmatehq/hackmate/internal/app/features/errors"
	_ "github.com/hackmatehq/hackmate/internal/app/features/profile/views"
	userstore "github.com/hackmatehq/hackmate/internal/app/store/users"
	"github.com/hackmatehq/hackmate/internal/app/system/authz"
	"github.com/hackmatehq/hackmate/internal/app/system/timeouts"
	"github.com/hackmatehq/hackmate/internal/app/system/viewdata"
	"github.com/hackmatehq/hackmate/internal/domain/models"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength matches the signup rule.
const minPasswordLength = 8

// Handler owns the account profile pages.
type Handler struct {
	DB     *mongo.Database
	Log    *zap.Logger
	ErrLog *uierrors.ErrorLogger
	Users  *userstore.Store
}

func NewHandler(db *mongo.Database, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:     db,
		Log:    logger,
		ErrLog: errLog,
		Users:  userstore.New(db),
	}
}

// profileData is the view model for the profile page.
type profileData struct {
	viewdata.BaseVM

	FullName   string
	Email      string
	AuthMethod string

	// Password section (only shown for password accounts)
	ShowPasswordSection bool

	Error   string
	Success string
}

// ServeProfile renders the account page. GET /profile
func (h *Handler) ServeProfile(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "profile lookup failed", err)
		return
	}

	data := h.profileVM(r, user)
	if r.URL.Query().Get("success") == "password" {
		data.Success = "Password changed successfully."
	}

	templates.Render(w, r, "profile", data)
}

// HandleChangePassword processes the password change form. POST /profile/password
func (h *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	_, _, uid, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, "failed to parse password form", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	user, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		h.ErrLog.ServerError(w, r, "profile lookup failed", err)
		return
	}

	if user.AuthMethod != "password" {
		h.renderWithError(w, r, user, "Password change is only available for password accounts.")
		return
	}

	current := r.FormValue("current_password")
	newPassword := r.FormValue("new_password")
	confirm := r.FormValue("confirm_password")

	if bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(current)) != nil {
		h.renderWithError(w, r, user, "Current password is incorrect.")
		return
	}
	if utf8.RuneCountInString(newPassword) < minPasswordLength {
		h.renderWithError(w, r, user, "Password must be at least 8 characters.")
		return
	}
	if newPassword != confirm {
		h.renderWithError(w, r, user, "New passwords do not match.")
		return
	}

	if err := h.Users.UpdatePassword(ctx, uid, newPassword); err != nil {
		h.ErrLog.ServerError(w, r, "password update failed", err)
		return
	}

	h.Log.Info("password changed", zap.String("user_id", uid.Hex()))
	http.Redirect(w, r, "/profile?success=password", http.StatusSeeOther)
}

func (h *Handler) profileVM(r *http.Request, user models.User) profileData {
	return profileData{
		BaseVM:              viewdata.NewBaseVM(r, "Profile", "/projects"),
		FullName:            user.FullName,
		Email:               user.Email,
		AuthMethod:          formatAuthMethod(user.AuthMethod),
		ShowPasswordSection: user.AuthMethod == "password",
	}
}

func (h *Handler) renderWithError(w http.ResponseWriter, r *http.Request, user models.User, msg string) {
	data := h.profileVM(r, user)
	data.Error = msg
	templates.Render(w, r, "profile", data)
}

// formatAuthMethod returns a human-readable label for the auth method.
func formatAuthMethod(method string) string {
	switch method {
	case "password":
		return "Password"
	case "google":
		return "Google"
	default:
		return method
	}
}
