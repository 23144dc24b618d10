// internal/app/features/projects/handler.go
package projects

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	uierrors "github.com/hackmatehq/hackmate/internal/app/features/errors"
	_ "github.com/hackmatehq/hackmate/internal/app/features/projects/views"
	projectstore "github.com/hackmatehq/hackmate/internal/app/store/projects"
	"github.com/hackmatehq/hackmate/internal/app/policy/projectpolicy"
	"github.com/hackmatehq/hackmate/internal/app/system/auth"
	"github.com/hackmatehq/hackmate/internal/app/system/authz"
	"github.com/hackmatehq/hackmate/internal/app/system/htmlsanitize"
	"github.com/hackmatehq/hackmate/internal/app/system/inflight"
	"github.com/hackmatehq/hackmate/internal/app/system/inputval"
	"github.com/hackmatehq/hackmate/internal/app/system/timeouts"
	"github.com/hackmatehq/hackmate/internal/app/system/viewdata"
	"github.com/hackmatehq/hackmate/internal/domain/models"
	"github.com/dalemusser/waffle/pantry/templates"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Handler owns all project listing handlers.
type Handler struct {
	DB      *mongo.Database
	Store   *projectstore.Store
	Guard   *inflight.Guard
	Session *auth.SessionManager
	Log     *zap.Logger
	ErrLog  *uierrors.ErrorLogger
}

// NewHandler constructs a projects Handler.
func NewHandler(db *mongo.Database, store *projectstore.Store, sessionMgr *auth.SessionManager, errLog *uierrors.ErrorLogger, logger *zap.Logger) *Handler {
	return &Handler{
		DB:      db,
		Store:   store,
		Guard:   inflight.NewGuard(),
		Session: sessionMgr,
		Log:     logger,
		ErrLog:  errLog,
	}
}

// openSessionKey marks a listing detail as open in the viewer's session, so
// re-renders of an open detail don't count additional views.
func openSessionKey(id string) string {
	return "open_" + id
}

// card is one listing on the browse page.
type card struct {
	ID        string
	Name      string
	Category  string
	Preview   string
	OwnerName string
	ViewCount int64
	PostedAt  string
	IsMine    bool
	Pending   bool
}

// ListVM is the view model for the browse page.
type ListVM struct {
	viewdata.BaseVM
	Cards      []card
	Categories []string
	Category   string
	Sort       string
	Flash      string
	Error      string
}

// List displays the listings visible to everyone, filtered and sorted per
// the query string. GET /projects
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	now := time.Now().UTC()
	visible, err := h.Store.FetchVisible(ctx, now)
	if err != nil {
		h.ErrLog.ServerError(w, r, "failed to fetch listings", err)
		return
	}

	_, email, _, _ := authz.UserCtx(r)
	category := strings.TrimSpace(r.URL.Query().Get("category"))
	order := r.URL.Query().Get("sort")
	if order != SortOldest {
		order = SortLatest
	}

	listings := SortListings(FilterByCategory(visible, category), order)
	cards := make([]card, 0, len(listings))
	for _, p := range listings {
		cards = append(cards, card{
			ID:        p.ID.Hex(),
			Name:      p.Name,
			Category:  p.Category,
			Preview:   Preview(p.Description),
			OwnerName: p.OwnerName,
			ViewCount: p.ViewCount,
			PostedAt:  formatPostedAt(p.CreatedAt),
			IsMine:    email != "" && p.OwnerEmail == email,
			Pending:   p.CreatedAt.IsZero(),
		})
	}

	vm := ListVM{
		BaseVM:     viewdata.NewBaseVM(r, "Browse Projects", "/"),
		Cards:      cards,
		Categories: models.ProjectCategories,
		Category:   category,
		Sort:       order,
	}
	if h.Session.PopLoginFlash(w, r) {
		vm.Flash = "Signed in successfully"
	}

	templates.Render(w, r, "projects/list", vm)
}

// DetailVM is the view model for an open listing.
type DetailVM struct {
	viewdata.BaseVM
	ID              string
	Name            string
	Category        string
	DescriptionHTML template.HTML
	TechStack       string
	Course          string
	Year            string
	MembersRequired int
	LinkedIn        string
	OwnerName       string
	ViewCount       int64
	PostedAt        string
	IsMine          bool
	Expired         bool
}

// Show opens a listing detail. The first open in a session counts one view
// (owner opens never count); re-renders while open do not, closing and
// reopening does. GET /projects/{id}
func (h *Handler) Show(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	_, email, _, _ := authz.UserCtx(r)

	p, err := h.Store.GetByID(ctx, objID)
	if errors.Is(err, projectstore.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "failed to open listing", err)
		return
	}

	// Expired or closed listings are only reachable by their owner. The
	// gate runs before any view is counted, so an open the viewer never
	// sees leaves the count untouched.
	isMine := email != "" && p.OwnerEmail == email
	if !isMine && !projectpolicy.IsVisibleToOthers(p, time.Now().UTC(), h.Store.TTL()) {
		http.NotFound(w, r)
		return
	}

	p = h.markOpened(ctx, w, r, email, id, objID, p)

	vm := DetailVM{
		BaseVM:          viewdata.NewBaseVM(r, p.Name, "/projects"),
		ID:              id,
		Name:            p.Name,
		Category:        p.Category,
		DescriptionHTML: htmlsanitize.SanitizeHTML(p.Description),
		TechStack:       p.TechStack,
		Course:          p.Course,
		Year:            p.Year,
		MembersRequired: p.MembersRequired,
		LinkedIn:        p.LinkedIn,
		OwnerName:       p.OwnerName,
		ViewCount:       p.ViewCount,
		PostedAt:        formatPostedAt(p.CreatedAt),
		IsMine:          isMine,
		Expired:         projectpolicy.IsExpired(p.CreatedAt, time.Now().UTC(), h.Store.TTL()),
	}

	templates.Render(w, r, "projects/detail", vm)
}

// markOpened counts one view on the transition from closed to open, for a
// listing that already passed the visibility gate. The open marker lives in
// the session; the count shown is whatever the store returned, so concurrent
// viewers reconcile to the stored value.
func (h *Handler) markOpened(ctx context.Context, w http.ResponseWriter, r *http.Request, email, id string, objID primitive.ObjectID, p models.Project) models.Project {
	session, serr := h.Session.GetSession(r)
	if serr != nil {
		// Undecodable session cookie; treat the open as fresh.
		h.Log.Warn("session decode failed on open", zap.Error(serr))
	}

	if session != nil {
		if v, ok := session.Values[openSessionKey(id)].(bool); ok && v {
			return p
		}
	}

	counted, err := h.Store.IncrementView(ctx, email, objID)
	if err != nil {
		h.Log.Warn("failed to count view", zap.Error(err), zap.String("project_id", id))
		return p
	}
	if session != nil {
		session.Values[openSessionKey(id)] = true
		if err := session.Save(r, w); err != nil {
			h.Log.Warn("failed to save open marker", zap.Error(err), zap.String("project_id", id))
		}
	}
	return counted
}

// Close clears the open marker so the next open counts a view again.
// POST /projects/{id}/close
func (h *Handler) Close(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		http.NotFound(w, r)
		return
	}

	if session, err := h.Session.GetSession(r); err == nil {
		delete(session.Values, openSessionKey(id))
		if err := session.Save(r, w); err != nil {
			h.Log.Warn("failed to clear open marker", zap.Error(err), zap.String("project_id", id))
		}
	}

	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

// FormVM is the view model for the new/edit listing forms.
type FormVM struct {
	viewdata.BaseVM
	ID         string
	Form       inputval.ProjectInput
	Categories []string
	Token      string
	Error      string
}

// ShowNew displays the new listing form. GET /projects/new
func (h *Handler) ShowNew(w http.ResponseWriter, r *http.Request) {
	vm := FormVM{
		BaseVM:     viewdata.NewBaseVM(r, "Post a Project", "/projects"),
		Categories: models.ProjectCategories,
		// One token per form render; a blind resubmit of the same form
		// lands on the same stored listing instead of a duplicate.
		Token: uuid.NewString(),
	}
	templates.Render(w, r, "projects/new", vm)
}

// Create publishes a new listing. POST /projects/new
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, "failed to parse listing form", err)
		return
	}

	name, email, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	in := formInput(r)
	token := strings.TrimSpace(r.FormValue("token"))
	if token == "" {
		token = uuid.NewString()
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	_, err := h.Store.Create(ctx, email, name, token, in)
	if err != nil {
		var ferr *inputval.FieldError
		if errors.As(err, &ferr) {
			vm := FormVM{
				BaseVM:     viewdata.NewBaseVM(r, "Post a Project", "/projects"),
				Form:       in,
				Categories: models.ProjectCategories,
				Token:      token,
				Error:      h.fieldErrorMessage(ferr),
			}
			templates.Render(w, r, "projects/new", vm)
			return
		}
		h.ErrLog.ServerError(w, r, "failed to create listing", err)
		return
	}

	http.Redirect(w, r, "/projects/mine?success=created", http.StatusSeeOther)
}

// ShowEdit displays the edit form, owner only. GET /projects/{id}/edit
func (h *Handler) ShowEdit(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Short())
	defer cancel()

	p, err := h.Store.GetByID(ctx, objID)
	if errors.Is(err, projectstore.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		h.ErrLog.ServerError(w, r, "failed to load listing for edit", err)
		return
	}
	if !authz.IsOwner(r, p.OwnerEmail) {
		uierrors.RenderForbidden(w, r, "Only the project owner can edit this listing.", "/projects")
		return
	}

	vm := FormVM{
		BaseVM: viewdata.NewBaseVM(r, "Edit Project", "/projects/mine"),
		ID:     id,
		Form: inputval.ProjectInput{
			Name:            p.Name,
			Description:     p.Description,
			Category:        p.Category,
			TechStack:       p.TechStack,
			Course:          p.Course,
			Year:            p.Year,
			MembersRequired: p.MembersRequired,
			LinkedIn:        p.LinkedIn,
		},
		Categories: models.ProjectCategories,
	}
	templates.Render(w, r, "projects/edit", vm)
}

// Update applies an edit, owner only. POST /projects/{id}
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}
	if err := r.ParseForm(); err != nil {
		h.ErrLog.BadRequest(w, r, "failed to parse listing form", err)
		return
	}

	_, email, _, _ := authz.UserCtx(r)
	in := formInput(r)

	if err := h.Guard.Begin(id); err != nil {
		h.renderBusy(w, r)
		return
	}
	defer h.Guard.End(id)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Store.Update(ctx, email, objID, in); err != nil {
		var ferr *inputval.FieldError
		switch {
		case errors.As(err, &ferr):
			vm := FormVM{
				BaseVM:     viewdata.NewBaseVM(r, "Edit Project", "/projects/mine"),
				ID:         id,
				Form:       in,
				Categories: models.ProjectCategories,
				Error:      h.fieldErrorMessage(ferr),
			}
			templates.Render(w, r, "projects/edit", vm)
		case errors.Is(err, projectstore.ErrNotOwner):
			uierrors.RenderForbidden(w, r, "Only the project owner can edit this listing.", "/projects")
		case errors.Is(err, projectstore.ErrNotFound):
			http.NotFound(w, r)
		default:
			h.ErrLog.ServerError(w, r, "failed to update listing", err)
		}
		return
	}

	http.Redirect(w, r, "/projects/mine?success=updated", http.StatusSeeOther)
}

// Delete permanently removes a listing, owner only. POST /projects/{id}/delete
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	_, email, _, _ := authz.UserCtx(r)

	if err := h.Guard.Begin(id); err != nil {
		h.renderBusy(w, r)
		return
	}
	defer h.Guard.End(id)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if err := h.Store.Delete(ctx, email, objID); err != nil {
		switch {
		case errors.Is(err, projectstore.ErrNotOwner):
			uierrors.RenderForbidden(w, r, "Only the project owner can delete this listing.", "/projects")
		case errors.Is(err, projectstore.ErrNotFound):
			http.NotFound(w, r)
		default:
			h.ErrLog.ServerError(w, r, "failed to delete listing", err)
		}
		return
	}

	http.Redirect(w, r, "/projects/mine?success=deleted", http.StatusSeeOther)
}

// Reactivate restores an expired listing, restarting its visibility window.
// POST /projects/{id}/reactivate
func (h *Handler) Reactivate(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	objID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		http.NotFound(w, r)
		return
	}

	_, email, _, _ := authz.UserCtx(r)

	if err := h.Guard.Begin(id); err != nil {
		h.renderBusy(w, r)
		return
	}
	defer h.Guard.End(id)

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	if _, err := h.Store.Reactivate(ctx, email, objID, time.Now().UTC()); err != nil {
		switch {
		case errors.Is(err, projectstore.ErrNotExpired):
			http.Redirect(w, r, "/projects/mine?error=not_expired", http.StatusSeeOther)
		case errors.Is(err, projectstore.ErrNotOwner):
			uierrors.RenderForbidden(w, r, "Only the project owner can reactivate this listing.", "/projects")
		case errors.Is(err, projectstore.ErrNotFound):
			http.NotFound(w, r)
		default:
			h.ErrLog.ServerError(w, r, "failed to reactivate listing", err)
		}
		return
	}

	http.Redirect(w, r, "/projects/mine?success=reactivated", http.StatusSeeOther)
}

// mineRow is one listing on the owner's dashboard.
type mineRow struct {
	ID        string
	Name      string
	Category  string
	ViewCount int64
	PostedAt  string
	Expired   bool
	Active    bool
}

// MineVM is the view model for the owner's dashboard.
type MineVM struct {
	viewdata.BaseVM
	Rows    []mineRow
	Success string
	Error   string
}

// Mine lists everything the signed-in user published, including expired and
// closed listings. GET /projects/mine
func (h *Handler) Mine(w http.ResponseWriter, r *http.Request) {
	_, email, _, ok := authz.UserCtx(r)
	if !ok {
		uierrors.RenderUnauthorized(w, r, "/login")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), timeouts.Medium())
	defer cancel()

	mine, err := h.Store.FetchMine(ctx, email)
	if err != nil {
		h.ErrLog.ServerError(w, r, "failed to fetch own listings", err)
		return
	}

	now := time.Now().UTC()
	rows := make([]mineRow, 0, len(mine))
	for _, p := range SortListings(mine, SortLatest) {
		rows = append(rows, mineRow{
			ID:        p.ID.Hex(),
			Name:      p.Name,
			Category:  p.Category,
			ViewCount: p.ViewCount,
			PostedAt:  formatPostedAt(p.CreatedAt),
			Expired:   projectpolicy.IsExpired(p.CreatedAt, now, h.Store.TTL()),
			Active:    p.Active,
		})
	}

	vm := MineVM{
		BaseVM: viewdata.NewBaseVM(r, "My Projects", "/projects"),
		Rows:   rows,
	}
	switch r.URL.Query().Get("success") {
	case "created":
		vm.Success = "Project published"
	case "updated":
		vm.Success = "Project updated"
	case "deleted":
		vm.Success = "Project deleted"
	case "reactivated":
		vm.Success = "Project reactivated for another 90 days"
	}
	if r.URL.Query().Get("error") == "not_expired" {
		vm.Error = "This project is still live; reactivation only applies to expired projects."
	}

	templates.Render(w, r, "projects/mine", vm)
}

func (h *Handler) renderBusy(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "Another change to this project is still in progress. Please retry.", http.StatusConflict)
}

// formInput reads the listing fields out of a parsed form.
func formInput(r *http.Request) inputval.ProjectInput {
	members, _ := strconv.Atoi(strings.TrimSpace(r.FormValue("members_required")))
	return inputval.ProjectInput{
		Name:            strings.TrimSpace(r.FormValue("name")),
		Description:     strings.TrimSpace(r.FormValue("description")),
		Category:        strings.TrimSpace(r.FormValue("category")),
		TechStack:       strings.TrimSpace(r.FormValue("tech_stack")),
		Course:          strings.TrimSpace(r.FormValue("course")),
		Year:            strings.TrimSpace(r.FormValue("year")),
		MembersRequired: members,
		LinkedIn:        strings.TrimSpace(r.FormValue("linkedin")),
	}
}

// fieldErrorMessage maps a validation failure to the message shown above the
// form.
func (h *Handler) fieldErrorMessage(ferr *inputval.FieldError) string {
	switch ferr.Field {
	case "name":
		return "Project name is required."
	case "description":
		return "Description must be at least " + strconv.Itoa(h.Store.Rules().DescriptionMinChars) + " characters."
	case "category":
		return "Pick one of the listed categories."
	case "members_required":
		return "Members required must be at least 1."
	case "course":
		return "Course is required."
	case "year":
		return "Year is required."
	case "tech_stack":
		return "Tech stack is required."
	default:
		return "Please check the highlighted field: " + ferr.Reason
	}
}

func formatPostedAt(t time.Time) string {
	if t.IsZero() {
		return "Just now"
	}
	return t.Format("Jan 2, 2006")
}
