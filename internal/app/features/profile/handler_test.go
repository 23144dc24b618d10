package profile_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/hackmatehq/hackmate/internal/app/features/errors"
	"github.com/hackmatehq/hackmate/internal/app/features/profile"
	userstore "github.com/hackmatehq/hackmate/internal/app/store/users"
	"github.com/hackmatehq/hackmate/internal/domain/models"
	"github.com/hackmatehq/hackmate/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*profile.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	return profile.NewHandler(db, errors.NewErrorLogger(logger), logger), db
}

func createPasswordUser(t *testing.T, db *mongo.Database, password string) models.User {
	t.Helper()
	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := userstore.New(db).CreateLocal(ctx, "Pat Builder", "pat@example.com", password)
	if err != nil {
		t.Fatalf("CreateLocal failed: %v", err)
	}
	return u
}

func asUser(r *http.Request, u models.User) *http.Request {
	return testutil.WithUser(r, testutil.TestUser{
		ID:    u.ID.Hex(),
		Name:  u.FullName,
		Email: u.Email,
	})
}

func postPasswordForm(u models.User, current, newPass, confirm string) *http.Request {
	form := url.Values{}
	form.Set("current_password", current)
	form.Set("new_password", newPass)
	form.Set("confirm_password", confirm)

	req := httptest.NewRequest("POST", "/profile/password", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return asUser(req, u)
}

// callRecovering invokes fn and swallows template-render panics so tests can
// assert on state changes without a booted template engine.
func callRecovering(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func TestServeProfile_Unauthenticated(t *testing.T) {
	h, _ := newTestHandler(t)

	req := httptest.NewRequest("GET", "/profile", nil)
	rec := httptest.NewRecorder()

	callRecovering(func() { h.ServeProfile(rec, req) })

	if rec.Code == http.StatusOK {
		t.Error("expected non-200 for unauthenticated profile request")
	}
}

func TestHandleChangePassword_Success(t *testing.T) {
	h, db := newTestHandler(t)
	u := createPasswordUser(t, db, "original-pass")

	rec := httptest.NewRecorder()
	h.HandleChangePassword(rec, postPasswordForm(u, "original-pass", "brand-new-pass", "brand-new-pass"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/profile?success=password" {
		t.Errorf("Location = %q, want /profile?success=password", loc)
	}

	ctx, cancel := testutil.TestContext()
	defer cancel()

	users := userstore.New(db)
	if _, err := users.Authenticate(ctx, u.Email, "brand-new-pass"); err != nil {
		t.Errorf("new password should authenticate: %v", err)
	}
	if _, err := users.Authenticate(ctx, u.Email, "original-pass"); err == nil {
		t.Error("old password should no longer authenticate")
	}
}

func TestHandleChangePassword_WrongCurrent(t *testing.T) {
	h, db := newTestHandler(t)
	u := createPasswordUser(t, db, "original-pass")

	rec := httptest.NewRecorder()
	callRecovering(func() {
		h.HandleChangePassword(rec, postPasswordForm(u, "not-the-password", "brand-new-pass", "brand-new-pass"))
	})

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := userstore.New(db).Authenticate(ctx, u.Email, "original-pass"); err != nil {
		t.Errorf("password should be unchanged: %v", err)
	}
}

func TestHandleChangePassword_TooShort(t *testing.T) {
	h, db := newTestHandler(t)
	u := createPasswordUser(t, db, "original-pass")

	rec := httptest.NewRecorder()
	callRecovering(func() {
		h.HandleChangePassword(rec, postPasswordForm(u, "original-pass", "short", "short"))
	})

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := userstore.New(db).Authenticate(ctx, u.Email, "original-pass"); err != nil {
		t.Errorf("password should be unchanged: %v", err)
	}
}

func TestHandleChangePassword_MismatchedConfirm(t *testing.T) {
	h, db := newTestHandler(t)
	u := createPasswordUser(t, db, "original-pass")

	rec := httptest.NewRecorder()
	callRecovering(func() {
		h.HandleChangePassword(rec, postPasswordForm(u, "original-pass", "brand-new-pass", "different-pass"))
	})

	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := userstore.New(db).Authenticate(ctx, u.Email, "original-pass"); err != nil {
		t.Errorf("password should be unchanged: %v", err)
	}
}

func TestHandleChangePassword_GoogleAccountRejected(t *testing.T) {
	h, db := newTestHandler(t)

	ctx, cancel := testutil.TestContext()
	defer cancel()

	u, err := userstore.New(db).UpsertGoogle(ctx, "Sam Googler", "sam@example.com", "")
	if err != nil {
		t.Fatalf("UpsertGoogle failed: %v", err)
	}

	rec := httptest.NewRecorder()
	callRecovering(func() {
		h.HandleChangePassword(rec, postPasswordForm(u, "", "brand-new-pass", "brand-new-pass"))
	})

	if rec.Code == http.StatusSeeOther {
		t.Error("google accounts must not be able to set a password here")
	}
}
