package login_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	uierrors "github.com/hackmatehq/hackmate/internal/app/features/errors"
	"github.com/hackmatehq/hackmate/internal/app/features/login"
	userstore "github.com/hackmatehq/hackmate/internal/app/store/users"
	"github.com/hackmatehq/hackmate/internal/app/system/auth"
	"github.com/hackmatehq/hackmate/internal/testutil"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

func newTestHandler(t *testing.T) (*login.Handler, *mongo.Database) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	logger := zap.NewNop()
	errLog := uierrors.NewErrorLogger(logger)

	sessionMgr, err := auth.NewSessionManager("test-session-key-for-testing-only", "test-session", "", false, logger)
	if err != nil {
		t.Fatalf("NewSessionManager failed: %v", err)
	}

	return login.NewHandler(db, sessionMgr, errLog, false, logger), db
}

func callRecovering(fn func()) {
	defer func() { _ = recover() }()
	fn()
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest("POST", target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestSignup_CreatesAccountAndSignsIn(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	form := url.Values{
		"full_name":        {"Ada Lovelace"},
		"email":            {"ada@example.com"},
		"password":         {"correct horse battery"},
		"confirm_password": {"correct horse battery"},
	}
	rec := httptest.NewRecorder()
	handler.HandleSignupPost(rec, postForm("/signup", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/projects" {
		t.Errorf("Location = %q, want /projects", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("signup should set a session cookie")
	}

	u, err := userstore.New(db).GetByEmail(ctx, "ada@example.com")
	if err != nil {
		t.Fatalf("account not created: %v", err)
	}
	if u.AuthMethod != "password" {
		t.Errorf("AuthMethod = %q", u.AuthMethod)
	}
}

func TestSignup_DuplicateEmailRejected(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := userstore.New(db).CreateLocal(ctx, "Ada Lovelace", "ada@example.com", "correct horse battery"); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	form := url.Values{
		"full_name":        {"Impostor"},
		"email":            {"ada@example.com"},
		"password":         {"another password"},
		"confirm_password": {"another password"},
	}
	rec := httptest.NewRecorder()
	callRecovering(func() { handler.HandleSignupPost(rec, postForm("/signup", form)) })

	if rec.Code == http.StatusSeeOther {
		t.Error("duplicate email must not redirect to success")
	}
}

func TestSignup_ValidationRules(t *testing.T) {
	handler, _ := newTestHandler(t)

	tests := []struct {
		name string
		form url.Values
	}{
		{"bad email", url.Values{
			"email": {"not-an-email"}, "password": {"long enough pw"}, "confirm_password": {"long enough pw"},
		}},
		{"short password", url.Values{
			"email": {"ada@example.com"}, "password": {"short"}, "confirm_password": {"short"},
		}},
		{"mismatched confirm", url.Values{
			"email": {"ada@example.com"}, "password": {"long enough pw"}, "confirm_password": {"different pw!!"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			callRecovering(func() { handler.HandleSignupPost(rec, postForm("/signup", tt.form)) })
			if rec.Code == http.StatusSeeOther {
				t.Error("invalid signup must not redirect to success")
			}
		})
	}
}

func TestLogin_Success(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := userstore.New(db).CreateLocal(ctx, "Ada Lovelace", "ada@example.com", "correct horse battery"); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	form := url.Values{
		"email":    {"ada@example.com"},
		"password": {"correct horse battery"},
		"return":   {"/projects/mine"},
	}
	rec := httptest.NewRecorder()
	handler.HandleLoginPost(rec, postForm("/login", form))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("expected status %d, got %d", http.StatusSeeOther, rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/projects/mine" {
		t.Errorf("Location = %q, want the return URL", loc)
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Error("login should set a session cookie")
	}
}

func TestLogin_WrongPassword(t *testing.T) {
	handler, db := newTestHandler(t)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := userstore.New(db).CreateLocal(ctx, "Ada Lovelace", "ada@example.com", "correct horse battery"); err != nil {
		t.Fatalf("seed account: %v", err)
	}

	form := url.Values{
		"email":    {"ada@example.com"},
		"password": {"wrong password"},
	}
	rec := httptest.NewRecorder()
	callRecovering(func() { handler.HandleLoginPost(rec, postForm("/login", form)) })

	if rec.Code == http.StatusSeeOther {
		t.Error("wrong password must not redirect to success")
	}
}

func TestLogin_UnknownAccount(t *testing.T) {
	handler, _ := newTestHandler(t)

	form := url.Values{
		"email":    {"nobody@example.com"},
		"password": {"whatever password"},
	}
	rec := httptest.NewRecorder()
	callRecovering(func() { handler.HandleLoginPost(rec, postForm("/login", form)) })

	if rec.Code == http.StatusSeeOther {
		t.Error("unknown account must not redirect to success")
	}
}
