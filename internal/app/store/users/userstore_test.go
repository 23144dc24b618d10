package userstore_test

import (
	"context"
	"errors"
	"testing"

	userstore "github.com/hackmatehq/hackmate/internal/app/store/users"
	"github.com/hackmatehq/hackmate/internal/testutil"
)

func TestAuthenticate_UnknownEmail(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	_, err := store.Authenticate(ctx, "nobody@example.com", "whatever-pass")
	if !errors.Is(err, userstore.ErrBadCredentials) {
		t.Errorf("unknown email: err = %v, want ErrBadCredentials", err)
	}
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)
	ctx, cancel := testutil.TestContext()
	defer cancel()

	if _, err := store.CreateLocal(ctx, "Pat Doe", "pat@example.com", "correct-horse-battery"); err != nil {
		t.Fatalf("CreateLocal: %v", err)
	}

	_, err := store.Authenticate(ctx, "pat@example.com", "wrong-password")
	if !errors.Is(err, userstore.ErrBadCredentials) {
		t.Errorf("wrong password: err = %v, want ErrBadCredentials", err)
	}
}

func TestAuthenticate_StorageErrorIsNotBadCredentials(t *testing.T) {
	db := testutil.SetupTestDB(t)
	store := userstore.New(db)

	// A dead context stands in for an unreachable database. The caller
	// needs to see the failure, not a wrong-password message.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.Authenticate(ctx, "pat@example.com", "correct-horse-battery")
	if err == nil {
		t.Fatal("expected an error from a canceled context")
	}
	if errors.Is(err, userstore.ErrBadCredentials) {
		t.Error("storage failure must not collapse to ErrBadCredentials")
	}
}
