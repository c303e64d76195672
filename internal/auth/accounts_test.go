package auth_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/studyhall/studyhall/internal/auth"
	"github.com/studyhall/studyhall/internal/db"
)

func openTestDB(t *testing.T, name string) *sql.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s.db?mode=memory&cache=shared", name)
	conn, err := db.Open(context.Background(), db.DriverSQLite, dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestAccounts_RegisterApproveLogin(t *testing.T) {
	acc := auth.NewAccounts(openTestDB(t, "accounts_lifecycle"))
	ctx := context.Background()

	u, err := acc.Register(ctx, "alice", "Alice@Example.com", "hunter22")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if u.Email != "alice@example.com" {
		t.Fatalf("email not normalized: %q", u.Email)
	}
	if u.IsApproved {
		t.Fatal("fresh registrations must start unapproved")
	}
	if u.Role() != "student" {
		t.Fatalf("role=%q, want student", u.Role())
	}

	// login is gated until an admin approves
	if _, err := acc.Authenticate(ctx, "alice@example.com", "hunter22"); !errors.Is(err, auth.ErrNotApproved) {
		t.Fatalf("got %v, want ErrNotApproved", err)
	}

	if err := acc.Approve(ctx, u.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, err := acc.Authenticate(ctx, "ALICE@example.com", "hunter22")
	if err != nil {
		t.Fatalf("authenticate after approval: %v", err)
	}
	if got.ID != u.ID {
		t.Fatalf("authenticated wrong user: %#v", got)
	}

	// deactivation closes the door again
	if err := acc.SetActive(ctx, u.ID, false); err != nil {
		t.Fatalf("deactivate: %v", err)
	}
	if _, err := acc.Authenticate(ctx, "alice@example.com", "hunter22"); !errors.Is(err, auth.ErrInactive) {
		t.Fatalf("got %v, want ErrInactive", err)
	}
}

func TestAccounts_BadCredentials(t *testing.T) {
	acc := auth.NewAccounts(openTestDB(t, "accounts_badcreds"))
	ctx := context.Background()

	u, err := acc.Register(ctx, "bob", "bob@example.com", "secret12")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := acc.Approve(ctx, u.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	if _, err := acc.Authenticate(ctx, "bob@example.com", "wrong"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("wrong password: got %v", err)
	}
	if _, err := acc.Authenticate(ctx, "nobody@example.com", "secret12"); !errors.Is(err, auth.ErrInvalidCredentials) {
		t.Fatalf("unknown email: got %v", err)
	}
}

func TestAccounts_Duplicates(t *testing.T) {
	acc := auth.NewAccounts(openTestDB(t, "accounts_dupes"))
	ctx := context.Background()

	if _, err := acc.Register(ctx, "carol", "carol@example.com", "pw123456"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := acc.Register(ctx, "other", "carol@example.com", "pw123456"); !errors.Is(err, auth.ErrDuplicateEmail) {
		t.Fatalf("got %v, want ErrDuplicateEmail", err)
	}
	if _, err := acc.Register(ctx, "carol", "new@example.com", "pw123456"); !errors.Is(err, auth.ErrDuplicateUsername) {
		t.Fatalf("got %v, want ErrDuplicateUsername", err)
	}
}

func TestAccounts_ListPending(t *testing.T) {
	acc := auth.NewAccounts(openTestDB(t, "accounts_pending"))
	ctx := context.Background()

	u1, err := acc.Register(ctx, "dave", "dave@example.com", "pw123456")
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := acc.Register(ctx, "erin", "erin@example.com", "pw123456"); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := acc.Approve(ctx, u1.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}

	pending, err := acc.List(ctx, true)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].Username != "erin" {
		t.Fatalf("unexpected pending set: %#v", pending)
	}

	all, err := acc.List(ctx, false)
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("got %d users, want 2", len(all))
	}
}

func TestAccounts_FlagUnknownUser(t *testing.T) {
	acc := auth.NewAccounts(openTestDB(t, "accounts_unknown"))
	if err := acc.Approve(context.Background(), "nope"); !errors.Is(err, auth.ErrUserNotFound) {
		t.Fatalf("got %v, want ErrUserNotFound", err)
	}
}
