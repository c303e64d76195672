package rbac

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestCheckerHas(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role, perm string
		want       bool
	}{
		{"student", "quiz:attempt", true},
		{"student", "catalog:view", true},
		{"student", "catalog:edit", false},
		{"student", "users:manage", false},
		{"admin", "quiz:attempt", true},
		{"admin", "users:manage", true},
		{"nobody", "quiz:attempt", false},
		{"", "quiz:attempt", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q,%q)=%v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerPrefixWildcard(t *testing.T) {
	c := NewChecker(map[string][]string{
		"grader": {"quiz:*"},
	})
	if !c.Has("grader", "quiz:attempt") {
		t.Fatal("prefix wildcard must match")
	}
	if c.Has("grader", "catalog:view") {
		t.Fatal("prefix wildcard must not leak across prefixes")
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "users:manage", "quiz:attempt") {
		t.Fatal("Any must pass when one permission matches")
	}
	if c.Any("student", "users:manage", "catalog:edit") {
		t.Fatal("Any must fail when none match")
	}
}

func TestRequireMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	handler := Require("quiz:attempt")(next)

	// no role in context
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusForbidden {
		t.Fatalf("anonymous: status=%d, want 403", rec.Code)
	}

	// student holds the permission
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req = req.WithContext(WithRole(context.Background(), "student"))
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("student: status=%d, want 204", rec.Code)
	}

	// student lacks the admin permission
	denied := Require("users:manage")(next)
	rec = httptest.NewRecorder()
	denied.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("student on admin route: status=%d, want 403", rec.Code)
	}
}

func TestContextRoundtrip(t *testing.T) {
	ctx := WithSubject(WithRole(context.Background(), "admin"), "u1")
	if RoleFromContext(ctx) != "admin" || SubjectFromContext(ctx) != "u1" {
		t.Fatal("context roundtrip broken")
	}
	if RoleFromContext(context.Background()) != "" {
		t.Fatal("empty context must yield empty role")
	}
}
