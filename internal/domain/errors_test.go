package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	base := errors.New("dial tcp: refused")
	err := fmt.Errorf("append turn: %w", NewError(ErrorPersistenceFailure, "could not save", base))

	if got := KindOf(err); got != ErrorPersistenceFailure {
		t.Fatalf("expected %s, got %s", ErrorPersistenceFailure, got)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause to be reachable")
	}
	if got := MessageOf(err, "fallback"); got != "could not save" {
		t.Fatalf("unexpected message %q", got)
	}
	if got := KindOf(base); got != "" {
		t.Fatalf("expected empty kind for plain error, got %s", got)
	}
	if got := MessageOf(base, "fallback"); got != "fallback" {
		t.Fatalf("expected fallback message, got %q", got)
	}
}

func TestRoleValid(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleModel, RoleSystem} {
		if !r.Valid() {
			t.Fatalf("expected %q to be valid", r)
		}
	}
	if Role("assistant").Valid() {
		t.Fatalf("expected assistant to be invalid")
	}
}
