package domain

import (
	"errors"
	"testing"
)

func TestRoleStringRoundTrip(t *testing.T) {
	for _, r := range []Role{RoleUser, RoleAssistant, RoleSystemError} {
		got, err := ParseRole(r.String())
		if err != nil {
			t.Fatalf("parse %q: %v", r.String(), err)
		}
		if got != r {
			t.Fatalf("expected %v, got %v", r, got)
		}
	}
}

func TestParseRoleAliasesAndUnknown(t *testing.T) {
	if r, err := ParseRole(" BOT "); err != nil || r != RoleAssistant {
		t.Fatalf("expected bot alias to map to assistant, got %v %v", r, err)
	}
	if _, err := ParseRole("doctor"); !errors.Is(err, ErrUnknownRole) {
		t.Fatalf("expected ErrUnknownRole, got %v", err)
	}
	if Role(42).String() != "unknown" {
		t.Fatalf("expected unknown label for out-of-range role")
	}
}
