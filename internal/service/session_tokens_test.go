package service

import (
	"errors"
	"testing"
)

func TestSessionTokensRoundTrip(t *testing.T) {
	tokens, err := NewSessionTokens("top-secret")
	if err != nil {
		t.Fatalf("new tokens: %v", err)
	}
	tok, err := tokens.Issue("s1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	id, err := tokens.Parse(tok)
	if err != nil || id != "s1" {
		t.Fatalf("expected s1, got %q %v", id, err)
	}
}

func TestSessionTokensSameSecretSameKey(t *testing.T) {
	a, _ := NewSessionTokens("shared")
	b, _ := NewSessionTokens("shared")
	tok, _ := a.Issue("s1")
	if id, err := b.Parse(tok); err != nil || id != "s1" {
		t.Fatalf("expected token valid across instances with same secret, got %q %v", id, err)
	}
}

func TestSessionTokensRejectsForeignAndGarbage(t *testing.T) {
	a, _ := NewSessionTokens("")
	b, _ := NewSessionTokens("")
	tok, _ := a.Issue("s1")

	if _, err := b.Parse(tok); !errors.Is(err, ErrSessionTokenInvalid) {
		t.Fatalf("expected random secrets to differ, got %v", err)
	}
	if _, err := a.Parse("not-a-jwt"); !errors.Is(err, ErrSessionTokenInvalid) {
		t.Fatalf("expected ErrSessionTokenInvalid, got %v", err)
	}
	if _, err := a.Issue(" "); !errors.Is(err, ErrSessionTokenInvalid) {
		t.Fatalf("expected empty session id rejected, got %v", err)
	}
}
