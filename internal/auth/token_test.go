package auth

import (
	"testing"
	"time"
)

func TestIssuer_RoundTrip(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	username, err := issuer.Verify(token)
	if err != nil {
		t.Fatalf("Verify failed: %v", err)
	}
	if username != "alice" {
		t.Errorf("expected username alice, got %q", username)
	}
}

func TestIssuer_ExpiredToken(t *testing.T) {
	issuer := NewIssuer("test-secret", -time.Minute)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := issuer.Verify(token); err == nil {
		t.Error("expected expired token to fail verification")
	}
}

func TestIssuer_WrongSecret(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)
	other := NewIssuer("other-secret", time.Minute)

	token, err := issuer.Issue("alice")
	if err != nil {
		t.Fatalf("Issue failed: %v", err)
	}

	if _, err := other.Verify(token); err == nil {
		t.Error("expected token signed with different secret to fail verification")
	}
}

func TestIssuer_GarbageToken(t *testing.T) {
	issuer := NewIssuer("test-secret", time.Minute)

	for _, token := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := issuer.Verify(token); err == nil {
			t.Errorf("expected %q to fail verification", token)
		}
	}
}
