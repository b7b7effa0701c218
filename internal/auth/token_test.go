package auth

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "test-secret-at-least-16-chars"

func newTestTokenService(t *testing.T) *TokenService {
	t.Helper()
	ts, err := NewTokenService(testSecret)
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}
	return ts
}

func TestNewTokenService_RejectsShortSecret(t *testing.T) {
	if _, err := NewTokenService("short"); err == nil {
		t.Fatal("NewTokenService() should reject a secret under 16 characters")
	}
}

func TestGenerateAndValidate_Roundtrip(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("session-abc123", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if token == "" {
		t.Fatal("Generate() returned an empty token")
	}

	sessionID, err := ts.Validate(token)
	if err != nil {
		t.Fatalf("Validate() error = %v", err)
	}
	if sessionID != "session-abc123" {
		t.Errorf("Validate() = %q, want %q", sessionID, "session-abc123")
	}
}

func TestValidate_RejectsTamperedToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("session-abc123", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	// Flip a character in the payload segment
	parts := strings.Split(token, ".")
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	tampered := parts[0] + "." + string(payload) + "." + parts[2]

	if _, err := ts.Validate(tampered); err == nil {
		t.Fatal("Validate() should reject a tampered token")
	}
}

func TestValidate_RejectsWrongSecret(t *testing.T) {
	ts := newTestTokenService(t)

	other, err := NewTokenService("another-secret-16-chars-long")
	if err != nil {
		t.Fatalf("NewTokenService() error = %v", err)
	}

	token, err := other.Generate("session-abc123", time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject a token signed with a different secret")
	}
}

func TestValidate_RejectsExpiredToken(t *testing.T) {
	ts := newTestTokenService(t)

	token, err := ts.Generate("session-abc123", time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if _, err := ts.Validate(token); err == nil {
		t.Fatal("Validate() should reject an expired token")
	}
}

func TestValidate_RejectsGarbage(t *testing.T) {
	ts := newTestTokenService(t)

	for _, input := range []string{"", "42", "not.a.token", "a.b"} {
		if _, err := ts.Validate(input); err == nil {
			t.Errorf("Validate(%q) should fail", input)
		}
	}
}
