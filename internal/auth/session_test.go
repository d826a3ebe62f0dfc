package auth

import (
	"net/http"
	"testing"
	"time"
)

const testSecret = "session-test-secret"

func TestSessionRoundtrip(t *testing.T) {
	id := Identity{
		Subject: "google-sub-123",
		Email:   "mara.okafor@fabworks.com",
		Name:    "Mara Okafor",
		Picture: "https://example.com/p.png",
	}

	token, err := IssueSession(testSecret, id, time.Hour)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	claims, err := ParseSession(testSecret, token)
	if err != nil {
		t.Fatalf("ParseSession: %v", err)
	}

	got := claims.Identity()
	if got != id {
		t.Errorf("Identity mismatch: got %+v, want %+v", got, id)
	}
}

func TestSessionRejectsWrongSecret(t *testing.T) {
	token, err := IssueSession(testSecret, Identity{Subject: "x", Email: "x@y.com"}, time.Hour)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	if _, err := ParseSession("a-different-secret", token); err == nil {
		t.Error("Expected error for wrong secret")
	}
}

func TestSessionRejectsExpired(t *testing.T) {
	token, err := IssueSession(testSecret, Identity{Subject: "x", Email: "x@y.com"}, -time.Minute)
	if err != nil {
		t.Fatalf("IssueSession: %v", err)
	}

	if _, err := ParseSession(testSecret, token); err == nil {
		t.Error("Expected error for expired session")
	}
}

func TestSessionRejectsGarbage(t *testing.T) {
	if _, err := ParseSession(testSecret, "not.a.jwt"); err == nil {
		t.Error("Expected error for malformed token")
	}
}

func TestSessionCookiePolicy(t *testing.T) {
	cookie := SessionCookie("moldline_session", "value", time.Hour, true)
	if !cookie.HttpOnly {
		t.Error("Expected HttpOnly cookie")
	}
	if cookie.SameSite != http.SameSiteLaxMode {
		t.Error("Expected SameSite=Lax")
	}
	if !cookie.Secure {
		t.Error("Expected Secure flag to carry through")
	}
	if cookie.MaxAge != 3600 {
		t.Errorf("Expected MaxAge 3600, got %d", cookie.MaxAge)
	}

	expired := ExpiredSessionCookie("moldline_session", false)
	if expired.MaxAge >= 0 {
		t.Errorf("Expected negative MaxAge, got %d", expired.MaxAge)
	}
	if expired.Value != "" {
		t.Error("Expected empty value on expired cookie")
	}
}
