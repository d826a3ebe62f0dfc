package auth

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func testGoogle() *Google {
	return NewGoogle(
		"client-id", "client-secret",
		"http://localhost:8080/auth/google/callback",
		testSecret, "moldline_session",
		time.Hour, false, zap.NewNop(),
	)
}

func testRouter(g *Google) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/auth/google", g.Login)
	r.GET("/auth/google/callback", g.Callback)
	r.GET("/auth/logout", g.Logout)
	return r
}

func TestGoogleLoginRedirectsWithSignedState(t *testing.T) {
	g := testGoogle()
	r := testRouter(g)

	req := httptest.NewRequest("GET", "/auth/google", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("Expected 307, got %d", w.Code)
	}

	location, err := url.Parse(w.Header().Get("Location"))
	if err != nil {
		t.Fatalf("Bad Location header: %v", err)
	}
	if !strings.Contains(location.Host, "google.com") {
		t.Errorf("Expected redirect to Google, got %s", location.Host)
	}

	state := location.Query().Get("state")
	if state == "" {
		t.Fatal("Expected state parameter")
	}
	if err := g.verifyState(state); err != nil {
		t.Errorf("Issued state failed verification: %v", err)
	}
}

func TestGoogleCallbackRejectsBadState(t *testing.T) {
	g := testGoogle()
	r := testRouter(g)

	for _, state := range []string{"", "tampered"} {
		req := httptest.NewRequest("GET", "/auth/google/callback?state="+state+"&code=abc", nil)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if w.Code != http.StatusTemporaryRedirect {
			t.Fatalf("state=%q: expected 307, got %d", state, w.Code)
		}
		if loc := w.Header().Get("Location"); loc != g.FailureURL {
			t.Errorf("state=%q: expected redirect to %s, got %s", state, g.FailureURL, loc)
		}
	}
}

func TestGoogleCallbackRejectsExpiredState(t *testing.T) {
	g := testGoogle()
	g.Now = func() time.Time { return time.Now().Add(-time.Hour) }
	state, err := g.issueState()
	if err != nil {
		t.Fatalf("issueState: %v", err)
	}
	g.Now = time.Now

	if err := g.verifyState(state); err == nil {
		t.Error("Expected expired state to fail verification")
	}
}

func TestGoogleCallbackRequiresCode(t *testing.T) {
	g := testGoogle()
	r := testRouter(g)

	state, err := g.issueState()
	if err != nil {
		t.Fatalf("issueState: %v", err)
	}

	req := httptest.NewRequest("GET", "/auth/google/callback?state="+url.QueryEscape(state), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("Expected 307, got %d", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != g.FailureURL {
		t.Errorf("Expected redirect to %s, got %s", g.FailureURL, loc)
	}
}

func TestGoogleLogoutExpiresCookie(t *testing.T) {
	g := testGoogle()
	r := testRouter(g)

	req := httptest.NewRequest("GET", "/auth/logout", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusTemporaryRedirect {
		t.Fatalf("Expected 307, got %d", w.Code)
	}

	cookies := w.Result().Cookies()
	var found bool
	for _, c := range cookies {
		if c.Name == g.CookieName {
			found = true
			if c.Value != "" || c.MaxAge >= 0 {
				t.Errorf("Expected cleared cookie, got value=%q maxAge=%d", c.Value, c.MaxAge)
			}
		}
	}
	if !found {
		t.Error("Expected session cookie to be cleared")
	}
}
