package security

import (
	"crypto/tls"
	"errors"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("correct horse")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == "correct horse" || !strings.HasPrefix(hash, "$2") {
		t.Errorf("HashPassword returned %q, want a bcrypt hash", hash)
	}
	if !CheckPassword(hash, "correct horse") {
		t.Error("CheckPassword rejected the right password")
	}
	if CheckPassword(hash, "wrong horse") {
		t.Error("CheckPassword accepted the wrong password")
	}

	again, _ := HashPassword("correct horse")
	if again == hash {
		t.Error("Hashes of the same password should be salted differently")
	}
}

func TestTokenManager(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	m := NewTokenManager("test-secret")
	m.now = func() time.Time { return now }

	tok, err := m.Sign("sess-1", "user-1", "parent", now.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("Sign failed: %v", err)
	}

	t.Run("round trip", func(t *testing.T) {
		claims, err := m.Parse(tok)
		if err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if claims.SessionID != "sess-1" || claims.UserID != "user-1" || claims.Role != "parent" {
			t.Errorf("Unexpected claims: %+v", claims)
		}
	})

	t.Run("wrong secret", func(t *testing.T) {
		other := NewTokenManager("other-secret")
		other.now = m.now
		if _, err := other.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Parse with wrong secret = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("expired", func(t *testing.T) {
		late := NewTokenManager("test-secret")
		late.now = func() time.Time { return now.Add(9 * time.Hour) }
		if _, err := late.Parse(tok); !errors.Is(err, ErrInvalidToken) {
			t.Errorf("Parse after expiry = %v, want ErrInvalidToken", err)
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := m.Parse("not-a-token"); err == nil {
			t.Error("Parse accepted garbage")
		}
	})
}

func TestCSRFGenerator(t *testing.T) {
	g := NewCSRFGenerator("csrf-secret")

	token, err := g.GenerateToken("sess-1")
	if err != nil {
		t.Fatalf("GenerateToken failed: %v", err)
	}

	tests := []struct {
		name      string
		sessionID string
		token     string
		want      bool
	}{
		{"matching token", "sess-1", token, true},
		{"other session", "sess-2", token, false},
		{"empty token", "sess-1", "", false},
		{"empty session", "", token, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := g.ValidateToken(tt.sessionID, tt.token); got != tt.want {
				t.Errorf("ValidateToken() = %v, want %v", got, tt.want)
			}
		})
	}

	if _, err := g.GenerateToken(""); err == nil {
		t.Error("GenerateToken should reject an empty session ID")
	}
}

func TestRateLimiter(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(2, time.Minute)
	rl.now = func() time.Time { return now }

	if !rl.Allow("1.2.3.4") || !rl.Allow("1.2.3.4") {
		t.Fatal("First two requests should be allowed")
	}
	if rl.Allow("1.2.3.4") {
		t.Error("Third request within the window should be refused")
	}
	if !rl.Allow("5.6.7.8") {
		t.Error("Other clients have their own budget")
	}

	now = now.Add(time.Minute)
	if !rl.Allow("1.2.3.4") {
		t.Error("Budget should refill after the window")
	}

	now = now.Add(5 * time.Minute)
	rl.Sweep()
	if len(rl.visitors) != 0 {
		t.Errorf("Sweep left %d idle visitors", len(rl.visitors))
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"forwarded chain", map[string]string{"X-Forwarded-For": "10.0.0.1, 10.0.0.2"}, "127.0.0.1:9999", "10.0.0.1"},
		{"real ip", map[string]string{"X-Real-IP": "10.0.0.9"}, "127.0.0.1:9999", "10.0.0.9"},
		{"remote addr", nil, "192.168.1.5:4321", "192.168.1.5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/", nil)
			r.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			if got := GetClientIP(r); got != tt.want {
				t.Errorf("GetClientIP() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTokenCookies(t *testing.T) {
	r := httptest.NewRequest("POST", "/api/auth/login", nil)
	expires := time.Now().Add(time.Hour)

	c := NewTokenCookie(r, "tok", expires)
	if c.Name != TokenCookieName || !c.HttpOnly || c.Secure {
		t.Errorf("Unexpected cookie over plain HTTP: %+v", c)
	}

	r.TLS = &tls.ConnectionState{}
	if !NewTokenCookie(r, "tok", expires).Secure {
		t.Error("Cookie over TLS should be Secure")
	}

	if cleared := ClearTokenCookie(r); cleared.MaxAge != -1 || cleared.Value != "" {
		t.Errorf("ClearTokenCookie() = %+v", cleared)
	}
}
