package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"trident/internal/domain/models"
)

// signToken builds a real JWT for tests. The signature key is irrelevant
// because the client never verifies it.
func signToken(t *testing.T, claims models.TokenClaims) string {
	t.Helper()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return token
}

func TestParseClaims(t *testing.T) {
	t.Run("reads subject and email", func(t *testing.T) {
		token := signToken(t, models.TokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   "user-1",
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
			Email: "dev@example.com",
		})

		claims, err := ParseClaims(token)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if claims.GetUserID() != "user-1" {
			t.Errorf("expected user 'user-1', got %q", claims.GetUserID())
		}
		if claims.Email != "dev@example.com" {
			t.Errorf("expected email 'dev@example.com', got %q", claims.Email)
		}
	})

	t.Run("rejects opaque tokens", func(t *testing.T) {
		if _, err := ParseClaims("not-a-jwt"); err == nil {
			t.Fatal("expected error for opaque token")
		}
	})
}

func TestExpired(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{
			name: "expired token",
			token: signToken(t, models.TokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(-time.Minute))},
			}),
			want: true,
		},
		{
			name: "live token",
			token: signToken(t, models.TokenClaims{
				RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour))},
			}),
			want: false,
		},
		{
			name:  "token without expiry",
			token: signToken(t, models.TokenClaims{}),
			want:  false,
		},
		{
			name:  "opaque token is left to the backend",
			token: "opaque-api-key",
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Expired(tt.token, now); got != tt.want {
				t.Errorf("expected Expired=%v, got %v", tt.want, got)
			}
		})
	}
}

func TestStaticProvider(t *testing.T) {
	t.Run("returns the fixed token", func(t *testing.T) {
		token, ok := StaticProvider("token-1").Token()
		if !ok {
			t.Fatal("expected ok for a non-empty token")
		}
		if token != "token-1" {
			t.Errorf("expected 'token-1', got %q", token)
		}
	})

	t.Run("empty means no credential", func(t *testing.T) {
		if _, ok := StaticProvider("").Token(); ok {
			t.Error("expected ok=false for the empty token")
		}
	})
}
