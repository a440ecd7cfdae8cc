package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func testAuth(t *testing.T) *Authenticator {
	t.Helper()
	a, err := NewAuthenticator("s3cret", "test-signing-key", time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create authenticator: %v", err)
	}
	return a
}

func TestNewAuthenticatorRequiresConfig(t *testing.T) {
	if _, err := NewAuthenticator("", "key", time.Hour, zerolog.Nop()); err == nil {
		t.Error("expected error for empty password")
	}
	if _, err := NewAuthenticator("pw", "", time.Hour, zerolog.Nop()); err == nil {
		t.Error("expected error for empty secret")
	}
}

func TestLoginAndValidate(t *testing.T) {
	a := testAuth(t)

	token, err := a.Login("s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	claims, err := a.ValidateToken(token)
	if err != nil {
		t.Fatalf("validation failed: %v", err)
	}
	if claims.Role != "admin" {
		t.Errorf("expected admin role, got %q", claims.Role)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	a := testAuth(t)
	if _, err := a.Login("wrong"); !errors.Is(err, ErrInvalidPassword) {
		t.Errorf("expected ErrInvalidPassword, got %v", err)
	}
}

func TestValidateGarbageToken(t *testing.T) {
	a := testAuth(t)
	if _, err := a.ValidateToken("not-a-jwt"); !errors.Is(err, ErrInvalidToken) {
		t.Errorf("expected ErrInvalidToken, got %v", err)
	}
}

func TestValidateTokenFromOtherSecret(t *testing.T) {
	a := testAuth(t)
	other, err := NewAuthenticator("s3cret", "different-key", time.Hour, zerolog.Nop())
	if err != nil {
		t.Fatalf("failed to create authenticator: %v", err)
	}

	token, err := other.Login("s3cret")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}

	if _, err := a.ValidateToken(token); err == nil {
		t.Error("expected foreign token to be rejected")
	}
}

func TestMiddleware(t *testing.T) {
	a := testAuth(t)

	var gotClaims *Claims
	handler := a.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = FromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	tests := []struct {
		name       string
		authHeader func() string
		wantStatus int
	}{
		{
			name:       "missing token",
			authHeader: func() string { return "" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "malformed header",
			authHeader: func() string { return "Basic abc" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "invalid token",
			authHeader: func() string { return "Bearer garbage" },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name: "valid token",
			authHeader: func() string {
				token, err := a.Login("s3cret")
				if err != nil {
					t.Fatalf("login failed: %v", err)
				}
				return "Bearer " + token
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin/months", nil)
			if h := tt.authHeader(); h != "" {
				req.Header.Set("Authorization", h)
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, rec.Code)
			}
		})
	}

	if gotClaims == nil || gotClaims.Role != "admin" {
		t.Errorf("expected claims in context, got %+v", gotClaims)
	}
}
