package service

import (
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/contact-finder/internal/auth"
)

func TestAuthService_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("super-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("unexpected bcrypt error: %v", err)
	}

	tests := map[string]struct {
		email       string
		password    string
		adminEmail  string
		adminHash   string
		expectError error
	}{
		"empty credentials": {
			adminEmail:  "ops@example.com",
			adminHash:   string(hashed),
			expectError: errors.New("email and password must not be empty"),
		},
		"unknown email": {
			email:       "john@example.com",
			password:    "super-secret",
			adminEmail:  "ops@example.com",
			adminHash:   string(hashed),
			expectError: ErrInvalidCredentials,
		},
		"password mismatch": {
			email:       "ops@example.com",
			password:    "wrong",
			adminEmail:  "ops@example.com",
			adminHash:   string(hashed),
			expectError: ErrInvalidCredentials,
		},
		"operator not configured": {
			email:       "ops@example.com",
			password:    "super-secret",
			expectError: ErrInvalidCredentials,
		},
		"success with mixed case email": {
			email:      "Ops@Example.com",
			password:   "super-secret",
			adminEmail: "ops@example.com",
			adminHash:  string(hashed),
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			jwtManager := auth.NewJWTManager("test-secret", time.Hour)
			service := NewAuthService(tt.adminEmail, tt.adminHash, jwtManager)

			resp, err := service.Login(tt.email, tt.password)
			if tt.expectError != nil {
				if err == nil || err.Error() != tt.expectError.Error() {
					t.Fatalf("expected error %v, got %v", tt.expectError, err)
				}
				if resp.AccessToken != "" {
					t.Fatalf("expected empty token on error, got %q", resp.AccessToken)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if resp.TokenType != "Bearer" || resp.ExpiresIn != 3600 {
				t.Fatalf("unexpected token metadata: %+v", resp)
			}
			claims, err := jwtManager.ParseToken(resp.AccessToken)
			if err != nil {
				t.Fatalf("issued token does not parse: %v", err)
			}
			if claims.Role != auth.RoleAdmin || claims.Email != "ops@example.com" {
				t.Fatalf("unexpected claims: %+v", claims)
			}
		})
	}
}
