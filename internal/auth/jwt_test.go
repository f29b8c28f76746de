package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestJWTManager_GenerateAndParse(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)
	token, err := manager.GenerateToken("ops@example.com", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	claims, err := manager.ParseToken(token)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Subject != "ops@example.com" || claims.Email != "ops@example.com" || claims.Role != RoleAdmin {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Issuer != Issuer || claims.ID == "" {
		t.Fatalf("expected issuer and token id, got %+v", claims.RegisteredClaims)
	}

	if _, err := manager.ParseToken(token + "tampered"); err == nil {
		t.Fatalf("expected parse error for tampered token")
	}
}

func TestJWTManager_EmptySecret(t *testing.T) {
	manager := NewJWTManager("", time.Hour)
	if _, err := manager.GenerateToken("ops@example.com", RoleAdmin); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
	if _, err := manager.ParseToken("anything"); err == nil {
		t.Fatalf("expected error when secret is empty")
	}
}

func TestJWTManager_Rejects(t *testing.T) {
	manager := NewJWTManager("secret", time.Hour)

	expired := NewJWTManager("secret", time.Minute)
	expired.now = func() time.Time { return time.Now().Add(-time.Hour) }
	expiredToken, err := expired.GenerateToken("ops@example.com", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	foreign, err := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "someone-else",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		Role: RoleAdmin,
	}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign foreign token: %v", err)
	}

	otherSecret, err := NewJWTManager("other", time.Hour).GenerateToken("ops@example.com", RoleAdmin)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]string{
		"expired":      expiredToken,
		"wrong issuer": foreign,
		"wrong secret": otherSecret,
		"not a jwt":    "abc.def",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := manager.ParseToken(token); err == nil {
				t.Fatalf("expected %s token to be rejected", name)
			}
		})
	}
}
