package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/contact-finder/internal/auth"
	"github.com/octobees/contact-finder/internal/service"
)

func TestAuthHandler_Login(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("super-secret"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	svc := service.NewAuthService("ops@example.com", string(hashed), auth.NewJWTManager("test-secret", time.Hour))

	tests := map[string]struct {
		body       string
		expectCode int
	}{
		"invalid json":        {body: "{", expectCode: http.StatusBadRequest},
		"missing password":    {body: `{"email":"ops@example.com"}`, expectCode: http.StatusBadRequest},
		"wrong password":      {body: `{"email":"ops@example.com","password":"nope"}`, expectCode: http.StatusUnauthorized},
		"success":             {body: `{"email":"ops@example.com","password":"super-secret"}`, expectCode: http.StatusOK},
		"success padded mail": {body: `{"email":"  ops@example.com ","password":"super-secret"}`, expectCode: http.StatusOK},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewBufferString(tt.body))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			if err := NewAuthHandler(svc).Login(c); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if rec.Code != tt.expectCode {
				t.Fatalf("expected %d, got %d: %s", tt.expectCode, rec.Code, rec.Body.String())
			}
			if tt.expectCode != http.StatusOK {
				return
			}

			var payload struct {
				Status string `json:"status"`
				Data   struct {
					AccessToken string `json:"access_token"`
					TokenType   string `json:"token_type"`
				} `json:"data"`
			}
			if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if payload.Data.AccessToken == "" || payload.Data.TokenType != "Bearer" {
				t.Fatalf("expected token in response, got %+v", payload)
			}
		})
	}
}
