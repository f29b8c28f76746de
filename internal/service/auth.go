package service

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/contact-finder/internal/auth"
	"github.com/octobees/contact-finder/internal/dto"
)

// ErrInvalidCredentials is returned for any failed login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// AuthService validates the operator account and issues admin tokens.
type AuthService struct {
	email        string
	passwordHash []byte
	jwt          *auth.JWTManager
}

// NewAuthService constructs an AuthService for the configured operator.
func NewAuthService(email, passwordHash string, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{
		email:        strings.ToLower(strings.TrimSpace(email)),
		passwordHash: []byte(passwordHash),
		jwt:          jwtManager,
	}
}

// Login validates credentials and returns a bearer token.
func (s *AuthService) Login(email, password string) (dto.LoginResponse, error) {
	if email == "" || password == "" {
		return dto.LoginResponse{}, errors.New("email and password must not be empty")
	}
	if s.email == "" || len(s.passwordHash) == 0 {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}
	if strings.ToLower(strings.TrimSpace(email)) != s.email {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return dto.LoginResponse{}, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(s.email, auth.RoleAdmin)
	if err != nil {
		return dto.LoginResponse{}, err
	}
	return dto.LoginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.jwt.TTL().Seconds()),
	}, nil
}
