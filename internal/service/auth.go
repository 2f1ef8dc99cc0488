package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/leadscout/internal/auth"
)

// ErrInvalidCredentials is returned for an unknown email or a wrong password.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Account is a control panel login configured through the environment.
type Account struct {
	Email        string
	PasswordHash string
	Role         string
}

// LoginResult is returned on a successful login.
type LoginResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Role      string    `json:"role"`
}

// AuthService validates operator credentials and issues tokens.
type AuthService struct {
	accounts map[string]Account
	jwt      *auth.JWTManager
}

// NewAuthService registers accounts; entries without an email or hash are ignored.
func NewAuthService(jwtManager *auth.JWTManager, accounts ...Account) *AuthService {
	byEmail := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		email := strings.ToLower(strings.TrimSpace(a.Email))
		if email == "" || a.PasswordHash == "" {
			continue
		}
		a.Email = email
		byEmail[email] = a
	}
	return &AuthService{accounts: byEmail, jwt: jwtManager}
}

// Enabled reports whether any account can log in.
func (s *AuthService) Enabled() bool {
	return len(s.accounts) > 0
}

// Login validates credentials and returns a signed token.
func (s *AuthService) Login(_ context.Context, email, password string) (LoginResult, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return LoginResult{}, errors.New("email and password must not be empty")
	}

	account, ok := s.accounts[email]
	if !ok {
		return LoginResult{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return LoginResult{}, ErrInvalidCredentials
	}

	token, expires, err := s.jwt.GenerateToken(account.Email, account.Email, account.Role)
	if err != nil {
		return LoginResult{}, err
	}
	return LoginResult{Token: token, ExpiresAt: expires, Role: account.Role}, nil
}
