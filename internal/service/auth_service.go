package service

import (
	"errors"
	"time"

	"github.com/energy-data-api/internal/config"
	"github.com/energy-data-api/internal/models"
	"github.com/energy-data-api/internal/repository"
	"github.com/energy-data-api/pkg/crypto"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("incorrect email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("admin access required")
)

// UserStore is the persistence surface AuthService depends on
type UserStore interface {
	Create(user *models.User) error
	GetByEmail(email string) (*models.User, error)
	ListEmails() ([]string, error)
}

// AuthService handles registration, login and token verification
type AuthService struct {
	users     UserStore
	jwtConfig config.JWTConfig
	admins    []string
}

// NewAuthService creates a new AuthService
func NewAuthService(users UserStore, jwtConfig config.JWTConfig, admins []string) *AuthService {
	return &AuthService{
		users:     users,
		jwtConfig: jwtConfig,
		admins:    admins,
	}
}

// RegisterRequest represents the registration request
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginRequest represents the login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse represents the issued-token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Register creates a new user with a hashed password. No token is issued
// on registration. The duplicate check rides on the storage uniqueness
// constraint, so concurrent registrations of one email yield exactly one
// success.
func (s *AuthService) Register(req *RegisterRequest) error {
	passwordHash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return err
	}

	user := &models.User{
		Email:        req.Email,
		PasswordHash: passwordHash,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

// Login authenticates a user and returns a bearer token with the
// configured access-token TTL. Unknown email and wrong password both
// map to ErrInvalidCredentials so the response cannot be used to probe
// which accounts exist.
func (s *AuthService) Login(req *LoginRequest) (*TokenResponse, error) {
	user, err := s.users.GetByEmail(req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !crypto.CheckPassword(req.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	token, err := s.IssueToken(user.Email, time.Duration(s.jwtConfig.AccessExpireMinutes)*time.Minute)
	if err != nil {
		return nil, err
	}

	return &TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
	}, nil
}

// IssueToken signs an HS256 token for the subject. A non-positive ttl
// falls back to the configured default lifetime.
func (s *AuthService) IssueToken(subject string, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = time.Duration(s.jwtConfig.DefaultExpireMinutes) * time.Minute
	}

	claims := &jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
		Issuer:    "energy-data-api",
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtConfig.Secret))
}

// VerifyToken validates a token and returns its subject. Malformed
// encoding, signature mismatch and expiry (checked against the current
// time) all come back as ErrInvalidToken.
func (s *AuthService) VerifyToken(tokenString string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwt.RegisteredClaims{}, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.jwtConfig.Secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*jwt.RegisteredClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

// GetUserByEmail resolves a token subject to the stored user
func (s *AuthService) GetUserByEmail(email string) (*models.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ListEmails returns every registered email. Only subjects on the
// configured admin list may call it; any-valid-token access would let
// every user enumerate all accounts.
func (s *AuthService) ListEmails(subject string) ([]string, error) {
	if _, err := s.GetUserByEmail(subject); err != nil {
		return nil, err
	}
	if !s.isAdmin(subject) {
		return nil, ErrForbidden
	}
	return s.users.ListEmails()
}

func (s *AuthService) isAdmin(email string) bool {
	for _, a := range s.admins {
		if a == email {
			return true
		}
	}
	return false
}
