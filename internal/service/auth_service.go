package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/stemsi/siakad-backend/internal/config"
	"github.com/stemsi/siakad-backend/internal/model"
	"github.com/stemsi/siakad-backend/internal/repository"
	"github.com/stemsi/siakad-backend/internal/session"
)

// Common auth errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionInvalidated = errors.New("session invalidated")
)

// Claims extends JWT standard claims with app-specific fields.
type Claims struct {
	jwt.RegisteredClaims
	UserID int        `json:"user_id"`
	Role   model.Role `json:"role"`
}

// Actor returns the engine identity carried by the token.
func (c *Claims) Actor() Actor {
	return Actor{ID: c.UserID, Role: c.Role}
}

// AuthService handles authentication, JWT, and session management.
type AuthService struct {
	cfg      *config.Config
	users    repository.UserRepository
	sessions session.Registry
	log      zerolog.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(cfg *config.Config, store repository.Store, sessions session.Registry, log zerolog.Logger) *AuthService {
	return &AuthService{
		cfg:      cfg,
		users:    store.Users(),
		sessions: sessions,
		log:      log.With().Str("component", "auth_service").Logger(),
	}
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	return string(hash), err
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func (s *AuthService) CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

// Login verifies the credentials and issues a token with a fresh session.
// Every login gets its own session, so several devices can stay signed in.
func (s *AuthService) Login(ctx context.Context, nim, password string) (string, *model.User, error) {
	user, err := s.users.GetByNIM(ctx, nim)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil, ErrInvalidCredentials
		}
		return "", nil, fmt.Errorf("lookup user: %w", err)
	}
	if err := s.CheckPassword(user.PasswordHash, password); err != nil {
		return "", nil, err
	}

	token, err := s.GenerateToken(ctx, user)
	if err != nil {
		return "", nil, err
	}

	s.log.Info().Int("user_id", user.ID).Str("role", string(user.Role)).Msg("user logged in")
	return token, user, nil
}

// GenerateToken signs a JWT for user and registers its session.
func (s *AuthService) GenerateToken(ctx context.Context, user *model.User) (string, error) {
	jti := uuid.New().String()
	now := time.Now()

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        jti,
			Subject:   strconv.Itoa(user.ID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTExpiry)),
		},
		UserID: user.ID,
		Role:   user.Role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	// Session lives exactly as long as the token.
	if err := s.sessions.Register(ctx, user.ID, jti, s.cfg.JWTExpiry); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}

	return signed, nil
}

// ValidateToken parses and validates a JWT, returning the claims.
func (s *AuthService) ValidateToken(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(s.cfg.JWTSecret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || !claims.Role.Valid() {
		return nil, errors.New("invalid token claims")
	}

	return claims, nil
}

// ValidateSession checks that the token's session has not been revoked.
func (s *AuthService) ValidateSession(ctx context.Context, claims *Claims) error {
	active, err := s.sessions.Active(ctx, claims.UserID, claims.ID)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !active {
		return ErrSessionInvalidated
	}
	return nil
}

// Logout ends the session of one token.
func (s *AuthService) Logout(ctx context.Context, claims *Claims) error {
	return s.sessions.Revoke(ctx, claims.UserID, claims.ID)
}

// RevokeAll ends every session of a user.
func (s *AuthService) RevokeAll(ctx context.Context, userID int) error {
	return s.sessions.RevokeAll(ctx, userID)
}
