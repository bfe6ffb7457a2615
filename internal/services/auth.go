package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/allenwoods/naive-coreterra/internal/config"
	"github.com/allenwoods/naive-coreterra/internal/repository"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrInvalidToken       = errors.New("could not validate credentials")
)

type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

type Claims struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

func (claims Claims) Identity() Identity {
	return Identity{UserID: claims.UserID, Username: claims.Username}
}

type AuthService struct {
	credentialRepo repository.CredentialRepository
	secret         []byte
	tokenTTL       time.Duration
	now            func() time.Time
}

func NewAuthService(cfg config.Config, credentialRepo repository.CredentialRepository) (*AuthService, error) {
	if cfg.JWTSecret == "" {
		return nil, errors.New("jwt secret is required")
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.DefaultTokenTTL
	}
	return &AuthService{
		credentialRepo: credentialRepo,
		secret:         []byte(cfg.JWTSecret),
		tokenTTL:       ttl,
		now:            time.Now,
	}, nil
}

// Authenticate checks password against the stored credential. Credentials
// carry either a bcrypt password_hash or, in bootstrap data, a plaintext
// password.
func (service *AuthService) Authenticate(ctx context.Context, username, password string) (Identity, error) {
	credential, err := service.credentialRepo.FindByUsername(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return Identity{}, ErrInvalidCredentials
	}
	if err != nil {
		return Identity{}, fmt.Errorf("looking up credential: %w", err)
	}

	switch {
	case credential.PasswordHash != "":
		if err := bcrypt.CompareHashAndPassword([]byte(credential.PasswordHash), []byte(password)); err != nil {
			return Identity{}, ErrInvalidCredentials
		}
	case credential.Password != "":
		if subtle.ConstantTimeCompare([]byte(credential.Password), []byte(password)) != 1 {
			return Identity{}, ErrInvalidCredentials
		}
	default:
		slog.Warn("credential has no password", "username", username)
		return Identity{}, ErrInvalidCredentials
	}

	return Identity{UserID: credential.UserID, Username: credential.Username}, nil
}

func (service *AuthService) IssueToken(identity Identity) (string, error) {
	now := service.now()
	claims := Claims{
		UserID:   identity.UserID,
		Username: identity.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(identity.UserID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(service.tokenTTL)),
			ID:        uuid.New().String(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(service.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// VerifyToken returns ErrInvalidToken for every kind of failure so callers
// cannot leak why a token was rejected.
func (service *AuthService) VerifyToken(tokenString string) (Claims, error) {
	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims,
		func(token *jwt.Token) (any, error) {
			return service.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(service.now),
	)
	if err != nil || !token.Valid {
		slog.Debug("rejected token", "error", err)
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (service *AuthService) TokenTTL() time.Duration {
	return service.tokenTTL
}

func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}
