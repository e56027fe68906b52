package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/models"
)

// JWT error definitions
var (
	ErrInvalidToken         = errors.New("invalid token")
	ErrExpiredToken         = errors.New("token has expired")
	ErrTokenNotYetValid     = errors.New("token not yet valid")
	ErrInvalidSigningMethod = errors.New("invalid signing method")
	ErrInvalidClaims        = errors.New("invalid token claims")
	ErrMissingKey           = errors.New("signing key is missing")
)

// JWTConfig contains configuration for token generation and validation
type JWTConfig struct {
	// Secret key used for signing tokens
	Secret string

	// TokenTTL defines the lifetime of an issued token
	TokenTTL time.Duration

	// Issuer identifies the principal that issued the token
	Issuer string

	// Audience identifies the recipients the token is intended for
	Audience string
}

// DefaultJWTConfig returns the default JWT configuration
func DefaultJWTConfig() JWTConfig {
	return JWTConfig{
		TokenTTL: time.Hour,
		Issuer:   "pqscan-server",
		Audience: "pqscan-api",
	}
}

// Claims defines the custom claims carried by issued tokens
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// JWTService issues and validates access tokens
type JWTService struct {
	Config JWTConfig
	log    *logrus.Logger
}

// NewJWTService creates a new JWT service with the provided configuration
func NewJWTService(config JWTConfig, log *logrus.Logger) *JWTService {
	if config.Secret == "" {
		log.Warn("JWT secret is empty in config, tokens cannot be issued")
	}
	if config.TokenTTL <= 0 {
		config.TokenTTL = time.Hour
	}
	return &JWTService{
		Config: config,
		log:    log,
	}
}

// GenerateToken issues a signed access token for a user
func (s *JWTService) GenerateToken(user *models.User) (string, time.Time, error) {
	if s.Config.Secret == "" {
		return "", time.Time{}, ErrMissingKey
	}

	now := time.Now()
	expiresAt := now.Add(s.Config.TokenTTL)

	claims := Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    s.Config.Issuer,
			Audience:  jwt.ClaimStrings{s.Config.Audience},
			ID:        uuid.NewString(),
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.Config.Secret))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// ValidateToken parses and verifies an access token, returning its claims
func (s *JWTService) ValidateToken(tokenString string) (*Claims, error) {
	if s.Config.Secret == "" {
		return nil, ErrMissingKey
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidSigningMethod
		}
		return []byte(s.Config.Secret), nil
	},
		jwt.WithIssuer(s.Config.Issuer),
		jwt.WithAudience(s.Config.Audience),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenNotValidYet):
			return nil, ErrTokenNotYetValid
		case errors.Is(err, ErrInvalidSigningMethod):
			return nil, ErrInvalidSigningMethod
		default:
			return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidClaims
	}
	if claims.UserID == "" {
		return nil, ErrInvalidClaims
	}

	return claims, nil
}
