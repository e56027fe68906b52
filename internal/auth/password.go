package auth

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Password-related errors
var (
	ErrHashingFailed    = errors.New("failed to hash password")
	ErrEmptyPassword    = errors.New("password cannot be empty")
	ErrPasswordTooShort = errors.New("password is too short")
	ErrPasswordTooLong  = errors.New("password is too long")
)

// PasswordConfig contains configuration for password handling
type PasswordConfig struct {
	// MinLength specifies the minimum required length for passwords
	MinLength int

	// MaxLength specifies the maximum allowed length for passwords
	MaxLength int

	// HashCost specifies the cost parameter for bcrypt
	HashCost int
}

// DefaultPasswordConfig returns the default password configuration
func DefaultPasswordConfig() PasswordConfig {
	return PasswordConfig{
		MinLength: 8,
		MaxLength: 72, // bcrypt limit
		HashCost:  bcrypt.DefaultCost,
	}
}

// PasswordService handles password operations
type PasswordService struct {
	Config PasswordConfig
}

// NewPasswordService creates a new password service with the provided configuration
func NewPasswordService(config PasswordConfig) *PasswordService {
	return &PasswordService{
		Config: config,
	}
}

// HashPassword hashes a password using bcrypt
func (s *PasswordService) HashPassword(password string) (string, error) {
	if err := s.ValidatePassword(password); err != nil {
		return "", err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.Config.HashCost)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrHashingFailed, err)
	}

	return string(hash), nil
}

// CheckPassword verifies if a password matches a hash
func (s *PasswordService) CheckPassword(password, hash string) bool {
	if password == "" || hash == "" {
		return false
	}

	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// ValidatePassword validates a password against the configuration rules
func (s *PasswordService) ValidatePassword(password string) error {
	if password == "" {
		return ErrEmptyPassword
	}

	if len(password) < s.Config.MinLength {
		return fmt.Errorf("%w: minimum length is %d", ErrPasswordTooShort, s.Config.MinLength)
	}

	if len(password) > s.Config.MaxLength {
		return fmt.Errorf("%w: maximum length is %d", ErrPasswordTooLong, s.Config.MaxLength)
	}

	return nil
}
