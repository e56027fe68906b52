package auth

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/quantasec/pqscan/internal/database"
	"github.com/quantasec/pqscan/internal/database/repositories"
	"github.com/quantasec/pqscan/internal/models"
)

// Service-level errors
var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserInactive       = errors.New("user account is inactive")
	ErrEmailTaken         = errors.New("email is already registered")
)

// Service handles user registration and login
type Service struct {
	db        database.Database
	jwt       *JWTService
	passwords *PasswordService
	logger    *logrus.Logger
}

// NewService creates a new auth service
func NewService(db database.Database, jwt *JWTService, passwords *PasswordService, logger *logrus.Logger) *Service {
	return &Service{
		db:        db,
		jwt:       jwt,
		passwords: passwords,
		logger:    logger,
	}
}

// Register creates a new user account with a hashed password
func (s *Service) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	hash, err := s.passwords.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:    email,
		Password: hash,
		Name:     name,
		Role:     models.RoleUser,
		Active:   true,
	}

	store := repositories.NewUserRepository(s.db.DB())
	if err := store.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateName) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.WithField("user_id", user.ID).Info("User registered")
	return user, nil
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords return the same error so the endpoint does not leak which
// accounts exist.
func (s *Service) Login(ctx context.Context, email, password string) (*models.LoginResponse, error) {
	store := repositories.NewUserRepository(s.db.DB())

	user, err := store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.passwords.CheckPassword(password, user.Password) {
		return nil, ErrInvalidCredentials
	}
	if !user.Active {
		return nil, ErrUserInactive
	}

	token, expiresAt, err := s.jwt.GenerateToken(user)
	if err != nil {
		return nil, err
	}

	if err := store.UpdateLastLogin(ctx, user.ID, time.Now()); err != nil {
		// Login still succeeded; the marker is informational.
		s.logger.WithError(err).Warn("Failed to record last login")
	}

	return &models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      user,
	}, nil
}
