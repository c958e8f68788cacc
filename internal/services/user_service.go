package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/isdelr/ender-crm/internal/database"
	"github.com/isdelr/ender-crm/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user account services.
type UserServiceProvider interface {
	GetUserByID(ctx context.Context, id string) (models.User, error)
	UsernameExists(ctx context.Context, username string) (bool, error)
	CreateUser(ctx context.Context, username, email, password string) (models.User, error)
	AuthenticateUser(ctx context.Context, username, password string) (models.User, error)
}

// UserService provides business logic for user accounts.
type UserService struct {
	db   *database.DB
	cost int
}

// NewUserService creates a new UserService.
func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db, cost: bcrypt.DefaultCost}
}

// WithHashCost overrides the bcrypt cost, mostly so tests stay fast.
func (s *UserService) WithHashCost(cost int) *UserService {
	s.cost = cost
	return s
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(ctx context.Context, id string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx, s.db.Rebind("SELECT id, username, email, created_at FROM users WHERE id = ?"), id)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user with ID %s: %w", id, ErrUserNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// getUserByUsername retrieves a single user by username, including the password hash.
func (s *UserService) getUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	row := s.db.QueryRowContext(ctx,
		s.db.Rebind("SELECT id, username, email, password_hash, created_at FROM users WHERE username = ?"), username)
	err := row.Scan(&user.ID, &user.Username, &user.Email, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, fmt.Errorf("user %s: %w", username, ErrUserNotFound)
		}
		return models.User{}, err
	}
	return user, nil
}

// UsernameExists reports whether an account with the given username is registered.
func (s *UserService) UsernameExists(ctx context.Context, username string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.db.Rebind("SELECT COUNT(1) FROM users WHERE username = ?"), username).Scan(&n)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// CreateUser creates a new user, hashing their password.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (models.User, error) {
	exists, err := s.UsernameExists(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if exists {
		return models.User{}, ErrUsernameTaken
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:           uuid.New().String(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hashedPassword),
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
	}

	_, err = s.db.ExecContext(ctx,
		s.db.Rebind("INSERT INTO users(id, username, email, password_hash, created_at) VALUES(?, ?, ?, ?, ?)"),
		user.ID, user.Username, user.Email, user.PasswordHash, user.CreatedAt,
	)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to insert user: %w", err)
	}

	// Return user without password hash
	user.PasswordHash = ""
	return user, nil
}

// AuthenticateUser verifies a user's credentials.
func (s *UserService) AuthenticateUser(ctx context.Context, username, password string) (models.User, error) {
	user, err := s.getUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return models.User{}, ErrInvalidCredentials
		}
		return models.User{}, err
	}

	err = bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password))
	if err != nil {
		return models.User{}, ErrInvalidCredentials
	}

	user.PasswordHash = ""
	return user, nil
}
