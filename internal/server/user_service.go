package server

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/jonathan/flower-resume/internal/config"
	"github.com/jonathan/flower-resume/internal/db"
	"github.com/jonathan/flower-resume/internal/types"
)

// UserStore is the account persistence the user service needs. *db.DB implements it.
type UserStore interface {
	CreateUser(ctx context.Context, name, email, passwordHash string) (uuid.UUID, error)
	GetUser(ctx context.Context, id uuid.UUID) (*db.User, error)
	GetUserByEmail(ctx context.Context, email string) (*db.User, error)
	CheckEmailExists(ctx context.Context, email string) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	UpdateUserName(ctx context.Context, id uuid.UUID, name string) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

var _ UserStore = (*db.DB)(nil)

// UserService provides business logic for user authentication operations
type UserService struct {
	store          UserStore
	passwordConfig *config.PasswordConfig
	// dummyHash is compared against on unknown emails so that a miss costs
	// the same bcrypt work as a wrong password.
	dummyHash func() string
	verify    func(password, hash string) bool
}

// NewUserService creates a new UserService with the given dependencies
func NewUserService(store UserStore, passwordConfig *config.PasswordConfig) *UserService {
	return &UserService{
		store:          store,
		passwordConfig: passwordConfig,
		dummyHash: sync.OnceValue(func() string {
			hash, err := passwordConfig.HashPassword(uuid.NewString())
			if err != nil {
				return ""
			}
			return hash
		}),
		verify: passwordConfig.VerifyPassword,
	}
}

// convertDBUserToTypesUser converts db.User to types.User, excluding password hash
func convertDBUserToTypesUser(dbUser *db.User) *types.User {
	if dbUser == nil {
		return nil
	}
	return &types.User{
		ID:        dbUser.ID,
		Name:      dbUser.Name,
		Email:     dbUser.Email,
		CreatedAt: dbUser.CreatedAt,
		UpdatedAt: dbUser.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates a new user with password authentication
func (s *UserService) Register(ctx context.Context, req *types.RegisterRequest) (*types.User, error) {
	email := normalizeEmail(req.Email)

	exists, err := s.store.CheckEmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email existence: %w", err)
	}
	if exists {
		return nil, &ErrEmailAlreadyExists{Email: email}
	}

	passwordHash, err := s.passwordConfig.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// A concurrent registration can still win between the check and the insert.
	userID, err := s.store.CreateUser(ctx, strings.TrimSpace(req.Name), email, passwordHash)
	if err != nil {
		if errors.Is(err, db.ErrDuplicateEmail) {
			return nil, &ErrEmailAlreadyExists{Email: email}
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	dbUser, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve created user: %w", err)
	}
	if dbUser == nil {
		return nil, fmt.Errorf("created user not found: %s", userID)
	}

	return convertDBUserToTypesUser(dbUser), nil
}

// Login authenticates a user and returns user data
func (s *UserService) Login(ctx context.Context, req *types.LoginRequest) (*types.User, error) {
	dbUser, err := s.store.GetUserByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	// Unknown email and wrong password are indistinguishable to the caller,
	// in the response and in timing.
	if dbUser == nil || !dbUser.PasswordSet {
		s.verify(req.Password, s.dummyHash())
		return nil, &ErrInvalidCredentials{}
	}
	if !s.verify(req.Password, dbUser.PasswordHash) {
		return nil, &ErrInvalidCredentials{}
	}

	return convertDBUserToTypesUser(dbUser), nil
}

// GetUser returns the public view of an account.
func (s *UserService) GetUser(ctx context.Context, userID uuid.UUID) (*types.User, error) {
	dbUser, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return nil, &ErrUserNotFound{UserID: userID}
	}
	return convertDBUserToTypesUser(dbUser), nil
}

// UpdatePassword updates a user's password
func (s *UserService) UpdatePassword(ctx context.Context, userID uuid.UUID, currentPassword, newPassword string) error {
	dbUser, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return &ErrUserNotFound{UserID: userID}
	}

	if !s.verify(currentPassword, dbUser.PasswordHash) {
		return &ErrPasswordMismatch{}
	}

	newPasswordHash, err := s.passwordConfig.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash new password: %w", err)
	}

	if err := s.store.UpdatePassword(ctx, userID, newPasswordHash); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrUserNotFound{UserID: userID}
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	return nil
}

// Rename changes the display name of an account.
func (s *UserService) Rename(ctx context.Context, userID uuid.UUID, name string) (*types.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ErrValidation{Field: "name", Message: "is required"}
	}
	if err := s.store.UpdateUserName(ctx, userID, name); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, &ErrUserNotFound{UserID: userID}
		}
		return nil, fmt.Errorf("failed to rename user: %w", err)
	}
	return s.GetUser(ctx, userID)
}

// DeleteAccount removes an account after re-checking its password. Resumes
// and the profile go with it.
func (s *UserService) DeleteAccount(ctx context.Context, userID uuid.UUID, password string) error {
	dbUser, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if dbUser == nil {
		return &ErrUserNotFound{UserID: userID}
	}
	if !s.verify(password, dbUser.PasswordHash) {
		return &ErrPasswordMismatch{}
	}
	if err := s.store.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return &ErrUserNotFound{UserID: userID}
		}
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}
