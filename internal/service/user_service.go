package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/bookcircle/bookcircle-api/internal/domain"
	"github.com/bookcircle/bookcircle-api/internal/service/auth"
	"github.com/bookcircle/bookcircle-api/internal/store"
)

// SignUpParams carries the payload of a signup operation.
type SignUpParams struct {
	Username    string
	Email       string
	Password    string
	ImageURL    string
	Description string
}

// UpdateDetailsParams carries the payload of a full profile update.
type UpdateDetailsParams struct {
	UserID      int64
	Username    string
	Email       string
	Password    string
	Description string
}

// UserService provides signup, signin, and profile update operations.
type UserService interface {
	// SignUp registers a new user. The plaintext password is hashed before
	// anything is persisted. Returns store.ErrEmailExists if the email is
	// already taken.
	SignUp(ctx context.Context, params SignUpParams) (*domain.User, error)

	// SignIn authenticates a user by email and password and issues a
	// signed session token. Returns auth.ErrInvalidCredentials when the
	// email is unknown or the password does not match.
	SignIn(ctx context.Context, email, password string) (string, *domain.User, error)

	// GetUser retrieves a user by ID.
	GetUser(ctx context.Context, userID int64) (*domain.User, error)

	// UpdateDetails overwrites all mutable profile fields of an existing
	// user, rehashing the supplied password.
	UpdateDetails(ctx context.Context, params UpdateDetailsParams) error
}

// UserServiceImpl implements the UserService interface.
type UserServiceImpl struct {
	userStore  store.UserStore
	hasher     auth.PasswordHasher
	verifier   auth.PasswordVerifier
	jwtService auth.JWTService
	db         *sql.DB
	logger     *slog.Logger
}

// NewUserService creates a new UserService.
func NewUserService(
	userStore store.UserStore,
	hasher auth.PasswordHasher,
	verifier auth.PasswordVerifier,
	jwtService auth.JWTService,
	db *sql.DB,
	logger *slog.Logger,
) *UserServiceImpl {
	return &UserServiceImpl{
		userStore:  userStore,
		hasher:     hasher,
		verifier:   verifier,
		jwtService: jwtService,
		db:         db,
		logger:     logger.With("component", "user_service"),
	}
}

var _ UserService = (*UserServiceImpl)(nil)

// SignUp registers a new user.
// Input shape validation happens at the API edge before this is called, so
// no hashing work is wasted on malformed payloads.
func (s *UserServiceImpl) SignUp(ctx context.Context, params SignUpParams) (*domain.User, error) {
	user, err := domain.NewUser(
		params.Username,
		params.Email,
		params.Password,
		params.ImageURL,
		params.Description,
	)
	if err != nil {
		s.logger.Debug("signup payload failed domain validation",
			"error", err)
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hashed, err := s.hasher.Hash(user.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("attempted to sign up with existing email")
		} else {
			s.logger.Error("failed to save user", "error", err)
		}
		return nil, err
	}

	s.logger.Info("user signed up", "user_id", user.ID)
	return user, nil
}

// SignIn authenticates a user and issues a session token.
func (s *UserServiceImpl) SignIn(ctx context.Context, email, password string) (string, *domain.User, error) {
	user, err := s.userStore.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("signin attempt for unknown email")
			return "", nil, auth.ErrInvalidCredentials
		}
		s.logger.Error("failed to look up user for signin", "error", err)
		return "", nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := s.verifier.Compare(user.HashedPassword, password); err != nil {
		s.logger.Debug("signin attempt with wrong password", "user_id", user.ID)
		return "", nil, auth.ErrInvalidCredentials
	}

	token, err := s.jwtService.GenerateToken(ctx, user.ID, user.Email)
	if err != nil {
		s.logger.Error("failed to generate token", "error", err, "user_id", user.ID)
		return "", nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.Info("user signed in", "user_id", user.ID)
	return token, user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserServiceImpl) GetUser(ctx context.Context, userID int64) (*domain.User, error) {
	user, err := s.userStore.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			s.logger.Debug("user not found", "user_id", userID)
		} else {
			s.logger.Error("failed to retrieve user", "error", err, "user_id", userID)
		}
		return nil, err
	}
	return user, nil
}

// UpdateDetails overwrites the mutable profile fields of an existing user.
// The password is always rehashed; partial updates are not supported, per
// the full-overwrite contract of the store.
func (s *UserServiceImpl) UpdateDetails(ctx context.Context, params UpdateDetailsParams) error {
	user := &domain.User{
		ID:          params.UserID,
		Username:    params.Username,
		Email:       params.Email,
		Password:    params.Password,
		Description: params.Description,
	}
	if err := user.Validate(); err != nil {
		s.logger.Debug("update payload failed domain validation",
			"error", err,
			"user_id", params.UserID)
		return fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}

	hashed, err := s.hasher.Hash(params.Password)
	if err != nil {
		s.logger.Error("failed to hash password", "error", err)
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.HashedPassword = hashed
	user.Password = ""

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		return s.userStore.WithTx(tx).Update(ctx, user)
	})
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) || errors.Is(err, store.ErrEmailExists) {
			s.logger.Debug("profile update rejected",
				"error", err,
				"user_id", params.UserID)
		} else {
			s.logger.Error("failed to update user",
				"error", err,
				"user_id", params.UserID)
		}
		return err
	}

	s.logger.Info("user details updated", "user_id", params.UserID)
	return nil
}
