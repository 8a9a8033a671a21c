package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

// CredentialStore exposes the credential operations required by the auth service.
type CredentialStore interface {
	GetUser(ctx context.Context, id string) (User, error)
	GetUserCredentials(ctx context.Context, username string) (UserCredentials, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string, temporary bool, updatedAt time.Time) error
}

// AuthService verifies credentials and manages password changes.
type AuthService struct {
	credentials       CredentialStore
	verifyPassword    PasswordVerifier
	hashPassword      PasswordHasher
	temporaryPassword string
	now               func() time.Time
	logger            *slog.Logger
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, verify PasswordVerifier, hash PasswordHasher, temporaryPassword string, now func() time.Time) *AuthService {
	return NewAuthServiceWithLogger(credentials, verify, hash, temporaryPassword, now, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a specified logger.
func NewAuthServiceWithLogger(credentials CredentialStore, verify PasswordVerifier, hash PasswordHasher, temporaryPassword string, now func() time.Time, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if hash == nil {
		hash = HashPassword
	}
	if temporaryPassword == "" {
		temporaryPassword = DefaultTemporaryPassword
	}
	if now == nil {
		now = time.Now
	}
	return &AuthService{
		credentials:       credentials,
		verifyPassword:    verify,
		hashPassword:      hash,
		temporaryPassword: temporaryPassword,
		now:               now,
		logger:            defaultLogger(logger),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

// Authenticate validates a username and password pair.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (result AuthenticateResult, err error) {
	if s == nil {
		err = fmt.Errorf("AuthService is nil")
		return
	}
	if s.credentials == nil {
		err = fmt.Errorf("credential store not configured")
		return
	}

	username := strings.TrimSpace(params.Username)
	logger := s.loggerWith(ctx, "Authenticate", "username", username)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "authentication succeeded",
			"user_id", result.User.ID,
			"password_change_required", result.PasswordChangeRequired,
		)
	}()

	if username == "" || params.Password == "" {
		err = ErrInvalidCredentials
		return
	}

	creds, err := s.credentials.GetUserCredentials(ctx, username)
	if err != nil {
		if errors.Is(mapRepoError(err), ErrNotFound) {
			err = ErrInvalidCredentials
			return
		}
		return
	}

	if verr := s.verifyPassword(creds.PasswordHash, params.Password); verr != nil {
		if errors.Is(verr, ErrInvalidCredentials) {
			err = ErrInvalidCredentials
			return
		}
		err = fmt.Errorf("verify password: %w", verr)
		return
	}

	result = AuthenticateResult{
		User:                   creds.User,
		PasswordChangeRequired: creds.User.TempPassword,
	}
	return
}

// Identify loads the current state of the user behind a session.
func (s *AuthService) Identify(ctx context.Context, userID string) (User, error) {
	if s == nil {
		return User{}, fmt.Errorf("AuthService is nil")
	}
	if s.credentials == nil {
		return User{}, fmt.Errorf("credential store not configured")
	}
	user, err := s.credentials.GetUser(ctx, userID)
	if err != nil {
		err = mapRepoError(err)
		if errors.Is(err, ErrNotFound) {
			return User{}, ErrUnauthorized
		}
		return User{}, err
	}
	return user, nil
}

// ChangePassword replaces the principal's password after applying the password policy.
func (s *AuthService) ChangePassword(ctx context.Context, params ChangePasswordParams) (err error) {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}
	if s.credentials == nil {
		return fmt.Errorf("credential store not configured")
	}
	logger := s.loggerWith(ctx, "ChangePassword", "user_id", params.Principal.UserID)
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "password change failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "password changed")
	}()

	if params.Principal.UserID == "" {
		return ErrUnauthorized
	}
	if vErr := validateNewPassword(params.NewPassword, params.ConfirmPassword, s.temporaryPassword); vErr.HasErrors() {
		return vErr
	}

	hash, err := s.hashPassword(params.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return mapRepoError(s.credentials.UpdatePassword(ctx, params.Principal.UserID, hash, false, s.now()))
}
