package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/foodgram/internal/config"
	"github.com/mrlokans/foodgram/internal/entities"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user with this email or username already exists")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("unable to log in with provided credentials")
	ErrInvalidRole        = errors.New("invalid role")
	ErrEmailRequired      = errors.New("email is required")
	ErrUsernameRequired   = errors.New("username is required")
	ErrAccountLocked      = errors.New("account is locked due to too many failed login attempts")
)

// NewUser holds the fields needed to register a user.
type NewUser struct {
	Email     string
	Username  string
	FirstName string
	LastName  string
	Password  string
	Role      entities.UserRole
}

// Service handles credentials: registration, login, API tokens and
// password changes.
type Service struct {
	db     *gorm.DB
	config config.Auth
	now    func() time.Time
}

// NewService creates a new authentication service.
func NewService(db *gorm.DB, cfg config.Auth) *Service {
	return &Service{
		db:     db,
		config: cfg,
		now:    time.Now,
	}
}

func (s *Service) minPasswordLength() int {
	if s.config.MinPasswordLength > 0 {
		return s.config.MinPasswordLength
	}
	return DefaultMinPasswordLength
}

// CreateUser registers a user with a bcrypt-hashed password.
func (s *Service) CreateUser(ctx context.Context, in NewUser) (*entities.User, error) {
	if in.Email == "" {
		return nil, ErrEmailRequired
	}
	if in.Username == "" {
		return nil, ErrUsernameRequired
	}
	if in.Role == "" {
		in.Role = entities.UserRoleUser
	}
	switch in.Role {
	case entities.UserRoleUser, entities.UserRoleAdmin:
	default:
		return nil, ErrInvalidRole
	}
	if err := ValidatePassword(in.Password, s.minPasswordLength()); err != nil {
		return nil, err
	}

	db := s.db.WithContext(ctx)

	var existing int64
	err := db.Model(&entities.User{}).
		Where("LOWER(email) = LOWER(?) OR username = ?", in.Email, in.Username).
		Count(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing > 0 {
		return nil, ErrUserExists
	}

	passwordHash, err := HashPassword(in.Password, s.config.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entities.User{
		Email:        in.Email,
		Username:     in.Username,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		PasswordHash: passwordHash,
		Role:         in.Role,
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// Authenticate checks an email/password pair. Repeated failures lock the
// account for the configured lockout duration.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*entities.User, error) {
	db := s.db.WithContext(ctx)

	var user entities.User
	err := db.Where("LOWER(email) = LOWER(?)", email).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if user.IsLocked(s.now()) {
		return nil, ErrAccountLocked
	}

	if err := CheckPassword(password, user.PasswordHash); err != nil {
		if errors.Is(err, ErrInvalidPassword) {
			s.recordFailedLogin(ctx, &user)
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if user.FailedLoginCount > 0 || user.LockedUntil != nil {
		db.Model(&user).Updates(map[string]any{
			"failed_login_count": 0,
			"locked_until":       nil,
		})
		user.FailedLoginCount = 0
		user.LockedUntil = nil
	}

	return &user, nil
}

// recordFailedLogin increments the failed login counter and locks the account if threshold reached.
func (s *Service) recordFailedLogin(ctx context.Context, user *entities.User) {
	user.FailedLoginCount++

	updates := map[string]any{
		"failed_login_count": user.FailedLoginCount,
	}

	maxAttempts := s.config.MaxLoginAttempts
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if user.FailedLoginCount >= maxAttempts {
		lockoutDuration := s.config.LockoutDuration
		if lockoutDuration == 0 {
			lockoutDuration = 30 * time.Minute
		}
		updates["locked_until"] = s.now().Add(lockoutDuration)
		updates["failed_login_count"] = 0
	}

	s.db.WithContext(ctx).Model(user).Updates(updates)
}

// GetUserByID retrieves a user by their ID.
func (s *Service) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := s.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ValidateToken checks a plaintext API token and returns its owner.
func (s *Service) ValidateToken(ctx context.Context, token string) (*entities.User, error) {
	if token == "" {
		return nil, ErrInvalidToken
	}

	var user entities.User
	err := s.db.WithContext(ctx).Where("token_hash = ?", HashToken(token)).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidToken
		}
		return nil, err
	}

	if s.config.TokenExpiry > 0 && user.TokenCreatedAt != nil {
		if s.now().Sub(*user.TokenCreatedAt) > s.config.TokenExpiry {
			return nil, ErrTokenExpired
		}
	}
	return &user, nil
}

// GenerateToken issues a new API token for a user, replacing any previous
// one. Only the hash is stored; the plaintext is returned once.
func (s *Service) GenerateToken(ctx context.Context, userID uint) (string, error) {
	plaintext, hash, err := GenerateAPIToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}

	result := s.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"token_hash":       hash,
		"token_created_at": s.now(),
	})
	if result.Error != nil {
		return "", fmt.Errorf("failed to save token: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return "", ErrUserNotFound
	}
	return plaintext, nil
}

// RevokeToken removes a user's API token.
func (s *Service) RevokeToken(ctx context.Context, userID uint) error {
	result := s.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", userID).Updates(map[string]any{
		"token_hash":       "",
		"token_created_at": nil,
	})
	if result.Error != nil {
		return fmt.Errorf("failed to revoke token: %w", result.Error)
	}
	return nil
}

// PurgeExpiredTokens clears tokens older than the configured expiry and
// returns how many were removed. Without an expiry nothing is purged.
func (s *Service) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	if s.config.TokenExpiry <= 0 {
		return 0, nil
	}
	cutoff := s.now().Add(-s.config.TokenExpiry)
	result := s.db.WithContext(ctx).Model(&entities.User{}).
		Where("token_hash <> '' AND token_created_at < ?", cutoff).
		Updates(map[string]any{
			"token_hash":       "",
			"token_created_at": nil,
		})
	return result.RowsAffected, result.Error
}

// ChangePassword replaces the password after verifying the current one.
// A wrong current password yields ErrInvalidPassword.
func (s *Service) ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := CheckPassword(currentPassword, user.PasswordHash); err != nil {
		return err
	}
	if err := ValidatePassword(newPassword, s.minPasswordLength()); err != nil {
		return err
	}

	newHash, err := HashPassword(newPassword, s.config.BcryptCost)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).Model(user).Update("password_hash", newHash).Error
}

// HasUsers returns true if any users exist in the database.
func (s *Service) HasUsers(ctx context.Context) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&entities.User{}).Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
