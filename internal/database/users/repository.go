// Package users provides database operations for user profiles and
// subscriptions between users.
//
// Credential handling (passwords, API tokens, lockout) lives in internal/auth.
//
// # Usage
//
//	repo := users.NewRepository(db)
//	user, err := repo.GetUserByID(ctx, id)
//	err = repo.Subscribe(ctx, followerID, authorID)
package users

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/foodgram/internal/entities"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserExists        = errors.New("user with this email or username already exists")
	ErrSelfSubscription  = errors.New("cannot subscribe to yourself")
	ErrAlreadySubscribed = errors.New("already subscribed to this author")
	ErrNotSubscribed     = errors.New("not subscribed to this author")
)

// Repository handles all user database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new users repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetUserByID retrieves a user by ID.
func (r *Repository) GetUserByID(ctx context.Context, id uint) (*entities.User, error) {
	var user entities.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// ListUsers returns a page of users ordered by ID and the total count.
func (r *Repository) ListUsers(ctx context.Context, limit, offset int) ([]entities.User, int64, error) {
	var users []entities.User
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&entities.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

// ProfileUpdate holds optional profile fields; nil fields are left unchanged.
type ProfileUpdate struct {
	Email     *string
	Username  *string
	FirstName *string
	LastName  *string
	Role      *entities.UserRole
}

// UpdateProfile applies the non-nil fields of update and returns the fresh user.
func (r *Repository) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*entities.User, error) {
	fields := map[string]any{}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.Username != nil {
		fields["username"] = *update.Username
	}
	if update.FirstName != nil {
		fields["first_name"] = *update.FirstName
	}
	if update.LastName != nil {
		fields["last_name"] = *update.LastName
	}
	if update.Role != nil {
		fields["role"] = *update.Role
	}

	if len(fields) > 0 {
		result := r.db.WithContext(ctx).Model(&entities.User{}).Where("id = ?", id).Updates(fields)
		if result.Error != nil {
			if errors.Is(result.Error, gorm.ErrDuplicatedKey) {
				return nil, ErrUserExists
			}
			return nil, fmt.Errorf("failed to update user: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			return nil, ErrUserNotFound
		}
	}

	return r.GetUserByID(ctx, id)
}

// Subscribe makes followerID follow authorID.
func (r *Repository) Subscribe(ctx context.Context, followerID, authorID uint) error {
	if followerID == authorID {
		return ErrSelfSubscription
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&entities.User{}).Where("id = ?", authorID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrUserNotFound
		}

		sub := &entities.Subscription{UserID: followerID, AuthorID: authorID}
		if err := tx.Omit("User", "Author").Create(sub).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrAlreadySubscribed
			}
			return err
		}
		return nil
	})
}

// Unsubscribe removes the subscription of followerID to authorID.
func (r *Repository) Unsubscribe(ctx context.Context, followerID, authorID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND author_id = ?", followerID, authorID).
		Delete(&entities.Subscription{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotSubscribed
	}
	return nil
}

// SubscribedAmong reports which of authorIDs followerID follows.
// An anonymous follower (0) follows nobody.
func (r *Repository) SubscribedAmong(ctx context.Context, followerID uint, authorIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(authorIDs))
	if followerID == 0 || len(authorIDs) == 0 {
		return result, nil
	}

	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.Subscription{}).
		Where("user_id = ? AND author_id IN ?", followerID, authorIDs).
		Pluck("author_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}

// ListSubscriptions returns a page of authors followed by followerID,
// in subscription order, and the total count.
func (r *Repository) ListSubscriptions(ctx context.Context, followerID uint, limit, offset int) ([]entities.User, int64, error) {
	var authors []entities.User
	var total int64

	db := r.db.WithContext(ctx)
	if err := db.Model(&entities.Subscription{}).Where("user_id = ?", followerID).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := db.Model(&entities.User{}).
		Joins("JOIN subscriptions ON subscriptions.author_id = users.id").
		Where("subscriptions.user_id = ?", followerID).
		Order("subscriptions.id ASC").
		Limit(limit).Offset(offset).
		Find(&authors).Error
	return authors, total, err
}
