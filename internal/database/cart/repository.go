// Package cart provides database operations for shopping cart entries.
//
// The cart_entries table has no uniqueness constraint on (user, recipe);
// AddToCart refuses duplicates, but rows written by other means are kept
// as-is and each one counts when the shopping list is built.
package cart

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/foodgram/internal/entities"
)

var (
	ErrAlreadyInCart = errors.New("recipe is already in the shopping cart")
	ErrNotInCart     = errors.New("recipe is not in the shopping cart")
)

// Repository handles all shopping cart database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new cart repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddToCart puts a recipe into the user's cart.
func (r *Repository) AddToCart(ctx context.Context, userID, recipeID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		err := tx.Model(&entities.CartEntry{}).
			Where("user_id = ? AND recipe_id = ?", userID, recipeID).
			Count(&count).Error
		if err != nil {
			return err
		}
		if count > 0 {
			return ErrAlreadyInCart
		}
		return tx.Omit("User", "Recipe").Create(&entities.CartEntry{UserID: userID, RecipeID: recipeID}).Error
	})
}

// RemoveFromCart deletes every cart entry of the recipe for the user.
func (r *Repository) RemoveFromCart(ctx context.Context, userID, recipeID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.CartEntry{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotInCart
	}
	return nil
}

// CartEntries returns the user's cart entries in insertion order.
func (r *Repository) CartEntries(ctx context.Context, userID uint) ([]entities.CartEntry, error) {
	var entries []entities.CartEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

// InCartAmong reports which of recipeIDs are in the user's cart.
// An anonymous user (0) has an empty cart.
func (r *Repository) InCartAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return result, nil
	}
	var ids []uint
	err := r.db.WithContext(ctx).Model(&entities.CartEntry{}).
		Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).
		Pluck("recipe_id", &ids).Error
	if err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
