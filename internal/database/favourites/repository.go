// Package favourites provides database operations for favorite recipes.
//
// # Usage
//
//	repo := favourites.NewRepository(db)
//	err := repo.AddFavorite(ctx, userID, recipeID)
//	flags, err := repo.FavoritedAmong(ctx, userID, recipeIDs)
package favourites

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mrlokans/foodgram/internal/entities"
)

var (
	ErrAlreadyFavorited = errors.New("recipe is already in favorites")
	ErrNotFavorited     = errors.New("recipe is not in favorites")
)

// Repository handles all favourites database operations.
type Repository struct {
	db *gorm.DB
}

// NewRepository creates a new favourites repository.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// AddFavorite marks a recipe as favorite for a user.
func (r *Repository) AddFavorite(ctx context.Context, userID, recipeID uint) error {
	fav := &entities.Favorite{UserID: userID, RecipeID: recipeID}
	err := r.db.WithContext(ctx).Omit("User", "Recipe").Create(fav).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return ErrAlreadyFavorited
	}
	return err
}

// RemoveFavorite unmarks a favorite recipe.
func (r *Repository) RemoveFavorite(ctx context.Context, userID, recipeID uint) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND recipe_id = ?", userID, recipeID).
		Delete(&entities.Favorite{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFavorited
	}
	return nil
}

// FavoritedAmong reports which of recipeIDs the user has favorited.
// An anonymous user (0) has no favorites.
func (r *Repository) FavoritedAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	return pairsAmong(r.db.WithContext(ctx).Model(&entities.Favorite{}), userID, recipeIDs)
}

func pairsAmong(query *gorm.DB, userID uint, recipeIDs []uint) (map[uint]bool, error) {
	result := make(map[uint]bool, len(recipeIDs))
	if userID == 0 || len(recipeIDs) == 0 {
		return result, nil
	}
	var ids []uint
	if err := query.Where("user_id = ? AND recipe_id IN ?", userID, recipeIDs).Pluck("recipe_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		result[id] = true
	}
	return result, nil
}
