// Package dbtest holds fixtures shared by repository, service and handler tests.
package dbtest

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/mrlokans/foodgram/internal/database"
	"github.com/mrlokans/foodgram/internal/entities"
)

// NewDB returns a migrated database in a per-test temp directory.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "test.db"), false)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db.DB
}

func CreateUser(t *testing.T, db *gorm.DB, username string) *entities.User {
	t.Helper()
	user := &entities.User{
		Username:  username,
		Email:     username + "@example.com",
		FirstName: "First",
		LastName:  "Last",
		Role:      entities.UserRoleUser,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func CreateIngredient(t *testing.T, db *gorm.DB, name, unit string) *entities.Ingredient {
	t.Helper()
	ingredient := &entities.Ingredient{Name: name, MeasurementUnit: unit}
	require.NoError(t, db.Create(ingredient).Error)
	return ingredient
}

// Line is an ingredient quantity for CreateRecipe.
type Line struct {
	Ingredient *entities.Ingredient
	Amount     int
}

// CreateRecipe inserts a recipe with its lines in the given order.
func CreateRecipe(t *testing.T, db *gorm.DB, author *entities.User, name string, lines ...Line) *entities.Recipe {
	t.Helper()
	recipe := &entities.Recipe{
		AuthorID:    author.ID,
		Name:        name,
		Text:        name + " text",
		Image:       "recipes/" + name + ".png",
		CookingTime: 10,
	}
	require.NoError(t, db.Omit("Author", "Tags", "Ingredients").Create(recipe).Error)
	for _, l := range lines {
		line := &entities.RecipeIngredient{
			RecipeID:     recipe.ID,
			IngredientID: l.Ingredient.ID,
			Amount:       l.Amount,
		}
		require.NoError(t, db.Omit("Ingredient").Create(line).Error)
	}
	return recipe
}

// AddToCart inserts a raw cart entry, bypassing duplicate checks.
func AddToCart(t *testing.T, db *gorm.DB, user *entities.User, recipe *entities.Recipe) {
	t.Helper()
	require.NoError(t, db.Omit("User", "Recipe").Create(&entities.CartEntry{UserID: user.ID, RecipeID: recipe.ID}).Error)
}

// FirstTag returns one of the seeded default tags.
func FirstTag(t *testing.T, db *gorm.DB) *entities.Tag {
	t.Helper()
	var tag entities.Tag
	require.NoError(t, db.Order("id").First(&tag).Error)
	return &tag
}
