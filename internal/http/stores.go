package http

import (
	"context"

	"github.com/mrlokans/foodgram/internal/auth"
	"github.com/mrlokans/foodgram/internal/database/audit"
	"github.com/mrlokans/foodgram/internal/database/recipes"
	"github.com/mrlokans/foodgram/internal/database/users"
	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/shoppinglist"
)

// This file consolidates the store interfaces used by HTTP controllers.
// Each controller depends only on the subset it calls.

// UserStore covers profiles and subscriptions.
type UserStore interface {
	GetUserByID(ctx context.Context, id uint) (*entities.User, error)
	ListUsers(ctx context.Context, limit, offset int) ([]entities.User, int64, error)
	UpdateProfile(ctx context.Context, id uint, update users.ProfileUpdate) (*entities.User, error)
	Subscribe(ctx context.Context, followerID, authorID uint) error
	Unsubscribe(ctx context.Context, followerID, authorID uint) error
	ListSubscriptions(ctx context.Context, followerID uint, limit, offset int) ([]entities.User, int64, error)
	SubscriptionChecker
}

// SubscriptionChecker answers is_subscribed for a batch of authors.
type SubscriptionChecker interface {
	SubscribedAmong(ctx context.Context, followerID uint, authorIDs []uint) (map[uint]bool, error)
}

// AccountService covers registration and password changes.
type AccountService interface {
	CreateUser(ctx context.Context, in auth.NewUser) (*entities.User, error)
	ChangePassword(ctx context.Context, userID uint, currentPassword, newPassword string) error
}

type TagStore interface {
	CreateTag(ctx context.Context, name, color, slug string) (*entities.Tag, error)
	GetTags(ctx context.Context) ([]entities.Tag, error)
	GetTagByID(ctx context.Context, id uint) (*entities.Tag, error)
}

type IngredientStore interface {
	CreateIngredient(ctx context.Context, name, unit string) (*entities.Ingredient, error)
	SearchIngredients(ctx context.Context, prefix string) ([]entities.Ingredient, error)
	GetIngredientByID(ctx context.Context, id uint) (*entities.Ingredient, error)
}

// AuthorRecipes supplies the recipe previews shown with subscriptions.
type AuthorRecipes interface {
	RecipesByAuthor(ctx context.Context, authorID uint, limit int) ([]entities.Recipe, error)
	CountByAuthors(ctx context.Context, authorIDs []uint) (map[uint]int64, error)
}

type RecipeStore interface {
	GetRecipeByID(ctx context.Context, id uint) (*entities.Recipe, error)
	RecipeExists(ctx context.Context, id uint) (bool, error)
	ListRecipes(ctx context.Context, filter recipes.Filter, limit, offset int) ([]entities.Recipe, int64, error)
	CreateRecipe(ctx context.Context, authorID uint, in recipes.Input) (*entities.Recipe, error)
	UpdateRecipe(ctx context.Context, id uint, in recipes.Input) (*entities.Recipe, string, error)
	DeleteRecipe(ctx context.Context, id uint) (string, error)
	AuthorRecipes
}

type FavoriteStore interface {
	AddFavorite(ctx context.Context, userID, recipeID uint) error
	RemoveFavorite(ctx context.Context, userID, recipeID uint) error
	FavoritedAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
}

type CartStore interface {
	AddToCart(ctx context.Context, userID, recipeID uint) error
	RemoveFromCart(ctx context.Context, userID, recipeID uint) error
	InCartAmong(ctx context.Context, userID uint, recipeIDs []uint) (map[uint]bool, error)
}

// ImageStore persists uploaded recipe images.
type ImageStore interface {
	SaveDataURI(dataURI string) (string, error)
	URL(relPath string) string
	DeleteQuietly(relPath string)
}

// ShoppingListBuilder aggregates a user's cart.
type ShoppingListBuilder interface {
	Build(ctx context.Context, userID uint) (*shoppinglist.List, error)
}

// AuditLog records recipe deletions and serves the admin audit listing.
type AuditLog interface {
	LogRecipeDelete(ctx context.Context, userID, recipeID uint, name string)
	ListEvents(ctx context.Context, filter audit.Filter, limit, offset int) ([]entities.AuditEvent, int64, error)
}

// Pinger reports database reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}
