package interfaces

// This file contains compile-time interface implementation checks.
// These ensure that concrete types satisfy their interfaces at compile time,
// catching missing methods before runtime.
//
// To verify all checks pass: go build ./internal/interfaces/...

import (
	"github.com/mrlokans/foodgram/internal/audit"
	"github.com/mrlokans/foodgram/internal/auth"
	"github.com/mrlokans/foodgram/internal/database"
	"github.com/mrlokans/foodgram/internal/database/cart"
	"github.com/mrlokans/foodgram/internal/database/favourites"
	"github.com/mrlokans/foodgram/internal/database/ingredients"
	"github.com/mrlokans/foodgram/internal/database/recipes"
	"github.com/mrlokans/foodgram/internal/database/tags"
	"github.com/mrlokans/foodgram/internal/database/users"
	"github.com/mrlokans/foodgram/internal/http"
	"github.com/mrlokans/foodgram/internal/importers"
	"github.com/mrlokans/foodgram/internal/media"
	"github.com/mrlokans/foodgram/internal/scheduler"
	"github.com/mrlokans/foodgram/internal/shoppinglist"
	"github.com/mrlokans/foodgram/internal/tasks"
)

// =============================================================================
// Data Access Layer
// =============================================================================

var _ http.UserStore = (*users.Repository)(nil)
var _ http.TagStore = (*tags.Repository)(nil)
var _ http.IngredientStore = (*ingredients.Repository)(nil)
var _ http.RecipeStore = (*recipes.Repository)(nil)
var _ http.FavoriteStore = (*favourites.Repository)(nil)
var _ http.CartStore = (*cart.Repository)(nil)
var _ http.Pinger = (*database.Database)(nil)

// AccountService implementations
var _ http.AccountService = (*auth.Service)(nil)

// ImageStore implementations
var _ http.ImageStore = (*media.Store)(nil)

// =============================================================================
// Shopping List
// =============================================================================

var _ shoppinglist.CartReader = (*cart.Repository)(nil)
var _ shoppinglist.LineReader = (*recipes.Repository)(nil)
var _ shoppinglist.IngredientReader = (*ingredients.Repository)(nil)
var _ http.ShoppingListBuilder = (*shoppinglist.Aggregator)(nil)

// =============================================================================
// Import Pipeline
// =============================================================================

var _ importers.IngredientWriter = (*ingredients.Repository)(nil)
var _ importers.TagWriter = (*tags.Repository)(nil)

// =============================================================================
// Background Maintenance
// =============================================================================

var _ tasks.ImageIndex = (*recipes.Repository)(nil)
var _ tasks.OrphanStore = (*media.Store)(nil)
var _ tasks.TokenPurger = (*auth.Service)(nil)
var _ scheduler.Enqueuer = (*tasks.Client)(nil)
var _ tasks.AuditPurger = (*audit.Service)(nil)

// =============================================================================
// Audit Trail
// =============================================================================

var _ auth.AuditLog = (*audit.Service)(nil)
var _ http.AuditLog = (*audit.Service)(nil)
