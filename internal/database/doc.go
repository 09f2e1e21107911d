// Package database provides the data access layer for the application.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations, default tag seeding
//	├── users/           # User profiles and subscriptions
//	├── tags/            # Recipe tags
//	├── ingredients/     # Ingredient reference data
//	├── recipes/         # Recipes with their tags and ingredient lines
//	├── favourites/      # Favorite recipes
//	├── cart/            # Shopping cart entries
//	└── audit/           # Audit trail of logins, deletions and imports
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	db, err := database.NewDatabase("./foodgram.db", false)
//
//	recipesRepo := recipes.NewRepository(db.DB)
//	cartRepo := cart.NewRepository(db.DB)
//
//	recipe, err := recipesRepo.GetRecipeByID(ctx, 42)
//	entries, err := cartRepo.CartEntries(ctx, userID)
//
// Every method takes a context.Context which is passed to gorm via WithContext.
//
// # Errors
//
// Lookups that find nothing return a package sentinel (recipes.ErrRecipeNotFound,
// tags.ErrTagNotFound, ...) rather than gorm.ErrRecordNotFound, so callers do
// not depend on gorm. Unique constraint violations are translated to
// sentinels such as cart.ErrAlreadyInCart.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the interface the consumer declares
//  5. Add a compile-time check in internal/interfaces/checks.go
package database
