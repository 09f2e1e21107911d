// Package interfaces documents the core abstractions used throughout the application.
//
// The package holds no runtime code; checks.go pins every concrete type to
// the interfaces its consumers declare.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - UserStore, SubscriptionChecker: profiles and follows (internal/http/stores.go)
//   - TagStore, IngredientStore: read-mostly reference data (internal/http/stores.go)
//   - RecipeStore, AuthorRecipes: recipe CRUD and author previews (internal/http/stores.go)
//   - FavoriteStore, CartStore: per-user recipe relations (internal/http/stores.go)
//   - ImageStore: recipe image persistence (internal/http/stores.go)
//
// ## Shopping List
//
//   - CartReader, LineReader, IngredientReader: the aggregator's inputs
//     (internal/shoppinglist/aggregator.go)
//   - ShoppingListBuilder: what the download endpoint calls (internal/http/stores.go)
//
// ## Import Pipeline
//
//   - IngredientWriter, TagWriter: bulk fixture loading (internal/importers/pipeline.go)
//
// ## Background Maintenance
//
//   - ImageIndex, OrphanStore: orphan media cleanup (internal/tasks/cleanup_media.go)
//   - TokenPurger: expired API token removal (internal/tasks/purge_tokens.go)
//   - AuditPurger: audit retention (internal/tasks/purge_audit.go)
//   - Enqueuer: scheduler to task queue hand-off (internal/scheduler/maintenance.go)
//
// ## Audit Trail
//
//   - auth.AuditLog: login and logout records (internal/auth/handlers.go)
//   - http.AuditLog: recipe deletions and the admin listing (internal/http/stores.go)
//
// # Adding a Store
//
// Declare the interface next to its consumer with only the methods it
// calls, implement it in a repository under internal/database, then add
// a check to checks.go.
package interfaces
