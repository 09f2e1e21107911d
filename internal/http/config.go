package http

import (
	"github.com/mrlokans/foodgram/internal/auth"
	"github.com/mrlokans/foodgram/internal/config"
)

// RouterConfig holds all dependencies needed to create the HTTP router.
type RouterConfig struct {
	// Stores
	Users       UserStore
	Accounts    AccountService
	Tags        TagStore
	Ingredients IngredientStore
	Recipes     RecipeStore
	Favorites   FavoriteStore
	Cart        CartStore
	Images      ImageStore
	Lists       ShoppingListBuilder
	Database    Pinger
	Audit       AuditLog // nil disables auditing and /api/audit/

	// Auth
	AuthController *auth.AuthController
	AuthMiddleware *auth.Middleware
	SessionManager *auth.SessionManager // nil when session login is disabled
	CSRFSecret     []byte
	SecureCookies  bool

	Pagination     config.Pagination
	MediaDir       string
	MediaURL       string // URL prefix media files are served under, e.g. "/media"
	MetricsEnabled bool
	Version        string
}
