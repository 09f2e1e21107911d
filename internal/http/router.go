package http

import (
	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/auth"
	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/logging"
	"github.com/mrlokans/foodgram/internal/metrics"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(logging.GinMiddleware())
	if cfg.MetricsEnabled {
		router.Use(metrics.GinMiddleware())
	}
	router.Use(auth.SecurityHeadersMiddleware())

	// The session must be loaded before the auth middleware reads it.
	if cfg.SessionManager != nil {
		router.Use(cfg.SessionManager.LoadAndSave())
	}
	router.Use(cfg.AuthMiddleware.Handler())
	// CSRF only matters for cookie-authenticated requests.
	if cfg.SessionManager != nil && len(cfg.CSRFSecret) > 0 {
		router.Use(auth.CSRFMiddleware(cfg.CSRFSecret, cfg.SecureCookies))
	}

	if cfg.MediaDir != "" {
		mediaURL := cfg.MediaURL
		if mediaURL == "" {
			mediaURL = "/media"
		}
		router.Static(mediaURL, cfg.MediaDir)
	}

	health := NewHealthController(cfg.Database, cfg.Version)
	router.GET("/health", health.Status)
	router.GET("/ping", health.Ping)
	if cfg.MetricsEnabled {
		router.GET("/metrics", metrics.Handler())
	}

	api := router.Group("/api")
	if cfg.AuthController != nil {
		cfg.AuthController.RegisterRoutes(api.Group("/auth"))
	}

	present := &presenter{
		subscriptions: cfg.Users,
		favorites:     cfg.Favorites,
		cart:          cfg.Cart,
		images:        cfg.Images,
	}
	paginator := NewPaginator(cfg.Pagination)
	requireAuth := auth.RequireAuth()
	adminOnly := auth.RequireRole(entities.UserRoleAdmin)

	usersController := NewUsersController(cfg.Users, cfg.Accounts, cfg.Recipes, present, paginator)
	users := api.Group("/users")
	users.GET("/", usersController.List)
	users.POST("/", usersController.Register)
	users.GET("/me/", requireAuth, usersController.Me)
	users.PATCH("/me/", requireAuth, usersController.UpdateMe)
	users.POST("/set_password/", requireAuth, usersController.SetPassword)
	users.GET("/subscriptions/", requireAuth, usersController.Subscriptions)
	users.GET("/:id/", usersController.Get)
	users.POST("/:id/subscribe/", requireAuth, usersController.Subscribe)
	users.DELETE("/:id/subscribe/", requireAuth, usersController.Unsubscribe)

	tagsController := NewTagsController(cfg.Tags)
	api.GET("/tags/", tagsController.List)
	api.GET("/tags/:id/", tagsController.Get)
	api.POST("/tags/", adminOnly, tagsController.Create)

	ingredientsController := NewIngredientsController(cfg.Ingredients)
	api.GET("/ingredients/", ingredientsController.List)
	api.GET("/ingredients/:id/", ingredientsController.Get)
	api.POST("/ingredients/", adminOnly, ingredientsController.Create)

	recipesController := NewRecipesController(cfg.Recipes, cfg.Images, present, paginator, cfg.Audit)
	cartController := NewCartController(cfg.Recipes, cfg.Favorites, cfg.Cart, cfg.Lists, present)
	recipes := api.Group("/recipes")
	recipes.GET("/", recipesController.List)
	recipes.POST("/", requireAuth, recipesController.Create)
	recipes.GET("/download_shopping_cart/", requireAuth, cartController.DownloadShoppingList)
	recipes.GET("/:id/", recipesController.Get)
	recipes.PATCH("/:id/", requireAuth, recipesController.Update)
	recipes.DELETE("/:id/", requireAuth, recipesController.Delete)
	recipes.POST("/:id/favorite/", requireAuth, cartController.AddFavorite)
	recipes.DELETE("/:id/favorite/", requireAuth, cartController.RemoveFavorite)
	recipes.POST("/:id/shopping_cart/", requireAuth, cartController.AddToCart)
	recipes.DELETE("/:id/shopping_cart/", requireAuth, cartController.RemoveFromCart)

	if cfg.Audit != nil {
		auditController := NewAuditController(cfg.Audit, paginator)
		api.GET("/audit/", adminOnly, auditController.List)
	}

	return router
}
