package entrypoint

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/audit"
	"github.com/mrlokans/foodgram/internal/auth"
	"github.com/mrlokans/foodgram/internal/config"
	"github.com/mrlokans/foodgram/internal/database"
	auditRepo "github.com/mrlokans/foodgram/internal/database/audit"
	"github.com/mrlokans/foodgram/internal/database/cart"
	"github.com/mrlokans/foodgram/internal/database/favourites"
	"github.com/mrlokans/foodgram/internal/database/ingredients"
	"github.com/mrlokans/foodgram/internal/database/recipes"
	"github.com/mrlokans/foodgram/internal/database/tags"
	"github.com/mrlokans/foodgram/internal/database/users"
	http_controllers "github.com/mrlokans/foodgram/internal/http"
	"github.com/mrlokans/foodgram/internal/logging"
	"github.com/mrlokans/foodgram/internal/media"
	"github.com/mrlokans/foodgram/internal/scheduler"
	"github.com/mrlokans/foodgram/internal/shoppinglist"
	"github.com/mrlokans/foodgram/internal/tasks"
	"github.com/mrlokans/foodgram/internal/validation"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

// App is a fully wired server. Build creates it, Start launches background
// workers and Shutdown releases everything in reverse order.
type App struct {
	Router *gin.Engine

	db             *database.Database
	authController *auth.AuthController
	audit          *audit.Service
	taskClient     *tasks.Client
	maintenance    *scheduler.MaintenanceScheduler
	cancelTasks    context.CancelFunc
}

// Build opens the database and wires repositories, auth, media, background
// work and the HTTP router.
func Build(cfg *config.Config, version string) (*App, error) {
	validation.Setup()

	db, err := database.NewDatabase(cfg.Database.Path, cfg.Database.LogSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	app := &App{db: db}

	userRepo := users.NewRepository(db.DB)
	tagRepo := tags.NewRepository(db.DB)
	ingredientRepo := ingredients.NewRepository(db.DB)
	recipeRepo := recipes.NewRepository(db.DB)
	favouriteRepo := favourites.NewRepository(db.DB)
	cartRepo := cart.NewRepository(db.DB)

	images := media.NewStore(cfg.Media.Dir, cfg.Media.URL)
	if err := os.MkdirAll(images.Root(), 0o755); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	authService := auth.NewService(db.DB, cfg.Auth)
	jwtIssuer := auth.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTLifetime)
	if jwtIssuer == nil {
		logging.Info().Msg("JWT login disabled (set AUTH_JWT_SECRET to enable)")
	}

	var sessionManager *auth.SessionManager
	var csrfSecret []byte
	if cfg.Auth.SessionsEnabled {
		sqlDB, err := db.DB.DB()
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to get SQL DB for sessions: %w", err)
		}
		sessionManager, err = auth.NewSessionManager(sqlDB, cfg.Auth)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to initialize session manager: %w", err)
		}
		csrfSecret, err = sessionSecret(cfg.Auth.SessionSecret)
		if err != nil {
			db.Close()
			return nil, err
		}
	}

	// Interfaces stay nil when auditing is off.
	var auditLog http_controllers.AuditLog
	var auditPurger tasks.AuditPurger
	if cfg.Audit.Enabled {
		app.audit = audit.NewService(auditRepo.NewRepository(db.DB), cfg.Audit.Retention)
		auditLog, auditPurger = app.audit, app.audit
	}

	if cfg.Tasks.Enabled {
		if err := app.setupTasks(cfg, recipeRepo, images, authService, auditPurger); err != nil {
			db.Close()
			return nil, err
		}
	}

	hasUsers, err := authService.HasUsers(context.Background())
	if err == nil && !hasUsers {
		logging.Warn().Msg("no users found, run 'foodgram create-admin' to create an administrator")
	}

	app.authController = auth.NewAuthController(authService, sessionManager, jwtIssuer, cfg.Auth)
	if app.audit != nil {
		app.authController.SetAuditLog(app.audit)
	}

	app.Router = http_controllers.NewRouter(http_controllers.RouterConfig{
		Users:          userRepo,
		Accounts:       authService,
		Tags:           tagRepo,
		Ingredients:    ingredientRepo,
		Recipes:        recipeRepo,
		Favorites:      favouriteRepo,
		Cart:           cartRepo,
		Images:         images,
		Lists:          shoppinglist.NewAggregator(cartRepo, recipeRepo, ingredientRepo),
		Database:       db,
		Audit:          auditLog,
		AuthController: app.authController,
		AuthMiddleware: auth.NewMiddleware(authService, sessionManager, jwtIssuer),
		SessionManager: sessionManager,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		Pagination:     cfg.Pagination,
		MediaDir:       images.Root(),
		MediaURL:       mediaRoute(images.BaseURL()),
		MetricsEnabled: cfg.Metrics.Enabled,
		Version:        version,
	})

	return app, nil
}

func (a *App) setupTasks(cfg *config.Config, recipeRepo *recipes.Repository, images *media.Store, authService *auth.Service, auditPurger tasks.AuditPurger) error {
	client, err := tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
	if err != nil {
		return fmt.Errorf("failed to initialize task queue: %w", err)
	}
	client.Register(
		tasks.NewCleanupOrphanMediaQueue(recipeRepo, images),
		tasks.NewPurgeExpiredTokensQueue(authService),
		tasks.NewPurgeAuditEventsQueue(auditPurger),
	)
	a.taskClient = client

	if cfg.Cleanup.Enabled {
		a.maintenance = scheduler.NewMaintenanceScheduler(client, cfg.Cleanup.Schedule)
	}
	return nil
}

// Start launches the task workers and the maintenance scheduler.
func (a *App) Start(ctx context.Context) error {
	if a.taskClient == nil {
		return nil
	}

	var taskCtx context.Context
	taskCtx, a.cancelTasks = context.WithCancel(ctx)
	go a.taskClient.Start(taskCtx)

	if a.maintenance != nil {
		if err := a.maintenance.Start(taskCtx); err != nil {
			return fmt.Errorf("failed to start maintenance scheduler: %w", err)
		}
	}
	return nil
}

// Shutdown stops background work and closes the databases.
func (a *App) Shutdown(ctx context.Context) {
	if a.maintenance != nil {
		a.maintenance.Stop()
	}
	if a.taskClient != nil {
		a.taskClient.Stop(ctx)
		if a.cancelTasks != nil {
			a.cancelTasks()
		}
		if err := a.taskClient.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing task client")
		}
	}
	if a.authController != nil {
		a.authController.Stop()
	}
	if a.audit != nil {
		a.audit.Wait()
	}
	if err := a.db.Close(); err != nil {
		logging.Error().Err(err).Msg("error closing database")
	}
}

// Serve runs the HTTP server until SIGINT or SIGTERM, then shuts it down
// within the configured timeout.
func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) error {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case sig := <-quit:
		logging.Info().Str("signal", sig.String()).Dur("timeout", timeout).Msg("shutting down server")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("server shutdown")
	}
	if onShutdown != nil {
		onShutdown(ctx)
	}

	logging.Info().Msg("server exited")
	return nil
}

// Run builds the application and serves it until a shutdown signal arrives.
func Run(cfg *config.Config, version string) error {
	logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	logging.Info().Str("version", version).Msg("starting foodgram")

	app, err := Build(cfg, version)
	if err != nil {
		return err
	}
	if err := app.Start(context.Background()); err != nil {
		app.Shutdown(context.Background())
		return err
	}
	return Serve(app.Router, cfg, app.Shutdown)
}

// sessionSecret decodes a hex secret, falls back to the raw bytes and
// generates a random one when none is configured.
func sessionSecret(configured string) ([]byte, error) {
	if configured != "" {
		if secret, err := hex.DecodeString(configured); err == nil {
			return secret, nil
		}
		return []byte(configured), nil
	}

	generated, err := auth.GenerateSecret()
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSRF secret: %w", err)
	}
	logging.Warn().Msg("generated session secret, set AUTH_SESSION_SECRET to keep sessions across restarts")
	return hex.DecodeString(generated)
}

// mediaRoute is the local path media files are served under; an absolute
// MEDIA_URL contributes only its path.
func mediaRoute(baseURL string) string {
	if u, err := url.Parse(baseURL); err == nil && u.IsAbs() {
		if u.Path == "" {
			return "/media"
		}
		return u.Path
	}
	return baseURL
}
