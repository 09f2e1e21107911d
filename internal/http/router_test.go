package http

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	auditlog "github.com/mrlokans/foodgram/internal/audit"
	"github.com/mrlokans/foodgram/internal/auth"
	"github.com/mrlokans/foodgram/internal/config"
	auditRepo "github.com/mrlokans/foodgram/internal/database/audit"
	"github.com/mrlokans/foodgram/internal/database/cart"
	"github.com/mrlokans/foodgram/internal/database/dbtest"
	"github.com/mrlokans/foodgram/internal/database/favourites"
	"github.com/mrlokans/foodgram/internal/database/ingredients"
	"github.com/mrlokans/foodgram/internal/database/recipes"
	"github.com/mrlokans/foodgram/internal/database/tags"
	"github.com/mrlokans/foodgram/internal/database/users"
	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/media"
	"github.com/mrlokans/foodgram/internal/shoppinglist"
	"github.com/mrlokans/foodgram/internal/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	validation.Setup()
}

// Smallest byte sequence http.DetectContentType recognises as PNG.
var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngDataURI() string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
}

type apiEnv struct {
	t        *testing.T
	db       *gorm.DB
	router   *gin.Engine
	accounts *auth.Service
	images   *media.Store
	audit    *auditlog.Service
}

func newAPIEnv(t *testing.T) *apiEnv {
	t.Helper()
	db := dbtest.NewDB(t)
	authCfg := config.Auth{BcryptCost: 4, MinPasswordLength: 8, MaxLoginAttempts: 5, LockoutDuration: time.Minute}
	accounts := auth.NewService(db, authCfg)

	userRepo := users.NewRepository(db)
	recipeRepo := recipes.NewRepository(db)
	ingredientRepo := ingredients.NewRepository(db)
	cartRepo := cart.NewRepository(db)
	images := media.NewStore(t.TempDir(), "/media/")
	audit := auditlog.NewService(auditRepo.NewRepository(db), 0)
	t.Cleanup(audit.Wait)

	controller := auth.NewAuthController(accounts, nil, nil, authCfg)
	t.Cleanup(controller.Stop)

	router := NewRouter(RouterConfig{
		Users:          userRepo,
		Accounts:       accounts,
		Tags:           tags.NewRepository(db),
		Ingredients:    ingredientRepo,
		Recipes:        recipeRepo,
		Favorites:      favourites.NewRepository(db),
		Cart:           cartRepo,
		Images:         images,
		Lists:          shoppinglist.NewAggregator(cartRepo, recipeRepo, ingredientRepo),
		Audit:          audit,
		AuthController: controller,
		AuthMiddleware: auth.NewMiddleware(accounts, nil, nil),
		Pagination:     config.Pagination{PageSize: 6, MaxPageSize: 100},
		MediaDir:       images.Root(),
		MediaURL:       images.BaseURL(),
		Version:        "test",
	})

	return &apiEnv{t: t, db: db, router: router, accounts: accounts, images: images, audit: audit}
}

// user creates a user and returns it with a fresh API token.
func (e *apiEnv) user(username string) (*entities.User, string) {
	e.t.Helper()
	user := dbtest.CreateUser(e.t, e.db, username)
	token, err := e.accounts.GenerateToken(context.Background(), user.ID)
	require.NoError(e.t, err)
	return user, token
}

func (e *apiEnv) admin(username string) (*entities.User, string) {
	e.t.Helper()
	user, token := e.user(username)
	require.NoError(e.t, e.db.Model(user).Update("role", entities.UserRoleAdmin).Error)
	return user, token
}

func (e *apiEnv) do(method, path, token string, body any) *httptest.ResponseRecorder {
	e.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(e.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Token "+token)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

type fakePinger struct{ err error }

func (p fakePinger) Ping(context.Context) error { return p.err }

func TestHealthController(t *testing.T) {
	tests := []struct {
		name       string
		db         Pinger
		wantStatus int
		wantCheck  string
	}{
		{"healthy", fakePinger{}, http.StatusOK, "ok"},
		{"unreachable database", fakePinger{err: errors.New("disk I/O error")}, http.StatusServiceUnavailable, "error: disk I/O error"},
		{"no database", nil, http.StatusOK, "not configured"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := gin.New()
			health := NewHealthController(tt.db, "1.2.3")
			router.GET("/health", health.Status)

			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.wantStatus, w.Code)
			resp := decode[HealthResponse](t, w)
			assert.Equal(t, "1.2.3", resp.Version)
			assert.Equal(t, tt.wantCheck, resp.Checks["database"])
		})
	}
}

func TestRouter_Ping(t *testing.T) {
	env := newAPIEnv(t)
	w := env.do(http.MethodGet, "/ping", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "pong")
}

func TestRouter_ServesMedia(t *testing.T) {
	env := newAPIEnv(t)
	rel, err := env.images.SaveDataURI(pngDataURI())
	require.NoError(t, err)

	w := env.do(http.MethodGet, env.images.URL(rel), "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, pngBytes, w.Body.Bytes())
}

func TestRouter_AuthRoutesMounted(t *testing.T) {
	env := newAPIEnv(t)
	w := env.do(http.MethodPost, "/api/auth/token/login/", "", map[string]string{"email": "nobody@example.com", "password": "whatever1"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
