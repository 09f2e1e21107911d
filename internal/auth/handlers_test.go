package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/foodgram/internal/entities"
)

type authEnv struct {
	router     *gin.Engine
	controller *AuthController
	service    *Service
	user       *entities.User
	cookies    map[string]*http.Cookie
}

func setupAuthEnv(t *testing.T, sessions bool) *authEnv {
	t.Helper()
	svc, db := setupService(t)
	cfg := testAuthConfig()
	cfg.SecureCookies = false

	var sm *SessionManager
	if sessions {
		sqlDB, err := db.DB()
		require.NoError(t, err)
		sm, err = NewSessionManager(sqlDB, cfg)
		require.NoError(t, err)
	}
	issuer := NewJWTIssuer("jwt-secret", time.Hour)
	controller := NewAuthController(svc, sm, issuer, cfg)
	t.Cleanup(controller.Stop)

	router := gin.New()
	router.Use(SecurityHeadersMiddleware())
	if sm != nil {
		router.Use(sm.LoadAndSave())
	}
	router.Use(NewMiddleware(svc, sm, issuer).Handler())
	router.Use(CSRFMiddleware([]byte("0123456789abcdef0123456789abcdef"), false))
	controller.RegisterRoutes(router.Group("/api/auth"))
	router.GET("/whoami", whoamiHandler)
	router.POST("/echo", RequireAuth(), whoamiHandler)

	return &authEnv{
		router:     router,
		controller: controller,
		service:    svc,
		user:       createUser(t, svc, "chef", entities.UserRoleUser),
		cookies:    map[string]*http.Cookie{},
	}
}

func (e *authEnv) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.RemoteAddr = "192.0.2.1:1234"
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	for _, c := range e.cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, c := range w.Result().Cookies() {
		if c.MaxAge < 0 || c.Value == "" {
			delete(e.cookies, c.Name)
			continue
		}
		e.cookies[c.Name] = c
	}
	return w
}

func credentials(password string) gin.H {
	return gin.H{"email": "chef@example.com", "password": password}
}

func TestTokenLoginLogout(t *testing.T) {
	env := setupAuthEnv(t, false)

	w := env.do(http.MethodPost, "/api/auth/token/login/", credentials(testPassword), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var body struct {
		AuthToken string `json:"auth_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.NotEmpty(t, body.AuthToken)
	authz := map[string]string{"Authorization": "Token " + body.AuthToken}

	w = env.do(http.MethodPost, "/echo", nil, authz)
	require.Equal(t, http.StatusOK, w.Code, "token clients skip csrf")
	assert.Equal(t, env.user.ID, decodeWhoami(t, w).UserID)

	w = env.do(http.MethodPost, "/api/auth/token/logout/", nil, authz)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/whoami", nil, authz)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestTokenLogin_Failures(t *testing.T) {
	env := setupAuthEnv(t, false)

	w := env.do(http.MethodPost, "/api/auth/token/login/", gin.H{"email": "not-an-email"}, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "validation_error")

	w = env.do(http.MethodPost, "/api/auth/token/login/", credentials("wrong-password"), nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "invalid_credentials")
}

func TestTokenLogin_RateLimited(t *testing.T) {
	env := setupAuthEnv(t, false)

	// The account locks on the third failure, the limiter on the same count.
	for i := 0; i < 3; i++ {
		env.do(http.MethodPost, "/api/auth/token/login/", credentials("wrong-password"), nil)
	}

	w := env.do(http.MethodPost, "/api/auth/token/login/", credentials(testPassword), nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
}

func TestJWTCreate(t *testing.T) {
	env := setupAuthEnv(t, false)

	w := env.do(http.MethodPost, "/api/auth/jwt/create/", credentials(testPassword), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var body struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	w = env.do(http.MethodGet, "/whoami", nil, map[string]string{"Authorization": "Bearer " + body.Access})
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeWhoami(t, w)
	assert.Equal(t, env.user.ID, got.UserID)
	assert.Equal(t, AuthTypeJWT, got.AuthType)
}

func TestSessionRoutesAbsentWithoutSessions(t *testing.T) {
	env := setupAuthEnv(t, false)

	w := env.do(http.MethodPost, "/api/auth/session/login/", credentials(testPassword), nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionLogin_CSRF(t *testing.T) {
	env := setupAuthEnv(t, true)

	w := env.do(http.MethodPost, "/api/auth/session/login/", credentials(testPassword), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, env.cookies, SessionCookieName)

	w = env.do(http.MethodGet, "/whoami", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decodeWhoami(t, w)
	assert.Equal(t, env.user.ID, got.UserID)
	assert.Equal(t, AuthTypeSession, got.AuthType)
	csrfToken := w.Header().Get(CSRFTokenHeader)
	require.NotEmpty(t, csrfToken)

	w = env.do(http.MethodPost, "/echo", nil, nil)
	assert.Equal(t, http.StatusForbidden, w.Code, "session write without csrf token")
	assert.Contains(t, w.Body.String(), "CSRF")

	w = env.do(http.MethodPost, "/echo", nil, map[string]string{CSRFTokenHeader: csrfToken})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = env.do(http.MethodPost, "/api/auth/session/logout/", nil, map[string]string{CSRFTokenHeader: csrfToken})
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(http.MethodGet, "/whoami", nil, nil)
	assert.Equal(t, AuthTypeAnonymous, decodeWhoami(t, w).AuthType)
}

func TestSecurityHeaders(t *testing.T) {
	env := setupAuthEnv(t, false)

	w := env.do(http.MethodGet, "/whoami", nil, nil)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.Contains(t, w.Header().Get("Content-Security-Policy"), "frame-ancestors 'none'")
	assert.Empty(t, w.Header().Get("Strict-Transport-Security"))

	w = env.do(http.MethodGet, "/whoami", nil, map[string]string{"X-Forwarded-Proto": "https"})
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

type auditEntry struct {
	userID  uint
	email   string
	action  string
	success bool
}

type recordingAudit struct {
	mu      sync.Mutex
	entries []auditEntry
}

func (r *recordingAudit) LogAuth(_ context.Context, userID uint, email, action, _, _ string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, auditEntry{userID, email, action, success})
}

func TestLogin_Audited(t *testing.T) {
	env := setupAuthEnv(t, false)
	audit := &recordingAudit{}
	env.controller.SetAuditLog(audit)

	w := env.do(http.MethodPost, "/api/auth/token/login/", credentials("wrong-password"), nil)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(http.MethodPost, "/api/auth/token/login/", credentials(testPassword), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		AuthToken string `json:"auth_token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	w = env.do(http.MethodPost, "/api/auth/token/logout/", nil, map[string]string{"Authorization": "Token " + body.AuthToken})
	require.Equal(t, http.StatusNoContent, w.Code)

	assert.Equal(t, []auditEntry{
		{0, "chef@example.com", "token_login", false},
		{env.user.ID, "chef@example.com", "token_login", true},
		{env.user.ID, "", "token_logout", true},
	}, audit.entries)
}
