package auth

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/config"
	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/logging"
	"github.com/mrlokans/foodgram/internal/validation"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuditLog records login and logout attempts.
type AuditLog interface {
	LogAuth(ctx context.Context, userID uint, email, action, ipAddr, userAgent string, success bool)
}

// AuthController serves the /api/auth endpoints.
type AuthController struct {
	service        *Service
	sessionManager *SessionManager
	jwt            *JWTIssuer
	rateLimiter    *RateLimiter
	audit          AuditLog
}

// NewAuthController creates a new authentication controller. sessionManager
// and jwtIssuer may be nil, in which case their routes are not registered.
func NewAuthController(service *Service, sessionManager *SessionManager, jwtIssuer *JWTIssuer, cfg config.Auth) *AuthController {
	return &AuthController{
		service:        service,
		sessionManager: sessionManager,
		jwt:            jwtIssuer,
		rateLimiter: NewRateLimiter(RateLimitConfig{
			MaxAttempts:     cfg.MaxLoginAttempts,
			WindowDuration:  cfg.RateLimitWindow,
			LockoutDuration: cfg.LockoutDuration,
		}),
	}
}

// RegisterRoutes mounts the auth endpoints under group (normally /api/auth).
func (ac *AuthController) RegisterRoutes(group *gin.RouterGroup) {
	group.POST("/token/login/", ac.TokenLogin)
	group.POST("/token/logout/", RequireAuth(), ac.TokenLogout)
	if ac.jwt != nil {
		group.POST("/jwt/create/", ac.JWTCreate)
	}
	if ac.sessionManager != nil {
		group.POST("/session/login/", ac.SessionLogin)
		group.POST("/session/logout/", RequireAuth(), ac.SessionLogout)
	}
}

// SetAuditLog enables auditing of logins and logouts.
func (ac *AuthController) SetAuditLog(audit AuditLog) {
	ac.audit = audit
}

// Stop cleans up resources (rate limiter background goroutine).
func (ac *AuthController) Stop() {
	ac.rateLimiter.Stop()
}

// TokenLogin exchanges credentials for a fresh API token.
func (ac *AuthController) TokenLogin(c *gin.Context) {
	user, ok := ac.login(c, "token_login")
	if !ok {
		return
	}

	token, err := ac.service.GenerateToken(c.Request.Context(), user.ID)
	if err != nil {
		internalError(c, err, "failed to generate token")
		return
	}
	c.JSON(http.StatusOK, gin.H{"auth_token": token})
}

// TokenLogout revokes the caller's API token.
func (ac *AuthController) TokenLogout(c *gin.Context) {
	if err := ac.service.RevokeToken(c.Request.Context(), GetUserID(c)); err != nil {
		internalError(c, err, "failed to revoke token")
		return
	}
	ac.record(c, GetUserID(c), "", "token_logout", true)
	c.Status(http.StatusNoContent)
}

// JWTCreate exchanges credentials for a signed access token.
func (ac *AuthController) JWTCreate(c *gin.Context) {
	user, ok := ac.login(c, "jwt_create")
	if !ok {
		return
	}

	access, err := ac.jwt.Issue(user)
	if err != nil {
		internalError(c, err, "failed to issue jwt")
		return
	}
	c.JSON(http.StatusOK, gin.H{"access": access})
}

// SessionLogin starts a cookie session for browser clients.
func (ac *AuthController) SessionLogin(c *gin.Context) {
	user, ok := ac.login(c, "session_login")
	if !ok {
		return
	}

	if err := ac.sessionManager.CreateSession(c.Request.Context(), user); err != nil {
		internalError(c, err, "failed to create session")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"email":    user.Email,
		"username": user.Username,
	})
}

// SessionLogout destroys the caller's session.
func (ac *AuthController) SessionLogout(c *gin.Context) {
	if err := ac.sessionManager.DestroySession(c.Request.Context()); err != nil {
		internalError(c, err, "failed to destroy session")
		return
	}
	ac.record(c, GetUserID(c), "", "session_logout", true)
	c.Status(http.StatusNoContent)
}

// login binds credentials and authenticates them under the rate limiter.
// It writes the error response itself and reports false on failure.
// Rejected credentials and locked accounts are audited under action.
func (ac *AuthController) login(c *gin.Context, action string) (*entities.User, bool) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "invalid request",
			"code":    "validation_error",
			"details": validation.Details(err),
		})
		return nil, false
	}

	clientIP := c.ClientIP()
	if allowed, retryAfter := ac.rateLimiter.Allow(clientIP, req.Email); !allowed {
		c.Header("Retry-After", strconv.Itoa(int(retryAfter.Seconds())+1))
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error": "too many login attempts",
			"code":  "rate_limited",
		})
		return nil, false
	}

	user, err := ac.service.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrAccountLocked):
			ac.record(c, 0, req.Email, action, false)
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error(), "code": "account_locked"})
		case errors.Is(err, ErrInvalidCredentials):
			ac.rateLimiter.RecordFailure(clientIP, req.Email)
			ac.record(c, 0, req.Email, action, false)
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": "invalid_credentials"})
		default:
			internalError(c, err, "authentication failed")
		}
		return nil, false
	}

	ac.rateLimiter.RecordSuccess(clientIP, req.Email)
	ac.record(c, user.ID, user.Email, action, true)
	logging.Ctx(c.Request.Context()).Info().
		Uint("user_id", user.ID).
		Str("auth", c.FullPath()).
		Msg("user logged in")
	return user, true
}

func (ac *AuthController) record(c *gin.Context, userID uint, email, action string, success bool) {
	if ac.audit == nil {
		return
	}
	ac.audit.LogAuth(c.Request.Context(), userID, email, action, c.ClientIP(), c.Request.UserAgent(), success)
}

func internalError(c *gin.Context, err error, msg string) {
	logging.Ctx(c.Request.Context()).Error().Err(err).Msg(msg)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
