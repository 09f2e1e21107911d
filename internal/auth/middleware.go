package auth

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/foodgram/internal/entities"
	"github.com/mrlokans/foodgram/internal/logging"
)

// Context keys for user data
const (
	ContextKeyUserID   = "auth_user_id"
	ContextKeyUsername = "auth_username"
	ContextKeyRole     = "auth_role"
	ContextKeyAuthType = "auth_type"
)

// AuthType indicates how the user was authenticated
type AuthType string

const (
	AuthTypeAnonymous AuthType = "anonymous"
	AuthTypeToken     AuthType = "token"
	AuthTypeJWT       AuthType = "jwt"
	AuthTypeSession   AuthType = "session"
)

// AnonymousUserID is reported for requests without credentials.
const AnonymousUserID = uint(0)

const (
	detailInvalidToken  = "invalid token"
	detailNotProvided   = "authentication credentials were not provided"
	detailNoPermissions = "you do not have permission to perform this action"
)

// Middleware resolves the caller of each request. It never rejects
// anonymous requests; RequireAuth does that per route.
type Middleware struct {
	service        *Service
	sessionManager *SessionManager
	jwt            *JWTIssuer
}

// NewMiddleware creates a new authentication middleware. sessionManager and
// jwtIssuer may be nil.
func NewMiddleware(service *Service, sessionManager *SessionManager, jwtIssuer *JWTIssuer) *Middleware {
	return &Middleware{
		service:        service,
		sessionManager: sessionManager,
		jwt:            jwtIssuer,
	}
}

// Handler returns a Gin middleware handler that authenticates requests.
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if header := c.GetHeader("Authorization"); header != "" {
			user, authType := m.headerAuth(c, header)
			if user == nil {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detailInvalidToken})
				return
			}
			setUserContext(c, user, authType)
			c.Next()
			return
		}

		if user := m.trySessionAuth(c); user != nil {
			setUserContext(c, user, AuthTypeSession)
			c.Next()
			return
		}

		c.Set(ContextKeyUserID, AnonymousUserID)
		c.Set(ContextKeyAuthType, AuthTypeAnonymous)
		c.Next()
	}
}

// headerAuth resolves "Token <key>" and "Bearer <key|jwt>" credentials.
func (m *Middleware) headerAuth(c *gin.Context, header string) (*entities.User, AuthType) {
	scheme, credential, ok := strings.Cut(strings.TrimSpace(header), " ")
	credential = strings.TrimSpace(credential)
	if !ok || credential == "" {
		return nil, ""
	}

	ctx := c.Request.Context()
	switch strings.ToLower(scheme) {
	case "token":
	case "bearer":
		if looksLikeJWT(credential) {
			return m.jwtAuth(c, credential), AuthTypeJWT
		}
	default:
		return nil, ""
	}

	user, err := m.service.ValidateToken(ctx, credential)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("api token rejected")
		return nil, ""
	}
	return user, AuthTypeToken
}

func (m *Middleware) jwtAuth(c *gin.Context, token string) *entities.User {
	ctx := c.Request.Context()
	claims, err := m.jwt.Parse(token)
	if err != nil {
		logging.Ctx(ctx).Debug().Err(err).Msg("jwt rejected")
		return nil
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil
	}
	user, err := m.service.GetUserByID(ctx, userID)
	if err != nil {
		return nil
	}
	return user
}

// trySessionAuth attempts to authenticate using session cookie.
func (m *Middleware) trySessionAuth(c *gin.Context) *entities.User {
	if m.sessionManager == nil {
		return nil
	}

	userID := m.sessionManager.GetUserID(c.Request)
	if userID == 0 {
		return nil
	}

	user, err := m.service.GetUserByID(c.Request.Context(), userID)
	if err != nil {
		return nil
	}
	return user
}

func setUserContext(c *gin.Context, user *entities.User, authType AuthType) {
	c.Set(ContextKeyUserID, user.ID)
	c.Set(ContextKeyUsername, user.Username)
	c.Set(ContextKeyRole, user.Role)
	c.Set(ContextKeyAuthType, authType)
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detailNotProvided})
			return
		}
		c.Next()
	}
}

// RequireRole returns a middleware that requires a specific role.
// Anonymous callers get 401, authenticated callers without the role 403.
func RequireRole(roles ...entities.UserRole) gin.HandlerFunc {
	roleSet := make(map[entities.UserRole]bool)
	for _, r := range roles {
		roleSet[r] = true
	}

	return func(c *gin.Context) {
		if !IsAuthenticated(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": detailNotProvided})
			return
		}
		if !roleSet[GetUserRole(c)] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"detail": detailNoPermissions})
			return
		}
		c.Next()
	}
}

// GetUserID retrieves the authenticated user's ID from the context.
// Returns AnonymousUserID (0) if not authenticated.
func GetUserID(c *gin.Context) uint {
	if id, exists := c.Get(ContextKeyUserID); exists {
		if userID, ok := id.(uint); ok {
			return userID
		}
	}
	return AnonymousUserID
}

// GetUsername retrieves the authenticated user's username from the context.
func GetUsername(c *gin.Context) string {
	if name, exists := c.Get(ContextKeyUsername); exists {
		if username, ok := name.(string); ok {
			return username
		}
	}
	return ""
}

// GetUserRole retrieves the authenticated user's role from the context.
func GetUserRole(c *gin.Context) entities.UserRole {
	if r, exists := c.Get(ContextKeyRole); exists {
		if role, ok := r.(entities.UserRole); ok {
			return role
		}
	}
	return ""
}

// GetAuthType retrieves the authentication method used.
func GetAuthType(c *gin.Context) AuthType {
	if t, exists := c.Get(ContextKeyAuthType); exists {
		if authType, ok := t.(AuthType); ok {
			return authType
		}
	}
	return AuthTypeAnonymous
}

// IsAuthenticated returns true if the request carries a known user.
func IsAuthenticated(c *gin.Context) bool {
	return GetUserID(c) != AnonymousUserID
}

// IsAdmin reports whether the caller has the admin role.
func IsAdmin(c *gin.Context) bool {
	return GetUserRole(c) == entities.UserRoleAdmin
}
