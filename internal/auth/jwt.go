package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/mrlokans/foodgram/internal/entities"
)

const jwtIssuer = "foodgram"

var ErrJWTDisabled = errors.New("jwt issuing is not configured")

// Claims are the JWT access token claims.
type Claims struct {
	Role entities.UserRole `json:"role"`
	jwt.RegisteredClaims
}

// UserID returns the numeric subject of the token.
func (c *Claims) UserID() (uint, error) {
	id, err := strconv.ParseUint(c.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, ErrInvalidToken
	}
	return uint(id), nil
}

// JWTIssuer signs and verifies HS256 access tokens.
type JWTIssuer struct {
	secret   []byte
	lifetime time.Duration
	now      func() time.Time
}

// NewJWTIssuer returns nil when secret is empty so callers can treat JWT
// support as switched off.
func NewJWTIssuer(secret string, lifetime time.Duration) *JWTIssuer {
	if secret == "" {
		return nil
	}
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &JWTIssuer{secret: []byte(secret), lifetime: lifetime, now: time.Now}
}

// Issue creates a signed access token for the user.
func (j *JWTIssuer) Issue(user *entities.User) (string, error) {
	if j == nil {
		return "", ErrJWTDisabled
	}
	now := j.now()
	claims := Claims{
		Role: user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    jwtIssuer,
			Subject:   strconv.FormatUint(uint64(user.ID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(j.lifetime)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(j.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Parse verifies signature, issuer and expiry.
func (j *JWTIssuer) Parse(token string) (*Claims, error) {
	if j == nil {
		return nil, ErrJWTDisabled
	}
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return j.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(jwtIssuer),
		jwt.WithTimeFunc(j.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	return claims, nil
}

// looksLikeJWT reports whether a bearer credential has the three-segment
// compact form. API keys are plain hex and never contain dots.
func looksLikeJWT(token string) bool {
	return strings.Count(token, ".") == 2
}
