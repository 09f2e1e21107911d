// Package auth authenticates API callers and issues their credentials.
//
// Three credential kinds are accepted on every request:
//   - "Authorization: Token <key>" or "Bearer <key>" with an API key from
//     POST /api/auth/token/login/. Only the SHA-256 of the key is stored.
//   - "Authorization: Bearer <jwt>" with an HS256 token from
//     POST /api/auth/jwt/create/, when AUTH_JWT_SECRET is set.
//   - A session cookie from POST /api/auth/session/login/, when
//     AUTH_SESSIONS_ENABLED is true. Unsafe session requests must carry
//     the X-CSRF-Token header handed out on safe requests.
//
// Requests without credentials proceed anonymously; RequireAuth and
// RequireRole guard individual routes.
//
//	authService := auth.NewService(db, cfg.Auth)
//	mw := auth.NewMiddleware(authService, sessions, auth.NewJWTIssuer(cfg.Auth.JWTSecret, cfg.Auth.JWTLifetime))
//	router.Use(mw.Handler())
//
//	userID := auth.GetUserID(c) // AnonymousUserID when not logged in
package auth
