package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"pagecraft-backend/pkg/auth"
	"pagecraft-backend/pkg/common"
)

// devUserID is the identity every request gets when authentication runs
// without a validator (development only)
const devUserID = "dev-user"

// Authenticate validates the bearer token and stores the user context on
// the request. A nil validator enables the development fallback identity;
// production wiring always passes a validator.
func Authenticate(validator *auth.JWTValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil {
				ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{UserID: devUserID})
				next.ServeHTTP(w, r.WithContext(ctx))
				return
			}

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing authorization header")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid authorization header format")
				return
			}

			claims, err := validator.ValidateToken(parts[1])
			if err != nil {
				logger.Debug("Token validation failed", zap.Error(err))
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
				return
			}

			ctx := auth.SetUserInContext(r.Context(), &auth.UserContext{
				UserID: claims.UserID,
				Email:  claims.Email,
				Roles:  claims.Roles,
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RateLimit guards a route subtree with a per-user token bucket
func RateLimit(limiter *auth.TokenBucketLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, err := auth.GetUserFromContext(r.Context())
			if err != nil {
				common.RespondError(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
				return
			}

			allowed, err := limiter.Allow(r.Context(), user.UserID)
			if err != nil {
				logger.Warn("Rate limiter error", zap.Error(err))
			}
			if !allowed {
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMIT", "rate limit exceeded")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
