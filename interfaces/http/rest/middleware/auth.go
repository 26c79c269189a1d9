package middleware

import (
	"errors"
	"net"
	"net/http"
	"strconv"

	"insights-backend/pkg/auth"
	"insights-backend/pkg/common"

	"go.uber.org/zap"
)

// RequireBearer rejects requests whose bearer token does not match the
// shared secret
func RequireBearer(validator *auth.SecretValidator, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, err := auth.ExtractBearerToken(r)
			if err != nil {
				respondUnauthorized(w, err)
				return
			}
			if err := validator.Validate(token); err != nil {
				logger.Warn("Rejected bearer token",
					zap.String("path", r.URL.Path),
					zap.String("remoteAddr", r.RemoteAddr),
				)
				respondUnauthorized(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit caps requests per client address. Run it after chi's RealIP so
// proxied addresses are honoured.
func RateLimit(limiter *auth.IPRateLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIP(r)
			allowed, err := limiter.Allow(r.Context(), ip)
			if err != nil {
				// limiter failures never block traffic
				logger.Error("Rate limiter failed", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				logger.Info("Rate limit exceeded", zap.String("ip", ip), zap.String("path", r.URL.Path))
				w.Header().Set("Retry-After", retryAfter(limiter))
				common.RespondError(w, http.StatusTooManyRequests, common.StandardErrorCodes.TooManyRequests, "Rate limit exceeded")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the host part of the request's remote address
func ClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func retryAfter(limiter *auth.IPRateLimiter) string {
	seconds := int(limiter.WindowSize().Seconds())
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

func respondUnauthorized(w http.ResponseWriter, err error) {
	message := "Invalid token"
	switch {
	case errors.Is(err, auth.ErrMissingToken):
		message = "Missing authorization header"
	case errors.Is(err, auth.ErrMalformed):
		message = "Invalid authorization header format"
	}
	w.Header().Set("WWW-Authenticate", `Bearer realm="insights"`)
	common.RespondError(w, http.StatusUnauthorized, common.StandardErrorCodes.Unauthorized, message)
}
