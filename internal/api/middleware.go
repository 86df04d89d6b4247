package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/lactaria/produccion/backend/internal/api/webhookauth"
	"github.com/lactaria/produccion/backend/pkg/config"
	"github.com/lactaria/produccion/backend/pkg/logger"
	"github.com/lactaria/produccion/backend/pkg/redis"
)

// corsMiddleware applies the permissive cross-origin policy the dashboard
// relies on and answers preflight requests directly, before routing.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Client-Info, Apikey, X-Webhook-Signature")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// loggingMiddleware logs HTTP requests.
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			next.ServeHTTP(w, r)

			log.WithFields(map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware turns panics into generic 500 responses so no
// unhandled fault ever reaches the transport layer.
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(map[string]interface{}{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// rateLimitMiddleware caps webhook call volume. Pass-through when Redis is
// disabled.
func rateLimitMiddleware(limiter *redis.RateLimiter, cfg config.IngestConfig, log *logger.Logger) mux.MiddlewareFunc {
	limit := redis.RateLimitConfig{
		Key:    "webhook",
		Limit:  cfg.RateLimit,
		Window: cfg.RateLimitWindow,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			allowed, _, err := limiter.Allow(r.Context(), limit)
			if err != nil {
				// Rate limiting is protection, not correctness; let the
				// request through when the limiter itself fails.
				log.WithError(err).Warn("Rate limit check failed")
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too many requests",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// signatureMiddleware verifies the webhook HMAC when a secret is
// configured. The body is restored for the handler.
func signatureMiddleware(secret string, log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if secret == "" {
				next.ServeHTTP(w, r)
				return
			}

			body, err := io.ReadAll(r.Body)
			if err != nil {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Failed to read request body",
				})
				return
			}
			r.Body = io.NopCloser(bytes.NewReader(body))

			if !webhookauth.Verify(secret, body, r.Header.Get(webhookauth.HeaderName)) {
				log.WithField("path", r.URL.Path).Warn("Webhook signature verification failed")
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Invalid signature",
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
