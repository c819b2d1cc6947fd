package middleware

import (
	"context"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/tavola-app/tavola-backend/api/responses"
	"github.com/tavola-app/tavola-backend/pkg/config"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
	"github.com/tavola-app/tavola-backend/pkg/logger"
)

type throttleStore interface {
	IncrWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	RateLimitKey(scope string) string
}

// Throttle enforces a fixed-window request counter per authenticated user,
// falling back to the client IP for unauthenticated traffic. The window
// counter lives in redis so all instances share it. Counter failures let the
// request through rather than taking the API down with the limiter.
func Throttle(cfg config.ThrottleConfig, store throttleStore, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if store == nil || cfg.Window <= 0 || throttleDisabled(cfg) {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			scope, limit := throttleScope(r, cfg)
			if scope == "" || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			count, err := store.IncrWithTTL(r.Context(), store.RateLimitKey(scope), cfg.Window)
			if err != nil {
				if logg != nil {
					logg.Warn(r.Context(), "throttle counter unavailable: "+err.Error())
				}
				next.ServeHTTP(w, r)
				return
			}
			if count > int64(limit) {
				responses.WriteError(r.Context(), logg, w,
					pkgerrors.New(pkgerrors.CodeRateLimit, "request limit reached, retry later"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func throttleDisabled(cfg config.ThrottleConfig) bool {
	return cfg.UserLimit <= 0 && cfg.AnonIPLimit <= 0
}

func throttleScope(r *http.Request, cfg config.ThrottleConfig) (string, int) {
	if actor, ok := ActorFromContext(r.Context()); ok {
		return "user:" + actor.UserID.String(), cfg.UserLimit
	}
	if ip := clientIP(r); ip != "" {
		return "ip:" + ip, cfg.AnonIPLimit
	}
	return "", 0
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return strings.TrimSpace(r.RemoteAddr)
	}
	return host
}
