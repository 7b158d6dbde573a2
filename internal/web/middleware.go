package web

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/localeforge/localeforge/internal/core"
)

type ctxKey int

const (
	ctxUserID ctxKey = iota
	ctxWorkspaceID
)

// Cookie names shared by the middleware and handlers.
const (
	sessionCookie   = "session"
	workspaceCookie = "ws"
	localeCookie    = "locale"
)

// userIDFromContext returns the authenticated user id set by sessionAuth.
func userIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxUserID).(uuid.UUID)
	return id
}

// workspaceIDFromContext returns the active workspace id set by
// workspaceContext.
func workspaceIDFromContext(ctx context.Context) uuid.UUID {
	id, _ := ctx.Value(ctxWorkspaceID).(uuid.UUID)
	return id
}

// sessionAuth authenticates the request from the session cookie, or an
// Authorization bearer token for non-browser clients, and stores the user id
// in the request context. Responds 401 when neither yields a valid token.
func (s *Server) sessionAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			if c, err := r.Cookie(sessionCookie); err == nil {
				token = c.Value
			}
		}

		userID, err := s.jwt.ValidateSessionToken(token)
		if err != nil {
			writeText(w, http.StatusUnauthorized, "Unauthorized")
			return
		}

		ctx := context.WithValue(r.Context(), ctxUserID, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// workspaceContext resolves the active workspace from the ws cookie and
// verifies the authenticated user's membership. 400 without a selected
// workspace, 403 for non-members, 503 when membership cannot be checked
// because the store is down.
func (s *Server) workspaceContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c, err := r.Cookie(workspaceCookie)
		if err != nil {
			writeText(w, http.StatusBadRequest, "No workspace selected")
			return
		}
		workspaceID, err := uuid.Parse(c.Value)
		if err != nil {
			writeText(w, http.StatusBadRequest, "No workspace selected")
			return
		}

		userID := userIDFromContext(r.Context())
		if err := s.service.ValidateMembership(r.Context(), workspaceID, userID); err != nil {
			switch {
			case errors.Is(err, core.ErrNoWorkspace):
				writeText(w, http.StatusBadRequest, "No workspace selected")
			case errors.Is(err, core.ErrNotMember):
				writeText(w, http.StatusForbidden, "Forbidden")
			default:
				respondServiceError(w, r, err)
			}
			return
		}

		ctx := context.WithValue(r.Context(), ctxWorkspaceID, workspaceID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireEditor gates mutating routes to workspace owners and admins. Runs
// after workspaceContext, so the workspace id is already validated.
func (s *Server) requireEditor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ok, err := s.service.IsOwnerOrAdmin(r.Context(), workspaceIDFromContext(r.Context()), userIDFromContext(r.Context()))
		if err != nil {
			respondServiceError(w, r, err)
			return
		}
		if !ok {
			writeText(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func bearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}

// securityHeaders adds security headers to all responses.
func securityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Prevent MIME type sniffing
		w.Header().Set("X-Content-Type-Options", "nosniff")

		// Prevent clickjacking
		w.Header().Set("X-Frame-Options", "DENY")

		// Control referrer information
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		next.ServeHTTP(w, r)
	})
}

// rateLimiter implements a simple token bucket rate limiter per IP.
type rateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rate     int           // requests per window
	window   time.Duration // time window
}

type visitor struct {
	tokens    int
	lastReset time.Time
}

// newRateLimiter creates a rate limiter with the specified rate per window.
func newRateLimiter(rate int, window time.Duration) *rateLimiter {
	rl := &rateLimiter{
		visitors: make(map[string]*visitor),
		rate:     rate,
		window:   window,
	}
	// Start cleanup goroutine
	go rl.cleanup()
	return rl
}

// cleanup removes stale visitor entries every minute.
func (rl *rateLimiter) cleanup() {
	for {
		time.Sleep(time.Minute)
		rl.mu.Lock()
		for ip, v := range rl.visitors {
			if time.Since(v.lastReset) > rl.window*2 {
				delete(rl.visitors, ip)
			}
		}
		rl.mu.Unlock()
	}
}

// allow checks if the request should be allowed and consumes a token if so.
func (rl *rateLimiter) allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	if !exists {
		rl.visitors[ip] = &visitor{
			tokens:    rl.rate - 1,
			lastReset: time.Now(),
		}
		return true
	}

	// Reset tokens if window has passed
	if time.Since(v.lastReset) > rl.window {
		v.tokens = rl.rate - 1
		v.lastReset = time.Now()
		return true
	}

	if v.tokens <= 0 {
		return false
	}

	v.tokens--
	return true
}

// middleware returns an HTTP middleware that rate limits by IP.
func (rl *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := r.RemoteAddr
		// RealIP middleware rewrites RemoteAddr, X-Real-IP covers proxies
		// that only set the header.
		if realIP := r.Header.Get("X-Real-IP"); realIP != "" {
			ip = realIP
		}

		if !rl.allow(ip) {
			w.Header().Set("Retry-After", "60")
			writeText(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}
