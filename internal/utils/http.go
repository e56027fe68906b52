package utils

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// ErrorResponse is the error envelope every endpoint returns. Error carries
// a short human-readable message; Details is optional context.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// RespondError writes the error envelope with the given status
func RespondError(c *gin.Context, status int, message string, details ...string) {
	resp := ErrorResponse{Error: message}
	if len(details) > 0 {
		resp.Details = details[0]
	}
	c.AbortWithStatusJSON(status, resp)
}

// BadRequest writes a 400 response
func BadRequest(c *gin.Context, message string, details ...string) {
	RespondError(c, http.StatusBadRequest, message, details...)
}

// Unauthorized writes a 401 response
func Unauthorized(c *gin.Context, message string) {
	RespondError(c, http.StatusUnauthorized, message)
}

// Forbidden writes a 403 response
func Forbidden(c *gin.Context, message string) {
	RespondError(c, http.StatusForbidden, message)
}

// NotFound writes a 404 response
func NotFound(c *gin.Context, message string) {
	RespondError(c, http.StatusNotFound, message)
}

// Conflict writes a 409 response
func Conflict(c *gin.Context, message string, details ...string) {
	RespondError(c, http.StatusConflict, message, details...)
}

// InternalServerError writes a 500 response. Internal detail stays out of
// the body; it belongs in the logs.
func InternalServerError(c *gin.Context, message string) {
	RespondError(c, http.StatusInternalServerError, message)
}

// ServiceUnavailable writes a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	RespondError(c, http.StatusServiceUnavailable, message)
}

// RateLimiter manages per-client request rate limits
type RateLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	lastSeen map[string]time.Time
	rate     rate.Limit
	burst    int
}

// NewRateLimiter creates a new rate limiter allowing rps requests per second
// with the given burst per client key.
func NewRateLimiter(rps int, burst int) *RateLimiter {
	return &RateLimiter{
		limiters: make(map[string]*rate.Limiter),
		lastSeen: make(map[string]time.Time),
		rate:     rate.Limit(rps),
		burst:    burst,
	}
}

// Allow reports whether the client identified by key may proceed
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	limiter, exists := rl.limiters[key]
	if !exists {
		limiter = rate.NewLimiter(rl.rate, rl.burst)
		rl.limiters[key] = limiter
	}
	rl.lastSeen[key] = time.Now()

	return limiter.Allow()
}

// Cleanup removes limiters for clients idle longer than maxAge
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for key, seen := range rl.lastSeen {
		if time.Since(seen) > maxAge {
			delete(rl.limiters, key)
			delete(rl.lastSeen, key)
		}
	}
}

// RateLimitMiddleware rejects clients that exceed the limiter's rate with a
// 429. Keyed by client IP.
func RateLimitMiddleware(rl *RateLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !rl.Allow(c.ClientIP()) {
			RespondError(c, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		c.Next()
	}
}
