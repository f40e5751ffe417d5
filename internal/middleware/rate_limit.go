package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

const (
	DefaultRateLimit = 100 // writes per minute
	DefaultBurstSize = 10

	// LogoUploadCost is what a logo upload draws from the bucket: decode, two resizes and an S3 put
	LogoUploadCost = 5

	CleanupInterval = 5 * time.Minute
	LimiterTTL      = 10 * time.Minute
)

// RateLimiter keeps one token bucket per company. Reads are free, writes cost tokens.
type RateLimiter struct {
	mu       sync.Mutex
	buckets  map[uuid.UUID]*bucket
	perMin   int
	perSec   rate.Limit
	burst    int
	stopCh   chan struct{}
	stopOnce sync.Once
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter() *RateLimiter {
	return NewRateLimiterWithConfig(DefaultRateLimit, DefaultBurstSize)
}

// NewRateLimiterWithConfig starts a limiter refilling requestsPerMinute tokens a minute up to burstSize.
// Call Stop when done.
func NewRateLimiterWithConfig(requestsPerMinute int, burstSize int) *RateLimiter {
	rl := &RateLimiter{
		buckets: make(map[uuid.UUID]*bucket),
		perMin:  requestsPerMinute,
		perSec:  rate.Limit(float64(requestsPerMinute) / 60.0),
		burst:   burstSize,
		stopCh:  make(chan struct{}),
	}
	go rl.cleanup()
	return rl
}

// Allow draws a single token
func (r *RateLimiter) Allow(companyID uuid.UUID) bool {
	ok, _, _ := r.take(companyID, 1)
	return ok
}

// take draws cost tokens and reports what is left and when the bucket is full again.
// A cost above the burst is charged as the whole burst so it can still succeed.
func (r *RateLimiter) take(companyID uuid.UUID, cost int) (ok bool, remaining int, reset time.Time) {
	if cost > r.burst {
		cost = r.burst
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now()
	b, exists := r.buckets[companyID]
	if !exists {
		b = &bucket{limiter: rate.NewLimiter(r.perSec, r.burst)}
		r.buckets[companyID] = b
	}
	b.lastSeen = now

	ok = b.limiter.AllowN(now, cost)
	tokens := b.limiter.TokensAt(now)
	if tokens < 0 {
		tokens = 0
	}
	reset = now
	if r.perSec > 0 {
		missing := float64(r.burst) - tokens
		reset = now.Add(time.Duration(missing / float64(r.perSec) * float64(time.Second)))
	}
	return ok, int(tokens), reset
}

func (r *RateLimiter) cleanup() {
	ticker := time.NewTicker(CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			r.evictIdle(time.Now())
		case <-r.stopCh:
			return
		}
	}
}

func (r *RateLimiter) evictIdle(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for companyID, b := range r.buckets {
		if now.Sub(b.lastSeen) > LimiterTTL {
			delete(r.buckets, companyID)
			log.Debug().Str("company_id", companyID.String()).Msg("Dropped idle rate limiter")
		}
	}
}

// Stop ends the cleanup goroutine. Safe to call more than once.
func (r *RateLimiter) Stop() {
	r.stopOnce.Do(func() { close(r.stopCh) })
}

// requestCost is the number of tokens a request draws. Zero means it is not limited.
func requestCost(req *http.Request) int {
	switch req.Method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return 0
	}
	if strings.HasSuffix(req.URL.Path, "/company/logo") {
		return LogoUploadCost
	}
	return 1
}

// RateLimitMiddleware limits writes per company. It must run after Authenticate.
func RateLimitMiddleware(rl *RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cost := requestCost(c.Request())
			if cost == 0 {
				return next(c)
			}
			companyID := GetCompanyID(c)
			if companyID == uuid.Nil {
				return next(c)
			}

			ok, remaining, reset := rl.take(companyID, cost)
			h := c.Response().Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(rl.perMin))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(reset.Unix(), 10))
			if ok {
				return next(c)
			}

			retryAfter := int(time.Until(reset).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}
			h.Set("Retry-After", strconv.Itoa(retryAfter))

			log.Warn().
				Str("company_id", companyID.String()).
				Str("path", c.Request().URL.Path).
				Int("cost", cost).
				Int("retry_after", retryAfter).
				Msg("Rate limit exceeded")

			return c.JSON(http.StatusTooManyRequests, problemDetails{
				Type:     errorTypeRateLimit,
				Title:    "Rate Limit Exceeded",
				Status:   http.StatusTooManyRequests,
				Detail:   "Too many changes. Please retry after " + strconv.Itoa(retryAfter) + " seconds.",
				Instance: c.Request().URL.Path,
			})
		}
	}
}
