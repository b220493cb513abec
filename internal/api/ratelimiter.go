package api

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const healthPath = "/api/health"

type rateLimiter interface {
	Allow() bool
}

// tokenBucket is the production rateLimiter backed by x/time/rate.
type tokenBucket struct {
	limiter *rate.Limiter
}

func newTokenBucketLimiter(ratePerSecond float64, burst int) *tokenBucket {
	if ratePerSecond <= 0 {
		ratePerSecond = 1
	}
	if burst <= 0 {
		burst = 1
	}
	return &tokenBucket{limiter: rate.NewLimiter(rate.Limit(ratePerSecond), burst)}
}

func (b *tokenBucket) Allow() bool {
	return b.limiter.Allow()
}

// retryAfter reports how long until the next token becomes available.
func (b *tokenBucket) retryAfter() time.Duration {
	r := b.limiter.Reserve()
	defer r.Cancel()
	return r.Delay()
}

// retryAfterSeconds rounds the limiter's delay up to whole seconds, at least one.
func retryAfterSeconds(limiter rateLimiter) int {
	hinted, ok := limiter.(interface{ retryAfter() time.Duration })
	if !ok {
		return 1
	}
	seconds := int(math.Ceil(hinted.retryAfter().Seconds()))
	return max(seconds, 1)
}

// rateLimitMiddleware rejects requests once the limiter runs dry. Health checks
// always pass so probes never observe a throttled service as down.
func rateLimitMiddleware(limiter rateLimiter, logger *zap.Logger, next http.Handler) http.Handler {
	if limiter == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == healthPath || limiter.Allow() {
			next.ServeHTTP(w, r)
			return
		}
		logger.Debug("request throttled",
			zap.String("path", r.URL.Path),
			zap.String("request_id", requestIDFromContext(r.Context())))
		w.Header().Set("Retry-After", strconv.Itoa(retryAfterSeconds(limiter)))
		writeError(w, http.StatusTooManyRequests, "Too many requests", "rate limit exceeded, please retry shortly")
	})
}
