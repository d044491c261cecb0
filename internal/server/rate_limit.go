package server

import (
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/placements/internal/observability/logger"
	obsmetrics "github.com/smallbiznis/placements/internal/observability/metrics"
	"github.com/smallbiznis/placements/internal/ratelimit"
	"go.uber.org/zap"
)

const rateLimitReasonCallerRate = "caller-rate"

// QueryRateLimit throttles query endpoints per caller and endpoint. Limiter
// failures let the request through.
func (s *Server) QueryRateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.queryLimiter == nil || !s.queryLimiter.Enabled() {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		endpoint := normalizeRateLimitEndpoint(c)
		caller := strings.TrimSpace(c.GetHeader(s.callerHeader()))
		if caller == "" {
			caller = c.ClientIP()
		}

		res, err := s.queryLimiter.Allow(ctx, endpoint, caller)
		if err != nil {
			logger.FromContext(ctx).Warn("query rate limit check failed", zap.String("endpoint", endpoint), zap.Error(err))
			c.Next()
			return
		}
		if res == nil {
			c.Next()
			return
		}
		setRateLimitHeaders(c, res)
		if !res.Allowed {
			denyQueryRateLimit(c, endpoint, res, s.obsMetrics)
			return
		}

		recordRateLimitAllowed(ctx, endpoint, s.obsMetrics)
		c.Next()
	}
}

func setRateLimitHeaders(c *gin.Context, res *ratelimit.Result) {
	if res == nil || res.Limit <= 0 {
		return
	}
	c.Header("X-RateLimit-Limit", strconv.Itoa(res.Limit))
	c.Header("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	if !res.ResetTime.IsZero() {
		c.Header("X-RateLimit-Reset", strconv.FormatInt(res.ResetTime.Unix(), 10))
	}
}

func denyQueryRateLimit(c *gin.Context, endpoint string, res *ratelimit.Result, metrics *obsmetrics.Metrics) {
	ctx := c.Request.Context()
	logger.FromContext(ctx).Warn("query rate limit exceeded",
		zap.String("reason", rateLimitReasonCallerRate),
		zap.String("endpoint", endpoint),
	)
	recordRateLimitDenied(ctx, endpoint, rateLimitReasonCallerRate, metrics)

	c.Header("Retry-After", retryAfterSeconds(res.RetryAfter))
	c.Header("X-Rate-Limited-Reason", rateLimitReasonCallerRate)
	AbortWithError(c, ErrRateLimited)
}

func retryAfterSeconds(d time.Duration) string {
	secs := int(math.Ceil(d.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return strconv.Itoa(secs)
}

func recordRateLimitAllowed(ctx context.Context, endpoint string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitAllowed(ctx, endpoint)
}

func recordRateLimitDenied(ctx context.Context, endpoint, reason string, metrics *obsmetrics.Metrics) {
	if metrics == nil {
		return
	}
	metrics.RecordRateLimitDenied(ctx, endpoint, reason)
}

func normalizeRateLimitEndpoint(c *gin.Context) string {
	if c == nil {
		return "unknown"
	}
	endpoint := strings.TrimSpace(c.FullPath())
	if endpoint == "" {
		endpoint = strings.TrimSpace(c.Request.URL.Path)
	}
	if endpoint == "" {
		endpoint = "unknown"
	}
	return endpoint
}
