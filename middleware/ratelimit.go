package middleware

import (
	"arzaq-api/apperr"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"
)

// RateLimit applies a process-wide token bucket to the API surface
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	limiter := rate.NewLimiter(rate.Limit(rps), burst)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			apperr.Abort(c, apperr.New(apperr.KindRateLimited,
				"too many requests, please try again later"))
			return
		}
		c.Next()
	}
}
