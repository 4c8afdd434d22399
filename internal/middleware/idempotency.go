package middleware

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const idempotencyHeader = "X-Idempotency-Key"

// IdempotencyGuard rejects a repeated submission carrying the same
// X-Idempotency-Key while (or shortly after) the first one is processed, so
// a double-clicked booking form issues exactly one create. The key is
// claimed with SETNX before the handler runs; if Redis is unreachable the
// request proceeds, since duplicate protection is best-effort and must not
// take booking creation down with it.
func IdempotencyGuard(rdb *redis.Client, ttl time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(idempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		userID, _ := GetUserID(c)
		redisKey := "idem:" + userID.String() + ":" + key

		claimed, err := rdb.SetNX(c.Request.Context(), redisKey, "1", ttl).Result()
		if err != nil {
			log.Warn("idempotency check unavailable, allowing request",
				zap.Error(err),
			)
			c.Next()
			return
		}

		if !claimed {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error": "a request with this idempotency key is already being processed",
			})
			return
		}
		c.Next()
	}
}
