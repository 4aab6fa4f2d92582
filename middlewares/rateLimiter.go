package middlewares

import (
	"net/http"
	"time"

	"circleserver/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	loginAttemptLimit  = 10
	loginAttemptWindow = time.Minute
)

// LoginRateLimiter はログイン試行をクライアントIP単位でRedisに記録し、
// 1分間に10回を超えた場合429を返します。
// Redisが未接続（rdb == nil）または一時的に落ちている場合は素通しします。
func LoginRateLimiter(rdb *redis.Client, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if rdb == nil {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		key := "login_attempts:" + c.ClientIP()

		count, err := rdb.Incr(ctx, key).Result()
		if err != nil {
			logger.Warn("ログイン試行カウントの更新に失敗", zap.Error(err))
			c.Next()
			return
		}
		if count == 1 {
			if err := rdb.Expire(ctx, key, loginAttemptWindow).Err(); err != nil {
				logger.Warn("試行カウントのTTL設定に失敗", zap.Error(err))
			}
		}

		if count > loginAttemptLimit {
			logger.Warn("ログイン試行回数の上限を超過",
				zap.String("clientIP", c.ClientIP()),
				zap.Int64("attempts", count),
			)
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"message":   "Fail",
				"errorCode": models.CodeAuthTooManyAttempts,
			})
			return
		}

		c.Next()
	}
}
