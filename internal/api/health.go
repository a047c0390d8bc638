package api

import (
	"net/http" // HTTP status codes

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// HealthHandler reports whether the database and, when configured, Redis answer
func HealthHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		status := gin.H{"database": "ok"}
		healthy := true

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			logrus.WithError(err).Warn("Health check: database unreachable")
			status["database"] = "unreachable"
			healthy = false
		}

		if rdb == nil {
			status["cache"] = "disabled"
		} else if err := rdb.Ping(ctx).Err(); err != nil {
			logrus.WithError(err).Warn("Health check: redis unreachable")
			status["cache"] = "unreachable"
			healthy = false
		} else {
			status["cache"] = "ok"
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, status)
			return
		}
		c.JSON(http.StatusOK, status)
	}
}
