package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/tkamphefner/Inventory/internal/audit"
	"github.com/tkamphefner/Inventory/internal/worker"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Health reports postgres and redis connectivity plus the audit dead-letter
// backlog, so a stuck audit writer shows up before entries go missing.
// Responds 503 when either store is unreachable.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbOK := true
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
			dbOK = false
		}
		redisOK := rdb.Ping(ctx).Err() == nil

		payload := gin.H{
			"ok":    dbOK && redisOK,
			"db":    statusWord(dbOK),
			"redis": statusWord(redisOK),
		}
		if redisOK {
			if backlog, err := worker.DLQLength(ctx, rdb, audit.Queue); err == nil {
				payload["audit_dlq"] = backlog
			}
		}

		status := http.StatusOK
		if !dbOK || !redisOK {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, payload)
	}
}

func statusWord(ok bool) string {
	if ok {
		return "up"
	}
	return "down"
}
