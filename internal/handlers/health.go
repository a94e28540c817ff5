package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/monocle-dev/rolodex/internal/monitors"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// HealthCheck reports liveness along with a database ping.
func HealthCheck(gdb *gorm.DB, log logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := monitors.CheckDatabase(c.Request.Context(), gdb, 2*time.Second); err != nil {
			log.WithError(err).Warn("Health check failed")
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unavailable",
				"message":   "Database is unreachable",
				"timestamp": time.Now().Format(time.RFC3339),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"message":   "Rolodex is running",
			"timestamp": time.Now().Format(time.RFC3339),
		})
	}
}
