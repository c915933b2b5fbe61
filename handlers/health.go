package handlers

import (
	"net/http"

	"consultme/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the last dependency snapshot. It answers 503 when
// Mongo or any Redis client was unreachable at the last check.
func HealthHandler(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	healthy := status.Mongo
	for _, ok := range status.Redis {
		healthy = healthy && ok
	}
	if status.CheckedAt.IsZero() {
		healthy = true
	}
	label := "ok"
	if !healthy {
		code = http.StatusServiceUnavailable
		label = "degraded"
	}
	c.JSON(code, gin.H{"status": label, "checks": status})
}
