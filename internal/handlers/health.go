package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/peerfeed/internal/monitoring"
	"github.com/charlesng35/peerfeed/pkg/response"
)

const healthMessage = "Feedback system is running"

type healthPayload struct {
	Status  string                   `json:"status"`
	Message string                   `json:"message"`
	Checks  []monitoring.ProbeResult `json:"checks"`
}

// Health reports service status. Without a manager it always answers healthy.
func Health(manager *monitoring.HealthManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		payload := healthPayload{
			Status:  "healthy",
			Message: healthMessage,
			Checks:  []monitoring.ProbeResult{},
		}
		if manager == nil {
			response.Success(c, http.StatusOK, payload)
			return
		}

		report := manager.Evaluate(requestContext(c))
		payload.Checks = report.Checks
		if !report.Healthy {
			payload.Status = "unhealthy"
			payload.Message = "One or more dependencies are unavailable"
			response.Success(c, http.StatusServiceUnavailable, payload)
			return
		}
		response.Success(c, http.StatusOK, payload)
	}
}
