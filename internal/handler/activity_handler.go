package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/response"
	"github.com/stemsi/examprep-backend/internal/service"
)

// ActivityHandler lists the import and distribution trail.
type ActivityHandler struct {
	activityService *service.ActivityService
	log             zerolog.Logger
}

func NewActivityHandler(activityService *service.ActivityService, log zerolog.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
		log:             log.With().Str("component", "activity_handler").Logger(),
	}
}

// ListActivityLogs godoc
// GET /api/v1/admin/activity-logs?limit=50
func (h *ActivityHandler) ListActivityLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	logs, err := h.activityService.Recent(c.Request.Context(), limit)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"activity_logs": logs})
}
