package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/distributor"
	"github.com/stemsi/examprep-backend/internal/model"
	"github.com/stemsi/examprep-backend/internal/response"
	"github.com/stemsi/examprep-backend/internal/service"
	"github.com/stemsi/examprep-backend/internal/validator"
)

// DistributionHandler handles distribution runs and their reports.
type DistributionHandler struct {
	distributionService *service.DistributionService
	log                 zerolog.Logger
}

func NewDistributionHandler(distributionService *service.DistributionService, log zerolog.Logger) *DistributionHandler {
	return &DistributionHandler{
		distributionService: distributionService,
		log:                 log.With().Str("component", "distribution_handler").Logger(),
	}
}

// Distribute godoc
// POST /api/v1/admin/distributions
// Copies shuffled, non-overlapping bank slices into the target exam parts.
func (h *DistributionHandler) Distribute(c *gin.Context) {
	var req model.DistributeRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	in := service.DistributeInput{Sections: make([]service.SectionInput, len(req.Sections))}
	for i, sec := range req.Sections {
		targets := make([]distributor.Target, len(sec.Targets))
		for j, t := range sec.Targets {
			targets[j] = distributor.Target{ExamID: t.ExamID, PartID: t.PartID, Quota: t.Quota}
		}
		in.Sections[i] = service.SectionInput{Scope: sec.Scope, Targets: targets}
	}

	report, err := h.distributionService.Distribute(c.Request.Context(), in)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"report": report})
}

// LastReport godoc
// GET /api/v1/admin/distributions/last?scope=
func (h *DistributionHandler) LastReport(c *gin.Context) {
	report, err := h.distributionService.LastReport(c.Request.Context(), c.Query("scope"))
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"report": report})
}
