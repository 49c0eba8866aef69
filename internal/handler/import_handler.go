package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/model"
	"github.com/stemsi/examprep-backend/internal/response"
	"github.com/stemsi/examprep-backend/internal/service"
	"github.com/stemsi/examprep-backend/internal/validator"
)

// ImportHandler handles pasted-text imports into banks and exam parts.
type ImportHandler struct {
	importService *service.ImportService
	log           zerolog.Logger
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(importService *service.ImportService, log zerolog.Logger) *ImportHandler {
	return &ImportHandler{
		importService: importService,
		log:           log.With().Str("component", "import_handler").Logger(),
	}
}

// ImportToBank godoc
// POST /api/v1/admin/banks/:scope/import
// Parses pasted questions or passages into a bank scope.
func (h *ImportHandler) ImportToBank(c *gin.Context) {
	var req model.ImportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	report, err := h.importService.ImportBatch(c.Request.Context(), service.ImportInput{
		Scope:            c.Param("scope"),
		Text:             req.Text,
		Mode:             model.ImportMode(strings.ToLower(req.Mode)),
		Kind:             model.ImportKind(strings.ToLower(req.Kind)),
		SubQuestionCount: req.SubQuestionCount,
		Marks:            req.Marks,
		NegativeMarks:    req.NegativeMarks,
	})
	h.respond(c, report, err)
}

// ImportToExam godoc
// POST /api/v1/admin/exams/:exam_id/parts/:part_id/import
// Parses pasted questions straight into an exam part.
func (h *ImportHandler) ImportToExam(c *gin.Context) {
	examID, err := uuid.Parse(c.Param("exam_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}
	partID, err := uuid.Parse(c.Param("part_id"))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidID)
		return
	}

	var req model.ExamImportRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	report, err := h.importService.ImportIntoExam(c.Request.Context(), service.ExamImportInput{
		ExamID:        examID,
		PartID:        partID,
		Text:          req.Text,
		Mode:          model.ImportMode(strings.ToLower(req.Mode)),
		Marks:         req.Marks,
		NegativeMarks: req.NegativeMarks,
	})
	h.respond(c, report, err)
}

func (h *ImportHandler) respond(c *gin.Context, report *model.ImportReport, err error) {
	if errors.Is(err, service.ErrEmptyImport) {
		response.FailWithData(c, http.StatusUnprocessableEntity, response.ErrNothingParsed, gin.H{"report": report})
		return
	}
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"report": report})
}
