package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/response"
	"github.com/stemsi/examprep-backend/internal/service"
)

// BankHandler handles bank browsing and maintenance.
type BankHandler struct {
	importService *service.ImportService
	log           zerolog.Logger
}

func NewBankHandler(importService *service.ImportService, log zerolog.Logger) *BankHandler {
	return &BankHandler{
		importService: importService,
		log:           log.With().Str("component", "bank_handler").Logger(),
	}
}

// ListScopes godoc
// GET /api/v1/admin/banks
func (h *BankHandler) ListScopes(c *gin.Context) {
	scopes, err := h.importService.ListScopes(c.Request.Context())
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"banks": scopes})
}

// ListQuestions godoc
// GET /api/v1/admin/banks/:scope/questions?page=1&per_page=20
func (h *BankHandler) ListQuestions(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("per_page", "20"))

	questions, pagination, err := h.importService.ListBank(c.Request.Context(), c.Param("scope"), page, perPage)
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"questions": questions}, pagination)
}

// ClearQuestions godoc
// DELETE /api/v1/admin/banks/:scope/questions
// Empties the bank. Exam parts keep the copies they already received.
func (h *BankHandler) ClearQuestions(c *gin.Context) {
	removed, err := h.importService.ClearBank(c.Request.Context(), c.Param("scope"))
	if err != nil {
		failFromError(c, h.log, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"removed": removed})
}
