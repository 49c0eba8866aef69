package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/distributor"
	"github.com/stemsi/examprep-backend/internal/response"
	"github.com/stemsi/examprep-backend/internal/service"
)

// failFromError maps service errors onto the response envelope. Anything it
// does not recognize is logged and reported as an internal error.
func failFromError(c *gin.Context, log zerolog.Logger, err error) {
	var insufficient *distributor.InsufficientBankError

	switch {
	case errors.As(err, &insufficient):
		response.FailWithData(c, http.StatusUnprocessableEntity, response.ErrInsufficientBank, gin.H{
			"scope": insufficient.Scope,
			"have":  insufficient.Have,
			"need":  insufficient.Need,
		})
	case errors.Is(err, distributor.ErrInvalidQuota):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidQuota)
	case errors.Is(err, service.ErrInvalidScope):
		response.Fail(c, http.StatusBadRequest, response.ErrInvalidScope)
	case errors.Is(err, service.ErrImportTooLarge):
		response.Fail(c, http.StatusRequestEntityTooLarge, response.ErrImportTooLarge)
	case errors.Is(err, service.ErrExamNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrExamNotFound)
	case errors.Is(err, service.ErrPartNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrPartNotFound)
	case errors.Is(err, service.ErrNoReport):
		response.Fail(c, http.StatusNotFound, response.ErrNoReport)
	case errors.Is(err, service.ErrScopeBusy):
		response.Fail(c, http.StatusConflict, response.ErrScopeBusy)
	default:
		log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
