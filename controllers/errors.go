package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/cafe-pos/billing"
	"github.com/yeremiapane/cafe-pos/services"
	"github.com/yeremiapane/cafe-pos/utils"
)

// respondServiceError maps domain errors onto HTTP statuses. Anything
// unrecognized is a backend failure and its message passes through
// verbatim.
func respondServiceError(c *gin.Context, err error) {
	var vErr *services.ValidationError
	switch {
	case errors.As(err, &vErr),
		errors.Is(err, billing.ErrInvalidAmount),
		errors.Is(err, billing.ErrSettlementIncomplete):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrNotAuthorized):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, services.ErrInvalidState),
		errors.Is(err, services.ErrVersionConflict):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, gorm.ErrRecordNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
