package handlers

import (
	"errors"
	"net/http"

	"home-battery-roi/internal/api/models"
	"home-battery-roi/internal/model"

	"github.com/gin-gonic/gin"
)

func abortWithError(c *gin.Context, status int, code string, err error) {
	c.AbortWithStatusJSON(status, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}

// abortWithRunError maps core errors onto the API error envelope.
func abortWithRunError(c *gin.Context, err error) {
	if errors.Is(err, model.ErrInvalidInput) {
		abortWithError(c, http.StatusBadRequest, "INVALID_INPUT", err)
		return
	}
	abortWithError(c, http.StatusInternalServerError, "RUN_ERROR", err)
}
