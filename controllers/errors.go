package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mesalink/mesalink/models"
	"github.com/mesalink/mesalink/utils"
)

// respondServiceError maps the error taxonomy onto the fixed wire
// shapes of the diner/kitchen endpoints. Transition rejections are the
// one case that deliberately exposes detail: current status plus the
// allowed next states so the client can resynchronize.
func respondServiceError(c *gin.Context, err error) {
	var validation *utils.ValidationError
	if errors.As(err, &validation) {
		body := gin.H{"message": validation.Message}
		if len(validation.Fields) > 0 {
			body["fields"] = validation.Fields
		}
		c.JSON(http.StatusBadRequest, body)
		return
	}

	var invalidTransition *models.InvalidTransitionError
	if errors.As(err, &invalidTransition) {
		c.JSON(http.StatusBadRequest, gin.H{
			"message":         "status transition not allowed",
			"currentStatus":   invalidTransition.Current,
			"allowedStatuses": invalidTransition.Allowed,
		})
		return
	}

	var notFound *utils.NotFoundError
	if errors.As(err, &notFound) {
		c.JSON(http.StatusNotFound, gin.H{"message": notFound.Error()})
		return
	}

	var forbidden *utils.ForbiddenError
	if errors.As(err, &forbidden) {
		c.JSON(http.StatusForbidden, gin.H{"message": forbidden.Error()})
		return
	}

	utils.ErrorLogger.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": "internal server error"})
}

// respondBindingError turns a gin binding failure into a 400 with
// per-field detail.
func respondBindingError(c *gin.Context, err error) {
	respondServiceError(c, utils.NewValidationError(err))
}
