package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"rental-api/domain"
	"rental-api/dto"
)

// abortWithError traduce el tipo de error de dominio a un status HTTP.
func abortWithError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArgument):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrUnauthorized):
		status = http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthenticated):
		status = http.StatusUnauthorized
	case errors.Is(err, domain.ErrFailedPrecondition), errors.Is(err, domain.ErrAlreadyExists):
		status = http.StatusConflict
	}

	message := err.Error()
	if status == http.StatusInternalServerError {
		// no filtrar detalles internos hacia el cliente
		message = "internal server error"
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: message})
}
