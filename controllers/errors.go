package controllers

import (
	"errors"
	"net/http"

	"elabcrm-backend/services"
	"elabcrm-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// respondWithServiceError maps service error kinds onto HTTP statuses. The
// error is attached to the context so middleware can report it.
func respondWithServiceError(c *gin.Context, err error, fallback string) {
	_ = c.Error(err)

	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		utils.RespondWithDetails(c, http.StatusBadRequest, "Invalid input", validationErr.Violations)
	case errors.Is(err, services.ErrNotFound):
		utils.RespondWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, services.ErrConflict):
		utils.RespondWithError(c, http.StatusConflict, "Record already exists")
	case errors.Is(err, services.ErrInvalidCredentials):
		utils.RespondWithError(c, http.StatusUnauthorized, "Invalid credentials")
	case errors.Is(err, services.ErrDispatch):
		utils.RespondWithError(c, http.StatusBadGateway, "Failed to deliver message")
	default:
		utils.RespondWithError(c, http.StatusInternalServerError, fallback)
	}
}

func parseIDParam(c *gin.Context, entity string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+entity+" ID format")
		return uuid.Nil, false
	}
	return id, true
}

// bindJSON decodes the body; malformed JSON is a 400 before any service call.
func bindJSON(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return false
	}
	return true
}

func listFilter(c *gin.Context) (services.ListFilter, bool) {
	var filter services.ListFilter
	if raw := c.Query("clientId"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid client ID format")
			return filter, false
		}
		filter.ClientID = &id
	}
	return filter, true
}
