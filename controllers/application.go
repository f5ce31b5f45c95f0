package controllers

import (
	"net/http"

	"elabcrm-backend/services"

	"github.com/gin-gonic/gin"
)

type ApplicationController struct {
	applications *services.ApplicationService
}

func NewApplicationController(applications *services.ApplicationService) *ApplicationController {
	return &ApplicationController{applications: applications}
}

func (ctl *ApplicationController) List(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	items, err := ctl.applications.List(c.Request.Context(), filter)
	if err != nil {
		respondWithServiceError(c, err, "Error fetching applications")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ctl *ApplicationController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "application")
	if !ok {
		return
	}
	item, err := ctl.applications.Get(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err, "Error fetching application")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ctl *ApplicationController) Create(c *gin.Context) {
	var input services.CreateApplicationInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := ctl.applications.Create(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, err, "Error creating application")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (ctl *ApplicationController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "application")
	if !ok {
		return
	}
	var input services.UpdateApplicationInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := ctl.applications.Update(c.Request.Context(), id, input)
	if err != nil {
		respondWithServiceError(c, err, "Error updating application")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ctl *ApplicationController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "application")
	if !ok {
		return
	}
	if err := ctl.applications.Delete(c.Request.Context(), id); err != nil {
		respondWithServiceError(c, err, "Error deleting application")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Application deleted successfully"})
}
