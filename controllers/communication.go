package controllers

import (
	"net/http"

	"elabcrm-backend/services"

	"github.com/gin-gonic/gin"
)

type CommunicationController struct {
	communications *services.CommunicationService
}

func NewCommunicationController(communications *services.CommunicationService) *CommunicationController {
	return &CommunicationController{communications: communications}
}

func (ctl *CommunicationController) List(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	items, err := ctl.communications.List(c.Request.Context(), filter)
	if err != nil {
		respondWithServiceError(c, err, "Error fetching communications")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ctl *CommunicationController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "communication")
	if !ok {
		return
	}
	item, err := ctl.communications.Get(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err, "Error fetching communication")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ctl *CommunicationController) Create(c *gin.Context) {
	var input services.CreateCommunicationInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := ctl.communications.Create(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, err, "Error creating communication")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (ctl *CommunicationController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "communication")
	if !ok {
		return
	}
	var input services.UpdateCommunicationInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := ctl.communications.Update(c.Request.Context(), id, input)
	if err != nil {
		respondWithServiceError(c, err, "Error updating communication")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ctl *CommunicationController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "communication")
	if !ok {
		return
	}
	if err := ctl.communications.Delete(c.Request.Context(), id); err != nil {
		respondWithServiceError(c, err, "Error deleting communication")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Communication deleted successfully"})
}
