package controllers

import (
	"net/http"

	"elabcrm-backend/services"

	"github.com/gin-gonic/gin"
)

type DocumentController struct {
	documents *services.DocumentService
}

func NewDocumentController(documents *services.DocumentService) *DocumentController {
	return &DocumentController{documents: documents}
}

func (ctl *DocumentController) List(c *gin.Context) {
	filter, ok := listFilter(c)
	if !ok {
		return
	}
	items, err := ctl.documents.List(c.Request.Context(), filter)
	if err != nil {
		respondWithServiceError(c, err, "Error fetching documents")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (ctl *DocumentController) Get(c *gin.Context) {
	id, ok := parseIDParam(c, "document")
	if !ok {
		return
	}
	item, err := ctl.documents.Get(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err, "Error fetching document")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ctl *DocumentController) Create(c *gin.Context) {
	var input services.CreateDocumentInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := ctl.documents.Create(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, err, "Error creating document")
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (ctl *DocumentController) Update(c *gin.Context) {
	id, ok := parseIDParam(c, "document")
	if !ok {
		return
	}
	var input services.UpdateDocumentInput
	if !bindJSON(c, &input) {
		return
	}
	item, err := ctl.documents.Update(c.Request.Context(), id, input)
	if err != nil {
		respondWithServiceError(c, err, "Error updating document")
		return
	}
	c.JSON(http.StatusOK, item)
}

func (ctl *DocumentController) Delete(c *gin.Context) {
	id, ok := parseIDParam(c, "document")
	if !ok {
		return
	}
	if err := ctl.documents.Delete(c.Request.Context(), id); err != nil {
		respondWithServiceError(c, err, "Error deleting document")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Document deleted successfully"})
}
