package controllers

import (
	"net/http"
	"strconv"

	"elabcrm-backend/services"
	"elabcrm-backend/utils"

	"github.com/gin-gonic/gin"
)

type ClientController struct {
	clients *services.ClientService
}

func NewClientController(clients *services.ClientService) *ClientController {
	return &ClientController{clients: clients}
}

// GetClients lists every client with qualification and applications. limit
// and offset are optional.
func (cc *ClientController) GetClients(c *gin.Context) {
	var opts services.ListOptions
	var ok bool
	if opts.Limit, ok = nonNegativeQuery(c, "limit"); !ok {
		return
	}
	if opts.Offset, ok = nonNegativeQuery(c, "offset"); !ok {
		return
	}

	clients, err := cc.clients.List(c.Request.Context(), opts)
	if err != nil {
		respondWithServiceError(c, err, "Error fetching clients")
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (cc *ClientController) SearchClients(c *gin.Context) {
	limit, ok := nonNegativeQuery(c, "limit")
	if !ok {
		return
	}
	clients, err := cc.clients.Search(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		respondWithServiceError(c, err, "Error searching clients")
		return
	}
	c.JSON(http.StatusOK, clients)
}

func (cc *ClientController) GetClient(c *gin.Context) {
	id, ok := parseIDParam(c, "client")
	if !ok {
		return
	}
	client, err := cc.clients.GetByID(c.Request.Context(), id)
	if err != nil {
		respondWithServiceError(c, err, "Error fetching client")
		return
	}
	c.JSON(http.StatusOK, client)
}

func (cc *ClientController) CreateClient(c *gin.Context) {
	var input services.CreateClientInput
	if !bindJSON(c, &input) {
		return
	}
	client, err := cc.clients.Create(c.Request.Context(), input)
	if err != nil {
		respondWithServiceError(c, err, "Error creating client")
		return
	}
	c.JSON(http.StatusCreated, client)
}

func (cc *ClientController) UpdateClient(c *gin.Context) {
	id, ok := parseIDParam(c, "client")
	if !ok {
		return
	}
	var input services.UpdateClientInput
	if !bindJSON(c, &input) {
		return
	}
	client, err := cc.clients.Update(c.Request.Context(), id, input)
	if err != nil {
		respondWithServiceError(c, err, "Error updating client")
		return
	}
	c.JSON(http.StatusOK, client)
}

// DeleteClient removes the client and everything it owns.
func (cc *ClientController) DeleteClient(c *gin.Context) {
	id, ok := parseIDParam(c, "client")
	if !ok {
		return
	}
	if err := cc.clients.Delete(c.Request.Context(), id); err != nil {
		respondWithServiceError(c, err, "Error deleting client")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Client deleted successfully"})
}

func nonNegativeQuery(c *gin.Context, key string) (int, bool) {
	raw := c.Query(key)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid "+key)
		return 0, false
	}
	return n, true
}
