package controllers

import (
	"net/http"
	"time"

	"elabcrm-backend/services"

	"github.com/gin-gonic/gin"
)

type DashboardController struct {
	dashboard *services.DashboardService
}

func NewDashboardController(dashboard *services.DashboardService) *DashboardController {
	return &DashboardController{dashboard: dashboard}
}

func (dc *DashboardController) GetOverview(c *gin.Context) {
	overview, err := dc.dashboard.Overview(c.Request.Context(), time.Now())
	if err != nil {
		respondWithServiceError(c, err, "Error loading dashboard")
		return
	}
	c.JSON(http.StatusOK, overview)
}
