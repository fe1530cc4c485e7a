package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/ucu/innovators-hub/internal/app/models/dto"
	"github.com/ucu/innovators-hub/internal/app/services"
	"github.com/ucu/innovators-hub/internal/middleware"
)

// DashboardController serves the analytics dashboard
type DashboardController struct {
	analyticsService services.AnalyticsService
}

// NewDashboardController creates a new DashboardController
func NewDashboardController(analyticsService services.AnalyticsService) *DashboardController {
	return &DashboardController{analyticsService: analyticsService}
}

// GetStats returns the dashboard statistics
// @Summary Dashboard statistics
// @Description Totals, approval rate, projects by status and faculty, recent projects, trending technologies and the most active students
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} dto.APIResponse{data=dto.DashboardStats} "Statistics retrieved successfully"
// @Failure 401 {object} dto.ErrorResponse "Unauthorized - Invalid or missing token"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /dashboard/stats [get]
func (c *DashboardController) GetStats(ctx *gin.Context) {
	userID, ok := currentUserID(ctx)
	if !ok {
		return
	}

	stats, err := c.analyticsService.Stats(ctx.Request.Context(), userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(stats, ""))
}
