package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the read-only dashboard feeds. They never fail: degraded feeds come back empty.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	dashboard := rg.Group("/dashboard")
	{
		dashboard.GET("/stats", h.GetStats)
		dashboard.GET("/revenue", h.GetMonthlyRevenue)
		dashboard.GET("/projects-by-type", h.GetProjectsByType)
		dashboard.GET("/activities", h.GetRecentActivities)
		dashboard.GET("/milestones", h.GetUpcomingMilestones)
		dashboard.GET("/overview", h.GetOverview)
	}
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetStats(c.Request.Context()))
}

func (h *Handler) GetMonthlyRevenue(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetMonthlyRevenue(c.Request.Context()))
}

func (h *Handler) GetProjectsByType(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetProjectsByType(c.Request.Context()))
}

func (h *Handler) GetRecentActivities(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetRecentActivities(c.Request.Context()))
}

func (h *Handler) GetUpcomingMilestones(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetUpcomingMilestones(c.Request.Context()))
}

func (h *Handler) GetOverview(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.GetOverview(c.Request.Context()))
}
