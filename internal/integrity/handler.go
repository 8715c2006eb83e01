package integrity

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

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	integrity := rg.Group("/integrity")
	{
		integrity.GET("", h.Scan)
		integrity.POST("/repair", h.Repair)
	}
}

func (h *Handler) Scan(c *gin.Context) {
	report, err := h.service.Scan(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, report)
}

func (h *Handler) Repair(c *gin.Context) {
	result, err := h.service.Repair(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}
