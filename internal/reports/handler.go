package reports

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Handler handles HTTP requests for report exports
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new reports handler
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers export routes. Every export accepts ?archive=true
// to store the file and answer with a download link instead of the body.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/reports")
	{
		reports.GET("/projects.csv", h.exportProjects)
		reports.GET("/projects/:id/finance.xlsx", h.exportProjectFinance)
		reports.GET("/dashboard.pdf", h.exportDashboard)
	}
}

// exportProjects handles GET /api/v1/reports/projects.csv
func (h *Handler) exportProjects(c *gin.Context) {
	file, err := h.service.ProjectsCSV(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to export projects", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, file)
}

// exportProjectFinance handles GET /api/v1/reports/projects/:id/finance.xlsx
func (h *Handler) exportProjectFinance(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid project ID"})
		return
	}

	file, err := h.service.ProjectFinanceWorkbook(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrProjectNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("Failed to export project finances", zap.Error(err), zap.Int("project_id", id))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, file)
}

// exportDashboard handles GET /api/v1/reports/dashboard.pdf
func (h *Handler) exportDashboard(c *gin.Context) {
	file, err := h.service.DashboardPDF(c.Request.Context())
	if err != nil {
		h.logger.Error("Failed to export dashboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.respond(c, file)
}

func (h *Handler) respond(c *gin.Context, file *File) {
	if archive, _ := strconv.ParseBool(c.Query("archive")); archive {
		archived, err := h.service.Archive(c.Request.Context(), file)
		if err != nil {
			if errors.Is(err, ErrArchiveDisabled) {
				c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
				return
			}
			c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, archived)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, file.Name, file.Format))
	c.Data(http.StatusOK, file.ContentType(), file.Data)
}
