package api

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cdrp-labs/disaster-ingest/internal/models"
	"github.com/cdrp-labs/disaster-ingest/internal/pipeline"
	"github.com/cdrp-labs/disaster-ingest/internal/store"
)

// Job type names shared with the scheduler registrations so an on-demand
// trigger and a scheduled tick of the same logical job contend on one guard.
const (
	JobSeismic  = "seismic-import"
	JobWeather  = "weather-import"
	JobCombined = "combined-import"
)

// ImportService is the on-demand trigger path into the pipeline.
type ImportService interface {
	ImportSeismic(ctx context.Context, minMagnitude float64) (int, error)
	ImportWeather(ctx context.Context, area string) (int, error)
}

type Handler struct {
	importer ImportService
	guard    *pipeline.RunGuard
	repo     store.IncidentStore
}

func NewHandler(importer ImportService, guard *pipeline.RunGuard, repo store.IncidentStore) *Handler {
	return &Handler{
		importer: importer,
		guard:    guard,
		repo:     repo,
	}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.POST("/api/data/import/earthquakes", h.importEarthquakes)
	r.POST("/api/data/import/weather-alerts", h.importWeatherAlerts)
	r.POST("/api/data/import/all", h.importAll)
	r.GET("/api/incidents", h.getIncidents)
	r.GET("/health", h.health)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}

type importRequest struct {
	MinMagnitude float64 `json:"min_magnitude"`
	Area         string  `json:"area"`
}

func (h *Handler) importEarthquakes(c *gin.Context) {
	var req importRequest
	_ = c.ShouldBindJSON(&req)

	if !h.guard.TryAcquire(JobSeismic) {
		c.JSON(http.StatusConflict, gin.H{"error": pipeline.ErrRunInProgress.Error()})
		return
	}
	defer h.guard.Release(JobSeismic)

	count, err := h.importer.ImportSeismic(c.Request.Context(), req.MinMagnitude)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to import earthquake data",
			"error":   err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":        fmt.Sprintf("Successfully imported %d earthquake alerts", count),
		"imported_count": count,
	})
}

func (h *Handler) importWeatherAlerts(c *gin.Context) {
	var req importRequest
	_ = c.ShouldBindJSON(&req)

	if !h.guard.TryAcquire(JobWeather) {
		c.JSON(http.StatusConflict, gin.H{"error": pipeline.ErrRunInProgress.Error()})
		return
	}
	defer h.guard.Release(JobWeather)

	count, err := h.importer.ImportWeather(c.Request.Context(), req.Area)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"message": "Failed to import weather alert data",
			"error":   err.Error(),
		})
		return
	}

	area := req.Area
	if area == "" {
		area = "all"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":        fmt.Sprintf("Successfully imported %d weather alerts", count),
		"imported_count": count,
		"area":           area,
	})
}

// importAll runs both sources; one source failing does not abort the other.
func (h *Handler) importAll(c *gin.Context) {
	var req importRequest
	_ = c.ShouldBindJSON(&req)

	if !h.guard.TryAcquire(JobCombined) {
		c.JSON(http.StatusConflict, gin.H{"error": pipeline.ErrRunInProgress.Error()})
		return
	}
	defer h.guard.Release(JobCombined)

	ctx := c.Request.Context()
	errs := make([]string, 0, 2)

	eqCount, err := h.importer.ImportSeismic(ctx, req.MinMagnitude)
	if err != nil {
		errs = append(errs, fmt.Sprintf("earthquakes: %v", err))
	}
	wCount, err := h.importer.ImportWeather(ctx, req.Area)
	if err != nil {
		errs = append(errs, fmt.Sprintf("weather: %v", err))
	}

	c.JSON(http.StatusOK, gin.H{
		"imported_count":   eqCount + wCount,
		"earthquake_count": eqCount,
		"weather_count":    wCount,
		"errors":           errs,
	})
}

func (h *Handler) getIncidents(c *gin.Context) {
	filter := store.Filter{
		Limit: 20, // Default to 20 incidents if limit param not supplied
	}

	if s := c.Query("severity"); s != "" {
		tier := parseSeverity(s)
		if tier != "" {
			filter.Severity = &tier
		}
	}
	if st := c.Query("status"); st != "" {
		status := models.IncidentStatus(strings.ToUpper(st))
		filter.Status = &status
	}
	if l := c.Query("limit"); l != "" {
		if lim, err := strconv.Atoi(l); err == nil && lim > 0 && lim <= 500 {
			filter.Limit = lim
		}
	}

	incidents, err := h.repo.ListIncidents(c.Request.Context(), filter)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "failed to fetch incidents",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"count":     len(incidents),
		"incidents": incidents,
	})
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func parseSeverity(s string) models.SeverityTier {
	switch strings.ToLower(s) {
	case "low":
		return models.SeverityLow
	case "medium":
		return models.SeverityMedium
	case "high":
		return models.SeverityHigh
	case "critical":
		return models.SeverityCritical
	default:
		return ""
	}
}
