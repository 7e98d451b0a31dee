package http

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/bazi-report/internal/domain/birth"
	"github.com/yanqian/bazi-report/internal/domain/geo"
	"github.com/yanqian/bazi-report/internal/domain/pipeline"
	"github.com/yanqian/bazi-report/internal/domain/profile"
	"github.com/yanqian/bazi-report/internal/domain/report"
	"github.com/yanqian/bazi-report/internal/infra/config"
	apperrors "github.com/yanqian/bazi-report/pkg/errors"
	"github.com/yanqian/bazi-report/pkg/util"
)

// HealthChecker probes a downstream dependency.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Handler wires the HTTP transport to the report pipeline.
type Handler struct {
	pipeline  pipeline.Service
	resolver  geo.Resolver
	artifacts report.ArtifactStore
	calc      HealthChecker
	timeout   time.Duration
	now       util.Clock
	logger    *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(cfg *config.Config, svc pipeline.Service, resolver geo.Resolver, artifacts report.ArtifactStore, calc HealthChecker, logger *slog.Logger) *Handler {
	return &Handler{
		pipeline:  svc,
		resolver:  resolver,
		artifacts: artifacts,
		calc:      calc,
		timeout:   cfg.Pipeline.Timeout,
		now:       util.NowUTC,
		logger:    logger.With("component", "http.handler"),
	}
}

type reportResponse struct {
	Success          bool            `json:"success"`
	ReportID         string          `json:"reportId"`
	Summary          profile.Summary `json:"summary"`
	Files            report.Files    `json:"files"`
	Degraded         bool            `json:"degraded"`
	SectionsVerified bool            `json:"sectionsVerified"`
	MissingSections  []string        `json:"missingSections,omitempty"`
	Timezone         string          `json:"timezone"`
	GeocodeSource    geo.Source      `json:"geocodeSource"`
}

type chartResponse struct {
	Success  bool            `json:"success"`
	Summary  profile.Summary `json:"summary"`
	Profile  profile.Profile `json:"profile"`
	Location geo.Resolution  `json:"location"`
}

// GenerateReport runs the full pipeline and returns the artifact locations.
func (h *Handler) GenerateReport(c *gin.Context) {
	raw, ok := bindBirth(c)
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()

	res := h.pipeline.Generate(ctx, raw)
	if !res.OK() {
		abortWithError(c, failureError(res.Failure))
		return
	}

	c.JSON(http.StatusOK, reportResponse{
		Success:          true,
		ReportID:         res.Report.ID,
		Summary:          res.Summary,
		Files:            res.Report.Files,
		Degraded:         res.Report.Degraded,
		SectionsVerified: res.SectionsVerified(),
		MissingSections:  res.Missing,
		Timezone:         res.Resolution.Timezone,
		GeocodeSource:    res.Resolution.Source,
	})
}

// CalculateChart casts the chart without narrative or artifacts.
func (h *Handler) CalculateChart(c *gin.Context) {
	raw, ok := bindBirth(c)
	if !ok {
		return
	}

	ctx, cancel := h.withTimeout(c.Request.Context())
	defer cancel()

	res := h.pipeline.Calculate(ctx, raw)
	if !res.OK() {
		abortWithError(c, failureError(res.Failure))
		return
	}

	c.JSON(http.StatusOK, chartResponse{
		Success:  true,
		Summary:  res.Profile.Summary(),
		Profile:  res.Profile,
		Location: res.Resolution,
	})
}

// ValidateInput reports per-field validity without running the pipeline.
func (h *Handler) ValidateInput(c *gin.Context) {
	raw, ok := bindBirth(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, birth.Validate(raw, h.now()))
}

// Health reports whether the calculation service answers.
func (h *Handler) Health(c *gin.Context) {
	status, calc := "ok", "ok"
	if h.calc != nil {
		if err := h.calc.Health(c.Request.Context()); err != nil {
			h.logger.Warn("calculation service health check failed", "error", err)
			status, calc = "degraded", "unreachable"
		}
	}
	c.JSON(http.StatusOK, gin.H{
		"status":             status,
		"calculationService": calc,
		"time":               h.now().Format(time.RFC3339),
	})
}

// Index describes the service.
func (h *Handler) Index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service": "bazi-report",
		"status":  "running",
		"endpoints": []string{
			"POST /api/generate-report",
			"POST /api/bazi-only",
			"POST /api/validate",
			"GET /api/health",
			"GET /api/geocode/cache",
			"DELETE /api/geocode/cache",
			"GET /reports/:id/:file",
			"GET /metrics",
		},
	})
}

// ServeArtifact streams a stored report file.
func (h *Handler) ServeArtifact(c *gin.Context) {
	id, name := c.Param("id"), c.Param("file")
	if !report.ValidID(id) || !report.ValidFile(name) {
		abortWithError(c, NewHTTPError(http.StatusNotFound, apperrors.CodeNotFound, "report not found", nil))
		return
	}

	rc, meta, err := h.artifacts.Get(c.Request.Context(), id, name)
	if errors.Is(err, report.ErrArtifactNotFound) {
		abortWithError(c, NewHTTPError(http.StatusNotFound, apperrors.CodeNotFound, "report not found", err))
		return
	}
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, apperrors.CodeInternal, "could not read report", err))
		return
	}
	defer rc.Close()

	headers := c.Writer.Header()
	headers.Set("Content-Type", meta.ContentType)
	if meta.Size > 0 {
		headers.Set("Content-Length", strconv.FormatInt(meta.Size, 10))
	}
	if name == report.PDFFile {
		headers.Set("Content-Disposition", `inline; filename="bazi-report-`+id[:8]+`.pdf"`)
	}
	c.Status(http.StatusOK)
	if _, err := io.Copy(c.Writer, rc); err != nil {
		h.logger.Warn("artifact stream interrupted", "report_id", id, "file", name, "error", err)
	}
}

// GeocodeCacheStats lists cached locations.
func (h *Handler) GeocodeCacheStats(c *gin.Context) {
	stats, err := h.resolver.Stats(c.Request.Context())
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, apperrors.CodeInternal, "could not read geocode cache", err))
		return
	}
	c.JSON(http.StatusOK, stats)
}

// ClearGeocodeCache drops one location, or everything when none is given.
func (h *Handler) ClearGeocodeCache(c *gin.Context) {
	location := strings.TrimSpace(c.Query("location"))
	var err error
	if location != "" {
		err = h.resolver.Invalidate(c.Request.Context(), location)
	} else {
		err = h.resolver.Clear(c.Request.Context())
	}
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, apperrors.CodeInternal, "could not clear geocode cache", err))
		return
	}
	h.logger.Info("geocode cache cleared", "location", location)
	c.JSON(http.StatusOK, gin.H{"success": true, "location": location})
}

func (h *Handler) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.timeout)
}

func bindBirth(c *gin.Context) (birth.RawInput, bool) {
	var raw birth.RawInput
	if err := c.ShouldBindJSON(&raw); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, apperrors.CodeInvalidInput, errMessage(err), err))
		return birth.RawInput{}, false
	}
	return raw, true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
