package handler

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"strings"

	"email-triage/internal/extract"
	"email-triage/internal/middleware"
	"email-triage/internal/models"
	"email-triage/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Analyzer is the pipeline behind POST /api/analyze
type Analyzer interface {
	Analyze(ctx context.Context, raw string) (*models.Analysis, error)
	Providers() map[string][]models.ProviderInfo
}

// Options for the HTTP surface
type Options struct {
	Version        string
	MaxUploadBytes int64
	IndexPath      string
	StaticDir      string
	RateLimiter    *middleware.RateLimiter // nil disables rate limiting
}

// Handler handles HTTP requests
type Handler struct {
	analyzer Analyzer
	opts     Options
	logger   *zap.Logger
}

// NewHandler creates a new API handler
func NewHandler(analyzer Analyzer, opts Options, logger *zap.Logger) *Handler {
	if opts.Version == "" {
		opts.Version = "1.0.0"
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	return &Handler{
		analyzer: analyzer,
		opts:     opts,
		logger:   logger,
	}
}

// RegisterRoutes registers all API routes
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	api := r.Group("/api")
	{
		analyze := []gin.HandlerFunc{h.Analyze}
		if h.opts.RateLimiter != nil {
			analyze = append([]gin.HandlerFunc{middleware.RateLimit(h.opts.RateLimiter, h.logger)}, analyze...)
		}
		api.POST("/analyze", analyze...)
		api.GET("/providers", h.Providers)
	}

	// Health check
	r.GET("/health", h.HealthCheck)

	// Web UI
	if fileExists(h.opts.IndexPath) {
		r.GET("/", h.Index)
	}
	if dirExists(h.opts.StaticDir) {
		r.Static("/static", h.opts.StaticDir)
	}
}

// Analyze handles a multipart form with an optional "file" and "text"
func (h *Handler) Analyze(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.opts.MaxUploadBytes)

	if err := c.Request.ParseMultipartForm(h.opts.MaxUploadBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		h.formError(c, err)
		return
	}

	text := c.PostForm("text")

	file, err := h.readFile(c)
	if err != nil {
		h.formError(c, err)
		return
	}

	raw, err := extract.Payload(text, file)
	if err != nil {
		h.inputError(c, err)
		return
	}

	analysis, err := h.analyzer.Analyze(c.Request.Context(), raw)
	if err != nil {
		h.inputError(c, err)
		return
	}

	c.JSON(http.StatusOK, analysis)
}

// Providers lists the configured backends; secrets are never included
func (h *Handler) Providers(c *gin.Context) {
	c.JSON(http.StatusOK, h.analyzer.Providers())
}

// HealthCheck returns service health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "email-triage",
		"version": h.opts.Version,
	})
}

// Index serves the single page UI
func (h *Handler) Index(c *gin.Context) {
	c.File(h.opts.IndexPath)
}

func (h *Handler) readFile(c *gin.Context) (*extract.File, error) {
	header, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	f, err := header.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	return &extract.File{Name: header.Filename, Data: data}, nil
}

func (h *Handler) inputError(c *gin.Context, err error) {
	var inputErr *extract.InputError
	switch {
	case errors.As(err, &inputErr):
		c.JSON(http.StatusBadRequest, gin.H{"detail": inputErr.Message})
	case errors.Is(err, service.ErrEmptyContent):
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
	default:
		h.logger.Error("Failed to analyze", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "analysis failed"})
	}
}

func (h *Handler) formError(c *gin.Context, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{
			"detail": "Arquivo muito grande.",
		})
		return
	}
	h.logger.Warn("Invalid form", zap.Error(err))
	c.JSON(http.StatusBadRequest, gin.H{"detail": "Formulário inválido."})
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func dirExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
