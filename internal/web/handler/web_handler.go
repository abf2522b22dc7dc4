package handler

import (
	"context"
	"net/http"
	"os"
	"path/filepath"

	"epextract/internal/common/config"
	"epextract/internal/store"
	"epextract/internal/web/websocket"
	"epextract/pkg/models"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// PipelineRunner runs the extraction pipeline for one listing URL
type PipelineRunner interface {
	ProcessMainURL(ctx context.Context, mainURL string) (*models.RunRecord, error)
}

type Handler struct {
	serverCfg *config.ServerConfig
	log       *logrus.Logger
	runner    PipelineRunner
	store     *store.Store
	wsHub     *websocket.Hub
}

func NewHandler(serverCfg *config.ServerConfig, log *logrus.Logger, runner PipelineRunner, st *store.Store, wsHub *websocket.Hub) *Handler {
	return &Handler{
		serverCfg: serverCfg,
		log:       log,
		runner:    runner,
		store:     st,
		wsHub:     wsHub,
	}
}

// RegisterRoutes registers all the routes for the web handler
func (h *Handler) RegisterRoutes(r *gin.Engine) {
	// Web views
	r.GET("/", h.IndexHandler())
	r.GET("/ws", h.WebSocketHandler())
	r.GET("/download/:filename", h.DownloadHandler())

	// API endpoints
	api := r.Group("/api")
	{
		api.POST("/process", h.ProcessHandler())
		api.GET("/results", h.ResultsHandler())
	}
}

// IndexHandler handles the dashboard page request
func (h *Handler) IndexHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.html", gin.H{
			"title": "Episode Link Extractor",
		})
	}
}

// WebSocketHandler returns the WebSocket connection handler
func (h *Handler) WebSocketHandler() gin.HandlerFunc {
	return websocket.Handler(h.wsHub, h.log)
}

// ProcessHandler runs the pipeline synchronously for the submitted URL and
// responds with the ordered episode results. Pipeline aborts come back as a
// structured error envelope rather than an HTTP failure, matching what the
// dashboard expects.
func (h *Handler) ProcessHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			URL string `json:"url"`
		}

		if err := c.ShouldBindJSON(&req); err != nil || req.URL == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"error": "URL is required",
			})
			return
		}

		// The run is deliberately detached from the request context: once
		// started it always completes, even if the client goes away
		record, err := h.runner.ProcessMainURL(context.Background(), req.URL)
		if err != nil {
			h.log.WithError(err).WithField("url", req.URL).Error("Pipeline run aborted")
			c.JSON(http.StatusOK, gin.H{
				"error": err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, record.Episodes)
	}
}

// ResultsHandler returns the full persisted run history
func (h *Handler) ResultsHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		records := h.store.Load()
		if records == nil {
			records = []models.RunRecord{}
		}
		c.JSON(http.StatusOK, records)
	}
}

// DownloadHandler serves a file from the working directory by basename only;
// any directory component in the requested name is discarded
func (h *Handler) DownloadHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		filename := c.Param("filename")
		if filename == "" {
			c.String(http.StatusBadRequest, "Filename is required")
			return
		}

		safeName := filepath.Base(filename)
		info, err := os.Stat(safeName)
		if err != nil || info.IsDir() {
			c.String(http.StatusNotFound, "File not found")
			return
		}

		c.File(safeName)
	}
}
