package main

import (
	"fmt"

	"epextract/internal/common/config"
	"epextract/internal/common/logger"
	"epextract/internal/extractor/browser"
	"epextract/internal/extractor/fetch"
	"epextract/internal/extractor/service"
	"epextract/internal/store"
	"epextract/internal/web/handler"
	"epextract/internal/web/websocket"

	"github.com/gin-gonic/gin"
	"github.com/spf13/afero"
)

func main() {
	// Load the configuration
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	serverCfg := cfg.GetServerConfig()
	extractorCfg := cfg.GetExtractorConfig()
	browserCfg := cfg.GetBrowserConfig()
	storeCfg := cfg.GetStoreConfig()

	// Initialize logger
	log := logger.New(cfg)
	log.Infof("Server configuration: %+v", serverCfg)

	// Result store on the real filesystem
	st := store.New(afero.NewOsFs(), storeCfg.ResultsFile, log)

	// WebSocket hub for live progress on the dashboard
	wsHub := websocket.NewHub(log)
	go wsHub.Run()

	// Assemble the pipeline
	fetcher := fetch.New(extractorCfg)
	poller := browser.New(browserCfg, extractorCfg.UserAgent, log)
	extractor := service.NewExtractorService(extractorCfg, log, fetcher, poller, st, websocket.NewSink(wsHub, log))

	// Initialize the gin router
	r := gin.Default()
	r.LoadHTMLGlob("internal/web/templates/*")

	h := handler.NewHandler(serverCfg, log, extractor, st, wsHub)
	h.RegisterRoutes(r)

	// Start the web server
	addr := fmt.Sprintf("%s:%d", serverCfg.Host, serverCfg.Port)
	log.Infof("Starting web server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("Failed to start web server: %v", err)
	}
}
