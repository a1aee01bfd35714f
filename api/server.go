package api

import (
	"io"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/utxoscope/utxo_grapher/config"
	"github.com/utxoscope/utxo_grapher/graph"
	"github.com/utxoscope/utxo_grapher/storage"
)

// Server exposes the graph engine to the presentation layer. All
// endpoints are synchronous; the heavy layout pass is bounded by a
// per-request deadline so a large graph cannot stall the handler forever.
type Server struct {
	utxoStore *storage.UTXOStore
	metaStore *storage.MetaStore
	cache     *graph.Cache
	cfg       *config.Config
	Router    *gin.Engine
	stopCh    <-chan struct{}
}

func NewServer(utxoStore *storage.UTXOStore, metaStore *storage.MetaStore, cfg *config.Config, stopCh <-chan struct{}) (*Server, error) {
	gin.SetMode(gin.ReleaseMode)
	gin.DefaultWriter = io.Discard

	cache, err := graph.NewCache(cfg.GraphCacheSize)
	if err != nil {
		return nil, err
	}
	server := &Server{
		utxoStore: utxoStore,
		metaStore: metaStore,
		cache:     cache,
		cfg:       cfg,
		Router:    gin.Default(),
		stopCh:    stopCh,
	}
	server.setupRoutes()
	return server, nil
}

func (s *Server) setupRoutes() {
	s.Router.GET("/health", s.health)
	s.Router.POST("/utxos", s.ingestUTXOs)
	s.Router.GET("/utxos", s.getUTXOs)
	s.Router.DELETE("/utxos/:txid/:vout", s.deleteUTXO)
	s.Router.GET("/graph", s.getGraph)
	s.Router.GET("/treemap", s.getTreemap)
	s.Router.GET("/filters", s.getFilterOptions)
	s.Router.GET("/snapshot/export", s.exportSnapshot)
	s.Router.POST("/snapshot/import", s.importSnapshot)
}

func (s *Server) Start(addr string) error {
	err := s.Router.Run(addr)
	if err != nil {
		log.Fatalf("Failed to start server: %v", err)
		return err
	}
	return nil
}
