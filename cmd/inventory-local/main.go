// Command inventory-local serves the inventory API from an in-memory store,
// for front-end development without a MongoDB cluster.
package main

import (
	"context"
	"os"

	"github.com/modelhub/inventory-server/internal/config"
	"github.com/modelhub/inventory-server/internal/inventory/service"
	"github.com/modelhub/inventory-server/internal/server"
	"github.com/modelhub/inventory-server/pkg/logger"
)

func main() {
	logger.Init(os.Getenv("LOG_LEVEL"))

	port := os.Getenv("PORT")
	if port == "" {
		port = "3000"
	}
	cfg := &config.Config{Server: config.ServerConfig{Host: "127.0.0.1", Port: port}}

	r := server.NewRouter(server.Deps{
		Config:  cfg,
		Service: service.NewMemoryService(),
		Ready:   func(context.Context) error { return nil },
	})

	logger.Warnf("using memory-backed store: data is lost on exit")
	logger.Infof("inventory-local listening on %s", cfg.Addr())
	if err := r.Run(cfg.Addr()); err != nil {
		logger.Fatalf("server failed: %v", err)
	}
}
