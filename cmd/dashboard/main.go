package main

import (
	"context"
	"errors"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cleberrangel/sprint-dashboard/internal/binding"
	"github.com/cleberrangel/sprint-dashboard/internal/cache"
	"github.com/cleberrangel/sprint-dashboard/internal/config"
	"github.com/cleberrangel/sprint-dashboard/internal/dataset"
	"github.com/cleberrangel/sprint-dashboard/internal/handler"
	"github.com/cleberrangel/sprint-dashboard/internal/layout"
	"github.com/cleberrangel/sprint-dashboard/internal/logger"
	"github.com/cleberrangel/sprint-dashboard/internal/metrics"
	"github.com/cleberrangel/sprint-dashboard/internal/service"
	"github.com/cleberrangel/sprint-dashboard/internal/transform"
	"github.com/cleberrangel/sprint-dashboard/internal/websocket"
	"github.com/gin-gonic/gin"
)

const Version = "1.0.0"

func main() {
	// Carrega configurações
	cfg, err := config.Load()
	if err != nil {
		stdlog.Fatalf("Erro ao carregar configurações: %v", err)
	}

	// Inicializa logger estruturado
	logger.Init(cfg.LogLevel, cfg.LogJSON)
	log := logger.Global()
	log.Info().
		Str("version", Version).
		Str("port", cfg.Port).
		Str("log_level", cfg.LogLevel).
		Bool("log_json", cfg.LogJSON).
		Msg("Sprint Dashboard iniciando")

	// Carrega o dataset; sem ele não há o que servir
	ds, err := dataset.Load(config.DataFile)
	if err != nil {
		logger.AuditDatasetLoad(config.DataFile, 0, 0, err)
		log.Fatal().Err(err).Str("path", config.DataFile).Msg("Erro ao carregar dataset")
	}
	logger.AuditDatasetLoad(config.DataFile, ds.Len(), len(ds.Sprints()), nil)

	root, err := layout.Default(ds.Sprints())
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao montar layout")
	}

	// Inicializa dependências
	m := metrics.Get()
	figureCache := cache.NewCache(cfg.FigureCacheTTL)
	defer figureCache.Stop()

	opts := transform.EfficiencyOptions{FilterBySprint: cfg.EfficiencyFilterBySprint}
	binder := binding.NewDashboard(ds, figureCache, m, opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(binder, cfg.WSMessagesPerSecond)
	go hub.Run(ctx)

	dashboardHandler, err := handler.NewDashboardHandler(ds, root, binder, m)
	if err != nil {
		log.Fatal().Err(err).Msg("Erro ao carregar template")
	}

	// Configura modo do Gin
	gin.SetMode(cfg.GinMode)

	r := handler.NewRouter(handler.Handlers{
		Dashboard: dashboardHandler,
		Export:    handler.NewExportHandler(ds, service.NewExportService(ds, opts), m),
		Health:    handler.NewHealthHandler(ds, hub, m, Version),
		WebSocket: handler.NewWebSocketHandler(hub),
		Metrics:   m,
	})

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: r,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Erro ao encerrar servidor")
		}
	}()

	log.Info().
		Str("port", cfg.Port).
		Int("records", ds.Len()).
		Strs("sprints", ds.Sprints()).
		Bool("efficiency_filter_by_sprint", opts.FilterBySprint).
		Msg("Servidor iniciando")

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Erro ao iniciar servidor")
	}

	log.Info().Msg("Servidor encerrado")
}
