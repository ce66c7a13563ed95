package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"deckcontrol/internal/control"
	"deckcontrol/internal/platform/config"
	"deckcontrol/internal/platform/logger"
	"deckcontrol/internal/platform/metrics"
	"deckcontrol/internal/production"
	"deckcontrol/internal/programstore"
	"deckcontrol/internal/renderer"

	"github.com/go-chi/chi/v5"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = config.Load()

	port := config.GetEnv("PORT", "8080")
	logLevel := config.GetEnv("LOG_LEVEL", "info")
	logFormat := config.GetEnv("LOG_FORMAT", "json")
	productionPassword := config.GetEnv("PRODUCTION_PASSWORD", "")

	log := logger.New(logLevel, logFormat)

	cfg := control.DefaultConfig()
	cfg.ScenePrefix = config.GetEnv("SCENE_PREFIX", cfg.ScenePrefix)
	cfg.BlackoutScene = config.GetEnv("BLACKOUT_SCENE", cfg.BlackoutScene)
	cfg.CaptureWidth = config.GetEnvInt("CAPTURE_WIDTH", cfg.CaptureWidth)
	cfg.CaptureHeight = config.GetEnvInt("CAPTURE_HEIGHT", cfg.CaptureHeight)

	rcfg := renderer.DefaultConfig()
	rcfg.Executable = config.GetEnv("RENDERER_PATH", rcfg.Executable)
	rcfg.BundledPath = config.GetEnv("RENDERER_BUNDLED_PATH", rcfg.BundledPath)
	rcfg.SystemPath = config.GetEnv("RENDERER_SYSTEM_PATH", rcfg.SystemPath)
	rcfg.StartupGrace = config.GetEnvDuration("RENDERER_STARTUP_GRACE", rcfg.StartupGrace)
	rcfg.ShutdownGrace = config.GetEnvDuration("RENDERER_SHUTDOWN_GRACE", rcfg.ShutdownGrace)
	rcfg.KillGrace = config.GetEnvDuration("RENDERER_KILL_GRACE", rcfg.KillGrace)

	client := production.NewMemoryService(productionPassword)
	inject := renderer.NewExecInjector(config.GetEnv("INPUT_TOOL", "xdotool"))
	sup := renderer.New(rcfg, inject, logger.Component(log, "renderer"))
	builder := control.NewTopologyBuilder(client, cfg, logger.Component(log, "builder"))
	store := programstore.NewInMemory()
	recorder := control.NewRecordingSink(256)
	sink := control.MultiSink{control.NewLogSink(logger.Component(log, "events")), recorder}
	coord := control.NewCoordinator(cfg, store, client, builder, sup, sink, logger.Component(log, "coordinator"))

	met := metrics.New()
	h := control.NewHandler(coord, store, logger.Component(log, "handler"), met, recorder)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(log))
	r.Use(metrics.RequestMiddleware(met))
	r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
		met.Handler(func() { met.SetScenesActive(coord.SceneCount()) }).ServeHTTP(w, req)
	})
	r.Get("/events", h.Events)
	r.Route("/session", func(r chi.Router) {
		r.Post("/connect", h.Connect)
		r.Post("/disconnect", h.Disconnect)
	})
	r.Route("/programs", func(r chi.Router) {
		r.Post("/", h.RegisterProgram)
		r.Get("/", h.ListPrograms)
	})
	r.Route("/control", func(r chi.Router) {
		r.Post("/load/{program_id}", h.Load)
		r.Post("/start", h.Start)
		r.Post("/stop", h.Stop)
		r.Post("/next", h.Next)
		r.Post("/prev", h.Prev)
		r.Post("/first", h.First)
		r.Post("/last", h.Last)
		r.Post("/jump/{index}", h.Jump)
		r.Post("/blackout", h.Blackout)
		r.Post("/display/{index}", h.SetDisplay)
		r.Get("/status", h.Status)
		r.Get("/renderer", h.RendererAvailability)
	})

	addr := ":" + port
	srv := &http.Server{Addr: addr, Handler: r}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	log.Info("server starting",
		"port", port,
		"scene_prefix", cfg.ScenePrefix,
		"log_level", logLevel,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	log.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	coord.Shutdown(ctx)

	if err := srv.Shutdown(ctx); err != nil {
		log.Error("shutdown error", "error", err)
		os.Exit(1)
	}

	log.Info("server stopped")
}
