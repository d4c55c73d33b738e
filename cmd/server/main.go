// EventSnap - Event Photo Processing and Live Engagement
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/eventsnap

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/eventsnap/internal/api"
	"github.com/tomtom215/eventsnap/internal/auth"
	"github.com/tomtom215/eventsnap/internal/authz"
	"github.com/tomtom215/eventsnap/internal/config"
	"github.com/tomtom215/eventsnap/internal/database"
	"github.com/tomtom215/eventsnap/internal/engagement"
	"github.com/tomtom215/eventsnap/internal/imaging"
	"github.com/tomtom215/eventsnap/internal/logging"
	"github.com/tomtom215/eventsnap/internal/notify"
	"github.com/tomtom215/eventsnap/internal/pipeline"
	"github.com/tomtom215/eventsnap/internal/queue"
	"github.com/tomtom215/eventsnap/internal/storage"
	"github.com/tomtom215/eventsnap/internal/supervisor"
	"github.com/tomtom215/eventsnap/internal/supervisor/services"
	ws "github.com/tomtom215/eventsnap/internal/websocket"
)

func main() {
	// Load configuration first to get logging settings
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("db_path", cfg.Database.Path).
		Str("queue_path", cfg.Queue.Path).
		Str("storage", cfg.Storage.Backend).
		Int("workers", cfg.Pipeline.Workers).
		Msg("Starting EventSnap with supervisor tree")

	if err := run(cfg); err != nil {
		logging.Fatal().Err(err).Msg("EventSnap stopped with error")
	}
	logging.Info().Msg("Application stopped gracefully")
}

//nolint:gocyclo // sequential wiring of every component
func run(cfg *config.Config) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	db, err := database.New(cfg.Database)
	if err != nil {
		return fmt.Errorf("initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	qcfg := queue.DefaultConfig()
	qcfg.Path = cfg.Queue.Path
	qcfg.SyncWrites = cfg.Queue.SyncWrites
	qcfg.Buffer = cfg.Queue.Buffer
	q, err := queue.Open(qcfg)
	if err != nil {
		return fmt.Errorf("open job queue: %w", err)
	}
	defer func() {
		if err := q.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing job queue")
		}
	}()

	files, err := storage.New(ctx, storage.Config{
		Backend:    cfg.Storage.Backend,
		LocalRoot:  cfg.Storage.LocalRoot,
		URLPrefix:  "/media",
		S3Bucket:   cfg.Storage.S3Bucket,
		S3Region:   cfg.Storage.S3Region,
		S3Endpoint: cfg.Storage.S3Endpoint,
		AccessKey:  cfg.Storage.S3AccessKey,
		SecretKey:  cfg.Storage.S3SecretKey,
		PresignTTL: cfg.Storage.PresignTTL,
	})
	if err != nil {
		return fmt.Errorf("initialize storage: %w", err)
	}

	var tagger imaging.ImageTagger
	if cfg.Imaging.ModelPath != "" {
		t := imaging.NewTagger(imaging.TaggerConfig{
			ModelPath:  cfg.Imaging.ModelPath,
			LabelsPath: cfg.Imaging.LabelsPath,
			TopK:       cfg.Imaging.TopK,
			Timeout:    cfg.Imaging.ClassifierTimeout,
			RetryAfter: cfg.Imaging.ClassifierCooldown,
		})
		defer func() {
			if err := t.Close(); err != nil {
				logging.Warn().Err(err).Msg("Error closing classifier")
			}
		}()
		tagger = t
	} else {
		logging.Info().Msg("No classifier model configured, AI tagging disabled")
	}
	generator := imaging.NewGenerator(imaging.Options{
		ThumbnailSize:    cfg.Imaging.ThumbnailSize,
		ThumbnailQuality: cfg.Imaging.ThumbnailQuality,
		WatermarkQuality: cfg.Imaging.WatermarkQuality,
		WatermarkText:    cfg.Imaging.WatermarkText,
	}, tagger)

	registry := ws.NewRegistry(ws.Config{
		InboundRate:  cfg.WebSocket.InboundRate,
		InboundBurst: cfg.WebSocket.InboundBurst,
	})
	dispatcher := notify.NewDispatcher(registry, notify.DefaultBuffer)
	defer func() {
		if err := dispatcher.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing notification dispatcher")
		}
	}()

	engine := engagement.NewEngine(db, dispatcher, engagement.Config{})
	processor := pipeline.NewProcessor(pipeline.ProcessorConfig{
		Photos:     db,
		Tagged:     db,
		Files:      files,
		Generator:  generator,
		Notifier:   dispatcher,
		JobTimeout: cfg.Pipeline.JobTimeout,
	})
	pool := pipeline.NewPool(q, processor, cfg.Pipeline.Workers)

	enforcer, err := authz.NewEnforcer(authz.DefaultEnforcerConfig())
	if err != nil {
		return fmt.Errorf("initialize authorization: %w", err)
	}
	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		return fmt.Errorf("initialize authentication: %w", err)
	}

	handler := api.NewHandler(api.Dependencies{
		Store:        db,
		Queue:        q,
		Files:        files,
		Engine:       engine,
		Authorizer:   authz.NewPhotoAuthorizer(enforcer),
		Registry:     registry,
		MaxFileBytes: cfg.Server.MaxUploadBytes,
		CORSOrigins:  cfg.Server.CORSOrigins,
	})
	routerCfg := api.RouterConfig{
		Middleware: &api.ChiMiddlewareConfig{
			CORSAllowedOrigins: cfg.Server.CORSOrigins,
			CORSMaxAge:         86400,
			RateLimitRequests:  cfg.Server.RateLimitRequests,
			RateLimitWindow:    cfg.Server.RateLimitWindow,
			RateLimitDisabled:  cfg.Server.RateLimitDisabled,
		},
	}
	if local, ok := files.(*storage.LocalStore); ok {
		routerCfg.MediaRoot = local.Root()
	}

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           api.NewRouter(handler, auth.NewMiddleware(jwtManager), routerCfg),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		return fmt.Errorf("create supervisor tree: %w", err)
	}
	tree.AddDataService(services.NewQueueFeederService(q))
	tree.AddMessagingService(services.NewDispatcherService(dispatcher))
	tree.AddMessagingService(services.NewWorkerPoolService(pool))
	tree.AddAPIService(services.NewRegistryService(registry))
	tree.AddAPIService(services.NewHTTPServerService(server, cfg.Server.ShutdownTimeout))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().
		Str("addr", server.Addr).
		Int("workers", pool.Workers()).
		Msg("Starting supervisor tree...")
	errCh := tree.ServeBackground(ctx)

	var runErr error
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
			runErr = err
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	if len(unstopped) > 0 {
		logging.Warn().Int("count", len(unstopped)).Msg("Services failed to stop within timeout")
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service failed to stop")
		}
	}
	return runErr
}
