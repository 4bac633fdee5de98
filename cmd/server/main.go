package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vtds-application-vshasta/internal/adapters/primary/http/handlers"
	"vtds-application-vshasta/internal/adapters/primary/http/middleware"
	"vtds-application-vshasta/internal/adapters/secondary/csm"
	"vtds-application-vshasta/internal/adapters/secondary/layerhttp"
	"vtds-application-vshasta/internal/adapters/secondary/postgres"
	"vtds-application-vshasta/internal/adapters/secondary/sshconn"
	"vtds-application-vshasta/internal/config"
	"vtds-application-vshasta/internal/core/domain"
	output "vtds-application-vshasta/internal/core/ports/output"
	"vtds-application-vshasta/internal/core/services"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	initLogger(cfg)

	appCfg, err := domain.LoadAppConfig(cfg.Application.ConfigPath)
	if err != nil {
		log.Fatalf("load application configuration: %v", err)
	}
	log.WithField("path", cfg.Application.ConfigPath).Info("application configuration loaded")

	// Create database pool
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.DSN())
	if err != nil {
		log.Fatalf("parse db config: %v", err)
	}
	poolCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
	poolCfg.MinConns = int32(cfg.Database.MaxIdleConns)
	poolCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime

	pool, err := pgxpool.NewWithConfig(context.Background(), poolCfg)
	if err != nil {
		log.Fatalf("create db pool: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(context.Background()); err != nil {
		log.Fatalf("ping db: %v", err)
	}
	log.Info("database connection established")

	// Secondary adapters
	clusterClient := layerhttp.NewClusterClient(cfg.Layers.ClusterURL, cfg.Layers.Timeout)
	providerClient := layerhttp.NewProviderClient(cfg.Layers.ProviderURL, cfg.Layers.Timeout)
	connector := sshconn.NewConnector(cfg.SSH)
	runRepo := postgres.NewRunRepository(pool)

	// CSM verification (optional - based on config)
	var csmClient output.CSMClient
	if cfg.CSM.Enabled {
		client, err := csm.NewCSMClient(&cfg.CSM)
		if err != nil {
			log.Warnf("CSM client init failed (continuing without CSM verification): %v", err)
		} else {
			csmClient = client
			log.Info("CSM verification client initialized")
		}
	} else {
		log.Info("CSM verification disabled")
	}

	// Core services
	topoSvc := services.NewTopologyService(clusterClient, providerClient)
	seedSvc := services.NewSeedFileService(topoSvc, providerClient)
	validationSvc := services.NewValidationService()
	appSvc := services.NewApplicationService(
		appCfg,
		cfg.Application.BuildDir,
		cfg.Application.SetupBinary,
		cfg.Application.RemoteDir,
		topoSvc, seedSvc, validationSvc,
		clusterClient, providerClient, connector, runRepo, csmClient,
	)

	// Primary adapter
	h := handlers.New(appSvc)

	// Setup router
	router := gin.New()
	router.Use(middleware.RequestID(), middleware.Logging(), gin.Recovery())

	api := router.Group("/api/v1/application")
	h.RegisterRoutes(api)

	// Health check with DB ping
	router.GET("/healthz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Start server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Infof("starting server on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("server forced shutdown: %v", err)
	}

	log.Info("server stopped")
}

func initLogger(cfg *config.Config) {
	level, err := log.ParseLevel(cfg.Logger.Level)
	if err != nil {
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Logger.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
}
