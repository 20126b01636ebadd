package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/jmtrujillo/incapacidades-backend/internal/archive"
	"github.com/jmtrujillo/incapacidades-backend/internal/config"
	"github.com/jmtrujillo/incapacidades-backend/internal/directory"
	httpserver "github.com/jmtrujillo/incapacidades-backend/internal/interfaces/http"
	"github.com/jmtrujillo/incapacidades-backend/internal/mirror"
	"github.com/jmtrujillo/incapacidades-backend/internal/recordlog"
	"github.com/jmtrujillo/incapacidades-backend/internal/storage"
	"github.com/jmtrujillo/incapacidades-backend/internal/submission"
	"github.com/jmtrujillo/incapacidades-backend/pkg/utils"
)

func main() {
	// Local development reads credentials from .env; in deployment the
	// environment is already populated.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting incapacidades backend",
		zap.String("storage_root", cfg.Storage.Root),
		zap.String("database_backend", cfg.Database.Backend),
	)

	var log recordlog.Log
	switch cfg.Database.Backend {
	case "sqlite":
		sqliteLog, err := recordlog.NewSQLiteLog(cfg.DatabasePath(), logger)
		if err != nil {
			logger.Fatal("Failed to open sqlite record log", zap.Error(err))
		}
		log = sqliteLog
	default:
		log = recordlog.NewExcelLog(cfg.DatabasePath(), logger)
	}
	defer log.Close()

	files := storage.NewPlacement(cfg.Storage.Root, logger)

	seed, err := directory.LoadSeed(cfg.Storage.EmployeesSeed, logger)
	if err != nil {
		logger.Fatal("Failed to load employee seed", zap.Error(err))
	}
	lookup := directory.NewLookup(seed, log, logger)

	graph := mirror.NewGraphConnector(mirror.GraphConfig{
		TenantID:     cfg.OneDrive.TenantID,
		ClientID:     cfg.OneDrive.ClientID,
		ClientSecret: cfg.OneDrive.ClientSecret,
		DriveID:      cfg.OneDrive.DriveID,
		BasePath:     cfg.OneDrive.BasePath,
	}, logger)
	supa := mirror.NewSupabaseConnector(mirror.SupabaseConfig{
		URL:    cfg.Supabase.URL,
		Key:    cfg.Supabase.Key,
		Bucket: cfg.Supabase.Bucket,
		Table:  cfg.Supabase.Table,
	}, logger)

	for _, conn := range []mirror.Connector{graph, supa} {
		logger.Info("Mirror connector",
			zap.String("name", conn.Name()),
			zap.Bool("configured", conn.Configured()),
		)
	}

	service := submission.NewService(
		log,
		files,
		[]mirror.Connector{graph, supa},
		cfg.Mirror.Timeout,
		logger,
	)

	archiver := archive.NewArchiver(log, supa, files.Root(), logger)

	handlers := httpserver.NewHandlers(
		lookup,
		service,
		log,
		files,
		archiver,
		cfg.Dev.Token,
		cfg.Dev.ArchiveOlderThanDays,
		logger,
	)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, handlers, cfg.Origins(), logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server exited with error", zap.Error(err))
	}
	logger.Info("Shutdown complete")
}
