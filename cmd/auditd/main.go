// auditd is the long-running audit daemon: it watches an intake directory,
// runs every invoice through the extraction and audit pipeline, and serves
// gRPC health for orchestration.
package main

import (
	"context"
	"flag"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/bgv-audit/invoice-audit/internal/async"
	"github.com/bgv-audit/invoice-audit/internal/audit"
	"github.com/bgv-audit/invoice-audit/internal/common"
	"github.com/bgv-audit/invoice-audit/internal/ingest"
	"github.com/bgv-audit/invoice-audit/internal/linesource"
	"github.com/bgv-audit/invoice-audit/internal/pipeline"
	"github.com/bgv-audit/invoice-audit/internal/provider"
	"github.com/bgv-audit/invoice-audit/internal/repository"
)

func main() {
	_ = godotenv.Load()

	zlog, _ := zap.NewProduction()
	defer func() { _ = zlog.Sync() }()
	log := zlog.Sugar()

	configPath := flag.String("config", "", "optional YAML config file overlaying environment values")
	intakeDir := flag.String("intake", os.Getenv("INTAKE_DIR"), "directory scanned for invoice PDFs at startup")
	flag.Parse()

	cfg := common.LoadConfig()
	if *configPath != "" {
		if err := common.LoadConfigFile(cfg, *configPath); err != nil {
			log.Fatalf("loading config file: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := repository.Open(ctx, repository.Config{
		DSN:             cfg.Database.DSN,
		MaxConns:        cfg.Database.MaxConns,
		MinConns:        cfg.Database.MinConns,
		MaxConnLifetime: cfg.Database.MaxConnLifetime,
		MaxConnIdleTime: cfg.Database.MaxConnIdleTime,
		DialTimeout:     cfg.Database.DialTimeout,
	}, logger)
	if err != nil {
		log.Fatalf("opening database: %v", err)
	}
	defer repository.Close(pool, logger)

	if err := repository.HealthCheck(ctx, pool, 3*time.Second, logger); err != nil {
		log.Fatalf("database health failed: %v", err)
	}
	if err := repository.Migrate(ctx, pool, logger); err != nil {
		log.Fatalf("applying schema: %v", err)
	}
	store := repository.NewPgStore(pool, logger)

	poppler := linesource.NewPopplerSource(linesource.PopplerConfig{
		Pdftotext: cfg.OCR.Pdftotext,
	}, logger)
	var docai *linesource.DocAISource
	if cfg.HasDocAI() {
		docai, err = linesource.NewDocAISource(ctx, linesource.DocAIConfig{
			ProjectID:       cfg.OCR.DocAIProjectID,
			Location:        cfg.OCR.DocAILocation,
			ProcessorID:     cfg.OCR.DocAIProcessorID,
			CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
			RowTolerance:    cfg.OCR.RowGroupTolerance,
		}, logger)
		if err != nil {
			log.Fatalf("creating document ai source: %v", err)
		}
		defer func() { _ = docai.Close() }()
	} else {
		log.Warn("document ai not configured; scanned invoices will fail extraction")
	}
	source := linesource.NewCompositeSource(poppler, docai, logger)

	registry := provider.NewRegistry(logger)
	extractor := pipeline.NewExtractor(registry, source, logger)
	engine := audit.NewEngine(store, logger)
	proc := pipeline.NewProcessor(extractor, engine, store, store, logger)

	queue := async.NewProcessorQueue(proc, logger,
		async.WithWorkers(cfg.Workers.Workers),
		async.WithQueueSize(cfg.Workers.QueueSize),
		async.WithProcessTimeout(cfg.Workers.Timeout),
	)

	if *intakeDir != "" {
		scanner := ingest.NewScanner(queue, logger)
		go func() {
			if _, err := scanner.IngestDirectory(ctx, *intakeDir, "", true); err != nil {
				logger.Error("intake scan failed", "dir", *intakeDir, "error", err)
			}
		}()
	}

	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, hs)
	hs.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	lis, err := net.Listen("tcp", cfg.Server.GRPCAddr)
	if err != nil {
		log.Fatalf("listen %s: %v", cfg.Server.GRPCAddr, err)
	}
	log.Infof("gRPC serving on %s", cfg.Server.GRPCAddr)

	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatalf("grpc serve: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down...")
	hs.SetServingStatus("", healthpb.HealthCheckResponse_NOT_SERVING)
	grpcServer.GracefulStop()

	drainCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	queue.Shutdown(drainCtx)
	log.Info("stopped")
}
