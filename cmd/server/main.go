package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"entrygate/internal/artifact/local"
	"entrygate/internal/codetable"
	"entrygate/internal/config"
	"entrygate/internal/domain"
	"entrygate/internal/entry"
	"entrygate/internal/filing/soap"
	"entrygate/internal/handler"
	"entrygate/internal/middleware"
	"entrygate/internal/normalize"
	"entrygate/internal/port"
	"entrygate/internal/repository/postgres"
	"entrygate/internal/router"
	"entrygate/internal/service"
	s3storage "entrygate/internal/storage/s3"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	configureLogging(cfg)

	db, err := postgres.NewDB(&cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	// Code tables and mapper
	tables, err := codetable.Load(cfg.Entry.CodeTables)
	if err != nil {
		return fmt.Errorf("failed to load code tables: %w", err)
	}
	mapper := entry.NewMapper(normalize.New(tables, cfg.Entry.DefaultCountry), entry.Settings{
		BrokerNo:   cfg.Entry.BrokerNo,
		EntryType:  cfg.Entry.EntryType,
		DefaultUOM: cfg.Entry.DefaultUOM,
	})

	// Filing submitter
	var submitter port.FilingSubmitter
	if cfg.Filing.Enabled() {
		submitter = soap.NewClient(&cfg.Filing)
		log.Printf("filing: submitting to %s (%d/min)", cfg.Filing.Endpoint, cfg.Filing.RatePerMinute)
	} else {
		log.Printf("filing: no endpoint configured, submit endpoints will return 503")
	}

	// Debug artifacts
	store, err := newArtifactStore(cfg)
	if err != nil {
		return err
	}
	var artifacts *service.ArtifactWriter
	if store != nil {
		artifacts = service.NewArtifactWriter(store, service.ArtifactWriterConfig{})
	}

	entrySvc := service.NewEntryService(mapper, submitter, postgres.NewSubmissionRepo(db), artifacts, &cfg.Filing)

	r := router.Setup(
		middleware.NewTokenVerifier(&cfg.Auth),
		cfg.CORS.AllowedOrigins,
		handler.NewEntryHandler(entrySvc, cfg.Server.MaxBodyBytes),
		handler.NewSubmissionHandler(entrySvc),
		handler.NewHealthHandler(db),
	)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Server starting on %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
	if err := artifacts.Wait(ctx); err != nil {
		log.Printf("artifact writer: %v", err)
	}
	return nil
}

func configureLogging(cfg *config.Config) {
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	flags := log.LstdFlags
	if cfg.Log.Level == "debug" {
		flags |= log.Lshortfile
	}
	if cfg.Log.Format == "utc" {
		flags |= log.LUTC | log.Lmicroseconds
	}
	log.SetFlags(flags)
}

func newArtifactStore(cfg *config.Config) (port.ArtifactStore, error) {
	switch domain.ArtifactProvider(cfg.Artifacts.Provider) {
	case domain.ArtifactsLocal:
		log.Printf("artifacts: writing to %s", cfg.Artifacts.Dir)
		return local.NewStore(cfg.Artifacts.Dir), nil
	case domain.ArtifactsS3:
		client, err := s3storage.NewS3Client(&cfg.S3)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize S3 client: %w", err)
		}
		log.Printf("artifacts: writing to s3://%s/%s", cfg.S3.Bucket, cfg.Artifacts.Prefix)
		return s3storage.NewArtifactStore(client, cfg.S3.Bucket, cfg.Artifacts.Prefix), nil
	default:
		return nil, nil
	}
}
