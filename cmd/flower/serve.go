package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonathan/flower-resume/internal/ai"
	"github.com/jonathan/flower-resume/internal/db"
	"github.com/jonathan/flower-resume/internal/llm"
	"github.com/jonathan/flower-resume/internal/resumes"
	"github.com/jonathan/flower-resume/internal/server"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	servePort    int
	serveMigrate bool
)

// startupTimeout bounds connecting to the database, Redis and the bucket.
const startupTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the resume, profile, AI and upload endpoints.`,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT)")
	serveCmd.Flags().BoolVar(&serveMigrate, "migrate", false, "Apply the schema before serving")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if servePort != 0 {
		cfg.Server.Port = servePort
	}
	if err := cfg.ValidateServe(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	database, err := db.Connect(startCtx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer database.Close()

	if serveMigrate {
		if err := database.Migrate(startCtx); err != nil {
			return err
		}
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = newRedis(startCtx, cfg.RedisURL)
		if err != nil {
			return err
		}
		defer func() { _ = rdb.Close() }()
	}

	llmClient, err := newLLMClient(startCtx, cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = llmClient.Close() }()

	uploads, err := newAssets(startCtx, cfg.Storage, logger)
	if err != nil {
		return fmt.Errorf("failed to configure storage: %w", err)
	}

	limiter, err := newLimiter(cfg.RateLimit, rdb, logger)
	if err != nil {
		return err
	}

	docs := resumes.NewService(database, logger)
	aiService := ai.NewService(llmClient, docs, newFetcher(rdb, logger), ai.Config{
		MaxAttempts: cfg.LLM.MaxAttempts,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	srv, err := server.New(server.Deps{
		Config:  cfg,
		Logger:  logger,
		Users:   database,
		Resumes: docs,
		AI:      aiService,
		Assets:  uploads,
		Limiter: limiter,
		DB:      database,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	logger.Info("configured",
		zap.String("llm_provider", cfg.LLM.Provider),
		zap.String("model_standard", llmClient.GetModel(llm.TierStandard)),
		zap.Bool("redis", rdb != nil),
		zap.Bool("uploads", cfg.Storage.Enabled()),
	)
	return srv.Start(ctx)
}
