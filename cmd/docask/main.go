package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/xxxsen/common/logger"
	"github.com/xxxsen/common/logutil"
	"github.com/xxxsen/common/webapi"
	"go.uber.org/zap"

	"github.com/docask/docask/internal/ai"
	"github.com/docask/docask/internal/config"
	"github.com/docask/docask/internal/db"
	"github.com/docask/docask/internal/embedcache"
	"github.com/docask/docask/internal/filestore"
	"github.com/docask/docask/internal/handler"
	"github.com/docask/docask/internal/index"
	"github.com/docask/docask/internal/job"
	"github.com/docask/docask/internal/middleware"
	"github.com/docask/docask/internal/repo"
	"github.com/docask/docask/internal/schedule"
	"github.com/docask/docask/internal/service"
)

const (
	embedLruSize = 2048
	embedLruTTL  = time.Hour
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "docask",
		Short: "docask document q&a server",
	}

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run docask server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if configPath == "" {
				return fmt.Errorf("--config is required")
			}
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			logger.Init(
				cfg.LogConfig.File,
				cfg.LogConfig.Level,
				int(cfg.LogConfig.FileCount),
				int(cfg.LogConfig.FileSize),
				int(cfg.LogConfig.KeepDays),
				cfg.LogConfig.Console,
			)
			logutil.GetLogger(context.Background()).Info("config loaded", zap.String("config", configPath))

			var dbConn *sql.DB
			if cfg.Database.Enabled() {
				dbConn, err = db.Open(cfg.Database)
				if err != nil {
					return fmt.Errorf("open db: %w", err)
				}
				if err := db.ApplyMigrations(dbConn); err != nil {
					return fmt.Errorf("migrations: %w", err)
				}
			}
			return runServer(cfg, dbConn)
		},
	}

	runCmd.Flags().StringVar(&configPath, "config", "", "path to config.json")
	rootCmd.AddCommand(runCmd)

	if err := rootCmd.Execute(); err != nil {
		logutil.GetLogger(context.Background()).Fatal("startup error", zap.Error(err))
	}
}

func runServer(cfg *config.Config, dbConn *sql.DB) error {
	logutil.GetLogger(context.Background()).Info(
		"starting server",
		zap.Int("port", cfg.Port),
		zap.String("index", cfg.Index.Type),
		zap.String("embedding_provider", cfg.AI.Embedding.Provider),
	)

	// The database is optional with the memory index: repos stay nil and
	// the services degrade accordingly (in-process accounts, no registry,
	// no persisted embedding cache).
	var userStore service.UserStore
	var docRepo *repo.DocumentRepo
	var cacheRepo *repo.EmbeddingCacheRepo
	if dbConn != nil {
		userStore = repo.NewUserRepo(dbConn)
		docRepo = repo.NewDocumentRepo(dbConn)
		cacheRepo = repo.NewEmbeddingCacheRepo(dbConn)
	} else {
		userStore = repo.NewMemoryUserRepo()
	}

	embedder, err := ai.NewEmbedder(toProviderConfig(cfg.AI.Embedding))
	if err != nil {
		return fmt.Errorf("init embedder: %w", err)
	}
	embedder = embedcache.WrapDBCacheToEmbedder(embedder, cacheRepo)
	embedder = embedcache.WrapLruCacheToEmbedder(embedder, embedLruSize, embedLruTTL)

	var idx index.Index
	switch cfg.Index.Type {
	case "pgvector":
		if dbConn == nil {
			return fmt.Errorf("index type pgvector requires a database")
		}
		idx = index.NewPgIndex(dbConn, embedder)
	case "memory":
		idx = index.NewMemoryIndex(embedder)
	default:
		return fmt.Errorf("unsupported index type: %s", cfg.Index.Type)
	}

	generatorConfigs := make([]ai.ProviderConfig, 0, len(cfg.AI.Generation))
	for _, providerCfg := range cfg.AI.Generation {
		generatorConfigs = append(generatorConfigs, toProviderConfig(providerCfg))
	}
	generator := ai.NewChain(generatorConfigs)
	answerer := ai.NewAnswerer(generator)
	if generator == nil {
		logutil.GetLogger(context.Background()).Warn("no generation provider configured, answers fall back to raw passages")
	} else {
		logutil.GetLogger(context.Background()).Info("generation provider selected", zap.String("model", generator.ModelName()))
	}

	var store filestore.Store
	if cfg.FileStore.Type != "" {
		store, err = filestore.New(cfg.FileStore.Type, cfg.FileStore.Data)
		if err != nil {
			return fmt.Errorf("init file store: %w", err)
		}
	}

	jwtTTL := time.Hour * time.Duration(cfg.JWTTTLHours)
	authService := service.NewAuthService(userStore, []byte(cfg.JWTSecret), jwtTTL)
	ragService := service.NewRAGService(idx, answerer, docRepo, store, service.RAGConfig{
		MaxUploadBytes: cfg.Limits.MaxUploadBytes,
		MaxChunkTokens: cfg.Limits.MaxChunkTokens,
		OverlapTokens:  cfg.Limits.OverlapTokens,
		TopK:           cfg.Limits.TopK,
	})

	scheduler := schedule.NewCronScheduler()
	if cacheRepo != nil {
		if err := scheduler.AddJob(job.NewEmbeddingCacheCleanupJob(cacheRepo, cfg.Limits.CacheMaxAgeDays), "17 3 * * *"); err != nil {
			return fmt.Errorf("schedule cleanup job: %w", err)
		}
	}

	deps := handler.RouterDeps{
		Auth:            handler.NewAuthHandler(authService),
		RAG:             handler.NewRAGHandler(ragService),
		Documents:       handler.NewDocumentHandler(ragService),
		JWTSecret:       []byte(cfg.JWTSecret),
		QueryRateWindow: time.Duration(cfg.Limits.QueryRateWindowMS) * time.Millisecond,
	}

	engine, err := webapi.NewEngine(
		"/api/v1",
		fmt.Sprintf("0.0.0.0:%d", cfg.Port),
		webapi.WithRegister(func(group *gin.RouterGroup) {
			handler.RegisterRoutes(group, deps)
		}),
		webapi.WithExtraMiddlewares(
			middleware.CORS(cfg.CORSOrigins),
			gzip.Gzip(gzip.DefaultCompression),
		),
	)
	if err != nil {
		return fmt.Errorf("init web engine: %w", err)
	}
	logutil.GetLogger(context.Background()).Info("http server listening", zap.String("addr", fmt.Sprintf("0.0.0.0:%d", cfg.Port)))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	scheduler.Start(ctx)
	defer scheduler.Stop()

	go func() {
		if err := engine.Run(); err != nil && err != http.ErrServerClosed {
			logutil.GetLogger(context.Background()).Error("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logutil.GetLogger(context.Background()).Info("server stopping...")
	return nil
}

func toProviderConfig(cfg config.ProviderConfig) ai.ProviderConfig {
	return ai.ProviderConfig{
		Provider: cfg.Provider,
		Model:    cfg.Model,
		APIKey:   cfg.APIKey,
		BaseURL:  cfg.BaseURL,
	}
}
