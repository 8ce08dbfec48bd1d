package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/librarium-ai/librarium/internal/audit"
	"github.com/librarium-ai/librarium/internal/auth"
	"github.com/librarium-ai/librarium/internal/config"
	"github.com/librarium-ai/librarium/internal/docindex"
	"github.com/librarium-ai/librarium/internal/mcp"
	"github.com/librarium-ai/librarium/internal/policy"
	"github.com/librarium-ai/librarium/internal/ratelimit"
	"github.com/librarium-ai/librarium/internal/server"
	"github.com/librarium-ai/librarium/internal/session"
	"github.com/librarium-ai/librarium/internal/storage"
	"github.com/librarium-ai/librarium/internal/telemetry"
	"github.com/librarium-ai/librarium/migrations"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Librarium gateway",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()
		return runServe(ctx)
	},
}

func runServe(ctx context.Context) error {
	// Load .env file if present (non-fatal; production won't have one).
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	slog.SetDefault(logger)
	logger.Info("librarium starting", "version", version, "port", cfg.Port)

	otelShutdown, err := telemetry.Init(ctx, cfg.OTELEndpoint, cfg.ServiceName, version, cfg.OTELInsecure)
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	db, err := storage.New(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	defer db.Close()

	if err := db.RunMigrations(ctx, migrations.FS); err != nil {
		return fmt.Errorf("migrations: %w", err)
	}

	jwtMgr, err := auth.NewJWTManager(cfg.JWTPrivateKeyPath, cfg.JWTPublicKeyPath, cfg.JWTExpiration)
	if err != nil {
		return fmt.Errorf("auth: %w", err)
	}

	// A failed initial corpus build is fatal; a broken corpus must never serve.
	index, err := docindex.NewProvider(cfg.CorpusDir, logger)
	if err != nil {
		return fmt.Errorf("docindex: %w", err)
	}
	logger.Info("corpus index built",
		"documents", index.Index().Len(),
		"corpora", index.Index().Corpora(),
	)

	engine := policy.New(db, cfg.PolicyCacheTTL, logger)
	defer engine.Close()

	recorder := audit.NewRecorder(db, logger)
	registry := session.NewRegistry(logger)

	mcpSrv := mcp.New(db, engine, index, recorder, registry, logger, version)

	var authLimiter ratelimit.Limiter = ratelimit.Disabled{}
	if cfg.AuthRatePerMinute > 0 {
		authLimiter = ratelimit.NewMemoryBucket(cfg.AuthRatePerMinute, cfg.AuthRateBurst)
	}
	defer func() { _ = authLimiter.Close() }()

	srv := server.New(server.Config{
		DB:                  db,
		JWTMgr:              jwtMgr,
		Index:               index,
		Registry:            registry,
		MCP:                 mcpSrv.MCPServer(),
		AuthLimiter:         authLimiter,
		Logger:              logger,
		Port:                cfg.Port,
		ReadTimeout:         cfg.ReadTimeout,
		WriteTimeout:        cfg.WriteTimeout,
		Version:             version,
		MaxRequestBodyBytes: cfg.MaxRequestBodyBytes,
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	if cfg.WatchCorpus {
		g.Go(func() error {
			if err := index.Watch(gctx); err != nil {
				return fmt.Errorf("corpus watch: %w", err)
			}
			return nil
		})
	}

	g.Go(func() error {
		<-gctx.Done()

		logger.Info("librarium shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("librarium stopped")
	return nil
}

func newLogger(level string) *slog.Logger {
	lvl := slog.LevelInfo
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
