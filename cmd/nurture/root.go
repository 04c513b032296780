package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/hyperengineering/nurture/internal/api"
	"github.com/hyperengineering/nurture/internal/catalog"
	"github.com/hyperengineering/nurture/internal/config"
	"github.com/hyperengineering/nurture/internal/selection"
	"github.com/hyperengineering/nurture/internal/session"
	"github.com/hyperengineering/nurture/internal/store"
	"github.com/hyperengineering/nurture/internal/worker"
)

// Version is set at build time via ldflags: -ldflags "-X main.Version=1.0.0"
var Version = "dev"

var rootCmd = &cobra.Command{
	Use:   "nurture",
	Short: "Nurture - child development companion service",
	Long: "Serves the Nurture API. Subcommands query the built-in milestone, " +
		"activity and medical catalogs without running the server.",
	RunE:         run,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(catalogCmd)
	rootCmd.AddCommand(milestonesCmd)
	rootCmd.AddCommand(activitiesCmd)
	rootCmd.AddCommand(medicalCmd)
	rootCmd.AddCommand(ageCmd)
}

func run(cmd *cobra.Command, args []string) error {
	// 1. Signal handling
	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	// 2. Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	slog.Info("configuration loaded")

	// 3. Initialize logger
	slog.SetDefault(newLogger(os.Stdout, cfg.Log))
	slog.Info("logger initialized", "level", cfg.Log.Level, "format", cfg.Log.Format)
	if cfg.DevMode {
		slog.Warn("dev mode enabled: do not run this configuration in production")
	}

	// 4. Initialize store (migrations, WAL mode)
	db, err := store.NewSQLiteStore(cfg.Database.Path)
	if err != nil {
		return err
	}
	slog.Info("store initialized", "path", cfg.Database.Path)

	// 5. Load catalogs
	set, err := loadCatalogs(cfg)
	if err != nil {
		db.Close()
		return err
	}
	registry := catalog.NewRegistry(set)
	slog.Info("catalogs loaded", "catalogs", len(set.Names()), "override_dir", cfg.Catalog.OverrideDir)

	// 6. Initialize session service
	sessions, err := session.NewService(db, session.Options{
		Secret:     cfg.SigningSecret(),
		Issuer:     cfg.Auth.Issuer,
		TTL:        cfg.Auth.TokenTTL.Std(),
		Cooldown:   cfg.Auth.CodeResend.Std(),
		LoginDelay: cfg.Auth.LoginDelay.Std(),
	})
	if err != nil {
		db.Close()
		return err
	}
	slog.Info("session service initialized", "issuer", cfg.Auth.Issuer)

	// 7. Initialize HTTP router
	dashboard := selection.DefaultDashboardOptions()
	dashboard.MilestoneCatalog = cfg.Catalog.DefaultMilestones
	dashboard.MedicalVisibility = cfg.Selection.MedicalVisibilityMonths
	handler := api.NewHandler(db, sessions, registry, api.Options{
		Version:   Version,
		DevMode:   cfg.DevMode,
		Dashboard: dashboard,
	})
	router := api.NewRouter(handler)
	slog.Info("router initialized")

	// 8. Configure HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout.Std(),
		WriteTimeout: cfg.Server.WriteTimeout.Std(),
	}

	// 9. Background workers
	var wg sync.WaitGroup
	sweeper := worker.NewChallengeSweepWorker(db,
		cfg.Worker.ChallengeSweepInterval.Std(),
		cfg.Worker.ChallengeMaxAge.Std())
	startWorker(ctx, &wg, "challenge-sweep", sweeper.Run)

	if cfg.Catalog.Watch && cfg.Catalog.OverrideDir != "" {
		watcher := catalog.NewWatcher(cfg.Catalog.OverrideDir, registry, func() (*catalog.Set, error) {
			return loadCatalogs(cfg)
		}, 0)
		startWorker(ctx, &wg, "catalog-watch", watcher.Run)
	}

	// 10. Start HTTP server in goroutine
	go func() {
		slog.Info("server starting", "address", addr)
		// ErrServerClosed is the expected error when Shutdown() is called gracefully.
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			cancel() // Trigger shutdown on server failure
		}
	}()

	// 11. Block until signal received
	<-ctx.Done()
	slog.Info("shutdown initiated")

	// 12. Graceful shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(
		context.Background(),
		cfg.Server.ShutdownTimeout.Std())
	defer shutdownCancel()

	// 12a. Stop HTTP server (drains in-flight requests)
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// 12b. Wait for workers to complete
	wg.Wait()

	// 12c. Close store
	if err := db.Close(); err != nil {
		slog.Error("store close error", "error", err)
	}

	slog.Info("shutdown complete")
	return nil
}

// loadCatalogs loads the built-in catalogs plus the override directory and
// applies the configured policy overrides. The default milestone catalog
// must exist.
func loadCatalogs(cfg *config.Config) (*catalog.Set, error) {
	set, err := catalog.Load(cfg.Catalog.OverrideDir)
	if err != nil {
		return nil, err
	}
	for name, p := range cfg.Catalog.Policies {
		if err := set.OverridePolicy(name, p); err != nil {
			return nil, fmt.Errorf("catalog policy %s: %w", name, err)
		}
	}
	if _, err := set.Milestones(cfg.Catalog.DefaultMilestones); err != nil {
		return nil, fmt.Errorf("default milestone catalog: %w", err)
	}
	return set, nil
}

func newLogger(w io.Writer, cfg config.LogConfig) *slog.Logger {
	opts := &slog.HandlerOptions{Level: parseLogLevel(cfg.Level)}
	if strings.EqualFold(cfg.Format, "text") {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// startWorker launches a background worker goroutine that respects context cancellation.
// Workers are tracked via WaitGroup for graceful shutdown.
func startWorker(ctx context.Context, wg *sync.WaitGroup, name string, fn func(ctx context.Context)) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		slog.Info("worker started", "worker", name)
		fn(ctx)
		slog.Info("worker stopped", "worker", name)
	}()
}

// queryNow is the clock used by the query subcommands.
var queryNow = func() time.Time { return time.Now().UTC() }
