package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nhle/memoask/internal/handlers"
	"github.com/nhle/memoask/internal/logger"
	"github.com/nhle/memoask/internal/provider"
	"github.com/nhle/memoask/internal/server"
	"github.com/nhle/memoask/internal/store"
)

var (
	serveAddr       string
	serveRetainDays int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the chat backend",
	Long: `Run the HTTP backend serving /api/ai/chat. Questions are forwarded to
an OpenAI-compatible provider and every exchange is recorded in SQLite.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides server.addr)")
	serveCmd.Flags().IntVar(&serveRetainDays, "retain-days", 0, "Delete exchanges older than this many days at startup (0 keeps all)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.Server.Addr = serveAddr
	}

	if cfg.Log.File != "" {
		closer, err := logger.InitFile(cfg.Log.File, cfg.Log.Level, cfg.Log.Format)
		if err != nil {
			return err
		}
		defer closer.Close()
	} else {
		logger.Init(cfg.Log.Level, cfg.Log.Format)
	}
	log := logger.L

	db, err := store.NewSQLiteStore(cfg.Server.DBPath)
	if err != nil {
		return fmt.Errorf("opening exchange store: %w", err)
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if serveRetainDays > 0 {
		cutoff := time.Now().AddDate(0, 0, -serveRetainDays)
		n, err := db.PruneExchanges(ctx, cutoff)
		if err != nil {
			return err
		}
		log.Info("pruned exchanges", slog.Int64("deleted", n), slog.Time("cutoff", cutoff))
	}
	if n, err := db.CountExchanges(ctx); err == nil {
		log.Info("exchange store ready", slog.String("path", cfg.Server.DBPath), slog.Int("exchanges", n))
	}

	// Requests without settings fall back to the configured ones, with the
	// key resolved like the client does.
	defaults, src := seedSettings(cfg, openVault())
	log.Info("default settings",
		slog.String("provider", string(defaults.APIProvider)),
		slog.String("model", defaults.Model),
		slog.String("api_key_source", string(src)),
	)

	chat := handlers.NewChatHandler(log, provider.NewOpenAICompatible(nil),
		handlers.WithHistory(db),
		handlers.WithRateLimit(cfg.Server.RatePerMinute),
		handlers.WithDefaults(defaults),
	)

	srv := server.NewServer(log, cfg.Server.Addr, cfg.Server.AllowedOrigins,
		handlers.HealthHandler{},
		chat,
	)
	return srv.Run(ctx)
}
