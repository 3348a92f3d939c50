package cmd

import (
	"fmt"
	"log/slog"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/nhle/memoask/internal/app"
	"github.com/nhle/memoask/internal/logger"
	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/settings"
	appsync "github.com/nhle/memoask/internal/sync"
)

var chatMarkdownStyle string

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Open the terminal chat (default)",
	RunE:  runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)

	for _, c := range []*cobra.Command{rootCmd, chatCmd} {
		c.Flags().StringVar(&chatMarkdownStyle, "style", "auto", "Glamour style for answers (auto, dark, light, notty)")
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logPath := cfg.Log.File
	if logPath == "" {
		logPath = filepath.Join(model.ConfigDir(), "memoask.log")
	}
	closer, err := logger.InitFile(logPath, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer closer.Close()

	initial, src := seedSettings(cfg, openVault())
	logger.Info("starting chat",
		slog.String("base_url", cfg.Client.BaseURL),
		slog.String("api_key_source", string(src)),
	)

	store := settings.NewStore(initial)
	asker, err := newAsker(cfg, store)
	if err != nil {
		return err
	}

	m := app.New(app.Deps{
		Asker:         asker,
		Settings:      store,
		ChatOptions:   chatOptions(cfg),
		MarkdownStyle: chatMarkdownStyle,
		History:       asker,
		Poller:        appsync.New(asker, appsync.DefaultInterval),
	})

	if _, err := tea.NewProgram(m, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running terminal UI: %w", err)
	}
	return nil
}
