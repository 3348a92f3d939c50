package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/memoask/internal/credential"
	"github.com/nhle/memoask/internal/model"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the config file",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := resolvedConfigPath()
		if err := initConfig(path, configForce); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		s, src := seedSettings(cfg, openVault())
		cfg.AI = s
		showConfig(cmd.OutOrStdout(), cfg, src)
		return nil
	},
}

func init() {
	configInitCmd.Flags().BoolVarP(&configForce, "force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func initConfig(path string, force bool) error {
	if _, err := os.Stat(path); err == nil && !force {
		return fmt.Errorf("%s already exists (use --force to overwrite)", path)
	}
	return model.SaveConfig(path, model.DefaultAppConfig())
}

func showConfig(w io.Writer, cfg *model.AppConfig, src credential.Source) {
	ai := cfg.AI.Redacted()

	fmt.Fprintln(w, "server:")
	fmt.Fprintf(w, "  addr: %s\n", cfg.Server.Addr)
	fmt.Fprintf(w, "  db_path: %s\n", cfg.Server.DBPath)
	fmt.Fprintf(w, "  allowed_origins: %s\n", strings.Join(cfg.Server.AllowedOrigins, ", "))
	fmt.Fprintf(w, "  rate_per_minute: %d\n", cfg.Server.RatePerMinute)
	fmt.Fprintln(w, "client:")
	fmt.Fprintf(w, "  base_url: %s\n", cfg.Client.BaseURL)
	fmt.Fprintf(w, "  enforce_timeout: %t\n", cfg.Client.EnforceTimeout)
	fmt.Fprintf(w, "  clear_answer_on_submit: %t\n", cfg.Client.ClearAnswerOnSubmit)
	fmt.Fprintln(w, "ai:")
	fmt.Fprintf(w, "  api_provider: %s\n", ai.APIProvider)
	fmt.Fprintf(w, "  model: %s\n", ai.Model)
	fmt.Fprintf(w, "  api_base_url: %s\n", ai.APIBaseURL)
	fmt.Fprintf(w, "  api_key: %s (%s)\n", ai.APIKey, src)
	fmt.Fprintf(w, "  timeout: %d\n", ai.Timeout)
	fmt.Fprintf(w, "  max_tokens: %d\n", ai.MaxTokens)
	fmt.Fprintf(w, "  temperature: %g\n", ai.Temperature)
	fmt.Fprintf(w, "  max_context: %d\n", ai.MaxContext)
	fmt.Fprintf(w, "  proxy: %s\n", ai.Proxy)
	fmt.Fprintf(w, "  user_agent: %s\n", ai.UserAgent)
	fmt.Fprintln(w, "log:")
	fmt.Fprintf(w, "  level: %s\n", cfg.Log.Level)
	fmt.Fprintf(w, "  format: %s\n", cfg.Log.Format)
	fmt.Fprintf(w, "  file: %s\n", cfg.Log.File)
}
