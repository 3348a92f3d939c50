package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/memoask/internal/ai"
	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/request"
)

type historyFetcher interface {
	History(ctx context.Context, limit int) ([]model.Exchange, error)
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent exchanges recorded by the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		rc, err := request.New(cfg.Client.BaseURL)
		if err != nil {
			return fmt.Errorf("client base url: %w", err)
		}
		return printHistory(cmd.Context(), cmd.OutOrStdout(), ai.New(rc), historyLimit)
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of exchanges to show")
}

func printHistory(ctx context.Context, w io.Writer, f historyFetcher, limit int) error {
	if ctx == nil {
		ctx = context.Background()
	}

	exchanges, err := f.History(ctx, limit)
	if err != nil {
		return err
	}

	if len(exchanges) == 0 {
		fmt.Fprintln(w, "No exchanges recorded.")
		return nil
	}

	for _, ex := range exchanges {
		fmt.Fprintf(w, "%s  %s/%s  %dms\n",
			ex.CreatedAt.Local().Format("2006-01-02 15:04"), ex.Provider, ex.Model, ex.LatencyMS)
		fmt.Fprintf(w, "  Q: %s\n", oneLine(ex.Question))
		if ex.Succeeded() {
			fmt.Fprintf(w, "  A: %s\n", oneLine(ex.Answer))
		} else {
			fmt.Fprintf(w, "  error: %s\n", oneLine(ex.Error))
		}
	}
	return nil
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 100 {
		return s[:97] + "..."
	}
	return s
}
