package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nhle/memoask/internal/ai"
	chatctl "github.com/nhle/memoask/internal/chat"
	"github.com/nhle/memoask/internal/logger"
	"github.com/nhle/memoask/internal/settings"
)

var askModel string

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask one question and print the answer",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger.Discard()

		initial, _ := seedSettings(cfg, openVault())
		asker, err := newAsker(cfg, settings.NewStore(initial))
		if err != nil {
			return err
		}

		opts := append(chatOptions(cfg), chatctl.WithModel(askModel))
		return askOnce(cmd.Context(), cmd.OutOrStdout(), asker, strings.Join(args, " "), opts...)
	},
}

func init() {
	rootCmd.AddCommand(askCmd)
	askCmd.Flags().StringVarP(&askModel, "model", "m", "", "Override the model for this question")
}

// askOnce runs a single question through a controller and writes the
// answer to w.
func askOnce(ctx context.Context, w io.Writer, asker ai.Asker, question string, opts ...chatctl.Option) error {
	if ctx == nil {
		ctx = context.Background()
	}

	ctrl := chatctl.NewController(asker, opts...)
	if !ctrl.Submit(ctx, question) {
		return errors.New("question is empty")
	}

	st := ctrl.State()
	if st.Error != "" {
		return errors.New(st.Error)
	}
	_, err := fmt.Fprintln(w, st.Answer)
	return err
}
