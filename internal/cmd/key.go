package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/nhle/memoask/internal/credential"
	"github.com/nhle/memoask/internal/model"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage the provider API key in the system keyring",
}

var keySetCmd = &cobra.Command{
	Use:   "set [api-key]",
	Short: "Store the API key (prompts when omitted)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var value string
		if len(args) == 1 {
			value = args[0]
		} else {
			err := huh.NewInput().
				Title("API key").
				EchoMode(huh.EchoModePassword).
				Value(&value).
				Run()
			if err != nil {
				return err
			}
		}

		value = strings.TrimSpace(value)
		if value == "" {
			return errors.New("api key is empty")
		}

		v, err := credential.Open(model.ConfigDir())
		if err != nil {
			return err
		}
		if err := v.Set(credential.APIKeyName, value); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key stored.")
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Remove the stored API key",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := credential.Open(model.ConfigDir())
		if err != nil {
			return err
		}
		if err := v.Delete(credential.APIKeyName); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "API key removed.")
		return nil
	},
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyDeleteCmd)
	rootCmd.AddCommand(keyCmd)
}
