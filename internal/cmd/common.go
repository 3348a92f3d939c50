package cmd

import (
	"fmt"

	"github.com/nhle/memoask/internal/ai"
	chatctl "github.com/nhle/memoask/internal/chat"
	"github.com/nhle/memoask/internal/credential"
	"github.com/nhle/memoask/internal/logger"
	"github.com/nhle/memoask/internal/model"
	"github.com/nhle/memoask/internal/request"
	"github.com/nhle/memoask/internal/settings"
)

func resolvedConfigPath() string {
	if configPath != "" {
		return configPath
	}
	return model.DefaultConfigPath()
}

func loadConfig() (*model.AppConfig, error) {
	return model.LoadConfig(resolvedConfigPath())
}

// openVault opens the keyring. A keyring that cannot be opened is logged
// and treated as empty.
func openVault() *credential.Vault {
	v, err := credential.Open(model.ConfigDir())
	if err != nil {
		logger.Warn("keyring unavailable", logger.Err(err))
		return nil
	}
	return v
}

// seedSettings returns the configured AI settings with the API key taken
// from the first source that has one.
func seedSettings(cfg *model.AppConfig, v *credential.Vault) (model.AISettings, credential.Source) {
	s := cfg.AI
	key, src := credential.ResolveAPIKey(v, s.APIKey)
	s.APIKey = key
	return s, src
}

// newAsker builds the Ask-AI client talking to the configured backend.
func newAsker(cfg *model.AppConfig, store *settings.Store) (*ai.Client, error) {
	rc, err := request.New(cfg.Client.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("client base url: %w", err)
	}

	opts := []ai.Option{ai.WithSettings(store)}
	if cfg.Client.EnforceTimeout {
		opts = append(opts, ai.WithTimeoutEnforcement())
	}
	return ai.New(rc, opts...), nil
}

func chatOptions(cfg *model.AppConfig) []chatctl.Option {
	return []chatctl.Option{chatctl.WithClearAnswerOnSubmit(cfg.Client.ClearAnswerOnSubmit)}
}
