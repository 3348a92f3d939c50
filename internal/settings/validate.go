package settings

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/nhle/memoask/internal/model"
)

// Temperature bounds accepted by OpenAI-compatible providers.
const (
	MinTemperature = 0.0
	MaxTemperature = 2.0
)

// Validate checks ranges and URLs. The store never calls it; the settings
// panel does before applying a patch. All problems are joined into one
// error.
func Validate(s model.AISettings) error {
	var errs []error

	if !s.APIProvider.Valid() {
		errs = append(errs, fmt.Errorf("unknown provider %q", s.APIProvider))
	}
	if s.Timeout < 0 {
		errs = append(errs, fmt.Errorf("timeout must not be negative"))
	}
	if s.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("max tokens must not be negative"))
	}
	if s.Temperature < MinTemperature || s.Temperature > MaxTemperature {
		errs = append(errs, fmt.Errorf(
			"temperature must be between %.1f and %.1f", MinTemperature, MaxTemperature,
		))
	}
	if s.MaxContext < 0 {
		errs = append(errs, fmt.Errorf("max context must not be negative"))
	}
	if err := ValidateURL(s.APIBaseURL, true); err != nil {
		errs = append(errs, fmt.Errorf("api base url: %w", err))
	}
	if err := ValidateURL(s.Proxy, false); err != nil {
		errs = append(errs, fmt.Errorf("proxy: %w", err))
	}

	return errors.Join(errs...)
}

// ValidateURL checks that raw has a scheme and host. An empty value is
// accepted unless required is set.
func ValidateURL(raw string, required bool) error {
	if strings.TrimSpace(raw) == "" {
		if required {
			return fmt.Errorf("URL is required")
		}
		return nil
	}
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("URL must include scheme and host (e.g., https://example.com)")
	}
	return nil
}
