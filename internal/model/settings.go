package model

// Provider identifies which AI backend the settings target.
type Provider string

const (
	ProviderOpenAI   Provider = "OpenAI"
	ProviderDeepSeek Provider = "DeepSeek"
)

// Providers lists the providers the settings panel offers, in display order.
var Providers = []Provider{ProviderOpenAI, ProviderDeepSeek}

// Valid reports whether p is one of the known providers.
func (p Provider) Valid() bool {
	for _, known := range Providers {
		if p == known {
			return true
		}
	}
	return false
}

// Default AI settings used when neither the config file nor the
// environment supplies a value.
const (
	DefaultProvider    = ProviderOpenAI
	DefaultTimeoutSec  = 30
	DefaultMaxTokens   = 0
	DefaultTemperature = 1.3
	DefaultMaxContext  = 7
	DefaultModel       = "deepseek-chat"
	DefaultAPIBaseURL  = "https://api.deepseek.com/v1/"
	DefaultUserAgent   = "SiYuan/3.1.20 std/darwin"
)

// AISettings is the provider configuration sent along with every question.
// The JSON names are part of the /api/ai/chat contract.
type AISettings struct {
	APIProvider Provider `json:"apiProvider" mapstructure:"api_provider" yaml:"api_provider"`

	// Timeout is a request timeout hint in seconds.
	Timeout int `json:"timeout" mapstructure:"timeout" yaml:"timeout"`

	// MaxTokens caps generation length; 0 means unbounded.
	MaxTokens int `json:"maxTokens" mapstructure:"max_tokens" yaml:"max_tokens"`

	Temperature float64 `json:"temperature" mapstructure:"temperature" yaml:"temperature"`

	// MaxContext is the number of prior turns the backend may include.
	MaxContext int `json:"maxContext" mapstructure:"max_context" yaml:"max_context"`

	Model string `json:"model" mapstructure:"model" yaml:"model"`

	// APIKey is sensitive; it is never written to the config file.
	APIKey string `json:"apiKey" mapstructure:"api_key" yaml:"-"`

	Proxy      string `json:"proxy" mapstructure:"proxy" yaml:"proxy"`
	APIBaseURL string `json:"apiBaseUrl" mapstructure:"api_base_url" yaml:"api_base_url"`
	UserAgent  string `json:"userAgent" mapstructure:"user_agent" yaml:"user_agent"`
}

// DefaultAISettings returns the built-in settings.
func DefaultAISettings() AISettings {
	return AISettings{
		APIProvider: DefaultProvider,
		Timeout:     DefaultTimeoutSec,
		MaxTokens:   DefaultMaxTokens,
		Temperature: DefaultTemperature,
		MaxContext:  DefaultMaxContext,
		Model:       DefaultModel,
		APIBaseURL:  DefaultAPIBaseURL,
		UserAgent:   DefaultUserAgent,
	}
}

// Redacted returns a copy with the API key masked, for logs and display.
func (s AISettings) Redacted() AISettings {
	if s.APIKey != "" {
		s.APIKey = "********"
	}
	return s
}

// SettingsPatch is a partial update of AISettings. Nil fields are left
// unchanged when the patch is applied.
type SettingsPatch struct {
	APIProvider *Provider
	Timeout     *int
	MaxTokens   *int
	Temperature *float64
	MaxContext  *int
	Model       *string
	APIKey      *string
	Proxy       *string
	APIBaseURL  *string
	UserAgent   *string
}

// Apply overlays the non-nil fields of p onto s and returns the result.
func (p SettingsPatch) Apply(s AISettings) AISettings {
	if p.APIProvider != nil {
		s.APIProvider = *p.APIProvider
	}
	if p.Timeout != nil {
		s.Timeout = *p.Timeout
	}
	if p.MaxTokens != nil {
		s.MaxTokens = *p.MaxTokens
	}
	if p.Temperature != nil {
		s.Temperature = *p.Temperature
	}
	if p.MaxContext != nil {
		s.MaxContext = *p.MaxContext
	}
	if p.Model != nil {
		s.Model = *p.Model
	}
	if p.APIKey != nil {
		s.APIKey = *p.APIKey
	}
	if p.Proxy != nil {
		s.Proxy = *p.Proxy
	}
	if p.APIBaseURL != nil {
		s.APIBaseURL = *p.APIBaseURL
	}
	if p.UserAgent != nil {
		s.UserAgent = *p.UserAgent
	}
	return s
}

// IsEmpty reports whether the patch changes nothing.
func (p SettingsPatch) IsEmpty() bool {
	return p == SettingsPatch{}
}

// Ptr returns a pointer to v. It keeps patch literals short.
func Ptr[T any](v T) *T {
	return &v
}
