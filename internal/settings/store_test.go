package settings

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/memoask/internal/model"
)

func TestStoreGetReturnsInitial(t *testing.T) {
	s := NewStore(model.DefaultAISettings())
	assert.Equal(t, model.DefaultAISettings(), s.Get())
}

func TestStoreUpdateOverlaysOnlyPatchedFields(t *testing.T) {
	prior := model.DefaultAISettings()
	s := NewStore(prior)

	patch := model.SettingsPatch{
		Model:       model.Ptr("gpt-4o"),
		Temperature: model.Ptr(0.2),
		APIKey:      model.Ptr("sk-test"),
	}
	s.Update(patch)

	want := prior
	want.Model = "gpt-4o"
	want.Temperature = 0.2
	want.APIKey = "sk-test"
	assert.Equal(t, want, s.Get())
}

func TestStoreUpdateAllFields(t *testing.T) {
	s := NewStore(model.DefaultAISettings())

	s.Update(model.SettingsPatch{
		APIProvider: model.Ptr(model.ProviderDeepSeek),
		Timeout:     model.Ptr(5),
		MaxTokens:   model.Ptr(256),
		Temperature: model.Ptr(0.7),
		MaxContext:  model.Ptr(3),
		Model:       model.Ptr("deepseek-reasoner"),
		APIKey:      model.Ptr("k"),
		Proxy:       model.Ptr("http://proxy:3128"),
		APIBaseURL:  model.Ptr("https://example.com/v1/"),
		UserAgent:   model.Ptr("memoask/test"),
	})

	assert.Equal(t, model.AISettings{
		APIProvider: model.ProviderDeepSeek,
		Timeout:     5,
		MaxTokens:   256,
		Temperature: 0.7,
		MaxContext:  3,
		Model:       "deepseek-reasoner",
		APIKey:      "k",
		Proxy:       "http://proxy:3128",
		APIBaseURL:  "https://example.com/v1/",
		UserAgent:   "memoask/test",
	}, s.Get())
}

func TestStoreUpdateCanSetZeroValues(t *testing.T) {
	s := NewStore(model.DefaultAISettings())

	s.Update(model.SettingsPatch{Timeout: model.Ptr(0), Model: model.Ptr("")})

	got := s.Get()
	assert.Equal(t, 0, got.Timeout)
	assert.Equal(t, "", got.Model)
	assert.Equal(t, model.DefaultTemperature, got.Temperature)
}

func TestStoreEmptyPatchIsNoop(t *testing.T) {
	s := NewStore(model.DefaultAISettings())
	s.Update(model.SettingsPatch{})
	assert.Equal(t, model.DefaultAISettings(), s.Get())
}

func TestStoreGetReturnsCopy(t *testing.T) {
	s := NewStore(model.DefaultAISettings())

	snapshot := s.Get()
	snapshot.Model = "mutated"

	assert.Equal(t, model.DefaultModel, s.Get().Model)
}

func TestStoreDoesNotValidate(t *testing.T) {
	s := NewStore(model.DefaultAISettings())

	s.Update(model.SettingsPatch{Temperature: model.Ptr(-9.0), Timeout: model.Ptr(-1)})

	assert.Equal(t, -9.0, s.Get().Temperature)
	assert.Equal(t, -1, s.Get().Timeout)
}

func TestStoreConcurrentAccess(t *testing.T) {
	s := NewStore(model.DefaultAISettings())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func(n int) {
			defer wg.Done()
			s.Update(model.SettingsPatch{MaxTokens: model.Ptr(n)})
		}(i)
		go func() {
			defer wg.Done()
			got := s.Get()
			assert.Equal(t, model.DefaultModel, got.Model)
		}()
	}
	wg.Wait()
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*model.AISettings)
		wantErr string
	}{
		{name: "defaults", mutate: func(*model.AISettings) {}},
		{
			name:    "unknown provider",
			mutate:  func(s *model.AISettings) { s.APIProvider = "Mystery" },
			wantErr: "unknown provider",
		},
		{
			name:    "negative timeout",
			mutate:  func(s *model.AISettings) { s.Timeout = -1 },
			wantErr: "timeout",
		},
		{
			name:    "temperature too high",
			mutate:  func(s *model.AISettings) { s.Temperature = 2.5 },
			wantErr: "temperature",
		},
		{
			name:    "missing base url",
			mutate:  func(s *model.AISettings) { s.APIBaseURL = "" },
			wantErr: "api base url",
		},
		{
			name:    "bad proxy",
			mutate:  func(s *model.AISettings) { s.Proxy = "localhost" },
			wantErr: "proxy",
		},
		{
			name:   "empty proxy allowed",
			mutate: func(s *model.AISettings) { s.Proxy = "" },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := model.DefaultAISettings()
			tt.mutate(&s)
			err := Validate(s)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
