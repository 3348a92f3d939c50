package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nhle/memoask/internal/model"
	appsettings "github.com/nhle/memoask/internal/settings"
)

// BuildPatch parses the form values, validates the resulting settings and
// returns a patch holding only the fields that differ from current.
func BuildPatch(current model.AISettings, v *formValues) (model.SettingsPatch, error) {
	next := model.AISettings{
		APIProvider: v.provider,
		Model:       strings.TrimSpace(v.model),
		APIKey:      strings.TrimSpace(v.apiKey),
		Proxy:       strings.TrimSpace(v.proxy),
		APIBaseURL:  strings.TrimSpace(v.baseURL),
		UserAgent:   strings.TrimSpace(v.userAgent),
	}

	var err error
	if next.Timeout, err = parseInt("timeout", v.timeout); err != nil {
		return model.SettingsPatch{}, err
	}
	if next.MaxTokens, err = parseInt("max tokens", v.maxTokens); err != nil {
		return model.SettingsPatch{}, err
	}
	if next.MaxContext, err = parseInt("max context", v.maxContext); err != nil {
		return model.SettingsPatch{}, err
	}
	if next.Temperature, err = strconv.ParseFloat(strings.TrimSpace(v.temperature), 64); err != nil {
		return model.SettingsPatch{}, fmt.Errorf("temperature: must be a number")
	}

	if err := appsettings.Validate(next); err != nil {
		return model.SettingsPatch{}, err
	}

	return diff(current, next), nil
}

func parseInt(field, raw string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%s: must be a whole number", field)
	}
	return n, nil
}

func diff(cur, next model.AISettings) model.SettingsPatch {
	var p model.SettingsPatch
	if next.APIProvider != cur.APIProvider {
		p.APIProvider = model.Ptr(next.APIProvider)
	}
	if next.Timeout != cur.Timeout {
		p.Timeout = model.Ptr(next.Timeout)
	}
	if next.MaxTokens != cur.MaxTokens {
		p.MaxTokens = model.Ptr(next.MaxTokens)
	}
	if next.Temperature != cur.Temperature {
		p.Temperature = model.Ptr(next.Temperature)
	}
	if next.MaxContext != cur.MaxContext {
		p.MaxContext = model.Ptr(next.MaxContext)
	}
	if next.Model != cur.Model {
		p.Model = model.Ptr(next.Model)
	}
	if next.APIKey != cur.APIKey {
		p.APIKey = model.Ptr(next.APIKey)
	}
	if next.Proxy != cur.Proxy {
		p.Proxy = model.Ptr(next.Proxy)
	}
	if next.APIBaseURL != cur.APIBaseURL {
		p.APIBaseURL = model.Ptr(next.APIBaseURL)
	}
	if next.UserAgent != cur.UserAgent {
		p.UserAgent = model.Ptr(next.UserAgent)
	}
	return p
}

func countFields(p model.SettingsPatch) int {
	n := 0
	for _, set := range []bool{
		p.APIProvider != nil, p.Timeout != nil, p.MaxTokens != nil,
		p.Temperature != nil, p.MaxContext != nil, p.Model != nil,
		p.APIKey != nil, p.Proxy != nil, p.APIBaseURL != nil, p.UserAgent != nil,
	} {
		if set {
			n++
		}
	}
	return n
}
