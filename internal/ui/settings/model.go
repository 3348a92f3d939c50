// Package settings is the AI settings panel.
package settings

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/memoask/internal/keys"
	"github.com/nhle/memoask/internal/model"
	appsettings "github.com/nhle/memoask/internal/settings"
	"github.com/nhle/memoask/internal/theme"
)

// DoneMsg signals the panel was closed without saving.
type DoneMsg struct{}

// SavedMsg signals the store was updated. Changed is the number of fields
// the patch touched.
type SavedMsg struct {
	Settings model.AISettings
	Changed  int
}

// formValues holds what huh binds to. It lives behind a pointer so copies
// of Model share it.
type formValues struct {
	provider    model.Provider
	timeout     string
	maxTokens   string
	temperature string
	maxContext  string
	model       string
	apiKey      string
	proxy       string
	baseURL     string
	userAgent   string
}

func valuesFrom(s model.AISettings) *formValues {
	return &formValues{
		provider:    s.APIProvider,
		timeout:     strconv.Itoa(s.Timeout),
		maxTokens:   strconv.Itoa(s.MaxTokens),
		temperature: strconv.FormatFloat(s.Temperature, 'f', -1, 64),
		maxContext:  strconv.Itoa(s.MaxContext),
		model:       s.Model,
		apiKey:      s.APIKey,
		proxy:       s.Proxy,
		baseURL:     s.APIBaseURL,
		userAgent:   s.UserAgent,
	}
}

// Model is the Bubble Tea model for the settings panel.
type Model struct {
	store     *appsettings.Store
	form      *huh.Form
	values    *formValues
	statusMsg string

	keys          *keys.KeyMap
	width, height int
}

// New creates a settings panel editing store.
func New(store *appsettings.Store, k *keys.KeyMap, width, height int) Model {
	m := Model{
		store:  store,
		keys:   k,
		width:  width,
		height: height,
	}
	m.reset(store.Get())
	return m
}

// Init initializes the form.
func (m Model) Init() tea.Cmd {
	return m.form.Init()
}

// Open reloads the form from the current settings.
func (m *Model) Open() tea.Cmd {
	m.statusMsg = ""
	m.reset(m.store.Get())
	return m.form.Init()
}

func (m *Model) reset(s model.AISettings) {
	m.values = valuesFrom(s)
	m.form = buildForm(m.values, m.formWidth())
}

// Update handles messages for the panel.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.SetSize(wsm.Width, wsm.Height)
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateCompleted:
		return m.save()
	case huh.StateAborted:
		m.reset(m.store.Get())
		return m, func() tea.Msg { return DoneMsg{} }
	}

	return m, cmd
}

// save validates the form and applies the changed fields. On a validation
// error the form is rebuilt with the entered values so they can be fixed.
func (m Model) save() (Model, tea.Cmd) {
	patch, err := BuildPatch(m.store.Get(), m.values)
	if err != nil {
		m.statusMsg = err.Error()
		m.form = buildForm(m.values, m.formWidth())
		return m, m.form.Init()
	}

	changed := countFields(patch)
	m.store.Update(patch)
	current := m.store.Get()
	m.statusMsg = fmt.Sprintf("Saved %d change(s)", changed)
	m.reset(current)

	return m, func() tea.Msg { return SavedMsg{Settings: current, Changed: changed} }
}

// View renders the panel.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(theme.TitleStyle.Render("AI Settings"))
	b.WriteString("\n\n")
	b.WriteString(m.form.View())

	if m.statusMsg != "" {
		b.WriteString("\n")
		if strings.HasPrefix(m.statusMsg, "Saved") {
			b.WriteString(theme.NoticeStyle.Render(m.statusMsg))
		} else {
			b.WriteString(theme.ErrorStyle.Render(m.statusMsg))
		}
	}

	b.WriteString("\n")
	b.WriteString(theme.HelpStyle.Render("enter next field • shift+tab back • esc close"))

	return theme.PanelStyle.
		Width(m.formWidth()).
		Render(lipgloss.NewStyle().MaxWidth(m.formWidth()).Render(b.String()))
}

// SetSize updates the panel dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth())
	}
}

func (m Model) formWidth() int {
	w := m.width - 4
	if w < 40 {
		w = 40
	}
	if w > 100 {
		w = 100
	}
	return w
}

func buildForm(v *formValues, width int) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[model.Provider]().
				Title("Provider").
				Options(huh.NewOptions(model.Providers...)...).
				Value(&v.provider),
			huh.NewInput().
				Title("Model").
				Placeholder(model.DefaultModel).
				Value(&v.model),
			huh.NewInput().
				Title("API Key").
				Description("Kept in memory for this session only").
				EchoMode(huh.EchoModePassword).
				Value(&v.apiKey),
			huh.NewInput().
				Title("API Base URL").
				Placeholder(model.DefaultAPIBaseURL).
				Value(&v.baseURL).
				Validate(func(s string) error { return appsettings.ValidateURL(s, true) }),
			huh.NewInput().
				Title("Proxy").
				Placeholder("http://127.0.0.1:7890").
				Value(&v.proxy).
				Validate(func(s string) error { return appsettings.ValidateURL(s, false) }),
		).Title("Provider"),
		huh.NewGroup(
			huh.NewInput().
				Title("Timeout (seconds)").
				Value(&v.timeout).
				Validate(validateInt),
			huh.NewInput().
				Title("Max Tokens").
				Description("0 means unbounded").
				Value(&v.maxTokens).
				Validate(validateInt),
			huh.NewInput().
				Title("Temperature").
				Value(&v.temperature).
				Validate(validateFloat),
			huh.NewInput().
				Title("Max Context").
				Description("Prior turns sent with each question").
				Value(&v.maxContext).
				Validate(validateInt),
			huh.NewInput().
				Title("User Agent").
				Value(&v.userAgent),
		).Title("Generation"),
	).WithWidth(width)
}

func validateInt(s string) error {
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return fmt.Errorf("must be a whole number")
	}
	return nil
}

func validateFloat(s string) error {
	if _, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err != nil {
		return fmt.Errorf("must be a number")
	}
	return nil
}
