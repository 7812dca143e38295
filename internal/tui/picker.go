// Package tui provides the interactive provider picker used by
// `cswitch switch` when no provider argument is given.
package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"cswitch/internal/providers"
)

// PickResult carries the user's choice out of the picker.
type PickResult struct {
	Target    providers.Target
	APIKey    string // non-empty when the user typed a new key
	Cancelled bool
}

// stage of the picker flow.
const (
	stageChoosing = iota
	stageEnterKey
	stageDone
)

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	itemStyle     = lipgloss.NewStyle().PaddingLeft(2)
	selectedStyle = lipgloss.NewStyle().PaddingLeft(0).Foreground(lipgloss.Color("42")).Bold(true)
	dimStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// providerItem adapts a Target to the bubbles list component.
type providerItem struct {
	target providers.Target
	hasKey bool
	active bool
}

func (i providerItem) FilterValue() string { return i.target.Name }

type itemDelegate struct{}

func (d itemDelegate) Height() int                             { return 1 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	item, ok := listItem.(providerItem)
	if !ok {
		return
	}

	label := item.target.Name
	if item.target.Custom {
		label += dimStyle.Render(" (custom)")
	}
	if item.active {
		label += dimStyle.Render(" · current")
	}
	if !item.hasKey && !item.target.Primary() {
		label += dimStyle.Render(" · no key")
	}

	if index == m.Index() {
		fmt.Fprint(w, selectedStyle.Render("> "+label))
		return
	}
	fmt.Fprint(w, itemStyle.Render(label))
}

// model drives the two-stage flow: pick a provider, then enter an API key
// when none is stored for it.
type model struct {
	stage    int
	list     list.Model
	keyInput textinput.Model
	chosen   providers.Target
	result   PickResult
	errMsg   string
}

// keyChecker reports whether a key is already stored for a target.
type keyChecker func(providers.Target) bool

func newModel(targets []providers.Target, activeID string, hasKey keyChecker) model {
	items := make([]list.Item, len(targets))
	for i, t := range targets {
		items[i] = providerItem{
			target: t,
			hasKey: hasKey(t),
			active: t.ID == activeID,
		}
	}

	l := list.New(items, itemDelegate{}, 40, len(items)+6)
	l.Title = "Switch provider"
	l.Styles.Title = titleStyle
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(true)

	ti := textinput.New()
	ti.Placeholder = "sk-..."
	ti.EchoMode = textinput.EchoPassword
	ti.CharLimit = 256

	return model{stage: stageChoosing, list: l, keyInput: ti}
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetWidth(msg.Width)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if m.stage == stageEnterKey && msg.String() != "ctrl+c" {
				// Back out to the provider list instead of quitting.
				m.stage = stageChoosing
				m.errMsg = ""
				return m, nil
			}
			m.result.Cancelled = true
			m.stage = stageDone
			return m, tea.Quit

		case "enter":
			return m.confirm()
		}
	}

	var cmd tea.Cmd
	if m.stage == stageEnterKey {
		m.keyInput, cmd = m.keyInput.Update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m model) confirm() (tea.Model, tea.Cmd) {
	switch m.stage {
	case stageChoosing:
		item, ok := m.list.SelectedItem().(providerItem)
		if !ok {
			return m, nil
		}
		m.chosen = item.target
		if item.hasKey || item.target.Primary() {
			m.result = PickResult{Target: item.target}
			m.stage = stageDone
			return m, tea.Quit
		}
		m.stage = stageEnterKey
		m.keyInput.Focus()
		return m, textinput.Blink

	case stageEnterKey:
		key := m.keyInput.Value()
		if key == "" {
			m.errMsg = "API key cannot be empty"
			return m, nil
		}
		m.result = PickResult{Target: m.chosen, APIKey: key}
		m.stage = stageDone
		return m, tea.Quit
	}
	return m, nil
}

func (m model) View() string {
	switch m.stage {
	case stageEnterKey:
		view := titleStyle.Render(fmt.Sprintf("API key for %s", m.chosen.Name)) + "\n\n"
		view += m.keyInput.View() + "\n"
		if m.errMsg != "" {
			view += errorStyle.Render(m.errMsg) + "\n"
		}
		view += dimStyle.Render("enter confirm · esc back")
		return view
	case stageDone:
		return ""
	default:
		return m.list.View()
	}
}

// RunPicker shows the provider list (built-ins first, then custom
// providers), prompting for an API key when the chosen provider has none
// stored.
func RunPicker(targets []providers.Target, activeID string, hasKey keyChecker) (*PickResult, error) {
	if len(targets) == 0 {
		return nil, fmt.Errorf("no providers available")
	}

	p := tea.NewProgram(newModel(targets, activeID, hasKey))
	final, err := p.Run()
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}

	m, ok := final.(model)
	if !ok {
		return nil, fmt.Errorf("picker returned unexpected model")
	}
	res := m.result
	return &res, nil
}
