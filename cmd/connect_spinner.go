package cmd

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/bnema/nebula-graph-cli/internal/application"
	"github.com/bnema/nebula-graph-cli/internal/domain"
)

var (
	warmReadyStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warmPartialStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

type poolWarmedMsg struct {
	stats application.PoolStats
	err   error
}

// warmPoolFunc builds the pool and reports its state once the eager
// connections are open.
type warmPoolFunc func(context.Context) (application.PoolStats, error)

type connectSpinnerModel struct {
	spinner   spinner.Model
	profile   string
	addresses int
	minSize   int
	warm      tea.Cmd

	stats application.PoolStats
	err   error
	done  bool
}

func newConnectSpinnerModel(profile domain.Profile, warm tea.Cmd) connectSpinnerModel {
	s := spinner.New(
		spinner.WithSpinner(spinner.Dot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("69"))),
	)

	return connectSpinnerModel{
		spinner:   s,
		profile:   profile.Name,
		addresses: len(profile.Pool.Addresses),
		minSize:   profile.Pool.MinSize,
		warm:      warm,
	}
}

func (m connectSpinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.warm)
}

func (m connectSpinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case poolWarmedMsg:
		m.done = true
		m.stats = msg.stats
		m.err = msg.err
		return m, tea.Quit
	default:
		return m, nil
	}
}

func (m connectSpinnerModel) View() string {
	if !m.done {
		return fmt.Sprintf("%s Opening %d connection(s) for profile %s across %s...",
			m.spinner.View(), m.minSize, m.profile, plural(m.addresses, "address", "addresses"))
	}
	if m.err != nil {
		return ""
	}

	summary := fmt.Sprintf("Pool %s ready: %d idle, %d/%d open", m.profile, m.stats.Idle, m.stats.Total, m.stats.Max)
	if m.stats.Idle < m.minSize {
		return warmPartialStyle.Render(fmt.Sprintf("%s (wanted %d, some addresses unreachable)", summary, m.minSize)) + "\n"
	}
	return warmReadyStyle.Render(summary) + "\n"
}

func plural(n int, one, many string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, one)
	}
	return fmt.Sprintf("%d %s", n, many)
}

func runConnectSpinner(ctx context.Context, output io.Writer, profile domain.Profile, warm warmPoolFunc) error {
	warmCmd := func() tea.Msg {
		stats, err := warm(ctx)
		return poolWarmedMsg{stats: stats, err: err}
	}

	p := tea.NewProgram(
		newConnectSpinnerModel(profile, warmCmd),
		tea.WithInput(nil),
		tea.WithOutput(output),
		tea.WithContext(ctx),
	)

	finalModel, err := p.Run()
	if err != nil {
		return err
	}

	result, ok := finalModel.(connectSpinnerModel)
	if !ok {
		return fmt.Errorf("unexpected final spinner model type %T", finalModel)
	}

	return result.err
}
