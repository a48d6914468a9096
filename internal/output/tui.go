package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"tradediff/internal/domain"
	"tradediff/internal/reconcile"
)

// StatsMsg carries a Stats snapshot into the dashboard program. Send it via
// (*tea.Program).Send after every discrepancy NDiffer produces.
type StatsMsg reconcile.Stats

// DiscMsg reports one freshly produced discrepancy, appended to the
// dashboard's scrolling log.
type DiscMsg domain.DiscrepancyRecord

// QuitMsg tells the dashboard the run has finished.
type QuitMsg struct{}

var (
	labelStyle = lipgloss.NewStyle().Bold(true).Width(16)
	boxStyle   = lipgloss.NewStyle().Padding(1, 2).Border(lipgloss.RoundedBorder())
	logStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

const logBacklog = 200

// Dashboard is a live terminal view of run progress: running counters plus a
// scrolling log of recent discrepancies in a bubbles/viewport, the same
// component the retrieval pack's terminal client uses for its own scrolling
// trade feed. Optional: enabled with --tui. It is driven entirely by
// messages sent through its tea.Program; it has no knowledge of NDiffer or
// the sources themselves.
type Dashboard struct {
	stats reconcile.Stats
	lines []string
	vp    viewport.Model
	ready bool
}

// NewDashboard returns an empty dashboard model.
func NewDashboard() Dashboard {
	return Dashboard{}
}

func (d Dashboard) Init() tea.Cmd { return nil }

func (d Dashboard) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 6
		if !d.ready {
			d.vp = viewport.New(m.Width-4, m.Height-headerHeight)
			d.ready = true
		} else {
			d.vp.Width = m.Width - 4
			d.vp.Height = m.Height - headerHeight
		}
		d.vp.SetContent(strings.Join(d.lines, "\n"))
		return d, nil
	case StatsMsg:
		d.stats = reconcile.Stats(m)
		return d, nil
	case DiscMsg:
		disc := domain.DiscrepancyRecord(m)
		line := fmt.Sprintf("%s  %s", disc.TradeID, strings.Join(disc.Tags, ","))
		d.lines = append(d.lines, line)
		if len(d.lines) > logBacklog {
			d.lines = d.lines[len(d.lines)-logBacklog:]
		}
		if d.ready {
			d.vp.SetContent(strings.Join(d.lines, "\n"))
			d.vp.GotoBottom()
		}
		return d, nil
	case QuitMsg:
		return d, tea.Quit
	case tea.KeyMsg:
		if m.String() == "ctrl+c" || m.String() == "q" {
			return d, tea.Quit
		}
	}

	var cmd tea.Cmd
	d.vp, cmd = d.vp.Update(msg)
	return d, cmd
}

func (d Dashboard) View() string {
	header := fmt.Sprintf(
		"%s %s\n%s %s\n%s %s\n",
		labelStyle.Render("Reconciled"), FormatInt(d.stats.Reconciled),
		labelStyle.Render("Discrepancies"), FormatInt(d.stats.Discrepancies),
		labelStyle.Render("Evictions"), FormatInt(d.stats.Evictions),
	)
	if !d.ready {
		return boxStyle.Render("diff_trades\n\n" + header)
	}
	return boxStyle.Render("diff_trades\n\n" + header + "\n" + logStyle.Render(d.vp.View()))
}
