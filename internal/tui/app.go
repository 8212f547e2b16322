package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Afrawles/teampulse/internal/provider"
	"github.com/Afrawles/teampulse/internal/report"
)

// RunOpts holds all parameters for launching the dashboard.
type RunOpts struct {
	Client *provider.Client
	Names  report.NameContext
	Query  report.Query
	Logger *slog.Logger
}

// App is the dashboard model: one view per report in the catalog, a shared
// table widget rendering the active view, and a spinner while a fetch cycle
// is in flight. All state transitions run inside Update; fetches are
// launched as commands and come back as outcomeMsg, so the stale-result
// guard in report.View is the only synchronization needed.
type App struct {
	opts  RunOpts
	views map[string]*report.View

	order  []string
	active int

	table     table.Model
	spinner   spinner.Model
	activeCol int

	width  int
	height int
}

func NewApp(opts RunOpts) *App {
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot
	sp.Style = warnStyle

	views := make(map[string]*report.View)
	for _, name := range report.Names() {
		def, _ := report.Lookup(name)
		views[name] = report.NewView(def, opts.Logger)
	}

	t := table.New(table.WithFocused(true), table.WithHeight(12))

	return &App{
		opts:    opts,
		views:   views,
		order:   report.Names(),
		table:   t,
		spinner: sp,
	}
}

func Run(opts RunOpts) error {
	_, err := tea.NewProgram(NewApp(opts), tea.WithAltScreen()).Run()
	return err
}

func (a *App) activeView() *report.View {
	return a.views[a.order[a.active]]
}

func (a *App) Init() tea.Cmd {
	return tea.Batch(a.spinner.Tick, a.fetchActive())
}

// fetchActive starts a fetch cycle for the active report and returns the
// command that will deliver its outcome. The sequence token is captured
// before the goroutine starts, never read from the view afterwards.
func (a *App) fetchActive() tea.Cmd {
	v := a.activeView()
	seq, ok := v.SetQuery(a.opts.Query)
	if !ok {
		return nil
	}

	name := v.Def.Name
	calls := provider.Calls(v.Def, a.opts.Client, a.opts.Query, a.opts.Names)
	return func() tea.Msg {
		out := report.Aggregate(context.Background(), calls)
		return outcomeMsg{name: name, seq: seq, out: out}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.table.SetHeight(max(4, a.height-8))
		a.rebuildTable()
		return a, nil

	case outcomeMsg:
		v := a.views[msg.name]
		if v.Apply(msg.seq, msg.out) && msg.name == a.order[a.active] {
			a.rebuildTable()
		}
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "tab":
		a.active = (a.active + 1) % len(a.order)
		a.activeCol = 0
		v := a.activeView()
		var cmd tea.Cmd
		if v.Phase() == report.PhaseIdle {
			cmd = a.fetchActive()
		}
		a.rebuildTable()
		return a, cmd

	case "left", "h":
		if a.activeCol > 0 {
			a.activeCol--
			a.rebuildTable()
		}
		return a, nil

	case "right", "l":
		if a.activeCol < len(a.activeView().Def.Columns)-1 {
			a.activeCol++
			a.rebuildTable()
		}
		return a, nil

	case "enter", "s":
		v := a.activeView()
		col := v.Def.Columns[a.activeCol]
		if col.Sortable {
			v.ToggleSort(col.Key)
			a.rebuildTable()
		}
		return a, nil

	case "r":
		// Re-running with the same parameters supersedes any in-flight
		// fetch; its outcome arrives with a stale token and is dropped.
		cmd := a.fetchActive()
		a.rebuildTable()
		return a, cmd
	}

	var cmd tea.Cmd
	a.table, cmd = a.table.Update(msg)
	return a, cmd
}

// rebuildTable re-derives the table widget's columns and rows from the
// active view. The widget itself stays passive: sorting always goes through
// the view's toggle rule.
func (a *App) rebuildTable() {
	v := a.activeView()
	rows := v.Rows()

	cols := make([]table.Column, len(v.Def.Columns))
	for i, col := range v.Def.Columns {
		cols[i] = table.Column{Title: a.columnTitle(v, i), Width: columnWidth(col, rows)}
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		cells := make([]string, len(v.Def.Columns))
		for j, col := range v.Def.Columns {
			cells[j] = report.FormatValue(row[col.Key])
		}
		tableRows[i] = cells
	}

	a.table.SetColumns(cols)
	a.table.SetRows(tableRows)
}

func (a *App) columnTitle(v *report.View, i int) string {
	col := v.Def.Columns[i]
	title := col.Header

	if sort := v.Sort(); sort.Key == col.Key {
		if sort.Direction == report.Descending {
			title += " ▼"
		} else {
			title += " ▲"
		}
	}
	if i == a.activeCol {
		title = "[" + title + "]"
	}
	return title
}

func columnWidth(col report.Column, rows []report.Row) int {
	// +4 leaves room for the sort arrow and selection brackets.
	width := len(col.Header) + 4
	for _, row := range rows {
		if w := len(report.FormatValue(row[col.Key])); w > width {
			width = w
		}
	}
	if width > 30 {
		width = 30
	}
	return width
}

func (a *App) View() string {
	v := a.activeView()

	var b strings.Builder
	b.WriteString(titleStyle.Render("teampulse"))
	b.WriteString("  ")
	for i, name := range a.order {
		style := tabStyle
		if i == a.active {
			style = activeTabStyle
		}
		b.WriteString(style.Render(name))
	}
	b.WriteString("\n\n")

	switch v.Phase() {
	case report.PhaseLoading:
		b.WriteString(fmt.Sprintf("%s %s\n", a.spinner.View(), statusStyle.Render(v.StatusLine())))
	case report.PhaseFailed:
		b.WriteString(errorStyle.Render(v.StatusLine()) + "\n")
	case report.PhaseIdle:
		b.WriteString(statusStyle.Render(v.StatusLine()) + "\n")
	default:
		b.WriteString(tableBorderStyle.Render(a.table.View()) + "\n")
		line := v.StatusLine()
		if len(v.Failed()) > 0 {
			b.WriteString(warnStyle.Render(line) + "\n")
		} else {
			b.WriteString(statusStyle.Render(line) + "\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("tab: switch report • ←/→: column • enter: sort • r: re-run • q: quit"))

	return lipgloss.NewStyle().Padding(1, 2).Render(b.String())
}
