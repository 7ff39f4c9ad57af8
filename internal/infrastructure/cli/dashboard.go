package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/flowmetrics/pkg/application"
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Interactive TUI with per-item metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		if os.Getenv("FLOWMETRICS_SKIP_DASHBOARD_RUN") == "true" {
			return nil
		}
		p := tea.NewProgram(initialDashboard(cmd.Context()))
		if _, err := p.Run(); err != nil {
			return fmt.Errorf("dashboard run failed: %w", err)
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(dashboardCmd)
}

// Styles
var baseStyle = lipgloss.NewStyle().
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("240"))

var headerStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("#FAFAFA")).
	Background(lipgloss.Color("#7D56F4")).
	PaddingLeft(1).
	PaddingRight(1)

var unavailableStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))

type dashboardModel struct {
	table table.Model
	items int
	err   error
}

func initialDashboard(ctx context.Context) dashboardModel {
	ws, err := loadWorkspace()
	if err != nil {
		return dashboardModel{err: err}
	}

	items, err := ws.Repo.ListItems(ctx)
	if err != nil {
		return dashboardModel{err: err}
	}

	columns := []table.Column{
		{Title: "Key", Width: 16},
		{Title: "Title", Width: 36},
		{Title: "TTD", Width: 6},
		{Title: "TTM", Width: 6},
		{Title: "Tail", Width: 6},
		{Title: "DevLT", Width: 6},
		{Title: "Pause", Width: 6},
	}

	rows := []table.Row{}
	for _, item := range items {
		b := ws.Reports.ItemBreakdown(item, application.GroupByTeam, time.Now())
		rows = append(rows, table.Row{
			item.Key.String(),
			item.Title,
			b.TTD.String(),
			b.TTM.String(),
			b.Tail.String(),
			b.DevLT.String(),
			fmt.Sprintf("%dd", b.PauseDays),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(14),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240"))
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("229"))
	t.SetStyles(s)

	return dashboardModel{table: t, items: len(items)}
}

func (m dashboardModel) Init() tea.Cmd { return nil }

func (m dashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m dashboardModel) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error loading dashboard: %v\nPress q to quit.", m.err)
	}

	header := headerStyle.Render(fmt.Sprintf("flowmetrics: %d work items", m.items))
	hint := unavailableStyle.Render("n/a = metric not computable yet")

	return baseStyle.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header,
			m.table.View(),
			hint,
			"\n[q] Quit  [Up/Down] Navigate",
		),
	) + "\n"
}
