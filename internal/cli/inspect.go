package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/example/stackplan/pkg/pipeline"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// orderTable renders the deployment order as a bordered table. The
// dependency column is omitted when the graph was not rebuilt (cache hit).
func orderTable(result *pipeline.Result) string {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return StyleDim
			}
			return StyleValue
		})

	if result.Graph != nil {
		t.Headers("#", "Stack", "Depends on")
		for i, name := range result.Order {
			deps := result.Graph.Deps(name)
			depStr := "—"
			if len(deps) > 0 {
				depStr = strings.Join(deps, ", ")
			}
			t.Row(fmt.Sprintf("%d", i+1), name, depStr)
		}
	} else {
		t.Headers("#", "Stack")
		for i, name := range result.Order {
			t.Row(fmt.Sprintf("%d", i+1), name)
		}
	}

	return t.Render() + "\n"
}

// orderModel is the bubbletea model for the interactive order inspector: a
// scrollable list of stacks in deployment order with a dependency detail
// pane for the selected stack.
type orderModel struct {
	result *pipeline.Result
	cursor int
	offset int
	height int
}

func newOrderModel(result *pipeline.Result) orderModel {
	return orderModel{result: result, height: 15}
}

func (m orderModel) Init() tea.Cmd {
	return nil
}

func (m orderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.result.Order)-1 {
				m.cursor++
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 8
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m orderModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Deployment Order"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.result.Order) {
		end = len(m.result.Order)
	}

	for i := m.offset; i < end; i++ {
		name := m.result.Order[i]

		cursor := "  "
		if i == m.cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%3d. %s", cursor, i+1, name)
		if i == m.cursor {
			b.WriteString(listSelectedStyle.Render(line))
		} else {
			b.WriteString(StyleValue.Render(line))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.detailView())
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.result.Order))))

	return b.String()
}

// detailView shows the selected stack's direct dependencies and dependents.
func (m orderModel) detailView() string {
	if m.result.Graph == nil || len(m.result.Order) == 0 {
		return ""
	}
	name := m.result.Order[m.cursor]

	var b strings.Builder
	deps := m.result.Graph.Deps(name)
	if len(deps) > 0 {
		b.WriteString(listDimStyle.Render("  depends on: "))
		b.WriteString(StyleValue.Render(strings.Join(deps, ", ")))
		b.WriteString("\n")
	}
	dependents := m.result.Graph.Dependents(name)
	if len(dependents) > 0 {
		b.WriteString(listDimStyle.Render("  required by: "))
		b.WriteString(StyleValue.Render(strings.Join(dependents, ", ")))
		b.WriteString("\n")
	}
	return b.String()
}
