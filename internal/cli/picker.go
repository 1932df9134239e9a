package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/storeshots/pkg/catalog"
	"github.com/matzehuels/storeshots/pkg/project"
)

// List styles
var (
	listNormalStyle = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// ProjectListModel - Interactive project selection
// =============================================================================

// ProjectListModel is the bubbletea model for interactive project selection.
type ProjectListModel struct {
	Projects []project.Project
	Current  string // id of the selected project when the picker opened
	Cursor   int
	Selected *project.Project
	Height   int
	Offset   int
}

// NewProjectListModel creates a picker with the cursor on the current
// project.
func NewProjectListModel(ps []project.Project, current string) ProjectListModel {
	m := ProjectListModel{Projects: ps, Current: current, Height: 15}
	for i, p := range ps {
		if p.ID == current {
			m.Cursor = i
		}
	}
	if m.Cursor >= m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
	return m
}

func (m ProjectListModel) Init() tea.Cmd {
	return nil
}

func (m ProjectListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Projects)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Projects) == 0 {
				return m, tea.Quit
			}
			p := m.Projects[m.Cursor]
			m.Selected = &p
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m ProjectListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Project"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Projects))

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Projects[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		mark := ""
		if p.ID == m.Current {
			mark = iconSelected
		}
		layout := p.LayoutID
		if l, ok := catalog.LookupLayout(p.LayoutID); ok {
			layout = l.Name
		}
		rows = append(rows, []string{cursor, mark, truncate(p.Title, 32), layout, formatRelativeTime(p.UpdatedAt)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "", "Title", "Layout", "Updated").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleTableHeader
			}
			isCurrent := m.Offset+row == m.Cursor
			switch {
			case isCurrent && col != 4:
				return listNormalStyle.Foreground(colorGreen).Bold(true)
			case isCurrent:
				return lipgloss.NewStyle().Foreground(colorGray).Bold(true)
			case col == 4:
				return listDimStyle
			}
			return listNormalStyle
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Projects))))

	return b.String()
}
