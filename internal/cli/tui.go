package cli

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/flowlane/pkg/process"
)

var listDimStyle = lipgloss.NewStyle().Foreground(colorDim)

// TableListModel is the bubbletea model for picking one process table.
type TableListModel struct {
	Tables   []process.TableInfo
	Cursor   int
	Selected *process.TableInfo
	Height   int
	Offset   int
}

// NewTableListModel creates a picker over tables.
func NewTableListModel(tables []process.TableInfo) TableListModel {
	return TableListModel{Tables: tables, Height: 15}
}

func (m TableListModel) Init() tea.Cmd { return nil }

func (m TableListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Tables)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			if len(m.Tables) == 0 {
				return m, tea.Quit
			}
			info := m.Tables[m.Cursor]
			m.Selected = &info
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-6, 5)
	}
	return m, nil
}

func (m TableListModel) View() string {
	var b strings.Builder
	b.WriteString(StyleTitle.Render("Select Process Table"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Tables))
	var rows [][]string
	for i := m.Offset; i < end; i++ {
		t := m.Tables[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		name := t.Name
		if name == "" {
			name = "—"
		}
		rows = append(rows, []string{cursor, t.TableID, name, strconv.Itoa(t.LaneCount), strconv.Itoa(t.NodeCount)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	tbl := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Table", "Name", "Lanes", "Nodes").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == -1:
				return headerStyle
			case m.Offset+row == m.Cursor:
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			case col >= 3:
				return lipgloss.NewStyle().Foreground(colorDim)
			default:
				return lipgloss.NewStyle()
			}
		})

	b.WriteString(tbl.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Tables))))
	return b.String()
}
