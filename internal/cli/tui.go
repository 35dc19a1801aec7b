package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/erdraw/erdraw/pkg/er"
	"github.com/erdraw/erdraw/pkg/schema"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command: an interactive browser over the
// entities and relationships of a model.
func (c *CLI) inspectCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <ddl-or-model-file>",
		Short: "Browse a model's entities and relationships interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := readSource(args[0])
			if err != nil {
				return err
			}
			model, err := loadModel(args[0], source)
			if err != nil {
				return err
			}
			if model.NodeCount() == 0 {
				return fmt.Errorf("model in %s is empty", displayName(args[0]))
			}

			_, err = tea.NewProgram(newInspectModel(model), tea.WithAltScreen()).Run()
			return err
		},
	}
}

// loadModel derives an er.Model from either model JSON or SQL DDL.
func loadModel(path, source string) (er.Model, error) {
	if isModelInput(path, source) {
		return er.UnmarshalModel([]byte(source))
	}
	tables, _ := schema.Parse(source)
	if len(tables) == 0 {
		return er.Model{}, fmt.Errorf("no CREATE TABLE statements found in %s", displayName(path))
	}
	return schema.BuildModel(tables), nil
}

// =============================================================================
// InspectModel - Interactive entity/relationship browser
// =============================================================================

// Node kind labels shown in the list column.
const (
	inspectKindEntity   = "entity"
	inspectKindRelation = "relationship"
)

// inspectEntry is one selectable row: an entity or a relationship with its
// pre-rendered detail rows.
type inspectEntry struct {
	kind    string
	name    string
	headers []string
	rows    [][]string
}

// InspectModel is the bubbletea model for browsing an ER model.
type InspectModel struct {
	Entries []inspectEntry
	Cursor  int
	Height  int
	Offset  int
}

// newInspectModel flattens the model into browsable entries, entities first.
func newInspectModel(m er.Model) InspectModel {
	entries := make([]inspectEntry, 0, m.NodeCount())

	for _, e := range m.Entities {
		rows := make([][]string, 0, len(e.Attributes))
		for _, a := range e.Attributes {
			key := ""
			if a.Primary {
				key = "PK"
			}
			rows = append(rows, []string{a.Name, key})
		}
		entries = append(entries, inspectEntry{
			kind:    inspectKindEntity,
			name:    e.Name,
			headers: []string{"Attribute", "Key"},
			rows:    rows,
		})
	}

	entityNames := make(map[string]string, len(m.Entities))
	for _, e := range m.Entities {
		entityNames[e.ID] = e.Name
	}
	for _, r := range m.Relationships {
		rows := make([][]string, 0, len(r.Endpoints)+len(r.Attributes))
		for _, ep := range r.Endpoints {
			name := entityNames[ep.EntityID]
			if name == "" {
				name = ep.EntityID
			}
			rows = append(rows, []string{"entity", name, ep.Label()})
		}
		for _, a := range r.Attributes {
			rows = append(rows, []string{"attribute", a.Name, ""})
		}
		entries = append(entries, inspectEntry{
			kind:    inspectKindRelation,
			name:    r.Name,
			headers: []string{"", "Name", "Card"},
			rows:    rows,
		})
	}

	return InspectModel{Entries: entries, Height: 15}
}

func (m InspectModel) Init() tea.Cmd {
	return nil
}

func (m InspectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Entries)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m InspectModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Inspect Model"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Entries) {
		end = len(m.Entries)
	}

	var list strings.Builder
	for i := m.Offset; i < end; i++ {
		entry := m.Entries[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		line := fmt.Sprintf("%s%-24s %s", cursor, entry.name, listDimStyle.Render(entry.kind))
		if i == m.Cursor {
			list.WriteString(listSelectedStyle.Render(line))
		} else {
			list.WriteString(listNormalStyle.Render(line))
		}
		list.WriteString("\n")
	}

	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top,
		list.String(),
		"   ",
		m.detailView()))

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Entries))))

	return b.String()
}

// detailView renders the attribute/endpoint table for the selected entry.
func (m InspectModel) detailView() string {
	entry := m.Entries[m.Cursor]
	if len(entry.rows) == 0 {
		return listDimStyle.Render("(no attributes)")
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(entry.headers...).
		Rows(entry.rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if col == 0 {
				return listDimStyle
			}
			return listNormalStyle
		})

	return t.Render()
}
