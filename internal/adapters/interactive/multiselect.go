package interactive

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fatih/color"

	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
)

// multiSelectModel is the bubbletea model for picking a subset of mapping
// entries
type multiSelectModel struct {
	entries  []*models.MappingEntry
	cursor   int
	selected map[int]bool
	title    string
	done     bool
}

func newMultiSelectModel(entries []*models.MappingEntry, title string) multiSelectModel {
	return multiSelectModel{
		entries:  entries,
		cursor:   0,
		selected: make(map[int]bool),
		title:    title,
		done:     false,
	}
}

// Init is the initial command for bubbletea
func (m multiSelectModel) Init() tea.Cmd {
	return nil
}

// Update handles messages and updates the model
func (m multiSelectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			// Quit without marking done so the caller sees a cancel
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}
		case " ":
			// Toggle selection
			m.selected[m.cursor] = !m.selected[m.cursor]
		case "a":
			// Toggle the whole set
			all := len(m.selectedIndices()) != len(m.entries)
			for i := range m.entries {
				m.selected[i] = all
			}
		case "enter":
			if len(m.selectedIndices()) > 0 {
				m.done = true
				return m, tea.Quit
			}
		}
	}
	return m, nil
}

// View renders the UI
func (m multiSelectModel) View() string {
	if m.done {
		return ""
	}

	var b strings.Builder
	b.WriteString(color.New(color.FgCyan, color.Bold).Sprintf("%s\n\n", m.title))

	for i, entry := range m.entries {
		cursor := " "
		if m.cursor == i {
			cursor = color.New(color.FgCyan).Sprint("▸")
		}

		var checkbox string
		if m.selected[i] {
			checkbox = color.New(color.FgGreen).Sprint("✓")
		} else {
			checkbox = color.New(color.FgWhite).Sprint("○")
		}

		name := color.New(color.FgWhite, color.Bold).Sprint(entry.Name)
		address := color.New(color.FgYellow).Sprint(strings.ToLower(entry.Address))

		b.WriteString(fmt.Sprintf("%s %s %s %s\n", cursor, checkbox, name, address))
	}

	b.WriteString("\n")
	b.WriteString(color.New(color.FgYellow).Sprint("↑/↓: move  Space: toggle  a: all  Enter: confirm  q: quit\n"))

	return b.String()
}

func (m multiSelectModel) selectedIndices() []int {
	var indices []int
	for i := range m.entries {
		if m.selected[i] {
			indices = append(indices, i)
		}
	}
	return indices
}

// SelectEntries shows a multi-select over mapping entries and returns the
// chosen subset in display order
func (p *Picker) SelectEntries(ctx context.Context, entries []*models.MappingEntry, prompt string) ([]*models.MappingEntry, error) {
	if p.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries to select")
	}

	model := newMultiSelectModel(entries, prompt)
	prog := tea.NewProgram(model)

	finalModel, err := prog.Run()
	if err != nil {
		return nil, fmt.Errorf("multi-select failed: %w", err)
	}

	m := finalModel.(multiSelectModel)
	if !m.done {
		return nil, fmt.Errorf("selection cancelled")
	}

	indices := m.selectedIndices()
	if len(indices) == 0 {
		return nil, fmt.Errorf("no entries selected")
	}

	picked := make([]*models.MappingEntry, len(indices))
	for i, idx := range indices {
		picked[i] = entries[idx]
	}
	return picked, nil
}
