package interactive

import (
	"context"
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/manifoldco/promptui"
	"github.com/sahilm/fuzzy"

	"github.com/bytematch-org/bytematch-cli/internal/config"
	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

// Picker handles interactive selection over mapping entries
type Picker struct {
	config *config.RuntimeConfig
}

// NewPicker creates a new entry picker
func NewPicker(cfg *config.RuntimeConfig) *Picker {
	return &Picker{config: cfg}
}

// PickEntry disambiguates to a single mapping entry
func (p *Picker) PickEntry(ctx context.Context, entries []*models.MappingEntry, prompt string) (*models.MappingEntry, error) {
	if p.config.NonInteractive {
		return nil, fmt.Errorf("interactive selection not available in non-interactive mode")
	}

	if len(entries) == 0 {
		return nil, fmt.Errorf("no entries provided for selection")
	}

	// If only one match, return it directly
	if len(entries) == 1 {
		return entries[0], nil
	}

	options := formatEntryOptions(entries)

	templates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "▸ {{ . | cyan }}",
		Inactive: "  {{ . | faint }}",
		Selected: "✓ {{ . | green }}",
		Help:     color.New(color.FgYellow).Sprint("Use arrow keys to navigate, Enter to select"),
	}

	promptSelect := promptui.Select{
		Label:             prompt,
		Items:             options,
		Templates:         templates,
		Size:              10,
		StartInSearchMode: true,
		Searcher:          createFuzzySearchFunc(options),
	}

	index, _, err := promptSelect.Run()
	if err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	return entries[index], nil
}

// formatEntryOptions creates display strings for entry selection
func formatEntryOptions(entries []*models.MappingEntry) []string {
	options := make([]string, len(entries))
	for i, entry := range entries {
		name := color.New(color.FgWhite, color.Bold).Sprint(entry.Name)
		location := color.New(color.FgBlue).Sprintf("%s@%s", entry.Repository, shortCommit(entry.Commit))

		if entry.Address != "" {
			address := color.New(color.FgYellow).Sprint(strings.ToLower(entry.Address))
			options[i] = fmt.Sprintf("%s %s (%s)", name, address, location)
		} else {
			options[i] = fmt.Sprintf("%s (%s)", name, location)
		}
	}
	return options
}

func shortCommit(commit string) string {
	if len(commit) > 8 {
		return commit[:8]
	}
	return commit
}

// createFuzzySearchFunc creates a fuzzy search function for promptui
func createFuzzySearchFunc(items []string) func(input string, index int) bool {
	return func(input string, index int) bool {
		// Empty search shows all items
		if input == "" {
			return true
		}

		// Convert to lowercase for case-insensitive search
		input = strings.ToLower(input)
		item := strings.ToLower(items[index])

		// First try simple substring match
		if strings.Contains(item, input) {
			return true
		}

		// Then try fuzzy match
		pattern := fuzzy.Find(input, []string{item})
		return len(pattern) > 0
	}
}

// Ensure the adapter implements the interface
var _ usecase.EntryPicker = (*Picker)(nil)
