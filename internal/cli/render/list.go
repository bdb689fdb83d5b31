package render

import (
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/samber/lo"

	"github.com/bytematch-org/bytematch-cli/internal/domain/models"
	"github.com/bytematch-org/bytematch-cli/internal/usecase"
)

var (
	nameStyle      = color.New(color.FgGreen, color.Bold)
	addressStyle   = color.New(color.FgWhite)
	timestampStyle = color.New(color.Faint)
	unmappedStyle  = color.New(color.FgYellow)
)

// ListRenderer renders the contract mapping as a table
type ListRenderer struct {
	out io.Writer
}

// NewListRenderer creates a new list renderer
func NewListRenderer(out io.Writer) *ListRenderer {
	return &ListRenderer{out: out}
}

// RenderMapping renders the mapping entries grouped into one table, with a
// per-repository summary underneath.
func (r *ListRenderer) RenderMapping(result *usecase.ListContractsResult) error {
	if len(result.Entries) == 0 {
		fmt.Fprintln(r.out, "No mapped contracts found")
		return nil
	}

	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.Style().Options.SeparateRows = false
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	t.AppendHeader(table.Row{"CONTRACT", "REPOSITORY", "COMMIT", "ADDRESS"})

	rows := lo.Map(result.Entries, func(entry *models.MappingEntry, _ int) table.Row {
		address := unmappedStyle.Sprint("(no address)")
		if entry.Address != "" {
			address = addressStyle.Sprint(entry.Address)
		}
		return table.Row{
			nameStyle.Sprint(entry.Name),
			entry.Repository,
			timestampStyle.Sprint(shortCommit(entry.Commit)),
			address,
		}
	})
	t.AppendRows(rows)
	fmt.Fprintln(r.out, t.Render())

	fmt.Fprintf(r.out, "\nTotal contracts: %d (%d with addresses)\n", result.Summary.Total, result.Summary.WithAddress)

	repos := lo.Keys(result.Summary.ByRepository)
	sort.Strings(repos)
	for _, repo := range repos {
		fmt.Fprintf(r.out, "  %s: %d\n", repo, result.Summary.ByRepository[repo])
	}
	return nil
}
