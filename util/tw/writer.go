package tw

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

// Writer represents table writer
type Writer struct {
	table.Writer
}

// New returns new configured table writer
func New() Writer {
	tw := table.NewWriter()
	tw.SetOutputMirror(os.Stderr)
	tw.SetStyle(table.StyleLight)
	tw.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Source", WidthMax: 70},
		{Name: "Format", WidthMax: 10},
		{Name: "Result", WidthMax: 30},
		{Name: "Changes", WidthMax: 10},
		{Name: "Backup", WidthMax: 70},
		{Name: "Note", WidthMax: 40},
	})

	return Writer{tw}
}

// Render renders table and resets it
func (w Writer) Render() {
	w.Writer.Render()
	w.ResetHeaders()
	w.ResetRows()
	w.ResetFooters()
}
