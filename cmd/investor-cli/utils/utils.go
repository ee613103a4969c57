package utils

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
)

func NewTable() table.Writer {
	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.SetOutputMirror(os.Stdout)
	return t
}

// Mark renders a boolean cell as a check mark instead of true/false.
func Mark(value bool) string {
	if value {
		return "✓"
	}
	return ""
}
