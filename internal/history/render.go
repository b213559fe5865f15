package history

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("220")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Tail renders the last n rows as a table.
func Tail(rows []Row, n int, cols Columns) string {
	if n >= 0 && n < len(rows) {
		rows = rows[len(rows)-n:]
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(borderStyle).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(cols.Date, cols.GoldSource, cols.Rate, cols.GoldTarget)
	for _, r := range rows {
		t.Row(r.fields()...)
	}
	return t.String()
}
