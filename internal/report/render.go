package report

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/balkashynov/tally/internal/parser"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#A78BFA"))
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#E6EAF2")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#B1B8C7")).Padding(0, 1)
	numberStyle = cellStyle.Align(lipgloss.Right)
	totalStyle  = numberStyle.Bold(true).Foreground(lipgloss.Color("#E6EAF2"))
	emptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// Render draws r as a bordered table with a totals line.
func Render(r Report) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Title))
	b.WriteString("\n")

	if len(r.Rows) == 0 {
		b.WriteString(emptyStyle.Render("No hours recorded."))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(r.Rows)+1)
	for _, row := range r.Rows {
		rows = append(rows, []string{row.Code, row.Name, row.SubTask, row.Hours.String(), parser.FormatRate(row.AmountCents)})
	}
	rows = append(rows, []string{"", "TOTAL", "", r.Total.String(), parser.FormatRate(r.TotalCents)})
	last := len(rows) - 1

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3F55"))).
		Headers("Code", "Job", "Sub-task", "Hours", "Amount").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == last && col >= 3:
				return totalStyle
			case col >= 3:
				return numberStyle
			default:
				return cellStyle
			}
		})

	b.WriteString(t.String())
	b.WriteString("\n")
	return b.String()
}
