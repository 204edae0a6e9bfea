package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF00FF"))

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00FFFF")).
			Padding(0, 1)

	cellStyle = lipgloss.NewStyle().
			Padding(0, 1)

	redStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF0000")).
			Bold(true)

	greenStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

// Render draws the summary as a bordered table.
func Render(s Summary) string {
	title := "Valley-free check"
	if s.Mode == ModeInferred && s.Variant != "" {
		title = fmt.Sprintf("Valley-free check (%s)", s.Variant)
	} else if s.Mode == ModeGroundTruth {
		title = "Valley-free check (ground truth)"
	}

	verdictStyle := greenStyle
	if s.NotValleyFree > 0 {
		verdictStyle = redStyle
	}

	rows := [][]string{
		{"Not valley-free", strconv.Itoa(s.NotValleyFree), strconv.Itoa(s.Total), FormatRatio(s.NotValleyFreeRatio())},
	}
	for _, rc := range s.Relationships {
		rows = append(rows, []string{rc.Relationship.String(), strconv.Itoa(rc.Count), strconv.Itoa(rc.Total), FormatRatio(rc.Ratio())})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("#00FFFF"))).
		Headers("", "Count", "Total", "Ratio").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row == 0 && col == 1:
				return cellStyle.Inherit(verdictStyle)
			default:
				return cellStyle
			}
		})

	return lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(title), t.Render())
}

// WritePretty writes the rendered summary followed by a newline.
func WritePretty(w io.Writer, s Summary) error {
	_, err := fmt.Fprintln(w, Render(s))
	return err
}
