package clipboard

import (
	"html"
	"strings"
)

// Payload carries the plain-text clipboard form together with its HTML-table
// mirror.
type Payload struct {
	Text string
	HTML string
}

// Format renders a grid as Excel-compatible tab/newline-delimited text.
func Format(grid [][]string) string {
	lines := make([]string, len(grid))
	for i, row := range grid {
		lines[i] = strings.Join(row, "\t")
	}
	return strings.Join(lines, "\n")
}

// Parse converts tab/newline-delimited text into a rectangular grid.
// Carriage returns are normalized away, trailing blank lines are dropped,
// and rows shorter than the widest row are padded with empty strings.
// An empty payload yields a nil grid.
func Parse(text string) [][]string {
	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	// Only fully empty lines count as blank: a trailing "\t" line is a row
	// of empty cells and must survive the round trip.
	lines := strings.Split(normalized, "\n")
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}

	// Single line without a tab is a 1x1 grid.
	if len(lines) == 1 && !strings.Contains(lines[0], "\t") {
		return [][]string{{lines[0]}}
	}

	grid := make([][]string, len(lines))
	width := 0
	for i, line := range lines {
		grid[i] = strings.Split(line, "\t")
		width = max(width, len(grid[i]))
	}
	for i, row := range grid {
		for len(row) < width {
			row = append(row, "")
		}
		grid[i] = row
	}
	return grid
}

// FormatHTML renders the grid as an HTML table for rich-paste targets.
func FormatHTML(grid [][]string) string {
	var b strings.Builder
	b.WriteString("<table>")
	for _, row := range grid {
		b.WriteString("<tr>")
		for _, cell := range row {
			b.WriteString("<td>")
			b.WriteString(html.EscapeString(cell))
			b.WriteString("</td>")
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return b.String()
}

// Render builds the full clipboard payload for a grid.
func Render(grid [][]string) Payload {
	return Payload{
		Text: Format(grid),
		HTML: FormatHTML(grid),
	}
}
