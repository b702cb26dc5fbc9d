package display

import (
	"strings"
	"unicode/utf8"
)

// Table renders an aligned text table.
type Table struct {
	headers []string
	rows    [][]string
	footer  []string
	// highlightRow is the 0-based row to highlight, -1 for none.
	highlightRow int
}

// NewTable creates a table with the given column headers.
func NewTable(headers []string) *Table {
	return &Table{
		headers:      headers,
		highlightRow: -1,
	}
}

// AddRow appends a row. Missing cells render blank; extra cells are dropped.
func (t *Table) AddRow(values []string) {
	t.rows = append(t.rows, values)
}

// SetHighlightRow sets which row (0-based) is highlighted.
func (t *Table) SetHighlightRow(idx int) {
	t.highlightRow = idx
}

// AddFooter appends a dimmed note printed under the table.
func (t *Table) AddFooter(note string) {
	t.footer = append(t.footer, note)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.rows)
}

// Render produces the formatted table, indented by two spaces.
func (t *Table) Render() string {
	if len(t.headers) == 0 {
		return ""
	}

	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], utf8.RuneCountInString(cell))
			}
		}
	}

	var sb strings.Builder
	sb.WriteString("  " + Bold(formatRow(t.headers, widths)) + "\n")

	sep := make([]string, len(widths))
	for i, w := range widths {
		sep[i] = strings.Repeat("─", w)
	}
	sb.WriteString(Dim("  "+strings.Join(sep, "  ")) + "\n")

	for i, row := range t.rows {
		line := formatRow(row, widths)
		if i == t.highlightRow {
			line = Accent(line)
		}
		sb.WriteString("  " + line + "\n")
	}

	if len(t.footer) > 0 {
		sb.WriteString("\n")
		for _, note := range t.footer {
			sb.WriteString("  " + Dim(note) + "\n")
		}
	}

	return sb.String()
}

// formatRow pads each cell to its column width. The last column is not
// padded so lines carry no trailing spaces.
func formatRow(cells []string, widths []int) string {
	parts := make([]string, len(widths))
	for i, w := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if i < len(widths)-1 {
			cell += strings.Repeat(" ", w-utf8.RuneCountInString(cell))
		}
		parts[i] = cell
	}
	return strings.Join(parts, "  ")
}
