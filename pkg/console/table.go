package console

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("#BD93F9"))

	tableBorderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#6272A4"))

	tableTotalStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#50FA7B"))
)

// Alignment positions a cell within its column
type Alignment int

const (
	AlignLeft Alignment = iota
	AlignRight
)

// TableConfig describes a table of findings
type TableConfig struct {
	Headers []string
	Rows    [][]string
	Title   string
	// Align holds per-column alignment; missing entries are left aligned
	Align []Alignment
	// MaxColumnWidth truncates wider cells with an ellipsis; 0 disables truncation
	MaxColumnWidth int
	// SeverityHeader names a column whose cells are coloured by severity
	SeverityHeader string
	ShowTotal      bool
	TotalRow       []string
}

// SeverityStyle returns the style used for a severity name
func SeverityStyle(severity string) lipgloss.Style {
	switch severity {
	case "warning":
		return warningStyle
	case "info":
		return infoStyle
	case "suggestion":
		return suggestionStyle
	case "error", "invalid", "unreadable":
		return errorStyle
	}
	return lipgloss.NewStyle()
}

// RenderTable renders rows under a header with a dashed separator. Widths are measured in
// terminal cells so wide characters line up.
func RenderTable(config TableConfig) string {
	if len(config.Headers) == 0 {
		return ""
	}

	rows := make([][]string, 0, len(config.Rows)+1)
	for _, row := range config.Rows {
		rows = append(rows, truncateRow(row, config.MaxColumnWidth))
	}
	var total []string
	if config.ShowTotal && len(config.TotalRow) > 0 {
		total = truncateRow(config.TotalRow, config.MaxColumnWidth)
	}

	widths := make([]int, len(config.Headers))
	for i, header := range config.Headers {
		widths[i] = lipgloss.Width(header)
	}
	for _, row := range append(rows[:len(rows):len(rows)], total) {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var output strings.Builder
	if config.Title != "" {
		output.WriteString(applyStyle(tableTotalStyle, config.Title))
		output.WriteString("\n")
	}

	plain := func(int, string) lipgloss.Style { return lipgloss.NewStyle() }
	header := func(int, string) lipgloss.Style { return tableHeaderStyle }
	cells := plain
	for i, h := range config.Headers {
		if config.SeverityHeader != "" && h == config.SeverityHeader {
			severityCol := i
			cells = func(col int, cell string) lipgloss.Style {
				if col == severityCol {
					return SeverityStyle(cell)
				}
				return lipgloss.NewStyle()
			}
		}
	}

	separatorCells := make([]string, len(widths))
	for i, width := range widths {
		separatorCells[i] = strings.Repeat("-", width)
	}
	separator := renderTableRow(separatorCells, widths, nil, func(int, string) lipgloss.Style { return tableBorderStyle })

	output.WriteString(renderTableRow(config.Headers, widths, nil, header))
	output.WriteString(separator)
	for _, row := range rows {
		output.WriteString(renderTableRow(row, widths, config.Align, cells))
	}
	if total != nil {
		output.WriteString(separator)
		output.WriteString(renderTableRow(total, widths, config.Align, func(int, string) lipgloss.Style { return tableTotalStyle }))
	}

	return output.String()
}

// renderTableRow pads each cell to its column width and ends the line
func renderTableRow(cells []string, widths []int, align []Alignment, style func(col int, cell string) lipgloss.Style) string {
	var row strings.Builder

	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		pad := strings.Repeat(" ", widths[i]-lipgloss.Width(cell))
		if i < len(align) && align[i] == AlignRight {
			row.WriteString(pad + applyStyle(style(i, cell), cell))
		} else {
			row.WriteString(applyStyle(style(i, cell), cell) + pad)
		}

		if i < len(cells)-1 && i < len(widths)-1 {
			row.WriteString(applyStyle(tableBorderStyle, " | "))
		}
	}

	return strings.TrimRight(row.String(), " ") + "\n"
}

func truncateRow(row []string, limit int) []string {
	if limit <= 0 {
		return row
	}
	out := make([]string, len(row))
	for i, cell := range row {
		out[i] = truncate(cell, limit)
	}
	return out
}

// truncate shortens s to at most limit cells, ending in an ellipsis
func truncate(s string, limit int) string {
	if lipgloss.Width(s) <= limit {
		return s
	}
	runes := []rune(s)
	for len(runes) > 0 && lipgloss.Width(string(runes))+1 > limit {
		runes = runes[:len(runes)-1]
	}
	return string(runes) + "…"
}
