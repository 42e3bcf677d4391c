package format

import (
	"strings"
	"unicode/utf8"
)

// Table renders a bordered grid. A non-empty title is printed above it with an "=" underline,
// and the header row is separated from the data by a "=" rule.
//
//	+----------+--------+
//	| Category | Amount |
//	+==========+========+
//	| Food     | $25.50 |
//	+----------+--------+
func Table(title string, headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i := range headers {
			if w := utf8.RuneCountInString(cell(row, i)); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	if title != "" {
		b.WriteString(title)
		b.WriteString("\n")
		b.WriteString(strings.Repeat("=", utf8.RuneCountInString(title)))
		b.WriteString("\n\n")
	}

	b.WriteString(rule(widths, '-'))
	b.WriteString(line(widths, headers))
	b.WriteString(rule(widths, '='))
	for _, row := range rows {
		b.WriteString(line(widths, row))
		b.WriteString(rule(widths, '-'))
	}
	return b.String()
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func rule(widths []int, fill rune) string {
	var b strings.Builder
	b.WriteByte('+')
	for _, w := range widths {
		b.WriteString(strings.Repeat(string(fill), w+2))
		b.WriteByte('+')
	}
	b.WriteByte('\n')
	return b.String()
}

func line(widths []int, row []string) string {
	var b strings.Builder
	b.WriteByte('|')
	for i, w := range widths {
		c := cell(row, i)
		b.WriteByte(' ')
		b.WriteString(c)
		b.WriteString(strings.Repeat(" ", w-utf8.RuneCountInString(c)))
		b.WriteString(" |")
	}
	b.WriteByte('\n')
	return b.String()
}

// Truncate shortens s to at most limit runes, marking the cut with "..."
func Truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
