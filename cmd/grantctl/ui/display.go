package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// Table writes rows aligned under a bold header.
func Table(w io.Writer, headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, bold.Sprint(strings.Join(headers, "\t")))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	_ = tw.Flush()
}

// Heading prints a section title.
func Heading(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, heading.Sprintf(format, args...))
}

// Field prints a labeled value. Empty values are skipped.
func Field(w io.Writer, label, value string) {
	if value == "" {
		return
	}
	fmt.Fprintf(w, "%s %s\n", faint.Sprintf("%-16s", label+":"), value)
}

// Success prints a green status line.
func Success(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, green.Sprintf(format, args...))
}

// Warning prints a yellow status line.
func Warning(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, yellow.Sprintf(format, args...))
}

// Verbosef prints only when --verbose is set.
func Verbosef(w io.Writer, format string, args ...any) {
	if verboseFlag {
		fmt.Fprintln(w, faint.Sprintf(format, args...))
	}
}

// Score colors a 0..1 score by match tier.
func Score(s float64) string {
	text := fmt.Sprintf("%.2f", s)
	switch {
	case s >= 0.66:
		return green.Sprint(text)
	case s >= 0.33:
		return yellow.Sprint(text)
	default:
		return red.Sprint(text)
	}
}

// Accent highlights an identifier.
func Accent(s string) string { return cyan.Sprint(s) }

// Truncate shortens s to max runes, marking the cut with an ellipsis.
func Truncate(s string, limit int) string {
	r := []rune(s)
	if limit <= 1 || len(r) <= limit {
		return s
	}
	return string(r[:limit-1]) + "…"
}
