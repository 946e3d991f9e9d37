// Package renderer turns the engine's value objects into markdown reports.
// The engine itself never formats anything; everything presentational
// (rounding, signs, table layout) lives here, so two renders of the same
// report are always byte-identical.
package renderer

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Terminal renders a markdown report for an ANSI terminal with the
// auto-detected style. On any rendering failure the raw markdown is
// returned: a report must never be lost to cosmetics.
func Terminal(markdown string) string {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		return markdown
	}
	out, err := r.Render(markdown)
	if err != nil {
		return markdown
	}
	return out
}

// cell escapes the pipe character so free text cannot break a table row.
func cell(s string) string { return strings.ReplaceAll(s, "|", "\\|") }
