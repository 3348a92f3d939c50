package chat

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

// Markdown styles accepted by SetMarkdownStyle. StyleAuto picks dark or
// light from the terminal; StylePlain renders without ANSI sequences.
const (
	StyleAuto  = "auto"
	StylePlain = "notty"
)

// renderMarkdown renders answer markdown for a viewport of the given
// width. Rendering failures fall back to the raw text.
func renderMarkdown(md string, width int, style string) string {
	if width < 20 {
		width = 20
	}

	opts := []glamour.TermRendererOption{glamour.WithWordWrap(width)}
	if style == "" || style == StyleAuto {
		opts = append(opts, glamour.WithAutoStyle())
	} else {
		opts = append(opts, glamour.WithStandardStyle(style))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.Trim(out, "\n")
}
