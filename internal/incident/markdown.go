package incident

import (
	"fmt"
	"html"
	"strings"
)

// MarkdownRenderer turns markdown text into HTML. Rendering is an
// external collaborator; swap in a real renderer at wiring time.
type MarkdownRenderer interface {
	Render(text string) string
}

// PlainRenderer is the fallback renderer: it escapes HTML and wraps
// paragraphs, nothing more.
type PlainRenderer struct{}

func (PlainRenderer) Render(text string) string {
	var b strings.Builder
	for _, p := range strings.Split(strings.TrimSpace(text), "\n\n") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(p))
	}
	return b.String()
}
