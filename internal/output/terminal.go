package output

import (
	"bytes"
	"fmt"
	"io"

	"github.com/charmbracelet/glamour"

	"github.com/temirov/clidoc/internal/render"
)

const (
	defaultTerminalWordWrap = 80
	terminalRendererError   = "create terminal renderer: %w"
	terminalRenderError     = "render terminal output: %w"
)

// TerminalRenderer writes the Markdown form of a document styled for a terminal.
type TerminalRenderer struct {
	// Style names a glamour standard style such as "dark" or "notty"; empty detects one
	// from the terminal.
	Style    string
	WordWrap int
}

// NewTerminalRenderer constructs a TerminalRenderer with automatic styling.
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{WordWrap: defaultTerminalWordWrap}
}

// Render implements Renderer.
func (renderer *TerminalRenderer) Render(w io.Writer, document render.Document) error {
	var markdown bytes.Buffer
	markdownRenderer := &MarkdownRenderer{WithoutAnchors: true}
	if markdownError := markdownRenderer.Render(&markdown, document); markdownError != nil {
		return markdownError
	}

	styleOption := glamour.WithAutoStyle()
	if renderer.Style != "" {
		styleOption = glamour.WithStandardStyle(renderer.Style)
	}
	wordWrap := renderer.WordWrap
	if wordWrap <= 0 {
		wordWrap = defaultTerminalWordWrap
	}
	termRenderer, termRendererError := glamour.NewTermRenderer(
		styleOption,
		glamour.WithWordWrap(wordWrap),
	)
	if termRendererError != nil {
		return fmt.Errorf(terminalRendererError, termRendererError)
	}
	styled, styleError := termRenderer.Render(markdown.String())
	if styleError != nil {
		return fmt.Errorf(terminalRenderError, styleError)
	}
	_, writeError := io.WriteString(w, styled)
	return writeError
}
