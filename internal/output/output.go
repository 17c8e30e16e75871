// Package output writes rendered documents in a markup language.
package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/clidoc/internal/render"
	"github.com/temirov/clidoc/internal/types"
)

const (
	lineBreak         = "\n"
	indentUnit        = "    "
	helpExtraOpen     = "["
	helpExtraClose    = "]"
	helpExtraJoiner   = "; "
	helpExtraSpacer   = "  "
	defaultExtraLabel = "default: "
	requiredExtra     = "required"

	requiredArgumentText = "Required argument"
	optionalArgumentText = "Optional argument"
	multipleArgumentMark = "(s)"
	envVarReferenceText  = "Provide a default for "
	deprecatedCommand    = "This command is deprecated."
	deprecatedEntryMark  = " (deprecated)"

	invalidFormatMessage = "invalid format value '%s'; expected one of %s"
)

// Renderer writes a document to w.
type Renderer interface {
	Render(w io.Writer, document render.Document) error
}

// NewRenderer returns the renderer for format.
func NewRenderer(format string) (Renderer, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case types.FormatRST:
		return NewRestructuredTextRenderer(), nil
	case types.FormatMarkdown:
		return NewMarkdownRenderer(), nil
	case types.FormatTerminal:
		return NewTerminalRenderer(), nil
	default:
		return nil, fmt.Errorf(invalidFormatMessage, format, strings.Join(types.SupportedFormats, ", "))
	}
}

// RenderString renders document into a string.
func RenderString(renderer Renderer, document render.Document) (string, error) {
	var buffer bytes.Buffer
	if renderError := renderer.Render(&buffer, document); renderError != nil {
		return "", renderError
	}
	return buffer.String(), nil
}

// lineBuffer accumulates output lines and collapses runs of blank lines.
type lineBuffer struct {
	lines []string
}

func (buffer *lineBuffer) add(lines ...string) {
	for _, line := range lines {
		if line == "" && (len(buffer.lines) == 0 || buffer.lines[len(buffer.lines)-1] == "") {
			continue
		}
		buffer.lines = append(buffer.lines, line)
	}
}

func (buffer *lineBuffer) blank() {
	buffer.add("")
}

func (buffer *lineBuffer) writeTo(w io.Writer) error {
	lines := buffer.lines
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if len(lines) == 0 {
		return nil
	}
	_, writeError := io.WriteString(w, strings.Join(lines, lineBreak)+lineBreak)
	return writeError
}

// textLines splits text into lines with tabs expanded and trailing spaces removed.
func textLines(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	rawLines := strings.Split(strings.ReplaceAll(text, "\r\n", lineBreak), lineBreak)
	lines := make([]string, 0, len(rawLines))
	for _, rawLine := range rawLines {
		lines = append(lines, strings.TrimRight(strings.ReplaceAll(rawLine, "\t", indentUnit), " "))
	}
	return lines
}

// indented prefixes every non-blank line with one indentation unit.
func indented(lines []string) []string {
	result := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			result = append(result, "")
			continue
		}
		result = append(result, indentUnit+line)
	}
	return result
}

// optionHelp appends the default value and required marker to the help text of an option.
func optionHelp(entry render.ParameterEntry) string {
	var extras []string
	if entry.Default != nil {
		extras = append(extras, defaultExtraLabel+*entry.Default)
	}
	if entry.Required {
		extras = append(extras, requiredExtra)
	}
	help := strings.TrimSpace(entry.Help)
	if len(extras) == 0 {
		return help
	}
	if help != "" {
		help += helpExtraSpacer
	}
	return help + helpExtraOpen + strings.Join(extras, helpExtraJoiner) + helpExtraClose
}

// argumentHelp returns the help text of an argument followed by whether it is required.
func argumentHelp(entry render.ParameterEntry) string {
	description := optionalArgumentText
	if entry.Required {
		description = requiredArgumentText
	}
	if entry.Multiple {
		description += multipleArgumentMark
	}
	if help := strings.TrimSpace(entry.Help); help != "" {
		return help + lineBreak + lineBreak + description
	}
	return description
}

// sectionText returns the long description, or the summary when there is none.
func sectionText(body render.Body) string {
	if body.Description != "" {
		return body.Description
	}
	return body.Summary
}

func commandSummary(entry render.CommandEntry) string {
	if entry.Deprecated {
		return strings.TrimSpace(entry.Summary + deprecatedEntryMark)
	}
	return entry.Summary
}
