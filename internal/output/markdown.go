package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/temirov/clidoc/internal/anchors"
	"github.com/temirov/clidoc/internal/render"
)

const (
	markdownHeadingMark    = "#"
	markdownMaxHeading     = 6
	markdownAnchorFormat   = `<a id="%s"></a>`
	markdownCodeFence      = "```"
	markdownShellFence     = "```shell"
	markdownBulletFormat   = "- %s`%s`"
	markdownLinkFormat     = "- [`%s`](#%s)"
	markdownDescription    = ": "
	markdownStrongFormat   = "**%s**"
	markdownDeprecatedNote = "> **Deprecated.** "
	markdownContinuation   = "  "
)

// MarkdownRenderer writes CommonMark with HTML anchors.
type MarkdownRenderer struct {
	// WithoutAnchors omits the HTML anchor elements and intra-document links.
	WithoutAnchors bool
}

// NewMarkdownRenderer constructs a MarkdownRenderer that emits anchors.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render implements Renderer.
func (renderer *MarkdownRenderer) Render(w io.Writer, document render.Document) error {
	var buffer lineBuffer
	document.Walk(func(section render.Section, depth int) {
		renderer.writeSection(&buffer, section, depth)
	})
	return buffer.writeTo(w)
}

func (renderer *MarkdownRenderer) writeSection(buffer *lineBuffer, section render.Section, depth int) {
	headingLevel := depth + 1
	if headingLevel > markdownMaxHeading {
		headingLevel = markdownMaxHeading
	}
	if !renderer.WithoutAnchors {
		buffer.add(renderer.anchor(section.AnchorID))
	}
	buffer.add(strings.Repeat(markdownHeadingMark, headingLevel) + " " + section.Name)
	buffer.blank()

	if section.Deprecated {
		buffer.add(markdownDeprecatedNote + deprecatedCommand)
		buffer.blank()
	}
	if text := textLines(sectionText(section.Body)); len(text) > 0 {
		buffer.add(text...)
		buffer.blank()
	}

	buffer.add(markdownShellFence)
	buffer.add(textLines(section.Body.Usage)...)
	buffer.add(markdownCodeFence)
	buffer.blank()

	if options := section.Body.Options(); len(options) > 0 {
		buffer.add(fmt.Sprintf(markdownStrongFormat, rubricOptions))
		buffer.blank()
		for _, entry := range options {
			buffer.add(renderer.bullet(entry.AnchorID, entry.Signature, optionHelp(entry))...)
		}
		buffer.blank()
	}

	if arguments := section.Body.Arguments(); len(arguments) > 0 {
		buffer.add(fmt.Sprintf(markdownStrongFormat, rubricArguments))
		buffer.blank()
		for _, entry := range arguments {
			buffer.add(renderer.bullet(entry.AnchorID, entry.Signature, argumentHelp(entry))...)
		}
		buffer.blank()
	}

	if envVars := section.Body.EnvVars(); len(envVars) > 0 {
		buffer.add(fmt.Sprintf(markdownStrongFormat, rubricEnvironment))
		buffer.blank()
		for _, entry := range envVars {
			reference := envVarReferenceText + "`" + entry.Reference + "`"
			buffer.add(renderer.bullet(entry.EnvVarAnchorID, entry.EnvVar, reference)...)
		}
		buffer.blank()
	}

	if len(section.Body.Commands) > 0 {
		buffer.add(fmt.Sprintf(markdownStrongFormat, rubricCommands))
		buffer.blank()
		for _, entry := range section.Body.Commands {
			item := fmt.Sprintf(markdownLinkFormat, entry.Name, entry.AnchorID)
			if renderer.WithoutAnchors {
				item = fmt.Sprintf(markdownBulletFormat, "", entry.Name)
			}
			if summary := commandSummary(entry); summary != "" {
				item += markdownDescription + summary
			}
			buffer.add(item)
		}
		buffer.blank()
	}

	if epilog := textLines(section.Body.Epilog); len(epilog) > 0 {
		buffer.add(markdownCodeFence)
		buffer.add(epilog...)
		buffer.add(markdownCodeFence)
		buffer.blank()
	}
}

func (renderer *MarkdownRenderer) anchor(anchorID anchors.AnchorID) string {
	return fmt.Sprintf(markdownAnchorFormat, anchorID)
}

// bullet renders one list item; continuation lines of the description are indented so
// they stay inside the item.
func (renderer *MarkdownRenderer) bullet(anchorID anchors.AnchorID, label string, description string) []string {
	prefix := ""
	if !renderer.WithoutAnchors && anchorID != "" {
		prefix = renderer.anchor(anchorID)
	}
	item := fmt.Sprintf(markdownBulletFormat, prefix, label)
	descriptionLines := textLines(description)
	if len(descriptionLines) == 0 {
		return []string{item}
	}
	lines := []string{item + markdownDescription + descriptionLines[0]}
	for _, line := range descriptionLines[1:] {
		if line == "" {
			continue
		}
		lines = append(lines, markdownContinuation+line)
	}
	return lines
}
