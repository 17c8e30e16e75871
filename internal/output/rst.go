package output

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/temirov/clidoc/internal/render"
)

const (
	rstLabelFormat      = ".. _%s:"
	rstProgramDirective = ".. program:: "
	rstCodeBlock        = ".. code-block:: shell"
	rstRubricDirective  = ".. rubric:: "
	rstOptionDirective  = ".. option:: "
	rstEnvVarDirective  = ".. envvar:: "
	rstObjectDirective  = ".. object:: "
	rstWarningDirective = ".. warning:: "
	rstOptionRole       = ":option:`%s`"

	rubricOptions     = "Options"
	rubricArguments   = "Arguments"
	rubricEnvironment = "Environment variables"
	rubricCommands    = "Commands"
)

// rstUnderlines are the section adornments used for increasing nesting depth.
var rstUnderlines = []rune{'=', '-', '~', '^', '"', '\''}

// RestructuredTextRenderer writes Sphinx flavored reStructuredText.
type RestructuredTextRenderer struct{}

// NewRestructuredTextRenderer constructs a RestructuredTextRenderer.
func NewRestructuredTextRenderer() *RestructuredTextRenderer {
	return &RestructuredTextRenderer{}
}

// Render implements Renderer.
func (renderer *RestructuredTextRenderer) Render(w io.Writer, document render.Document) error {
	var buffer lineBuffer
	document.Walk(func(section render.Section, depth int) {
		writeRestructuredTextSection(&buffer, section, depth)
	})
	return buffer.writeTo(w)
}

func writeRestructuredTextSection(buffer *lineBuffer, section render.Section, depth int) {
	buffer.add(rstLabel(string(section.AnchorID)))
	buffer.blank()
	buffer.add(section.Name, rstUnderline(section.Name, depth))
	buffer.blank()

	if section.Deprecated {
		buffer.add(rstWarningDirective + deprecatedCommand)
		buffer.blank()
	}
	if text := textLines(sectionText(section.Body)); len(text) > 0 {
		buffer.add(text...)
		buffer.blank()
	}

	buffer.add(rstProgramDirective+strings.Join(section.Path, " "), rstCodeBlock)
	buffer.blank()
	buffer.add(indented(textLines(section.Body.Usage))...)
	buffer.blank()

	if options := section.Body.Options(); len(options) > 0 {
		buffer.add(rstRubricDirective + rubricOptions)
		buffer.blank()
		for _, entry := range options {
			buffer.add(rstLabel(string(entry.AnchorID)))
			buffer.blank()
			buffer.add(rstOptionDirective + entry.Signature)
			if help := textLines(optionHelp(entry)); len(help) > 0 {
				buffer.blank()
				buffer.add(indented(help)...)
			}
			buffer.blank()
		}
	}

	if arguments := section.Body.Arguments(); len(arguments) > 0 {
		buffer.add(rstRubricDirective + rubricArguments)
		buffer.blank()
		for _, entry := range arguments {
			buffer.add(rstLabel(string(entry.AnchorID)))
			buffer.blank()
			buffer.add(rstOptionDirective + entry.Signature)
			buffer.blank()
			buffer.add(indented(textLines(argumentHelp(entry)))...)
			buffer.blank()
		}
	}

	if envVars := section.Body.EnvVars(); len(envVars) > 0 {
		buffer.add(rstRubricDirective + rubricEnvironment)
		buffer.blank()
		for _, entry := range envVars {
			buffer.add(rstLabel(string(entry.EnvVarAnchorID)))
			buffer.blank()
			buffer.add(rstEnvVarDirective + entry.EnvVar)
			buffer.blank()
			buffer.add(indentUnit + envVarReferenceText + fmt.Sprintf(rstOptionRole, entry.Reference))
			buffer.blank()
		}
	}

	if len(section.Body.Commands) > 0 {
		buffer.add(rstRubricDirective + rubricCommands)
		buffer.blank()
		for _, entry := range section.Body.Commands {
			buffer.add(rstObjectDirective + entry.Name)
			if summary := textLines(commandSummary(entry)); len(summary) > 0 {
				buffer.blank()
				buffer.add(indented(summary)...)
			}
			buffer.blank()
		}
	}

	if epilog := textLines(section.Body.Epilog); len(epilog) > 0 {
		buffer.add(epilog...)
		buffer.blank()
	}
}

func rstLabel(anchor string) string {
	return fmt.Sprintf(rstLabelFormat, anchor)
}

func rstUnderline(title string, depth int) string {
	if depth >= len(rstUnderlines) {
		depth = len(rstUnderlines) - 1
	}
	return strings.Repeat(string(rstUnderlines[depth]), utf8.RuneCountInString(title))
}
