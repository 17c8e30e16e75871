// Package render walks a command hierarchy and produces the ordered sections of its reference document.
package render

import (
	"github.com/temirov/clidoc/internal/anchors"
	"github.com/temirov/clidoc/internal/model"
	"github.com/temirov/clidoc/internal/params"
)

// Document is the result of one render.
type Document struct {
	Sections []Section
	Warnings []model.Warning
}

// Section documents one command, group, or collection source.
type Section struct {
	AnchorID anchors.AnchorID
	// Name is the local name of the command, or the program name for the top section.
	Name string
	// Title is the path-qualified display name.
	Title string
	// Path is the command path a user types, starting with the program name.
	Path       []string
	Kind       model.NodeKind
	Deprecated bool
	Body       Body
	Children   []Section
}

// Body carries the descriptive content of a section.
type Body struct {
	Summary     string
	Description string
	Epilog      string
	// Usage is the complete usage line including the command path.
	Usage      string
	Parameters []ParameterEntry
	// Commands lists subcommands by name when they are not expanded into child sections.
	Commands []CommandEntry
}

// ParameterEntry is a rendered parameter with its cross-reference targets.
type ParameterEntry struct {
	params.RenderedParameter
	AnchorID anchors.AnchorID
	// EnvVarAnchorID is empty when the parameter has no environment variable.
	EnvVarAnchorID anchors.AnchorID
}

// CommandEntry is the lightweight listing of a subcommand.
type CommandEntry struct {
	Name       string
	Summary    string
	AnchorID   anchors.AnchorID
	Deprecated bool
}

// Arguments returns the positional arguments in declaration order.
func (body Body) Arguments() []ParameterEntry {
	return body.filterParameters(func(entry ParameterEntry) bool { return entry.IsArgument() })
}

// Options returns the options in declaration order.
func (body Body) Options() []ParameterEntry {
	return body.filterParameters(func(entry ParameterEntry) bool { return !entry.IsArgument() })
}

// EnvVars returns the parameters bound to an environment variable.
func (body Body) EnvVars() []ParameterEntry {
	return body.filterParameters(func(entry ParameterEntry) bool { return entry.EnvVar != "" })
}

func (body Body) filterParameters(keep func(ParameterEntry) bool) []ParameterEntry {
	var filtered []ParameterEntry
	for _, entry := range body.Parameters {
		if keep(entry) {
			filtered = append(filtered, entry)
		}
	}
	return filtered
}

// Walk visits every section of the document in pre-order with its nesting depth.
func (document Document) Walk(visit func(section Section, depth int)) {
	for _, section := range document.Sections {
		walkSection(section, 0, visit)
	}
}

func walkSection(section Section, depth int, visit func(Section, int)) {
	visit(section, depth)
	for _, child := range section.Children {
		walkSection(child, depth+1, visit)
	}
}
