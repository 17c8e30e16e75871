// Package model defines the abstract command hierarchy consumed by the renderer.
package model

import "strings"

// NodeKind identifies the role of a command node in the hierarchy.
type NodeKind int

const (
	// KindLeaf is a command without subcommands.
	KindLeaf NodeKind = iota
	// KindGroup is a command that owns an ordered list of subcommands.
	KindGroup
	// KindCollection merges several independently defined groups.
	KindCollection
)

const (
	kindLeafName       = "leaf"
	kindGroupName      = "group"
	kindCollectionName = "collection"
	kindUnknownName    = "unknown"
)

func (kind NodeKind) String() string {
	switch kind {
	case KindLeaf:
		return kindLeafName
	case KindGroup:
		return kindGroupName
	case KindCollection:
		return kindCollectionName
	default:
		return kindUnknownName
	}
}

// ParameterKind distinguishes options from positional arguments.
type ParameterKind int

const (
	// ParameterOption is a named option such as --verbose.
	ParameterOption ParameterKind = iota
	// ParameterArgument is a positional argument.
	ParameterArgument
)

func (kind ParameterKind) String() string {
	if kind == ParameterArgument {
		return "argument"
	}
	return "option"
}

// Parameter describes one option or positional argument of a command.
type Parameter struct {
	DisplayName string
	Kind        ParameterKind
	Flags       []string
	Metavar     string
	Required    bool
	// Default is the rendered default value; nil when there is none or it is suppressed.
	Default *string
	EnvVar  string
	Help    string
	// Multiple marks an argument that accepts more than one value.
	Multiple bool
	// IsFlag marks an option that takes no value.
	IsFlag bool
	Hidden bool
}

// CommandNode represents one command, group, or collection.
//
// Nodes are treated as immutable once handed to the renderer; producers must not
// mutate a graph while a render over it is in progress.
type CommandNode struct {
	Name        string
	Kind        NodeKind
	Summary     string
	Description string
	Epilog      string
	// Usage holds the usage pieces that follow the command path. When empty the
	// renderer derives them from the parameters.
	Usage      string
	Parameters []Parameter
	Children   []*CommandNode
	Sources    []*CommandNode
	Deprecated bool
	Hidden     bool
}

// Child returns the direct child with the provided name.
func (node *CommandNode) Child(name string) (*CommandNode, bool) {
	if node == nil {
		return nil, false
	}
	for _, child := range node.Children {
		if child != nil && child.Name == name {
			return child, true
		}
	}
	return nil, false
}

// Source returns the collection source with the provided name.
func (node *CommandNode) Source(name string) (*CommandNode, bool) {
	if node == nil {
		return nil, false
	}
	for _, source := range node.Sources {
		if source != nil && source.Name == name {
			return source, true
		}
	}
	return nil, false
}

// ShortHelp returns the one-line summary, falling back to the first line of the description.
func (node *CommandNode) ShortHelp() string {
	if node == nil {
		return ""
	}
	if summary := strings.TrimSpace(node.Summary); summary != "" {
		return summary
	}
	description := strings.TrimSpace(node.Description)
	if newlineIndex := strings.IndexByte(description, '\n'); newlineIndex >= 0 {
		return strings.TrimSpace(description[:newlineIndex])
	}
	return description
}
