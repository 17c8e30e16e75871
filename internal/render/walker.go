package render

import (
	"fmt"
	"strings"

	"github.com/temirov/clidoc/internal/anchors"
	"github.com/temirov/clidoc/internal/model"
	"github.com/temirov/clidoc/internal/params"
)

const (
	usageSeparator        = " "
	usageOptionsPiece     = "[OPTIONS]"
	usageSubcommandPieces = "COMMAND [ARGS]..."
	optionalArgumentOpen  = "["
	optionalArgumentClose = "]"

	unknownCommandFormat = "unknown command %q in %q"
)

// Render produces the document for root. Rendering is a pure function of its inputs: it
// performs no I/O and returns either a complete document or an error, never a partial one.
func Render(root *model.CommandNode, config Config) (Document, error) {
	policy, warnings, policyError := ResolvePolicy(config)
	if policyError != nil {
		return Document{}, policyError
	}
	if validationError := model.Validate(root); validationError != nil {
		return Document{}, validationError
	}

	renderer := newWalker(policy)
	programName := programNameFor(root, config)
	if root.Kind == model.KindCollection {
		sections, collectionError := renderer.collection(root, programName)
		if collectionError != nil {
			return Document{}, collectionError
		}
		return Document{Sections: sections, Warnings: warnings}, nil
	}

	rootPosition := position{
		commandPath: []string{programName},
		anchorPath:  []string{programName},
		topLevel:    true,
		strict:      true,
	}
	section, sectionError := renderer.section(root, rootPosition)
	if sectionError != nil {
		return Document{}, sectionError
	}
	return Document{Sections: []Section{section}, Warnings: warnings}, nil
}

func programNameFor(root *model.CommandNode, config Config) string {
	if programName := strings.TrimSpace(config.ProgramName); programName != "" {
		return programName
	}
	return root.Name
}

type walker struct {
	policy    EffectivePolicy
	allocator *anchors.Allocator
}

func newWalker(policy EffectivePolicy) *walker {
	return &walker{policy: policy, allocator: anchors.NewAllocator()}
}

// position locates a node during the walk.
type position struct {
	// commandPath is what a user types to reach the node.
	commandPath []string
	// anchorPath qualifies anchors; it also names the collection source the node came from.
	anchorPath []string
	// topLevel marks the node whose children the command filter applies to.
	topLevel bool
	// strict makes a filter entry that names no child a configuration error.
	strict bool
}

func (current position) descend(name string) position {
	return position{
		commandPath: extendPath(current.commandPath, name),
		anchorPath:  extendPath(current.anchorPath, name),
	}
}

func (renderer *walker) section(node *model.CommandNode, current position) (Section, error) {
	extracted, extractError := params.Extract(node, current.commandPath)
	if extractError != nil {
		return Section{}, extractError
	}

	section := Section{
		AnchorID:   renderer.allocator.Allocate(anchors.NamespaceCommand, current.anchorPath),
		Name:       current.commandPath[len(current.commandPath)-1],
		Title:      strings.Join(current.commandPath, usageSeparator),
		Path:       current.commandPath,
		Kind:       node.Kind,
		Deprecated: node.Deprecated,
		Body: Body{
			Summary:     strings.TrimSpace(node.Summary),
			Description: strings.TrimSpace(node.Description),
			Epilog:      strings.TrimSpace(node.Epilog),
			Usage:       usageLine(node, current.commandPath, extracted),
			Parameters:  renderer.parameterEntries(extracted, current.anchorPath),
		},
	}

	children, candidateError := renderer.candidates(node, current)
	if candidateError != nil {
		return Section{}, candidateError
	}
	if node.Kind != model.KindGroup {
		return section, nil
	}

	switch renderer.policy.Nesting {
	case NestingNone:
		// subcommands are not listed, not even by name
	case NestingShort:
		for _, child := range children {
			section.Body.Commands = append(section.Body.Commands, CommandEntry{
				Name:       child.Name,
				Summary:    child.ShortHelp(),
				AnchorID:   renderer.allocator.Allocate(anchors.NamespaceCommand, extendPath(current.anchorPath, child.Name)),
				Deprecated: child.Deprecated,
			})
		}
	case NestingFull:
		for _, child := range children {
			childSection, childError := renderer.section(child, current.descend(child.Name))
			if childError != nil {
				return Section{}, childError
			}
			section.Children = append(section.Children, childSection)
		}
	}
	return section, nil
}

// candidates returns the children to document in declaration order. The command filter
// only narrows the top level; below it every visible child is a candidate.
func (renderer *walker) candidates(node *model.CommandNode, current position) ([]*model.CommandNode, error) {
	filtered := current.topLevel && renderer.policy.FilterActive()
	if filtered && current.strict {
		for _, name := range renderer.policy.CommandFilter {
			if _, found := node.Child(name); !found {
				return nil, &model.ConfigurationError{
					Option: OptionCommands,
					Reason: fmt.Sprintf(unknownCommandFormat, name, strings.Join(current.commandPath, usageSeparator)),
				}
			}
		}
	}

	var children []*model.CommandNode
	for _, child := range node.Children {
		if filtered {
			if renderer.policy.Allows(child.Name) {
				children = append(children, child)
			}
			continue
		}
		if !child.Hidden {
			children = append(children, child)
		}
	}
	return children, nil
}

func (renderer *walker) parameterEntries(extracted []params.RenderedParameter, anchorPath []string) []ParameterEntry {
	entries := make([]ParameterEntry, 0, len(extracted))
	for _, parameter := range extracted {
		parameterPath := extendPath(anchorPath, parameter.Name)
		namespace := anchors.NamespaceOption
		if parameter.IsArgument() {
			namespace = anchors.NamespaceArgument
		}
		entry := ParameterEntry{
			RenderedParameter: parameter,
			AnchorID:          renderer.allocator.Allocate(namespace, parameterPath),
		}
		if parameter.EnvVar != "" {
			// An argument and an option may share a name; both bind their own variable.
			entry.EnvVarAnchorID = renderer.allocator.AllocateOwned(anchors.NamespaceEnvVar, string(namespace), parameterPath)
		}
		entries = append(entries, entry)
	}
	return entries
}

// usageLine joins the command path with the declared usage pieces, or with pieces derived
// from the parameters when the node declares none.
func usageLine(node *model.CommandNode, commandPath []string, extracted []params.RenderedParameter) string {
	pieces := append([]string(nil), commandPath...)
	if declared := strings.TrimSpace(node.Usage); declared != "" {
		return strings.Join(append(pieces, declared), usageSeparator)
	}
	pieces = append(pieces, usageOptionsPiece)
	for _, parameter := range extracted {
		if !parameter.IsArgument() {
			continue
		}
		if parameter.Required {
			pieces = append(pieces, parameter.Signature)
			continue
		}
		pieces = append(pieces, optionalArgumentOpen+parameter.Signature+optionalArgumentClose)
	}
	if node.Kind != model.KindLeaf {
		pieces = append(pieces, usageSubcommandPieces)
	}
	return strings.Join(pieces, usageSeparator)
}

func extendPath(path []string, segment string) []string {
	extended := make([]string, 0, len(path)+1)
	extended = append(extended, path...)
	return append(extended, segment)
}
