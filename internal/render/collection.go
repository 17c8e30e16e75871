package render

import (
	"fmt"
	"strings"

	"github.com/temirov/clidoc/internal/model"
)

const (
	notCollectionFormat         = "expected a collection, got a %s"
	unknownCollectionCommandFmt = "unknown command %q in any source of %q"
)

// RenderCollection renders each source of a collection as an independent root and returns
// one top-level section per source in declaration order. Anchors are qualified with the
// source name, so equal command names in different sources never collide.
func RenderCollection(root *model.CommandNode, config Config) (Document, error) {
	if root != nil && root.Kind != model.KindCollection {
		return Document{}, &model.DataModelViolation{
			Path:   []string{root.Name},
			Reason: fmt.Sprintf(notCollectionFormat, root.Kind),
		}
	}
	return Render(root, config)
}

func (renderer *walker) collection(root *model.CommandNode, programName string) ([]Section, error) {
	if renderer.policy.FilterActive() {
		for _, name := range renderer.policy.CommandFilter {
			if !anySourceHasChild(root.Sources, name) {
				return nil, &model.ConfigurationError{
					Option: OptionCommands,
					Reason: fmt.Sprintf(unknownCollectionCommandFmt, name, programName),
				}
			}
		}
	}

	var sections []Section
	for _, source := range root.Sources {
		if source.Hidden {
			continue
		}
		sourcePosition := position{
			commandPath: []string{programName},
			anchorPath:  []string{programName, source.Name},
			topLevel:    true,
		}
		section, sectionError := renderer.section(source, sourcePosition)
		if sectionError != nil {
			return nil, sectionError
		}
		section.Name = source.Name
		section.Title = source.Name
		sections = append(sections, section)
	}
	return sections, nil
}

// anySourceHasChild only consults visible sources, since hidden ones are never rendered.
func anySourceHasChild(sources []*model.CommandNode, name string) bool {
	for _, source := range sources {
		if source.Hidden {
			continue
		}
		if _, found := source.Child(strings.TrimSpace(name)); found {
			return true
		}
	}
	return false
}
