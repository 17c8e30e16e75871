package model

import "strings"

const (
	reasonNilNode             = "command node is nil"
	reasonMissingName         = "command node has no name"
	reasonLeafWithChildren    = "leaf command has subcommands"
	reasonLeafWithSources     = "leaf command has collection sources"
	reasonGroupWithSources    = "group has collection sources"
	reasonCollectionChildren  = "collection has direct subcommands"
	reasonCollectionEmpty     = "collection has no sources"
	reasonSourceNotGroup      = "collection source is not a group"
	reasonNestedCollection    = "collection is nested below another command"
	reasonCycle               = "command graph contains a cycle"
	reasonUnknownKind         = "unknown command kind"
	reasonArgumentWithoutName = "argument has neither a name nor flags"
	reasonOptionWithoutFlags  = "option has no flags"
	reasonDuplicateChildName  = "duplicate subcommand name "
	reasonDuplicateSourceName = "duplicate collection source name "
)

// Validate checks the invariants of the node graph rooted at node.
// The first violation is returned as a *DataModelViolation identifying its path.
func Validate(node *CommandNode) error {
	validator := graphValidator{onPath: map[*CommandNode]struct{}{}}
	return validator.visit(node, nil, true)
}

type graphValidator struct {
	onPath map[*CommandNode]struct{}
}

func (validator graphValidator) visit(node *CommandNode, parentPath []string, isRoot bool) error {
	if node == nil {
		return &DataModelViolation{Path: parentPath, Reason: reasonNilNode}
	}
	if strings.TrimSpace(node.Name) == "" {
		return &DataModelViolation{Path: parentPath, Reason: reasonMissingName}
	}
	currentPath := appendPath(parentPath, node.Name)
	if _, cycles := validator.onPath[node]; cycles {
		return &DataModelViolation{Path: currentPath, Reason: reasonCycle}
	}
	validator.onPath[node] = struct{}{}
	defer delete(validator.onPath, node)

	if shapeError := validateShape(node, currentPath, isRoot); shapeError != nil {
		return shapeError
	}
	if parameterError := ValidateParameters(node, currentPath); parameterError != nil {
		return parameterError
	}

	seenNames := map[string]struct{}{}
	for _, child := range node.Children {
		if child != nil {
			if _, duplicate := seenNames[child.Name]; duplicate {
				return &DataModelViolation{Path: currentPath, Reason: reasonDuplicateChildName + child.Name}
			}
			seenNames[child.Name] = struct{}{}
		}
		if childError := validator.visit(child, currentPath, false); childError != nil {
			return childError
		}
	}

	seenSources := map[string]struct{}{}
	for _, source := range node.Sources {
		if source != nil {
			if _, duplicate := seenSources[source.Name]; duplicate {
				return &DataModelViolation{Path: currentPath, Reason: reasonDuplicateSourceName + source.Name}
			}
			seenSources[source.Name] = struct{}{}
			if source.Kind != KindGroup {
				return &DataModelViolation{Path: appendPath(currentPath, source.Name), Reason: reasonSourceNotGroup}
			}
		}
		if sourceError := validator.visit(source, currentPath, false); sourceError != nil {
			return sourceError
		}
	}
	return nil
}

func validateShape(node *CommandNode, currentPath []string, isRoot bool) error {
	switch node.Kind {
	case KindLeaf:
		if len(node.Children) > 0 {
			return &DataModelViolation{Path: currentPath, Reason: reasonLeafWithChildren}
		}
		if len(node.Sources) > 0 {
			return &DataModelViolation{Path: currentPath, Reason: reasonLeafWithSources}
		}
	case KindGroup:
		if len(node.Sources) > 0 {
			return &DataModelViolation{Path: currentPath, Reason: reasonGroupWithSources}
		}
	case KindCollection:
		if !isRoot {
			return &DataModelViolation{Path: currentPath, Reason: reasonNestedCollection}
		}
		if len(node.Children) > 0 {
			return &DataModelViolation{Path: currentPath, Reason: reasonCollectionChildren}
		}
		if len(node.Sources) == 0 {
			return &DataModelViolation{Path: currentPath, Reason: reasonCollectionEmpty}
		}
	default:
		return &DataModelViolation{Path: currentPath, Reason: reasonUnknownKind}
	}
	return nil
}

// ValidateParameters checks the parameter invariants of a single node.
func ValidateParameters(node *CommandNode, path []string) error {
	for _, parameter := range node.Parameters {
		hasFlags := len(parameter.Flags) > 0
		switch parameter.Kind {
		case ParameterArgument:
			if strings.TrimSpace(parameter.DisplayName) == "" && !hasFlags {
				return &DataModelViolation{Path: path, Reason: reasonArgumentWithoutName}
			}
		default:
			if !hasFlags {
				return &DataModelViolation{Path: appendPath(path, parameter.DisplayName), Reason: reasonOptionWithoutFlags}
			}
		}
	}
	return nil
}

func appendPath(path []string, segment string) []string {
	extended := make([]string, 0, len(path)+1)
	extended = append(extended, path...)
	return append(extended, segment)
}
