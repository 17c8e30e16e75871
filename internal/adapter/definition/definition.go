// Package definition reads command hierarchies from YAML definition files.
//
// A definition file describes one root command:
//
//	name: greet
//	summary: A sample command group.
//	commands:
//	  - name: hello
//	    parameters:
//	      - name: user
//	        kind: argument
//	        envvar: USER
//
// A root that lists sources instead of commands becomes a collection.
package definition

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/temirov/clidoc/internal/model"
)

const (
	kindLeafName       = "leaf"
	kindGroupName      = "group"
	kindCollectionName = "collection"
	kindOptionName     = "option"
	kindArgumentName   = "argument"

	unknownNodeKindFormat      = "unknown command kind %q"
	unknownParameterKindFormat = "unknown parameter kind %q for %q"
	emptyDocumentMessage       = "definition is empty"
)

// CommandDefinition is the YAML shape of one command node.
type CommandDefinition struct {
	Name        string                `yaml:"name"`
	Kind        string                `yaml:"kind,omitempty"`
	Summary     string                `yaml:"summary,omitempty"`
	Description string                `yaml:"description,omitempty"`
	Epilog      string                `yaml:"epilog,omitempty"`
	Usage       string                `yaml:"usage,omitempty"`
	Deprecated  bool                  `yaml:"deprecated,omitempty"`
	Hidden      bool                  `yaml:"hidden,omitempty"`
	Parameters  []ParameterDefinition `yaml:"parameters,omitempty"`
	Commands    []CommandDefinition   `yaml:"commands,omitempty"`
	Sources     []CommandDefinition   `yaml:"sources,omitempty"`
}

// ParameterDefinition is the YAML shape of one option or argument.
type ParameterDefinition struct {
	Name     string   `yaml:"name"`
	Kind     string   `yaml:"kind,omitempty"`
	Flags    []string `yaml:"flags,omitempty"`
	Metavar  string   `yaml:"metavar,omitempty"`
	Required bool     `yaml:"required,omitempty"`
	Default  *string  `yaml:"default,omitempty"`
	EnvVar   string   `yaml:"envvar,omitempty"`
	Help     string   `yaml:"help,omitempty"`
	Multiple bool     `yaml:"multiple,omitempty"`
	IsFlag   bool     `yaml:"is_flag,omitempty"`
	Hidden   bool     `yaml:"hidden,omitempty"`
}

// Decode reads one definition document. Unknown keys are rejected.
func Decode(reader io.Reader) (CommandDefinition, error) {
	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)
	var definition CommandDefinition
	if decodeError := decoder.Decode(&definition); decodeError != nil {
		if errors.Is(decodeError, io.EOF) {
			return CommandDefinition{}, errors.New(emptyDocumentMessage)
		}
		return CommandDefinition{}, decodeError
	}
	return definition, nil
}

// Parse decodes data and converts it into a validated command node.
func Parse(data []byte) (*model.CommandNode, error) {
	definition, decodeError := Decode(bytes.NewReader(data))
	if decodeError != nil {
		return nil, decodeError
	}
	root, convertError := definition.Node(nil)
	if convertError != nil {
		return nil, convertError
	}
	if validationError := model.Validate(root); validationError != nil {
		return nil, validationError
	}
	return root, nil
}

// Node converts the definition into a command node. parentPath locates the definition in
// violation reports. Without an explicit kind, a definition with sources is a collection,
// one with commands is a group, and any other is a leaf.
func (definition CommandDefinition) Node(parentPath []string) (*model.CommandNode, error) {
	currentPath := append(append([]string(nil), parentPath...), definition.Name)
	kind, kindError := definition.nodeKind()
	if kindError != nil {
		return nil, &model.DataModelViolation{Path: currentPath, Reason: kindError.Error()}
	}

	node := &model.CommandNode{
		Name:        strings.TrimSpace(definition.Name),
		Kind:        kind,
		Summary:     definition.Summary,
		Description: definition.Description,
		Epilog:      definition.Epilog,
		Usage:       definition.Usage,
		Deprecated:  definition.Deprecated,
		Hidden:      definition.Hidden,
	}
	for _, parameterDefinition := range definition.Parameters {
		parameter, parameterError := parameterDefinition.parameter()
		if parameterError != nil {
			return nil, &model.DataModelViolation{Path: currentPath, Reason: parameterError.Error()}
		}
		node.Parameters = append(node.Parameters, parameter)
	}
	for _, childDefinition := range definition.Commands {
		child, childError := childDefinition.Node(currentPath)
		if childError != nil {
			return nil, childError
		}
		node.Children = append(node.Children, child)
	}
	for _, sourceDefinition := range definition.Sources {
		source, sourceError := sourceDefinition.Node(currentPath)
		if sourceError != nil {
			return nil, sourceError
		}
		node.Sources = append(node.Sources, source)
	}
	return node, nil
}

func (definition CommandDefinition) nodeKind() (model.NodeKind, error) {
	switch strings.ToLower(strings.TrimSpace(definition.Kind)) {
	case "":
		switch {
		case len(definition.Sources) > 0:
			return model.KindCollection, nil
		case len(definition.Commands) > 0:
			return model.KindGroup, nil
		default:
			return model.KindLeaf, nil
		}
	case kindLeafName:
		return model.KindLeaf, nil
	case kindGroupName:
		return model.KindGroup, nil
	case kindCollectionName:
		return model.KindCollection, nil
	default:
		return model.KindLeaf, fmt.Errorf(unknownNodeKindFormat, definition.Kind)
	}
}

// parameter converts the definition. Without an explicit kind, a parameter with flags is an
// option and one without is an argument.
func (definition ParameterDefinition) parameter() (model.Parameter, error) {
	parameter := model.Parameter{
		DisplayName: strings.TrimSpace(definition.Name),
		Flags:       definition.Flags,
		Metavar:     definition.Metavar,
		Required:    definition.Required,
		Default:     definition.Default,
		EnvVar:      strings.TrimSpace(definition.EnvVar),
		Help:        definition.Help,
		Multiple:    definition.Multiple,
		IsFlag:      definition.IsFlag,
		Hidden:      definition.Hidden,
	}
	switch strings.ToLower(strings.TrimSpace(definition.Kind)) {
	case "":
		parameter.Kind = model.ParameterOption
		if len(definition.Flags) == 0 {
			parameter.Kind = model.ParameterArgument
		}
	case kindOptionName:
		parameter.Kind = model.ParameterOption
	case kindArgumentName:
		parameter.Kind = model.ParameterArgument
	default:
		return model.Parameter{}, fmt.Errorf(unknownParameterKindFormat, definition.Kind, definition.Name)
	}
	return parameter, nil
}
