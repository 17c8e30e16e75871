// Package cobratree converts cobra command trees into command nodes.
package cobratree

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/temirov/clidoc/internal/model"
)

const (
	// EnvVarAnnotation is the flag annotation naming the environment variable that
	// provides a default for the flag.
	EnvVarAnnotation = "clidoc_envvar"

	helpCommandName       = "help"
	completionCommandName = "completion"
	helpFlagName          = "help"
	longFlagPrefix        = "--"
	shortFlagPrefix       = "-"
	multipleMarker        = "..."
	annotationTrueValue   = "true"

	unknownReferenceReason   = "no command is registered under this name"
	nilCommandReason         = "constructor returned no command"
	emptyNameErrorMessage    = "command name is empty"
	nilConstructorMessage    = "constructor for %q is nil"
	duplicateNameErrorFormat = "command %q is already registered"
	cycleReason              = "command graph contains a cycle"
	nilChildReason           = "nil command"
)

// Constructor builds a fresh cobra command tree.
type Constructor func() *cobra.Command

// Registry maps reference names to cobra command constructors.
type Registry struct {
	mutex        sync.RWMutex
	constructors map[string]Constructor
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{constructors: map[string]Constructor{}}
}

// Register associates name with constructor.
func (registry *Registry) Register(name string, constructor Constructor) error {
	trimmedName := strings.TrimSpace(name)
	if trimmedName == "" {
		return fmt.Errorf(emptyNameErrorMessage)
	}
	if constructor == nil {
		return fmt.Errorf(nilConstructorMessage, trimmedName)
	}
	registry.mutex.Lock()
	defer registry.mutex.Unlock()
	if _, exists := registry.constructors[trimmedName]; exists {
		return fmt.Errorf(duplicateNameErrorFormat, trimmedName)
	}
	registry.constructors[trimmedName] = constructor
	return nil
}

// Names returns the registered names in lexical order.
func (registry *Registry) Names() []string {
	registry.mutex.RLock()
	defer registry.mutex.RUnlock()
	names := make([]string, 0, len(registry.constructors))
	for name := range registry.constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Resolve builds the command registered under reference and converts it.
func (registry *Registry) Resolve(ctx context.Context, reference string) (*model.CommandNode, error) {
	if contextError := ctx.Err(); contextError != nil {
		return nil, &model.ResolutionError{Reference: reference, Reason: contextError.Error()}
	}
	registry.mutex.RLock()
	constructor, found := registry.constructors[strings.TrimSpace(reference)]
	registry.mutex.RUnlock()
	if !found {
		return nil, &model.ResolutionError{Reference: reference, Reason: unknownReferenceReason}
	}
	command := constructor()
	if command == nil {
		return nil, &model.ResolutionError{Reference: reference, Reason: nilCommandReason}
	}
	return Convert(command)
}

// Convert turns command and its subcommands into a validated command node.
// The built-in help and completion commands and the help flag are not documented.
func Convert(command *cobra.Command) (*model.CommandNode, error) {
	converter := treeConverter{onPath: map[*cobra.Command]struct{}{}}
	root, convertError := converter.convert(command, nil, nil)
	if convertError != nil {
		return nil, convertError
	}
	if validationError := model.Validate(root); validationError != nil {
		return nil, validationError
	}
	return root, nil
}

type treeConverter struct {
	onPath map[*cobra.Command]struct{}
}

// convert walks the tree through the ancestors it has visited rather than through
// Command.Parent, so a malformed tree is reported instead of looping.
func (converter treeConverter) convert(command *cobra.Command, parentPath []string, ancestors []*cobra.Command) (*model.CommandNode, error) {
	if command == nil {
		return nil, &model.DataModelViolation{Path: parentPath, Reason: nilChildReason}
	}
	currentPath := append(append([]string(nil), parentPath...), command.Name())
	if _, cyclic := converter.onPath[command]; cyclic {
		return nil, &model.DataModelViolation{Path: currentPath, Reason: cycleReason}
	}
	converter.onPath[command] = struct{}{}
	defer delete(converter.onPath, command)

	node := &model.CommandNode{
		Name:        command.Name(),
		Kind:        model.KindLeaf,
		Summary:     command.Short,
		Description: command.Long,
		Epilog:      command.Example,
		Deprecated:  command.Deprecated != "",
		Hidden:      command.Hidden,
		Parameters:  append(useArguments(command.Use), flagParameters(command, ancestors)...),
	}

	childAncestors := append(append([]*cobra.Command(nil), ancestors...), command)
	for _, child := range command.Commands() {
		if isBuiltinCommand(child) {
			continue
		}
		childNode, childError := converter.convert(child, currentPath, childAncestors)
		if childError != nil {
			return nil, childError
		}
		node.Children = append(node.Children, childNode)
	}
	if len(node.Children) > 0 {
		node.Kind = model.KindGroup
	}
	return node, nil
}

func isBuiltinCommand(command *cobra.Command) bool {
	switch command.Name() {
	case helpCommandName, completionCommandName:
		return true
	default:
		return false
	}
}

// useArguments derives positional arguments from the tokens following the command name
// in a cobra Use line: <name> is required, [name] is optional, and a trailing ... accepts
// several values. The conventional [flags] and [command] placeholders are skipped.
func useArguments(use string) []model.Parameter {
	fields := strings.Fields(use)
	if len(fields) < 2 {
		return nil
	}
	var arguments []model.Parameter
	for _, token := range fields[1:] {
		if strings.HasPrefix(token, shortFlagPrefix) {
			continue
		}
		required := true
		name := token
		switch {
		case strings.HasPrefix(name, "[") && strings.HasSuffix(name, "]"):
			required = false
			name = strings.TrimSuffix(strings.TrimPrefix(name, "["), "]")
		case strings.HasPrefix(name, "<") && strings.HasSuffix(strings.TrimSuffix(name, multipleMarker), ">"):
			name = strings.TrimPrefix(name, "<")
			name = strings.Replace(name, ">", "", 1)
		}
		multiple := strings.HasSuffix(name, multipleMarker)
		name = strings.TrimSuffix(name, multipleMarker)
		switch strings.ToLower(name) {
		case "", "flags", "command":
			continue
		}
		arguments = append(arguments, model.Parameter{
			DisplayName: name,
			Kind:        model.ParameterArgument,
			Required:    required,
			Multiple:    multiple,
		})
	}
	return arguments
}

// flagParameters returns the flags command declares itself, persistent ones first, in the
// order pflag reports them: lexical by default, declaration order when SortFlags is off.
// Flags inherited from an ancestor are documented on that ancestor. Hidden
// and deprecated flags are kept but marked hidden.
func flagParameters(command *cobra.Command, ancestors []*cobra.Command) []model.Parameter {
	seen := map[string]struct{}{}
	var ownFlags []*pflag.Flag
	collect := func(flag *pflag.Flag) {
		if flag.Name == helpFlagName || isInherited(flag, ancestors) {
			return
		}
		if _, duplicate := seen[flag.Name]; duplicate {
			return
		}
		seen[flag.Name] = struct{}{}
		ownFlags = append(ownFlags, flag)
	}
	command.PersistentFlags().VisitAll(collect)
	command.Flags().VisitAll(collect)

	parameters := make([]model.Parameter, 0, len(ownFlags))
	for _, flag := range ownFlags {
		parameters = append(parameters, flagParameter(flag))
	}
	return parameters
}

func isInherited(flag *pflag.Flag, ancestors []*cobra.Command) bool {
	for _, ancestor := range ancestors {
		if ancestor.PersistentFlags().Lookup(flag.Name) == flag {
			return true
		}
	}
	return false
}

func flagParameter(flag *pflag.Flag) model.Parameter {
	valueName, usage := pflag.UnquoteUsage(flag)
	flags := []string{longFlagPrefix + flag.Name}
	if flag.Shorthand != "" && flag.ShorthandDeprecated == "" {
		flags = []string{shortFlagPrefix + flag.Shorthand, longFlagPrefix + flag.Name}
	}
	valueType := flag.Value.Type()
	parameter := model.Parameter{
		DisplayName: flag.Name,
		Kind:        model.ParameterOption,
		Flags:       flags,
		Metavar:     valueName,
		Help:        usage,
		Required:    hasTrueAnnotation(flag, cobra.BashCompOneRequiredFlag),
		EnvVar:      firstAnnotation(flag, EnvVarAnnotation),
		IsFlag:      flag.NoOptDefVal != "",
		Multiple:    strings.HasSuffix(valueType, "Slice") || strings.HasSuffix(valueType, "Array"),
		Hidden:      flag.Hidden || flag.Deprecated != "",
	}
	if !isZeroDefault(flag.DefValue) {
		defaultValue := flag.DefValue
		parameter.Default = &defaultValue
	}
	return parameter
}

func hasTrueAnnotation(flag *pflag.Flag, key string) bool {
	for _, value := range flag.Annotations[key] {
		if value == annotationTrueValue {
			return true
		}
	}
	return false
}

func firstAnnotation(flag *pflag.Flag, key string) string {
	values := flag.Annotations[key]
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}

func isZeroDefault(value string) bool {
	switch value {
	case "", "false", "0", "[]", "<nil>", "map[]", "0s":
		return true
	default:
		return false
	}
}
