// Package params turns the parameters declared on a command node into ordered display records.
package params

import (
	"fmt"
	"strings"

	"github.com/temirov/clidoc/internal/model"
)

const (
	// FlagSeparator joins the surface forms of one option.
	FlagSeparator = ", "

	metavarPrefix       = " <"
	metavarSuffix       = ">"
	envVarSuffixFormat  = " [env var: %s]"
	requiredSuffix      = " [required]"
	defaultSuffixPrefix = " (default: "
	defaultSuffixSuffix = ")"
	multipleSuffix      = "..."
	flagPrefix          = "-"
)

// RenderedParameter augments a parameter with the strings a backend needs to display it.
type RenderedParameter struct {
	model.Parameter
	// Name is the identifier used for anchors: the display name, or the first flag without dashes.
	Name string
	// Signature is the flags plus metavar for options, or the argument placeholder.
	Signature string
	// Display is the signature followed by env var, required, and default suffixes.
	Display string
	// Reference is what an environment variable entry points back to: the longest flag of an
	// option or the placeholder of an argument.
	Reference string
}

// IsArgument reports whether the parameter is positional.
func (parameter RenderedParameter) IsArgument() bool {
	return parameter.Kind == model.ParameterArgument
}

// Extract returns the visible parameters of node with arguments first and options second,
// each group in declaration order. path identifies node in violation reports.
func Extract(node *model.CommandNode, path []string) ([]RenderedParameter, error) {
	if node == nil {
		return nil, nil
	}
	if validationError := model.ValidateParameters(node, path); validationError != nil {
		return nil, validationError
	}

	var arguments []RenderedParameter
	var options []RenderedParameter
	for _, parameter := range node.Parameters {
		if parameter.Hidden {
			continue
		}
		rendered := render(parameter)
		if parameter.Kind == model.ParameterArgument {
			arguments = append(arguments, rendered)
			continue
		}
		options = append(options, rendered)
	}

	extracted := make([]RenderedParameter, 0, len(arguments)+len(options))
	extracted = append(extracted, arguments...)
	return append(extracted, options...), nil
}

func render(parameter model.Parameter) RenderedParameter {
	var signature string
	var reference string
	if parameter.Kind == model.ParameterArgument {
		signature = ArgumentPlaceholder(parameter)
		reference = signature
	} else {
		signature = strings.Join(parameter.Flags, FlagSeparator)
		if !parameter.IsFlag {
			signature += metavarPrefix + optionMetavar(parameter) + metavarSuffix
		}
		reference = PrimaryFlag(parameter)
	}

	var display strings.Builder
	display.WriteString(signature)
	if parameter.EnvVar != "" {
		fmt.Fprintf(&display, envVarSuffixFormat, parameter.EnvVar)
	}
	if parameter.Required {
		display.WriteString(requiredSuffix)
	}
	if parameter.Default != nil {
		display.WriteString(defaultSuffixPrefix + *parameter.Default + defaultSuffixSuffix)
	}

	return RenderedParameter{
		Parameter: parameter,
		Name:      identifier(parameter),
		Signature: signature,
		Display:   display.String(),
		Reference: reference,
	}
}

// ArgumentPlaceholder returns the user-facing placeholder of a positional argument.
func ArgumentPlaceholder(parameter model.Parameter) string {
	placeholder := parameter.Metavar
	if placeholder == "" {
		placeholder = strings.ToUpper(strings.TrimSpace(parameter.DisplayName))
	}
	if placeholder == "" && len(parameter.Flags) > 0 {
		placeholder = parameter.Flags[0]
	}
	if parameter.Multiple && !strings.HasSuffix(placeholder, multipleSuffix) {
		placeholder += multipleSuffix
	}
	return placeholder
}

// PrimaryFlag returns the longest surface form of an option, preferring --name over -n.
func PrimaryFlag(parameter model.Parameter) string {
	primary := ""
	for _, flag := range parameter.Flags {
		if len(flag) > len(primary) {
			primary = flag
		}
	}
	return primary
}

func optionMetavar(parameter model.Parameter) string {
	if parameter.Metavar != "" {
		return parameter.Metavar
	}
	if parameter.DisplayName != "" {
		return parameter.DisplayName
	}
	return strings.TrimLeft(PrimaryFlag(parameter), flagPrefix)
}

func identifier(parameter model.Parameter) string {
	if name := strings.TrimSpace(parameter.DisplayName); name != "" {
		return name
	}
	if parameter.Kind == model.ParameterArgument && parameter.Metavar != "" {
		return parameter.Metavar
	}
	return strings.TrimLeft(PrimaryFlag(parameter), flagPrefix)
}
