package params_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/temirov/clidoc/internal/model"
	"github.com/temirov/clidoc/internal/params"
)

func stringPointer(value string) *string {
	return &value
}

func TestExtractOrdersArgumentsBeforeOptionsInDeclarationOrder(t *testing.T) {
	node := &model.CommandNode{
		Name: "copy",
		Kind: model.KindLeaf,
		Parameters: []model.Parameter{
			{DisplayName: "verbose", Kind: model.ParameterOption, Flags: []string{"-v", "--verbose"}, IsFlag: true},
			{DisplayName: "source", Kind: model.ParameterArgument, Required: true},
			{DisplayName: "alpha", Kind: model.ParameterOption, Flags: []string{"--alpha"}},
			{DisplayName: "destination", Kind: model.ParameterArgument, Required: true},
			{DisplayName: "secret", Kind: model.ParameterOption, Flags: []string{"--secret"}, Hidden: true},
		},
	}
	extracted, err := params.Extract(node, []string{"copy"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var names []string
	for _, parameter := range extracted {
		names = append(names, parameter.Name)
	}
	expected := []string{"source", "destination", "verbose", "alpha"}
	if diff := cmp.Diff(expected, names); diff != "" {
		t.Fatalf("unexpected order (-want +got):\n%s", diff)
	}
}

func TestExtractBuildsDisplayStrings(t *testing.T) {
	testCases := []struct {
		name              string
		parameter         model.Parameter
		expectedSignature string
		expectedDisplay   string
		expectedReference string
	}{
		{
			name:              "argument with env var",
			parameter:         model.Parameter{DisplayName: "user", Kind: model.ParameterArgument, EnvVar: "USER", Required: true},
			expectedSignature: "USER",
			expectedDisplay:   "USER [env var: USER] [required]",
			expectedReference: "USER",
		},
		{
			name:              "variadic argument",
			parameter:         model.Parameter{DisplayName: "paths", Kind: model.ParameterArgument, Multiple: true},
			expectedSignature: "PATHS...",
			expectedDisplay:   "PATHS...",
			expectedReference: "PATHS...",
		},
		{
			name:              "option with value",
			parameter:         model.Parameter{DisplayName: "param", Kind: model.ParameterOption, Flags: []string{"--param"}, EnvVar: "PARAM"},
			expectedSignature: "--param <param>",
			expectedDisplay:   "--param <param> [env var: PARAM]",
			expectedReference: "--param",
		},
		{
			name:              "option with metavar and default",
			parameter:         model.Parameter{DisplayName: "another", Kind: model.ParameterOption, Flags: []string{"-a", "--another"}, Metavar: "FOO", Default: stringPointer("bar")},
			expectedSignature: "-a, --another <FOO>",
			expectedDisplay:   "-a, --another <FOO> (default: bar)",
			expectedReference: "--another",
		},
		{
			name:              "boolean switch",
			parameter:         model.Parameter{DisplayName: "debug", Kind: model.ParameterOption, Flags: []string{"--debug"}, IsFlag: true, Required: true},
			expectedSignature: "--debug",
			expectedDisplay:   "--debug [required]",
			expectedReference: "--debug",
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			node := &model.CommandNode{Name: "cmd", Kind: model.KindLeaf, Parameters: []model.Parameter{testCase.parameter}}
			extracted, err := params.Extract(node, []string{"cmd"})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(extracted) != 1 {
				t.Fatalf("expected one parameter, got %d", len(extracted))
			}
			rendered := extracted[0]
			if rendered.Signature != testCase.expectedSignature {
				t.Fatalf("expected signature %q, got %q", testCase.expectedSignature, rendered.Signature)
			}
			if rendered.Display != testCase.expectedDisplay {
				t.Fatalf("expected display %q, got %q", testCase.expectedDisplay, rendered.Display)
			}
			if rendered.Reference != testCase.expectedReference {
				t.Fatalf("expected reference %q, got %q", testCase.expectedReference, rendered.Reference)
			}
		})
	}
}

func TestExtractFailsFastOnNamelessArgument(t *testing.T) {
	node := &model.CommandNode{
		Name:       "hello",
		Kind:       model.KindLeaf,
		Parameters: []model.Parameter{{Kind: model.ParameterArgument}},
	}
	_, err := params.Extract(node, []string{"greet", "hello"})
	var violation *model.DataModelViolation
	if !errors.As(err, &violation) {
		t.Fatalf("expected DataModelViolation, got %v", err)
	}
	if diff := cmp.Diff([]string{"greet", "hello"}, violation.Path); diff != "" {
		t.Fatalf("unexpected violation path (-want +got):\n%s", diff)
	}
}
