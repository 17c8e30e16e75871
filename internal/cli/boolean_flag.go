package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	booleanFlagTypeName        = "bool"
	booleanFlagTrueLiteral     = "true"
	booleanFlagAcceptedValues  = "true, false, yes, no, on, off, 1, 0"
	invalidBooleanValueFormat  = "invalid boolean value %q for --%s; accepted values: %s"
	unsetOptionalBooleanString = ""
)

// booleanLiterals are the spellings accepted by every clidoc boolean flag. Configuration files
// accept the same words through YAML.
var booleanLiterals = map[string]bool{
	"true":  true,
	"t":     true,
	"1":     true,
	"yes":   true,
	"y":     true,
	"on":    true,
	"false": false,
	"f":     false,
	"0":     false,
	"no":    false,
	"n":     false,
	"off":   false,
}

func parseBooleanLiteral(input string) (bool, bool) {
	parsed, known := booleanLiterals[strings.ToLower(strings.TrimSpace(input))]
	return parsed, known
}

// booleanFlagValue is a pflag.Value that accepts every booleanLiterals spelling. The flag's
// storage is reached through assign and describe, so one type serves plain and optional flags.
type booleanFlagValue struct {
	flagName string
	assign   func(bool)
	describe func() string
}

func (value *booleanFlagValue) Set(input string) error {
	if strings.TrimSpace(input) == "" {
		input = booleanFlagTrueLiteral
	}
	parsed, known := parseBooleanLiteral(input)
	if !known {
		return fmt.Errorf(invalidBooleanValueFormat, input, value.flagName, booleanFlagAcceptedValues)
	}
	value.assign(parsed)
	return nil
}

func (value *booleanFlagValue) String() string {
	return value.describe()
}

func (value *booleanFlagValue) Type() string {
	return booleanFlagTypeName
}

// registerBooleanFlag binds a tolerant boolean flag to target, which starts at defaultValue.
func registerBooleanFlag(flagSet *pflag.FlagSet, target *bool, name string, defaultValue bool, usage string) {
	*target = defaultValue
	addBooleanFlag(flagSet, name, usage, strconv.FormatBool(defaultValue), &booleanFlagValue{
		flagName: name,
		assign:   func(parsed bool) { *target = parsed },
		describe: func() string { return strconv.FormatBool(*target) },
	})
}

// registerOptionalBooleanFlag binds a tolerant boolean flag whose absence stays observable:
// target remains nil until the flag is given, so configuration defaults can fill it.
func registerOptionalBooleanFlag(flagSet *pflag.FlagSet, target **bool, name string, usage string) {
	*target = nil
	addBooleanFlag(flagSet, name, usage, unsetOptionalBooleanString, &booleanFlagValue{
		flagName: name,
		assign: func(parsed bool) {
			*target = &parsed
		},
		describe: func() string {
			if *target == nil {
				return unsetOptionalBooleanString
			}
			return strconv.FormatBool(**target)
		},
	})
}

func addBooleanFlag(flagSet *pflag.FlagSet, name string, usage string, defaultText string, value *booleanFlagValue) {
	flagSet.Var(value, name, usage)
	flag := flagSet.Lookup(name)
	flag.DefValue = defaultText
	flag.NoOptDefVal = booleanFlagTrueLiteral
}

// normalizeBooleanFlagArguments joins "--flag value" into "--flag=value" for clidoc's boolean
// flags when value is a boolean literal. pflag would otherwise read value as a positional
// argument, because a flag with NoOptDefVal never consumes the next word. Anything that is not
// a literal, such as a definition reference, is left for cobra.
func normalizeBooleanFlagArguments(command *cobra.Command, arguments []string) []string {
	booleanFlags := map[string]struct{}{}
	collectBooleanFlagNames(command, booleanFlags)
	if len(booleanFlags) == 0 {
		return arguments
	}

	normalized := make([]string, 0, len(arguments))
	for index := 0; index < len(arguments); index++ {
		argument := arguments[index]
		if argument == "--" {
			return append(normalized, arguments[index:]...)
		}
		flagName, isLongFlag := strings.CutPrefix(argument, "--")
		_, isBooleanFlag := booleanFlags[flagName]
		if isLongFlag && isBooleanFlag && index+1 < len(arguments) {
			if _, known := parseBooleanLiteral(arguments[index+1]); known {
				normalized = append(normalized, argument+"="+arguments[index+1])
				index++
				continue
			}
		}
		normalized = append(normalized, argument)
	}
	return normalized
}

// collectBooleanFlagNames gathers the boolean flags of command and all of its descendants.
func collectBooleanFlagNames(command *cobra.Command, target map[string]struct{}) {
	collect := func(flag *pflag.Flag) {
		if flag.Value.Type() == booleanFlagTypeName {
			target[flag.Name] = struct{}{}
		}
	}
	command.PersistentFlags().VisitAll(collect)
	command.Flags().VisitAll(collect)
	for _, child := range command.Commands() {
		collectBooleanFlagNames(child, target)
	}
}
