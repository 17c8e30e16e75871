// Package cli provides the command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/temirov/clidoc/internal/adapter"
	"github.com/temirov/clidoc/internal/adapter/cobratree"
	"github.com/temirov/clidoc/internal/adapter/definition"
	"github.com/temirov/clidoc/internal/build"
	"github.com/temirov/clidoc/internal/config"
	"github.com/temirov/clidoc/internal/render"
	"github.com/temirov/clidoc/internal/services/clipboard"
	"github.com/temirov/clidoc/internal/types"
	"github.com/temirov/clidoc/internal/utils"
)

const (
	versionFlagName           = "version"
	versionTemplate           = "clidoc version: %s\n"
	versionFlagDescription    = "display application version"
	verboseFlagName           = "verbose"
	verboseFlagDescription    = "log debug details"
	configFlagName            = "config"
	configFlagDescription     = "path to a configuration file"
	configEnvironmentVariable = "CLIDOC_CONFIG"
	rootUse                   = "clidoc"
	rootShortDescription      = "clidoc command line interface"
	rootLongDescription       = `clidoc renders reference documentation for hierarchical command line tools.
It reads a command tree from a YAML definition, or documents its own commands, and writes reStructuredText, Markdown, or styled terminal output.
Use render for a single document, build to run the directives listed in the configuration file, and init to create that file.`

	renderUse              = types.CommandRender + " <reference>"
	renderShortDescription = "render documentation for one command tree"
	// renderLongDescription provides detailed help for the render command.
	renderLongDescription = `Render documentation for the command tree named by reference.
A reference is a YAML definition file, optionally followed by :selector to document a nested command, or "self" for clidoc's own commands.
Defaults from the configuration file apply unless a flag overrides them.`
	// renderUsageExample demonstrates render command usage.
	renderUsageExample = `  # Render a definition as reStructuredText with every command in full
  clidoc render cli.yaml --nested full

  # Document one subcommand as Markdown
  clidoc render cli.yaml:remote.add --format markdown -o docs/remote-add.md

  # Preview clidoc's own commands in the terminal
  clidoc render self --format terminal`

	buildUse              = types.CommandBuild
	buildShortDescription = "render every configured directive"
	// buildLongDescription provides detailed help for the build command.
	buildLongDescription = `Render all directives listed in the configuration file.
Directives render concurrently. Output files are written only after every directive succeeds.`
	// buildUsageExample demonstrates build command usage.
	buildUsageExample = `  # Render the directives from .clidoc.yaml
  clidoc build

  # Use another configuration file
  clidoc build --config docs/clidoc.yaml`

	initUse              = types.CommandInit
	initShortDescription = "create a configuration file"
	initLongDescription  = `Write a starter configuration file to the working directory, or to ~/.clidoc with --global.`

	programFlagName            = "prog"
	programFlagDescription     = "program name shown in place of the root command name"
	nestedFlagName             = render.OptionNested
	nestedFlagDescription      = "nesting policy: full, short, or none"
	showNestedFlagName         = render.OptionShowNested
	showNestedFlagDescription  = "deprecated, use --nested full or --nested short"
	commandsFlagName           = render.OptionCommands
	commandsFlagDescription    = "document only the named top-level commands"
	formatFlagName             = "format"
	formatFlagDescription      = "output format: rst, markdown, or terminal"
	outputFlagName             = "output"
	outputFlagShorthand        = "o"
	outputFlagDescription      = "write output to a file instead of stdout"
	copyFlagName               = "copy"
	copyFlagDescription        = "copy the rendered output to the clipboard"
	concurrencyFlagName        = "concurrency"
	concurrencyFlagDescription = "maximum directives rendered at once, 0 uses the CPU count"
	globalFlagName             = "global"
	globalFlagDescription      = "write the configuration to the global directory"
	forceFlagName              = "force"
	forceFlagDescription       = "overwrite an existing configuration file"

	workingDirectoryErrorFormat    = "unable to determine working directory: %w"
	registerSelfErrorFormat        = "register %s command tree: %w"
	clipboardCopyErrorFormat       = "copy output to clipboard: %w"
	clipboardServiceMissingMessage = "clipboard service is not configured"
	clipboardUnavailableMessage    = "clipboard is unavailable; output was not copied"
	noDirectivesMessage            = "no directives configured; run clidoc init or add directives to the configuration file"
	configurationWrittenFormat     = "configuration written to %s\n"
	builtMessage                   = "built documentation"
	directivesField                = "directives"
	referenceField                 = "reference"
	warningKindField               = "kind"
)

// applicationDependencies carries the collaborators shared by every command.
type applicationDependencies struct {
	logger    *zap.Logger
	logLevel  *zap.AtomicLevel
	clipboard clipboard.Copier
	stdout    io.Writer
	// workingDirectory anchors configuration lookup, definition references, and output paths.
	// Empty uses the process working directory.
	workingDirectory string
}

func (dependencies applicationDependencies) withDefaults() applicationDependencies {
	if dependencies.logger == nil {
		dependencies.logger = zap.NewNop()
	}
	if dependencies.stdout == nil {
		dependencies.stdout = os.Stdout
	}
	return dependencies
}

func (dependencies applicationDependencies) resolveWorkingDirectory() (string, error) {
	if dependencies.workingDirectory != "" {
		return dependencies.workingDirectory, nil
	}
	workingDirectory, workingDirectoryError := os.Getwd()
	if workingDirectoryError != nil {
		return "", fmt.Errorf(workingDirectoryErrorFormat, workingDirectoryError)
	}
	return workingDirectory, nil
}

// rootOptions stores the persistent flags shared by subcommands.
type rootOptions struct {
	showVersion       bool
	verbose           bool
	configurationPath string
}

func (options *rootOptions) configurationFile() string {
	if path := strings.TrimSpace(options.configurationPath); path != "" {
		return path
	}
	return strings.TrimSpace(os.Getenv(configEnvironmentVariable))
}

// Execute runs the clidoc application.
func Execute(logger *zap.Logger, logLevel zap.AtomicLevel) error {
	rootCommand := createRootCommand(applicationDependencies{
		logger:    logger,
		logLevel:  &logLevel,
		clipboard: clipboard.NewService(),
		stdout:    os.Stdout,
	})
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.ExecuteContext(context.Background())
}

// createRootCommand builds the root Cobra command.
func createRootCommand(dependencies applicationDependencies) *cobra.Command {
	dependencies = dependencies.withDefaults()
	options := &rootOptions{}

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if options.showVersion {
				_, printError := fmt.Fprintf(dependencies.stdout, versionTemplate, utils.GetApplicationVersion())
				return printError
			}
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if options.verbose && dependencies.logLevel != nil {
				dependencies.logLevel.SetLevel(zap.DebugLevel)
			}
		},
	}
	rootCommand.SetOut(dependencies.stdout)
	registerBooleanFlag(rootCommand.Flags(), &options.showVersion, versionFlagName, false, versionFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &options.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.PersistentFlags().StringVar(&options.configurationPath, configFlagName, "", configFlagDescription)
	_ = rootCommand.PersistentFlags().SetAnnotation(configFlagName, cobratree.EnvVarAnnotation, []string{configEnvironmentVariable})
	rootCommand.AddCommand(
		createRenderCommand(dependencies, options),
		createBuildCommand(dependencies, options),
		createInitCommand(dependencies),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// renderFlags stores the render command's flag values.
type renderFlags struct {
	program    string
	nested     string
	showNested *bool
	commands   []string
	format     string
	output     string
	copy       *bool
}

func (flags *renderFlags) register(flagSet *pflag.FlagSet) {
	flagSet.StringVar(&flags.program, programFlagName, "", programFlagDescription)
	flagSet.StringVar(&flags.nested, nestedFlagName, "", nestedFlagDescription)
	registerOptionalBooleanFlag(flagSet, &flags.showNested, showNestedFlagName, showNestedFlagDescription)
	flagSet.StringSliceVar(&flags.commands, commandsFlagName, nil, commandsFlagDescription)
	flagSet.StringVar(&flags.format, formatFlagName, "", formatFlagDescription)
	flagSet.StringVarP(&flags.output, outputFlagName, outputFlagShorthand, "", outputFlagDescription)
	registerOptionalBooleanFlag(flagSet, &flags.copy, copyFlagName, copyFlagDescription)
}

// directive converts the flags into a directive; flags left unset stay empty so configuration
// defaults can fill them.
func (flags *renderFlags) directive(flagSet *pflag.FlagSet, reference string) config.DirectiveConfiguration {
	directive := config.DirectiveConfiguration{
		Reference:  reference,
		Program:    flags.program,
		Nested:     flags.nested,
		ShowNested: flags.showNested,
		Format:     flags.format,
		Output:     flags.output,
		Copy:       flags.copy,
	}
	if flagSet.Changed(commandsFlagName) {
		directive.Commands = append([]string{}, flags.commands...)
	}
	return directive
}

// createRenderCommand returns the render subcommand.
func createRenderCommand(dependencies applicationDependencies, options *rootOptions) *cobra.Command {
	flags := &renderFlags{}

	renderCommand := &cobra.Command{
		Use:     renderUse,
		Short:   renderShortDescription,
		Long:    renderLongDescription,
		Example: renderUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			return runRender(command.Context(), dependencies, options, flags.directive(command.Flags(), arguments[0]))
		},
	}

	flags.register(renderCommand.Flags())
	return renderCommand
}

// createBuildCommand returns the build subcommand.
func createBuildCommand(dependencies applicationDependencies, options *rootOptions) *cobra.Command {
	var concurrency int

	buildCommand := &cobra.Command{
		Use:     buildUse,
		Short:   buildShortDescription,
		Long:    buildLongDescription,
		Example: buildUsageExample,
		Args:    cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			return runBuild(command.Context(), dependencies, options, concurrency)
		},
	}

	buildCommand.Flags().IntVar(&concurrency, concurrencyFlagName, 0, concurrencyFlagDescription)
	return buildCommand
}

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies applicationDependencies) *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, initError := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: dependencies.workingDirectory,
			})
			if initError != nil {
				return initError
			}
			_, printError := fmt.Fprintf(dependencies.stdout, configurationWrittenFormat, path)
			return printError
		},
	}

	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// runRender renders one directive assembled from configuration defaults and flags.
func runRender(ctx context.Context, dependencies applicationDependencies, options *rootOptions, flagDirective config.DirectiveConfiguration) error {
	workingDirectory, workingDirectoryError := dependencies.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}
	applicationConfiguration, configurationError := loadConfiguration(workingDirectory, options)
	if configurationError != nil {
		return configurationError
	}

	renderConfiguration := config.ApplicationConfiguration{
		Defaults:   applicationConfiguration.Defaults,
		Directives: []config.DirectiveConfiguration{flagDirective},
	}
	directives, directivesError := renderConfiguration.BuildDirectives()
	if directivesError != nil {
		return directivesError
	}

	builder, builderError := newBuilder(dependencies, workingDirectory, 1)
	if builderError != nil {
		return builderError
	}
	results, buildError := builder.Build(ctx, directives)
	if buildError != nil {
		return buildError
	}
	logWarnings(dependencies.logger, results)

	if !applicationConfiguration.Defaults.Merge(flagDirective).CopyEnabled() {
		return nil
	}
	if dependencies.clipboard == nil {
		return errors.New(clipboardServiceMissingMessage)
	}
	copyError := dependencies.clipboard.Copy(results[0].Content)
	if errors.Is(copyError, clipboard.ErrUnavailable) {
		dependencies.logger.Warn(clipboardUnavailableMessage, zap.String(referenceField, flagDirective.Reference))
		return nil
	}
	if copyError != nil {
		return fmt.Errorf(clipboardCopyErrorFormat, copyError)
	}
	return nil
}

// runBuild renders every directive from the configuration file.
func runBuild(ctx context.Context, dependencies applicationDependencies, options *rootOptions, concurrency int) error {
	workingDirectory, workingDirectoryError := dependencies.resolveWorkingDirectory()
	if workingDirectoryError != nil {
		return workingDirectoryError
	}
	applicationConfiguration, configurationError := loadConfiguration(workingDirectory, options)
	if configurationError != nil {
		return configurationError
	}
	directives, directivesError := applicationConfiguration.BuildDirectives()
	if directivesError != nil {
		return directivesError
	}
	if len(directives) == 0 {
		return errors.New(noDirectivesMessage)
	}

	builder, builderError := newBuilder(dependencies, workingDirectory, concurrency)
	if builderError != nil {
		return builderError
	}
	results, buildError := builder.Build(ctx, directives)
	if buildError != nil {
		return buildError
	}
	logWarnings(dependencies.logger, results)
	dependencies.logger.Info(builtMessage, zap.Int(directivesField, len(results)))
	return nil
}

func loadConfiguration(workingDirectory string, options *rootOptions) (config.ApplicationConfiguration, error) {
	return config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: workingDirectory,
		ExplicitFilePath: options.configurationFile(),
	})
}

// newResolver routes "self" to clidoc's own command tree and YAML references to definition files
// under workingDirectory.
func newResolver(dependencies applicationDependencies, workingDirectory string) (adapter.Resolver, error) {
	registry := cobratree.NewRegistry()
	selfConstructor := func() *cobra.Command {
		return createRootCommand(dependencies)
	}
	if registerError := registry.Register(types.ReferenceSelf, selfConstructor); registerError != nil {
		return nil, fmt.Errorf(registerSelfErrorFormat, types.ReferenceSelf, registerError)
	}
	return adapter.NewDispatcher(registry, definition.NewLoader(workingDirectory)), nil
}

func newBuilder(dependencies applicationDependencies, workingDirectory string, concurrency int) (*build.Builder, error) {
	resolver, resolverError := newResolver(dependencies, workingDirectory)
	if resolverError != nil {
		return nil, resolverError
	}
	return &build.Builder{
		Resolver:      resolver,
		Concurrency:   concurrency,
		Stdout:        dependencies.stdout,
		BaseDirectory: workingDirectory,
		Logger:        dependencies.logger,
	}, nil
}

func logWarnings(logger *zap.Logger, results []build.Result) {
	for _, result := range results {
		for _, warning := range result.Warnings {
			logger.Warn(
				warning.Message,
				zap.String(warningKindField, string(warning.Kind)),
				zap.String(referenceField, result.Directive.Reference),
			)
		}
	}
}
