package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/temirov/clidoc/internal/model"
	"github.com/temirov/clidoc/internal/services/clipboard"
	"github.com/temirov/clidoc/internal/utils"
)

const greetDefinition = `name: greet
summary: A sample command group.
commands:
  - name: hello
    summary: Greet a user.
    parameters:
      - name: user
        envvar: USER
        required: true
      - name: greeting
        flags: ["-g", "--greeting"]
        default: Hello
        help: The greeting to use.
  - name: world
    summary: Greet the world.
`

type recordingClipboard struct {
	copied []string
}

func (recorder *recordingClipboard) Copy(text string) error {
	recorder.copied = append(recorder.copied, text)
	return nil
}

type unavailableClipboard struct{}

func (unavailableClipboard) Copy(string) error {
	return clipboard.ErrUnavailable
}

// isolateEnvironment points configuration lookup at empty temporary directories.
func isolateEnvironment(t *testing.T) string {
	t.Helper()
	homeDirectory := t.TempDir()
	t.Setenv("HOME", homeDirectory)
	t.Setenv("USERPROFILE", homeDirectory)
	t.Setenv(configEnvironmentVariable, "")
	workingDirectory := t.TempDir()
	writeFile(t, filepath.Join(workingDirectory, "greet.yaml"), greetDefinition)
	return workingDirectory
}

func writeFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("create directory: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func executeCommand(t *testing.T, dependencies applicationDependencies, arguments ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	dependencies.stdout = &stdout
	rootCommand := createRootCommand(dependencies)
	rootCommand.SetErr(io.Discard)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	executionError := rootCommand.ExecuteContext(context.Background())
	return stdout.String(), executionError
}

func TestRenderDefinitionToStandardOutput(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory},
		"render", "greet.yaml", "--nested", "full", "--format", "markdown")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, expected := range []string{
		"<a id=\"cmd-greet\"></a>\n# greet\n",
		"<a id=\"cmd-greet-hello\"></a>\n## hello\n",
		"greet hello [OPTIONS] USER",
	} {
		if !strings.Contains(output, expected) {
			t.Fatalf("expected output to contain %q, got:\n%s", expected, output)
		}
	}
}

func TestRenderAppliesConfigurationDefaults(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	writeFile(t, filepath.Join(workingDirectory, utils.LocalConfigFileName), "defaults:\n  format: markdown\n  prog: tool\n  nested: none\n")

	output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, "render", "greet.yaml")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(output, "# tool\n") {
		t.Fatalf("expected program name from configuration, got:\n%s", output)
	}
	if strings.Contains(output, "hello") {
		t.Fatalf("expected nesting none to omit subcommands, got:\n%s", output)
	}

	overridden, overrideErr := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory},
		"render", "greet.yaml", "--format", "rst", "--nested", "short")
	if overrideErr != nil {
		t.Fatalf("render error: %v", overrideErr)
	}
	if !strings.Contains(overridden, ".. _cmd-tool:\n") || !strings.Contains(overridden, ".. object:: hello\n") {
		t.Fatalf("expected flags to override configuration, got:\n%s", overridden)
	}
}

func TestRenderSelectsNestedCommand(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, "render", "greet.yaml:hello")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(output, ".. envvar:: USER\n") || strings.Contains(output, "world") {
		t.Fatalf("expected only the hello command, got:\n%s", output)
	}
}

func TestRenderSelfDocumentsClidoc(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, "render", "self")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	for _, expected := range []string{
		".. _cmd-clidoc:\n",
		".. object:: render\n",
		".. object:: build\n",
		".. envvar:: " + configEnvironmentVariable + "\n",
	} {
		if !strings.Contains(output, expected) {
			t.Fatalf("expected output to contain %q, got:\n%s", expected, output)
		}
	}
	if strings.Contains(output, ".. object:: completion") || strings.Contains(output, ".. object:: help") {
		t.Fatalf("expected built-in commands to be omitted, got:\n%s", output)
	}
}

func TestRenderWritesOutputFile(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory},
		"render", "greet.yaml", "-o", filepath.Join("docs", "greet.rst"))
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if output != "" {
		t.Fatalf("expected nothing on stdout, got:\n%s", output)
	}
	content, readErr := os.ReadFile(filepath.Join(workingDirectory, "docs", "greet.rst"))
	if readErr != nil {
		t.Fatalf("read output: %v", readErr)
	}
	if !strings.HasPrefix(string(content), ".. _cmd-greet:\n") {
		t.Fatalf("unexpected file content:\n%s", content)
	}
}

func TestRenderCopiesOutputToClipboard(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	clipboardRecorder := &recordingClipboard{}
	output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory, clipboard: clipboardRecorder},
		"render", "--copy", "greet.yaml")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if len(clipboardRecorder.copied) != 1 || clipboardRecorder.copied[0] != output {
		t.Fatalf("expected clipboard to receive the rendered output, got %v", clipboardRecorder.copied)
	}

	_, withoutCopyErr := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory, clipboard: clipboardRecorder},
		"render", "greet.yaml")
	if withoutCopyErr != nil {
		t.Fatalf("render error: %v", withoutCopyErr)
	}
	if len(clipboardRecorder.copied) != 1 {
		t.Fatalf("expected no copy without --copy, got %d copies", len(clipboardRecorder.copied))
	}
}

func TestRenderWarnsWhenClipboardIsUnavailable(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	core, logs := observer.New(zap.WarnLevel)
	output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory, clipboard: unavailableClipboard{}, logger: zap.New(core)},
		"render", "greet.yaml", "--copy", "yes")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.HasPrefix(output, ".. _cmd-greet:\n") {
		t.Fatalf("expected rendered output on stdout, got:\n%s", output)
	}
	if logs.FilterMessage(clipboardUnavailableMessage).Len() != 1 {
		t.Fatalf("expected a clipboard warning")
	}
}

func TestRenderLogsDeprecatedShowNested(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	core, logs := observer.New(zap.WarnLevel)
	output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory, logger: zap.New(core)},
		"render", "greet.yaml", "--show-nested", "yes")
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(output, ".. _cmd-greet-hello:\n") {
		t.Fatalf("expected show-nested to render subcommands in full, got:\n%s", output)
	}
	deprecations := logs.FilterField(zap.String(warningKindField, string(model.WarningDeprecation)))
	if deprecations.Len() != 1 {
		t.Fatalf("expected one deprecation warning, got %d", deprecations.Len())
	}
}

func TestRenderRejectsInvalidSettings(t *testing.T) {
	testCases := []struct {
		name      string
		arguments []string
		option    string
	}{
		{
			name:      "unknown_command_filter",
			arguments: []string{"render", "greet.yaml", "--commands", "nope"},
			option:    commandsFlagName,
		},
		{
			name:      "conflicting_nesting",
			arguments: []string{"render", "greet.yaml", "--nested", "full", "--show-nested=false"},
			option:    nestedFlagName,
		},
		{
			name:      "unknown_nesting",
			arguments: []string{"render", "greet.yaml", "--nested", "deep"},
			option:    nestedFlagName,
		},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			workingDirectory := isolateEnvironment(t)
			output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, testCase.arguments...)
			var configurationError *model.ConfigurationError
			if !errors.As(err, &configurationError) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
			if configurationError.Option != testCase.option {
				t.Fatalf("expected option %q, got %q", testCase.option, configurationError.Option)
			}
			if output != "" {
				t.Fatalf("expected no partial output, got:\n%s", output)
			}
		})
	}
}

func TestRenderReportsUnresolvableReference(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	_, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, "render", "missing.yaml")
	var resolutionError *model.ResolutionError
	if !errors.As(err, &resolutionError) {
		t.Fatalf("expected ResolutionError, got %v", err)
	}
}

func TestBuildRendersConfiguredDirectives(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	writeFile(t, filepath.Join(workingDirectory, utils.LocalConfigFileName), `defaults:
  format: markdown
directives:
  - reference: greet.yaml
    output: docs/greet.md
  - reference: greet.yaml:hello
    format: rst
    output: docs/hello.rst
`)
	core, logs := observer.New(zap.InfoLevel)
	_, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory, logger: zap.New(core)}, "build", "--concurrency", "2")
	if err != nil {
		t.Fatalf("build error: %v", err)
	}
	markdown, markdownErr := os.ReadFile(filepath.Join(workingDirectory, "docs", "greet.md"))
	if markdownErr != nil || !strings.Contains(string(markdown), "# greet\n") {
		t.Fatalf("expected markdown output, got %q (%v)", markdown, markdownErr)
	}
	restructuredText, rstErr := os.ReadFile(filepath.Join(workingDirectory, "docs", "hello.rst"))
	if rstErr != nil || !strings.Contains(string(restructuredText), ".. envvar:: USER\n") {
		t.Fatalf("expected rst output, got %q (%v)", restructuredText, rstErr)
	}
	if logs.FilterMessage(builtMessage).Len() != 1 {
		t.Fatalf("expected a build summary log entry")
	}
}

func TestBuildUsesExplicitConfigurationFile(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	writeFile(t, filepath.Join(workingDirectory, "docs", "clidoc.yaml"), "directives:\n  - reference: greet.yaml\n    output: greet.rst\n")
	t.Setenv(configEnvironmentVariable, filepath.Join("docs", "clidoc.yaml"))
	if _, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, "build"); err != nil {
		t.Fatalf("build error: %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(workingDirectory, "greet.rst")); statErr != nil {
		t.Fatalf("expected output file: %v", statErr)
	}
}

func TestBuildWithoutDirectivesFails(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	_, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, "build")
	if err == nil || err.Error() != noDirectivesMessage {
		t.Fatalf("expected %q, got %v", noDirectivesMessage, err)
	}
}

func TestInitWritesConfiguration(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, "init")
	if err != nil {
		t.Fatalf("init error: %v", err)
	}
	expectedPath := filepath.Join(workingDirectory, utils.LocalConfigFileName)
	if !strings.Contains(output, expectedPath) {
		t.Fatalf("expected output to name %s, got %q", expectedPath, output)
	}
	if _, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, "init"); err == nil {
		t.Fatalf("expected second init without --force to fail")
	}
	if _, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, "init", "--force"); err != nil {
		t.Fatalf("init --force error: %v", err)
	}
}

func TestRootFlags(t *testing.T) {
	workingDirectory := isolateEnvironment(t)
	output, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory}, "--version")
	if err != nil {
		t.Fatalf("version error: %v", err)
	}
	if !strings.HasPrefix(output, "clidoc version: ") {
		t.Fatalf("unexpected version output %q", output)
	}

	logLevel := zap.NewAtomicLevelAt(zap.InfoLevel)
	if _, err := executeCommand(t, applicationDependencies{workingDirectory: workingDirectory, logLevel: &logLevel}, "render", "greet.yaml", "--verbose"); err != nil {
		t.Fatalf("render error: %v", err)
	}
	if logLevel.Level() != zap.DebugLevel {
		t.Fatalf("expected --verbose to enable debug logging, got %s", logLevel.Level())
	}
}
