package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/clidoc/internal/build"
	"github.com/temirov/clidoc/internal/render"
	"github.com/temirov/clidoc/internal/types"
	"github.com/temirov/clidoc/internal/utils"
)

const (
	missingReferenceFormat = "directive %d has no reference"
	unsupportedFormatError = "directive %d: unsupported format %q"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration holds render defaults and the directives run by the build command.
type ApplicationConfiguration struct {
	Defaults   DirectiveConfiguration   `mapstructure:"defaults"`
	Directives []DirectiveConfiguration `mapstructure:"directives"`
}

// DirectiveConfiguration describes one document. Unset fields fall back to Defaults.
type DirectiveConfiguration struct {
	Reference  string   `mapstructure:"reference"`
	Program    string   `mapstructure:"prog"`
	Nested     string   `mapstructure:"nested"`
	ShowNested *bool    `mapstructure:"show_nested"`
	Commands   []string `mapstructure:"commands"`
	Format     string   `mapstructure:"format"`
	Output     string   `mapstructure:"output"`
	Copy       *bool    `mapstructure:"copy"`
}

// LoadApplicationConfiguration loads configuration from global and local files.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf("determine working directory: %w", err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	if localPath != "" {
		localConfig, loadErr := loadConfigurationFromPath(localPath)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(localConfig)
	}

	if merged.Defaults.Commands != nil {
		merged.Defaults.Commands = utils.DeduplicatePatterns(merged.Defaults.Commands)
	}
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath != "" {
		if filepath.IsAbs(explicitPath) {
			return explicitPath, nil
		}
		if workingDirectory == "" {
			absolute, err := filepath.Abs(explicitPath)
			if err != nil {
				return "", fmt.Errorf("resolve configuration path %s: %w", explicitPath, err)
			}
			return absolute, nil
		}
		return filepath.Join(workingDirectory, explicitPath), nil
	}
	if workingDirectory == "" {
		return "", nil
	}
	return filepath.Join(workingDirectory, utils.LocalConfigFileName), nil
}

func loadConfigurationFromPath(path string) (ApplicationConfiguration, error) {
	if path == "" {
		return ApplicationConfiguration{}, nil
	}
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf("stat configuration %s: %w", path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf("configuration path %s is a directory", path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType(utils.ConfigFileType)
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("read configuration from %s: %w", path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf("decode configuration from %s: %w", path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
// Defaults merge field by field; a non-empty directive list replaces the receiver's.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	result.Defaults = result.Defaults.Merge(override.Defaults)
	if len(override.Directives) > 0 {
		result.Directives = make([]DirectiveConfiguration, len(override.Directives))
		for index, directive := range override.Directives {
			result.Directives[index] = DirectiveConfiguration{}.Merge(directive)
		}
	}
	return result
}

// Merge overlays the fields set in override onto the receiver.
func (config DirectiveConfiguration) Merge(override DirectiveConfiguration) DirectiveConfiguration {
	result := config
	if override.Reference != "" {
		result.Reference = override.Reference
	}
	if override.Program != "" {
		result.Program = override.Program
	}
	if override.Nested != "" {
		result.Nested = override.Nested
	}
	if override.ShowNested != nil {
		result.ShowNested = cloneBool(override.ShowNested)
	}
	if override.Commands != nil {
		result.Commands = append([]string{}, override.Commands...)
	}
	if override.Format != "" {
		result.Format = override.Format
	}
	if override.Output != "" {
		result.Output = override.Output
	}
	if override.Copy != nil {
		result.Copy = cloneBool(override.Copy)
	}
	return result
}

// RenderConfig converts the directive into render settings.
func (config DirectiveConfiguration) RenderConfig() render.Config {
	renderConfig := render.Config{
		ProgramName:      strings.TrimSpace(config.Program),
		LegacyShowNested: cloneBool(config.ShowNested),
	}
	if nested := strings.TrimSpace(config.Nested); nested != "" {
		policy := render.NestingPolicy(nested)
		renderConfig.Nesting = &policy
	}
	if config.Commands != nil {
		renderConfig.CommandFilter = append([]string{}, config.Commands...)
	}
	return renderConfig
}

// FormatOrDefault returns the configured format, or reStructuredText when none is set.
func (config DirectiveConfiguration) FormatOrDefault() string {
	if format := strings.ToLower(strings.TrimSpace(config.Format)); format != "" {
		return format
	}
	return types.FormatRST
}

// CopyEnabled reports whether the rendered output should be copied to the clipboard.
func (config DirectiveConfiguration) CopyEnabled() bool {
	return config.Copy != nil && *config.Copy
}

// BuildDirectives applies Defaults to every directive and converts them for the builder.
func (config ApplicationConfiguration) BuildDirectives() ([]build.Directive, error) {
	directives := make([]build.Directive, 0, len(config.Directives))
	for index, directiveConfiguration := range config.Directives {
		resolved := config.Defaults.Merge(directiveConfiguration)
		if strings.TrimSpace(resolved.Reference) == "" {
			return nil, fmt.Errorf(missingReferenceFormat, index+1)
		}
		format := resolved.FormatOrDefault()
		if !types.IsSupportedFormat(format) {
			return nil, fmt.Errorf(unsupportedFormatError, index+1, format)
		}
		directives = append(directives, build.Directive{
			Reference: strings.TrimSpace(resolved.Reference),
			Config:    resolved.RenderConfig(),
			Format:    format,
			Output:    strings.TrimSpace(resolved.Output),
		})
	}
	return directives, nil
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
