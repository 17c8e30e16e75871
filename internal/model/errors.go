package model

import (
	"fmt"
	"strings"
)

const (
	resolutionErrorFormat         = "resolve %q: %s"
	resolutionErrorWrappedFormat  = "resolve %q: %s: %v"
	configurationErrorFormat      = "invalid %s configuration: %s"
	dataModelViolationFormat      = "invalid command definition at %q: %s"
	dataModelViolationRootMessage = "<root>"
	pathDisplaySeparator          = " "
)

// ResolutionError reports that a reference could not be turned into a command node.
type ResolutionError struct {
	Reference string
	Reason    string
	Err       error
}

func (resolutionError *ResolutionError) Error() string {
	if resolutionError.Err != nil {
		return fmt.Sprintf(resolutionErrorWrappedFormat, resolutionError.Reference, resolutionError.Reason, resolutionError.Err)
	}
	return fmt.Sprintf(resolutionErrorFormat, resolutionError.Reference, resolutionError.Reason)
}

func (resolutionError *ResolutionError) Unwrap() error {
	return resolutionError.Err
}

// ConfigurationError reports render settings that cannot be honored.
type ConfigurationError struct {
	Option string
	Reason string
}

func (configurationError *ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorFormat, configurationError.Option, configurationError.Reason)
}

// DataModelViolation reports a command node or parameter that breaks a model invariant.
// It points at a defect in the producer of the node graph rather than at user input.
type DataModelViolation struct {
	Path   []string
	Reason string
}

func (violation *DataModelViolation) Error() string {
	displayPath := strings.Join(violation.Path, pathDisplaySeparator)
	if displayPath == "" {
		displayPath = dataModelViolationRootMessage
	}
	return fmt.Sprintf(dataModelViolationFormat, displayPath, violation.Reason)
}

// WarningKind classifies non-fatal diagnostics.
type WarningKind string

// WarningDeprecation is raised when a deprecated setting is used.
const WarningDeprecation WarningKind = "deprecation"

// Warning is a non-fatal diagnostic surfaced alongside a successful render.
type Warning struct {
	Kind    WarningKind
	Message string
}

func (warning Warning) String() string {
	return string(warning.Kind) + ": " + warning.Message
}
