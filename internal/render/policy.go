package render

import (
	"fmt"
	"strings"

	"github.com/temirov/clidoc/internal/model"
)

// NestingPolicy is the depth to which subcommands are expanded.
type NestingPolicy string

const (
	// NestingFull renders every descendant as its own section.
	NestingFull NestingPolicy = "full"
	// NestingShort lists direct subcommands by name and summary only.
	NestingShort NestingPolicy = "short"
	// NestingNone omits subcommands entirely.
	NestingNone NestingPolicy = "none"
)

const (
	// OptionNested names the nesting setting in diagnostics.
	OptionNested = "nested"
	// OptionShowNested names the deprecated nesting alias in diagnostics.
	OptionShowNested = "show-nested"
	// OptionCommands names the command filter in diagnostics.
	OptionCommands = "commands"

	unknownNestingFormat     = "unknown nesting policy %q; expected one of full, short, none"
	conflictingNestingFormat = "%s=%t contradicts %s=%s"
	emptyFilterEntryMessage  = "command filter contains an empty name"
	emptyFilterMessage       = "command filter is empty"
	deprecatedAliasFormat    = "%s is deprecated; use %s=%s instead"
	redundantAliasFormat     = "%s is deprecated and ignored because %s=%s is set"
)

// ParseNestingPolicy converts a user supplied value into a policy.
func ParseNestingPolicy(value string) (NestingPolicy, error) {
	switch NestingPolicy(strings.ToLower(strings.TrimSpace(value))) {
	case NestingFull:
		return NestingFull, nil
	case NestingShort:
		return NestingShort, nil
	case NestingNone:
		return NestingNone, nil
	default:
		return "", &model.ConfigurationError{Option: OptionNested, Reason: fmt.Sprintf(unknownNestingFormat, value)}
	}
}

// Config holds the per-render settings. Nil pointers mean "not supplied".
type Config struct {
	// ProgramName is the displayed program name; empty means the root node's name.
	ProgramName string
	Nesting     *NestingPolicy
	// LegacyShowNested is the deprecated boolean alias of Nesting.
	LegacyShowNested *bool
	// CommandFilter restricts the top-level commands that are rendered; nil renders all.
	CommandFilter []string
}

// EffectivePolicy is the reconciled form of a Config.
type EffectivePolicy struct {
	Nesting       NestingPolicy
	CommandFilter []string
}

// FilterActive reports whether a command filter restricts the top level.
func (policy EffectivePolicy) FilterActive() bool {
	return policy.CommandFilter != nil
}

// Allows reports whether the named top-level command passes the filter.
func (policy EffectivePolicy) Allows(name string) bool {
	if !policy.FilterActive() {
		return true
	}
	for _, allowed := range policy.CommandFilter {
		if allowed == name {
			return true
		}
	}
	return false
}

// ResolvePolicy reconciles the current and deprecated nesting settings and normalizes the
// command filter. It has no side effects; deprecation notices are returned as warnings.
//
// An explicit Nesting wins. A legacy value that agrees with it only produces a warning, a
// contradicting one is a ConfigurationError. Without an explicit Nesting the legacy value maps
// true to full and false to short. Without either the policy is short.
func ResolvePolicy(config Config) (EffectivePolicy, []model.Warning, error) {
	var warnings []model.Warning
	policy := EffectivePolicy{Nesting: NestingShort}

	switch {
	case config.Nesting != nil:
		nesting, parseError := ParseNestingPolicy(string(*config.Nesting))
		if parseError != nil {
			return EffectivePolicy{}, nil, parseError
		}
		policy.Nesting = nesting
		if config.LegacyShowNested != nil {
			if legacyContradicts(*config.LegacyShowNested, nesting) {
				return EffectivePolicy{}, nil, &model.ConfigurationError{
					Option: OptionNested,
					Reason: fmt.Sprintf(conflictingNestingFormat, OptionShowNested, *config.LegacyShowNested, OptionNested, nesting),
				}
			}
			warnings = append(warnings, model.Warning{
				Kind:    model.WarningDeprecation,
				Message: fmt.Sprintf(redundantAliasFormat, OptionShowNested, OptionNested, nesting),
			})
		}
	case config.LegacyShowNested != nil:
		policy.Nesting = legacyNesting(*config.LegacyShowNested)
		warnings = append(warnings, model.Warning{
			Kind:    model.WarningDeprecation,
			Message: fmt.Sprintf(deprecatedAliasFormat, OptionShowNested, OptionNested, policy.Nesting),
		})
	}

	if config.CommandFilter != nil {
		filter, filterError := normalizeFilter(config.CommandFilter)
		if filterError != nil {
			return EffectivePolicy{}, nil, filterError
		}
		policy.CommandFilter = filter
	}
	return policy, warnings, nil
}

func legacyNesting(showNested bool) NestingPolicy {
	if showNested {
		return NestingFull
	}
	return NestingShort
}

// legacyContradicts reports whether the deprecated alias disagrees with an explicit policy.
// show-nested=true only agrees with full; show-nested=false agrees with anything but full.
func legacyContradicts(showNested bool, nesting NestingPolicy) bool {
	return showNested != (nesting == NestingFull)
}

func normalizeFilter(names []string) ([]string, error) {
	if len(names) == 0 {
		return nil, &model.ConfigurationError{Option: OptionCommands, Reason: emptyFilterMessage}
	}
	seen := make(map[string]struct{}, len(names))
	normalized := make([]string, 0, len(names))
	for _, name := range names {
		trimmed := strings.TrimSpace(name)
		if trimmed == "" {
			return nil, &model.ConfigurationError{Option: OptionCommands, Reason: emptyFilterEntryMessage}
		}
		if _, duplicate := seen[trimmed]; duplicate {
			continue
		}
		seen[trimmed] = struct{}{}
		normalized = append(normalized, trimmed)
	}
	return normalized, nil
}
