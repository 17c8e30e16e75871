// Package anchors derives stable cross-reference identifiers from command paths.
package anchors

import (
	"strconv"
	"strings"
)

// Namespace separates anchors of commands, parameters, and environment variables.
type Namespace string

const (
	// NamespaceCommand holds command and group anchors.
	NamespaceCommand Namespace = "cmd"
	// NamespaceOption holds option anchors.
	NamespaceOption Namespace = "opt"
	// NamespaceArgument holds positional argument anchors.
	NamespaceArgument Namespace = "arg"
	// NamespaceEnvVar holds environment variable anchors.
	NamespaceEnvVar Namespace = "env"
)

// AnchorID is a cross-reference target usable as an HTML id or reStructuredText label.
type AnchorID string

const (
	segmentSeparator  = "-"
	emptySegmentSlug  = "x"
	pathKeySeparator  = "\x00"
	collisionSuffixAt = 2
)

// ID returns the deterministic identifier for path within namespace.
// Different paths may slug to the same identifier; an Allocator resolves such collisions.
func ID(namespace Namespace, path []string) AnchorID {
	segments := make([]string, 0, len(path)+1)
	segments = append(segments, string(namespace))
	for _, segment := range path {
		segments = append(segments, slug(segment))
	}
	return AnchorID(strings.Join(segments, segmentSeparator))
}

// slug lowercases segment and collapses every run of characters outside [a-z0-9_] into one dash.
func slug(segment string) string {
	var builder strings.Builder
	pendingDash := false
	for _, character := range strings.ToLower(segment) {
		isWordCharacter := (character >= 'a' && character <= 'z') || (character >= '0' && character <= '9') || character == '_'
		if !isWordCharacter {
			pendingDash = builder.Len() > 0
			continue
		}
		if pendingDash {
			builder.WriteString(segmentSeparator)
			pendingDash = false
		}
		builder.WriteRune(character)
	}
	if builder.Len() == 0 {
		return emptySegmentSlug
	}
	return builder.String()
}

// Allocator hands out identifiers that are unique within one render.
// Identical paths always receive the identical identifier; a distinct path whose slug is
// already taken receives the slug followed by the lowest free numeric suffix. The zero value
// is not usable; construct with NewAllocator. An Allocator is not safe for concurrent use.
type Allocator struct {
	assigned map[string]AnchorID
	owners   map[AnchorID]string
}

// NewAllocator returns an empty allocator.
func NewAllocator() *Allocator {
	return &Allocator{
		assigned: map[string]AnchorID{},
		owners:   map[AnchorID]string{},
	}
}

// Allocate returns the identifier for path within namespace.
func (allocator *Allocator) Allocate(namespace Namespace, path []string) AnchorID {
	return allocator.AllocateOwned(namespace, "", path)
}

// AllocateOwned is Allocate for targets that a path alone does not identify. Targets sharing a
// path but naming different owners receive distinct identifiers.
func (allocator *Allocator) AllocateOwned(namespace Namespace, owner string, path []string) AnchorID {
	key := string(namespace) + pathKeySeparator + owner + pathKeySeparator + strings.Join(path, pathKeySeparator)
	if existing, found := allocator.assigned[key]; found {
		return existing
	}
	base := ID(namespace, path)
	candidate := base
	for suffix := collisionSuffixAt; ; suffix++ {
		if _, taken := allocator.owners[candidate]; !taken {
			break
		}
		candidate = AnchorID(string(base) + segmentSeparator + strconv.Itoa(suffix))
	}
	allocator.assigned[key] = candidate
	allocator.owners[candidate] = key
	return candidate
}
