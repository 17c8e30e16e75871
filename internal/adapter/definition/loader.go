package definition

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/clidoc/internal/model"
)

const (
	selectorSeparator     = ":"
	selectorPathSeparator = "."

	readFailedReason       = "cannot read definition file"
	missingFileReason      = "definition file does not exist"
	decodeFailedReason     = "cannot decode definition file"
	unknownSelectorReason  = "selector names no command: "
	invalidReferenceReason = "not a definition file reference"
)

var definitionExtensions = []string{".yaml", ".yml"}

// IsReference reports whether reference names a definition file, optionally followed by
// a selector.
func IsReference(reference string) bool {
	_, _, ok := SplitReference(reference)
	return ok
}

// SplitReference separates "path/to/cli.yaml:group.sub" into its file path and selector.
func SplitReference(reference string) (string, string, bool) {
	lowered := strings.ToLower(reference)
	for _, extension := range definitionExtensions {
		if index := strings.LastIndex(lowered, extension+selectorSeparator); index >= 0 {
			pathEnd := index + len(extension)
			return reference[:pathEnd], reference[pathEnd+len(selectorSeparator):], true
		}
	}
	for _, extension := range definitionExtensions {
		if strings.HasSuffix(lowered, extension) {
			return reference, "", true
		}
	}
	return "", "", false
}

// Loader resolves definition file references. Relative paths are taken from
// BaseDirectory, or from the process working directory when it is empty.
type Loader struct {
	BaseDirectory string
}

// NewLoader constructs a Loader rooted at baseDirectory.
func NewLoader(baseDirectory string) *Loader {
	return &Loader{BaseDirectory: baseDirectory}
}

// Resolve loads the file named by reference and returns the selected node.
func (loader *Loader) Resolve(ctx context.Context, reference string) (*model.CommandNode, error) {
	if contextError := ctx.Err(); contextError != nil {
		return nil, &model.ResolutionError{Reference: reference, Reason: contextError.Error()}
	}
	filePath, selector, ok := SplitReference(reference)
	if !ok {
		return nil, &model.ResolutionError{Reference: reference, Reason: invalidReferenceReason}
	}
	if !filepath.IsAbs(filePath) && loader.BaseDirectory != "" {
		filePath = filepath.Join(loader.BaseDirectory, filePath)
	}

	data, readError := os.ReadFile(filePath)
	if readError != nil {
		if errors.Is(readError, os.ErrNotExist) {
			return nil, &model.ResolutionError{Reference: reference, Reason: missingFileReason}
		}
		return nil, &model.ResolutionError{Reference: reference, Reason: readFailedReason, Err: readError}
	}
	root, parseError := Parse(data)
	if parseError != nil {
		var violation *model.DataModelViolation
		if errors.As(parseError, &violation) {
			return nil, parseError
		}
		return nil, &model.ResolutionError{Reference: reference, Reason: decodeFailedReason, Err: parseError}
	}

	selected, selectError := Select(root, selector)
	if selectError != nil {
		return nil, &model.ResolutionError{Reference: reference, Reason: selectError.Error()}
	}
	return selected, nil
}

// Select walks a dot separated selector from root. Segments name children of groups and
// sources of collections. An empty selector selects root.
func Select(root *model.CommandNode, selector string) (*model.CommandNode, error) {
	trimmedSelector := strings.TrimSpace(selector)
	if trimmedSelector == "" {
		return root, nil
	}
	current := root
	for _, segment := range strings.Split(trimmedSelector, selectorPathSeparator) {
		next, found := current.Child(segment)
		if !found {
			next, found = current.Source(segment)
		}
		if !found {
			return nil, errors.New(unknownSelectorReason + trimmedSelector)
		}
		current = next
	}
	return current, nil
}
