// Package clipboard copies rendered documentation to the system clipboard.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/atotto/clipboard"
)

const writeClipboardErrorFormat = "write clipboard: %w"

// ErrUnavailable reports that the host has no clipboard utility clidoc can drive.
var ErrUnavailable = errors.New("no clipboard utility available")

// Copier copies rendered output to a clipboard.
type Copier interface {
	Copy(text string) error
}

// Service is the system clipboard, driven through github.com/atotto/clipboard.
type Service struct {
	writeAll    func(string) error
	unsupported bool
}

// NewService returns a Service for the host clipboard.
func NewService() *Service {
	return &Service{writeAll: clipboard.WriteAll, unsupported: clipboard.Unsupported}
}

// Copy replaces the clipboard contents with text. It returns ErrUnavailable when the host has
// no clipboard utility, so callers can treat copying as best effort.
func (service *Service) Copy(text string) error {
	if service.unsupported {
		return ErrUnavailable
	}
	if writeError := service.writeAll(text); writeError != nil {
		return fmt.Errorf(writeClipboardErrorFormat, writeError)
	}
	return nil
}

var _ Copier = (*Service)(nil)
