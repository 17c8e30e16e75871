// Package types defines the cross‑package constants used by the clidoc CLI.
package types

import "strings"

const (
	CommandRender = "render"
	CommandBuild  = "build"
	CommandInit   = "init"

	FormatRST      = "rst"
	FormatMarkdown = "markdown"
	FormatTerminal = "terminal"

	// ReferenceSelf names the clidoc command tree itself.
	ReferenceSelf = "self"

	// StandardOutputPath directs rendered output to stdout.
	StandardOutputPath = "-"
)

// SupportedFormats lists the accepted --format values in display order.
var SupportedFormats = []string{FormatRST, FormatMarkdown, FormatTerminal}

// IsSupportedFormat reports whether format names a known backend.
func IsSupportedFormat(format string) bool {
	normalized := strings.ToLower(strings.TrimSpace(format))
	for _, supported := range SupportedFormats {
		if normalized == supported {
			return true
		}
	}
	return false
}
