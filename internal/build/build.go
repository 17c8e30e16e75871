// Package build renders a list of documentation directives concurrently and writes the results.
package build

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/clidoc/internal/adapter"
	"github.com/temirov/clidoc/internal/model"
	"github.com/temirov/clidoc/internal/output"
	"github.com/temirov/clidoc/internal/render"
	"github.com/temirov/clidoc/internal/types"
)

const (
	directiveErrorFormat   = "directive %d (%s): %w"
	createDirectoryFormat  = "create output directory %s: %w"
	writeOutputErrorFormat = "write output %s: %w"
	renderedMessage        = "rendered directive"
	writtenMessage         = "wrote documentation"
	referenceField         = "reference"
	outputField            = "output"
	outputFileMode         = 0o644
	outputDirectoryMode    = 0o755
)

// RendererFactory returns the markup renderer for a format name.
type RendererFactory func(format string) (output.Renderer, error)

// Directive describes one document to produce.
type Directive struct {
	Reference string
	Config    render.Config
	Format    string
	// Output is the destination file; empty or "-" writes to standard output.
	Output string
}

// Result is the outcome of one directive.
type Result struct {
	Directive Directive
	Content   string
	Warnings  []model.Warning
}

// Builder runs directives against a resolver.
type Builder struct {
	Resolver    adapter.Resolver
	NewRenderer RendererFactory
	// Concurrency bounds the number of simultaneous renders; zero uses GOMAXPROCS.
	Concurrency int
	// Stdout receives output of directives without a destination file.
	Stdout io.Writer
	// BaseDirectory anchors relative output paths; empty uses the working directory.
	BaseDirectory string
	Logger        *zap.Logger
}

// Build renders every directive concurrently, then writes the results in directive order.
// Nothing is written unless every directive renders successfully.
func (builder *Builder) Build(ctx context.Context, directives []Directive) ([]Result, error) {
	logger := builder.logger()
	results := make([]Result, len(directives))

	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(builder.concurrency())
	for index, directive := range directives {
		index, directive := index, directive
		group.Go(func() error {
			result, renderError := builder.renderDirective(groupContext, directive)
			if renderError != nil {
				return fmt.Errorf(directiveErrorFormat, index+1, directive.Reference, renderError)
			}
			results[index] = result
			logger.Debug(renderedMessage, zap.String(referenceField, directive.Reference))
			return nil
		})
	}
	if waitError := group.Wait(); waitError != nil {
		return nil, waitError
	}

	for index, result := range results {
		if writeError := builder.write(result); writeError != nil {
			return nil, fmt.Errorf(directiveErrorFormat, index+1, result.Directive.Reference, writeError)
		}
	}
	return results, nil
}

func (builder *Builder) renderDirective(ctx context.Context, directive Directive) (Result, error) {
	if contextError := ctx.Err(); contextError != nil {
		return Result{}, contextError
	}
	root, resolveError := builder.Resolver.Resolve(ctx, directive.Reference)
	if resolveError != nil {
		return Result{}, resolveError
	}

	var document render.Document
	var renderError error
	if root.Kind == model.KindCollection {
		document, renderError = render.RenderCollection(root, directive.Config)
	} else {
		document, renderError = render.Render(root, directive.Config)
	}
	if renderError != nil {
		return Result{}, renderError
	}

	newRenderer := builder.NewRenderer
	if newRenderer == nil {
		newRenderer = output.NewRenderer
	}
	renderer, rendererError := newRenderer(directive.Format)
	if rendererError != nil {
		return Result{}, rendererError
	}
	content, contentError := output.RenderString(renderer, document)
	if contentError != nil {
		return Result{}, contentError
	}
	return Result{Directive: directive, Content: content, Warnings: document.Warnings}, nil
}

func (builder *Builder) write(result Result) error {
	destination := strings.TrimSpace(result.Directive.Output)
	if destination == "" || destination == types.StandardOutputPath {
		stdout := builder.Stdout
		if stdout == nil {
			stdout = os.Stdout
		}
		_, writeError := io.WriteString(stdout, result.Content)
		return writeError
	}
	if !filepath.IsAbs(destination) && builder.BaseDirectory != "" {
		destination = filepath.Join(builder.BaseDirectory, destination)
	}
	directory := filepath.Dir(destination)
	if mkdirError := os.MkdirAll(directory, outputDirectoryMode); mkdirError != nil {
		return fmt.Errorf(createDirectoryFormat, directory, mkdirError)
	}
	if writeError := os.WriteFile(destination, []byte(result.Content), outputFileMode); writeError != nil {
		return fmt.Errorf(writeOutputErrorFormat, destination, writeError)
	}
	builder.logger().Info(writtenMessage, zap.String(referenceField, result.Directive.Reference), zap.String(outputField, destination))
	return nil
}

func (builder *Builder) concurrency() int {
	if builder.Concurrency > 0 {
		return builder.Concurrency
	}
	return runtime.GOMAXPROCS(0)
}

func (builder *Builder) logger() *zap.Logger {
	if builder.Logger == nil {
		return zap.NewNop()
	}
	return builder.Logger
}
