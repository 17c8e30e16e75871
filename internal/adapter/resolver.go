// Package adapter turns a command reference into the command hierarchy it names.
package adapter

import (
	"context"
	"strings"

	"github.com/temirov/clidoc/internal/adapter/definition"
	"github.com/temirov/clidoc/internal/model"
)

const (
	emptyReferenceReason = "reference is empty"
	noResolverReason     = "no resolver for this kind of reference"
)

// Resolver locates the root command node named by a reference.
type Resolver interface {
	Resolve(ctx context.Context, reference string) (*model.CommandNode, error)
}

// Dispatcher routes definition file references to Definitions and every other reference
// to Commands.
type Dispatcher struct {
	Commands    Resolver
	Definitions Resolver
}

// NewDispatcher constructs a Dispatcher over the provided resolvers.
func NewDispatcher(commands Resolver, definitions Resolver) *Dispatcher {
	return &Dispatcher{Commands: commands, Definitions: definitions}
}

// Resolve implements Resolver.
func (dispatcher *Dispatcher) Resolve(ctx context.Context, reference string) (*model.CommandNode, error) {
	trimmedReference := strings.TrimSpace(reference)
	if trimmedReference == "" {
		return nil, &model.ResolutionError{Reference: reference, Reason: emptyReferenceReason}
	}
	target := dispatcher.Commands
	if definition.IsReference(trimmedReference) {
		target = dispatcher.Definitions
	}
	if target == nil {
		return nil, &model.ResolutionError{Reference: trimmedReference, Reason: noResolverReason}
	}
	return target.Resolve(ctx, trimmedReference)
}

var _ Resolver = (*Dispatcher)(nil)
