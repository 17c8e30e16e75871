package adapter

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/clidoc/internal/model"
)

type recordingResolver struct {
	name       string
	references []string
}

func (resolver *recordingResolver) Resolve(_ context.Context, reference string) (*model.CommandNode, error) {
	resolver.references = append(resolver.references, reference)
	return &model.CommandNode{Name: resolver.name, Kind: model.KindLeaf}, nil
}

func TestDispatcherRoutesReferences(t *testing.T) {
	commands := &recordingResolver{name: "commands"}
	definitions := &recordingResolver{name: "definitions"}
	dispatcher := NewDispatcher(commands, definitions)

	testCases := []struct {
		reference string
		expected  string
	}{
		{reference: "self", expected: "commands"},
		{reference: "docs/cli.yaml", expected: "definitions"},
		{reference: " docs/cli.yml:group.sub ", expected: "definitions"},
	}
	for _, testCase := range testCases {
		t.Run(testCase.reference, func(t *testing.T) {
			node, err := dispatcher.Resolve(context.Background(), testCase.reference)
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, node.Name)
		})
	}
	assert.Equal(t, []string{"docs/cli.yaml", "docs/cli.yml:group.sub"}, definitions.references)
}

func TestDispatcherRejectsUnroutableReferences(t *testing.T) {
	dispatcher := NewDispatcher(nil, &recordingResolver{name: "definitions"})
	for _, reference := range []string{"", "   ", "self"} {
		_, err := dispatcher.Resolve(context.Background(), reference)
		var resolutionError *model.ResolutionError
		assert.True(t, errors.As(err, &resolutionError), "expected ResolutionError for %q, got %v", reference, err)
	}
}
