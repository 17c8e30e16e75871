package render

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/temirov/clidoc/internal/anchors"
	"github.com/temirov/clidoc/internal/model"
)

func collectionNode(name string, sources ...*model.CommandNode) *model.CommandNode {
	return &model.CommandNode{Name: name, Kind: model.KindCollection, Sources: sources}
}

func TestRenderCollectionKeepsSourceAnchorsDistinct(t *testing.T) {
	root := collectionNode("tools",
		groupNode("alpha", "", leafNode("x", "Alpha x.")),
		groupNode("beta", "", leafNode("x", "Beta x.")),
	)

	for _, nesting := range []NestingPolicy{NestingFull, NestingShort} {
		t.Run(string(nesting), func(t *testing.T) {
			document, err := RenderCollection(root, Config{Nesting: nestingPointer(nesting)})
			require.NoError(t, err)
			require.Len(t, document.Sections, 2)
			assert.Equal(t, "alpha", document.Sections[0].Title)
			assert.Equal(t, "beta", document.Sections[1].Title)

			var xAnchors []anchors.AnchorID
			for _, section := range document.Sections {
				for _, child := range section.Children {
					xAnchors = append(xAnchors, child.AnchorID)
				}
				for _, entry := range section.Body.Commands {
					xAnchors = append(xAnchors, entry.AnchorID)
				}
			}
			require.Len(t, xAnchors, 2)
			assert.NotEqual(t, xAnchors[0], xAnchors[1])
		})
	}
}

func TestRenderCollectionUsesProgramNameInCommandPaths(t *testing.T) {
	root := collectionNode("tools", groupNode("alpha", "", leafNode("x", "")))
	document, err := RenderCollection(root, Config{ProgramName: "tool", Nesting: nestingPointer(NestingFull)})
	require.NoError(t, err)
	require.Len(t, document.Sections, 1)
	source := document.Sections[0]
	assert.Equal(t, anchors.AnchorID("cmd-tool-alpha"), source.AnchorID)
	require.Len(t, source.Children, 1)
	assert.Equal(t, []string{"tool", "x"}, source.Children[0].Path)
	assert.Equal(t, "tool x [OPTIONS]", source.Children[0].Body.Usage)
	assert.Equal(t, anchors.AnchorID("cmd-tool-alpha-x"), source.Children[0].AnchorID)
}

func TestRenderCollectionCommandFilter(t *testing.T) {
	root := collectionNode("tools",
		groupNode("alpha", "", leafNode("x", ""), leafNode("y", "")),
		groupNode("beta", "", leafNode("z", "")),
	)

	document, err := RenderCollection(root, Config{CommandFilter: []string{"y"}})
	require.NoError(t, err)
	require.Len(t, document.Sections, 2)
	require.Len(t, document.Sections[0].Body.Commands, 1)
	assert.Equal(t, "y", document.Sections[0].Body.Commands[0].Name)
	assert.Empty(t, document.Sections[1].Body.Commands)

	_, missingError := RenderCollection(root, Config{CommandFilter: []string{"missing"}})
	var configurationError *model.ConfigurationError
	require.True(t, errors.As(missingError, &configurationError), "expected ConfigurationError, got %v", missingError)
	assert.Equal(t, OptionCommands, configurationError.Option)
}

func TestRenderCollectionNoneListsSourcesOnly(t *testing.T) {
	root := collectionNode("tools", groupNode("alpha", "", leafNode("x", "")), groupNode("beta", "", leafNode("y", "")))
	document, err := RenderCollection(root, Config{Nesting: nestingPointer(NestingNone)})
	require.NoError(t, err)
	require.Len(t, document.Sections, 2)
	for _, section := range document.Sections {
		assert.Empty(t, section.Children)
		assert.Empty(t, section.Body.Commands)
	}
}

func TestRenderCollectionSkipsHiddenSources(t *testing.T) {
	hidden := groupNode("secret", "", leafNode("x", ""))
	hidden.Hidden = true
	root := collectionNode("tools", groupNode("alpha", "", leafNode("x", "")), hidden)
	document, err := RenderCollection(root, Config{})
	require.NoError(t, err)
	require.Len(t, document.Sections, 1)
	assert.Equal(t, "alpha", document.Sections[0].Name)
}

func TestRenderCollectionFilterIgnoresHiddenSources(t *testing.T) {
	hidden := groupNode("secret", "", leafNode("y", ""))
	hidden.Hidden = true
	root := collectionNode("tools", groupNode("alpha", "", leafNode("x", "")), hidden)

	_, filterError := RenderCollection(root, Config{CommandFilter: []string{"y"}})
	var configurationError *model.ConfigurationError
	require.True(t, errors.As(filterError, &configurationError), "expected ConfigurationError, got %v", filterError)
	assert.Equal(t, OptionCommands, configurationError.Option)

	document, err := RenderCollection(root, Config{CommandFilter: []string{"x"}})
	require.NoError(t, err)
	require.Len(t, document.Sections, 1)
	require.Len(t, document.Sections[0].Body.Commands, 1)
}

func TestRenderCollectionRejectsNonCollectionRoot(t *testing.T) {
	_, err := RenderCollection(greetTree(), Config{})
	var violation *model.DataModelViolation
	require.True(t, errors.As(err, &violation), "expected DataModelViolation, got %v", err)
	assert.Contains(t, violation.Reason, "group")
}

func TestRenderCollectionRejectsInvalidSources(t *testing.T) {
	testCases := []struct {
		name string
		root *model.CommandNode
	}{
		{name: "no sources", root: collectionNode("tools")},
		{name: "leaf source", root: collectionNode("tools", leafNode("solo", ""))},
		{name: "nested collection", root: collectionNode("tools", groupNode("alpha", "", collectionNode("inner", groupNode("beta", ""))))},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			document, err := RenderCollection(testCase.root, Config{})
			var violation *model.DataModelViolation
			require.True(t, errors.As(err, &violation), "expected DataModelViolation, got %v", err)
			assert.Empty(t, document.Sections)
		})
	}
}
