package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mediaproc.dev/cli/internal/plugin"
)

func TestResolve(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "registry short name",
			input:    "image",
			expected: "@mediaproc/image",
		},
		{
			name:     "registry lookup is case insensitive",
			input:    "Image",
			expected: "@mediaproc/image",
		},
		{
			name:     "path separator passes through unchanged",
			input:    "@someorg/their-plugin",
			expected: "@someorg/their-plugin",
		},
		{
			name:     "community prefix passes through unchanged",
			input:    "mediaproc-filters",
			expected: "mediaproc-filters",
		},
		{
			name:     "unknown name synthesizes community package",
			input:    "my-custom-tool",
			expected: "mediaproc-my-custom-tool",
		},
		{
			name:     "unknown name without hyphen synthesizes community package",
			input:    "sepia",
			expected: "mediaproc-sepia",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			canonical, err := Resolve(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, canonical)
		})
	}
}

func TestResolve_AliasEquivalence(t *testing.T) {
	// All short names mapping to the same entry must resolve identically.
	doc, err := Resolve("doc")
	require.NoError(t, err)
	document, err := Resolve("document")
	require.NoError(t, err)
	assert.Equal(t, "@mediaproc/document", doc)
	assert.Equal(t, doc, document)

	img, err := Resolve("img")
	require.NoError(t, err)
	image, err := Resolve("image")
	require.NoError(t, err)
	assert.Equal(t, img, image)
}

func TestResolve_InvalidNames(t *testing.T) {
	for _, input := range []string{"", "foo bar", "foo;rm -rf /", "foo$bar", "foo\nbar"} {
		_, err := Resolve(input)
		require.Error(t, err, "expected %q to be rejected", input)
		assert.ErrorIs(t, err, plugin.ErrInvalidName)
	}
}

func TestTierOf(t *testing.T) {
	assert.Equal(t, TierOfficial, TierOf("@mediaproc/image"))
	assert.Equal(t, TierCommunity, TierOf("mediaproc-filters"))
	assert.Equal(t, TierThirdParty, TierOf("random-pkg"))
	assert.Equal(t, TierThirdParty, TierOf("@someorg/plugin"))
}

func TestLookup(t *testing.T) {
	entry, ok := Lookup("doc")
	require.True(t, ok)
	assert.Equal(t, "document", entry.ShortName)
	assert.Equal(t, "@mediaproc/document", entry.CanonicalName)
	assert.NotEmpty(t, entry.Description)

	_, ok = Lookup("not-in-registry")
	assert.False(t, ok)
}

func TestLookupCanonical(t *testing.T) {
	entry, ok := LookupCanonical("@mediaproc/document")
	require.True(t, ok)
	assert.Equal(t, "document", entry.ShortName)
	assert.NotEmpty(t, entry.Description)

	// canonical names are not short names, Lookup alone misses them
	_, ok = Lookup("@mediaproc/document")
	assert.False(t, ok)

	_, ok = LookupCanonical("mediaproc-not-in-registry")
	assert.False(t, ok)
}

func TestEntries_SortedAndComplete(t *testing.T) {
	all := Entries()
	require.NotEmpty(t, all)
	for i := 1; i < len(all); i++ {
		assert.LessOrEqual(t, all[i-1].ShortName, all[i].ShortName)
	}
	for _, e := range all {
		assert.NotEmpty(t, e.CanonicalName)
		assert.NotEqual(t, TierThirdParty, TierOf(e.CanonicalName),
			"registry entries must be official or community packages")
	}
}
