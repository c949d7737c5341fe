package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupKnownThemes(t *testing.T) {
	for _, n := range Names {
		p, ok := Lookup(string(n))
		assert.True(t, ok, n)
		assert.NotEmpty(t, p.Background, n)
		assert.NotEmpty(t, p.Accent, n)
	}

	ocean, _ := Lookup("ocean")
	assert.Equal(t, "linear-gradient(125deg, #0C4A6E 0%, #164E63 100%)", ocean.Background)
	assert.Equal(t, "linear-gradient(135deg, #0EA5E9 0%, #0284C7 100%)", ocean.Accent)
}

func TestLookupUnknownFallsBack(t *testing.T) {
	p, ok := Lookup("neon")
	assert.False(t, ok)
	def, _ := Lookup("default")
	assert.Equal(t, def, p)
	assert.Equal(t, Default, Resolve("neon"))
	assert.Equal(t, Forest, Resolve("forest"))
}

func TestParseRequiresAllThemes(t *testing.T) {
	_, err := Parse([]byte("default:\n  background: a\n  accent: b\n"))
	require.Error(t, err)

	_, err = Parse([]byte("::not yaml"))
	require.Error(t, err)
}

func TestAccentColor(t *testing.T) {
	p, _ := Lookup("default")
	assert.Equal(t, "#6366F1", p.AccentColor())
	assert.Equal(t, "", Palette{}.AccentColor())
}
