package theme

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gpl = `GIMP Palette
Name: two tone
Columns: 2
# comment
  0   0   0	black
255 255 255	white
`

func TestParseGPL(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(gpl))
	require.NoError(t, err)
	assert.Equal(t, "two tone", p.Name)
	assert.Equal(t, []RGB{{0, 0, 0}, {255, 255, 255}}, p.Colors)

	_, err = ParseGPL(strings.NewReader("GIMP Palette\n"))
	assert.Error(t, err)
}

func TestLookupInterpolates(t *testing.T) {
	p, err := ParseGPL(strings.NewReader(gpl))
	require.NoError(t, err)
	assert.Equal(t, RGB{0, 0, 0}, p.Lookup(-1))
	assert.Equal(t, RGB{255, 255, 255}, p.Lookup(2))
	assert.Equal(t, RGB{127, 127, 127}, p.Lookup(0.5))
}

func TestLoadPaletteFallsBack(t *testing.T) {
	p, err := LoadPalette("")
	require.NoError(t, err)
	assert.Equal(t, "plasma", p.Name)

	p, err = LoadPalette("/does/not/exist.gpl")
	assert.Error(t, err)
	assert.Equal(t, DefaultPalette(), p)
}

func TestVoiceColors(t *testing.T) {
	th := New(nil)
	assert.EqualValues(t, "#00ff00", th.Voice(0))
	assert.EqualValues(t, "#ffff00", th.Voice(3))
	assert.EqualValues(t, "#008000", th.Voice(9))
	assert.Equal(t, "#0d0887", RGB{13, 8, 135}.Hex())
}

func TestParseGPLRejectsJunk(t *testing.T) {
	_, err := ParseGPL(strings.NewReader("not a palette\n1 2 3\n"))
	assert.Error(t, err)

	_, err = ParseGPL(strings.NewReader("GIMP Palette\n1 2\n"))
	assert.ErrorContains(t, err, "line 2")

	_, err = ParseGPL(strings.NewReader("GIMP Palette\n1 2 300\n"))
	assert.Error(t, err)
}

func TestLoadPaletteFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mono.gpl")
	require.NoError(t, os.WriteFile(path, []byte("GIMP Palette\n10 20 30\n"), 0644))

	p, err := LoadPalette(path)
	require.NoError(t, err)
	assert.Equal(t, "mono", p.Name)
	assert.Equal(t, RGB{10, 20, 30}, p.Lookup(0.7))
	assert.EqualValues(t, "#0a141e", New(p).Accent())
}
