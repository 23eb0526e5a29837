package palette

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePaletteFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingDirectoryIsEmpty(t *testing.T) {
	t.Parallel()

	store, err := Load(context.Background(), filepath.Join(t.TempDir(), "palettes"))

	require.NoError(t, err)
	assert.Equal(t, 0, store.Len())
	assert.Empty(t, store.Names())
}

func TestLoad_JSONAndHCL(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writePaletteFile(t, dir, "pico.json", `{
		"name": "pico-8",
		"colors": [{"hex": "#000000"}, {"name": "no hex here"}, {"hex": "#1D2B53"}]
	}`)
	writePaletteFile(t, dir, "nested/gameboy.json", `{"colors": [{"hex": "#0f380f"}, {"hex": "#9bbc0f"}]}`)
	writePaletteFile(t, dir, "extra.hcl", `
palette "mono" {
  colors = ["#000000", "#ffffff"]
}

palette "rgb" {
  colors = ["ff0000", "00ff00", "0000ff"]
}
`)

	// --- Act ---
	store, err := Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"gameboy", "mono", "pico-8", "rgb"}, store.Names())

	pico, ok := store.Lookup("pico-8")
	require.True(t, ok)
	assert.Equal(t, []string{"#000000", "#1D2B53"}, pico.Colors)
	assert.Equal(t, filepath.Join(dir, "pico.json"), pico.Source)

	gb, ok := store.Lookup("gameboy")
	require.True(t, ok, "file stem names a palette without a name field")
	assert.Len(t, gb.Colors, 2)

	rgb, ok := store.Lookup("rgb")
	require.True(t, ok)
	assert.Equal(t, []string{"ff0000", "00ff00", "0000ff"}, rgb.Colors)
}

func TestLoad_SkipsBrokenFiles(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	dir := t.TempDir()
	writePaletteFile(t, dir, "broken.json", `{"name": `)
	writePaletteFile(t, dir, "empty.json", `{"name": "empty", "colors": []}`)
	writePaletteFile(t, dir, "badhex.json", `{"name": "badhex", "colors": [{"hex": "#000000"}, {"hex": "zzz"}]}`)
	writePaletteFile(t, dir, "broken.hcl", `palette "x" {`)
	writePaletteFile(t, dir, "numbers.hcl", `palette "numbers" { colors = [1, 2] }`)
	writePaletteFile(t, dir, "reserved.json", `{"name": "auto", "colors": [{"hex": "#000000"}]}`)
	writePaletteFile(t, dir, "ok.json", `{"name": "ok", "colors": [{"hex": "#000000"}]}`)
	writePaletteFile(t, dir, "readme.txt", `not a palette`)

	// --- Act ---
	store, err := Load(context.Background(), dir)

	// --- Assert ---
	require.NoError(t, err)
	assert.Equal(t, []string{"ok"}, store.Names())
}

func TestLoad_LaterFileWins(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writePaletteFile(t, dir, "a.json", `{"name": "dup", "colors": [{"hex": "#000000"}]}`)
	writePaletteFile(t, dir, "b.json", `{"name": "dup", "colors": [{"hex": "#ffffff"}, {"hex": "#ff0000"}]}`)

	store, err := Load(context.Background(), dir)

	require.NoError(t, err)
	dup, ok := store.Lookup("dup")
	require.True(t, ok)
	assert.Equal(t, []string{"#ffffff", "#ff0000"}, dup.Colors)
}

func TestStore_Resolve(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()
	require.NoError(t, store.Add(ctx, &Palette{Name: "p", Colors: []string{"#000000", "#ffffff", "#ff0000"}}))

	testCases := []struct {
		name       string
		palette    string
		max        int
		wantColors []string
		wantNil    bool
		wantErr    bool
	}{
		{name: "Empty name means no palette", palette: "", wantNil: true},
		{name: "Auto means no palette", palette: "auto", max: 4, wantNil: true},
		{name: "Full palette", palette: "p", wantColors: []string{"#000000", "#ffffff", "#ff0000"}},
		{name: "Limited palette", palette: "p", max: 2, wantColors: []string{"#000000", "#ffffff"}},
		{name: "Unknown palette", palette: "missing", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := store.Resolve(tc.palette, tc.max)

			if tc.wantErr {
				var unknown *UnknownError
				require.True(t, errors.As(err, &unknown))
				assert.Equal(t, tc.palette, unknown.Name)
				assert.Equal(t, "unknown palette: missing", err.Error())
				return
			}
			require.NoError(t, err)
			if tc.wantNil {
				assert.Nil(t, got)
				return
			}
			assert.Equal(t, tc.wantColors, got.Colors)
		})
	}
}

func TestStore_AddRejectsReservedAndInvalid(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewStore()

	require.Error(t, store.Add(ctx, &Palette{Name: Adaptive, Colors: []string{"#000000"}}))
	require.Error(t, store.Add(ctx, &Palette{Name: "empty"}))
	require.Error(t, store.Add(ctx, &Palette{Name: "bad", Colors: []string{"#xyz"}}))

	huge := &Palette{Name: "huge", Colors: make([]string, MaxColors+1)}
	for i := range huge.Colors {
		huge.Colors[i] = fmt.Sprintf("#%06x", i)
	}
	err := store.Add(ctx, huge)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "257 colors")

	require.NoError(t, store.Add(ctx, huge.Truncate(MaxColors)))
	assert.Equal(t, 1, store.Len())
}
