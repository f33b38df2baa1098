package occupancy

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r2"

	"github.com/banshee-data/coverage.planner/internal/security"
)

func TestMap_MapToWorldReturnsCellCentre(t *testing.T) {
	m, err := NewMap(4, 3, 0.5, r2.Vec{X: -1, Y: 2})
	require.NoError(t, err)

	wx, wy := m.MapToWorld(0, 0)
	assert.InDelta(t, -0.75, wx, 1e-12)
	assert.InDelta(t, 2.25, wy, 1e-12)

	wx, wy = m.MapToWorld(3, 2)
	assert.InDelta(t, 0.75, wx, 1e-12)
	assert.InDelta(t, 3.25, wy, 1e-12)
}

func TestMap_SetCostAndFillRect(t *testing.T) {
	m, err := NewMap(5, 5, 1, r2.Vec{})
	require.NoError(t, err)

	m.FillRect(1, 1, 3, 2, Lethal)
	m.SetCost(10, 10, Lethal) // ignored

	assert.Equal(t, Lethal, m.Cost(1, 1))
	assert.Equal(t, Lethal, m.Cost(2, 1))
	assert.Equal(t, FreeSpace, m.Cost(3, 1))
	assert.Equal(t, FreeSpace, m.Cost(1, 2))
	assert.Equal(t, NoInformation, m.Cost(-1, 0))
	assert.Equal(t, Lethal, m.Data()[1*5+2])
}

func TestNewMap_Rejects(t *testing.T) {
	_, err := NewMap(-1, 2, 1, r2.Vec{})
	assert.Error(t, err)
	_, err = NewMap(2, 2, 0, r2.Vec{})
	assert.Error(t, err)
}

func writeDescriptor(t *testing.T, dir, image string) string {
	t.Helper()
	yamlPath := filepath.Join(dir, "map.yaml")
	doc := "image: " + image + "\nresolution: 0.05\norigin: [-1.0, -2.0, 0.0]\nnegate: 0\noccupied_thresh: 0.65\nfree_thresh: 0.196\n"
	require.NoError(t, os.WriteFile(yamlPath, []byte(doc), 0o644))
	return yamlPath
}

func TestLoadMap_PNG(t *testing.T) {
	dir := t.TempDir()

	// 3x2 image: top row black/grey/white, bottom row white.
	img := image.NewGray(image.Rect(0, 0, 3, 2))
	img.SetGray(0, 0, color.Gray{Y: 0})
	img.SetGray(1, 0, color.Gray{Y: 205})
	img.SetGray(2, 0, color.Gray{Y: 254})
	for x := 0; x < 3; x++ {
		img.SetGray(x, 1, color.Gray{Y: 254})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "map.png"), buf.Bytes(), 0o644))

	m, err := LoadMap(writeDescriptor(t, dir, "map.png"))
	require.NoError(t, err)

	assert.Equal(t, 3, m.SizeInCellsX())
	assert.Equal(t, 2, m.SizeInCellsY())
	assert.InDelta(t, 0.05, m.Resolution(), 1e-12)
	assert.Equal(t, r2.Vec{X: -1, Y: -2}, m.Origin)

	// Image top row becomes map row 1.
	assert.Equal(t, Lethal, m.Cost(0, 1))
	assert.Equal(t, NoInformation, m.Cost(1, 1))
	assert.Equal(t, FreeSpace, m.Cost(2, 1))
	assert.Equal(t, FreeSpace, m.Cost(0, 0))
}

func TestLoadMap_PGM(t *testing.T) {
	dir := t.TempDir()
	pgm := append([]byte("P5\n# created by test\n2 2\n255\n"), 0, 254, 254, 254)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "map.pgm"), pgm, 0o644))

	m, err := LoadMap(writeDescriptor(t, dir, "map.pgm"))
	require.NoError(t, err)

	assert.Equal(t, Lethal, m.Cost(0, 1))
	assert.Equal(t, FreeSpace, m.Cost(1, 1))
	assert.Equal(t, FreeSpace, m.Cost(0, 0))
}

func TestLoadMap_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("wrong extension", func(t *testing.T) {
		_, err := LoadMap(filepath.Join(dir, "map.json"))
		assert.Error(t, err)
	})

	t.Run("missing image", func(t *testing.T) {
		_, err := LoadMap(writeDescriptor(t, dir, "nope.png"))
		assert.Error(t, err)
	})

	t.Run("image outside descriptor dir", func(t *testing.T) {
		_, err := LoadMap(writeDescriptor(t, dir, "../map.png"))
		assert.ErrorIs(t, err, security.ErrPathEscape)
	})

	t.Run("unsupported image", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "map.txt"), []byte("not an image"), 0o644))
		_, err := LoadMap(writeDescriptor(t, dir, "map.txt"))
		assert.ErrorIs(t, err, ErrUnsupportedImage)
	})
}

func TestDescriptor_Validate(t *testing.T) {
	ok := Descriptor{Image: "a.png", Resolution: 0.1, Origin: []float64{0, 0, 0}, OccupiedThresh: 0.65, FreeThresh: 0.2}
	assert.NoError(t, ok.Validate())

	bad := ok
	bad.Resolution = 0
	assert.Error(t, bad.Validate())

	bad = ok
	bad.Origin = []float64{1}
	assert.Error(t, bad.Validate())

	bad = ok
	bad.FreeThresh = 0.9
	assert.Error(t, bad.Validate())
}
