package occupancy

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r2"
	"gopkg.in/yaml.v3"

	"github.com/banshee-data/coverage.planner/internal/security"
)

// ErrUnsupportedImage is returned when the map image is neither PNG nor binary PGM.
var ErrUnsupportedImage = errors.New("unsupported map image format")

// maxDescriptorSize caps the YAML descriptor read.
const maxDescriptorSize = 1 * 1024 * 1024

// Descriptor is the map-server style YAML that accompanies a map image.
type Descriptor struct {
	Image          string    `yaml:"image"`
	Resolution     float64   `yaml:"resolution"`
	Origin         []float64 `yaml:"origin"`
	Negate         int       `yaml:"negate"`
	OccupiedThresh float64   `yaml:"occupied_thresh"`
	FreeThresh     float64   `yaml:"free_thresh"`
}

// Validate checks the descriptor fields that LoadMap depends on.
func (d *Descriptor) Validate() error {
	if d.Image == "" {
		return fmt.Errorf("map descriptor has no image")
	}
	if d.Resolution <= 0 {
		return fmt.Errorf("resolution must be positive, got %f", d.Resolution)
	}
	if len(d.Origin) < 2 {
		return fmt.Errorf("origin needs at least x and y, got %d values", len(d.Origin))
	}
	if d.FreeThresh < 0 || d.OccupiedThresh > 1 || d.FreeThresh > d.OccupiedThresh {
		return fmt.Errorf("thresholds must satisfy 0 <= free_thresh (%f) <= occupied_thresh (%f) <= 1",
			d.FreeThresh, d.OccupiedThresh)
	}
	return nil
}

// LoadMap reads a YAML descriptor and the image it references. Relative
// image paths are resolved against the descriptor's directory and may not
// leave it. The origin
// yaw, if present, is ignored.
func LoadMap(descriptorPath string) (*Map, error) {
	cleanPath := filepath.Clean(descriptorPath)
	if ext := filepath.Ext(cleanPath); ext != ".yaml" && ext != ".yml" {
		return nil, fmt.Errorf("map descriptor must have .yaml extension, got %q", ext)
	}
	info, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat map descriptor: %w", err)
	}
	if info.Size() > maxDescriptorSize {
		return nil, fmt.Errorf("map descriptor too large: %d bytes (max %d)", info.Size(), maxDescriptorSize)
	}
	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read map descriptor: %w", err)
	}

	var desc Descriptor
	if err := yaml.Unmarshal(data, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse map descriptor: %w", err)
	}
	if err := desc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid map descriptor: %w", err)
	}

	imagePath, err := security.ResolveReference(cleanPath, desc.Image)
	if err != nil {
		return nil, fmt.Errorf("invalid map image: %w", err)
	}
	f, err := os.Open(imagePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open map image: %w", err)
	}
	defer f.Close()

	img, err := decodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", imagePath, err)
	}
	return FromImage(img, &desc)
}

// FromImage converts a grayscale map image to costs using the trinary
// interpretation: occupied above occupied_thresh, free below free_thresh,
// unknown in between. Image row 0 is the top of the map, so rows are flipped.
func FromImage(img image.Image, desc *Descriptor) (*Map, error) {
	b := img.Bounds()
	m, err := NewMap(b.Dx(), b.Dy(), desc.Resolution, r2.Vec{X: desc.Origin[0], Y: desc.Origin[1]})
	if err != nil {
		return nil, err
	}
	for py := b.Min.Y; py < b.Max.Y; py++ {
		my := b.Max.Y - 1 - py
		for px := b.Min.X; px < b.Max.X; px++ {
			g := color.GrayModel.Convert(img.At(px, py)).(color.Gray)
			occ := float64(255-g.Y) / 255.0
			if desc.Negate != 0 {
				occ = float64(g.Y) / 255.0
			}
			cost := NoInformation
			switch {
			case occ > desc.OccupiedThresh:
				cost = Lethal
			case occ < desc.FreeThresh:
				cost = FreeSpace
			}
			m.SetCost(px-b.Min.X, my, cost)
		}
	}
	return m, nil
}

func decodeImage(r io.Reader) (image.Image, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(2)
	if err != nil {
		return nil, err
	}
	if bytes.Equal(magic, []byte("P5")) {
		return decodePGM(br)
	}
	img, _, err := image.Decode(br)
	if errors.Is(err, image.ErrFormat) {
		return nil, ErrUnsupportedImage
	}
	return img, err
}

// decodePGM reads a binary (P5) PGM with maxval <= 255.
func decodePGM(br *bufio.Reader) (image.Image, error) {
	var header [4]int
	token, err := pgmToken(br)
	if err != nil {
		return nil, err
	}
	if token != "P5" {
		return nil, ErrUnsupportedImage
	}
	for i := 1; i < 4; i++ {
		token, err = pgmToken(br)
		if err != nil {
			return nil, fmt.Errorf("pgm header: %w", err)
		}
		header[i], err = strconv.Atoi(token)
		if err != nil || header[i] <= 0 {
			return nil, fmt.Errorf("pgm header: bad value %q", token)
		}
	}
	width, height, maxval := header[1], header[2], header[3]
	if maxval > 255 {
		return nil, fmt.Errorf("%w: 16-bit pgm", ErrUnsupportedImage)
	}

	img := image.NewGray(image.Rect(0, 0, width, height))
	if _, err := io.ReadFull(br, img.Pix); err != nil {
		return nil, fmt.Errorf("pgm data: %w", err)
	}
	if maxval != 255 {
		for i, v := range img.Pix {
			img.Pix[i] = uint8(int(v) * 255 / maxval)
		}
	}
	return img, nil
}

// pgmToken returns the next whitespace-delimited header token, skipping
// comments, and consumes exactly one trailing whitespace byte.
func pgmToken(br *bufio.Reader) (string, error) {
	var sb strings.Builder
	for {
		c, err := br.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return sb.String(), nil
			}
			return "", err
		}
		switch {
		case c == '#' && sb.Len() == 0:
			if _, err := br.ReadString('\n'); err != nil {
				return "", err
			}
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			if sb.Len() > 0 {
				return sb.String(), nil
			}
		default:
			sb.WriteByte(c)
		}
	}
}
