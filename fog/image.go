package fog

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var ErrUnsupportedImage = errors.New("unsupported base image")

// LoadImage decodes a base image. PNG, JPEG, GIF, BMP and WebP are
// registered.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open base image: %w", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrUnsupportedImage, path, err)
	}
	return img, nil
}

// ResolveImagePath joins a relative calibration path onto root. Absolute
// paths are accepted only when they lie under root, and paths that climb
// out of root are rejected. An empty root accepts any path.
func ResolveImagePath(root, path string) (string, error) {
	if root == "" {
		return filepath.Clean(path), nil
	}
	full := filepath.Join(root, path)
	if filepath.IsAbs(path) {
		full = filepath.Clean(path)
	}
	rel, err := filepath.Rel(root, full)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("image path %q escapes %q", path, root)
	}
	return full, nil
}

// Open loads the calibrated image and builds its map.
func Open(cal Calibration, root string) (*Map, error) {
	if err := cal.Validate(); err != nil {
		return nil, err
	}
	path, err := ResolveImagePath(root, cal.ImagePath)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConstruction, err)
	}
	img, err := LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConstruction, err)
	}
	return NewMap(cal, img)
}
