package visualization

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// Writer saves rendered frames and image sets to disk
type Writer struct {
	// outputDir is the root directory for every file written
	outputDir string

	// format is "png" or "jpeg"
	format string
}

// NewWriter creates a writer rooted at outputDir. An empty format means png.
func NewWriter(outputDir, format string) (*Writer, error) {
	format = strings.ToLower(format)
	switch format {
	case "", "png":
		format = "png"
	case "jpeg", "jpg":
		format = "jpeg"
	default:
		return nil, fmt.Errorf("unsupported image format: %s (must be png or jpeg)", format)
	}
	return &Writer{outputDir: outputDir, format: format}, nil
}

// Extension returns the file extension used for images
func (w *Writer) Extension() string {
	if w.format == "jpeg" {
		return ".jpg"
	}
	return ".png"
}

// SaveImage writes img to name (without extension) below the output
// directory and returns the full path
func (w *Writer) SaveImage(img image.Image, name string) (string, error) {
	filename := filepath.Join(w.outputDir, name+w.Extension())
	if err := os.MkdirAll(filepath.Dir(filename), 0755); err != nil {
		return "", err
	}

	file, err := os.Create(filename)
	if err != nil {
		return "", err
	}

	if err := w.encode(file, img); err != nil {
		file.Close()
		return "", fmt.Errorf("failed to encode %s: %w", filename, err)
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return filename, nil
}

func (w *Writer) encode(file *os.File, img image.Image) error {
	if w.format == "jpeg" {
		return jpeg.Encode(file, img, &jpeg.Options{Quality: 90})
	}
	return png.Encode(file, img)
}

// SaveSequence writes images into subdir as prefix_000, prefix_001, ...
// and returns the number of files written
func SaveSequence[T image.Image](w *Writer, images []T, subdir, prefix string) (int, error) {
	for i, img := range images {
		name := filepath.Join(subdir, fmt.Sprintf("%s_%03d", prefix, i))
		if _, err := w.SaveImage(img, name); err != nil {
			return i, err
		}
	}
	return len(images), nil
}
