package compositor

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"os"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load opens and decodes the image at path.
func Load(path string) (image.Image, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open image: %w", err)
	}
	defer f.Close()
	return Decode(f, path)
}

// Decode decodes an image from r. name is only used in errors. The format
// name reported by the registered decoder is returned alongside the image.
func Decode(r io.Reader, name string) (image.Image, string, error) {
	img, format, err := image.Decode(bufio.NewReader(r))
	if err != nil {
		return nil, "", &UnsupportedFormatError{Path: name, Err: err}
	}
	if img.Bounds().Empty() {
		return nil, "", &UnsupportedFormatError{Path: name, Err: fmt.Errorf("image has no pixels")}
	}
	return img, format, nil
}
