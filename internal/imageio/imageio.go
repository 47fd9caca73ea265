// Package imageio reads and writes image sequences as frames.
package imageio

import (
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/samber/lo"
	"github.com/sirupsen/logrus"
	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/opd-ai/magnify/frame"
)

// ErrNoFrames indicates a directory without any decodable image files.
var ErrNoFrames = errors.New("no image frames found")

var extensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".gif":  true,
	".bmp":  true,
	".tif":  true,
	".tiff": true,
	".webp": true,
}

// List returns the image files in dir in lexical order, which is the frame
// order of a sequence named frame_0001.png, frame_0002.png and so on.
func List(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("list frames: %w", err)
	}
	files := lo.FilterMap(entries, func(e os.DirEntry, _ int) (string, bool) {
		if e.IsDir() || !extensions[strings.ToLower(filepath.Ext(e.Name()))] {
			return "", false
		}
		return filepath.Join(dir, e.Name()), true
	})
	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoFrames, dir)
	}
	sort.Strings(files)
	return files, nil
}

// Decode reads one image file in any registered format.
func Decode(path string) (image.Image, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	img, format, err := image.Decode(fh)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	logrus.WithFields(logrus.Fields{
		"function": "imageio.Decode",
		"path":     path,
		"format":   format,
		"width":    img.Bounds().Dx(),
		"height":   img.Bounds().Dy(),
	}).Debug("Decoded image")
	return img, nil
}

// Resize scales img to width pixels wide, keeping its aspect ratio. A width
// of zero or the image's own width returns img unchanged.
func Resize(img image.Image, width int) image.Image {
	b := img.Bounds()
	if width <= 0 || width == b.Dx() {
		return img
	}
	height := max(1, b.Dy()*width/b.Dx())
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.BiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)
	return dst
}

// ReadFrame decodes path, scales it to width and converts it to a frame.
func ReadFrame(path string, width int, grayscale bool) (*frame.Frame, error) {
	img, err := Decode(path)
	if err != nil {
		return nil, err
	}
	return frame.FromImage(Resize(img, width), grayscale), nil
}

// WriteFrame encodes f as a PNG file at path.
func WriteFrame(path string, f *frame.Frame) error {
	if err := f.Validate(); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fh, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(fh, f.ToImage()); err != nil {
		fh.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return fh.Close()
}

// OutputName is the file name of the index-th output frame.
func OutputName(index int) string {
	return fmt.Sprintf("frame_%06d.png", index)
}
