// Package imgio loads multi-channel fluorescence images and splits them
// into the fixed channel semantics of the pipeline: channel 0 red
// marker, channel 1 green/primary marker, channel 2 blue nuclear
// marker. PNG, JPEG, TIFF, and BMP rasters are supported.
package imgio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"cellquant/pkg/imgproc"
)

// RGBImage is the split three-channel raster handed to the pipeline.
// The channel fields are normalized to [0,1] and owned by the caller;
// the pipeline derives working copies and never mutates them.
type RGBImage struct {
	Red   *imgproc.Field
	Green *imgproc.Field
	Blue  *imgproc.Field

	Width  int
	Height int

	// Grayscale marks sources that decoded to a single-channel color
	// model; the pipeline rejects these as a shape error.
	Grayscale bool
}

// Load decodes an image file and splits it into channels.
func Load(path string) (*RGBImage, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open image: %w", err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return FromImage(img), nil
}

// FromImage splits a decoded image into normalized channel fields.
func FromImage(img image.Image) *RGBImage {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	out := &RGBImage{
		Red:    imgproc.NewField(w, h),
		Green:  imgproc.NewField(w, h),
		Blue:   imgproc.NewField(w, h),
		Width:  w,
		Height: h,
	}

	switch img.ColorModel() {
	case color.GrayModel, color.Gray16Model:
		out.Grayscale = true
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			idx := y*w + x
			// 16-bit samples normalized to [0,1].
			out.Red.Pix[idx] = float64(r) / 65535.0
			out.Green.Pix[idx] = float64(g) / 65535.0
			out.Blue.Pix[idx] = float64(b) / 65535.0
		}
	}
	return out
}

// Gray returns the luma grayscale of the image, used by the
// diffuse-region detector.
func (im *RGBImage) Gray() *imgproc.Field {
	out := imgproc.NewField(im.Width, im.Height)
	for i := range out.Pix {
		out.Pix[i] = 0.299*im.Red.Pix[i] + 0.587*im.Green.Pix[i] + 0.114*im.Blue.Pix[i]
	}
	return out
}

// Channel returns the field for a semantic channel name.
func (im *RGBImage) Channel(name string) *imgproc.Field {
	switch strings.ToLower(name) {
	case "red":
		return im.Red
	case "green":
		return im.Green
	case "blue":
		return im.Blue
	}
	return nil
}

// supportedExtensions are the raster formats the batch loader picks up.
var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// ListImages returns the supported image files of a directory in
// lexical order, so batch runs are reproducible.
func ListImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if supportedExtensions[ext] {
			paths = append(paths, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(paths)
	if len(paths) == 0 {
		return nil, fmt.Errorf("no supported images found in %s", dir)
	}
	return paths, nil
}
