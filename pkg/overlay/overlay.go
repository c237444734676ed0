// Package overlay reconstructs visual masks from property records and
// renders QA overlays: size-coded disks for detected objects and
// label-colormap blends over the source image.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"

	"cellquant/pkg/imgproc"
	"cellquant/pkg/regions"
)

// Size-tier colors: small objects render blue, medium green, large red.
var (
	tierSmall  = color.RGBA{R: 0, G: 0, B: 255, A: 255}
	tierMedium = color.RGBA{R: 0, G: 255, B: 0, A: 255}
	tierLarge  = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// tierColor maps a disk radius to its size tier.
func tierColor(radius int) color.RGBA {
	switch {
	case radius <= 2:
		return tierSmall
	case radius <= 4:
		return tierMedium
	default:
		return tierLarge
	}
}

// Reconstruct draws each record as a filled disk of radius
// ceil(sqrt(Area/pi)) at its centroid into a boolean mask and a
// color image. Overlapping disks OR together in the mask; in the color
// layer the last-drawn disk wins on overlap. Zero-area records are
// skipped.
func Reconstruct(records []*regions.RegionRecord, width, height int) (*imgproc.Mask, *image.RGBA) {
	mask := imgproc.NewMask(width, height)
	img := image.NewRGBA(image.Rect(0, 0, width, height))

	for _, r := range records {
		if r.Area <= 0 {
			continue
		}
		radius := int(math.Ceil(math.Sqrt(float64(r.Area) / math.Pi)))
		cx := int(math.Round(r.Centroid.X))
		cy := int(math.Round(r.Centroid.Y))
		c := tierColor(radius)

		for dy := -radius; dy <= radius; dy++ {
			for dx := -radius; dx <= radius; dx++ {
				if dx*dx+dy*dy > radius*radius {
					continue
				}
				x, y := cx+dx, cy+dy
				if x < 0 || x >= width || y < 0 || y >= height {
					continue
				}
				mask.Pix[y*width+x] = true
				img.SetRGBA(x, y, c)
			}
		}
	}
	return mask, img
}

// labelPalette cycles distinct hues for label visualization. The
// assignment is stable: label n always gets palette entry (n-1) mod len.
var labelPalette = []color.RGBA{
	{R: 230, G: 25, B: 75, A: 255},
	{R: 60, G: 180, B: 75, A: 255},
	{R: 255, G: 225, B: 25, A: 255},
	{R: 0, G: 130, B: 200, A: 255},
	{R: 245, G: 130, B: 48, A: 255},
	{R: 145, G: 30, B: 180, A: 255},
	{R: 70, G: 240, B: 240, A: 255},
	{R: 240, G: 50, B: 230, A: 255},
	{R: 210, G: 245, B: 60, A: 255},
	{R: 250, G: 190, B: 212, A: 255},
}

// LabelOverlay blends a label colormap over the grayscale source at the
// given alpha (0 = source only, 1 = labels only). Background pixels show
// the source unchanged.
func LabelOverlay(lm *regions.LabelMap, src *imgproc.Field, alpha float64) *image.RGBA {
	if alpha < 0 {
		alpha = 0
	} else if alpha > 1 {
		alpha = 1
	}
	img := image.NewRGBA(image.Rect(0, 0, lm.Width, lm.Height))
	for y := 0; y < lm.Height; y++ {
		for x := 0; x < lm.Width; x++ {
			idx := y*lm.Width + x
			gray := clampByte(src.Pix[idx] * 255)

			label := lm.Labels[idx]
			if label == 0 {
				img.SetRGBA(x, y, color.RGBA{R: gray, G: gray, B: gray, A: 255})
				continue
			}
			c := labelPalette[(label-1)%len(labelPalette)]
			img.SetRGBA(x, y, color.RGBA{
				R: blendByte(gray, c.R, alpha),
				G: blendByte(gray, c.G, alpha),
				B: blendByte(gray, c.B, alpha),
				A: 255,
			})
		}
	}
	return img
}

// MaskImage renders a binary mask as a black/white image for export.
func MaskImage(m *imgproc.Mask) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, m.Width, m.Height))
	for i, on := range m.Pix {
		if on {
			img.Pix[i] = 255
		}
	}
	return img
}

// SavePNG writes an image to disk, creating parent directories.
func SavePNG(img image.Image, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return nil
}

func clampByte(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v)
}

func blendByte(a, b uint8, alpha float64) uint8 {
	return clampByte((1-alpha)*float64(a) + alpha*float64(b))
}
