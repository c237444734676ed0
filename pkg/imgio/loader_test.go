package imgio

import (
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"testing"
)

func TestFromImageSplitsChannels(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 0, B: 0, A: 255})
	img.SetRGBA(1, 0, color.RGBA{R: 0, G: 128, B: 255, A: 255})

	rgb := FromImage(img)
	if rgb.Grayscale {
		t.Error("RGBA source must not be flagged grayscale")
	}
	if math.Abs(rgb.Red.At(0, 0)-1) > 1e-3 || rgb.Green.At(0, 0) != 0 {
		t.Errorf("pixel 0 channels = (%v, %v, %v), want pure red",
			rgb.Red.At(0, 0), rgb.Green.At(0, 0), rgb.Blue.At(0, 0))
	}
	if math.Abs(rgb.Blue.At(1, 0)-1) > 1e-3 {
		t.Errorf("pixel 1 blue = %v, want ~1", rgb.Blue.At(1, 0))
	}
	if rgb.Green.At(1, 0) < 0.4 || rgb.Green.At(1, 0) > 0.6 {
		t.Errorf("pixel 1 green = %v, want ~0.5", rgb.Green.At(1, 0))
	}
}

func TestFromImageFlagsGrayscale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 4, 4))
	rgb := FromImage(img)
	if !rgb.Grayscale {
		t.Error("Gray source should be flagged grayscale")
	}

	img16 := image.NewGray16(image.Rect(0, 0, 4, 4))
	if !FromImage(img16).Grayscale {
		t.Error("Gray16 source should be flagged grayscale")
	}
}

func TestGrayLumaWeights(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	gray := FromImage(img).Gray()
	if math.Abs(gray.At(0, 0)-1) > 1e-3 {
		t.Errorf("luma of white = %v, want 1 (weights sum to 1)", gray.At(0, 0))
	}
}

func TestChannelByName(t *testing.T) {
	rgb := FromImage(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if rgb.Channel("red") != rgb.Red || rgb.Channel("GREEN") != rgb.Green || rgb.Channel("blue") != rgb.Blue {
		t.Error("Channel should resolve names case-insensitively")
	}
	if rgb.Channel("alpha") != nil {
		t.Error("unknown channel name should resolve to nil")
	}
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("failed to encode %s: %v", path, err)
	}
}

func TestListImagesSortedAndFiltered(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "b.png"))
	writePNG(t, filepath.Join(dir, "a.png"))
	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}

	paths, err := ListImages(dir)
	if err != nil {
		t.Fatalf("ListImages failed: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("listed %d files, want 2 images", len(paths))
	}
	if filepath.Base(paths[0]) != "a.png" || filepath.Base(paths[1]) != "b.png" {
		t.Errorf("paths = %v, want lexical order", paths)
	}
}

func TestListImagesEmptyDirErrors(t *testing.T) {
	if _, err := ListImages(t.TempDir()); err == nil {
		t.Error("a directory without images should error")
	}
}

func TestLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.png")

	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	img.SetRGBA(1, 1, color.RGBA{R: 200, G: 100, B: 50, A: 255})
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	f.Close()

	rgb, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if rgb.Width != 3 || rgb.Height != 3 {
		t.Errorf("dimensions = %dx%d, want 3x3", rgb.Width, rgb.Height)
	}
	if rgb.Red.At(1, 1) < 0.7 || rgb.Red.At(1, 1) > 0.85 {
		t.Errorf("red at (1,1) = %v, want ~200/255", rgb.Red.At(1, 1))
	}
}
