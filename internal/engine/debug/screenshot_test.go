package debug

import (
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"golang.org/x/image/bmp"
)

// testPixels returns a 2x2 bottom-up RGBA buffer: bottom row red, top row blue.
func testPixels() []byte {
	return []byte{
		255, 0, 0, 255, 255, 0, 0, 255, // bottom row
		0, 0, 255, 255, 0, 0, 255, 255, // top row
	}
}

func fixedClock() time.Time {
	return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC)
}

func TestCaptureFromPixelsPNG(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "shots")
	sc := NewScreenshotCapture(dir, "objview", "png")
	sc.now = fixedClock

	path, err := sc.CaptureFromPixels(testPixels(), 2, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels failed: %v", err)
	}
	if want := filepath.Join(dir, "objview_2024-05-01_12-30-00.000.png"); path != want {
		t.Errorf("path: got %s, want %s", path, want)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertFlipped(t, img)
}

func TestCaptureFromPixelsBMP(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "shot", "BMP")

	path, err := sc.CaptureFromPixels(testPixels(), 2, 2)
	if err != nil {
		t.Fatalf("CaptureFromPixels failed: %v", err)
	}
	if !strings.HasSuffix(path, ".bmp") {
		t.Errorf("expected .bmp file, got %s", path)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	img, err := bmp.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	assertFlipped(t, img)
}

func TestCaptureSizeMismatch(t *testing.T) {
	sc := NewScreenshotCapture(t.TempDir(), "shot", "png")
	if _, err := sc.CaptureFromPixels(make([]byte, 10), 2, 2); err == nil {
		t.Error("expected size mismatch error")
	}
}

func TestUnknownFormatFallsBackToPNG(t *testing.T) {
	sc := NewScreenshotCapture("", "shot", "tiff")
	if !strings.HasSuffix(sc.GenerateFilename(), ".png") {
		t.Errorf("expected png fallback, got %s", sc.GenerateFilename())
	}
}

func assertFlipped(t *testing.T, img image.Image) {
	t.Helper()

	r, _, b, _ := img.At(0, 0).RGBA()
	if b == 0 || r != 0 {
		t.Errorf("top-left pixel should be blue after flip, got r=%d b=%d", r, b)
	}
	r, _, b, _ = img.At(0, 1).RGBA()
	if r == 0 || b != 0 {
		t.Errorf("bottom-left pixel should be red after flip, got r=%d b=%d", r, b)
	}
}
