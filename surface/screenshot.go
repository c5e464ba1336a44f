package surface

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot saves the next drawn frame as a PNG in ScreenshotDir, named
// after label.
func (r *Renderer) Screenshot(label string) {
	r.screenshotQueue = append(r.screenshotQueue, label)
}

// flushScreenshots writes the finished frame once for every queued label.
func (r *Renderer) flushScreenshots(screen *ebiten.Image) {
	if len(r.screenshotQueue) == 0 {
		return
	}
	defer func() { r.screenshotQueue = r.screenshotQueue[:0] }()
	logger := r.engine.Logger()

	if err := os.MkdirAll(r.ScreenshotDir, 0o755); err != nil {
		logger.Error("screenshot directory", "dir", r.ScreenshotDir, "err", err)
		return
	}
	img := frameImage(screen)
	now := time.Now()
	for _, label := range r.screenshotQueue {
		path := screenshotPath(r.ScreenshotDir, now, label)
		if err := writePNG(path, img); err != nil {
			logger.Error("screenshot", "err", err)
			continue
		}
		logger.Info("screenshot saved", "path", path, "world", r.engine.Frame().World)
	}
}

// frameImage reads screen back as a straight-alpha image. ebiten pixels are
// premultiplied.
func frameImage(screen *ebiten.Image) *image.NRGBA {
	b := screen.Bounds()
	img := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	screen.ReadPixels(img.Pix)
	for px := img.Pix; len(px) >= 4; px = px[4:] {
		a := int(px[3])
		if a == 0 || a == 255 {
			continue
		}
		for c := range 3 {
			px[c] = uint8(min(int(px[c])*255/a, 255))
		}
	}
	return img
}

// screenshotPath names a screenshot "<date>_<time>_<label>.png" inside dir.
func screenshotPath(dir string, at time.Time, label string) string {
	return filepath.Join(dir, fmt.Sprintf("%s_%s.png", at.Format("20060102_150405"), sanitizeLabel(label)))
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("surface: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		_ = f.Close()
		return fmt.Errorf("surface: encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps ASCII letters, digits, '-' and '.' and maps everything
// else to '_'. Blank labels become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
