package browser

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/playwright-community/playwright-go"
)

// Screenshotter saves full-page screenshots of the highlighted page.
type Screenshotter struct {
	outputDir string
}

func NewScreenshotter(dir string) (*Screenshotter, error) {
	if dir == "" {
		dir = filepath.Join(".", "screenshots")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create screenshot directory: %w", err)
	}
	return &Screenshotter{outputDir: dir}, nil
}

// Capture writes <name>_<timestamp>.png and returns its path.
func (s *Screenshotter) Capture(pg playwright.Page, name, message string) (string, error) {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	path := filepath.Join(s.outputDir, fmt.Sprintf("%s_%s.png", name, timestamp))
	log.Printf("📸 %s", message)

	if _, err := pg.Screenshot(playwright.PageScreenshotOptions{
		Path:     playwright.String(path),
		FullPage: playwright.Bool(true),
	}); err != nil {
		return "", fmt.Errorf("failed to capture screenshot: %w", err)
	}

	log.Printf("   Screenshot saved: %s", path)
	return path, nil
}
