// Package verify renders injected pages for review: full-page screenshots in
// headless Chrome and plain-text Markdown snapshots.
package verify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

const defaultPageTimeout = 30 * time.Second

// Shooter captures screenshots of local HTML pages.
type Shooter struct {
	headless    bool
	pageTimeout time.Duration
	log         *slog.Logger
}

func New(headless bool, log *slog.Logger) *Shooter {
	return &Shooter{
		headless:    headless,
		pageTimeout: defaultPageTimeout,
		log:         log,
	}
}

// Capture loads each page from siteDir and writes <page>.png into outDir.
// A failing page does not stop the others; their errors are joined.
func (s *Shooter) Capture(ctx context.Context, siteDir string, pages []string, outDir string) ([]string, error) {
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("create screenshot dir: %w", err)
	}
	absSite, err := filepath.Abs(siteDir)
	if err != nil {
		return nil, fmt.Errorf("resolve site dir: %w", err)
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", s.headless),
	)...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	defer cancelBrowser()

	var written []string
	var errs []error
	for _, page := range pages {
		if err := ctx.Err(); err != nil {
			return written, err
		}
		out := filepath.Join(outDir, ScreenshotName(page))
		if err := s.capturePage(browserCtx, filepath.Join(absSite, page), out); err != nil {
			s.log.Warn("screenshot failed", "page", page, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", page, err))
			continue
		}
		s.log.Info("screenshot saved", "page", page, "path", out)
		written = append(written, out)
	}
	return written, errors.Join(errs...)
}

func (s *Shooter) capturePage(browserCtx context.Context, path, out string) error {
	tabCtx, cancelTab := chromedp.NewContext(browserCtx)
	defer cancelTab()
	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, s.pageTimeout)
	defer cancelTimeout()

	var buf []byte
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(FileURL(path)),
		chromedp.WaitReady("body"),
		chromedp.FullScreenshot(&buf, 100),
	)
	if err != nil {
		return err
	}
	return os.WriteFile(out, buf, 0o644)
}

// FileURL turns an absolute path into a file:// URL.
func FileURL(path string) string {
	u := url.URL{Scheme: "file", Path: filepath.ToSlash(path)}
	return u.String()
}

// ScreenshotName maps a page ID to its screenshot file name.
func ScreenshotName(page string) string {
	return strings.TrimSuffix(filepath.Base(page), filepath.Ext(page)) + ".png"
}
