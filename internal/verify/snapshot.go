package verify

import (
	"fmt"
	"os"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/JohannesKaufmann/html-to-markdown/plugin"
)

// Snapshot renders the visible text of a page as Markdown so injected copy
// can be reviewed or diffed without a browser.
func Snapshot(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	converter.Use(plugin.GitHubFlavored())
	converter.Remove("head", "nav", "noscript", "svg", "iframe")

	out, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("convert html: %w", err)
	}
	return out, nil
}

// SnapshotFile reads a page from disk and renders its snapshot.
func SnapshotFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read page: %w", err)
	}
	return Snapshot(string(data))
}
