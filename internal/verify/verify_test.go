package verify

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshot(t *testing.T) {
	page := `<html><head><title>Crafto</title><script>var a = 1;</script></head><body>
<nav><a href="/">Accueil</a></nav>
<h1>Votre avenir digital commence ici</h1>
<p>Hawaii accompagne les PME.</p>
<ul class="p-0 list-style-01 fs-16"><li>Expertise Azure</li><li>Green IT</li></ul>
</body></html>`

	out, err := Snapshot(page)
	require.NoError(t, err)
	assert.Contains(t, out, "# Votre avenir digital commence ici")
	assert.Contains(t, out, "Hawaii accompagne les PME.")
	assert.Contains(t, out, "- Expertise Azure")
	assert.NotContains(t, out, "Crafto")
	assert.NotContains(t, out, "Accueil")
	assert.NotContains(t, out, "var a")
}

func TestSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.html")
	require.NoError(t, os.WriteFile(path, []byte("<p>Bonjour</p>"), 0o644))

	out, err := SnapshotFile(path)
	require.NoError(t, err)
	assert.Equal(t, "Bonjour", strings.TrimSpace(out))

	_, err = SnapshotFile(filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestFileURL(t *testing.T) {
	assert.Equal(t, "file:///srv/site/demo%20page.html", FileURL("/srv/site/demo page.html"))
}

func TestScreenshotName(t *testing.T) {
	assert.Equal(t, "demo-it-business.png", ScreenshotName("demo-it-business.html"))
	assert.Equal(t, "about.png", ScreenshotName("about"))
}
