// Package artifact persists parsed outlines as JSON or YAML documents keyed by
// page ID. Page and section order survive a round trip in both encodings.
package artifact

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/docsplice/internal/doctree"
)

// Format selects the artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat maps a format name from flags or config to a Format.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported artifact format %q", name)
}

// FormatFor picks the format from a file extension.
func FormatFor(path string) (Format, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	if ext == "" {
		return "", fmt.Errorf("artifact %s: missing extension", path)
	}
	return ParseFormat(ext)
}

// Encode writes the outline to w.
func Encode(w io.Writer, o *doctree.Outline, f Format) error {
	switch f {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(o); err != nil {
			return fmt.Errorf("encode json artifact: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(outlineNode(o)); err != nil {
			return fmt.Errorf("encode yaml artifact: %w", err)
		}
		return enc.Close()
	}
	return fmt.Errorf("unsupported artifact format %q", f)
}

// Decode reads an outline from r. Empty input yields an empty outline.
func Decode(r io.Reader, f Format) (*doctree.Outline, error) {
	switch f {
	case FormatJSON:
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("read json artifact: %w", err)
		}
		o := doctree.NewOutline()
		if len(bytes.TrimSpace(data)) == 0 {
			return o, nil
		}
		if err := json.Unmarshal(data, o); err != nil {
			return nil, fmt.Errorf("decode json artifact: %w", err)
		}
		return o, nil
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return doctree.NewOutline(), nil
			}
			return nil, fmt.Errorf("decode yaml artifact: %w", err)
		}
		return outlineFromNode(&doc)
	}
	return nil, fmt.Errorf("unsupported artifact format %q", f)
}

// Save writes the outline to path, choosing the format from its extension.
func Save(path string, o *doctree.Outline) error {
	f, err := FormatFor(path)
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := Encode(&buf, o, f); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create artifact dir: %w", err)
		}
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write artifact: %w", err)
	}
	return nil
}

// Load reads an outline saved by Save.
func Load(path string) (*doctree.Outline, error) {
	f, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open artifact: %w", err)
	}
	defer file.Close()
	return Decode(file, f)
}
