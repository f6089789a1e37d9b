package api

import (
	"bytes"
	"net/http"

	"github.com/dgallion1/docsplice/internal/outline"
	"github.com/dgallion1/docsplice/internal/parser"
)

// handleParse extracts and parses an upload synchronously.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	filename, data, ok := s.singleUpload(w, r)
	if !ok {
		return
	}
	defer r.MultipartForm.RemoveAll()

	p, err := parser.ForFile(filename, s.orchestrator.ParserOptions())
	if err != nil {
		jsonError(w, err.Error(), http.StatusBadRequest)
		return
	}
	paragraphs, err := p.Parse(bytes.NewReader(data), filename)
	if err != nil {
		s.log.Warn("extraction failed", "filename", filename, "error", err)
		jsonError(w, "extract: "+err.Error(), http.StatusUnprocessableEntity)
		return
	}

	res := outline.Parse(paragraphs)
	for _, warn := range res.Warnings {
		s.log.Warn("structure warning", "filename", filename, "kind", warn.Kind, "line", warn.Line, "message", warn.Message)
	}

	warnings := res.Warnings
	if warnings == nil {
		warnings = []outline.Warning{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"filename":   filename,
		"outline":    res.Outline,
		"warnings":   warnings,
		"paragraphs": res.Paragraphs,
	})
}
