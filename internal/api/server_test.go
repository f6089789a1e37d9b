package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/docsplice/internal/config"
	"github.com/dgallion1/docsplice/internal/pipeline"
)

const testDoc = `PAGE: home.html {
SECTION: Hero
Votre avenir digital commence ici
SECTION: Atouts
• Expertise Azure
• Green IT
}
PAGE: about.html {
SECTION: Promesse
Un partenaire fiable
}
SECTION: perdue
`

func newTestServer(t *testing.T, apiKey string) *Server {
	t.Helper()
	cfg := config.Config{
		APIKey:         apiKey,
		WorkerCount:    1,
		MaxQueueSize:   4,
		MaxUploadBytes: 1 << 20,
		JobTTL:         time.Hour,
	}
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(cfg, nil, nil, log)
	orch.Start(context.Background())
	t.Cleanup(orch.Stop)
	return NewServer(orch, log, cfg)
}

func uploadRequest(t *testing.T, path, filename, content string, fields map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for k, v := range fields {
		require.NoError(t, mw.WriteField(k, v))
	}
	fw, err := mw.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func serve(s *Server, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, "secret")
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestAuth(t *testing.T) {
	s := newTestServer(t, "secret")

	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	assert.Equal(t, http.StatusUnauthorized, serve(s, req).Code)

	req = httptest.NewRequest(http.MethodGet, "/api/stats", nil)
	req.Header.Set("Authorization", "Bearer secret")
	assert.Equal(t, http.StatusOK, serve(s, req).Code)
}

func TestAuthDisabled(t *testing.T) {
	s := newTestServer(t, "")
	rec := serve(s, httptest.NewRequest(http.MethodGet, "/api/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["injection_enabled"])
}

func TestParse(t *testing.T) {
	s := newTestServer(t, "")
	rec := serve(s, uploadRequest(t, "/api/parse", "contenus.txt", testDoc, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	body := rec.Body.String()
	assert.Less(t, strings.Index(body, `"home.html"`), strings.Index(body, `"about.html"`))

	var resp struct {
		Outline    map[string][]map[string]any `json:"outline"`
		Warnings   []map[string]any            `json:"warnings"`
		Paragraphs int                         `json:"paragraphs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 12, resp.Paragraphs)
	require.Len(t, resp.Outline["home.html"], 2)
	assert.Equal(t, "list", resp.Outline["home.html"][1]["kind"])
	require.Len(t, resp.Warnings, 1)
	assert.Equal(t, "orphan_section", resp.Warnings[0]["kind"])
}

func TestParse_Rejections(t *testing.T) {
	s := newTestServer(t, "")

	rec := serve(s, uploadRequest(t, "/api/parse", "data.csv", "a,b", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "unsupported file type")

	rec = serve(s, uploadRequest(t, "/api/parse", "big.txt", strings.Repeat("x", 2<<20), nil))
	assert.NotEqual(t, http.StatusOK, rec.Code)

	req := httptest.NewRequest(http.MethodPost, "/api/parse", strings.NewReader("not a form"))
	assert.Equal(t, http.StatusBadRequest, serve(s, req).Code)
}

func TestJobLifecycle(t *testing.T) {
	s := newTestServer(t, "")

	rec := serve(s, uploadRequest(t, "/api/jobs", "contenus.txt", testDoc, nil))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var created struct {
		JobID   string `json:"job_id"`
		PollURL string `json:"poll_url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	require.NotEmpty(t, created.JobID)
	assert.Equal(t, "/api/jobs/"+created.JobID, created.PollURL)

	var snap pipeline.JobSnapshot
	require.Eventually(t, func() bool {
		rec := serve(s, httptest.NewRequest(http.MethodGet, created.PollURL, nil))
		if rec.Code != http.StatusOK {
			return false
		}
		if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
			return false
		}
		return snap.Status.Terminal()
	}, 5*time.Second, 10*time.Millisecond)
	assert.Equal(t, pipeline.StatusCompleted, snap.Status)
	assert.Equal(t, 2, snap.Progress.Pages)
	assert.Len(t, snap.Warnings, 1)

	rec = serve(s, httptest.NewRequest(http.MethodGet, created.PollURL+"/outline", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), `"Votre avenir digital commence ici"`)

	rec = serve(s, httptest.NewRequest(http.MethodGet, created.PollURL+"/outline?format=yaml", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/yaml", rec.Header().Get("Content-Type"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "home.html:"), rec.Body.String())

	rec = serve(s, httptest.NewRequest(http.MethodGet, created.PollURL+"/outline?format=toml", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestJob_NotFound(t *testing.T) {
	s := newTestServer(t, "")
	assert.Equal(t, http.StatusNotFound, serve(s, httptest.NewRequest(http.MethodGet, "/api/jobs/nope", nil)).Code)
	assert.Equal(t, http.StatusNotFound, serve(s, httptest.NewRequest(http.MethodGet, "/api/jobs/nope/outline", nil)).Code)
}

func TestJob_InjectDisabled(t *testing.T) {
	s := newTestServer(t, "")
	rec := serve(s, uploadRequest(t, "/api/jobs", "contenus.txt", testDoc, map[string]string{"inject": "true"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(s, uploadRequest(t, "/api/jobs", "contenus.txt", testDoc, map[string]string{"inject": "maybe"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBatchJobs(t *testing.T) {
	s := newTestServer(t, "")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for name, content := range map[string]string{"a.txt": testDoc, "b.csv": "x"} {
		fw, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = io.WriteString(fw, content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/jobs/batch", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := serve(s, req)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())
	var resp struct {
		Jobs []map[string]any `json:"jobs"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Jobs, 2)

	byName := map[string]map[string]any{}
	for _, j := range resp.Jobs {
		byName[j["filename"].(string)] = j
	}
	assert.NotEmpty(t, byName["a.txt"]["job_id"])
	assert.Contains(t, byName["b.csv"]["error"], "unsupported file type")
}

func TestSingleUpload_RemovesSpilledPartsOnFailure(t *testing.T) {
	s := newTestServer(t, "")
	// Every file part goes to a temp file.
	s.formMemory = 0

	tests := []struct {
		name  string
		field string
		file  string
		code  int
	}{
		{"unsupported extension", "file", "payload.exe", http.StatusBadRequest},
		{"missing file part", "attachment", "doc.txt", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body bytes.Buffer
			mw := multipart.NewWriter(&body)
			fw, err := mw.CreateFormFile(tt.field, tt.file)
			require.NoError(t, err)
			_, err = io.WriteString(fw, testDoc)
			require.NoError(t, err)
			require.NoError(t, mw.Close())
			req := httptest.NewRequest(http.MethodPost, "/api/parse", &body)
			req.Header.Set("Content-Type", mw.FormDataContentType())

			rec := httptest.NewRecorder()
			_, _, ok := s.singleUpload(rec, req)
			require.False(t, ok)
			assert.Equal(t, tt.code, rec.Code)

			fhs := req.MultipartForm.File[tt.field]
			require.Len(t, fhs, 1)
			_, err = fhs[0].Open()
			assert.Error(t, err, "temp file should be gone")
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"../../etc/passwd.txt": "passwd.txt",
		"dir/contenus.docx":    "contenus.docx",
		"a..b.md":              "a_b.md",
		"":                     "unnamed",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), in)
	}
}
