package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go-openclaw-highlighter/internal/engine"
	"go-openclaw-highlighter/internal/keywords"
	"go-openclaw-highlighter/internal/models"
	"go-openclaw-highlighter/internal/page"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jobPage = `<html><body>
<div class="job-card-container"><div class="artdeco-entity-lockup__title">Golang Developer</div></div>
<div class="jobs-box__html-content"><p>Golang and GC required.</p></div>
</body></html>`

type memoryStore struct {
	src *keywords.Memory
}

func (m memoryStore) Save(raw []string) ([]string, error) {
	return m.src.Set(raw), nil
}

func newTestServer(t *testing.T) (*gin.Engine, *server) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	doc, err := page.ParseString(jobPage)
	require.NoError(t, err)

	cfg := engine.DefaultConfig()
	cfg.CardDebounce = 20 * time.Millisecond
	cfg.DescriptionDebounce = 20 * time.Millisecond
	cfg.PollInterval = 10 * time.Millisecond

	src := keywords.NewMemory("Golang")
	hl := engine.New(doc, src, cfg)
	hl.Start(context.Background())
	t.Cleanup(hl.Stop)
	require.Eventually(t, func() bool {
		return hl.Monitor(engine.TargetDescription).Passes() > 0
	}, 2*time.Second, 10*time.Millisecond)

	s := &server{hl: hl, doc: doc, store: memoryStore{src: src}, cfg: cfg}
	return newRouter(s), s
}

func doJSON(r http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	r, _ := newTestServer(t)
	w := doJSON(r, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"healthy"`)
}

func TestUpdateKeywords(t *testing.T) {
	r, s := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/keywords", gin.H{"keywords": []string{"GC"}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.UpdateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.UpdateStatusSuccess, resp.Status)
	assert.Equal(t, []string{"GC"}, resp.Keywords)

	out := s.doc.String()
	assert.Contains(t, out, `>GC</span>`)
	assert.NotContains(t, out, `>Golang</span>`)
}

func TestUpdateKeywordsClear(t *testing.T) {
	r, s := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/keywords", gin.H{"keywords": []string{}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"success","keywords":[]}`, w.Body.String())
	assert.NotContains(t, s.doc.String(), "jobhl-mark")
}

func TestUpdateKeywordsMissingPayload(t *testing.T) {
	r, s := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/keywords", gin.H{})
	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp models.UpdateResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, models.UpdateStatusError, resp.Status)
	assert.Equal(t, "No keywords provided.", resp.Message)
	assert.Equal(t, []string{"Golang"}, s.hl.Keywords())
}

func TestUpdateKeywordsBadJSON(t *testing.T) {
	r, _ := newTestServer(t)
	req := httptest.NewRequest(http.MethodPost, "/keywords", strings.NewReader("{"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHighlight(t *testing.T) {
	r, _ := newTestServer(t)

	w := doJSON(r, http.MethodPost, "/highlight", gin.H{"html": jobPage, "keywords": []string{"Golang", "GC"}})
	require.Equal(t, http.StatusOK, w.Code)

	var resp highlightResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Report.Markers)
	assert.Equal(t, 1, resp.Report.Sensitive)
	assert.Equal(t, 1, resp.Report.Emphasis)
	assert.Contains(t, resp.HTML, `data-jobhl-tier="sensitive"`)

	w = doJSON(r, http.MethodPost, "/highlight", gin.H{"keywords": []string{"x"}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoadPageIsRehighlighted(t *testing.T) {
	r, s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPut, "/page", strings.NewReader(
		`<html><body><div class="jobs-box__html-content">Remote Golang team</div></body></html>`))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code)

	require.Eventually(t, func() bool {
		return strings.Contains(s.doc.String(), `>Golang</span> team`)
	}, 2*time.Second, 10*time.Millisecond)

	w = doJSON(r, http.MethodGet, "/page", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Remote ")
}
