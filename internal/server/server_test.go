// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/paper-digest/internal/artifact"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/internal/search"
	"github.com/pdiddy/paper-digest/internal/store"
	"github.com/pdiddy/paper-digest/pkg/types"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeSubmitter struct {
	inputs []pipeline.Input
	err    error
}

func (f *fakeSubmitter) Submit(_ context.Context, in pipeline.Input) (*types.Task, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.inputs = append(f.inputs, in)
	return &types.Task{ID: "task-1", Status: types.TaskPending, Stage: types.StageReceived, Source: in.Source, Input: in.Ref}, nil
}

type fakeSearcher struct {
	got     search.Query
	results []types.SearchResult
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, q search.Query) ([]types.SearchResult, error) {
	f.got = q
	return f.results, f.err
}

type env struct {
	srv       *Server
	tasks     *fakeSubmitter
	searcher  *fakeSearcher
	store     *store.Memory
	artifacts *artifact.Local
}

func newEnv(t *testing.T) *env {
	t.Helper()
	arts, err := artifact.NewLocal(t.TempDir())
	require.NoError(t, err)
	e := &env{
		tasks:     &fakeSubmitter{},
		searcher:  &fakeSearcher{},
		store:     store.NewMemory(),
		artifacts: arts,
	}
	e.srv = New(Config{
		Tasks:          e.tasks,
		Searcher:       e.searcher,
		Store:          e.store,
		Artifacts:      e.artifacts,
		MaxUploadBytes: 1 << 20,
	})
	return e
}

func (e *env) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	e.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, path string, body any) *http.Request {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	return req
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body.Detail
}

func TestHealth(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestMetrics(t *testing.T) {
	e := newEnv(t)
	e.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestCORSAllowsAnyOrigin(t *testing.T) {
	e := newEnv(t)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "https://frontend.example")
	rec := e.do(t, req)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestSearchPapers(t *testing.T) {
	e := newEnv(t)
	date := time.Date(2023, 1, 17, 0, 0, 0, 0, time.UTC)
	e.searcher.results = []types.SearchResult{{
		Identifier: "2301.07041",
		Title:      "Attention",
		Authors:    []string{"Ann"},
		Abstract:   "We attend.",
		Date:       date,
		URL:        "http://arxiv.org/abs/2301.07041v1",
		Source:     types.SourceArxiv,
	}}

	rec := e.do(t, jsonRequest(t, http.MethodPost, "/papers/search", map[string]any{
		"query": "attention", "max_results": 5, "sort_by": "submittedDate", "sort_order": "ascending",
		"year_from": 2020, "year_to": 2023,
	}))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, search.Query{Text: "attention", MaxResults: 5, SortBy: "submittedDate", SortOrder: "ascending", YearFrom: 2020, YearTo: 2023}, e.searcher.got)

	var got []types.PaperMetadata
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Attention", got[0].Title)
	assert.Equal(t, types.SourceArxiv, got[0].Source)
	require.NotNil(t, got[0].PublicationDate)
	assert.True(t, date.Equal(*got[0].PublicationDate))
}

func TestSearchPapersErrors(t *testing.T) {
	e := newEnv(t)

	rec := e.do(t, jsonRequest(t, http.MethodPost, "/papers/search", map[string]any{"query": "  "}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "query is required", detail(t, rec))

	e.searcher.err = errors.New("arxiv down")
	rec = e.do(t, jsonRequest(t, http.MethodPost, "/papers/search", map[string]any{"query": "x"}))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, detail(t, rec), "arxiv down")
}

func TestSubmitURL(t *testing.T) {
	tests := []struct {
		name       string
		body       any
		wantStatus int
		wantDetail string
	}{
		{"ok", map[string]any{"url": "https://example.org/p.pdf", "topic_list": []string{"nlp"}}, http.StatusAccepted, ""},
		{"missing url", map[string]any{"topic_list": []string{"nlp"}}, http.StatusBadRequest, "URL is required"},
		{"bad scheme", map[string]any{"url": "ftp://example.org/p.pdf"}, http.StatusBadRequest, "URL must use http or https"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			rec := e.do(t, jsonRequest(t, http.MethodPost, "/papers/url", tt.body))
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, detail(t, rec))
				assert.Empty(t, e.tasks.inputs)
				return
			}
			require.Len(t, e.tasks.inputs, 1)
			assert.Equal(t, pipeline.Input{Source: types.SourceURL, Ref: "https://example.org/p.pdf", Topics: []string{"nlp"}}, e.tasks.inputs[0])

			var task types.Task
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &task))
			assert.Equal(t, "task-1", task.ID)
			assert.Equal(t, types.TaskPending, task.Status)
		})
	}
}

func TestSubmitDOI(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, jsonRequest(t, http.MethodPost, "/papers/doi", map[string]any{"doi": " 10.1000/xyz "}))
	require.Equal(t, http.StatusAccepted, rec.Code)
	require.Len(t, e.tasks.inputs, 1)
	assert.Equal(t, types.SourceDOI, e.tasks.inputs[0].Source)
	assert.Equal(t, "10.1000/xyz", e.tasks.inputs[0].Ref)

	rec = e.do(t, jsonRequest(t, http.MethodPost, "/papers/doi", map[string]any{"url": "https://x"}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "DOI is required", detail(t, rec))

	req := httptest.NewRequest(http.MethodPost, "/papers/doi", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec = e.do(t, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitQueueFull(t *testing.T) {
	e := newEnv(t)
	e.tasks.err = pipeline.ErrQueueFull
	rec := e.do(t, jsonRequest(t, http.MethodPost, "/papers/doi", map[string]any{"doi": "10.1000/xyz"}))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func multipartUpload(t *testing.T, content []byte, topics string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if content != nil {
		fw, err := mw.CreateFormFile("file", "paper.pdf")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.WriteField("topics", topics))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/papers/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestUploadPaper(t *testing.T) {
	e := newEnv(t)
	rec := e.do(t, multipartUpload(t, []byte("%PDF-1.4 body"), "nlp, vision ,"))
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	require.Len(t, e.tasks.inputs, 1)
	in := e.tasks.inputs[0]
	assert.Equal(t, types.SourceUpload, in.Source)
	assert.True(t, strings.HasPrefix(in.Ref, artifact.UploadsPrefix))
	assert.Equal(t, []string{"nlp", "vision"}, in.Topics)

	ok, err := e.artifacts.Exists(context.Background(), in.Ref)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestUploadPaperRejects(t *testing.T) {
	tests := []struct {
		name       string
		content    []byte
		wantStatus int
	}{
		{"missing file", nil, http.StatusBadRequest},
		{"not a pdf", []byte("<html>nope</html>"), http.StatusBadRequest},
		{"too large", append([]byte("%PDF"), bytes.Repeat([]byte("a"), 2<<20)...), http.StatusRequestEntityTooLarge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			rec := e.do(t, multipartUpload(t, tt.content, ""))
			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			assert.Empty(t, e.tasks.inputs)
		})
	}
}

func TestGetTask(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.store.PutTask(ctx, &types.Task{ID: "pending", Status: types.TaskPending, Stage: types.StageReceived}))
	require.NoError(t, e.store.PutTask(ctx, &types.Task{ID: "done", Status: types.TaskCompleted, Stage: types.StageDone, SummaryID: "s1"}))
	require.NoError(t, e.store.PutTask(ctx, &types.Task{ID: "bad", Status: types.TaskFailed, Stage: types.StageFailed, Message: "could not extract text from the PDF"}))
	require.NoError(t, e.store.PutSummary(ctx, &types.PaperSummary{ID: "s1", PaperID: "done", StructuredSummary: types.StructuredSummary{Summary: "Short."}}))

	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/tasks/pending", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotContains(t, rec.Body.String(), `"result"`)

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/tasks/done", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var done struct {
		TaskID string              `json:"task_id"`
		Status types.TaskStatus    `json:"status"`
		Result *types.PaperSummary `json:"result"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &done))
	assert.Equal(t, "done", done.TaskID)
	assert.Equal(t, types.TaskCompleted, done.Status)
	require.NotNil(t, done.Result)
	assert.Equal(t, "Short.", done.Result.Summary)

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/tasks/bad", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "could not extract text from the PDF")

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/tasks/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Task not found", detail(t, rec))
}

func TestGetSummaryAndAudio(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	require.NoError(t, e.artifacts.Put(ctx, artifact.AudioKey("s1"), strings.NewReader("ID3-audio")))
	require.NoError(t, e.store.PutSummary(ctx, &types.PaperSummary{ID: "s1", AudioPath: artifact.AudioKey("s1")}))
	require.NoError(t, e.store.PutSummary(ctx, &types.PaperSummary{ID: "silent"}))
	require.NoError(t, e.store.PutSummary(ctx, &types.PaperSummary{ID: "lost", AudioPath: artifact.AudioKey("lost")}))

	rec := e.do(t, httptest.NewRequest(http.MethodGet, "/summaries/s1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var got types.PaperSummary
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, "s1", got.ID)

	rec = e.do(t, httptest.NewRequest(http.MethodGet, "/summaries/s1/audio", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "audio/mpeg", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "summary_s1.mp3")
	assert.Equal(t, "ID3-audio", rec.Body.String())

	tests := []struct {
		path       string
		wantDetail string
	}{
		{"/summaries/missing", "Summary not found"},
		{"/summaries/missing/audio", "Summary not found"},
		{"/summaries/silent/audio", "Audio not generated for this summary"},
		{"/summaries/lost/audio", "Audio not generated for this summary"},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := e.do(t, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.Equal(t, tt.wantDetail, detail(t, rec))
		})
	}
}
