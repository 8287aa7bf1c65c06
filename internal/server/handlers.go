// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/pdiddy/paper-digest/internal/artifact"
	"github.com/pdiddy/paper-digest/internal/classify"
	"github.com/pdiddy/paper-digest/internal/pipeline"
	"github.com/pdiddy/paper-digest/internal/search"
	"github.com/pdiddy/paper-digest/internal/store"
	"github.com/pdiddy/paper-digest/pkg/types"
)

// errorResponse is the body of every non-2xx reply.
type errorResponse struct {
	Detail string `json:"detail"`
}

func abortWith(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, errorResponse{Detail: detail})
}

// internalError logs err and replies 500 with msg.
func (s *Server) internalError(c *gin.Context, msg string, err error) {
	_ = c.Error(err)
	s.logger.Error(msg, zap.Error(err))
	abortWith(c, http.StatusInternalServerError, fmt.Sprintf("%s: %v", msg, err))
}

type searchRequest struct {
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
	SortBy     string `json:"sort_by"`
	SortOrder  string `json:"sort_order"`
	YearFrom   int    `json:"year_from"`
	YearTo     int    `json:"year_to"`
}

func (s *Server) searchPapers(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	q := search.Query{
		Text:       req.Query,
		MaxResults: req.MaxResults,
		SortBy:     req.SortBy,
		SortOrder:  req.SortOrder,
		YearFrom:   req.YearFrom,
		YearTo:     req.YearTo,
	}
	if q.IsEmpty() {
		abortWith(c, http.StatusBadRequest, "query is required")
		return
	}
	if s.searcher == nil {
		abortWith(c, http.StatusServiceUnavailable, "search is not configured")
		return
	}

	results, err := s.searcher.Search(c.Request.Context(), q)
	if err != nil {
		s.internalError(c, "Error searching papers", err)
		return
	}
	out := make([]types.PaperMetadata, 0, len(results))
	for _, r := range results {
		out = append(out, r.Metadata())
	}
	c.JSON(http.StatusOK, out)
}

// pdfMagic is the leading bytes of every PDF file.
var pdfMagic = []byte("%PDF")

func (s *Server) uploadPaper(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			abortWith(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("file exceeds %d bytes", s.maxUpload))
			return
		}
		abortWith(c, http.StatusBadRequest, "file is required")
		return
	}
	topics := classify.ParseList(c.PostForm("topics"))

	f, err := fh.Open()
	if err != nil {
		s.internalError(c, "Error uploading file", err)
		return
	}
	defer f.Close()

	br := bufio.NewReader(f)
	head, _ := br.Peek(len(pdfMagic))
	if !bytes.Equal(head, pdfMagic) {
		abortWith(c, http.StatusBadRequest, "file is not a PDF")
		return
	}

	key := artifact.UploadKey(uuid.NewString())
	if err := s.artifacts.Put(c.Request.Context(), key, br); err != nil {
		s.internalError(c, "Error uploading file", err)
		return
	}
	s.logger.Info("paper uploaded", zap.String("filename", fh.Filename), zap.String("key", key), zap.Int64("bytes", fh.Size))
	s.submit(c, pipeline.Input{Source: types.SourceUpload, Ref: key, Topics: topics})
}

type paperRequest struct {
	URL       string   `json:"url"`
	DOI       string   `json:"doi"`
	TopicList []string `json:"topic_list"`
}

func (s *Server) submitURL(c *gin.Context) {
	var req paperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	u := strings.TrimSpace(req.URL)
	if u == "" {
		abortWith(c, http.StatusBadRequest, "URL is required")
		return
	}
	if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
		abortWith(c, http.StatusBadRequest, "URL must use http or https")
		return
	}
	s.submit(c, pipeline.Input{Source: types.SourceURL, Ref: u, Topics: req.TopicList})
}

func (s *Server) submitDOI(c *gin.Context) {
	var req paperRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWith(c, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	doi := strings.TrimSpace(req.DOI)
	if doi == "" {
		abortWith(c, http.StatusBadRequest, "DOI is required")
		return
	}
	s.submit(c, pipeline.Input{Source: types.SourceDOI, Ref: doi, Topics: req.TopicList})
}

func (s *Server) submit(c *gin.Context, in pipeline.Input) {
	task, err := s.tasks.Submit(c.Request.Context(), in)
	switch {
	case errors.Is(err, pipeline.ErrQueueFull), errors.Is(err, pipeline.ErrStopped):
		abortWith(c, http.StatusServiceUnavailable, err.Error())
		return
	case err != nil:
		s.internalError(c, "Error submitting paper", err)
		return
	}
	c.JSON(http.StatusAccepted, taskResponse{Task: task})
}

// taskResponse is a task plus its summary once completed.
type taskResponse struct {
	*types.Task
	Result *types.PaperSummary `json:"result,omitempty"`
}

func (s *Server) getTask(c *gin.Context) {
	ctx := c.Request.Context()
	task, err := s.store.GetTask(ctx, c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		abortWith(c, http.StatusNotFound, "Task not found")
		return
	}
	if err != nil {
		s.internalError(c, "Error loading task", err)
		return
	}

	resp := taskResponse{Task: task}
	if task.Status == types.TaskCompleted && task.SummaryID != "" {
		summary, err := s.store.GetSummary(ctx, task.SummaryID)
		if err != nil && !errors.Is(err, store.ErrNotFound) {
			s.internalError(c, "Error loading summary", err)
			return
		}
		resp.Result = summary
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) loadSummary(c *gin.Context) (*types.PaperSummary, bool) {
	summary, err := s.store.GetSummary(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		abortWith(c, http.StatusNotFound, "Summary not found")
		return nil, false
	}
	if err != nil {
		s.internalError(c, "Error loading summary", err)
		return nil, false
	}
	return summary, true
}

func (s *Server) getSummary(c *gin.Context) {
	if summary, ok := s.loadSummary(c); ok {
		c.JSON(http.StatusOK, summary)
	}
}

func (s *Server) getSummaryAudio(c *gin.Context) {
	summary, ok := s.loadSummary(c)
	if !ok {
		return
	}
	if summary.AudioPath == "" {
		abortWith(c, http.StatusNotFound, "Audio not generated for this summary")
		return
	}
	rc, err := s.artifacts.Open(c.Request.Context(), summary.AudioPath)
	if errors.Is(err, artifact.ErrNotFound) {
		abortWith(c, http.StatusNotFound, "Audio not generated for this summary")
		return
	}
	if err != nil {
		s.internalError(c, "Error opening audio", err)
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, -1, "audio/mpeg", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="summary_%s.mp3"`, summary.ID),
	})
}
