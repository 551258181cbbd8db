package api

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cnharrison/har-insights/internal/insights"
	"github.com/cnharrison/har-insights/internal/jobs"
	"github.com/cnharrison/har-insights/internal/store"
)

type submitResponse struct {
	ID     string       `json:"id"`
	Status store.Status `json:"status"`
}

func (s *server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "queueDepth": s.Queue.Depth()})
}

// handleSubmit accepts a HAR file as multipart field "file" or as the raw body
func (s *server) handleSubmit(c *gin.Context) {
	rawPersona := c.Query("persona")
	if rawPersona == "" {
		writeError(c, http.StatusBadRequest, "persona_required", "query parameter persona is required")
		return
	}
	persona, err := insights.ParsePersona(rawPersona)
	if err != nil {
		writeError(c, http.StatusBadRequest, "invalid_persona", err.Error())
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.MaxUploadBytes)
	data, source, err := readUpload(c)
	if err != nil {
		if isTooLarge(err) {
			writeError(c, http.StatusRequestEntityTooLarge, "upload_too_large", "upload exceeds the size limit")
			return
		}
		writeError(c, http.StatusBadRequest, "invalid_upload", err.Error())
		return
	}
	if len(data) == 0 {
		writeError(c, http.StatusBadRequest, "empty_upload", "no HAR content was uploaded")
		return
	}

	id, err := s.Queue.Submit(c.Request.Context(), source, persona, data)
	if errors.Is(err, jobs.ErrQueueFull) {
		c.Header("Retry-After", "5")
		writeError(c, http.StatusServiceUnavailable, "queue_full", err.Error())
		return
	}
	if err != nil {
		s.Logger.Error().Err(err).Msg("submit failed")
		writeError(c, http.StatusInternalServerError, "internal", "could not queue the analysis")
		return
	}

	c.Header("Location", "/v1/analyses/"+id)
	c.JSON(http.StatusAccepted, submitResponse{ID: id, Status: store.StatusQueued})
}

func readUpload(c *gin.Context) ([]byte, string, error) {
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		header, err := c.FormFile("file")
		if err != nil {
			return nil, "", err
		}
		f, err := header.Open()
		if err != nil {
			return nil, "", err
		}
		defer f.Close()
		data, err := io.ReadAll(f)
		return data, header.Filename, err
	}

	data, err := io.ReadAll(c.Request.Body)
	return data, "", err
}

func isTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

func (s *server) handleGet(c *gin.Context) {
	rec, err := s.Store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "not_found", "no analysis with that id")
		return
	}
	if err != nil {
		s.Logger.Error().Err(err).Str("job_id", c.Param("id")).Msg("load job failed")
		writeError(c, http.StatusInternalServerError, "internal", "could not load the analysis")
		return
	}
	c.JSON(http.StatusOK, rec)
}
