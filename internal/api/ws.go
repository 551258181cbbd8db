package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/cnharrison/har-insights/internal/store"
)

const wsWriteTimeout = 10 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 64 * 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleStatusStream pushes the job record each time its status changes and
// closes the socket once the job is done or failed
func (s *server) handleStatusStream(c *gin.Context) {
	id := c.Param("id")
	rec, err := s.Store.Get(c.Request.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(c, http.StatusNotFound, "not_found", "no analysis with that id")
		return
	}
	if err != nil {
		writeError(c, http.StatusInternalServerError, "internal", "could not load the analysis")
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Warn().Err(err).Str("job_id", id).Msg("websocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	// Control frames are only processed while reading.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	changed := make(chan struct{}, 1)
	go func() {
		err := s.Store.Watch(ctx, id, func(store.Record) error {
			select {
			case changed <- struct{}{}:
			default:
			}
			return nil
		})
		if err != nil {
			s.Logger.Warn().Err(err).Str("job_id", id).Msg("status watch stopped")
		}
	}()

	ticker := time.NewTicker(s.PollInterval)
	defer ticker.Stop()

	var lastStatus store.Status
	for {
		if rec.Status != lastStatus {
			if err := writeRecord(conn, rec); err != nil {
				return
			}
			lastStatus = rec.Status
		}
		if rec.Status.Terminal() {
			deadline := time.Now().Add(wsWriteTimeout)
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(rec.Status)), deadline)
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-changed:
		case <-ticker.C:
		}

		next, err := s.Store.Get(ctx, id)
		if err != nil {
			// expired or store closing
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "job unavailable"), time.Now().Add(wsWriteTimeout))
			return
		}
		rec = next
	}
}

func writeRecord(conn *websocket.Conn, rec store.Record) error {
	if err := conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout)); err != nil {
		return err
	}
	return conn.WriteJSON(rec)
}
