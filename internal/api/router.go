// Package api exposes analysis jobs over HTTP.
package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/cnharrison/har-insights/internal/jobs"
	"github.com/cnharrison/har-insights/internal/observability"
	"github.com/cnharrison/har-insights/internal/store"
)

// Deps are the collaborators of the HTTP surface
type Deps struct {
	Queue          *jobs.Queue
	Store          *store.Store
	Metrics        *observability.Metrics
	Logger         zerolog.Logger
	MaxUploadBytes int64
	// PollInterval bounds how stale a status stream can get if a store
	// notification is missed. Defaults to one second.
	PollInterval time.Duration
}

type server struct {
	Deps
}

// NewRouter builds the gin engine with every route registered
func NewRouter(d Deps) *gin.Engine {
	if d.PollInterval <= 0 {
		d.PollInterval = time.Second
	}
	if d.MaxUploadBytes <= 0 {
		d.MaxUploadBytes = 100 << 20
	}
	s := &server{Deps: d}

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(d.Logger))

	r.GET("/health", s.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(d.Metrics.Registry(), promhttp.HandlerOpts{})))

	v1 := r.Group("/v1")
	v1.POST("/analyses", s.handleSubmit)
	v1.GET("/analyses/:id", s.handleGet)
	v1.GET("/analyses/:id/ws", s.handleStatusStream)

	return r
}
