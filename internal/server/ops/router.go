// Package ops serves the operational HTTP endpoints: health and metrics.
package ops

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/letterdesk/internal/logging"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HealthCheck reports whether a dependency is reachable.
type HealthCheck func(ctx context.Context) error

func NewRouter(checks map[string]HealthCheck) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		result := gin.H{}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				status = http.StatusServiceUnavailable
				result[name] = err.Error()
				continue
			}
			result[name] = "ok"
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "checks": result})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return r
}

// Server runs the ops router until its context is cancelled.
type Server struct {
	srv *http.Server
	log logging.Logger
}

func NewServer(addr string, checks map[string]HealthCheck, l logging.Logger) *Server {
	return &Server{
		srv: &http.Server{Addr: addr, Handler: NewRouter(checks), ReadHeaderTimeout: 5 * time.Second},
		log: l.With("module", "ops"),
	}
}

func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info(ctx, "ops server listening", "addr", s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
