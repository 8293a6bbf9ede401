// Package proxy serves one POST route per catalog tool. Each call merges the
// client's fields into the tool's fixed parameters, runs the model through a
// freshly built provider client and answers with a uniform JSON body:
// {output} or {text} on success, {error} on failure.
package proxy

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/DeniskaUa/ai-web-kruchko/pkg/api"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/catalog"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/db"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/provider"
	"github.com/DeniskaUa/ai-web-kruchko/pkg/security"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// StatusSuccess is returned by every tool route on success.
const StatusSuccess = http.StatusCreated

const (
	msgInvalidBody     = "Invalid request body."
	msgRequestTooLarge = "The request is too large."
)

// Recorder persists invocation records. It is write-only from the server's
// point of view.
type Recorder interface {
	Create(ctx context.Context, inv *db.Invocation) error
}

// Server holds the immutable dependencies shared by all routes.
type Server struct {
	catalog      *catalog.Catalog
	images       *security.Validator
	providers    provider.Factory
	history      Recorder
	validate     *validator.Validate
	maxBodyBytes int64
}

// NewServer wires a server. history may be nil.
func NewServer(cat *catalog.Catalog, images *security.Validator, providers provider.Factory, history Recorder) *Server {
	return &Server{
		catalog:      cat,
		images:       images,
		providers:    providers,
		history:      history,
		validate:     validator.New(),
		maxBodyBytes: maxBodySize(images.MaxImageSize()),
	}
}

// maxBodySize allows two base64 encoded images at the ceiling plus a prompt.
func maxBodySize(maxImage int64) int64 {
	encoded := (maxImage+2)/3*4 + 256
	return 2*encoded + 64*1024
}

// Router builds the gin engine with all routes registered.
func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery(), requestLogger())

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, api.Response{Error: "Not found."})
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, api.Response{Error: "Method not allowed."})
	})

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	group := r.Group(api.PathPrefix)
	group.GET("/tools", s.listTools)
	for _, t := range s.catalog.All() {
		group.POST("/"+t.Name, s.invoke(t))
	}

	return r
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("proxy_listening", "addr", addr, "tools", len(s.catalog.All()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	slog.Info("proxy_shutdown_start")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("proxy_shutdown_failed", "error", err)
		return err
	}
	slog.Info("proxy_shutdown_complete")
	return nil
}

func (s *Server) listTools(c *gin.Context) {
	tools := s.catalog.All()
	infos := make([]api.ToolInfo, 0, len(tools))
	for _, t := range tools {
		infos = append(infos, api.ToolInfo{
			Name:     t.Name,
			Title:    t.Title,
			Requires: t.Fields,
			Result:   string(t.Result),
		})
	}
	c.JSON(http.StatusOK, gin.H{"tools": infos})
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Info("http_request",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP())
	}
}
