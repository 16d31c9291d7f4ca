// Package gin exposes sitelens services over a JSON HTTP API.
package gin

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/fwojciec/sitelens"
	"github.com/gin-gonic/gin"
)

// ShutdownTimeout is the time given for outstanding requests to finish
// before the server is forced closed.
const ShutdownTimeout = 10 * time.Second

// Server serves the task API. Services must be set before Open or Handler
// is called.
type Server struct {
	router *gin.Engine
	server *http.Server
	ln     net.Listener

	// Addr is the address to listen on, e.g. ":5000".
	Addr string

	Tasks     sitelens.TaskService
	Runner    sitelens.TaskRunner
	Scheduler sitelens.Scheduler
	Asker     sitelens.Asker
	Logger    *slog.Logger
}

func init() {
	gin.SetMode(gin.ReleaseMode)
}

// NewServer returns a new Server with all routes registered.
func NewServer() *Server {
	s := &Server{
		router: gin.New(),
		Logger: slog.Default(),
	}
	s.server = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	s.router.Use(s.recovery(), s.logRequests())

	api := s.router.Group("/api")
	api.GET("/domains", s.handleDomains)
	api.POST("/scrape", s.handleScrape)
	api.POST("/schedule", s.handleSchedule)
	api.GET("/download/:id/:format", s.handleDownload)

	tasks := api.Group("/tasks")
	tasks.GET("", s.handleTaskList)
	tasks.POST("/bulk-delete", s.handleTaskBulkDelete)
	tasks.GET("/:id", s.handleTaskView)
	tasks.DELETE("/:id", s.handleTaskDelete)
	tasks.GET("/:id/progress", s.handleTaskProgress)
	tasks.POST("/:id/ask", s.handleTaskAsk)
	tasks.POST("/:id/star", s.handleTaskStar)
	tasks.POST("/:id/archive", s.handleTaskArchive)
	tasks.PUT("/:id/tags", s.handleTaskTags)
	tasks.POST("/:id/rerun", s.handleTaskRerun)

	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	return s
}

// Handler returns the HTTP handler serving the API.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Open starts listening on Addr and serves requests in the background.
func (s *Server) Open() error {
	ln, err := net.Listen("tcp", s.Addr)
	if err != nil {
		return err
	}
	s.ln = ln

	s.Logger.Info("http server listening", "addr", ln.Addr().String())
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.Logger.Error("http server stopped", "error", err)
		}
	}()
	return nil
}

// URL returns the base URL of the running server.
func (s *Server) URL() string {
	if s.ln == nil {
		return ""
	}
	return "http://" + s.ln.Addr().String()
}

// Close gracefully shuts down the server.
func (s *Server) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	return s.server.Shutdown(ctx)
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		attrs := []any{
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		}
		if len(c.Errors) > 0 {
			s.Logger.Error("http request", append(attrs, "errors", c.Errors.String())...)
			return
		}
		s.Logger.Debug("http request", attrs...)
	}
}

func (s *Server) recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		s.Logger.Error("http handler panicked", "path", c.Request.URL.Path, "panic", recovered)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	})
}

// codes maps application error codes to HTTP status codes.
var codes = map[string]int{
	sitelens.EINVALID:  http.StatusBadRequest,
	sitelens.ENOTFOUND: http.StatusNotFound,
	sitelens.ETIMEOUT:  http.StatusGatewayTimeout,
	sitelens.EFETCH:    http.StatusBadGateway,
}

// errorStatus returns the HTTP status code for an application error.
func errorStatus(code string) int {
	if v, ok := codes[code]; ok {
		return v
	}
	return http.StatusInternalServerError
}

// writeError writes err as a JSON error body. Internal errors are recorded
// on the context for the request logger.
func writeError(c *gin.Context, err error) {
	code := sitelens.ErrorCode(err)
	if code == sitelens.EINTERNAL {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(errorStatus(code), gin.H{"error": sitelens.ErrorMessage(err)})
}

// taskID parses the :id route parameter. Non-numeric IDs name no task.
func taskID(c *gin.Context) (int, error) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return 0, sitelens.Errorf(sitelens.ENOTFOUND, "Task not found")
	}
	return id, nil
}

// bindJSON decodes the request body into v. An empty body leaves v as is.
func bindJSON(c *gin.Context, v any) error {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		return nil
	}
	if err := c.ShouldBindJSON(v); err != nil {
		return sitelens.Errorf(sitelens.EINVALID, "Invalid request body: %s", err)
	}
	return nil
}
