// Package httpapi mirrors the frozen Graph's query methods as a Gin HTTP
// surface, the teacher-adjacent pack's own HTTP stack pattern in
// AleutianAI-AleutianFOSS/services/trace (gin.RouterGroup route tables,
// gin.H JSON error bodies, a Recovery-wrapped gin.New() router). Four
// routes mirror spec.md §6's illustrative query surface; /metrics and
// /ws/progress are ancillary additions, not replacements.
package httpapi

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"relgraph/internal/engine"
	"relgraph/internal/rlog"
)

// requestIDHeader is the header carrying each request's correlation id,
// generated with google/uuid the way AleutianAI-AleutianFOSS's agent
// phases stamp an InvocationID per unit of work.
const requestIDHeader = "X-Request-Id"

func requestIDMiddleware(log *rlog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set(requestIDHeader, id)
		c.Next()
		log.Debug("http request",
			rlog.F("request_id", id),
			rlog.F("method", c.Request.Method),
			rlog.F("path", c.Request.URL.Path),
			rlog.F("status", c.Writer.Status()),
		)
	}
}

// Server wraps a built engine.Result behind an HTTP query surface.
type Server struct {
	result *engine.Result
	log    *rlog.Logger
	router *gin.Engine

	upgrader websocket.Upgrader
	progress chan string
}

// New constructs a Server over an already-built Result. Passing a nil
// log falls back to rlog.Default().
func New(result *engine.Result, log *rlog.Logger) *Server {
	if log == nil {
		log = rlog.Default()
	}
	s := &Server{
		result:   result,
		log:      log,
		progress: make(chan string, 64),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
	s.router = s.newRouter()
	return s
}

// Router returns the underlying *gin.Engine, for callers (tests, or
// cmd/relgraph's serve subcommand) that want to run it themselves.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// Publish pushes a construction-phase event to any connected
// /ws/progress subscribers. Non-blocking; drops the event if the
// buffer is full rather than stalling the caller.
func (s *Server) Publish(event string) {
	select {
	case s.progress <- event:
	default:
	}
}

func (s *Server) newRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestIDMiddleware(s.log))

	router.GET("/files", s.handleFiles)
	// gin's named params match one path segment; repository-relative file
	// paths routinely contain "/", so the action is kept out front and the
	// path itself is the trailing wildcard (gin.Param("filepath") includes
	// the leading "/", stripped in pathParam below).
	router.GET("/file/metadata/*filepath", s.handleFileMetadata)
	router.GET("/file/related/*filepath", s.handleFileRelated)
	router.GET("/pairs", s.handlePairs)

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws/progress", s.handleProgressWS)

	return router
}

func (s *Server) handleFiles(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"files": s.result.Graph.Files()})
}

func (s *Server) handleFileMetadata(c *gin.Context) {
	path := pathParam(c)
	if !s.knownFile(path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown file", "path": path})
		return
	}
	c.JSON(http.StatusOK, s.result.Graph.FileMetadata(path))
}

func (s *Server) handleFileRelated(c *gin.Context) {
	path := pathParam(c)
	if !s.knownFile(path) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown file", "path": path})
		return
	}
	c.JSON(http.StatusOK, gin.H{"related": s.result.Graph.RelatedFiles(path)})
}

// pathParam strips the leading "/" gin's "*filepath" wildcard always
// includes, recovering the bare repository-relative path.
func pathParam(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("filepath"), "/")
}

func (s *Server) handlePairs(c *gin.Context) {
	a := c.Query("a")
	b := c.Query("b")
	if a == "" || b == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "both a and b query params are required"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"pairs": s.result.Graph.PairsBetweenFiles(a, b)})
}

func (s *Server) handleProgressWS(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", rlog.F("error", err.Error()))
		return
	}
	defer conn.Close()

	for {
		select {
		case event, ok := <-s.progress:
			if !ok {
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, []byte(event)); err != nil {
				return
			}
		case <-c.Request.Context().Done():
			return
		}
	}
}

func (s *Server) knownFile(path string) bool {
	for _, f := range s.result.Graph.Files() {
		if f == path {
			return true
		}
	}
	return false
}
