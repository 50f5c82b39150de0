package councilhttp

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"braintrust/internal/council"
	"braintrust/internal/logger"
	"braintrust/internal/persona"
	"braintrust/internal/store/archive"

	"github.com/gin-gonic/gin"
)

// Deliberator runs one deliberation; *council.Engine satisfies it.
type Deliberator interface {
	Deliberate(ctx context.Context, req council.Request) (*council.Session, error)
}

// Archive is the read side of the session archive.
type Archive interface {
	List(ctx context.Context, limit, offset int) ([]archive.Entry, error)
	Get(ctx context.Context, id string) (*council.Session, error)
}

type Config struct {
	Addr     string
	Engine   Deliberator
	Registry *persona.Registry
	// Archive may be nil; the history routes then answer 404.
	Archive Archive
}

// Server exposes the council over HTTP.
type Server struct {
	addr     string
	engine   Deliberator
	registry *persona.Registry
	archive  Archive
	router   *gin.Engine
}

func NewServer(cfg Config) (*Server, error) {
	if cfg.Engine == nil {
		return nil, errors.New("council http: engine must not be nil")
	}
	if cfg.Registry == nil {
		cfg.Registry = persona.Default()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":9992"
	}
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	s := &Server{
		addr:     cfg.Addr,
		engine:   cfg.Engine,
		registry: cfg.Registry,
		archive:  cfg.Archive,
		router:   router,
	}
	s.registerRoutes()
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	api := s.router.Group("/api")
	api.GET("/personas", s.handlePersonas)
	api.POST("/deliberations", s.handleDeliberate)
	api.GET("/deliberations", s.handleList)
	api.GET("/deliberations/:id", s.handleGet)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handlePersonas(c *gin.Context) {
	out := s.registry.All()
	c.JSON(http.StatusOK, gin.H{"personas": out})
}

type deliberateRequest struct {
	Question  string   `json:"question" binding:"required"`
	Personas  []string `json:"personas"`
	NoSummary bool     `json:"no_summary"`
}

func (s *Server) handleDeliberate(c *gin.Context) {
	var req deliberateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	sess, err := s.engine.Deliberate(c.Request.Context(), council.Request{
		Question:  req.Question,
		Personas:  req.Personas,
		NoSummary: req.NoSummary,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, council.ErrEmptyQuestion) ||
			errors.Is(err, persona.ErrUnknownPersona) ||
			errors.Is(err, persona.ErrSummarizerNotAdvisor) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleList(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session archive is not configured"})
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
		return
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offset"})
		return
	}
	entries, err := s.archive.List(c.Request.Context(), limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"sessions": entries})
}

func (s *Server) handleGet(c *gin.Context) {
	if s.archive == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session archive is not configured"})
		return
	}
	id := strings.TrimSpace(c.Param("id"))
	sess, err := s.archive.Get(c.Request.Context(), id)
	if errors.Is(err, archive.ErrSessionNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sess)
}

// Start serves until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	srv := &http.Server{Addr: s.addr, Handler: s.router, ReadHeaderTimeout: 10 * time.Second}
	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	logger.Infof("council http listening on %s", s.addr)

	select {
	case <-ctx.Done():
		shCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shCtx)
		return nil
	case err := <-errCh:
		return err
	}
}
