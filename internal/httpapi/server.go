package httpapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/voidcat-ai/reasoning-core/internal/rag"
	"github.com/voidcat-ai/reasoning-core/internal/taskmem"
	"github.com/voidcat-ai/reasoning-core/internal/voiderr"
)

// Config holds what New needs to wire an HTTP gateway against the rest of
// the reasoning core.
type Config struct {
	Addr               string
	Coordinator        *rag.Coordinator
	Store              *taskmem.Store
	Logger             *zap.Logger
	MaxConcurrentQuery int
	AllowOrigins       []string
}

// Server is the HTTP gateway: REST routes over the task/memory store and
// the query coordinator, plus a WebSocket change-event stream.
type Server struct {
	addr        string
	coordinator *rag.Coordinator
	store       *taskmem.Store
	logger      *zap.Logger
	hub         *Hub
	querySem    chan struct{}
	engine      *gin.Engine
	httpServer  *http.Server
	stopHub     chan struct{}
}

func defaultQueryOptions() rag.Options {
	return rag.DefaultOptions()
}

// New builds a Server with every route registered. Call Start to bind and
// serve.
func New(cfg Config) *Server {
	if cfg.MaxConcurrentQuery <= 0 {
		cfg.MaxConcurrentQuery = 8
	}
	gin.SetMode(gin.ReleaseMode)

	s := &Server{
		addr:        cfg.Addr,
		coordinator: cfg.Coordinator,
		store:       cfg.Store,
		logger:      cfg.Logger,
		hub:         NewHub(cfg.Logger),
		querySem:    make(chan struct{}, cfg.MaxConcurrentQuery),
		stopHub:     make(chan struct{}),
	}

	r := gin.New()
	r.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-ID"}
	r.Use(cors.New(corsConfig))

	r.GET("/health", s.health)
	r.GET("/diagnostics", s.diagnostics)
	r.POST("/query", s.query)

	api := r.Group("/vscode/api/v1")
	{
		api.GET("/system/status", s.systemStatus)
		api.GET("/system/recommendations", s.systemRecommendations)

		tasks := api.Group("/tasks")
		tasks.POST("", s.createTask)
		tasks.GET("", s.listTasks)
		tasks.GET("/stats", s.taskStats)
		tasks.GET("/:id", s.getTask)
		tasks.PUT("/:id", s.updateTask)
		tasks.PUT("/:id/move", s.moveTask)
		tasks.DELETE("/:id", s.deleteTask)

		projects := api.Group("/projects")
		projects.POST("", s.createProject)
		projects.GET("", s.listProjects)
		projects.GET("/:id", s.getProject)
		projects.DELETE("/:id", s.deleteProject)

		memories := api.Group("/memories")
		memories.POST("", s.createMemory)
		memories.GET("", s.searchMemories)
		memories.POST("/search", s.searchMemories)
		memories.GET("/categories", s.listCategories)
		memories.POST("/categories", s.registerCategory)

		api.GET("/ws", s.hub.HandleWS)
	}

	s.engine = r
	return s
}

// ensurePortFree checks addr is bindable before gin's own listener grabs
// it, so a busy port fails fast with a message naming the flag to change
// instead of a bare "address already in use" from net/http.
func ensurePortFree(addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return voiderr.New(voiderr.Internal, fmt.Sprintf("address %s is already in use; pick a different --http value", addr))
	}
	return ln.Close()
}

// Start binds the listener, serves until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Start(ctx context.Context) error {
	if err := ensurePortFree(s.addr); err != nil {
		return err
	}

	go s.hub.Run(s.stopHub)

	s.httpServer = &http.Server{Addr: s.addr, Handler: s.engine}

	serveErr := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	s.logger.Info("http gateway listening", zap.String("addr", s.addr))

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("http gateway shutting down")
	close(s.stopHub)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(shutdownCtx)
}
