// Package statusapi exposes a small read-only HTTP surface over a
// running or finished simulation: the current execute window, round
// count and, once the run has finished, its exit code. spec.md keeps "a
// simple static-file HTTP server" analogue explicitly in scope as an
// out-of-core I/O helper; this is that helper, built with the pack's
// gin-based web framework (grounded on
// casperlundberg-colony-process-offloader-algorithm's internal/api/server.go)
// instead of a hand-rolled net/http mux.
package statusapi

import (
	"net/http"
	"sync"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/shadowsim/controller/netsim"
)

// Snapshot is the point-in-time state the server reports.
type Snapshot struct {
	WindowStart netsim.SimulationTime `json:"window_start"`
	WindowEnd   netsim.SimulationTime `json:"window_end"`
	RoundCount  int                   `json:"round_count"`
	Finished    bool                  `json:"finished"`
	ExitCode    int                   `json:"exit_code,omitempty"`
}

// Server serves /status and /health over the latest Snapshot set via
// Update. Not started unless the CLI is given --status-addr.
type Server struct {
	mu       sync.RWMutex
	snapshot Snapshot
	router   *gin.Engine
}

// New builds a Server with routes registered but not yet listening.
func New() *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())

	corsCfg := cors.DefaultConfig()
	corsCfg.AllowAllOrigins = true
	router.Use(cors.New(corsCfg))

	s := &Server{router: router}
	router.GET("/status", s.getStatus)
	router.GET("/health", s.getHealth)
	return s
}

// Update replaces the current snapshot. Safe to call from the
// controller's goroutine while the manager runs on its own.
func (s *Server) Update(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshot = snap
}

func (s *Server) getStatus(c *gin.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c.JSON(http.StatusOK, s.snapshot)
}

func (s *Server) getHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ListenAndServe starts the HTTP server on addr. Blocks until the
// listener errors or is closed.
func (s *Server) ListenAndServe(addr string) error {
	return s.router.Run(addr)
}
