// Package monitor is an optional, off-by-default live status server:
// a thin Fiber app that exposes the current annealing run's progress
// over HTTP, for an operator who wants to watch a long run without
// tailing logs.
package monitor

import (
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// Status is the latest snapshot of run progress, updated by the
// annealer's reporting hook and served as JSON.
type Status struct {
	Phase      string  `json:"phase"`
	Iteration  int     `json:"iteration"`
	Cost       float64 `json:"cost"`
	Groups     int     `json:"groups"`
	Unroutable int     `json:"unroutable"`
	Dropped    int64   `json:"dropped_records"`
}

// GraphStats is a static summary of the frozen graph, served once the
// graph has been built.
type GraphStats struct {
	Nodes        int `json:"nodes"`
	Edges        int `json:"edges"`
	StrainedEdges int `json:"strained_edges"`
}

// Server is the monitor's Fiber app plus the mutable status it serves.
type Server struct {
	app *fiber.App

	mu     sync.RWMutex
	status Status
	graph  GraphStats
}

// New builds a monitor server. When token is non-empty, every request
// except GET /health must carry "Authorization: Bearer <token>" — a
// static check, not the partner/API-key lookup this pattern traces
// back to (see DESIGN.md: there is a single operator here, not a
// partner ecosystem with individually issued keys).
func New(token string) *Server {
	s := &Server{}

	app := fiber.New(fiber.Config{
		AppName:      "railplan monitor",
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "${time} | ${status} | ${latency} | ${method} ${path}\n",
		TimeFormat: "15:04:05",
	}))
	app.Use(cors.New(cors.Config{AllowOrigins: "*", AllowMethods: "GET"}))

	// Registered ahead of the auth middleware so it answers without a
	// token.
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"ok": true})
	})

	if token != "" {
		app.Use(bearerAuth(token))
	}

	app.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(s.Status())
	})
	app.Get("/graph/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.GraphStats())
	})

	s.app = app
	return s
}

func bearerAuth(token string) fiber.Handler {
	const prefix = "Bearer "
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if len(header) <= len(prefix) || header[:len(prefix)] != prefix || header[len(prefix):] != token {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "unauthorized",
				"message": "Authorization: Bearer <monitor_token> required",
			})
		}
		return c.Next()
	}
}

// Update replaces the served status. Safe to call from the annealer's
// single goroutine while Listen serves concurrent HTTP requests.
func (s *Server) Update(st Status) {
	s.mu.Lock()
	s.status = st
	s.mu.Unlock()
}

// Status returns the current status snapshot.
func (s *Server) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetGraphStats records the built graph's size, served by GET
// /graph/stats for the life of the process.
func (s *Server) SetGraphStats(st GraphStats) {
	s.mu.Lock()
	s.graph = st
	s.mu.Unlock()
}

// GraphStats returns the graph size summary set by SetGraphStats.
func (s *Server) GraphStats() GraphStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.graph
}

// Listen starts serving on addr. Blocks until the server stops.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
