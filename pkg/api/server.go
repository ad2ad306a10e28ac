package api

import (
	"context"

	"colstore.io/server/pkg/coordinator"
	"colstore.io/server/pkg/registry"
	"colstore.io/server/pkg/storage"
	"github.com/labstack/echo"
)

const (
	version = "/v1"
)

// Cfg api server cfg
type Cfg struct {
	Addr string
}

// Server the management http server, rules and catalog views plus a
// manual cycle trigger
type Server struct {
	cfg      Cfg
	server   *echo.Echo
	store    storage.Storage
	registry registry.Registry
	runner   *coordinator.Runner
}

// NewServer returns a api server
func NewServer(cfg Cfg, store storage.Storage, reg registry.Registry, runner *coordinator.Runner) *Server {
	s := &Server{
		cfg:      cfg,
		server:   echo.New(),
		store:    store,
		registry: reg,
		runner:   runner,
	}

	s.initRoute()
	return s
}

func (s *Server) initRoute() {
	versionGroup := s.server.Group(version)
	versionGroup.GET("/rules", s.defaultRules())
	versionGroup.PUT("/rules", s.putDefaultRules())
	versionGroup.GET("/rules/:datasource", s.rules())
	versionGroup.PUT("/rules/:datasource", s.putRules())
	versionGroup.GET("/segments", s.segments())
	versionGroup.POST("/segments", s.putSegment())
	versionGroup.DELETE("/segments/:id", s.markUnused())
	versionGroup.GET("/servers", s.servers())
	versionGroup.GET("/cluster/stats", s.stats())
	versionGroup.POST("/cluster/cycle", s.cycle())
	versionGroup.GET("/health", s.health())
}

// Start start the api server
func (s *Server) Start() error {
	return s.server.Start(s.cfg.Addr)
}

// Stop stop the api server
func (s *Server) Stop() error {
	return s.server.Shutdown(context.TODO())
}
