package servers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/healthcheck"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.elastic.co/apm/module/apmfiber/v2"

	"github.com/tempora-io/tempora/core"
)

const (
	DefaultReadTimeout  = 3 * time.Second
	DefaultWriteTimeout = 3 * time.Second
	DefaultPort         = "8080"
	DefaultHost         = "localhost"
)

type Config struct {
	ReadTimeout  string   `mapstructure:"read_timeout"`
	WriteTimeout string   `mapstructure:"write_timeout"`
	Port         string   `mapstructure:"port"`
	Host         string   `mapstructure:"host"`
	Features     Features `mapstructure:"features"`
}

type Features struct {
	RequestID   RequestID   `mapstructure:"request_id"`
	HealthCheck HealthCheck `mapstructure:"health_check"`
	ElasticAPM  ElasticAPM  `mapstructure:"elastic_apm"`
}

type RequestID struct {
	Enabled bool `mapstructure:"enabled"`
}

type HealthCheck struct {
	Enabled bool `mapstructure:"enabled"`
}

type ElasticAPM struct {
	Enabled bool `mapstructure:"enabled"`
}

func WithConfig(cfg *Config) func(*Config) {
	return func(s *Config) {
		if cfg.ReadTimeout != "" {
			s.ReadTimeout = cfg.ReadTimeout
		}
		if cfg.WriteTimeout != "" {
			s.WriteTimeout = cfg.WriteTimeout
		}
		if cfg.Port != "" {
			s.Port = cfg.Port
		}
		if cfg.Host != "" {
			s.Host = cfg.Host
		}
		s.Features.RequestID.Enabled = cfg.Features.RequestID.Enabled
		s.Features.HealthCheck.Enabled = cfg.Features.HealthCheck.Enabled
		s.Features.ElasticAPM.Enabled = cfg.Features.ElasticAPM.Enabled
	}
}

// AdminServer exposes the schedule's lifecycle state and registered
// triggers to operators. It is host glue; the engine never depends on it.
type AdminServer struct {
	app      *fiber.App
	cfg      *Config
	schedule core.Schedule
}

func NewAdminServer(schedule core.Schedule, options ...func(*Config)) (*AdminServer, error) {
	cfg := &Config{
		ReadTimeout:  DefaultReadTimeout.String(),
		WriteTimeout: DefaultWriteTimeout.String(),
		Port:         DefaultPort,
		Host:         DefaultHost,
	}
	for _, option := range options {
		option(cfg)
	}

	fiberConfig, err := buildFiberConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}

	server := &AdminServer{
		app:      fiber.New(fiberConfig),
		cfg:      cfg,
		schedule: schedule,
	}
	server.applyMiddlewares()
	server.registerRoutes()
	return server, nil
}

func (s *AdminServer) applyMiddlewares() {
	s.app.Use(recover.New())
	if s.cfg.Features.RequestID.Enabled {
		s.app.Use(requestid.New())
	}
	if s.cfg.Features.HealthCheck.Enabled {
		s.app.Use(healthcheck.New())
	}
	if s.cfg.Features.ElasticAPM.Enabled {
		s.app.Use(apmfiber.Middleware())
	}
}

func (s *AdminServer) registerRoutes() {
	s.app.Get("/api/state", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"state": s.schedule.State().String()})
	})
	s.app.Get("/api/triggers", func(c *fiber.Ctx) error {
		entries := s.schedule.Entries()
		return c.JSON(fiber.Map{"count": len(entries), "triggers": entries})
	})
}

func (s *AdminServer) GetApp() *fiber.App {
	return s.app
}

func (s *AdminServer) Run() error {
	return s.app.Listen(fmt.Sprintf("%s:%s", s.cfg.Host, s.cfg.Port))
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func buildFiberConfig(cfg *Config) (fiber.Config, error) {
	var config fiber.Config
	if cfg.ReadTimeout != "" {
		readTimeout, err := time.ParseDuration(cfg.ReadTimeout)
		if err != nil {
			return fiber.Config{}, fmt.Errorf("invalid read_timeout: %s", cfg.ReadTimeout)
		}
		config.ReadTimeout = readTimeout
	} else {
		config.ReadTimeout = DefaultReadTimeout
	}
	if cfg.WriteTimeout != "" {
		writeTimeout, err := time.ParseDuration(cfg.WriteTimeout)
		if err != nil {
			return fiber.Config{}, fmt.Errorf("invalid write_timeout: %s", cfg.WriteTimeout)
		}
		config.WriteTimeout = writeTimeout
	} else {
		config.WriteTimeout = DefaultWriteTimeout
	}
	return config, nil
}
