package httpapi

import (
	"context"
	"time"

	"listings-parser/internal/constants"
	"listings-parser/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// SearchExecutor - входящий порт, который вызывает HTTP-обработчик.
type SearchExecutor interface {
	Execute(ctx context.Context, query domain.ListingQuery) (*domain.SearchResponse, error)
}

// Server - входящий адаптер HTTP API.
type Server struct {
	app      *fiber.App
	searches SearchExecutor
	logger   *zap.Logger
	now      func() time.Time
}

// NewServer создает fiber-приложение и регистрирует маршруты.
// gatherer может быть nil - тогда /metrics не регистрируется.
func NewServer(searches SearchExecutor, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &Server{
		app: fiber.New(fiber.Config{
			AppName:               constants.ServiceName,
			ReadTimeout:           10 * time.Second,
			WriteTimeout:          30 * time.Second,
			IdleTimeout:           60 * time.Second,
			DisableStartupMessage: true,
		}),
		searches: searches,
		logger:   logger.With(zap.String("component", "HTTPServer")),
		now:      time.Now,
	}

	s.app.Use(recover.New())
	s.app.Use(cors.New())
	s.app.Use(s.requestLogger)

	s.app.Get(constants.PathServices, s.handleSearch)
	s.app.Get(constants.PathHealth, s.handleHealth)
	s.app.Get(constants.PathRoot, s.handleRoot)
	if gatherer != nil {
		s.app.Get(constants.PathMetrics, adaptor.HTTPHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	return s
}

// App отдает fiber-приложение (используется в тестах через app.Test).
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen блокирует до остановки сервера.
func (s *Server) Listen(addr string) error {
	s.logger.Info("HTTP server listening", zap.String("addr", addr))
	return s.app.Listen(addr)
}

// Shutdown дожидается завершения активных запросов, но не дольше ctx.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) requestLogger(c *fiber.Ctx) error {
	start := s.now()
	err := c.Next()
	s.logger.Info("Request handled",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Int("status", c.Response().StatusCode()),
		zap.Duration("took", time.Since(start)),
	)
	return err
}
