package httpapi

import (
	"errors"
	"strings"
	"time"

	"listings-parser/internal/constants"
	"listings-parser/internal/core/domain"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const missingParamsMessage = "City and service are required"

// handleSearch обслуживает GET /api/services?city=&service=.
// Ошибки загрузки и извлечения приходят внутри конверта со статусом 200.
func (s *Server) handleSearch(c *fiber.Ctx) error {
	query := domain.ListingQuery{
		City:            strings.TrimSpace(c.Query("city")),
		ServiceCategory: strings.TrimSpace(c.Query("service")),
	}
	if query.City == "" || query.ServiceCategory == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": missingParamsMessage})
	}

	resp, err := s.searches.Execute(c.UserContext(), query)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidQuery) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": missingParamsMessage})
		}
		s.logger.Error("Search failed unexpectedly", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(resp)
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleRoot(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"name":    constants.ServiceName,
		"version": constants.ServiceVersion,
		"endpoints": fiber.Map{
			"services": "GET " + constants.PathServices + "?city={city}&service={service}",
			"health":   "GET " + constants.PathHealth,
			"metrics":  "GET " + constants.PathMetrics,
		},
		"categories": constants.ServiceCategories,
	})
}
