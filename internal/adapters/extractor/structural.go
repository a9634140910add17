package extractor

import (
	"listings-parser/internal/core/domain"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// StructuralExtractor перебирает стратегии по порядку; первая стратегия,
// давшая хотя бы одну карточку, побеждает. Результаты разных стратегий
// не смешиваются.
type StructuralExtractor struct {
	strategies  []SelectorStrategy
	maxListings int
	logger      *zap.Logger
}

// NewStructuralExtractor создает экстрактор. Пустой список стратегий
// заменяется на DefaultStrategies.
func NewStructuralExtractor(strategies []SelectorStrategy, maxListings int, logger *zap.Logger) *StructuralExtractor {
	if len(strategies) == 0 {
		strategies = DefaultStrategies
	}
	if maxListings <= 0 || maxListings > domain.MaxListings {
		maxListings = domain.MaxListings
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StructuralExtractor{
		strategies:  strategies,
		maxListings: maxListings,
		logger:      logger.With(zap.String("component", "StructuralExtractor")),
	}
}

// Extract возвращает кандидатов первой сработавшей стратегии и ее имя.
func (e *StructuralExtractor) Extract(doc *goquery.Document) ([]domain.ListingCandidate, string) {
	for _, strategy := range e.strategies {
		candidates := strategy.Match(doc, e.maxListings)
		if len(candidates) == 0 {
			e.logger.Debug("Strategy produced no listings", zap.String("strategy", strategy.Name))
			continue
		}
		e.logger.Debug("Strategy matched", zap.String("strategy", strategy.Name), zap.Int("count", len(candidates)))
		return candidates, strategy.Name
	}
	return nil, ""
}
