package extractor

import (
	"fmt"
	"strings"

	"listings-parser/internal/core/domain"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

// Pipeline реализует ListingExtractorPort. Документ разбирается goquery
// один раз и передается обоим экстракторам.
type Pipeline struct {
	structural *StructuralExtractor
	semantic   *SemanticExtractor
	logger     *zap.Logger
}

// NewPipeline создает конвейер извлечения.
func NewPipeline(structural *StructuralExtractor, semantic *SemanticExtractor, logger *zap.Logger) *Pipeline {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pipeline{
		structural: structural,
		semantic:   semantic,
		logger:     logger.With(zap.String("component", "ExtractionPipeline")),
	}
}

// Extract реализует ListingExtractorPort.
func (p *Pipeline) Extract(document string) ([]domain.ListingCandidate, domain.ExtractionPath, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return nil, domain.PathNone, "", fmt.Errorf("extractor: failed to parse document: %w", err)
	}

	if candidates, strategy := p.structural.Extract(doc); len(candidates) > 0 {
		return candidates, domain.PathStructural, strategy, nil
	}

	p.logger.Debug("No structural matches, trying embedded structured data")
	if candidates := p.semantic.Extract(doc); len(candidates) > 0 {
		return candidates, domain.PathSemantic, "", nil
	}
	return nil, domain.PathNone, "", nil
}
