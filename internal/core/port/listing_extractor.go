package port

import "listings-parser/internal/core/domain"

// ListingExtractorPort извлекает кандидатов из разметки страницы каталога.
type ListingExtractorPort interface {
	// Extract разбирает документ один раз: сначала CSS-стратегии, затем,
	// если они ничего не дали, встроенные JSON-LD блоки. path равен
	// domain.PathNone, если не нашлось ни одного кандидата.
	Extract(document string) (candidates []domain.ListingCandidate, path domain.ExtractionPath, strategy string, err error)
}
