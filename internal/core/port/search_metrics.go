package port

import (
	"listings-parser/internal/core/domain"
	"time"
)

// SearchMetricsPort учитывает метрики каждого поиска.
type SearchMetricsPort interface {
	ObserveSearch(path domain.ExtractionPath, success bool, count int, took time.Duration)
	ObserveFailure(reason domain.FailureReason)
}
