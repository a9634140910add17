package domain

import "time"

// ExtractionPath показывает, какой этап дал результат.
type ExtractionPath string

const (
	PathStructural ExtractionPath = "structural"
	PathSemantic   ExtractionPath = "semantic"
	PathNone       ExtractionPath = "none"
)

// ExtractionOutcome - результат успешного прохода конвейера (возможно пустой).
type ExtractionOutcome struct {
	Listings []ServiceListing
	Path     ExtractionPath
	Strategy string
}

// FetchFailedMessage показывается пользователю, когда живые данные недоступны.
const FetchFailedMessage = "Unable to fetch live data. Please use the link directly."

// SearchResponse - единый конверт ответа. Транспортный статус всегда 200,
// об ошибке сообщает поле Success.
type SearchResponse struct {
	Success   bool             `json:"success"`
	City      string           `json:"city"`
	Service   string           `json:"service"`
	Count     int              `json:"count"`
	SourceURL string           `json:"sourceUrl"`
	Services  []ServiceListing `json:"services"`
	Error     string           `json:"error,omitempty"`
	Message   string           `json:"message,omitempty"`
}

// SearchEvent публикуется после каждого поиска, если настроен брокер.
type SearchEvent struct {
	ID            string         `json:"id"`
	City          string         `json:"city"`
	Service       string         `json:"service"`
	SourceURL     string         `json:"source_url"`
	Success       bool           `json:"success"`
	Count         int            `json:"count"`
	Path          ExtractionPath `json:"path"`
	FailureReason FailureReason  `json:"failure_reason,omitempty"`
	DurationMs    int64          `json:"duration_ms"`
	OccurredAt    time.Time      `json:"occurred_at"`
}
