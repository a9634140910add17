package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"listings-parser/internal/core/domain"
	"listings-parser/internal/core/port"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SearchServicesUseCase инкапсулирует конвейер: загрузка страницы,
// извлечение кандидатов (структурное, затем семантический fallback)
// и сборка ответа.
type SearchServicesUseCase struct {
	fetcher     port.DirectoryFetcherPort
	extractor   port.ListingExtractorPort
	synthesizer *Synthesizer
	baseURL     string
	logger      *zap.Logger

	events  port.SearchEventPublisherPort
	metrics port.SearchMetricsPort

	// публикации событий, которые еще не завершились
	pending sync.WaitGroup
}

// NewSearchServicesUseCase создает новый экземпляр SearchServicesUseCase.
func NewSearchServicesUseCase(
	fetcher port.DirectoryFetcherPort,
	extractor port.ListingExtractorPort,
	synthesizer *Synthesizer,
	directoryBaseURL string,
	logger *zap.Logger,
) *SearchServicesUseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchServicesUseCase{
		fetcher:     fetcher,
		extractor:   extractor,
		synthesizer: synthesizer,
		baseURL:     strings.TrimRight(directoryBaseURL, "/"),
		logger:      logger.With(zap.String("component", "SearchServicesUseCase")),
	}
}

// WithEventPublisher подключает публикацию событий поиска.
func (uc *SearchServicesUseCase) WithEventPublisher(p port.SearchEventPublisherPort) *SearchServicesUseCase {
	uc.events = p
	return uc
}

// WithMetrics подключает сбор метрик.
func (uc *SearchServicesUseCase) WithMetrics(m port.SearchMetricsPort) *SearchServicesUseCase {
	uc.metrics = m
	return uc
}

// SourceURL собирает адрес страницы каталога из слагов запроса.
func (uc *SearchServicesUseCase) SourceURL(query domain.ListingQuery) string {
	return fmt.Sprintf("%s/%s/%s", uc.baseURL, query.CitySlug(), query.ServiceSlug())
}

// Execute выполняет конвейер для одного запроса. Единственная возвращаемая
// ошибка - domain.ErrInvalidQuery; любые сбои загрузки и извлечения
// попадают в ответ с Success=false.
func (uc *SearchServicesUseCase) Execute(ctx context.Context, query domain.ListingQuery) (*domain.SearchResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	query.City = strings.TrimSpace(query.City)
	query.ServiceCategory = strings.TrimSpace(query.ServiceCategory)

	start := time.Now()
	sourceURL := uc.SourceURL(query)
	log := uc.logger.With(zap.String("city", query.City), zap.String("service", query.ServiceCategory), zap.String("url", sourceURL))
	log.Info("Starting listing search")

	response := &domain.SearchResponse{
		City:      query.City,
		Service:   query.ServiceCategory,
		SourceURL: sourceURL,
		Services:  []domain.ServiceListing{},
	}

	outcome, err := uc.run(query, sourceURL)
	if err != nil {
		log.Warn("Listing search failed", zap.Error(err))
		response.Error = domain.FetchFailedMessage
		response.Message = err.Error()
	} else {
		response.Success = true
		response.Services = outcome.Listings
		response.Count = len(outcome.Listings)
		log.Info("Listing search finished",
			zap.String("path", string(outcome.Path)),
			zap.String("strategy", outcome.Strategy),
			zap.Int("count", response.Count))
	}

	uc.record(ctx, response, outcome, err, time.Since(start))
	return response, nil
}

// WaitForEvents блокирует, пока не завершатся начатые публикации событий.
// Вызывается при остановке приложения до закрытия соединения с брокером.
func (uc *SearchServicesUseCase) WaitForEvents() {
	uc.pending.Wait()
}

// run выполняет этапы строго последовательно.
func (uc *SearchServicesUseCase) run(query domain.ListingQuery, sourceURL string) (domain.ExtractionOutcome, error) {
	document, err := uc.fetcher.Fetch(sourceURL)
	if err != nil {
		return domain.ExtractionOutcome{Path: domain.PathNone}, err
	}

	candidates, path, strategy, err := uc.extractor.Extract(document)
	if err != nil {
		return domain.ExtractionOutcome{Path: domain.PathNone}, fmt.Errorf("listing extraction: %w", err)
	}

	listings := uc.synthesizer.Finalize(candidates, query, sourceURL)
	if len(listings) == 0 {
		return domain.ExtractionOutcome{Listings: listings, Path: domain.PathNone}, nil
	}
	return domain.ExtractionOutcome{Listings: listings, Path: path, Strategy: strategy}, nil
}

func (uc *SearchServicesUseCase) record(ctx context.Context, resp *domain.SearchResponse, outcome domain.ExtractionOutcome, runErr error, took time.Duration) {
	path := outcome.Path
	if path == "" {
		path = domain.PathNone
	}
	reason := domain.ReasonOf(runErr)

	if uc.metrics != nil {
		uc.metrics.ObserveSearch(path, resp.Success, resp.Count, took)
		if runErr != nil {
			uc.metrics.ObserveFailure(reason)
		}
	}

	if uc.events == nil {
		return
	}
	event := domain.SearchEvent{
		ID:            uuid.NewString(),
		City:          resp.City,
		Service:       resp.Service,
		SourceURL:     resp.SourceURL,
		Success:       resp.Success,
		Count:         resp.Count,
		Path:          path,
		FailureReason: reason,
		DurationMs:    took.Milliseconds(),
		OccurredAt:    time.Now().UTC(),
	}

	// Ответ клиенту не ждет брокер; таймаут публикации задает адаптер.
	publishCtx := context.WithoutCancel(ctx)
	uc.pending.Add(1)
	go func() {
		defer uc.pending.Done()
		if err := uc.events.Publish(publishCtx, event); err != nil {
			uc.logger.Warn("Failed to publish search event", zap.String("event_id", event.ID), zap.Error(err))
		}
	}()
}
