package internal

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"listings-parser/internal/adapters/directoryfetcher"
	"listings-parser/internal/adapters/extractor"
	"listings-parser/internal/adapters/httpapi"
	"listings-parser/internal/adapters/metrics"
	"listings-parser/internal/adapters/random"
	rabbitmq_adapter "listings-parser/internal/adapters/rabbitmq"
	"listings-parser/internal/configs"
	"listings-parser/internal/constants"
	"listings-parser/internal/core/usecase"
	"listings-parser/pkg/logger"
	"listings-parser/pkg/rabbitmq/rabbitmq_common"
	"listings-parser/pkg/rabbitmq/rabbitmq_producer"

	"go.uber.org/zap"
)

// App – структура приложения
type App struct {
	config        *configs.AppConfig
	logger        *zap.Logger
	eventProducer *rabbitmq_producer.Publisher
	searches      *usecase.SearchServicesUseCase

	// Входящий адаптер, который вызывает ядро
	server *httpapi.Server
}

// NewApp создает новый экземпляр приложения.
// Это "Composition Root", где все зависимости создаются и связываются.
func NewApp() (*App, error) {
	appConfig, err := configs.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("error loading application configuration: %w", err)
	}

	log, err := logger.New(appConfig.Log.Level, appConfig.Log.Format)
	if err != nil {
		return nil, err
	}

	// 1. Исходящие адаптеры
	fetcher := directoryfetcher.NewAdapter(nil, appConfig.Fetch.UserAgent, appConfig.Fetch.Timeout, log)
	listingExtractor := extractor.NewPipeline(
		extractor.NewStructuralExtractor(extractor.DefaultStrategies, appConfig.Synthesis.MaxListings, log),
		extractor.NewSemanticExtractor(appConfig.Synthesis.MaxListings, log),
		log,
	)
	promMetrics := metrics.NewPrometheusMetrics()
	log.Info("Outgoing adapters initialized", zap.String("directory", appConfig.Directory.BaseURL))

	// 2. Сценарий поиска
	synthesizer := usecase.NewSynthesizer(
		random.NewLockedSource(appConfig.Synthesis.RandomSeed),
		appConfig.Synthesis.VerifiedFallbackChance,
	)
	searchUseCase := usecase.NewSearchServicesUseCase(fetcher, listingExtractor, synthesizer, appConfig.Directory.BaseURL, log).
		WithMetrics(promMetrics)

	application := &App{
		config:   appConfig,
		logger:   log,
		searches: searchUseCase,
	}

	// 3. События поиска (необязательно)
	if appConfig.RabbitMQ.Enabled() {
		producer, err := rabbitmq_producer.NewPublisher(rabbitmq_producer.PublisherConfig{
			Config:                   rabbitmq_common.Config{URL: appConfig.RabbitMQ.URL},
			ExchangeName:             appConfig.RabbitMQ.Exchange,
			ExchangeType:             constants.ExchangeTypeSearchEvents,
			DurableExchange:          true,
			DeclareExchangeIfMissing: true,
		}, log)
		if err != nil {
			_ = log.Sync()
			return nil, fmt.Errorf("failed to create event producer: %w", err)
		}
		queue, err := rabbitmq_adapter.NewSearchEventQueueAdapter(producer, constants.RoutingKeySearchEvents, log)
		if err != nil {
			_ = producer.Close()
			return nil, fmt.Errorf("failed to create search event adapter: %w", err)
		}
		searchUseCase.WithEventPublisher(queue)
		application.eventProducer = producer
		log.Info("Search events will be published", zap.String("exchange", appConfig.RabbitMQ.Exchange))
	} else {
		log.Info("RABBITMQ_URL is not set, search events are disabled")
	}

	// 4. Входящий адаптер
	application.server = httpapi.NewServer(searchUseCase, promMetrics.Gatherer(), log)

	return application, nil
}

// Run запускает HTTP-сервер и управляет его жизненным циклом.
func (a *App) Run() error {
	defer func() {
		a.logger.Info("App: Shutdown sequence initiated...")
		// Сначала дожидаемся начатых публикаций, затем закрываем соединение.
		a.searches.WaitForEvents()
		if a.eventProducer != nil {
			if err := a.eventProducer.Close(); err != nil {
				a.logger.Warn("App: Error closing event producer", zap.Error(err))
			}
		}
		a.logger.Info("Application shut down gracefully.")
		_ = a.logger.Sync()
	}()

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- a.server.Listen(a.config.HTTP.Addr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	a.logger.Info("Application running. Waiting for signals...")
	select {
	case receivedSignal := <-quit:
		a.logger.Info("App: Received signal, shutting down", zap.String("signal", receivedSignal.String()))
	case err := <-serverErrors:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), a.config.HTTP.ShutdownTimeout)
	defer cancel()
	if err := a.server.Shutdown(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	return nil
}
