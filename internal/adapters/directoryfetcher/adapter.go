package directoryfetcher

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"listings-parser/internal/core/domain"

	"github.com/gocolly/colly/v2"
	"go.uber.org/zap"
)

const (
	DefaultTimeout   = 15 * time.Second
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxBodySize      = 10 * 1024 * 1024
)

// browserHeaders - заголовки обычного браузера. Каталог отдает другую
// (или заблокированную) разметку клиентам с дефолтной подписью.
var browserHeaders = map[string]string{
	"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
	"Accept-Language":           "en-US,en;q=0.9",
	"Accept-Encoding":           "gzip",
	"Connection":                "keep-alive",
	"Upgrade-Insecure-Requests": "1",
}

// Adapter отвечает за загрузку страниц каталога.
// Он инкапсулирует в себе настроенный colly.Collector.
type Adapter struct {
	collector *colly.Collector
	userAgent string
	logger    *zap.Logger
}

// NewAdapter создает адаптер. client может быть nil - тогда colly
// использует свой http.Client. Повторов и собственной политики
// редиректов нет.
func NewAdapter(client *http.Client, userAgent string, timeout time.Duration, logger *zap.Logger) *Adapter {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	c := colly.NewCollector(
		colly.UserAgent(userAgent),
		// Каждый запрос независим: одна и та же страница может
		// запрашиваться многократно.
		colly.AllowURLRevisit(),
		colly.MaxBodySize(maxBodySize),
	)
	if client != nil {
		c.SetClient(client)
	}
	c.SetRequestTimeout(timeout)

	return &Adapter{
		collector: c,
		userAgent: userAgent,
		logger:    logger.With(zap.String("component", "DirectoryFetcherAdapter")),
	}
}

// Fetch реализует DirectoryFetcherPort.
func (a *Adapter) Fetch(targetURL string) (string, error) {
	// Клон наследует настройки и http-клиент, но имеет свои обработчики.
	collector := a.collector.Clone()

	var (
		body       []byte
		statusCode int
	)

	collector.OnRequest(func(r *colly.Request) {
		r.Headers.Set("User-Agent", a.userAgent)
		for key, value := range browserHeaders {
			r.Headers.Set(key, value)
		}
		a.logger.Info("Making request", zap.String("url", r.URL.String()))
	})
	collector.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		a.logger.Warn("Error during request", zap.String("url", targetURL), zap.Int("status", statusCode), zap.Error(err))
	})

	if err := collector.Visit(targetURL); err != nil {
		return "", classify(targetURL, statusCode, err)
	}
	collector.Wait()

	a.logger.Debug("Fetched document", zap.String("url", targetURL), zap.Int("status", statusCode), zap.Int("bytes", len(body)))
	return string(body), nil
}

func classify(targetURL string, statusCode int, err error) error {
	fetchErr := &domain.FetchError{URL: targetURL, Err: err, Reason: domain.ReasonTransport}

	var netErr net.Error
	switch {
	case errors.As(err, &netErr) && netErr.Timeout(),
		strings.Contains(err.Error(), "Client.Timeout"),
		strings.Contains(err.Error(), "deadline exceeded"):
		fetchErr.Reason = domain.ReasonTimeout
	case statusCode > 0:
		fetchErr.Reason = domain.ReasonHTTPStatus
		fetchErr.StatusCode = statusCode
		fetchErr.Err = fmt.Errorf("unexpected status %d: %w", statusCode, err)
	}
	return fetchErr
}
