package domain

import (
	"errors"
	"fmt"
)

// ErrInvalidQuery возвращается, если не указан город или категория.
var ErrInvalidQuery = errors.New("city and service are required")

// FailureReason классифицирует ошибки загрузки страницы.
type FailureReason string

const (
	ReasonTimeout    FailureReason = "timeout"
	ReasonTransport  FailureReason = "transport"
	ReasonHTTPStatus FailureReason = "http_status"
	ReasonExtraction FailureReason = "extraction"
)

// FetchError - неудачный исходящий запрос вместе с причиной.
type FetchError struct {
	Reason     FailureReason
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch %s failed (%s, status %d): %v", e.URL, e.Reason, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s failed (%s): %v", e.URL, e.Reason, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// ReasonOf достает причину из err. Ошибки, возникшие после загрузки
// документа, считаются ошибками извлечения.
func ReasonOf(err error) FailureReason {
	if err == nil {
		return ""
	}
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.Reason
	}
	return ReasonExtraction
}
