package port

import (
	"context"
	"listings-parser/internal/core/domain"
)

// SearchEventPublisherPort определяет контракт для отправки событий поиска в очередь.
type SearchEventPublisherPort interface {
	Publish(ctx context.Context, event domain.SearchEvent) error
}
