package constants

// Обменник для событий поиска
const (
	ExchangeSearchEvents     = "listings_exchange"
	ExchangeTypeSearchEvents = "topic"
)

// Ключи маршрутизации
const (
	RoutingKeySearchEvents = "listings.search.completed"
)
