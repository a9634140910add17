package constants

// Каталог, из которого берутся карточки исполнителей
const (
	DefaultDirectoryBaseURL = "https://www.justdial.com"
)

// Описание сервиса для корневого эндпоинта
const (
	ServiceName    = "listings-parser"
	ServiceVersion = "1.0.0"
)

// Пути HTTP API
const (
	PathServices = "/api/services"
	PathHealth   = "/health"
	PathRoot     = "/"
	PathMetrics  = "/metrics"
)

// ServiceCategories - категории, которые показывает клиентское меню.
// Запрос не ограничен этим списком: любая категория превращается в слаг.
var ServiceCategories = []string{
	"plumbers",
	"electricians",
	"carpenters",
	"painters",
	"ac repair",
	"pest control",
	"cleaning services",
	"tutors",
}
