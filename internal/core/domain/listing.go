package domain

import (
	"net/url"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxListings ограничивает число карточек в одном ответе.
const MaxListings = 15

const (
	MaxNameLength    = 100
	MaxAddressLength = 150
	MinNameLength    = 3
)

// ListingQuery описывает входной запрос: город и категорию услуг.
type ListingQuery struct {
	City            string `json:"city"`
	ServiceCategory string `json:"service"`
}

// Validate проверяет, что оба поля заполнены и дают непустой слаг.
func (q ListingQuery) Validate() error {
	if Slugify(q.City) == "" || Slugify(q.ServiceCategory) == "" {
		return ErrInvalidQuery
	}
	return nil
}

// CitySlug - сегмент пути для города, безопасный для URL.
func (q ListingQuery) CitySlug() string { return url.PathEscape(Slugify(q.City)) }

// ServiceSlug - сегмент пути для категории, безопасный для URL.
func (q ListingQuery) ServiceSlug() string { return url.PathEscape(Slugify(q.ServiceCategory)) }

// Slugify приводит s к нижнему регистру и оставляет только буквы и цифры.
// Любая последовательность прочих символов (пробелы, дефисы, '/', '#', '?')
// становится одним дефисом. Slugify(Slugify(s)) == Slugify(s).
func Slugify(s string) string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	return strings.Join(fields, "-")
}

// ServiceListing - нормализованная карточка поставщика услуг.
type ServiceListing struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Rating            float64 `json:"rating"`
	ReviewCount       int     `json:"reviewCount"`
	Phone             string  `json:"phone"`
	PhoneNote         string  `json:"phoneNote,omitempty"`
	Address           string  `json:"address"`
	Verified          bool    `json:"verified"`
	ExperienceLabel   string  `json:"experienceLabel"`
	AvailabilityLabel string  `json:"availabilityLabel"`
	SourceURL         string  `json:"sourceUrl"`
	Origin            string  `json:"origin"`
}

// ListingCandidate - сырые значения полей, найденные экстрактором до
// синтеза. Rating и ReviewCount заполняются, только если источник отдал
// типизированные значения (JSON-LD); иначе разбираются поля *Text.
type ListingCandidate struct {
	Name            string
	RatingText      string
	ReviewCountText string
	Rating          *float64
	ReviewCount     *int
	Phone           string
	Address         string
	Verified        bool
	Origin          string
}

// CleanText обрезает пробелы по краям и схлопывает их внутри строки.
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate обрезает s до n рун.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// IsAcceptableName - единственный критерий приема карточки.
func IsAcceptableName(name string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(name)) >= MinNameLength
}
