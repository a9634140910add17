package usecase

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"listings-parser/internal/core/domain"
	"listings-parser/internal/core/port"
)

// PhoneNote сопровождает синтезированный номер телефона.
const PhoneNote = "Contact via directory link for verified number"

const minPhoneDigits = 7

var (
	ratingPattern = regexp.MustCompile(`\d+(?:[.,]\d+)?`)
	nonDigits     = regexp.MustCompile(`\D`)
)

// Synthesizer превращает сырые кандидаты в ServiceListing и заполняет
// поля, которые не удалось извлечь, значениями-заглушками.
// Заглушки не отражают реального качества поставщика.
type Synthesizer struct {
	rnd            port.RandomSource
	now            func() time.Time
	verifiedChance float64
}

// NewSynthesizer создает синтезатор. verifiedChance - вероятность пометить
// карточку без маркера проверки как verified (0 отключает эвристику).
func NewSynthesizer(rnd port.RandomSource, verifiedChance float64) *Synthesizer {
	if verifiedChance < 0 {
		verifiedChance = 0
	}
	if verifiedChance > 1 {
		verifiedChance = 1
	}
	return &Synthesizer{
		rnd:            rnd,
		now:            time.Now,
		verifiedChance: verifiedChance,
	}
}

// WithClock заменяет источник времени (используется в тестах).
func (s *Synthesizer) WithClock(now func() time.Time) *Synthesizer {
	s.now = now
	return s
}

// Finalize превращает кандидатов в карточки. Кандидаты без валидного имени
// молча отбрасываются; возвращается не более domain.MaxListings карточек.
func (s *Synthesizer) Finalize(candidates []domain.ListingCandidate, query domain.ListingQuery, sourceURL string) []domain.ServiceListing {
	extractedAt := s.now().UnixMilli()
	listings := make([]domain.ServiceListing, 0, len(candidates))

	for _, c := range candidates {
		if len(listings) == domain.MaxListings {
			break
		}
		name := domain.Truncate(domain.CleanText(c.Name), domain.MaxNameLength)
		if !domain.IsAcceptableName(name) {
			continue
		}

		listing := domain.ServiceListing{
			ID:                fmt.Sprintf("svc-%d-%d", extractedAt, len(listings)),
			Name:              name,
			Rating:            s.rating(c),
			ReviewCount:       s.reviewCount(c),
			Address:           s.address(c.Address, query.City),
			Verified:          c.Verified || s.verifiedFallback(),
			ExperienceLabel:   fmt.Sprintf("%d+ years experience", 2+s.rnd.Intn(18)),
			AvailabilityLabel: fmt.Sprintf("Available in %d mins", 15+5*s.rnd.Intn(9)),
			SourceURL:         sourceURL,
			Origin:            c.Origin,
		}
		listing.Phone, listing.PhoneNote = s.phone(c.Phone)

		listings = append(listings, listing)
	}
	return listings
}

func (s *Synthesizer) rating(c domain.ListingCandidate) float64 {
	if c.Rating != nil && *c.Rating >= 0 && *c.Rating <= 5 {
		return *c.Rating
	}
	if v, ok := ParseRating(c.RatingText); ok {
		return v
	}
	// [3.5, 5.0) с шагом 0.1
	return float64(35+s.rnd.Intn(15)) / 10
}

func (s *Synthesizer) reviewCount(c domain.ListingCandidate) int {
	if c.ReviewCount != nil && *c.ReviewCount >= 0 {
		return *c.ReviewCount
	}
	if v, ok := ParseReviewCount(c.ReviewCountText); ok {
		return v
	}
	return 50 + s.rnd.Intn(200)
}

func (s *Synthesizer) address(raw, city string) string {
	address := domain.Truncate(domain.CleanText(raw), domain.MaxAddressLength)
	if address == "" {
		return strings.TrimSpace(city)
	}
	return address
}

// phone оставляет найденный номер как есть; заглушкой заменяется только
// отсутствующий или скрытый номер.
func (s *Synthesizer) phone(raw string) (string, string) {
	raw = domain.CleanText(strings.TrimPrefix(strings.TrimSpace(raw), "tel:"))
	if len(nonDigits.ReplaceAllString(raw, "")) >= minPhoneDigits {
		return raw, ""
	}
	number := fmt.Sprintf("+91 %d%04d %05d", 6+s.rnd.Intn(4), s.rnd.Intn(10000), s.rnd.Intn(100000))
	return number, PhoneNote
}

func (s *Synthesizer) verifiedFallback() bool {
	if s.verifiedChance == 0 {
		return false
	}
	return s.rnd.Float64() < s.verifiedChance
}

// ParseRating возвращает первое число из text, если оно лежит в [0, 5].
func ParseRating(text string) (float64, bool) {
	match := ratingPattern.FindString(text)
	if match == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.Replace(match, ",", ".", 1), 64)
	if err != nil || v < 0 || v > 5 {
		return 0, false
	}
	return v, true
}

// ParseReviewCount собирает все цифры из text ("1,234 Ratings" -> 1234).
func ParseReviewCount(text string) (int, bool) {
	digits := nonDigits.ReplaceAllString(text, "")
	if digits == "" {
		return 0, false
	}
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	return v, true
}
