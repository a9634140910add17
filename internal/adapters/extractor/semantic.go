package extractor

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"listings-parser/internal/core/domain"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
)

const (
	DefaultStructuredRating      = 4.2
	DefaultStructuredReviewCount = 100
)

var businessTypes = map[string]bool{
	"LocalBusiness":               true,
	"ProfessionalService":         true,
	"HomeAndConstructionBusiness": true,
	"MedicalBusiness":             true,
	"EmergencyService":            true,
	"Plumber":                     true,
	"Electrician":                 true,
	"HVACBusiness":                true,
	"Locksmith":                   true,
	"Dentist":                     true,
	"Physician":                   true,
}

// SemanticExtractor читает встроенные блоки schema.org (JSON-LD).
// Ошибка разбора одного блока не прерывает обработку остальных.
type SemanticExtractor struct {
	maxListings int
	logger      *zap.Logger
}

// NewSemanticExtractor создает экстрактор структурированных данных.
func NewSemanticExtractor(maxListings int, logger *zap.Logger) *SemanticExtractor {
	if maxListings <= 0 || maxListings > domain.MaxListings {
		maxListings = domain.MaxListings
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SemanticExtractor{
		maxListings: maxListings,
		logger:      logger.With(zap.String("component", "SemanticExtractor")),
	}
}

// Extract собирает карточки из всех JSON-LD блоков документа.
func (e *SemanticExtractor) Extract(doc *goquery.Document) []domain.ListingCandidate {
	var candidates []domain.ListingCandidate

	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(i int, script *goquery.Selection) bool {
		var block any
		if err := json.Unmarshal([]byte(script.Text()), &block); err != nil {
			e.logger.Debug("Skipping malformed structured data block", zap.Int("block", i), zap.Error(err))
			return true
		}
		e.collect(block, &candidates)
		return len(candidates) < e.maxListings
	})

	return candidates
}

func (e *SemanticExtractor) collect(node any, out *[]domain.ListingCandidate) {
	if len(*out) >= e.maxListings {
		return
	}
	switch v := node.(type) {
	case []any:
		for _, item := range v {
			e.collect(item, out)
		}
	case map[string]any:
		if graph, ok := v["@graph"]; ok {
			e.collect(graph, out)
		}
		types := typesOf(v["@type"])
		switch {
		case hasType(types, "ItemList"):
			elements, _ := v["itemListElement"].([]any)
			for _, element := range elements {
				if m, ok := element.(map[string]any); ok {
					if item, ok := m["item"]; ok {
						e.collect(item, out)
						continue
					}
				}
				e.collect(element, out)
			}
		case isBusiness(types):
			candidate := businessCandidate(v)
			if domain.IsAcceptableName(candidate.Name) {
				*out = append(*out, candidate)
			}
		}
	}
}

func businessCandidate(node map[string]any) domain.ListingCandidate {
	rating := DefaultStructuredRating
	reviews := DefaultStructuredReviewCount
	if agg, ok := node["aggregateRating"].(map[string]any); ok {
		if v, ok := toFloat(agg["ratingValue"]); ok && v >= 0 && v <= 5 {
			rating = v
		}
		if v, ok := toCount(agg["reviewCount"]); ok {
			reviews = v
		} else if v, ok := toCount(agg["ratingCount"]); ok {
			reviews = v
		}
	}

	return domain.ListingCandidate{
		Name:        domain.CleanText(stringOf(node["name"])),
		Rating:      &rating,
		ReviewCount: &reviews,
		Phone:       stringOf(node["telephone"]),
		Address:     addressOf(node["address"]),
		Origin:      string(domain.PathSemantic),
	}
}

func addressOf(v any) string {
	switch a := v.(type) {
	case string:
		return a
	case map[string]any:
		if street := stringOf(a["streetAddress"]); street != "" {
			return street
		}
		return stringOf(a["addressLocality"])
	case []any:
		if len(a) > 0 {
			return addressOf(a[0])
		}
	}
	return ""
}

func typesOf(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []any:
		types := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				types = append(types, s)
			}
		}
		return types
	}
	return nil
}

func hasType(types []string, want string) bool {
	for _, t := range types {
		if strings.TrimPrefix(t, "schema:") == want {
			return true
		}
	}
	return false
}

func isBusiness(types []string) bool {
	for _, t := range types {
		t = strings.TrimPrefix(t, "schema:")
		if businessTypes[t] || strings.HasSuffix(t, "Business") {
			return true
		}
	}
	return false
}

func stringOf(v any) string {
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	}
	return ""
}

// toCount принимает только неотрицательные значения, помещающиеся в int32.
func toCount(v any) (int, bool) {
	f, ok := toFloat(v)
	if !ok || math.IsNaN(f) || f < 0 || f > math.MaxInt32 {
		return 0, false
	}
	return int(f), true
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}
