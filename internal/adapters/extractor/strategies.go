package extractor

import (
	"strings"

	"listings-parser/internal/core/domain"

	"github.com/PuerkitoBio/goquery"
)

// SelectorStrategy описывает один вариант разметки карточки в каталоге.
// Каждое поле имеет упорядоченный список селекторов: побеждает первый,
// давший непустой текст. Селектор вида "a[href^='tel:']@href" читает
// атрибут вместо текста.
type SelectorStrategy struct {
	Name      string
	Container string

	NameSelectors     []string
	RatingSelectors   []string
	ReviewSelectors   []string
	PhoneSelectors    []string
	AddressSelectors  []string
	VerifiedSelectors []string
}

// DefaultStrategies - порядок важен: от самой точной и свежей разметки
// каталога к самой общей.
var DefaultStrategies = []SelectorStrategy{
	{
		Name:              "resultbox",
		Container:         ".resultbox_info",
		NameSelectors:     []string{".resultbox_title_anchor", ".resultbox_title", "h2 a", "h3 a"},
		RatingSelectors:   []string{".resultbox_totalrate", ".resultbox_rating .green-box", ".green-box"},
		ReviewSelectors:   []string{".resultbox_countrate", ".rt_count"},
		PhoneSelectors:    []string{".callcontent", "a[href^='tel:']@href", ".contact-info"},
		AddressSelectors:  []string{".resultbox_address .locatcity", ".resultbox_address", ".cont_fl_addr"},
		VerifiedSelectors: []string{".verified_tag", ".jdverified", "[class~='verified']"},
	},
	{
		Name:              "cntanr",
		Container:         ".cntanr",
		NameSelectors:     []string{".lng_cont_name", ".jcn a", ".store-name"},
		RatingSelectors:   []string{".green-box", ".exrt_count"},
		ReviewSelectors:   []string{".rt_count", ".lng_vote"},
		PhoneSelectors:    []string{".contact-info", ".mobilesv", "a[href^='tel:']@href"},
		AddressSelectors:  []string{".cont_fl_addr", ".mrehover", ".address-info"},
		VerifiedSelectors: []string{".jdverified", ".verified"},
	},
	{
		Name:              "store-details",
		Container:         ".store-details",
		NameSelectors:     []string{".store-name", "h2", "h3", "a[title]@title"},
		RatingSelectors:   []string{".star_m", ".rating", "[aria-label*='rating']@aria-label"},
		ReviewSelectors:   []string{".votes", ".reviews", ".review-count"},
		PhoneSelectors:    []string{"a[href^='tel:']@href", ".phone"},
		AddressSelectors:  []string{".address", ".adr"},
		VerifiedSelectors: []string{".verified", ".trust-badge"},
	},
	{
		Name:              "microdata",
		Container:         "[itemtype*='LocalBusiness']",
		NameSelectors:     []string{"[itemprop='name']@content", "[itemprop='name']"},
		RatingSelectors:   []string{"[itemprop='ratingValue']@content", "[itemprop='ratingValue']"},
		ReviewSelectors:   []string{"[itemprop='reviewCount']@content", "[itemprop='reviewCount']", "[itemprop='ratingCount']"},
		PhoneSelectors:    []string{"[itemprop='telephone']@content", "[itemprop='telephone']"},
		AddressSelectors:  []string{"[itemprop='streetAddress']", "[itemprop='address']"},
		VerifiedSelectors: []string{".verified"},
	},
}

// Match применяет стратегию к документу. Просматривается не более limit
// контейнеров; кандидаты без валидного имени отбрасываются.
func (s SelectorStrategy) Match(doc *goquery.Document, limit int) []domain.ListingCandidate {
	containers := doc.Find(s.Container)
	if limit > 0 && containers.Length() > limit {
		containers = containers.Slice(0, limit)
	}

	var candidates []domain.ListingCandidate
	containers.Each(func(_ int, card *goquery.Selection) {
		candidate := domain.ListingCandidate{
			Name:            firstText(card, s.NameSelectors),
			RatingText:      firstText(card, s.RatingSelectors),
			ReviewCountText: firstText(card, s.ReviewSelectors),
			Phone:           firstText(card, s.PhoneSelectors),
			Address:         firstText(card, s.AddressSelectors),
			Verified:        anyMatch(card, s.VerifiedSelectors),
			Origin:          "structural:" + s.Name,
		}
		if !domain.IsAcceptableName(candidate.Name) {
			return
		}
		candidates = append(candidates, candidate)
	})
	return candidates
}

// firstText возвращает первый непустой результат по списку селекторов.
func firstText(card *goquery.Selection, selectors []string) string {
	for _, selector := range selectors {
		query, attr := splitSelector(selector)
		var found string
		card.Find(query).EachWithBreak(func(_ int, el *goquery.Selection) bool {
			var value string
			if attr != "" {
				value, _ = el.Attr(attr)
			} else {
				value = el.Text()
			}
			found = domain.CleanText(value)
			return found == ""
		})
		if found != "" {
			return found
		}
	}
	return ""
}

func anyMatch(card *goquery.Selection, selectors []string) bool {
	for _, selector := range selectors {
		query, _ := splitSelector(selector)
		if card.Find(query).Length() > 0 {
			return true
		}
	}
	return false
}

func splitSelector(selector string) (query, attr string) {
	idx := strings.LastIndex(selector, "@")
	if idx <= 0 || strings.ContainsAny(selector[idx+1:], "]'\" ") {
		return selector, ""
	}
	return selector[:idx], selector[idx+1:]
}
