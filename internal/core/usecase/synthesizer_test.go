package usecase

import (
	"testing"
	"time"

	"listings-parser/internal/adapters/random"
	"listings-parser/internal/core/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedRandom всегда возвращает одни и те же значения.
type fixedRandom struct {
	f float64
	n int
}

func (r fixedRandom) Float64() float64 { return r.f }

func (r fixedRandom) Intn(n int) int {
	if r.n >= n {
		return n - 1
	}
	return r.n
}

var fixedNow = func() time.Time { return time.UnixMilli(1700000000000) }

func TestFinalizeKeepsExtractedValues(t *testing.T) {
	s := NewSynthesizer(fixedRandom{f: 0.9, n: 0}, 0.5).WithClock(fixedNow)
	query := domain.ListingQuery{City: "Chennai", ServiceCategory: "plumbers"}

	listings := s.Finalize([]domain.ListingCandidate{{
		Name:            "  Ravi   Plumbing Works ",
		RatingText:      "4.6",
		ReviewCountText: "1,204 Ratings",
		Phone:           "tel:+914423456789",
		Address:         "T Nagar, Chennai",
		Verified:        true,
		Origin:          "structural:resultbox",
	}}, query, "https://www.justdial.com/chennai/plumbers")

	require.Len(t, listings, 1)
	l := listings[0]
	assert.Equal(t, "svc-1700000000000-0", l.ID)
	assert.Equal(t, "Ravi Plumbing Works", l.Name)
	assert.Equal(t, 4.6, l.Rating)
	assert.Equal(t, 1204, l.ReviewCount)
	assert.Equal(t, "+914423456789", l.Phone)
	assert.Empty(t, l.PhoneNote)
	assert.Equal(t, "T Nagar, Chennai", l.Address)
	assert.True(t, l.Verified)
	assert.Equal(t, "https://www.justdial.com/chennai/plumbers", l.SourceURL)
	assert.Equal(t, "structural:resultbox", l.Origin)
}

func TestFinalizeSynthesizesMissingFields(t *testing.T) {
	s := NewSynthesizer(fixedRandom{f: 0.9, n: 3}, 0.5).WithClock(fixedNow)
	query := domain.ListingQuery{City: "Chennai", ServiceCategory: "plumbers"}

	listings := s.Finalize([]domain.ListingCandidate{{Name: "Aqua Fix Services", RatingText: "New", Phone: "Show Number"}}, query, "u")

	require.Len(t, listings, 1)
	l := listings[0]
	assert.Equal(t, 3.8, l.Rating)
	assert.Equal(t, 53, l.ReviewCount)
	assert.Equal(t, "+91 90003 00003", l.Phone)
	assert.Equal(t, PhoneNote, l.PhoneNote)
	assert.Equal(t, "Chennai", l.Address)
	assert.False(t, l.Verified)
	assert.Equal(t, "5+ years experience", l.ExperienceLabel)
	assert.Equal(t, "Available in 30 mins", l.AvailabilityLabel)
}

func TestFinalizeVerifiedFallback(t *testing.T) {
	query := domain.ListingQuery{City: "Pune", ServiceCategory: "electricians"}
	candidate := []domain.ListingCandidate{{Name: "Spark Electricals"}}

	lucky := NewSynthesizer(fixedRandom{f: 0.1}, 0.5).Finalize(candidate, query, "u")
	assert.True(t, lucky[0].Verified)

	disabled := NewSynthesizer(fixedRandom{f: 0.1}, 0).Finalize(candidate, query, "u")
	assert.False(t, disabled[0].Verified)
}

func TestFinalizeUsesTypedStructuredValues(t *testing.T) {
	rating, reviews := 4.2, 100
	s := NewSynthesizer(fixedRandom{f: 0.9}, 0.5)

	listings := s.Finalize([]domain.ListingCandidate{{Name: "Chennai Pipe Doctors", Rating: &rating, ReviewCount: &reviews, RatingText: "1.0"}},
		domain.ListingQuery{City: "Chennai", ServiceCategory: "plumbers"}, "u")

	require.Len(t, listings, 1)
	assert.Equal(t, 4.2, listings[0].Rating)
	assert.Equal(t, 100, listings[0].ReviewCount)
}

func TestFinalizeDropsShortNamesAndCaps(t *testing.T) {
	s := NewSynthesizer(fixedRandom{}, 0.5).WithClock(fixedNow)
	candidates := []domain.ListingCandidate{{Name: "AB"}, {Name: "   "}}
	for i := 0; i < 20; i++ {
		candidates = append(candidates, domain.ListingCandidate{Name: "Provider Name"})
	}

	listings := s.Finalize(candidates, domain.ListingQuery{City: "Goa", ServiceCategory: "tutors"}, "u")
	require.Len(t, listings, domain.MaxListings)
	assert.Equal(t, "svc-1700000000000-0", listings[0].ID)
	assert.Equal(t, "svc-1700000000000-14", listings[14].ID)
}

func TestFinalizeTruncatesLongFields(t *testing.T) {
	long := ""
	for i := 0; i < 300; i++ {
		long += "a"
	}
	s := NewSynthesizer(fixedRandom{}, 0.5)

	listings := s.Finalize([]domain.ListingCandidate{{Name: long, Address: long}}, domain.ListingQuery{City: "Goa", ServiceCategory: "tutors"}, "u")
	require.Len(t, listings, 1)
	assert.Len(t, listings[0].Name, domain.MaxNameLength)
	assert.Len(t, listings[0].Address, domain.MaxAddressLength)
}

func TestSynthesizedValuesStayInRange(t *testing.T) {
	s := NewSynthesizer(random.NewLockedSource(99), 0.5)
	query := domain.ListingQuery{City: "Kochi", ServiceCategory: "painters"}

	for i := 0; i < 200; i++ {
		listings := s.Finalize([]domain.ListingCandidate{{Name: "Color Craft"}}, query, "u")
		require.Len(t, listings, 1)
		l := listings[0]
		assert.GreaterOrEqual(t, l.Rating, 3.5)
		assert.Less(t, l.Rating, 5.0)
		assert.GreaterOrEqual(t, l.ReviewCount, 50)
		assert.Less(t, l.ReviewCount, 250)
		assert.Regexp(t, `^\+91 [6-9]\d{4} \d{5}$`, l.Phone)
	}
}

func TestParseRating(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"4.6", 4.6, true},
		{"Rated 3,9 by users", 3.9, true},
		{"5", 5, true},
		{"New", 0, false},
		{"", 0, false},
		{"7.5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseRating(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.InDelta(t, tt.want, got, 1e-9)
		})
	}
}

func TestParseReviewCount(t *testing.T) {
	got, ok := ParseReviewCount("1,204 Ratings")
	assert.True(t, ok)
	assert.Equal(t, 1204, got)

	_, ok = ParseReviewCount("no ratings yet")
	assert.False(t, ok)
}
