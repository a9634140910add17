package httpapi

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"listings-parser/internal/adapters/directoryfetcher"
	"listings-parser/internal/adapters/extractor"
	"listings-parser/internal/adapters/metrics"
	"listings-parser/internal/adapters/random"
	"listings-parser/internal/core/domain"
	"listings-parser/internal/core/usecase"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// directory - поддельный каталог, считающий обращения.
type directory struct {
	server *httptest.Server
	hits   int32
}

func newDirectory(t *testing.T, handler http.HandlerFunc) *directory {
	d := &directory{}
	d.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&d.hits, 1)
		handler(w, r)
	}))
	t.Cleanup(d.server.Close)
	return d
}

func serveFixture(t *testing.T, name string) http.HandlerFunc {
	body, err := os.ReadFile("../extractor/testdata/" + name)
	require.NoError(t, err)
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write(body)
	}
}

func newTestServer(baseURL string, fetchTimeout time.Duration) *Server {
	m := metrics.NewPrometheusMetrics()
	uc := usecase.NewSearchServicesUseCase(
		directoryfetcher.NewAdapter(nil, "", fetchTimeout, nil),
		extractor.NewPipeline(
			extractor.NewStructuralExtractor(nil, domain.MaxListings, nil),
			extractor.NewSemanticExtractor(domain.MaxListings, nil),
			nil,
		),
		usecase.NewSynthesizer(random.NewLockedSource(7), 0.5),
		baseURL,
		nil,
	).WithMetrics(m)
	return NewServer(uc, m.Gatherer(), nil)
}

func get(t *testing.T, s *Server, target string) (int, []byte) {
	resp, err := s.App().Test(httptest.NewRequest(http.MethodGet, target, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, body
}

func decodeEnvelope(t *testing.T, body []byte) domain.SearchResponse {
	var env domain.SearchResponse
	require.NoError(t, json.Unmarshal(body, &env))
	assert.Equal(t, len(env.Services), env.Count)
	return env
}

func TestSearchMissingParamsIsBadRequestWithoutFetch(t *testing.T) {
	dir := newDirectory(t, serveFixture(t, "resultbox.html"))
	s := newTestServer(dir.server.URL, time.Second)

	for _, target := range []string{
		"/api/services",
		"/api/services?city=Chennai",
		"/api/services?service=plumbers",
		"/api/services?city=%20%20&service=plumbers",
	} {
		status, body := get(t, s, target)
		assert.Equal(t, http.StatusBadRequest, status, target)
		assert.JSONEq(t, `{"error":"City and service are required"}`, string(body))
	}
	assert.Equal(t, int32(0), atomic.LoadInt32(&dir.hits))
}

func TestSearchStructuralListings(t *testing.T) {
	dir := newDirectory(t, serveFixture(t, "resultbox.html"))
	s := newTestServer(dir.server.URL, time.Second)

	status, body := get(t, s, "/api/services?city=Chennai&service=Plumbers")
	require.Equal(t, http.StatusOK, status)

	env := decodeEnvelope(t, body)
	assert.True(t, env.Success)
	assert.Equal(t, "Chennai", env.City)
	assert.Equal(t, "Plumbers", env.Service)
	assert.Equal(t, dir.server.URL+"/chennai/plumbers", env.SourceURL)
	require.Equal(t, 3, env.Count)

	names := make([]string, 0, env.Count)
	ids := map[string]bool{}
	for _, l := range env.Services {
		names = append(names, l.Name)
		ids[l.ID] = true
		assert.Equal(t, env.SourceURL, l.SourceURL)
		assert.GreaterOrEqual(t, l.Rating, 0.0)
		assert.LessOrEqual(t, l.Rating, 5.0)
		assert.GreaterOrEqual(t, l.ReviewCount, 0)
		assert.NotEmpty(t, l.Phone)
		assert.NotEmpty(t, l.Address)
	}
	assert.Equal(t, []string{"Ravi Plumbing Works", "Aqua Fix Services", "Sri Balaji Plumbers"}, names)
	assert.Len(t, ids, 3)
	assert.Equal(t, 4.6, env.Services[0].Rating)
	assert.Equal(t, 1204, env.Services[0].ReviewCount)
	assert.Equal(t, "Chennai", env.Services[2].Address)
}

func TestSearchSemanticFallback(t *testing.T) {
	dir := newDirectory(t, serveFixture(t, "jsonld.html"))
	s := newTestServer(dir.server.URL, time.Second)

	status, body := get(t, s, "/api/services?city=Chennai&service=plumbers")
	require.Equal(t, http.StatusOK, status)

	env := decodeEnvelope(t, body)
	assert.True(t, env.Success)
	require.Equal(t, 1, env.Count)
	assert.Equal(t, "Chennai Pipe Doctors", env.Services[0].Name)
	assert.Equal(t, 4.2, env.Services[0].Rating)
	assert.Equal(t, 100, env.Services[0].ReviewCount)
	assert.Equal(t, "12 Anna Salai", env.Services[0].Address)
}

func TestSearchEmptyDocumentIsSuccessWithNoListings(t *testing.T) {
	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body><p>No results</p></body></html>"))
	})
	s := newTestServer(dir.server.URL, time.Second)

	status, body := get(t, s, "/api/services?city=Goa&service=tutors")
	require.Equal(t, http.StatusOK, status)

	env := decodeEnvelope(t, body)
	assert.True(t, env.Success)
	assert.Equal(t, 0, env.Count)
	assert.Contains(t, string(body), `"services":[]`)
	assert.NotContains(t, string(body), `"error"`)
}

func TestSearchReservedCharactersStayInsideSlugs(t *testing.T) {
	var requested atomic.Value
	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		requested.Store(r.URL.RequestURI())
		_, _ = w.Write([]byte("<html></html>"))
	})
	s := newTestServer(dir.server.URL, time.Second)

	status, body := get(t, s, "/api/services?city=Delhi%2FNCR%23East&service=AC%20Repair%3Fx%3D1")
	require.Equal(t, http.StatusOK, status)

	env := decodeEnvelope(t, body)
	assert.True(t, env.Success)
	assert.Equal(t, dir.server.URL+"/delhi-ncr-east/ac-repair-x-1", env.SourceURL)
	assert.Equal(t, "/delhi-ncr-east/ac-repair-x-1", requested.Load())
}

func TestSearchUnreachableDirectoryIsFailureEnvelope(t *testing.T) {
	closed := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	baseURL := closed.URL
	closed.Close()

	s := newTestServer(baseURL, time.Second)
	status, body := get(t, s, "/api/services?city=Chennai&service=plumbers")
	require.Equal(t, http.StatusOK, status)

	env := decodeEnvelope(t, body)
	assert.False(t, env.Success)
	assert.Equal(t, 0, env.Count)
	assert.Contains(t, string(body), `"services":[]`)
	assert.Equal(t, domain.FetchFailedMessage, env.Error)
	assert.NotEmpty(t, env.Message)
	assert.Equal(t, baseURL+"/chennai/plumbers", env.SourceURL)
}

func TestSearchSlowDirectoryTimesOut(t *testing.T) {
	release := make(chan struct{})
	dir := newDirectory(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-time.After(2 * time.Second):
		}
	})
	defer close(release)

	s := newTestServer(dir.server.URL, 50*time.Millisecond)
	status, body := get(t, s, "/api/services?city=Mumbai&service=electricians")
	require.Equal(t, http.StatusOK, status)

	env := decodeEnvelope(t, body)
	assert.False(t, env.Success)
	assert.Equal(t, domain.FetchFailedMessage, env.Error)

	_, metricsBody := get(t, s, "/metrics")
	assert.Contains(t, string(metricsBody), `reason="timeout"`)
}

func TestHealthAndRoot(t *testing.T) {
	s := newTestServer("https://www.justdial.com", time.Second)
	s.now = func() time.Time { return time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC) }

	status, body := get(t, s, "/health")
	assert.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok","timestamp":"2026-10-17T12:00:00Z"}`, string(body))

	status, body = get(t, s, "/")
	assert.Equal(t, http.StatusOK, status)
	var descriptor map[string]any
	require.NoError(t, json.Unmarshal(body, &descriptor))
	assert.Equal(t, "listings-parser", descriptor["name"])
	assert.Contains(t, descriptor, "endpoints")
}

func TestMetricsEndpointExposesSearchCounters(t *testing.T) {
	dir := newDirectory(t, serveFixture(t, "resultbox.html"))
	s := newTestServer(dir.server.URL, time.Second)

	_, _ = get(t, s, "/api/services?city=Chennai&service=plumbers")
	status, body := get(t, s, "/metrics")
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "listings_searches_total")
}
