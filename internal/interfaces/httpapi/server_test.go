package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"walletrep/internal/application"
	"walletrep/internal/domain"
)

type mockScorer struct {
	report domain.Report
	err    error
	calls  []string
}

func (m *mockScorer) Score(_ context.Context, address string) (domain.Report, error) {
	m.calls = append(m.calls, address)
	if m.err != nil {
		return domain.Report{}, m.err
	}
	return m.report, nil
}

type mockStore struct {
	reports  []domain.Report
	latest   domain.Report
	latestOK bool
	pingErr  error
	filter   application.ReportQueryFilter
}

func (m *mockStore) QueryReports(_ context.Context, filter application.ReportQueryFilter) ([]domain.Report, error) {
	m.filter = filter
	return m.reports, nil
}

func (m *mockStore) LatestReport(_ context.Context, _ string) (domain.Report, bool, error) {
	return m.latest, m.latestOK, nil
}

func (m *mockStore) Ping(_ context.Context) error {
	return m.pingErr
}

const testAddress = "0xd8da6bf26964af9d7eed9e03e53415d37aa96045"

func newTestServer(t *testing.T, scorer *mockScorer, store *mockStore) *Server {
	t.Helper()
	server, err := NewServer(scorer, store, NewMetrics(), BuildInfo{Version: "test"})
	if err != nil {
		t.Fatal(err)
	}
	return server
}

func TestScoreEndpoint(t *testing.T) {
	scorer := &mockScorer{report: domain.Report{
		Address: testAddress,
		Score:   62,
		Breakdown: []domain.BreakdownEntry{
			{Label: "Wallet Age", Delta: 12, Detail: "365 days"},
		},
		ScoredAt: time.Unix(1772150400, 0),
	}}
	server := newTestServer(t, scorer, &mockStore{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/score?address="+testAddress, nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var payload struct {
		Address   string `json:"address"`
		Score     int    `json:"score"`
		Breakdown []struct {
			Label string `json:"label"`
			Delta int    `json:"delta"`
		} `json:"breakdown"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatal(err)
	}
	if payload.Address != testAddress || payload.Score != 62 {
		t.Fatalf("unexpected payload: %+v", payload)
	}
	if len(payload.Breakdown) != 1 || payload.Breakdown[0].Delta != 12 {
		t.Fatalf("unexpected breakdown: %+v", payload.Breakdown)
	}
	if len(scorer.calls) != 1 {
		t.Fatalf("expected one scoring call, got %d", len(scorer.calls))
	}
}

func TestScoreEndpointRejectsBadRequests(t *testing.T) {
	scorer := &mockScorer{err: application.ErrInvalidAddress}
	server := newTestServer(t, scorer, &mockStore{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/score", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing address, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/score?address=not-an-address", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid address, got %d", rec.Code)
	}
}

func TestReportsFilterParsing(t *testing.T) {
	store := &mockStore{}
	server := newTestServer(t, &mockScorer{}, store)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet,
		"/reports?address="+testAddress+"&min_score=40&limit=5", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if store.filter.Address != testAddress || store.filter.Limit != 5 {
		t.Fatalf("unexpected filter: %+v", store.filter)
	}
	if store.filter.MinScore == nil || *store.filter.MinScore != 40 {
		t.Fatalf("min_score not parsed: %+v", store.filter.MinScore)
	}

	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports?min_score=500", nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for out-of-range min_score, got %d", rec.Code)
	}
}

func TestLatestReportNotFound(t *testing.T) {
	server := newTestServer(t, &mockScorer{}, &mockStore{})

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/reports/latest?address="+testAddress, nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestReadyReflectsStore(t *testing.T) {
	store := &mockStore{}
	server := newTestServer(t, &mockScorer{}, store)

	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	store.pingErr = context.DeadlineExceeded
	rec = httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}
