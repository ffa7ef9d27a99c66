package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"walletrep/internal/application"
	"walletrep/internal/domain"
)

// Scorer runs one scoring pass for a wallet.
type Scorer interface {
	Score(ctx context.Context, address string) (domain.Report, error)
}

// ReportStore serves persisted reports.
type ReportStore interface {
	QueryReports(ctx context.Context, filter application.ReportQueryFilter) ([]domain.Report, error)
	LatestReport(ctx context.Context, address string) (domain.Report, bool, error)
	Ping(ctx context.Context) error
}

type BuildInfo struct {
	Version   string
	Commit    string
	BuildTime string
}

type Server struct {
	scorer    Scorer
	store     ReportStore
	metrics   *Metrics
	buildInfo BuildInfo
}

func NewServer(scorer Scorer, store ReportStore, metrics *Metrics, buildInfo BuildInfo) (*Server, error) {
	if scorer == nil || store == nil {
		return nil, errors.New("http server dependencies must not be nil")
	}
	if metrics == nil {
		metrics = NewMetrics()
	}
	return &Server{scorer: scorer, store: store, metrics: metrics, buildInfo: buildInfo}, nil
}

func (s *Server) MetricsObserver() *Metrics {
	return s.metrics
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/readyz", s.handleReady)
	mux.HandleFunc("/score", s.handleScore)
	mux.HandleFunc("/reports", s.handleReports)
	mux.HandleFunc("/reports/latest", s.handleLatestReport)
	mux.HandleFunc("/metrics", s.handleMetrics)
	mux.HandleFunc("/version", s.handleVersion)
	return mux
}

func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	server := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		respondError(w, http.StatusServiceUnavailable, "store not ready")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if address == "" {
		respondError(w, http.StatusBadRequest, "address is required")
		return
	}
	report, err := s.scorer.Score(r.Context(), address)
	if err != nil {
		if errors.Is(err, application.ErrInvalidAddress) {
			respondError(w, http.StatusBadRequest, "invalid wallet address")
			return
		}
		respondError(w, http.StatusInternalServerError, "scoring failed")
		return
	}
	respondJSON(w, http.StatusOK, reportPayload(report))
}

func (s *Server) handleReports(w http.ResponseWriter, r *http.Request) {
	filter, err := parseReportFilter(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	reports, err := s.store.QueryReports(r.Context(), filter)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "query failed")
		return
	}
	payload := make([]map[string]any, 0, len(reports))
	for _, report := range reports {
		payload = append(payload, reportPayload(report))
	}
	respondJSON(w, http.StatusOK, payload)
}

func (s *Server) handleLatestReport(w http.ResponseWriter, r *http.Request) {
	address := r.URL.Query().Get("address")
	if !domain.ValidAddress(address) {
		respondError(w, http.StatusBadRequest, "invalid wallet address")
		return
	}
	report, ok, err := s.store.LatestReport(r.Context(), address)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if !ok {
		respondError(w, http.StatusNotFound, "no report for address")
		return
	}
	respondJSON(w, http.StatusOK, reportPayload(report))
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.metrics.Snapshot())
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"version":    s.buildInfo.Version,
		"commit":     s.buildInfo.Commit,
		"build_time": s.buildInfo.BuildTime,
	})
}

func parseReportFilter(r *http.Request) (application.ReportQueryFilter, error) {
	filter := application.ReportQueryFilter{
		Address: domain.NormalizeAddress(r.URL.Query().Get("address")),
	}
	if filter.Address != "" && !domain.ValidAddress(filter.Address) {
		return application.ReportQueryFilter{}, errors.New("invalid address")
	}

	minScore, err := parseScoreParam(r, "min_score")
	if err != nil {
		return application.ReportQueryFilter{}, err
	}
	filter.MinScore = minScore
	maxScore, err := parseScoreParam(r, "max_score")
	if err != nil {
		return application.ReportQueryFilter{}, err
	}
	filter.MaxScore = maxScore

	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 0 {
			return application.ReportQueryFilter{}, errors.New("invalid limit")
		}
		filter.Limit = limit
	}
	return filter, nil
}

func parseScoreParam(r *http.Request, key string) (*int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 || value > 100 {
		return nil, errors.New("invalid " + key)
	}
	return &value, nil
}

func reportPayload(report domain.Report) map[string]any {
	breakdown := make([]map[string]any, 0, len(report.Breakdown))
	for _, entry := range report.Breakdown {
		breakdown = append(breakdown, map[string]any{
			"label":  entry.Label,
			"delta":  entry.Delta,
			"detail": entry.Detail,
		})
	}
	return map[string]any{
		"address": report.Address,
		"score":   report.Score,
		"signals": map[string]any{
			"age_days":          report.Signals.AgeDays,
			"mixer_interaction": report.Signals.MixerInteraction,
			"failed_tx_count":   report.Signals.FailedTxCount,
			"failed_tx_rate":    report.Signals.FailedTxRate,
			"rug_pull_count":    report.Signals.RugPullCount,
			"swap_count":        report.Signals.SwapCount,
			"liquidation_count": report.Signals.LiquidationCount,
			"vote_count":        report.Signals.VoteCount,
		},
		"breakdown": breakdown,
		"scored_at": report.ScoredAt.UTC().Format(time.RFC3339),
	}
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}
