package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/rustyeddy/tradebook/analytics"
	"github.com/rustyeddy/tradebook/enrich"
	"github.com/rustyeddy/tradebook/journal"
	"github.com/rustyeddy/tradebook/report"
	"github.com/rustyeddy/tradebook/tax"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GET /api/trades
func (s *Server) handleListTrades(w http.ResponseWriter, r *http.Request) {
	trades, err := s.ledger.ListTrades(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, trades)
}

// POST /api/trades
func (s *Server) handleAddTrade(w http.ResponseWriter, r *http.Request) {
	var in journal.TradeInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		s.writeError(w, &journal.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	t, err := journal.AddTrade(r.Context(), s.ledger, in, s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, t)
}

// DELETE /api/trades/{id}
func (s *Server) handleDeleteTrade(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		s.writeError(w, &journal.ValidationError{Field: "id", Reason: "must be a number"})
		return
	}
	if err := journal.RemoveTrade(r.Context(), s.ledger, id); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type capitalRequest struct {
	Date   string          `json:"date"`
	Type   journal.TxType  `json:"type"`
	Amount decimal.Decimal `json:"amount"`
	Notes  string          `json:"notes"`
}

// GET /api/capital
func (s *Server) handleCapital(w http.ResponseWriter, r *http.Request) {
	txs, err := s.ledger.ListCapital(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	trades, err := s.ledger.ListTrades(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"summary":      analytics.CapitalSummary(txs, trades),
		"transactions": txs,
	})
}

// POST /api/capital
func (s *Server) handleAddCapital(w http.ResponseWriter, r *http.Request) {
	var req capitalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &journal.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	c, err := journal.AddCapital(r.Context(), s.ledger, req.Date, req.Type, req.Amount, req.Notes, s.now())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, c)
}

// GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	trades, ok := s.trades(w, r)
	if !ok {
		return
	}
	st, has := analytics.PortfolioStats(trades)
	s.writeJSON(w, http.StatusOK, map[string]any{"has_trades": has, "stats": st})
}

// GET /api/calendar?year=2024&month=3
func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	year, month := now.Year(), int(now.Month())
	if v := r.URL.Query().Get("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil || y < 1 {
			s.writeError(w, &journal.ValidationError{Field: "year", Reason: "must be a positive number"})
			return
		}
		year = y
	}
	if v := r.URL.Query().Get("month"); v != "" {
		m, err := strconv.Atoi(v)
		if err != nil || m < 1 || m > 12 {
			s.writeError(w, &journal.ValidationError{Field: "month", Reason: "must be 1-12"})
			return
		}
		month = m
	}

	trades, ok := s.trades(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, analytics.MonthlyCalendar(trades, year, time.Month(month)))
}

// GET /api/hourly
func (s *Server) handleHourly(w http.ResponseWriter, r *http.Request) {
	if trades, ok := s.trades(w, r); ok {
		s.writeJSON(w, http.StatusOK, analytics.HourlyPerformance(trades))
	}
}

// GET /api/prices
func (s *Server) handlePrices(w http.ResponseWriter, r *http.Request) {
	if trades, ok := s.trades(w, r); ok {
		s.writeJSON(w, http.StatusOK, analytics.ProfitsByPrice(trades))
	}
}

// GET /api/weekdays
func (s *Server) handleWeekdays(w http.ResponseWriter, r *http.Request) {
	if trades, ok := s.trades(w, r); ok {
		s.writeJSON(w, http.StatusOK, analytics.WinRateByWeekday(trades))
	}
}

// GET /api/streaks
func (s *Server) handleStreaks(w http.ResponseWriter, r *http.Request) {
	if trades, ok := s.trades(w, r); ok {
		s.writeJSON(w, http.StatusOK, analytics.ComputeStreaks(trades))
	}
}

// GET /api/taxes
func (s *Server) handleTaxes(w http.ResponseWriter, r *http.Request) {
	if trades, ok := s.trades(w, r); ok {
		s.writeJSON(w, http.StatusOK, tax.EstimateWithRates(trades, s.now(), s.rates))
	}
}

// GET /api/dashboard
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d, err := report.Build(r.Context(), s.ledger, report.Options{Now: s.now(), Rates: &s.rates})
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, d)
}

// GET /api/logs?limit=N
func (s *Server) handleLogs(w http.ResponseWriter, r *http.Request) {
	if s.logs == nil {
		s.writeJSON(w, http.StatusOK, map[string]any{"logs": []journal.LogEntry{}, "unread": 0})
		return
	}
	limit := journal.DefaultLogKeep
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	logs, err := s.logs.ListLogs(r.Context(), limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	unread, err := s.logs.UnreadLogCount(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"logs": logs, "unread": unread})
}

// GET /api/analyze/{ticker}
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if s.analyzer == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "no stock data provider configured"})
		return
	}
	a, err := s.analyzer.Analyze(r.Context(), chi.URLParam(r, "ticker"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, a)
}

// POST /api/sql {"query": "..."}
func (s *Server) handleSQL(w http.ResponseWriter, r *http.Request) {
	if s.console == nil {
		s.writeError(w, journal.ErrConsoleDisabled)
		return
	}
	var req struct {
		Query string `json:"query"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, &journal.ValidationError{Field: "body", Reason: err.Error()})
		return
	}
	res, err := s.console.Exec(r.Context(), req.Query)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{"result": res, "message": res.Message()})
}

func (s *Server) trades(w http.ResponseWriter, r *http.Request) ([]journal.Trade, bool) {
	trades, err := s.ledger.ListTrades(r.Context())
	if err != nil {
		s.writeError(w, err)
		return nil, false
	}
	return trades, true
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("encode response")
	}
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	var ve *journal.ValidationError
	switch {
	case errors.As(err, &ve):
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error(), Field: ve.Field})
	case errors.Is(err, journal.ErrNotFound):
		s.writeJSON(w, http.StatusNotFound, errorBody{Error: err.Error()})
	case errors.Is(err, journal.ErrConsoleDisabled):
		s.writeJSON(w, http.StatusForbidden, errorBody{Error: err.Error()})
	case errors.Is(err, journal.ErrQueryFailed):
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: err.Error()})
	case errors.Is(err, enrich.ErrUnavailable):
		s.log.Warn().Err(err).Msg("provider failed")
		s.writeJSON(w, http.StatusBadGateway, errorBody{Error: err.Error()})
	default:
		s.log.Error().Err(err).Msg("request failed")
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
	}
}
