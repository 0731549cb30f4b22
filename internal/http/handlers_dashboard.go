package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/Vijay-1289/Expense-Tracker/internal/dashboard"
)

// TrendPoint is one chart sample: the expense date and its amount.
type TrendPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

func (s *Server) handleOverview(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		writeAuthRequired(w)
		return
	}
	snap := s.dashboards.Open(s.baseCtx, user.Identity).Snapshot()

	type overviewData struct {
		Loading      bool
		LastError    string
		Alert        bool
		TotalSpent   string
		AverageDaily string
		HasBudget    bool
		BudgetLeft   string
		BudgetAmount string
	}
	data := overviewData{
		Loading:      snap.State == dashboard.StateLoading,
		LastError:    snap.LastError,
		Alert:        snap.Summary.ThresholdAlert,
		TotalSpent:   formatINR(snap.Summary.TotalSpent),
		AverageDaily: "₹" + snap.Summary.AverageDaily.StringFixed(2),
		HasBudget:    snap.Summary.HasBudget,
	}
	if snap.Summary.HasBudget {
		data.BudgetLeft = formatINR(snap.Summary.BudgetRemaining)
		data.BudgetAmount = formatINR(snap.Summary.BudgetAmount)
	} else {
		data.BudgetLeft = "₹0"
		data.BudgetAmount = "₹0"
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "overview.html", data); err != nil {
		slog.ErrorContext(r.Context(), "overview template failed", "error", err)
		writeFragment(w, http.StatusInternalServerError, "error", "Could not render overview.")
	}
}

func (s *Server) handleExpenseList(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		writeAuthRequired(w)
		return
	}
	snap := s.dashboards.Open(s.baseCtx, user.Identity).Snapshot()

	type card struct {
		Title    string
		Amount   string
		Category string
		Date     string
	}
	data := struct {
		Loading bool
		Items   []card
	}{Loading: snap.State == dashboard.StateLoading}
	for _, e := range snap.Expenses {
		data.Items = append(data.Items, card{
			Title:    e.Title,
			Amount:   formatINR(e.Amount),
			Category: string(e.Category),
			Date:     e.Date.Text(),
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.templates.ExecuteTemplate(w, "expenses.html", data); err != nil {
		slog.ErrorContext(r.Context(), "expenses template failed", "error", err)
		writeFragment(w, http.StatusInternalServerError, "error", "Could not render expenses.")
	}
}

// handleTrend serves the chart series: one point per expense, ordered
// date ascending for plotting. The snapshot lists newest first, so the
// series is built back to front.
func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		http.Error(w, "sign in required", http.StatusUnauthorized)
		return
	}

	key := string(user.Identity)
	points, ok := s.trendCache.Get(key)
	if !ok {
		snap := s.dashboards.Open(s.baseCtx, user.Identity).Snapshot()
		points = make([]TrendPoint, 0, len(snap.Expenses))
		for i := len(snap.Expenses) - 1; i >= 0; i-- {
			e := snap.Expenses[i]
			points = append(points, TrendPoint{
				Label: e.Date.Text(),
				Value: e.Amount.InexactFloat64(),
			})
		}
		s.trendCache.Set(key, points)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(points); err != nil {
		slog.ErrorContext(r.Context(), "trend encode failed", "error", err)
	}
}
