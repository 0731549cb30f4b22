package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Vijay-1289/Expense-Tracker/internal/services"
)

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		writeAuthRequired(w)
		return
	}
	if err := r.ParseForm(); err != nil {
		slog.ErrorContext(r.Context(), "parse form failed", "error", err, "path", r.URL.Path)
		writeFragment(w, http.StatusBadRequest, "error", "Invalid request format.")
		return
	}

	in := services.BudgetInput{
		Amount:          strings.TrimSpace(r.Form.Get("amount")),
		StartDateText:   strings.TrimSpace(r.Form.Get("start_date_text")),
		StartDatePicker: strings.TrimSpace(r.Form.Get("start_date_picker")),
		EndDateText:     strings.TrimSpace(r.Form.Get("end_date_text")),
		EndDatePicker:   strings.TrimSpace(r.Form.Get("end_date_picker")),
	}

	saved, err := s.budgets.Set(r.Context(), user.Identity, in)
	if err != nil {
		slog.WarnContext(r.Context(), "budget rejected", "owner", user.Identity, "error", err)
		writeFormError(w, err)
		return
	}

	s.trendCache.Delete(string(user.Identity))
	writeFragment(w, http.StatusOK, "success",
		"Budget set to "+formatINR(saved.Amount)+" for "+saved.StartDate.Text()+" to "+saved.EndDate.Text()+".")
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	user, ok := s.currentUser(r)
	if !ok {
		writeAuthRequired(w)
		return
	}

	agg := s.dashboards.Open(s.baseCtx, user.Identity)
	if err := agg.DeleteBudget(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "budget delete failed", "owner", user.Identity, "error", err)
		writeFormError(w, err)
		return
	}

	s.trendCache.Delete(string(user.Identity))
	writeFragment(w, http.StatusOK, "success", "Budget removed.")
}
