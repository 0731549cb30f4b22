package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/Vijay-1289/Expense-Tracker/internal/services"
)

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
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

	in := services.ExpenseInput{
		Title:      sanitizeInput(r.Form.Get("title")),
		Amount:     strings.TrimSpace(r.Form.Get("amount")),
		Category:   strings.TrimSpace(r.Form.Get("category")),
		DateText:   strings.TrimSpace(r.Form.Get("date_text")),
		DatePicker: strings.TrimSpace(r.Form.Get("date_picker")),
	}

	saved, err := s.expenses.Create(r.Context(), user.Identity, in)
	if err != nil {
		slog.WarnContext(r.Context(), "expense rejected", "owner", user.Identity, "error", err)
		writeFormError(w, err)
		return
	}

	s.trendCache.Delete(string(user.Identity))
	writeFragment(w, http.StatusOK, "success",
		"Recorded "+saved.Title+" for "+formatINR(saved.Amount)+".")
}

// sanitizeInput trims whitespace and strips control characters.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != '\t' {
			return -1
		}
		return r
	}, s)
}
