package http

import (
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Vijay-1289/Expense-Tracker/internal/core"
)

func categoryNames() []string {
	cats := core.Categories()
	names := make([]string, len(cats))
	for i, c := range cats {
		names[i] = string(c)
	}
	return names
}

// formatINR renders an amount as rupees with Indian digit grouping,
// e.g. 123456.5 -> ₹1,23,456.5.
func formatINR(d decimal.Decimal) string {
	s := d.String()
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, fracPart, hasFrac := strings.Cut(s, ".")

	grouped := groupIndian(intPart)
	out := "₹" + grouped
	if hasFrac {
		out += "." + fracPart
	}
	if neg {
		return "-" + out
	}
	return out
}

// groupIndian groups the last three digits, then pairs: 1234567 ->
// 12,34,567.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head := digits[:len(digits)-3]
	tail := digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(append(parts, tail), ",")
}

// Error taxonomy: validation problems get a 422 with a specific message
// and the form kept client-side, a missing session gets a 401, store
// failures get a 502 with the backend message, everything else a 500.

var validationMessages = map[error]string{
	core.ErrEmptyTitle:      "Title is required.",
	core.ErrTitleTooLong:    "Title is too long (200 characters max).",
	core.ErrInvalidAmount:   "Enter a positive amount.",
	core.ErrInvalidCategory: "Pick one of the listed categories.",
	core.ErrInvalidDate:     "Enter a valid date (DD/MM/YYYY).",
	core.ErrDateRange:       "Start date cannot be after end date.",
}

func validationMessage(err error) (string, bool) {
	for sentinel, msg := range validationMessages {
		if errors.Is(err, sentinel) {
			return msg, true
		}
	}
	return "", false
}

func writeFragment(w http.ResponseWriter, status int, class, msg string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(`<div class="` + class + `">` + template.HTMLEscapeString(msg) + `</div>`))
}

func writeAuthRequired(w http.ResponseWriter) {
	writeFragment(w, http.StatusUnauthorized, "error", "Please sign in to continue.")
}

// writeFormError maps a service error onto the taxonomy.
func writeFormError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotSignedIn):
		writeAuthRequired(w)
	default:
		if msg, ok := validationMessage(err); ok {
			writeFragment(w, http.StatusUnprocessableEntity, "error", msg)
			return
		}
		writeFragment(w, http.StatusBadGateway, "error", "Could not save: "+err.Error())
	}
}
