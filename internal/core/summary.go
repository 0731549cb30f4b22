package core

import "github.com/shopspring/decimal"

// averageWindowDays is the fixed divisor behind the "Average Daily" card.
// It is deliberately not calendar-aware.
var averageWindowDays = decimal.NewFromInt(30)

// alertThreshold is the spend-vs-budget ratio above which the dashboard
// shows the warning banner.
var alertThreshold = decimal.New(8, -1) // 0.80

// Summary is the derived view-state behind the dashboard cards. It is
// recomputed from scratch after every fetch and never persisted.
type Summary struct {
	TotalSpent      decimal.Decimal
	AverageDaily    decimal.Decimal
	HasBudget       bool
	BudgetAmount    decimal.Decimal
	BudgetRemaining decimal.Decimal
	ThresholdAlert  bool
}

// Summarize computes the dashboard aggregates from the expenses and the
// active budget of a single fetch. The threshold alert is derived from
// exactly these values, never from an earlier refresh cycle.
func Summarize(expenses []Expense, budget *Budget) Summary {
	total := decimal.Zero
	for _, e := range expenses {
		total = total.Add(e.Amount)
	}

	s := Summary{
		TotalSpent:   total,
		AverageDaily: total.Div(averageWindowDays).Round(2),
	}

	if budget != nil {
		s.HasBudget = true
		s.BudgetAmount = budget.Amount
		s.BudgetRemaining = budget.Amount.Sub(total)
		// Exact decimal comparison, alert iff spent > 80% of budget.
		s.ThresholdAlert = total.GreaterThan(budget.Amount.Mul(alertThreshold))
	}

	return s
}
