package usecase

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"SpendScout/internal/domain"
)

var (
	topCategoryCut    = decimal.NewFromFloat(0.10)
	secondCategoryCut = decimal.NewFromFloat(0.05)
)

// BuildSpendingSummary aggregates the user's expenses for the month of now,
// comparing against the previous month to flag rising categories.
func BuildSpendingSummary(transactions []domain.Transaction, now time.Time) domain.SpendingSummary {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	previousMonth := firstOfMonth.AddDate(0, 0, -1)

	current := monthlyExpenseTotals(transactions, now)
	previous := monthlyExpenseTotals(transactions, previousMonth)

	total := decimal.Zero
	for _, amount := range current {
		total = total.Add(amount)
	}

	var rising []string
	for category, amount := range current {
		if amount.GreaterThan(previous[category]) {
			rising = append(rising, category)
		}
	}
	sort.Strings(rising)

	return domain.SpendingSummary{
		Month:      now.Format("2006-01"),
		TotalSpent: total,
		ByCategory: current,
		Rising:     rising,
	}
}

// SummaryContext flattens a spending summary into the user context handed to
// the deal ranker.
func SummaryContext(summary domain.SpendingSummary) map[string]any {
	byCategory := make(map[string]string, len(summary.ByCategory))
	for category, amount := range summary.ByCategory {
		byCategory[category] = amount.String()
	}
	return map[string]any{
		"month":       summary.Month,
		"total_spent": summary.TotalSpent.String(),
		"by_category": byCategory,
		"rising":      summary.Rising,
	}
}

// GenerateSavingsRecommendations produces personalized savings tips from the
// user's current-month spending and goals: a 10% cut on the top expense
// category, a per-day breakdown of that cut, and a 5% redirect from the
// runner-up category.
func GenerateSavingsRecommendations(transactions []domain.Transaction, goals []domain.Goal, now time.Time) []domain.Recommendation {
	if len(goals) == 0 {
		return []domain.Recommendation{{Text: "Add a goal to receive personalized savings tips."}}
	}
	if len(transactions) == 0 {
		return []domain.Recommendation{{Text: "No transactions yet."}}
	}

	totals := monthlyExpenseTotals(transactions, now)
	if len(totals) == 0 {
		return []domain.Recommendation{{Text: "No expenses recorded for the current month."}}
	}

	ranked := rankCategories(totals)
	top := ranked[0]

	var recommendations []domain.Recommendation

	suggested := top.amount.Mul(topCategoryCut).Round(2)
	recommendations = append(recommendations, domain.Recommendation{
		Text: fmt.Sprintf("Consider reducing £%s in %s this month to accelerate your savings goals.", suggested, top.category),
	})

	if daysRemaining := 30 - now.Day(); daysRemaining > 0 {
		daily := suggested.Div(decimal.NewFromInt(int64(daysRemaining))).Round(2)
		recommendations = append(recommendations, domain.Recommendation{
			Text: fmt.Sprintf("Saving just £%s per day in %s can help you reach your target faster.", daily, top.category),
		})
	}

	if len(ranked) > 1 {
		second := ranked[1]
		redirect := second.amount.Mul(secondCategoryCut).Round(2)
		recommendations = append(recommendations, domain.Recommendation{
			Text: fmt.Sprintf("Try saving £%s from %s and redirect it to your savings goal.", redirect, second.category),
		})
	}

	return recommendations
}

type categoryTotal struct {
	category string
	amount   decimal.Decimal
}

func rankCategories(totals map[string]decimal.Decimal) []categoryTotal {
	ranked := make([]categoryTotal, 0, len(totals))
	for category, amount := range totals {
		ranked = append(ranked, categoryTotal{category: category, amount: amount})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if !ranked[i].amount.Equal(ranked[j].amount) {
			return ranked[i].amount.GreaterThan(ranked[j].amount)
		}
		return ranked[i].category < ranked[j].category
	})
	return ranked
}

func monthlyExpenseTotals(transactions []domain.Transaction, month time.Time) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal)
	for _, tx := range transactions {
		if tx.Type != domain.TypeExpense {
			continue
		}
		if tx.Date.Year() != month.Year() || tx.Date.Month() != month.Month() {
			continue
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}
	return totals
}
