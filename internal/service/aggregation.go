package service

import (
	"sort"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/util"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// isPastOrToday compares calendar dates only, so a row dated today counts as realized
func isPastOrToday(d, today time.Time) bool {
	return !util.DateOnly(d).After(util.DateOnly(today))
}

// CalculateTotals sums income and expense of the rows dated today or earlier
func CalculateTotals(txs []*domain.Transaction, today time.Time) domain.Totals {
	income, expense := decimal.Zero, decimal.Zero
	for _, t := range txs {
		if !isPastOrToday(t.Date, today) {
			continue
		}
		switch t.Type {
		case domain.TransactionTypeIncome:
			income = income.Add(t.Amount)
		case domain.TransactionTypeExpense:
			expense = expense.Add(t.Amount)
		}
	}
	return domain.Totals{
		TotalIncome:  income,
		TotalExpense: expense,
		TotalProfit:  income.Sub(expense),
	}
}

// CalculateProfitByProject groups rows by project. Rows without a project land in a single
// bucket with a nil ProjectID. Sorted by profit, highest first.
func CalculateProfitByProject(txs []*domain.Transaction) []domain.ProjectProfit {
	byProject := make(map[uuid.UUID]*domain.ProjectProfit)
	for _, t := range txs {
		key := uuid.Nil
		if t.ProjectID != nil {
			key = *t.ProjectID
		}

		entry, ok := byProject[key]
		if !ok {
			entry = &domain.ProjectProfit{
				ProjectName: domain.NoProjectLabel,
				Income:      decimal.Zero,
				Expense:     decimal.Zero,
			}
			if t.ProjectID != nil {
				id := *t.ProjectID
				entry.ProjectID = &id
			}
			byProject[key] = entry
		}
		// a row missing the joined name must not hide the name carried by another row
		if t.ProjectID != nil && t.ProjectName != nil && *t.ProjectName != "" {
			entry.ProjectName = *t.ProjectName
		}

		if t.Type == domain.TransactionTypeIncome {
			entry.Income = entry.Income.Add(t.Amount)
		} else {
			entry.Expense = entry.Expense.Add(t.Amount)
		}
	}

	result := make([]domain.ProjectProfit, 0, len(byProject))
	for _, entry := range byProject {
		entry.Profit = entry.Income.Sub(entry.Expense)
		result = append(result, *entry)
	}

	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Profit.Cmp(result[j].Profit); c != 0 {
			return c > 0
		}
		return projectSortKey(result[i]) < projectSortKey(result[j])
	})
	return result
}

func projectSortKey(p domain.ProjectProfit) string {
	if p.ProjectID == nil {
		return ""
	}
	return p.ProjectID.String()
}

// WithoutUnassigned drops the no-project bucket
func WithoutUnassigned(projects []domain.ProjectProfit) []domain.ProjectProfit {
	result := make([]domain.ProjectProfit, 0, len(projects))
	for _, p := range projects {
		if !p.IsUnassigned() {
			result = append(result, p)
		}
	}
	return result
}

// CalculateMonthlyData groups rows by YYYY-MM, oldest month first
func CalculateMonthlyData(txs []*domain.Transaction) []domain.MonthlyData {
	byMonth := make(map[string]*domain.MonthlyData)
	for _, t := range txs {
		month := util.MonthKey(t.Date)
		entry, ok := byMonth[month]
		if !ok {
			entry = &domain.MonthlyData{Month: month, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[month] = entry
		}
		if t.Type == domain.TransactionTypeIncome {
			entry.Income = entry.Income.Add(t.Amount)
		} else {
			entry.Expense = entry.Expense.Add(t.Amount)
		}
	}

	result := make([]domain.MonthlyData, 0, len(byMonth))
	for _, entry := range byMonth {
		entry.Profit = entry.Income.Sub(entry.Expense)
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result
}

type categoryKey struct {
	name          string
	uncategorized bool
}

// CalculateExpenseByCategory distributes expenses over category names. Rows without a category
// name go to the uncategorized slice, which stays separate from a real category that happens to
// share its label. Sorted by value, highest first.
func CalculateExpenseByCategory(txs []*domain.Transaction) []domain.CategoryDistribution {
	total := decimal.Zero
	byCategory := make(map[categoryKey]decimal.Decimal)
	for _, t := range txs {
		if t.Type != domain.TransactionTypeExpense {
			continue
		}
		key := categoryKey{name: domain.NoCategoryLabel, uncategorized: true}
		if t.CategoryName != nil && *t.CategoryName != "" {
			key = categoryKey{name: *t.CategoryName}
		}
		byCategory[key] = byCategory[key].Add(t.Amount)
		total = total.Add(t.Amount)
	}

	result := make([]domain.CategoryDistribution, 0, len(byCategory))
	for key, value := range byCategory {
		percentage := decimal.Zero
		if total.IsPositive() {
			percentage = value.Mul(hundred).Div(total)
		}
		result = append(result, domain.CategoryDistribution{
			Name:          key.name,
			Uncategorized: key.uncategorized,
			Value:         value,
			Percentage:    percentage,
		})
	}

	sort.Slice(result, func(i, j int) bool {
		if c := result[i].Value.Cmp(result[j].Value); c != 0 {
			return c > 0
		}
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return !result[i].Uncategorized && result[j].Uncategorized
	})
	return result
}

// CalculateForecast groups the rows dated strictly after today by month, oldest first
func CalculateForecast(txs []*domain.Transaction, today time.Time) []domain.ForecastData {
	byMonth := make(map[string]*domain.ForecastData)
	for _, t := range txs {
		if isPastOrToday(t.Date, today) {
			continue
		}
		month := util.MonthKey(t.Date)
		entry, ok := byMonth[month]
		if !ok {
			entry = &domain.ForecastData{Month: month, Income: decimal.Zero, Expense: decimal.Zero}
			byMonth[month] = entry
		}
		if t.Type == domain.TransactionTypeIncome {
			entry.Income = entry.Income.Add(t.Amount)
		} else {
			entry.Expense = entry.Expense.Add(t.Amount)
		}
	}

	result := make([]domain.ForecastData, 0, len(byMonth))
	for _, entry := range byMonth {
		result = append(result, *entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Month < result[j].Month })
	return result
}
