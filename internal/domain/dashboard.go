package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Labels used for rows that carry no project or no category
const (
	NoProjectLabel  = "No project"
	NoCategoryLabel = "No category"
)

// Totals holds income, expense and profit of rows dated today or earlier
type Totals struct {
	TotalIncome  decimal.Decimal `json:"totalIncome"`
	TotalExpense decimal.Decimal `json:"totalExpense"`
	TotalProfit  decimal.Decimal `json:"totalProfit"`
}

// ProjectProfit is the income/expense/profit of one project. A nil ProjectID is the
// bucket of transactions that have no project.
type ProjectProfit struct {
	ProjectID   *uuid.UUID      `json:"projectId"`
	ProjectName string          `json:"projectName"`
	Income      decimal.Decimal `json:"income"`
	Expense     decimal.Decimal `json:"expense"`
	Profit      decimal.Decimal `json:"profit"`
}

// IsUnassigned reports whether this is the no-project bucket
func (p ProjectProfit) IsUnassigned() bool {
	return p.ProjectID == nil
}

// MonthlyData is the income/expense/profit of one calendar month (YYYY-MM)
type MonthlyData struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
	Profit  decimal.Decimal `json:"profit"`
}

// CategoryDistribution is one slice of the expense distribution
type CategoryDistribution struct {
	Name          string          `json:"name"`
	Uncategorized bool            `json:"uncategorized"`
	Value         decimal.Decimal `json:"value"`
	Percentage    decimal.Decimal `json:"percentage"`
}

// ForecastData is the future income/expense of one calendar month
type ForecastData struct {
	Month   string          `json:"month"`
	Income  decimal.Decimal `json:"income"`
	Expense decimal.Decimal `json:"expense"`
}

// EmptyState lets clients tell "no data at all" from "no data in the selected period"
type EmptyState struct {
	HasTransactions         bool `json:"hasTransactions"`
	HasTransactionsInPeriod bool `json:"hasTransactionsInPeriod"`
}

// Dashboard bundles every aggregate view for one period
type Dashboard struct {
	Period            PeriodRange            `json:"period"`
	Totals            Totals                 `json:"totals"`
	ProfitByProject   []ProjectProfit        `json:"profitByProject"`
	MonthlyData       []MonthlyData          `json:"monthlyData"`
	ExpenseByCategory []CategoryDistribution `json:"expenseByCategory"`
	Forecast          []ForecastData         `json:"forecast"`
	EmptyState        EmptyState             `json:"emptyState"`
}
