package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/middleware"
	"github.com/dafibh/canteiro/canteiro-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// DashboardHandler handles dashboard-related HTTP requests
type DashboardHandler struct {
	dashboardService *service.DashboardService
	now              func() time.Time
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		dashboardService: dashboardService,
		now:              time.Now,
	}
}

// TotalsResponse holds income, expense and profit realized up to today
type TotalsResponse struct {
	TotalIncome  string `json:"totalIncome"`
	TotalExpense string `json:"totalExpense"`
	TotalProfit  string `json:"totalProfit"`
}

// ProjectProfitResponse is one bar of the per-project chart
type ProjectProfitResponse struct {
	ProjectID   *string `json:"projectId"`
	ProjectName string  `json:"projectName"`
	Income      string  `json:"income"`
	Expense     string  `json:"expense"`
	Profit      string  `json:"profit"`
}

// MonthlyDataResponse is one month of the evolution chart
type MonthlyDataResponse struct {
	Month   string `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
	Profit  string `json:"profit"`
}

// CategoryDistributionResponse is one slice of the expense pie
type CategoryDistributionResponse struct {
	Name          string `json:"name"`
	Uncategorized bool   `json:"uncategorized"`
	Value         string `json:"value"`
	Percentage    string `json:"percentage"`
}

// ForecastResponse is one future month
type ForecastResponse struct {
	Month   string `json:"month"`
	Income  string `json:"income"`
	Expense string `json:"expense"`
}

// DashboardResponse represents the dashboard in API responses
type DashboardResponse struct {
	Period            PeriodResponse                 `json:"period"`
	Totals            TotalsResponse                 `json:"totals"`
	ProfitByProject   []ProjectProfitResponse        `json:"profitByProject"`
	MonthlyData       []MonthlyDataResponse          `json:"monthlyData"`
	ExpenseByCategory []CategoryDistributionResponse `json:"expenseByCategory"`
	Forecast          []ForecastResponse             `json:"forecast"`
	EmptyState        domain.EmptyState              `json:"emptyState"`
}

func toDashboardResponse(selector domain.PeriodSelector, d *domain.Dashboard) DashboardResponse {
	response := DashboardResponse{
		Period: toPeriodResponse(selector),
		Totals: TotalsResponse{
			TotalIncome:  d.Totals.TotalIncome.StringFixed(2),
			TotalExpense: d.Totals.TotalExpense.StringFixed(2),
			TotalProfit:  d.Totals.TotalProfit.StringFixed(2),
		},
		ProfitByProject:   make([]ProjectProfitResponse, len(d.ProfitByProject)),
		MonthlyData:       make([]MonthlyDataResponse, len(d.MonthlyData)),
		ExpenseByCategory: make([]CategoryDistributionResponse, len(d.ExpenseByCategory)),
		Forecast:          make([]ForecastResponse, len(d.Forecast)),
		EmptyState:        d.EmptyState,
	}

	for i, p := range d.ProfitByProject {
		response.ProfitByProject[i] = ProjectProfitResponse{
			ProjectID:   uuidString(p.ProjectID),
			ProjectName: p.ProjectName,
			Income:      p.Income.StringFixed(2),
			Expense:     p.Expense.StringFixed(2),
			Profit:      p.Profit.StringFixed(2),
		}
	}
	for i, m := range d.MonthlyData {
		response.MonthlyData[i] = MonthlyDataResponse{
			Month:   m.Month,
			Income:  m.Income.StringFixed(2),
			Expense: m.Expense.StringFixed(2),
			Profit:  m.Profit.StringFixed(2),
		}
	}
	for i, cat := range d.ExpenseByCategory {
		response.ExpenseByCategory[i] = CategoryDistributionResponse{
			Name:          cat.Name,
			Uncategorized: cat.Uncategorized,
			Value:         cat.Value.StringFixed(2),
			Percentage:    cat.Percentage.StringFixed(2),
		}
	}
	for i, f := range d.Forecast {
		response.Forecast[i] = ForecastResponse{
			Month:   f.Month,
			Income:  f.Income.StringFixed(2),
			Expense: f.Expense.StringFixed(2),
		}
	}
	return response
}

// GetDashboard godoc
// @Summary Get the dashboard of a period
// @Description Totals, per-project profit, monthly evolution and expense distribution of the
// @Description selected period, plus the forecast of every future row.
// @Tags dashboard
// @Produce json
// @Security BearerAuth
// @Param mode query string false "week, month or all"
// @Param year query int false "Year of the month period"
// @Param month query int false "Month of the month period, 1-12"
// @Param anchor query string false "Any day of the week period, YYYY-MM-DD"
// @Param direction query string false "back, forward or today"
// @Param excludeUnassigned query bool false "Drop the no-project bucket"
// @Success 200 {object} DashboardResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}

	selector, fieldErr := parsePeriodSelector(c, h.now())
	if fieldErr != nil {
		return NewValidationError(c, "Invalid period", []ValidationError{*fieldErr})
	}

	var opts service.DashboardOptions
	if raw := c.QueryParam("excludeUnassigned"); raw != "" {
		exclude, err := strconv.ParseBool(raw)
		if err != nil {
			return NewFieldError(c, "excludeUnassigned", "Must be true or false")
		}
		opts.ExcludeUnassigned = exclude
	}

	dashboard, err := h.dashboardService.GetDashboard(c.Request().Context(), companyID, selector, opts)
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID.String()).Msg("Failed to get dashboard")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, toDashboardResponse(selector, dashboard))
}
