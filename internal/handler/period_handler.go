package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/util"
	"github.com/labstack/echo/v4"
)

// Navigation directions accepted by the period query
const (
	directionBack    = "back"
	directionForward = "forward"
	directionToday   = "today"
)

// PeriodHandler resolves period pickers into concrete date ranges
type PeriodHandler struct {
	now func() time.Time
}

// NewPeriodHandler creates a new PeriodHandler
func NewPeriodHandler() *PeriodHandler {
	return &PeriodHandler{now: time.Now}
}

// PeriodResponse is a resolved period plus the selector state that produced it, so a
// client can send it back to navigate further
type PeriodResponse struct {
	Mode      string `json:"mode"`
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Label     string `json:"label"`
	Year      int    `json:"year"`
	Month     int    `json:"month"`
	Anchor    string `json:"anchor"`
}

func toPeriodResponse(s domain.PeriodSelector) PeriodResponse {
	r := s.Range()
	year, month := util.NormalizeMonth(s.Year, s.Month)
	return PeriodResponse{
		Mode:      string(r.Mode),
		StartDate: r.StartDate(),
		EndDate:   r.EndDate(),
		Label:     r.Label,
		Year:      year,
		Month:     month + 1,
		Anchor:    util.FormatDate(util.StartOfWeek(s.WeekAnchor)),
	}
}

// hasPeriodQuery reports whether the request carries any period parameter
func hasPeriodQuery(c echo.Context) bool {
	for _, name := range []string{"mode", "year", "month", "anchor", "direction"} {
		if c.QueryParam(name) != "" {
			return true
		}
	}
	return false
}

// parsePeriodSelector builds a selector from the query string. Missing parameters fall
// back to now: month mode, the current month and the current week.
func parsePeriodSelector(c echo.Context, now time.Time) (domain.PeriodSelector, *ValidationError) {
	selector := domain.NewPeriodSelector(now)

	if raw := c.QueryParam("mode"); raw != "" {
		mode := domain.PeriodMode(raw)
		if !mode.IsValid() {
			return selector, &ValidationError{Field: "mode", Message: "Mode must be one of: week, month, all"}
		}
		selector = selector.WithMode(mode)
	}

	if raw := c.QueryParam("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 1900 || year > 2100 {
			return selector, &ValidationError{Field: "year", Message: "Year must be between 1900 and 2100"}
		}
		selector.Year = year
	}

	if raw := c.QueryParam("month"); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil || month < 1 || month > 12 {
			return selector, &ValidationError{Field: "month", Message: "Month must be between 1 and 12"}
		}
		selector.Month = month - 1
	}

	if raw := c.QueryParam("anchor"); raw != "" {
		anchor, err := util.ParseDate(raw)
		if err != nil {
			return selector, &ValidationError{Field: "anchor", Message: "Must be in YYYY-MM-DD format"}
		}
		selector.WeekAnchor = util.StartOfWeek(anchor)
	}

	switch c.QueryParam("direction") {
	case "":
	case directionBack:
		selector = selector.GoBack()
	case directionForward:
		selector = selector.GoForward()
	case directionToday:
		selector = selector.GoToday(now)
	default:
		return selector, &ValidationError{Field: "direction", Message: "Direction must be one of: back, forward, today"}
	}

	return selector, nil
}

// GetPeriod godoc
// @Summary Resolve a period
// @Description Resolves mode, year, month, anchor and an optional navigation step into a date range.
// @Tags periods
// @Produce json
// @Security BearerAuth
// @Param mode query string false "week, month or all"
// @Param year query int false "Year of the month period"
// @Param month query int false "Month of the month period, 1-12"
// @Param anchor query string false "Any day of the week period, YYYY-MM-DD"
// @Param direction query string false "back, forward or today"
// @Success 200 {object} PeriodResponse
// @Failure 400 {object} ProblemDetails
// @Router /periods [get]
func (h *PeriodHandler) GetPeriod(c echo.Context) error {
	selector, fieldErr := parsePeriodSelector(c, h.now())
	if fieldErr != nil {
		return NewValidationError(c, "Invalid period", []ValidationError{*fieldErr})
	}
	return c.JSON(http.StatusOK, toPeriodResponse(selector))
}
