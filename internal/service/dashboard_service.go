package service

import (
	"context"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// DashboardService assembles the aggregate views of one period
type DashboardService struct {
	transactionRepo domain.TransactionRepository
	projectRepo     domain.ProjectRepository
	categoryRepo    domain.CategoryRepository
	now             func() time.Time
}

// NewDashboardService creates a new DashboardService
func NewDashboardService(
	transactionRepo domain.TransactionRepository,
	projectRepo domain.ProjectRepository,
	categoryRepo domain.CategoryRepository,
) *DashboardService {
	return &DashboardService{
		transactionRepo: transactionRepo,
		projectRepo:     projectRepo,
		categoryRepo:    categoryRepo,
		now:             time.Now,
	}
}

// SetClock replaces the clock used to decide what is past and what is forecast
func (s *DashboardService) SetClock(now func() time.Time) {
	s.now = now
}

type DashboardOptions struct {
	// ExcludeUnassigned drops the no-project bucket from the per-project view
	ExcludeUnassigned bool
}

// GetDashboard loads every transaction of the company and computes the views for the
// selected period. Totals, per-project, monthly and per-category views use the rows inside
// the period; the forecast uses every row dated after today.
func (s *DashboardService) GetDashboard(ctx context.Context, companyID uuid.UUID, selector domain.PeriodSelector, opts DashboardOptions) (*domain.Dashboard, error) {
	var (
		txs        []*domain.Transaction
		projects   []*domain.Project
		categories []*domain.Category
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		txs, err = s.transactionRepo.GetAllByCompany(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		projects, err = s.projectRepo.GetAllByCompany(gctx, companyID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categoryRepo.GetAllByCompany(gctx, companyID, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	labelRows(txs, projects, categories)

	period := selector.Range()
	inPeriod := make([]*domain.Transaction, 0, len(txs))
	for _, t := range txs {
		if period.Contains(t.Date) {
			inPeriod = append(inPeriod, t)
		}
	}

	today := s.now()
	byProject := CalculateProfitByProject(inPeriod)
	if opts.ExcludeUnassigned {
		byProject = WithoutUnassigned(byProject)
	}

	return &domain.Dashboard{
		Period:            period,
		Totals:            CalculateTotals(inPeriod, today),
		ProfitByProject:   byProject,
		MonthlyData:       CalculateMonthlyData(inPeriod),
		ExpenseByCategory: CalculateExpenseByCategory(inPeriod),
		Forecast:          CalculateForecast(txs, today),
		EmptyState: domain.EmptyState{
			HasTransactions:         len(txs) > 0,
			HasTransactionsInPeriod: len(inPeriod) > 0,
		},
	}, nil
}

// labelRows fills project and category names the query did not join
func labelRows(txs []*domain.Transaction, projects []*domain.Project, categories []*domain.Category) {
	projectNames := make(map[uuid.UUID]string, len(projects))
	for _, p := range projects {
		projectNames[p.ID] = p.Name
	}
	categoryNames := make(map[uuid.UUID]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}

	for _, t := range txs {
		if t.ProjectID != nil && t.ProjectName == nil {
			if name, ok := projectNames[*t.ProjectID]; ok {
				t.ProjectName = &name
			}
		}
		if t.CategoryName == nil {
			if name, ok := categoryNames[t.CategoryID]; ok {
				t.CategoryName = &name
			}
		}
	}
}
