package services

import (
	"context"
	"fmt"

	"forest/internal/core"
	"forest/internal/log"
	"forest/internal/storage"
)

// BudgetService manages budgets and computes their spending status.
type BudgetService struct {
	storage *storage.SQLiteRepository
	logger  *log.Logger
}

func NewBudgetService(repo *storage.SQLiteRepository, logger *log.Logger) *BudgetService {
	return &BudgetService{
		storage: repo,
		logger:  logger.WithComponent(log.ComponentBudget),
	}
}

func (s *BudgetService) CreateBudget(ctx context.Context, b core.Budget) (*core.Budget, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.CategoryID != nil {
		if _, err := s.storage.GetCategory(ctx, *b.CategoryID); err != nil {
			return nil, err
		}
	}

	created, err := s.storage.CreateBudget(ctx, b)
	if err != nil {
		return nil, fmt.Errorf("save budget: %w", err)
	}

	s.logger.InfoContext(ctx, "budget created",
		log.FieldUserID, created.UserID,
		log.FieldBudgetID, created.ID,
		log.FieldOperation, log.OpCreate)

	return created, nil
}

func (s *BudgetService) GetBudget(ctx context.Context, userID, id int64) (*core.Budget, error) {
	return s.storage.GetBudget(ctx, userID, id)
}

func (s *BudgetService) ListBudgets(ctx context.Context, userID int64, activeOnly bool) ([]core.Budget, error) {
	return s.storage.ListBudgets(ctx, userID, activeOnly)
}

func (s *BudgetService) UpdateBudget(ctx context.Context, b core.Budget) (*core.Budget, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.CategoryID != nil {
		if _, err := s.storage.GetCategory(ctx, *b.CategoryID); err != nil {
			return nil, err
		}
	}
	return s.storage.UpdateBudget(ctx, b)
}

func (s *BudgetService) DeleteBudget(ctx context.Context, userID, id int64) error {
	if err := s.storage.DeleteBudget(ctx, userID, id); err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "budget deleted",
		log.FieldUserID, userID,
		log.FieldBudgetID, id,
		log.FieldOperation, log.OpDelete)

	return nil
}

// BudgetKPI computes the spending status of one budget: expenses in the
// budget's window, restricted to its category when it has one.
func (s *BudgetService) BudgetKPI(ctx context.Context, userID, id int64) (*core.BudgetKPI, error) {
	b, err := s.storage.GetBudget(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return s.computeKPI(ctx, *b)
}

// AllBudgetKPIs computes the status of every active budget.
func (s *BudgetService) AllBudgetKPIs(ctx context.Context, userID int64) ([]core.BudgetKPI, error) {
	budgets, err := s.storage.ListBudgets(ctx, userID, true)
	if err != nil {
		return nil, err
	}

	kpis := make([]core.BudgetKPI, 0, len(budgets))
	for _, b := range budgets {
		kpi, err := s.computeKPI(ctx, b)
		if err != nil {
			return nil, err
		}
		kpis = append(kpis, *kpi)
	}
	return kpis, nil
}

func (s *BudgetService) computeKPI(ctx context.Context, b core.Budget) (*core.BudgetKPI, error) {
	spent, err := s.storage.SumExpenses(ctx, b.UserID, b.CategoryID, b.StartDate, b.EndDate)
	if err != nil {
		return nil, fmt.Errorf("sum expenses for budget %d: %w", b.ID, err)
	}

	kpi := core.ComputeBudgetKPI(b, spent)
	return &kpi, nil
}
