package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
)

// ============================================================
// Planning — budgets, savings goals, payables, recurring
// ============================================================

type budgetRow struct {
	ID         string  `json:"id,omitempty"`
	TenantID   string  `json:"tenant_id"`
	CategoryID string  `json:"category_id"`
	Amount     float64 `json:"amount"`
	Month      string  `json:"month"`
}

func (c *Client) ListBudgets(ctx context.Context, tenantID, month string) ([]domain.Budget, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListBudgets")
	defer span.End()

	var budgets []domain.Budget
	err := c.execute(ctx, "budgets", func() error {
		path := fmt.Sprintf("budgets?tenant_id=eq.%s&month=eq.%s", tenantID, month)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []budgetRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode budgets: %w", err)
			}
		}
		budgets = make([]domain.Budget, 0, len(rows))
		for _, r := range rows {
			budgets = append(budgets, domain.Budget{
				ID:         r.ID,
				TenantID:   r.TenantID,
				CategoryID: r.CategoryID,
				Amount:     r.Amount,
				Month:      r.Month,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return budgets, nil
}

type goalRow struct {
	ID            string  `json:"id,omitempty"`
	TenantID      string  `json:"tenant_id"`
	Name          string  `json:"name"`
	TargetAmount  float64 `json:"target_amount"`
	CurrentAmount float64 `json:"current_amount"`
	Deadline      *string `json:"deadline"`
}

func (r goalRow) toDomain() domain.SavingsGoal {
	goal := domain.SavingsGoal{
		ID:            r.ID,
		TenantID:      r.TenantID,
		Name:          r.Name,
		TargetAmount:  r.TargetAmount,
		CurrentAmount: r.CurrentAmount,
	}
	if r.Deadline != nil {
		if d, err := time.Parse("2006-01-02", *r.Deadline); err == nil {
			goal.Deadline = &d
		}
	}
	return goal
}

func (c *Client) ListSavingsGoals(ctx context.Context, tenantID string) ([]domain.SavingsGoal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListSavingsGoals")
	defer span.End()

	var goals []domain.SavingsGoal
	err := c.execute(ctx, "savings_goals", func() error {
		path := fmt.Sprintf("savings_goals?tenant_id=eq.%s&order=created_at.asc", tenantID)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []goalRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode savings goals: %w", err)
			}
		}
		goals = make([]domain.SavingsGoal, 0, len(rows))
		for _, r := range rows {
			goals = append(goals, r.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goals, nil
}

func (c *Client) FindSavingsGoalByName(ctx context.Context, tenantID, name string) (*domain.SavingsGoal, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindSavingsGoalByName")
	defer span.End()

	var goal *domain.SavingsGoal
	err := c.execute(ctx, "savings_goals", func() error {
		path := fmt.Sprintf("savings_goals?tenant_id=eq.%s&name=ilike.%s&limit=1",
			tenantID, url.QueryEscape(name))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []goalRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode savings goal: %w", err)
			}
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "savings_goal", ID: name}
		}
		g := rows[0].toDomain()
		goal = &g
		return nil
	})
	if err != nil {
		return nil, err
	}
	return goal, nil
}

type payableRow struct {
	ID          string  `json:"id,omitempty"`
	TenantID    string  `json:"tenant_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	DueDate     string  `json:"due_date"`
	Paid        bool    `json:"paid"`
}

func (r payableRow) toDomain() domain.Payable {
	due, _ := time.Parse("2006-01-02", r.DueDate)
	return domain.Payable{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Description: r.Description,
		Amount:      r.Amount,
		DueDate:     due,
		Paid:        r.Paid,
	}
}

func (c *Client) ListPayables(ctx context.Context, tenantID string, unpaidOnly bool, until time.Time) ([]domain.Payable, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListPayables")
	defer span.End()

	var payables []domain.Payable
	err := c.execute(ctx, "payables", func() error {
		path := fmt.Sprintf("payables?tenant_id=eq.%s&order=due_date.asc", tenantID)
		if unpaidOnly {
			path += "&paid=eq.false"
		}
		if !until.IsZero() {
			path += "&due_date=lte." + until.Format("2006-01-02")
		}
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []payableRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode payables: %w", err)
			}
		}
		payables = make([]domain.Payable, 0, len(rows))
		for _, r := range rows {
			payables = append(payables, r.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payables, nil
}

func (c *Client) CreatePayable(ctx context.Context, payable *domain.Payable) (*domain.Payable, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreatePayable")
	defer span.End()

	var created *domain.Payable
	err := c.execute(ctx, "payables", func() error {
		body, err := c.doPost(ctx, "payables", payableRow{
			TenantID:    payable.TenantID,
			Description: payable.Description,
			Amount:      payable.Amount,
			DueDate:     payable.DueDate.Format("2006-01-02"),
			Paid:        payable.Paid,
		})
		if err != nil {
			return err
		}

		var rows []payableRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode created payable: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("create payable: empty representation")
		}
		p := rows[0].toDomain()
		created = &p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

type recurringRow struct {
	ID       string  `json:"id,omitempty"`
	TenantID string  `json:"tenant_id"`
	Type     string  `json:"type"`
	Amount   float64 `json:"amount"`
	Active   bool    `json:"active"`
}

func (c *Client) ListRecurring(ctx context.Context, tenantID string, activeOnly bool) ([]domain.Recurring, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListRecurring")
	defer span.End()

	var recurring []domain.Recurring
	err := c.execute(ctx, "recurring_transactions", func() error {
		path := fmt.Sprintf("recurring_transactions?tenant_id=eq.%s", tenantID)
		if activeOnly {
			path += "&active=eq.true"
		}
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []recurringRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode recurring: %w", err)
			}
		}
		recurring = make([]domain.Recurring, 0, len(rows))
		for _, r := range rows {
			recurring = append(recurring, domain.Recurring{
				ID:       r.ID,
				TenantID: r.TenantID,
				Type:     r.Type,
				Amount:   r.Amount,
				Active:   r.Active,
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recurring, nil
}
