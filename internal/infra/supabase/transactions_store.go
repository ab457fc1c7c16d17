package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
)

// ============================================================
// Transactions
// ============================================================

type transactionRow struct {
	ID          string  `json:"id,omitempty"`
	TenantID    string  `json:"tenant_id"`
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
	Type        string  `json:"type"`
	Date        string  `json:"date"`
	AccountID   string  `json:"account_id"`
	CategoryID  string  `json:"category_id"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

func transactionToRow(tx domain.Transaction) transactionRow {
	return transactionRow{
		TenantID:    tx.TenantID,
		Description: tx.Description,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Date:        tx.Date.Format("2006-01-02"),
		AccountID:   tx.AccountID,
		CategoryID:  tx.CategoryID,
	}
}

func (r transactionRow) toDomain() domain.Transaction {
	date, _ := time.Parse("2006-01-02", r.Date)
	if date.IsZero() {
		date, _ = time.Parse(time.RFC3339, r.Date)
	}
	createdAt, _ := time.Parse(time.RFC3339, r.CreatedAt)
	return domain.Transaction{
		ID:          r.ID,
		TenantID:    r.TenantID,
		Description: r.Description,
		Amount:      r.Amount,
		Type:        r.Type,
		Date:        date,
		AccountID:   r.AccountID,
		CategoryID:  r.CategoryID,
		CreatedAt:   createdAt,
	}
}

// filterQuery translates a TransactionFilter into PostgREST params.
// Zero values produce no clause; From is inclusive, To exclusive.
func filterQuery(tenantID string, f domain.TransactionFilter) string {
	parts := []string{"tenant_id=eq." + tenantID}
	if f.Type != "" {
		parts = append(parts, "type=eq."+f.Type)
	}
	if f.CategoryID != "" {
		parts = append(parts, "category_id=eq."+f.CategoryID)
	}
	if f.AccountID != "" {
		parts = append(parts, "account_id=eq."+f.AccountID)
	}
	if f.MinAmount > 0 {
		parts = append(parts, fmt.Sprintf("amount=gte.%g", f.MinAmount))
	}
	if !f.From.IsZero() {
		parts = append(parts, "date=gte."+f.From.Format("2006-01-02"))
	}
	if !f.To.IsZero() {
		parts = append(parts, "date=lt."+f.To.Format("2006-01-02"))
	}
	return strings.Join(parts, "&")
}

func (c *Client) CreateTransaction(ctx context.Context, tx *domain.Transaction) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransaction")
	defer span.End()

	created, err := c.insertTransactions(ctx, []domain.Transaction{*tx})
	if err != nil {
		return nil, err
	}
	return &created[0], nil
}

// CreateTransactions inserts the whole series as one JSON array in a
// single POST. PostgREST executes multi-row inserts in one statement,
// so the batch commits or fails as a unit.
func (c *Client) CreateTransactions(ctx context.Context, txs []domain.Transaction) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransactions")
	defer span.End()

	return c.insertTransactions(ctx, txs)
}

func (c *Client) insertTransactions(ctx context.Context, txs []domain.Transaction) ([]domain.Transaction, error) {
	payload := make([]transactionRow, 0, len(txs))
	for _, tx := range txs {
		payload = append(payload, transactionToRow(tx))
	}

	var created []domain.Transaction
	err := c.execute(ctx, "transactions", func() error {
		body, err := c.doPost(ctx, "transactions", payload)
		if err != nil {
			return err
		}

		var rows []transactionRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode created transactions: %w", err)
		}
		if len(rows) != len(payload) {
			return fmt.Errorf("create transactions: expected %d rows, got %d", len(payload), len(rows))
		}
		created = make([]domain.Transaction, 0, len(rows))
		for _, r := range rows {
			created = append(created, r.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

func (c *Client) ListTransactions(ctx context.Context, tenantID string, filter domain.TransactionFilter) ([]domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListTransactions")
	defer span.End()

	var transactions []domain.Transaction
	err := c.execute(ctx, "transactions", func() error {
		path := fmt.Sprintf("transactions?%s&order=date.desc&limit=500", filterQuery(tenantID, filter))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []transactionRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode transactions: %w", err)
			}
		}
		transactions = make([]domain.Transaction, 0, len(rows))
		for _, r := range rows {
			transactions = append(transactions, r.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return transactions, nil
}

// LastInsertedTransaction orders by created_at, not by the transaction
// date, so a backdated entry registered a minute ago is still "last".
func (c *Client) LastInsertedTransaction(ctx context.Context, tenantID string) (*domain.Transaction, error) {
	ctx, span := tracer.Start(ctx, "Supabase.LastInsertedTransaction")
	defer span.End()

	var last *domain.Transaction
	err := c.execute(ctx, "transactions", func() error {
		path := fmt.Sprintf("transactions?tenant_id=eq.%s&order=created_at.desc&limit=1", tenantID)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []transactionRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode transaction: %w", err)
			}
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "transaction", ID: tenantID}
		}
		tx := rows[0].toDomain()
		last = &tx
		return nil
	})
	if err != nil {
		return nil, err
	}
	return last, nil
}

// DeleteTransaction also filters by tenant_id so an id from another
// tenant can never be deleted, even if guessed.
func (c *Client) DeleteTransaction(ctx context.Context, tenantID, transactionID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteTransaction")
	defer span.End()

	return c.execute(ctx, "transactions", func() error {
		path := fmt.Sprintf("transactions?tenant_id=eq.%s&id=eq.%s", tenantID, transactionID)
		return c.doDelete(ctx, path)
	})
}

// SumTransactions fetches only the amount column and sums locally.
func (c *Client) SumTransactions(ctx context.Context, tenantID string, filter domain.TransactionFilter) (float64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SumTransactions")
	defer span.End()

	var total float64
	err := c.execute(ctx, "transactions", func() error {
		path := fmt.Sprintf("transactions?%s&select=amount", filterQuery(tenantID, filter))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []struct {
			Amount float64 `json:"amount"`
		}
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode amounts: %w", err)
			}
		}
		total = 0
		for _, r := range rows {
			total += r.Amount
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return total, nil
}
