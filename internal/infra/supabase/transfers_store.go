package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/granaflow/grana-assistant-go/internal/domain"
)

// ============================================================
// Transfers
// ============================================================

type transferRow struct {
	ID            string  `json:"id,omitempty"`
	TenantID      string  `json:"tenant_id"`
	Amount        float64 `json:"amount"`
	FromAccountID string  `json:"from_account_id"`
	ToAccountID   string  `json:"to_account_id"`
	Date          string  `json:"date"`
}

func (r transferRow) toDomain() domain.Transfer {
	date, _ := time.Parse("2006-01-02", r.Date)
	if date.IsZero() {
		date, _ = time.Parse(time.RFC3339, r.Date)
	}
	return domain.Transfer{
		ID:            r.ID,
		TenantID:      r.TenantID,
		Amount:        r.Amount,
		FromAccountID: r.FromAccountID,
		ToAccountID:   r.ToAccountID,
		Date:          date,
	}
}

func (c *Client) CreateTransfer(ctx context.Context, transfer *domain.Transfer) (*domain.Transfer, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateTransfer")
	defer span.End()

	var created *domain.Transfer
	err := c.execute(ctx, "transfers", func() error {
		body, err := c.doPost(ctx, "transfers", transferRow{
			TenantID:      transfer.TenantID,
			Amount:        transfer.Amount,
			FromAccountID: transfer.FromAccountID,
			ToAccountID:   transfer.ToAccountID,
			Date:          transfer.Date.Format("2006-01-02"),
		})
		if err != nil {
			return err
		}

		var rows []transferRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode created transfer: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("create transfer: empty representation")
		}
		t := rows[0].toDomain()
		created = &t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// SumTransfers totals transfer amounts into (incoming) or out of an
// account. Balances are always derived from movements, never stored.
func (c *Client) SumTransfers(ctx context.Context, tenantID, accountID string, incoming bool) (float64, error) {
	ctx, span := tracer.Start(ctx, "Supabase.SumTransfers")
	defer span.End()

	column := "from_account_id"
	if incoming {
		column = "to_account_id"
	}

	var total float64
	err := c.execute(ctx, "transfers", func() error {
		path := fmt.Sprintf("transfers?tenant_id=eq.%s&%s=eq.%s&select=amount",
			tenantID, column, accountID)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []struct {
			Amount float64 `json:"amount"`
		}
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode transfer amounts: %w", err)
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
