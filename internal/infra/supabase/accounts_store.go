package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/granaflow/grana-assistant-go/internal/domain"
)

// ============================================================
// Accounts — CRUD via PostgREST
// ============================================================

// accountRow maps the accounts table columns.
type accountRow struct {
	ID       string `json:"id,omitempty"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	Currency string `json:"currency"`
}

func (r accountRow) toDomain() domain.Account {
	return domain.Account{
		ID:       r.ID,
		TenantID: r.TenantID,
		Name:     r.Name,
		Type:     r.Type,
		Currency: r.Currency,
	}
}

func (c *Client) ListAccounts(ctx context.Context, tenantID string) ([]domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListAccounts")
	defer span.End()

	var accounts []domain.Account
	err := c.execute(ctx, "accounts", func() error {
		path := fmt.Sprintf("accounts?tenant_id=eq.%s&order=created_at.asc", tenantID)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []accountRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode accounts: %w", err)
			}
		}
		accounts = make([]domain.Account, 0, len(rows))
		for _, r := range rows {
			accounts = append(accounts, r.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return accounts, nil
}

// FindAccountByName matches case-insensitively via ilike; the name comes
// from free text, so exact casing is never guaranteed.
func (c *Client) FindAccountByName(ctx context.Context, tenantID, name string) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindAccountByName")
	defer span.End()

	var account *domain.Account
	err := c.execute(ctx, "accounts", func() error {
		path := fmt.Sprintf("accounts?tenant_id=eq.%s&name=ilike.%s&limit=1",
			tenantID, url.QueryEscape(name))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []accountRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode account: %w", err)
			}
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "account", ID: name}
		}
		a := rows[0].toDomain()
		account = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

func (c *Client) CreateAccount(ctx context.Context, account *domain.Account) (*domain.Account, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateAccount")
	defer span.End()

	var created *domain.Account
	err := c.execute(ctx, "accounts", func() error {
		body, err := c.doPost(ctx, "accounts", accountRow{
			TenantID: account.TenantID,
			Name:     account.Name,
			Type:     account.Type,
			Currency: account.Currency,
		})
		if err != nil {
			return err
		}

		var rows []accountRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode created account: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("create account: empty representation")
		}
		a := rows[0].toDomain()
		created = &a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
