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
// Categories
// ============================================================

type categoryRow struct {
	ID       string `json:"id,omitempty"`
	TenantID string `json:"tenant_id"`
	Name     string `json:"name"`
	Type     string `json:"type"`
}

func (r categoryRow) toDomain() domain.Category {
	return domain.Category{
		ID:       r.ID,
		TenantID: r.TenantID,
		Name:     r.Name,
		Type:     r.Type,
	}
}

func (c *Client) ListCategories(ctx context.Context, tenantID string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	var categories []domain.Category
	err := c.execute(ctx, "categories", func() error {
		path := fmt.Sprintf("categories?tenant_id=eq.%s&order=name.asc", tenantID)
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []categoryRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode categories: %w", err)
			}
		}
		categories = make([]domain.Category, 0, len(rows))
		for _, r := range rows {
			categories = append(categories, r.toDomain())
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (c *Client) FindCategoryByName(ctx context.Context, tenantID, name string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.FindCategoryByName")
	defer span.End()

	var category *domain.Category
	err := c.execute(ctx, "categories", func() error {
		path := fmt.Sprintf("categories?tenant_id=eq.%s&name=ilike.%s&limit=1",
			tenantID, url.QueryEscape(name))
		body, err := c.doRequest(ctx, http.MethodGet, path)
		if err != nil {
			return err
		}

		var rows []categoryRow
		if body != nil {
			if err := json.Unmarshal(body, &rows); err != nil {
				return fmt.Errorf("decode category: %w", err)
			}
		}
		if len(rows) == 0 {
			return &domain.ErrNotFound{Resource: "category", ID: name}
		}
		cat := rows[0].toDomain()
		category = &cat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (c *Client) CreateCategory(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCategory")
	defer span.End()

	var created *domain.Category
	err := c.execute(ctx, "categories", func() error {
		body, err := c.doPost(ctx, "categories", categoryRow{
			TenantID: category.TenantID,
			Name:     category.Name,
			Type:     category.Type,
		})
		if err != nil {
			return err
		}

		var rows []categoryRow
		if err := json.Unmarshal(body, &rows); err != nil {
			return fmt.Errorf("decode created category: %w", err)
		}
		if len(rows) == 0 {
			return fmt.Errorf("create category: empty representation")
		}
		cat := rows[0].toDomain()
		created = &cat
		return nil
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}
