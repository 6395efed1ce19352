package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/google/uuid"

	"github.com/jayPrakash10/expense-backend/internal/domain"
)

// ============================================================
// Categories + subcategories store
// ============================================================

func (c *Client) CreateCategory(ctx context.Context, cat *domain.Category) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateCategory")
	defer span.End()

	id := cat.ID
	if id == "" {
		id = uuid.New().String()
	}
	data := map[string]any{
		"id":      id,
		"user_id": cat.UserID,
		"name":    cat.Name,
		"color":   cat.Color,
	}

	body, err := c.doPost(ctx, "categories", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.Category
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if len(rows) == 0 {
		return cat, nil
	}
	return &rows[0], nil
}

func (c *Client) GetCategory(ctx context.Context, userID, categoryID string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCategory")
	defer span.End()

	path := fmt.Sprintf("categories?id=eq.%s&user_id=eq.%s&limit=1", url.QueryEscape(categoryID), url.QueryEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Category
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	return &rows[0], nil
}

func (c *Client) GetCategoryByName(ctx context.Context, userID, name string) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetCategoryByName")
	defer span.End()

	path := fmt.Sprintf("categories?user_id=eq.%s&name=eq.%s&limit=1", url.QueryEscape(userID), url.QueryEscape(name))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Category
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "category", ID: name}
	}
	return &rows[0], nil
}

func (c *Client) ListCategories(ctx context.Context, userID string) ([]domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListCategories")
	defer span.End()

	path := fmt.Sprintf("categories?user_id=eq.%s&order=name.asc", url.QueryEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Category
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	return rows, nil
}

func (c *Client) UpdateCategory(ctx context.Context, userID, categoryID string, updates map[string]any) (*domain.Category, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateCategory")
	defer span.End()

	path := fmt.Sprintf("categories?id=eq.%s&user_id=eq.%s", url.QueryEscape(categoryID), url.QueryEscape(userID))
	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []domain.Category
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode categories: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "category", ID: categoryID}
	}
	return &rows[0], nil
}

func (c *Client) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteCategory")
	defer span.End()

	path := fmt.Sprintf("categories?id=eq.%s&user_id=eq.%s", url.QueryEscape(categoryID), url.QueryEscape(userID))
	return c.doDelete(ctx, path)
}

func (c *Client) CreateSubcategory(ctx context.Context, sub *domain.Subcategory) (*domain.Subcategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateSubcategory")
	defer span.End()

	id := sub.ID
	if id == "" {
		id = uuid.New().String()
	}
	data := map[string]any{
		"id":          id,
		"category_id": sub.CategoryID,
		"user_id":     sub.UserID,
		"name":        sub.Name,
		"icon":        sub.Icon,
	}

	body, err := c.doPost(ctx, "subcategories", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.Subcategory
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode subcategories: %w", err)
	}
	if len(rows) == 0 {
		return sub, nil
	}
	return &rows[0], nil
}

func (c *Client) GetSubcategory(ctx context.Context, userID, subcategoryID string) (*domain.Subcategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetSubcategory")
	defer span.End()

	path := fmt.Sprintf("subcategories?id=eq.%s&user_id=eq.%s&limit=1", url.QueryEscape(subcategoryID), url.QueryEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Subcategory
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode subcategories: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "subcategory", ID: subcategoryID}
	}
	return &rows[0], nil
}

func (c *Client) GetSubcategoryByName(ctx context.Context, categoryID, name string) (*domain.Subcategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetSubcategoryByName")
	defer span.End()

	path := fmt.Sprintf("subcategories?category_id=eq.%s&name=eq.%s&limit=1", url.QueryEscape(categoryID), url.QueryEscape(name))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Subcategory
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode subcategories: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "subcategory", ID: name}
	}
	return &rows[0], nil
}

func (c *Client) ListSubcategories(ctx context.Context, userID string) ([]domain.Subcategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListSubcategories")
	defer span.End()

	path := fmt.Sprintf("subcategories?user_id=eq.%s&order=name.asc", url.QueryEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Subcategory
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode subcategories: %w", err)
	}
	return rows, nil
}

func (c *Client) ListSubcategoriesByCategory(ctx context.Context, userID, categoryID string) ([]domain.Subcategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.ListSubcategoriesByCategory")
	defer span.End()

	path := fmt.Sprintf("subcategories?user_id=eq.%s&category_id=eq.%s&order=name.asc", url.QueryEscape(userID), url.QueryEscape(categoryID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.Subcategory
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode subcategories: %w", err)
	}
	return rows, nil
}

func (c *Client) UpdateSubcategory(ctx context.Context, userID, subcategoryID string, updates map[string]any) (*domain.Subcategory, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateSubcategory")
	defer span.End()

	path := fmt.Sprintf("subcategories?id=eq.%s&user_id=eq.%s", url.QueryEscape(subcategoryID), url.QueryEscape(userID))
	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []domain.Subcategory
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode subcategories: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "subcategory", ID: subcategoryID}
	}
	return &rows[0], nil
}

func (c *Client) DeleteSubcategory(ctx context.Context, userID, subcategoryID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteSubcategory")
	defer span.End()

	path := fmt.Sprintf("subcategories?id=eq.%s&user_id=eq.%s", url.QueryEscape(subcategoryID), url.QueryEscape(userID))
	return c.doDelete(ctx, path)
}

func (c *Client) DeleteSubcategoriesByCategory(ctx context.Context, userID, categoryID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteSubcategoriesByCategory")
	defer span.End()

	path := fmt.Sprintf("subcategories?category_id=eq.%s&user_id=eq.%s", url.QueryEscape(categoryID), url.QueryEscape(userID))
	return c.doDelete(ctx, path)
}
