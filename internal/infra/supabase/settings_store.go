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
// User settings store
// ============================================================

func (c *Client) GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetSettings")
	defer span.End()

	path := fmt.Sprintf("user_settings?user_id=eq.%s&limit=1", url.QueryEscape(userID))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []domain.UserSettings
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode user_settings: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "settings", ID: userID}
	}
	return &rows[0], nil
}

func (c *Client) CreateSettings(ctx context.Context, settings *domain.UserSettings) (*domain.UserSettings, error) {
	ctx, span := tracer.Start(ctx, "Supabase.CreateSettings")
	defer span.End()

	id := settings.ID
	if id == "" {
		id = uuid.New().String()
	}
	data := map[string]any{
		"id":             id,
		"user_id":        settings.UserID,
		"currency":       string(settings.Currency),
		"language":       settings.Language,
		"current_income": settings.CurrentIncome,
		"quick_add":      settings.QuickAdd,
	}

	body, err := c.doPost(ctx, "user_settings", data)
	if err != nil {
		return nil, err
	}

	var rows []domain.UserSettings
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode user_settings: %w", err)
	}
	if len(rows) == 0 {
		return settings, nil
	}
	return &rows[0], nil
}

func (c *Client) UpdateSettings(ctx context.Context, userID string, updates map[string]any) (*domain.UserSettings, error) {
	ctx, span := tracer.Start(ctx, "Supabase.UpdateSettings")
	defer span.End()

	path := fmt.Sprintf("user_settings?user_id=eq.%s", url.QueryEscape(userID))
	body, err := c.doPatch(ctx, path, updates)
	if err != nil {
		return nil, err
	}

	var rows []domain.UserSettings
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode user_settings: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrNotFound{Resource: "settings", ID: userID}
	}
	return &rows[0], nil
}
