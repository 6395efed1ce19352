package supabase

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/jayPrakash10/expense-backend/internal/domain"
)

// ============================================================
// OTP store
// ============================================================

type otpRow struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	CodeHash  string `json:"code_hash"`
	ExpiresAt string `json:"expires_at"`
	Used      bool   `json:"used"`
	CreatedAt string `json:"created_at"`
}

func (r otpRow) toDomain() domain.OTP {
	return domain.OTP{
		ID:        r.ID,
		Email:     r.Email,
		CodeHash:  r.CodeHash,
		ExpiresAt: parseDate(r.ExpiresAt),
		Used:      r.Used,
		CreatedAt: parseDate(r.CreatedAt),
	}
}

func (c *Client) DeleteOTPs(ctx context.Context, email string) error {
	ctx, span := tracer.Start(ctx, "Supabase.DeleteOTPs")
	defer span.End()

	path := fmt.Sprintf("otps?email=eq.%s", url.QueryEscape(email))
	return c.doDelete(ctx, path)
}

func (c *Client) StoreOTP(ctx context.Context, otp *domain.OTP) error {
	ctx, span := tracer.Start(ctx, "Supabase.StoreOTP")
	defer span.End()

	id := otp.ID
	if id == "" {
		id = uuid.New().String()
	}
	data := map[string]any{
		"id":         id,
		"email":      otp.Email,
		"code_hash":  otp.CodeHash,
		"expires_at": otp.ExpiresAt.Format(time.RFC3339),
		"used":       false,
	}

	_, err := c.doPost(ctx, "otps", data)
	return err
}

func (c *Client) GetActiveOTP(ctx context.Context, email string) (*domain.OTP, error) {
	ctx, span := tracer.Start(ctx, "Supabase.GetActiveOTP")
	defer span.End()

	now := time.Now().UTC().Format(time.RFC3339)
	path := fmt.Sprintf("otps?email=eq.%s&used=eq.false&expires_at=gt.%s&order=created_at.desc&limit=1",
		url.QueryEscape(email), url.QueryEscape(now))
	body, err := c.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var rows []otpRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode otps: %w", err)
	}
	if len(rows) == 0 {
		return nil, &domain.ErrInvalidCode{}
	}
	out := rows[0].toDomain()
	return &out, nil
}

func (c *Client) MarkOTPUsed(ctx context.Context, otpID string) error {
	ctx, span := tracer.Start(ctx, "Supabase.MarkOTPUsed")
	defer span.End()

	path := fmt.Sprintf("otps?id=eq.%s", url.QueryEscape(otpID))
	_, err := c.doPatch(ctx, path, map[string]any{"used": true})
	return err
}
