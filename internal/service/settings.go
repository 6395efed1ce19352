package service

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/port"
)

var settingsTracer = otel.Tracer("service/settings")

var supportedLanguages = map[string]bool{
	"en": true,
	"hi": true,
	"es": true,
	"fr": true,
	"de": true,
}

// SettingsService handles user profile and settings updates. It owns cache
// invalidation for the settings entries the expense service reads through.
type SettingsService struct {
	users         port.UserStore
	settings      port.SettingsStore
	settingsCache port.Cache[*domain.UserSettings]
	logger        *zap.Logger
}

// NewSettingsService creates a new settings service.
func NewSettingsService(users port.UserStore, settings port.SettingsStore,
	settingsCache port.Cache[*domain.UserSettings], logger *zap.Logger) *SettingsService {
	return &SettingsService{users: users, settings: settings, settingsCache: settingsCache, logger: logger}
}

func (s *SettingsService) GetUser(ctx context.Context, userID string) (*domain.User, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.GetUser")
	defer span.End()

	return s.users.GetUserByID(ctx, userID)
}

func (s *SettingsService) UpdateUser(ctx context.Context, userID string, req *domain.UpdateUserRequest) (*domain.User, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.UpdateUser")
	defer span.End()

	updates := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, &domain.ErrValidation{Field: "name", Message: "name must not be empty"}
		}
		updates["name"] = *req.Name
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.ProfileImg != nil {
		updates["profile_img"] = *req.ProfileImg
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	return s.users.UpdateUser(ctx, userID, updates)
}

func (s *SettingsService) GetSettings(ctx context.Context, userID string) (*domain.UserSettings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.GetSettings")
	defer span.End()

	return s.settings.GetSettings(ctx, userID)
}

func (s *SettingsService) UpdateSettings(ctx context.Context, userID string, req *domain.UpdateSettingsRequest) (*domain.UserSettings, error) {
	ctx, span := settingsTracer.Start(ctx, "SettingsService.UpdateSettings")
	defer span.End()

	updates := map[string]any{}
	if req.Currency != nil {
		if !domain.IsSupportedCurrency(*req.Currency) {
			return nil, &domain.ErrUnsupportedCurrency{Code: *req.Currency}
		}
		updates["currency"] = string(*req.Currency)
	}
	if req.Language != nil {
		if !supportedLanguages[*req.Language] {
			return nil, &domain.ErrValidation{Field: "language", Message: "unsupported language"}
		}
		updates["language"] = *req.Language
	}
	if req.CurrentIncome != nil {
		if *req.CurrentIncome < 0 {
			return nil, &domain.ErrValidation{Field: "currentIncome", Message: "income must not be negative"}
		}
		updates["current_income"] = *req.CurrentIncome
	}
	if req.QuickAdd != nil {
		updates["quick_add"] = *req.QuickAdd
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	settings, err := s.settings.UpdateSettings(ctx, userID, updates)
	if err != nil {
		return nil, err
	}

	// The expense views read settings through the cache; drop the stale entry.
	s.settingsCache.Delete(settingsCachePrefix + userID)

	s.logger.Info("settings updated", zap.String("user_id", userID))
	return settings, nil
}
