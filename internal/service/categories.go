package service

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/jayPrakash10/expense-backend/internal/domain"
	"github.com/jayPrakash10/expense-backend/internal/port"
)

var categoryTracer = otel.Tracer("service/categories")

// CategoryService handles categories and subcategories, including the
// cascading bulk delete and quick-add scrubbing.
type CategoryService struct {
	categories port.CategoryStore
	settings   port.SettingsStore
	logger     *zap.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(categories port.CategoryStore, settings port.SettingsStore, logger *zap.Logger) *CategoryService {
	return &CategoryService{categories: categories, settings: settings, logger: logger}
}

// ============================================================
// Categories
// ============================================================

// CreateCategoryRequest is the body for POST /v1/categories. Subcategories
// may be created inline with the category.
type CreateCategoryRequest struct {
	Name          string   `json:"name"`
	Color         string   `json:"color,omitempty"`
	Subcategories []string `json:"subcategories,omitempty"`
}

// CategoryWithSubcategories pairs a category with its subcategories.
type CategoryWithSubcategories struct {
	domain.Category
	Subcategories []domain.Subcategory `json:"subcategories"`
}

func (s *CategoryService) CreateCategory(ctx context.Context, userID string, req *CreateCategoryRequest) (*CategoryWithSubcategories, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.CreateCategory")
	defer span.End()

	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}

	// Names are unique per user.
	if _, err := s.categories.GetCategoryByName(ctx, userID, req.Name); err == nil {
		return nil, &domain.ErrConflict{Message: "category already exists"}
	}

	cat, err := s.categories.CreateCategory(ctx, &domain.Category{
		UserID: userID,
		Name:   req.Name,
		Color:  req.Color,
	})
	if err != nil {
		return nil, fmt.Errorf("create category: %w", err)
	}

	subs := make([]domain.Subcategory, 0, len(req.Subcategories))
	for _, name := range req.Subcategories {
		if name == "" {
			continue
		}
		sub, err := s.categories.CreateSubcategory(ctx, &domain.Subcategory{
			CategoryID: cat.ID,
			UserID:     userID,
			Name:       name,
		})
		if err != nil {
			return nil, fmt.Errorf("create subcategory %q: %w", name, err)
		}
		subs = append(subs, *sub)
	}

	s.logger.Info("category created",
		zap.String("user_id", userID),
		zap.String("category_id", cat.ID),
		zap.Int("subcategories", len(subs)),
	)
	return &CategoryWithSubcategories{Category: *cat, Subcategories: subs}, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, userID, categoryID string) (*CategoryWithSubcategories, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.GetCategory")
	defer span.End()

	cat, err := s.categories.GetCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	subs, err := s.categories.ListSubcategoriesByCategory(ctx, userID, categoryID)
	if err != nil {
		return nil, err
	}
	return &CategoryWithSubcategories{Category: *cat, Subcategories: subs}, nil
}

func (s *CategoryService) ListCategories(ctx context.Context, userID string) ([]CategoryWithSubcategories, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.ListCategories")
	defer span.End()

	cats, err := s.categories.ListCategories(ctx, userID)
	if err != nil {
		return nil, err
	}
	subs, err := s.categories.ListSubcategories(ctx, userID)
	if err != nil {
		return nil, err
	}

	byCategory := make(map[string][]domain.Subcategory)
	for _, sub := range subs {
		byCategory[sub.CategoryID] = append(byCategory[sub.CategoryID], sub)
	}

	out := make([]CategoryWithSubcategories, 0, len(cats))
	for _, cat := range cats {
		group := byCategory[cat.ID]
		if group == nil {
			group = []domain.Subcategory{}
		}
		out = append(out, CategoryWithSubcategories{Category: cat, Subcategories: group})
	}
	return out, nil
}

// UpdateCategoryRequest is the body for PATCH /v1/categories/{id}.
type UpdateCategoryRequest struct {
	Name  *string `json:"name,omitempty"`
	Color *string `json:"color,omitempty"`
}

func (s *CategoryService) UpdateCategory(ctx context.Context, userID, categoryID string, req *UpdateCategoryRequest) (*domain.Category, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.UpdateCategory")
	defer span.End()

	updates := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, &domain.ErrValidation{Field: "name", Message: "name must not be empty"}
		}
		if existing, err := s.categories.GetCategoryByName(ctx, userID, *req.Name); err == nil && existing.ID != categoryID {
			return nil, &domain.ErrConflict{Message: "category already exists"}
		}
		updates["name"] = *req.Name
	}
	if req.Color != nil {
		updates["color"] = *req.Color
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	return s.categories.UpdateCategory(ctx, userID, categoryID, updates)
}

// DeleteCategory removes a single category with the same cascade as the
// bulk variant.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID, categoryID string) error {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.DeleteCategory")
	defer span.End()

	return s.deleteCategoryCascade(ctx, userID, categoryID)
}

// DeleteCategories removes several categories at once. Each category's
// subcategories are deleted first and any quick-add references to them are
// scrubbed from the user's settings.
func (s *CategoryService) DeleteCategories(ctx context.Context, userID string, categoryIDs []string) (int, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.DeleteCategories")
	defer span.End()

	if len(categoryIDs) == 0 {
		return 0, &domain.ErrValidation{Field: "ids", Message: "at least one id is required"}
	}

	deleted := 0
	for _, id := range categoryIDs {
		if err := s.deleteCategoryCascade(ctx, userID, id); err != nil {
			var notFound *domain.ErrNotFound
			if errors.As(err, &notFound) {
				continue
			}
			return deleted, err
		}
		deleted++
	}
	return deleted, nil
}

func (s *CategoryService) deleteCategoryCascade(ctx context.Context, userID, categoryID string) error {
	if _, err := s.categories.GetCategory(ctx, userID, categoryID); err != nil {
		return err
	}

	subs, err := s.categories.ListSubcategoriesByCategory(ctx, userID, categoryID)
	if err != nil {
		return err
	}

	subIDs := make([]string, 0, len(subs))
	for _, sub := range subs {
		subIDs = append(subIDs, sub.ID)
	}
	s.scrubQuickAdd(ctx, userID, subIDs)

	if err := s.categories.DeleteSubcategoriesByCategory(ctx, userID, categoryID); err != nil {
		return fmt.Errorf("delete subcategories: %w", err)
	}
	if err := s.categories.DeleteCategory(ctx, userID, categoryID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}

	s.logger.Info("category deleted",
		zap.String("user_id", userID),
		zap.String("category_id", categoryID),
		zap.Int("subcategories", len(subs)),
	)
	return nil
}

// scrubQuickAdd removes subcategory references from the user's quick-add
// list. Failures are logged, not returned: a stale quick-add entry must not
// abort a delete.
func (s *CategoryService) scrubQuickAdd(ctx context.Context, userID string, subcategoryIDs []string) {
	if len(subcategoryIDs) == 0 {
		return
	}

	settings, err := s.settings.GetSettings(ctx, userID)
	if err != nil {
		s.logger.Warn("quick-add scrub: settings lookup failed", zap.String("user_id", userID), zap.Error(err))
		return
	}

	remove := make(map[string]bool, len(subcategoryIDs))
	for _, id := range subcategoryIDs {
		remove[id] = true
	}

	kept := make([]string, 0, len(settings.QuickAdd))
	for _, id := range settings.QuickAdd {
		if !remove[id] {
			kept = append(kept, id)
		}
	}
	if len(kept) == len(settings.QuickAdd) {
		return
	}

	if _, err := s.settings.UpdateSettings(ctx, userID, map[string]any{"quick_add": kept}); err != nil {
		s.logger.Warn("quick-add scrub: update failed", zap.String("user_id", userID), zap.Error(err))
	}
}

// ============================================================
// Subcategories
// ============================================================

// CreateSubcategoryRequest is the body for POST /v1/subcategories.
type CreateSubcategoryRequest struct {
	CategoryID string `json:"categoryId"`
	Name       string `json:"name"`
	Icon       string `json:"icon,omitempty"`
}

func (s *CategoryService) CreateSubcategory(ctx context.Context, userID string, req *CreateSubcategoryRequest) (*domain.Subcategory, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.CreateSubcategory")
	defer span.End()

	if req.CategoryID == "" {
		return nil, &domain.ErrValidation{Field: "categoryId", Message: "category is required"}
	}
	if req.Name == "" {
		return nil, &domain.ErrValidation{Field: "name", Message: "name is required"}
	}

	if _, err := s.categories.GetCategory(ctx, userID, req.CategoryID); err != nil {
		return nil, err
	}

	// Names are unique per category.
	if _, err := s.categories.GetSubcategoryByName(ctx, req.CategoryID, req.Name); err == nil {
		return nil, &domain.ErrConflict{Message: "subcategory already exists"}
	}

	return s.categories.CreateSubcategory(ctx, &domain.Subcategory{
		CategoryID: req.CategoryID,
		UserID:     userID,
		Name:       req.Name,
		Icon:       req.Icon,
	})
}

func (s *CategoryService) GetSubcategory(ctx context.Context, userID, subcategoryID string) (*domain.Subcategory, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.GetSubcategory")
	defer span.End()

	return s.categories.GetSubcategory(ctx, userID, subcategoryID)
}

func (s *CategoryService) ListSubcategories(ctx context.Context, userID string) ([]domain.Subcategory, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.ListSubcategories")
	defer span.End()

	return s.categories.ListSubcategories(ctx, userID)
}

func (s *CategoryService) ListSubcategoriesByCategory(ctx context.Context, userID, categoryID string) ([]domain.Subcategory, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.ListSubcategoriesByCategory")
	defer span.End()

	if _, err := s.categories.GetCategory(ctx, userID, categoryID); err != nil {
		return nil, err
	}
	return s.categories.ListSubcategoriesByCategory(ctx, userID, categoryID)
}

// UpdateSubcategoryRequest is the body for PATCH /v1/subcategories/{id}.
type UpdateSubcategoryRequest struct {
	Name *string `json:"name,omitempty"`
	Icon *string `json:"icon,omitempty"`
}

func (s *CategoryService) UpdateSubcategory(ctx context.Context, userID, subcategoryID string, req *UpdateSubcategoryRequest) (*domain.Subcategory, error) {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.UpdateSubcategory")
	defer span.End()

	current, err := s.categories.GetSubcategory(ctx, userID, subcategoryID)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Name != nil {
		if *req.Name == "" {
			return nil, &domain.ErrValidation{Field: "name", Message: "name must not be empty"}
		}
		if existing, err := s.categories.GetSubcategoryByName(ctx, current.CategoryID, *req.Name); err == nil && existing.ID != subcategoryID {
			return nil, &domain.ErrConflict{Message: "subcategory already exists"}
		}
		updates["name"] = *req.Name
	}
	if req.Icon != nil {
		updates["icon"] = *req.Icon
	}
	if len(updates) == 0 {
		return nil, &domain.ErrValidation{Field: "body", Message: "no fields to update"}
	}

	return s.categories.UpdateSubcategory(ctx, userID, subcategoryID, updates)
}

func (s *CategoryService) DeleteSubcategory(ctx context.Context, userID, subcategoryID string) error {
	ctx, span := categoryTracer.Start(ctx, "CategoryService.DeleteSubcategory")
	defer span.End()

	if _, err := s.categories.GetSubcategory(ctx, userID, subcategoryID); err != nil {
		return err
	}

	s.scrubQuickAdd(ctx, userID, []string{subcategoryID})
	return s.categories.DeleteSubcategory(ctx, userID, subcategoryID)
}
