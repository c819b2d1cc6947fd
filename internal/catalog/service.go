package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tavola-app/tavola-backend/pkg/auth"
	pkgdb "github.com/tavola-app/tavola-backend/pkg/db"
	"github.com/tavola-app/tavola-backend/pkg/db/models"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
	"github.com/tavola-app/tavola-backend/pkg/pagination"
)

var menuItemOrderFields = map[string]string{
	"id":       "menu_items.id",
	"title":    "menu_items.title",
	"price":    "menu_items.price",
	"featured": "menu_items.featured",
}

// Service exposes catalog reads for all authenticated callers and writes for
// managers.
type Service interface {
	ListCategories(ctx context.Context) ([]CategoryDTO, error)
	CreateCategory(ctx context.Context, actor auth.Actor, input CreateCategoryInput) (*CategoryDTO, error)
	ListMenuItems(ctx context.Context, input ListMenuItemsInput) ([]MenuItemDTO, error)
	GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItemDTO, error)
	CreateMenuItem(ctx context.Context, actor auth.Actor, input CreateMenuItemInput) (*MenuItemDTO, error)
	UpdateMenuItem(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateMenuItemInput) (*MenuItemDTO, error)
	DeleteMenuItem(ctx context.Context, actor auth.Actor, id uuid.UUID) error
}

type service struct {
	repo               Repository
	openCategoryCreate bool
}

// NewService builds the catalog service.
func NewService(repo Repository, openCategoryCreate bool) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{
		repo:               repo,
		openCategoryCreate: openCategoryCreate,
	}, nil
}

func (s *service) ListCategories(ctx context.Context) ([]CategoryDTO, error) {
	categories, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list categories")
	}
	dtos := make([]CategoryDTO, 0, len(categories))
	for _, category := range categories {
		dtos = append(dtos, categoryFromModel(category))
	}
	return dtos, nil
}

func (s *service) CreateCategory(ctx context.Context, actor auth.Actor, input CreateCategoryInput) (*CategoryDTO, error) {
	if !s.openCategoryCreate && !actor.IsManagerOrAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "manager role required")
	}

	slug := strings.TrimSpace(strings.ToLower(input.Slug))
	title := strings.TrimSpace(input.Title)
	if slug == "" || title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "slug and title are required")
	}

	category, err := s.repo.CreateCategory(ctx, &models.Category{
		ID:    uuid.New(),
		Slug:  slug,
		Title: title,
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "category slug already exists")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create category")
	}

	dto := categoryFromModel(*category)
	return &dto, nil
}

func (s *service) ListMenuItems(ctx context.Context, input ListMenuItemsInput) ([]MenuItemDTO, error) {
	orderClauses, err := pagination.ParseOrdering(input.Ordering, menuItemOrderFields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ordering")
	}
	if input.PriceFrom != nil && input.PriceFrom.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_from must be non-negative")
	}
	if input.PriceTo != nil && input.PriceTo.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price_to must be non-negative")
	}

	items, err := s.repo.ListMenuItems(ctx, ListFilter{
		CategoryTitle: strings.ToLower(strings.TrimSpace(input.CategoryTitle)),
		PriceFrom:     input.PriceFrom,
		PriceTo:       input.PriceTo,
		OrderClauses:  orderClauses,
		Offset:        input.Page.Offset(),
		Limit:         input.Page.Limit(),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list menu items")
	}

	dtos := make([]MenuItemDTO, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, menuItemFromModel(item))
	}
	return dtos, nil
}

func (s *service) GetMenuItem(ctx context.Context, id uuid.UUID) (*MenuItemDTO, error) {
	item, err := s.repo.FindMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find menu item")
	}
	dto := menuItemFromModel(*item)
	return &dto, nil
}

func (s *service) CreateMenuItem(ctx context.Context, actor auth.Actor, input CreateMenuItemInput) (*MenuItemDTO, error) {
	if !actor.IsManagerOrAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "manager role required")
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required").
			WithDetails(map[string]string{"title": "is required"})
	}
	if input.Price.IsNegative() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative").
			WithDetails(map[string]string{"price": "must be non-negative"})
	}
	if input.CategoryID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "category is required").
			WithDetails(map[string]string{"category": "is required"})
	}
	if err := s.ensureTitleAvailable(ctx, title, uuid.Nil); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCategory(ctx, input.CategoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find category")
	}

	item, err := s.repo.CreateMenuItem(ctx, &models.MenuItem{
		ID:         uuid.New(),
		Title:      title,
		Price:      input.Price,
		Featured:   input.Featured,
		CategoryID: input.CategoryID,
	})
	if err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item title must be unique").
				WithDetails(map[string]string{"title": "must be unique"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create menu item")
	}

	return s.GetMenuItem(ctx, item.ID)
}

func (s *service) UpdateMenuItem(ctx context.Context, actor auth.Actor, id uuid.UUID, input UpdateMenuItemInput) (*MenuItemDTO, error) {
	if !actor.IsManagerOrAdmin() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "manager role required")
	}
	if input.Title == nil && input.Price == nil && input.Featured == nil && input.CategoryID == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}

	item, err := s.repo.FindMenuItem(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find menu item")
	}

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "title is required").
				WithDetails(map[string]string{"title": "is required"})
		}
		if err := s.ensureTitleAvailable(ctx, title, item.ID); err != nil {
			return nil, err
		}
		item.Title = title
	}
	if input.Price != nil {
		if input.Price.IsNegative() {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "price must be non-negative").
				WithDetails(map[string]string{"price": "must be non-negative"})
		}
		item.Price = *input.Price
	}
	if input.Featured != nil {
		item.Featured = *input.Featured
	}
	if input.CategoryID != nil {
		if _, err := s.repo.FindCategory(ctx, *input.CategoryID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category not found")
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find category")
		}
		item.CategoryID = *input.CategoryID
		item.Category = nil
	}

	if _, err := s.repo.SaveMenuItem(ctx, item); err != nil {
		if pkgdb.IsUniqueViolation(err, "") {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "menu item title must be unique").
				WithDetails(map[string]string{"title": "must be unique"})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update menu item")
	}

	return s.GetMenuItem(ctx, item.ID)
}

func (s *service) DeleteMenuItem(ctx context.Context, actor auth.Actor, id uuid.UUID) error {
	if !actor.IsManagerOrAdmin() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "manager role required")
	}

	deleted, err := s.repo.DeleteMenuItem(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete menu item")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
	}
	return nil
}

func (s *service) ensureTitleAvailable(ctx context.Context, title string, selfID uuid.UUID) error {
	existing, err := s.repo.FindMenuItemByTitle(ctx, title)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check title")
	}
	if existing.ID != selfID {
		return pkgerrors.New(pkgerrors.CodeValidation, "menu item title must be unique").
			WithDetails(map[string]string{"title": "must be unique"})
	}
	return nil
}
