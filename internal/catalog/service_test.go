package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tavola-app/tavola-backend/pkg/auth"
	"github.com/tavola-app/tavola-backend/pkg/db/models"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
	"github.com/tavola-app/tavola-backend/pkg/enums"
	"github.com/tavola-app/tavola-backend/pkg/pagination"
)

type stubCatalogRepo struct {
	categories []models.Category
	items      []models.MenuItem
	lastFilter ListFilter
	createErr  error
	saveErr    error
}

func (s *stubCatalogRepo) WithTx(_ *gorm.DB) Repository { return s }

func (s *stubCatalogRepo) ListCategories(_ context.Context) ([]models.Category, error) {
	return s.categories, nil
}

func (s *stubCatalogRepo) FindCategory(_ context.Context, id uuid.UUID) (*models.Category, error) {
	for i := range s.categories {
		if s.categories[i].ID == id {
			return &s.categories[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) CreateCategory(_ context.Context, category *models.Category) (*models.Category, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.categories = append(s.categories, *category)
	return category, nil
}

func (s *stubCatalogRepo) ListMenuItems(_ context.Context, filter ListFilter) ([]models.MenuItem, error) {
	s.lastFilter = filter
	return s.items, nil
}

func (s *stubCatalogRepo) FindMenuItem(_ context.Context, id uuid.UUID) (*models.MenuItem, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			return &s.items[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) FindMenuItemByTitle(_ context.Context, title string) (*models.MenuItem, error) {
	for i := range s.items {
		if s.items[i].Title == title {
			return &s.items[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) CreateMenuItem(_ context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.items = append(s.items, *item)
	return item, nil
}

func (s *stubCatalogRepo) SaveMenuItem(_ context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if s.saveErr != nil {
		return nil, s.saveErr
	}
	for i := range s.items {
		if s.items[i].ID == item.ID {
			s.items[i] = *item
			return item, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubCatalogRepo) DeleteMenuItem(_ context.Context, id uuid.UUID) (bool, error) {
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func managerActor() auth.Actor {
	return auth.Actor{UserID: uuid.New(), Roles: []enums.Role{enums.RoleManager}}
}

func customerActor() auth.Actor {
	return auth.Actor{UserID: uuid.New()}
}

func assertErrorCode(t *testing.T, err error, want pkgerrors.Code) {
	t.Helper()
	appErr := pkgerrors.As(err)
	if appErr == nil {
		t.Fatalf("expected typed error, got %v", err)
	}
	if appErr.Code() != want {
		t.Fatalf("expected code %s, got %s", want, appErr.Code())
	}
}

func TestCreateCategoryRequiresManager(t *testing.T) {
	svc, err := NewService(&stubCatalogRepo{}, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = svc.CreateCategory(context.Background(), customerActor(), CreateCategoryInput{Slug: "mains", Title: "Mains"})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestCreateCategoryOpenMode(t *testing.T) {
	svc, _ := NewService(&stubCatalogRepo{}, true)

	dto, err := svc.CreateCategory(context.Background(), customerActor(), CreateCategoryInput{Slug: " Mains ", Title: "Mains"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dto.Slug != "mains" {
		t.Fatalf("expected normalized slug, got %q", dto.Slug)
	}
}

func TestCreateCategoryAdminAllowed(t *testing.T) {
	svc, _ := NewService(&stubCatalogRepo{}, false)
	admin := auth.Actor{UserID: uuid.New(), IsStaff: true}

	if _, err := svc.CreateCategory(context.Background(), admin, CreateCategoryInput{Slug: "desserts", Title: "Desserts"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestListMenuItemsOrderingWhitelist(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc, _ := NewService(repo, false)

	_, err := svc.ListMenuItems(context.Background(), ListMenuItemsInput{Ordering: "category__title"})
	assertErrorCode(t, err, pkgerrors.CodeValidation)

	if _, err := svc.ListMenuItems(context.Background(), ListMenuItemsInput{
		Ordering: "-price,title",
		Page:     pagination.Params{Page: 2, PerPage: 10},
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.lastFilter.OrderClauses) != 2 {
		t.Fatalf("expected 2 order clauses, got %v", repo.lastFilter.OrderClauses)
	}
	if repo.lastFilter.OrderClauses[0] != "menu_items.price DESC" {
		t.Fatalf("unexpected clause: %s", repo.lastFilter.OrderClauses[0])
	}
	if repo.lastFilter.Offset != 10 || repo.lastFilter.Limit != 10 {
		t.Fatalf("unexpected window: offset=%d limit=%d", repo.lastFilter.Offset, repo.lastFilter.Limit)
	}
}

func TestListMenuItemsLowercasesCategoryFilter(t *testing.T) {
	repo := &stubCatalogRepo{}
	svc, _ := NewService(repo, false)

	if _, err := svc.ListMenuItems(context.Background(), ListMenuItemsInput{CategoryTitle: " Desserts "}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.lastFilter.CategoryTitle != "desserts" {
		t.Fatalf("expected lowercase filter, got %q", repo.lastFilter.CategoryTitle)
	}
}

func TestCreateMenuItemValidation(t *testing.T) {
	category := models.Category{ID: uuid.New(), Slug: "mains", Title: "Mains"}
	repo := &stubCatalogRepo{categories: []models.Category{category}}
	svc, _ := NewService(repo, false)
	manager := managerActor()

	_, err := svc.CreateMenuItem(context.Background(), customerActor(), CreateMenuItemInput{Title: "Pasta", CategoryID: category.ID})
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = svc.CreateMenuItem(context.Background(), manager, CreateMenuItemInput{CategoryID: category.ID})
	assertErrorCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateMenuItem(context.Background(), manager, CreateMenuItemInput{
		Title:      "Pasta",
		Price:      decimal.NewFromInt(-1),
		CategoryID: category.ID,
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)

	_, err = svc.CreateMenuItem(context.Background(), manager, CreateMenuItemInput{
		Title:      "Pasta",
		Price:      decimal.RequireFromString("9.99"),
		CategoryID: uuid.New(),
	})
	assertErrorCode(t, err, pkgerrors.CodeNotFound)

	dto, err := svc.CreateMenuItem(context.Background(), manager, CreateMenuItemInput{
		Title:      "Pasta",
		Price:      decimal.RequireFromString("9.99"),
		CategoryID: category.ID,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dto.Price.Equal(decimal.RequireFromString("9.99")) {
		t.Fatalf("unexpected price: %s", dto.Price)
	}

	_, err = svc.CreateMenuItem(context.Background(), manager, CreateMenuItemInput{
		Title:      "Pasta",
		Price:      decimal.RequireFromString("4.50"),
		CategoryID: category.ID,
	})
	assertErrorCode(t, err, pkgerrors.CodeValidation)
}

func TestUpdateMenuItemPartial(t *testing.T) {
	category := models.Category{ID: uuid.New(), Slug: "mains", Title: "Mains"}
	item := models.MenuItem{
		ID:         uuid.New(),
		Title:      "Pasta",
		Price:      decimal.RequireFromString("9.99"),
		CategoryID: category.ID,
	}
	repo := &stubCatalogRepo{categories: []models.Category{category}, items: []models.MenuItem{item}}
	svc, _ := NewService(repo, false)
	manager := managerActor()

	_, err := svc.UpdateMenuItem(context.Background(), manager, item.ID, UpdateMenuItemInput{})
	assertErrorCode(t, err, pkgerrors.CodeValidation)

	featured := true
	dto, err := svc.UpdateMenuItem(context.Background(), manager, item.ID, UpdateMenuItemInput{Featured: &featured})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !dto.Featured {
		t.Fatalf("expected featured item")
	}
	if dto.Title != "Pasta" {
		t.Fatalf("title should be untouched, got %q", dto.Title)
	}

	_, err = svc.UpdateMenuItem(context.Background(), manager, uuid.New(), UpdateMenuItemInput{Featured: &featured})
	assertErrorCode(t, err, pkgerrors.CodeNotFound)
}

func TestDeleteMenuItem(t *testing.T) {
	item := models.MenuItem{ID: uuid.New(), Title: "Pasta", Price: decimal.RequireFromString("9.99")}
	repo := &stubCatalogRepo{items: []models.MenuItem{item}}
	svc, _ := NewService(repo, false)

	err := svc.DeleteMenuItem(context.Background(), customerActor(), item.ID)
	assertErrorCode(t, err, pkgerrors.CodeUnauthorized)

	if err := svc.DeleteMenuItem(context.Background(), managerActor(), item.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = svc.DeleteMenuItem(context.Background(), managerActor(), item.ID)
	assertErrorCode(t, err, pkgerrors.CodeNotFound)
}
