package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tavola-app/tavola-backend/pkg/db/models"
)

// ListFilter holds the resolved, sanitized listing parameters applied by the
// repository.
type ListFilter struct {
	CategoryTitle string
	PriceFrom     *decimal.Decimal
	PriceTo       *decimal.Decimal
	OrderClauses  []string
	Offset        int
	Limit         int
}

// Repository persists categories and menu items.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListCategories(ctx context.Context) ([]models.Category, error)
	FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error)
	CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error)
	ListMenuItems(ctx context.Context, filter ListFilter) ([]models.MenuItem, error)
	FindMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error)
	FindMenuItemByTitle(ctx context.Context, title string) (*models.MenuItem, error)
	CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	SaveMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error)
	DeleteMenuItem(ctx context.Context, id uuid.UUID) (bool, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a catalog repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListCategories(ctx context.Context) ([]models.Category, error) {
	var categories []models.Category
	err := r.db.WithContext(ctx).
		Order("title ASC").
		Find(&categories).Error
	if err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *repository) FindCategory(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	var category models.Category
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&category).Error
	if err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *repository) CreateCategory(ctx context.Context, category *models.Category) (*models.Category, error) {
	if err := r.db.WithContext(ctx).Create(category).Error; err != nil {
		return nil, err
	}
	return category, nil
}

func (r *repository) ListMenuItems(ctx context.Context, filter ListFilter) ([]models.MenuItem, error) {
	q := r.db.WithContext(ctx).
		Model(&models.MenuItem{}).
		Preload("Category")

	if filter.CategoryTitle != "" {
		q = q.Joins("JOIN categories ON categories.id = menu_items.category_id").
			Where("LOWER(categories.title) LIKE ?", "%"+filter.CategoryTitle+"%")
	}
	if filter.PriceFrom != nil {
		q = q.Where("menu_items.price >= ?", filter.PriceFrom)
	}
	if filter.PriceTo != nil {
		q = q.Where("menu_items.price <= ?", filter.PriceTo)
	}

	for _, clause := range filter.OrderClauses {
		q = q.Order(clause)
	}
	if len(filter.OrderClauses) == 0 {
		q = q.Order("menu_items.title ASC")
	}

	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}

	var items []models.MenuItem
	if err := q.Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *repository) FindMenuItem(ctx context.Context, id uuid.UUID) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).
		Preload("Category").
		Where("id = ?", id).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) FindMenuItemByTitle(ctx context.Context, title string) (*models.MenuItem, error) {
	var item models.MenuItem
	err := r.db.WithContext(ctx).
		Where("title = ?", title).
		First(&item).Error
	if err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *repository) CreateMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) SaveMenuItem(ctx context.Context, item *models.MenuItem) (*models.MenuItem, error) {
	if err := r.db.WithContext(ctx).Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

func (r *repository) DeleteMenuItem(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.MenuItem{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
