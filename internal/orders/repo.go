package orders

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tavola-app/tavola-backend/pkg/db/models"
	"github.com/tavola-app/tavola-backend/pkg/enums"
)

// ListFilter holds the resolved order listing parameters. Zero-value owner
// and assignee filters mean "no restriction".
type ListFilter struct {
	OwnerID      uuid.UUID
	AssigneeID   uuid.UUID
	Status       enums.OrderStatus
	OrderClauses []string
	Offset       int
	Limit        int
}

// Repository persists orders and their lines.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	List(ctx context.Context, filter ListFilter) ([]models.Order, error)
	Find(ctx context.Context, id uuid.UUID) (*models.Order, error)
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	Save(ctx context.Context, order *models.Order) (*models.Order, error)
	Delete(ctx context.Context, id uuid.UUID) (bool, error)
	FindLine(ctx context.Context, orderID, menuItemID uuid.UUID) (*models.OrderLine, error)
	// FindLineForUpdate row-locks the line; callers must hold a transaction.
	FindLineForUpdate(ctx context.Context, orderID, menuItemID uuid.UUID) (*models.OrderLine, error)
	SaveLine(ctx context.Context, line *models.OrderLine) (*models.OrderLine, error)
	DeleteLine(ctx context.Context, id uuid.UUID) error
	SumLineTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)
	UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]models.Order, error) {
	q := r.db.WithContext(ctx).
		Model(&models.Order{}).
		Preload("Lines").
		Preload("Lines.MenuItem")

	if filter.OwnerID != uuid.Nil {
		q = q.Where("user_id = ?", filter.OwnerID)
	}
	if filter.AssigneeID != uuid.Nil {
		q = q.Where("delivery_crew_id = ?", filter.AssigneeID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}

	for _, c := range filter.OrderClauses {
		q = q.Order(c)
	}
	if len(filter.OrderClauses) == 0 {
		q = q.Order("placed_at DESC")
	}

	if filter.Limit > 0 {
		q = q.Offset(filter.Offset).Limit(filter.Limit)
	}

	var orders []models.Order
	if err := q.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) Find(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Lines").
		Preload("Lines.MenuItem").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) Save(ctx context.Context, order *models.Order) (*models.Order, error) {
	err := r.db.WithContext(ctx).
		Omit("Lines").
		Save(order).Error
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.Order{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repository) FindLine(ctx context.Context, orderID, menuItemID uuid.UUID) (*models.OrderLine, error) {
	return r.findLine(ctx, r.db, orderID, menuItemID)
}

func (r *repository) FindLineForUpdate(ctx context.Context, orderID, menuItemID uuid.UUID) (*models.OrderLine, error) {
	return r.findLine(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), orderID, menuItemID)
}

func (r *repository) findLine(ctx context.Context, db *gorm.DB, orderID, menuItemID uuid.UUID) (*models.OrderLine, error) {
	var line models.OrderLine
	err := db.WithContext(ctx).
		Where("order_id = ? AND menu_item_id = ?", orderID, menuItemID).
		First(&line).Error
	if err != nil {
		return nil, err
	}
	return &line, nil
}

func (r *repository) SaveLine(ctx context.Context, line *models.OrderLine) (*models.OrderLine, error) {
	if err := r.db.WithContext(ctx).Save(line).Error; err != nil {
		return nil, err
	}
	return line, nil
}

func (r *repository) DeleteLine(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&models.OrderLine{}).Error
}

func (r *repository) SumLineTotals(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var raw *string
	err := r.db.WithContext(ctx).
		Model(&models.OrderLine{}).
		Select("SUM(line_total)").
		Where("order_id = ?", orderID).
		Scan(&raw).Error
	if err != nil {
		return decimal.Zero, err
	}
	if raw == nil {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (r *repository) UpdateTotal(ctx context.Context, orderID uuid.UUID, total decimal.Decimal) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("total", total).Error
}
