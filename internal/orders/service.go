package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tavola-app/tavola-backend/internal/accounts"
	"github.com/tavola-app/tavola-backend/internal/cart"
	"github.com/tavola-app/tavola-backend/pkg/auth"
	"github.com/tavola-app/tavola-backend/pkg/db/models"
	"github.com/tavola-app/tavola-backend/pkg/enums"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
	"github.com/tavola-app/tavola-backend/pkg/pagination"
)

var orderOrderFields = map[string]string{
	"id":        "orders.id",
	"status":    "orders.status",
	"total":     "orders.total",
	"date":      "orders.placed_at",
	"placed_at": "orders.placed_at",
}

// TxRunner executes fn inside a database transaction. db.Client satisfies it.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service owns the order lifecycle: checkout from a cart, role-sliced
// listing, status/assignment updates, and owner-scoped line edits.
type Service interface {
	List(ctx context.Context, actor auth.Actor, input ListInput) ([]OrderDTO, error)
	Checkout(ctx context.Context, actor auth.Actor) (*OrderDTO, error)
	Get(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*OrderDTO, error)
	Update(ctx context.Context, actor auth.Actor, orderID uuid.UUID, input UpdateInput) (*OrderDTO, error)
	Delete(ctx context.Context, actor auth.Actor, orderID uuid.UUID) error
	GetLine(ctx context.Context, actor auth.Actor, orderID, menuItemID uuid.UUID) (*LineDTO, error)
	UpdateLine(ctx context.Context, actor auth.Actor, orderID, menuItemID uuid.UUID, input UpdateLineInput) (*LineDTO, error)
	DeleteLine(ctx context.Context, actor auth.Actor, orderID, menuItemID uuid.UUID) error
}

// ServiceParams collects the service dependencies.
type ServiceParams struct {
	Repo     Repository
	CartRepo cart.Repository
	Accounts accounts.Repository
	Tx       TxRunner
	Now      func() time.Time
}

type service struct {
	repo     Repository
	cartRepo cart.Repository
	accounts accounts.Repository
	tx       TxRunner
	now      func() time.Time
}

// NewService builds the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if params.CartRepo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if params.Accounts == nil {
		return nil, fmt.Errorf("accounts repository required")
	}
	if params.Tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		repo:     params.Repo,
		cartRepo: params.CartRepo,
		accounts: params.Accounts,
		tx:       params.Tx,
		now:      now,
	}, nil
}

func (s *service) List(ctx context.Context, actor auth.Actor, input ListInput) ([]OrderDTO, error) {
	orderClauses, err := pagination.ParseOrdering(input.Ordering, orderOrderFields)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid ordering")
	}

	filter := ListFilter{
		OrderClauses: orderClauses,
		Offset:       input.Page.Offset(),
		Limit:        input.Page.Limit(),
	}
	if input.Status != "" {
		status, err := enums.ParseOrderStatus(input.Status)
		if err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status filter")
		}
		filter.Status = status
	}

	switch {
	case actor.IsManagerOrAdmin():
		// No slice restriction.
	case actor.IsDeliveryCrew():
		filter.AssigneeID = actor.UserID
	default:
		filter.OwnerID = actor.UserID
	}

	orders, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list orders")
	}
	dtos := make([]OrderDTO, 0, len(orders))
	for _, order := range orders {
		dtos = append(dtos, orderFromModel(order))
	}
	return dtos, nil
}

// Checkout converts the caller's cart into an order inside one transaction.
// The cart rows are read under FOR UPDATE so a second concurrent checkout
// serializes behind this one and finds the cart empty.
func (s *service) Checkout(ctx context.Context, actor auth.Actor) (*OrderDTO, error) {
	var orderID uuid.UUID
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		cartRepo := s.cartRepo.WithTx(tx)
		repo := s.repo.WithTx(tx)

		lines, err := cartRepo.ListByUserForUpdate(ctx, actor.UserID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart")
		}
		if len(lines) == 0 {
			return pkgerrors.New(pkgerrors.CodeNotFound, "cart is empty")
		}

		order := &models.Order{
			ID:       uuid.New(),
			UserID:   actor.UserID,
			Status:   enums.OrderStatusPlaced,
			PlacedAt: s.now().UTC(),
		}
		for _, line := range lines {
			order.Total = order.Total.Add(line.LineTotal)
			order.Lines = append(order.Lines, models.OrderLine{
				ID:         uuid.New(),
				OrderID:    order.ID,
				MenuItemID: line.MenuItemID,
				Quantity:   line.Quantity,
				UnitPrice:  line.UnitPrice,
				LineTotal:  line.LineTotal,
			})
		}
		if _, err := repo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create order")
		}
		if err := cartRepo.ClearByUser(ctx, actor.UserID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
		}
		orderID = order.ID
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checkout")
	}

	return s.load(ctx, orderID)
}

func (s *service) Get(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.findOwned(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	dto := orderFromModel(*order)
	return &dto, nil
}

func (s *service) Update(ctx context.Context, actor auth.Actor, orderID uuid.UUID, input UpdateInput) (*OrderDTO, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch {
	case actor.IsManagerOrAdmin():
		if err := s.applyManagerUpdate(ctx, order, input); err != nil {
			return nil, err
		}
	case actor.IsDeliveryCrew():
		if order.DeliveryCrewID == nil || *order.DeliveryCrewID != actor.UserID {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		if err := applyCrewUpdate(order, input); err != nil {
			return nil, err
		}
	default:
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "manager or delivery crew role required")
	}

	if _, err := s.repo.Save(ctx, order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order")
	}
	return s.load(ctx, order.ID)
}

// applyManagerUpdate sets status and/or assignee. An assignee without the
// delivery crew role is silently ignored rather than rejected.
func (s *service) applyManagerUpdate(ctx context.Context, order *models.Order, input UpdateInput) error {
	if input.Status == nil && input.DeliveryCrewID == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "status or delivery_crew_id is required")
	}

	if input.Status != nil {
		status, err := enums.ParseOrderStatus(*input.Status)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
		}
		if !order.Status.CanTransitionTo(status) {
			return pkgerrors.New(pkgerrors.CodeValidation,
				fmt.Sprintf("cannot transition from %s to %s", order.Status, status))
		}
		order.Status = status
	}

	if input.DeliveryCrewID != nil {
		isCrew, err := s.accounts.HasRole(ctx, *input.DeliveryCrewID, enums.RoleDeliveryCrew)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check crew role")
		}
		if isCrew {
			order.DeliveryCrewID = input.DeliveryCrewID
		}
	}
	return nil
}

func applyCrewUpdate(order *models.Order, input UpdateInput) error {
	if input.Status == nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "status is required")
	}
	status, err := enums.ParseOrderStatus(*input.Status)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid status")
	}
	if status != enums.OrderStatusDelivered || !order.Status.CanTransitionTo(status) {
		return pkgerrors.New(pkgerrors.CodeValidation,
			fmt.Sprintf("cannot transition from %s to %s", order.Status, status))
	}
	order.Status = status
	return nil
}

func (s *service) Delete(ctx context.Context, actor auth.Actor, orderID uuid.UUID) error {
	if !actor.IsManagerOrAdmin() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "manager role required")
	}
	deleted, err := s.repo.Delete(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order")
	}
	if !deleted {
		return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return nil
}

func (s *service) GetLine(ctx context.Context, actor auth.Actor, orderID, menuItemID uuid.UUID) (*LineDTO, error) {
	order, err := s.findOwned(ctx, actor, orderID)
	if err != nil {
		return nil, err
	}
	for _, line := range order.Lines {
		if line.MenuItemID == menuItemID {
			dto := lineFromModel(line)
			return &dto, nil
		}
	}
	return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
}

// UpdateLine replaces a line's quantity, recomputing its total from the
// frozen unit price and then the parent order's total, all in one
// transaction with the line row locked.
func (s *service) UpdateLine(ctx context.Context, actor auth.Actor, orderID, menuItemID uuid.UUID, input UpdateLineInput) (*LineDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}
	if _, err := s.findOwned(ctx, actor, orderID); err != nil {
		return nil, err
	}

	var updated *models.OrderLine
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		line, err := repo.FindLineForUpdate(ctx, orderID, menuItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order line")
		}

		line.Quantity = input.Quantity
		line.LineTotal = line.UnitPrice.Mul(decimalFromInt(input.Quantity))
		if _, err := repo.SaveLine(ctx, line); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order line")
		}

		if err := s.recomputeTotal(ctx, repo, orderID); err != nil {
			return err
		}
		updated = line
		return nil
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return nil, appErr
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order line")
	}

	dto := lineFromModel(*updated)
	return &dto, nil
}

func (s *service) DeleteLine(ctx context.Context, actor auth.Actor, orderID, menuItemID uuid.UUID) error {
	if _, err := s.findOwned(ctx, actor, orderID); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		line, err := repo.FindLineForUpdate(ctx, orderID, menuItemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order line not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order line")
		}
		if err := repo.DeleteLine(ctx, line.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order line")
		}
		return s.recomputeTotal(ctx, repo, orderID)
	})
	if err != nil {
		if appErr := pkgerrors.As(err); appErr != nil {
			return appErr
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete order line")
	}
	return nil
}

func (s *service) recomputeTotal(ctx context.Context, repo Repository, orderID uuid.UUID) error {
	total, err := repo.SumLineTotals(ctx, orderID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sum order lines")
	}
	if err := repo.UpdateTotal(ctx, orderID, total); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update order total")
	}
	return nil
}

func (s *service) find(ctx context.Context, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.Find(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find order")
	}
	return order, nil
}

// findOwned resolves an order visible to the actor for owner-scoped reads.
// Non-owners get NotFound rather than a role error so order ids do not leak.
func (s *service) findOwned(ctx context.Context, actor auth.Actor, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.UserID != actor.UserID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) load(ctx context.Context, orderID uuid.UUID) (*OrderDTO, error) {
	order, err := s.find(ctx, orderID)
	if err != nil {
		return nil, err
	}
	dto := orderFromModel(*order)
	return &dto, nil
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}
