package cart

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tavola-app/tavola-backend/internal/catalog"
	"github.com/tavola-app/tavola-backend/pkg/db/models"
	pkgerrors "github.com/tavola-app/tavola-backend/pkg/errors"
)

// Service manages the authenticated user's cart. Every operation is scoped to
// the calling user; there is no cross-user cart access.
type Service interface {
	List(ctx context.Context, userID uuid.UUID) ([]LineDTO, error)
	AddLine(ctx context.Context, userID uuid.UUID, input AddLineInput) (*LineDTO, error)
	Clear(ctx context.Context, userID uuid.UUID) error
}

type service struct {
	repo    Repository
	catalog catalog.Repository
}

// NewService builds the cart service.
func NewService(repo Repository, catalogRepo catalog.Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if catalogRepo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo, catalog: catalogRepo}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID) ([]LineDTO, error) {
	lines, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list cart")
	}
	dtos := make([]LineDTO, 0, len(lines))
	for _, line := range lines {
		dtos = append(dtos, lineFromModel(line))
	}
	return dtos, nil
}

// AddLine upserts the (user, menu item) line. A repeated add replaces the
// quantity but keeps the unit price captured by the first add, so the line
// total stays consistent with its own snapshot.
func (s *service) AddLine(ctx context.Context, userID uuid.UUID, input AddLineInput) (*LineDTO, error) {
	if input.Quantity < 1 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1").
			WithDetails(map[string]string{"quantity": "must be at least 1"})
	}

	item, err := s.catalog.FindMenuItem(ctx, input.MenuItemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "menu item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find menu item")
	}

	existing, err := s.repo.FindByUserAndItem(ctx, userID, input.MenuItemID)
	switch {
	case err == nil:
		existing.Quantity = input.Quantity
		existing.LineTotal = existing.UnitPrice.Mul(decimalFromInt(input.Quantity))
		if _, err := s.repo.Save(ctx, existing); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update cart line")
		}
		existing.MenuItem = item
		dto := lineFromModel(*existing)
		return &dto, nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		line := &models.CartLine{
			ID:         uuid.New(),
			UserID:     userID,
			MenuItemID: item.ID,
			Quantity:   input.Quantity,
			UnitPrice:  item.Price,
			LineTotal:  item.Price.Mul(decimalFromInt(input.Quantity)),
		}
		if _, err := s.repo.Create(ctx, line); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create cart line")
		}
		line.MenuItem = item
		dto := lineFromModel(*line)
		return &dto, nil
	default:
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "find cart line")
	}
}

func decimalFromInt(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

func (s *service) Clear(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.ClearByUser(ctx, userID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	return nil
}
