package orders

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tavola-app/tavola-backend/pkg/db/models"
	"github.com/tavola-app/tavola-backend/pkg/enums"
)

func setupOrdersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	menuItems := `
CREATE TABLE IF NOT EXISTS menu_items (
  id TEXT PRIMARY KEY,
  title TEXT NOT NULL,
  price NUMERIC NOT NULL,
  featured INTEGER NOT NULL DEFAULT 0,
  category_id TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orders := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  delivery_crew_id TEXT,
  status TEXT NOT NULL DEFAULT 'placed',
  total NUMERIC NOT NULL,
  placed_at DATETIME NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	orderLines := `
CREATE TABLE IF NOT EXISTS order_lines (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  menu_item_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  line_total NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(menuItems).Error)
	require.NoError(t, db.Exec(orders).Error)
	require.NoError(t, db.Exec(orderLines).Error)
	return db
}

func newOrderMenuItem(t *testing.T, db *gorm.DB, title, price string) *models.MenuItem {
	t.Helper()

	item := &models.MenuItem{
		ID:         uuid.New(),
		Title:      title,
		Price:      decimal.RequireFromString(price),
		CategoryID: uuid.New(),
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

func newOrder(t *testing.T, repo Repository, ownerID uuid.UUID, status enums.OrderStatus, placedAt time.Time, items map[*models.MenuItem]int) *models.Order {
	t.Helper()

	order := &models.Order{
		ID:       uuid.New(),
		UserID:   ownerID,
		Status:   status,
		PlacedAt: placedAt,
	}
	total := decimal.Zero
	for item, qty := range items {
		lineTotal := item.Price.Mul(decimal.NewFromInt(int64(qty)))
		order.Lines = append(order.Lines, models.OrderLine{
			ID:         uuid.New(),
			OrderID:    order.ID,
			MenuItemID: item.ID,
			Quantity:   qty,
			UnitPrice:  item.Price,
			LineTotal:  lineTotal,
		})
		total = total.Add(lineTotal)
	}
	order.Total = total

	created, err := repo.Create(context.Background(), order)
	require.NoError(t, err)
	return created
}

func TestRepositoryList_filters(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	ownerID := uuid.New()
	otherID := uuid.New()
	crewID := uuid.New()
	item := newOrderMenuItem(t, db, "Pollo alla Cacciatora", "12.50")

	now := time.Now().UTC()
	first := newOrder(t, repo, ownerID, enums.OrderStatusPlaced, now.Add(-time.Hour), map[*models.MenuItem]int{item: 1})
	second := newOrder(t, repo, ownerID, enums.OrderStatusOutForDelivery, now, map[*models.MenuItem]int{item: 2})
	newOrder(t, repo, otherID, enums.OrderStatusPlaced, now, map[*models.MenuItem]int{item: 3})

	second.DeliveryCrewID = &crewID
	_, err := repo.Save(context.Background(), second)
	require.NoError(t, err)

	mine, err := repo.List(context.Background(), ListFilter{OwnerID: ownerID})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	// Default ordering is newest first.
	assert.Equal(t, second.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)
	require.Len(t, mine[0].Lines, 1)
	require.NotNil(t, mine[0].Lines[0].MenuItem)

	assigned, err := repo.List(context.Background(), ListFilter{AssigneeID: crewID})
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	assert.Equal(t, second.ID, assigned[0].ID)

	placed, err := repo.List(context.Background(), ListFilter{OwnerID: ownerID, Status: enums.OrderStatusPlaced})
	require.NoError(t, err)
	require.Len(t, placed, 1)
	assert.Equal(t, first.ID, placed[0].ID)
}

func TestRepositoryList_paging(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	ownerID := uuid.New()
	item := newOrderMenuItem(t, db, "Saltimbocca alla Romana", "16.00")

	now := time.Now().UTC()
	newOrder(t, repo, ownerID, enums.OrderStatusPlaced, now.Add(-2*time.Hour), map[*models.MenuItem]int{item: 1})
	middle := newOrder(t, repo, ownerID, enums.OrderStatusPlaced, now.Add(-time.Hour), map[*models.MenuItem]int{item: 1})
	newOrder(t, repo, ownerID, enums.OrderStatusPlaced, now, map[*models.MenuItem]int{item: 1})

	page, err := repo.List(context.Background(), ListFilter{OwnerID: ownerID, Offset: 1, Limit: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, middle.ID, page[0].ID)
}

func TestRepositoryFindAndDelete(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	ownerID := uuid.New()
	item := newOrderMenuItem(t, db, "Branzino al Sale", "21.00")
	order := newOrder(t, repo, ownerID, enums.OrderStatusPlaced, time.Now().UTC(), map[*models.MenuItem]int{item: 1})

	found, err := repo.Find(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, ownerID, found.UserID)
	require.Len(t, found.Lines, 1)
	assert.True(t, found.Total.Equal(decimal.RequireFromString("21.00")))

	deleted, err := repo.Delete(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = repo.Delete(context.Background(), order.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestRepositoryLineTotals(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	ownerID := uuid.New()
	pasta := newOrderMenuItem(t, db, "Pappardelle al Cinghiale", "12.50")
	bread := newOrderMenuItem(t, db, "Pane Toscano", "4.00")
	order := newOrder(t, repo, ownerID, enums.OrderStatusPlaced, time.Now().UTC(), map[*models.MenuItem]int{
		pasta: 2,
		bread: 1,
	})

	sum, err := repo.SumLineTotals(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("29.00")), "got %s", sum)

	line, err := repo.FindLine(context.Background(), order.ID, bread.ID)
	require.NoError(t, err)
	require.NoError(t, repo.DeleteLine(context.Background(), line.ID))

	sum, err = repo.SumLineTotals(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, sum.Equal(decimal.RequireFromString("25.00")), "got %s", sum)

	require.NoError(t, repo.UpdateTotal(context.Background(), order.ID, sum))
	reloaded, err := repo.Find(context.Background(), order.ID)
	require.NoError(t, err)
	assert.True(t, reloaded.Total.Equal(sum))

	_, err = repo.FindLine(context.Background(), order.ID, bread.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepositorySumLineTotals_empty(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	sum, err := repo.SumLineTotals(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, sum.IsZero())
}

func TestRepositorySaveLine(t *testing.T) {
	db := setupOrdersTestDB(t)
	repo := NewRepository(db)

	ownerID := uuid.New()
	item := newOrderMenuItem(t, db, "Ossobuco alla Milanese", "18.25")
	order := newOrder(t, repo, ownerID, enums.OrderStatusPlaced, time.Now().UTC(), map[*models.MenuItem]int{item: 1})

	line, err := repo.FindLine(context.Background(), order.ID, item.ID)
	require.NoError(t, err)

	line.Quantity = 3
	line.LineTotal = line.UnitPrice.Mul(decimal.NewFromInt(3))
	_, err = repo.SaveLine(context.Background(), line)
	require.NoError(t, err)

	reloaded, err := repo.FindLine(context.Background(), order.ID, item.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, reloaded.Quantity)
	assert.True(t, reloaded.LineTotal.Equal(decimal.RequireFromString("54.75")))
}
