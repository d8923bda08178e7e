package cart

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"shopcart/internal/model"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.Product{},
		&model.ProductImage{},
		&model.ProductVariant{},
		&model.Attribute{},
		&model.AttributeValue{},
		&model.VariantAttribute{},
		&model.Order{},
		&model.OrderItem{},
		&model.GuestOrder{},
	))
	return db
}

func seedProduct(t *testing.T, db *gorm.DB, price int64, stock int) model.Product {
	t.Helper()
	p := model.Product{Name: "Widget", Price: price, Quantity: stock}
	require.NoError(t, db.Create(&p).Error)
	return p
}

func seedVariant(t *testing.T, db *gorm.DB, productID uint, sku string, price int64, stock int) model.ProductVariant {
	t.Helper()
	v := model.ProductVariant{ProductID: productID, SKU: sku, Price: price, Stock: stock}
	require.NoError(t, db.Create(&v).Error)
	return v
}

func userIdentity(userID int64) Identity {
	return Identity{UserID: &userID}
}

func TestPersistentAddCreatesSingleLine(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 500, 10)
	store := NewPersistentStore(db)
	ident := userIdentity(1)

	view, err := store.Add(context.Background(), ident, p.ID, nil, 3)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, 3, view.Lines[0].Quantity)
	require.Equal(t, int64(500), view.Lines[0].Price)
	require.Equal(t, int64(1500), view.TotalAmount)

	// Exactly one open order exists for the user.
	var count int64
	require.NoError(t, db.Model(&model.Order{}).
		Where("user_id = ? AND status_id = ?", 1, model.StatusCart).
		Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestPersistentAddMergesSameLine(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 500, 10)
	store := NewPersistentStore(db)
	ident := userIdentity(1)

	_, err := store.Add(context.Background(), ident, p.ID, nil, 2)
	require.NoError(t, err)
	view, err := store.Add(context.Background(), ident, p.ID, nil, 3)
	require.NoError(t, err)

	require.Len(t, view.Lines, 1)
	require.Equal(t, 5, view.Lines[0].Quantity)
	require.Equal(t, int64(2500), view.TotalAmount)
}

func TestPersistentAddResnapshotsPrice(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 500, 10)
	store := NewPersistentStore(db)
	ident := userIdentity(1)

	_, err := store.Add(context.Background(), ident, p.ID, nil, 1)
	require.NoError(t, err)

	// The catalog price changes between two adds; the line takes the new
	// unit price while the total keeps the old add's contribution.
	require.NoError(t, db.Model(&model.Product{}).Where("id = ?", p.ID).Update("price", 700).Error)

	view, err := store.Add(context.Background(), ident, p.ID, nil, 1)
	require.NoError(t, err)
	require.Equal(t, int64(700), view.Lines[0].Price)
	require.Equal(t, int64(500+700), view.TotalAmount)
}

func TestPersistentAddVariantLines(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 500, 10)
	v := seedVariant(t, db, p.ID, "SKU-Red-S", 650, 4)
	store := NewPersistentStore(db)
	ident := userIdentity(1)

	_, err := store.Add(context.Background(), ident, p.ID, nil, 1)
	require.NoError(t, err)
	view, err := store.Add(context.Background(), ident, p.ID, &v.ID, 2)
	require.NoError(t, err)

	// Variant and no-variant lines do not merge.
	require.Len(t, view.Lines, 2)
	require.Equal(t, int64(500+2*650), view.TotalAmount)
}

func TestPersistentAddRejectsOverStock(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 500, 2)
	store := NewPersistentStore(db)
	ident := userIdentity(1)

	_, err := store.Add(context.Background(), ident, p.ID, nil, 3)
	require.ErrorIs(t, err, ErrInsufficientStock)

	// Rejection mutates nothing: no order was created.
	var count int64
	require.NoError(t, db.Model(&model.Order{}).Count(&count).Error)
	require.EqualValues(t, 0, count)
}

func TestPersistentAddVariantMustBelongToProduct(t *testing.T) {
	db := newTestDB(t)
	p1 := seedProduct(t, db, 500, 10)
	p2 := seedProduct(t, db, 900, 10)
	v2 := seedVariant(t, db, p2.ID, "SKU-Blue-M", 950, 5)
	store := NewPersistentStore(db)

	_, err := store.Add(context.Background(), userIdentity(1), p1.ID, &v2.ID, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPersistentAddUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	store := NewPersistentStore(db)
	_, err := store.Add(context.Background(), userIdentity(1), 999, nil, 1)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPersistentUpdateItem(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 500, 10)
	store := NewPersistentStore(db)
	ident := userIdentity(1)

	view, err := store.Add(context.Background(), ident, p.ID, nil, 2)
	require.NoError(t, err)
	itemID := view.Lines[0].ID

	view, err = store.UpdateItem(context.Background(), ident, itemID, 5)
	require.NoError(t, err)
	require.Equal(t, 5, view.Lines[0].Quantity)
	require.Equal(t, int64(2500), view.TotalAmount)

	// Over stock: rejected, nothing changes.
	_, err = store.UpdateItem(context.Background(), ident, itemID, 11)
	require.ErrorIs(t, err, ErrInsufficientStock)
	view, err = store.View(context.Background(), ident)
	require.NoError(t, err)
	require.Equal(t, 5, view.Lines[0].Quantity)
	require.Equal(t, int64(2500), view.TotalAmount)
}

func TestPersistentUpdateItemUnknown(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 500, 10)
	store := NewPersistentStore(db)
	ident := userIdentity(1)

	_, err := store.Add(context.Background(), ident, p.ID, nil, 1)
	require.NoError(t, err)

	_, err = store.UpdateItem(context.Background(), ident, "12345", 2)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = store.UpdateItem(context.Background(), ident, "not-a-number", 2)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestPersistentRemoveItemAdjustsTotal(t *testing.T) {
	db := newTestDB(t)
	p1 := seedProduct(t, db, 500, 10)
	p2 := seedProduct(t, db, 300, 10)
	store := NewPersistentStore(db)
	ident := userIdentity(1)

	_, err := store.Add(context.Background(), ident, p1.ID, nil, 2)
	require.NoError(t, err)
	view, err := store.Add(context.Background(), ident, p2.ID, nil, 3)
	require.NoError(t, err)
	require.Equal(t, int64(2*500+3*300), view.TotalAmount)

	var target Line
	for _, l := range view.Lines {
		if l.ProductID == p2.ID {
			target = l
		}
	}
	view, err = store.RemoveItem(context.Background(), ident, target.ID)
	require.NoError(t, err)
	require.Len(t, view.Lines, 1)
	require.Equal(t, int64(1000), view.TotalAmount)
}

func TestPersistentClear(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 500, 10)
	store := NewPersistentStore(db)
	ident := userIdentity(1)

	_, err := store.Add(context.Background(), ident, p.ID, nil, 2)
	require.NoError(t, err)

	require.NoError(t, store.Clear(context.Background(), ident))

	view, err := store.View(context.Background(), ident)
	require.NoError(t, err)
	require.Empty(t, view.Lines)
	require.EqualValues(t, 0, view.TotalAmount)
}

func TestPersistentViewEmpty(t *testing.T) {
	db := newTestDB(t)
	store := NewPersistentStore(db)
	_, err := store.View(context.Background(), userIdentity(1))
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestPersistentCartsAreIsolatedPerUser(t *testing.T) {
	db := newTestDB(t)
	p := seedProduct(t, db, 500, 10)
	store := NewPersistentStore(db)

	_, err := store.Add(context.Background(), userIdentity(1), p.ID, nil, 2)
	require.NoError(t, err)

	_, err = store.View(context.Background(), userIdentity(2))
	require.ErrorIs(t, err, ErrEmptyCart)
}
