package catalog

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
		&model.ProductVariant{},
		&model.Attribute{},
		&model.AttributeValue{},
		&model.VariantAttribute{},
	))
	return db
}

// seedColorSize creates Color{Red,Blue} and Size{S,M} and returns the value
// ids keyed by name.
func seedColorSize(t *testing.T, db *gorm.DB) (colorID, sizeID uint, values map[string]uint) {
	t.Helper()
	color := model.Attribute{Name: "Color"}
	size := model.Attribute{Name: "Size"}
	require.NoError(t, db.Create(&color).Error)
	require.NoError(t, db.Create(&size).Error)

	values = make(map[string]uint)
	for name, attrID := range map[string]uint{"Red": color.ID, "Blue": color.ID, "S": size.ID, "M": size.ID} {
		v := model.AttributeValue{AttributeID: attrID, Value: name}
		require.NoError(t, db.Create(&v).Error)
		values[name] = v.ID
	}
	return color.ID, size.ID, values
}

func TestCombinations(t *testing.T) {
	sel := []AttributeSelection{
		{AttributeID: 1, ValueIDs: []uint{10, 11}},
		{AttributeID: 2, ValueIDs: []uint{20, 21, 22}},
	}
	combos := combinations(sel)
	require.Len(t, combos, 6)
	// Expansion preserves input order: first attribute varies slowest.
	require.Equal(t, []pair{{1, 10}, {2, 20}}, combos[0])
	require.Equal(t, []pair{{1, 10}, {2, 21}}, combos[1])
	require.Equal(t, []pair{{1, 11}, {2, 22}}, combos[5])
}

func TestCombinationsEmpty(t *testing.T) {
	combos := combinations(nil)
	require.Len(t, combos, 1)
	require.Empty(t, combos[0])
}

func TestBuildSKU(t *testing.T) {
	require.Equal(t, "SKU-Red-S", BuildSKU([]string{"Red", "S"}))
	require.Equal(t, "SKU-S-Red", BuildSKU([]string{"S", "Red"}))
	require.Equal(t, "SKU-", BuildSKU(nil))
}

func TestReconcileGeneratesAllCombinations(t *testing.T) {
	db := newTestDB(t)
	colorID, sizeID, values := seedColorSize(t, db)
	product := model.Product{Name: "Shirt", Price: 1000}
	require.NoError(t, db.Create(&product).Error)

	r := NewReconciler(db)
	skus, err := r.Reconcile(context.Background(), product.ID, []AttributeSelection{
		{AttributeID: colorID, ValueIDs: []uint{values["Red"], values["Blue"]}},
		{AttributeID: sizeID, ValueIDs: []uint{values["S"], values["M"]}},
	}, 5, 1200)
	require.NoError(t, err)
	require.Equal(t, []string{"SKU-Red-S", "SKU-Red-M", "SKU-Blue-S", "SKU-Blue-M"}, skus)

	var variants []model.ProductVariant
	require.NoError(t, db.Where("product_id = ?", product.ID).Find(&variants).Error)
	require.Len(t, variants, 4)
	for _, v := range variants {
		require.Equal(t, 5, v.Stock)
		require.Equal(t, int64(1200), v.Price)
		var links []model.VariantAttribute
		require.NoError(t, db.Where("variant_id = ?", v.ID).Find(&links).Error)
		require.Len(t, links, 2)
	}
}

func TestReconcileIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	colorID, sizeID, values := seedColorSize(t, db)
	product := model.Product{Name: "Shirt", Price: 1000}
	require.NoError(t, db.Create(&product).Error)

	sel := []AttributeSelection{
		{AttributeID: colorID, ValueIDs: []uint{values["Red"], values["Blue"]}},
		{AttributeID: sizeID, ValueIDs: []uint{values["S"], values["M"]}},
	}
	r := NewReconciler(db)
	first, err := r.Reconcile(context.Background(), product.ID, sel, 5, 1200)
	require.NoError(t, err)

	var before []model.ProductVariant
	require.NoError(t, db.Where("product_id = ?", product.ID).Order("id").Find(&before).Error)

	second, err := r.Reconcile(context.Background(), product.ID, sel, 5, 1200)
	require.NoError(t, err)
	require.Equal(t, first, second)

	var after []model.ProductVariant
	require.NoError(t, db.Where("product_id = ?", product.ID).Order("id").Find(&after).Error)
	require.Len(t, after, 4)
	for i := range before {
		require.Equal(t, before[i].ID, after[i].ID, "rerun must not recreate variants")
		require.Equal(t, before[i].SKU, after[i].SKU)
	}
}

func TestReconcileDeletesRemovedCombinations(t *testing.T) {
	db := newTestDB(t)
	colorID, sizeID, values := seedColorSize(t, db)
	product := model.Product{Name: "Shirt", Price: 1000}
	require.NoError(t, db.Create(&product).Error)

	r := NewReconciler(db)
	_, err := r.Reconcile(context.Background(), product.ID, []AttributeSelection{
		{AttributeID: colorID, ValueIDs: []uint{values["Red"], values["Blue"]}},
		{AttributeID: sizeID, ValueIDs: []uint{values["S"], values["M"]}},
	}, 5, 1200)
	require.NoError(t, err)

	var redS model.ProductVariant
	require.NoError(t, db.Where("sku = ?", "SKU-Red-S").First(&redS).Error)

	// Dropping Blue keeps the Red variants untouched and deletes both Blue
	// ones together with their links.
	skus, err := r.Reconcile(context.Background(), product.ID, []AttributeSelection{
		{AttributeID: colorID, ValueIDs: []uint{values["Red"]}},
		{AttributeID: sizeID, ValueIDs: []uint{values["S"], values["M"]}},
	}, 5, 1200)
	require.NoError(t, err)
	require.Equal(t, []string{"SKU-Red-S", "SKU-Red-M"}, skus)

	var variants []model.ProductVariant
	require.NoError(t, db.Where("product_id = ?", product.ID).Find(&variants).Error)
	require.Len(t, variants, 2)
	for _, v := range variants {
		require.True(t, strings.HasPrefix(v.SKU, "SKU-Red-"))
	}

	var kept model.ProductVariant
	require.NoError(t, db.Where("sku = ?", "SKU-Red-S").First(&kept).Error)
	require.Equal(t, redS.ID, kept.ID)
}

func TestReconcileSKUDependsOnAttributeOrder(t *testing.T) {
	db := newTestDB(t)
	colorID, sizeID, values := seedColorSize(t, db)
	product := model.Product{Name: "Shirt", Price: 1000}
	require.NoError(t, db.Create(&product).Error)

	r := NewReconciler(db)
	skus, err := r.Reconcile(context.Background(), product.ID, []AttributeSelection{
		{AttributeID: sizeID, ValueIDs: []uint{values["S"]}},
		{AttributeID: colorID, ValueIDs: []uint{values["Red"]}},
	}, 1, 100)
	require.NoError(t, err)
	require.Equal(t, []string{"SKU-S-Red"}, skus)
}

func TestReconcileUnknownProduct(t *testing.T) {
	db := newTestDB(t)
	r := NewReconciler(db)
	_, err := r.Reconcile(context.Background(), 999, []AttributeSelection{
		{AttributeID: 1, ValueIDs: []uint{1}},
	}, 1, 100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestReconcileUnknownValue(t *testing.T) {
	db := newTestDB(t)
	product := model.Product{Name: "Shirt", Price: 1000}
	require.NoError(t, db.Create(&product).Error)

	r := NewReconciler(db)
	_, err := r.Reconcile(context.Background(), product.ID, []AttributeSelection{
		{AttributeID: 1, ValueIDs: []uint{12345}},
	}, 1, 100)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
