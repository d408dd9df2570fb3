package repo

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/catalog/models"
	"github.com/Skotchmaster/storefront/internal/catalog/transport"
	"github.com/Skotchmaster/storefront/internal/storetest"
)

func seed(t *testing.T, r *GormRepo, name, category string, price int64, stock int64, created time.Time) *models.Product {
	t.Helper()
	p := &models.Product{
		Name:        name,
		Description: name + " description",
		Price:       decimal.NewFromInt(price),
		Category:    category,
		Images:      models.StringList{"/img/" + name + ".png"},
		Stock:       stock,
		Sizes:       models.StringList{"S", "M"},
		CreatedAt:   created,
	}
	require.NoError(t, r.CreateProduct(context.Background(), p))
	return p
}

func TestGetProductRoundTrip(t *testing.T) {
	r := &GormRepo{DB: storetest.NewDB(t)}
	p := seed(t, r, "shirt", "tops", 500, 5, time.Now().UTC())

	got, err := r.GetProduct(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, "shirt", got.Name)
	assert.True(t, decimal.NewFromInt(500).Equal(got.Price))
	assert.Equal(t, models.StringList{"/img/shirt.png"}, got.Images)
	assert.Equal(t, models.StringList{"S", "M"}, got.Sizes)
	assert.Nil(t, got.Colors)

	_, err = r.GetProduct(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListProductsFiltersAndOrder(t *testing.T) {
	r := &GormRepo{DB: storetest.NewDB(t)}
	base := time.Now().UTC().Add(-time.Hour)
	seed(t, r, "old shirt", "tops", 300, 1, base)
	newest := seed(t, r, "new shirt", "tops", 900, 1, base.Add(2*time.Minute))
	seed(t, r, "jeans", "bottoms", 1500, 1, base.Add(time.Minute))

	total, items, err := r.ListProducts(context.Background(), transport.ListFilter{}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	require.Len(t, items, 3)
	assert.Equal(t, newest.ID, items[0].ID)

	total, items, err = r.ListProducts(context.Background(), transport.ListFilter{Category: "tops"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	assert.Len(t, items, 2)

	minP, maxP := decimal.NewFromInt(400), decimal.NewFromInt(1000)
	total, items, err = r.ListProducts(context.Background(), transport.ListFilter{MinPrice: &minP, MaxPrice: &maxP}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, "new shirt", items[0].Name)

	total, _, err = r.ListProducts(context.Background(), transport.ListFilter{Search: "SHIRT"}, 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)

	total, items, err = r.ListProducts(context.Background(), transport.ListFilter{}, 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 3, total)
	assert.Len(t, items, 1)
}

func TestDecrementStockIsConditional(t *testing.T) {
	r := &GormRepo{DB: storetest.NewDB(t)}
	p := seed(t, r, "shirt", "tops", 500, 5, time.Now().UTC())
	ctx := context.Background()

	require.NoError(t, r.DecrementStock(ctx, p.ID, 2))
	assert.ErrorIs(t, r.DecrementStock(ctx, p.ID, 4), ErrOutOfStock)

	got, err := r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, got.Stock)

	require.NoError(t, r.IncrementStock(ctx, p.ID, 2))
	got, err = r.GetProduct(ctx, p.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 5, got.Stock)
}

func TestDeleteProduct(t *testing.T) {
	r := &GormRepo{DB: storetest.NewDB(t)}
	p := seed(t, r, "shirt", "tops", 500, 5, time.Now().UTC())

	require.NoError(t, r.DeleteProduct(context.Background(), p.ID))
	assert.ErrorIs(t, r.DeleteProduct(context.Background(), p.ID), gorm.ErrRecordNotFound)
}

func TestEachBatch(t *testing.T) {
	r := &GormRepo{DB: storetest.NewDB(t)}
	for _, n := range []string{"a", "b", "c"} {
		seed(t, r, n, "tops", 100, 1, time.Now().UTC())
	}

	seen := 0
	err := r.EachBatch(context.Background(), 2, func(batch []models.Product) error {
		seen += len(batch)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, seen)
}
