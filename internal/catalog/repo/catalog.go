package repo

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/catalog/models"
	"github.com/Skotchmaster/storefront/internal/catalog/transport"
)

// ErrOutOfStock is returned when a conditional stock decrement matched no row.
var ErrOutOfStock = errors.New("stock below requested quantity")

type GormRepo struct {
	DB *gorm.DB
}

// WithTx returns a repo bound to an open transaction.
func (r *GormRepo) WithTx(tx *gorm.DB) *GormRepo {
	return &GormRepo{DB: tx}
}

func (r *GormRepo) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&product).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// GetProducts loads the given ids; missing ids are simply absent from the result.
func (r *GormRepo) GetProducts(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.Product, error) {
	out := make(map[uuid.UUID]models.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	var items []models.Product
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&items).Error; err != nil {
		return nil, err
	}
	for _, p := range items {
		out[p.ID] = p
	}
	return out, nil
}

func applyFilter(q *gorm.DB, f transport.ListFilter) *gorm.DB {
	if f.Category != "" {
		q = q.Where("category = ?", f.Category)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ?", like, like)
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Featured {
		q = q.Where("featured = ?", true)
	}
	return q
}

func (r *GormRepo) ListProducts(ctx context.Context, f transport.ListFilter, offset, limit int) (int64, []models.Product, error) {
	var total int64
	if err := applyFilter(r.DB.WithContext(ctx).Model(&models.Product{}), f).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	items := make([]models.Product, 0, limit)
	if err := applyFilter(r.DB.WithContext(ctx).Model(&models.Product{}), f).
		Order("created_at DESC").Order("id ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return 0, nil, err
	}

	return total, items, nil
}

// SearchProducts is the database fallback when no search index is configured.
func (r *GormRepo) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	return r.ListProducts(ctx, transport.ListFilter{Search: q}, offset, limit)
}

func (r *GormRepo) CreateProduct(ctx context.Context, prod *models.Product) error {
	return r.DB.WithContext(ctx).Create(prod).Error
}

// UpdateProductColumns writes only the named columns of prod. Columns left out,
// stock in particular, keep whatever concurrent transactions wrote.
func (r *GormRepo) UpdateProductColumns(ctx context.Context, prod *models.Product, columns ...string) error {
	if len(columns) == 0 {
		return nil
	}
	res := r.DB.WithContext(ctx).Model(prod).Select(columns).Updates(prod)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormRepo) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Product{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DecrementStock takes qty units off a product only if that many are on hand.
func (r *GormRepo) DecrementStock(ctx context.Context, id uuid.UUID, qty int64) error {
	res := r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND stock >= ?", id, qty).
		Update("stock", gorm.Expr("stock - ?", qty))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrOutOfStock
	}
	return nil
}

func (r *GormRepo) IncrementStock(ctx context.Context, id uuid.UUID, qty int64) error {
	return r.DB.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", id).
		Update("stock", gorm.Expr("stock + ?", qty)).Error
}

// EachBatch walks the whole catalog in id order.
func (r *GormRepo) EachBatch(ctx context.Context, size int, fn func([]models.Product) error) error {
	var batch []models.Product
	res := r.DB.WithContext(ctx).Order("id ASC").FindInBatches(&batch, size, func(tx *gorm.DB, _ int) error {
		return fn(batch)
	})
	return res.Error
}
