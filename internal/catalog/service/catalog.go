package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/Skotchmaster/storefront/internal/apperr"
	"github.com/Skotchmaster/storefront/internal/catalog/models"
	"github.com/Skotchmaster/storefront/internal/catalog/repo"
	"github.com/Skotchmaster/storefront/internal/catalog/search"
	"github.com/Skotchmaster/storefront/internal/catalog/transport"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogService struct {
	Repo  *repo.GormRepo
	Index search.Index
}

func (s *CatalogService) index() search.Index {
	if s.Index == nil {
		return search.Noop{}
	}
	return s.Index
}

func notFoundOr(err error, id uuid.UUID) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.New(apperr.KindNotFound, "product %s not found", id)
	}
	return err
}

func (s *CatalogService) GetProduct(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	return p, nil
}

func (s *CatalogService) ListProducts(ctx context.Context, f transport.ListFilter, offset, limit int) (int64, []models.Product, error) {
	if f.MinPrice != nil && f.MaxPrice != nil && f.MinPrice.GreaterThan(*f.MaxPrice) {
		return 0, nil, apperr.New(apperr.KindValidation, "minPrice must not exceed maxPrice")
	}
	return s.Repo.ListProducts(ctx, f, offset, limit)
}

// SearchProducts queries the search index, or the database when none is configured
// or the index is unreachable.
func (s *CatalogService) SearchProducts(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, nil, apperr.New(apperr.KindValidation, "query is required")
	}

	if idx := s.index(); idx.Enabled() {
		total, hits, err := idx.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.fresh(ctx, hits)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "reason", "falling back to database", "error", err)
	}
	return s.Repo.SearchProducts(ctx, q, offset, limit)
}

// fresh replaces index hits with the current database rows, keeping hit order.
// The index is not updated on every stock change, so its copy of stock is stale.
func (s *CatalogService) fresh(ctx context.Context, hits []models.Product) ([]models.Product, error) {
	ids := make([]uuid.UUID, 0, len(hits))
	for _, h := range hits {
		ids = append(ids, h.ID)
	}
	byID, err := s.Repo.GetProducts(ctx, ids)
	if err != nil {
		return nil, err
	}

	items := make([]models.Product, 0, len(hits))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			items = append(items, p)
		}
	}
	return items, nil
}

func validatePricing(price decimal.Decimal, discount decimal.NullDecimal) error {
	if price.IsNegative() {
		return apperr.New(apperr.KindValidation, "price must be >= 0")
	}
	if discount.Valid {
		if discount.Decimal.IsNegative() {
			return apperr.New(apperr.KindValidation, "discountPrice must be >= 0")
		}
		if !discount.Decimal.LessThan(price) {
			return apperr.New(apperr.KindValidation, "discountPrice must be less than price")
		}
	}
	return nil
}

func validateProduct(p *models.Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return apperr.New(apperr.KindValidation, "name is required")
	case strings.TrimSpace(p.Description) == "":
		return apperr.New(apperr.KindValidation, "description is required")
	case strings.TrimSpace(p.Category) == "":
		return apperr.New(apperr.KindValidation, "category is required")
	case len(p.Images) == 0:
		return apperr.New(apperr.KindValidation, "at least one image is required")
	case p.Stock < 0:
		return apperr.New(apperr.KindValidation, "stock must be >= 0")
	}
	return validatePricing(p.Price, p.DiscountPrice)
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func (s *CatalogService) CreateProduct(ctx context.Context, req transport.CreateProductRequest) (*models.Product, error) {
	p := &models.Product{
		Name:          strings.TrimSpace(req.Name),
		Description:   strings.TrimSpace(req.Description),
		Price:         req.Price,
		DiscountPrice: nullDecimal(req.DiscountPrice),
		Category:      strings.TrimSpace(req.Category),
		Images:        models.StringList(req.Images),
		Stock:         req.Stock,
		Sizes:         models.StringList(req.Sizes),
		Colors:        models.StringList(req.Colors),
		Featured:      req.Featured,
	}
	if err := validateProduct(p); err != nil {
		return nil, err
	}

	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}
	s.mirror(ctx, p)
	return p, nil
}

func (s *CatalogService) PatchProduct(ctx context.Context, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id)
	}

	var cols []string
	if req.Name != nil {
		p.Name = strings.TrimSpace(*req.Name)
		cols = append(cols, "name")
	}
	if req.Description != nil {
		p.Description = strings.TrimSpace(*req.Description)
		cols = append(cols, "description")
	}
	if req.Price != nil {
		p.Price = *req.Price
		cols = append(cols, "price")
	}
	if req.ClearDiscount {
		p.DiscountPrice = decimal.NullDecimal{}
		cols = append(cols, "discount_price")
	} else if req.DiscountPrice != nil {
		p.DiscountPrice = decimal.NewNullDecimal(*req.DiscountPrice)
		cols = append(cols, "discount_price")
	}
	if req.Category != nil {
		p.Category = strings.TrimSpace(*req.Category)
		cols = append(cols, "category")
	}
	if req.Images != nil {
		p.Images = models.StringList(req.Images)
		cols = append(cols, "images")
	}
	if req.Stock != nil {
		p.Stock = *req.Stock
		cols = append(cols, "stock")
	}
	if req.Sizes != nil {
		p.Sizes = models.StringList(req.Sizes)
		cols = append(cols, "sizes")
	}
	if req.Colors != nil {
		p.Colors = models.StringList(req.Colors)
		cols = append(cols, "colors")
	}
	if req.Featured != nil {
		p.Featured = *req.Featured
		cols = append(cols, "featured")
	}

	if err := validateProduct(p); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateProductColumns(ctx, p, cols...); err != nil {
		return nil, notFoundOr(err, id)
	}

	p, err = s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFoundOr(err, id)
	}
	s.mirror(ctx, p)
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFoundOr(err, id)
	}
	if err := s.index().Delete(ctx, id); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "op", "delete", "product_id", id, "error", err)
	}
	return nil
}

// Reindex pushes every product into the search index and returns how many were sent.
func (s *CatalogService) Reindex(ctx context.Context, batchSize int) (int, error) {
	idx := s.index()
	if !idx.Enabled() {
		return 0, errors.New("search index is not configured")
	}

	n := 0
	err := s.Repo.EachBatch(ctx, batchSize, func(batch []models.Product) error {
		for _, p := range batch {
			if err := idx.Upsert(ctx, p); err != nil {
				return err
			}
			n++
		}
		return nil
	})
	return n, err
}

func (s *CatalogService) mirror(ctx context.Context, p *models.Product) {
	if err := s.index().Upsert(ctx, *p); err != nil {
		logging.FromContext(ctx).Warn("search_index_error", "op", "upsert", "product_id", p.ID, "error", err)
	}
}
