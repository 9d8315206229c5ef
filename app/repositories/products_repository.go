package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rakhulsr/kidstore/app/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrUnknownCategory = errors.New("unknown category id")

type ProductFilter struct {
	Query       string
	CategoryIDs []string
	ActiveOnly  bool
	Page        Page
}

type ProductRepository interface {
	GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Product, error)
	GetBySlug(ctx context.Context, slug string) (*models.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error)
	LockByIDs(ctx context.Context, tx *gorm.DB, ids []string) (map[string]*models.Product, error)
	DecrementStock(ctx context.Context, tx *gorm.DB, productID string, qty int) (bool, error)
	DecrementVariantStock(ctx context.Context, tx *gorm.DB, variantID string, qty int) (bool, error)
	LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error)

	Create(ctx context.Context, product *models.Product, categoryIDs []string) error
	Update(ctx context.Context, product *models.Product, categoryIDs []string) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db}
}

func withCatalog(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Images", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") }).
		Preload("Variants", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Preload("Categories")
}

func (p *productRepository) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Product, error) {
	var product models.Product
	if err := withCatalog(conn(p.db, tx).WithContext(ctx)).First(&product, "id = ?", id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &product, nil
}

func (p *productRepository) GetBySlug(ctx context.Context, slug string) (*models.Product, error) {
	var product models.Product
	if err := withCatalog(p.db.WithContext(ctx)).First(&product, "slug = ?", slug).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &product, nil
}

func (p *productRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, int64, error) {
	page := filter.Page.Normalize()

	query := p.db.WithContext(ctx).Model(&models.Product{})
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}
	if q := strings.TrimSpace(filter.Query); q != "" {
		keyword := "%" + strings.ToLower(q) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(description) LIKE ? OR LOWER(sku) LIKE ?", keyword, keyword, keyword)
	}
	if len(filter.CategoryIDs) > 0 {
		sub := p.db.Table("product_categories").Select("product_id").Where("category_id IN ?", filter.CategoryIDs)
		query = query.Where("id IN (?)", sub)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	var products []models.Product
	err := withCatalog(query).
		Order("created_at DESC").
		Limit(page.Limit).
		Offset(page.Offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, total, nil
}

// LockByIDs reads the products with SELECT ... FOR UPDATE inside tx.
func (p *productRepository) LockByIDs(ctx context.Context, tx *gorm.DB, ids []string) (map[string]*models.Product, error) {
	var products []models.Product
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	byID := make(map[string]*models.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}
	return byID, nil
}

// DecrementStock reports false when fewer than qty units remain.
func (p *productRepository) DecrementStock(ctx context.Context, tx *gorm.DB, productID string, qty int) (bool, error) {
	result := conn(p.db, tx).WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (p *productRepository) DecrementVariantStock(ctx context.Context, tx *gorm.DB, variantID string, qty int) (bool, error) {
	result := conn(p.db, tx).WithContext(ctx).
		Model(&models.ProductVariant{}).
		Where("id = ? AND quantity >= ?", variantID, qty).
		UpdateColumn("quantity", gorm.Expr("quantity - ?", qty))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

func (p *productRepository) LowStock(ctx context.Context, threshold, limit int) ([]models.Product, error) {
	var products []models.Product
	err := p.db.WithContext(ctx).
		Where("is_active = ? AND quantity <= ?", true, threshold).
		Order("quantity ASC, name ASC").
		Limit(limit).
		Find(&products).Error
	return products, err
}

func (p *productRepository) categories(tx *gorm.DB, ids []string) ([]models.Category, error) {
	var categories []models.Category
	if len(ids) == 0 {
		return categories, nil
	}
	if err := tx.Where("id IN ?", ids).Find(&categories).Error; err != nil {
		return nil, err
	}
	if len(categories) != len(uniqueStrings(ids)) {
		return nil, ErrUnknownCategory
	}
	return categories, nil
}

func (p *productRepository) Create(ctx context.Context, product *models.Product, categoryIDs []string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		categories, err := p.categories(tx, categoryIDs)
		if err != nil {
			return err
		}
		product.Categories = categories
		return tx.Create(product).Error
	})
}

// Update rewrites the scalar fields, replaces images and categories, and
// reconciles variants by id so existing cart lines keep their variant.
func (p *productRepository) Update(ctx context.Context, product *models.Product, categoryIDs []string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Count(&existing).Error; err != nil {
			return err
		}
		if existing == 0 {
			return gorm.ErrRecordNotFound
		}

		err := tx.Model(&models.Product{}).Where("id = ?", product.ID).Updates(map[string]interface{}{
			"name":             product.Name,
			"slug":             product.Slug,
			"description":      product.Description,
			"sku":              product.Sku,
			"price":            product.Price,
			"compare_at_price": product.CompareAtPrice,
			"quantity":         product.Quantity,
			"is_active":        product.IsActive,
		}).Error
		if err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", product.ID).Delete(&models.ProductImage{}).Error; err != nil {
			return err
		}
		for i := range product.Images {
			product.Images[i].ID = ""
			product.Images[i].ProductID = product.ID
		}
		if len(product.Images) > 0 {
			if err := tx.Create(&product.Images).Error; err != nil {
				return err
			}
		}

		keep := make([]string, 0, len(product.Variants))
		for i := range product.Variants {
			v := &product.Variants[i]
			v.ProductID = product.ID
			if v.ID != "" {
				err := tx.Model(&models.ProductVariant{}).
					Where("id = ? AND product_id = ?", v.ID, product.ID).
					Updates(map[string]interface{}{
						"name":           v.Name,
						"sku":            v.Sku,
						"price_override": v.PriceOverride,
						"quantity":       v.Quantity,
						"is_active":      v.IsActive,
					}).Error
				if err != nil {
					return err
				}
			} else if err := tx.Create(v).Error; err != nil {
				return err
			}
			keep = append(keep, v.ID)
		}
		stale := tx.Where("product_id = ?", product.ID)
		if len(keep) > 0 {
			stale = stale.Where("id NOT IN ?", keep)
		}
		if err := stale.Delete(&models.ProductVariant{}).Error; err != nil {
			return err
		}

		categories, err := p.categories(tx, categoryIDs)
		if err != nil {
			return err
		}
		return tx.Model(&models.Product{ID: product.ID}).Association("Categories").Replace(categories)
	})
}

func (p *productRepository) SetActive(ctx context.Context, id string, active bool) error {
	result := p.db.WithContext(ctx).Model(&models.Product{}).Where("id = ?", id).Update("is_active", active)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (p *productRepository) Delete(ctx context.Context, id string) error {
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		product := &models.Product{ID: id}
		if err := tx.Model(product).Association("Categories").Clear(); err != nil {
			return err
		}
		for _, model := range []interface{}{&models.ProductImage{}, &models.ProductVariant{}, &models.CartItem{}, &models.WishlistItem{}} {
			if err := tx.Where("product_id = ?", id).Delete(model).Error; err != nil {
				return err
			}
		}
		result := tx.Delete(&models.Product{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
