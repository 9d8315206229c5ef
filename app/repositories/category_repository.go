package repositories

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/kidstore/app/models"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *models.Category) error
	GetByID(ctx context.Context, id string) (*models.Category, error)
	GetBySlug(ctx context.Context, slug string) (*models.Category, error)
	GetAll(ctx context.Context, activeOnly bool) ([]models.Category, error)
	Update(ctx context.Context, category *models.Category) error
	Delete(ctx context.Context, id string) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Omit("Children", "Products").Create(category).Error
}

func (r *categoryRepository) GetByID(ctx context.Context, id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &category, nil
}

func (r *categoryRepository) GetBySlug(ctx context.Context, slug string) (*models.Category, error) {
	var category models.Category
	if err := r.db.WithContext(ctx).First(&category, "slug = ?", slug).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &category, nil
}

// GetAll returns the flat list ordered for display; callers build the tree.
func (r *categoryRepository) GetAll(ctx context.Context, activeOnly bool) ([]models.Category, error) {
	var categories []models.Category
	query := r.db.WithContext(ctx)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("display_order ASC, name ASC").Find(&categories).Error; err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *models.Category) error {
	return r.db.WithContext(ctx).Model(&models.Category{}).Where("id = ?", category.ID).Updates(map[string]interface{}{
		"name":          category.Name,
		"slug":          category.Slug,
		"description":   category.Description,
		"image_url":     category.ImageURL,
		"parent_id":     category.ParentID,
		"is_active":     category.IsActive,
		"display_order": category.DisplayOrder,
	}).Error
}

// Delete lifts the children to the deleted category's parent before removing it.
func (r *categoryRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var category models.Category
		if err := tx.First(&category, "id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.Category{}).Where("parent_id = ?", id).Update("parent_id", category.ParentID).Error; err != nil {
			return err
		}
		if err := tx.Model(&category).Association("Products").Clear(); err != nil {
			return err
		}
		return tx.Delete(&category).Error
	})
}
