package repositories

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/kidstore/app/models"
	"gorm.io/gorm"
)

type HomeSectionRepository interface {
	List(ctx context.Context, activeOnly bool) ([]models.HomeSection, error)
	GetByID(ctx context.Context, id string) (*models.HomeSection, error)
	Create(ctx context.Context, section *models.HomeSection) error
	Update(ctx context.Context, section *models.HomeSection) error
	Delete(ctx context.Context, id string) error
}

type homeSectionRepository struct {
	db *gorm.DB
}

func NewHomeSectionRepository(db *gorm.DB) HomeSectionRepository {
	return &homeSectionRepository{db: db}
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("display_order ASC, created_at ASC")
}

func (r *homeSectionRepository) List(ctx context.Context, activeOnly bool) ([]models.HomeSection, error) {
	var sections []models.HomeSection
	query := r.db.WithContext(ctx).Preload("Items", orderedItems)
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}
	if err := query.Order("display_order ASC, created_at ASC").Find(&sections).Error; err != nil {
		return nil, fmt.Errorf("failed to list home sections: %w", err)
	}
	return sections, nil
}

func (r *homeSectionRepository) GetByID(ctx context.Context, id string) (*models.HomeSection, error) {
	var section models.HomeSection
	if err := r.db.WithContext(ctx).Preload("Items", orderedItems).First(&section, "id = ?", id).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &section, nil
}

func (r *homeSectionRepository) Create(ctx context.Context, section *models.HomeSection) error {
	return r.db.WithContext(ctx).Create(section).Error
}

// Update rewrites the section row and replaces its items wholesale.
func (r *homeSectionRepository) Update(ctx context.Context, section *models.HomeSection) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.HomeSection{}).Where("id = ?", section.ID).Updates(map[string]interface{}{
			"title":         section.Title,
			"subtitle":      section.Subtitle,
			"layout":        section.Layout,
			"display_order": section.DisplayOrder,
			"is_active":     section.IsActive,
		})
		if result.Error != nil {
			return result.Error
		}

		if err := tx.Where("section_id = ?", section.ID).Delete(&models.HomeSectionItem{}).Error; err != nil {
			return err
		}
		for i := range section.Items {
			section.Items[i].ID = ""
			section.Items[i].SectionID = section.ID
		}
		if len(section.Items) == 0 {
			return nil
		}
		return tx.Create(&section.Items).Error
	})
}

func (r *homeSectionRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("section_id = ?", id).Delete(&models.HomeSectionItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.HomeSection{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}
