package repositories

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/kidstore/app/models"
	"gorm.io/gorm"
)

type AddressRepository interface {
	CreateAddress(ctx context.Context, address *models.Address) error
	FindAddressByID(ctx context.Context, tx *gorm.DB, id string) (*models.Address, error)
	FindAddressesByUserID(ctx context.Context, userID string) ([]models.Address, error)
	UpdateAddress(ctx context.Context, address *models.Address) error
	DeleteAddress(ctx context.Context, userID, id string) error
	SetDefaultAddress(ctx context.Context, userID, addressID string) error
}

type GormAddressRepository struct {
	db *gorm.DB
}

func NewGormAddressRepository(db *gorm.DB) *GormAddressRepository {
	return &GormAddressRepository{db: db}
}

func clearDefaults(tx *gorm.DB, userID, exceptID string) error {
	return tx.Model(&models.Address{}).
		Where("user_id = ? AND id <> ?", userID, exceptID).
		Update("is_default", false).Error
}

// CreateAddress makes the user's first address the default and clears the
// other defaults when the new one asks to be default.
func (r *GormAddressRepository) CreateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Address{}).Where("user_id = ?", address.UserID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			address.IsDefault = true
		}

		if err := tx.Create(address).Error; err != nil {
			return fmt.Errorf("failed to create address: %w", err)
		}
		if address.IsDefault {
			if err := clearDefaults(tx, address.UserID, address.ID); err != nil {
				return fmt.Errorf("failed to unset old default address: %w", err)
			}
		}
		return nil
	})
}

func (r *GormAddressRepository) FindAddressByID(ctx context.Context, tx *gorm.DB, id string) (*models.Address, error) {
	var address models.Address
	if err := conn(r.db, tx).WithContext(ctx).First(&address, "id = ?", id).Error; err != nil {
		if err = notFoundAsNil(err); err != nil {
			return nil, fmt.Errorf("failed to find address by ID: %w", err)
		}
		return nil, nil
	}
	return &address, nil
}

func (r *GormAddressRepository) FindAddressesByUserID(ctx context.Context, userID string) ([]models.Address, error) {
	var addresses []models.Address
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("is_default DESC, created_at DESC").
		Find(&addresses).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find addresses by user ID: %w", err)
	}
	return addresses, nil
}

func (r *GormAddressRepository) UpdateAddress(ctx context.Context, address *models.Address) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Model(&models.Address{}).
			Where("id = ? AND user_id = ?", address.ID, address.UserID).
			Updates(map[string]interface{}{
				"name":    address.Name,
				"phone":   address.Phone,
				"line1":   address.Line1,
				"line2":   address.Line2,
				"city":    address.City,
				"state":   address.State,
				"pincode": address.Pincode,
				"country": address.Country,
			}).Error
		if err != nil {
			return fmt.Errorf("failed to update address: %w", err)
		}
		if address.IsDefault {
			if err := setDefault(tx, address.UserID, address.ID); err != nil {
				return err
			}
		}
		return nil
	})
}

// DeleteAddress promotes the newest remaining address when the default is removed.
func (r *GormAddressRepository) DeleteAddress(ctx context.Context, userID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var address models.Address
		if err := tx.First(&address, "id = ? AND user_id = ?", id, userID).Error; err != nil {
			return err
		}
		if err := tx.Delete(&address).Error; err != nil {
			return fmt.Errorf("failed to delete address: %w", err)
		}
		if !address.IsDefault {
			return nil
		}

		var next models.Address
		err := tx.Where("user_id = ?", userID).Order("created_at DESC").First(&next).Error
		if err != nil {
			return notFoundAsNil(err)
		}
		return tx.Model(&next).Update("is_default", true).Error
	})
}

func setDefault(tx *gorm.DB, userID, addressID string) error {
	if err := tx.Model(&models.Address{}).Where("user_id = ?", userID).Update("is_default", false).Error; err != nil {
		return fmt.Errorf("failed to unset existing default addresses: %w", err)
	}
	result := tx.Model(&models.Address{}).Where("id = ? AND user_id = ?", addressID, userID).Update("is_default", true)
	if result.Error != nil {
		return fmt.Errorf("failed to set new default address: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *GormAddressRepository) SetDefaultAddress(ctx context.Context, userID, addressID string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return setDefault(tx, userID, addressID)
	})
}
