package repositories

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/kidstore/app/models"
	"gorm.io/gorm"
)

type PaymentRepository interface {
	Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error
	FindByGatewayOrderID(ctx context.Context, tx *gorm.DB, gatewayOrderID string) (*models.Payment, error)
	FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error)
	UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status models.PaymentStatus) error

	CreateIntent(ctx context.Context, intent *models.PaymentIntent) error
	FindIntent(ctx context.Context, tx *gorm.DB, gatewayOrderID string) (*models.PaymentIntent, error)
	ConsumeIntent(ctx context.Context, tx *gorm.DB, intentID, orderID string) (bool, error)
	HoldIntent(ctx context.Context, intentID, paymentID, signature string) (bool, error)
	ListHeldIntents(ctx context.Context) ([]models.PaymentIntent, error)
}

type paymentRepository struct {
	db *gorm.DB
}

func NewPaymentRepository(db *gorm.DB) PaymentRepository {
	return &paymentRepository{db: db}
}

func (r *paymentRepository) Create(ctx context.Context, tx *gorm.DB, payment *models.Payment) error {
	if err := conn(r.db, tx).WithContext(ctx).Create(payment).Error; err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}
	return nil
}

func (r *paymentRepository) FindByGatewayOrderID(ctx context.Context, tx *gorm.DB, gatewayOrderID string) (*models.Payment, error) {
	var payment models.Payment
	if err := conn(r.db, tx).WithContext(ctx).First(&payment, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &payment, nil
}

func (r *paymentRepository) FindByOrderID(ctx context.Context, orderID string) (*models.Payment, error) {
	var payment models.Payment
	if err := r.db.WithContext(ctx).First(&payment, "order_id = ?", orderID).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &payment, nil
}

func (r *paymentRepository) UpdateStatus(ctx context.Context, tx *gorm.DB, orderID string, status models.PaymentStatus) error {
	return conn(r.db, tx).WithContext(ctx).
		Model(&models.Payment{}).
		Where("order_id = ?", orderID).
		Update("status", status).Error
}

func (r *paymentRepository) CreateIntent(ctx context.Context, intent *models.PaymentIntent) error {
	if err := r.db.WithContext(ctx).Create(intent).Error; err != nil {
		return fmt.Errorf("failed to record payment intent: %w", err)
	}
	return nil
}

func (r *paymentRepository) FindIntent(ctx context.Context, tx *gorm.DB, gatewayOrderID string) (*models.PaymentIntent, error) {
	var intent models.PaymentIntent
	if err := conn(r.db, tx).WithContext(ctx).First(&intent, "gateway_order_id = ?", gatewayOrderID).Error; err != nil {
		return nil, notFoundAsNil(err)
	}
	return &intent, nil
}

// ConsumeIntent flips a CREATED intent to CONSUMED and reports false when
// another request already consumed it.
func (r *paymentRepository) ConsumeIntent(ctx context.Context, tx *gorm.DB, intentID, orderID string) (bool, error) {
	result := conn(r.db, tx).WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", intentID, models.IntentStatusCreated).
		Updates(map[string]interface{}{
			"status":   models.IntentStatusConsumed,
			"order_id": orderID,
		})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// HoldIntent marks a CREATED intent MISMATCHED and keeps the gateway payment
// reference on it.
func (r *paymentRepository) HoldIntent(ctx context.Context, intentID, paymentID, signature string) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.PaymentIntent{}).
		Where("id = ? AND status = ?", intentID, models.IntentStatusCreated).
		Updates(map[string]interface{}{
			"status":             models.IntentStatusMismatched,
			"gateway_payment_id": paymentID,
			"gateway_signature":  signature,
		})
	if result.Error != nil {
		return false, fmt.Errorf("failed to hold payment intent: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

func (r *paymentRepository) ListHeldIntents(ctx context.Context) ([]models.PaymentIntent, error) {
	var intents []models.PaymentIntent
	err := r.db.WithContext(ctx).
		Where("status = ?", models.IntentStatusMismatched).
		Order("updated_at desc").
		Find(&intents).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list held payment intents: %w", err)
	}
	return intents, nil
}
