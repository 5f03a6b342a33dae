package repositories

import (
	"errors"

	"payflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentMethodRepository stores tokenized payment methods.
type PaymentMethodRepository interface {
	Create(m *models.PaymentMethod) error
	GetByID(id uuid.UUID) (*models.PaymentMethod, error)
	ListByAccount(accountID uuid.UUID) ([]models.PaymentMethod, error)
}

type paymentMethodRepository struct {
	db *gorm.DB
}

// NewPaymentMethodRepository creates a new payment method repository.
func NewPaymentMethodRepository(db *gorm.DB) PaymentMethodRepository {
	return &paymentMethodRepository{db: db}
}

func (r *paymentMethodRepository) Create(m *models.PaymentMethod) error {
	if err := r.db.Create(m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateToken
		}
		return err
	}
	return nil
}

func (r *paymentMethodRepository) GetByID(id uuid.UUID) (*models.PaymentMethod, error) {
	var m models.PaymentMethod
	if err := r.db.First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPaymentMethodNotFound
		}
		return nil, err
	}
	return &m, nil
}

func (r *paymentMethodRepository) ListByAccount(accountID uuid.UUID) ([]models.PaymentMethod, error) {
	var methods []models.PaymentMethod
	err := r.db.Where("account_id = ?", accountID).
		Order("created_at ASC").
		Find(&methods).Error
	return methods, err
}
