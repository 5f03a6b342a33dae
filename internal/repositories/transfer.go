package repositories

import (
	"errors"

	"payflow/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// TransferRepository is the transfer record store: an append-mostly log
// of attempts. Reads never mutate a record's status.
type TransferRepository interface {
	Create(t *models.Transfer) error
	GetByID(id uuid.UUID) (*models.Transfer, error)
	ListByAccount(accountID uuid.UUID, limit, offset int) ([]models.Transfer, int64, error)
}

type transferRepository struct {
	db *gorm.DB
}

// NewTransferRepository creates a new transfer repository.
func NewTransferRepository(db *gorm.DB) TransferRepository {
	return &transferRepository{db: db}
}

func (r *transferRepository) Create(t *models.Transfer) error {
	if err := r.db.Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRecord
		}
		return err
	}
	return nil
}

func (r *transferRepository) GetByID(id uuid.UUID) (*models.Transfer, error) {
	var t models.Transfer
	if err := r.db.First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return &t, nil
}

// ListByAccount returns transfers touching the account on either side,
// in chronological order.
func (r *transferRepository) ListByAccount(accountID uuid.UUID, limit, offset int) ([]models.Transfer, int64, error) {
	var transfers []models.Transfer
	var total int64

	// New session, so Count and Find each run on a clean statement
	// instead of accumulating conditions across executions.
	q := r.db.Model(&models.Transfer{}).
		Where("from_account_id = ? OR to_account_id = ?", accountID, accountID).
		Session(&gorm.Session{})
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Order("created_at ASC").Limit(limit).Offset(offset).Find(&transfers).Error
	if err != nil {
		return nil, 0, err
	}
	return transfers, total, nil
}
