package repositories

import (
	"context"
	"errors"

	"payflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AccountRepository is the account ledger: it owns account rows and the
// locked access used while a transfer is in flight. GetForUpdate and
// UpdateBalance are only meaningful on the repository passed into
// ExecuteInTransaction; the row locks live until that scope commits or
// rolls back. CreateTransfer exists on the same scope so a completed
// record commits atomically with the balance writes it describes.
type AccountRepository interface {
	Create(acc *models.Account) error
	GetByID(id uuid.UUID) (*models.Account, error)
	GetForUpdate(id uuid.UUID) (*models.Account, error)
	List(limit, offset int) ([]models.Account, int64, error)
	Update(acc *models.Account) error
	UpdateBalance(id uuid.UUID, balance decimal.Decimal) error
	CreateTransfer(t *models.Transfer) error
	ExecuteInTransaction(fn func(tx AccountRepository) error) error
	WithContext(ctx context.Context) AccountRepository
}

type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository creates a new account repository.
func NewAccountRepository(db *gorm.DB) AccountRepository {
	return &accountRepository{db: db}
}

func (r *accountRepository) Create(acc *models.Account) error {
	if err := r.db.Create(acc).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

func (r *accountRepository) GetByID(id uuid.UUID) (*models.Account, error) {
	var acc models.Account
	if err := r.db.First(&acc, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

// GetForUpdate fetches an account under an exclusive row lock
// (SELECT ... FOR UPDATE). Other writers of the same row block until
// the enclosing transaction finishes.
func (r *accountRepository) GetForUpdate(id uuid.UUID) (*models.Account, error) {
	var acc models.Account
	err := r.db.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&acc, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &acc, nil
}

func (r *accountRepository) List(limit, offset int) ([]models.Account, int64, error) {
	var accounts []models.Account
	var total int64

	if err := r.db.Model(&models.Account{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := r.db.Order("created_at ASC").Limit(limit).Offset(offset).Find(&accounts).Error
	if err != nil {
		return nil, 0, err
	}
	return accounts, total, nil
}

// Update persists profile columns only. Balance is deliberately not in
// the column list: it may have moved since the caller's read, and only
// the locked transfer scope writes it.
func (r *accountRepository) Update(acc *models.Account) error {
	err := r.db.Model(acc).Select("name", "email").Updates(acc).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateEmail
		}
		return err
	}
	return nil
}

// UpdateBalance writes an already-computed balance. Sufficiency is the
// caller's concern: the same call applies both the debit and the credit
// side of a transfer.
func (r *accountRepository) UpdateBalance(id uuid.UUID, balance decimal.Decimal) error {
	return r.db.Model(&models.Account{}).
		Where("id = ?", id).
		Update("balance", balance).Error
}

func (r *accountRepository) CreateTransfer(t *models.Transfer) error {
	if err := r.db.Create(t).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateRecord
		}
		return err
	}
	return nil
}

// ExecuteInTransaction runs fn against a transaction-scoped repository.
// All writes made through that repository commit or roll back together.
func (r *accountRepository) ExecuteInTransaction(fn func(tx AccountRepository) error) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		return fn(&accountRepository{db: tx})
	})
}

func (r *accountRepository) WithContext(ctx context.Context) AccountRepository {
	return &accountRepository{db: r.db.WithContext(ctx)}
}
