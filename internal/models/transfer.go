package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Transfer statuses. Completed and Failed are terminal; a record never
// leaves a terminal status.
const (
	TransferStatusPending   = "Pending"
	TransferStatusCompleted = "Completed"
	TransferStatusFailed    = "Failed"
)

// Transfer is the immutable record of one transfer attempt between two
// accounts. A Completed record means both balance mutations were applied
// exactly once; a Failed record means no balance changed.
type Transfer struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	FromAccountID uuid.UUID       `gorm:"type:uuid;not null;index" json:"from_account_id"`
	ToAccountID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"to_account_id"`
	Amount        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"amount"`
	Status        string          `gorm:"size:20;not null;default:'Pending'" json:"status"`
	Description   string          `gorm:"size:500" json:"description,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	CompletedAt   *time.Time      `json:"completed_at"`
}

func (t *Transfer) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
