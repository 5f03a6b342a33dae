package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PaymentMethod stores a tokenized payment instrument. TokenID is an
// opaque network token, never a raw card number, and is globally unique.
type PaymentMethod struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	AccountID  uuid.UUID `gorm:"type:uuid;not null;index" json:"account_id"`
	MethodType string    `gorm:"size:100;not null" json:"method_type"`
	TokenID    string    `gorm:"size:255;uniqueIndex;not null" json:"token_id"`
	IsActive   bool      `gorm:"not null;default:true" json:"is_active"`
	CreatedAt  time.Time `json:"created_at"`
}

func (m *PaymentMethod) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
