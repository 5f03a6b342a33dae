// Package paymentmethod manages tokenized payment instruments. Tokens
// are opaque references issued elsewhere; nothing here talks to a card
// network.
package paymentmethod

import (
	"context"
	"errors"

	"payflow/internal/models"
	"payflow/internal/repositories"

	"github.com/google/uuid"
)

// Service errors
var (
	ErrAccountNotFound = errors.New("account not found")
	ErrMethodNotFound  = errors.New("payment method not found")
	ErrTokenExists     = errors.New("payment method with this token already exists")
)

// CreateRequest carries the fields for a new payment method.
type CreateRequest struct {
	AccountID  uuid.UUID
	MethodType string
	TokenID    string
}

// Service manages tokenized payment methods.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*models.PaymentMethod, error)
	Get(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.PaymentMethod, error)
}

type service struct {
	repo     repositories.PaymentMethodRepository
	accounts repositories.AccountRepository
}

// NewService creates a new payment method service.
func NewService(repo repositories.PaymentMethodRepository, accounts repositories.AccountRepository) Service {
	if repo == nil {
		panic("payment method repository is required")
	}
	if accounts == nil {
		panic("account repository is required")
	}
	return &service{repo: repo, accounts: accounts}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*models.PaymentMethod, error) {
	if _, err := s.accounts.WithContext(ctx).GetByID(req.AccountID); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	method := &models.PaymentMethod{
		AccountID:  req.AccountID,
		MethodType: req.MethodType,
		TokenID:    req.TokenID,
		IsActive:   true,
	}
	if err := s.repo.Create(method); err != nil {
		if errors.Is(err, repositories.ErrDuplicateToken) {
			return nil, ErrTokenExists
		}
		return nil, err
	}
	return method, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.PaymentMethod, error) {
	method, err := s.repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrPaymentMethodNotFound) {
			return nil, ErrMethodNotFound
		}
		return nil, err
	}
	return method, nil
}

func (s *service) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]models.PaymentMethod, error) {
	if _, err := s.accounts.WithContext(ctx).GetByID(accountID); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return s.repo.ListByAccount(accountID)
}
