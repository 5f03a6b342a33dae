// Package account manages account profiles. It never moves money: the
// balance is written once at creation and only the transfer engine may
// change it afterwards.
package account

import (
	"context"
	"errors"
	"log"

	"payflow/internal/models"
	"payflow/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CreateRequest carries the fields for a new account profile.
type CreateRequest struct {
	Name           string
	Email          string
	IsAgent        bool
	InitialBalance decimal.Decimal
}

// UpdateRequest carries the updatable profile fields; nil means keep.
type UpdateRequest struct {
	Name  *string
	Email *string
}

// Cache is the account snapshot cache used for reads.
type Cache interface {
	GetAccount(ctx context.Context, id uuid.UUID) (*models.Account, error)
	SetAccount(ctx context.Context, acc *models.Account) error
	InvalidateAccount(ctx context.Context, id uuid.UUID) error
}

// Service manages account profiles.
type Service interface {
	Create(ctx context.Context, req CreateRequest) (*models.Account, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Account, error)
	List(ctx context.Context, limit, offset int) ([]models.Account, int64, error)
	Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.Account, error)
}

type service struct {
	repo  repositories.AccountRepository
	cache Cache
}

// NewService creates a new account service. cache is optional.
func NewService(repo repositories.AccountRepository, cache Cache) Service {
	if repo == nil {
		panic("account repository is required")
	}
	if cache == nil {
		cache = noopCache{}
	}
	return &service{repo: repo, cache: cache}
}

func (s *service) Create(ctx context.Context, req CreateRequest) (*models.Account, error) {
	if req.InitialBalance.Sign() < 0 {
		return nil, ErrNegativeBalance
	}

	acc := &models.Account{
		Name:    req.Name,
		Email:   req.Email,
		Balance: req.InitialBalance,
		IsAgent: req.IsAgent,
	}
	if err := s.repo.WithContext(ctx).Create(acc); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	if err := s.cache.SetAccount(ctx, acc); err != nil {
		log.Printf("failed to cache account %s: %v", acc.ID, err)
	}
	return acc, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	if acc, err := s.cache.GetAccount(ctx, id); err == nil {
		return acc, nil
	}

	acc, err := s.repo.WithContext(ctx).GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if err := s.cache.SetAccount(ctx, acc); err != nil {
		log.Printf("failed to cache account %s: %v", acc.ID, err)
	}
	return acc, nil
}

func (s *service) List(ctx context.Context, limit, offset int) ([]models.Account, int64, error) {
	return s.repo.WithContext(ctx).List(limit, offset)
}

func (s *service) Update(ctx context.Context, id uuid.UUID, req UpdateRequest) (*models.Account, error) {
	if req.Name == nil && req.Email == nil {
		return nil, ErrNothingToUpdate
	}

	repo := s.repo.WithContext(ctx)
	acc, err := repo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}

	if req.Name != nil {
		acc.Name = *req.Name
	}
	if req.Email != nil {
		acc.Email = *req.Email
	}
	if err := repo.Update(acc); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrEmailExists
		}
		return nil, err
	}

	// Re-read after the write: a concurrent transfer may have moved the
	// balance since the profile snapshot above, and neither the response
	// nor the cache may carry the stale value.
	updated, err := repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if err := s.cache.SetAccount(ctx, updated); err != nil {
		log.Printf("failed to cache account %s: %v", updated.ID, err)
	}
	return updated, nil
}

type noopCache struct{}

func (noopCache) GetAccount(context.Context, uuid.UUID) (*models.Account, error) {
	return nil, errors.New("no cache")
}
func (noopCache) SetAccount(context.Context, *models.Account) error  { return nil }
func (noopCache) InvalidateAccount(context.Context, uuid.UUID) error { return nil }
