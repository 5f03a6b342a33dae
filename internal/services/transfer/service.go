package transfer

import (
	"bytes"
	"context"
	"errors"
	"log"
	"time"

	"payflow/internal/models"
	"payflow/internal/repositories"

	"github.com/google/uuid"
)

type service struct {
	accounts repositories.AccountRepository
	records  repositories.TransferRepository
	cache    AccountCache
	metrics  MetricsCollector
}

// NewService creates a new transfer engine. cache and metrics are
// optional; nil falls back to no-op implementations.
func NewService(
	accounts repositories.AccountRepository,
	records repositories.TransferRepository,
	cache AccountCache,
	metrics MetricsCollector,
) Service {
	if accounts == nil {
		panic("account repository is required")
	}
	if records == nil {
		panic("transfer repository is required")
	}
	if cache == nil {
		cache = noopCache{}
	}
	if metrics == nil {
		metrics = &NoopMetricsCollector{}
	}

	return &service{
		accounts: accounts,
		records:  records,
		cache:    cache,
		metrics:  metrics,
	}
}

// Execute moves req.Amount between the two accounts and records the
// outcome. Both balance writes and the Completed record commit as one
// unit; any attempt that got as far as a sufficiency check leaves a
// terminal record behind, win or lose.
func (s *service) Execute(ctx context.Context, req Request) (*models.Transfer, error) {
	start := time.Now()
	defer func() { s.metrics.RecordDuration("transfer", time.Since(start)) }()

	// Caller errors fail fast, before any locking or record creation.
	if req.FromAccountID == req.ToAccountID {
		s.metrics.RecordError("transfer", "same_account")
		return nil, ErrSameAccount
	}
	if req.Amount.Sign() <= 0 {
		s.metrics.RecordError("transfer", "invalid_amount")
		return nil, ErrInvalidAmount
	}

	record := &models.Transfer{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
	}

	err := s.accounts.WithContext(ctx).ExecuteInTransaction(func(tx repositories.AccountRepository) error {
		// Lock both rows in ascending id order, whatever direction the
		// money moves. Two concurrent transfers over the same pair
		// therefore queue on the first lock instead of deadlocking.
		first, second := orderLockPair(req.FromAccountID, req.ToAccountID)
		locked := make(map[uuid.UUID]*models.Account, 2)
		for _, id := range []uuid.UUID{first, second} {
			acc, err := tx.GetForUpdate(id)
			if err != nil {
				return err
			}
			locked[id] = acc
		}
		from := locked[req.FromAccountID]
		to := locked[req.ToAccountID]

		if from.Balance.LessThan(req.Amount) {
			return &InsufficientBalanceError{Available: from.Balance, Required: req.Amount}
		}

		if err := tx.UpdateBalance(from.ID, from.Balance.Sub(req.Amount)); err != nil {
			return err
		}
		if err := tx.UpdateBalance(to.ID, to.Balance.Add(req.Amount)); err != nil {
			return err
		}

		now := time.Now().UTC()
		record.Status = models.TransferStatusCompleted
		record.CompletedAt = &now
		return tx.CreateTransfer(record)
	})

	if err != nil {
		return nil, s.finalizeFailure(ctx, req, err)
	}

	// The locks are released; cached snapshots of both accounts are now
	// stale.
	if err := s.cache.InvalidateAccount(ctx, req.FromAccountID); err != nil {
		log.Printf("failed to invalidate account cache %s: %v", req.FromAccountID, err)
	}
	if err := s.cache.InvalidateAccount(ctx, req.ToAccountID); err != nil {
		log.Printf("failed to invalidate account cache %s: %v", req.ToAccountID, err)
	}

	amount, _ := req.Amount.Float64()
	s.metrics.RecordTransfer(models.TransferStatusCompleted, amount)
	return record, nil
}

// finalizeFailure maps an aborted unit of work onto the engine's error
// taxonomy and, for attempts that reached the ledger, records them.
func (s *service) finalizeFailure(ctx context.Context, req Request, err error) error {
	if errors.Is(err, repositories.ErrAccountNotFound) {
		// The request never became a ledger attempt; no record.
		s.metrics.RecordError("transfer", "account_not_found")
		return ErrAccountNotFound
	}

	var insufficient *InsufficientBalanceError
	if errors.As(err, &insufficient) {
		// Business-rule failure: the attempt is recorded before the
		// error surfaces, so it stays observable to callers and audits.
		s.recordFailedAttempt(ctx, req)
		amount, _ := req.Amount.Float64()
		s.metrics.RecordTransfer(models.TransferStatusFailed, amount)
		return insufficient
	}

	// Infrastructure failure: balances already rolled back with the
	// unit. The record write is best effort and the caller gets a
	// generic error without internal detail.
	log.Printf("transfer %s -> %s aborted: %v", req.FromAccountID, req.ToAccountID, err)
	s.recordFailedAttempt(ctx, req)
	s.metrics.RecordError("transfer", "engine")
	return ErrTransferFailed
}

// recordFailedAttempt durably writes a Failed record for an attempt
// that mutated no balances. Failures here are logged, never surfaced:
// the caller keeps the original error.
func (s *service) recordFailedAttempt(ctx context.Context, req Request) {
	now := time.Now().UTC()
	rec := &models.Transfer{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
		Status:        models.TransferStatusFailed,
		CompletedAt:   &now,
	}
	if err := s.records.Create(rec); err != nil {
		log.Printf("failed to record transfer attempt %s -> %s: %v",
			req.FromAccountID, req.ToAccountID, err)
	}
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Transfer, error) {
	rec, err := s.records.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrTransferNotFound) {
			return nil, ErrTransferNotFound
		}
		return nil, err
	}
	return rec, nil
}

func (s *service) ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Transfer, int64, error) {
	if _, err := s.accounts.WithContext(ctx).GetByID(accountID); err != nil {
		if errors.Is(err, repositories.ErrAccountNotFound) {
			return nil, 0, ErrAccountNotFound
		}
		return nil, 0, err
	}
	return s.records.ListByAccount(accountID, limit, offset)
}

// orderLockPair returns the two ids in ascending byte order. The order
// is total and direction-independent, which is the deadlock-avoidance
// invariant for concurrent transfers over the same pair.
func orderLockPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if bytes.Compare(a[:], b[:]) <= 0 {
		return a, b
	}
	return b, a
}
