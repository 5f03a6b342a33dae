package transfer

import (
	"context"
	"errors"
	"sync"
	"testing"

	"payflow/internal/models"
	"payflow/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockAccountRepo struct {
	mock.Mock
}

type MockTransferRepo struct {
	mock.Mock
}

type MockCache struct {
	mock.Mock
}

func (m *MockAccountRepo) Create(acc *models.Account) error {
	args := m.Called(acc)
	return args.Error(0)
}

func (m *MockAccountRepo) GetByID(id uuid.UUID) (*models.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepo) GetForUpdate(id uuid.UUID) (*models.Account, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Account), args.Error(1)
}

func (m *MockAccountRepo) List(limit, offset int) ([]models.Account, int64, error) {
	args := m.Called(limit, offset)
	return args.Get(0).([]models.Account), args.Get(1).(int64), args.Error(2)
}

func (m *MockAccountRepo) Update(acc *models.Account) error {
	args := m.Called(acc)
	return args.Error(0)
}

func (m *MockAccountRepo) UpdateBalance(id uuid.UUID, balance decimal.Decimal) error {
	args := m.Called(id, balance)
	return args.Error(0)
}

func (m *MockAccountRepo) CreateTransfer(t *models.Transfer) error {
	args := m.Called(t)
	return args.Error(0)
}

func (m *MockAccountRepo) ExecuteInTransaction(fn func(tx repositories.AccountRepository) error) error {
	m.Called(fn)
	return fn(m)
}

func (m *MockAccountRepo) WithContext(ctx context.Context) repositories.AccountRepository {
	return m
}

func (m *MockTransferRepo) Create(t *models.Transfer) error {
	args := m.Called(t)
	return args.Error(0)
}

func (m *MockTransferRepo) GetByID(id uuid.UUID) (*models.Transfer, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Transfer), args.Error(1)
}

func (m *MockTransferRepo) ListByAccount(accountID uuid.UUID, limit, offset int) ([]models.Transfer, int64, error) {
	args := m.Called(accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Transfer), args.Get(1).(int64), args.Error(2)
}

func (m *MockCache) InvalidateAccount(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// orderedIDs returns two distinct uuids with a[:] < b[:], so lock-order
// assertions are deterministic.
func orderedIDs(t *testing.T) (uuid.UUID, uuid.UUID) {
	t.Helper()
	a := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	b := uuid.MustParse("22222222-2222-2222-2222-222222222222")
	return a, b
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func decEq(want string) interface{} {
	return mock.MatchedBy(func(d decimal.Decimal) bool {
		return d.Equal(dec(want))
	})
}

func TestExecute_Success(t *testing.T) {
	lowID, highID := orderedIDs(t)
	accounts := new(MockAccountRepo)
	records := new(MockTransferRepo)
	cache := new(MockCache)

	from := &models.Account{ID: lowID, Balance: dec("100.00")}
	to := &models.Account{ID: highID, Balance: dec("0.00")}

	accounts.On("ExecuteInTransaction", mock.Anything).Return(nil)
	accounts.On("GetForUpdate", lowID).Return(from, nil)
	accounts.On("GetForUpdate", highID).Return(to, nil)
	accounts.On("UpdateBalance", lowID, decEq("60.00")).Return(nil)
	accounts.On("UpdateBalance", highID, decEq("40.00")).Return(nil)
	accounts.On("CreateTransfer", mock.Anything).Return(nil)
	cache.On("InvalidateAccount", mock.Anything, lowID).Return(nil)
	cache.On("InvalidateAccount", mock.Anything, highID).Return(nil)

	s := NewService(accounts, records, cache, nil)
	rec, err := s.Execute(context.Background(), Request{
		FromAccountID: lowID,
		ToAccountID:   highID,
		Amount:        dec("40.00"),
		Description:   "coffee fund",
	})

	assert.NoError(t, err)
	assert.Equal(t, models.TransferStatusCompleted, rec.Status)
	assert.NotNil(t, rec.CompletedAt)
	assert.True(t, rec.Amount.Equal(dec("40.00")))
	accounts.AssertExpectations(t)
	cache.AssertExpectations(t)
	records.AssertNotCalled(t, "Create", mock.Anything)
}

func TestExecute_LockOrderIsAscendingRegardlessOfDirection(t *testing.T) {
	lowID, highID := orderedIDs(t)
	accounts := new(MockAccountRepo)
	records := new(MockTransferRepo)

	var lockOrder []uuid.UUID
	low := &models.Account{ID: lowID, Balance: dec("0.00")}
	high := &models.Account{ID: highID, Balance: dec("50.00")}

	accounts.On("ExecuteInTransaction", mock.Anything).Return(nil)
	accounts.On("GetForUpdate", lowID).Run(func(args mock.Arguments) {
		lockOrder = append(lockOrder, lowID)
	}).Return(low, nil)
	accounts.On("GetForUpdate", highID).Run(func(args mock.Arguments) {
		lockOrder = append(lockOrder, highID)
	}).Return(high, nil)
	accounts.On("UpdateBalance", mock.Anything, mock.Anything).Return(nil)
	accounts.On("CreateTransfer", mock.Anything).Return(nil)

	s := NewService(accounts, records, nil, nil)

	// Transfer in the "descending" direction: high id pays low id. The
	// lower id must still be locked first.
	_, err := s.Execute(context.Background(), Request{
		FromAccountID: highID,
		ToAccountID:   lowID,
		Amount:        dec("10.00"),
	})

	assert.NoError(t, err)
	assert.Equal(t, []uuid.UUID{lowID, highID}, lockOrder)
}

func TestExecute_InsufficientBalance(t *testing.T) {
	lowID, highID := orderedIDs(t)
	accounts := new(MockAccountRepo)
	records := new(MockTransferRepo)

	from := &models.Account{ID: lowID, Balance: dec("60.00")}
	to := &models.Account{ID: highID, Balance: dec("40.00")}

	accounts.On("ExecuteInTransaction", mock.Anything).Return(nil)
	accounts.On("GetForUpdate", lowID).Return(from, nil)
	accounts.On("GetForUpdate", highID).Return(to, nil)
	records.On("Create", mock.MatchedBy(func(rec *models.Transfer) bool {
		return rec.Status == models.TransferStatusFailed &&
			rec.Amount.Equal(dec("100.00")) &&
			rec.FromAccountID == lowID &&
			rec.ToAccountID == highID &&
			rec.CompletedAt != nil
	})).Return(nil)

	s := NewService(accounts, records, nil, nil)
	rec, err := s.Execute(context.Background(), Request{
		FromAccountID: lowID,
		ToAccountID:   highID,
		Amount:        dec("100.00"),
	})

	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrInsufficientBalance)

	var detail *InsufficientBalanceError
	assert.ErrorAs(t, err, &detail)
	assert.True(t, detail.Available.Equal(dec("60.00")))
	assert.True(t, detail.Required.Equal(dec("100.00")))

	// No balance was touched.
	accounts.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything)
	accounts.AssertNotCalled(t, "CreateTransfer", mock.Anything)
	records.AssertExpectations(t)
}

func TestExecute_Validation(t *testing.T) {
	lowID, highID := orderedIDs(t)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "self transfer",
			req:     Request{FromAccountID: lowID, ToAccountID: lowID, Amount: dec("10.00")},
			wantErr: ErrSameAccount,
		},
		{
			name:    "zero amount",
			req:     Request{FromAccountID: lowID, ToAccountID: highID, Amount: dec("0")},
			wantErr: ErrInvalidAmount,
		},
		{
			name:    "negative amount",
			req:     Request{FromAccountID: lowID, ToAccountID: highID, Amount: dec("-5.00")},
			wantErr: ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccountRepo)
			records := new(MockTransferRepo)

			s := NewService(accounts, records, nil, nil)
			rec, err := s.Execute(context.Background(), tt.req)

			assert.Nil(t, rec)
			assert.ErrorIs(t, err, tt.wantErr)
			// Rejected before any locking or record creation.
			accounts.AssertNotCalled(t, "ExecuteInTransaction", mock.Anything)
			records.AssertNotCalled(t, "Create", mock.Anything)
		})
	}
}

func TestExecute_AccountNotFound(t *testing.T) {
	lowID, highID := orderedIDs(t)
	accounts := new(MockAccountRepo)
	records := new(MockTransferRepo)

	accounts.On("ExecuteInTransaction", mock.Anything).Return(nil)
	accounts.On("GetForUpdate", lowID).Return(nil, repositories.ErrAccountNotFound)

	s := NewService(accounts, records, nil, nil)
	rec, err := s.Execute(context.Background(), Request{
		FromAccountID: lowID,
		ToAccountID:   highID,
		Amount:        dec("10.00"),
	})

	assert.Nil(t, rec)
	assert.ErrorIs(t, err, ErrAccountNotFound)
	records.AssertNotCalled(t, "Create", mock.Anything)
}

func TestExecute_EngineFailureWritesBestEffortRecord(t *testing.T) {
	lowID, highID := orderedIDs(t)

	tests := []struct {
		name      string
		recordErr error
	}{
		{name: "failed record persists", recordErr: nil},
		{name: "failed record write also fails", recordErr: errors.New("store down")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			accounts := new(MockAccountRepo)
			records := new(MockTransferRepo)

			from := &models.Account{ID: lowID, Balance: dec("100.00")}
			to := &models.Account{ID: highID, Balance: dec("0.00")}

			accounts.On("ExecuteInTransaction", mock.Anything).Return(nil)
			accounts.On("GetForUpdate", lowID).Return(from, nil)
			accounts.On("GetForUpdate", highID).Return(to, nil)
			accounts.On("UpdateBalance", lowID, mock.Anything).Return(errors.New("connection reset"))
			records.On("Create", mock.MatchedBy(func(rec *models.Transfer) bool {
				return rec.Status == models.TransferStatusFailed
			})).Return(tt.recordErr)

			s := NewService(accounts, records, nil, nil)
			rec, err := s.Execute(context.Background(), Request{
				FromAccountID: lowID,
				ToAccountID:   highID,
				Amount:        dec("40.00"),
			})

			assert.Nil(t, rec)
			// The primary error is never masked by the audit write.
			assert.ErrorIs(t, err, ErrTransferFailed)
			records.AssertExpectations(t)
		})
	}
}

func TestGet(t *testing.T) {
	accounts := new(MockAccountRepo)
	records := new(MockTransferRepo)
	id := uuid.New()

	t.Run("found", func(t *testing.T) {
		want := &models.Transfer{ID: id, Status: models.TransferStatusCompleted}
		records.On("GetByID", id).Return(want, nil).Once()

		s := NewService(accounts, records, nil, nil)
		got, err := s.Get(context.Background(), id)
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("not found", func(t *testing.T) {
		records.On("GetByID", id).Return(nil, repositories.ErrTransferNotFound).Once()

		s := NewService(accounts, records, nil, nil)
		got, err := s.Get(context.Background(), id)
		assert.Nil(t, got)
		assert.ErrorIs(t, err, ErrTransferNotFound)
	})
}

func TestListByAccount(t *testing.T) {
	accountID := uuid.New()

	t.Run("unknown account", func(t *testing.T) {
		accounts := new(MockAccountRepo)
		records := new(MockTransferRepo)
		accounts.On("GetByID", accountID).Return(nil, repositories.ErrAccountNotFound)

		s := NewService(accounts, records, nil, nil)
		_, _, err := s.ListByAccount(context.Background(), accountID, 10, 0)
		assert.ErrorIs(t, err, ErrAccountNotFound)
		records.AssertNotCalled(t, "ListByAccount", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("paginated history", func(t *testing.T) {
		accounts := new(MockAccountRepo)
		records := new(MockTransferRepo)
		accounts.On("GetByID", accountID).Return(&models.Account{ID: accountID}, nil)
		history := []models.Transfer{{Status: models.TransferStatusCompleted}, {Status: models.TransferStatusFailed}}
		records.On("ListByAccount", accountID, 10, 0).Return(history, int64(2), nil)

		s := NewService(accounts, records, nil, nil)
		got, total, err := s.ListByAccount(context.Background(), accountID, 10, 0)
		assert.NoError(t, err)
		assert.Equal(t, int64(2), total)
		assert.Len(t, got, 2)
	})
}

// fakeLedger backs the concurrency tests with real per-row locking:
// GetForUpdate blocks on the row's mutex the way SELECT ... FOR UPDATE
// blocks on a row lock, and writes buffered in a unit apply only when
// it commits.
type fakeLedger struct {
	mu       sync.Mutex
	rowLocks map[uuid.UUID]*sync.Mutex
	balances map[uuid.UUID]decimal.Decimal
	commits  []*models.Transfer
}

func newFakeLedger(balances map[uuid.UUID]decimal.Decimal) *fakeLedger {
	l := &fakeLedger{
		rowLocks: make(map[uuid.UUID]*sync.Mutex),
		balances: make(map[uuid.UUID]decimal.Decimal),
	}
	for id, b := range balances {
		l.rowLocks[id] = &sync.Mutex{}
		l.balances[id] = b
	}
	return l
}

func (l *fakeLedger) balance(id uuid.UUID) decimal.Decimal {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[id]
}

type fakeLedgerTx struct {
	ledger  *fakeLedger
	held    []uuid.UUID
	pending map[uuid.UUID]decimal.Decimal
	created []*models.Transfer
}

func (tx *fakeLedgerTx) GetForUpdate(id uuid.UUID) (*models.Account, error) {
	lock, ok := tx.ledger.rowLocks[id]
	if !ok {
		return nil, repositories.ErrAccountNotFound
	}
	lock.Lock()
	tx.held = append(tx.held, id)
	return &models.Account{ID: id, Balance: tx.ledger.balance(id)}, nil
}

func (tx *fakeLedgerTx) UpdateBalance(id uuid.UUID, balance decimal.Decimal) error {
	tx.pending[id] = balance
	return nil
}

func (tx *fakeLedgerTx) CreateTransfer(t *models.Transfer) error {
	tx.created = append(tx.created, t)
	return nil
}

func (l *fakeLedger) ExecuteInTransaction(fn func(tx repositories.AccountRepository) error) error {
	tx := &fakeLedgerTx{ledger: l, pending: make(map[uuid.UUID]decimal.Decimal)}
	err := fn(tx)
	if err == nil {
		l.mu.Lock()
		for id, b := range tx.pending {
			l.balances[id] = b
		}
		l.commits = append(l.commits, tx.created...)
		l.mu.Unlock()
	}
	for i := len(tx.held) - 1; i >= 0; i-- {
		l.rowLocks[tx.held[i]].Unlock()
	}
	return err
}

// The remaining AccountRepository methods are not exercised by Execute.
func (l *fakeLedger) Create(*models.Account) error { return nil }
func (l *fakeLedger) GetByID(uuid.UUID) (*models.Account, error) {
	return nil, repositories.ErrAccountNotFound
}
func (l *fakeLedger) GetForUpdate(uuid.UUID) (*models.Account, error) {
	return nil, repositories.ErrAccountNotFound
}
func (l *fakeLedger) List(int, int) ([]models.Account, int64, error) { return nil, 0, nil }
func (l *fakeLedger) Update(*models.Account) error                   { return nil }
func (l *fakeLedger) UpdateBalance(uuid.UUID, decimal.Decimal) error { return nil }
func (l *fakeLedger) CreateTransfer(*models.Transfer) error          { return nil }
func (l *fakeLedger) WithContext(context.Context) repositories.AccountRepository {
	return l
}

func (tx *fakeLedgerTx) Create(*models.Account) error { return nil }
func (tx *fakeLedgerTx) GetByID(uuid.UUID) (*models.Account, error) {
	return nil, repositories.ErrAccountNotFound
}
func (tx *fakeLedgerTx) List(int, int) ([]models.Account, int64, error) { return nil, 0, nil }
func (tx *fakeLedgerTx) Update(*models.Account) error                   { return nil }
func (tx *fakeLedgerTx) ExecuteInTransaction(func(repositories.AccountRepository) error) error {
	return errors.New("nested transaction")
}
func (tx *fakeLedgerTx) WithContext(context.Context) repositories.AccountRepository {
	return tx
}

type recordingTransferRepo struct {
	mu      sync.Mutex
	records []*models.Transfer
}

func (r *recordingTransferRepo) Create(t *models.Transfer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, t)
	return nil
}

func (r *recordingTransferRepo) GetByID(uuid.UUID) (*models.Transfer, error) {
	return nil, repositories.ErrTransferNotFound
}

func (r *recordingTransferRepo) ListByAccount(uuid.UUID, int, int) ([]models.Transfer, int64, error) {
	return nil, 0, nil
}

func TestExecute_ConcurrentTransfersSerializeOnRowLocks(t *testing.T) {
	lowID, highID := orderedIDs(t)

	// Each transfer is affordable on its own (100 >= 60) but the two
	// together are not (120 > 100): the row locks must serialize them
	// into exactly one Completed and one Failed.
	ledger := newFakeLedger(map[uuid.UUID]decimal.Decimal{
		lowID:  dec("100.00"),
		highID: dec("0.00"),
	})
	records := &recordingTransferRepo{}
	s := NewService(ledger, records, nil, nil)

	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.Execute(context.Background(), Request{
				FromAccountID: lowID,
				ToAccountID:   highID,
				Amount:        dec("60.00"),
			})
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var completed, failed int
	for err := range errs {
		switch {
		case err == nil:
			completed++
		case errors.Is(err, ErrInsufficientBalance):
			failed++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, completed)
	assert.Equal(t, 1, failed)

	// Exactly one net debit applied.
	assert.True(t, ledger.balance(lowID).Equal(dec("40.00")),
		"expected 40.00, got %s", ledger.balance(lowID))
	assert.True(t, ledger.balance(highID).Equal(dec("60.00")),
		"expected 60.00, got %s", ledger.balance(highID))

	// One Completed record committed with the balance writes, one
	// Failed record for the losing attempt.
	assert.Len(t, ledger.commits, 1)
	assert.Equal(t, models.TransferStatusCompleted, ledger.commits[0].Status)
	assert.Len(t, records.records, 1)
	assert.Equal(t, models.TransferStatusFailed, records.records[0].Status)
}
