package transfer

import (
	"context"
	"time"

	"payflow/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Request carries the parameters of one transfer attempt.
type Request struct {
	FromAccountID uuid.UUID
	ToAccountID   uuid.UUID
	Amount        decimal.Decimal
	Description   string
}

// Service is the transfer engine: the only component allowed to mutate
// two account balances together.
type Service interface {
	Execute(ctx context.Context, req Request) (*models.Transfer, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Transfer, error)
	ListByAccount(ctx context.Context, accountID uuid.UUID, limit, offset int) ([]models.Transfer, int64, error)
}

// AccountCache invalidates cached account snapshots after a commit.
type AccountCache interface {
	InvalidateAccount(ctx context.Context, id uuid.UUID) error
}

// MetricsCollector defines the hooks for recording engine activity.
type MetricsCollector interface {
	RecordTransfer(status string, amount float64)
	RecordError(operation, errType string)
	RecordDuration(operation string, d time.Duration)
}
