package handlers

import (
	"errors"
	"fmt"

	"payflow/internal/services/transfer"
	"payflow/internal/utils/pagination"
	"payflow/internal/utils/response"
	"payflow/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransferHandler exposes the transfer engine over HTTP.
type TransferHandler struct {
	service transfer.Service
}

// NewTransferHandler creates a new TransferHandler.
func NewTransferHandler(s transfer.Service) *TransferHandler {
	return &TransferHandler{service: s}
}

// CreateTransfer handles POST /transfers requests.
func (h *TransferHandler) CreateTransfer(c *fiber.Ctx) error {
	var req struct {
		FromAccountID uuid.UUID       `json:"from_account_id"`
		ToAccountID   uuid.UUID       `json:"to_account_id"`
		Amount        decimal.Decimal `json:"amount"`
		Description   string          `json:"description"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	v := validation.New()
	v.Check(req.FromAccountID != uuid.Nil, "from_account_id", "is required")
	v.Check(req.ToAccountID != uuid.Nil, "to_account_id", "is required")
	v.Check(req.Amount.Sign() > 0, "amount", "must be greater than zero")
	v.Check(req.Amount.Exponent() >= -2, "amount", "must have at most two decimal places")
	v.Check(len(req.Description) <= validation.MaxDescriptionLength, "description",
		fmt.Sprintf("must be at most %d characters", validation.MaxDescriptionLength))
	if !v.Valid() {
		return response.ValidationError(c, v.Message())
	}

	rec, err := h.service.Execute(c.Context(), transfer.Request{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Description:   req.Description,
	})
	if err != nil {
		switch {
		case errors.Is(err, transfer.ErrSameAccount),
			errors.Is(err, transfer.ErrInvalidAmount),
			errors.Is(err, transfer.ErrInsufficientBalance):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, transfer.ErrAccountNotFound):
			return response.NotFound(c, err.Error())
		default:
			return response.ServerError(c, "transfer could not be completed")
		}
	}
	return response.Created(c, "transfer completed", rec)
}

// GetTransfer handles GET /transfers/:id requests.
func (h *TransferHandler) GetTransfer(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid transfer id")
	}

	rec, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, transfer.ErrTransferNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "failed to retrieve transfer")
	}
	return response.Success(c, "transfer retrieved", rec)
}

// ListAccountTransfers handles GET /transfers/account/:accountId requests.
func (h *TransferHandler) ListAccountTransfers(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("accountId"))
	if err != nil {
		return response.BadRequest(c, "invalid account id")
	}

	p := pagination.ParseFromRequest(c)
	transfers, total, err := h.service.ListByAccount(c.Context(), accountID, p.Limit, p.Offset)
	if err != nil {
		if errors.Is(err, transfer.ErrAccountNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "failed to retrieve transfers")
	}

	p.Total = total
	return c.JSON(pagination.Response(p, transfers))
}
