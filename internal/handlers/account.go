package handlers

import (
	"errors"

	"payflow/internal/services/account"
	"payflow/internal/utils/pagination"
	"payflow/internal/utils/response"
	"payflow/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AccountHandler exposes account profile endpoints.
type AccountHandler struct {
	service account.Service
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(s account.Service) *AccountHandler {
	return &AccountHandler{service: s}
}

// CreateAccount handles POST /accounts requests.
func (h *AccountHandler) CreateAccount(c *fiber.Ctx) error {
	var req struct {
		Name           string          `json:"name"`
		Email          string          `json:"email"`
		IsAgent        bool            `json:"is_agent"`
		InitialBalance decimal.Decimal `json:"initial_balance"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	v := validation.New()
	v.CheckRequired(req.Name, "name", validation.MaxNameLength)
	v.CheckEmail(req.Email, "email")
	v.Check(req.InitialBalance.Sign() >= 0, "initial_balance", "cannot be negative")
	if !v.Valid() {
		return response.ValidationError(c, v.Message())
	}

	acc, err := h.service.Create(c.Context(), account.CreateRequest{
		Name:           req.Name,
		Email:          req.Email,
		IsAgent:        req.IsAgent,
		InitialBalance: req.InitialBalance,
	})
	if err != nil {
		if errors.Is(err, account.ErrEmailExists) || errors.Is(err, account.ErrNegativeBalance) {
			return response.BadRequest(c, err.Error())
		}
		return response.ServerError(c, "failed to create account")
	}
	return response.Created(c, "account created", acc)
}

// GetAccount handles GET /accounts/:id requests.
func (h *AccountHandler) GetAccount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid account id")
	}

	acc, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "failed to retrieve account")
	}
	return response.Success(c, "account retrieved", acc)
}

// ListAccounts handles GET /accounts requests.
func (h *AccountHandler) ListAccounts(c *fiber.Ctx) error {
	p := pagination.ParseFromRequest(c)
	accounts, total, err := h.service.List(c.Context(), p.Limit, p.Offset)
	if err != nil {
		return response.ServerError(c, "failed to retrieve accounts")
	}

	p.Total = total
	return c.JSON(pagination.Response(p, accounts))
}

// UpdateAccount handles PATCH /accounts/:id requests. Balance is not
// updatable here; only transfers move money.
func (h *AccountHandler) UpdateAccount(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid account id")
	}

	var req struct {
		Name  *string `json:"name"`
		Email *string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	v := validation.New()
	if req.Name != nil {
		v.CheckRequired(*req.Name, "name", validation.MaxNameLength)
	}
	if req.Email != nil {
		v.CheckEmail(*req.Email, "email")
	}
	if !v.Valid() {
		return response.ValidationError(c, v.Message())
	}

	acc, err := h.service.Update(c.Context(), id, account.UpdateRequest{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrAccountNotFound):
			return response.NotFound(c, err.Error())
		case errors.Is(err, account.ErrEmailExists), errors.Is(err, account.ErrNothingToUpdate):
			return response.BadRequest(c, err.Error())
		default:
			return response.ServerError(c, "failed to update account")
		}
	}
	return response.Success(c, "account updated", acc)
}
