package handlers

import (
	"errors"

	"payflow/internal/services/paymentmethod"
	"payflow/internal/utils/response"
	"payflow/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// PaymentMethodHandler exposes tokenized payment method endpoints.
type PaymentMethodHandler struct {
	service paymentmethod.Service
}

// NewPaymentMethodHandler creates a new PaymentMethodHandler.
func NewPaymentMethodHandler(s paymentmethod.Service) *PaymentMethodHandler {
	return &PaymentMethodHandler{service: s}
}

// CreatePaymentMethod handles POST /methods requests.
func (h *PaymentMethodHandler) CreatePaymentMethod(c *fiber.Ctx) error {
	var req struct {
		AccountID  uuid.UUID `json:"account_id"`
		MethodType string    `json:"method_type"`
		TokenID    string    `json:"token_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "invalid request body")
	}

	v := validation.New()
	v.Check(req.AccountID != uuid.Nil, "account_id", "is required")
	v.CheckRequired(req.MethodType, "method_type", validation.MaxMethodTypeLength)
	v.CheckRequired(req.TokenID, "token_id", validation.MaxTokenLength)
	if !v.Valid() {
		return response.ValidationError(c, v.Message())
	}

	method, err := h.service.Create(c.Context(), paymentmethod.CreateRequest{
		AccountID:  req.AccountID,
		MethodType: req.MethodType,
		TokenID:    req.TokenID,
	})
	if err != nil {
		switch {
		case errors.Is(err, paymentmethod.ErrAccountNotFound):
			return response.NotFound(c, err.Error())
		case errors.Is(err, paymentmethod.ErrTokenExists):
			return response.BadRequest(c, err.Error())
		default:
			return response.ServerError(c, "failed to create payment method")
		}
	}
	return response.Created(c, "payment method created", method)
}

// GetPaymentMethod handles GET /methods/:id requests.
func (h *PaymentMethodHandler) GetPaymentMethod(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return response.BadRequest(c, "invalid payment method id")
	}

	method, err := h.service.Get(c.Context(), id)
	if err != nil {
		if errors.Is(err, paymentmethod.ErrMethodNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "failed to retrieve payment method")
	}
	return response.Success(c, "payment method retrieved", method)
}

// ListAccountPaymentMethods handles GET /methods/account/:accountId requests.
func (h *PaymentMethodHandler) ListAccountPaymentMethods(c *fiber.Ctx) error {
	accountID, err := uuid.Parse(c.Params("accountId"))
	if err != nil {
		return response.BadRequest(c, "invalid account id")
	}

	methods, err := h.service.ListByAccount(c.Context(), accountID)
	if err != nil {
		if errors.Is(err, paymentmethod.ErrAccountNotFound) {
			return response.NotFound(c, err.Error())
		}
		return response.ServerError(c, "failed to retrieve payment methods")
	}
	return response.Success(c, "payment methods retrieved", methods)
}
