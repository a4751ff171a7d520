package handlers

import (
	"messpay/internal/models"
	"messpay/internal/services/ledger"
	"messpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

// AdminHandler exposes the admin-only ledger operations: manual
// adjustments (the correction mechanism for an append-only log),
// account provisioning, and reconciliation of arbitrary accounts.
type AdminHandler struct {
	ledgerService ledger.Service
}

func NewAdminHandler(ledgerService ledger.Service) *AdminHandler {
	return &AdminHandler{
		ledgerService: ledgerService,
	}
}

// Adjust posts an admin_adjustment transfer between any two accounts.
func (h *AdminHandler) Adjust(c *fiber.Ctx) error {
	var input struct {
		SenderID    string          `json:"sender_id"`
		ReceiverID  string          `json:"receiver_id"`
		Amount      decimal.Decimal `json:"amount"`
		Description string          `json:"description"`
		Reference   *string         `json:"reference,omitempty"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	entry, err := h.ledgerService.Transfer(c.Context(), ledger.TransferRequest{
		SenderID:    input.SenderID,
		ReceiverID:  input.ReceiverID,
		Amount:      input.Amount,
		Kind:        models.EntryKindAdminAdjustment,
		Description: input.Description,
		Reference:   input.Reference,
	})
	if err != nil {
		return ledgerError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"status":         "success",
		"transaction_id": entry.TransactionID,
		"entry_id":       entry.ID,
	})
}

// CreateAccount provisions a new zero-balance account.
func (h *AdminHandler) CreateAccount(c *fiber.Ctx) error {
	var input struct {
		ID   string `json:"id"`
		Kind string `json:"kind"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	account, err := h.ledgerService.CreateAccount(c.Context(), input.ID, input.Kind)
	if err != nil {
		return utils.BadRequest(c, err.Error())
	}
	return utils.Success(c, fiber.Map{"account": account})
}

// ReconcileAccount reports derived-vs-live balance for any account.
func (h *AdminHandler) ReconcileAccount(c *fiber.Ctx) error {
	report, err := h.ledgerService.Reconcile(c.Context(), c.Params("id"))
	if err != nil {
		return ledgerError(c, err)
	}
	return utils.Success(c, report)
}
