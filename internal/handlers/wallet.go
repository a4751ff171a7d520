package handlers

import (
	"errors"

	"messpay/internal/models"
	"messpay/internal/services/ledger"
	"messpay/internal/utils"
	"messpay/internal/utils/pagination"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

type WalletHandler struct {
	ledgerService ledger.Service
}

func NewWalletHandler(ledgerService ledger.Service) *WalletHandler {
	return &WalletHandler{
		ledgerService: ledgerService,
	}
}

// extractUserClaims is a helper to pull the authenticated caller out of
// the request context.
func extractUserClaims(c *fiber.Ctx) (*models.UserClaims, error) {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok || claims == nil {
		return nil, fiber.ErrUnauthorized
	}
	return claims, nil
}

// GetWallet returns the caller's balance and recent transactions.
func (h *WalletHandler) GetWallet(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	balance, err := h.ledgerService.GetBalance(c.Context(), claims.AccountID)
	if err != nil {
		return ledgerError(c, err)
	}

	entries, err := h.ledgerService.History(c.Context(), claims.AccountID, ledger.DefaultHistoryLimit, 0)
	if err != nil {
		return ledgerError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"balance":      balance,
		"transactions": entries,
	})
}

// PayVendor moves credits from the caller to a vendor.
func (h *WalletHandler) PayVendor(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		VendorID string          `json:"vendor_id"`
		Amount   decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	entry, err := h.ledgerService.Transfer(c.Context(), ledger.TransferRequest{
		SenderID:    claims.AccountID,
		ReceiverID:  input.VendorID,
		Amount:      input.Amount,
		Kind:        models.EntryKindVendorPayment,
		Description: "Payment to vendor " + input.VendorID,
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

// Withdraw sends the vendor caller's accumulated credits back to the
// system account.
func (h *WalletHandler) Withdraw(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	var input struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.BadRequest(c, "Invalid request format")
	}

	entry, err := h.ledgerService.Transfer(c.Context(), ledger.TransferRequest{
		SenderID:    claims.AccountID,
		ReceiverID:  models.SystemAccountID,
		Amount:      input.Amount,
		Kind:        models.EntryKindWithdrawal,
		Description: "Withdrawal request",
	})
	if err != nil {
		return ledgerError(c, err)
	}

	balance, err := h.ledgerService.GetBalance(c.Context(), claims.AccountID)
	if err != nil {
		return ledgerError(c, err)
	}

	return utils.Success(c, fiber.Map{
		"status":         "success",
		"transaction_id": entry.TransactionID,
		"new_balance":    balance,
	})
}

// History returns the caller's ledger entries, cursor-paginated.
func (h *WalletHandler) History(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	cursor := pagination.ParseFromRequest(c)
	entries, err := h.ledgerService.History(c.Context(), claims.AccountID, cursor.Limit, cursor.BeforeID)
	if err != nil {
		return ledgerError(c, err)
	}

	var nextBeforeID uint64
	if len(entries) > 0 {
		nextBeforeID = entries[len(entries)-1].ID
	}
	return utils.Success(c, pagination.Response(entries, nextBeforeID))
}

// Reconcile reports the caller's derived-vs-live balance.
func (h *WalletHandler) Reconcile(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	report, err := h.ledgerService.Reconcile(c.Context(), claims.AccountID)
	if err != nil {
		return ledgerError(c, err)
	}
	return utils.Success(c, report)
}

// ledgerError maps service errors to HTTP responses. Validation
// failures get 4xx; only genuinely unexpected errors surface as 500.
func ledgerError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrSelfTransfer),
		errors.Is(err, models.ErrInvalidEntry):
		return utils.BadRequest(c, err.Error())
	case errors.Is(err, ledger.ErrAccountNotFound):
		return utils.NotFound(c, err.Error())
	case errors.Is(err, ledger.ErrInsufficientFunds):
		return utils.BadRequest(c, "Insufficient funds")
	case errors.Is(err, ledger.ErrRoleViolation),
		errors.Is(err, ledger.ErrAccountInactive):
		return utils.Forbidden(c, err.Error())
	case errors.Is(err, ledger.ErrDuplicateReference):
		return utils.Conflict(c, err.Error())
	case errors.Is(err, ledger.ErrTimeout):
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "transfer timed out, please retry"})
	default:
		return utils.InternalError(c, "internal error")
	}
}
