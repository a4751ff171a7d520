package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"messpay/internal/models"
	"messpay/internal/repositories/memory"
	"messpay/internal/services/ledger"
	"messpay/internal/services/skipcredit"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) (*fiber.App, ledger.Service) {
	t.Helper()

	store := memory.NewStore()
	ledgerService := ledger.NewService(store, nil, nil, nil)
	skipService := skipcredit.NewService(ledgerService, store)

	ctx := context.Background()
	require.NoError(t, store.PutMeal(ctx, models.Meal{
		ID:       "meal-1",
		Date:     "2026-09-01",
		Type:     "lunch",
		Price:    decimal.NewFromInt(50),
		Cutoff:   time.Now().Add(time.Hour),
		IsActive: true,
	}))

	_, err := ledgerService.CreateAccount(ctx, models.SystemAccountID, models.AccountKindSystem)
	require.NoError(t, err)
	_, err = ledgerService.CreateAccount(ctx, "student-1", models.AccountKindStudent)
	require.NoError(t, err)
	_, err = ledgerService.CreateAccount(ctx, "vendor-1", models.AccountKindVendor)
	require.NoError(t, err)

	_, err = ledgerService.Transfer(ctx, ledger.TransferRequest{
		SenderID:    models.SystemAccountID,
		ReceiverID:  "student-1",
		Amount:      decimal.NewFromInt(100),
		Kind:        models.EntryKindAdminAdjustment,
		Description: "test funding",
	})
	require.NoError(t, err)

	app := fiber.New()
	SetupRoutes(app, Deps{
		LedgerService: ledgerService,
		SkipService:   skipService,
		MealCatalog:   store,
	})
	return app, ledgerService
}

func signToken(t *testing.T, accountID, role string) string {
	t.Helper()
	claims := models.UserClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
		AccountID: accountID,
		Role:      role,
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("messpay"))
	require.NoError(t, err)
	return token
}

func doRequest(t *testing.T, app *fiber.App, method, path, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func TestWalletRoutes_AuthRequired(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/wallet", "", nil)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/api/wallet", signToken(t, "student-1", models.RoleStudent), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Balance      decimal.Decimal      `json:"balance"`
		Transactions []models.LedgerEntry `json:"transactions"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Balance.Equal(decimal.NewFromInt(100)))
	assert.Len(t, body.Transactions, 1)
}

func TestWalletRoutes_PayVendor(t *testing.T) {
	app, ledgerService := newTestApp(t)
	token := signToken(t, "student-1", models.RoleStudent)

	resp := doRequest(t, app, http.MethodPost, "/api/wallet/pay", token, fiber.Map{
		"vendor_id": "vendor-1",
		"amount":    "30",
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	balance, err := ledgerService.GetBalance(context.Background(), "vendor-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(30)))

	// Overdraft is rejected with a client error.
	resp = doRequest(t, app, http.MethodPost, "/api/wallet/pay", token, fiber.Map{
		"vendor_id": "vendor-1",
		"amount":    "500",
	})
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestWalletRoutes_WithdrawRequiresVendorRole(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/wallet/withdraw",
		signToken(t, "student-1", models.RoleStudent), fiber.Map{"amount": "10"})
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}

func TestMealRoutes_SkipIdempotent(t *testing.T) {
	app, ledgerService := newTestApp(t)
	token := signToken(t, "student-1", models.RoleStudent)

	resp := doRequest(t, app, http.MethodPost, "/api/meals/meal-1/skip", token, nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPost, "/api/meals/meal-1/skip", token, nil)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)

	balance, err := ledgerService.GetBalance(context.Background(), "student-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(150)), "got %s", balance)
}

func TestMealRoutes_SkipPriceComesFromCatalog(t *testing.T) {
	app, ledgerService := newTestApp(t)
	token := signToken(t, "student-1", models.RoleStudent)

	// A caller-supplied price must have no effect: the credit is the
	// catalog's 50, never the body's amount.
	resp := doRequest(t, app, http.MethodPost, "/api/meals/meal-1/skip", token, fiber.Map{
		"price":     "1000000",
		"cutoff":    time.Now().Add(time.Hour).Format(time.RFC3339),
		"is_active": true,
	})
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Amount decimal.Decimal `json:"amount"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Amount.Equal(decimal.NewFromInt(50)), "got %s", body.Amount)

	balance, err := ledgerService.GetBalance(context.Background(), "student-1")
	require.NoError(t, err)
	assert.True(t, balance.Equal(decimal.NewFromInt(150)), "got %s", balance)
}

func TestMealRoutes_SkipUnknownMeal(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/api/meals/no-such-meal/skip",
		signToken(t, "student-1", models.RoleStudent), nil)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAdminRoutes_RoleGate(t *testing.T) {
	app, _ := newTestApp(t)

	body := fiber.Map{
		"sender_id":   models.SystemAccountID,
		"receiver_id": "student-1",
		"amount":      "5",
		"description": "correction",
	}

	resp := doRequest(t, app, http.MethodPost, "/api/admin/adjust",
		signToken(t, "student-1", models.RoleStudent), body)
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPost, "/api/admin/adjust",
		signToken(t, "admin-1", models.RoleAdmin), body)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestWalletRoutes_Reconcile(t *testing.T) {
	app, _ := newTestApp(t)

	resp := doRequest(t, app, http.MethodGet, "/api/wallet/reconcile",
		signToken(t, "student-1", models.RoleStudent), nil)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var report ledger.ReconcileReport
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&report))
	assert.True(t, report.Consistent)
	assert.True(t, report.LiveBalance.Equal(decimal.NewFromInt(100)))
}
