package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/harborbank/ledger-service/internal/ledger"
	"github.com/harborbank/ledger-service/internal/middleware"
	"github.com/harborbank/ledger-service/internal/models"
)

// LedgerService defines the ledger operations used by AccountHandler.
type LedgerService interface {
	OpenAccount(ctx context.Context, holderName string, initialBalance decimal.Decimal) (*models.Account, error)
	GetAccount(ctx context.Context, id int64) (*models.Account, error)
	Deposit(ctx context.Context, id int64, amount decimal.Decimal) (*models.Account, error)
	Withdraw(ctx context.Context, id int64, amount decimal.Decimal) (*models.Account, error)
	ListAccounts(ctx context.Context) ([]models.Account, error)
	DeleteAccount(ctx context.Context, id int64) error
}

// AccountHandler handles account-related HTTP requests.
type AccountHandler struct {
	ledger LedgerService
}

type OpenAccountRequest struct {
	HolderName     string          `json:"holderName" validate:"required"`
	InitialBalance decimal.Decimal `json:"initialBalance"`
}

// AmountRequest carries the amount for deposit and withdraw. Positivity is a
// business rule and is checked by the ledger, not the validator.
type AmountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type ListAccountsResponse struct {
	Accounts []models.Account `json:"accounts"`
}

func NewAccountHandler(ledgerService LedgerService) *AccountHandler {
	return &AccountHandler{ledger: ledgerService}
}

func (h *AccountHandler) OpenAccount(c *gin.Context) {
	var req OpenAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if validationErrors := middleware.ValidateRequest(req); validationErrors != nil {
		middleware.RespondWithValidationError(c, validationErrors)
		return
	}

	account, err := h.ledger.OpenAccount(c.Request.Context(), req.HolderName, req.InitialBalance)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusCreated, account)
}

func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	account, err := h.ledger.GetAccount(c.Request.Context(), id)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) Deposit(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.ledger.Deposit(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) Withdraw(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	var req AmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	account, err := h.ledger.Withdraw(c.Request.Context(), id, req.Amount)
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (h *AccountHandler) ListAccounts(c *gin.Context) {
	accounts, err := h.ledger.ListAccounts(c.Request.Context())
	if err != nil {
		respondLedgerError(c, err)
		return
	}
	if accounts == nil {
		accounts = []models.Account{}
	}

	c.JSON(http.StatusOK, ListAccountsResponse{Accounts: accounts})
}

func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := accountID(c)
	if !ok {
		return
	}

	if err := h.ledger.DeleteAccount(c.Request.Context(), id); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Account deleted"})
}

// accountID parses the :id path parameter, responding 400 on garbage.
func accountID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		middleware.RespondWithError(c, http.StatusBadRequest, "Invalid account id")
		return 0, false
	}
	return id, true
}

// respondLedgerError maps the ledger error taxonomy to HTTP status codes.
func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, ledger.ErrInvalidAmount):
		middleware.RespondWithError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, ledger.ErrAccountNotFound):
		middleware.RespondWithError(c, http.StatusNotFound, "Account not found")
	case errors.Is(err, ledger.ErrInsufficientFunds):
		middleware.RespondWithError(c, http.StatusUnprocessableEntity, "Insufficient funds")
	default:
		middleware.RespondWithError(c, http.StatusInternalServerError, "Storage failure")
	}
}
