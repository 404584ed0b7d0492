package ledger

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"

	"github.com/atlas-bank/atlas_bank/internal/notification"
)

// Handler exposes the engine over HTTP. Ownership checks (the caller must
// own the referenced account) happen here; the engine itself trusts the ids
// it is handed.
type Handler struct {
	service  *Service
	notifier notification.Notifier
}

// NewHandler builds the ledger HTTP handler.
func NewHandler(service *Service, notifier notification.Notifier) *Handler {
	return &Handler{service: service, notifier: notifier}
}

type createAccountRequest struct {
	UserID         int64           `json:"user_id"`
	AccountType    string          `json:"account_type"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	InterestRate   decimal.Decimal `json:"interest_rate"`
	AccountNumber  string          `json:"account_number"`
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type transferRequest struct {
	ToAccountNumber string          `json:"to_account_number"`
	Amount          decimal.Decimal `json:"amount"`
}

// CreateAccount opens an account for the authenticated user.
func (h *Handler) CreateAccount(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(int64)
	var req createAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if req.UserID != 0 && req.UserID != callerID {
		return fiber.NewError(http.StatusForbidden, "cannot create accounts for other users")
	}

	acct, err := h.service.CreateAccount(c.UserContext(), CreateAccountInput{
		UserID:         callerID,
		AccountType:    req.AccountType,
		OverdraftLimit: req.OverdraftLimit,
		InterestRate:   req.InterestRate,
		AccountNumber:  req.AccountNumber,
	})
	if err != nil {
		return statusError(err)
	}
	return c.Status(http.StatusCreated).JSON(acct)
}

// GetAccount returns one of the caller's accounts.
func (h *Handler) GetAccount(c *fiber.Ctx) error {
	acct, err := h.ownedAccount(c)
	if err != nil {
		return err
	}
	return c.JSON(acct)
}

// ListAccounts returns the accounts of the user in the path, which must be
// the caller.
func (h *Handler) ListAccounts(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(int64)
	userID, err := strconv.ParseInt(c.Params("userId"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid user id")
	}
	if userID != callerID {
		return fiber.NewError(http.StatusForbidden, "access denied")
	}
	accounts, err := h.service.ListAccountsByUser(c.UserContext(), userID)
	if err != nil {
		return statusError(err)
	}
	if accounts == nil {
		accounts = []Account{}
	}
	return c.JSON(accounts)
}

// DeleteAccount removes one of the caller's accounts and its history.
func (h *Handler) DeleteAccount(c *fiber.Ctx) error {
	acct, err := h.ownedAccount(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteAccount(c.UserContext(), acct.ID); err != nil {
		return statusError(err)
	}
	return c.JSON(fiber.Map{"message": "account deleted"})
}

// Deposit credits the caller's account.
func (h *Handler) Deposit(c *fiber.Ctx) error {
	acct, err := h.ownedAccount(c)
	if err != nil {
		return err
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.Deposit(c.UserContext(), acct.ID, req.Amount); err != nil {
		return statusError(err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("deposit of %s completed", req.Amount)})
}

// Withdraw debits the caller's account.
func (h *Handler) Withdraw(c *fiber.Ctx) error {
	acct, err := h.ownedAccount(c)
	if err != nil {
		return err
	}
	var req amountRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.Withdraw(c.UserContext(), acct.ID, req.Amount); err != nil {
		return statusError(err)
	}
	return c.JSON(fiber.Map{"message": fmt.Sprintf("withdrawal of %s completed", req.Amount)})
}

// Transfer moves funds from the caller's account to the account identified
// by number.
func (h *Handler) Transfer(c *fiber.Ctx) error {
	acct, err := h.ownedAccount(c)
	if err != nil {
		return err
	}
	var req transferRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	if err := h.service.Transfer(c.UserContext(), acct.ID, req.ToAccountNumber, req.Amount); err != nil {
		return statusError(err)
	}

	if h.notifier != nil {
		if dest, err := h.service.GetAccountByNumber(c.UserContext(), req.ToAccountNumber); err == nil {
			_ = h.notifier.Send(c.UserContext(), notification.Message{
				Kind:        notification.KindTransferReceived,
				Destination: strconv.FormatInt(dest.UserID, 10),
				Body:        fmt.Sprintf("You received %s from account %s", req.Amount, acct.AccountNumber),
			})
		}
	}

	return c.JSON(fiber.Map{"message": fmt.Sprintf("transfer of %s to account %s completed", req.Amount, req.ToAccountNumber)})
}

// ListTransactions returns the account's history, optionally restricted to
// a from/to time range (RFC 3339).
func (h *Handler) ListTransactions(c *fiber.Ctx) error {
	acct, err := h.ownedAccount(c)
	if err != nil {
		return err
	}

	fromParam := c.Query("from")
	toParam := c.Query("to")

	var txns []Transaction
	if fromParam != "" || toParam != "" {
		start, end, perr := parseRange(fromParam, toParam)
		if perr != nil {
			return fiber.NewError(http.StatusBadRequest, perr.Error())
		}
		txns, err = h.service.ListTransactionsBetween(c.UserContext(), acct.ID, start, end)
	} else {
		txns, err = h.service.ListTransactions(c.UserContext(), acct.ID)
	}
	if err != nil {
		return statusError(err)
	}
	if txns == nil {
		txns = []Transaction{}
	}
	return c.JSON(txns)
}

// GetTransaction returns a single history entry belonging to the caller.
func (h *Handler) GetTransaction(c *fiber.Ctx) error {
	callerID, _ := c.Locals("user_id").(int64)
	txnID, err := strconv.ParseInt(c.Params("transactionId"), 10, 64)
	if err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid transaction id")
	}

	txn, err := h.service.GetTransaction(c.UserContext(), txnID)
	if err != nil {
		return statusError(err)
	}
	acct, err := h.service.GetAccount(c.UserContext(), txn.AccountID)
	if err != nil {
		return statusError(err)
	}
	if acct.UserID != callerID {
		return fiber.NewError(http.StatusForbidden, "access denied")
	}
	return c.JSON(txn)
}

// ownedAccount resolves the accountId path parameter and enforces that the
// caller owns it.
func (h *Handler) ownedAccount(c *fiber.Ctx) (Account, error) {
	callerID, _ := c.Locals("user_id").(int64)
	accountID, err := strconv.ParseInt(c.Params("accountId"), 10, 64)
	if err != nil {
		return Account{}, fiber.NewError(http.StatusBadRequest, "invalid account id")
	}
	acct, err := h.service.GetAccount(c.UserContext(), accountID)
	if err != nil {
		return Account{}, statusError(err)
	}
	if acct.UserID != callerID {
		return Account{}, fiber.NewError(http.StatusForbidden, "access denied")
	}
	return acct, nil
}

func parseRange(fromParam, toParam string) (time.Time, time.Time, error) {
	start := time.Time{}
	end := time.Now().UTC()
	if fromParam != "" {
		parsed, err := time.Parse(time.RFC3339, fromParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid from time: %w", err)
		}
		start = parsed
	}
	if toParam != "" {
		parsed, err := time.Parse(time.RFC3339, toParam)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid to time: %w", err)
		}
		end = parsed
	}
	return start, end, nil
}

func statusError(err error) error {
	switch {
	case errors.Is(err, ErrAccountNotFound), errors.Is(err, ErrTransactionNotFound):
		return fiber.NewError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrInvalidAmount),
		errors.Is(err, ErrSelfTransfer),
		errors.Is(err, ErrInsufficientFunds),
		errors.Is(err, ErrAccountCreationFailed),
		errors.Is(err, ErrAccountNumberExhausted):
		return fiber.NewError(http.StatusBadRequest, err.Error())
	default:
		return fiber.NewError(http.StatusInternalServerError, err.Error())
	}
}
