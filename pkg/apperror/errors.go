package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError is a structured error that maps to HTTP responses.
type AppError struct {
	Code       string `json:"error_code"`
	Message    string `json:"message"`
	HTTPStatus int    `json:"-"`
	Err        error  `json:"-"` // Wrapped internal error (not exposed to client)
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new AppError.
func New(code string, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
	}
}

// Wrap wraps an internal error with an AppError.
func Wrap(code string, message string, httpStatus int, err error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Err:        err,
	}
}

// HasCode reports whether err is an AppError with the given code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}

// ---- Inventory (INV) ----

const CodeInsufficientInventory = "INV_001"

func ErrInsufficientInventory(available, requested int) *AppError {
	return New(CodeInsufficientInventory,
		fmt.Sprintf("Only %d accounts in stock, %d requested", available, requested),
		http.StatusConflict)
}

func ErrBelowMinimumQuantity(minimum int) *AppError {
	return New("INV_002", fmt.Sprintf("Minimum quantity is %d", minimum), http.StatusBadRequest)
}

func ErrDuplicateCredential(email string) *AppError {
	return New("INV_003", fmt.Sprintf("Duplicate account in batch: %s", email), http.StatusBadRequest)
}

// ---- Wallet Ledger (WAL / LED) ----

const (
	CodeInsufficientBalance = "WAL_001"
	CodeAlreadySettled      = "LED_001"
)

func ErrInsufficientBalance(balance, required int64) *AppError {
	return New(CodeInsufficientBalance,
		fmt.Sprintf("Wallet balance %d below required %d", balance, required),
		http.StatusPaymentRequired)
}

func ErrInvalidAmount() *AppError {
	return New("WAL_002", "Invalid amount", http.StatusBadRequest)
}

func ErrAmountOutOfRange(min, max int64) *AppError {
	return New("WAL_003", fmt.Sprintf("Amount must be between %d and %d", min, max), http.StatusBadRequest)
}

// ErrAlreadySettled is the idempotency guard: the transaction already
// reached a terminal status. Callers at the reconcile/cancel boundary
// swallow it; it must never surface to end users.
func ErrAlreadySettled() *AppError {
	return New(CodeAlreadySettled, "Transaction already settled", http.StatusConflict)
}

// ---- Payment Gateway (GW) ----

const CodeGatewayUnavailable = "GW_001"

func ErrGatewayUnavailable(err error) *AppError {
	return Wrap(CodeGatewayUnavailable, "Payment gateway unavailable", http.StatusBadGateway, err)
}

// ---- Lookup & State (RES / FLOW) ----

const (
	CodeNotFound     = "RES_001"
	CodeInvalidState = "FLOW_001"
)

func ErrNotFound(entity string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", entity), http.StatusNotFound)
}

func ErrInvalidState(message string) *AppError {
	return New(CodeInvalidState, message, http.StatusConflict)
}

func ErrPurchaseInProgress() *AppError {
	return New("FLOW_002", "Another purchase is already in progress", http.StatusConflict)
}

// ---- Authentication (AUTH) ----

func ErrInvalidCredentials() *AppError {
	return New("AUTH_001", "Invalid credentials", http.StatusUnauthorized)
}

func ErrInvalidToken() *AppError {
	return New("AUTH_002", "Invalid or expired token", http.StatusUnauthorized)
}

func ErrUserBanned() *AppError {
	return New("AUTH_003", "Account is banned", http.StatusForbidden)
}

func ErrInvalidSignature() *AppError {
	return New("AUTH_004", "Invalid webhook signature", http.StatusUnauthorized)
}

// ---- Rate Limiting (RATE) ----

func ErrRateLimitExceeded() *AppError {
	return New("RATE_001", "Rate limit exceeded", http.StatusTooManyRequests)
}

// ---- Validation (VAL) ----

func Validation(message string) *AppError {
	return New("VAL_001", message, http.StatusBadRequest)
}

// ---- System & Integrity (SYS) ----

const CodeIntegrityViolation = "SYS_002"

// InternalError wraps an internal error as a SYS_001 error.
func InternalError(err error) *AppError {
	return Wrap("SYS_001", "Internal server error", http.StatusInternalServerError, err)
}

// ErrIntegrityViolation marks a fatal data-integrity breach (e.g. a sold
// item without a buyer reference). The affected operation must halt; the
// condition is never repaired by guessing.
func ErrIntegrityViolation(detail string) *AppError {
	return New(CodeIntegrityViolation, fmt.Sprintf("Data integrity violation: %s", detail), http.StatusInternalServerError)
}
