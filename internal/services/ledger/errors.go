package ledger

import "errors"

// Service errors. Validation errors are permanent and never retried;
// ErrStorageConflict is transient and retried internally before the
// engine gives up with ErrTimeout.
var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrAccountNotFound    = errors.New("account not found")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrRoleViolation      = errors.New("role violation")
	ErrSelfTransfer       = errors.New("sender and receiver must differ")
	ErrDuplicateReference = errors.New("transfer reference already used")
	ErrAccountInactive    = errors.New("account is inactive")
	ErrStorageConflict    = errors.New("storage conflict")
	ErrTimeout            = errors.New("transfer timed out")
)
