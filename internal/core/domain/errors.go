package domain

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

// Code is a machine-readable failure reason surfaced to clients.
type Code string

// Error is a named ledger failure. Every core operation fails with one of the
// sentinel values below, possibly wrapped with extra context.
type Error struct {
	Code Code
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func newError(code Code, msg string) *Error { return &Error{Code: code, Msg: msg} }

var (
	// authorization
	ErrUnauthorized = newError("UNAUTHORIZED", "caller is not permitted to perform this operation")

	// validation
	ErrInvalidAddress       = newError("INVALID_ADDRESS", "invalid address")
	ErrInvalidAmount        = newError("INVALID_AMOUNT", "amount must be positive")
	ErrInvalidCapacity      = newError("INVALID_CAPACITY", "max creators must be positive")
	ErrInvalidDuration      = newError("INVALID_DURATION", "duration days must be within 0..106751")
	ErrAmountOverflow       = newError("AMOUNT_OVERFLOW", "amount overflows the ledger range")
	ErrInvalidPayoutPercent = newError("INVALID_PAYOUT_PERCENT", "payout percent must be within 1..100")
	ErrInvalidRole          = newError("INVALID_ROLE", "role must be brand or creator")
	ErrEmptyName            = newError("EMPTY_NAME", "profile name is required")
	ErrEmptySubmission      = newError("EMPTY_SUBMISSION", "submission url is required")

	// lookups
	ErrCampaignNotFound   = newError("CAMPAIGN_NOT_FOUND", "campaign not found")
	ErrEnrollmentNotFound = newError("ENROLLMENT_NOT_FOUND", "enrollment not found")
	ErrProfileNotFound    = newError("PROFILE_NOT_FOUND", "profile not found")

	// state preconditions
	ErrCampaignInactive   = newError("CAMPAIGN_INACTIVE", "campaign is not active")
	ErrCampaignClosed     = newError("CAMPAIGN_CLOSED", "campaign is closed")
	ErrDeadlinePassed     = newError("DEADLINE_PASSED", "campaign deadline has passed")
	ErrAlreadyEnrolled    = newError("ALREADY_ENROLLED", "already enrolled")
	ErrCampaignFull       = newError("CAMPAIGN_FULL", "campaign is full")
	ErrAlreadyPaid        = newError("ALREADY_PAID", "enrollment already paid")
	ErrEnrollmentRejected = newError("ENROLLMENT_REJECTED", "enrollment was rejected; resubmit before a new verdict")
	ErrNoSubmission       = newError("NO_SUBMISSION", "nothing submitted for this enrollment")
	ErrAlreadyRegistered  = newError("ALREADY_REGISTERED", "profile already registered")
	ErrInvalidTransition  = newError("INVALID_TRANSITION", "invalid enrollment status transition")
	ErrNoRemainingFunds   = newError("NO_REMAINING_FUNDS", "campaign has no remaining funds")

	// funding
	ErrBudgetExceeded        = newError("BUDGET_EXCEEDED", "payout exceeds campaign custody")
	ErrInsufficientBalance   = newError("INSUFFICIENT_BALANCE", "insufficient token balance")
	ErrInsufficientAllowance = newError("INSUFFICIENT_ALLOWANCE", "insufficient token allowance")
)

// InsufficientFundsError reports a failed debit against a balance or an
// allowance. It unwraps to ErrInsufficientBalance or ErrInsufficientAllowance.
type InsufficientFundsError struct {
	Kind    *Error
	Account common.Address
	Have    int64
	Need    int64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("%s: account %s has %d, needs %d", e.Kind.Msg, e.Account.Hex(), e.Have, e.Need)
}

func (e *InsufficientFundsError) Unwrap() error { return e.Kind }
