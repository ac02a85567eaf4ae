package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Verifier is the capability allowed to attest submissions. The release
// engine only asks it whether a caller may act.
type Verifier interface {
	Authorize(caller common.Address) error
}

// VerifierAgent is the single trusted attester address.
type VerifierAgent common.Address

// Authorize accepts exactly the agent address.
func (v VerifierAgent) Authorize(caller common.Address) error {
	if common.Address(v) == (common.Address{}) || caller != common.Address(v) {
		return ErrUnauthorized
	}
	return nil
}

// Verdict is the verification engine's decision for one submission.
// PayoutPercent is ignored when Valid is false.
type Verdict struct {
	Valid         bool
	PayoutPercent uint8
}

// ApplyVerdict authorizes caller, validates the verdict against the campaign
// and enrollment, and on success updates both records. It returns the amount
// that must leave custody for the creator (zero on rejection). Neither record
// is modified when an error is returned.
func ApplyVerdict(c *Campaign, e *Enrollment, v Verifier, caller common.Address, verdict Verdict, now time.Time) (int64, error) {
	if err := v.Authorize(caller); err != nil {
		return 0, err
	}
	if e.CampaignID != c.ID {
		return 0, ErrEnrollmentNotFound
	}
	if e.IsPaid() {
		return 0, ErrAlreadyPaid
	}
	if c.Closed {
		return 0, ErrCampaignClosed
	}
	if e.IsRejected() {
		return 0, ErrEnrollmentRejected
	}

	next := *e
	if !verdict.Valid {
		if err := next.moveTo(StatusRejected, now); err != nil {
			return 0, err
		}
		next.PayoutPercent = 0
		*e = next
		return 0, nil
	}

	if e.Status != StatusSubmitted {
		return 0, ErrNoSubmission
	}
	amount, err := PayoutAmount(c.RewardPerCreator, verdict.PayoutPercent)
	if err != nil {
		return 0, err
	}
	if c.TotalPaid+amount > c.TotalDeposited-c.TotalRefunded {
		return 0, ErrBudgetExceeded
	}
	if err = next.moveTo(StatusVerified, now); err != nil {
		return 0, err
	}
	if err = next.moveTo(StatusPaid, now); err != nil {
		return 0, err
	}
	next.PayoutPercent = verdict.PayoutPercent
	next.AmountPaid = amount

	*e = next
	c.TotalPaid += amount
	return amount, nil
}
