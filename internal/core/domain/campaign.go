package domain

import (
	"math"
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// Campaign represents a funded unit of work held in escrow.
// Amounts are stored in token base units.
type Campaign struct {
	ID               int64
	Brand            common.Address
	Details          string // opaque to the ledger
	RewardPerCreator int64
	MaxCreators      int64
	TotalDeposited   int64
	TotalPaid        int64
	TotalRefunded    int64
	EnrolledCount    int64
	IsActive         bool
	Closed           bool // set once remaining funds were withdrawn
	CreatedAt        time.Time
	Deadline         time.Time // zero when the campaign never expires
}

// MaxDurationDays is the longest campaign whose deadline still fits in a
// time.Duration.
const MaxDurationDays = math.MaxInt64 / int64(24*time.Hour)

// CampaignParams are the brand-supplied inputs of a new campaign.
type CampaignParams struct {
	Brand            common.Address
	Details          string
	RewardPerCreator int64
	MaxCreators      int64
	DurationDays     int64
}

// NewCampaign validates params and builds a fully funded, active campaign.
func NewCampaign(id int64, p CampaignParams, now time.Time) (Campaign, error) {
	if p.Brand == (common.Address{}) {
		return Campaign{}, ErrInvalidAddress
	}
	if p.DurationDays < 0 || p.DurationDays > MaxDurationDays {
		return Campaign{}, ErrInvalidDuration
	}
	deposit, err := DepositFor(p.RewardPerCreator, p.MaxCreators)
	if err != nil {
		return Campaign{}, err
	}
	c := Campaign{
		ID:               id,
		Brand:            p.Brand,
		Details:          p.Details,
		RewardPerCreator: p.RewardPerCreator,
		MaxCreators:      p.MaxCreators,
		TotalDeposited:   deposit,
		IsActive:         true,
		CreatedAt:        now,
	}
	if p.DurationDays > 0 {
		c.Deadline = now.Add(time.Duration(p.DurationDays) * 24 * time.Hour)
	}
	return c, nil
}

// HasDeadline reports whether the campaign expires at all.
func (c Campaign) HasDeadline() bool { return !c.Deadline.IsZero() }

// Expired reports whether now is at or past the deadline.
func (c Campaign) Expired(now time.Time) bool {
	return c.HasDeadline() && !now.Before(c.Deadline)
}

// Remaining is the custody still backing this campaign.
func (c Campaign) Remaining() int64 {
	return c.TotalDeposited - c.TotalPaid - c.TotalRefunded
}

// CheckEnroll verifies a new enrollment may be admitted. Already-enrolled is
// checked by the caller between the deadline and capacity checks.
func (c Campaign) CheckEnroll(now time.Time) error {
	if c.Closed || !c.IsActive {
		return ErrCampaignInactive
	}
	if c.Expired(now) {
		return ErrDeadlinePassed
	}
	return nil
}

// CheckCapacity fails when no enrollment slot is left.
func (c Campaign) CheckCapacity() error {
	if c.EnrolledCount >= c.MaxCreators {
		return ErrCampaignFull
	}
	return nil
}

// CheckSubmit verifies content may still be submitted under this campaign.
func (c Campaign) CheckSubmit(now time.Time) error {
	if c.Closed {
		return ErrCampaignClosed
	}
	if c.Expired(now) {
		return ErrDeadlinePassed
	}
	return nil
}

// SetActive flips the enrollment gate. Only the brand may do so and a closed
// campaign cannot be reopened.
func (c *Campaign) SetActive(caller common.Address, active bool) error {
	if caller != c.Brand {
		return ErrUnauthorized
	}
	if c.Closed {
		return ErrCampaignClosed
	}
	c.IsActive = active
	return nil
}

// Withdraw closes the campaign and returns the amount owed back to the brand.
func (c *Campaign) Withdraw(caller common.Address) (int64, error) {
	if caller != c.Brand {
		return 0, ErrUnauthorized
	}
	amount := c.Remaining()
	if c.Closed || amount <= 0 {
		return 0, ErrNoRemainingFunds
	}
	c.TotalRefunded += amount
	c.IsActive = false
	c.Closed = true
	return amount, nil
}
