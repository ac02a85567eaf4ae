package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EnrollmentStatus is the single source of truth for where a creator stands
// within a campaign.
type EnrollmentStatus string

const (
	StatusJoined    EnrollmentStatus = "joined"
	StatusSubmitted EnrollmentStatus = "submitted"
	StatusVerified  EnrollmentStatus = "verified"
	StatusRejected  EnrollmentStatus = "rejected"
	StatusPaid      EnrollmentStatus = "paid"
)

// transitions lists the allowed successor states. Paid is terminal.
var transitions = map[EnrollmentStatus][]EnrollmentStatus{
	StatusJoined:    {StatusSubmitted, StatusRejected},
	StatusSubmitted: {StatusSubmitted, StatusRejected, StatusVerified},
	StatusRejected:  {StatusSubmitted},
	StatusVerified:  {StatusPaid},
}

// Valid reports whether s is a known status.
func (s EnrollmentStatus) Valid() bool {
	switch s {
	case StatusJoined, StatusSubmitted, StatusVerified, StatusRejected, StatusPaid:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is an allowed move.
func CanTransition(from, to EnrollmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Enrollment is a creator's participation record within one campaign.
type Enrollment struct {
	CampaignID    int64
	Creator       common.Address
	SubmissionURL string
	Status        EnrollmentStatus
	PayoutPercent uint8
	AmountPaid    int64
	JoinedAt      time.Time
	UpdatedAt     time.Time
}

// NewEnrollment returns a freshly joined record.
func NewEnrollment(campaignID int64, creator common.Address, now time.Time) Enrollment {
	return Enrollment{
		CampaignID: campaignID,
		Creator:    creator,
		Status:     StatusJoined,
		JoinedAt:   now,
		UpdatedAt:  now,
	}
}

// IsVerified, IsPaid and IsRejected mirror the status flags clients read.
func (e Enrollment) IsVerified() bool { return e.Status == StatusVerified || e.Status == StatusPaid }
func (e Enrollment) IsPaid() bool     { return e.Status == StatusPaid }
func (e Enrollment) IsRejected() bool { return e.Status == StatusRejected }

func (e *Enrollment) moveTo(to EnrollmentStatus, now time.Time) error {
	if !CanTransition(e.Status, to) {
		return ErrInvalidTransition
	}
	e.Status = to
	e.UpdatedAt = now
	return nil
}

// Submit attaches or replaces the proof-of-work URL. Resubmitting after a
// rejection reopens the enrollment for a new verdict.
func (e *Enrollment) Submit(url string, now time.Time) error {
	if url == "" {
		return ErrEmptySubmission
	}
	if e.IsPaid() {
		return ErrAlreadyPaid
	}
	if err := e.moveTo(StatusSubmitted, now); err != nil {
		return err
	}
	e.SubmissionURL = url
	return nil
}
