package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
)

// EventType names an append-only audit signal.
type EventType string

const (
	EventCampaignCreated       EventType = "campaign_created"
	EventCampaignFunded        EventType = "campaign_funded"
	EventCampaignStatusChanged EventType = "campaign_status_changed"
	EventFundsWithdrawn        EventType = "funds_withdrawn"
	EventCreatorEnrolled       EventType = "creator_enrolled"
	EventContentSubmitted      EventType = "content_submitted"
	EventSubmissionVerified    EventType = "submission_verified"
	EventPaymentReleased       EventType = "payment_released"
	EventProfileRegistered     EventType = "profile_registered"
	EventVerifierUpdated       EventType = "verifier_updated"
	EventOwnershipTransferred  EventType = "ownership_transferred"
)

// Event is a record of a committed ledger change. Seq is assigned by the
// store and is strictly increasing.
type Event struct {
	Seq        int64
	Type       EventType
	CampaignID *int64
	Actor      common.Address
	Subject    common.Address // counterparty, zero when not applicable
	Amount     int64
	Success    *bool
	Detail     string
	CreatedAt  time.Time
}
