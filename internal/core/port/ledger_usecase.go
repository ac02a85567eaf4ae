package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
)

// LedgerUseCase defines the business operations exposed by the escrow
// ledger. This interface represents the primary port into the application
// domain. Every mutating call is all-or-nothing; failures are one of the
// domain sentinel errors.
type LedgerUseCase interface {
	// CreateCampaign pulls reward*maxCreators from the caller into custody
	// and opens a new active campaign.
	CreateCampaign(ctx context.Context, caller common.Address, req CreateCampaignReq) (domain.Campaign, error)
	// ToggleCampaignStatus opens or pauses enrollment. Brand only.
	ToggleCampaignStatus(ctx context.Context, caller common.Address, campaignID int64, active bool) (domain.Campaign, error)
	// WithdrawRemainingFunds refunds unspent custody to the brand and closes
	// the campaign for good. It returns the refunded amount.
	WithdrawRemainingFunds(ctx context.Context, caller common.Address, campaignID int64) (int64, error)
	GetCampaign(ctx context.Context, campaignID int64) (domain.Campaign, error)
	ListCampaigns(ctx context.Context) ([]domain.Campaign, error)
	NextCampaignID(ctx context.Context) (int64, error)

	// Enroll joins the caller to a campaign.
	Enroll(ctx context.Context, caller common.Address, campaignID int64) (domain.Enrollment, error)
	// SubmitContent attaches or replaces the caller's proof-of-work URL.
	SubmitContent(ctx context.Context, caller common.Address, campaignID int64, url string) (domain.Enrollment, error)
	GetCampaignEnrollments(ctx context.Context, campaignID int64) ([]domain.Enrollment, error)
	GetEnrollment(ctx context.Context, campaignID int64, creator common.Address) (domain.Enrollment, error)
	HasEnrolled(ctx context.Context, campaignID int64, creator common.Address) (bool, error)

	// VerifyAndRelease applies the verifier's verdict and, when valid, pays
	// the creator from custody. It returns the released amount.
	VerifyAndRelease(ctx context.Context, caller common.Address, req VerdictReq) (int64, error)

	RegisterProfile(ctx context.Context, caller common.Address, req RegisterProfileReq) (domain.Profile, error)
	GetProfile(ctx context.Context, wallet common.Address) (domain.Profile, error)
	ListProfileAddresses(ctx context.Context) ([]common.Address, error)

	// UpdateVerifier rotates the single trusted attester. Owner only.
	UpdateVerifier(ctx context.Context, caller, verifier common.Address) error
	// TransferOwnership hands administrative control to another address.
	TransferOwnership(ctx context.Context, caller, owner common.Address) error
	Authorities(ctx context.Context) (domain.Authorities, error)

	BalanceOf(ctx context.Context, holder common.Address) (int64, error)
	Allowance(ctx context.Context, owner, spender common.Address) (int64, error)
	// Approve sets the caller's allowance for spender.
	Approve(ctx context.Context, caller, spender common.Address, amount int64) error
	// CustodyAddress is the account the ledger holds escrowed funds in.
	CustodyAddress() common.Address

	ListEvents(ctx context.Context, filter EventFilter) ([]domain.Event, error)
	// GetStats aggregates campaign amounts together with the custody balance.
	GetStats(ctx context.Context) (*StatsResp, error)
}

// CreateCampaignReq carries the brand's campaign parameters.
type CreateCampaignReq struct {
	Details          string
	RewardPerCreator int64
	MaxCreators      int64
	DurationDays     int64
}

// VerdictReq is the verification engine's decision for one enrollment.
type VerdictReq struct {
	CampaignID    int64
	Creator       common.Address
	IsValid       bool
	PayoutPercent uint8
}

// RegisterProfileReq carries the display fields of a new profile.
type RegisterProfileReq struct {
	Name   string
	Bio    string
	Avatar string
	Role   domain.Role
}

// StatsResp contains aggregated amounts in token base units. Outstanding is
// what custody must hold: deposited - paid - refunded.
type StatsResp struct {
	Campaigns   int64
	Deposited   int64
	Paid        int64
	Refunded    int64
	Outstanding int64
	Custody     int64
}
