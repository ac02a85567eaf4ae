package port

import (
	"context"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
)

// Store is the persistence layer for the escrow ledger. It is an outbound
// port in hexagonal architecture. WithinTx runs fn as one indivisible unit:
// either every write made through tx becomes visible or none does, and no
// other transaction observes a half-applied change. Implementations must be
// concurrency-safe.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// View runs fn against committed state without making any change
	// durable. Writes through tx fail or are discarded.
	View(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
}

// Tx exposes the repositories bound to one transaction.
type Tx interface {
	Campaigns() CampaignRepository
	Enrollments() EnrollmentRepository
	Profiles() ProfileRepository
	Settings() SettingsRepository
	Tokens() TokenLedger
	Events() EventLog
}

// CampaignRepository stores campaign rows keyed by sequential id.
type CampaignRepository interface {
	// Insert stores a new campaign.
	Insert(ctx context.Context, c domain.Campaign) error
	// Get returns a campaign or domain.ErrCampaignNotFound.
	Get(ctx context.Context, id int64) (domain.Campaign, error)
	// GetForUpdate is Get that also locks the row until the transaction ends.
	GetForUpdate(ctx context.Context, id int64) (domain.Campaign, error)
	// Update overwrites the mutable columns of an existing campaign.
	Update(ctx context.Context, c domain.Campaign) error
	// List returns all campaigns ordered by id.
	List(ctx context.Context) ([]domain.Campaign, error)
	// Totals aggregates amounts over all campaigns.
	Totals(ctx context.Context) (CampaignTotals, error)
}

// EnrollmentRepository stores enrollments keyed by (campaign, creator).
type EnrollmentRepository interface {
	// Insert stores a new enrollment or fails with domain.ErrAlreadyEnrolled.
	Insert(ctx context.Context, e domain.Enrollment) error
	// Get returns an enrollment or domain.ErrEnrollmentNotFound.
	Get(ctx context.Context, campaignID int64, creator common.Address) (domain.Enrollment, error)
	// Update overwrites the mutable columns of an existing enrollment.
	Update(ctx context.Context, e domain.Enrollment) error
	// ListByCampaign returns the campaign's enrollments in insertion order.
	ListByCampaign(ctx context.Context, campaignID int64) ([]domain.Enrollment, error)
}

// ProfileRepository stores write-once profiles.
type ProfileRepository interface {
	// Insert stores a profile or fails with domain.ErrAlreadyRegistered.
	Insert(ctx context.Context, p domain.Profile) error
	// Get returns a profile or domain.ErrProfileNotFound.
	Get(ctx context.Context, wallet common.Address) (domain.Profile, error)
	// ListAddresses returns registered wallets in registration order.
	ListAddresses(ctx context.Context) ([]common.Address, error)
}

// SettingsRepository holds the ledger-wide scalars.
type SettingsRepository interface {
	// Authorities returns owner and verifier, locking them for the rest of
	// the transaction.
	Authorities(ctx context.Context) (domain.Authorities, error)
	// LockAuthorities is Authorities with an exclusive lock, taken by
	// transactions that go on to call SetAuthorities.
	LockAuthorities(ctx context.Context) (domain.Authorities, error)
	SetAuthorities(ctx context.Context, a domain.Authorities) error
	// NextCampaignID peeks at the id the next campaign will receive.
	NextCampaignID(ctx context.Context) (int64, error)
	// AllocateCampaignID returns the next id and advances the counter.
	AllocateCampaignID(ctx context.Context) (int64, error)
}

// TokenLedger is the fungible token the escrow holds custody in. Debits fail
// with *domain.InsufficientFundsError.
type TokenLedger interface {
	BalanceOf(ctx context.Context, holder common.Address) (int64, error)
	Allowance(ctx context.Context, owner, spender common.Address) (int64, error)
	Approve(ctx context.Context, owner, spender common.Address, amount int64) error
	Transfer(ctx context.Context, from, to common.Address, amount int64) error
	// TransferFrom moves amount from -> to, spending spender's allowance.
	TransferFrom(ctx context.Context, spender, from, to common.Address, amount int64) error
	// Mint creates new units. Used only to seed development balances.
	Mint(ctx context.Context, to common.Address, amount int64) error
}

// EventLog is the append-only audit trail.
type EventLog interface {
	// Append stores ev and returns it with Seq assigned.
	Append(ctx context.Context, ev domain.Event) (domain.Event, error)
	List(ctx context.Context, filter EventFilter) ([]domain.Event, error)
}

// CampaignTotals sums amounts across every campaign.
type CampaignTotals struct {
	Campaigns int64
	Deposited int64
	Paid      int64
	Refunded  int64
}

// EventFilter narrows an event log query. Zero values mean no restriction,
// except Limit which is capped by the store.
type EventFilter struct {
	CampaignID *int64
	AfterSeq   int64
	Limit      int
}
