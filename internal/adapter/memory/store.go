// Package memory implements port.Store in process memory. Transactions are
// serialized by a single mutex and applied to a private copy of the state,
// which replaces the committed state only when the callback succeeds.
package memory

import (
	"context"
	"errors"
	"maps"
	"sync"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

type enrollmentKey struct {
	campaignID int64
	creator    common.Address
}

type allowanceKey struct {
	owner   common.Address
	spender common.Address
}

type state struct {
	authorities    domain.Authorities
	nextCampaignID int64

	campaigns   map[int64]domain.Campaign
	enrollments map[enrollmentKey]domain.Enrollment
	enrollOrder map[int64][]common.Address
	profiles    map[common.Address]domain.Profile
	profileList []common.Address
	balances    map[common.Address]int64
	allowances  map[allowanceKey]int64
	events      []domain.Event
}

func newState(a domain.Authorities) *state {
	return &state{
		authorities: a,
		campaigns:   map[int64]domain.Campaign{},
		enrollments: map[enrollmentKey]domain.Enrollment{},
		enrollOrder: map[int64][]common.Address{},
		profiles:    map[common.Address]domain.Profile{},
		balances:    map[common.Address]int64{},
		allowances:  map[allowanceKey]int64{},
	}
}

// clone returns a copy that can be mutated without touching s. Append-only
// slices are capped so that appends in the copy reallocate instead of
// writing into s's backing arrays.
func (s *state) clone() *state {
	c := &state{
		authorities:    s.authorities,
		nextCampaignID: s.nextCampaignID,
		campaigns:      maps.Clone(s.campaigns),
		enrollments:    maps.Clone(s.enrollments),
		enrollOrder:    make(map[int64][]common.Address, len(s.enrollOrder)),
		profiles:       maps.Clone(s.profiles),
		profileList:    s.profileList[:len(s.profileList):len(s.profileList)],
		balances:       maps.Clone(s.balances),
		allowances:     maps.Clone(s.allowances),
		events:         s.events[:len(s.events):len(s.events)],
	}
	for id, list := range s.enrollOrder {
		c.enrollOrder[id] = list[:len(list):len(list)]
	}
	return c
}

// errReadOnly is returned by writes made inside View.
var errReadOnly = errors.New("memory store: write in read-only transaction")

// Store is a concurrency-safe in-memory ledger store. Writers are
// serialized; readers share the committed state.
type Store struct {
	mu sync.RWMutex
	st *state
}

var _ port.Store = (*Store)(nil)

// NewStore returns an empty store governed by the given authorities.
func NewStore(a domain.Authorities) *Store {
	return &Store{st: newState(a)}
}

// WithinTx runs fn against a copy of the state and commits the copy when fn
// returns nil. A panic in fn leaves the committed state untouched.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	work := s.st.clone()
	if err := fn(ctx, &tx{st: work}); err != nil {
		return err
	}
	s.st = work
	return nil
}

// View runs fn on the committed state itself, under a read lock. Nothing is
// copied, so every write method refuses with errReadOnly.
func (s *Store) View(ctx context.Context, fn func(ctx context.Context, tx port.Tx) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx, &tx{st: s.st, ro: true})
}

type tx struct {
	st *state
	ro bool
}

func (t *tx) Campaigns() port.CampaignRepository     { return campaignRepo{t.st, t.ro} }
func (t *tx) Enrollments() port.EnrollmentRepository { return enrollmentRepo{t.st, t.ro} }
func (t *tx) Profiles() port.ProfileRepository       { return profileRepo{t.st, t.ro} }
func (t *tx) Settings() port.SettingsRepository      { return settingsRepo{t.st, t.ro} }
func (t *tx) Tokens() port.TokenLedger               { return tokenLedger{t.st, t.ro} }
func (t *tx) Events() port.EventLog                  { return eventLog{t.st, t.ro} }
