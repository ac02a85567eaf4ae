package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
	"campaign-escrow/internal/core/port"
)

// maxEventPage caps EventFilter.Limit.
const maxEventPage = 500

type campaignRepo struct {
	st *state
	ro bool
}

func (r campaignRepo) Insert(_ context.Context, c domain.Campaign) error {
	if r.ro {
		return errReadOnly
	}
	if _, ok := r.st.campaigns[c.ID]; ok {
		return fmt.Errorf("campaign %d already exists", c.ID)
	}
	r.st.campaigns[c.ID] = c
	return nil
}

func (r campaignRepo) Get(_ context.Context, id int64) (domain.Campaign, error) {
	c, ok := r.st.campaigns[id]
	if !ok {
		return domain.Campaign{}, domain.ErrCampaignNotFound
	}
	return c, nil
}

// GetForUpdate needs no extra locking: the store mutex is held for the
// whole transaction.
func (r campaignRepo) GetForUpdate(ctx context.Context, id int64) (domain.Campaign, error) {
	return r.Get(ctx, id)
}

func (r campaignRepo) Update(_ context.Context, c domain.Campaign) error {
	if r.ro {
		return errReadOnly
	}
	if _, ok := r.st.campaigns[c.ID]; !ok {
		return domain.ErrCampaignNotFound
	}
	r.st.campaigns[c.ID] = c
	return nil
}

func (r campaignRepo) List(_ context.Context) ([]domain.Campaign, error) {
	out := make([]domain.Campaign, 0, len(r.st.campaigns))
	for _, c := range r.st.campaigns {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b domain.Campaign) int { return cmp.Compare(a.ID, b.ID) })
	return out, nil
}

func (r campaignRepo) Totals(_ context.Context) (port.CampaignTotals, error) {
	var t port.CampaignTotals
	for _, c := range r.st.campaigns {
		t.Campaigns++
		t.Deposited += c.TotalDeposited
		t.Paid += c.TotalPaid
		t.Refunded += c.TotalRefunded
	}
	return t, nil
}

type enrollmentRepo struct {
	st *state
	ro bool
}

func (r enrollmentRepo) Insert(_ context.Context, e domain.Enrollment) error {
	if r.ro {
		return errReadOnly
	}
	key := enrollmentKey{e.CampaignID, e.Creator}
	if _, ok := r.st.enrollments[key]; ok {
		return domain.ErrAlreadyEnrolled
	}
	r.st.enrollments[key] = e
	r.st.enrollOrder[e.CampaignID] = append(r.st.enrollOrder[e.CampaignID], e.Creator)
	return nil
}

func (r enrollmentRepo) Get(_ context.Context, campaignID int64, creator common.Address) (domain.Enrollment, error) {
	e, ok := r.st.enrollments[enrollmentKey{campaignID, creator}]
	if !ok {
		return domain.Enrollment{}, domain.ErrEnrollmentNotFound
	}
	return e, nil
}

func (r enrollmentRepo) Update(_ context.Context, e domain.Enrollment) error {
	if r.ro {
		return errReadOnly
	}
	key := enrollmentKey{e.CampaignID, e.Creator}
	if _, ok := r.st.enrollments[key]; !ok {
		return domain.ErrEnrollmentNotFound
	}
	r.st.enrollments[key] = e
	return nil
}

func (r enrollmentRepo) ListByCampaign(_ context.Context, campaignID int64) ([]domain.Enrollment, error) {
	order := r.st.enrollOrder[campaignID]
	out := make([]domain.Enrollment, 0, len(order))
	for _, creator := range order {
		out = append(out, r.st.enrollments[enrollmentKey{campaignID, creator}])
	}
	return out, nil
}

type profileRepo struct {
	st *state
	ro bool
}

func (r profileRepo) Insert(_ context.Context, p domain.Profile) error {
	if r.ro {
		return errReadOnly
	}
	if _, ok := r.st.profiles[p.Wallet]; ok {
		return domain.ErrAlreadyRegistered
	}
	r.st.profiles[p.Wallet] = p
	r.st.profileList = append(r.st.profileList, p.Wallet)
	return nil
}

func (r profileRepo) Get(_ context.Context, wallet common.Address) (domain.Profile, error) {
	p, ok := r.st.profiles[wallet]
	if !ok {
		return domain.Profile{}, domain.ErrProfileNotFound
	}
	return p, nil
}

func (r profileRepo) ListAddresses(_ context.Context) ([]common.Address, error) {
	return slices.Clone(r.st.profileList), nil
}

type settingsRepo struct {
	st *state
	ro bool
}

func (r settingsRepo) Authorities(_ context.Context) (domain.Authorities, error) {
	return r.st.authorities, nil
}

func (r settingsRepo) LockAuthorities(ctx context.Context) (domain.Authorities, error) {
	return r.Authorities(ctx)
}

func (r settingsRepo) SetAuthorities(_ context.Context, a domain.Authorities) error {
	if r.ro {
		return errReadOnly
	}
	r.st.authorities = a
	return nil
}

func (r settingsRepo) NextCampaignID(_ context.Context) (int64, error) {
	return r.st.nextCampaignID, nil
}

func (r settingsRepo) AllocateCampaignID(_ context.Context) (int64, error) {
	if r.ro {
		return 0, errReadOnly
	}
	id := r.st.nextCampaignID
	r.st.nextCampaignID++
	return id, nil
}

type tokenLedger struct {
	st *state
	ro bool
}

func (l tokenLedger) BalanceOf(_ context.Context, holder common.Address) (int64, error) {
	return l.st.balances[holder], nil
}

func (l tokenLedger) Allowance(_ context.Context, owner, spender common.Address) (int64, error) {
	return l.st.allowances[allowanceKey{owner, spender}], nil
}

func (l tokenLedger) Approve(_ context.Context, owner, spender common.Address, amount int64) error {
	if l.ro {
		return errReadOnly
	}
	if owner == (common.Address{}) || spender == (common.Address{}) {
		return domain.ErrInvalidAddress
	}
	if amount < 0 {
		return domain.ErrInvalidAmount
	}
	l.st.allowances[allowanceKey{owner, spender}] = amount
	return nil
}

func (l tokenLedger) Transfer(_ context.Context, from, to common.Address, amount int64) error {
	return l.move(from, to, amount)
}

func (l tokenLedger) TransferFrom(_ context.Context, spender, from, to common.Address, amount int64) error {
	if l.ro {
		return errReadOnly
	}
	key := allowanceKey{from, spender}
	left, err := domain.Debit(domain.ErrInsufficientAllowance, spender, l.st.allowances[key], amount)
	if err != nil {
		return err
	}
	if err = l.move(from, to, amount); err != nil {
		return err
	}
	l.st.allowances[key] = left
	return nil
}

func (l tokenLedger) Mint(_ context.Context, to common.Address, amount int64) error {
	if l.ro {
		return errReadOnly
	}
	if to == (common.Address{}) {
		return domain.ErrInvalidAddress
	}
	next, err := domain.Credit(l.st.balances[to], amount)
	if err != nil {
		return err
	}
	l.st.balances[to] = next
	return nil
}

func (l tokenLedger) move(from, to common.Address, amount int64) error {
	if l.ro {
		return errReadOnly
	}
	if to == (common.Address{}) {
		return domain.ErrInvalidAddress
	}
	fromLeft, err := domain.Debit(domain.ErrInsufficientBalance, from, l.st.balances[from], amount)
	if err != nil {
		return err
	}
	if from == to {
		return nil
	}
	toNext, err := domain.Credit(l.st.balances[to], amount)
	if err != nil {
		return err
	}
	l.st.balances[from] = fromLeft
	l.st.balances[to] = toNext
	return nil
}

type eventLog struct {
	st *state
	ro bool
}

func (l eventLog) Append(_ context.Context, ev domain.Event) (domain.Event, error) {
	if l.ro {
		return domain.Event{}, errReadOnly
	}
	ev.Seq = int64(len(l.st.events)) + 1
	l.st.events = append(l.st.events, ev)
	return ev, nil
}

func (l eventLog) List(_ context.Context, f port.EventFilter) ([]domain.Event, error) {
	limit := f.Limit
	if limit <= 0 || limit > maxEventPage {
		limit = maxEventPage
	}
	out := make([]domain.Event, 0)
	for _, ev := range l.st.events {
		if ev.Seq <= f.AfterSeq {
			continue
		}
		if f.CampaignID != nil && (ev.CampaignID == nil || *ev.CampaignID != *f.CampaignID) {
			continue
		}
		out = append(out, ev)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}
