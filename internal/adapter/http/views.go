package httpadapter

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"campaign-escrow/internal/core/domain"
)

type campaignView struct {
	ID               int64      `json:"id"`
	Brand            string     `json:"brand"`
	Details          string     `json:"details"`
	RewardPerCreator string     `json:"reward_per_creator"`
	MaxCreators      int64      `json:"max_creators"`
	TotalDeposited   string     `json:"total_deposited"`
	TotalPaid        string     `json:"total_paid"`
	TotalRefunded    string     `json:"total_refunded"`
	Remaining        string     `json:"remaining"`
	EnrolledCount    int64      `json:"enrolled_count"`
	IsActive         bool       `json:"is_active"`
	Closed           bool       `json:"closed"`
	CreatedAt        time.Time  `json:"created_at"`
	Deadline         *time.Time `json:"deadline,omitempty"`
}

func (h *Handler) campaignView(c domain.Campaign) campaignView {
	v := campaignView{
		ID:               c.ID,
		Brand:            c.Brand.Hex(),
		Details:          c.Details,
		RewardPerCreator: h.amounts.Format(c.RewardPerCreator),
		MaxCreators:      c.MaxCreators,
		TotalDeposited:   h.amounts.Format(c.TotalDeposited),
		TotalPaid:        h.amounts.Format(c.TotalPaid),
		TotalRefunded:    h.amounts.Format(c.TotalRefunded),
		Remaining:        h.amounts.Format(c.Remaining()),
		EnrolledCount:    c.EnrolledCount,
		IsActive:         c.IsActive,
		Closed:           c.Closed,
		CreatedAt:        c.CreatedAt,
	}
	if c.HasDeadline() {
		d := c.Deadline
		v.Deadline = &d
	}
	return v
}

type enrollmentView struct {
	CampaignID    int64                   `json:"campaign_id"`
	Creator       string                  `json:"creator"`
	SubmissionURL string                  `json:"submission_url,omitempty"`
	Status        domain.EnrollmentStatus `json:"status"`
	IsVerified    bool                    `json:"is_verified"`
	IsPaid        bool                    `json:"is_paid"`
	PayoutPercent uint8                   `json:"payout_percent"`
	AmountPaid    string                  `json:"amount_paid"`
	JoinedAt      time.Time               `json:"joined_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

func (h *Handler) enrollmentView(e domain.Enrollment) enrollmentView {
	return enrollmentView{
		CampaignID:    e.CampaignID,
		Creator:       e.Creator.Hex(),
		SubmissionURL: e.SubmissionURL,
		Status:        e.Status,
		IsVerified:    e.IsVerified(),
		IsPaid:        e.IsPaid(),
		PayoutPercent: e.PayoutPercent,
		AmountPaid:    h.amounts.Format(e.AmountPaid),
		JoinedAt:      e.JoinedAt,
		UpdatedAt:     e.UpdatedAt,
	}
}

type profileView struct {
	Wallet    string      `json:"wallet"`
	Name      string      `json:"name"`
	Bio       string      `json:"bio"`
	Avatar    string      `json:"avatar"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"created_at"`
}

func profileViewOf(p domain.Profile) profileView {
	return profileView{
		Wallet:    p.Wallet.Hex(),
		Name:      p.Name,
		Bio:       p.Bio,
		Avatar:    p.Avatar,
		Role:      p.Role,
		CreatedAt: p.CreatedAt,
	}
}

type eventView struct {
	Seq        int64            `json:"seq"`
	Type       domain.EventType `json:"type"`
	CampaignID *int64           `json:"campaign_id,omitempty"`
	Actor      string           `json:"actor"`
	Subject    string           `json:"subject,omitempty"`
	Amount     string           `json:"amount,omitempty"`
	Success    *bool            `json:"success,omitempty"`
	Detail     string           `json:"detail,omitempty"`
	CreatedAt  time.Time        `json:"created_at"`
}

func (h *Handler) eventView(ev domain.Event) eventView {
	v := eventView{
		Seq:        ev.Seq,
		Type:       ev.Type,
		CampaignID: ev.CampaignID,
		Actor:      ev.Actor.Hex(),
		Success:    ev.Success,
		Detail:     ev.Detail,
		CreatedAt:  ev.CreatedAt,
	}
	if ev.Subject != (common.Address{}) {
		v.Subject = ev.Subject.Hex()
	}
	if ev.Amount != 0 {
		v.Amount = h.amounts.Format(ev.Amount)
	}
	return v
}
