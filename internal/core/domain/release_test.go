package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func submitted(t *testing.T, c Campaign) Enrollment {
	t.Helper()
	e := NewEnrollment(c.ID, creator, t0)
	require.NoError(t, e.Submit("https://youtube.com/watch?v=abcdefghijk", t0))
	return e
}

func TestVerifierAgentAuthorize(t *testing.T) {
	v := VerifierAgent(agent)
	require.NoError(t, v.Authorize(agent))
	require.ErrorIs(t, v.Authorize(brand), ErrUnauthorized)
	require.ErrorIs(t, VerifierAgent{}.Authorize(brand), ErrUnauthorized)
}

func TestApplyVerdictFullPayout(t *testing.T) {
	c := newTestCampaign(t, 100, 2, 0)
	e := submitted(t, c)

	amount, err := ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: true, PayoutPercent: 100}, t0)
	require.NoError(t, err)
	require.Equal(t, int64(100), amount)
	require.Equal(t, int64(100), c.TotalPaid)
	require.Equal(t, StatusPaid, e.Status)
	require.Equal(t, int64(100), e.AmountPaid)
	require.True(t, e.IsVerified())

	_, err = ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: true, PayoutPercent: 100}, t0)
	require.ErrorIs(t, err, ErrAlreadyPaid)
	require.Equal(t, int64(100), c.TotalPaid)
}

func TestApplyVerdictPartialFloors(t *testing.T) {
	c := newTestCampaign(t, 3, 1, 0)
	e := submitted(t, c)

	amount, err := ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: true, PayoutPercent: 50}, t0)
	require.NoError(t, err)
	require.Equal(t, int64(1), amount)
	require.Equal(t, uint8(50), e.PayoutPercent)
}

func TestApplyVerdictRejectsCallerOtherThanAgent(t *testing.T) {
	c := newTestCampaign(t, 100, 1, 0)
	e := submitted(t, c)
	before := e

	_, err := ApplyVerdict(&c, &e, VerifierAgent(agent), brand, Verdict{Valid: true, PayoutPercent: 100}, t0)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.Equal(t, before, e)
	require.Zero(t, c.TotalPaid)
}

func TestApplyVerdictRejection(t *testing.T) {
	c := newTestCampaign(t, 100, 1, 0)
	e := NewEnrollment(c.ID, creator, t0)

	amount, err := ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: false}, t0)
	require.NoError(t, err)
	require.Zero(t, amount)
	require.True(t, e.IsRejected())

	_, err = ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: true, PayoutPercent: 100}, t0)
	require.ErrorIs(t, err, ErrEnrollmentRejected)

	require.NoError(t, e.Submit("https://x.com/a/status/1", t0))
	amount, err = ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: true, PayoutPercent: 100}, t0)
	require.NoError(t, err)
	require.Equal(t, int64(100), amount)
}

func TestApplyVerdictPreconditions(t *testing.T) {
	t.Run("no submission", func(t *testing.T) {
		c := newTestCampaign(t, 100, 1, 0)
		e := NewEnrollment(c.ID, creator, t0)
		_, err := ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: true, PayoutPercent: 100}, t0)
		require.ErrorIs(t, err, ErrNoSubmission)
	})
	t.Run("bad percent", func(t *testing.T) {
		c := newTestCampaign(t, 100, 1, 0)
		e := submitted(t, c)
		_, err := ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: true, PayoutPercent: 0}, t0)
		require.ErrorIs(t, err, ErrInvalidPayoutPercent)
		require.Equal(t, StatusSubmitted, e.Status)
	})
	t.Run("closed", func(t *testing.T) {
		c := newTestCampaign(t, 100, 1, 0)
		e := submitted(t, c)
		_, err := c.Withdraw(brand)
		require.NoError(t, err)
		_, err = ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: true, PayoutPercent: 100}, t0)
		require.ErrorIs(t, err, ErrCampaignClosed)
	})
	t.Run("budget", func(t *testing.T) {
		c := newTestCampaign(t, 100, 1, 0)
		c.TotalPaid = 60
		e := submitted(t, c)
		_, err := ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: true, PayoutPercent: 50}, t0)
		require.ErrorIs(t, err, ErrBudgetExceeded)
		require.Equal(t, int64(60), c.TotalPaid)
		require.Equal(t, StatusSubmitted, e.Status)
	})
	t.Run("paused campaign still pays", func(t *testing.T) {
		c := newTestCampaign(t, 100, 1, 0)
		require.NoError(t, c.SetActive(brand, false))
		e := submitted(t, c)
		amount, err := ApplyVerdict(&c, &e, VerifierAgent(agent), agent, Verdict{Valid: true, PayoutPercent: 100}, t0)
		require.NoError(t, err)
		require.Equal(t, int64(100), amount)
	})
}
