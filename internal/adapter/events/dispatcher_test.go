package events

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"campaign-escrow/internal/core/domain"
)

type recordingSubscriber struct {
	name string
	err  error

	mu  sync.Mutex
	got []Delivery
}

func (s *recordingSubscriber) Name() string { return s.name }

func (s *recordingSubscriber) Handle(_ context.Context, d Delivery) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.got = append(s.got, d)
	return s.err
}

func sampleEvents() []domain.Event {
	id := int64(3)
	return []domain.Event{
		{Seq: 1, Type: domain.EventCampaignCreated, CampaignID: &id},
		{Seq: 2, Type: domain.EventCampaignFunded, CampaignID: &id, Amount: 300},
	}
}

func TestDispatcherFansOut(t *testing.T) {
	a := &recordingSubscriber{name: "a"}
	b := &recordingSubscriber{name: "b", err: errors.New("boom")}
	d, err := NewDispatcher(2, slog.New(slog.NewTextHandler(io.Discard, nil)), a, b)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	d.Publish(ctx, sampleEvents())
	cancel()
	d.Publish(context.Background(), nil)
	d.Close()

	require.Len(t, a.got, 1)
	require.Len(t, b.got, 1)
	require.Equal(t, a.got[0].ID, b.got[0].ID)
	require.Len(t, a.got[0].Events, 2)
	require.Equal(t, int64(300), a.got[0].Events[1].Amount)
}

type slowSubscriber struct {
	active atomic.Int32
	peak   atomic.Int32

	mu   sync.Mutex
	seqs []int64
}

func (s *slowSubscriber) Name() string { return "slow" }

func (s *slowSubscriber) Handle(_ context.Context, d Delivery) error {
	n := s.active.Add(1)
	defer s.active.Add(-1)
	if n > s.peak.Load() {
		s.peak.Store(n)
	}
	time.Sleep(time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range d.Events {
		s.seqs = append(s.seqs, e.Seq)
	}
	return nil
}

func TestDeliveriesKeepPublishOrder(t *testing.T) {
	slow := &slowSubscriber{}
	fast := &recordingSubscriber{name: "fast"}
	d, err := NewDispatcher(8, slog.New(slog.NewTextHandler(io.Discard, nil)), slow, fast)
	require.NoError(t, err)

	const batches = 50
	for i := int64(1); i <= batches; i++ {
		d.Publish(context.Background(), []domain.Event{{Seq: i, Type: domain.EventPaymentReleased}})
	}
	d.Close()

	require.Len(t, slow.seqs, batches)
	require.True(t, slices.IsSorted(slow.seqs), "got %v", slow.seqs)
	require.Equal(t, int32(1), slow.peak.Load())

	require.Len(t, fast.got, batches)
	for i, got := range fast.got {
		require.Equal(t, int64(i+1), got.Events[0].Seq)
	}
}

func TestPublishAfterClose(t *testing.T) {
	var buf bytes.Buffer
	sub := &recordingSubscriber{name: "late"}
	d, err := NewDispatcher(1, slog.New(slog.NewTextHandler(&buf, nil)), sub)
	require.NoError(t, err)
	d.Close()

	d.Publish(context.Background(), sampleEvents())
	require.Empty(t, sub.got)
	require.Contains(t, buf.String(), "event delivery dropped")
}

func TestLogSubscriber(t *testing.T) {
	var buf bytes.Buffer
	s := NewLogSubscriber(slog.New(slog.NewTextHandler(&buf, nil)))
	require.NoError(t, s.Handle(context.Background(), Delivery{Events: sampleEvents()}))

	out := buf.String()
	require.Contains(t, out, "type=campaign_created")
	require.Contains(t, out, "amount=300")
	require.Contains(t, out, "campaign_id=3")
}
