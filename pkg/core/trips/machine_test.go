package trips

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"com.aviebrantz.radar-client/pkg/core/store"
	"com.aviebrantz.radar-client/pkg/status"
	"com.aviebrantz.radar-client/pkg/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gocloud.dev/pubsub"

	_ "gocloud.dev/pubsub/mempubsub"
)

type call struct {
	method   string
	endpoint string
	params   transport.Params
}

type fakeRequester struct {
	calls []call
	errs  []error
}

func (f *fakeRequester) Request(ctx context.Context, method, endpoint string, params transport.Params) (transport.Response, error) {
	f.calls = append(f.calls, call{method, endpoint, params})
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return transport.Response{
		"trip":   map[string]interface{}{"externalId": params["externalId"], "status": params["status"]},
		"events": []interface{}{},
	}, nil
}

func newMachine(errs ...error) (*Machine, *fakeRequester) {
	req := &fakeRequester{errs: errs}
	return NewMachine(req, store.NewSafe(store.NewMemoryStore())), req
}

func TestStartThenComplete(t *testing.T) {
	ctx := context.Background()
	m, req := newMachine()

	_, err := m.Start(ctx, Options{ExternalID: "abc"})
	require.NoError(t, err)

	active, ok := m.Active(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc", active.ExternalID)
	assert.Equal(t, StatusStarted, m.Status(ctx))

	res, err := m.Complete(ctx)
	require.NoError(t, err)
	assert.NotNil(t, res["trip"])

	_, ok = m.Active(ctx)
	assert.False(t, ok, "active trip slot should be empty after completion")
	assert.Equal(t, Status(""), m.Status(ctx))

	require.Len(t, req.calls, 2)
	assert.Equal(t, "PATCH", req.calls[0].method)
	assert.Equal(t, "trips/abc", req.calls[0].endpoint)
	assert.Equal(t, "started", req.calls[0].params["status"])
	assert.Equal(t, "completed", req.calls[1].params["status"])
}

func TestFailedStartLeavesNoTrip(t *testing.T) {
	ctx := context.Background()
	m, req := newMachine(status.HTTP(status.ErrorServer, nil))

	_, err := m.Start(ctx, Options{ExternalID: "abc"})
	require.Error(t, err)
	assert.Equal(t, status.ErrorServer, status.Of(err))

	_, err = m.Complete(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoActiveTrip))
	assert.Len(t, req.calls, 1, "complete without an active trip must not reach the network")
}

func TestCancelWithoutTrip(t *testing.T) {
	m, req := newMachine()

	_, err := m.Cancel(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNoActiveTrip))
	assert.Equal(t, status.ErrorBadRequest, status.Of(err))
	assert.Empty(t, req.calls)
}

func TestCancelClearsTrip(t *testing.T) {
	ctx := context.Background()
	m, req := newMachine()

	_, err := m.Start(ctx, Options{ExternalID: "abc", Mode: "car"})
	require.NoError(t, err)
	_, err = m.Cancel(ctx)
	require.NoError(t, err)

	_, ok := m.Active(ctx)
	assert.False(t, ok)
	assert.Equal(t, "canceled", req.calls[1].params["status"])
	assert.Equal(t, "car", req.calls[1].params["mode"])
}

func TestFailedCompleteKeepsTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := newMachine(nil, status.HTTP(status.ErrorRateLimit, nil))

	_, err := m.Start(ctx, Options{ExternalID: "abc"})
	require.NoError(t, err)

	_, err = m.Complete(ctx)
	require.Error(t, err)

	active, ok := m.Active(ctx)
	require.True(t, ok)
	assert.Equal(t, "abc", active.ExternalID)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	m, _ := newMachine(nil, nil, status.HTTP(status.ErrorNotFound, nil))

	_, err := m.Start(ctx, Options{ExternalID: "abc"})
	require.NoError(t, err)

	_, err = m.Update(ctx, Options{ExternalID: "abc", DestinationGeofenceTag: "store"}, StatusApproaching)
	require.NoError(t, err)
	active, _ := m.Active(ctx)
	assert.Equal(t, "store", active.DestinationGeofenceTag)
	assert.Equal(t, StatusApproaching, m.Status(ctx))

	_, err = m.Update(ctx, Options{ExternalID: "abc", DestinationGeofenceTag: "other"}, StatusArrived)
	require.Error(t, err)
	active, _ = m.Active(ctx)
	assert.Equal(t, "store", active.DestinationGeofenceTag, "failed update keeps previous options")
	assert.Equal(t, StatusApproaching, m.Status(ctx))
}

func TestUpdateToTerminalStatusClearsTrip(t *testing.T) {
	ctx := context.Background()
	m, _ := newMachine()

	_, err := m.Start(ctx, Options{ExternalID: "abc"})
	require.NoError(t, err)
	_, err = m.Update(ctx, Options{ExternalID: "abc"}, StatusExpired)
	require.NoError(t, err)

	_, ok := m.Active(ctx)
	assert.False(t, ok)
}

func TestUpdateValidation(t *testing.T) {
	tests := []struct {
		name   string
		opts   Options
		status Status
		want   error
	}{
		{"unknown status", Options{ExternalID: "abc"}, Status("teleported"), ErrInvalidStatus},
		{"empty status", Options{ExternalID: "abc"}, Status(""), ErrInvalidStatus},
		{"no external id", Options{}, StatusStarted, ErrMissingExternalID},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, req := newMachine()
			_, err := m.Update(context.Background(), tt.opts, tt.status)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.want))
			assert.Empty(t, req.calls)
		})
	}
}

func TestOptionalFieldsAreAbsent(t *testing.T) {
	m, req := newMachine()

	_, err := m.Start(context.Background(), Options{ExternalID: "abc"})
	require.NoError(t, err)

	params := req.calls[0].params
	assert.Nil(t, params["destinationGeofenceTag"])
	assert.Nil(t, params["destinationGeofenceExternalId"])
	assert.Nil(t, params["mode"])
}

func TestNotifierPublishesConfirmedTransitions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	topic, err := pubsub.OpenTopic(ctx, "mem://trip-transitions")
	require.NoError(t, err)
	defer topic.Shutdown(ctx)

	sub, err := pubsub.OpenSubscription(ctx, "mem://trip-transitions")
	require.NoError(t, err)
	defer sub.Shutdown(ctx)

	req := &fakeRequester{errs: []error{nil, status.HTTP(status.ErrorServer, nil)}}
	m := NewMachine(req, store.NewSafe(store.NewMemoryStore()), WithNotifier(NewNotifier(topic)))

	_, err = m.Start(ctx, Options{ExternalID: "abc"})
	require.NoError(t, err)
	_, err = m.Complete(ctx)
	require.Error(t, err)
	_, err = m.Complete(ctx)
	require.NoError(t, err)

	received := make(chan Transition, 4)
	lctx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() {
		done <- NewListener(sub, func(t Transition) { received <- t }).Start(lctx)
	}()

	first := <-received
	second := <-received
	stop()
	require.NoError(t, <-done)

	assert.Equal(t, "abc", first.ExternalID)
	assert.Equal(t, StatusStarted, first.Status)
	assert.False(t, first.Time.IsZero())
	assert.Equal(t, StatusCompleted, second.Status)
	assert.Empty(t, received, "failed transitions are not published")
}

func TestListenerWaitsForPublishedTransitions(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	topic, err := pubsub.OpenTopic(ctx, "mem://trip-drain")
	require.NoError(t, err)
	sub, err := pubsub.OpenSubscription(ctx, "mem://trip-drain")
	require.NoError(t, err)
	defer sub.Shutdown(ctx)

	var mu sync.Mutex
	var handled []string
	listener := NewListener(sub, func(t Transition) {
		mu.Lock()
		handled = append(handled, t.ExternalID)
		mu.Unlock()
	})
	lctx, stop := context.WithCancel(ctx)
	done := make(chan error, 1)
	go func() { done <- listener.Start(lctx) }()

	n := NewNotifier(topic)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, n.Publish(ctx, Transition{ExternalID: id, Status: StatusStarted}))
	}
	assert.Equal(t, int64(3), n.Published())

	require.NoError(t, topic.Shutdown(ctx))
	require.NoError(t, listener.Wait(ctx, n.Published()))
	stop()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	assert.ElementsMatch(t, []string{"a", "b", "c"}, handled)
}

func TestListenerWaitGivesUpAtDeadline(t *testing.T) {
	ctx := context.Background()
	topic, err := pubsub.OpenTopic(ctx, "mem://trip-idle")
	require.NoError(t, err)
	defer topic.Shutdown(ctx)
	sub, err := pubsub.OpenSubscription(ctx, "mem://trip-idle")
	require.NoError(t, err)
	defer sub.Shutdown(ctx)

	wctx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	err = NewListener(sub, func(Transition) {}).Wait(wctx, 1)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
