package trips

import (
	"context"
	"encoding/json"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/apex/log"
	"gocloud.dev/pubsub"
)

// Transition is a server-confirmed change of trip status.
type Transition struct {
	ExternalID string    `json:"externalId"`
	Status     Status    `json:"status"`
	Time       time.Time `json:"time"`
}

// Notifier publishes transitions on a pubsub topic.
type Notifier struct {
	topic     *pubsub.Topic
	published atomic.Int64
}

func NewNotifier(topic *pubsub.Topic) *Notifier {
	return &Notifier{topic: topic}
}

// Publish sends t. A zero Time is set to now.
func (n *Notifier) Publish(ctx context.Context, t Transition) error {
	if t.Time.IsZero() {
		t.Time = time.Now()
	}
	body, err := json.Marshal(t)
	if err != nil {
		return err
	}
	err = n.topic.Send(ctx, &pubsub.Message{
		Body: body,
		Metadata: map[string]string{
			"externalId": t.ExternalID,
			"status":     string(t.Status),
			"time":       strconv.FormatInt(t.Time.Unix(), 10),
		},
	})
	if err != nil {
		return err
	}
	n.published.Add(1)
	return nil
}

// Published returns how many transitions were sent.
func (n *Notifier) Published() int64 {
	return n.published.Load()
}

// Listener hands transitions received on a subscription to a handler.
type Listener struct {
	sub     *pubsub.Subscription
	handler func(Transition)
	logger  *log.Entry

	received atomic.Int64
	progress chan struct{}
}

func NewListener(sub *pubsub.Subscription, handler func(Transition)) *Listener {
	return &Listener{
		sub:      sub,
		handler:  handler,
		logger:   log.WithField("module", "trip-listener"),
		progress: make(chan struct{}, 1),
	}
}

// Wait blocks until at least n messages were received, or ctx is done.
func (l *Listener) Wait(ctx context.Context, n int64) error {
	for l.received.Load() < n {
		select {
		case <-l.progress:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (l *Listener) done() {
	l.received.Add(1)
	select {
	case l.progress <- struct{}{}:
	default:
	}
}

// Start receives messages until ctx is done or the subscription fails.
func (l *Listener) Start(ctx context.Context) error {
	for {
		msg, err := l.sub.Receive(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			l.logger.Warnf("err receiving message: %v", err)
			return err
		}

		var t Transition
		if err := json.Unmarshal(msg.Body, &t); err != nil {
			l.logger.Warnf("Invalid msg format :%v", err)
			// Drop msg
			msg.Ack()
			l.done()
			continue
		}

		l.logger.Debugf("trip %s is %s", t.ExternalID, t.Status)
		l.handler(t)

		// Messages must always be acknowledged with Ack.
		msg.Ack()
		l.done()
	}
}
