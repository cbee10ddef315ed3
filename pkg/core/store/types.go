package store

import (
	"context"
	"errors"
	"time"
)

// Store persists string values by key. Implementations must be safe for
// concurrent use; no implementation offers compare-and-swap.
type Store interface {
	// Get returns the value at key. ok is false when the key is missing,
	// expired, or was written by an earlier session with Session lifetime.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, lifetime Lifetime) error
	Delete(ctx context.Context, key string) error
}

// Lifetime controls how long a written value stays readable.
type Lifetime int

const (
	// Long keeps a value for LongLifetime after the write.
	Long Lifetime = iota
	// Session keeps a value until the store's session ends.
	Session
)

// LongLifetime is the retention of values written with Long.
const LongLifetime = 10 * 365 * 24 * time.Hour

// ErrUnavailable is returned by a backend whose substrate cannot be used.
var ErrUnavailable = errors.New("store: storage unavailable")

// entry is the persisted form of a value.
type entry struct {
	Value   string `cbor:"value"`
	Expires int64  `cbor:"expires,omitempty"`
	Session string `cbor:"session,omitempty"`
}

func newEntry(value string, lifetime Lifetime, session string, now time.Time) entry {
	if lifetime == Session {
		return entry{Value: value, Session: session}
	}
	return entry{Value: value, Expires: now.Add(LongLifetime).Unix()}
}

// visible reports whether e can be read by session at now.
func (e entry) visible(session string, now time.Time) bool {
	if e.Session != "" && e.Session != session {
		return false
	}
	if e.Expires != 0 && now.Unix() >= e.Expires {
		return false
	}
	return true
}
