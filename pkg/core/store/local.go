package store

import (
	"context"
	"time"

	"github.com/apex/log"
	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// localStore saves values in a bbolt database on the filesystem
type localStore struct {
	db      *bolt.DB
	session string
	now     func() time.Time
	logger  *log.Entry
}

const valuesBucket = "radar_values"

// NewLocalStore creates a store backed by db. Each call starts a new
// session, so Session values written through an earlier store are not
// visible through this one.
func NewLocalStore(db *bolt.DB) Store {
	return &localStore{
		db:      db,
		session: uuid.New().String(),
		now:     time.Now,
		logger:  log.WithField("module", "local-store"),
	}
}

func (s *localStore) Get(ctx context.Context, key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		buck := tx.Bucket([]byte(valuesBucket))
		if buck == nil {
			return nil
		}

		raw := buck.Get([]byte(key))
		if raw == nil {
			return nil
		}

		var e entry
		if err := cbor.Unmarshal(raw, &e); err != nil {
			s.logger.Warnf("dropping unreadable value for %s: %v", key, err)
			return nil
		}

		if e.visible(s.session, s.now()) {
			value = e.Value
			found = true
		}
		return nil
	})

	return value, found, err
}

func (s *localStore) Set(ctx context.Context, key, value string, lifetime Lifetime) error {
	tx, err := s.db.Begin(true)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			if rerr := tx.Rollback(); rerr != nil {
				s.logger.Errorf("err rollback : %v", rerr)
			}
		}
	}()

	buck, err := tx.CreateBucketIfNotExists([]byte(valuesBucket))
	if err != nil {
		return err
	}

	data, err := cbor.Marshal(newEntry(value, lifetime, s.session, s.now()))
	if err != nil {
		return err
	}

	err = buck.Put([]byte(key), data)
	if err != nil {
		return err
	}

	err = tx.Commit()
	return err
}

func (s *localStore) Delete(ctx context.Context, key string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		buck := tx.Bucket([]byte(valuesBucket))
		if buck == nil {
			return nil
		}
		return buck.Delete([]byte(key))
	})
}
