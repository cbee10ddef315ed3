package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gocloud.dev/docstore"
	"gocloud.dev/gcerrors"
)

type valueDoc struct {
	Key     string `docstore:"key"`
	Value   string `docstore:"value"`
	Expires int64  `docstore:"expires"`
	Session string `docstore:"session"`
}

type docStore struct {
	coll    *docstore.Collection
	session string
	now     func() time.Time
}

// NewDocStore creates a store using a gocloud.dev/docstore collection whose
// key field is "key", e.g. "mem://radar/key".
func NewDocStore(coll *docstore.Collection) Store {
	return &docStore{
		coll:    coll,
		session: uuid.New().String(),
		now:     time.Now,
	}
}

func (s *docStore) Get(ctx context.Context, key string) (string, bool, error) {
	doc := &valueDoc{Key: key}
	err := s.coll.Get(ctx, doc)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return "", false, nil
		}
		return "", false, err
	}

	e := entry{Value: doc.Value, Expires: doc.Expires, Session: doc.Session}
	if !e.visible(s.session, s.now()) {
		return "", false, nil
	}
	return e.Value, true, nil
}

func (s *docStore) Set(ctx context.Context, key, value string, lifetime Lifetime) error {
	e := newEntry(value, lifetime, s.session, s.now())
	return s.coll.Put(ctx, &valueDoc{
		Key:     key,
		Value:   e.Value,
		Expires: e.Expires,
		Session: e.Session,
	})
}

func (s *docStore) Delete(ctx context.Context, key string) error {
	err := s.coll.Delete(ctx, &valueDoc{Key: key})
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}
