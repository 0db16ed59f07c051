package redis

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/chemidr/internal/application/synonym"
	"github.com/turtacn/chemidr/pkg/errors"
)

// hsetBatch bounds the fields sent per HSET inside the transaction.
const hsetBatch = 1000

// SynonymStore keeps each synonym table in a Redis hash (name → id) plus a
// count key that marks the table as present, since Redis drops empty hashes.
type SynonymStore struct {
	client *Client
}

// NewSynonymStore returns a store backed by client.
func NewSynonymStore(client *Client) *SynonymStore {
	return &SynonymStore{client: client}
}

func (s *SynonymStore) hashKey(name string) string  { return s.client.Key("synonyms", name) }
func (s *SynonymStore) countKey(name string) string { return s.client.Key("synonyms", name, "count") }

// Save replaces the table atomically.
func (s *SynonymStore) Save(ctx context.Context, name string, t synonym.Table) error {
	if s.client.isClosed() {
		return ErrClientClosed
	}
	pipe := s.client.TxPipeline()
	pipe.Del(ctx, s.hashKey(name))

	fields := make([]interface{}, 0, 2*hsetBatch)
	for _, k := range t.Keys() {
		fields = append(fields, k, t[k])
		if len(fields) == 2*hsetBatch {
			pipe.HSet(ctx, s.hashKey(name), fields...)
			fields = make([]interface{}, 0, 2*hsetBatch)
		}
	}
	if len(fields) > 0 {
		pipe.HSet(ctx, s.hashKey(name), fields...)
	}
	pipe.Set(ctx, s.countKey(name), len(t), 0)

	if _, err := pipe.Exec(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeCacheError, "save synonym table").WithDetail(name)
	}
	return nil
}

// Load reads a table written by Save.
func (s *SynonymStore) Load(ctx context.Context, name string) (synonym.Table, error) {
	if s.client.isClosed() {
		return nil, ErrClientClosed
	}
	rdb := s.client.Underlying()

	count, err := rdb.Get(ctx, s.countKey(name)).Int()
	if err == redis.Nil {
		return nil, errors.New(errors.ErrCodeSynonymCacheMissing, "synonym table not cached").WithDetail(name)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "read synonym table count").WithDetail(name)
	}

	raw, err := rdb.HGetAll(ctx, s.hashKey(name)).Result()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCacheError, "read synonym table").WithDetail(name)
	}
	if len(raw) != count {
		return nil, errors.Newf(errors.ErrCodeSynonymCacheCorrupt,
			"synonym table %s has %d entries, expected %d", name, len(raw), count)
	}

	t := make(synonym.Table, len(raw))
	for k, v := range raw {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSynonymCacheCorrupt, "invalid id in synonym table").WithDetail(name)
		}
		t[k] = id
	}
	return t, nil
}

//Personal.AI order the ending
