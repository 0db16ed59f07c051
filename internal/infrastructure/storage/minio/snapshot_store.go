package minio

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/minio/minio-go/v7"

	"github.com/turtacn/chemidr/internal/application/synonym"
	"github.com/turtacn/chemidr/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/chemidr/pkg/errors"
)

const metaEntries = "Entries"

// SnapshotStore implements synonym.Store with one JSON object per table.
type SnapshotStore struct {
	client *Client
}

var _ synonym.Store = (*SnapshotStore)(nil)

// NewSnapshotStore returns a store over client.
func NewSnapshotStore(client *Client) *SnapshotStore {
	return &SnapshotStore{client: client}
}

// Save uploads t under the snapshot key for name, replacing any previous
// version.
func (s *SnapshotStore) Save(ctx context.Context, name string, t synonym.Table) error {
	c := s.client
	if c.isClosed() {
		return ErrClientClosed
	}
	data, err := synonym.Encode(t)
	if err != nil {
		return err
	}
	info, err := c.api.PutObject(ctx, c.bucket, c.ObjectName(name), bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{
			ContentType:  "application/json",
			UserMetadata: map[string]string{metaEntries: strconv.Itoa(len(t))},
		})
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeStorageError, "failed to upload snapshot").WithDetail(name)
	}
	c.logger.Debug("snapshot uploaded",
		logging.String("table", name),
		logging.Int64("bytes", info.Size),
		logging.Int("entries", len(t)))
	return nil
}

// Load downloads the snapshot for name. A missing object yields
// ErrCodeSynonymCacheMissing.
func (s *SnapshotStore) Load(ctx context.Context, name string) (synonym.Table, error) {
	c := s.client
	if c.isClosed() {
		return nil, ErrClientClosed
	}
	obj, err := c.api.GetObject(ctx, c.bucket, c.ObjectName(name), minio.GetObjectOptions{})
	if err != nil {
		return nil, s.readError(err, name)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, s.readError(err, name)
	}
	return synonym.Decode(data)
}

// Exists reports whether a snapshot for name is stored.
func (s *SnapshotStore) Exists(ctx context.Context, name string) (bool, error) {
	c := s.client
	_, err := c.api.StatObject(ctx, c.bucket, c.ObjectName(name), minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if isNotFound(err) {
		return false, nil
	}
	return false, errors.Wrap(err, errors.ErrCodeStorageError, "failed to stat snapshot").WithDetail(name)
}

func (s *SnapshotStore) readError(err error, name string) error {
	if isNotFound(err) {
		return errors.New(errors.ErrCodeSynonymCacheMissing, "snapshot not found").WithDetail(name)
	}
	return errors.Wrap(err, errors.ErrCodeStorageError, "failed to download snapshot").WithDetail(name)
}

func isNotFound(err error) bool {
	resp := minio.ToErrorResponse(err)
	return resp.Code == "NoSuchKey" || resp.StatusCode == http.StatusNotFound
}

//Personal.AI order the ending
