package minio

import (
	"bytes"
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/suite"

	"github.com/turtacn/chemidr/internal/application/synonym"
	"github.com/turtacn/chemidr/pkg/errors"
)

type memObject struct {
	data []byte
	meta map[string]string
}

type fakeAPI struct {
	mu      sync.Mutex
	buckets map[string]bool
	objects map[string]memObject
	failGet error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{buckets: map[string]bool{}, objects: map[string]memObject{}}
}

func noSuchKey() error {
	return minio.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound, Message: "The specified key does not exist."}
}

func (f *fakeAPI) ListBuckets(context.Context) ([]minio.BucketInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []minio.BucketInfo
	for b := range f.buckets {
		out = append(out, minio.BucketInfo{Name: b})
	}
	return out, nil
}

func (f *fakeAPI) BucketExists(_ context.Context, bucket string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.buckets[bucket], nil
}

func (f *fakeAPI) MakeBucket(_ context.Context, bucket string, _ minio.MakeBucketOptions) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.buckets[bucket] = true
	return nil
}

func (f *fakeAPI) PutObject(_ context.Context, bucket, object string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return minio.UploadInfo{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[bucket+"/"+object] = memObject{data: data, meta: opts.UserMetadata}
	return minio.UploadInfo{Bucket: bucket, Key: object, Size: size}, nil
}

func (f *fakeAPI) GetObject(_ context.Context, bucket, object string, _ minio.GetObjectOptions) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failGet != nil {
		return nil, f.failGet
	}
	obj, ok := f.objects[bucket+"/"+object]
	if !ok {
		return nil, noSuchKey()
	}
	return io.NopCloser(bytes.NewReader(obj.data)), nil
}

func (f *fakeAPI) StatObject(_ context.Context, bucket, object string, _ minio.StatObjectOptions) (minio.ObjectInfo, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[bucket+"/"+object]
	if !ok {
		return minio.ObjectInfo{}, noSuchKey()
	}
	return minio.ObjectInfo{Key: object, Size: int64(len(obj.data))}, nil
}

type SnapshotStoreTestSuite struct {
	suite.Suite
	api    *fakeAPI
	client *Client
	store  *SnapshotStore
	ctx    context.Context
}

func (s *SnapshotStoreTestSuite) SetupTest() {
	s.api = newFakeAPI()
	s.client = newClient(s.api, "chemidr", "synonyms/", nil)
	s.store = NewSnapshotStore(s.client)
	s.ctx = context.Background()
	s.Require().NoError(s.client.EnsureBucket(s.ctx))
}

func (s *SnapshotStoreTestSuite) TestEnsureBucketCreatesOnce() {
	s.True(s.api.buckets["chemidr"])
	s.NoError(s.client.EnsureBucket(s.ctx))
	s.NoError(s.client.HealthCheck(s.ctx))
}

func (s *SnapshotStoreTestSuite) TestHealthCheckMissingBucket() {
	c := newClient(newFakeAPI(), "absent", "", nil)
	s.True(errors.IsCode(c.HealthCheck(s.ctx), errors.ErrCodeStorageError))
}

func (s *SnapshotStoreTestSuite) TestObjectName() {
	s.Equal("synonyms/fdb_compounds.json", s.client.ObjectName(synonym.TableCompounds))
}

func (s *SnapshotStoreTestSuite) TestRoundTrip() {
	table := synonym.Table{"quercetin": 3, "alpha-linolenic acid": 12, "caféine": 7}
	s.Require().NoError(s.store.Save(s.ctx, synonym.TableSynonyms, table))

	obj := s.api.objects["chemidr/synonyms/fdb_synonyms.json"]
	s.Equal("3", obj.meta[metaEntries])

	got, err := s.store.Load(s.ctx, synonym.TableSynonyms)
	s.Require().NoError(err)
	s.True(table.Equal(got))

	ok, err := s.store.Exists(s.ctx, synonym.TableSynonyms)
	s.NoError(err)
	s.True(ok)
}

func (s *SnapshotStoreTestSuite) TestLoadMissing() {
	_, err := s.store.Load(s.ctx, synonym.TableNutrients)
	s.True(errors.IsCode(err, errors.ErrCodeSynonymCacheMissing))
	s.True(errors.IsNotFound(err))

	ok, err := s.store.Exists(s.ctx, synonym.TableNutrients)
	s.NoError(err)
	s.False(ok)
}

func (s *SnapshotStoreTestSuite) TestLoadCorrupt() {
	s.api.objects["chemidr/synonyms/fdb_compounds.json"] = memObject{data: []byte("{not json")}
	_, err := s.store.Load(s.ctx, synonym.TableCompounds)
	s.True(errors.IsCode(err, errors.ErrCodeSynonymCacheCorrupt))
}

func (s *SnapshotStoreTestSuite) TestLoadTransportError() {
	s.api.failGet = stderrors.New("connection refused")
	_, err := s.store.Load(s.ctx, synonym.TableCompounds)
	s.True(errors.IsCode(err, errors.ErrCodeStorageError))
}

func (s *SnapshotStoreTestSuite) TestClosedClient() {
	s.Require().NoError(s.client.Close())
	s.ErrorIs(s.store.Save(s.ctx, "t", synonym.Table{}), ErrClientClosed)
	_, err := s.store.Load(s.ctx, "t")
	s.ErrorIs(err, ErrClientClosed)
}

func (s *SnapshotStoreTestSuite) TestPersistAndRestoreIndex() {
	ix := synonym.NewIndex().
		Add(synonym.TableCompounds, synonym.Table{"quercetin": 3}).
		Add(synonym.TableSynonyms, synonym.Table{"sophoretin": 3})
	s.Require().NoError(synonym.Persist(s.ctx, s.store, ix))

	restored, err := synonym.Restore(s.ctx, s.store, ix.Names())
	s.Require().NoError(err)
	s.True(ix.Equal(restored))
	id, ok := restored.Lookup("Sophoretin").Get()
	s.True(ok)
	s.Equal(int64(3), id)
}

func TestSnapshotStoreTestSuite(t *testing.T) {
	suite.Run(t, new(SnapshotStoreTestSuite))
}

//Personal.AI order the ending
