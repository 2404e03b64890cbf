package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"deck_srv/internal/config"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func setupTestLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.DebugLevel)
	logger.SetOutput(io.Discard)
	return logger
}

func newTestLocal(t *testing.T) *LocalStorage {
	t.Helper()
	s, err := NewLocalStorage(LocalConfig{BasePath: t.TempDir(), CreateDirs: true}, setupTestLogger())
	require.NoError(t, err)
	return s
}

func TestLocalStorageRoundTrip(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()
	key := "decks/1/report.pptx"

	require.NoError(t, s.Save(ctx, key, strings.NewReader("deck-bytes")))

	ok, err := s.Exists(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)

	rc, err := s.Get(ctx, key)
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "deck-bytes", string(data))

	meta, err := s.GetMetadata(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, int64(len("deck-bytes")), meta.Size)
	assert.Equal(t, ContentType(".pptx"), meta.ContentType)

	url, err := s.GetPresignedURL(ctx, key, time.Minute)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file://"))
	assert.True(t, strings.HasSuffix(url, "decks/1/report.pptx"))

	require.NoError(t, s.Delete(ctx, key))
	ok, err = s.Exists(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// повторное удаление не ошибка
	assert.NoError(t, s.Delete(ctx, key))
}

func TestLocalStorageNotFound(t *testing.T) {
	s := newTestLocal(t)

	_, err := s.Get(context.Background(), "missing.pptx")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetMetadata(context.Background(), "missing.pptx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestValidateKey(t *testing.T) {
	tests := []struct {
		key   string
		valid bool
	}{
		{"decks/1/a.pptx", true},
		{"a..b.pptx", true},
		{"", false},
		{"/etc/passwd", false},
		{"decks/../../etc/passwd", false},
		{strings.Repeat("k", maxKeyLength+1), false},
	}

	for _, tt := range tests {
		err := validateKey(tt.key)
		if tt.valid {
			assert.NoError(t, err, tt.key)
		} else {
			assert.Error(t, err, tt.key)
		}
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.presentationml.presentation", ContentType("a/b.PPTX"))
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", ContentType("b.xlsx"))
	assert.Equal(t, "application/octet-stream", ContentType("noext"))
}

// MockStorage is a mock implementation of the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Save(ctx context.Context, key string, reader io.Reader) error {
	data, _ := io.ReadAll(reader)
	args := m.Called(ctx, key, string(data))
	return args.Error(0)
}

func (m *MockStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	args := m.Called(ctx, key)
	rc, _ := args.Get(0).(io.ReadCloser)
	return rc, args.Error(1)
}

func (m *MockStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockStorage) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockStorage) GetMetadata(ctx context.Context, key string) (*FileMetadata, error) {
	args := m.Called(ctx, key)
	meta, _ := args.Get(0).(*FileMetadata)
	return meta, args.Error(1)
}

func (m *MockStorage) GetPresignedURL(ctx context.Context, key string, expiration time.Duration) (string, error) {
	args := m.Called(ctx, key, expiration)
	return args.String(0), args.Error(1)
}

func (m *MockStorage) ValidateKey(key string) error {
	return validateKey(key)
}

func TestRetryMiddlewareReplaysBody(t *testing.T) {
	inner := new(MockStorage)
	ctx := context.Background()
	inner.On("Save", ctx, "a.pptx", "payload").Return(errors.New("timeout")).Once()
	inner.On("Save", ctx, "a.pptx", "payload").Return(nil).Once()

	s := NewRetryMiddleware(inner, 3, time.Millisecond, setupTestLogger())
	// io.MultiReader не поддерживает Seek
	err := s.Save(ctx, "a.pptx", io.MultiReader(strings.NewReader("pay"), strings.NewReader("load")))

	require.NoError(t, err)
	inner.AssertExpectations(t)
}

func TestRetryMiddlewareGivesUp(t *testing.T) {
	inner := new(MockStorage)
	ctx := context.Background()
	inner.On("Delete", ctx, "a.pptx").Return(errors.New("boom"))

	s := NewRetryMiddleware(inner, 2, time.Millisecond, setupTestLogger())
	err := s.Delete(ctx, "a.pptx")

	assert.EqualError(t, err, "boom")
	inner.AssertNumberOfCalls(t, "Delete", 3)
}

func TestRetryMiddlewareSkipsNotFound(t *testing.T) {
	inner := new(MockStorage)
	ctx := context.Background()
	inner.On("Get", ctx, "a.pptx").Return(nil, ErrNotFound)

	s := NewRetryMiddleware(inner, 3, time.Millisecond, setupTestLogger())
	_, err := s.Get(ctx, "a.pptx")

	assert.ErrorIs(t, err, ErrNotFound)
	inner.AssertNumberOfCalls(t, "Get", 1)
}

func TestValidationMiddlewareRejectsBadKeys(t *testing.T) {
	inner := new(MockStorage)
	s := NewValidationMiddleware(inner, setupTestLogger())

	err := s.Save(context.Background(), "../escape.pptx", strings.NewReader("x"))
	assert.Error(t, err)

	_, err = s.Get(context.Background(), "")
	assert.Error(t, err)

	inner.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything)
	inner.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
}

func TestStorageBuilderLocal(t *testing.T) {
	cfg := config.Config{Storage: config.Storage{Type: StorageTypeLocal, BasePath: t.TempDir()}}

	s, err := NewStorageBuilder(cfg, setupTestLogger()).WithRetry(1, time.Millisecond).Build()
	require.NoError(t, err)
	assert.IsType(t, &ValidationMiddleware{}, s)

	ctx := context.Background()
	require.NoError(t, s.Save(ctx, "decks/7/x.pptx", bytes.NewReader([]byte("abc"))))
	ok, err := s.Exists(ctx, "decks/7/x.pptx")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestStorageBuilderUnknownType(t *testing.T) {
	cfg := config.Config{Storage: config.Storage{Type: "ftp"}}

	_, err := NewStorageFromConfig(cfg, setupTestLogger())
	assert.Error(t, err)
}

// fakeS3 хранит объекты в памяти и отвечает в path-style.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		data, _ := io.ReadAll(r.Body)
		f.objects[r.URL.Path] = data
		f.types[r.URL.Path] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		data, ok := f.objects[r.URL.Path]
		if !ok {
			w.Header().Set("Content-Type", "application/xml")
			w.WriteHeader(http.StatusNotFound)
			io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", f.types[r.URL.Path])
		w.Write(data)
	case http.MethodDelete:
		delete(f.objects, r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestS3(t *testing.T) (*S3Storage, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	s, err := NewS3Storage(S3Config{
		Region:         "us-east-1",
		Bucket:         "decks",
		Endpoint:       srv.URL,
		AccessKey:      "test",
		SecretKey:      "test",
		ForcePathStyle: true,
	}, setupTestLogger())
	require.NoError(t, err)
	return s, fake
}

func TestS3StorageSaveAndGet(t *testing.T) {
	s, fake := newTestS3(t)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "decks/1/a.pptx", bytes.NewReader([]byte("deck"))))
	assert.Contains(t, fake.objects, "/decks/decks/1/a.pptx")
	assert.Equal(t, ContentType("a.pptx"), fake.types["/decks/decks/1/a.pptx"])

	fake.objects["/decks/decks/1/b.xlsx"] = []byte("workbook")
	rc, err := s.Get(ctx, "decks/1/b.xlsx")
	require.NoError(t, err)
	data, err := io.ReadAll(rc)
	rc.Close()
	require.NoError(t, err)
	assert.Equal(t, "workbook", string(data))

	_, err = s.Get(ctx, "decks/1/missing.pptx")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Delete(ctx, "decks/1/a.pptx"))
	assert.NotContains(t, fake.objects, "/decks/decks/1/a.pptx")
}

func TestS3StoragePresignedURL(t *testing.T) {
	s, _ := newTestS3(t)

	url, err := s.GetPresignedURL(context.Background(), "decks/1/a.pptx", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "/decks/decks/1/a.pptx")
	assert.Contains(t, url, "X-Amz-Expires=900")
	assert.Contains(t, url, "X-Amz-Signature=")
}

func TestValidateS3Config(t *testing.T) {
	assert.Error(t, validateS3Config(S3Config{Bucket: "b"}))
	assert.Error(t, validateS3Config(S3Config{Region: "r"}))
	assert.Error(t, validateS3Config(S3Config{Region: "r", Bucket: "b", AccessKey: "k"}))
	assert.NoError(t, validateS3Config(S3Config{Region: "r", Bucket: "b"}))
}
