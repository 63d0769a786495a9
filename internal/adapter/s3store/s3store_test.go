package s3store

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"macrolens/internal/config"
	"macrolens/internal/domain"
)

// fakeS3 serves path-style object requests from memory.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
}

func (f *fakeS3) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	key := r.URL.Path
	switch r.Method {
	case http.MethodPut:
		b, _ := io.ReadAll(r.Body)
		f.objects[key] = b
		f.types[key] = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		b, ok := f.objects[key]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			_, _ = io.WriteString(w, `<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>missing</Message></Error>`)
			return
		}
		w.Header().Set("Content-Type", f.types[key])
		_, _ = w.Write(b)
	case http.MethodDelete:
		delete(f.objects, key)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newTestStore(t *testing.T) (*Store, *fakeS3) {
	t.Helper()
	fake := &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	awsCfg := aws.Config{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKID", "SECRET", ""),
	}
	cfg := config.StorageConfig{Bucket: "food-images", Endpoint: srv.URL, ForcePathStyle: true}
	return New(awsCfg, cfg), fake
}

func TestStoreRoundTrip(t *testing.T) {
	s, fake := newTestStore(t)
	ctx := context.Background()
	path := "food-photos/user-1/abc.jpg"

	require.NoError(t, s.Upload(ctx, path, domain.Image{Data: []byte("jpeg-bytes"), ContentType: "image/jpeg"}))
	assert.Contains(t, fake.objects, "/food-images/"+path)

	img, err := s.Download(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, "jpeg-bytes", string(img.Data))
	assert.Equal(t, "image/jpeg", img.ContentType)

	require.NoError(t, s.Delete(ctx, path))
	assert.Empty(t, fake.objects)

	_, err = s.Download(ctx, path)
	assert.Error(t, err)
}

func TestStoreSignedURL(t *testing.T) {
	s, _ := newTestStore(t)
	raw, err := s.SignedURL(context.Background(), "food-photos/u/x.jpg", time.Hour)
	require.NoError(t, err)

	u, err := url.Parse(raw)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(u.Path, "/food-images/food-photos/u/x.jpg"))
	assert.Equal(t, "3600", u.Query().Get("X-Amz-Expires"))
}
