package memory

import (
	"context"
	"fmt"
	"net/url"
	"sync"
	"time"

	"macrolens/internal/domain"
)

// Photos is an in-memory domain.PhotoStore.
type Photos struct {
	mu      sync.Mutex
	objects map[string]domain.Image
}

// NewPhotos creates an empty photo store.
func NewPhotos() *Photos {
	return &Photos{objects: make(map[string]domain.Image)}
}

var _ domain.PhotoStore = (*Photos)(nil)

// Upload stores a copy of img at path.
func (p *Photos) Upload(ctx context.Context, path string, img domain.Image) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	img.Data = append([]byte(nil), img.Data...)
	p.objects[path] = img
	return nil
}

// Download returns the image stored at path.
func (p *Photos) Download(ctx context.Context, path string) (domain.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	img, ok := p.objects[path]
	if !ok {
		return domain.Image{}, fmt.Errorf("photo %s: not found", path)
	}
	return img, nil
}

// SignedURL returns a memory:// URL carrying the expiry time.
func (p *Photos) SignedURL(ctx context.Context, path string, ttl time.Duration) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.objects[path]; !ok {
		return "", fmt.Errorf("photo %s: not found", path)
	}
	q := url.Values{"expires": {time.Now().Add(ttl).UTC().Format(time.RFC3339)}}
	return "memory:///" + path + "?" + q.Encode(), nil
}

// Delete removes the image at path.
func (p *Photos) Delete(ctx context.Context, path string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.objects[path]; !ok {
		return fmt.Errorf("photo %s: not found", path)
	}
	delete(p.objects, path)
	return nil
}

// Len reports the number of stored photos.
func (p *Photos) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.objects)
}
