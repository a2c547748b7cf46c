package ingest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/emdili/docrag/internal/core"
	"github.com/emdili/docrag/internal/models"
)

// fakeMetadataStore implements core.MetadataStore in memory.
type fakeMetadataStore struct {
	mu   sync.Mutex
	docs map[string]*models.Document
}

func newFakeMetadataStore() *fakeMetadataStore {
	return &fakeMetadataStore{docs: make(map[string]*models.Document)}
}

func (f *fakeMetadataStore) key(owner, filename string) string { return owner + "\x00" + filename }

func (f *fakeMetadataStore) Put(_ context.Context, doc *models.Document) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *doc
	f.docs[f.key(doc.OwnerID, doc.Filename)] = &cp
	return nil
}

func (f *fakeMetadataStore) Get(_ context.Context, owner, filename string) (*models.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[f.key(owner, filename)]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

func (f *fakeMetadataStore) ListByOwner(_ context.Context, owner string, limit int, token string) ([]models.Document, string, error) {
	return nil, "", errors.New("not used in ingest tests")
}

func (f *fakeMetadataStore) ListByStatus(_ context.Context, status models.ProcessingStatus, limit int, token string) ([]models.Document, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Document
	for _, d := range f.docs {
		if d.Status == status {
			out = append(out, *d)
		}
	}
	// Single-page listing is enough for these tests.
	return out, "", nil
}

func (f *fakeMetadataStore) UpdateStatus(_ context.Context, owner, filename string, upd core.StatusUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	doc, ok := f.docs[f.key(owner, filename)]
	if !ok {
		return core.ErrNotFound
	}
	doc.Status = upd.Status
	if upd.Error != nil {
		doc.ProcessingError = upd.Error
	}
	if upd.ProcessedAt != nil {
		doc.ProcessedAt = upd.ProcessedAt
	}
	if upd.ClearError {
		doc.ProcessingError = nil
	}
	return nil
}

func (f *fakeMetadataStore) Delete(_ context.Context, owner, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.docs, f.key(owner, filename))
	return nil
}

// fakeObjectStore implements core.ObjectStore in memory.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: make(map[string][]byte)}
}

func (f *fakeObjectStore) Put(_ context.Context, owner, filename string, data []byte, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[core.ObjectKey(owner, filename)] = data
	return nil
}

func (f *fakeObjectStore) Get(_ context.Context, owner, filename string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.objects[core.ObjectKey(owner, filename)]
	if !ok {
		return nil, nil
	}
	return data, nil
}

func (f *fakeObjectStore) Delete(_ context.Context, owner, filename string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, core.ObjectKey(owner, filename))
	return nil
}

func (f *fakeObjectStore) has(owner, filename string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[core.ObjectKey(owner, filename)]
	return ok
}

// fakeEmbedder counts calls and can fail on a chosen call number.
type fakeEmbedder struct {
	mu        sync.Mutex
	calls     int
	failAt    int // 1-based call number to fail at; 0 = never
	failAlway bool
}

func (f *fakeEmbedder) EmbedText(_ context.Context, text string) ([]float32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if strings.TrimSpace(text) == "" {
		return nil, errors.New("text to embed must be non-empty")
	}
	if f.failAlway || (f.failAt > 0 && f.calls == f.failAt) {
		return nil, errors.New("embedding backend unavailable")
	}
	return []float32{float32(len(text)), 0.5, 0.25}, nil
}

// fakeVectorIndex implements core.VectorIndex in memory.
type fakeVectorIndex struct {
	mu      sync.Mutex
	entries map[string]core.VectorEntry
	putErr  error
}

func newFakeVectorIndex() *fakeVectorIndex {
	return &fakeVectorIndex{entries: make(map[string]core.VectorEntry)}
}

func (f *fakeVectorIndex) Put(_ context.Context, entries []core.VectorEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return f.putErr
	}
	for _, e := range entries {
		f.entries[e.Key] = e
	}
	return nil
}

func (f *fakeVectorIndex) Query(_ context.Context, _ []float32, topK int, owner string) ([]core.VectorMatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []core.VectorMatch
	for _, e := range f.entries {
		if e.OwnerID == owner && len(out) < topK {
			out = append(out, core.VectorMatch{Key: e.Key, Filename: e.Filename, Text: e.Text})
		}
	}
	return out, nil
}

func (f *fakeVectorIndex) Delete(_ context.Context, keys []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, k := range keys {
		delete(f.entries, k)
	}
	return nil
}

func (f *fakeVectorIndex) ListKeys(_ context.Context, prefix string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for k := range f.entries {
		if strings.HasPrefix(k, prefix) {
			out = append(out, k)
		}
	}
	return out, nil
}

func (f *fakeVectorIndex) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.entries)
}
