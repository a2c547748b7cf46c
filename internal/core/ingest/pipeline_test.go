package ingest

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emdili/docrag/internal/core"
	"github.com/emdili/docrag/internal/core/chunk"
	"github.com/emdili/docrag/internal/core/registry"
	"github.com/emdili/docrag/internal/models"
)

type pipelineEnv struct {
	meta     *fakeMetadataStore
	objects  *fakeObjectStore
	embedder *fakeEmbedder
	vectors  *fakeVectorIndex
	registry *registry.Registry
	pipeline *Pipeline
}

func newPipelineEnv(t *testing.T) *pipelineEnv {
	t.Helper()
	env := &pipelineEnv{
		meta:     newFakeMetadataStore(),
		objects:  newFakeObjectStore(),
		embedder: &fakeEmbedder{},
		vectors:  newFakeVectorIndex(),
	}
	env.registry = registry.New(env.meta)
	env.pipeline = NewPipeline(env.registry, env.objects, env.embedder, env.vectors,
		chunk.NewSplitter(40, 8), slog.Default())
	return env
}

// seed stores a markdown document record plus (optionally) its source
// object.
func (e *pipelineEnv) seed(t *testing.T, filename, content string, status models.ProcessingStatus, withObject bool) {
	t.Helper()
	ctx := context.Background()
	doc := &models.Document{
		OwnerID:    "owner-a",
		Filename:   filename,
		Format:     models.FormatMarkdown,
		SizeBytes:  int64(len(content)),
		UploadedAt: time.Now().UTC(),
		Status:     status,
	}
	require.NoError(t, e.registry.Create(ctx, doc))
	if withObject {
		require.NoError(t, e.objects.Put(ctx, "owner-a", filename, []byte(content), "text/markdown"))
	}
}

func (e *pipelineEnv) doc(t *testing.T, filename string) *models.Document {
	t.Helper()
	doc, err := e.registry.Get(context.Background(), "owner-a", filename)
	require.NoError(t, err)
	require.NotNil(t, doc)
	return doc
}

func TestProcessSuccess(t *testing.T) {
	env := newPipelineEnv(t)
	content := strings.Repeat("grounded answers need indexed text. ", 6)
	env.seed(t, "notes.md", content, models.StatusProcessing, true)

	require.NoError(t, env.pipeline.Process(context.Background(), "owner-a", "notes.md"))

	doc := env.doc(t, "notes.md")
	assert.Equal(t, models.StatusProcessed, doc.Status)
	require.NotNil(t, doc.ProcessedAt)
	assert.Nil(t, doc.ProcessingError)
	assert.Greater(t, env.vectors.count(), 1, "expected multiple chunks indexed")
	assert.False(t, env.objects.has("owner-a", "notes.md"), "source must be cleaned up after indexing")
}

func TestProcessIdempotentWhenProcessed(t *testing.T) {
	env := newPipelineEnv(t)
	env.seed(t, "notes.md", "content", models.StatusProcessing, true)
	require.NoError(t, env.pipeline.Process(context.Background(), "owner-a", "notes.md"))

	indexed := env.vectors.count()
	embedCalls := env.embedder.calls

	require.NoError(t, env.pipeline.Process(context.Background(), "owner-a", "notes.md"))
	assert.Equal(t, indexed, env.vectors.count())
	assert.Equal(t, embedCalls, env.embedder.calls, "no further embedding calls for a processed document")

	doc := env.doc(t, "notes.md")
	assert.Equal(t, models.StatusProcessed, doc.Status)
}

func TestProcessMissingRecord(t *testing.T) {
	env := newPipelineEnv(t)

	err := env.pipeline.Process(context.Background(), "owner-a", "ghost.md")
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrNotFound))
	// No record to update, so nothing was written.
	got, gerr := env.registry.Get(context.Background(), "owner-a", "ghost.md")
	require.NoError(t, gerr)
	assert.Nil(t, got)
}

func TestProcessMissingSourceObject(t *testing.T) {
	env := newPipelineEnv(t)
	env.seed(t, "notes.md", "content", models.StatusPending, false)

	err := env.pipeline.Process(context.Background(), "owner-a", "notes.md")
	require.Error(t, err)

	doc := env.doc(t, "notes.md")
	assert.Equal(t, models.StatusFailed, doc.Status)
	require.NotNil(t, doc.ProcessingError)
	assert.Contains(t, *doc.ProcessingError, "not found in storage")
	assert.Nil(t, doc.ProcessedAt)
}

func TestProcessNoTextExtracted(t *testing.T) {
	env := newPipelineEnv(t)
	env.seed(t, "blank.md", "   \n\t  ", models.StatusProcessing, true)

	err := env.pipeline.Process(context.Background(), "owner-a", "blank.md")
	require.Error(t, err)

	doc := env.doc(t, "blank.md")
	assert.Equal(t, models.StatusFailed, doc.Status)
	require.NotNil(t, doc.ProcessingError)
	assert.Contains(t, *doc.ProcessingError, "no text extracted")
	assert.Zero(t, env.vectors.count())
	assert.True(t, env.objects.has("owner-a", "blank.md"), "source must survive failure")
}

func TestProcessEmbeddingFailureLeavesNoPartialWrites(t *testing.T) {
	env := newPipelineEnv(t)
	// Five chunks with splitter size 40 / overlap 8; fail on chunk 3.
	content := strings.Repeat("abcdefghij", 15)
	env.seed(t, "notes.md", content, models.StatusProcessing, true)
	env.embedder.failAt = 3

	err := env.pipeline.Process(context.Background(), "owner-a", "notes.md")
	require.Error(t, err)
	var depErr *core.DependencyError
	assert.True(t, errors.As(err, &depErr))

	doc := env.doc(t, "notes.md")
	assert.Equal(t, models.StatusFailed, doc.Status)
	require.NotNil(t, doc.ProcessingError)
	assert.NotEmpty(t, *doc.ProcessingError)
	assert.Zero(t, env.vectors.count(), "no vector entries may exist after a mid-batch failure")
	assert.True(t, env.objects.has("owner-a", "notes.md"), "source must survive failure")
}

func TestProcessIndexingFailure(t *testing.T) {
	env := newPipelineEnv(t)
	env.seed(t, "notes.md", "some perfectly fine content", models.StatusProcessing, true)
	env.vectors.putErr = errors.New("index write refused")

	err := env.pipeline.Process(context.Background(), "owner-a", "notes.md")
	require.Error(t, err)

	doc := env.doc(t, "notes.md")
	assert.Equal(t, models.StatusFailed, doc.Status)
	assert.Zero(t, env.vectors.count())
	assert.True(t, env.objects.has("owner-a", "notes.md"))
}

func TestProcessClearsErrorOnRetry(t *testing.T) {
	env := newPipelineEnv(t)
	env.seed(t, "notes.md", "retry me please, with feeling", models.StatusPending, true)

	env.embedder.failAlway = true
	require.Error(t, env.pipeline.Process(context.Background(), "owner-a", "notes.md"))
	require.NotNil(t, env.doc(t, "notes.md").ProcessingError)

	env.embedder.failAlway = false
	require.NoError(t, env.pipeline.Process(context.Background(), "owner-a", "notes.md"))

	doc := env.doc(t, "notes.md")
	assert.Equal(t, models.StatusProcessed, doc.Status)
	assert.Nil(t, doc.ProcessingError)
}

func TestTruncateText(t *testing.T) {
	assert.Equal(t, "short", truncateText("short", 10))
	assert.Equal(t, "abc", truncateText("abcdef", 3))
	// Multibyte runes are never split.
	s := truncateText("日本語", 4) // each rune is 3 bytes
	assert.Equal(t, "日", s)
}
