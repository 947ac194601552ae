package app

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragdocs/internal/ai"
	"ragdocs/internal/model"
)

type fakeRetriever struct {
	chunks      []model.Chunk
	err         error
	scopedCalls int
	globalCalls int
	lastIDs     []uint
	lastK       int
}

func (f *fakeRetriever) NearestByDocumentIDs(_ []float32, documentIDs []uint, k int) ([]model.Chunk, error) {
	f.scopedCalls++
	f.lastIDs = documentIDs
	f.lastK = k
	return f.chunks, f.err
}

func (f *fakeRetriever) Nearest(_ []float32, k int) ([]model.Chunk, error) {
	f.globalCalls++
	f.lastK = k
	return f.chunks, f.err
}

type fakeTitleResolver struct {
	docs []model.Document
	err  error
}

func (f *fakeTitleResolver) GetByIDs(ids []uint) ([]model.Document, error) {
	if f.err != nil {
		return nil, f.err
	}
	byID := make(map[uint]model.Document, len(f.docs))
	for _, d := range f.docs {
		byID[d.ID] = d
	}
	out := make([]model.Document, 0, len(ids))
	for _, id := range ids {
		if d, ok := byID[id]; ok {
			out = append(out, d)
		}
	}
	return out, nil
}

type fakeAnswerModel struct {
	answer     string
	err        error
	calls      int
	lastSystem string
	lastUser   string
}

func (f *fakeAnswerModel) Complete(_ context.Context, system, user string) (string, error) {
	f.calls++
	f.lastSystem = system
	f.lastUser = user
	if f.err != nil {
		return "", f.err
	}
	return f.answer, nil
}

type fakeAnswerCache struct {
	stored map[string]*AskResult
	getErr error
	setErr error
	gets   int
	sets   int
}

func cacheKey(question string, documentIDs []uint, allDocuments bool) string {
	var b strings.Builder
	b.WriteString(question)
	if allDocuments {
		b.WriteString("|all")
	}
	for _, id := range documentIDs {
		b.WriteByte('|')
		b.WriteByte(byte('0' + id%10))
	}
	return b.String()
}

func (f *fakeAnswerCache) Get(_ context.Context, question string, documentIDs []uint, allDocuments bool) (*AskResult, bool, error) {
	f.gets++
	if f.getErr != nil {
		return nil, false, f.getErr
	}
	result, ok := f.stored[cacheKey(question, documentIDs, allDocuments)]
	return result, ok, nil
}

func (f *fakeAnswerCache) Set(_ context.Context, question string, documentIDs []uint, allDocuments bool, result *AskResult) error {
	f.sets++
	if f.setErr != nil {
		return f.setErr
	}
	if f.stored == nil {
		f.stored = map[string]*AskResult{}
	}
	f.stored[cacheKey(question, documentIDs, allDocuments)] = result
	return nil
}

func retrievedChunks() []model.Chunk {
	return []model.Chunk{
		{ID: 31, DocumentID: 1, ChunkIndex: 2, PageStart: 3, PageEnd: 4, Content: "alpha content"},
		{ID: 12, DocumentID: 2, ChunkIndex: 0, PageStart: 0, PageEnd: 0, Content: "beta content"},
		{ID: 44, DocumentID: 1, ChunkIndex: 5, PageStart: 9, PageEnd: 9, Content: "gamma content"},
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	s := NewQAService(&fakeTitleResolver{}, &fakeRetriever{}, &fakeBatchEmbedder{dim: testDim}, &fakeAnswerModel{}, nil, 5)

	_, err := s.Ask(context.Background(), AskInput{Question: "   ", DocumentIDs: []uint{1}})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestAskEmptyCandidateSet(t *testing.T) {
	embedder := &fakeBatchEmbedder{dim: testDim}
	s := NewQAService(&fakeTitleResolver{}, &fakeRetriever{}, embedder, &fakeAnswerModel{}, nil, 5)

	_, err := s.Ask(context.Background(), AskInput{Question: "anything?"})
	assert.ErrorIs(t, err, ErrEmptyCandidateSet)
	assert.Zero(t, embedder.calls)
}

func TestAskNoResultsSkipsModel(t *testing.T) {
	modelFake := &fakeAnswerModel{answer: "should not appear"}
	cache := &fakeAnswerCache{}
	s := NewQAService(&fakeTitleResolver{}, &fakeRetriever{}, &fakeBatchEmbedder{dim: testDim}, modelFake, cache, 5)

	result, err := s.Ask(context.Background(), AskInput{Question: "anything?", DocumentIDs: []uint{1}})
	require.NoError(t, err)

	assert.Equal(t, NoRelevantContentAnswer, result.Answer)
	assert.Empty(t, result.Citations)
	assert.Zero(t, modelFake.calls)
	// The canned answer is not worth caching.
	assert.Zero(t, cache.sets)
}

func TestAskCitationsMatchContextOrder(t *testing.T) {
	retriever := &fakeRetriever{chunks: retrievedChunks()}
	resolver := &fakeTitleResolver{docs: []model.Document{
		{ID: 1, Title: "Handbook"},
		{ID: 2, Title: "Field Guide"},
	}}
	modelFake := &fakeAnswerModel{answer: "grounded answer"}
	s := NewQAService(resolver, retriever, &fakeBatchEmbedder{dim: testDim}, modelFake, nil, 5)

	result, err := s.Ask(context.Background(), AskInput{Question: "what is alpha?", DocumentIDs: []uint{1, 2}})
	require.NoError(t, err)

	assert.Equal(t, "grounded answer", result.Answer)
	require.Len(t, result.Citations, 3)
	assert.Equal(t, uint(31), result.Citations[0].ChunkID)
	assert.Equal(t, "Handbook", result.Citations[0].DocumentTitle)
	assert.Equal(t, 3, result.Citations[0].PageStart)
	assert.Equal(t, 4, result.Citations[0].PageEnd)
	assert.Equal(t, uint(12), result.Citations[1].ChunkID)
	assert.Equal(t, "Field Guide", result.Citations[1].DocumentTitle)
	assert.Equal(t, uint(44), result.Citations[2].ChunkID)

	assert.Contains(t, modelFake.lastUser, "--- Source 1: Handbook (Pages 3-4) ---")
	assert.Contains(t, modelFake.lastUser, "--- Source 2: Field Guide (Pages 0-0) ---")
	assert.Contains(t, modelFake.lastUser, "--- Source 3: Handbook (Pages 9-9) ---")
	assert.Contains(t, modelFake.lastUser, "alpha content")
	assert.Contains(t, modelFake.lastUser, "Question: what is alpha?")
	assert.Contains(t, modelFake.lastSystem, "ONLY on the provided context")

	assert.Equal(t, 1, retriever.scopedCalls)
	assert.Equal(t, []uint{1, 2}, retriever.lastIDs)
	assert.Equal(t, 5, retriever.lastK)
}

func TestAskAllDocuments(t *testing.T) {
	retriever := &fakeRetriever{chunks: retrievedChunks()}
	resolver := &fakeTitleResolver{docs: []model.Document{
		{ID: 1, Title: "Handbook"},
		{ID: 2, Title: "Field Guide"},
	}}
	s := NewQAService(resolver, retriever, &fakeBatchEmbedder{dim: testDim}, &fakeAnswerModel{answer: "ok"}, nil, 5)

	result, err := s.Ask(context.Background(), AskInput{Question: "anything?", AllDocuments: true, TopK: 3})
	require.NoError(t, err)

	assert.Equal(t, 1, retriever.globalCalls)
	assert.Zero(t, retriever.scopedCalls)
	assert.Equal(t, 3, retriever.lastK)
	require.Len(t, result.Citations, 3)
	assert.Equal(t, "Handbook", result.Citations[0].DocumentTitle)
}

func TestAskGenerationFailureNotRetried(t *testing.T) {
	backendErr := errors.New("model unavailable")
	modelFake := &fakeAnswerModel{err: backendErr}
	resolver := &fakeTitleResolver{docs: []model.Document{{ID: 1, Title: "Handbook"}}}
	s := NewQAService(resolver, &fakeRetriever{chunks: retrievedChunks()}, &fakeBatchEmbedder{dim: testDim}, modelFake, nil, 5)

	_, err := s.Ask(context.Background(), AskInput{Question: "anything?", DocumentIDs: []uint{1}})
	assert.ErrorIs(t, err, backendErr)
	assert.Equal(t, 1, modelFake.calls)
}

func TestAskQueryDimensionMismatch(t *testing.T) {
	embedder := &fakeBatchEmbedder{dim: testDim, wrongDim: true}
	retriever := &fakeRetriever{chunks: retrievedChunks()}
	s := NewQAService(&fakeTitleResolver{}, retriever, embedder, &fakeAnswerModel{}, nil, 5)

	_, err := s.Ask(context.Background(), AskInput{Question: "anything?", DocumentIDs: []uint{1}})
	assert.ErrorIs(t, err, ai.ErrDimensionMismatch)
	assert.Zero(t, retriever.scopedCalls)
}

func TestAskCacheHitSkipsPipeline(t *testing.T) {
	cached := &AskResult{Answer: "cached answer", Citations: []Citation{}}
	cache := &fakeAnswerCache{stored: map[string]*AskResult{
		cacheKey("anything?", []uint{1}, false): cached,
	}}
	embedder := &fakeBatchEmbedder{dim: testDim}
	modelFake := &fakeAnswerModel{answer: "fresh"}
	s := NewQAService(&fakeTitleResolver{}, &fakeRetriever{}, embedder, modelFake, cache, 5)

	result, err := s.Ask(context.Background(), AskInput{Question: "anything?", DocumentIDs: []uint{1}})
	require.NoError(t, err)

	assert.Equal(t, "cached answer", result.Answer)
	assert.Zero(t, embedder.calls)
	assert.Zero(t, modelFake.calls)
}

func TestAskCacheFailuresAreBestEffort(t *testing.T) {
	cache := &fakeAnswerCache{getErr: errors.New("redis down"), setErr: errors.New("redis down")}
	resolver := &fakeTitleResolver{docs: []model.Document{{ID: 1, Title: "Handbook"}}}
	s := NewQAService(resolver, &fakeRetriever{chunks: retrievedChunks()}, &fakeBatchEmbedder{dim: testDim}, &fakeAnswerModel{answer: "ok"}, cache, 5)

	result, err := s.Ask(context.Background(), AskInput{Question: "anything?", DocumentIDs: []uint{1}})
	require.NoError(t, err)
	assert.Equal(t, "ok", result.Answer)
	assert.Equal(t, 1, cache.gets)
	assert.Equal(t, 1, cache.sets)
}

func TestAskStoresAnswerInCache(t *testing.T) {
	cache := &fakeAnswerCache{}
	resolver := &fakeTitleResolver{docs: []model.Document{{ID: 1, Title: "Handbook"}}}
	s := NewQAService(resolver, &fakeRetriever{chunks: retrievedChunks()}, &fakeBatchEmbedder{dim: testDim}, &fakeAnswerModel{answer: "ok"}, cache, 5)

	_, err := s.Ask(context.Background(), AskInput{Question: "anything?", DocumentIDs: []uint{1}})
	require.NoError(t, err)

	stored, ok := cache.stored[cacheKey("anything?", []uint{1}, false)]
	require.True(t, ok)
	assert.Equal(t, "ok", stored.Answer)
}
