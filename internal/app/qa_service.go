package app

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ragdocs/internal/ai"
	"ragdocs/internal/model"
)

// NoRelevantContentAnswer is returned without calling the language model
// when retrieval finds nothing in the candidate documents.
const NoRelevantContentAnswer = "No relevant content found in the specified documents."

const systemPrompt = `You are a helpful assistant that answers questions based ONLY on the provided context.

Important instructions:
- Use ONLY the information from the context below to answer the question.
- If the answer is not in the context, say "I don't have enough information in the provided documents to answer this question."
- Do not make up information or use knowledge outside of the provided context.
- Be concise and direct in your answers.
- If you quote from the context, indicate which source you are using.`

// QueryEmbedder embeds one question.
type QueryEmbedder interface {
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ChunkRetriever returns up to k chunks nearest to the query vector,
// nearest first, either within a document id set or across the corpus.
type ChunkRetriever interface {
	NearestByDocumentIDs(queryVec []float32, documentIDs []uint, k int) ([]model.Chunk, error)
	Nearest(queryVec []float32, k int) ([]model.Chunk, error)
}

// TitleResolver looks up document titles for citation rendering.
type TitleResolver interface {
	GetByIDs(ids []uint) ([]model.Document, error)
}

// AnswerModel generates the grounded answer. One call per question.
type AnswerModel interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// AnswerCache short-circuits repeated questions over the same candidate
// set. Optional; a nil cache disables it.
type AnswerCache interface {
	Get(ctx context.Context, question string, documentIDs []uint, allDocuments bool) (*AskResult, bool, error)
	Set(ctx context.Context, question string, documentIDs []uint, allDocuments bool, result *AskResult) error
}

// QAService answers questions over ingested documents: embed the question,
// retrieve nearest chunks, assemble a cited context, generate.
type QAService struct {
	docs      TitleResolver
	retriever ChunkRetriever
	embedder  QueryEmbedder
	model     AnswerModel
	cache     AnswerCache
	topK      int
}

func NewQAService(
	docs TitleResolver,
	retriever ChunkRetriever,
	embedder QueryEmbedder,
	answerModel AnswerModel,
	cache AnswerCache,
	topK int,
) *QAService {
	if topK <= 0 {
		topK = 5
	}
	return &QAService{
		docs:      docs,
		retriever: retriever,
		embedder:  embedder,
		model:     answerModel,
		cache:     cache,
		topK:      topK,
	}
}

// AskInput is one question. DocumentIDs restricts the search; set
// AllDocuments to search the whole corpus instead.
type AskInput struct {
	Question     string
	DocumentIDs  []uint
	AllDocuments bool
	TopK         int
}

// AskResult is the grounded answer plus one citation per context chunk,
// in context order.
type AskResult struct {
	Answer    string     `json:"answer"`
	Citations []Citation `json:"citations"`
}

// Ask runs the query pipeline. Request-scoped and stateless: nothing here
// survives between calls except through the cache and the store.
func (s *QAService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, ErrInvalidInput
	}
	if !input.AllDocuments && len(input.DocumentIDs) == 0 {
		return nil, ErrEmptyCandidateSet
	}

	topK := input.TopK
	if topK <= 0 {
		topK = s.topK
	}

	if s.cache != nil {
		cached, ok, err := s.cache.Get(ctx, question, input.DocumentIDs, input.AllDocuments)
		if err != nil {
			log.Printf("answer cache get failed: %v", err)
		} else if ok {
			return cached, nil
		}
	}

	queryVec, err := s.embedQuestion(ctx, question)
	if err != nil {
		return nil, err
	}

	var chunks []model.Chunk
	if input.AllDocuments {
		chunks, err = s.retriever.Nearest(queryVec, topK)
	} else {
		chunks, err = s.retriever.NearestByDocumentIDs(queryVec, input.DocumentIDs, topK)
	}
	if err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		// Nothing to ground an answer on; skip the model call entirely.
		return &AskResult{
			Answer:    NoRelevantContentAnswer,
			Citations: []Citation{},
		}, nil
	}

	titles, err := s.resolveTitles(input, chunks)
	if err != nil {
		return nil, err
	}

	contextBlock, citations := assembleContext(chunks, titles)
	userPrompt := fmt.Sprintf("Context:\n%s\nQuestion: %s\n\nPlease answer the question based only on the context provided above.", contextBlock, question)

	answer, err := s.model.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, err
	}

	result := &AskResult{
		Answer:    answer,
		Citations: citations,
	}
	if s.cache != nil {
		if err := s.cache.Set(ctx, question, input.DocumentIDs, input.AllDocuments, result); err != nil {
			log.Printf("answer cache set failed: %v", err)
		}
	}
	return result, nil
}

func (s *QAService) embedQuestion(ctx context.Context, question string) ([]float32, error) {
	var queryVec []float32
	err := retryEmbed(ctx, func() error {
		var embedErr error
		queryVec, embedErr = s.embedder.Embed(ctx, question)
		return embedErr
	})
	if err != nil {
		return nil, err
	}
	if len(queryVec) != s.embedder.Dimension() {
		return nil, fmt.Errorf("%w: expected %d, got %d", ai.ErrDimensionMismatch, s.embedder.Dimension(), len(queryVec))
	}
	return queryVec, nil
}

func (s *QAService) resolveTitles(input AskInput, chunks []model.Chunk) (map[uint]string, error) {
	var docs []model.Document
	var err error
	if input.AllDocuments {
		ids := make([]uint, 0, len(chunks))
		seen := make(map[uint]bool, len(chunks))
		for _, c := range chunks {
			if !seen[c.DocumentID] {
				seen[c.DocumentID] = true
				ids = append(ids, c.DocumentID)
			}
		}
		docs, err = s.docs.GetByIDs(ids)
	} else {
		docs, err = s.docs.GetByIDs(input.DocumentIDs)
	}
	if err != nil {
		return nil, err
	}

	titles := make(map[uint]string, len(docs))
	for _, doc := range docs {
		titles[doc.ID] = doc.Title
	}
	return titles, nil
}
