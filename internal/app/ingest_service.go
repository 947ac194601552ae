package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"ragdocs/internal/ai"
	"ragdocs/internal/chunker"
	"ragdocs/internal/model"
	"ragdocs/internal/pkg/pdfextract"
)

// IngestStore persists a document and its chunks atomically and answers
// filename lookups for the duplicate check.
type IngestStore interface {
	GetByFilename(filename string) (*model.Document, error)
	CreateWithChunks(doc *model.Document, chunks []model.Chunk) error
}

// BatchEmbedder turns chunk texts into fixed-dimension vectors,
// order-preserving.
type BatchEmbedder interface {
	Dimension() int
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
}

// EventPublisher announces a successful ingestion. Best effort; the
// ingestion result never depends on it.
type EventPublisher interface {
	PublishDocumentIngested(ctx context.Context, event model.IngestEvent) error
}

// IngestService runs the ingestion pipeline: extract pages, chunk, embed
// in batches, persist document plus chunks as one unit of work.
type IngestService struct {
	store     IngestStore
	embedder  BatchEmbedder
	events    EventPublisher
	chunkCfg  chunker.Config
	batchSize int
	extract   func(r io.Reader) ([]string, error)
}

func NewIngestService(
	store IngestStore,
	embedder BatchEmbedder,
	events EventPublisher,
	chunkCfg chunker.Config,
	batchSize int,
) *IngestService {
	if batchSize <= 0 {
		batchSize = 32
	}
	return &IngestService{
		store:     store,
		embedder:  embedder,
		events:    events,
		chunkCfg:  chunkCfg,
		batchSize: batchSize,
		extract:   pdfextract.ExtractPages,
	}
}

// IngestInput is one PDF to ingest. Title is optional and defaults to the
// filename without its extension.
type IngestInput struct {
	PDF      []byte
	Title    string
	Filename string
}

// IngestResult reports what a successful ingestion created.
type IngestResult struct {
	DocumentID uint   `json:"document_id"`
	NumChunks  int    `json:"num_chunks"`
	Title      string `json:"title"`
}

// Ingest processes one document. A failure at any step leaves no document
// and no chunks behind: everything up to persistence happens in memory and
// persistence itself is a single transaction.
func (s *IngestService) Ingest(ctx context.Context, input IngestInput) (*IngestResult, error) {
	filename := strings.TrimSpace(input.Filename)
	if filename == "" || len(input.PDF) == 0 {
		return nil, ErrInvalidInput
	}

	existing, err := s.store.GetByFilename(filename)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrDuplicateDocument
	}

	pages, err := s.extract(bytes.NewReader(input.PDF))
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	drafts, err := chunker.Split(pages, s.chunkCfg)
	if err != nil {
		return nil, err
	}
	if len(drafts) == 0 {
		return nil, pdfextract.ErrNoExtractableText
	}

	embeddings, err := s.embedAll(ctx, drafts)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{
		Title:    title,
		Filename: filename,
	}
	chunks := make([]model.Chunk, len(drafts))
	for i, draft := range drafts {
		chunks[i] = model.Chunk{
			ChunkIndex: draft.Index,
			PageStart:  draft.PageStart,
			PageEnd:    draft.PageEnd,
			Content:    draft.Text,
		}
		chunks[i].SetEmbedding(embeddings[i])
	}

	if err := s.store.CreateWithChunks(doc, chunks); err != nil {
		// Concurrent ingestion of the same filename: the unique constraint
		// is the arbiter, the loser sees a duplicate like everyone else.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateDocument
		}
		return nil, err
	}

	if s.events != nil {
		event := model.IngestEvent{
			DocumentID: doc.ID,
			Filename:   doc.Filename,
			NumChunks:  len(chunks),
		}
		if err := s.events.PublishDocumentIngested(ctx, event); err != nil {
			log.Printf("publish ingest event failed: %v", err)
		}
	}

	return &IngestResult{
		DocumentID: doc.ID,
		NumChunks:  len(chunks),
		Title:      doc.Title,
	}, nil
}

// embedAll embeds drafts in sequential batches: batch N+1 is not issued
// until batch N returned, bounding load on the embedding backend.
func (s *IngestService) embedAll(ctx context.Context, drafts []chunker.Draft) ([][]float32, error) {
	dim := s.embedder.Dimension()
	embeddings := make([][]float32, 0, len(drafts))

	for i := 0; i < len(drafts); i += s.batchSize {
		end := i + s.batchSize
		if end > len(drafts) {
			end = len(drafts)
		}
		texts := make([]string, 0, end-i)
		for _, draft := range drafts[i:end] {
			texts = append(texts, draft.Text)
		}

		var batch [][]float32
		err := retryEmbed(ctx, func() error {
			var embedErr error
			batch, embedErr = s.embedder.EmbedBatch(ctx, texts)
			return embedErr
		})
		if err != nil {
			return nil, err
		}
		if len(batch) != len(texts) {
			return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ai.ErrEmbeddingBackend, len(batch), len(texts))
		}
		for _, vec := range batch {
			if len(vec) != dim {
				return nil, fmt.Errorf("%w: expected %d, got %d", ai.ErrDimensionMismatch, dim, len(vec))
			}
		}
		embeddings = append(embeddings, batch...)
	}
	return embeddings, nil
}
