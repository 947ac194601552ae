package model

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// Chunk is a bounded span of a document's extracted text with its
// embedding. Rows are written in bulk inside the ingestion transaction
// and never mutated afterwards; they go away with the parent document.
//
// The embedding column is the only place the on-disk vector
// representation appears: everything above the model layer works with
// plain []float32 and converts through SetEmbedding/EmbeddingVector.
type Chunk struct {
	ID         uint            `gorm:"primaryKey" json:"id"`
	DocumentID uint            `gorm:"not null;index;uniqueIndex:idx_chunks_doc_seq,priority:1" json:"document_id"`
	ChunkIndex int             `gorm:"not null;uniqueIndex:idx_chunks_doc_seq,priority:2" json:"chunk_index"`
	PageStart  int             `gorm:"not null" json:"page_start"`
	PageEnd    int             `gorm:"not null" json:"page_end"`
	Content    string          `gorm:"type:text;not null" json:"content"`
	Embedding  pgvector.Vector `gorm:"type:vector(384)" json:"-"`
	CreatedAt  time.Time       `json:"created_at"`
}

// EmbeddingVector returns the stored embedding as a float32 slice.
func (c *Chunk) EmbeddingVector() []float32 {
	return c.Embedding.Slice()
}

// SetEmbedding stores the given vector.
func (c *Chunk) SetEmbedding(vec []float32) {
	c.Embedding = pgvector.NewVector(vec)
}
