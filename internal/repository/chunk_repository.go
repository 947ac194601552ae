package repository

import (
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm"

	"ragdocs/internal/model"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// NearestByDocumentIDs returns up to k chunks owned by the given documents,
// nearest first by cosine distance to the query vector. Exact ties order by
// (document_id, chunk_index) so results are deterministic. An empty result
// is not an error.
func (r *ChunkRepository) NearestByDocumentIDs(queryVec []float32, documentIDs []uint, k int) ([]model.Chunk, error) {
	if len(documentIDs) == 0 || k < 1 {
		return nil, nil
	}
	var chunks []model.Chunk
	err := r.db.Raw(
		`SELECT * FROM chunks
		 WHERE document_id IN ?
		 ORDER BY embedding <=> ?, document_id, chunk_index
		 LIMIT ?`,
		documentIDs, pgvector.NewVector(queryVec), k,
	).Scan(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("nearest chunks by document ids failed: %w", err)
	}
	return chunks, nil
}

// Nearest is the all-documents variant of NearestByDocumentIDs.
func (r *ChunkRepository) Nearest(queryVec []float32, k int) ([]model.Chunk, error) {
	if k < 1 {
		return nil, nil
	}
	var chunks []model.Chunk
	err := r.db.Raw(
		`SELECT * FROM chunks
		 ORDER BY embedding <=> ?, document_id, chunk_index
		 LIMIT ?`,
		pgvector.NewVector(queryVec), k,
	).Scan(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("nearest chunks failed: %w", err)
	}
	return chunks, nil
}

func (r *ChunkRepository) CountByDocumentID(documentID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Chunk{}).Where("document_id = ?", documentID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count chunks by document failed: %w", err)
	}
	return count, nil
}

func (r *ChunkRepository) DeleteByDocumentID(documentID uint) error {
	if err := r.db.Where("document_id = ?", documentID).Delete(&model.Chunk{}).Error; err != nil {
		return fmt.Errorf("delete chunks by document failed: %w", err)
	}
	return nil
}
