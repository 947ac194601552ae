package app

import (
	"time"

	"ragdocs/internal/model"
	"ragdocs/internal/repository"
)

// DocumentService covers document management around the two pipelines:
// listing, inspection, deletion. Deleting a document takes its chunks
// with it.
type DocumentService struct {
	docRepo   *repository.DocumentRepository
	chunkRepo *repository.ChunkRepository
}

func NewDocumentService(docRepo *repository.DocumentRepository, chunkRepo *repository.ChunkRepository) *DocumentService {
	return &DocumentService{docRepo: docRepo, chunkRepo: chunkRepo}
}

// DocumentInfo is a document plus its chunk count.
type DocumentInfo struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	Filename   string    `json:"filename"`
	ChunkCount int64     `json:"chunk_count"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *DocumentService) List() ([]DocumentInfo, error) {
	docs, err := s.docRepo.List()
	if err != nil {
		return nil, err
	}
	infos := make([]DocumentInfo, 0, len(docs))
	for _, doc := range docs {
		count, err := s.chunkRepo.CountByDocumentID(doc.ID)
		if err != nil {
			return nil, err
		}
		infos = append(infos, newDocumentInfo(doc, count))
	}
	return infos, nil
}

func (s *DocumentService) Get(id uint) (*DocumentInfo, error) {
	if id == 0 {
		return nil, ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if doc == nil {
		return nil, ErrDocumentNotFound
	}
	count, err := s.chunkRepo.CountByDocumentID(doc.ID)
	if err != nil {
		return nil, err
	}
	info := newDocumentInfo(*doc, count)
	return &info, nil
}

func (s *DocumentService) Delete(id uint) error {
	if id == 0 {
		return ErrInvalidInput
	}
	doc, err := s.docRepo.GetByID(id)
	if err != nil {
		return err
	}
	if doc == nil {
		return ErrDocumentNotFound
	}
	if err := s.chunkRepo.DeleteByDocumentID(doc.ID); err != nil {
		return err
	}
	return s.docRepo.Delete(doc.ID)
}

func newDocumentInfo(doc model.Document, chunkCount int64) DocumentInfo {
	return DocumentInfo{
		ID:         doc.ID,
		Title:      doc.Title,
		Filename:   doc.Filename,
		ChunkCount: chunkCount,
		CreatedAt:  doc.CreatedAt,
	}
}
