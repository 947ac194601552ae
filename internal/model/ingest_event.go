package model

import "time"

// IngestEvent is an audit row recorded asynchronously after a document
// is ingested. It is written by the ingest audit worker, never by the
// ingestion transaction itself.
type IngestEvent struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	DocumentID uint      `gorm:"not null;index" json:"document_id"`
	Filename   string    `gorm:"size:500;not null" json:"filename"`
	NumChunks  int       `gorm:"not null" json:"num_chunks"`
	CreatedAt  time.Time `json:"created_at"`
}
