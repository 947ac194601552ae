package model

import "time"

// Document is one ingested PDF. Filename is unique across the corpus;
// re-ingesting the same filename is rejected, not overwritten.
type Document struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Title     string    `gorm:"size:500;not null" json:"title"`
	Filename  string    `gorm:"size:500;not null;uniqueIndex" json:"filename"`
	CreatedAt time.Time `json:"created_at"`

	Chunks []Chunk `gorm:"constraint:OnDelete:CASCADE" json:"-"`
}
