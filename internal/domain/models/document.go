package models

import (
	"time"
)

type Document struct {
	ID            string    `json:"id" db:"id"`
	OwnerID       string    `json:"owner_id" db:"owner_id"`
	FolderID      *string   `json:"folder_id" db:"folder_id"`           // NULL = root level
	SeriesID      *string   `json:"series_id" db:"series_id"`           // NULL = standalone
	ChapterNumber *int      `json:"chapter_number" db:"chapter_number"` // ordering within a series
	Title         string    `json:"title" db:"title"`
	Content       string    `json:"content" db:"content"` // opaque rich-text serialization
	Tags          []string  `json:"tags" db:"tags"`
	WordCount     int       `json:"word_count" db:"word_count"` // derived cache, recomputed on save
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// DocumentVersion is an immutable point-in-time snapshot of a document.
// Version numbers are strictly increasing per document and never reused;
// a restore records a new version that copies an old snapshot's content,
// it does not rewind the counter.
type DocumentVersion struct {
	ID            string    `json:"id" db:"id"`
	DocumentID    string    `json:"document_id" db:"document_id"`
	VersionNumber int       `json:"version_number" db:"version_number"`
	Title         string    `json:"title" db:"title"`
	Content       string    `json:"content" db:"content"`
	WordCount     int       `json:"word_count" db:"word_count"`
	ChangeSummary string    `json:"change_summary" db:"change_summary"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}
