package models

import "time"

// FolderNode represents a folder in the navigation tree with nested children
type FolderNode struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	ParentID  *string       `json:"parent_id"`
	Color     *string       `json:"color,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Children  []*FolderNode `json:"children"` // Pointers for proper nesting
}

// SeriesOverview aggregates a series with its member documents,
// ordered by chapter number.
type SeriesOverview struct {
	Series    Series     `json:"series"`
	Documents []Document `json:"documents"`
	WordCount int        `json:"word_count"` // sum over member documents
}
