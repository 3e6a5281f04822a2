package models

import (
	"fmt"
)

// SearchField defines which document fields to search
type SearchField string

const (
	// SearchFieldTitle searches the document title.
	// Matches are weighted 2x higher than content matches.
	SearchFieldTitle SearchField = "title"

	// SearchFieldContent searches the document body
	SearchFieldContent SearchField = "content"

	// SearchFieldTags searches the document tag set
	SearchFieldTags SearchField = "tags"
)

// Default search configuration values
const (
	DefaultSearchLimit    = 20
	DefaultSearchOffset   = 0
	DefaultSearchLanguage = "english"
)

// SearchOptions configures how documents are searched
type SearchOptions struct {
	// Query is the search string (required)
	Query string

	// Fields specifies which document fields to search.
	// Default: [SearchFieldTitle, SearchFieldContent]
	Fields []SearchField

	// FolderID optionally filters results to documents in a specific folder.
	// nil = search all folders.
	FolderID *string

	// SeriesID optionally filters results to documents in a specific series
	SeriesID *string

	// Pagination
	Limit  int // Number of results to return (default: 20)
	Offset int // Number of results to skip (default: 0)

	// Language selects the text search configuration used for stemming
	// and stop words (e.g. "english", "spanish"). Default: "english".
	Language string
}

// ApplyDefaults fills in default values for unset fields
func (opts *SearchOptions) ApplyDefaults() {
	if len(opts.Fields) == 0 {
		opts.Fields = []SearchField{SearchFieldTitle, SearchFieldContent}
	}
	if opts.Limit <= 0 {
		opts.Limit = DefaultSearchLimit
	}
	if opts.Offset < 0 {
		opts.Offset = DefaultSearchOffset
	}
	if opts.Language == "" {
		opts.Language = DefaultSearchLanguage
	}
}

// Validate checks that required fields are set and values are reasonable
func (opts *SearchOptions) Validate() error {
	if opts.Query == "" {
		return fmt.Errorf("search query cannot be empty")
	}
	if opts.Limit < 0 {
		return fmt.Errorf("limit cannot be negative")
	}
	if opts.Limit > 100 {
		return fmt.Errorf("limit cannot exceed 100 (requested: %d)", opts.Limit)
	}
	if opts.Offset < 0 {
		return fmt.Errorf("offset cannot be negative")
	}

	for _, field := range opts.Fields {
		switch field {
		case SearchFieldTitle, SearchFieldContent, SearchFieldTags:
			// Valid fields
		default:
			return fmt.Errorf("invalid search field: %q (supported: title, content, tags)", field)
		}
	}

	return nil
}

// SearchResult represents a single search result with relevance scoring
type SearchResult struct {
	// Document is the matched document. Content holds a headline excerpt
	// rather than the full body when returned by remote search.
	Document Document `json:"document"`

	// Score represents relevance (higher = better match)
	Score float64 `json:"score"`
}

// SearchResults contains the full search response with pagination metadata
type SearchResults struct {
	// Results is the list of matching documents with scores
	Results []SearchResult `json:"results"`

	// TotalCount is the total number of matches (regardless of limit/offset)
	TotalCount int `json:"total_count"`

	// HasMore indicates if there are more results beyond this page
	HasMore bool `json:"has_more"`

	// Offset is the number of results skipped (from SearchOptions)
	Offset int `json:"offset"`

	// Limit is the maximum number of results requested (from SearchOptions)
	Limit int `json:"limit"`
}

// NewSearchResults creates a SearchResults with calculated HasMore flag
func NewSearchResults(results []SearchResult, totalCount int, opts *SearchOptions) *SearchResults {
	hasMore := (opts.Offset + len(results)) < totalCount

	return &SearchResults{
		Results:    results,
		TotalCount: totalCount,
		HasMore:    hasMore,
		Offset:     opts.Offset,
		Limit:      opts.Limit,
	}
}
