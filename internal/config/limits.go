package config

const (
	// MaxTitleLength is the maximum length for document titles.
	// Limited to 255 to fit in PostgreSQL VARCHAR(255) and provide
	// reasonable UX (titles should be short and descriptive).
	MaxTitleLength = 255

	// MaxFolderNameLength is the maximum length for folder names.
	// Same as document titles for consistency.
	MaxFolderNameLength = 255

	// MaxSeriesNameLength is the maximum length for series names
	MaxSeriesNameLength = 255

	// MaxTagLength is the maximum length of a single tag
	MaxTagLength = 64

	// MaxTagsPerDocument bounds the tag set on one document
	MaxTagsPerDocument = 32

	// DefaultMaxVersionsPerDocument is how many version snapshots are kept
	// per document before old ones are pruned.
	DefaultMaxVersionsPerDocument = 100
)
