package services

// ContentAnalyzer derives metadata from document content
type ContentAnalyzer interface {
	// CountWords counts the words in markdown text, ignoring syntax
	CountWords(markdown string) int

	// CleanMarkdown strips markdown syntax, leaving prose
	CleanMarkdown(markdown string) string
}
