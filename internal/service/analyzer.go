package service

import (
	"strings"
	"unicode"

	"quill/internal/domain/services"
)

type contentAnalyzer struct{}

// NewContentAnalyzer creates a content analyzer for markdown documents
func NewContentAnalyzer() services.ContentAnalyzer {
	return &contentAnalyzer{}
}

// CountWords counts the words in markdown text. Syntax characters are
// stripped first so markers don't inflate the count.
func (a *contentAnalyzer) CountWords(markdown string) int {
	text := a.CleanMarkdown(markdown)

	words := strings.FieldsFunc(text, unicode.IsSpace)

	count := 0
	for _, word := range words {
		if len(strings.TrimSpace(word)) > 0 {
			count++
		}
	}

	return count
}

// CleanMarkdown strips markdown syntax from text, leaving prose
func (a *contentAnalyzer) CleanMarkdown(markdown string) string {
	text := removeCodeBlocks(markdown)

	// Inline code and emphasis markers
	text = strings.ReplaceAll(text, "`", "")
	text = strings.ReplaceAll(text, "**", "")
	text = strings.ReplaceAll(text, "*", "")
	text = strings.ReplaceAll(text, "__", "")
	text = strings.ReplaceAll(text, "_", "")
	text = strings.ReplaceAll(text, "~~", "")

	// Heading markers
	text = strings.ReplaceAll(text, "#", "")

	// List markers
	lines := strings.Split(text, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "- ") {
			line = strings.TrimPrefix(line, "- ")
		} else if strings.HasPrefix(line, "* ") {
			line = strings.TrimPrefix(line, "* ")
		}
		// Numbered list markers ("1. ", "2. ")
		if len(line) > 2 && unicode.IsDigit(rune(line[0])) && line[1] == '.' {
			line = line[2:]
		}
		cleaned = append(cleaned, line)
	}
	text = strings.Join(cleaned, " ")

	// Blockquotes and horizontal rules
	text = strings.ReplaceAll(text, ">", "")
	text = strings.ReplaceAll(text, "---", "")
	text = strings.ReplaceAll(text, "***", "")

	return text
}

// removeCodeBlocks removes fenced ```...``` blocks
func removeCodeBlocks(text string) string {
	for {
		start := strings.Index(text, "```")
		if start == -1 {
			break
		}
		end := strings.Index(text[start+3:], "```")
		if end == -1 {
			break
		}
		text = text[:start] + text[start+end+6:]
	}
	return text
}
