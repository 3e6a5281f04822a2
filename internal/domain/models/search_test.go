package models

import (
	"strings"
	"testing"
)

func TestSearchOptions_ApplyDefaults(t *testing.T) {
	tests := []struct {
		name     string
		input    *SearchOptions
		expected *SearchOptions
	}{
		{
			name:  "applies all defaults",
			input: &SearchOptions{Query: "test"},
			expected: &SearchOptions{
				Query:    "test",
				Fields:   []SearchField{SearchFieldTitle, SearchFieldContent},
				Limit:    20,
				Offset:   0,
				Language: "english",
			},
		},
		{
			name: "preserves custom values",
			input: &SearchOptions{
				Query:    "test",
				Fields:   []SearchField{SearchFieldTags},
				Limit:    50,
				Offset:   10,
				Language: "spanish",
			},
			expected: &SearchOptions{
				Query:    "test",
				Fields:   []SearchField{SearchFieldTags},
				Limit:    50,
				Offset:   10,
				Language: "spanish",
			},
		},
		{
			name:  "corrects zero limit to default",
			input: &SearchOptions{Query: "test", Limit: 0},
			expected: &SearchOptions{
				Query:    "test",
				Fields:   []SearchField{SearchFieldTitle, SearchFieldContent},
				Limit:    20,
				Offset:   0,
				Language: "english",
			},
		},
		{
			name:  "corrects negative offset to default",
			input: &SearchOptions{Query: "test", Offset: -5},
			expected: &SearchOptions{
				Query:    "test",
				Fields:   []SearchField{SearchFieldTitle, SearchFieldContent},
				Limit:    20,
				Offset:   0,
				Language: "english",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.input.ApplyDefaults()

			if tt.input.Limit != tt.expected.Limit {
				t.Errorf("Limit = %d, want %d", tt.input.Limit, tt.expected.Limit)
			}
			if tt.input.Offset != tt.expected.Offset {
				t.Errorf("Offset = %d, want %d", tt.input.Offset, tt.expected.Offset)
			}
			if tt.input.Language != tt.expected.Language {
				t.Errorf("Language = %s, want %s", tt.input.Language, tt.expected.Language)
			}
			if len(tt.input.Fields) != len(tt.expected.Fields) {
				t.Fatalf("Fields = %v, want %v", tt.input.Fields, tt.expected.Fields)
			}
			for i := range tt.input.Fields {
				if tt.input.Fields[i] != tt.expected.Fields[i] {
					t.Errorf("Fields[%d] = %s, want %s", i, tt.input.Fields[i], tt.expected.Fields[i])
				}
			}
		})
	}
}

func TestSearchOptions_Validate(t *testing.T) {
	tests := []struct {
		name    string
		options *SearchOptions
		wantErr bool
		errMsg  string
	}{
		{
			name:    "valid options",
			options: &SearchOptions{Query: "test", Limit: 20},
			wantErr: false,
		},
		{
			name:    "empty query",
			options: &SearchOptions{Query: ""},
			wantErr: true,
			errMsg:  "search query cannot be empty",
		},
		{
			name:    "limit at boundary (100 is valid)",
			options: &SearchOptions{Query: "test", Limit: 100},
			wantErr: false,
		},
		{
			name:    "limit exceeds maximum",
			options: &SearchOptions{Query: "test", Limit: 101},
			wantErr: true,
			errMsg:  "limit cannot exceed 100",
		},
		{
			name:    "negative offset",
			options: &SearchOptions{Query: "test", Offset: -1},
			wantErr: true,
			errMsg:  "offset cannot be negative",
		},
		{
			name:    "unknown field",
			options: &SearchOptions{Query: "test", Fields: []SearchField{"body"}},
			wantErr: true,
			errMsg:  "invalid search field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.options.Validate()

			if tt.wantErr {
				if err == nil {
					t.Fatal("Validate() = nil, want error")
				}
				if !strings.Contains(err.Error(), tt.errMsg) {
					t.Errorf("Validate() error = %q, want substring %q", err, tt.errMsg)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestNewSearchResults_HasMore(t *testing.T) {
	results := []SearchResult{{Score: 1}, {Score: 0.5}}

	tests := []struct {
		name       string
		totalCount int
		offset     int
		wantMore   bool
	}{
		{"more pages remain", 10, 0, true},
		{"last page", 2, 0, false},
		{"offset reaches end", 4, 2, false},
		{"offset mid-collection", 5, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewSearchResults(results, tt.totalCount, &SearchOptions{Limit: 2, Offset: tt.offset})
			if got.HasMore != tt.wantMore {
				t.Errorf("HasMore = %v, want %v", got.HasMore, tt.wantMore)
			}
			if got.TotalCount != tt.totalCount {
				t.Errorf("TotalCount = %d, want %d", got.TotalCount, tt.totalCount)
			}
		})
	}
}
