package domain

import "time"

// SummaryFormat selects the summary template.
type SummaryFormat string

const (
	FormatBullet    SummaryFormat = "bullet"
	FormatParagraph SummaryFormat = "paragraph"
	FormatDetailed  SummaryFormat = "detailed"
)

// Valid reports whether f is a known format.
func (f SummaryFormat) Valid() bool {
	switch f {
	case FormatBullet, FormatParagraph, FormatDetailed:
		return true
	}
	return false
}

// DefaultLanguage is used when a summary request omits the language.
const DefaultLanguage = "english"

// Summary is created once per generation and never mutated.
type Summary struct {
	ID             string        `json:"id"`
	UserID         string        `json:"userId"`
	Title          string        `json:"title"`
	OriginalLength int           `json:"originalLength"`
	SummaryLength  int           `json:"summaryLength"`
	Language       string        `json:"language"`
	Format         SummaryFormat `json:"type"`
	Content        string        `json:"content"`
	Timestamp      time.Time     `json:"timestamp"`
}

// SummaryFilter narrows summary listings.
type SummaryFilter struct {
	Format   SummaryFormat
	Language string
	Limit    int
	Offset   int
}

// SummaryStats summarizes a user's summaries.
type SummaryStats struct {
	TotalSummaries      int                   `json:"totalSummaries"`
	TotalWordsProcessed int                   `json:"totalWordsProcessed"`
	TotalWordsSaved     int                   `json:"totalWordsSaved"`
	TimeSavedMinutes    int                   `json:"timeSavedMinutes"`
	ByFormat            map[SummaryFormat]int `json:"summariesByType"`
}
