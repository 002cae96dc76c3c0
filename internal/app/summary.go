package app

import (
	"context"
	"fmt"
	"log"
	"math"
	"strings"
	"time"

	"studybuddy-service/internal/async"
	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/event"
)

// WordsPerMinute is the reading speed used to estimate time saved.
const WordsPerMinute = 200

// SummaryRequest is the summarizer form.
type SummaryRequest struct {
	Title    string               `json:"title"`
	Text     string               `json:"text"`
	Format   domain.SummaryFormat `json:"type"`
	Language string               `json:"language"`
}

// Export is a summary rendered as a downloadable text file.
type Export struct {
	Filename string
	Body     string
}

// SummaryService produces canned summaries after a simulated delay.
type SummaryService struct {
	repo     SummaryRepository
	progress *ProgressService
	events   event.Publisher
	delay    time.Duration
	now      func() time.Time
	newID    func() string

	lifetime context.Context
	shutdown context.CancelFunc
}

func NewSummaryService(repo SummaryRepository, progress *ProgressService, events event.Publisher, delay time.Duration) *SummaryService {
	lifetime, cancel := context.WithCancel(context.Background())
	return &SummaryService{
		repo:     repo,
		progress: progress,
		events:   events,
		delay:    delay,
		now:      time.Now,
		newID:    NewID,
		lifetime: lifetime,
		shutdown: cancel,
	}
}

// Generate validates req and schedules the summary. Cancelling ctx or
// shutting the service down before the delay elapses discards the result.
func (s *SummaryService) Generate(ctx context.Context, userID string, req SummaryRequest) (*async.Future[domain.Summary], error) {
	if strings.TrimSpace(req.Text) == "" {
		return nil, domain.ErrEmptyText
	}
	if req.Format == "" {
		req.Format = domain.FormatBullet
	}
	if !req.Format.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidFormat, req.Format)
	}
	if req.Language == "" {
		req.Language = domain.DefaultLanguage
	}

	workCtx, cancel := context.WithCancel(s.lifetime)
	stop := context.AfterFunc(ctx, cancel)
	return async.After(workCtx, s.delay, func(workCtx context.Context) (domain.Summary, error) {
		defer cancel()
		defer stop()
		return s.store(workCtx, userID, req)
	}), nil
}

func (s *SummaryService) store(ctx context.Context, userID string, req SummaryRequest) (domain.Summary, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		count, err := s.repo.CountSummaries(ctx, userID)
		if err != nil {
			return domain.Summary{}, err
		}
		title = fmt.Sprintf("Summary %d", count+1)
	}
	content := RenderSummary(req.Format, req.Text)
	summary := domain.Summary{
		ID:             s.newID(),
		UserID:         userID,
		Title:          title,
		OriginalLength: WordCount(req.Text),
		SummaryLength:  WordCount(content),
		Language:       req.Language,
		Format:         req.Format,
		Content:        content,
		Timestamp:      s.now(),
	}
	if err := s.repo.CreateSummary(ctx, summary); err != nil {
		return domain.Summary{}, err
	}
	if s.progress != nil {
		if _, err := s.progress.RecordSummary(ctx, userID, summary.Timestamp); err != nil {
			log.Printf("record summary for %s: %v", userID, err)
		}
	}
	if err := s.events.Publish(ctx, event.SummaryCreated, summary); err != nil {
		log.Printf("publish %s: %v", event.SummaryCreated, err)
	}
	return summary, nil
}

// Shutdown discards every pending generation.
func (s *SummaryService) Shutdown() {
	s.shutdown()
}

func (s *SummaryService) Get(ctx context.Context, userID, id string) (domain.Summary, error) {
	return s.repo.GetSummary(ctx, userID, id)
}

// List returns the user's summaries, newest first, and the unpaged total.
func (s *SummaryService) List(ctx context.Context, userID string, filter domain.SummaryFilter) ([]domain.Summary, int, error) {
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.repo.ListSummaries(ctx, userID, filter)
}

func (s *SummaryService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteSummary(ctx, userID, id)
}

// Export renders the summary as "<title>.txt".
func (s *SummaryService) Export(ctx context.Context, userID, id string) (Export, error) {
	summary, err := s.repo.GetSummary(ctx, userID, id)
	if err != nil {
		return Export{}, err
	}
	return ExportSummary(summary), nil
}

// ExportSummary renders summary as a plain text download.
func ExportSummary(summary domain.Summary) Export {
	return Export{Filename: summary.Title + ".txt", Body: summary.Content}
}

// Stats sums word counts over every summary of the user.
func (s *SummaryService) Stats(ctx context.Context, userID string) (domain.SummaryStats, error) {
	all, _, err := s.repo.ListSummaries(ctx, userID, domain.SummaryFilter{})
	if err != nil {
		return domain.SummaryStats{}, err
	}
	stats := domain.SummaryStats{
		TotalSummaries: len(all),
		ByFormat:       make(map[domain.SummaryFormat]int),
	}
	for _, sm := range all {
		stats.TotalWordsProcessed += sm.OriginalLength
		if saved := sm.OriginalLength - sm.SummaryLength; saved > 0 {
			stats.TotalWordsSaved += saved
		}
		stats.ByFormat[sm.Format]++
	}
	stats.TimeSavedMinutes = stats.TotalWordsSaved / WordsPerMinute
	return stats, nil
}

// RenderSummary fills the canned template for format with the start of text.
func RenderSummary(format domain.SummaryFormat, text string) string {
	switch format {
	case domain.FormatParagraph:
		return "This content discusses " + prefix(text, 30) + "... The main themes include fundamental principles, practical applications, and theoretical frameworks. Key insights reveal important connections between concepts and their real-world implications. The material covers essential knowledge areas that form the foundation for advanced understanding."
	case domain.FormatDetailed:
		return "Comprehensive Analysis:\n\nMain Topic: " + prefix(text, 40) + "...\n\nKey Points:\n1. Fundamental concepts and definitions\n2. Core principles and mechanisms\n3. Practical applications and examples\n4. Theoretical implications\n\nConclusion:\nThis material provides essential knowledge for understanding the subject matter and its broader applications in the field."
	default:
		return "• Key concept 1: " + prefix(text, 50) + "...\n• Key concept 2: Advanced principles and applications\n• Key concept 3: Practical implications and examples\n• Key concept 4: Related theories and connections\n• Key concept 5: Future developments and research"
	}
}

// prefix returns the first n characters of s.
func prefix(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// WordCount splits on whitespace.
func WordCount(s string) int {
	return len(strings.Fields(s))
}

// Reduction is the whole-percent size reduction of a summary.
func Reduction(summary domain.Summary) int {
	if summary.OriginalLength == 0 {
		return 0
	}
	return int(math.Round((1 - float64(summary.SummaryLength)/float64(summary.OriginalLength)) * 100))
}
