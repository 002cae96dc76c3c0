package app

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/event"
)

// XPPerLevel is the experience needed to gain one level.
const XPPerLevel = 500

// ProgressService maintains streaks, averages, XP and achievement awards.
type ProgressService struct {
	repo   ProgressRepository
	events event.Publisher

	// serializes read-modify-write of progress rows within this process
	mu sync.Mutex
}

func NewProgressService(repo ProgressRepository, events event.Publisher) *ProgressService {
	return &ProgressService{repo: repo, events: events}
}

// Progress returns the user's progress, or a fresh level 1 record.
func (s *ProgressService) Progress(ctx context.Context, userID string) (domain.UserProgress, error) {
	p, ok, err := s.repo.GetProgress(ctx, userID)
	if err != nil {
		return domain.UserProgress{}, err
	}
	if !ok {
		return newProgress(userID), nil
	}
	return p, nil
}

// Achievements lists what the user has earned.
func (s *ProgressService) Achievements(ctx context.Context, userID string) ([]domain.UserAchievement, error) {
	return s.repo.UserAchievements(ctx, userID)
}

// RecordQuiz folds a quiz score (whole percent) into the running average.
func (s *ProgressService) RecordQuiz(ctx context.Context, userID string, score int, at time.Time) (domain.UserProgress, error) {
	return s.update(ctx, userID, at, func(p *domain.UserProgress) {
		total := p.AverageScore*float64(p.QuizzesCompleted) + float64(score)
		p.QuizzesCompleted++
		p.AverageScore = math.Round(total/float64(p.QuizzesCompleted)*100) / 100
		p.LastScore = score
	})
}

// RecordStudy adds completed study minutes.
func (s *ProgressService) RecordStudy(ctx context.Context, userID string, minutes int, at time.Time) (domain.UserProgress, error) {
	return s.update(ctx, userID, at, func(p *domain.UserProgress) {
		if minutes > 0 {
			p.TotalHours += float64(minutes) / 60
		}
	})
}

// RecordSummary counts a created summary.
func (s *ProgressService) RecordSummary(ctx context.Context, userID string, at time.Time) (domain.UserProgress, error) {
	return s.update(ctx, userID, at, func(p *domain.UserProgress) {
		p.SummariesCreated++
	})
}

func (s *ProgressService) update(ctx context.Context, userID string, at time.Time, mutate func(*domain.UserProgress)) (domain.UserProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, err := s.Progress(ctx, userID)
	if err != nil {
		return domain.UserProgress{}, err
	}
	mutate(&p)
	TouchStreak(&p, at)

	defs, err := s.repo.Achievements(ctx)
	if err != nil {
		return domain.UserProgress{}, fmt.Errorf("load achievements: %w", err)
	}
	for _, def := range defs {
		cond, err := ParseCondition(def.Condition)
		if err != nil {
			log.Printf("skip achievement %q: %v", def.Name, err)
			continue
		}
		if !cond.Met(p, at) {
			continue
		}
		award := domain.UserAchievement{UserID: userID, Achievement: def.Name, EarnedAt: at}
		awarded, err := s.repo.AwardAchievement(ctx, award)
		if err != nil {
			return domain.UserProgress{}, err
		}
		if !awarded {
			continue
		}
		p.XP += def.XPReward
		if err := s.events.Publish(ctx, event.AchievementEarned, award); err != nil {
			log.Printf("publish %s: %v", event.AchievementEarned, err)
		}
	}
	p.Level = 1 + p.XP/XPPerLevel

	if err := s.repo.SaveProgress(ctx, p); err != nil {
		return domain.UserProgress{}, err
	}
	return p, nil
}

func newProgress(userID string) domain.UserProgress {
	return domain.UserProgress{UserID: userID, Level: 1}
}

// TouchStreak registers activity at at. Activity on the same calendar day
// keeps the streak, the following day extends it, anything else restarts it.
func TouchStreak(p *domain.UserProgress, at time.Time) {
	if p.LastActiveDate.IsZero() {
		p.StudyStreak = 1
		p.LastActiveDate = at
		return
	}
	last := dayOf(p.LastActiveDate.In(at.Location()))
	today := dayOf(at)
	switch {
	case today.Equal(last):
		if p.StudyStreak == 0 {
			p.StudyStreak = 1
		}
	case today.Equal(last.AddDate(0, 0, 1)):
		p.StudyStreak++
	case today.After(last):
		p.StudyStreak = 1
	default:
		// out-of-order activity never moves the streak backwards
		return
	}
	p.LastActiveDate = at
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// Condition is the decoded achievement rule.
type Condition struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`
}

// ParseCondition decodes rules such as {"type": "quizzes", "value": 20}.
func ParseCondition(raw string) (Condition, error) {
	var c Condition
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Condition{}, fmt.Errorf("parse condition: %w", err)
	}
	return c, nil
}

// Met evaluates the rule against progress after activity at at.
func (c Condition) Met(p domain.UserProgress, at time.Time) bool {
	switch c.Type {
	case "time":
		var clock string
		if err := json.Unmarshal(c.Value, &clock); err != nil {
			return false
		}
		mark, err := time.Parse("15:04", clock)
		if err != nil {
			return false
		}
		minutes := at.Hour()*60 + at.Minute()
		threshold := mark.Hour()*60 + mark.Minute()
		// evening marks reward late activity, morning marks early activity
		if threshold >= 12*60 {
			return minutes >= threshold
		}
		return minutes < threshold
	}

	var n float64
	if err := json.Unmarshal(c.Value, &n); err != nil {
		return false
	}
	switch c.Type {
	case "streak":
		return float64(p.StudyStreak) >= n
	case "quizzes":
		return float64(p.QuizzesCompleted) >= n
	case "summaries":
		return float64(p.SummariesCreated) >= n
	case "quiz_score":
		return p.QuizzesCompleted > 0 && float64(p.LastScore) >= n
	}
	return false
}
