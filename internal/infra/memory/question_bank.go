package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
	"studybuddy-service/internal/app"
	"studybuddy-service/internal/domain"
)

// StaticQuestionBank serves a fixed question list (useful for tests/demos).
type StaticQuestionBank struct {
	questions []domain.Question
}

func NewStaticQuestionBank(questions []domain.Question) *StaticQuestionBank {
	return &StaticQuestionBank{questions: questions}
}

func (b *StaticQuestionBank) Questions(_ context.Context) ([]domain.Question, error) {
	return append([]domain.Question(nil), b.questions...), nil
}

const bankKey = "bank"

// CachedQuestionBank keeps the loaded bank for a TTL to avoid repeated DB hits.
type CachedQuestionBank struct {
	loader app.QuestionBank
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	questions []domain.Question
	expiresAt time.Time
}

func NewCachedQuestionBank(loader app.QuestionBank, ttl time.Duration) *CachedQuestionBank {
	return &CachedQuestionBank{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *CachedQuestionBank) Questions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := b.cached(b.clock()); ok {
		return questions, nil
	}

	result, err, _ := b.sf.Do(bankKey, func() (interface{}, error) {
		now := b.clock()
		if questions, ok := b.cached(now); ok {
			return questions, nil
		}

		questions, err := b.loader.Questions(ctx)
		if err != nil {
			return nil, err
		}

		ttl := b.ttlWithJitter()
		b.mu.Lock()
		b.questions = questions
		b.expiresAt = now.Add(ttl)
		b.mu.Unlock()
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

func (b *CachedQuestionBank) cached(now time.Time) ([]domain.Question, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.questions == nil || !b.expiresAt.After(now) {
		return nil, false
	}
	return append([]domain.Question(nil), b.questions...), true
}

// ttlWithJitter only runs inside the singleflight call, which serializes rnd.
func (b *CachedQuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	// up to 10% jitter spreads expirations across instances
	jitterMax := int64(b.ttl) / 10
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
