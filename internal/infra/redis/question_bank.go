package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
	"studybuddy-service/internal/app"
	"studybuddy-service/internal/domain"
)

// BankKey holds the JSON-encoded question bank.
const BankKey = "studybuddy:questions"

// QuestionBank caches the question bank in Redis and falls back to a loader on cache miss.
type QuestionBank struct {
	client *redis.Client
	loader app.QuestionBank
	ttl    time.Duration
	sf     singleflight.Group

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionBank(client *redis.Client, loader app.QuestionBank, ttl time.Duration) *QuestionBank {
	return &QuestionBank{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (b *QuestionBank) Questions(ctx context.Context) ([]domain.Question, error) {
	if questions, ok := b.cached(ctx); ok {
		return questions, nil
	}

	result, err, _ := b.sf.Do(BankKey, func() (interface{}, error) {
		// another caller may have filled the cache meanwhile
		if questions, ok := b.cached(ctx); ok {
			return questions, nil
		}

		questions, err := b.loader.Questions(ctx)
		if err != nil {
			return nil, err
		}

		raw, err := json.Marshal(questions)
		if err != nil {
			return nil, err
		}
		if err := b.client.Set(ctx, BankKey, raw, b.ttlWithJitter()).Err(); err != nil {
			log.Printf("cache question bank: %v", err)
		}
		return questions, nil
	})
	if err != nil {
		return nil, err
	}
	return append([]domain.Question(nil), result.([]domain.Question)...), nil
}

func (b *QuestionBank) cached(ctx context.Context) ([]domain.Question, bool) {
	raw, err := b.client.Get(ctx, BankKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Printf("read question bank cache: %v", err)
		}
		return nil, false
	}
	var questions []domain.Question
	if err := json.Unmarshal(raw, &questions); err != nil {
		log.Printf("decode question bank cache: %v", err)
		return nil, false
	}
	return questions, true
}

// Invalidate drops the cached bank so the next read hits the loader.
func (b *QuestionBank) Invalidate(ctx context.Context) error {
	return b.client.Del(ctx, BankKey).Err()
}

func (b *QuestionBank) ttlWithJitter() time.Duration {
	if b.ttl <= 0 {
		return 0
	}
	jitterMax := int64(b.ttl) / 10
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.ttl + time.Duration(b.rnd.Int63n(jitterMax+1))
}
