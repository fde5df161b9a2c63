package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"quizmaker-service/internal/domain"
)

// QuizLoader fetches a quiz by join code from the backing store.
type QuizLoader interface {
	GetQuizByJoinCode(ctx context.Context, code string) (domain.Quiz, error)
}

// QuizCache caches join-code lookups with TTL to avoid repeated store hits.
type QuizCache struct {
	loader QuizLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex

	mu    sync.RWMutex
	cache map[string]cachedQuiz
	// gen is bumped by Invalidate; a load started under an older
	// generation must not write back.
	gen map[string]uint64
}

type cachedQuiz struct {
	quiz      domain.Quiz
	expiresAt time.Time
}

func NewQuizCache(loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedQuiz),
		gen:    make(map[string]uint64),
	}
}

func (c *QuizCache) GetQuizByJoinCode(ctx context.Context, code string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(code); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(code, func() (interface{}, error) {
		if quiz, ok := c.lookup(code); ok {
			return quiz, nil
		}

		c.mu.RLock()
		startGen := c.gen[code]
		c.mu.RUnlock()

		quiz, err := c.loader.GetQuizByJoinCode(ctx, code)
		if err != nil {
			return domain.Quiz{}, err
		}

		if ttl := c.ttlWithJitter(); ttl > 0 {
			c.mu.Lock()
			if c.gen[code] == startGen {
				c.cache[code] = cachedQuiz{
					quiz:      cloneQuiz(quiz),
					expiresAt: c.clock().Add(ttl),
				}
			}
			c.mu.Unlock()
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return cloneQuiz(result.(domain.Quiz)), nil
}

// Invalidate drops the cached entry for code and fences off loads that
// were already in flight.
func (c *QuizCache) Invalidate(_ context.Context, code string) error {
	c.mu.Lock()
	delete(c.cache, code)
	c.gen[code]++
	c.mu.Unlock()
	c.sf.Forget(code)
	return nil
}

func (c *QuizCache) lookup(code string) (domain.Quiz, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.cache[code]
	if !ok || !entry.expiresAt.After(c.clock()) {
		return domain.Quiz{}, false
	}
	return cloneQuiz(entry.quiz), true
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
