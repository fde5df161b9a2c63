package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"quizmaker-service/internal/domain"
)

// QuizLoader fetches a quiz by join code from the backing store.
type QuizLoader interface {
	GetQuizByJoinCode(ctx context.Context, code string) (domain.Quiz, error)
}

// generation keys only need to outlive a single load
const genTTL = 24 * time.Hour

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

var errStaleLoad = errors.New("cache invalidated during load")

// QuizCache caches join-code lookups in Redis and falls back to a loader on cache miss.
// Quizzes are stored as JSON: SET quiz:code:{code} {quiz} EX ttl
// Invalidate bumps quiz:code:{code}:gen; a load only writes back when the
// generation it started under is still current.
type QuizCache struct {
	client *redis.Client
	loader QuizLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	rndMu  sync.Mutex
}

func NewQuizCache(client *redis.Client, loader QuizLoader, ttl time.Duration) *QuizCache {
	return &QuizCache{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

func (c *QuizCache) GetQuizByJoinCode(ctx context.Context, code string) (domain.Quiz, error) {
	if quiz, ok := c.lookup(ctx, code); ok {
		return quiz, nil
	}

	result, err, _ := c.sf.Do(code, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if quiz, ok := c.lookup(ctx, code); ok {
			return quiz, nil
		}

		startGen, genErr := c.generation(ctx, c.client, code)

		quiz, err := c.loader.GetQuizByJoinCode(ctx, code)
		if err != nil {
			return domain.Quiz{}, err
		}

		if genErr == nil {
			_ = c.store(ctx, code, quiz, startGen)
		}
		return quiz, nil
	})
	if err != nil {
		return domain.Quiz{}, err
	}
	return result.(domain.Quiz), nil
}

// Invalidate deletes the cached entry for code and fences off in-flight loads.
func (c *QuizCache) Invalidate(ctx context.Context, code string) error {
	_, err := c.client.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, c.genKey(code))
		p.Expire(ctx, c.genKey(code), genTTL)
		p.Del(ctx, c.key(code))
		return nil
	})
	c.sf.Forget(code)
	if err != nil {
		return fmt.Errorf("invalidate quiz %s: %w", code, err)
	}
	return nil
}

// store writes the quiz unless the generation moved since startGen.
func (c *QuizCache) store(ctx context.Context, code string, quiz domain.Quiz, startGen int64) error {
	ttl := c.ttlWithJitter()
	if ttl <= 0 {
		return nil
	}
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	return c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := c.generation(ctx, tx, code)
		if err != nil {
			return err
		}
		if current != startGen {
			return errStaleLoad
		}
		_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
			p.Set(ctx, c.key(code), data, ttl)
			return nil
		})
		return err
	}, c.genKey(code))
}

func (c *QuizCache) generation(ctx context.Context, r getter, code string) (int64, error) {
	n, err := r.Get(ctx, c.genKey(code)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}

// lookup treats every Redis failure as a miss; the loader stays authoritative.
func (c *QuizCache) lookup(ctx context.Context, code string) (domain.Quiz, bool) {
	data, err := c.client.Get(ctx, c.key(code)).Bytes()
	if err != nil {
		// redis.Nil or a transport error
		return domain.Quiz{}, false
	}
	var quiz domain.Quiz
	if err := json.Unmarshal(data, &quiz); err != nil {
		return domain.Quiz{}, false
	}
	return quiz, true
}

func (c *QuizCache) key(code string) string {
	return "quiz:code:" + code
}

func (c *QuizCache) genKey(code string) string {
	return "quiz:code:" + code + ":gen"
}

func (c *QuizCache) ttlWithJitter() time.Duration {
	if c.ttl <= 0 {
		return 0
	}
	jitterMax := int64(c.ttl) / 10
	c.rndMu.Lock()
	defer c.rndMu.Unlock()
	return c.ttl + time.Duration(c.rnd.Int63n(jitterMax+1))
}
