package memory

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"quizmaker-service/internal/domain"
)

func TestQuizCacheCaches(t *testing.T) {
	loader := &countingLoader{QuizLoader: seededStore(t)}
	cache := NewQuizCache(loader, time.Minute)

	if _, err := cache.GetQuizByJoinCode(context.Background(), "ABC123"); err != nil {
		t.Fatalf("get quiz: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected loader once, got %d", loader.calls.Load())
	}

	if _, err := cache.GetQuizByJoinCode(context.Background(), "ABC123"); err != nil {
		t.Fatalf("get quiz 2: %v", err)
	}
	if loader.calls.Load() != 1 {
		t.Fatalf("expected cache hit, loader calls %d", loader.calls.Load())
	}
}

func TestQuizCacheInvalidate(t *testing.T) {
	loader := &countingLoader{QuizLoader: seededStore(t)}
	cache := NewQuizCache(loader, time.Minute)
	ctx := context.Background()

	_, _ = cache.GetQuizByJoinCode(ctx, "ABC123")
	if err := cache.Invalidate(ctx, "ABC123"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	_, _ = cache.GetQuizByJoinCode(ctx, "ABC123")
	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after invalidate, loader calls %d", loader.calls.Load())
	}
}

func TestQuizCacheExpires(t *testing.T) {
	loader := &countingLoader{QuizLoader: seededStore(t)}
	cache := NewQuizCache(loader, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cache.clock = func() time.Time { return now }
	ctx := context.Background()

	_, _ = cache.GetQuizByJoinCode(ctx, "ABC123")
	now = now.Add(2 * time.Minute)
	_, _ = cache.GetQuizByJoinCode(ctx, "ABC123")
	if loader.calls.Load() != 2 {
		t.Fatalf("expected reload after expiry, loader calls %d", loader.calls.Load())
	}
}

func TestQuizCacheDoesNotCacheMisses(t *testing.T) {
	loader := &countingLoader{QuizLoader: NewQuizStore()}
	cache := NewQuizCache(loader, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := cache.GetQuizByJoinCode(ctx, "NOPE00")
		if !errors.Is(err, domain.ErrQuizNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	}
	if loader.calls.Load() != 2 {
		t.Fatalf("expected misses to reach the loader, calls %d", loader.calls.Load())
	}
}

func TestQuizCacheConcurrentReaders(t *testing.T) {
	loader := &countingLoader{QuizLoader: seededStore(t)}
	cache := NewQuizCache(loader, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := cache.GetQuizByJoinCode(context.Background(), "ABC123"); err != nil {
				t.Errorf("get quiz: %v", err)
			}
		}()
	}
	wg.Wait()

	if loader.calls.Load() > 20 {
		t.Fatalf("unexpected loader calls %d", loader.calls.Load())
	}
}

func TestQuizCacheInvalidateDuringLoad(t *testing.T) {
	store := seededStore(t)
	loader := newBlockingLoader(store)
	cache := NewQuizCache(loader, time.Minute)
	ctx := context.Background()

	done := make(chan error, 1)
	go func() {
		_, err := cache.GetQuizByJoinCode(ctx, "ABC123")
		done <- err
	}()

	<-loader.loaded
	if err := store.DeleteQuiz(ctx, "quiz-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := cache.Invalidate(ctx, "ABC123"); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	close(loader.release)
	if err := <-done; err != nil {
		t.Fatalf("in-flight get: %v", err)
	}

	quiz, err := cache.GetQuizByJoinCode(ctx, "ABC123")
	if !errors.Is(err, domain.ErrQuizNotFound) {
		t.Fatalf("deleted quiz served from cache: quiz=%q err=%v", quiz.ID, err)
	}
}

// blockingLoader holds its first load after reading from the store until
// release is closed.
type blockingLoader struct {
	QuizLoader
	once    sync.Once
	loaded  chan struct{}
	release chan struct{}
}

func newBlockingLoader(inner QuizLoader) *blockingLoader {
	return &blockingLoader{QuizLoader: inner, loaded: make(chan struct{}), release: make(chan struct{})}
}

func (l *blockingLoader) GetQuizByJoinCode(ctx context.Context, code string) (domain.Quiz, error) {
	quiz, err := l.QuizLoader.GetQuizByJoinCode(ctx, code)
	l.once.Do(func() {
		close(l.loaded)
		<-l.release
	})
	return quiz, err
}

type countingLoader struct {
	QuizLoader
	calls atomic.Int32
}

func (l *countingLoader) GetQuizByJoinCode(ctx context.Context, code string) (domain.Quiz, error) {
	l.calls.Add(1)
	return l.QuizLoader.GetQuizByJoinCode(ctx, code)
}

func seededStore(t *testing.T) *QuizStore {
	t.Helper()
	store := NewQuizStore()
	if err := store.CreateQuiz(context.Background(), sampleQuiz("quiz-1", "ABC123", "owner")); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return store
}
