package oauth2

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"iot-connector/internal/common/errors"
)

// fakeSource counts exchanges and optionally delays them to widen races
type fakeSource struct {
	calls int32
	delay time.Duration
	err   error
}

func (f *fakeSource) FetchToken(ctx context.Context, environment string) (*TokenResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &TokenResponse{AccessToken: "tok", TokenType: "Bearer", ExpiresIn: 3600}, nil
}

func TestCache_TokenReuse(t *testing.T) {
	source := &fakeSource{}
	cache := NewCache(source)

	first, err := cache.GetToken(context.Background(), "dev")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	second, err := cache.GetToken(context.Background(), "dev")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if atomic.LoadInt32(&source.calls) != 1 {
		t.Errorf("expected exactly 1 exchange, got %d", source.calls)
	}
	if first != second {
		t.Error("expected the same cached token instance")
	}
}

func TestCache_RefreshesInsideExpiryMargin(t *testing.T) {
	source := &fakeSource{}
	now := time.Now()
	clock := &now
	var mu sync.Mutex

	cache := NewCache(source,
		WithExpiryMargin(60*time.Second),
		WithClock(func() time.Time {
			mu.Lock()
			defer mu.Unlock()
			return *clock
		}),
	)

	if _, err := cache.GetToken(context.Background(), "dev"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	// Advance to within the margin of expiry (3600s lifetime, 60s margin)
	mu.Lock()
	later := now.Add(3570 * time.Second)
	clock = &later
	mu.Unlock()

	if _, err := cache.GetToken(context.Background(), "dev"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if atomic.LoadInt32(&source.calls) != 2 {
		t.Errorf("expected refresh inside the margin, got %d exchanges", source.calls)
	}
}

func TestCache_ThunderingHerd(t *testing.T) {
	source := &fakeSource{delay: 50 * time.Millisecond}
	cache := NewCache(source)

	const n = 20
	var wg sync.WaitGroup
	wg.Add(n)

	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := cache.GetToken(context.Background(), "dev"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if got := atomic.LoadInt32(&source.calls); got != 1 {
		t.Errorf("expected exactly 1 exchange for %d concurrent callers, got %d", n, got)
	}
}

func TestCache_PerEnvironmentTokens(t *testing.T) {
	source := &fakeSource{}
	cache := NewCache(source)

	if _, err := cache.GetToken(context.Background(), "dev"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if _, err := cache.GetToken(context.Background(), "prod"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if atomic.LoadInt32(&source.calls) != 2 {
		t.Errorf("expected one exchange per environment, got %d", source.calls)
	}
}

func TestCache_Invalidate(t *testing.T) {
	source := &fakeSource{}
	cache := NewCache(source)

	if _, err := cache.GetToken(context.Background(), "dev"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	cache.Invalidate("dev")

	if _, err := cache.GetToken(context.Background(), "dev"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if atomic.LoadInt32(&source.calls) != 2 {
		t.Errorf("expected re-authentication after invalidate, got %d exchanges", source.calls)
	}
}

func TestCache_FetchErrorPropagates(t *testing.T) {
	source := &fakeSource{err: errors.AuthError("token endpoint returned status 500")}
	cache := NewCache(source)

	_, err := cache.GetToken(context.Background(), "dev")
	if !errors.IsType(err, errors.ErrTypeAuth) {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestToken_ValidAt(t *testing.T) {
	now := time.Now()
	token := &Token{Value: "tok", ExpiresAt: now.Add(time.Hour)}

	tests := []struct {
		name   string
		token  *Token
		at     time.Time
		margin time.Duration
		want   bool
	}{
		{"fresh token", token, now, time.Minute, true},
		{"inside margin", token, now.Add(59*time.Minute + 30*time.Second), time.Minute, false},
		{"expired", token, now.Add(2 * time.Hour), time.Minute, false},
		{"nil token", nil, now, time.Minute, false},
		{"empty value", &Token{ExpiresAt: now.Add(time.Hour)}, now, time.Minute, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.token.ValidAt(tt.at, tt.margin); got != tt.want {
				t.Errorf("ValidAt() = %v, want %v", got, tt.want)
			}
		})
	}
}
