package providers

import (
	"context"
	"testing"
	"time"
)

func TestNewRateLimiter_KnownProvider(t *testing.T) {
	rl := NewRateLimiter(NameTMDB)
	if rl == nil {
		t.Fatal("expected a limiter")
	}
	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("first wait should not block or fail: %v", err)
	}
}

func TestNewRateLimiter_UnknownProviderFallsBack(t *testing.T) {
	rl := NewRateLimiter("no-such-provider")
	if rl == nil {
		t.Fatal("expected a fallback limiter")
	}
	if err := rl.Wait(context.Background()); err != nil {
		t.Errorf("wait failed: %v", err)
	}
}

func TestRateLimiter_Burst(t *testing.T) {
	rl := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 3})
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		if err := rl.Wait(ctx); err != nil {
			t.Fatalf("wait %d failed: %v", i, err)
		}
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Errorf("burst of 3 took %v, should be nearly instant", elapsed)
	}
}

func TestRateLimiter_RecordRateLimited(t *testing.T) {
	rl := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 5})
	rl.RecordRateLimited(30)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Error("wait during backoff should respect the context deadline")
	}
}

func TestRateLimiter_RecordRateLimitedDefault(t *testing.T) {
	rl := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 100, BurstSize: 5})
	rl.RecordRateLimited(0)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Error("zero retry-after should still apply a default backoff")
	}
}

func TestRateLimiter_WaitCancelled(t *testing.T) {
	rl := NewRateLimiterWithConfig(RateLimitConfig{RequestsPerSecond: 0.001, BurstSize: 1})
	ctx := context.Background()
	if err := rl.Wait(ctx); err != nil {
		t.Fatalf("first wait failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := rl.Wait(ctx); err == nil {
		t.Error("exhausted bucket should fail once the context expires")
	}
}
