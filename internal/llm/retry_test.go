package llm

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestCallWithRetrySucceedsAfterTransientFailure(t *testing.T) {
	attempts := 0
	p := DefaultRetryPolicy()
	p.Sleep = func(ctx context.Context, d time.Duration) error { return nil }

	err := CallWithRetry(context.Background(), p, func() error {
		attempts++
		if attempts < 2 {
			return &APIError{StatusCode: http.StatusTooManyRequests}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if attempts != 2 {
		t.Fatalf("got %d attempts, want 2", attempts)
	}
}

func TestCallWithRetryStopsAtMaxRetries(t *testing.T) {
	attempts := 0
	p := DefaultRetryPolicy()
	p.MaxRetries = 2
	p.Sleep = func(ctx context.Context, d time.Duration) error { return nil }

	wantErr := &APIError{StatusCode: 500}
	err := CallWithRetry(context.Background(), p, func() error {
		attempts++
		return wantErr
	})
	if err != error(wantErr) {
		t.Fatalf("got %v, want %v", err, wantErr)
	}
	if attempts != 3 { // initial + 2 retries
		t.Fatalf("got %d attempts, want 3", attempts)
	}
}

func TestCallWithRetryNonRetryableFailsImmediately(t *testing.T) {
	attempts := 0
	p := DefaultRetryPolicy()
	err := CallWithRetry(context.Background(), p, func() error {
		attempts++
		return &APIError{StatusCode: 400}
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if attempts != 1 {
		t.Fatalf("got %d attempts, want 1 (non-retryable status should not retry)", attempts)
	}
}

func TestRetryAfterSecondsForm(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	d, ok := parseRetryAfter("2", now)
	if !ok || d != 2*time.Second {
		t.Fatalf("got %v, ok=%v, want 2s", d, ok)
	}
}

func TestRetryAfterEpochForm(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	future := now.Add(5 * time.Second).Unix()
	d, ok := parseRetryAfter(itoa(future), now)
	if !ok {
		t.Fatal("expected epoch form to parse")
	}
	if d < 4*time.Second || d > 6*time.Second {
		t.Fatalf("got %v, want ~5s", d)
	}
}

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

func TestBackoffDelayExponentialWithCap(t *testing.T) {
	p := RetryPolicy{BaseDelay: 1 * time.Second, MaxDelay: 8 * time.Second, Now: time.Now}
	cases := []struct {
		attempt int
		want    time.Duration
	}{
		{0, 1 * time.Second},
		{1, 2 * time.Second},
		{2, 4 * time.Second},
		{3, 8 * time.Second},
		{4, 8 * time.Second}, // capped
	}
	for _, c := range cases {
		got := p.backoffDelay(c.attempt, errors.New("transport error"))
		if got != c.want {
			t.Errorf("attempt %d: got %v, want %v", c.attempt, got, c.want)
		}
	}
}
