package rates

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"plata/internal/core"
	"plata/internal/storage"
)

func newTestService(t *testing.T, ttl time.Duration) *Service {
	t.Helper()
	store, err := storage.Open(filepath.Join(t.TempDir(), "rates.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return New(store, ttl)
}

func TestService_Latest(t *testing.T) {
	svc := newTestService(t, time.Minute)
	ctx := context.Background()

	t.Run("same currency is identity", func(t *testing.T) {
		rate, err := svc.Latest(ctx, "cop", "COP")
		if err != nil {
			t.Fatalf("Latest() error: %v", err)
		}
		if !rate.Rate.Equal(decimal.NewFromInt(1)) {
			t.Errorf("rate = %s, want 1", rate.Rate)
		}
	})

	t.Run("unknown currency rejected", func(t *testing.T) {
		if _, err := svc.Latest(ctx, "ZZZ", "COP"); !errors.Is(err, core.ErrInvalidCurrency) {
			t.Errorf("Latest() error = %v, want ErrInvalidCurrency", err)
		}
	})

	t.Run("missing rate", func(t *testing.T) {
		if _, err := svc.Latest(ctx, "USD", "COP"); !errors.Is(err, core.ErrRateNotFound) {
			t.Errorf("Latest() error = %v, want ErrRateNotFound", err)
		}
	})

	t.Run("newest imported rate wins", func(t *testing.T) {
		old := decimal.RequireFromString("3900")
		current := decimal.RequireFromString("4100.50")
		if _, err := svc.Import(ctx, "USD", "COP", old, time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("Import() error: %v", err)
		}
		if _, err := svc.Import(ctx, "USD", "COP", current, time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("Import() error: %v", err)
		}

		rate, err := svc.Latest(ctx, "USD", "COP")
		if err != nil {
			t.Fatalf("Latest() error: %v", err)
		}
		if !rate.Rate.Equal(current) {
			t.Errorf("rate = %s, want %s", rate.Rate, current)
		}
	})

	t.Run("import expires the cache", func(t *testing.T) {
		// Prime the cache, then import a newer rate; the next lookup must
		// see the new value immediately.
		if _, err := svc.Latest(ctx, "USD", "COP"); err != nil {
			t.Fatalf("Latest() error: %v", err)
		}
		newer := decimal.RequireFromString("4200")
		if _, err := svc.Import(ctx, "USD", "COP", newer, time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)); err != nil {
			t.Fatalf("Import() error: %v", err)
		}
		rate, err := svc.Latest(ctx, "USD", "COP")
		if err != nil {
			t.Fatalf("Latest() error: %v", err)
		}
		if !rate.Rate.Equal(newer) {
			t.Errorf("rate = %s, want %s (stale cache served)", rate.Rate, newer)
		}
	})

	t.Run("non-positive rate rejected", func(t *testing.T) {
		for _, bad := range []string{"0", "-1"} {
			if _, err := svc.Import(ctx, "USD", "COP", decimal.RequireFromString(bad), time.Time{}); !errors.Is(err, core.ErrInvalidAmount) {
				t.Errorf("Import(%s) error = %v, want ErrInvalidAmount", bad, err)
			}
		}
	})
}

func TestService_Convert(t *testing.T) {
	svc := newTestService(t, time.Minute)
	ctx := context.Background()

	rate := decimal.RequireFromString("4000")
	if _, err := svc.Import(ctx, "USD", "COP", rate, time.Time{}); err != nil {
		t.Fatalf("Import() error: %v", err)
	}

	// 12.50 USD * 4000 = 50000.00 COP
	got, err := svc.Convert(ctx, core.Money{Cents: 1250}, "USD", "COP")
	if err != nil {
		t.Fatalf("Convert() error: %v", err)
	}
	if got.Cents != 5000000 {
		t.Errorf("Convert() = %d cents, want 5000000", got.Cents)
	}
}

func TestRateCache(t *testing.T) {
	cache := newRateCache(30 * time.Millisecond)
	rate := core.ExchangeRate{CurrencyFrom: "USD", CurrencyTo: "COP", Rate: decimal.NewFromInt(4000)}

	if _, ok := cache.get("USD/COP"); ok {
		t.Fatal("empty cache returned a hit")
	}

	cache.set("USD/COP", rate)
	if got, ok := cache.get("USD/COP"); !ok || !got.Rate.Equal(rate.Rate) {
		t.Fatalf("get() = %v, %v", got, ok)
	}
	if cache.size() != 1 {
		t.Errorf("size = %d, want 1", cache.size())
	}

	t.Run("entries expire after the TTL", func(t *testing.T) {
		time.Sleep(50 * time.Millisecond)
		if _, ok := cache.get("USD/COP"); ok {
			t.Error("expired entry served")
		}
	})

	t.Run("expire drops everything", func(t *testing.T) {
		cache.set("USD/COP", rate)
		cache.set("EUR/COP", rate)
		cache.expire()
		if cache.size() != 0 {
			t.Errorf("size after expire = %d, want 0", cache.size())
		}
	})
}
