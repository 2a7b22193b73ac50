package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/samalsubrat/mk-price-tracker/internal/domain"
)

func TestMemoryCache_SetAndGet(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	tests := []struct {
		name  string
		key   string
		value []byte
		ttl   time.Duration
	}{
		{
			name:  "store and retrieve snapshot",
			key:   "catalog:groups",
			value: []byte(`[{"groupKey":"aulaf75","baseName":"Aula F75"}]`),
			ttl:   1 * time.Minute,
		},
		{
			name:  "store empty value",
			key:   "empty",
			value: []byte{},
			ttl:   1 * time.Minute,
		},
		{
			name:  "store with short TTL",
			key:   "expires-soon",
			value: []byte("stale"),
			ttl:   1 * time.Millisecond,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := cache.Set(ctx, tt.key, tt.value, tt.ttl); err != nil {
				t.Fatalf("Set() error = %v", err)
			}

			// For short TTL test, wait for expiration
			if tt.ttl < 10*time.Millisecond {
				time.Sleep(10 * time.Millisecond)
				if _, err := cache.Get(ctx, tt.key); !errors.Is(err, domain.ErrCacheMiss) {
					t.Errorf("Expected cache miss after expiration, got error = %v", err)
				}
				return
			}

			got, err := cache.Get(ctx, tt.key)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if string(got) != string(tt.value) {
				t.Errorf("Get() = %q, want %q", got, tt.value)
			}
		})
	}
}

func TestMemoryCache_ValuesAreCopied(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	value := []byte("original")
	if err := cache.Set(ctx, "k", value, time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	value[0] = 'X'

	got, _ := cache.Get(ctx, "k")
	if string(got) != "original" {
		t.Errorf("Get() = %q after caller mutation, want %q", got, "original")
	}

	got[0] = 'Y'
	again, _ := cache.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("Get() = %q after result mutation, want %q", again, "original")
	}
}

func TestMemoryCache_Get_CacheMiss(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()

	_, err := cache.Get(context.Background(), "non-existent-key")
	if !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_Delete(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	key := "delete-test"
	if err := cache.Set(ctx, key, []byte("value"), 1*time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() error = %v", err)
	}

	if _, err := cache.Get(ctx, key); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after delete error = %v, want %v", err, domain.ErrCacheMiss)
	}

	// Deleting a missing key is not an error
	if err := cache.Delete(ctx, key); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}

func TestMemoryCache_Exists(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	tests := []struct {
		name string
		set  bool
		ttl  time.Duration
		want bool
	}{
		{name: "missing key", set: false, want: false},
		{name: "live key", set: true, ttl: time.Minute, want: true},
		{name: "expired key", set: true, ttl: time.Millisecond, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := "exists:" + tt.name
			if tt.set {
				if err := cache.Set(ctx, key, []byte("v"), tt.ttl); err != nil {
					t.Fatalf("Set() error = %v", err)
				}
			}
			if tt.ttl > 0 && tt.ttl < 10*time.Millisecond {
				time.Sleep(10 * time.Millisecond)
			}

			exists, err := cache.Exists(ctx, key)
			if err != nil {
				t.Fatalf("Exists() error = %v", err)
			}
			if exists != tt.want {
				t.Errorf("Exists() = %v, want %v", exists, tt.want)
			}
		})
	}
}

func TestMemoryCache_SizeAndClear(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 for empty cache", size)
	}

	for i := 0; i < 5; i++ {
		if err := cache.Set(ctx, fmt.Sprintf("key-%d", i), []byte{byte(i)}, time.Minute); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if size := cache.Size(); size != 5 {
		t.Errorf("Size() = %d, want 5", size)
	}

	cache.Clear()
	if size := cache.Size(); size != 0 {
		t.Errorf("Size() = %d, want 0 after clear", size)
	}
	if _, err := cache.Get(ctx, "key-0"); !errors.Is(err, domain.ErrCacheMiss) {
		t.Errorf("Get() after clear error = %v, want %v", err, domain.ErrCacheMiss)
	}
}

func TestMemoryCache_CloseIsIdempotent(t *testing.T) {
	cache := NewMemoryCache()

	if err := cache.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := cache.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
}

func TestMemoryCache_Concurrent(t *testing.T) {
	cache := NewMemoryCache()
	defer cache.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			key := fmt.Sprintf("key-%d", id)
			if err := cache.Set(ctx, key, []byte(key), time.Minute); err != nil {
				t.Errorf("Concurrent Set() error = %v", err)
			}
			if _, err := cache.Get(ctx, key); err != nil {
				t.Errorf("Concurrent Get() error = %v", err)
			}
		}(i)
	}
	wg.Wait()
}
