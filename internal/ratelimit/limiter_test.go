package ratelimit

import (
	"sync"
	"testing"

	"github.com/mamadbah2/dairyfeed/internal/config"
)

func TestRegistryDeniesWhenBurstExhausted(t *testing.T) {
	reg := NewRegistry(config.RateLimitConfig{DefaultRPS: 1, DefaultBurst: 3})

	for i := 0; i < 3; i++ {
		if !reg.Allow("org-1") {
			t.Fatalf("request %d should be within burst", i+1)
		}
	}
	if reg.Allow("org-1") {
		t.Fatal("request beyond burst should be denied")
	}
}

func TestRegistryIsolatesOrganizations(t *testing.T) {
	reg := NewRegistry(config.RateLimitConfig{DefaultRPS: 1, DefaultBurst: 1})

	if !reg.Allow("org-a") {
		t.Fatal("org-a first request should pass")
	}
	if reg.Allow("org-a") {
		t.Fatal("org-a second request should be denied")
	}
	if !reg.Allow("org-b") {
		t.Fatal("org-b must not be affected by org-a's bucket")
	}
}

func TestRegistryOverrideTakesEffectOnFirstUse(t *testing.T) {
	reg := NewRegistry(config.RateLimitConfig{DefaultRPS: 1, DefaultBurst: 1})

	for i := 0; i < 5; i++ {
		if !reg.AllowWithOverride("org-big", 100, 5) {
			t.Fatalf("request %d should be within the override burst", i+1)
		}
	}
}

func TestRegistryResetRestoresBurst(t *testing.T) {
	reg := NewRegistry(config.RateLimitConfig{DefaultRPS: 1, DefaultBurst: 1})

	reg.Allow("org-1")
	if reg.Allow("org-1") {
		t.Fatal("bucket should be empty")
	}

	reg.Reset("org-1")
	if !reg.Allow("org-1") {
		t.Fatal("reset should restore a full bucket")
	}
}

func TestRegistryConcurrentAccess(t *testing.T) {
	reg := NewRegistry(config.RateLimitConfig{DefaultRPS: 1000, DefaultBurst: 1000})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			orgs := []string{"org-a", "org-b", "org-c"}
			reg.Allow(orgs[n%len(orgs)])
		}(i)
	}
	wg.Wait()
}
