package middleware

import (
	"testing"
	"time"

	"github.com/doc-tools/docsnap/config"
)

func TestVisitorTable_BurstThenLimit(t *testing.T) {
	table := &visitorTable{
		cfg:  config.RateLimitConfig{RequestsPerSecond: 1, Burst: 3},
		seen: make(map[string]*visitor),
	}

	for i := 0; i < 3; i++ {
		if !table.allow("client-a") {
			t.Fatalf("request %d should be inside the burst", i)
		}
	}
	if table.allow("client-a") {
		t.Error("burst exhausted, request should be limited")
	}

	// Other identities have their own bucket.
	if !table.allow("client-b") {
		t.Error("a different identity must not share the exhausted bucket")
	}
}

func TestVisitorTable_SweepDropsIdleBuckets(t *testing.T) {
	table := &visitorTable{
		cfg:  config.RateLimitConfig{RequestsPerSecond: 1, Burst: 1},
		seen: make(map[string]*visitor),
	}

	table.allow("client-a")
	time.Sleep(5 * time.Millisecond)
	table.sweep(time.Millisecond)

	if _, ok := table.seen["client-a"]; ok {
		t.Error("idle bucket should have been swept")
	}

	// A fresh bucket means a fresh burst.
	if !table.allow("client-a") {
		t.Error("swept client should start over with a full bucket")
	}
}
