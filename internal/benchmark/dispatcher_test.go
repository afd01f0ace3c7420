package benchmark

import (
	"sync"
	"testing"
)

func TestDispatcher_ClaimOrder(t *testing.T) {
	d := NewDispatcher(3)

	for _, want := range []int{3, 2, 1} {
		got, ok := d.ClaimNext()
		if !ok || got != want {
			t.Fatalf("ClaimNext() = %d, %v, want %d, true", got, ok, want)
		}
	}

	for i := 0; i < 3; i++ {
		if _, ok := d.ClaimNext(); ok {
			t.Fatal("ClaimNext() succeeded after exhaustion")
		}
	}
	if d.Remaining() != 0 {
		t.Errorf("Remaining() = %d, want 0", d.Remaining())
	}
}

func TestDispatcher_Zero(t *testing.T) {
	d := NewDispatcher(0)
	if _, ok := d.ClaimNext(); ok {
		t.Error("ClaimNext() succeeded on empty dispatcher")
	}
}

func TestDispatcher_Remaining(t *testing.T) {
	d := NewDispatcher(5)
	d.ClaimNext()
	d.ClaimNext()
	if d.Remaining() != 3 {
		t.Errorf("Remaining() = %d, want 3", d.Remaining())
	}
}

// Exactly requests claims succeed however the calls are spread over
// goroutines, and each index is handed out once.
func TestDispatcher_ConcurrentClaims(t *testing.T) {
	tests := []struct {
		requests   int
		goroutines int
		extra      int
	}{
		{requests: 0, goroutines: 4, extra: 10},
		{requests: 1, goroutines: 8, extra: 7},
		{requests: 1000, goroutines: 16, extra: 64},
		{requests: 10000, goroutines: 3, extra: 1},
	}

	for _, tt := range tests {
		d := NewDispatcher(tt.requests)
		total := tt.requests + tt.extra

		seen := make([][]int, tt.goroutines)
		var wg sync.WaitGroup
		for g := 0; g < tt.goroutines; g++ {
			calls := total / tt.goroutines
			if g < total%tt.goroutines {
				calls++
			}
			wg.Add(1)
			go func(g, calls int) {
				defer wg.Done()
				for i := 0; i < calls; i++ {
					if idx, ok := d.ClaimNext(); ok {
						seen[g] = append(seen[g], idx)
					}
				}
			}(g, calls)
		}
		wg.Wait()

		claimed := make(map[int]bool)
		for _, s := range seen {
			for _, idx := range s {
				if claimed[idx] {
					t.Fatalf("requests=%d: index %d claimed twice", tt.requests, idx)
				}
				if idx < 1 || idx > tt.requests {
					t.Fatalf("requests=%d: index %d out of range", tt.requests, idx)
				}
				claimed[idx] = true
			}
		}
		if len(claimed) != tt.requests {
			t.Errorf("requests=%d: %d successful claims", tt.requests, len(claimed))
		}
	}
}

func BenchmarkDispatcher_ClaimNext(b *testing.B) {
	d := NewDispatcher(b.N)
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			d.ClaimNext()
		}
	})
}
