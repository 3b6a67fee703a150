package idalloc

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"go.uber.org/zap"
)

// memSequences is an in-memory SequenceSource with the same atomicity
// contract as the mongo-backed store.
type memSequences struct {
	mu   sync.Mutex
	seqs map[string]int64
}

func newMemSequences() *memSequences {
	return &memSequences{seqs: make(map[string]int64)}
}

func (m *memSequences) Next(_ context.Context, code string, year int) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := fmt.Sprintf("%s-%d", code, year)
	m.seqs[k]++
	return m.seqs[k], nil
}

func TestAllocate_Sequential(t *testing.T) {
	a := New(newMemSequences(), zap.NewNop())
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		id, err := a.Allocate(ctx, "አማራ", 2025)
		if err != nil {
			t.Fatalf("Allocate failed: %v", err)
		}
		want := fmt.Sprintf("AMH-2025-%04d", i)
		if id != want {
			t.Errorf("allocation %d: got %q, want %q", i, id, want)
		}
	}
}

func TestAllocate_IndependentKeys(t *testing.T) {
	a := New(newMemSequences(), zap.NewNop())
	ctx := context.Background()

	id1, _ := a.Allocate(ctx, "አማራ", 2025)
	id2, _ := a.Allocate(ctx, "ኦሮሚያ", 2025)
	id3, _ := a.Allocate(ctx, "አማራ", 2026)

	if id1 != "AMH-2025-0001" {
		t.Errorf("got %q, want AMH-2025-0001", id1)
	}
	if id2 != "ORO-2025-0001" {
		t.Errorf("different region should start at 1: got %q", id2)
	}
	if id3 != "AMH-2026-0001" {
		t.Errorf("different year should start at 1: got %q", id3)
	}
}

func TestAllocate_UnknownRegionUsesFallback(t *testing.T) {
	a := New(newMemSequences(), zap.NewNop())
	ctx := context.Background()

	id, err := a.Allocate(ctx, "Unknown Region", 2025)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if id != "OTH-2025-0001" {
		t.Errorf("got %q, want OTH-2025-0001", id)
	}

	// The fallback bucket sequences independently of recognized regions.
	if _, err := a.Allocate(ctx, "አማራ", 2025); err != nil {
		t.Fatal(err)
	}
	id2, _ := a.Allocate(ctx, "Another Unknown", 2025)
	if id2 != "OTH-2025-0002" {
		t.Errorf("got %q, want OTH-2025-0002", id2)
	}
}

func TestAllocate_Concurrent(t *testing.T) {
	a := New(newMemSequences(), zap.NewNop())
	ctx := context.Background()

	const k = 64
	ids := make(chan string, k)
	var wg sync.WaitGroup
	for i := 0; i < k; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := a.Allocate(ctx, "ሲዳማ", 2025)
			if err != nil {
				t.Errorf("Allocate failed: %v", err)
				return
			}
			ids <- id
		}()
	}
	wg.Wait()
	close(ids)

	seen := make(map[string]bool, k)
	for id := range ids {
		if seen[id] {
			t.Errorf("duplicate identifier %q", id)
		}
		seen[id] = true
		seq, err := ParseSeq(id)
		if err != nil {
			t.Errorf("unparseable identifier %q", id)
			continue
		}
		if seq < 1 || seq > k {
			t.Errorf("sequence %d outside 1..%d (lost update)", seq, k)
		}
	}
	if len(seen) != k {
		t.Errorf("got %d distinct identifiers, want %d", len(seen), k)
	}
}

func TestFormat_OverflowWidens(t *testing.T) {
	if got := Format("AMH", 2025, 12345); got != "AMH-2025-12345" {
		t.Errorf("got %q, want AMH-2025-12345", got)
	}
	if got := Format("AA", 2025, 7); got != "AA-2025-0007" {
		t.Errorf("got %q, want AA-2025-0007", got)
	}
}

func TestParseSeq(t *testing.T) {
	tests := []struct {
		id      string
		want    int64
		wantErr bool
	}{
		{"AMH-2025-0001", 1, false},
		{"SWET-2025-0042", 42, false},
		{"AMH-2025-12345", 12345, false},
		{"AMH-2025-", 0, true},
		{"garbage", 0, true},
		{"AMH-2025-00x1", 0, true},
		{"AMH-2025-0000", 0, true}, // sequences start at 1
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got, err := ParseSeq(tt.id)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseSeq(%q) error = %v, wantErr %v", tt.id, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseSeq(%q) = %d, want %d", tt.id, got, tt.want)
			}
		})
	}
}
