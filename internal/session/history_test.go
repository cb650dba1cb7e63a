package session

import (
	"testing"

	"github.com/spiralogic/elemental/pkg/types"
)

func turnWithIndex(i int) types.Turn {
	return types.Turn{Index: i, Element: types.Fire}
}

func TestHistoryRingRecordAndWindow(t *testing.T) {
	r := NewHistoryRing(3)

	for i := 0; i < 3; i++ {
		r.Record(turnWithIndex(i))
	}

	window := r.Window(3)
	if len(window) != 3 {
		t.Fatalf("Expected 3 turns, got %d", len(window))
	}
	for i, turn := range window {
		if turn.Index != i {
			t.Errorf("Window[%d].Index = %d, want %d (oldest first)", i, turn.Index, i)
		}
	}
}

func TestHistoryRingEvictsOldest(t *testing.T) {
	r := NewHistoryRing(3)

	for i := 0; i < 5; i++ {
		r.Record(turnWithIndex(i))
	}

	if r.Len() != 3 {
		t.Fatalf("Len = %d, want 3", r.Len())
	}
	window := r.Window(3)
	want := []int{2, 3, 4}
	for i, turn := range window {
		if turn.Index != want[i] {
			t.Errorf("Window[%d].Index = %d, want %d", i, turn.Index, want[i])
		}
	}
}

func TestHistoryRingPartialWindow(t *testing.T) {
	r := NewHistoryRing(5)
	r.Record(turnWithIndex(0))
	r.Record(turnWithIndex(1))

	if got := r.Window(3); len(got) != 2 {
		t.Errorf("Window larger than stored count should clamp: got %d turns", len(got))
	}
	if got := r.Window(1); len(got) != 1 || got[0].Index != 1 {
		t.Errorf("Window(1) should hold the most recent turn, got %+v", got)
	}
	if got := r.Window(0); got != nil {
		t.Errorf("Window(0) = %+v, want nil", got)
	}
}

func TestHistoryRingEmptyWindow(t *testing.T) {
	r := NewHistoryRing(3)
	if got := r.Window(3); got != nil {
		t.Errorf("Window on empty ring = %+v, want nil", got)
	}
}

func TestHistoryRingMinimumCapacity(t *testing.T) {
	r := NewHistoryRing(0)
	if r.Cap() != 1 {
		t.Errorf("Cap = %d, want 1", r.Cap())
	}
	r.Record(turnWithIndex(0))
	r.Record(turnWithIndex(1))
	if got := r.Window(1); len(got) != 1 || got[0].Index != 1 {
		t.Errorf("Single-slot ring should keep the latest turn, got %+v", got)
	}
}
