package observer

import (
	"testing"
	"time"

	"github.com/gridwatch/meshtap/internal/wire"
)

func TestIndexAndOffset(t *testing.T) {
	cases := []struct {
		sc     wire.SlotCounter
		index  int
		offset time.Duration
	}{
		{0, 0, 0},
		{999, 0, 999 * 5 * time.Millisecond},
		{1000, 1, 0},
		{1999, 1, 999 * 5 * time.Millisecond},
		{2000, 2, 0},
		{11999, 11, 999 * 5 * time.Millisecond},
		{0x4000, 12, 0},
		{0x4000 + 999, 12, 999 * 5 * time.Millisecond},
		{0x4000 + 1000, 13, 0},
	}
	for _, c := range cases {
		index, offset, err := indexAndOffset(c.sc)
		if err != nil {
			t.Fatalf("sc=0x%04X: unexpected error: %v", c.sc, err)
		}
		if index != c.index || offset != c.offset {
			t.Errorf("sc=0x%04X: got (%d, %v), want (%d, %v)", c.sc, index, offset, c.index, c.offset)
		}
	}

	if _, _, err := indexAndOffset(12000); err == nil {
		t.Error("expected an error for slot number 12000")
	}
}

func TestSlotClockSmoke(t *testing.T) {
	x := time.Unix(1723500000, 0)

	clock, err := newSlotClock(0xc000, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	check := func(label string, sc wire.SlotCounter, want time.Time) {
		t.Helper()
		got, err := clock.get(sc)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", label, err)
		}
		if !got.Equal(want) {
			t.Errorf("%s: got %v, want %v", label, got, want)
		}
	}

	check("one minute ago", 0x8000, x.Add(-60*time.Second))
	check("two minutes ago", 0x4000, x.Add(-120*time.Second))
	check("three minutes ago", 0x0000, x.Add(-180*time.Second))
	check("before set", 0xc000+1000, x.Add(-(180+55)*time.Second))

	later := x.Add(5 * time.Second)
	if _, err := clock.set(0xc000+1000, later); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	check("after set, one minute before x", 0x8000, x.Add(-60*time.Second))
	check("after set, two minutes before x", 0x4000, x.Add(-120*time.Second))
	check("after set, three minutes before x", 0x0000, x.Add(-180*time.Second))
	check("after set, the new observation", 0xc000+1000, later)
}

func TestSlotClockRegression(t *testing.T) {
	x := time.Unix(1723500000, 0)
	clock, err := newSlotClock(0x1000, x)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	earlier := x.Add(-10 * time.Second)
	rebuilt, err := clock.set(0x1000, earlier)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	got, err := clock.get(0x1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Equal(earlier) {
		t.Errorf("got %v, want %v after a clock regression", got, earlier)
	}
	if !rebuilt {
		t.Error("expected a backward-time set to report a rebuild")
	}
}
