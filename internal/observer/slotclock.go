package observer

import (
	"time"

	"github.com/gridwatch/meshtap/internal/wire"
)

const (
	slotClockIndices        = 48
	nominalDurationPerSlot  = 5 * time.Millisecond
	nominalDurationPerIndex = 1000 * nominalDurationPerSlot
)

// slotClock collates absolute timestamps to slot counters for one gateway.
// It is a rolling piecewise-linear approximation: the counter's 48000-slot
// absolute cycle (four 12000-slot epochs) is divided into slotClockIndices
// buckets of 1000 slots each, and each bucket is anchored by the timestamp of the most
// recent observation that fell into it.
type slotClock struct {
	times     [slotClockIndices]time.Time
	lastIndex int
	lastTime  time.Time
}

func indexAndOffset(sc wire.SlotCounter) (int, time.Duration, error) {
	abs, err := sc.AbsoluteSlot()
	if err != nil {
		return 0, 0, err
	}
	index := int(abs) / 1000
	offset := nominalDurationPerSlot * time.Duration(int(abs)%1000)
	return index, offset, nil
}

// newSlotClock seeds a clock from a single (slotCounter, time) observation,
// assuming nominal (5ms/slot) spacing for every other index.
func newSlotClock(sc wire.SlotCounter, t time.Time) (*slotClock, error) {
	index, offset, err := indexAndOffset(sc)
	if err != nil {
		return nil, err
	}
	indexTime := t.Add(-offset)

	c := &slotClock{lastIndex: index, lastTime: t}
	for i := range c.times {
		c.times[i] = indexTime
	}

	walked := indexTime
	for i := (index + slotClockIndices - 1) % slotClockIndices; i != index; i = (i + slotClockIndices - 1) % slotClockIndices {
		walked = walked.Add(-nominalDurationPerIndex)
		c.times[i] = walked
	}
	return c, nil
}

// set updates the clock with a new observation. If t is before the clock's
// last-seen time, the clock is rebuilt from scratch (a wall-clock
// regression, e.g. after a restart); otherwise only the bucket t's index
// falls in is assigned directly, and every bucket strictly between the
// previous and new index is re-seeded by walking backwards from the new
// observation at the nominal rate.
func (c *slotClock) set(sc wire.SlotCounter, t time.Time) (rebuilt bool, err error) {
	index, offset, err := indexAndOffset(sc)
	if err != nil {
		return false, err
	}

	if t.Before(c.lastTime) {
		fresh, err := newSlotClock(sc, t)
		if err != nil {
			return false, err
		}
		*c = *fresh
		return true, nil
	}

	if c.lastIndex != index {
		indexTime := t.Add(-offset)
		c.times[index] = indexTime

		walked := indexTime
		for i := (index + slotClockIndices - 1) % slotClockIndices; i != c.lastIndex; i = (i + slotClockIndices - 1) % slotClockIndices {
			walked = walked.Add(-nominalDurationPerIndex)
			c.times[i] = walked
		}
	}

	c.lastIndex = index
	c.lastTime = t
	return false, nil
}

// get returns the clock's best estimate of the absolute time a given slot
// counter value was observed.
func (c *slotClock) get(sc wire.SlotCounter) (time.Time, error) {
	index, offset, err := indexAndOffset(sc)
	if err != nil {
		return time.Time{}, err
	}
	return c.times[index].Add(offset), nil
}
