package capture

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"testing"
	"time"
)

func TestRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	t1 := time.UnixMilli(1723500000123).UTC()
	t2 := time.UnixMilli(1723500005456).UTC()
	if err := w.Write([]byte{0, 0xFF, 0x7E}, t1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Write([]byte{1, 2, 3, 4, 5}, t2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, ts, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, []byte{0, 0xFF, 0x7E}) || !ts.Equal(t1) {
		t.Errorf("got (%v, %v), want ([0 FF 7E], %v)", data, ts, t1)
	}

	data, ts, err = r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.Equal(data, []byte{1, 2, 3, 4, 5}) || !ts.Equal(t2) {
		t.Errorf("got (%v, %v), want ([1 2 3 4 5], %v)", data, ts, t2)
	}

	if _, _, err := r.Next(); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
}

func TestWriteSplitsOversizeRecords(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data := make([]byte, math.MaxUint16+10)
	for i := range data {
		data[i] = byte(i)
	}
	timestamp := time.UnixMilli(1723500000000).UTC()
	if err := w.Write(data, timestamp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, ts1, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, ts2, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != math.MaxUint16 || len(second) != 10 {
		t.Fatalf("got record lengths %d, %d, want %d, 10", len(first), len(second), math.MaxUint16)
	}
	if !ts1.Equal(timestamp) || !ts2.Equal(timestamp) {
		t.Errorf("split records should share the original timestamp")
	}
	if !bytes.Equal(append(first, second...), data) {
		t.Errorf("reassembled data does not match original")
	}

	if _, _, err := r.Next(); err != io.EOF {
		t.Errorf("got %v, want io.EOF", err)
	}
}

func TestEmptyWriteProducesZeroLengthRecord(t *testing.T) {
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	timestamp := time.UnixMilli(1723500000000).UTC()
	if err := w.Write(nil, timestamp); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, ts, err := r.Next()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(data) != 0 || !ts.Equal(timestamp) {
		t.Errorf("got (%v, %v), want ([], %v)", data, ts, timestamp)
	}
}

func TestShortRecord(t *testing.T) {
	// Hand-assemble a stream whose header declares a 5-byte record but whose
	// body, and the gzip stream itself, ends after only 2 bytes.
	var buf bytes.Buffer
	w, err := NewWriter(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var header [recordHeaderSize]byte
	binary.BigEndian.PutUint16(header[0:2], 5)
	if _, err := w.gz.Write(header[:]); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := w.gz.Write([]byte{1, 2}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	r, err := NewReader(&buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, _, err := r.Next(); err != ErrShortRecord {
		t.Errorf("got %v, want ErrShortRecord", err)
	}
}
