// Package capture reads and writes gzip-compressed capture files: framed
// records of raw bytes tagged with the wall-clock time they were observed.
package capture

import (
	"compress/gzip"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"os"
	"time"

	"github.com/m-lab/go/rtx"
)

// comment is the gzip header comment every capture file carries, so a
// capture can be told apart from an arbitrary gzip stream by inspection.
const comment = "taptap capture"

// recordHeaderSize is the length-prefix plus timestamp preceding each
// record's data: 2 bytes big-endian length, 8 bytes big-endian
// milliseconds-since-epoch.
const recordHeaderSize = 10

// ErrShortRecord is returned by Reader.Next when a record's header is
// followed by fewer than the declared number of data bytes before the
// underlying stream ends.
var ErrShortRecord = errors.New("capture: short record")

// Writer appends length/timestamp-framed records to a gzip stream.
type Writer struct {
	gz *gzip.Writer
}

// NewWriter wraps w in a best-compression gzip stream carrying the capture
// comment header. Callers must Close the Writer to flush the trailing gzip
// footer.
func NewWriter(w io.Writer) (*Writer, error) {
	gz, err := gzip.NewWriterLevel(w, gzip.BestCompression)
	if err != nil {
		return nil, err
	}
	gz.Comment = comment
	return &Writer{gz: gz}, nil
}

// CreateFile opens filename for writing and wraps it in a Writer. It is only
// expected to be used from command-line tooling, where a failure to open the
// destination file is fatal.
func CreateFile(filename string) (*Writer, io.Closer) {
	f, err := os.Create(filename)
	rtx.Must(err, "could not create capture file %q", filename)
	w, err := NewWriter(f)
	rtx.Must(err, "could not start gzip stream for %q", filename)
	return w, f
}

// Write appends data, stamped with timestamp, as one or more records. A
// write longer than a single record can carry (65535 bytes) is split into
// consecutive records sharing the same timestamp. An empty write still
// produces one zero-length record, preserving round-trip fidelity.
func (w *Writer) Write(data []byte, timestamp time.Time) error {
	ms := uint64(timestamp.UnixMilli())
	if len(data) == 0 {
		return w.writeRecord(nil, ms)
	}
	for len(data) > 0 {
		n := len(data)
		if n > math.MaxUint16 {
			n = math.MaxUint16
		}
		if err := w.writeRecord(data[:n], ms); err != nil {
			return err
		}
		data = data[n:]
	}
	return nil
}

func (w *Writer) writeRecord(data []byte, ms uint64) error {
	var header [recordHeaderSize]byte
	binary.BigEndian.PutUint16(header[0:2], uint16(len(data)))
	binary.BigEndian.PutUint64(header[2:10], ms)
	if _, err := w.gz.Write(header[:]); err != nil {
		return err
	}
	if len(data) > 0 {
		if _, err := w.gz.Write(data); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the gzip footer. It does not close the underlying writer.
func (w *Writer) Close() error {
	return w.gz.Close()
}

// Reader reads the records a Writer produced, in order.
type Reader struct {
	gz *gzip.Reader
}

// NewReader opens a gzip stream for reading capture records.
func NewReader(r io.Reader) (*Reader, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, err
	}
	return &Reader{gz: gz}, nil
}

// OpenFile opens filename for reading and wraps it in a Reader. It is only
// expected to be used from command-line tooling, where a failure to open the
// source file is fatal.
func OpenFile(filename string) (*Reader, io.Closer) {
	f, err := os.Open(filename)
	rtx.Must(err, "could not open capture file %q", filename)
	r, err := NewReader(f)
	rtx.Must(err, "could not read gzip header from %q", filename)
	return r, f
}

// Next reads the next record. It returns io.EOF when the stream ends
// cleanly between records, and ErrShortRecord when the stream ends in the
// middle of a header or a record's data.
func (r *Reader) Next() ([]byte, time.Time, error) {
	var header [recordHeaderSize]byte
	if _, err := io.ReadFull(r.gz, header[:]); err != nil {
		if err == io.EOF {
			return nil, time.Time{}, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, time.Time{}, ErrShortRecord
		}
		return nil, time.Time{}, err
	}
	length := binary.BigEndian.Uint16(header[0:2])
	ms := binary.BigEndian.Uint64(header[2:10])

	data := make([]byte, length)
	if _, err := io.ReadFull(r.gz, data); err != nil {
		return nil, time.Time{}, ErrShortRecord
	}
	return data, time.UnixMilli(int64(ms)).UTC(), nil
}

// Close closes the underlying gzip stream.
func (r *Reader) Close() error {
	return r.gz.Close()
}
