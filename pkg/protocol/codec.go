package protocol

import (
	"encoding/binary"
	"errors"
	"io"
)

// Limits a Decoder enforces on length prefixes.
const (
	MaxStringLen       = 4 << 20
	MaxCollectionCount = 100_000
)

var (
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrAllocationTooLarge = errors.New("protocol: string length exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
)

// Encoder appends message fields to a reusable buffer. Integers are
// unsigned varints; strings are a varint length followed by the bytes.
type Encoder struct {
	buf []byte
}

func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// Reset empties the buffer and keeps its capacity.
func (e *Encoder) Reset() { e.buf = e.buf[:0] }

// Bytes returns the encoded message. It aliases the buffer until Reset.
func (e *Encoder) Bytes() []byte { return e.buf }

func (e *Encoder) WriteByte(b byte) { e.buf = append(e.buf, b) }

func (e *Encoder) WriteUvarint(v uint64) { e.buf = binary.AppendUvarint(e.buf, v) }

func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

func (e *Encoder) WriteBool(b bool) {
	var v byte
	if b {
		v = 1
	}
	e.buf = append(e.buf, v)
}

// Decoder reads the fields written by an Encoder. Every read fails with
// io.ErrUnexpectedEOF on truncated input.
type Decoder struct {
	buf []byte
}

func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

func (d *Decoder) ReadByte() (byte, error) {
	if len(d.buf) == 0 {
		return 0, io.ErrUnexpectedEOF
	}
	b := d.buf[0]
	d.buf = d.buf[1:]
	return b, nil
}

func (d *Decoder) ReadUvarint() (uint64, error) {
	v, n := binary.Uvarint(d.buf)
	switch {
	case n == 0:
		return 0, io.ErrUnexpectedEOF
	case n < 0:
		return 0, ErrVarintOverflow
	}
	d.buf = d.buf[n:]
	return v, nil
}

func (d *Decoder) ReadString() (string, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return "", err
	}
	if n > MaxStringLen {
		return "", ErrAllocationTooLarge
	}
	if n > uint64(len(d.buf)) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(d.buf[:n])
	d.buf = d.buf[n:]
	return s, nil
}

// ReadBool treats any non-zero byte as true.
func (d *Decoder) ReadBool() (bool, error) {
	b, err := d.ReadByte()
	return b != 0, err
}

// ReadCollectionCount reads an item count. Each item takes at least one
// byte, so a count above the bytes left is truncated input.
func (d *Decoder) ReadCollectionCount() (int, error) {
	n, err := d.ReadUvarint()
	if err != nil {
		return 0, err
	}
	if n > MaxCollectionCount {
		return 0, ErrCollectionTooLarge
	}
	if n > uint64(len(d.buf)) {
		return 0, io.ErrUnexpectedEOF
	}
	return int(n), nil
}
