package rastertile

import (
	"encoding/binary"
	"io"
	"math"
)

// A ByteOrder is the endianness declared by a (Big)TIFF file's first two bytes.
type ByteOrder int

const (
	// LittleEndian corresponds to the "II" byte-order marker.
	LittleEndian ByteOrder = iota
	// BigEndian corresponds to the "MM" byte-order marker.
	BigEndian
)

// DetectByteOrder reads the two-byte order marker from r and returns the
// corresponding [ByteOrder]. It fails with a [KindInvalidByteOrder] error if
// the marker is neither "II" nor "MM".
func DetectByteOrder(r io.Reader) (ByteOrder, error) {
	var magic [2]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return 0, IOError(err)
	}
	switch magic {
	case [2]byte{'I', 'I'}:
		return LittleEndian, nil
	case [2]byte{'M', 'M'}:
		return BigEndian, nil
	default:
		return 0, InvalidByteOrderError(magic)
	}
}

// handler returns the byteOrderHandler for b.
func (b ByteOrder) handler() byteOrderHandler {
	if b == BigEndian {
		return bigEndianHandler{}
	}
	return littleEndianHandler{}
}

// byteOrderHandler reads typed values from a reader in a fixed endianness.
type byteOrderHandler interface {
	ReadU16(r io.Reader) (uint16, error)
	ReadU32(r io.Reader) (uint32, error)
	ReadU64(r io.Reader) (uint64, error)
	ReadI16(r io.Reader) (int16, error)
	ReadI32(r io.Reader) (int32, error)
	ReadI64(r io.Reader) (int64, error)
	ReadF32(r io.Reader) (float32, error)
	ReadF64(r io.Reader) (float64, error)
}

type littleEndianHandler struct{}

func (littleEndianHandler) ReadU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, IOError(err)
	}
	return binary.LittleEndian.Uint16(buf[:]), nil
}

func (littleEndianHandler) ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, IOError(err)
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func (littleEndianHandler) ReadU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, IOError(err)
	}
	return binary.LittleEndian.Uint64(buf[:]), nil
}

func (h littleEndianHandler) ReadI16(r io.Reader) (int16, error) {
	v, err := h.ReadU16(r)
	return int16(v), err
}

func (h littleEndianHandler) ReadI32(r io.Reader) (int32, error) {
	v, err := h.ReadU32(r)
	return int32(v), err
}

func (h littleEndianHandler) ReadI64(r io.Reader) (int64, error) {
	v, err := h.ReadU64(r)
	return int64(v), err
}

func (h littleEndianHandler) ReadF32(r io.Reader) (float32, error) {
	v, err := h.ReadU32(r)
	return math.Float32frombits(v), err
}

func (h littleEndianHandler) ReadF64(r io.Reader) (float64, error) {
	v, err := h.ReadU64(r)
	return math.Float64frombits(v), err
}

type bigEndianHandler struct{}

func (bigEndianHandler) ReadU16(r io.Reader) (uint16, error) {
	var buf [2]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, IOError(err)
	}
	return binary.BigEndian.Uint16(buf[:]), nil
}

func (bigEndianHandler) ReadU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, IOError(err)
	}
	return binary.BigEndian.Uint32(buf[:]), nil
}

func (bigEndianHandler) ReadU64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, IOError(err)
	}
	return binary.BigEndian.Uint64(buf[:]), nil
}

func (h bigEndianHandler) ReadI16(r io.Reader) (int16, error) {
	v, err := h.ReadU16(r)
	return int16(v), err
}

func (h bigEndianHandler) ReadI32(r io.Reader) (int32, error) {
	v, err := h.ReadU32(r)
	return int32(v), err
}

func (h bigEndianHandler) ReadI64(r io.Reader) (int64, error) {
	v, err := h.ReadU64(r)
	return int64(v), err
}

func (h bigEndianHandler) ReadF32(r io.Reader) (float32, error) {
	v, err := h.ReadU32(r)
	return math.Float32frombits(v), err
}

func (h bigEndianHandler) ReadF64(r io.Reader) (float64, error) {
	v, err := h.ReadU64(r)
	return math.Float64frombits(v), err
}
