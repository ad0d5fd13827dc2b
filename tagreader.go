package rastertile

import (
	"encoding/binary"
	"math"
	"strings"
)

// A tagReader reads tag values (inline or at a file offset) from a (Big)TIFF file.
type tagReader struct {
	reader    *bufferedReader
	handler   byteOrderHandler
	isBigTIFF bool
}

func newTagReader(reader *bufferedReader, byteOrder ByteOrder, isBigTIFF bool) *tagReader {
	return &tagReader{reader: reader, handler: byteOrder.handler(), isBigTIFF: isBigTIFF}
}

func (t *tagReader) seekToTagData(entry IFDEntry) error {
	if !entry.IsInline(t.isBigTIFF) {
		return t.reader.SeekStart(entry.ValueOffset)
	}
	return nil
}

// ReadU16s reads entry's values as a []uint16.
func (t *tagReader) ReadU16s(entry IFDEntry) ([]uint16, error) {
	if err := t.seekToTagData(entry); err != nil {
		return nil, err
	}
	values := make([]uint16, entry.Count)
	for i := range values {
		v, err := t.readSingleU16(entry, uint64(i))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ReadI16s reads entry's values as a []int16.
func (t *tagReader) ReadI16s(entry IFDEntry) ([]int16, error) {
	if err := t.seekToTagData(entry); err != nil {
		return nil, err
	}
	values := make([]int16, entry.Count)
	for i := range values {
		v, err := t.readSingleI16(entry, uint64(i))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ReadU32s reads entry's values as a []uint32.
func (t *tagReader) ReadU32s(entry IFDEntry) ([]uint32, error) {
	if err := t.seekToTagData(entry); err != nil {
		return nil, err
	}
	values := make([]uint32, entry.Count)
	for i := range values {
		v, err := t.readSingleU32(entry, uint64(i))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ReadI32s reads entry's values as a []int32.
func (t *tagReader) ReadI32s(entry IFDEntry) ([]int32, error) {
	if err := t.seekToTagData(entry); err != nil {
		return nil, err
	}
	values := make([]int32, entry.Count)
	for i := range values {
		v, err := t.readSingleI32(entry, uint64(i))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ReadU64s reads entry's values as a []uint64.
func (t *tagReader) ReadU64s(entry IFDEntry) ([]uint64, error) {
	if err := t.seekToTagData(entry); err != nil {
		return nil, err
	}
	values := make([]uint64, entry.Count)
	for i := range values {
		v, err := t.readSingleU64(entry, uint64(i))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ReadI64s reads entry's values as a []int64.
func (t *tagReader) ReadI64s(entry IFDEntry) ([]int64, error) {
	if err := t.seekToTagData(entry); err != nil {
		return nil, err
	}
	values := make([]int64, entry.Count)
	for i := range values {
		v, err := t.readSingleI64(entry, uint64(i))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ReadDoubles reads entry's values as a []float64, accepting either DOUBLE
// or FLOAT-typed entries (the latter widened).
func (t *tagReader) ReadDoubles(entry IFDEntry) ([]float64, error) {
	if err := t.seekToTagData(entry); err != nil {
		return nil, err
	}
	values := make([]float64, entry.Count)
	for i := range values {
		v, err := t.readSingleDouble(entry, uint64(i))
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

// ReadASCII reads entry's value as a NUL-trimmed string.
func (t *tagReader) ReadASCII(entry IFDEntry) (string, error) {
	raw, err := t.readASCIIBytes(entry)
	if err != nil {
		return "", err
	}
	return strings.TrimRight(string(raw), "\x00"), nil
}

func (t *tagReader) readSingleDouble(entry IFDEntry, index uint64) (float64, error) {
	switch entry.FieldType {
	case FieldTypeDouble:
		if entry.IsInline(t.isBigTIFF) {
			return float64FromBits(entry.ValueOffset), nil
		}
		return t.handler.ReadF64(t.reader)
	case FieldTypeFloat:
		if entry.IsInline(t.isBigTIFF) {
			return float64(math.Float32frombits(uint32((entry.ValueOffset >> (index * 32)) & 0xFFFFFFFF))), nil
		}
		v, err := t.handler.ReadF32(t.reader)
		return float64(v), err
	default:
		return 0, InvalidFormatError("expected DOUBLE or FLOAT type")
	}
}

func (t *tagReader) readSingleU16(entry IFDEntry, index uint64) (uint16, error) {
	if entry.IsInline(t.isBigTIFF) {
		return uint16((entry.ValueOffset >> (index * 16)) & 0xFFFF), nil
	}
	return t.handler.ReadU16(t.reader)
}

func (t *tagReader) readSingleI16(entry IFDEntry, index uint64) (int16, error) {
	if entry.IsInline(t.isBigTIFF) {
		return int16((entry.ValueOffset >> (index * 16)) & 0xFFFF), nil
	}
	return t.handler.ReadI16(t.reader)
}

func (t *tagReader) readSingleU32(entry IFDEntry, index uint64) (uint32, error) {
	if !entry.IsInline(t.isBigTIFF) {
		return t.handler.ReadU32(t.reader)
	}
	if index == 0 {
		return uint32(entry.ValueOffset & 0xFFFFFFFF), nil
	}
	return uint32((entry.ValueOffset >> 32) & 0xFFFFFFFF), nil
}

func (t *tagReader) readSingleI32(entry IFDEntry, index uint64) (int32, error) {
	if !entry.IsInline(t.isBigTIFF) {
		return t.handler.ReadI32(t.reader)
	}
	if index == 0 {
		return int32(entry.ValueOffset & 0xFFFFFFFF), nil
	}
	return int32((entry.ValueOffset >> 32) & 0xFFFFFFFF), nil
}

func (t *tagReader) readSingleU64(entry IFDEntry, index uint64) (uint64, error) {
	if entry.IsInline(t.isBigTIFF) && index == 0 {
		return entry.ValueOffset, nil
	}
	return t.handler.ReadU64(t.reader)
}

func (t *tagReader) readSingleI64(entry IFDEntry, index uint64) (int64, error) {
	if entry.IsInline(t.isBigTIFF) && index == 0 {
		return int64(entry.ValueOffset), nil
	}
	return t.handler.ReadI64(t.reader)
}

func (t *tagReader) readASCIIBytes(entry IFDEntry) ([]byte, error) {
	out := make([]byte, entry.Count)
	if entry.IsInline(t.isBigTIFF) {
		var inline [8]byte
		binary.LittleEndian.PutUint64(inline[:], entry.ValueOffset)
		copy(out, inline[:entry.Count])
		return out, nil
	}
	if err := t.reader.SeekStart(entry.ValueOffset); err != nil {
		return nil, err
	}
	if err := t.reader.ReadFull(out); err != nil {
		return nil, err
	}
	return out, nil
}

func float64FromBits(bits uint64) float64 {
	return math.Float64frombits(bits)
}
