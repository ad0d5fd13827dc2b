package rastertile

import (
	"fmt"
	"io"
	"os"
	"strings"
)

const maxIFDCount = 1000

// A Tiff is the result of walking a (Big)TIFF file's IFD chain.
type Tiff struct {
	IsBigTIFF bool
	IFDs      []*IFD
}

// MainIFD returns the first IFD, if any.
func (t *Tiff) MainIFD() (*IFD, bool) {
	if len(t.IFDs) == 0 {
		return nil, false
	}
	return t.IFDs[0], true
}

// Describe returns a multi-line human-readable summary of the file: its
// format (classic or BigTIFF) followed by one line per IFD, via
// [IFD.Describe]. It is meant for the CLI's describe mode, not for parsing.
func (t *Tiff) Describe() string {
	var sb strings.Builder
	format := "classic TIFF"
	if t.IsBigTIFF {
		format = "BigTIFF"
	}
	fmt.Fprintf(&sb, "%s, %d IFD(s)\n", format, len(t.IFDs))
	for _, ifd := range t.IFDs {
		sb.WriteString(ifd.Describe())
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// A Reader provides random access to a single open (Big)TIFF file: header
// detection, IFD chain traversal, and tag value reads. It is the
// foundation every other component (tile loader, pixel reader, GeoInfo) is
// built on.
//
// A Reader is not safe for concurrent use, except for [Reader.ReadAt]:
// concurrent tile decoding issues positional reads on the shared *os.File
// through it instead (see [ReadPixelsBatch]).
type Reader struct {
	file      *os.File
	buffered  *bufferedReader
	byteOrder ByteOrder
	isBigTIFF bool
}

// ReaderOption configures a [Reader].
type ReaderOption func(*readerOptions)

type readerOptions struct {
	bufferSize int
}

// WithBufferSize sets the internal read-buffer size used by the header and
// IFD parser. The default is 8KB.
func WithBufferSize(size int) ReaderOption {
	return func(o *readerOptions) {
		o.bufferSize = size
	}
}

// OpenReader opens the (Big)TIFF file at path and reads and validates its
// header. The IFD chain is not read until [Reader.Read] is called.
func OpenReader(path string, options ...ReaderOption) (*Reader, error) {
	opts := readerOptions{bufferSize: defaultBufferSize}
	for _, option := range options {
		option(&opts)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, IOError(err)
	}
	ok := false
	defer func() {
		if !ok {
			_ = file.Close()
		}
	}()

	r := &Reader{
		file:     file,
		buffered: newBufferedReaderSize(opts.bufferSize, file),
	}

	if err := r.readHeader(); err != nil {
		return nil, err
	}

	ok = true
	return r, nil
}

// Close closes the underlying file handle.
func (r *Reader) Close() error {
	return IOError(r.file.Close())
}

// File returns the underlying *os.File, for callers that need their own
// positional view of it.
func (r *Reader) File() *os.File {
	return r.file
}

// ByteOrder returns the file's declared byte order.
func (r *Reader) ByteOrder() ByteOrder {
	return r.byteOrder
}

// IsBigTIFF reports whether the file is BigTIFF (64-bit offsets).
func (r *Reader) IsBigTIFF() bool {
	return r.isBigTIFF
}

func (r *Reader) readHeader() error {
	if err := r.buffered.SeekStart(0); err != nil {
		return err
	}
	byteOrder, err := DetectByteOrder(r.buffered)
	if err != nil {
		return err
	}
	r.byteOrder = byteOrder
	handler := byteOrder.handler()

	magic, err := handler.ReadU16(r.buffered)
	if err != nil {
		return err
	}
	switch magic {
	case TIFFMagic:
		r.isBigTIFF = false
	case BigTIFFMagic:
		r.isBigTIFF = true
	default:
		return InvalidMagicError(magic)
	}

	if r.isBigTIFF {
		offsetSize, err := handler.ReadU16(r.buffered)
		if err != nil {
			return err
		}
		if offsetSize != 8 {
			return InvalidFormatError("BigTIFF offset size must be 8")
		}
		if _, err := handler.ReadU16(r.buffered); err != nil { // reserved
			return err
		}
	}
	return nil
}

func (r *Reader) firstIFDOffset() (uint64, error) {
	handler := r.byteOrder.handler()
	if r.isBigTIFF {
		if err := r.buffered.SeekStart(8); err != nil {
			return 0, err
		}
		return handler.ReadU64(r.buffered)
	}
	if err := r.buffered.SeekStart(4); err != nil {
		return 0, err
	}
	v, err := handler.ReadU32(r.buffered)
	return uint64(v), err
}

// Read walks the IFD chain starting from the first-IFD offset in the
// header, returning the full chain as a [*Tiff]. The chain terminates at a
// next-IFD offset of zero and is aborted with [KindInvalidFormat] after
// [maxIFDCount] IFDs, guarding against cyclic offsets.
func (r *Reader) Read() (*Tiff, error) {
	offset, err := r.firstIFDOffset()
	if err != nil {
		return nil, err
	}

	tiff := &Tiff{IsBigTIFF: r.isBigTIFF}
	handler := r.byteOrder.handler()
	for n := 0; offset != 0; n++ {
		if n >= maxIFDCount {
			return nil, InvalidFormatError("too many IFDs (possible cycle)")
		}
		ifd, next, err := r.readIFD(n, offset, handler)
		if err != nil {
			return nil, err
		}
		tiff.IFDs = append(tiff.IFDs, ifd)
		offset = next
	}
	return tiff, nil
}

func (r *Reader) readIFD(number int, offset uint64, handler byteOrderHandler) (*IFD, uint64, error) {
	if err := r.buffered.SeekStart(offset); err != nil {
		return nil, 0, err
	}

	var count uint64
	if r.isBigTIFF {
		v, err := handler.ReadU64(r.buffered)
		if err != nil {
			return nil, 0, err
		}
		count = v
	} else {
		v, err := handler.ReadU16(r.buffered)
		if err != nil {
			return nil, 0, err
		}
		count = uint64(v)
	}

	ifd := NewIFD(number, offset)
	for i := uint64(0); i < count; i++ {
		entry, err := r.readIFDEntry(handler)
		if err != nil {
			return nil, 0, err
		}
		ifd.AddEntry(entry)
	}

	var next uint64
	if r.isBigTIFF {
		v, err := handler.ReadU64(r.buffered)
		if err != nil {
			return nil, 0, err
		}
		next = v
	} else {
		v, err := handler.ReadU32(r.buffered)
		if err != nil {
			return nil, 0, err
		}
		next = uint64(v)
	}

	return ifd, next, nil
}

func (r *Reader) readIFDEntry(handler byteOrderHandler) (IFDEntry, error) {
	tag, err := handler.ReadU16(r.buffered)
	if err != nil {
		return IFDEntry{}, err
	}
	fieldType, err := handler.ReadU16(r.buffered)
	if err != nil {
		return IFDEntry{}, err
	}

	var count uint64
	if r.isBigTIFF {
		count, err = handler.ReadU64(r.buffered)
	} else {
		var v uint32
		v, err = handler.ReadU32(r.buffered)
		count = uint64(v)
	}
	if err != nil {
		return IFDEntry{}, err
	}

	valueOffset, err := r.readValueSlot(handler)
	if err != nil {
		return IFDEntry{}, err
	}

	return NewIFDEntry(tag, fieldType, count, valueOffset), nil
}

// readValueSlot reads the fixed-size value/offset slot of an IFD entry (4
// bytes classic, 8 bytes BigTIFF) as a raw little-endian-packed uint64, as
// the tag reader expects.
func (r *Reader) readValueSlot(handler byteOrderHandler) (uint64, error) {
	if r.isBigTIFF {
		return handler.ReadU64(r.buffered)
	}
	v, err := handler.ReadU32(r.buffered)
	return uint64(v), err
}

// newTagReader returns a tagReader bound to r's buffered source.
func (r *Reader) newTagReader() *tagReader {
	return newTagReader(r.buffered, r.byteOrder, r.isBigTIFF)
}

// ReadTagU16s reads an IFD entry's values as []uint16.
func (r *Reader) ReadTagU16s(entry IFDEntry) ([]uint16, error) {
	return r.newTagReader().ReadU16s(entry)
}

// ReadTagU32s reads an IFD entry's values as []uint32.
func (r *Reader) ReadTagU32s(entry IFDEntry) ([]uint32, error) {
	return r.newTagReader().ReadU32s(entry)
}

// ReadTagU64s reads an IFD entry's values as []uint64.
func (r *Reader) ReadTagU64s(entry IFDEntry) ([]uint64, error) {
	return r.newTagReader().ReadU64s(entry)
}

// ReadTagDoubles reads an IFD entry's values as []float64.
func (r *Reader) ReadTagDoubles(entry IFDEntry) ([]float64, error) {
	return r.newTagReader().ReadDoubles(entry)
}

// ReadTagASCII reads an IFD entry's value as a trimmed string.
func (r *Reader) ReadTagASCII(entry IFDEntry) (string, error) {
	return r.newTagReader().ReadASCII(entry)
}

// readTagU64sWidened reads entry's values as a []uint64, widening from
// whichever integer field type the entry actually declares (SHORT, LONG, or
// LONG8), as tile offset and byte-count arrays may use any of the three.
func (r *Reader) readTagU64sWidened(entry IFDEntry) ([]uint64, error) {
	switch entry.FieldType {
	case FieldTypeShort:
		values, err := r.ReadTagU16s(entry)
		if err != nil {
			return nil, err
		}
		widened := make([]uint64, len(values))
		for i, v := range values {
			widened[i] = uint64(v)
		}
		return widened, nil
	case FieldTypeLong:
		values, err := r.ReadTagU32s(entry)
		if err != nil {
			return nil, err
		}
		widened := make([]uint64, len(values))
		for i, v := range values {
			widened[i] = uint64(v)
		}
		return widened, nil
	case FieldTypeLong8:
		return r.ReadTagU64s(entry)
	default:
		return nil, InvalidTagError(entry.Tag)
	}
}

// ReadAt reads len(p) bytes starting at offset directly from the underlying
// file, bypassing the internal buffer. Used by the tile loader, which reads
// large, non-sequential ranges that would not benefit from buffering.
func (r *Reader) ReadAt(p []byte, offset int64) (int, error) {
	n, err := r.file.ReadAt(p, offset)
	if err != nil && err != io.EOF {
		return n, IOError(err)
	}
	return n, nil
}
