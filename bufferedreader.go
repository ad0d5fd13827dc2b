package rastertile

import (
	"io"
)

// A seekableReader is anything a bufferedReader can wrap: a readable,
// seekable source such as an *os.File.
type seekableReader interface {
	io.Reader
	io.Seeker
}

// A bufferedReader wraps a [seekableReader] with a small internal buffer,
// reducing the number of underlying reads for the many small reads the IFD
// parser performs. The buffer is invalidated on every Seek, since a seek
// repositions the underlying source out from under any buffered bytes.
type bufferedReader struct {
	inner      seekableReader
	buf        []byte
	pos        int
	cap        int
	bufferSize int
}

const defaultBufferSize = 8192

// newBufferedReader returns a bufferedReader with the default buffer size.
func newBufferedReader(inner seekableReader) *bufferedReader {
	return newBufferedReaderSize(defaultBufferSize, inner)
}

// newBufferedReaderSize returns a bufferedReader with the given buffer size.
func newBufferedReaderSize(size int, inner seekableReader) *bufferedReader {
	return &bufferedReader{
		inner:      inner,
		buf:        make([]byte, size),
		bufferSize: size,
	}
}

func (b *bufferedReader) fill() error {
	n, err := b.inner.Read(b.buf)
	b.cap = n
	b.pos = 0
	if err != nil && err != io.EOF {
		return err
	}
	return nil
}

// Read implements io.Reader.
func (b *bufferedReader) Read(p []byte) (int, error) {
	if b.pos >= b.cap {
		if len(p) >= b.bufferSize {
			return b.inner.Read(p)
		}
		if err := b.fill(); err != nil {
			return 0, err
		}
		if b.cap == 0 {
			return 0, io.EOF
		}
	}
	n := copy(p, b.buf[b.pos:b.cap])
	b.pos += n
	return n, nil
}

// ReadFull reads exactly len(p) bytes into p, returning an [*Error] wrapping
// io.EOF if no bytes were left or io.ErrUnexpectedEOF on a partial read.
func (b *bufferedReader) ReadFull(p []byte) error {
	_, err := io.ReadFull(b, p)
	return IOError(err)
}

// Seek implements io.Seeker, discarding any buffered bytes.
func (b *bufferedReader) Seek(offset int64, whence int) (int64, error) {
	b.pos = 0
	b.cap = 0
	return b.inner.Seek(offset, whence)
}

// SeekStart seeks to an absolute offset from the start of the underlying source.
func (b *bufferedReader) SeekStart(offset uint64) error {
	_, err := b.Seek(int64(offset), io.SeekStart)
	return IOError(err)
}
