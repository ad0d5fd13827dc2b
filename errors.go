package rastertile

import (
	"errors"
	"fmt"
)

// A Kind identifies the class of an [Error].
type Kind int

const (
	// KindIO wraps an underlying I/O failure.
	KindIO Kind = iota
	// KindInvalidFormat indicates the file does not conform to (Big)TIFF structure.
	KindInvalidFormat
	// KindInvalidByteOrder indicates the two-byte order marker was not "II" or "MM".
	KindInvalidByteOrder
	// KindInvalidMagic indicates the magic number was neither 42 nor 43.
	KindInvalidMagic
	// KindInvalidTag indicates a tag's type or count could not be interpreted.
	KindInvalidTag
	// KindMissingTag indicates a required tag was absent from an IFD.
	KindMissingTag
	// KindUnsupported indicates a recognized but unimplemented feature (e.g. multi-sample pixels).
	KindUnsupported
	// KindInvalidOffset indicates a file offset pointed outside the readable range.
	KindInvalidOffset
	// KindOutOfBounds indicates a pixel or tile coordinate fell outside the image or tile grid.
	KindOutOfBounds
	// KindProjection indicates a CRS transform or affine inversion failed.
	KindProjection
)

func (k Kind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindInvalidFormat:
		return "invalid format"
	case KindInvalidByteOrder:
		return "invalid byte order"
	case KindInvalidMagic:
		return "invalid magic"
	case KindInvalidTag:
		return "invalid tag"
	case KindMissingTag:
		return "missing tag"
	case KindUnsupported:
		return "unsupported"
	case KindInvalidOffset:
		return "invalid offset"
	case KindOutOfBounds:
		return "out of bounds"
	case KindProjection:
		return "projection"
	default:
		return "unknown"
	}
}

// An Error is a rastertile engine error. It always carries a [Kind], and
// optionally wraps an underlying cause.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	switch {
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	case e.Message != "":
		return fmt.Sprintf("%s: %s", e.Kind, e.Message)
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an [*Error] with the same [Kind].
func (e *Error) Is(target error) bool {
	var other *Error
	if !errors.As(target, &other) {
		return false
	}
	return other.Kind == e.Kind
}

func newError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

func wrapError(kind Kind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// IOError wraps err as a [KindIO] error. If err is nil, IOError returns nil.
func IOError(err error) error {
	if err == nil {
		return nil
	}
	return wrapError(KindIO, err)
}

// InvalidFormatError returns a [KindInvalidFormat] error.
func InvalidFormatError(message string) error {
	return newError(KindInvalidFormat, message)
}

// InvalidByteOrderError returns a [KindInvalidByteOrder] error naming the offending word.
func InvalidByteOrderError(word [2]byte) error {
	return newError(KindInvalidByteOrder, fmt.Sprintf("%02X%02X", word[0], word[1]))
}

// InvalidMagicError returns a [KindInvalidMagic] error naming the offending magic number.
func InvalidMagicError(magic uint16) error {
	return newError(KindInvalidMagic, fmt.Sprintf("%d", magic))
}

// InvalidTagError returns a [KindInvalidTag] error naming the offending tag.
func InvalidTagError(tag uint16) error {
	return newError(KindInvalidTag, fmt.Sprintf("tag %d", tag))
}

// MissingTagError returns a [KindMissingTag] error naming the missing tag.
func MissingTagError(tag uint16) error {
	return newError(KindMissingTag, fmt.Sprintf("tag %d", tag))
}

// UnsupportedError returns a [KindUnsupported] error.
func UnsupportedError(message string) error {
	return newError(KindUnsupported, message)
}

// InvalidOffsetError returns a [KindInvalidOffset] error naming the offending offset.
func InvalidOffsetError(offset uint64) error {
	return newError(KindInvalidOffset, fmt.Sprintf("%d", offset))
}

// OutOfBoundsError returns a [KindOutOfBounds] error.
func OutOfBoundsError(message string) error {
	return newError(KindOutOfBounds, message)
}

// ProjectionError returns a [KindProjection] error.
func ProjectionError(message string) error {
	return newError(KindProjection, message)
}

// IsKind reports whether err is a [*Error] of the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Kind == kind
}
