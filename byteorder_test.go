package rastertile

import (
	"bytes"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDetectByteOrder(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    []byte
		expected ByteOrder
	}{
		{name: "little endian marker", input: []byte("II"), expected: LittleEndian},
		{name: "big endian marker", input: []byte("MM"), expected: BigEndian},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := DetectByteOrder(bytes.NewReader(tc.input))
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestDetectByteOrderInvalid(t *testing.T) {
	_, err := DetectByteOrder(bytes.NewReader([]byte("XX")))
	assert.Error(t, err)
	assert.True(t, IsKind(err, KindInvalidByteOrder))
}

func TestByteOrderHandlerRoundtrip(t *testing.T) {
	le := LittleEndian.handler()
	v, err := le.ReadU32(bytes.NewReader([]byte{0x01, 0x00, 0x00, 0x00}))
	assert.NoError(t, err)
	assert.Equal(t, uint32(1), v)

	be := BigEndian.handler()
	v, err = be.ReadU32(bytes.NewReader([]byte{0x00, 0x00, 0x00, 0x01}))
	assert.NoError(t, err)
	assert.Equal(t, uint32(1), v)
}
