package compress

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestDecompressPackBits(t *testing.T) {
	for _, tc := range []struct {
		name     string
		input    []byte
		expected []byte
	}{
		{
			name:     "literal run",
			input:    []byte{0x02, 'a', 'b', 'c'},
			expected: []byte("abc"),
		},
		{
			name:     "repeat run",
			input:    []byte{0xfe, 'a'}, // header -2 -> repeat 3 times
			expected: []byte("aaa"),
		},
		{
			name:     "noop byte is skipped",
			input:    []byte{0x80, 0x02, 'x', 'y', 'z'},
			expected: []byte("xyz"),
		},
		{
			name:     "mixed literal and repeat",
			input:    []byte{0x01, 'a', 'b', 0xff, 'c'},
			expected: []byte("abcc"),
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			actual, err := decompressPackBits(tc.input)
			assert.NoError(t, err)
			assert.Equal(t, tc.expected, actual)
		})
	}
}

func TestDecompressPackBitsErrors(t *testing.T) {
	_, err := decompressPackBits([]byte{0x05, 'a'})
	assert.Error(t, err)

	_, err = decompressPackBits([]byte{0xfe})
	assert.Error(t, err)
}
