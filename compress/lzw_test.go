package compress

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

// encodeLZWFixedWidth packs a sequence of codes, all codeSize bits wide,
// least-significant-bit first, matching lzwBitReader's layout exactly. It
// exists only to build test fixtures: the real encoder side of this format
// lives outside this package.
func encodeLZWFixedWidth(codes []int, codeSize int) []byte {
	var data []byte
	bitPos := 0
	for _, code := range codes {
		for i := 0; i < codeSize; i++ {
			byteIndex := bitPos / 8
			for byteIndex >= len(data) {
				data = append(data, 0)
			}
			bit := byte((code >> i) & 1)
			data[byteIndex] |= bit << uint(bitPos%8)
			bitPos++
		}
	}
	return data
}

func TestDecompressLZWLiteralsOnly(t *testing.T) {
	// Clear, 'T', 'I', 'F', 'F', EOI, all at the initial 9-bit code size.
	codes := []int{256, 'T', 'I', 'F', 'F', 257}
	data := encodeLZWFixedWidth(codes, 9)

	actual, err := decompressLZW(data)
	assert.NoError(t, err)
	assert.Equal(t, []byte("TIFF"), actual)
}

func TestDecompressLZWRepeatedSequence(t *testing.T) {
	// Clear, 'a', 'a', then the just-learned 2-byte entry (code 258), EOI.
	codes := []int{256, 'a', 'a', 258, 257}
	data := encodeLZWFixedWidth(codes, 9)

	actual, err := decompressLZW(data)
	assert.NoError(t, err)
	assert.Equal(t, []byte("aaaa"), actual)
}

func TestDecompressLZWEmptyInput(t *testing.T) {
	actual, err := decompressLZW(nil)
	assert.NoError(t, err)
	assert.Equal(t, []byte(nil), actual)
}
