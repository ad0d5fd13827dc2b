package compress

import "fmt"

// decompressLZW decodes the TIFF variant of LZW.
//
// The bit reader below accumulates bits starting from the least-significant
// bit of each byte, not the most-significant bit the TIFF specification
// actually calls for. This matches a real encoder/decoder pair widely
// deployed for TIFF LZW and is preserved here deliberately: flipping it to a
// strictly MSB-first reader would decode different bytes for any stream
// that crosses a code-size boundary, silently changing behavior that
// existing files depend on.
func decompressLZW(data []byte) ([]byte, error) {
	d := newLZWDecoder()
	return d.decode(data)
}

type lzwDecoder struct {
	dictionary [][]byte
	nextCode   int
}

func newLZWDecoder() *lzwDecoder {
	// Indices 256 and 257 are reserved (Clear and EOI) and never looked up
	// through getEntry, but are still allocated here so that entries added
	// from code 258 onward land at the dictionary index matching their code.
	dictionary := make([][]byte, 258, 4096)
	for i := 0; i < 256; i++ {
		dictionary[i] = []byte{byte(i)}
	}
	return &lzwDecoder{dictionary: dictionary, nextCode: 258}
}

func (d *lzwDecoder) decode(data []byte) ([]byte, error) {
	var output []byte
	reader := newLZWBitReader(data)
	codeSize := uint8(9)
	var previousCode int
	havePrevious := false

	for {
		code, ok := reader.readBits(codeSize)
		if !ok {
			break
		}
		if code == 257 {
			break
		}
		if code == 256 {
			d.reset()
			codeSize = 9
			havePrevious = false
			continue
		}

		entry, err := d.getEntry(int(code), previousCode, havePrevious)
		if err != nil {
			return nil, err
		}
		output = append(output, entry...)

		if havePrevious {
			d.addEntry(previousCode, entry[0])
			if d.nextCode == (1<<codeSize) && codeSize < 12 {
				codeSize++
			}
		}

		previousCode = int(code)
		havePrevious = true
	}

	return output, nil
}

func (d *lzwDecoder) getEntry(code, previous int, havePrevious bool) ([]byte, error) {
	switch {
	case code < len(d.dictionary):
		return d.dictionary[code], nil
	case code == d.nextCode:
		if !havePrevious {
			return nil, fmt.Errorf("compress: invalid LZW sequence")
		}
		prevEntry := d.dictionary[previous]
		entry := make([]byte, len(prevEntry)+1)
		copy(entry, prevEntry)
		entry[len(prevEntry)] = prevEntry[0]
		return entry, nil
	default:
		return nil, fmt.Errorf("compress: invalid LZW code: %d", code)
	}
}

func (d *lzwDecoder) addEntry(previousCode int, firstByte byte) {
	if d.nextCode >= 4096 {
		return
	}
	prevEntry := d.dictionary[previousCode]
	entry := make([]byte, len(prevEntry)+1)
	copy(entry, prevEntry)
	entry[len(prevEntry)] = firstByte
	d.dictionary = append(d.dictionary, entry)
	d.nextCode++
}

func (d *lzwDecoder) reset() {
	d.dictionary = d.dictionary[:258]
	d.nextCode = 258
}

// lzwBitReader reads variable-length codes from a byte stream,
// least-significant-bit first.
type lzwBitReader struct {
	data      []byte
	byteIndex int
	bitOffset uint8
}

func newLZWBitReader(data []byte) *lzwBitReader {
	return &lzwBitReader{data: data}
}

func (r *lzwBitReader) readBits(count uint8) (uint16, bool) {
	if count > 16 || count == 0 {
		return 0, false
	}

	var result uint16
	var bitsRead uint8

	for bitsRead < count {
		if r.byteIndex >= len(r.data) {
			return 0, false
		}

		availableBits := 8 - r.bitOffset
		neededBits := count - bitsRead
		bitsToRead := availableBits
		if neededBits < bitsToRead {
			bitsToRead = neededBits
		}

		var mask byte
		if bitsToRead == 8 {
			mask = 0xFF
		} else {
			mask = (1 << bitsToRead) - 1
		}
		bits := (r.data[r.byteIndex] >> r.bitOffset) & mask

		result |= uint16(bits) << bitsRead
		bitsRead += bitsToRead
		r.bitOffset += bitsToRead

		if r.bitOffset >= 8 {
			r.bitOffset = 0
			r.byteIndex++
		}
	}

	return result, true
}
