// Package compress implements the tile decompressors used by a (Big)TIFF
// tile loader: LZW, Deflate, PackBits and JPEG, each sharing a single
// Decompress([]byte) ([]byte, error) contract.
package compress

import "fmt"

// A Compression identifies a TIFF tile compression scheme.
type Compression int

const (
	None Compression = iota
	Deflate
	LZW
	PackBits
	JPEG
)

// FromTag maps a TIFF Compression tag value to a [Compression]. Unrecognized
// values return an error.
func FromTag(value uint64) (Compression, error) {
	switch value {
	case 1:
		return None, nil
	case 5:
		return LZW, nil
	case 8:
		return Deflate, nil
	case 32773:
		return PackBits, nil
	case 7:
		return JPEG, nil
	default:
		return 0, fmt.Errorf("compress: unsupported compression type %d", value)
	}
}

// Name returns the human-readable name of c.
func (c Compression) Name() string {
	switch c {
	case None:
		return "None"
	case Deflate:
		return "Deflate/ZIP"
	case LZW:
		return "LZW"
	case PackBits:
		return "PackBits"
	case JPEG:
		return "JPEG"
	default:
		return "Unknown"
	}
}

// Decompress decompresses data according to c.
func (c Compression) Decompress(data []byte) ([]byte, error) {
	switch c {
	case None:
		out := make([]byte, len(data))
		copy(out, data)
		return out, nil
	case Deflate:
		return decompressDeflate(data)
	case LZW:
		return decompressLZW(data)
	case PackBits:
		return decompressPackBits(data)
	case JPEG:
		return decompressJPEG(data)
	default:
		return nil, fmt.Errorf("compress: unknown compression %d", c)
	}
}
