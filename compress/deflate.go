package compress

import (
	"bytes"
	"io"

	"github.com/klauspost/compress/zlib"
)

// decompressDeflate decodes a zlib-wrapped Deflate stream (TIFF Compression
// tag 8, "Adobe Deflate"/"ZIP").
func decompressDeflate(data []byte) ([]byte, error) {
	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return out, nil
}
