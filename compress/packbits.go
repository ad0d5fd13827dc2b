package compress

import "fmt"

// decompressPackBits decodes the PackBits run-length scheme: each control
// byte, read as a signed 8-bit integer, is either a literal-run length
// (0..127, meaning header+1 literal bytes follow), a repeat count
// (-127..-1, meaning the following single byte repeats 1-header times), or
// the no-op value -128.
func decompressPackBits(data []byte) ([]byte, error) {
	var output []byte
	i := 0
	for i < len(data) {
		header := int8(data[i])
		i++

		switch {
		case header == -128:
			continue
		case header >= 0:
			count := int(header) + 1
			if i+count > len(data) {
				return nil, fmt.Errorf("compress: packbits literal run overruns input")
			}
			output = append(output, data[i:i+count]...)
			i += count
		default:
			if i >= len(data) {
				return nil, fmt.Errorf("compress: packbits repeat run overruns input")
			}
			count := 1 - int(header)
			b := data[i]
			i++
			for j := 0; j < count; j++ {
				output = append(output, b)
			}
		}
	}
	return output, nil
}
