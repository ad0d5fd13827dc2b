package compress

import (
	"bytes"
	"image"
	"image/jpeg"
)

// decompressJPEG decodes a baseline JPEG tile (TIFF Compression tag 7).
// Tiles carrying shared quantization/Huffman tables outside the tile stream
// itself are not supported; each tile is expected to be a complete,
// self-contained JPEG stream.
func decompressJPEG(data []byte) ([]byte, error) {
	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return pixelBytes(img)
}

func pixelBytes(img image.Image) ([]byte, error) {
	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()

	switch src := img.(type) {
	case *image.Gray:
		out := make([]byte, width*height)
		for y := 0; y < height; y++ {
			copy(out[y*width:(y+1)*width], src.Pix[y*src.Stride:y*src.Stride+width])
		}
		return out, nil
	case *image.YCbCr:
		out := make([]byte, width*height*3)
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := src.At(x, y).RGBA()
				out[i] = byte(r >> 8)
				out[i+1] = byte(g >> 8)
				out[i+2] = byte(b >> 8)
				i += 3
			}
		}
		return out, nil
	default:
		out := make([]byte, width*height*3)
		i := 0
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			for x := bounds.Min.X; x < bounds.Max.X; x++ {
				r, g, b, _ := img.At(x, y).RGBA()
				out[i] = byte(r >> 8)
				out[i+1] = byte(g >> 8)
				out[i+2] = byte(b >> 8)
				i += 3
			}
		}
		return out, nil
	}
}
