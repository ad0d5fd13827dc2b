package rastertile

import (
	"context"
	"encoding/binary"
	"math"
)

// A PixelReader maps (x,y) image coordinates to a tile id and intra-tile
// byte offset, and extracts typed samples from decompressed tile bytes.
//
// SamplesPerPixel > 1 is not supported: sample reads against such an IFD
// fail with a [KindUnsupported] error.
type PixelReader struct {
	ifd         *IFD
	loader      *TileLoader
	cache       *TileCache
	dims        Dimensions
	tileDims    Dimensions
	tilesAcross uint64
}

// NewPixelReader returns a PixelReader over ifd's tiles, using cache to
// avoid redundant decompression. cache may be nil, in which case every read
// decodes its tile directly through loader.
func NewPixelReader(ifd *IFD, loader *TileLoader, cache *TileCache) (*PixelReader, error) {
	dims, ok := ifd.Dimensions()
	if !ok {
		return nil, InvalidFormatError("missing image dimensions")
	}
	tileDims, ok := ifd.TileDimensions()
	if !ok {
		return nil, InvalidFormatError("missing tile dimensions")
	}
	tilesAcross, ok := ifd.TilesAcross()
	if !ok {
		return nil, InvalidFormatError("missing tile layout")
	}

	return &PixelReader{
		ifd:         ifd,
		loader:      loader,
		cache:       cache,
		dims:        dims,
		tileDims:    tileDims,
		tilesAcross: tilesAcross,
	}, nil
}

// Locate maps a pixel coordinate to its tile id and the pixel's sample
// index within that tile.
func (p *PixelReader) Locate(coord PixelCoord) (TileID, uint64, error) {
	if coord.X >= p.dims.Width || coord.Y >= p.dims.Height {
		return 0, 0, OutOfBoundsError("pixel coordinate outside image bounds")
	}
	tileID := TileID((coord.Y/p.tileDims.Height)*p.tilesAcross + coord.X/p.tileDims.Width)
	pixelIndex := (coord.Y % p.tileDims.Height) * p.tileDims.Width + coord.X % p.tileDims.Width
	return tileID, pixelIndex, nil
}

func (p *PixelReader) bytesPerSample() (int, error) {
	bits, ok := p.ifd.BitsPerSample()
	if !ok {
		bits = 8
	}
	if p.ifd.SamplesPerPixel() > 1 {
		return 0, UnsupportedError("samples_per_pixel > 1 is not supported")
	}
	return int((bits + 7) / 8), nil
}

// tileBytes returns the decompressed bytes for tileID, via the cache when
// one is configured.
func (p *PixelReader) tileBytes(ctx context.Context, ifdNumber int, tileID TileID) ([]byte, error) {
	if p.cache != nil {
		tile, err := p.cache.Get(ctx, ifdNumber, tileID)
		if err != nil {
			return nil, err
		}
		return tile.Pixels, nil
	}
	return p.loader.LoadTile(ctx, tileID)
}

// ReadSample reads a single typed sample at coord, dispatching on dataType.
// Multi-byte samples are always interpreted as little-endian within the
// decompressed tile buffer, regardless of the file's declared byte order.
func (p *PixelReader) ReadSample(ctx context.Context, ifdNumber int, coord PixelCoord, dataType DataType) (float64, error) {
	tileID, pixelIndex, err := p.Locate(coord)
	if err != nil {
		return 0, err
	}

	bytesPerSample, err := p.bytesPerSample()
	if err != nil {
		return 0, err
	}

	data, err := p.tileBytes(ctx, ifdNumber, tileID)
	if err != nil {
		return 0, err
	}

	byteOffset := pixelIndex * uint64(bytesPerSample)
	if byteOffset+uint64(bytesPerSample) > uint64(len(data)) {
		return 0, OutOfBoundsError("sample offset outside decompressed tile")
	}
	return decodeSample(data[byteOffset:byteOffset+uint64(bytesPerSample)], dataType), nil
}

// decodeSample interprets a raw little-endian sample of the width dataType
// implies. Multi-byte samples are always little-endian within the
// decompressed buffer, regardless of the file's declared byte order.
func decodeSample(sample []byte, dataType DataType) float64 {
	switch dataType {
	case DataTypeU8:
		return float64(sample[0])
	case DataTypeI8:
		return float64(int8(sample[0]))
	case DataTypeU16:
		return float64(binary.LittleEndian.Uint16(sample))
	case DataTypeI16:
		return float64(int16(binary.LittleEndian.Uint16(sample)))
	case DataTypeU32:
		return float64(binary.LittleEndian.Uint32(sample))
	case DataTypeI32:
		return float64(int32(binary.LittleEndian.Uint32(sample)))
	case DataTypeF32:
		return float64(math.Float32frombits(binary.LittleEndian.Uint32(sample)))
	case DataTypeF64:
		return math.Float64frombits(binary.LittleEndian.Uint64(sample))
	default:
		return 0
	}
}
