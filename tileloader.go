package rastertile

import (
	"context"
	"time"

	"github.com/twpayne/go-rastertile/compress"
)

// A TileLoader decodes individual tiles of a single IFD: it locates a
// tile's byte range via the TileOffsets/TileByteCounts tag arrays, reads the
// compressed bytes, decompresses them, and reverses the horizontal
// predictor if the IFD declares one.
type TileLoader struct {
	reader     *Reader
	ifd        *IFD
	offsets    []uint64
	byteCounts []uint64
}

// NewTileLoader returns a TileLoader for ifd, reading tile bytes through reader.
func NewTileLoader(reader *Reader, ifd *IFD) (*TileLoader, error) {
	if !ifd.IsTiled() {
		return nil, UnsupportedError("IFD does not describe a tiled image")
	}

	offsetsEntry, ok := ifd.Entry(TagTileOffsets)
	if !ok {
		return nil, MissingTagError(TagTileOffsets)
	}
	byteCountsEntry, ok := ifd.Entry(TagTileByteCounts)
	if !ok {
		return nil, MissingTagError(TagTileByteCounts)
	}

	offsets, err := reader.readTagU64sWidened(offsetsEntry)
	if err != nil {
		return nil, err
	}
	byteCounts, err := reader.readTagU64sWidened(byteCountsEntry)
	if err != nil {
		return nil, err
	}

	return &TileLoader{reader: reader, ifd: ifd, offsets: offsets, byteCounts: byteCounts}, nil
}

// TileCount returns the total number of tiles in the IFD.
func (l *TileLoader) TileCount() (uint64, error) {
	across, ok := l.ifd.TilesAcross()
	if !ok {
		return 0, InvalidFormatError("missing tile layout")
	}
	down, ok := l.ifd.TilesDown()
	if !ok {
		return 0, InvalidFormatError("missing tile layout")
	}
	return across * down, nil
}

// bytesPerSample returns the byte width of a single sample, from
// BitsPerSample rounded up to a whole byte.
func (l *TileLoader) bytesPerSample() uint64 {
	bits, ok := l.ifd.BitsPerSample()
	if !ok || bits == 0 {
		bits = 8
	}
	return (bits + 7) / 8
}

// LoadTile loads, decompresses, and predictor-reverses the tile at id.
func (l *TileLoader) LoadTile(ctx context.Context, id TileID) ([]byte, error) {
	defer observeTileLoadDuration(time.Now())

	index := uint64(id)
	if index >= uint64(len(l.offsets)) || index >= uint64(len(l.byteCounts)) {
		return nil, OutOfBoundsError("tile index out of range")
	}
	offset := l.offsets[index]
	byteCount := l.byteCounts[index]

	if byteCount == 0 {
		return l.emptyTile()
	}

	compressed := make([]byte, byteCount)
	if _, err := l.reader.ReadAt(compressed, int64(offset)); err != nil {
		return nil, err
	}

	return l.decompressAndUnpredict(compressed)
}

func (l *TileLoader) emptyTile() ([]byte, error) {
	tileDims, ok := l.ifd.TileDimensions()
	if !ok {
		return nil, InvalidFormatError("missing tile dimensions")
	}
	size := tileDims.Width * tileDims.Height * l.ifd.SamplesPerPixel() * l.bytesPerSample()
	return make([]byte, size), nil
}

func (l *TileLoader) decompressAndUnpredict(compressed []byte) ([]byte, error) {
	compression, err := compress.FromTag(uint64(l.ifd.Compression()))
	if err != nil {
		return nil, UnsupportedError(err.Error())
	}

	decompressed, err := compression.Decompress(compressed)
	if err != nil {
		return nil, wrapError(KindInvalidFormat, err)
	}

	if l.ifd.Predictor() == 2 {
		tileDims, ok := l.ifd.TileDimensions()
		if !ok {
			return nil, InvalidFormatError("missing tile dimensions")
		}
		rowBytes := int(tileDims.Width * l.ifd.SamplesPerPixel() * l.bytesPerSample())
		compress.ApplyHorizontalPredictor(decompressed, rowBytes, int(tileDims.Height))
	}

	return decompressed, nil
}
