package rastertile

import (
	"bytes"
	"encoding/binary"
	"os"
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

// writeClassicTIFFEntry appends one 12-byte IFD entry in classic (32-bit)
// TIFF layout, little-endian, assuming count 1 and an inline value.
func writeClassicTIFFEntry(buf *bytes.Buffer, tag, fieldType uint16, value uint32) {
	binary.Write(buf, binary.LittleEndian, tag)
	binary.Write(buf, binary.LittleEndian, fieldType)
	binary.Write(buf, binary.LittleEndian, uint32(1))
	binary.Write(buf, binary.LittleEndian, value)
}

// buildSingleTilePackBitsTIFF writes a minimal classic TIFF with one 4x4,
// 8-bit, single-sample tiled IFD, PackBits-compressed with a horizontal
// predictor, to a temp file and returns its path.
func buildSingleTilePackBitsTIFF(t *testing.T) string {
	t.Helper()

	const ifdEntryCount = 10
	const headerSize = 8
	ifdSize := 2 + ifdEntryCount*12 + 4
	tileDataOffset := headerSize + ifdSize

	// Horizontally-differenced tile data: row-major, 4 rows of 4 bytes,
	// each row's first byte absolute and the rest a delta from its left
	// neighbor. Reversing the predictor recovers the rows below.
	diffTile := []byte{
		10, 10, 10, 10, // -> 10, 20, 30, 40
		1, 2, 3, 4, // -> 1, 3, 6, 10
		100, 1, 1, 1, // -> 100, 101, 102, 103
		0, 0, 0, 0, // -> 0, 0, 0, 0
	}
	packed := append([]byte{byte(len(diffTile) - 1)}, diffTile...)

	var buf bytes.Buffer
	buf.WriteString("II")
	binary.Write(&buf, binary.LittleEndian, uint16(42))
	binary.Write(&buf, binary.LittleEndian, uint32(headerSize))

	binary.Write(&buf, binary.LittleEndian, uint16(ifdEntryCount))
	writeClassicTIFFEntry(&buf, TagImageWidth, FieldTypeLong, 4)
	writeClassicTIFFEntry(&buf, TagImageLength, FieldTypeLong, 4)
	writeClassicTIFFEntry(&buf, TagBitsPerSample, FieldTypeShort, 8)
	writeClassicTIFFEntry(&buf, TagCompression, FieldTypeShort, 32773)
	writeClassicTIFFEntry(&buf, TagSamplesPerPixel, FieldTypeShort, 1)
	writeClassicTIFFEntry(&buf, TagPredictor, FieldTypeShort, 2)
	writeClassicTIFFEntry(&buf, TagTileWidth, FieldTypeLong, 4)
	writeClassicTIFFEntry(&buf, TagTileLength, FieldTypeLong, 4)
	writeClassicTIFFEntry(&buf, TagTileOffsets, FieldTypeLong, uint32(tileDataOffset))
	writeClassicTIFFEntry(&buf, TagTileByteCounts, FieldTypeLong, uint32(len(packed)))
	binary.Write(&buf, binary.LittleEndian, uint32(0)) // next IFD offset

	buf.Write(packed)

	path := t.TempDir() + "/single-tile.tif"
	assert.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	return path
}

func TestTileLoaderLoadTileDecompressesAndUnpredicts(t *testing.T) {
	path := buildSingleTilePackBitsTIFF(t)

	reader, err := OpenReader(path)
	assert.NoError(t, err)
	defer reader.Close()

	tiff, err := reader.Read()
	assert.NoError(t, err)
	ifd, ok := tiff.MainIFD()
	assert.True(t, ok)

	loader, err := NewTileLoader(reader, ifd)
	assert.NoError(t, err)

	count, err := loader.TileCount()
	assert.NoError(t, err)
	assert.Equal(t, uint64(1), count)

	pixels, err := loader.LoadTile(t.Context(), TileID(0))
	assert.NoError(t, err)
	assert.Equal(t, []byte{
		10, 20, 30, 40,
		1, 3, 6, 10,
		100, 101, 102, 103,
		0, 0, 0, 0,
	}, pixels)
}

func TestTiffDescribeSummarizesIFDs(t *testing.T) {
	path := buildSingleTilePackBitsTIFF(t)

	reader, err := OpenReader(path)
	assert.NoError(t, err)
	defer reader.Close()

	tiff, err := reader.Read()
	assert.NoError(t, err)

	summary := tiff.Describe()
	assert.True(t, strings.Contains(summary, "classic TIFF, 1 IFD(s)"))
	assert.True(t, strings.Contains(summary, "IFD 0: 4x4"))
	assert.True(t, strings.Contains(summary, "tiled 4x4"))
	assert.True(t, strings.Contains(summary, "geotiff=no"))
}

func TestTileLoaderLoadTileOutOfRange(t *testing.T) {
	path := buildSingleTilePackBitsTIFF(t)

	reader, err := OpenReader(path)
	assert.NoError(t, err)
	defer reader.Close()

	tiff, err := reader.Read()
	assert.NoError(t, err)
	ifd, ok := tiff.MainIFD()
	assert.True(t, ok)

	loader, err := NewTileLoader(reader, ifd)
	assert.NoError(t, err)

	_, err = loader.LoadTile(t.Context(), TileID(1))
	assert.Error(t, err)
	assert.True(t, IsKind(err, KindOutOfBounds))
}
