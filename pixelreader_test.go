package rastertile

import (
	"testing"

	"github.com/alecthomas/assert/v2"
)

func newTiledIFD(width, height, tileWidth, tileHeight uint64) *IFD {
	ifd := NewIFD(0, 0)
	ifd.AddEntry(NewIFDEntry(TagImageWidth, FieldTypeLong, 1, width))
	ifd.AddEntry(NewIFDEntry(TagImageLength, FieldTypeLong, 1, height))
	ifd.AddEntry(NewIFDEntry(TagTileWidth, FieldTypeLong, 1, tileWidth))
	ifd.AddEntry(NewIFDEntry(TagTileLength, FieldTypeLong, 1, tileHeight))
	return ifd
}

func TestPixelReaderLocate(t *testing.T) {
	ifd := newTiledIFD(512, 512, 256, 256)
	pr, err := NewPixelReader(ifd, nil, nil)
	assert.NoError(t, err)

	for _, tc := range []struct {
		coord          PixelCoord
		expectedTile   TileID
		expectedSample uint64
	}{
		{coord: PixelCoord{X: 0, Y: 0}, expectedTile: 0, expectedSample: 0},
		{coord: PixelCoord{X: 300, Y: 0}, expectedTile: 1, expectedSample: 44},
		{coord: PixelCoord{X: 0, Y: 300}, expectedTile: 2, expectedSample: 44 * 256},
		{coord: PixelCoord{X: 300, Y: 300}, expectedTile: 3, expectedSample: 44*256 + 44},
		{coord: PixelCoord{X: 511, Y: 511}, expectedTile: 3, expectedSample: 255*256 + 255},
	} {
		tileID, sampleIndex, err := pr.Locate(tc.coord)
		assert.NoError(t, err)
		assert.Equal(t, tc.expectedTile, tileID)
		assert.Equal(t, tc.expectedSample, sampleIndex)
	}
}

func TestPixelReaderLocateOutOfBounds(t *testing.T) {
	ifd := newTiledIFD(512, 512, 256, 256)
	pr, err := NewPixelReader(ifd, nil, nil)
	assert.NoError(t, err)

	_, _, err = pr.Locate(PixelCoord{X: 512, Y: 0})
	assert.Error(t, err)
	assert.True(t, IsKind(err, KindOutOfBounds))
}

func TestDecodeSample(t *testing.T) {
	assert.Equal(t, 200.0, decodeSample([]byte{200}, DataTypeU8))
	assert.Equal(t, -56.0, decodeSample([]byte{200}, DataTypeI8))
	assert.Equal(t, 258.0, decodeSample([]byte{2, 1}, DataTypeU16))
}
