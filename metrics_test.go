package rastertile

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func histogramSampleCount(t *testing.T, h prometheus.Histogram) uint64 {
	t.Helper()
	var m dto.Metric
	assert.NoError(t, h.Write(&m))
	return m.GetHistogram().GetSampleCount()
}

func TestTileCacheGetRecordsHitsAndMisses(t *testing.T) {
	before := testutil.ToFloat64(cacheMissesTotal)

	cache, err := NewTileCache(func(ctx context.Context, key tileCacheKey) (*Tile, error) {
		return &Tile{ID: key.tileID}, nil
	}, WithTileCacheSize(8))
	assert.NoError(t, err)

	_, err = cache.Get(t.Context(), 0, TileID(1))
	assert.NoError(t, err)
	assert.Equal(t, before+1, testutil.ToFloat64(cacheMissesTotal))

	beforeHits := testutil.ToFloat64(cacheHitsTotal)
	_, err = cache.Get(t.Context(), 0, TileID(1))
	assert.NoError(t, err)
	assert.Equal(t, beforeHits+1, testutil.ToFloat64(cacheHitsTotal))
}

func TestTileLoaderLoadTileObservesDuration(t *testing.T) {
	before := histogramSampleCount(t, tileLoadDuration)

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

	_, err = loader.LoadTile(t.Context(), TileID(0))
	assert.NoError(t, err)

	assert.Equal(t, before+1, histogramSampleCount(t, tileLoadDuration))
}
