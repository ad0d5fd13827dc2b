package rastertile

import (
	"context"
	"testing"
	"time"

	"github.com/alecthomas/assert/v2"
)

func TestAccessPatternDetectsSequential(t *testing.T) {
	ap := NewAccessPattern(10)
	ap.Record(0)
	ap.Record(1)
	ap.Record(2)

	predicted := ap.PredictNext()
	assert.Equal(t, maxPredictedTiles, len(predicted))
	assert.Equal(t, TileID(3), predicted[0])
	assert.Equal(t, TileID(18), predicted[len(predicted)-1])
}

func TestAccessPatternDetectsRasterScan(t *testing.T) {
	ap := NewAccessPattern(10)
	ap.Record(5)
	ap.Record(15)
	ap.Record(25)

	predicted := ap.PredictNext()
	assert.Equal(t, maxPredictedTiles, len(predicted))
	assert.Equal(t, TileID(35), predicted[0])
	assert.Equal(t, TileID(25+16*10), predicted[len(predicted)-1])
}

func TestAccessPatternDetectsSpatialLocality(t *testing.T) {
	ap := NewAccessPattern(4)
	ap.Record(0)
	ap.Record(1)
	ap.Record(3)

	predicted := ap.PredictNext()
	assert.Equal(t, []TileID{7, 11, 15}, predicted)
}

func TestAccessPatternNoPatternBelowMinimum(t *testing.T) {
	ap := NewAccessPattern(10)
	ap.Record(0)
	ap.Record(5)
	assert.Zero(t, len(ap.PredictNext()))
}

func TestAccessPatternDisabledConfigNeverPredicts(t *testing.T) {
	ap := NewAccessPatternWithConfig(10, DisabledPrefetchConfig())
	ap.Record(0)
	ap.Record(1)
	ap.Record(2)
	assert.Zero(t, len(ap.PredictNext()))
}

func TestAccessPatternAggressiveConfigWidensHorizon(t *testing.T) {
	ap := NewAccessPatternWithConfig(10, AggressivePrefetchConfig())
	ap.Record(0)
	ap.Record(1)
	ap.Record(2)
	predicted := ap.PredictNext()
	assert.Equal(t, maxPredictedTiles*2, len(predicted))
	assert.Equal(t, TileID(3), predicted[0])
}

func TestPrefetchPoolLoadsAndDrains(t *testing.T) {
	pool := NewPrefetchPool(func(ctx context.Context, ifdNumber int, id TileID) ([]byte, error) {
		return []byte{byte(id)}, nil
	}, WithPoolWorkers(2))
	defer pool.Close()

	pool.Submit(context.Background(), 0, []TileID{1, 2, 3})

	var results []PrefetchResult
	for start := time.Now(); len(results) < 3 && time.Since(start) < time.Second; {
		results = append(results, pool.DrainResults()...)
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 3, len(results))
	for _, r := range results {
		assert.Equal(t, 0, r.IFDNumber)
	}
}

func TestPrefetchPoolRoutesResultsByIFD(t *testing.T) {
	pool := NewPrefetchPool(func(ctx context.Context, ifdNumber int, id TileID) ([]byte, error) {
		return []byte{byte(ifdNumber)}, nil
	}, WithPoolWorkers(2))
	defer pool.Close()

	pool.Submit(context.Background(), 0, []TileID{1})
	pool.Submit(context.Background(), 1, []TileID{1})

	byIFD := make(map[int]PrefetchResult)
	for start := time.Now(); len(byIFD) < 2 && time.Since(start) < time.Second; {
		for _, r := range pool.DrainResults() {
			byIFD[r.IFDNumber] = r
		}
		time.Sleep(5 * time.Millisecond)
	}
	assert.Equal(t, 2, len(byIFD))
	assert.Equal(t, []byte{0}, byIFD[0].Data)
	assert.Equal(t, []byte{1}, byIFD[1].Data)
}
