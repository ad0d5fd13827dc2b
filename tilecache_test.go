package rastertile

import (
	"context"
	"testing"

	"github.com/alecthomas/assert/v2"
)

func TestTileCacheGetLoadsOnMiss(t *testing.T) {
	var loads int
	cache, err := NewTileCache(func(ctx context.Context, key tileCacheKey) (*Tile, error) {
		loads++
		return &Tile{ID: key.tileID, Pixels: []byte{byte(key.tileID)}}, nil
	}, WithTileCacheSize(8))
	assert.NoError(t, err)

	ctx := t.Context()
	tile, err := cache.Get(ctx, 0, TileID(5))
	assert.NoError(t, err)
	assert.Equal(t, TileID(5), tile.ID)
	assert.Equal(t, 1, loads)

	tile, err = cache.Get(ctx, 0, TileID(5))
	assert.NoError(t, err)
	assert.Equal(t, TileID(5), tile.ID)
	assert.Equal(t, 1, loads) // second lookup is a cache hit
}

func TestTileCachePeekMissesUntilLoaded(t *testing.T) {
	cache, err := NewTileCache(func(ctx context.Context, key tileCacheKey) (*Tile, error) {
		return &Tile{ID: key.tileID}, nil
	}, WithTileCacheSize(8))
	assert.NoError(t, err)

	_, ok := cache.Peek(0, TileID(1))
	assert.False(t, ok)

	_, err = cache.Get(t.Context(), 0, TileID(1))
	assert.NoError(t, err)

	_, ok = cache.Peek(0, TileID(1))
	assert.True(t, ok)
}

func TestTileCachePutBypassesLoader(t *testing.T) {
	var loads int
	cache, err := NewTileCache(func(ctx context.Context, key tileCacheKey) (*Tile, error) {
		loads++
		return &Tile{ID: key.tileID}, nil
	}, WithTileCacheSize(8))
	assert.NoError(t, err)

	cache.Put(0, &Tile{ID: TileID(9), Pixels: []byte{42}})

	tile, err := cache.Get(t.Context(), 0, TileID(9))
	assert.NoError(t, err)
	assert.Equal(t, []byte{42}, tile.Pixels)
	assert.Equal(t, 0, loads)
}

func TestTileCacheSizeClampedToOne(t *testing.T) {
	cache, err := NewTileCache(func(ctx context.Context, key tileCacheKey) (*Tile, error) {
		return &Tile{ID: key.tileID}, nil
	}, WithTileCacheSize(0))
	assert.NoError(t, err)

	_, err = cache.Get(t.Context(), 0, TileID(1))
	assert.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	cache, err = NewTileCache(func(ctx context.Context, key tileCacheKey) (*Tile, error) {
		return &Tile{ID: key.tileID}, nil
	}, WithTileCacheSize(-5))
	assert.NoError(t, err)

	_, err = cache.Get(t.Context(), 0, TileID(1))
	assert.NoError(t, err)
	assert.Equal(t, 1, cache.Len())
}

func TestTileCacheInvalidate(t *testing.T) {
	cache, err := NewTileCache(func(ctx context.Context, key tileCacheKey) (*Tile, error) {
		return &Tile{ID: key.tileID}, nil
	}, WithTileCacheSize(8))
	assert.NoError(t, err)

	_, err = cache.Get(t.Context(), 0, TileID(1))
	assert.NoError(t, err)
	assert.Equal(t, 1, cache.Len())

	cache.Invalidate()
	assert.Equal(t, 0, cache.Len())
}
