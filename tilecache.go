package rastertile

import (
	"context"
	"errors"

	"github.com/maypok86/otter/v2"
	"go.uber.org/zap"
)

// A tileCacheKey identifies a decoded tile within a single IFD.
type tileCacheKey struct {
	ifdNumber int
	tileID    TileID
}

// A Tile is a single decoded, predictor-reversed tile's raw sample bytes.
type Tile struct {
	ID     TileID
	Pixels []byte
}

// A tileLoaderFunc decodes and returns the tile for key, on a cache miss.
type tileLoaderFunc func(ctx context.Context, key tileCacheKey) (*Tile, error)

// A TileCache is a bounded, approximately-recency-ordered cache of decoded
// tiles, shared across reads against a single open file.
type TileCache struct {
	cache *otter.Cache[tileCacheKey, *Tile]
	load  tileLoaderFunc
}

// TileCacheOption configures a [TileCache].
type TileCacheOption func(*tileCacheOptions)

type tileCacheOptions struct {
	maximumSize int
	logger      *zap.Logger
}

// WithTileCacheSize sets the maximum number of tiles the cache holds. The
// default is 256.
func WithTileCacheSize(n int) TileCacheOption {
	return func(o *tileCacheOptions) {
		o.maximumSize = n
	}
}

// WithTileCacheLogger sets the logger used to report evictions. The default
// is a no-op logger.
func WithTileCacheLogger(logger *zap.Logger) TileCacheOption {
	return func(o *tileCacheOptions) {
		o.logger = logger
	}
}

// NewTileCache returns a new TileCache that calls load on a miss.
func NewTileCache(load tileLoaderFunc, options ...TileCacheOption) (*TileCache, error) {
	opts := tileCacheOptions{maximumSize: 256, logger: zap.NewNop()}
	for _, option := range options {
		option(&opts)
	}
	if opts.maximumSize < 1 {
		opts.maximumSize = 1
	}

	logger := opts.logger
	cache, err := otter.New(&otter.Options[tileCacheKey, *Tile]{
		MaximumSize: opts.maximumSize,
		OnDeletion: func(e otter.DeletionEvent[tileCacheKey, *Tile]) {
			logger.Debug("tile evicted",
				zap.Int("ifd", e.Key.ifdNumber),
				zap.Uint64("tile_id", uint64(e.Key.tileID)))
		},
	})
	if err != nil {
		return nil, IOError(err)
	}
	return &TileCache{cache: cache, load: load}, nil
}

// Get returns the tile for (ifdNumber, tileID), loading and caching it on a
// miss.
func (c *TileCache) Get(ctx context.Context, ifdNumber int, tileID TileID) (*Tile, error) {
	key := tileCacheKey{ifdNumber: ifdNumber, tileID: tileID}
	if _, ok := c.cache.GetIfPresent(key); ok {
		cacheHitsTotal.Inc()
	} else {
		cacheMissesTotal.Inc()
	}
	tile, err := c.cache.Get(ctx, key, otter.LoaderFunc[tileCacheKey, *Tile](c.load))
	if err != nil {
		if errors.Is(err, otter.ErrNotFound) {
			return nil, OutOfBoundsError("tile not found")
		}
		return nil, err
	}
	return tile, nil
}

// Peek returns the tile for (ifdNumber, tileID) only if it is already
// cached, without triggering a load.
func (c *TileCache) Peek(ifdNumber int, tileID TileID) (*Tile, bool) {
	key := tileCacheKey{ifdNumber: ifdNumber, tileID: tileID}
	return c.cache.GetIfPresent(key)
}

// Put inserts an already-decoded tile, such as one produced by a background
// prefetch worker, without going through the loader.
func (c *TileCache) Put(ifdNumber int, tile *Tile) {
	key := tileCacheKey{ifdNumber: ifdNumber, tileID: tile.ID}
	c.cache.Set(key, tile)
}

// Len returns the number of tiles currently cached.
func (c *TileCache) Len() int {
	return c.cache.EstimatedSize()
}

// Invalidate removes all cached tiles.
func (c *TileCache) Invalidate() {
	c.cache.InvalidateAll()
}
