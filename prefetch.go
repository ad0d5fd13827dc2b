package rastertile

import (
	"context"
	"sync"
)

const (
	accessHistorySize  = 8
	minPatternLength   = 3
	maxPredictedTiles  = 16
	spatialGridSize    = 4
	defaultPoolWorkers = 4
	resultChannelSize  = 32
)

// A PrefetchConfig tunes how aggressively an [AccessPattern] predicts
// upcoming tiles.
type PrefetchConfig struct {
	enabled  bool
	maxTiles int
}

// DefaultPrefetchConfig predicts up to 16 tiles ahead on a detected
// sequential or raster-scan pattern, matching the engine's baseline
// heuristics.
func DefaultPrefetchConfig() PrefetchConfig {
	return PrefetchConfig{enabled: true, maxTiles: maxPredictedTiles}
}

// DisabledPrefetchConfig turns off prediction entirely: PredictNext always
// returns nil, so a Service configured with it never submits speculative
// loads.
func DisabledPrefetchConfig() PrefetchConfig {
	return PrefetchConfig{enabled: false}
}

// AggressivePrefetchConfig doubles the default prediction horizon, trading
// more speculative tile decodes for a better chance of a warm cache on
// fast, regular scan patterns.
func AggressivePrefetchConfig() PrefetchConfig {
	return PrefetchConfig{enabled: true, maxTiles: maxPredictedTiles * 2}
}

// An AccessPattern tracks recent tile accesses within a single IFD and
// predicts which tiles are likely to be read next, trying in order a strict
// sequential pattern, a raster-scan (row-stride) pattern, and finally a
// clipped spatial neighborhood around the most recent access.
type AccessPattern struct {
	mu          sync.Mutex
	history     []TileID
	tilesPerRow uint64
	config      PrefetchConfig
}

// NewAccessPattern returns an AccessPattern for an image with the given
// number of tiles per row, using [DefaultPrefetchConfig].
func NewAccessPattern(tilesPerRow uint64) *AccessPattern {
	return NewAccessPatternWithConfig(tilesPerRow, DefaultPrefetchConfig())
}

// NewAccessPatternWithConfig returns an AccessPattern for an image with the
// given number of tiles per row, tuned by config.
func NewAccessPatternWithConfig(tilesPerRow uint64, config PrefetchConfig) *AccessPattern {
	return &AccessPattern{tilesPerRow: tilesPerRow, config: config}
}

// Record appends id to the access history, discarding the oldest entry once
// the history exceeds accessHistorySize.
func (p *AccessPattern) Record(id TileID) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.history) >= accessHistorySize {
		p.history = p.history[1:]
	}
	p.history = append(p.history, id)
}

// PredictNext returns the tile ids likely to be accessed after the current
// history, or nil if no pattern is detected.
func (p *AccessPattern) PredictNext() []TileID {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.config.enabled {
		return nil
	}
	if len(p.history) < minPatternLength {
		return nil
	}
	if ids := p.detectSequential(); ids != nil {
		return ids
	}
	if ids := p.detectRasterScan(); ids != nil {
		return ids
	}
	return p.detectSpatialLocality()
}

func (p *AccessPattern) detectSequential() []TileID {
	for i := 1; i < len(p.history); i++ {
		if p.history[i] != p.history[i-1]+1 {
			return nil
		}
	}
	last := p.history[len(p.history)-1]
	ids := make([]TileID, p.config.maxTiles)
	for i := 0; i < p.config.maxTiles; i++ {
		ids[i] = last + TileID(i+1)
	}
	return ids
}

func (p *AccessPattern) detectRasterScan() []TileID {
	last := p.history[len(p.history)-1]
	secondLast := p.history[len(p.history)-2]
	if last <= secondLast {
		return nil
	}
	diff := last - secondLast

	switch {
	case diff == 1:
		ids := make([]TileID, p.config.maxTiles)
		for i := 0; i < p.config.maxTiles; i++ {
			ids[i] = last + TileID(i+1)
		}
		return ids
	case uint64(diff) == p.tilesPerRow:
		ids := make([]TileID, p.config.maxTiles)
		for i := 0; i < p.config.maxTiles; i++ {
			ids[i] = last + TileID(uint64(i+1)*p.tilesPerRow)
		}
		return ids
	default:
		return nil
	}
}

func (p *AccessPattern) detectSpatialLocality() []TileID {
	if len(p.history) == 0 || p.tilesPerRow == 0 {
		return nil
	}
	last := p.history[len(p.history)-1]
	tileX := uint64(last) % p.tilesPerRow

	var neighbors []TileID
	for dy := uint64(0); dy < spatialGridSize; dy++ {
		for dx := uint64(0); dx < spatialGridSize; dx++ {
			if dx == 0 && dy == 0 {
				continue
			}
			if tileX+dx < p.tilesPerRow {
				neighbors = append(neighbors, last+TileID(dy*p.tilesPerRow+dx))
			}
		}
	}
	return neighbors
}

// A PrefetchLoadFunc loads and decompresses a single tile of the given IFD,
// for use by a [PrefetchPool].
type PrefetchLoadFunc func(ctx context.Context, ifdNumber int, id TileID) ([]byte, error)

// A PrefetchResult is a tile loaded by a background prefetch worker, tagged
// with the IFD it belongs to so a caller backed by more than one IFD can
// route it to the right cache partition.
type PrefetchResult struct {
	IFDNumber int
	TileID    TileID
	Data      []byte
}

// A prefetchRequest asks the pool to load a batch of tile ids from a single
// IFD.
type prefetchRequest struct {
	ctx       context.Context
	ifdNumber int
	ids       []TileID
}

// A PrefetchPool runs a small number of background workers that speculatively
// load predicted tiles, depositing results on a bounded channel that callers
// drain before doing their own on-demand lookups.
type PrefetchPool struct {
	requests chan prefetchRequest
	results  chan PrefetchResult
	load     PrefetchLoadFunc
	done     chan struct{}
	wg       sync.WaitGroup
}

// PrefetchPoolOption configures a [PrefetchPool].
type PrefetchPoolOption func(*prefetchPoolOptions)

type prefetchPoolOptions struct {
	workers int
}

// WithPoolWorkers sets the number of background prefetch workers. The
// default is 4.
func WithPoolWorkers(n int) PrefetchPoolOption {
	return func(o *prefetchPoolOptions) {
		o.workers = n
	}
}

// NewPrefetchPool starts a PrefetchPool that loads tiles with load.
func NewPrefetchPool(load PrefetchLoadFunc, options ...PrefetchPoolOption) *PrefetchPool {
	opts := prefetchPoolOptions{workers: defaultPoolWorkers}
	for _, option := range options {
		option(&opts)
	}

	pool := &PrefetchPool{
		requests: make(chan prefetchRequest, opts.workers*2),
		results:  make(chan PrefetchResult, resultChannelSize),
		load:     load,
		done:     make(chan struct{}),
	}

	for i := 0; i < opts.workers; i++ {
		pool.wg.Add(1)
		go pool.runWorker()
	}
	return pool
}

func (p *PrefetchPool) runWorker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.done:
			return
		case req, ok := <-p.requests:
			if !ok {
				return
			}
			prefetchQueueDepth.Set(float64(len(p.requests)))
			for _, id := range req.ids {
				data, err := p.load(req.ctx, req.ifdNumber, id)
				if err != nil {
					continue
				}
				select {
				case p.results <- PrefetchResult{IFDNumber: req.ifdNumber, TileID: id, Data: data}:
				case <-p.done:
					return
				}
			}
		}
	}
}

// Submit enqueues ids from the given IFD to be speculatively loaded. It does
// not block on completion and silently drops the request if the pool's
// request queue is full, since prefetching is advisory.
func (p *PrefetchPool) Submit(ctx context.Context, ifdNumber int, ids []TileID) {
	if len(ids) == 0 {
		return
	}
	select {
	case p.requests <- prefetchRequest{ctx: ctx, ifdNumber: ifdNumber, ids: ids}:
		prefetchQueueDepth.Set(float64(len(p.requests)))
	default:
	}
}

// DrainResults returns and removes all results currently buffered, without
// blocking. Callers should drain before falling back to an on-demand tile
// lookup, so a result that raced ahead of a synchronous read is not wasted.
func (p *PrefetchPool) DrainResults() []PrefetchResult {
	var results []PrefetchResult
	for {
		select {
		case r := <-p.results:
			results = append(results, r)
		default:
			return results
		}
	}
}

// Close stops all workers. Pending requests are discarded.
func (p *PrefetchPool) Close() {
	close(p.done)
	p.wg.Wait()
}
