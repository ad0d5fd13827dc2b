package rastertile

import (
	"context"

	"go.uber.org/zap"
)

// A Service is a complete tile-oriented raster engine over a single
// (Big)TIFF file: it wires together the low-level [Reader], a [GeoInfo]
// and [Transformer] for coordinate queries, a [TileCache] and
// [PrefetchPool] for tile-level performance, and per-IFD [PixelReader]s
// and [TileLoader]s built lazily as IFDs are queried.
type Service struct {
	reader *Reader
	tiff   *Tiff
	logger *zap.Logger

	cache          *TileCache
	pool           *PrefetchPool
	transform      *Transformer
	prefetchConfig PrefetchConfig

	loaders       map[int]*TileLoader
	pixelReaders  map[int]*PixelReader
	accessPattern map[int]*AccessPattern
	geoInfos      map[int]*GeoInfo
}

// ServiceOption configures a [Service].
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	maximumTiles   int
	poolWorkers    int
	prefetch       bool
	prefetchConfig PrefetchConfig
	logger         *zap.Logger
	sourceEPSG     int
	targetEPSG     int
	reproject      bool
}

// WithMaximumTiles sets the shared tile cache's capacity. The default is 256.
func WithMaximumTiles(n int) ServiceOption {
	return func(o *serviceOptions) {
		o.maximumTiles = n
	}
}

// WithPrefetchWorkers sets the number of background prefetch workers and
// enables prefetching. The default is 4 workers, prefetching enabled.
func WithPrefetchWorkers(n int) ServiceOption {
	return func(o *serviceOptions) {
		o.poolWorkers = n
		o.prefetch = true
	}
}

// WithoutPrefetch disables background prefetching entirely.
func WithoutPrefetch() ServiceOption {
	return func(o *serviceOptions) {
		o.prefetch = false
	}
}

// WithPrefetchConfig tunes how aggressively each IFD's [AccessPattern]
// predicts upcoming tiles. The default is [DefaultPrefetchConfig]; passing
// [DisabledPrefetchConfig] stops predictions without disabling the
// background worker pool itself (use [WithoutPrefetch] for that).
func WithPrefetchConfig(config PrefetchConfig) ServiceOption {
	return func(o *serviceOptions) {
		o.prefetchConfig = config
	}
}

// WithLogger sets the structured logger used for service-level events. The
// default is a no-op logger.
func WithLogger(logger *zap.Logger) ServiceOption {
	return func(o *serviceOptions) {
		o.logger = logger
	}
}

// WithReprojection configures the Service to reproject incoming coordinates
// from sourceEPSG to targetEPSG before each query.
func WithReprojection(sourceEPSG, targetEPSG int) ServiceOption {
	return func(o *serviceOptions) {
		o.sourceEPSG = sourceEPSG
		o.targetEPSG = targetEPSG
		o.reproject = true
	}
}

// Open opens the (Big)TIFF file at path, reads its IFD chain, and returns a
// ready-to-query Service.
func Open(path string, options ...ServiceOption) (*Service, error) {
	opts := serviceOptions{
		maximumTiles:   256,
		poolWorkers:    defaultPoolWorkers,
		prefetch:       true,
		prefetchConfig: DefaultPrefetchConfig(),
		logger:         zap.NewNop(),
	}
	for _, option := range options {
		option(&opts)
	}

	reader, err := openReader(path)
	if err != nil {
		opts.logger.Error("failed to open raster", zap.String("path", path), zap.Error(err))
		return nil, err
	}

	tiff, err := reader.Read()
	if err != nil {
		opts.logger.Error("failed to parse IFD chain", zap.String("path", path), zap.Error(err))
		_ = reader.Close()
		return nil, err
	}

	s := &Service{
		reader:        reader,
		tiff:          tiff,
		logger:        opts.logger,
		loaders:        make(map[int]*TileLoader),
		pixelReaders:   make(map[int]*PixelReader),
		accessPattern:  make(map[int]*AccessPattern),
		geoInfos:       make(map[int]*GeoInfo),
		prefetchConfig: opts.prefetchConfig,
	}

	s.cache, err = NewTileCache(s.loadTileForCache, WithTileCacheSize(opts.maximumTiles), WithTileCacheLogger(opts.logger))
	if err != nil {
		_ = reader.Close()
		return nil, err
	}

	if opts.prefetch {
		s.pool = NewPrefetchPool(s.loadTileForPrefetch, WithPoolWorkers(opts.poolWorkers))
	}

	if opts.reproject {
		s.transform, err = NewTransformer(opts.sourceEPSG, opts.targetEPSG)
		if err != nil {
			_ = reader.Close()
			return nil, err
		}
	}

	s.logger.Info("opened raster",
		zap.String("path", path),
		zap.Bool("bigtiff", reader.IsBigTIFF()),
		zap.Int("ifds", len(tiff.IFDs)))

	return s, nil
}

func openReader(path string) (*Reader, error) {
	return OpenReader(path)
}

// Close releases the underlying file handle and stops background prefetch workers.
func (s *Service) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return s.reader.Close()
}

// IFDCount returns the number of IFDs in the file.
func (s *Service) IFDCount() int {
	return len(s.tiff.IFDs)
}

func (s *Service) ifdAt(ifdNumber int) (*IFD, error) {
	if ifdNumber < 0 || ifdNumber >= len(s.tiff.IFDs) {
		return nil, OutOfBoundsError("IFD index out of range")
	}
	return s.tiff.IFDs[ifdNumber], nil
}

func (s *Service) loaderFor(ifdNumber int) (*TileLoader, error) {
	if loader, ok := s.loaders[ifdNumber]; ok {
		return loader, nil
	}
	ifd, err := s.ifdAt(ifdNumber)
	if err != nil {
		return nil, err
	}
	loader, err := NewTileLoader(s.reader, ifd)
	if err != nil {
		return nil, err
	}
	s.loaders[ifdNumber] = loader
	return loader, nil
}

func (s *Service) pixelReaderFor(ifdNumber int) (*PixelReader, error) {
	if pr, ok := s.pixelReaders[ifdNumber]; ok {
		return pr, nil
	}
	ifd, err := s.ifdAt(ifdNumber)
	if err != nil {
		return nil, err
	}
	loader, err := s.loaderFor(ifdNumber)
	if err != nil {
		return nil, err
	}
	pr, err := NewPixelReader(ifd, loader, s.cache)
	if err != nil {
		return nil, err
	}
	s.pixelReaders[ifdNumber] = pr
	return pr, nil
}

func (s *Service) accessPatternFor(ifdNumber int) (*AccessPattern, error) {
	if ap, ok := s.accessPattern[ifdNumber]; ok {
		return ap, nil
	}
	ifd, err := s.ifdAt(ifdNumber)
	if err != nil {
		return nil, err
	}
	tilesAcross, ok := ifd.TilesAcross()
	if !ok {
		return nil, InvalidFormatError("missing tile layout")
	}
	ap := NewAccessPatternWithConfig(tilesAcross, s.prefetchConfig)
	s.accessPattern[ifdNumber] = ap
	return ap, nil
}

// GeoInfo returns the georeferencing metadata for ifdNumber, building and
// caching it on first use.
func (s *Service) GeoInfo(ifdNumber int) (*GeoInfo, error) {
	if info, ok := s.geoInfos[ifdNumber]; ok {
		return info, nil
	}
	ifd, err := s.ifdAt(ifdNumber)
	if err != nil {
		return nil, err
	}
	info, err := BuildGeoInfo(s.reader, ifd)
	if err != nil {
		return nil, err
	}
	s.geoInfos[ifdNumber] = info
	return info, nil
}

// loadTileForCache is the otter.LoaderFunc backing the shared tile cache:
// it first drains every ready prefetch result into the cache, each under its
// own IFD, so a race
// between a prefetch worker and a synchronous lookup never wastes work, then
// falls back to a synchronous decode, recording the access for the next
// prediction.
func (s *Service) loadTileForCache(ctx context.Context, key tileCacheKey) (*Tile, error) {
	if s.pool != nil {
		for _, result := range s.pool.DrainResults() {
			s.cache.Put(result.IFDNumber, &Tile{ID: result.TileID, Pixels: result.Data})
		}
		if tile, ok := s.cache.Peek(key.ifdNumber, key.tileID); ok {
			return tile, nil
		}
	}

	loader, err := s.loaderFor(key.ifdNumber)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("loading tile", zap.Int("ifd", key.ifdNumber), zap.Uint64("tile_id", uint64(key.tileID)))
	pixels, err := loader.LoadTile(ctx, key.tileID)
	if err != nil {
		s.logger.Warn("tile load failed",
			zap.Int("ifd", key.ifdNumber),
			zap.Uint64("tile_id", uint64(key.tileID)),
			zap.Error(err))
		return nil, err
	}

	if ap, err := s.accessPatternFor(key.ifdNumber); err == nil {
		ap.Record(key.tileID)
		s.submitPrefetch(ctx, key.ifdNumber, ap.PredictNext())
	}

	return &Tile{ID: key.tileID, Pixels: pixels}, nil
}

func (s *Service) submitPrefetch(ctx context.Context, ifdNumber int, ids []TileID) {
	if s.pool == nil || len(ids) == 0 {
		return
	}
	var toFetch []TileID
	for _, id := range ids {
		if _, ok := s.cache.Peek(ifdNumber, id); !ok {
			toFetch = append(toFetch, id)
		}
	}
	if len(toFetch) == 0 {
		return
	}
	s.logger.Debug("dispatching prefetch",
		zap.Int("ifd", ifdNumber),
		zap.Int("tile_count", len(toFetch)))
	s.pool.Submit(ctx, ifdNumber, toFetch)
}

// loadTileForPrefetch is the PrefetchLoadFunc given to the background pool.
// It resolves the loader for whichever IFD the request names, so a Service
// backed by more than one IFD prefetches each one through its own
// [TileLoader].
func (s *Service) loadTileForPrefetch(ctx context.Context, ifdNumber int, id TileID) ([]byte, error) {
	loader, err := s.loaderFor(ifdNumber)
	if err != nil {
		return nil, err
	}
	return loader.LoadTile(ctx, id)
}

// Sample reads a single typed sample value at the given pixel coordinate in
// the given IFD.
func (s *Service) Sample(ctx context.Context, ifdNumber int, coord PixelCoord, dataType DataType) (float64, error) {
	pr, err := s.pixelReaderFor(ifdNumber)
	if err != nil {
		return 0, err
	}
	return pr.ReadSample(ctx, ifdNumber, coord, dataType)
}

// SampleAtGeo reprojects (x,y) from the Service's configured source CRS (see
// [WithReprojection]) into the raster's pixel space and reads a single
// typed sample.
func (s *Service) SampleAtGeo(ctx context.Context, ifdNumber int, x, y float64, dataType DataType) (float64, error) {
	info, err := s.GeoInfo(ifdNumber)
	if err != nil {
		return 0, err
	}

	geoX, geoY := x, y
	if s.transform != nil {
		geoX, geoY, err = s.transform.Forward(x, y)
		if err != nil {
			return 0, err
		}
	}

	px, py, err := info.Affine.GeoToPixel(geoX, geoY)
	if err != nil {
		return 0, err
	}
	if px < 0 || py < 0 {
		return 0, OutOfBoundsError("geo coordinate outside raster")
	}

	return s.Sample(ctx, ifdNumber, PixelCoord{X: uint64(px), Y: uint64(py)}, dataType)
}

// SampleBatch resolves many pixel coordinates against a single IFD
// concurrently, bypassing the shared tile cache.
func (s *Service) SampleBatch(ctx context.Context, ifdNumber int, coords []PixelCoord, dataType DataType) ([]PixelResult, error) {
	loader, err := s.loaderFor(ifdNumber)
	if err != nil {
		return nil, err
	}
	pr, err := s.pixelReaderFor(ifdNumber)
	if err != nil {
		return nil, err
	}
	return ReadPixelsBatch(ctx, loader, pr, dataType, coords)
}
