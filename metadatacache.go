package rastertile

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// A Registry keeps a bounded number of opened [Service]s, keyed by file
// path, so a long-lived process (such as the HTTP adapter) serving
// requests against many different rasters does not re-parse a file's IFD
// chain and GeoInfo on every request. Evicted services are closed.
type Registry struct {
	cache   *lru.Cache[string, *Service]
	options []ServiceOption
}

// NewRegistry returns a Registry holding up to maximumOpen opened rasters,
// each opened with options.
func NewRegistry(maximumOpen int, options ...ServiceOption) (*Registry, error) {
	r := &Registry{options: options}
	cache, err := lru.NewWithEvict[string, *Service](maximumOpen, func(_ string, s *Service) {
		_ = s.Close()
	})
	if err != nil {
		return nil, IOError(err)
	}
	r.cache = cache
	return r, nil
}

// Get returns the Service for path, opening and caching it on a miss.
func (r *Registry) Get(path string) (*Service, error) {
	if s, ok := r.cache.Get(path); ok {
		return s, nil
	}
	s, err := Open(path, r.options...)
	if err != nil {
		return nil, err
	}
	r.cache.Add(path, s)
	return s, nil
}

// Close closes every opened Service and empties the registry. The eviction
// callback registered in [NewRegistry] closes each Service as it is purged.
func (r *Registry) Close() {
	r.cache.Purge()
}
