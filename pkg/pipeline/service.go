package pipeline

import (
	"context"
	"encoding/json"
	"time"

	"github.com/matzehuels/flowlane/pkg/cache"
	"github.com/matzehuels/flowlane/pkg/observability"
	"github.com/matzehuels/flowlane/pkg/process"
)

// DefaultTTL is how long cached artifacts live.
const DefaultTTL = 7 * 24 * time.Hour

// Service memoizes finished artifacts of a Runner. Only the final bytes
// are cached; a miss always runs the full pipeline.
type Service struct {
	Runner *Runner
	Cache  cache.Cache
	Keyer  cache.Keyer
	TTL    time.Duration
}

// NewService wraps runner. A nil cache disables caching, a nil keyer uses
// cache.DefaultKeyer.
func NewService(runner *Runner, c cache.Cache, keyer cache.Keyer) *Service {
	if runner == nil {
		runner = NewRunner(nil, nil)
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Service{Runner: runner, Cache: c, Keyer: keyer, TTL: DefaultTTL}
}

// Output is a served artifact. Result is nil on a cache hit.
type Output struct {
	Data     []byte
	CacheHit bool
	Result   *Result
}

// Export returns the BPMN document for snap.
func (s *Service) Export(ctx context.Context, snap process.Snapshot, opts Options) (*Output, error) {
	key, err := s.key(snap, opts, s.Keyer.DocumentKey)
	if err != nil {
		return nil, err
	}
	return s.serve(ctx, "document", key, opts.Refresh, func() (*Result, []byte, error) {
		res, err := s.Runner.Export(ctx, snap, opts)
		if err != nil {
			return nil, nil, err
		}
		return res, res.Document, nil
	})
}

// Layout returns the indented LayoutDocument JSON for snap.
func (s *Service) Layout(ctx context.Context, snap process.Snapshot, opts Options) (*Output, error) {
	key, err := s.key(snap, opts, s.Keyer.LayoutKey)
	if err != nil {
		return nil, err
	}
	return s.serve(ctx, "layout", key, opts.Refresh, func() (*Result, []byte, error) {
		res, err := s.Runner.Layout(ctx, snap, opts)
		if err != nil {
			return nil, nil, err
		}
		data, err := json.MarshalIndent(res.LayoutDocument(), "", "  ")
		if err != nil {
			return nil, nil, err
		}
		return res, append(data, '\n'), nil
	})
}

// Close closes the cache.
func (s *Service) Close() error { return s.Cache.Close() }

func (s *Service) key(snap process.Snapshot, opts Options, derive func(string, cache.KeyOpts) string) (string, error) {
	data, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	return derive(cache.Hash(data), opts.KeyOpts()), nil
}

func (s *Service) serve(ctx context.Context, keyType, key string, refresh bool, compute func() (*Result, []byte, error)) (*Output, error) {
	hooks := observability.Cache()
	log := s.Runner.logger()

	if !refresh {
		data, hit, err := s.Cache.Get(ctx, key)
		if err != nil {
			log.Warn("cache read failed", "key", key, "err", err)
		}
		if hit {
			hooks.OnCacheHit(ctx, keyType)
			log.Debug("cache hit", "type", keyType)
			return &Output{Data: data, CacheHit: true}, nil
		}
		hooks.OnCacheMiss(ctx, keyType)
	}

	res, data, err := compute()
	if err != nil {
		return nil, err
	}
	if err := s.Cache.Set(ctx, key, data, s.TTL); err != nil {
		log.Warn("cache write failed", "key", key, "err", err)
	} else {
		hooks.OnCacheSet(ctx, keyType, len(data))
	}
	return &Output{Data: data, Result: res}, nil
}
