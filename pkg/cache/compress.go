package cache

import (
	"context"
	"time"

	"github.com/klauspost/compress/zstd"
)

// Compressed stores zstd-compressed payloads in an inner cache. BPMN
// documents are verbose XML and shrink by an order of magnitude.
type Compressed struct {
	inner Cache
	enc   *zstd.Encoder
	dec   *zstd.Decoder
}

// Compress wraps inner.
func Compress(inner Cache) (*Compressed, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, err
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, err
	}
	return &Compressed{inner: inner, enc: enc, dec: dec}, nil
}

// Get implements Cache. Entries that fail to decompress are dropped and
// reported as misses.
func (c *Compressed) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, ok, err := c.inner.Get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	data, err := c.dec.DecodeAll(raw, nil)
	if err != nil {
		_ = c.inner.Delete(ctx, key)
		return nil, false, nil
	}
	return data, true, nil
}

// Set implements Cache.
func (c *Compressed) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return c.inner.Set(ctx, key, c.enc.EncodeAll(data, nil), ttl)
}

// Delete implements Cache.
func (c *Compressed) Delete(ctx context.Context, key string) error {
	return c.inner.Delete(ctx, key)
}

// Close releases the codecs and closes the inner cache.
func (c *Compressed) Close() error {
	c.dec.Close()
	_ = c.enc.Close()
	return c.inner.Close()
}

var _ Cache = (*Compressed)(nil)
