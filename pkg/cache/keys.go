package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// Hash returns the hex SHA-256 of data.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "prefix:sha256(json(parts))".
func hashKey(prefix string, parts ...any) string {
	data, _ := json.Marshal(parts)
	return fmt.Sprintf("%s:%s", prefix, Hash(data))
}

// KeyOpts lists everything besides the snapshot that changes an export.
type KeyOpts struct {
	Engine    string `json:"engine"`
	Direction string `json:"direction"`
	Strict    bool   `json:"strict"`
	// Settings is a hash of the remaining configuration (sizes, spacing,
	// geometry and color constants).
	Settings string `json:"settings"`
	Version  string `json:"version"`
}

// Keyer derives cache keys for export artifacts.
type Keyer interface {
	DocumentKey(snapshotHash string, opts KeyOpts) string
	LayoutKey(snapshotHash string, opts KeyOpts) string
}

// DefaultKeyer produces "document:<hash>" and "layout:<hash>" keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

// DocumentKey returns the key of a BPMN document.
func (DefaultKeyer) DocumentKey(snapshotHash string, opts KeyOpts) string {
	return hashKey("document", snapshotHash, opts)
}

// LayoutKey returns the key of a resolved layout.
func (DefaultKeyer) LayoutKey(snapshotHash string, opts KeyOpts) string {
	return hashKey("layout", snapshotHash, opts)
}

// ScopedKeyer prefixes every key of an inner keyer, so several
// configurations can share one cache directory.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer wraps inner (DefaultKeyer when nil).
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

func (k *ScopedKeyer) DocumentKey(snapshotHash string, opts KeyOpts) string {
	return k.prefix + k.inner.DocumentKey(snapshotHash, opts)
}

func (k *ScopedKeyer) LayoutKey(snapshotHash string, opts KeyOpts) string {
	return k.prefix + k.inner.LayoutKey(snapshotHash, opts)
}
