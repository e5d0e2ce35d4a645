// Package file serves snapshots from a bundle file.
package file

import (
	"context"

	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/process"
	"github.com/matzehuels/flowlane/pkg/source"
)

// Source holds a bundle read once at open time.
type Source struct {
	path   string
	bundle process.Bundle
}

var _ source.Source = (*Source)(nil)

// Open reads the snapshot or bundle at path.
func Open(path string) (*Source, error) {
	b, err := process.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(path, b), nil
}

// New serves an in-memory bundle; path is only used in messages.
func New(path string, b process.Bundle) *Source {
	return &Source{path: path, bundle: b}
}

// Tables lists the tables in file order.
func (s *Source) Tables(context.Context) ([]process.TableInfo, error) {
	return s.bundle.Infos(), nil
}

// Snapshot returns the table with the given id.
func (s *Source) Snapshot(_ context.Context, tableID string) (process.Snapshot, error) {
	if snap, ok := s.bundle.Table(tableID); ok {
		return snap, nil
	}
	return process.Snapshot{}, errors.New(errors.ErrCodeNotFound, "table %q not found in %s", tableID, s.path)
}

// Len returns the number of tables.
func (s *Source) Len() int { return len(s.bundle.Tables) }

func (s *Source) Close() error { return nil }
