// Package source defines where process snapshots come from.
//
// A Source is the persistence collaborator of an export: it hands out
// immutable snapshots by table id. Implementations live in subpackages:
// file (a JSON or YAML bundle on disk) and mongo (a MongoDB collection).
package source

import (
	"context"

	"github.com/matzehuels/flowlane/pkg/process"
)

// Source lists and loads process tables. Unknown table ids are NOT_FOUND
// errors.
type Source interface {
	Tables(ctx context.Context) ([]process.TableInfo, error)
	Snapshot(ctx context.Context, tableID string) (process.Snapshot, error)
	Close() error
}
