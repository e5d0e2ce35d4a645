// Package mongo serves snapshots from a MongoDB collection holding one
// document per process table, keyed by table_id.
package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	mongodriver "go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	flerrors "github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/process"
	"github.com/matzehuels/flowlane/pkg/source"
)

// Source reads process tables. It never writes.
type Source struct {
	client *mongodriver.Client
	coll   *mongodriver.Collection
}

var _ source.Source = (*Source)(nil)

// Connect opens a client for uri and checks the server answers.
func Connect(ctx context.Context, uri, database, collection string) (*Source, error) {
	if err := flerrors.ValidateURI(uri, "mongodb", "mongodb+srv"); err != nil {
		return nil, err
	}
	client, err := mongodriver.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return &Source{client: client, coll: client.Database(database).Collection(collection)}, nil
}

// FromCollection wraps an existing collection; Close leaves its client
// open.
func FromCollection(coll *mongodriver.Collection) *Source {
	return &Source{coll: coll}
}

// Tables lists the tables sorted by id, with lane and node counts computed
// server-side.
func (s *Source) Tables(ctx context.Context) ([]process.TableInfo, error) {
	size := func(field string) bson.D {
		return bson.D{{Key: "$size", Value: bson.D{{Key: "$ifNull", Value: bson.A{field, bson.A{}}}}}}
	}
	pipeline := mongodriver.Pipeline{
		{{Key: "$project", Value: bson.D{
			{Key: "_id", Value: 0},
			{Key: "table_id", Value: 1},
			{Key: "name", Value: 1},
			{Key: "lane_count", Value: size("$lanes")},
			{Key: "node_count", Value: size("$nodes")},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "table_id", Value: 1}}}},
	}
	cur, err := s.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	var infos []process.TableInfo
	if err := cur.All(ctx, &infos); err != nil {
		return nil, fmt.Errorf("list tables: %w", err)
	}
	return infos, nil
}

// Snapshot loads one table.
func (s *Source) Snapshot(ctx context.Context, tableID string) (process.Snapshot, error) {
	if err := flerrors.ValidateTableID(tableID); err != nil {
		return process.Snapshot{}, err
	}
	var snap process.Snapshot
	err := s.coll.FindOne(ctx, bson.D{{Key: "table_id", Value: tableID}}).Decode(&snap)
	if errors.Is(err, mongodriver.ErrNoDocuments) {
		return process.Snapshot{}, flerrors.New(flerrors.ErrCodeNotFound, "table %q not found", tableID)
	}
	if err != nil {
		return process.Snapshot{}, fmt.Errorf("load table %s: %w", tableID, err)
	}
	return snap, nil
}

// Close disconnects a client opened by Connect.
func (s *Source) Close() error {
	if s.client == nil {
		return nil
	}
	return s.client.Disconnect(context.Background())
}
