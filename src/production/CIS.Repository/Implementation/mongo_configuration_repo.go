package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoConfigurationRepository struct {
	coll      *mongo.Collection
	opTimeout time.Duration
}

func NewMongoConfigurationRepository(coll *mongo.Collection, opTimeout time.Duration) *MongoConfigurationRepository {
	return &MongoConfigurationRepository{coll: coll, opTimeout: opTimeout}
}

// Insert appends a new version. The collection is append-only, there is
// no update path by design.
func (r *MongoConfigurationRepository) Insert(ctx context.Context, cfg *cismodels.Configuration) (*cismodels.Configuration, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	stored := *cfg
	if stored.ID.IsZero() {
		stored.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, stored); err != nil {
		return nil, fmt.Errorf("insert configuration: %w", err)
	}
	return &stored, nil
}

func (r *MongoConfigurationRepository) Latest(ctx context.Context) (*cismodels.Configuration, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "created_at", Value: -1}})

	var cfg cismodels.Configuration
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&cfg)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cismodels.ErrNotFound
		}
		return nil, fmt.Errorf("get latest configuration: %w", err)
	}
	return &cfg, nil
}

func (r *MongoConfigurationRepository) History(ctx context.Context, limit int) ([]cismodels.Configuration, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cur, err := r.coll.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find configurations: %w", err)
	}
	defer cur.Close(ctx)

	versions := make([]cismodels.Configuration, 0)
	if err := cur.All(ctx, &versions); err != nil {
		return nil, fmt.Errorf("decode configurations: %w", err)
	}
	return versions, nil
}
