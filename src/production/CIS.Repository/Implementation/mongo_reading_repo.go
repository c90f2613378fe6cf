package implementation

import (
	"context"
	"errors"
	"fmt"
	"time"

	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	interfaces "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Repository/Interfaces"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoReadingRepository struct {
	coll      *mongo.Collection
	opTimeout time.Duration
}

func NewMongoReadingRepository(coll *mongo.Collection, opTimeout time.Duration) *MongoReadingRepository {
	return &MongoReadingRepository{coll: coll, opTimeout: opTimeout}
}

func (r *MongoReadingRepository) InsertReading(ctx context.Context, rd cismodels.Reading) (*cismodels.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if rd.ID.IsZero() {
		rd.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, rd); err != nil {
		return nil, fmt.Errorf("insert reading: %w", err)
	}
	return &rd, nil
}

func (r *MongoReadingRepository) GetLatest(ctx context.Context) (*cismodels.Reading, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	opts := options.FindOne().SetSort(bson.D{{Key: "timestamp", Value: -1}})

	var rd cismodels.Reading
	err := r.coll.FindOne(ctx, bson.M{}, opts).Decode(&rd)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cismodels.ErrNotFound
		}
		return nil, fmt.Errorf("get latest reading: %w", err)
	}
	return &rd, nil
}

func (r *MongoReadingRepository) Query(ctx context.Context, params interfaces.ReadingQueryParams) (*interfaces.ReadingQueryResult, error) {
	params.Normalize()

	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	filter := buildReadingFilter(params)

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count readings: %w", err)
	}

	opts := options.Find().
		SetSort(readingSort(params)).
		SetSkip(int64((params.Page - 1) * params.PageSize)).
		SetLimit(int64(params.PageSize))

	items, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}

	return &interfaces.ReadingQueryResult{
		Items:    items,
		Total:    total,
		Page:     params.Page,
		PageSize: params.PageSize,
	}, nil
}

func (r *MongoReadingRepository) QueryAll(ctx context.Context, params interfaces.ReadingQueryParams) ([]cismodels.Reading, error) {
	params.Normalize()

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	opts := options.Find().SetSort(readingSort(params))
	return r.find(ctx, buildReadingFilter(params), opts)
}

func (r *MongoReadingRepository) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]cismodels.Reading, error) {
	cur, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("find readings: %w", err)
	}
	defer cur.Close(ctx)

	readings := make([]cismodels.Reading, 0)
	if err := cur.All(ctx, &readings); err != nil {
		return nil, fmt.Errorf("decode readings: %w", err)
	}
	return readings, nil
}

func buildReadingFilter(params interfaces.ReadingQueryParams) bson.M {
	filter := bson.M{}
	if params.SensorID != "" {
		filter["sensor_id"] = params.SensorID
	}
	if params.Status != "" {
		filter["status"] = params.Status
	}

	from, to := params.TimeRange()
	if from != nil || to != nil {
		ts := bson.M{}
		if from != nil {
			ts["$gte"] = *from
		}
		if to != nil {
			ts["$lte"] = *to
		}
		filter["timestamp"] = ts
	}
	return filter
}

func readingSort(params interfaces.ReadingQueryParams) bson.D {
	order := -1
	if params.SortOrder == "asc" {
		order = 1
	}
	return bson.D{{Key: params.SortBy, Value: order}}
}
