package implementation

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	cismodels "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models"
	auth_models "gitlab.com/sorjuana1/cis.cistern_server/src/production/CIS.Models/auth"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type MongoUserRepository struct {
	coll      *mongo.Collection
	opTimeout time.Duration
}

func NewMongoUserRepository(coll *mongo.Collection, opTimeout time.Duration) *MongoUserRepository {
	return &MongoUserRepository{coll: coll, opTimeout: opTimeout}
}

func (r *MongoUserRepository) Create(ctx context.Context, user *auth_models.User) (*auth_models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	if user.UserID == "" {
		user.UserID = uuid.New().String()
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

func (r *MongoUserRepository) GetByID(ctx context.Context, userID string) (*auth_models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	var user auth_models.User
	err := r.coll.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cismodels.ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetByUsername matches case-insensitively, as the original login did.
func (r *MongoUserRepository) GetByUsername(ctx context.Context, username string) (*auth_models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	filter := bson.M{"username": primitive.Regex{
		Pattern: "^" + regexp.QuoteMeta(username) + "$",
		Options: "i",
	}}

	var user auth_models.User
	err := r.coll.FindOne(ctx, filter).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, cismodels.ErrNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

func (r *MongoUserRepository) Update(ctx context.Context, user *auth_models.User) error {
	ctx, cancel := context.WithTimeout(ctx, r.opTimeout)
	defer cancel()

	user.UpdatedAt = time.Now()

	res, err := r.coll.ReplaceOne(ctx, bson.M{"user_id": user.UserID}, user)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if res.MatchedCount == 0 {
		return cismodels.ErrNotFound
	}
	return nil
}
