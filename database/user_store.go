package database

import (
	"context"
	"errors"

	"github.com/imagineserve/imagine-serve/actions"
	"github.com/imagineserve/imagine-serve/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// UserStore is the mongo-backed users collection.
type UserStore struct {
	col *mongo.Collection
}

func NewUserStore(db *mongo.Database) *UserStore {
	return &UserStore{col: db.Collection("users")}
}

func (s *UserStore) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	res, err := s.col.InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	stored := *user
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		stored.ID = id
	}
	return &stored, nil
}

func (s *UserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return s.findOne(ctx, bson.M{"_id": id})
}

func (s *UserStore) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"auth_id": authID})
}

func (s *UserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"email": email})
}

func (s *UserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.findOne(ctx, bson.M{"username": username})
}

func (s *UserStore) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	var user models.User
	err := s.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Update(ctx context.Context, authID string, update actions.UserUpdate) (*models.User, error) {
	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var user models.User
	err := s.col.FindOneAndUpdate(ctx,
		bson.M{"auth_id": authID},
		bson.M{"$set": bson.M{
			"username":   update.Username,
			"first_name": update.FirstName,
			"last_name":  update.LastName,
			"photo":      update.Photo,
		}},
		opts,
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	var user models.User
	err := s.col.FindOneAndDelete(ctx, bson.M{"_id": id}).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// AdjustCredits applies delta atomically. Debits carry a balance guard in
// the filter so the update only matches when the balance covers the fee.
func (s *UserStore) AdjustCredits(ctx context.Context, id primitive.ObjectID, delta int) (*models.User, error) {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["credit_balance"] = bson.M{"$gte": -delta}
	}

	after := options.After
	opts := options.FindOneAndUpdate().SetReturnDocument(after)

	var user models.User
	err := s.col.FindOneAndUpdate(ctx,
		filter,
		bson.M{"$inc": bson.M{"credit_balance": delta}},
		opts,
	).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
