package database

import (
	"context"
	"errors"
	"regexp"

	"github.com/imagineserve/imagine-serve/actions"
	"github.com/imagineserve/imagine-serve/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ImageStore is the mongo-backed images collection.
type ImageStore struct {
	col *mongo.Collection
}

func NewImageStore(db *mongo.Database) *ImageStore {
	return &ImageStore{col: db.Collection("images")}
}

func (s *ImageStore) Insert(ctx context.Context, image *models.Image) (*models.Image, error) {
	res, err := s.col.InsertOne(ctx, image)
	if err != nil {
		return nil, err
	}
	stored := *image
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		stored.ID = id
	}
	return &stored, nil
}

func (s *ImageStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Image, error) {
	var image models.Image
	err := s.col.FindOne(ctx, bson.M{"_id": id}).Decode(&image)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &image, nil
}

// GetWithAuthor joins the owning user's document so the detail view can
// show the author's names.
func (s *ImageStore) GetWithAuthor(ctx context.Context, id primitive.ObjectID) (*models.ImageWithAuthor, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: bson.D{{Key: "_id", Value: id}}}},
		bson.D{{Key: "$lookup", Value: bson.D{
			{Key: "from", Value: "users"},
			{Key: "localField", Value: "author"},
			{Key: "foreignField", Value: "_id"},
			{Key: "as", Value: "author_info"},
		}}},
		bson.D{{Key: "$unwind", Value: bson.D{
			{Key: "path", Value: "$author_info"},
			{Key: "preserveNullAndEmptyArrays", Value: true},
		}}},
	}

	cursor, err := s.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	if !cursor.Next(ctx) {
		if err := cursor.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	}

	var out models.ImageWithAuthor
	if err := cursor.Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *ImageStore) Replace(ctx context.Context, image *models.Image) (*models.Image, error) {
	after := options.After
	opts := options.FindOneAndReplace().SetReturnDocument(after)

	var stored models.Image
	err := s.col.FindOneAndReplace(ctx, bson.M{"_id": image.ID}, image, opts).Decode(&stored)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// Delete removes by id. A missing record is not an error: the caller
// redirects home regardless of outcome.
func (s *ImageStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": id})
	return err
}

func (s *ImageStore) List(ctx context.Context, q actions.ImageQuery) ([]models.Image, int64, error) {
	return s.find(ctx, s.filter(q, nil), q)
}

func (s *ImageStore) ListByAuthor(ctx context.Context, author primitive.ObjectID, q actions.ImageQuery) ([]models.Image, int64, error) {
	return s.find(ctx, s.filter(q, bson.M{"author": author}), q)
}

func (s *ImageStore) filter(q actions.ImageQuery, base bson.M) bson.M {
	if base == nil {
		base = bson.M{}
	}
	if q.Search != "" {
		// The search is a literal substring match; quote it so regex
		// metacharacters in user input don't act as patterns.
		base["title"] = bson.M{"$regex": regexp.QuoteMeta(q.Search), "$options": "i"}
	}
	return base
}

func (s *ImageStore) find(ctx context.Context, filter bson.M, q actions.ImageQuery) ([]models.Image, int64, error) {
	total, err := s.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "updated_at", Value: -1}}).
		SetSkip(int64((q.Page - 1) * q.PerPage)).
		SetLimit(int64(q.PerPage))

	cursor, err := s.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var images []models.Image
	if err := cursor.All(ctx, &images); err != nil {
		return nil, 0, err
	}
	return images, total, nil
}
