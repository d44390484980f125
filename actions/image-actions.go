package actions

import (
	"context"
	"fmt"
	"time"

	"github.com/imagineserve/imagine-serve/models"
	"github.com/imagineserve/imagine-serve/transform"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// galleryAPIPath is the cached image read namespace. Every mutation
// marks it stale along with the page path the client supplies, so the
// next list or detail request fetches fresh data.
const galleryAPIPath = "/api/images"

// Images wraps the image CRUD actions: connect is owned by the stores, so
// each action is lookup/ownership check, one document operation, then a
// path revalidation.
type Images struct {
	users  UserStore
	images ImageStore
	rev    Revalidator
}

func NewImages(users UserStore, images ImageStore, rev Revalidator) *Images {
	return &Images{users: users, images: images, rev: rev}
}

// AddImage creates an image owned by userID and marks path stale.
func (a *Images) AddImage(ctx context.Context, img *models.Image, userID primitive.ObjectID, path string) (*models.Image, error) {
	owner, err := a.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if owner == nil {
		return nil, ErrUserNotFound
	}

	if img.Config != nil {
		if err := transform.ValidateConfig(img.TransformationType, img.Config); err != nil {
			return nil, fmt.Errorf("invalid transformation config: %w", err)
		}
	}

	img.Author = owner.ID
	now := time.Now()
	img.CreatedAt = now
	img.UpdatedAt = now

	stored, err := a.images.Insert(ctx, img)
	if err != nil {
		return nil, err
	}

	a.revalidate(path)
	return stored, nil
}

// UpdateImage replaces the stored record's fields. Fails with
// ErrUnauthorized when the image is missing or owned by someone else.
func (a *Images) UpdateImage(ctx context.Context, img *models.Image, userID primitive.ObjectID, path string) (*models.Image, error) {
	existing, err := a.images.GetByID(ctx, img.ID)
	if err != nil {
		return nil, err
	}
	if existing == nil || existing.Author != userID {
		return nil, ErrUnauthorized
	}

	if img.Config != nil {
		if err := transform.ValidateConfig(img.TransformationType, img.Config); err != nil {
			return nil, fmt.Errorf("invalid transformation config: %w", err)
		}
	}

	img.Author = existing.Author
	img.CreatedAt = existing.CreatedAt
	img.UpdatedAt = time.Now()

	stored, err := a.images.Replace(ctx, img)
	if err != nil {
		return nil, err
	}

	a.revalidate(path)
	return stored, nil
}

// DeleteImage removes the record by id. The handler redirects home no
// matter what, so the error here is for logging only.
func (a *Images) DeleteImage(ctx context.Context, id primitive.ObjectID) error {
	if err := a.images.Delete(ctx, id); err != nil {
		return err
	}
	a.revalidate("/")
	return nil
}

func (a *Images) revalidate(path string) {
	a.rev.Revalidate(galleryAPIPath)
	if path != "" && path != galleryAPIPath {
		a.rev.Revalidate(path)
	}
}

// GetImageByID loads the detail view: the image plus its author's names.
func (a *Images) GetImageByID(ctx context.Context, id primitive.ObjectID) (*models.ImageWithAuthor, error) {
	img, err := a.images.GetWithAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	if img == nil {
		return nil, ErrImageNotFound
	}
	return img, nil
}

// ListImages returns a gallery page and the total match count.
func (a *Images) ListImages(ctx context.Context, q ImageQuery) ([]models.Image, int64, error) {
	return a.images.List(ctx, normalizeQuery(q))
}

// ListUserImages returns one user's images for the profile page.
func (a *Images) ListUserImages(ctx context.Context, author primitive.ObjectID, q ImageQuery) ([]models.Image, int64, error) {
	return a.images.ListByAuthor(ctx, author, normalizeQuery(q))
}

func normalizeQuery(q ImageQuery) ImageQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PerPage < 1 {
		q.PerPage = 9
	}
	return q
}
