package actions

import (
	"context"

	"github.com/imagineserve/imagine-serve/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserUpdate carries the profile fields an update may replace.
type UserUpdate struct {
	Username  string
	FirstName string
	LastName  string
	Photo     string
}

// ImageQuery selects a gallery page. Search matches against titles.
type ImageQuery struct {
	Search  string
	Page    int
	PerPage int
}

// UserStore is the users collection. Lookups return (nil, nil) when no
// record matches; errors are reserved for store failures.
type UserStore interface {
	Insert(ctx context.Context, user *models.User) (*models.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	GetByAuthID(ctx context.Context, authID string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Update(ctx context.Context, authID string, update UserUpdate) (*models.User, error)
	Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error)
	// AdjustCredits atomically applies delta to the balance. A negative
	// delta only matches when the balance covers it; (nil, nil) means no
	// document qualified.
	AdjustCredits(ctx context.Context, id primitive.ObjectID, delta int) (*models.User, error)
}

// ImageStore is the images collection. Same (nil, nil) convention.
type ImageStore interface {
	Insert(ctx context.Context, image *models.Image) (*models.Image, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Image, error)
	GetWithAuthor(ctx context.Context, id primitive.ObjectID) (*models.ImageWithAuthor, error)
	Replace(ctx context.Context, image *models.Image) (*models.Image, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	List(ctx context.Context, q ImageQuery) ([]models.Image, int64, error)
	ListByAuthor(ctx context.Context, author primitive.ObjectID, q ImageQuery) ([]models.Image, int64, error)
}

// Revalidator marks a cached page path stale after a mutation.
type Revalidator interface {
	Revalidate(path string)
}
