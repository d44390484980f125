package actions

import (
	"context"
	"strings"
	"sync"

	"github.com/imagineserve/imagine-serve/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// FakeUserStore is a test-only map-backed UserStore with injectable
// error fields for behavior injection.
type FakeUserStore struct {
	mu        sync.RWMutex
	users     map[primitive.ObjectID]*models.User
	insertErr error
	getErr    error
	adjustErr error
}

func NewFakeUserStore() *FakeUserStore {
	return &FakeUserStore{users: make(map[primitive.ObjectID]*models.User)}
}

func (f *FakeUserStore) Insert(ctx context.Context, user *models.User) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	stored := *user
	f.users[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *FakeUserStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	out := *u
	return &out, nil
}

func (f *FakeUserStore) GetByAuthID(ctx context.Context, authID string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.AuthID == authID })
}

func (f *FakeUserStore) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Email == email })
}

func (f *FakeUserStore) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return f.find(func(u *models.User) bool { return u.Username == username })
}

func (f *FakeUserStore) find(match func(*models.User) bool) (*models.User, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	for _, u := range f.users {
		if match(u) {
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *FakeUserStore) Update(ctx context.Context, authID string, update UserUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.AuthID == authID {
			u.Username = update.Username
			u.FirstName = update.FirstName
			u.LastName = update.LastName
			u.Photo = update.Photo
			out := *u
			return &out, nil
		}
	}
	return nil, nil
}

func (f *FakeUserStore) Delete(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	delete(f.users, id)
	out := *u
	return &out, nil
}

func (f *FakeUserStore) AdjustCredits(ctx context.Context, id primitive.ObjectID, delta int) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.adjustErr != nil {
		return nil, f.adjustErr
	}
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	if delta < 0 && u.CreditBalance+delta < 0 {
		return nil, nil
	}
	u.CreditBalance += delta
	out := *u
	return &out, nil
}

// FakeImageStore is a test-only map-backed ImageStore.
type FakeImageStore struct {
	mu        sync.RWMutex
	images    map[primitive.ObjectID]*models.Image
	users     *FakeUserStore
	insertErr error
	deleteErr error
}

func NewFakeImageStore(users *FakeUserStore) *FakeImageStore {
	return &FakeImageStore{
		images: make(map[primitive.ObjectID]*models.Image),
		users:  users,
	}
}

func (f *FakeImageStore) Insert(ctx context.Context, image *models.Image) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return nil, f.insertErr
	}
	if image.ID.IsZero() {
		image.ID = primitive.NewObjectID()
	}
	stored := *image
	f.images[stored.ID] = &stored
	out := stored
	return &out, nil
}

func (f *FakeImageStore) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Image, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	img, ok := f.images[id]
	if !ok {
		return nil, nil
	}
	out := *img
	return &out, nil
}

func (f *FakeImageStore) GetWithAuthor(ctx context.Context, id primitive.ObjectID) (*models.ImageWithAuthor, error) {
	f.mu.RLock()
	img, ok := f.images[id]
	f.mu.RUnlock()
	if !ok {
		return nil, nil
	}

	out := models.ImageWithAuthor{Image: *img}
	if f.users != nil {
		author, err := f.users.GetByID(ctx, img.Author)
		if err != nil {
			return nil, err
		}
		if author != nil {
			out.AuthorInfo = models.ImageAuthor{
				ID:        author.ID,
				FirstName: author.FirstName,
				LastName:  author.LastName,
			}
		}
	}
	return &out, nil
}

func (f *FakeImageStore) Replace(ctx context.Context, image *models.Image) (*models.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.images[image.ID]; !ok {
		return nil, nil
	}
	stored := *image
	f.images[image.ID] = &stored
	out := stored
	return &out, nil
}

func (f *FakeImageStore) Delete(ctx context.Context, id primitive.ObjectID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.images, id)
	return nil
}

func (f *FakeImageStore) List(ctx context.Context, q ImageQuery) ([]models.Image, int64, error) {
	return f.list(q, func(*models.Image) bool { return true })
}

func (f *FakeImageStore) ListByAuthor(ctx context.Context, author primitive.ObjectID, q ImageQuery) ([]models.Image, int64, error) {
	return f.list(q, func(img *models.Image) bool { return img.Author == author })
}

func (f *FakeImageStore) list(q ImageQuery, match func(*models.Image) bool) ([]models.Image, int64, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var all []models.Image
	for _, img := range f.images {
		if !match(img) {
			continue
		}
		if q.Search != "" && !strings.Contains(strings.ToLower(img.Title), strings.ToLower(q.Search)) {
			continue
		}
		all = append(all, *img)
	}
	return all, int64(len(all)), nil
}

// FakeRevalidator records revalidated paths.
type FakeRevalidator struct {
	mu    sync.Mutex
	paths []string
}

func (f *FakeRevalidator) Revalidate(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.paths = append(f.paths, path)
}

func (f *FakeRevalidator) Paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.paths...)
}
