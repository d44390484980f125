package actions

import (
	"context"
	"testing"

	"github.com/imagineserve/imagine-serve/models"
	"github.com/imagineserve/imagine-serve/transform"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newImageFixture() (*Images, *FakeUserStore, *FakeImageStore, *FakeRevalidator, *models.User) {
	users := NewFakeUserStore()
	images := NewFakeImageStore(users)
	rev := &FakeRevalidator{}

	owner, _ := users.Insert(context.Background(), &models.User{
		AuthID:        "auth_1",
		Email:         "ada@example.com",
		Username:      "ada",
		FirstName:     "Ada",
		LastName:      "Lovelace",
		CreditBalance: 10,
	})

	return NewImages(users, images, rev), users, images, rev, owner
}

func TestAddImageShouldCreateRecordOwnedByResolvedUser(t *testing.T) {
	a, _, images, rev, owner := newImageFixture()

	img := &models.Image{
		Title:              "old photo",
		TransformationType: transform.TypeRestore,
		PublicID:           "asset_1",
		SecureURL:          "https://img.example.com/asset_1",
		Config:             transform.Config{"restore": true},
	}

	stored, err := a.AddImage(context.Background(), img, owner.ID, "/")
	if err != nil {
		t.Fatalf("AddImage failed: %v", err)
	}

	if stored.Author != owner.ID {
		t.Errorf("Expected owner %s, got %s", owner.ID.Hex(), stored.Author.Hex())
	}

	inStore, _ := images.GetByID(context.Background(), stored.ID)
	if inStore == nil {
		t.Fatal("Expected record in store")
	}
	if inStore.Title != stored.Title || inStore.Author != stored.Author || inStore.PublicID != stored.PublicID {
		t.Error("Returned copy does not match stored record")
	}

	paths := rev.Paths()
	if len(paths) != 2 || paths[0] != "/api/images" || paths[1] != "/" {
		t.Errorf("Expected gallery namespace and %q revalidated, got %v", "/", paths)
	}
}

func TestAddImageUnknownUserShouldFailWithErrUserNotFound(t *testing.T) {
	a, _, images, _, _ := newImageFixture()

	img := &models.Image{Title: "x", TransformationType: transform.TypeRestore}
	_, err := a.AddImage(context.Background(), img, primitive.NewObjectID(), "/")
	if err != ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}

	if _, total, _ := images.List(context.Background(), ImageQuery{}); total != 0 {
		t.Errorf("Expected no record created, got %d", total)
	}
}

func TestAddImageShouldRejectConfigShapeMismatch(t *testing.T) {
	a, _, _, _, owner := newImageFixture()

	img := &models.Image{
		Title:              "x",
		TransformationType: transform.TypeRecolor,
		Config:             transform.Config{"restore": true},
	}
	if _, err := a.AddImage(context.Background(), img, owner.ID, "/"); err == nil {
		t.Error("Expected config/type mismatch to fail")
	}
}

func TestUpdateImageByNonOwnerShouldFailWithErrUnauthorized(t *testing.T) {
	a, users, _, _, owner := newImageFixture()

	stored, err := a.AddImage(context.Background(), &models.Image{
		Title:              "mine",
		TransformationType: transform.TypeRestore,
		Config:             transform.Config{"restore": true},
	}, owner.ID, "/")
	if err != nil {
		t.Fatalf("AddImage failed: %v", err)
	}

	other, _ := users.Insert(context.Background(), &models.User{AuthID: "auth_2", Username: "eve"})

	stored.Title = "stolen"
	if _, err := a.UpdateImage(context.Background(), stored, other.ID, "/"); err != ErrUnauthorized {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestUpdateImageMissingRecordShouldFailWithErrUnauthorized(t *testing.T) {
	a, _, _, _, owner := newImageFixture()

	ghost := &models.Image{ID: primitive.NewObjectID(), Title: "ghost", TransformationType: transform.TypeRestore}
	if _, err := a.UpdateImage(context.Background(), ghost, owner.ID, "/"); err != ErrUnauthorized {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}
}

func TestUpdateImageByOwnerShouldReplaceFieldsAndRevalidate(t *testing.T) {
	a, _, images, rev, owner := newImageFixture()

	stored, err := a.AddImage(context.Background(), &models.Image{
		Title:              "before",
		TransformationType: transform.TypeRestore,
		Config:             transform.Config{"restore": true},
	}, owner.ID, "/")
	if err != nil {
		t.Fatalf("AddImage failed: %v", err)
	}

	stored.Title = "after"
	stored.TransformationURL = "https://img.example.com/render/e_gen_restore/a1"

	updated, err := a.UpdateImage(context.Background(), stored, owner.ID, "/transformations/"+stored.ID.Hex())
	if err != nil {
		t.Fatalf("UpdateImage failed: %v", err)
	}
	if updated.Title != "after" {
		t.Errorf("Expected title replaced, got %q", updated.Title)
	}

	inStore, _ := images.GetByID(context.Background(), stored.ID)
	if inStore.Title != "after" {
		t.Errorf("Expected stored title %q, got %q", "after", inStore.Title)
	}

	paths := rev.Paths()
	if len(paths) != 4 {
		t.Fatalf("Expected 4 revalidations, got %v", paths)
	}
	if paths[2] != "/api/images" {
		t.Errorf("Expected gallery namespace revalidated on update, got %q", paths[2])
	}
	if paths[3] != "/transformations/"+stored.ID.Hex() {
		t.Errorf("Expected detail path revalidated, got %q", paths[3])
	}
}

func TestGetImageByIDShouldAttachAuthorNames(t *testing.T) {
	a, _, _, _, owner := newImageFixture()

	stored, _ := a.AddImage(context.Background(), &models.Image{
		Title:              "detail",
		TransformationType: transform.TypeRestore,
		Config:             transform.Config{"restore": true},
	}, owner.ID, "/")

	detail, err := a.GetImageByID(context.Background(), stored.ID)
	if err != nil {
		t.Fatalf("GetImageByID failed: %v", err)
	}
	if detail.AuthorInfo.FirstName != "Ada" || detail.AuthorInfo.LastName != "Lovelace" {
		t.Errorf("Expected author names attached, got %+v", detail.AuthorInfo)
	}
}

func TestGetImageByIDMissingShouldFailWithErrImageNotFound(t *testing.T) {
	a, _, _, _, _ := newImageFixture()

	if _, err := a.GetImageByID(context.Background(), primitive.NewObjectID()); err != ErrImageNotFound {
		t.Errorf("Expected ErrImageNotFound, got %v", err)
	}
}

func TestDeleteImageShouldRemoveRecordAndRevalidateHome(t *testing.T) {
	a, _, images, rev, owner := newImageFixture()

	stored, _ := a.AddImage(context.Background(), &models.Image{
		Title:              "doomed",
		TransformationType: transform.TypeRestore,
		Config:             transform.Config{"restore": true},
	}, owner.ID, "/")

	if err := a.DeleteImage(context.Background(), stored.ID); err != nil {
		t.Fatalf("DeleteImage failed: %v", err)
	}

	if img, _ := images.GetByID(context.Background(), stored.ID); img != nil {
		t.Error("Expected record deleted")
	}

	paths := rev.Paths()
	if paths[len(paths)-1] != "/" {
		t.Errorf("Expected home revalidated after delete, got %v", paths)
	}
}

func TestListUserImagesShouldFilterByAuthor(t *testing.T) {
	a, users, _, _, owner := newImageFixture()
	other, _ := users.Insert(context.Background(), &models.User{AuthID: "auth_2", Username: "eve"})

	a.AddImage(context.Background(), &models.Image{Title: "a", TransformationType: transform.TypeRestore, Config: transform.Config{"restore": true}}, owner.ID, "/")
	a.AddImage(context.Background(), &models.Image{Title: "b", TransformationType: transform.TypeRestore, Config: transform.Config{"restore": true}}, other.ID, "/")

	imgs, total, err := a.ListUserImages(context.Background(), owner.ID, ImageQuery{})
	if err != nil {
		t.Fatalf("ListUserImages failed: %v", err)
	}
	if total != 1 || len(imgs) != 1 || imgs[0].Author != owner.ID {
		t.Errorf("Expected only the owner's image, got total=%d", total)
	}
}
