package actions

import (
	"context"
	"testing"

	"github.com/imagineserve/imagine-serve/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestCreateUserShouldDefaultCreditBalance(t *testing.T) {
	users := NewFakeUserStore()
	a := NewUsers(users, &FakeRevalidator{})

	created, err := a.CreateUser(context.Background(), &models.User{
		AuthID:   "auth_1",
		Email:    "ada@example.com",
		Username: "ada",
	})
	if err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}
	if created.CreditBalance != models.DefaultCreditBalance {
		t.Errorf("Expected default balance %d, got %d", models.DefaultCreditBalance, created.CreditBalance)
	}
}

func TestGetUserByAuthIDMissingShouldFailWithErrUserNotFound(t *testing.T) {
	a := NewUsers(NewFakeUserStore(), &FakeRevalidator{})

	if _, err := a.GetUserByAuthID(context.Background(), "nope"); err != ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUserShouldReplaceProfileFields(t *testing.T) {
	users := NewFakeUserStore()
	a := NewUsers(users, &FakeRevalidator{})

	a.CreateUser(context.Background(), &models.User{AuthID: "auth_1", Username: "ada"})

	updated, err := a.UpdateUser(context.Background(), "auth_1", UserUpdate{
		Username:  "ada2",
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	if err != nil {
		t.Fatalf("UpdateUser failed: %v", err)
	}
	if updated.Username != "ada2" || updated.FirstName != "Ada" {
		t.Errorf("Expected profile fields replaced, got %+v", updated)
	}
}

func TestUpdateCreditsDebitShouldReduceBalance(t *testing.T) {
	users := NewFakeUserStore()
	a := NewUsers(users, &FakeRevalidator{})

	created, _ := a.CreateUser(context.Background(), &models.User{AuthID: "auth_1", Username: "ada"})

	updated, err := a.UpdateCredits(context.Background(), created.ID, -1)
	if err != nil {
		t.Fatalf("UpdateCredits failed: %v", err)
	}
	if updated.CreditBalance != models.DefaultCreditBalance-1 {
		t.Errorf("Expected balance %d, got %d", models.DefaultCreditBalance-1, updated.CreditBalance)
	}
}

func TestUpdateCreditsOverdraftShouldFailWithErrInsufficientCredits(t *testing.T) {
	users := NewFakeUserStore()
	a := NewUsers(users, &FakeRevalidator{})

	created, _ := a.CreateUser(context.Background(), &models.User{AuthID: "auth_1", Username: "ada", CreditBalance: 2})

	if _, err := a.UpdateCredits(context.Background(), created.ID, -5); err != ErrInsufficientCredits {
		t.Errorf("Expected ErrInsufficientCredits, got %v", err)
	}

	unchanged, _ := users.GetByID(context.Background(), created.ID)
	if unchanged.CreditBalance != 2 {
		t.Errorf("Expected balance untouched, got %d", unchanged.CreditBalance)
	}
}

func TestUpdateCreditsUnknownUserShouldFailWithErrUserNotFound(t *testing.T) {
	a := NewUsers(NewFakeUserStore(), &FakeRevalidator{})

	if _, err := a.UpdateCredits(context.Background(), primitive.NewObjectID(), -1); err != ErrUserNotFound {
		t.Errorf("Expected ErrUserNotFound, got %v", err)
	}
}

func TestDeleteUserShouldRemoveRecord(t *testing.T) {
	users := NewFakeUserStore()
	a := NewUsers(users, &FakeRevalidator{})

	created, _ := a.CreateUser(context.Background(), &models.User{AuthID: "auth_1", Username: "ada"})

	if _, err := a.DeleteUser(context.Background(), created.ID); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if u, _ := users.GetByID(context.Background(), created.ID); u != nil {
		t.Error("Expected user removed")
	}
}
