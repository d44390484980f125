package actions

import (
	"context"
	"time"

	"github.com/imagineserve/imagine-serve/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Users wraps the user record actions. Records are created on first
// sign-in by the auth collaborator and never hard-deleted by the gallery
// itself; DeleteUser exists for the account-removal webhook.
type Users struct {
	users UserStore
	rev   Revalidator
}

func NewUsers(users UserStore, rev Revalidator) *Users {
	return &Users{users: users, rev: rev}
}

func (a *Users) CreateUser(ctx context.Context, user *models.User) (*models.User, error) {
	if user.CreditBalance == 0 {
		user.CreditBalance = models.DefaultCreditBalance
	}
	user.CreatedAt = time.Now()
	return a.users.Insert(ctx, user)
}

func (a *Users) GetUserByAuthID(ctx context.Context, authID string) (*models.User, error) {
	user, err := a.users.GetByAuthID(ctx, authID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (a *Users) UpdateUser(ctx context.Context, authID string, update UserUpdate) (*models.User, error) {
	user, err := a.users.Update(ctx, authID, update)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	a.rev.Revalidate("/profile")
	return user, nil
}

func (a *Users) DeleteUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := a.users.Delete(ctx, id)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	a.rev.Revalidate("/")
	return user, nil
}

// UpdateCredits applies delta to the user's balance. A debit that would
// push the balance negative fails with ErrInsufficientCredits and leaves
// the record untouched.
func (a *Users) UpdateCredits(ctx context.Context, id primitive.ObjectID, delta int) (*models.User, error) {
	user, err := a.users.AdjustCredits(ctx, id, delta)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	// No document qualified: distinguish a missing user from a guard miss.
	existing, err := a.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrUserNotFound
	}
	return nil, ErrInsufficientCredits
}
