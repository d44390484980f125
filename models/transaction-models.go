package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Transaction records a credit purchase. Checkout and payment webhooks are
// handled by the billing service; this server only reads the schema.
type Transaction struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	StripeID  string             `bson:"stripe_id"     json:"stripe_id"`
	Amount    float64            `bson:"amount"        json:"amount"`
	Plan      string             `bson:"plan,omitempty" json:"plan,omitempty"`
	Credits   int                `bson:"credits,omitempty" json:"credits,omitempty"`
	Buyer     primitive.ObjectID `bson:"buyer,omitempty" json:"buyer,omitempty"`
	CreatedAt time.Time          `bson:"created_at"    json:"created_at"`
}
