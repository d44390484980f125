package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultCreditBalance = 10

type User struct {
	ID            primitive.ObjectID `bson:"_id,omitempty"  json:"id"`
	AuthID        string             `bson:"auth_id"        json:"auth_id"`
	Email         string             `bson:"email"          json:"email"`
	Username      string             `bson:"username"       json:"username"`
	PasswordHash  string             `bson:"password_hash"  json:"-"`
	Photo         string             `bson:"photo"          json:"photo"`
	FirstName     string             `bson:"first_name"     json:"first_name"`
	LastName      string             `bson:"last_name"      json:"last_name"`
	PlanID        int                `bson:"plan_id"        json:"plan_id"`
	CreditBalance int                `bson:"credit_balance" json:"credit_balance"`
	CreatedAt     time.Time          `bson:"created_at"     json:"created_at"`
}
