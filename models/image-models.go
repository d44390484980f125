package models

import (
	"time"

	"github.com/imagineserve/imagine-serve/transform"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Image struct {
	ID                 primitive.ObjectID `bson:"_id,omitempty"       json:"id"`
	Title              string             `bson:"title"               json:"title"`
	TransformationType transform.Type     `bson:"transformation_type" json:"transformation_type"`
	PublicID           string             `bson:"public_id"           json:"public_id"`
	Width              int                `bson:"width,omitempty"     json:"width,omitempty"`
	Height             int                `bson:"height,omitempty"    json:"height,omitempty"`
	Config             transform.Config   `bson:"config,omitempty"    json:"config,omitempty"`
	SecureURL          string             `bson:"secure_url"          json:"secure_url"`
	TransformationURL  string             `bson:"transformation_url,omitempty" json:"transformation_url,omitempty"`
	AspectRatio        string             `bson:"aspect_ratio,omitempty" json:"aspect_ratio,omitempty"`
	Prompt             string             `bson:"prompt,omitempty"    json:"prompt,omitempty"`
	Color              string             `bson:"color,omitempty"     json:"color,omitempty"`
	Author             primitive.ObjectID `bson:"author"              json:"author"`
	CreatedAt          time.Time          `bson:"created_at"          json:"created_at"`
	UpdatedAt          time.Time          `bson:"updated_at"          json:"updated_at"`
}

// ImageAuthor carries the owner name fields attached to a detail lookup.
type ImageAuthor struct {
	ID        primitive.ObjectID `bson:"_id"        json:"id"`
	FirstName string             `bson:"first_name" json:"first_name"`
	LastName  string             `bson:"last_name"  json:"last_name"`
}

// ImageWithAuthor is the detail-view shape: the image record with the
// owning user's name fields resolved alongside it.
type ImageWithAuthor struct {
	Image      `bson:",inline"`
	AuthorInfo ImageAuthor `bson:"author_info" json:"author_info"`
}
