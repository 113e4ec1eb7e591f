package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Model is an AI model listed in the inventory (collection "models").
type Model struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Framework   string             `bson:"framework" json:"framework"`
	UseCase     string             `bson:"useCase" json:"useCase"`
	Dataset     string             `bson:"dataset" json:"dataset"`
	Description string             `bson:"description" json:"description"`
	Image       string             `bson:"image" json:"image"`
	CreatedBy   string             `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
	Purchased   int64              `bson:"purchased" json:"purchased"`
}

// ModelFields is the set of descriptive fields an edit may overwrite.
// The purchase counter, creator and timestamps are never part of an edit.
type ModelFields struct {
	Name        string `json:"name"`
	Framework   string `json:"framework"`
	UseCase     string `json:"useCase"`
	Dataset     string `json:"dataset"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// Apply copies the editable fields onto m.
func (f ModelFields) Apply(m *Model) {
	m.Name = f.Name
	m.Framework = f.Framework
	m.UseCase = f.UseCase
	m.Dataset = f.Dataset
	m.Description = f.Description
	m.Image = f.Image
}
