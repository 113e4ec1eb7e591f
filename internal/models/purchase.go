package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Purchase records that a user bought a model (collection "purchased").
// ModelID references Model.ID; the database does not enforce it.
type Purchase struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	ModelID     primitive.ObjectID `bson:"modelId" json:"modelId"`
	PurchasedBy string             `bson:"purchasedBy" json:"purchasedBy"`
	Name        string             `bson:"name,omitempty" json:"name,omitempty"`
	Framework   string             `bson:"framework,omitempty" json:"framework,omitempty"`
	UseCase     string             `bson:"useCase,omitempty" json:"useCase,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	PurchasedAt time.Time          `bson:"purchasedAt" json:"purchasedAt"`
}

// PurchaseWithModel is a purchase joined with the model it references.
type PurchaseWithModel struct {
	Purchase `bson:",inline"`
	Model    Model `bson:"model" json:"model"`
}
