package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// InsertResult mirrors the acknowledgement returned for a single insert.
type InsertResult struct {
	Acknowledged bool               `json:"acknowledged"`
	InsertedID   primitive.ObjectID `json:"insertedId"`
}

// UpdateResult mirrors the acknowledgement returned for a single update.
type UpdateResult struct {
	Acknowledged  bool  `json:"acknowledged"`
	MatchedCount  int64 `json:"matchedCount"`
	ModifiedCount int64 `json:"modifiedCount"`
}
