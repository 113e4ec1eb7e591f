package models

import (
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidID is returned for identity values that are not 24-char hex ObjectIDs.
var ErrInvalidID = errors.New("invalid id")

// ParseID converts a route or body value into an ObjectID. The value must be
// exactly 24 hex characters; surrounding whitespace is malformed.
func ParseID(s string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(s)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", ErrInvalidID, s)
	}
	return id, nil
}
